package syntax

// FirstNonLinear returns the first construct, in pattern order, that only the
// backtracking engine can execute: atomic groups, possessive quantifiers,
// lookaheads and recursion. It returns nil when the whole expression runs in
// linear time.
func FirstNonLinear(re *Regexp) *Regexp {
	var found *Regexp
	re.Walk(func(sub *Regexp) bool {
		if found != nil {
			return false
		}
		switch sub.Op {
		case OpAtomic, OpLookahead, OpNegLookahead, OpRecursion:
			found = sub
			return false
		case OpRepeat:
			if sub.Possessive {
				found = sub
				return false
			}
		}
		return true
	})
	return found
}

// CheckLinear returns a LinearTimeViolation error pointing at the first
// construct reported by FirstNonLinear, or nil.
func CheckLinear(expr string, re *Regexp) error {
	if sub := FirstNonLinear(re); sub != nil {
		return NewError(LinearTimeViolation, expr, sub.Pos, describe(sub))
	}
	return nil
}

func describe(re *Regexp) string {
	switch re.Op {
	case OpAtomic:
		return "atomic group"
	case OpLookahead, OpNegLookahead:
		return "lookahead"
	case OpRecursion:
		return "recursion"
	case OpRepeat:
		return "possessive quantifier"
	}
	return re.Op.String()
}
