// Package syntax parses PCRE-flavoured patterns into an expression tree.
//
// The tree is consumed by package nfa, which lowers it into a node graph.
// Parsing is purely syntactic: options such as dotall or case folding are
// applied during lowering, not here.
package syntax

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/pcregex/internal/charset"
)

// Op is the operator of a Regexp node.
type Op uint8

const (
	OpEmpty          Op = iota + 1 // matches the empty string
	OpLiteral                      // Rune
	OpDot                          // .
	OpClass                        // Class, inverted when Negate
	OpBeginLine                    // ^
	OpEndLine                      // $
	OpBeginText                    // \A
	OpEndText                      // \z
	OpWordBoundary                 // \b
	OpNoWordBoundary               // \B
	OpCapture                      // (Sub[0]) with Cap and Name
	OpAtomic                       // (?>Sub[0])
	OpLookahead                    // (?=Sub[0])
	OpNegLookahead                 // (?!Sub[0])
	OpRepeat                       // Sub[0]{Min,Max}, Max < 0 means unbounded
	OpConcat                       // Sub[0]Sub[1]...
	OpAlternate                    // Sub[0]|Sub[1]|...
	OpRecursion                    // (?R)
)

var opNames = [...]string{
	OpEmpty:          "Empty",
	OpLiteral:        "Literal",
	OpDot:            "Dot",
	OpClass:          "Class",
	OpBeginLine:      "BeginLine",
	OpEndLine:        "EndLine",
	OpBeginText:      "BeginText",
	OpEndText:        "EndText",
	OpWordBoundary:   "WordBoundary",
	OpNoWordBoundary: "NoWordBoundary",
	OpCapture:        "Capture",
	OpAtomic:         "Atomic",
	OpLookahead:      "Lookahead",
	OpNegLookahead:   "NegLookahead",
	OpRepeat:         "Repeat",
	OpConcat:         "Concat",
	OpAlternate:      "Alternate",
	OpRecursion:      "Recursion",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Regexp is a node of the parsed expression tree.
type Regexp struct {
	Op         Op
	Sub        []*Regexp
	Rune       rune           // OpLiteral
	Class      charset.Ranges // OpClass, minimized
	Negate     bool           // OpClass
	Min, Max   int            // OpRepeat
	Lazy       bool           // OpRepeat
	Possessive bool           // OpRepeat
	Cap        int            // OpCapture, 1-based
	Name       string         // OpCapture, empty when unnamed
	Pos        int            // byte offset of the construct in the pattern
}

// MaxCap returns the highest capture group index in re.
func (re *Regexp) MaxCap() int {
	m := 0
	re.Walk(func(sub *Regexp) bool {
		if sub.Op == OpCapture && sub.Cap > m {
			m = sub.Cap
		}
		return true
	})
	return m
}

// CapNames returns the names of the capture groups indexed by group number.
// Index 0 (the whole match) and unnamed groups have empty names.
func (re *Regexp) CapNames() []string {
	names := make([]string, re.MaxCap()+1)
	re.Walk(func(sub *Regexp) bool {
		if sub.Op == OpCapture {
			names[sub.Cap] = sub.Name
		}
		return true
	})
	return names
}

// Walk visits re and its descendants in pattern order. Returning false from
// fn skips the children of that node.
func (re *Regexp) Walk(fn func(*Regexp) bool) {
	stack := []*Regexp{re}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for i := len(n.Sub) - 1; i >= 0; i-- {
			stack = append(stack, n.Sub[i])
		}
	}
}

// String renders re back into pattern syntax. The output parses to an
// equivalent tree, not necessarily to the original text.
func (re *Regexp) String() string {
	var sb strings.Builder
	re.write(&sb)
	return sb.String()
}

func (re *Regexp) write(sb *strings.Builder) {
	switch re.Op {
	case OpEmpty:
		sb.WriteString("(?:)")
	case OpLiteral:
		writeLiteral(sb, re.Rune, false)
	case OpDot:
		sb.WriteByte('.')
	case OpClass:
		writeClass(sb, re.Class, re.Negate)
	case OpBeginLine:
		sb.WriteByte('^')
	case OpEndLine:
		sb.WriteByte('$')
	case OpBeginText:
		sb.WriteString(`\A`)
	case OpEndText:
		sb.WriteString(`\z`)
	case OpWordBoundary:
		sb.WriteString(`\b`)
	case OpNoWordBoundary:
		sb.WriteString(`\B`)
	case OpCapture:
		sb.WriteByte('(')
		if re.Name != "" {
			sb.WriteString("?<" + re.Name + ">")
		}
		re.Sub[0].write(sb)
		sb.WriteByte(')')
	case OpAtomic, OpLookahead, OpNegLookahead:
		sb.WriteString(groupPrefix(re.Op))
		re.Sub[0].write(sb)
		sb.WriteByte(')')
	case OpRepeat:
		sub := re.Sub[0]
		if needsGroup(sub) {
			sb.WriteString("(?:")
			sub.write(sb)
			sb.WriteByte(')')
		} else {
			sub.write(sb)
		}
		switch {
		case re.Min == 0 && re.Max < 0:
			sb.WriteByte('*')
		case re.Min == 1 && re.Max < 0:
			sb.WriteByte('+')
		case re.Min == 0 && re.Max == 1:
			sb.WriteByte('?')
		case re.Max < 0:
			sb.WriteString("{" + strconv.Itoa(re.Min) + ",}")
		case re.Min == re.Max:
			sb.WriteString("{" + strconv.Itoa(re.Min) + "}")
		default:
			sb.WriteString("{" + strconv.Itoa(re.Min) + "," + strconv.Itoa(re.Max) + "}")
		}
		if re.Lazy {
			sb.WriteByte('?')
		} else if re.Possessive {
			sb.WriteByte('+')
		}
	case OpConcat:
		for _, sub := range re.Sub {
			if sub.Op == OpAlternate {
				sb.WriteString("(?:")
				sub.write(sb)
				sb.WriteByte(')')
				continue
			}
			sub.write(sb)
		}
	case OpAlternate:
		for i, sub := range re.Sub {
			if i > 0 {
				sb.WriteByte('|')
			}
			if sub.Op != OpEmpty {
				sub.write(sb)
			}
		}
	case OpRecursion:
		sb.WriteString("(?R)")
	}
}

func groupPrefix(op Op) string {
	switch op {
	case OpAtomic:
		return "(?>"
	case OpLookahead:
		return "(?="
	default:
		return "(?!"
	}
}

// needsGroup reports whether sub must be wrapped before a quantifier.
func needsGroup(sub *Regexp) bool {
	switch sub.Op {
	case OpConcat, OpAlternate, OpRepeat, OpEmpty:
		return true
	}
	return false
}

const metaChars = `\.+*?()|[]{}^$#`

func writeLiteral(sb *strings.Builder, r rune, inClass bool) {
	switch {
	case r == '\n':
		sb.WriteString(`\n`)
	case r == '\t':
		sb.WriteString(`\t`)
	case r == '\r':
		sb.WriteString(`\r`)
	case r < 0x20 || r == 0x7F || !utf8.ValidRune(r):
		sb.WriteString(`\x{` + strconv.FormatInt(int64(r), 16) + `}`)
	case inClass && (r == '-' || r == '^' || r == ']' || r == '[' || r == '\\'):
		sb.WriteByte('\\')
		sb.WriteRune(r)
	case !inClass && strings.ContainsRune(metaChars, r):
		sb.WriteByte('\\')
		sb.WriteRune(r)
	default:
		sb.WriteRune(r)
	}
}

func writeClass(sb *strings.Builder, rs charset.Ranges, negate bool) {
	sb.WriteByte('[')
	if negate {
		sb.WriteByte('^')
	}
	for _, r := range rs {
		writeLiteral(sb, r.Lo, true)
		if r.Hi > r.Lo {
			if r.Hi > r.Lo+1 {
				sb.WriteByte('-')
			}
			writeLiteral(sb, r.Hi, true)
		}
	}
	sb.WriteByte(']')
}
