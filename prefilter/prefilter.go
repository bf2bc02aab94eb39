// Package prefilter synthesizes a head scanner from the entry of a compiled
// graph: a cheap search that jumps to the next position where a match may
// start, so the executors only run where they can succeed.
//
// Build inspects what every match must begin with and picks, in order:
//   - Literal heads: one literal → substring search, several literals →
//     Aho-Corasick over their common-length prefixes
//   - Match head: a single Match node → byte, byte-set or decoded class scan
//   - Anchor head: start/end of string, line starts/ends, word boundaries
//   - Branch head: the union of the Match nodes heading every alternative
//
// Every prefilter is sound: it never returns a position past a real match
// start. It may return positions where no match starts.
//
// Example usage:
//
//	g, _ := nfa.Compile(re, nfa.DefaultCompilerConfig())
//	pf := prefilter.Build(g, prefilter.DefaultCostModel())
//	if pf != nil {
//	    pos := pf.Find(haystack, 0) // first candidate or -1
//	}
package prefilter

import (
	"math"

	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/literal"
	"github.com/coregx/pcregex/nfa"
)

// Prefilter finds candidate start positions.
type Prefilter interface {
	// Find returns the smallest position >= start, at most len(haystack),
	// where a match may start, or -1 if there is none. start must be in
	// [0, len(haystack)].
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is always the start of a match
	// of LiteralLen bytes, so that no verification is needed.
	IsComplete() bool

	// HeapBytes returns the memory used by the prefilter's tables.
	HeapBytes() int

	// String names the prefilter kind for logs and dumps.
	String() string
}

// LiteralLener is implemented by prefilters whose candidates are always
// followed by a literal of known length.
type LiteralLener interface {
	LiteralLen() int
}

// CostModel weighs the encodings of a class head against declining to
// prefilter. Costs are in units of one comparison per scanned code point.
type CostModel struct {
	// ListWeight scales log2 of the class size for a sorted code-point
	// list probed with binary search. Default: 1.
	ListWeight float64 `mapstructure:"list_weight"`

	// RangeWeight scales log2 of the number of intervals for a range list.
	// Default: 1.5.
	RangeWeight float64 `mapstructure:"range_weight"`

	// Decline is the cost above which no prefilter is built; the executor
	// then tries every position itself. Default: 12.
	Decline float64 `mapstructure:"decline"`

	// MaxListLen is the largest class expanded into a code-point list.
	// Default: 256.
	MaxListLen int `mapstructure:"max_list_len"`
}

// DefaultCostModel returns the default cost model.
func DefaultCostModel() CostModel {
	return CostModel{
		ListWeight:  1,
		RangeWeight: 1.5,
		Decline:     12,
		MaxListLen:  256,
	}
}

// Build returns the cheapest sound prefilter for g, or nil when no head can
// be scanned for profitably.
func Build(g *nfa.Graph, cost CostModel) Prefilter {
	if pf := fromLiterals(g); pf != nil {
		return pf
	}

	head, ok := skipEpsilon(g, nfa.StartNode)
	if !ok {
		return nil
	}
	n := g.Node(head)
	switch n.Kind.Family() {
	case nfa.FamilyMatch:
		if !selective(n.Kind) {
			return nil
		}
		return fromClass(n.Class(), cost)
	case nfa.FamilyAnchor:
		return newAnchor(n.Kind)
	case nfa.FamilyBehaviour:
		if n.Children.Len() > 1 {
			return fromBranch(g, n, cost)
		}
	}
	return nil
}

// fromLiterals builds a substring or literal-set prefilter from the prefix
// literals of g.
func fromLiterals(g *nfa.Graph) Prefilter {
	seq := literal.New(literal.DefaultConfig()).ExtractPrefixes(g)
	seq.Minimize()
	switch {
	case seq.IsEmpty() || seq.MinLen() < 2:
		return nil
	case seq.Len() == 1:
		lit := seq.Get(0)
		return newSubstring(lit.Bytes, lit.Complete)
	default:
		return newLiteralSet(seq)
	}
}

// fromBranch unions the Match nodes heading each alternative of n.
func fromBranch(g *nfa.Graph, n *nfa.Node, cost CostModel) Prefilter {
	classes := make([]charset.Ranges, 0, n.Children.Len())
	for _, child := range n.Children.IDs() {
		id, ok := skipEpsilon(g, child)
		if !ok {
			return nil
		}
		m := g.Node(id)
		if m.Kind.Family() != nfa.FamilyMatch || !selective(m.Kind) {
			return nil
		}
		classes = append(classes, m.Class())
	}
	return fromClass(charset.Union(classes...), cost)
}

// fromClass picks a scanner for a head that consumes one code point of rs.
func fromClass(rs charset.Ranges, cost CostModel) Prefilter {
	switch {
	case len(rs) == 0:
		// Nothing can match; any scanner that never finds a candidate works.
		return newByteSet(nil)
	case rs.IsASCII():
		set, _ := rs.Expand(128)
		return newByteSet(set)
	case len(rs) == 1 && rs[0].Lo == rs[0].Hi:
		return newSubstring([]byte(string(rs[0].Lo)), false)
	}

	list, rng := math.Inf(1), cost.RangeWeight*math.Log2(float64(1+len(rs)))
	if w := rs.Width(); w <= cost.MaxListLen {
		list = cost.ListWeight * math.Log2(float64(1+w))
	}
	switch {
	case min(list, rng) >= cost.Decline:
		return nil
	case list <= rng:
		set, _ := rs.Expand(cost.MaxListLen)
		return newClassScan(rs, set.Contains, "class-list")
	default:
		return newClassScan(rs, rs.Contains, "class-ranges")
	}
}

// selective reports whether a match node of kind k accepts few enough code
// points for a scan to skip anything. Negated classes accept nearly all.
func selective(k nfa.Kind) bool {
	switch k {
	case nfa.KindMatchOne, nfa.KindInclusive, nfa.KindInclusiveRange:
		return true
	default:
		return false
	}
}

// skipEpsilon follows single-child nodes that consume nothing and hold at
// every position.
func skipEpsilon(g *nfa.Graph, id nfa.NodeID) (nfa.NodeID, bool) {
	for steps := 0; steps <= g.Len(); steps++ {
		n := g.Node(id)
		switch n.Kind {
		case nfa.KindTransition, nfa.KindCapGroup, nfa.KindEndCapGroup, nfa.KindDropStack:
			if n.Children.Len() == 1 {
				id = n.Children.At(0)
				continue
			}
		}
		return id, true
	}
	return id, false
}
