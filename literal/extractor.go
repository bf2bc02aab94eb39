package literal

import (
	"unicode/utf8"

	"github.com/coregx/pcregex/nfa"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals that hurt cache locality
//   - MaxClassSize: prevents expanding large character classes like [a-z]
type ExtractorConfig struct {
	// MaxLiterals limits the number of alternative literals. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each literal in bytes. Longer
	// literals are truncated and lose their Complete flag. Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of Inclusive sets that are expanded
	// into one literal per member, e.g. [Hh]ello → Hello, hello.
	// Default: 4.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  4,
	}
}

// Extractor extracts prefix literals from compiled graphs.
//
// Starting at the entry node it follows single-child Transition, capture
// and commit nodes, descends into the branches of the first node with
// several children, and accumulates MatchOne code points (and small
// Inclusive sets) along each branch until the first construct that is not
// a fixed code point.
type Extractor struct {
	config ExtractorConfig
}

// New creates an extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes returns the literals one of which starts every match of g.
// The result is empty when some match may begin with something other than
// a literal, e.g. an anchor, a wide class or the empty string.
func (e *Extractor) ExtractPrefixes(g *nfa.Graph) *Seq {
	id, ok := e.skipEpsilon(g, nfa.StartNode)
	if !ok {
		return NewSeq()
	}

	branches := []nfa.NodeID{id}
	if n := g.Node(id); n.Kind.Family() == nfa.FamilyBehaviour && n.Children.Len() > 1 {
		branches = n.Children.IDs()
	}

	var out []Literal
	for _, b := range branches {
		lits := e.walk(g, b)
		if len(lits) == 0 || len(out)+len(lits) > e.config.MaxLiterals {
			return NewSeq()
		}
		for _, lit := range lits {
			if lit.Len() == 0 {
				return NewSeq()
			}
		}
		out = append(out, lits...)
	}
	return NewSeq(out...)
}

// skipEpsilon follows single-child nodes that consume nothing and have no
// effect on where a match may start.
func (e *Extractor) skipEpsilon(g *nfa.Graph, id nfa.NodeID) (nfa.NodeID, bool) {
	for steps := 0; steps <= g.Len(); steps++ {
		n := g.Node(id)
		if !transparent(n.Kind) || n.Children.Len() != 1 {
			return id, true
		}
		id = n.Children.At(0)
	}
	return id, false
}

func transparent(k nfa.Kind) bool {
	switch k {
	case nfa.KindTransition, nfa.KindCapGroup, nfa.KindEndCapGroup, nfa.KindDropStack:
		return true
	default:
		return false
	}
}

// walk accumulates the literals spelled by the fixed code points starting
// at id.
func (e *Extractor) walk(g *nfa.Graph, id nfa.NodeID) []Literal {
	prefixes := [][]byte{nil}
	for steps := 0; steps <= g.Len(); steps++ {
		var ok bool
		if id, ok = e.skipEpsilon(g, id); !ok {
			break
		}
		n := g.Node(id)

		var runes []rune
		switch {
		case n.Kind == nfa.KindEnd:
			return finish(prefixes, true)
		case n.Kind == nfa.KindMatchOne:
			runes = []rune{n.Rune}
		case n.Kind == nfa.KindInclusive && n.Set.Len() > 0 && n.Set.Len() <= e.config.MaxClassSize &&
			len(prefixes)*n.Set.Len() <= e.config.MaxLiterals:
			runes = n.Set
		default:
			return finish(prefixes, false)
		}

		next := make([][]byte, 0, len(prefixes)*len(runes))
		for _, p := range prefixes {
			for _, r := range runes {
				next = append(next, utf8.AppendRune(append([]byte(nil), p...), r))
			}
		}
		prefixes = next
		if len(prefixes[0]) >= e.config.MaxLiteralLen {
			return finish(truncate(prefixes, e.config.MaxLiteralLen), false)
		}
		if n.Children.Len() != 1 {
			// A loop or branch follows; what has been read so far is still
			// a prefix of every match through this node.
			return finish(prefixes, false)
		}
		id = n.Children.At(0)
	}
	return finish(prefixes, false)
}

func finish(prefixes [][]byte, complete bool) []Literal {
	out := make([]Literal, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, NewLiteral(p, complete && len(p) > 0))
	}
	return out
}

func truncate(prefixes [][]byte, n int) [][]byte {
	for i, p := range prefixes {
		if len(p) > n {
			prefixes[i] = p[:n]
		}
	}
	return prefixes
}
