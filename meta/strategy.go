package meta

import (
	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/prefilter"
)

// Strategy represents the executor used for IsMatch and Find.
//
// Captures always run on the backtracker, whatever the strategy, because
// only it records group spans.
type Strategy int

const (
	// UsePikeVM runs the breadth-first simulation.
	// Selected for:
	//   - Graphs without lookahead, atomic groups, possessive quantifiers
	//     or recursion
	//   - When EnablePikeVM is true in config
	UsePikeVM Strategy = iota

	// UseBacktracker runs the depth-first executor.
	// Selected for:
	//   - Graphs with backtracking-only features
	//   - When EnablePikeVM is false in config
	UseBacktracker

	// UseLiteral answers from the prefilter alone.
	// Selected for:
	//   - Patterns that are exactly one literal, such as `hello`
	UseLiteral
)

// String returns a human-readable representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case UsePikeVM:
		return "UsePikeVM"
	case UseBacktracker:
		return "UseBacktracker"
	case UseLiteral:
		return "UseLiteral"
	default:
		return "Unknown"
	}
}

// SelectStrategy picks the executor for g given its prefilter, which may be
// nil.
func SelectStrategy(g *nfa.Graph, pf prefilter.Prefilter, config Config) Strategy {
	if pf != nil && pf.IsComplete() {
		if _, ok := pf.(prefilter.LiteralLener); ok {
			return UseLiteral
		}
	}
	if config.EnablePikeVM && g.IsBFSCapable() {
		return UsePikeVM
	}
	return UseBacktracker
}
