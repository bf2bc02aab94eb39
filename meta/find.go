package meta

import (
	"sync/atomic"

	"github.com/coregx/pcregex/internal/utf8x"
	"github.com/coregx/pcregex/nfa"
)

// IsMatch reports whether the pattern matches anywhere in haystack.
func (e *Engine) IsMatch(haystack []byte) bool {
	state := e.getSearchState()
	defer e.putSearchState(state)

	switch e.strategy {
	case UseLiteral:
		atomic.AddUint64(&e.stats.LiteralSearches, 1)
		return e.prefilter.Find(haystack, 0) >= 0
	case UsePikeVM:
		atomic.AddUint64(&e.stats.PikeVMSearches, 1)
		return e.pikevm.IsMatchAt(state.pikevm, haystack, 0, e.candidates(state))
	default:
		atomic.AddUint64(&e.stats.BacktrackerSearches, 1)
		_, ok := e.backtracker.Find(state.backtracker, haystack, 0, e.candidates(state))
		return ok
	}
}

// Find returns the leftmost match in haystack, or nil.
func (e *Engine) Find(haystack []byte) *Match {
	return e.FindAt(haystack, 0)
}

// FindAt returns the leftmost match starting at or after at, or nil.
// Assertions still see the whole haystack, so `^` does not match at at
// unless a line starts there.
func (e *Engine) FindAt(haystack []byte, at int) *Match {
	if at < 0 || at > len(haystack) {
		return nil
	}
	state := e.getSearchState()
	defer e.putSearchState(state)

	span, ok := e.findAt(state, haystack, at, false)
	if !ok {
		return nil
	}
	return NewMatch(span.Start, span.End, haystack)
}

// FindAll returns successive non-overlapping matches in increasing order.
// After an empty match the search resumes one code point further, so
// consecutive matches always have increasing starts. If n >= 0, at most n
// matches are returned.
func (e *Engine) FindAll(haystack []byte, n int) []*Match {
	var out []*Match
	e.each(haystack, n, func(span nfa.Span) {
		out = append(out, NewMatch(span.Start, span.End, haystack))
	})
	return out
}

// FindAllSpans is FindAll without the Match allocations.
func (e *Engine) FindAllSpans(haystack []byte, n int) []nfa.Span {
	var out []nfa.Span
	e.each(haystack, n, func(span nfa.Span) {
		out = append(out, span)
	})
	return out
}

func (e *Engine) each(haystack []byte, n int, yield func(nfa.Span)) {
	if n == 0 {
		return
	}
	state := e.getSearchState()
	defer e.putSearchState(state)

	count := 0
	for at, resume := 0, false; at <= len(haystack); {
		span, ok := e.findAt(state, haystack, at, resume)
		if !ok {
			return
		}
		yield(span)
		if count++; n > 0 && count >= n {
			return
		}
		if span.End == span.Start {
			at = utf8x.NextStart(haystack, span.End)
		} else {
			at = span.End
		}
		resume = true
	}
}

// findAt runs one search with the engine's strategy. resume is set when
// state last searched the same haystack and found a match ending at or
// before at.
func (e *Engine) findAt(state *SearchState, haystack []byte, at int, resume bool) (nfa.Span, bool) {
	var (
		span nfa.Span
		ok   bool
	)
	switch e.strategy {
	case UseLiteral:
		atomic.AddUint64(&e.stats.LiteralSearches, 1)
		if pos := e.prefilter.Find(haystack, at); pos >= 0 {
			return nfa.Span{Start: pos, End: pos + e.literalLen}, true
		}
		return nfa.Span{}, false
	case UsePikeVM:
		atomic.AddUint64(&e.stats.PikeVMSearches, 1)
		span, ok = e.pikevm.Find(state.pikevm, haystack, at, e.candidates(state))
	default:
		atomic.AddUint64(&e.stats.BacktrackerSearches, 1)
		if resume {
			span, ok = e.backtracker.FindNext(state.backtracker, haystack, at, e.candidates(state))
		} else {
			span, ok = e.backtracker.Find(state.backtracker, haystack, at, e.candidates(state))
		}
	}
	if ok {
		e.confirm(state)
	}
	return span, ok
}

// Captures returns the group spans of the leftmost match, or nil.
//
// Captures always runs the backtracker, which alone records groups; its
// leftmost match is the one Find reports.
func (e *Engine) Captures(haystack []byte) *Captures {
	return e.CapturesAt(haystack, 0)
}

// CapturesAt is Captures for matches starting at or after at.
func (e *Engine) CapturesAt(haystack []byte, at int) *Captures {
	if at < 0 || at > len(haystack) {
		return nil
	}
	state := e.getSearchState()
	defer e.putSearchState(state)

	atomic.AddUint64(&e.stats.BacktrackerSearches, 1)
	groups, ok := e.backtracker.FindCaptures(state.backtracker, haystack, at, e.candidates(state))
	if !ok {
		return nil
	}
	e.confirm(state)
	return &Captures{haystack: haystack, groups: groups, names: e.graph.GroupNames()}
}
