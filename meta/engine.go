package meta

import (
	"sync/atomic"

	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/prefilter"
)

// Engine is a compiled pattern together with the executors chosen for it.
//
// An Engine is immutable after construction and safe for concurrent use:
// per-search state comes from an internal pool.
//
// Example:
//
//	engine, err := meta.Compile(`\b\w+\b`)
//	if err != nil {
//	    return err
//	}
//	for _, m := range engine.FindAll([]byte("This is a group"), -1) {
//	    fmt.Println(m.Start(), m.End())
//	}
type Engine struct {
	pattern     string
	graph       *nfa.Graph
	config      Config
	strategy    Strategy
	prefilter   prefilter.Prefilter
	literalLen  int // match length for UseLiteral
	pikevm      *nfa.PikeVM
	backtracker *nfa.Backtracker
	pool        *searchStatePool
	stats       Stats
}

// Stats tracks execution statistics for performance analysis.
type Stats struct {
	// PikeVMSearches counts searches run by the PikeVM.
	PikeVMSearches uint64

	// BacktrackerSearches counts searches run by the backtracker,
	// including every Captures call.
	BacktrackerSearches uint64

	// LiteralSearches counts searches answered by the prefilter alone.
	LiteralSearches uint64

	// PrefilterAbandoned counts searches during which the prefilter was
	// retired for low effectiveness.
	PrefilterAbandoned uint64
}

// Pattern returns the source pattern, or "" for engines built from a graph.
func (e *Engine) Pattern() string {
	return e.pattern
}

// Graph returns the optimized node graph.
func (e *Engine) Graph() *nfa.Graph {
	return e.graph
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Strategy returns the execution strategy selected for this engine.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Prefilter returns the head scanner, or nil when there is none.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// NumCaptures returns the number of capture groups in the pattern, not
// counting group 0.
func (e *Engine) NumCaptures() int {
	return e.graph.NumGroups()
}

// SubexpNames returns the names of capture groups in the pattern. Index 0
// is always "" (entire match) and unnamed groups are "".
func (e *Engine) SubexpNames() []string {
	return e.graph.GroupNames()
}

// Stats returns a snapshot of the execution statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		PikeVMSearches:      atomic.LoadUint64(&e.stats.PikeVMSearches),
		BacktrackerSearches: atomic.LoadUint64(&e.stats.BacktrackerSearches),
		LiteralSearches:     atomic.LoadUint64(&e.stats.LiteralSearches),
		PrefilterAbandoned:  atomic.LoadUint64(&e.stats.PrefilterAbandoned),
	}
}

// ResetStats resets execution statistics to zero.
func (e *Engine) ResetStats() {
	atomic.StoreUint64(&e.stats.PikeVMSearches, 0)
	atomic.StoreUint64(&e.stats.BacktrackerSearches, 0)
	atomic.StoreUint64(&e.stats.LiteralSearches, 0)
	atomic.StoreUint64(&e.stats.PrefilterAbandoned, 0)
}

func (e *Engine) getSearchState() *SearchState {
	state := e.pool.get()
	if state.tracker != nil {
		state.tracker.Reset()
	}
	return state
}

func (e *Engine) putSearchState(state *SearchState) {
	if state.tracker != nil && !state.tracker.IsActive() {
		atomic.AddUint64(&e.stats.PrefilterAbandoned, 1)
	}
	e.pool.put(state)
}

// candidates returns the candidate function for a search with state.
func (e *Engine) candidates(state *SearchState) nfa.Candidates {
	switch {
	case state.tracker != nil:
		return state.tracker.Find
	case e.prefilter != nil:
		return e.prefilter.Find
	default:
		return nil
	}
}

// confirm records a match found through the candidates of state.
func (e *Engine) confirm(state *SearchState) {
	if state.tracker != nil {
		state.tracker.ConfirmMatch()
	}
}
