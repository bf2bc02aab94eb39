package meta

import (
	"sync"

	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/prefilter"
)

// SearchState holds per-search mutable state for thread-safe concurrent searches.
// It is obtained from a sync.Pool so that one compiled Engine can be used
// from many goroutines.
//
// Usage pattern:
//
//	state := engine.getSearchState()
//	defer engine.putSearchState(state)
//	// use state for search operations
//
// Thread safety: Each goroutine must use its own SearchState instance.
type SearchState struct {
	// backtracker holds the frame stack, capture stacks and memo.
	backtracker *nfa.BacktrackerState

	// pikevm holds the frontier sets; nil when the engine has no PikeVM.
	pikevm *nfa.PikeVMState

	// tracker retires the prefilter within one search; nil when the engine
	// has no prefilter or tracking is disabled.
	tracker *prefilter.Tracker
}

// searchStatePool manages a pool of SearchState instances for thread-safe reuse.
// This follows the stdlib regexp pattern of using sync.Pool for concurrent safety.
type searchStatePool struct {
	pool sync.Pool
}

func newSearchStatePool(e *Engine) *searchStatePool {
	p := &searchStatePool{}
	p.pool = sync.Pool{
		New: func() any {
			state := &SearchState{backtracker: e.backtracker.NewState()}
			if e.pikevm != nil {
				state.pikevm = e.pikevm.NewState()
			}
			if e.prefilter != nil && e.config.TrackPrefilter {
				state.tracker = prefilter.NewTrackerWithConfig(e.prefilter, e.config.Tracker)
			}
			return state
		},
	}
	return p
}

// get retrieves a SearchState from the pool, creating one if necessary.
func (p *searchStatePool) get() *SearchState {
	return p.pool.Get().(*SearchState)
}

// put returns a SearchState to the pool for reuse.
func (p *searchStatePool) put(state *SearchState) {
	if state == nil {
		return
	}
	p.pool.Put(state)
}
