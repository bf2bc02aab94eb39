package prefilter

// Tracker wraps a Prefilter and retires it once it stops paying off.
//
// A candidate that does not start a match costs an executor run. When few
// candidates are confirmed and the scan skips little input between them, the
// tracker switches to pass-through: Find returns start and the executor
// tries every position itself.
//
// A Tracker is not safe for concurrent use. Engines keep one per pooled
// search state and Reset it at the start of every search.
type Tracker struct {
	inner  Prefilter
	config TrackerConfig
	stats  TrackerStats
	// candidates count at the last effectiveness check
	checked uint64
}

// TrackerConfig sets when a prefilter is retired.
type TrackerConfig struct {
	// Warmup is the number of candidates seen before the first check.
	Warmup uint64 `mapstructure:"warmup"`

	// Interval is the number of candidates between checks.
	Interval uint64 `mapstructure:"interval"`

	// MinEfficiency is the confirmed share of candidates below which the
	// prefilter may be retired.
	MinEfficiency float64 `mapstructure:"min_efficiency"`

	// MinAverageSkip is the mean number of bytes skipped per candidate below
	// which the prefilter may be retired. Both minimums must be missed.
	MinAverageSkip float64 `mapstructure:"min_average_skip"`
}

// DefaultTrackerConfig returns a configuration that checks every 64
// candidates after 128, retiring below 10% confirms and 4 bytes skipped.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{Warmup: 128, Interval: 64, MinEfficiency: 0.1, MinAverageSkip: 4}
}

// TrackerStats is a snapshot of a tracker's counters.
type TrackerStats struct {
	Candidates uint64 // positions returned by the prefilter
	Confirms   uint64 // candidates that started a match
	Skipped    uint64 // bytes passed over between start and candidate
	Retired    bool
}

// Efficiency returns the confirmed share of candidates, or 0 before the
// first candidate.
func (s TrackerStats) Efficiency() float64 {
	if s.Candidates == 0 {
		return 0
	}
	return float64(s.Confirms) / float64(s.Candidates)
}

// AverageSkip returns the mean number of bytes skipped per candidate.
func (s TrackerStats) AverageSkip() float64 {
	if s.Candidates == 0 {
		return 0
	}
	return float64(s.Skipped) / float64(s.Candidates)
}

// NewTracker tracks inner with DefaultTrackerConfig. It returns nil for a
// nil prefilter.
func NewTracker(inner Prefilter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig tracks inner with config. It returns nil for a nil
// prefilter.
func NewTrackerWithConfig(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	if config.Interval == 0 {
		config.Interval = 1
	}
	return &Tracker{inner: inner, config: config}
}

// Find returns the next candidate at or after start, or -1. A retired
// tracker returns start.
func (t *Tracker) Find(haystack []byte, start int) int {
	if t.stats.Retired {
		return start
	}
	pos := t.inner.Find(haystack, start)
	if pos < 0 {
		return pos
	}
	t.stats.Candidates++
	t.stats.Skipped += uint64(pos - start)
	if t.stats.Candidates >= t.config.Warmup && t.stats.Candidates-t.checked >= t.config.Interval {
		t.checked = t.stats.Candidates
		t.stats.Retired = t.stats.Efficiency() < t.config.MinEfficiency &&
			t.stats.AverageSkip() < t.config.MinAverageSkip
	}
	return pos
}

// ConfirmMatch records that the last candidate started a match.
func (t *Tracker) ConfirmMatch() {
	t.stats.Confirms++
}

// IsActive reports whether the prefilter is still consulted.
func (t *Tracker) IsActive() bool {
	return !t.stats.Retired
}

// Stats returns the current counters.
func (t *Tracker) Stats() TrackerStats {
	return t.stats
}

// Reset clears the counters and reinstates the prefilter.
func (t *Tracker) Reset() {
	t.stats = TrackerStats{}
	t.checked = 0
}
