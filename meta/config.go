// Package meta implements the engine orchestrator behind the public API.
//
// The engine coordinates three components:
//   - Prefilter: head scanner that jumps to plausible start positions (optional)
//   - PikeVM: breadth-first simulation for graphs without backtracking features
//   - Backtracker: depth-first executor for lookahead, atomic groups,
//     recursion and capture groups
//
// Strategy selection is based on:
//   - Graph features (IsBFSCapable)
//   - Configuration (EnablePikeVM, EnablePrefilter)
//   - Literal quality (a complete literal needs no executor at all)
package meta

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/prefilter"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid config")

// Config controls compilation and matching.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.DotAll = true
//	engine, err := meta.CompileWithConfig(`a.c`, config)
type Config struct {
	// DotAll makes '.' match '\n' as well.
	// Default: false
	DotAll bool `mapstructure:"dot_all"`

	// CaseInsensitive folds ASCII letters at compile time.
	// Default: false
	CaseInsensitive bool `mapstructure:"case_insensitive"`

	// EnforceLinearTime rejects patterns that need the backtracker
	// (lookahead, atomic groups, possessive quantifiers, recursion) with a
	// LinearTimeViolation error.
	// Default: false
	EnforceLinearTime bool `mapstructure:"enforce_linear_time"`

	// EnablePrefilter enables head scanning for candidate start positions.
	// Default: true
	EnablePrefilter bool `mapstructure:"enable_prefilter"`

	// EnablePikeVM lets IsMatch and Find use the PikeVM when the graph
	// allows it. When false the backtracker runs every search.
	// Default: true
	EnablePikeVM bool `mapstructure:"enable_pikevm"`

	// TrackPrefilter retires a prefilter during a search when its
	// candidates rarely match and it barely skips any input.
	// Default: true
	TrackPrefilter bool `mapstructure:"track_prefilter"`

	// Tracker sets when TrackPrefilter retires a prefilter.
	// Default: prefilter.DefaultTrackerConfig()
	Tracker prefilter.TrackerConfig `mapstructure:"tracker"`

	// OptimizerPasses is the number of optimizer rounds run on the graph.
	// Default: 3
	OptimizerPasses int `mapstructure:"optimizer_passes"`

	// MaxNodes caps the size of the compiled graph.
	// Default: 1<<20
	MaxNodes int `mapstructure:"max_nodes"`

	// MaxVisitedBits caps the backtracker's memo table, in bits.
	// Default: nfa.DefaultMaxVisitedBits
	MaxVisitedBits int `mapstructure:"max_visited_bits"`

	// PrefilterCost tunes the choice of class prefilter.
	PrefilterCost prefilter.CostModel `mapstructure:"prefilter_cost"`
}

// DefaultConfig returns a configuration with the defaults listed on Config.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter: true,
		EnablePikeVM:    true,
		TrackPrefilter:  true,
		Tracker:         prefilter.DefaultTrackerConfig(),
		OptimizerPasses: nfa.DefaultOptimizePasses,
		MaxNodes:        nfa.DefaultCompilerConfig().MaxNodes,
		MaxVisitedBits:  nfa.DefaultMaxVisitedBits,
		PrefilterCost:   prefilter.DefaultCostModel(),
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - OptimizerPasses: 1 to 16
//   - MaxNodes: 2 to 1<<24
//   - MaxVisitedBits: >= 0
//   - PrefilterCost weights: > 0, MaxListLen: 0 to 1<<16
//   - Tracker.Interval: >= 1, Tracker minimums: >= 0
func (c Config) Validate() error {
	if c.OptimizerPasses < 1 || c.OptimizerPasses > 16 {
		return &ConfigError{Field: "OptimizerPasses", Message: "must be between 1 and 16"}
	}
	if c.MaxNodes < 2 || c.MaxNodes > 1<<24 {
		return &ConfigError{Field: "MaxNodes", Message: "must be between 2 and 16777216"}
	}
	if c.MaxVisitedBits < 0 {
		return &ConfigError{Field: "MaxVisitedBits", Message: "must not be negative"}
	}
	if c.EnablePrefilter {
		cost := c.PrefilterCost
		if cost.ListWeight <= 0 || cost.RangeWeight <= 0 || cost.Decline <= 0 {
			return &ConfigError{Field: "PrefilterCost", Message: "weights must be positive"}
		}
		if cost.MaxListLen < 0 || cost.MaxListLen > 1<<16 {
			return &ConfigError{Field: "PrefilterCost.MaxListLen", Message: "must be between 0 and 65536"}
		}
	}
	if c.TrackPrefilter {
		if c.Tracker.Interval == 0 {
			return &ConfigError{Field: "Tracker.Interval", Message: "must be at least 1"}
		}
		if c.Tracker.MinEfficiency < 0 || c.Tracker.MinAverageSkip < 0 {
			return &ConfigError{Field: "Tracker", Message: "minimums must not be negative"}
		}
	}
	return nil
}

// DecodeConfig overlays settings from a generic map, such as a decoded JSON
// file or command-line overrides, on DefaultConfig. Keys use the snake_case
// names in the mapstructure tags; values may be strings ("true", "3").
//
// Example:
//
//	config, err := meta.DecodeConfig(map[string]any{
//	    "dot_all":        true,
//	    "prefilter_cost": map[string]any{"decline": "8"},
//	})
func DecodeConfig(settings map[string]any) (Config, error) {
	config := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "pcregex: invalid config: " + e.Field + ": " + e.Message
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func (c Config) compilerConfig() nfa.CompilerConfig {
	return nfa.CompilerConfig{
		DotAll:          c.DotAll,
		CaseInsensitive: c.CaseInsensitive,
		MaxNodes:        c.MaxNodes,
	}
}
