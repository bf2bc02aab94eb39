package nfa

import (
	"errors"
	"fmt"
)

var (
	// ErrTooComplex indicates the lowered graph exceeds the configured node
	// limit.
	ErrTooComplex = errors.New("pattern too complex")

	// ErrNotBFSCapable indicates a graph was handed to the PikeVM although it
	// uses node kinds only the Backtracker understands.
	ErrNotBFSCapable = errors.New("graph requires the backtracking executor")
)

// BuildError represents an error during graph construction via the Builder
// API.
type BuildError struct {
	Message string
	NodeID  NodeID
}

// Error implements the error interface
func (e *BuildError) Error() string {
	return fmt.Sprintf("graph build error at node %d: %s", e.NodeID, e.Message)
}
