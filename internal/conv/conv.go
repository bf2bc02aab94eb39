// Package conv provides checked integer narrowing for node and group ids.
//
// The node graph stores indices as uint32. Every narrowing from int goes
// through this package so an oversized graph fails loudly instead of
// wrapping around.
package conv

import "math"

// IntToUint32 converts n to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// uint comparison avoids overflow on 32-bit platforms.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// NodeID converts a slice index into a node id.
func NodeID(i int) uint32 {
	return IntToUint32(i)
}

// GroupID converts a capture-group number into a group id. Group ids are
// bounded by the pattern length, so anything above math.MaxUint16 indicates
// a parser bug.
func GroupID(n int) uint32 {
	if n < 0 || n > math.MaxUint16 {
		panic("integer overflow: capture group id out of range")
	}
	return uint32(n)
}
