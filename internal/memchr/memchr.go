// Package memchr provides the byte-scanning primitives behind the root
// prefilter: single and multi byte search, 256-entry membership tables and
// substring search.
//
// On CPUs with wide vector units the single-needle search of the runtime
// (bytes.IndexByte) is vectorized, so multi-needle scans run one bounded
// IndexByte pass per needle. Elsewhere they fall back to a single SWAR pass
// that tests 8 bytes per iteration.
package memchr

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// vectorized reports whether bytes.IndexByte runs on a vector unit.
var vectorized = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// minMultiPass is the haystack length below which a single SWAR pass beats
// several vectorized passes.
const minMultiPass = 64

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes marks every zero byte of v with its high bit. Bits above the
// lowest marked byte may be spurious, so only the lowest one is meaningful.
func zeroBytes(v uint64) uint64 {
	return (v - lo8) &^ v & hi8
}

// Memchr returns the index of the first needle in haystack, or -1.
func Memchr(haystack []byte, needle byte) int {
	return bytes.IndexByte(haystack, needle)
}

// Memchr2 returns the index of the first occurrence of either needle, or -1.
func Memchr2(haystack []byte, n1, n2 byte) int {
	if vectorized && len(haystack) >= minMultiPass {
		return firstOf(haystack, n1, n2)
	}
	return memchr2SWAR(haystack, n1, n2)
}

// Memchr3 returns the index of the first occurrence of any of the three
// needles, or -1.
func Memchr3(haystack []byte, n1, n2, n3 byte) int {
	if vectorized && len(haystack) >= minMultiPass {
		return firstOf(haystack, n1, n2, n3)
	}
	return memchr3SWAR(haystack, n1, n2, n3)
}

// firstOf runs one IndexByte pass per needle, each bounded by the best hit
// found so far.
func firstOf(haystack []byte, needles ...byte) int {
	best := -1
	limit := haystack
	for _, n := range needles {
		if i := bytes.IndexByte(limit, n); i >= 0 {
			best = i
			limit = haystack[:i]
		}
	}
	return best
}

func memchr2SWAR(haystack []byte, n1, n2 byte) int {
	m1 := uint64(n1) * lo8
	m2 := uint64(n2) * lo8
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk^m1) | zeroBytes(chunk^m2); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if b := haystack[i]; b == n1 || b == n2 {
			return i
		}
	}
	return -1
}

func memchr3SWAR(haystack []byte, n1, n2, n3 byte) int {
	m1 := uint64(n1) * lo8
	m2 := uint64(n2) * lo8
	m3 := uint64(n3) * lo8
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if z := zeroBytes(chunk^m1) | zeroBytes(chunk^m2) | zeroBytes(chunk^m3); z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
	}
	for ; i < len(haystack); i++ {
		if b := haystack[i]; b == n1 || b == n2 || b == n3 {
			return i
		}
	}
	return -1
}

// Table is a 256-entry byte membership table.
type Table [256]bool

// IndexTable returns the index of the first byte of haystack in t, or -1.
func IndexTable(haystack []byte, t *Table) int {
	for i, b := range haystack {
		if t[b] {
			return i
		}
	}
	return -1
}

// IndexNotTable returns the index of the first byte of haystack not in t,
// or -1.
func IndexNotTable(haystack []byte, t *Table) int {
	for i, b := range haystack {
		if !t[b] {
			return i
		}
	}
	return -1
}

// Count returns the number of bytes set in t.
func (t *Table) Count() int {
	n := 0
	for _, ok := range t {
		if ok {
			n++
		}
	}
	return n
}

// Members returns the bytes set in t in ascending order.
func (t *Table) Members() []byte {
	var out []byte
	for b, ok := range t {
		if ok {
			out = append(out, byte(b))
		}
	}
	return out
}
