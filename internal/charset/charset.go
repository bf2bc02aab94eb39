// Package charset implements the ordered code-point containers used by
// character-class nodes.
//
// Two representations are provided:
//   - Set: a sorted, deduplicated list of individual code points
//   - Ranges: a sorted, non-overlapping list of inclusive [Lo, Hi] pairs
//
// Both are immutable once installed in a compiled node and therefore safe for
// concurrent readers.
package charset

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// MaxRune is the upper bound of the code-point universe used by Invert.
const MaxRune = utf8.MaxRune

// Set is a sorted list of distinct code points.
type Set []rune

// NewSet returns the sorted, deduplicated set of rs.
func NewSet(rs ...rune) Set {
	s := slices.Clone(rs)
	slices.Sort(s)
	return Set(slices.Compact(s))
}

// Contains reports whether r is a member of s.
//
// The search keeps a base index and halves the remaining length on every step
// without an early exit, so the loop runs exactly ceil(log2(len)) times.
func (s Set) Contains(r rune) bool {
	n := len(s)
	if n == 0 {
		return false
	}
	base := 0
	for n > 1 {
		half := n / 2
		if s[base+half] <= r {
			base += half
		}
		n -= half
	}
	return s[base] == r
}

// Len returns the number of code points in s.
func (s Set) Len() int {
	return len(s)
}

// Ranges converts s into its minimized range representation.
func (s Set) Ranges() Ranges {
	if len(s) == 0 {
		return nil
	}
	out := make(Ranges, 0, len(s))
	cur := Range{Lo: s[0], Hi: s[0]}
	for _, r := range s[1:] {
		if r == cur.Hi+1 {
			cur.Hi = r
			continue
		}
		out = append(out, cur)
		cur = Range{Lo: r, Hi: r}
	}
	return append(out, cur)
}

// IsASCII reports whether every member is below 0x80.
func (s Set) IsASCII() bool {
	return len(s) == 0 || s[len(s)-1] < utf8.RuneSelf
}

// Equal reports whether s and other hold the same code points.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s, other)
}

func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, r := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeRune(&sb, r)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Range is an inclusive interval of code points.
type Range struct {
	Lo, Hi rune
}

// Width returns the number of code points covered by the range.
func (r Range) Width() int {
	return int(r.Hi-r.Lo) + 1
}

// Ranges is a list of inclusive intervals. Lists installed in compiled nodes
// are always minimized: sorted by Lo, with no overlapping or adjacent pairs.
type Ranges []Range

// Contains reports whether r falls inside one of the intervals.
// rs must be minimized.
func (rs Ranges) Contains(r rune) bool {
	lo, hi := 0, len(rs)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case r < rs[mid].Lo:
			hi = mid
		case r > rs[mid].Hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Minimize returns a sorted copy of rs with overlapping and adjacent
// intervals merged. Pairs with Lo > Hi are discarded.
func (rs Ranges) Minimize() Ranges {
	if len(rs) == 0 {
		return nil
	}
	sorted := make(Ranges, 0, len(rs))
	for _, r := range rs {
		if r.Lo <= r.Hi {
			sorted = append(sorted, r)
		}
	}
	slices.SortFunc(sorted, func(a, b Range) int {
		if a.Lo != b.Lo {
			return int(a.Lo - b.Lo)
		}
		return int(a.Hi - b.Hi)
	})

	out := sorted[:0]
	for _, r := range sorted {
		if n := len(out); n > 0 && r.Lo <= out[n-1].Hi+1 {
			if r.Hi > out[n-1].Hi {
				out[n-1].Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Invert returns the complement of rs over [0, MaxRune]. The result is
// minimized regardless of the shape of the input.
func (rs Ranges) Invert() Ranges {
	m := rs.Minimize()
	out := make(Ranges, 0, len(m)+1)
	next := rune(0)
	for _, r := range m {
		if r.Lo > next {
			out = append(out, Range{Lo: next, Hi: r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= MaxRune {
		out = append(out, Range{Lo: next, Hi: MaxRune})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Union merges any number of range lists into one minimized list.
func Union(lists ...Ranges) Ranges {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	all := make(Ranges, 0, n)
	for _, l := range lists {
		all = append(all, l...)
	}
	return all.Minimize()
}

// Width returns the total number of code points covered by rs.
func (rs Ranges) Width() int {
	w := 0
	for _, r := range rs {
		w += r.Width()
	}
	return w
}

// IsASCII reports whether every covered code point is below 0x80.
func (rs Ranges) IsASCII() bool {
	return len(rs) == 0 || rs[len(rs)-1].Hi < utf8.RuneSelf
}

// IsFull reports whether rs covers the whole code-point universe.
func (rs Ranges) IsFull() bool {
	return len(rs) == 1 && rs[0].Lo == 0 && rs[0].Hi >= MaxRune
}

// Expand lists every code point covered by rs as a Set. It returns false
// when the total width exceeds limit.
func (rs Ranges) Expand(limit int) (Set, bool) {
	if rs.Width() > limit {
		return nil, false
	}
	out := make(Set, 0, rs.Width())
	for _, r := range rs {
		for c := r.Lo; c <= r.Hi; c++ {
			out = append(out, c)
		}
	}
	return out, true
}

// Equal reports whether rs and other describe the same intervals.
func (rs Ranges) Equal(other Ranges) bool {
	return slices.Equal(rs, other)
}

func (rs Ranges) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, r := range rs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeRune(&sb, r.Lo)
		if r.Hi != r.Lo {
			sb.WriteByte('-')
			writeRune(&sb, r.Hi)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func writeRune(sb *strings.Builder, r rune) {
	switch {
	case r >= 0x21 && r < 0x7F:
		sb.WriteRune(r)
	case r < 0x10000:
		sb.WriteString(`\u`)
		sb.WriteString(hex(r, 4))
	default:
		sb.WriteString(`\U`)
		sb.WriteString(hex(r, 8))
	}
}

func hex(r rune, digits int) string {
	const alphabet = "0123456789ABCDEF"
	buf := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		buf[i] = alphabet[r&0xF]
		r >>= 4
	}
	return string(buf)
}
