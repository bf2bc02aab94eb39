package charset

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Builder accumulates the members of a character class while it is parsed.
//
// Single code points are kept in an ordered tree set so that duplicates
// collapse as they are added; intervals are collected separately and merged
// when the builder is frozen.
type Builder struct {
	singles *treeset.Set
	ranges  Ranges
}

// NewBuilder returns an empty class builder.
func NewBuilder() *Builder {
	return &Builder{singles: treeset.NewWith(utils.RuneComparator)}
}

// AddRune adds one code point.
func (b *Builder) AddRune(r rune) {
	b.singles.Add(r)
}

// AddRange adds the inclusive interval [lo, hi]. A single-element interval is
// stored as a code point.
func (b *Builder) AddRange(lo, hi rune) {
	if lo == hi {
		b.AddRune(lo)
		return
	}
	b.ranges = append(b.ranges, Range{Lo: lo, Hi: hi})
}

// AddRanges adds every interval of rs.
func (b *Builder) AddRanges(rs Ranges) {
	for _, r := range rs {
		b.AddRange(r.Lo, r.Hi)
	}
}

// AddSet adds every member of s.
func (b *Builder) AddSet(s Set) {
	for _, r := range s {
		b.AddRune(r)
	}
}

// FoldASCII adds the other ASCII case of every letter already present.
func (b *Builder) FoldASCII() {
	for _, v := range b.singles.Values() {
		if f, ok := SwapASCIICase(v.(rune)); ok {
			b.singles.Add(f)
		}
	}
	for _, r := range b.ranges {
		for _, letters := range [...]Range{{'A', 'Z'}, {'a', 'z'}} {
			lo, hi := max(r.Lo, letters.Lo), min(r.Hi, letters.Hi)
			if lo > hi {
				continue
			}
			flo, _ := SwapASCIICase(lo)
			fhi, _ := SwapASCIICase(hi)
			b.ranges = append(b.ranges, Range{Lo: flo, Hi: fhi})
		}
	}
}

// Set returns the single code points in ascending order.
func (b *Builder) Set() Set {
	vals := b.singles.Values()
	out := make(Set, len(vals))
	for i, v := range vals {
		out[i] = v.(rune)
	}
	return out
}

// Ranges returns every member, code points and intervals alike, as one
// minimized range list.
func (b *Builder) Ranges() Ranges {
	return Union(b.Set().Ranges(), b.ranges)
}

// SwapASCIICase returns the other case of an ASCII letter.
func SwapASCIICase(r rune) (rune, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return r - ('a' - 'A'), true
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A'), true
	}
	return r, false
}
