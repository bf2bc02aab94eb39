package memchr

import "bytes"

// Memmem returns the index of the first instance of needle in haystack, or
// -1. An empty needle matches at 0.
//
// Candidates are located by scanning for the rarest byte of the needle and
// verified in place.
func Memmem(haystack, needle []byte) int {
	switch {
	case len(needle) == 0:
		return 0
	case len(needle) > len(haystack):
		return -1
	case len(needle) == 1:
		return Memchr(haystack, needle[0])
	}
	return NewFinder(needle).Find(haystack)
}

// Finder is a substring searcher with its rare byte precomputed.
type Finder struct {
	needle  []byte
	rare    byte
	rareIdx int
}

// NewFinder prepares a searcher for needle. needle must not be empty.
func NewFinder(needle []byte) *Finder {
	rare, idx := RareByte(needle)
	return &Finder{needle: needle, rare: rare, rareIdx: idx}
}

// Needle returns the searched bytes.
func (f *Finder) Needle() []byte {
	return f.needle
}

// Find returns the index of the first occurrence of the needle, or -1.
func (f *Finder) Find(haystack []byte) int {
	n := len(f.needle)
	from := f.rareIdx
	for from < len(haystack) {
		i := Memchr(haystack[from:], f.rare)
		if i < 0 {
			return -1
		}
		cand := from + i - f.rareIdx
		if cand+n > len(haystack) {
			return -1
		}
		if bytes.Equal(haystack[cand:cand+n], f.needle) {
			return cand
		}
		from += i + 1
	}
	return -1
}

// RareByte returns the byte of needle least likely to occur in typical text,
// and its first index.
func RareByte(needle []byte) (byte, int) {
	best, idx := needle[0], 0
	for i := 1; i < len(needle); i++ {
		if rank[needle[i]] < rank[best] {
			best, idx = needle[i], i
		}
	}
	return best, idx
}

// rank approximates how common a byte is in text and source code; lower is
// rarer.
var rank = func() (r [256]byte) {
	for b := range r {
		switch c := byte(b); {
		case c == ' ':
			r[b] = 255
		case c == 'e' || c == 't' || c == 'a' || c == 'o':
			r[b] = 230
		case c == 'i' || c == 'n' || c == 's' || c == 'r' || c == 'h' || c == 'l':
			r[b] = 200
		case c >= 'a' && c <= 'z':
			r[b] = 150
		case c >= '0' && c <= '9':
			r[b] = 140
		case c == '.' || c == ',' || c == '\n' || c == '_':
			r[b] = 180
		case c >= 'A' && c <= 'Z':
			r[b] = 90
		case c > ' ' && c < 0x7F:
			r[b] = 60
		case c >= 0x80:
			r[b] = 5
		}
	}
	for _, c := range []byte("qzxjQZXJ") {
		r[c] = 15
	}
	return r
}()
