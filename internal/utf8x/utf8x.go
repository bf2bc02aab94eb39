// Package utf8x provides the UTF-8 primitives the matching engines use to
// walk a subject byte slice one code point at a time.
//
// All positions handled by the engines are byte offsets. The subject is never
// converted to a rune slice; instead each engine decodes the code point at the
// current offset, evaluates its predicate and advances by the decoded width.
package utf8x

import "unicode/utf8"

// MaxRune is the largest valid code point.
const MaxRune = utf8.MaxRune

// DecodeForward decodes the code point at the start of b.
//
// It returns ok=false for empty input, invalid sequences, surrogate halves
// and non-shortest encodings. Otherwise it returns the code point and its
// encoded length (1-4).
func DecodeForward(b []byte) (r rune, size int, ok bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	if c := b[0]; c < utf8.RuneSelf {
		return rune(c), 1, true
	}
	r, size = utf8.DecodeRune(b)
	// DecodeRune reports errors as (RuneError, 0|1); a genuine U+FFFD has width 3.
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	return r, size, true
}

// DecodeBackward decodes the code point that ends exactly at len(b).
//
// At most four bytes are inspected. ok is false when b is empty or when no
// valid sequence ends at the end of the slice, so a prefix that stops in the
// middle of a multi-byte sequence never yields a code point.
func DecodeBackward(b []byte) (r rune, size int, ok bool) {
	n := len(b)
	if n == 0 {
		return 0, 0, false
	}
	if c := b[n-1]; c < utf8.RuneSelf {
		return rune(c), 1, true
	}
	r, size = utf8.DecodeLastRune(b)
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	return r, size, true
}

// NextStart returns the next candidate start offset after i.
//
// A valid sequence is stepped over as a whole. An invalid or truncated
// sequence advances by a single byte, so a valid code point that follows a
// broken lead byte is never skipped. When i is already at or past the end,
// len(b)+1 is returned so that loops of the form `for i <= len(b)` terminate.
func NextStart(b []byte, i int) int {
	if i >= len(b) {
		return len(b) + 1
	}
	if _, size, ok := DecodeForward(b[i:]); ok {
		return i + size
	}
	return i + 1
}

// IsBoundary reports whether offset i starts a code point in b, i.e. it is 0,
// len(b), or b[i] is not a continuation byte.
func IsBoundary(b []byte, i int) bool {
	if i <= 0 || i >= len(b) {
		return i == 0 || i == len(b)
	}
	return utf8.RuneStart(b[i])
}
