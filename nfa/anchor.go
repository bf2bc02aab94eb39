package nfa

import (
	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/internal/utf8x"
)

// CheckAnchor reports whether the zero-width assertion kind holds at byte
// offset pos of haystack. It returns false for kinds outside the Anchor
// family.
func CheckAnchor(kind Kind, haystack []byte, pos int) bool {
	switch kind {
	case KindStartOfString:
		return pos == 0
	case KindEndOfString:
		return pos == len(haystack)
	case KindBeginningOfLine:
		return pos == 0 || haystack[pos-1] == '\n'
	case KindEndOfLine:
		return pos == len(haystack) || haystack[pos] == '\n'
	case KindWordBoundary:
		return IsWordBoundary(haystack, pos)
	case KindNotWordBoundary:
		return !IsWordBoundary(haystack, pos)
	default:
		return false
	}
}

// IsWordBoundary reports whether exactly one of the code points around pos
// is an ASCII word character. Undecodable bytes count as non-word.
func IsWordBoundary(haystack []byte, pos int) bool {
	return wordBefore(haystack, pos) != wordAfter(haystack, pos)
}

func wordBefore(haystack []byte, pos int) bool {
	r, _, ok := utf8x.DecodeBackward(haystack[:pos])
	return ok && charset.IsWord(r)
}

func wordAfter(haystack []byte, pos int) bool {
	r, _, ok := utf8x.DecodeForward(haystack[pos:])
	return ok && charset.IsWord(r)
}
