package prefilter

import (
	"github.com/coregx/pcregex/internal/memchr"
	"github.com/coregx/pcregex/internal/utf8x"
	"github.com/coregx/pcregex/nfa"
)

// anchor finds the positions where a zero-width head assertion holds.
type anchor struct {
	kind nfa.Kind
}

func newAnchor(kind nfa.Kind) Prefilter {
	return &anchor{kind: kind}
}

// Find implements Prefilter.
func (p *anchor) Find(haystack []byte, start int) int {
	switch p.kind {
	case nfa.KindStartOfString:
		if start == 0 {
			return 0
		}
		return -1
	case nfa.KindEndOfString:
		return len(haystack)
	case nfa.KindBeginningOfLine:
		if start == 0 || haystack[start-1] == '\n' {
			return start
		}
		i := memchr.Memchr(haystack[start:], '\n')
		if i < 0 {
			return -1
		}
		return start + i + 1
	case nfa.KindEndOfLine:
		i := memchr.Memchr(haystack[start:], '\n')
		if i < 0 {
			return len(haystack)
		}
		return start + i
	default:
		for pos := start; pos <= len(haystack); pos = utf8x.NextStart(haystack, pos) {
			if nfa.CheckAnchor(p.kind, haystack, pos) {
				return pos
			}
		}
		return -1
	}
}

// IsComplete implements Prefilter.
func (p *anchor) IsComplete() bool { return false }

// HeapBytes implements Prefilter.
func (p *anchor) HeapBytes() int { return 0 }

func (p *anchor) String() string {
	switch p.kind {
	case nfa.KindStartOfString:
		return "start-of-string"
	case nfa.KindEndOfString:
		return "end-of-string"
	case nfa.KindBeginningOfLine:
		return "line-start"
	case nfa.KindEndOfLine:
		return "line-end"
	case nfa.KindWordBoundary:
		return "word-boundary"
	default:
		return "not-word-boundary"
	}
}
