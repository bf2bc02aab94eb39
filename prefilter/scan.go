package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/internal/memchr"
	"github.com/coregx/pcregex/internal/utf8x"
	"github.com/coregx/pcregex/literal"
)

// byteSet scans for a head made of ASCII code points.
//
// One to three members use memchr; larger sets use a membership table.
type byteSet struct {
	members []byte
	table   memchr.Table
}

func newByteSet(set charset.Set) Prefilter {
	p := &byteSet{members: make([]byte, 0, len(set))}
	for _, r := range set {
		p.members = append(p.members, byte(r))
		p.table[byte(r)] = true
	}
	return p
}

// Find implements Prefilter.
func (p *byteSet) Find(haystack []byte, start int) int {
	h := haystack[start:]
	var i int
	switch len(p.members) {
	case 0:
		return -1
	case 1:
		i = memchr.Memchr(h, p.members[0])
	case 2:
		i = memchr.Memchr2(h, p.members[0], p.members[1])
	case 3:
		i = memchr.Memchr3(h, p.members[0], p.members[1], p.members[2])
	default:
		i = memchr.IndexTable(h, &p.table)
	}
	if i < 0 {
		return -1
	}
	return start + i
}

// IsComplete implements Prefilter.
func (p *byteSet) IsComplete() bool { return false }

// HeapBytes implements Prefilter.
func (p *byteSet) HeapBytes() int { return len(p.members) + len(p.table) }

func (p *byteSet) String() string {
	switch len(p.members) {
	case 1:
		return "memchr"
	case 2:
		return "memchr2"
	case 3:
		return "memchr3"
	default:
		return "byte-table"
	}
}

// substring scans for one literal.
type substring struct {
	finder   *memchr.Finder
	complete bool
}

func newSubstring(needle []byte, complete bool) Prefilter {
	return &substring{finder: memchr.NewFinder(needle), complete: complete}
}

// Find implements Prefilter.
func (p *substring) Find(haystack []byte, start int) int {
	i := p.finder.Find(haystack[start:])
	if i < 0 {
		return -1
	}
	return start + i
}

// IsComplete implements Prefilter.
func (p *substring) IsComplete() bool { return p.complete }

// LiteralLen implements LiteralLener.
func (p *substring) LiteralLen() int { return len(p.finder.Needle()) }

// HeapBytes implements Prefilter.
func (p *substring) HeapBytes() int { return len(p.finder.Needle()) }

func (p *substring) String() string { return "memmem" }

// literalSet scans for any of several literals with an Aho-Corasick
// automaton.
//
// Every literal is cut to the length of the shortest one. Among equally long
// needles the first match to end is also the first to start, so the search
// reports the leftmost candidate whatever the automaton's match semantics.
type literalSet struct {
	auto     *ahocorasick.Automaton
	patterns [][]byte
}

func newLiteralSet(seq *literal.Seq) Prefilter {
	n := seq.MinLen()
	builder := ahocorasick.NewBuilder()
	p := &literalSet{}
	seen := make(map[string]bool, seq.Len())
	for _, lit := range seq.Literals() {
		prefix := lit.Bytes[:n]
		if seen[string(prefix)] {
			continue
		}
		seen[string(prefix)] = true
		builder.AddPattern(prefix)
		p.patterns = append(p.patterns, prefix)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	p.auto = auto
	return p
}

// Find implements Prefilter.
func (p *literalSet) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete implements Prefilter.
func (p *literalSet) IsComplete() bool { return false }

// HeapBytes implements Prefilter.
func (p *literalSet) HeapBytes() int {
	total := 0
	for _, pat := range p.patterns {
		total += len(pat)
	}
	return total
}

// Patterns returns the needles the automaton searches for.
func (p *literalSet) Patterns() [][]byte { return p.patterns }

func (p *literalSet) String() string { return "aho-corasick" }

// classScan scans for a head class containing non-ASCII code points.
//
// A table holding the ASCII members and every UTF-8 lead byte locates
// candidates; lead bytes are then decoded and tested against the class.
// Continuation and invalid bytes never start a match.
type classScan struct {
	table    memchr.Table
	contains func(rune) bool
	size     int
	name     string
}

func newClassScan(rs charset.Ranges, contains func(rune) bool, name string) Prefilter {
	p := &classScan{contains: contains, size: len(rs), name: name}
	for _, r := range rs {
		for c := r.Lo; c <= r.Hi && c < 0x80; c++ {
			p.table[c] = true
		}
	}
	for b := 0xC2; b <= 0xF4; b++ {
		p.table[b] = true
	}
	return p
}

// Find implements Prefilter.
func (p *classScan) Find(haystack []byte, start int) int {
	for i := start; i < len(haystack); i++ {
		j := memchr.IndexTable(haystack[i:], &p.table)
		if j < 0 {
			return -1
		}
		i += j
		if haystack[i] < 0x80 {
			return i
		}
		if r, _, ok := utf8x.DecodeForward(haystack[i:]); ok && p.contains(r) {
			return i
		}
	}
	return -1
}

// IsComplete implements Prefilter.
func (p *classScan) IsComplete() bool { return false }

// HeapBytes implements Prefilter.
func (p *classScan) HeapBytes() int { return len(p.table) + 8*p.size }

func (p *classScan) String() string { return p.name }
