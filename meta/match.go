package meta

import (
	"github.com/coregx/pcregex/nfa"
)

// Match represents a successful match with position information.
//
// The haystack is stored by reference (not copied). Callers must ensure the
// haystack remains valid for the lifetime of the Match.
//
// Example:
//
//	match := meta.NewMatch(5, 11, []byte("test foo123 end"))
//	println(match.String()) // "foo123"
type Match struct {
	start    int
	end      int
	haystack []byte
}

// NewMatch creates a new Match from start and end positions.
func NewMatch(start, end int, haystack []byte) *Match {
	return &Match{start: start, end: end, haystack: haystack}
}

// Start returns the inclusive start position of the match.
func (m *Match) Start() int {
	return m.start
}

// End returns the exclusive end position of the match.
func (m *Match) End() int {
	return m.end
}

// Len returns the length of the match in bytes.
func (m *Match) Len() int {
	return m.end - m.start
}

// Span returns the match bounds.
func (m *Match) Span() nfa.Span {
	return nfa.Span{Start: m.start, End: m.end}
}

// Bytes returns the matched bytes as a view into the haystack.
func (m *Match) Bytes() []byte {
	return m.haystack[m.start:m.end]
}

// String returns the matched text.
func (m *Match) String() string {
	return string(m.Bytes())
}

// IsEmpty returns true if the match has zero length.
func (m *Match) IsEmpty() bool {
	return m.start == m.end
}

// Captures holds the spans recorded for every group of one match.
//
// A group inside a quantifier records one span per iteration, in the order
// the iterations completed. Groups that did not participate have no spans.
type Captures struct {
	haystack []byte
	groups   [][]nfa.Span
	names    []string
}

// Len returns the number of groups, including group 0.
func (c *Captures) Len() int {
	return len(c.groups)
}

// Spans returns every span recorded for group i, or nil when the group did
// not participate or does not exist.
func (c *Captures) Spans(i int) []nfa.Span {
	if i < 0 || i >= len(c.groups) {
		return nil
	}
	return c.groups[i]
}

// Group returns the last span recorded for group i.
func (c *Captures) Group(i int) (nfa.Span, bool) {
	spans := c.Spans(i)
	if len(spans) == 0 {
		return nfa.Span{}, false
	}
	return spans[len(spans)-1], true
}

// Text returns the text of the last span of group i, or nil.
func (c *Captures) Text(i int) []byte {
	span, ok := c.Group(i)
	if !ok {
		return nil
	}
	return c.haystack[span.Start:span.End]
}

// Name returns every span recorded for the group called name.
func (c *Captures) Name(name string) []nfa.Span {
	for i, n := range c.names {
		if n != "" && n == name {
			return c.Spans(i)
		}
	}
	return nil
}

// Map returns the spans keyed by group number. Groups without spans are
// left out; group 0 is always present.
func (c *Captures) Map() map[int][]nfa.Span {
	out := make(map[int][]nfa.Span, len(c.groups))
	for i, spans := range c.groups {
		if len(spans) > 0 {
			out[i] = spans
		}
	}
	return out
}

// Named returns the spans of the named groups that participated.
func (c *Captures) Named() map[string][]nfa.Span {
	out := make(map[string][]nfa.Span)
	for i, n := range c.names {
		if n != "" && i < len(c.groups) && len(c.groups[i]) > 0 {
			out[n] = c.groups[i]
		}
	}
	return out
}
