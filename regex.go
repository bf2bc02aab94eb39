// Package pcregex provides a backtracking-capable regex engine for Go with
// PCRE-style lookahead, atomic groups, possessive quantifiers and recursion.
//
// Patterns compile into a node graph that runs on one of two executors:
//   - PikeVM: linear-time breadth-first simulation, used whenever the
//     pattern has no backtracking-only construct
//   - Backtracker: depth-first executor for everything else, and for
//     capture groups
//
// A prefilter derived from the head of the pattern skips input that cannot
// start a match.
//
// A pattern is compiled once and shared:
//
//	var word = pcregex.MustCompile(`\b\w+\b`)
//	fmt.Println(word.FindAllString("two words", -1)) // [two words]
//
// Linear-time matching can be enforced:
//
//	config := pcregex.DefaultConfig()
//	config.EnforceLinearTime = true // reject lookahead, atomic groups, (?R)
//	re, err := pcregex.CompileWithConfig(`\b\w+\b`, config)
//
// Matching works on bytes. Invalid UTF-8 in the haystack matches no class
// or literal; start positions advance one code point at a time, or one byte
// over undecodable input.
package pcregex

import (
	"strconv"
	"strings"

	"github.com/coregx/pcregex/meta"
	"github.com/coregx/pcregex/nfa"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines.
type Regex struct {
	engine  *meta.Engine
	pattern string
}

// Config controls compilation. See meta.Config for the options.
type Config = meta.Config

// Captures holds the group spans of one match.
type Captures = meta.Captures

// Span is a half-open byte range [Start, End) of the haystack.
type Span = nfa.Span

// Compile parses pattern and builds an engine with DefaultConfig. Errors
// are *syntax.Error values; errors.Is matches their kind sentinels.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics on error. It suits package-level
// variables.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err == nil {
		return re
	}
	panic("pcregex: Compile(" + strconv.Quote(pattern) + "): " + err.Error())
}

// CompileWithConfig is Compile with explicit options. An invalid config
// fails with an error wrapping meta.ErrInvalidConfig.
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	engine, err := meta.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	return FromEngine(engine), nil
}

// FromEngine wraps an engine built with meta.NewEngine, such as one from
// generated code.
func FromEngine(engine *meta.Engine) *Regex {
	return &Regex{engine: engine, pattern: engine.Pattern()}
}

// DefaultConfig is meta.DefaultConfig.
func DefaultConfig() Config {
	return meta.DefaultConfig()
}

// QuoteMeta escapes every byte of s that the parser treats specially, so
// that the result matches s literally: QuoteMeta(`[a]`) is `\[a\]`.
func QuoteMeta(s string) string {
	var b strings.Builder
	for i := range len(s) {
		if strings.IndexByte(metaBytes, s[i]) >= 0 {
			if b.Len() == 0 {
				b.Grow(len(s) + 8)
				b.WriteString(s[:i])
			}
			b.WriteByte('\\')
		} else if b.Len() == 0 {
			continue
		}
		b.WriteByte(s[i])
	}
	if b.Len() == 0 {
		return s
	}
	return b.String()
}

const metaBytes = `\.+*?()|[]{}^$-#`

// Engine returns the underlying engine.
func (r *Regex) Engine() *meta.Engine {
	return r.engine
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// NumSubexp returns the number of parenthesized subexpressions in this Regex.
func (r *Regex) NumSubexp() int {
	return r.engine.NumCaptures()
}

// SubexpNames returns the names of the parenthesized subexpressions.
// Index 0 is always "" and unnamed groups are "".
func (r *Regex) SubexpNames() []string {
	return r.engine.SubexpNames()
}

// SubexpIndex returns the index of the first subexpression with the given
// name, or -1 if there is none.
func (r *Regex) SubexpIndex(name string) int {
	if name != "" {
		for i, n := range r.engine.SubexpNames() {
			if n == name {
				return i
			}
		}
	}
	return -1
}

// IsMatch reports whether b contains any match of the pattern.
func (r *Regex) IsMatch(b []byte) bool {
	return r.engine.IsMatch(b)
}

// Match is an alias of IsMatch, named as in the standard library.
func (r *Regex) Match(b []byte) bool {
	return r.engine.IsMatch(b)
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.engine.IsMatch([]byte(s))
}

// Find returns a slice holding the text of the leftmost match in b.
// Returns nil if no match is found.
//
// Example:
//
//	re := pcregex.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	match := r.engine.Find(b)
	if match == nil {
		return nil
	}
	return match.Bytes()
}

// FindString returns the text of the leftmost match in s, or "".
func (r *Regex) FindString(s string) string {
	match := r.engine.Find([]byte(s))
	if match == nil {
		return ""
	}
	return s[match.Start():match.End()]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. The match itself is at b[loc[0]:loc[1]].
// Returns nil if no match is found.
func (r *Regex) FindIndex(b []byte) []int {
	match := r.engine.Find(b)
	if match == nil {
		return nil
	}
	return []int{match.Start(), match.End()}
}

// FindStringIndex is FindIndex for strings.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSpan returns the bounds of the leftmost match.
func (r *Regex) FindSpan(b []byte) (Span, bool) {
	match := r.engine.Find(b)
	if match == nil {
		return Span{}, false
	}
	return match.Span(), true
}

// FindAll returns a slice of all successive non-overlapping matches in b.
// If n >= 0, returns at most n matches. Returns nil if there is no match.
//
// After an empty match the search resumes one code point later, so a
// pattern such as `x*` reports an empty match at every position it cannot
// extend.
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	spans := r.engine.FindAllSpans(b, n)
	if len(spans) == 0 {
		return nil
	}
	out := make([][]byte, len(spans))
	for i, s := range spans {
		out[i] = b[s.Start:s.End:s.End]
	}
	return out
}

// FindAllString is FindAll for strings.
func (r *Regex) FindAllString(s string, n int) []string {
	spans := r.engine.FindAllSpans([]byte(s), n)
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp.Start:sp.End]
	}
	return out
}

// FindAllIndex returns the locations of all successive matches in b.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	spans := r.engine.FindAllSpans(b, n)
	if len(spans) == 0 {
		return nil
	}
	out := make([][]int, len(spans))
	for i, s := range spans {
		out[i] = []int{s.Start, s.End}
	}
	return out
}

// FindAllStringIndex is FindAllIndex for strings.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAllSpans returns the bounds of all successive matches in b.
func (r *Regex) FindAllSpans(b []byte, n int) []Span {
	return r.engine.FindAllSpans(b, n)
}

// Count returns the number of non-overlapping matches of the pattern in b.
// If n >= 0, counts at most n matches.
func (r *Regex) Count(b []byte, n int) int {
	return len(r.engine.FindAllSpans(b, n))
}

// Captures returns every span recorded for every group of the leftmost
// match, or nil. Groups inside quantifiers record one span per iteration.
//
// Example:
//
//	re := pcregex.MustCompile(`(?<d>\d)+`)
//	caps := re.Captures([]byte("x123"))
//	caps.Name("d") // [1,2) [2,3) [3,4)
func (r *Regex) Captures(b []byte) *Captures {
	return r.engine.Captures(b)
}

// FindSubmatch returns the text of the leftmost match and of its groups, in
// the layout of the standard library: element i is the last text captured
// by group i, or nil.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	caps := r.engine.Captures(b)
	if caps == nil {
		return nil
	}
	out := make([][]byte, caps.Len())
	for i := range out {
		out[i] = caps.Text(i)
	}
	return out
}

// FindStringSubmatch is FindSubmatch for strings.
func (r *Regex) FindStringSubmatch(s string) []string {
	caps := r.engine.Captures([]byte(s))
	if caps == nil {
		return nil
	}
	out := make([]string, caps.Len())
	for i := range out {
		if span, ok := caps.Group(i); ok {
			out[i] = s[span.Start:span.End]
		}
	}
	return out
}

// FindSubmatchIndex returns index pairs for the leftmost match and its
// groups; a group that did not participate is -1, -1.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	return submatchIndex(r.engine.Captures(b))
}

// FindStringSubmatchIndex is FindSubmatchIndex for strings.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

func submatchIndex(caps *Captures) []int {
	if caps == nil {
		return nil
	}
	out := make([]int, 2*caps.Len())
	for i := 0; i < caps.Len(); i++ {
		if span, ok := caps.Group(i); ok {
			out[2*i], out[2*i+1] = span.Start, span.End
		} else {
			out[2*i], out[2*i+1] = -1, -1
		}
	}
	return out
}
