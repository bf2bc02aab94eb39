package pcregex

import (
	"reflect"
	"testing"
)

// Run with:
//
//	go test -fuzz=FuzzExecutorsAgree -fuzztime=30s

var fuzzSeeds = []struct {
	pattern string
	input   string
}{
	{`hello`, "say hello"},
	{`a+b`, "aaaaab"},
	{`^(a|b|c){4,6}$`, "abcb"},
	{`[\w\.+-]+@[\w\.-]+\.[\w\.-]+`, "foo.bar+baz@example.co.uk"},
	{`\b\w+\b`, "This is a group"},
	{`(a|ab)(c|bcd)(d*)`, "abcd"},
	{`x*`, "axb"},
	{``, "é"},
	{`[α-ω]+`, "αβγ"},
	{`(?:a*)*b`, "aaaaaaaaaaaaaaaaaaaac"},
	{`a*?$`, "aa\naa"},
	{`\B.`, "ab\xffcd"},
	{`(?:(?!x))+`, ""},
	{`(?:(?!x)|a)*b`, "aab"},
	{`((?>x?))*y`, "xxy"},
	{`(x?+)+y`, "y"},
	{`(?:a|b)(?R)?`, "baaaabaaaa"},
}

// FuzzExecutorsAgree compiles each pattern for the PikeVM and for the
// backtracker and checks that both report the same matches.
func FuzzExecutorsAgree(f *testing.F) {
	for _, seed := range fuzzSeeds {
		f.Add(seed.pattern, seed.input)
	}

	pike := DefaultConfig()
	bt := DefaultConfig()
	bt.EnablePikeVM = false
	bare := DefaultConfig()
	bare.EnablePrefilter = false
	bare.EnablePikeVM = false

	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 64 || len(input) > 256 {
			return
		}
		a, err := CompileWithConfig(pattern, pike)
		if err != nil {
			return
		}
		b := mustCompileWithConfig(t, pattern, bt)
		c := mustCompileWithConfig(t, pattern, bare)

		h := []byte(input)
		want := a.FindAllIndex(h, -1)
		for _, other := range []*Regex{b, c} {
			if got := other.FindAllIndex(h, -1); !reflect.DeepEqual(got, want) {
				t.Fatalf("%q on %q: %v, default engine %v", pattern, input, got, want)
			}
		}
		if a.Match(h) != (want != nil) {
			t.Fatalf("%q on %q: Match = %v, FindAll = %v", pattern, input, a.Match(h), want)
		}
		if caps := a.Captures(h); (caps != nil) != (want != nil) {
			t.Fatalf("%q on %q: Captures disagrees with FindAll", pattern, input)
		} else if caps != nil {
			if span, _ := caps.Group(0); span.Start != want[0][0] || span.End != want[0][1] {
				t.Fatalf("%q on %q: Captures group 0 = %v, want %v", pattern, input, span, want[0])
			}
		}
	})
}

func mustCompileWithConfig(t *testing.T, pattern string, config Config) *Regex {
	t.Helper()
	re, err := CompileWithConfig(pattern, config)
	if err != nil {
		t.Fatalf("CompileWithConfig(%q): %v", pattern, err)
	}
	return re
}
