package pcregex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/coregx/pcregex/meta"
	"github.com/coregx/pcregex/syntax"
)

func TestScenarios(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    [][]int
	}{
		{"literal", `hello`, "hello", [][]int{{0, 5}}},
		{"repetition", `a+b`, "aaaaab", [][]int{{0, 6}}},
		{"repetition miss", `a+b`, "b", nil},
		{"bounded group", `^(a|b|c){4,6}$`, "abcb", [][]int{{0, 4}}},
		{"bounded group short", `^(a|b|c){4,6}$`, "aab", nil},
		{"email", `[\w\.+-]+@[\w\.-]+\.[\w\.-]+`, "ping me at foo.bar+baz@example.co.uk please", [][]int{{11, 36}}},
		{"lookahead", `^abc(?=def)d`, "abcdef", [][]int{{0, 4}}},
		{"lookahead miss", `^abc(?=def)d`, "abcdeg", nil},
		{"negative lookahead", `^abc(?!def)d`, "abcdeg", [][]int{{0, 4}}},
		{"negative lookahead miss", `^abc(?!def)d`, "abcdef", nil},
		{"atomic", `a+(?>b)a`, "aaaaaaaba", [][]int{{0, 9}}},
		{"atomic miss", `a+(?>b)a`, "aaaaaaabb", nil},
		{"recursion", `(?:a|b)(?R)?`, "baaaabaaaa", [][]int{{0, 10}}},
		{"word boundary", `\b\w+\b`, "This is a group", [][]int{{0, 4}, {5, 7}, {8, 9}, {10, 15}}},
		{"possessive", `a++a`, "aaaa", nil},
		{"lazy", `a+?`, "aaa", [][]int{{0, 1}, {1, 2}, {2, 3}}},
		{"empty after match", `x*`, "axb", [][]int{{0, 0}, {1, 2}, {2, 2}, {3, 3}}},
		{"empty on multibyte", ``, "é", [][]int{{0, 0}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			got := re.FindAllStringIndex(tt.input, -1)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindAllStringIndex(%q, %q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
			if re.MatchString(tt.input) != (tt.want != nil) {
				t.Errorf("MatchString(%q) = %v", tt.input, re.MatchString(tt.input))
			}
		})
	}
}

// TestMatchFindAgree checks that IsMatch holds exactly when Find returns a
// match, and that FindAll yields strictly increasing starts.
func TestMatchFindAgree(t *testing.T) {
	patterns := []string{
		`a+b`, `(?=ab)a`, `(?!a)\w`, `\bx`, `(a|ab)(c|bcd)(d*)`, `[α-ω]+`,
		`(?>a|ab)c`, `(?:ab)*+b`, `^$`, `$`, `\B`, `a(?R)?b`, `[^\n]+$`,
	}
	inputs := []string{"", "a", "ab", "abcd", "xx ab abc", "βγ a\nb", "\xffab\xfe", "aaab x"}

	for _, pattern := range patterns {
		re := MustCompile(pattern)
		for _, input := range inputs {
			b := []byte(input)
			loc := re.FindIndex(b)
			if re.Match(b) != (loc != nil) {
				t.Errorf("%q on %q: Match = %v, FindIndex = %v", pattern, input, re.Match(b), loc)
			}
			all := re.FindAllIndex(b, -1)
			if loc != nil && (len(all) == 0 || !reflect.DeepEqual(all[0], loc)) {
				t.Errorf("%q on %q: FindAll[0] = %v, Find = %v", pattern, input, all, loc)
			}
			for i := 1; i < len(all); i++ {
				if all[i][0] <= all[i-1][0] || all[i][0] < all[i-1][1] {
					t.Errorf("%q on %q: matches not increasing: %v", pattern, input, all)
				}
			}
		}
	}
}

func TestCaptures(t *testing.T) {
	re := MustCompile(`(?<user>\w+)@(\w+)\.com`)
	caps := re.Captures([]byte("mail joe@example.com"))
	if caps == nil {
		t.Fatal("no match")
	}
	if got := string(caps.Text(0)); got != "joe@example.com" {
		t.Errorf("group 0 = %q", got)
	}
	if got := caps.Name("user"); len(got) != 1 || got[0] != (Span{Start: 5, End: 8}) {
		t.Errorf("user = %v", got)
	}
	if re.SubexpIndex("user") != 1 || re.SubexpIndex("host") != -1 {
		t.Errorf("SubexpIndex wrong")
	}
	if re.NumSubexp() != 2 {
		t.Errorf("NumSubexp = %d", re.NumSubexp())
	}
	if got := re.SubexpNames(); !reflect.DeepEqual(got, []string{"", "user", ""}) {
		t.Errorf("SubexpNames = %q", got)
	}
}

func TestCapturesRepeated(t *testing.T) {
	re := MustCompile(`(\d)+`)
	caps := re.Captures([]byte("x123"))
	want := []Span{{1, 2}, {2, 3}, {3, 4}}
	if got := caps.Spans(1); !reflect.DeepEqual(got, want) {
		t.Errorf("Spans(1) = %v, want %v", got, want)
	}
	if got := re.FindStringSubmatch("x123"); !reflect.DeepEqual(got, []string{"123", "3"}) {
		t.Errorf("FindStringSubmatch = %q", got)
	}
}

func TestFindSubmatchIndex(t *testing.T) {
	re := MustCompile(`(a)|(b)`)
	if got := re.FindStringSubmatchIndex("xb"); !reflect.DeepEqual(got, []int{1, 2, -1, -1, 1, 2}) {
		t.Errorf("FindStringSubmatchIndex = %v", got)
	}
	if re.FindSubmatchIndex([]byte("xyz")) != nil {
		t.Error("expected nil without a match")
	}
	if got := re.FindSubmatch([]byte("a")); string(got[1]) != "a" || got[2] != nil {
		t.Errorf("FindSubmatch = %q", got)
	}
}

func TestEmptyBodiesInLoops(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    [][]int
	}{
		{`(?:(?!x))+`, "", [][]int{{0, 0}}},
		{`(?:(?!x))+`, "ax", [][]int{{0, 0}, {2, 2}}},
		{`(?:(?!x)|a)+`, "", [][]int{{0, 0}}},
		{`(a?+)*b`, "", nil},
		{`(a?+)*b`, "ab", [][]int{{0, 2}}},
		{`((?>c?))*`, "ccx", [][]int{{0, 2}, {2, 2}, {3, 3}}},
		{`(c{0}+)*`, "", [][]int{{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.FindAllStringIndex(tt.input, -1); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindAllStringIndex(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got, want := re.MatchString(tt.input), tt.want != nil; got != want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestFailedLookaroundDropsCaptures(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    []int
	}{
		{`(?!(?>(a))b)a`, "ac", []int{0, 1, -1, -1}},
		{`(?=(?>(a))x)|a`, "ac", []int{0, 1, -1, -1}},
		{`(?!(a)b)a`, "ac", []int{0, 1, -1, -1}},
		{`((?>c?))*`, "", []int{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			if got := re.FindStringSubmatchIndex(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindStringSubmatchIndex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindVariants(t *testing.T) {
	re := MustCompile(`\d+`)
	if got := string(re.Find([]byte("age: 42"))); got != "42" {
		t.Errorf("Find = %q", got)
	}
	if got := re.FindString("none"); got != "" {
		t.Errorf("FindString = %q", got)
	}
	if span, ok := re.FindSpan([]byte("a 7")); !ok || span != (Span{Start: 2, End: 3}) {
		t.Errorf("FindSpan = %v, %v", span, ok)
	}
	if got := re.FindAllString("1 22 333", 2); !reflect.DeepEqual(got, []string{"1", "22"}) {
		t.Errorf("FindAllString = %q", got)
	}
	if got := re.FindAll([]byte("no digits"), -1); got != nil {
		t.Errorf("FindAll = %q", got)
	}
	if got := re.Count([]byte("1 2 3 4"), -1); got != 4 {
		t.Errorf("Count = %d", got)
	}
	if re.String() != `\d+` {
		t.Errorf("String = %q", re.String())
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		repl    string
		replace func(*Regex, string, string) string
		want    string
	}{
		{"first", `\d+`, "1 and 2", "N", (*Regex).ReplaceFirstString, "N and 2"},
		{"first no match", `\d+`, "none", "N", (*Regex).ReplaceFirstString, "none"},
		{"first lookahead", `^abc(?=def)d`, "abcdef", "X", (*Regex).ReplaceFirstString, "Xef"},
		{"first literal dollar", `b`, "abc", "$1", (*Regex).ReplaceFirstString, "a$1c"},
		{"literal", `\d+`, "1 2 3", "X", (*Regex).ReplaceAllLiteralString, "X X X"},
		{"expand numbered", `(\w+)@(\w+)`, "a@b c@d", "$2@$1", (*Regex).ReplaceAllString, "b@a d@c"},
		{"expand named", `(?<k>\w+)=(\w+)`, "x=1", "${k}:$2", (*Regex).ReplaceAllString, "x:1"},
		{"expand dollar", `\d`, "a1", "$$", (*Regex).ReplaceAllString, "a$"},
		{"expand braces", `(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)(k)`, "abcdefghijk", "${11}", (*Regex).ReplaceAllString, "k"},
		{"expand missing group", `(a)|b`, "b", "[$1]", (*Regex).ReplaceAllString, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.replace(MustCompile(tt.pattern), tt.input, tt.repl)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceFirstCopies(t *testing.T) {
	src := []byte("abc")
	out := MustCompile(`x`).ReplaceFirst(src, nil)
	out[0] = 'z'
	if string(src) != "abc" {
		t.Error("ReplaceFirst returned the input slice")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		n       int
		want    []string
	}{
		{`,\s*`, "a, b,c", -1, []string{"a", "b", "c"}},
		{`,`, "a,b,c", 2, []string{"a", "b,c"}},
		{`,`, "abc", -1, []string{"abc"}},
		{`,`, "a,b", 0, nil},
	}
	for _, tt := range tests {
		got := MustCompile(tt.pattern).Split(tt.input, tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q, %q, %d) = %q, want %q", tt.pattern, tt.input, tt.n, got, tt.want)
		}
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"hello", "hello"},
		{"#x", `\#x`},
		{"1+1=2?", `1\+1=2\?`},
		{"[a-z]", `\[a\-z\]`},
		{"$5.00", `\$5\.00`},
	}
	for _, tt := range tests {
		got := QuoteMeta(tt.input)
		if got != tt.want {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.input, got, tt.want)
		}
		re := MustCompile(got)
		if re.FindString("x"+tt.input+"x") != tt.input {
			t.Errorf("quoted %q does not match itself", tt.input)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{`(a`, syntax.ErrUnbalancedParenthesis},
		{`a)`, syntax.ErrUnbalancedParenthesis},
		{`[a`, syntax.ErrUnbalancedBracket},
		{`[z-a]`, syntax.ErrInvalidRange},
		{`*a`, syntax.ErrInvalidQuantifier},
		{`a{3,2}`, syntax.ErrInvalidQuantifier},
		{`\1`, syntax.ErrUnsupportedFeature},
	}
	for _, tt := range tests {
		_, err := Compile(tt.pattern)
		if !errors.Is(err, tt.want) {
			t.Errorf("Compile(%q) err = %v, want %v", tt.pattern, err, tt.want)
		}
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile(`(`)
}

func TestCompileWithConfig(t *testing.T) {
	config := DefaultConfig()
	config.DotAll = true
	re, err := CompileWithConfig(`a.b`, config)
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("a\nb") {
		t.Error("dot should match newline with DotAll")
	}
	if MustCompile(`a.b`).MatchString("a\nb") {
		t.Error("dot should not match newline by default")
	}

	config = DefaultConfig()
	config.CaseInsensitive = true
	re, err = CompileWithConfig(`hello`, config)
	if err != nil {
		t.Fatal(err)
	}
	if got := re.FindString("say HeLLo"); got != "HeLLo" {
		t.Errorf("case-insensitive FindString = %q", got)
	}

	config = DefaultConfig()
	config.EnforceLinearTime = true
	if _, err := CompileWithConfig(`a(?=b)`, config); !errors.Is(err, syntax.ErrLinearTimeViolation) {
		t.Errorf("err = %v, want ErrLinearTimeViolation", err)
	}
}

func TestFromEngine(t *testing.T) {
	engine, err := meta.Compile(`b+`)
	if err != nil {
		t.Fatal(err)
	}
	re := FromEngine(engine)
	if re.Engine() != engine || re.String() != `b+` {
		t.Error("FromEngine did not wrap the engine")
	}
	if got := re.FindString("abbc"); got != "bb" {
		t.Errorf("FindString = %q", got)
	}
}
