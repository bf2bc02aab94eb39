package nfa

import (
	"strings"
	"testing"
)

type findCase struct {
	name    string
	pattern string
	input   string
	want    Span
	ok      bool
}

func noMatch(name, pattern, input string) findCase {
	return findCase{name: name, pattern: pattern, input: input}
}

func match(name, pattern, input string, start, end int) findCase {
	return findCase{name: name, pattern: pattern, input: input, want: Span{start, end}, ok: true}
}

var backtrackCases = []findCase{
	match("literal", `hello`, "hello", 0, 5),
	match("plus", `a+b`, "aaaaab", 0, 6),
	noMatch("plus needs one", `a+b`, "b"),
	match("bounded alternation", `^(a|b|c){4,6}$`, "abcb", 0, 4),
	noMatch("bounded alternation too short", `^(a|b|c){4,6}$`, "aab"),
	match("lookahead", `^abc(?=def)d`, "abcdef", 0, 4),
	noMatch("lookahead fails", `^abc(?=def)d`, "abcdeg"),
	noMatch("negative lookahead fails", `^abc(?!def)d`, "abcdef"),
	match("negative lookahead", `^abc(?!def)d`, "abcdeg", 0, 4),
	match("atomic", `a+(?>b)a`, "aaaaaaaba", 0, 9),
	noMatch("atomic commits", `a+(?>b)a`, "aaaaaaabb"),
	match("recursion", `(?:a|b)(?R)?`, "baaaabaaaa", 0, 10),
	noMatch("recursion no match", `(?:a|b)(?R)?`, "c"),
	match("word", `\b\w+\b`, "This is a group", 0, 4),
	match("lazy", `a*?b`, "aab", 0, 3),
	match("lazy stops early", `a+?`, "aaa", 0, 1),
	match("leftmost first", `(a|ab)(c|bcd)(d*)`, "abcd", 0, 4),
	noMatch("possessive", `a*+a`, "aaa"),
	match("empty match", `x*`, "abc", 0, 0),
	match("empty loop", `(?:)*a`, "ba", 1, 2),
	noMatch("nested star terminates", `(a*)*b`, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaac"),
	match("bare lookahead", `(?=a)`, "ba", 1, 1),
	match("bare negative lookahead", `(?!a)`, "aab", 2, 2),
	noMatch("atomic alternation", `(?>a|ab)c`, "abc"),
	match("digits", `\d+`, "ab123c", 2, 5),
	match("begin line", `^b`, "a\nb", 2, 3),
	match("end line", `a$`, "a\nb", 0, 1),
	noMatch("end of string", `a\z`, "a\nb"),
	match("start of string", `\Ab`, "b\nb", 0, 1),
	match("non-ascii", `é+`, "café", 3, 5),
	match("dot skips newline", `a.c`, "a\nc abc", 4, 7),
	match("nested negative lookahead", `a(?!b(?!c))`, "abc", 0, 1),
	noMatch("nested negative lookahead fails", `a(?!b(?!c))`, "abd"),
	noMatch("atomic inside negative lookahead", `(?!(?>a)b)a`, "ab"),
	match("atomic inside negative lookahead holds", `(?!(?>a)b)a`, "ac", 0, 1),
	match("atomic inside lookahead", `(?=(?>a+))a`, "aa", 0, 1),
	match("non word boundary", `\Bb`, "ab b", 1, 2),
	match("recursion balanced", `\((?:[^()]|(?R))*\)`, "x(a(b)c)y", 1, 8),
	noMatch("recursion unbalanced", `^\((?:[^()]|(?R))*\)$`, "(a(b)c"),
	noMatch("left recursion terminates", `(?R)a`, "aaa"),
	match("invalid utf8 skipped", `b`, "\xff\xe2(b", 3, 4),
	match("bounded lazy", `a{2,4}?`, "aaaa", 0, 2),
	match("case after commit", `(?>ab|a)c|ac`, "ac", 0, 2),
	match("quantified negative lookahead", `(?:(?!x))+`, "", 0, 0),
	match("quantified negative lookahead alternation", `(?:(?!x)|a)+`, "", 0, 0),
	match("starred negative lookahead", `(?:(?!x))*y`, "zy", 1, 2),
	noMatch("possessive empty body in loop", `(a?+)*b`, ""),
	match("possessive body in loop", `(a?+)*b`, "ab", 0, 2),
	match("atomic empty body in loop", `((?>c?))*`, "", 0, 0),
	match("atomic body in loop", `((?>c?))*`, "ccx", 0, 2),
	match("possessive zero repeat in loop", `(c{0}+)*`, "", 0, 0),
	match("atomic empty body in plus", `(?:(?>x?))+y`, "y", 0, 1),
	match("recursion in tail position", `(?:a|b)(?R)?`, "ab", 0, 2),
	match("lookahead body does not block loop", `(?:(?=a*)a)*`, "aa", 0, 2),
}

func TestBacktrackerFind(t *testing.T) {
	for _, tt := range backtrackCases {
		t.Run(tt.name, func(t *testing.T) {
			g := compileGraph(t, tt.pattern, CompilerConfig{})
			bt := NewBacktracker(g)
			got, ok := bt.Find(bt.NewState(), []byte(tt.input), 0, nil)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Find(%q, %q) = %v, %v; want %v, %v", tt.pattern, tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBacktrackerUnoptimizedAgrees(t *testing.T) {
	for _, tt := range backtrackCases {
		t.Run(tt.name, func(t *testing.T) {
			raw := compileRaw(t, tt.pattern, CompilerConfig{})
			bt := NewBacktracker(raw)
			got, ok := bt.Find(bt.NewState(), []byte(tt.input), 0, nil)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("unoptimized Find(%q, %q) = %v, %v; want %v, %v", tt.pattern, tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBacktrackerConfig(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		config  CompilerConfig
		input   string
		want    Span
		ok      bool
	}{
		{"case insensitive", `HeLLo`, CompilerConfig{CaseInsensitive: true}, "say hello", Span{4, 9}, true},
		{"case insensitive class", `[a-c]+`, CompilerConfig{CaseInsensitive: true}, "xAbC", Span{1, 4}, true},
		{"dot excludes newline", `a.b`, CompilerConfig{}, "a\nb", Span{}, false},
		{"dotall", `a.b`, CompilerConfig{DotAll: true}, "a\nb", Span{0, 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := compileGraph(t, tt.pattern, tt.config)
			bt := NewBacktracker(g)
			got, ok := bt.Find(bt.NewState(), []byte(tt.input), 0, nil)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Find = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBacktrackerCaptures(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    [][]Span
	}{
		{`(a)(b)?`, "a", [][]Span{{{0, 1}}, {{0, 1}}, nil}},
		{`(a|b)+`, "abab", [][]Span{{{0, 4}}, {{0, 1}, {1, 2}, {2, 3}, {3, 4}}}},
		{`(a+)+b`, "aab", [][]Span{{{0, 3}}, {{0, 2}}}},
		{`(a)?ab`, "ab", [][]Span{{{0, 2}}, nil}},
		{`x(?:(y)|z)`, "xz", [][]Span{{{0, 2}}, nil}},
		{`(?<w>\w+) (\w+)`, "hello world", [][]Span{{{0, 11}}, {{0, 5}}, {{6, 11}}}},
		{`((a)b)`, "zab", [][]Span{{{1, 3}}, {{1, 3}}, {{1, 2}}}},
		{`(?=(\d+))\d`, "a42", [][]Span{{{1, 2}}, {{1, 3}}}},
		{`(?!(?>(a))b)a`, "ac", [][]Span{{{0, 1}}, nil}},
		{`(?=(?>(a))x)|a`, "ac", [][]Span{{{0, 1}}, nil}},
		{`(?!(a)b)a`, "ac", [][]Span{{{0, 1}}, nil}},
		{`((?>c?))*`, "cc", [][]Span{{{0, 2}}, {{0, 1}, {1, 2}}}},
		{`((?>c?))*`, "", [][]Span{{{0, 0}}, {{0, 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			g := compileGraph(t, tt.pattern, CompilerConfig{})
			bt := NewBacktracker(g)
			got, ok := bt.FindCaptures(bt.NewState(), []byte(tt.input), 0, nil)
			if !ok {
				t.Fatalf("no match")
			}
			if !equalGroups(got, tt.want) {
				t.Errorf("FindCaptures = %v, want %v", got, tt.want)
			}
		})
	}
}

func equalGroups(a, b [][]Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestBacktrackerMatchAt(t *testing.T) {
	g := compileGraph(t, `ab`, CompilerConfig{})
	bt := NewBacktracker(g)
	s := bt.NewState()
	if _, ok := bt.MatchAt(s, []byte("xab"), 0); ok {
		t.Error("MatchAt(0) should be anchored")
	}
	if end, ok := bt.MatchAt(s, []byte("xab"), 1); !ok || end != 3 {
		t.Errorf("MatchAt(1) = %d, %v", end, ok)
	}
	caps, ok := bt.CapturesAt(s, []byte("xab"), 1)
	if !ok || caps[0][0] != (Span{1, 3}) {
		t.Errorf("CapturesAt(1) = %v, %v", caps, ok)
	}
}

func TestBacktrackerCandidates(t *testing.T) {
	g := compileGraph(t, `b+`, CompilerConfig{})
	bt := NewBacktracker(g)
	var asked []int
	next := func(h []byte, at int) int {
		asked = append(asked, at)
		if i := strings.IndexByte(string(h[at:]), 'b'); i >= 0 {
			return at + i
		}
		return -1
	}
	got, ok := bt.Find(bt.NewState(), []byte("aaaabb"), 0, next)
	if !ok || got != (Span{4, 6}) {
		t.Fatalf("Find = %v, %v", got, ok)
	}
	if len(asked) != 1 || asked[0] != 0 {
		t.Errorf("candidate calls = %v, want [0]", asked)
	}
}

func TestBacktrackerMemo(t *testing.T) {
	g := compileGraph(t, `(a|a)*b`, CompilerConfig{})
	bt := NewBacktracker(g)
	input := []byte(strings.Repeat("a", 40))
	if !bt.CanMemoize(len(input)) {
		t.Fatal("expected memo for a small input")
	}
	if _, ok := bt.Find(bt.NewState(), input, 0, nil); ok {
		t.Error("unexpected match")
	}

	bt.SetMaxVisitedBits(0)
	if bt.CanMemoize(len(input)) {
		t.Error("memo should be disabled")
	}
	la := NewBacktracker(compileGraph(t, `(?=a)b`, CompilerConfig{}))
	if la.CanMemoize(1) {
		t.Error("lookaround graphs must not be memoized")
	}
}

func TestBacktrackerStateReuse(t *testing.T) {
	g := compileGraph(t, `(a)|b`, CompilerConfig{})
	bt := NewBacktracker(g)
	s := bt.NewState()
	if caps, ok := bt.FindCaptures(s, []byte("a"), 0, nil); !ok || len(caps[1]) != 1 {
		t.Fatalf("first search = %v, %v", caps, ok)
	}
	caps, ok := bt.FindCaptures(s, []byte("b"), 0, nil)
	if !ok || caps[1] != nil {
		t.Errorf("stale capture leaked into second search: %v", caps)
	}
}

func TestBacktrackerMatchNodeWithoutChildrenPanics(t *testing.T) {
	b := NewBuilder()
	m := b.Add(Node{Kind: KindMatchOne, Rune: 'a', Children: None()})
	if err := b.SetChildren(StartNode, m); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	bt := NewBacktracker(g)
	bt.Find(bt.NewState(), []byte("a"), 0, nil)
}

func TestOptimize(t *testing.T) {
	t.Run("merges alternation", func(t *testing.T) {
		g := compileGraph(t, `a|b|c`, CompilerConfig{})
		if g.Count(KindInclusive) != 1 || g.Count(KindMatchOne) != 0 {
			t.Errorf("expected one merged class:\n%s", g)
		}
	})
	t.Run("removes transitions", func(t *testing.T) {
		g := compileGraph(t, `a*`, CompilerConfig{})
		if g.Count(KindTransition) != 1 {
			t.Errorf("only the entry Transition should remain:\n%s", g)
		}
		if g.Node(EndNode).Kind != KindEnd || g.Node(StartNode).Kind != KindTransition {
			t.Errorf("reserved nodes moved:\n%s", g)
		}
	})
	t.Run("keeps priority", func(t *testing.T) {
		g := compileGraph(t, `ab|a`, CompilerConfig{})
		bt := NewBacktracker(g)
		got, _ := bt.Find(bt.NewState(), []byte("ab"), 0, nil)
		if got != (Span{0, 2}) {
			t.Errorf("Find = %v, want [0,2)", got)
		}
	})
	t.Run("shrinks", func(t *testing.T) {
		raw := compileRaw(t, `(?:a|b|c|d)+x`, CompilerConfig{})
		opt := Optimize(raw, 0)
		if opt.Len() >= raw.Len() {
			t.Errorf("optimized graph has %d nodes, raw %d", opt.Len(), raw.Len())
		}
	})
	t.Run("keeps lookahead partners", func(t *testing.T) {
		g := compileGraph(t, `x(?!ab)`, CompilerConfig{})
		for i := 0; i < g.Len(); i++ {
			n := g.Node(NodeID(i))
			if n.Kind == KindStartNegativeLookAhead && g.Node(n.Partner).Kind != KindEndNegativeLookAhead {
				t.Errorf("partner of %d is %s", i, g.Node(n.Partner))
			}
		}
	})
}
