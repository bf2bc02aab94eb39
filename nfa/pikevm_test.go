package nfa

import (
	"errors"
	"math/rand/v2"
	"testing"
)

var agreementPatterns = []string{
	`hello`,
	`a+b`,
	`^(a|b|c){4,6}$`,
	`\b\w+\b`,
	`a*?b`,
	`(a|ab)(c|bcd)(d*)`,
	`x*`,
	`(a*)*b`,
	`(?:)*a`,
	`\d+`,
	`^b`,
	`a$`,
	`[^a]+`,
	`(a|b)*abb`,
	`a{2,3}?b?`,
	`\Bb|a\b`,
	`(?:ab|a)(?:bc|c)`,
	`[a-c]{2}|b+`,
	`$`,
	`^$`,
	`.\n.`,
	`é|ab`,
}

var agreementInputs = []string{
	"",
	"a",
	"b",
	"ab",
	"abc",
	"abcb",
	"aab",
	"abcd",
	"aaaab",
	"b\nab",
	"hello world",
	"ba ab abb",
	"x\ny",
	"café ab",
	"12ab34",
	"\xffab\xe2(",
}

func TestPikeVMAgreesWithBacktracker(t *testing.T) {
	for _, pattern := range agreementPatterns {
		g := compileGraph(t, pattern, CompilerConfig{})
		vm, err := NewPikeVM(g)
		if err != nil {
			t.Fatalf("NewPikeVM(%q): %v", pattern, err)
		}
		bt := NewBacktracker(g)
		vs, bs := vm.NewState(), bt.NewState()
		for _, input := range agreementInputs {
			h := []byte(input)
			for at := 0; at <= len(h); at++ {
				want, wantOK := bt.Find(bs, h, at, nil)
				got, gotOK := vm.Find(vs, h, at, nil)
				if got != want || gotOK != wantOK {
					t.Errorf("%q on %q at %d: pikevm %v,%v backtracker %v,%v", pattern, input, at, got, gotOK, want, wantOK)
				}
				if m := vm.IsMatchAt(vs, h, at, nil); m != wantOK {
					t.Errorf("%q on %q at %d: IsMatchAt = %v, want %v", pattern, input, at, m, wantOK)
				}
			}
		}
	}
}

func TestPikeVMRandomAgreement(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	alphabet := []byte("ab\n c")
	for _, pattern := range agreementPatterns {
		g := compileGraph(t, pattern, CompilerConfig{})
		vm, err := NewPikeVM(g)
		if err != nil {
			t.Fatal(err)
		}
		bt := NewBacktracker(g)
		vs, bs := vm.NewState(), bt.NewState()
		for range 50 {
			h := make([]byte, rng.IntN(12))
			for i := range h {
				h[i] = alphabet[rng.IntN(len(alphabet))]
			}
			want, wantOK := bt.Find(bs, h, 0, nil)
			got, gotOK := vm.Find(vs, h, 0, nil)
			if got != want || gotOK != wantOK {
				t.Errorf("%q on %q: pikevm %v,%v backtracker %v,%v", pattern, h, got, gotOK, want, wantOK)
			}
		}
	}
}

func TestPikeVMRejectsBacktrackOnlyGraphs(t *testing.T) {
	for _, pattern := range []string{`(?=a)`, `(?>a)`, `a(?R)?`, `a++`} {
		g := compileGraph(t, pattern, CompilerConfig{})
		if _, err := NewPikeVM(g); !errors.Is(err, ErrNotBFSCapable) {
			t.Errorf("NewPikeVM(%q) err = %v, want ErrNotBFSCapable", pattern, err)
		}
	}
}

func TestPikeVMCandidates(t *testing.T) {
	g := compileGraph(t, `ab`, CompilerConfig{})
	vm, err := NewPikeVM(g)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	next := func(h []byte, at int) int {
		calls++
		for i := at; i < len(h); i++ {
			if h[i] == 'a' {
				return i
			}
		}
		return -1
	}
	s := vm.NewState()
	got, ok := vm.Find(s, []byte("xxxxaxab"), 0, next)
	if !ok || got != (Span{6, 8}) {
		t.Errorf("Find = %v, %v", got, ok)
	}
	if calls == 0 {
		t.Error("candidate function never consulted")
	}
	if vm.IsMatchAt(s, []byte("xxxx"), 0, next) {
		t.Error("IsMatchAt should fail without candidates")
	}
}

func TestPikeVMLongInput(t *testing.T) {
	g := compileGraph(t, `(a|aa)*b`, CompilerConfig{})
	vm, err := NewPikeVM(g)
	if err != nil {
		t.Fatal(err)
	}
	h := make([]byte, 10000)
	for i := range h {
		h[i] = 'a'
	}
	if vm.IsMatchAt(vm.NewState(), h, 0, nil) {
		t.Error("unexpected match")
	}
}
