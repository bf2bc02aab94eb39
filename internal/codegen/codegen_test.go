package codegen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/syntax"
)

func graphOf(t *testing.T, pattern string) *nfa.Graph {
	t.Helper()
	re, err := syntax.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	g, err := nfa.Compile(re, nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return nfa.Optimize(g, 0)
}

func TestRenderParses(t *testing.T) {
	patterns := []string{
		`hello`,
		`(?<user>\w+)@(\w+)\.com`,
		`^abc(?!def)d`,
		`a+(?>b)a`,
		`(?:a|b)(?R)?`,
		`[^αβ]x[a-fA-F0-9]+\b`,
	}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			g := graphOf(t, pattern)
			var buf bytes.Buffer
			err := Render(&buf, g, Config{Package: "patterns", Func: "Compiled", Pattern: pattern})
			if err != nil {
				t.Fatal(err)
			}
			src := buf.String()

			file, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
			if err != nil {
				t.Fatalf("generated source does not parse: %v\n%s", err, src)
			}
			if file.Name.Name != "patterns" {
				t.Errorf("package = %s", file.Name.Name)
			}
			if !ast.IsGenerated(file) {
				t.Error("missing generated-code header")
			}
			if got := strings.Count(src, "b.Add("); got != g.Len()-2 {
				t.Errorf("%d Add calls for %d nodes", got, g.Len())
			}
			for _, want := range []string{"nfa.NewBuilder()", "meta.NewEngine(", "pcregex.FromEngine("} {
				if !strings.Contains(src, want) {
					t.Errorf("generated source lacks %s", want)
				}
			}
		})
	}
}

func TestRenderPayloads(t *testing.T) {
	var buf bytes.Buffer
	g := graphOf(t, `(?<d>[a-z]{2})(?!x)é`)
	if err := Render(&buf, g, Config{Package: "p", Func: "F"}); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	for _, want := range []string{
		"nfa.KindInclusiveRange",
		"nfa.RangesOf('a', 'z')",
		"nfa.KindCapGroup",
		"nfa.KindStartNegativeLookAhead",
		"Partner:",
		"'é'",
		`b.SetGroups(1, []string{"", "d"})`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source lacks %s:\n%s", want, src)
		}
	}
}

func TestGenerateRejectsBadNames(t *testing.T) {
	g := graphOf(t, `a`)
	for _, config := range []Config{
		{Package: "", Func: "F"},
		{Package: "p", Func: "1F"},
		{Package: "my-pkg", Func: "F"},
	} {
		if _, err := Generate(g, config); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Generate(%+v) err = %v", config, err)
		}
	}
}
