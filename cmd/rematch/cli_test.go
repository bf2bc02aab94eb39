package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coregx/pcregex/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCLI()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestMatchCmd(t *testing.T) {
	out, err := run(t, "", "match", "a+b", "aaaaab", "b")
	require.NoError(t, err)
	assert.Equal(t, "true\nfalse\n", out)

	out, err = run(t, "abcdef", "match", "^abc(?=def)d")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestFindCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"leftmost", []string{"find", `\d+`, "a 12 b 345"}, "2-4\t\"12\"\n"},
		{"all", []string{"find", "--all", `\b\w+\b`, "This is a group"}, "0-4\t\"This\"\n5-7\t\"is\"\n8-9\t\"a\"\n10-15\t\"group\"\n"},
		{"limit", []string{"find", "-a", "-n", "2", `\w`, "abc"}, "0-1\t\"a\"\n1-2\t\"b\"\n"},
		{"empty matches", []string{"find", "-a", "x*", "axb"}, "0-0\t\"\"\n1-2\t\"x\"\n2-2\t\"\"\n3-3\t\"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := run(t, "", "find", "a+(?>b)a", "aaaaaaabb")
	assert.ErrorIs(t, err, errNoMatch)
}

func TestCapturesCmd(t *testing.T) {
	out, err := run(t, "", "captures", `(?<user>\w+)@(\w+)\.com`, "mail joe@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "user")
	assert.Contains(t, out, "5-8")
	assert.Contains(t, out, `"joe"`)
	assert.Contains(t, out, `"example"`)

	out, err = run(t, "", "captures", `(\d)+`, "x123")
	require.NoError(t, err)
	assert.Contains(t, out, "1-2 2-3 3-4")
}

func TestReplaceCmd(t *testing.T) {
	out, err := run(t, "", "replace", `\d+`, "N", "1 and 2")
	require.NoError(t, err)
	assert.Equal(t, "N and 2\n", out)

	out, err = run(t, "", "replace", "--all", `(\w+)@(\w+)`, "$2@$1", "a@b c@d")
	require.NoError(t, err)
	assert.Equal(t, "b@a d@c\n", out)
}

func TestDumpCmd(t *testing.T) {
	out, err := run(t, "", "dump", "a+b")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: UsePikeVM")
	assert.Contains(t, out, "bfs-capable: true")
	assert.Contains(t, out, "End")
	assert.Contains(t, out, "FAMILY")

	out, err = run(t, "", "dump", "(?=a)a")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: UseBacktracker")
	assert.Contains(t, out, "StartLookAhead")

	out, err = run(t, "", "dump", "--go", "--package", "patterns", "--func", "Greeting", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "package patterns")
	assert.Contains(t, out, "func Greeting() (*pcregex.Regex, error)")
	assert.Contains(t, out, "nfa.NewBuilder()")
}

func TestSetFlag(t *testing.T) {
	out, err := run(t, "", "--set", "dot_all=true", "match", "a.b", "a\nb")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = run(t, "", "--set", "enforce_linear_time=true", "match", "a(?=b)", "ab")
	assert.Error(t, err)

	_, err = run(t, "", "--set", "no_such_option=1", "match", "a", "a")
	assert.ErrorIs(t, err, meta.ErrInvalidConfig)
}

func TestOptionsConfig(t *testing.T) {
	opts := &options{settings: map[string]string{
		"prefilter_cost.decline": "8",
		"case_insensitive":       "true",
	}}
	config, err := opts.config()
	require.NoError(t, err)
	assert.True(t, config.CaseInsensitive)
	assert.Equal(t, 8.0, config.PrefilterCost.Decline)
	assert.Equal(t, meta.DefaultConfig().PrefilterCost.ListWeight, config.PrefilterCost.ListWeight)

	config, err = (&options{}).config()
	require.NoError(t, err)
	assert.Equal(t, meta.DefaultConfig(), config)
}

func TestGrepCmd(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	require.NoError(t, os.WriteFile(first, []byte("alpha\nTODO(joe) fix\nbeta\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("nothing here\nTODO(ann)\n"), 0o644))

	out, err := run(t, "", "grep", "-j", "2", `TODO\(\w+\)`, first, second)
	require.NoError(t, err)
	assert.Equal(t, first+":2:TODO(joe) fix\n"+second+":2:TODO(ann)\n", out)

	out, err = run(t, "", "grep", "--count", `a`, first, second)
	require.NoError(t, err)
	assert.Equal(t, first+":2\n"+second+":1\n", out)

	_, err = run(t, "", "grep", `zzz`, first)
	assert.ErrorIs(t, err, errNoMatch)

	_, err = run(t, "", "grep", `a`, filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReplSession(t *testing.T) {
	var out bytes.Buffer
	s := &replSession{opts: &options{}, out: &out}

	assert.True(t, s.eval("abc"))
	assert.Contains(t, out.String(), "no pattern")

	out.Reset()
	s.eval(`:p \d+`)
	assert.Contains(t, out.String(), "UsePikeVM")

	out.Reset()
	s.eval("a 1 b 22")
	assert.Equal(t, "2-3\t\"1\"\n", out.String())

	out.Reset()
	s.eval(":all")
	s.eval("a 1 b 22")
	assert.Equal(t, "all: true\n2-3\t\"1\"\n6-8\t\"22\"\n", out.String())

	out.Reset()
	s.eval(":p (")
	assert.Contains(t, out.String(), "error:")
	assert.Equal(t, `\d+`, s.re.String())

	out.Reset()
	s.eval(":set enable_pikevm=false")
	assert.Contains(t, out.String(), "UseBacktracker")

	out.Reset()
	s.eval(":set bogus=1")
	assert.Contains(t, out.String(), "error:")
	assert.NotContains(t, s.opts.settings, "bogus")

	out.Reset()
	s.eval(":info")
	assert.Contains(t, out.String(), "strategy: UseBacktracker")

	assert.False(t, s.eval(":q"))
}
