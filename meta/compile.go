package meta

import (
	"errors"

	"github.com/coregx/pcregex/internal/logutil"
	"github.com/coregx/pcregex/nfa"
	"github.com/coregx/pcregex/prefilter"
	"github.com/coregx/pcregex/syntax"
)

// Compile compiles a pattern with the default configuration.
//
// Returns an error if:
//   - Pattern syntax is invalid (*syntax.Error)
//   - The compiled graph exceeds MaxNodes (nfa.ErrTooComplex)
//
// Example:
//
//	engine, err := meta.Compile(`a+(?>b)a`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Engine, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// With EnforceLinearTime set, patterns that need the backtracker fail with
// a *syntax.Error of kind LinearTimeViolation.
func CompileWithConfig(pattern string, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	re, err := syntax.Parse(pattern)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	if config.EnforceLinearTime {
		if err := syntax.CheckLinear(pattern, re); err != nil {
			return nil, &CompileError{Pattern: pattern, Err: err}
		}
	}

	g, err := nfa.Compile(re, config.compilerConfig())
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	e, err := newEngine(nfa.Optimize(g, config.OptimizerPasses), config)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	e.pattern = pattern

	logutil.Trace("compiled pattern",
		"pattern", pattern,
		"nodes", e.graph.Len(),
		"groups", e.graph.NumGroups(),
		"strategy", e.strategy,
		"prefilter", prefilterName(e.prefilter),
	)
	return e, nil
}

// NewEngine builds an engine over an already compiled graph, such as one
// rebuilt by generated code. The graph is used as is; it is not optimized.
//
// With EnforceLinearTime set, graphs the PikeVM cannot run are rejected
// with nfa.ErrNotBFSCapable.
func NewEngine(g *nfa.Graph, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.EnforceLinearTime && !g.IsBFSCapable() {
		return nil, nfa.ErrNotBFSCapable
	}
	return newEngine(g, config)
}

func newEngine(g *nfa.Graph, config Config) (*Engine, error) {
	e := &Engine{
		graph:       g,
		config:      config,
		backtracker: nfa.NewBacktracker(g),
	}
	e.backtracker.SetMaxVisitedBits(config.MaxVisitedBits)

	if config.EnablePrefilter {
		e.prefilter = prefilter.Build(g, config.PrefilterCost)
	}
	e.strategy = SelectStrategy(g, e.prefilter, config)
	if e.strategy == UseLiteral {
		e.literalLen = e.prefilter.(prefilter.LiteralLener).LiteralLen()
	}
	if config.EnablePikeVM && g.IsBFSCapable() {
		vm, err := nfa.NewPikeVM(g)
		if err != nil {
			return nil, err
		}
		e.pikevm = vm
	}
	e.pool = newSearchStatePool(e)
	return e, nil
}

func prefilterName(pf prefilter.Prefilter) string {
	if pf == nil {
		return "none"
	}
	return pf.String()
}

// CompileError represents a pattern compilation error.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
// Syntax errors already name the pattern and are returned unchanged.
func (e *CompileError) Error() string {
	var syntaxErr *syntax.Error
	if errors.As(e.Err, &syntaxErr) {
		return e.Err.Error()
	}
	return "pcregex: " + e.Err.Error() + " in " + "`" + e.Pattern + "`"
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}
