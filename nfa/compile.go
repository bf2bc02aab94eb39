package nfa

import (
	"fmt"

	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/syntax"
)

// CompilerConfig configures lowering of an expression tree into a graph.
type CompilerConfig struct {
	// DotAll makes '.' match '\n' as well.
	DotAll bool

	// CaseInsensitive folds ASCII letters in literals and classes.
	CaseInsensitive bool

	// MaxNodes bounds the size of the lowered graph. Zero means unlimited.
	MaxNodes int
}

// DefaultCompilerConfig returns a configuration with case-sensitive
// matching, '.' excluding newline and a node limit of one million.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{MaxNodes: 1 << 20}
}

// Compiler lowers syntax trees into graphs.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
}

// NewCompiler creates a compiler with the given configuration.
func NewCompiler(config CompilerConfig) *Compiler {
	return &Compiler{config: config}
}

// Compile lowers re into an unoptimized graph.
//
// Lowering works right to left: every construct is compiled with its
// continuation already known, so each node is created with its final
// children except for loop heads, which are patched once the loop body
// exists.
func (c *Compiler) Compile(re *syntax.Regexp) (*Graph, error) {
	c.builder = NewBuilder()
	entry, err := c.compile(re, EndNode)
	if err != nil {
		return nil, err
	}
	if err := c.builder.SetChildren(StartNode, entry); err != nil {
		return nil, err
	}
	c.builder.SetGroups(re.MaxCap(), re.CapNames())
	return c.builder.Build(WithMaxNodes(c.config.MaxNodes))
}

// Compile is a convenience wrapper around NewCompiler(config).Compile(re).
func Compile(re *syntax.Regexp, config CompilerConfig) (*Graph, error) {
	return NewCompiler(config).Compile(re)
}

func (c *Compiler) checkSize() error {
	if c.config.MaxNodes > 0 && c.builder.Len() > c.config.MaxNodes {
		return fmt.Errorf("%w: more than %d nodes", ErrTooComplex, c.config.MaxNodes)
	}
	return nil
}

// compile lowers re so that a successful match of re continues at next, and
// returns the entry node of re.
func (c *Compiler) compile(re *syntax.Regexp, next NodeID) (NodeID, error) {
	if err := c.checkSize(); err != nil {
		return InvalidNode, err
	}
	b := c.builder

	switch re.Op {
	case syntax.OpEmpty:
		return next, nil

	case syntax.OpLiteral:
		return b.AddMatch(c.literal(re.Rune), next), nil

	case syntax.OpDot:
		if c.config.DotAll {
			return b.AddMatch(Node{Kind: KindMatchAll}, next), nil
		}
		return b.AddMatch(Node{Kind: KindNotMatchOne, Rune: '\n'}, next), nil

	case syntax.OpClass:
		return b.AddMatch(c.class(re.Class, re.Negate), next), nil

	case syntax.OpBeginLine:
		return b.AddAnchor(KindBeginningOfLine, next), nil
	case syntax.OpEndLine:
		return b.AddAnchor(KindEndOfLine, next), nil
	case syntax.OpBeginText:
		return b.AddAnchor(KindStartOfString, next), nil
	case syntax.OpEndText:
		return b.AddAnchor(KindEndOfString, next), nil
	case syntax.OpWordBoundary:
		return b.AddAnchor(KindWordBoundary, next), nil
	case syntax.OpNoWordBoundary:
		return b.AddAnchor(KindNotWordBoundary, next), nil

	case syntax.OpCapture:
		end := b.AddEndCapGroup(re.Cap, next)
		body, err := c.compile(re.Sub[0], end)
		if err != nil {
			return InvalidNode, err
		}
		return b.AddCapGroup(re.Cap, body), nil

	case syntax.OpAtomic:
		return c.compile(re.Sub[0], b.AddDropStack(next))

	case syntax.OpLookahead:
		start, end := b.AddLookAhead(next)
		body, err := c.compile(re.Sub[0], end)
		if err != nil {
			return InvalidNode, err
		}
		return start, b.SetChildren(start, body)

	case syntax.OpNegLookahead:
		start, end := b.AddNegativeLookAhead(next)
		body, err := c.compile(re.Sub[0], end)
		if err != nil {
			return InvalidNode, err
		}
		return start, b.SetChildren(start, body)

	case syntax.OpRecursion:
		return b.AddRecursion(next), nil

	case syntax.OpConcat:
		entry := next
		for i := len(re.Sub) - 1; i >= 0; i-- {
			var err error
			if entry, err = c.compile(re.Sub[i], entry); err != nil {
				return InvalidNode, err
			}
		}
		return entry, nil

	case syntax.OpAlternate:
		alts := make([]NodeID, len(re.Sub))
		for i, sub := range re.Sub {
			var err error
			if alts[i], err = c.compile(sub, next); err != nil {
				return InvalidNode, err
			}
		}
		return b.AddTransition(alts...), nil

	case syntax.OpRepeat:
		return c.repeat(re, next)

	default:
		return InvalidNode, fmt.Errorf("nfa: unsupported operator %s", re.Op)
	}
}

// repeat lowers Sub[0]{Min,Max} by expanding it into Min mandatory copies
// followed by either a loop or Max-Min nested optional copies.
func (c *Compiler) repeat(re *syntax.Regexp, next NodeID) (NodeID, error) {
	b := c.builder
	sub := re.Sub[0]

	exit := next
	if re.Possessive {
		exit = b.AddDropStack(next)
	}
	branch := func(body NodeID) []NodeID {
		if re.Lazy {
			return []NodeID{exit, body}
		}
		return []NodeID{body, exit}
	}

	var entry NodeID
	mandatory := re.Min
	if re.Max < 0 {
		loop := b.AddTransition()
		body, err := c.compile(sub, loop)
		if err != nil {
			return InvalidNode, err
		}
		if err := b.SetChildren(loop, branch(body)...); err != nil {
			return InvalidNode, err
		}
		entry = loop
		if mandatory > 0 {
			// The last mandatory copy doubles as the loop body.
			entry = body
			mandatory--
		}
	} else {
		entry = exit
		for i := 0; i < re.Max-re.Min; i++ {
			opt := b.AddTransition()
			body, err := c.compile(sub, entry)
			if err != nil {
				return InvalidNode, err
			}
			if err := b.SetChildren(opt, branch(body)...); err != nil {
				return InvalidNode, err
			}
			entry = opt
		}
	}

	for i := 0; i < mandatory; i++ {
		var err error
		if entry, err = c.compile(sub, entry); err != nil {
			return InvalidNode, err
		}
	}
	return entry, nil
}

func (c *Compiler) literal(r rune) Node {
	if c.config.CaseInsensitive {
		if f, ok := charset.SwapASCIICase(r); ok {
			return Node{Kind: KindInclusive, Set: charset.NewSet(r, f)}
		}
	}
	return Node{Kind: KindMatchOne, Rune: r}
}

func (c *Compiler) class(rs charset.Ranges, negate bool) Node {
	if c.config.CaseInsensitive {
		cb := charset.NewBuilder()
		cb.AddRanges(rs)
		cb.FoldASCII()
		rs = cb.Ranges()
	}
	if negate {
		rs = rs.Invert()
	}
	return classNode(rs)
}
