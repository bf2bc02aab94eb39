// Package codegen renders a compiled node graph as Go source that rebuilds
// the same graph through nfa.Builder, so a pattern can be embedded in a
// program without parsing it at startup.
package codegen

import (
	"errors"
	"fmt"
	"go/token"
	"io"

	"github.com/coregx/pcregex/nfa"
	"github.com/dave/jennifer/jen"
)

const (
	rootPkg = "github.com/coregx/pcregex"
	metaPkg = "github.com/coregx/pcregex/meta"
	nfaPkg  = "github.com/coregx/pcregex/nfa"
)

// ErrInvalidName is returned when Package or Func is not a Go identifier.
var ErrInvalidName = errors.New("codegen: invalid identifier")

// Config holds the configuration for code generation.
type Config struct {
	Package string // package clause of the generated file
	Func    string // name of the generated constructor
	Pattern string // source pattern, recorded in comments
}

// Generate returns a file declaring Config.Func, which rebuilds g and wraps
// it in a *pcregex.Regex.
func Generate(g *nfa.Graph, config Config) (*jen.File, error) {
	if !token.IsIdentifier(config.Package) {
		return nil, fmt.Errorf("%w: package %q", ErrInvalidName, config.Package)
	}
	if !token.IsIdentifier(config.Func) {
		return nil, fmt.Errorf("%w: func %q", ErrInvalidName, config.Func)
	}

	f := jen.NewFile(config.Package)
	f.HeaderComment("Code generated by rematch dump --go. DO NOT EDIT.")
	f.ImportName(rootPkg, "pcregex")

	f.Commentf("%s returns the compiled form of %q.", config.Func, config.Pattern)
	f.Func().Id(config.Func).Params().
		Params(jen.Op("*").Qual(rootPkg, "Regex"), jen.Error()).
		Block(body(g)...)
	return f, nil
}

// Render writes the generated file to w.
func Render(w io.Writer, g *nfa.Graph, config Config) error {
	f, err := Generate(g, config)
	if err != nil {
		return err
	}
	return f.Render(w)
}

func body(g *nfa.Graph) []jen.Code {
	stmts := []jen.Code{
		jen.Id("b").Op(":=").Qual(nfaPkg, "NewBuilder").Call(),
	}
	for id := 2; id < g.Len(); id++ {
		stmts = append(stmts, jen.Id("b").Dot("Add").Call(node(g.Node(nfa.NodeID(id)))))
	}
	stmts = append(stmts,
		jen.If(
			jen.Err().Op(":=").Id("b").Dot("SetRawChildren").Call(
				jen.Qual(nfaPkg, "StartNode"), children(g.Node(nfa.StartNode).Children)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
	)
	if g.NumGroups() > 0 {
		names := make([]jen.Code, 0, len(g.GroupNames()))
		for _, name := range g.GroupNames() {
			names = append(names, jen.Lit(name))
		}
		stmts = append(stmts, jen.Id("b").Dot("SetGroups").Call(
			jen.Lit(g.NumGroups()), jen.Index().String().Values(names...)))
	}
	stmts = append(stmts,
		jen.List(jen.Id("g"), jen.Err()).Op(":=").Id("b").Dot("Build").Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.List(jen.Id("engine"), jen.Err()).Op(":=").Qual(metaPkg, "NewEngine").Call(
			jen.Id("g"), jen.Qual(metaPkg, "DefaultConfig").Call()),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Qual(rootPkg, "FromEngine").Call(jen.Id("engine")), jen.Nil()),
	)
	return stmts
}

// node renders n as an nfa.Node literal, emitting only the payload its
// kind reads.
func node(n *nfa.Node) jen.Code {
	fields := jen.Dict{
		jen.Id("Kind"): jen.Qual(nfaPkg, "Kind"+n.Kind.String()),
	}
	switch n.Kind {
	case nfa.KindMatchOne, nfa.KindNotMatchOne:
		fields[jen.Id("Rune")] = jen.LitRune(n.Rune)
	case nfa.KindInclusive, nfa.KindExclusive:
		runes := make([]jen.Code, len(n.Set))
		for i, r := range n.Set {
			runes[i] = jen.LitRune(r)
		}
		fields[jen.Id("Set")] = jen.Qual(nfaPkg, "SetOf").Call(runes...)
	case nfa.KindInclusiveRange, nfa.KindExclusiveRange:
		bounds := make([]jen.Code, 0, 2*len(n.Ranges))
		for _, rg := range n.Ranges {
			bounds = append(bounds, jen.LitRune(rg.Lo), jen.LitRune(rg.Hi))
		}
		fields[jen.Id("Ranges")] = jen.Qual(nfaPkg, "RangesOf").Call(bounds...)
	case nfa.KindCapGroup, nfa.KindEndCapGroup:
		fields[jen.Id("Group")] = jen.Lit(int(n.Group))
	case nfa.KindStartNegativeLookAhead, nfa.KindEndNegativeLookAhead:
		fields[jen.Id("Partner")] = jen.Lit(int(n.Partner))
	}
	fields[jen.Id("Children")] = children(n.Children)
	return jen.Qual(nfaPkg, "Node").Values(fields)
}

func children(c nfa.Children) jen.Code {
	ids := make([]jen.Code, c.Len())
	for i, id := range c.IDs() {
		ids[i] = jen.Lit(int(id))
	}
	switch c.Shape() {
	case nfa.ShapeNone:
		return jen.Qual(nfaPkg, "None").Call()
	case nfa.ShapeSingle:
		return jen.Qual(nfaPkg, "Single").Call(ids...)
	default:
		return jen.Qual(nfaPkg, "Multiple").Call(ids...)
	}
}
