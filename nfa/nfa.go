// Package nfa implements the node graph a pattern is lowered into, the
// rewriting passes that simplify it, and the two executors that run it.
//
// A Graph is an arena of nodes addressed by NodeID. Node 0 is the entry
// point and node 1 is the terminal End node. Every node carries a Kind and an
// ordered list of children; for nodes with several children the order is
// the branch priority.
//
// Two executors are provided:
//   - Backtracker explores the graph depth-first and supports every kind.
//   - PikeVM advances all live nodes in lockstep and runs in O(N·M), but
//     only accepts graphs for which IsBFSCapable reports true.
package nfa

import (
	"fmt"
	"strings"

	"github.com/coregx/pcregex/internal/charset"
)

// NodeID uniquely identifies a node within a Graph.
type NodeID uint32

const (
	// StartNode is the entry point of every graph.
	StartNode NodeID = 0

	// EndNode is the terminal success node of every graph.
	EndNode NodeID = 1

	// InvalidNode marks an unset reference.
	InvalidNode NodeID = 0xFFFFFFFF
)

// Family groups node kinds by how the executors treat them.
type Family uint8

const (
	// FamilyMatch nodes consume exactly one code point.
	FamilyMatch Family = iota
	// FamilyAnchor nodes test a position without consuming input.
	FamilyAnchor
	// FamilyBehaviour nodes consume nothing and may carry a side effect.
	FamilyBehaviour
	// FamilySpecial nodes drive control flow: success, failure, recursion
	// and lookaround.
	FamilySpecial
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilyMatch:
		return "Match"
	case FamilyAnchor:
		return "Anchor"
	case FamilyBehaviour:
		return "Behaviour"
	case FamilySpecial:
		return "Special"
	default:
		return fmt.Sprintf("Family(%d)", f)
	}
}

// Kind is the operation a node performs.
type Kind uint8

const (
	KindMatchOne Kind = iota
	KindNotMatchOne
	KindMatchAll
	KindInclusive
	KindExclusive
	KindInclusiveRange
	KindExclusiveRange

	KindStartOfString
	KindEndOfString
	KindBeginningOfLine
	KindEndOfLine
	KindWordBoundary
	KindNotWordBoundary

	KindTransition
	KindCapGroup
	KindEndCapGroup
	KindDropStack

	KindEnd
	KindFail
	KindGlobalRecursion
	KindStartLookAhead
	KindEndLookAhead
	KindStartNegativeLookAhead
	KindEndNegativeLookAhead

	numKinds
)

var kindNames = [numKinds]string{
	KindMatchOne:               "MatchOne",
	KindNotMatchOne:            "NotMatchOne",
	KindMatchAll:               "MatchAll",
	KindInclusive:              "Inclusive",
	KindExclusive:              "Exclusive",
	KindInclusiveRange:         "InclusiveRange",
	KindExclusiveRange:         "ExclusiveRange",
	KindStartOfString:          "StartOfString",
	KindEndOfString:            "EndOfString",
	KindBeginningOfLine:        "BeginningOfLine",
	KindEndOfLine:              "EndOfLine",
	KindWordBoundary:           "WordBoundary",
	KindNotWordBoundary:        "NotWordBoundary",
	KindTransition:             "Transition",
	KindCapGroup:               "CapGroup",
	KindEndCapGroup:            "EndCapGroup",
	KindDropStack:              "DropStack",
	KindEnd:                    "End",
	KindFail:                   "Fail",
	KindGlobalRecursion:        "GlobalRecursion",
	KindStartLookAhead:         "StartLookAhead",
	KindEndLookAhead:           "EndLookAhead",
	KindStartNegativeLookAhead: "StartNegativeLookAhead",
	KindEndNegativeLookAhead:   "EndNegativeLookAhead",
}

// String returns a human-readable representation of the node kind.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Family returns the family k belongs to.
func (k Kind) Family() Family {
	switch {
	case k <= KindExclusiveRange:
		return FamilyMatch
	case k <= KindNotWordBoundary:
		return FamilyAnchor
	case k <= KindDropStack:
		return FamilyBehaviour
	default:
		return FamilySpecial
	}
}

// Shape describes how many children a node has.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeSingle
	ShapeMultiple
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "None"
	case ShapeSingle:
		return "Single"
	case ShapeMultiple:
		return "Multiple"
	default:
		return fmt.Sprintf("Shape(%d)", s)
	}
}

// Children is the ordered successor list of a node.
//
// A Multiple list may hold zero or one element before the graph has been
// optimized; the optimizer canonicalizes every list so that Shape agrees
// with Len afterwards.
type Children struct {
	shape Shape
	ids   []NodeID
}

// None returns an empty child list.
func None() Children {
	return Children{shape: ShapeNone}
}

// Single returns a child list holding one successor.
func Single(id NodeID) Children {
	return Children{shape: ShapeSingle, ids: []NodeID{id}}
}

// Multiple returns a child list holding ids in priority order.
func Multiple(ids ...NodeID) Children {
	return Children{shape: ShapeMultiple, ids: ids}
}

// canonical returns the child list for ids with the shape implied by its
// length.
func canonical(ids []NodeID) Children {
	switch len(ids) {
	case 0:
		return None()
	case 1:
		return Single(ids[0])
	default:
		return Multiple(ids...)
	}
}

// Shape returns the declared shape.
func (c Children) Shape() Shape { return c.shape }

// Len returns the number of successors.
func (c Children) Len() int { return len(c.ids) }

// At returns the i-th successor.
func (c Children) At(i int) NodeID { return c.ids[i] }

// IDs returns the successors in priority order. The slice must not be
// modified.
func (c Children) IDs() []NodeID { return c.ids }

// Node is a single vertex of the graph.
//
// Which payload fields are meaningful depends on Kind:
//   - Rune for MatchOne and NotMatchOne
//   - Set for Inclusive and Exclusive
//   - Ranges for InclusiveRange and ExclusiveRange
//   - Group for CapGroup and EndCapGroup
//   - Partner for the two negative lookahead kinds, linking each to the other
type Node struct {
	Kind     Kind
	Rune     rune
	Set      charset.Set
	Ranges   charset.Ranges
	Group    uint32
	Partner  NodeID
	Children Children
}

// Matches reports whether the match node accepts the code point r.
// It returns false for nodes outside the Match family.
func (n *Node) Matches(r rune) bool {
	switch n.Kind {
	case KindMatchOne:
		return r == n.Rune
	case KindNotMatchOne:
		return r != n.Rune
	case KindMatchAll:
		return true
	case KindInclusive:
		return n.Set.Contains(r)
	case KindExclusive:
		return !n.Set.Contains(r)
	case KindInclusiveRange:
		return n.Ranges.Contains(r)
	case KindExclusiveRange:
		return !n.Ranges.Contains(r)
	default:
		return false
	}
}

// Class returns the set of code points a match node accepts as a minimized
// range list.
func (n *Node) Class() charset.Ranges {
	switch n.Kind {
	case KindMatchOne:
		return charset.Ranges{{Lo: n.Rune, Hi: n.Rune}}
	case KindNotMatchOne:
		return charset.Ranges{{Lo: n.Rune, Hi: n.Rune}}.Invert()
	case KindMatchAll:
		return charset.Ranges{{Lo: 0, Hi: charset.MaxRune}}
	case KindInclusive:
		return n.Set.Ranges()
	case KindExclusive:
		return n.Set.Ranges().Invert()
	case KindInclusiveRange:
		return n.Ranges
	case KindExclusiveRange:
		return n.Ranges.Invert()
	default:
		return nil
	}
}

// String returns a compact description of the node payload, without its
// children.
func (n *Node) String() string {
	switch n.Kind {
	case KindMatchOne, KindNotMatchOne:
		return fmt.Sprintf("%s(%q)", n.Kind, n.Rune)
	case KindInclusive, KindExclusive:
		return fmt.Sprintf("%s%s", n.Kind, n.Set)
	case KindInclusiveRange, KindExclusiveRange:
		return fmt.Sprintf("%s%s", n.Kind, n.Ranges)
	case KindCapGroup, KindEndCapGroup:
		return fmt.Sprintf("%s(%d)", n.Kind, n.Group)
	case KindStartNegativeLookAhead, KindEndNegativeLookAhead:
		return fmt.Sprintf("%s(partner=%d)", n.Kind, n.Partner)
	default:
		return n.Kind.String()
	}
}

// Graph is an immutable compiled node graph. It is safe for concurrent use
// by any number of executors, each with its own state.
type Graph struct {
	nodes      []Node
	groups     int
	names      []string
	bfsCapable bool
	memoizable bool
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given id.
// Panics if id is out of range.
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// NumGroups returns the number of capture groups, not counting the implicit
// whole-match group 0.
func (g *Graph) NumGroups() int {
	return g.groups
}

// GroupNames returns the capture group names indexed by group number.
// Index 0 and unnamed groups hold the empty string.
func (g *Graph) GroupNames() []string {
	return g.names
}

// IsBFSCapable reports whether the graph only uses kinds the PikeVM
// accepts: match and anchor nodes, Transition and capture markers, and End.
func (g *Graph) IsBFSCapable() bool {
	return g.bfsCapable
}

// IsMemoizable reports whether the outcome of exploring a node depends only
// on the node and the input position. The Backtracker then skips any
// (node, position) pair it has already explored.
func (g *Graph) IsMemoizable() bool {
	return g.memoizable
}

// Count returns the number of nodes of kind k.
func (g *Graph) Count(k Kind) int {
	n := 0
	for i := range g.nodes {
		if g.nodes[i].Kind == k {
			n++
		}
	}
	return n
}

// analyze recomputes the derived executor flags.
func (g *Graph) analyze() {
	g.bfsCapable = true
	g.memoizable = true
	for i := range g.nodes {
		k := g.nodes[i].Kind
		if k == KindDropStack || (k.Family() == FamilySpecial && k != KindEnd) {
			g.bfsCapable = false
			g.memoizable = false
		}
	}
}

// String returns a one-line-per-node listing of the graph.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Graph{nodes=%d groups=%d}\n", len(g.nodes), g.groups)
	for i := range g.nodes {
		n := &g.nodes[i]
		fmt.Fprintf(&sb, "  %4d: %s", i, n)
		if n.Children.Len() > 0 {
			sb.WriteString(" ->")
			for _, c := range n.Children.IDs() {
				fmt.Fprintf(&sb, " %d", c)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
