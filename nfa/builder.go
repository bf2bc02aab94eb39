package nfa

import (
	"fmt"

	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/internal/conv"
)

// Builder constructs a Graph node by node.
//
// A new builder already holds the two reserved nodes: a Transition at
// StartNode with no children and End at EndNode. Callers add nodes, wire
// the entry with SetChildren(StartNode, ...) and finish with Build.
type Builder struct {
	nodes    []Node
	groups   int
	names    []string
	maxNodes int
}

// NewBuilder creates a builder holding the reserved entry and End nodes.
func NewBuilder() *Builder {
	return &Builder{
		nodes: []Node{
			{Kind: KindTransition, Children: None()},
			{Kind: KindEnd, Children: None()},
		},
	}
}

// Len returns the number of nodes added so far, reserved nodes included.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Add appends n and returns its ID.
func (b *Builder) Add(n Node) NodeID {
	id := NodeID(conv.NodeID(len(b.nodes)))
	b.nodes = append(b.nodes, n)
	return id
}

// AddMatch adds a match node with payload taken from m and a single child.
func (b *Builder) AddMatch(m Node, next NodeID) NodeID {
	m.Children = Single(next)
	return b.Add(m)
}

// AddTransition adds a Transition with the given children in priority order.
func (b *Builder) AddTransition(next ...NodeID) NodeID {
	return b.Add(Node{Kind: KindTransition, Children: canonical(next)})
}

// AddAnchor adds a zero-width assertion node.
func (b *Builder) AddAnchor(kind Kind, next NodeID) NodeID {
	return b.Add(Node{Kind: kind, Children: Single(next)})
}

// AddCapGroup adds the opening marker of capture group group.
func (b *Builder) AddCapGroup(group int, next NodeID) NodeID {
	return b.Add(Node{Kind: KindCapGroup, Group: conv.GroupID(group), Children: Single(next)})
}

// AddEndCapGroup adds the closing marker of capture group group.
func (b *Builder) AddEndCapGroup(group int, next NodeID) NodeID {
	return b.Add(Node{Kind: KindEndCapGroup, Group: conv.GroupID(group), Children: Single(next)})
}

// AddDropStack adds a commit point.
func (b *Builder) AddDropStack(next NodeID) NodeID {
	return b.Add(Node{Kind: KindDropStack, Children: Single(next)})
}

// AddFail adds a node that never succeeds.
func (b *Builder) AddFail() NodeID {
	return b.Add(Node{Kind: KindFail, Children: None()})
}

// AddRecursion adds a whole-pattern recursion whose continuation is next.
func (b *Builder) AddRecursion(next NodeID) NodeID {
	return b.Add(Node{Kind: KindGlobalRecursion, Children: Single(next)})
}

// AddLookAhead adds a positive lookahead pair. The returned start node has
// no children yet; the end node continues at next.
func (b *Builder) AddLookAhead(next NodeID) (start, end NodeID) {
	end = b.Add(Node{Kind: KindEndLookAhead, Children: Single(next)})
	start = b.Add(Node{Kind: KindStartLookAhead, Children: None()})
	return start, end
}

// AddNegativeLookAhead adds a linked negative lookahead pair. The returned
// start node has no children yet; the end node continues at next.
func (b *Builder) AddNegativeLookAhead(next NodeID) (start, end NodeID) {
	end = b.Add(Node{Kind: KindEndNegativeLookAhead, Children: Single(next)})
	start = b.Add(Node{Kind: KindStartNegativeLookAhead, Partner: end, Children: None()})
	b.nodes[end].Partner = start
	return start, end
}

// SetChildren replaces the children of id. Lists of length 0 and 1 are
// stored as None and Single.
func (b *Builder) SetChildren(id NodeID, children ...NodeID) error {
	if int(id) >= len(b.nodes) {
		return &BuildError{Message: "node ID out of bounds", NodeID: id}
	}
	b.nodes[id].Children = canonical(children)
	return nil
}

// SetRawChildren replaces the children of id without canonicalizing the
// shape.
func (b *Builder) SetRawChildren(id NodeID, c Children) error {
	if int(id) >= len(b.nodes) {
		return &BuildError{Message: "node ID out of bounds", NodeID: id}
	}
	b.nodes[id].Children = c
	return nil
}

// SetGroups records the capture group count and names.
func (b *Builder) SetGroups(count int, names []string) {
	b.groups = count
	b.names = names
}

// Validate checks the structural invariants of the graph under construction.
func (b *Builder) Validate() error {
	if len(b.nodes) < 2 {
		return &BuildError{Message: "graph must hold the entry and End nodes", NodeID: StartNode}
	}
	if b.nodes[EndNode].Kind != KindEnd {
		return &BuildError{Message: "node 1 must be End", NodeID: EndNode}
	}
	for i := range b.nodes {
		id := NodeID(conv.NodeID(i))
		n := &b.nodes[i]
		if n.Kind >= numKinds {
			return &BuildError{Message: fmt.Sprintf("unknown kind %d", n.Kind), NodeID: id}
		}
		for _, c := range n.Children.IDs() {
			if int(c) >= len(b.nodes) {
				return &BuildError{Message: fmt.Sprintf("child %d out of bounds", c), NodeID: id}
			}
		}
		if n.Kind == KindStartNegativeLookAhead || n.Kind == KindEndNegativeLookAhead {
			if int(n.Partner) >= len(b.nodes) || b.nodes[n.Partner].Partner != id {
				return &BuildError{Message: "negative lookahead partner mismatch", NodeID: id}
			}
		}
		if (n.Kind == KindCapGroup || n.Kind == KindEndCapGroup) && int(n.Group) > b.groups {
			return &BuildError{Message: fmt.Sprintf("capture group %d undeclared", n.Group), NodeID: id}
		}
	}
	return nil
}

// Build validates the graph and returns it. The builder must not be used
// afterwards.
func (b *Builder) Build(opts ...BuildOption) (*Graph, error) {
	for _, opt := range opts {
		opt(b)
	}
	if b.maxNodes > 0 && len(b.nodes) > b.maxNodes {
		return nil, fmt.Errorf("%w: %d nodes exceeds the limit of %d", ErrTooComplex, len(b.nodes), b.maxNodes)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	names := b.names
	if len(names) < b.groups+1 {
		names = make([]string, b.groups+1)
		copy(names, b.names)
	}
	g := &Graph{nodes: b.nodes, groups: b.groups, names: names}
	g.analyze()
	return g, nil
}

// BuildOption is a functional option for Build.
type BuildOption func(*Builder)

// WithMaxNodes makes Build fail with ErrTooComplex when the graph holds more
// than n nodes. Zero disables the limit.
func WithMaxNodes(n int) BuildOption {
	return func(b *Builder) {
		b.maxNodes = n
	}
}

// classNode returns the cheapest match node accepting exactly rs, which
// must be minimized.
func classNode(rs charset.Ranges) Node {
	const setLimit = 16

	switch {
	case rs.IsFull():
		return Node{Kind: KindMatchAll}
	case len(rs) == 1 && rs[0].Lo == rs[0].Hi:
		return Node{Kind: KindMatchOne, Rune: rs[0].Lo}
	}
	inv := rs.Invert()
	if len(inv) == 1 && inv[0].Lo == inv[0].Hi {
		return Node{Kind: KindNotMatchOne, Rune: inv[0].Lo}
	}
	if set, ok := rs.Expand(setLimit); ok {
		return Node{Kind: KindInclusive, Set: set}
	}
	if set, ok := inv.Expand(setLimit); ok {
		return Node{Kind: KindExclusive, Set: set}
	}
	if len(inv) < len(rs) {
		return Node{Kind: KindExclusiveRange, Ranges: inv}
	}
	return Node{Kind: KindInclusiveRange, Ranges: rs}
}

// SetOf returns the payload of an Inclusive or Exclusive node holding rs.
func SetOf(rs ...rune) charset.Set {
	return charset.NewSet(rs...)
}

// RangesOf returns the payload of an InclusiveRange or ExclusiveRange node.
// bounds holds lo, hi pairs.
func RangesOf(bounds ...rune) charset.Ranges {
	rs := make(charset.Ranges, 0, len(bounds)/2)
	for i := 0; i+1 < len(bounds); i += 2 {
		rs = append(rs, charset.Range{Lo: bounds[i], Hi: bounds[i+1]})
	}
	return rs.Minimize()
}
