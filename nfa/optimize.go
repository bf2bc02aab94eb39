package nfa

import (
	"slices"

	"github.com/coregx/pcregex/internal/charset"
	"github.com/coregx/pcregex/internal/conv"
)

// DefaultOptimizePasses is the number of rewriting rounds Optimize runs when
// asked for a non-positive count.
const DefaultOptimizePasses = 3

// Optimize returns a simplified copy of g. Each pass:
//
//  1. replaces every child that is a plain Transition by that Transition's
//     own children, keeping the first occurrence of duplicates
//  2. merges runs of adjacent match children that share the same children
//     into a single class node
//  3. drops nodes no longer reachable from StartNode
//
// Node 0 and node 1 keep their ids. The input graph is not modified.
func Optimize(g *Graph, passes int) *Graph {
	if passes <= 0 {
		passes = DefaultOptimizePasses
	}
	nodes := make([]Node, len(g.nodes), len(g.nodes)+8)
	copy(nodes, g.nodes)

	for range passes {
		nodes = inlineTransitions(nodes)
		nodes = mergeClasses(nodes)
		nodes = compact(nodes)
	}
	for i := range nodes {
		nodes[i].Children = canonical(nodes[i].Children.IDs())
	}

	out := &Graph{nodes: nodes, groups: g.groups, names: g.names}
	out.analyze()
	return out
}

// inlineTransitions performs one round of Transition substitution. The
// replacement lists are snapshotted first so that cycles of Transitions
// only unfold by one level per round.
func inlineTransitions(nodes []Node) []Node {
	snapshot := make([][]NodeID, len(nodes))
	for i := range nodes {
		if inlinable(nodes, NodeID(conv.NodeID(i))) {
			snapshot[i] = nodes[i].Children.IDs()
		}
	}

	for i := range nodes {
		ids := nodes[i].Children.IDs()
		if len(ids) == 0 {
			continue
		}
		changed := false
		for _, c := range ids {
			if snapshot[c] != nil {
				changed = true
				break
			}
		}
		if !changed {
			continue
		}
		out := make([]NodeID, 0, len(ids)+2)
		for _, c := range ids {
			if snapshot[c] != nil {
				out = append(out, snapshot[c]...)
				continue
			}
			out = append(out, c)
		}
		nodes[i].Children = withShape(nodes[i].Children.Shape(), dedupe(out))
	}
	return nodes
}

// inlinable reports whether edges to id may be replaced by id's children.
// A childless Transition is kept so that no match node loses its last edge.
func inlinable(nodes []Node, id NodeID) bool {
	n := &nodes[id]
	return id != StartNode && n.Kind == KindTransition && n.Children.Len() > 0
}

// withShape rebuilds a child list, promoting to Multiple when ids no longer
// fits shape.
func withShape(shape Shape, ids []NodeID) Children {
	if shape == ShapeMultiple || len(ids) > 1 {
		return Multiple(ids...)
	}
	return canonical(ids)
}

// dedupe removes repeated ids, keeping the first occurrence.
func dedupe(ids []NodeID) []NodeID {
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// mergeClasses folds runs of consecutive match children that lead to the
// same continuation into one node accepting the union of their classes.
// Only adjacent siblings are merged so that the relative priority of the
// remaining children is unchanged.
func mergeClasses(nodes []Node) []Node {
	for i := 0; i < len(nodes); i++ {
		ids := nodes[i].Children.IDs()
		if len(ids) < 2 {
			continue
		}
		var out []NodeID
		for j := 0; j < len(ids); {
			k := j + 1
			for k < len(ids) && mergeable(nodes, ids[j], ids[k]) {
				k++
			}
			if k-j == 1 {
				if out != nil {
					out = append(out, ids[j])
				}
				j++
				continue
			}
			if out == nil {
				out = append(make([]NodeID, 0, len(ids)), ids[:j]...)
			}
			classes := make([]charset.Ranges, 0, k-j)
			for _, id := range ids[j:k] {
				classes = append(classes, nodes[id].Class())
			}
			merged := classNode(charset.Union(classes...))
			merged.Children = nodes[ids[j]].Children
			nodes = append(nodes, merged)
			out = append(out, NodeID(conv.NodeID(len(nodes)-1)))
			j = k
		}
		if out != nil {
			nodes[i].Children = withShape(nodes[i].Children.Shape(), out)
		}
	}
	return nodes
}

func mergeable(nodes []Node, a, b NodeID) bool {
	na, nb := &nodes[a], &nodes[b]
	if na.Kind.Family() != FamilyMatch || nb.Kind.Family() != FamilyMatch {
		return false
	}
	ca := na.Children.IDs()
	return len(ca) > 0 && slices.Equal(ca, nb.Children.IDs())
}

// compact removes nodes unreachable from StartNode and renumbers the rest,
// keeping StartNode and EndNode in place.
func compact(nodes []Node) []Node {
	const unseen = InvalidNode

	remap := make([]NodeID, len(nodes))
	for i := range remap {
		remap[i] = unseen
	}
	order := make([]NodeID, 0, len(nodes))
	visit := func(id NodeID) {
		if remap[id] == unseen {
			remap[id] = NodeID(conv.NodeID(len(order)))
			order = append(order, id)
		}
	}
	visit(StartNode)
	visit(EndNode)
	for i := 0; i < len(order); i++ {
		n := &nodes[order[i]]
		for _, c := range n.Children.IDs() {
			visit(c)
		}
		if n.Kind == KindStartNegativeLookAhead || n.Kind == KindEndNegativeLookAhead {
			visit(n.Partner)
		}
	}

	out := make([]Node, len(order))
	for i, old := range order {
		n := nodes[old]
		ids := n.Children.IDs()
		mapped := make([]NodeID, len(ids))
		for j, c := range ids {
			mapped[j] = remap[c]
		}
		n.Children = Children{shape: n.Children.Shape(), ids: mapped}
		if n.Kind == KindStartNegativeLookAhead || n.Kind == KindEndNegativeLookAhead {
			n.Partner = remap[n.Partner]
		}
		out[i] = n
	}
	return out
}
