package nfa

import (
	"fmt"

	"github.com/coregx/pcregex/internal/sparse"
	"github.com/coregx/pcregex/internal/utf8x"
)

// PikeVM advances every live node of the graph in lockstep over the input,
// so a search costs O(nodes × length) regardless of the pattern.
//
// Only graphs for which IsBFSCapable reports true may be executed: capture
// markers are treated as plain epsilon edges and any Special node other than
// End is a programmer error.
//
// Thread safety: the PikeVM is immutable after creation; mutable state lives
// in PikeVMState.
type PikeVM struct {
	graph *Graph
}

// PikeVMState holds mutable per-search state for PikeVM.
// This struct should be pooled for concurrent usage.
type PikeVMState struct {
	// Frontiers for IsMatch, drained in ascending node order.
	current *sparse.SortedSet
	next    *sparse.SortedSet
	seen    *sparse.SparseSet

	// Priority-ordered thread lists for Find. starts holds the attempt
	// start of the thread parked on each node.
	clist, nlist   *sparse.SparseSet
	cstart, nstart []int

	stack []NodeID
}

// NewPikeVM creates a PikeVM for g.
// Returns ErrNotBFSCapable if g uses kinds only the Backtracker supports.
func NewPikeVM(g *Graph) (*PikeVM, error) {
	if !g.IsBFSCapable() {
		return nil, ErrNotBFSCapable
	}
	return &PikeVM{graph: g}, nil
}

// Graph returns the graph being executed.
func (p *PikeVM) Graph() *Graph {
	return p.graph
}

// NewState creates a state sized for the graph.
func (p *PikeVM) NewState() *PikeVMState {
	n := p.graph.Len()
	return &PikeVMState{
		current: sparse.NewSortedSet(n),
		next:    sparse.NewSortedSet(n),
		seen:    sparse.NewSparseSet(n),
		clist:   sparse.NewSparseSet(n),
		nlist:   sparse.NewSparseSet(n),
		cstart:  make([]int, n),
		nstart:  make([]int, n),
		stack:   make([]NodeID, 0, 16),
	}
}

func (p *PikeVM) node(id uint32) *Node {
	return &p.graph.nodes[id]
}

func misuse(n *Node) string {
	return fmt.Sprintf("nfa: %s node reached the parallel executor", n.Kind)
}

// IsMatchAt reports whether a match starts at any position >= at.
//
// A fresh thread is injected at every position until a match is found, so
// one left-to-right pass answers for every start. When no thread is alive,
// next (if non-nil) skips to the following candidate start.
func (p *PikeVM) IsMatchAt(s *PikeVMState, haystack []byte, at int, next Candidates) bool {
	s.current.Clear()
	s.next.Clear()

	pos := at
	for pos <= len(haystack) {
		if s.current.IsEmpty() && next != nil {
			if pos = next(haystack, pos); pos < 0 {
				return false
			}
		}
		s.current.Insert(uint32(StartNode))

		r, size, ok := utf8x.DecodeForward(haystack[pos:])
		s.seen.Clear()
		for {
			id, more := s.current.PopFirst()
			if !more {
				break
			}
			if !s.seen.Insert(id) {
				continue
			}
			n := p.node(id)
			switch n.Kind.Family() {
			case FamilyMatch:
				if ok && n.Matches(r) {
					for _, c := range n.Children.IDs() {
						s.next.Insert(uint32(c))
					}
				}
			case FamilyAnchor:
				if CheckAnchor(n.Kind, haystack, pos) {
					for _, c := range n.Children.IDs() {
						s.current.Insert(uint32(c))
					}
				}
			case FamilyBehaviour:
				for _, c := range n.Children.IDs() {
					s.current.Insert(uint32(c))
				}
			default:
				if n.Kind != KindEnd {
					panic(misuse(n))
				}
				return true
			}
		}

		if pos == len(haystack) {
			break
		}
		if !ok {
			size = 1
		}
		pos += size
		s.current, s.next = s.next, s.current
	}
	return false
}

// Find returns the leftmost-first match starting at or after at.
//
// Threads are kept in priority order. A thread reaching End records a match
// and removes every lower-priority thread; no new attempts start once a
// match is known, and the search ends when the surviving higher-priority
// threads die out.
func (p *PikeVM) Find(s *PikeVMState, haystack []byte, at int, next Candidates) (Span, bool) {
	s.clist.Clear()
	s.nlist.Clear()

	matched := false
	var best Span
	pos := at
	for pos <= len(haystack) {
		if !matched {
			if s.clist.IsEmpty() && next != nil {
				if pos = next(haystack, pos); pos < 0 {
					break
				}
			}
			p.addThread(s, s.clist, s.cstart, StartNode, pos, haystack, pos)
		}
		if s.clist.IsEmpty() {
			break
		}

		r, size, ok := utf8x.DecodeForward(haystack[pos:])
		if !ok {
			size = 1
		}
		for _, id := range s.clist.Values() {
			n := p.node(id)
			start := s.cstart[id]
			switch n.Kind.Family() {
			case FamilyMatch:
				if ok && n.Matches(r) {
					for _, c := range n.Children.IDs() {
						p.addThread(s, s.nlist, s.nstart, c, pos+size, haystack, start)
					}
				}
				continue
			case FamilyAnchor, FamilyBehaviour:
				continue
			}
			if n.Kind != KindEnd {
				panic(misuse(n))
			}
			matched = true
			best = Span{Start: start, End: pos}
			break
		}

		if pos == len(haystack) {
			break
		}
		pos += size
		s.clist, s.nlist = s.nlist, s.clist
		s.cstart, s.nstart = s.nstart, s.cstart
		s.nlist.Clear()
	}
	return best, matched
}

// addThread inserts the epsilon closure of id at pos into list in priority
// order. Anchor and Behaviour nodes are recorded as visited but only match
// nodes and End keep a live thread.
func (p *PikeVM) addThread(s *PikeVMState, list *sparse.SparseSet, starts []int, id NodeID, pos int, haystack []byte, start int) {
	s.stack = append(s.stack[:0], id)
	for len(s.stack) > 0 {
		id := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		if !list.Insert(uint32(id)) {
			continue
		}
		starts[id] = start
		n := &p.graph.nodes[id]
		switch n.Kind.Family() {
		case FamilyAnchor:
			if !CheckAnchor(n.Kind, haystack, pos) {
				continue
			}
		case FamilyBehaviour:
		default:
			continue
		}
		ids := n.Children.IDs()
		for i := len(ids) - 1; i >= 0; i-- {
			s.stack = append(s.stack, ids[i])
		}
	}
}
