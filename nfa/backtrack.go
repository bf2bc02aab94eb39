package nfa

import (
	"fmt"

	"github.com/coregx/pcregex/internal/utf8x"
)

// DefaultMaxVisitedBits bounds the memory of the (node, position) memo:
// 256KB = 2M bits.
const DefaultMaxVisitedBits = 256 * 1024 * 8

// Span is the half-open byte range [Start, End) of a match or group.
type Span struct {
	Start, End int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// String returns the span as "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Candidates returns the smallest position >= at where an attempt may
// succeed, or -1 when none exists. Prefilters implement it; a nil
// Candidates tries every position.
type Candidates func(haystack []byte, at int) int

// effect records the side effect a frame applied, so it can be undone when
// the frame is popped.
type effect uint8

const (
	effectNone      effect = iota
	effectCapOpen          // pushed pos onto capOpen[group]
	effectCapClose         // moved capOpen[group] top (aux) into capClosed[group]
	effectLookPush         // pushed pos onto look
	effectLookPop          // popped aux from look
	effectRecPush          // pushed node onto rec
	effectRecReturn        // popped aux from rec
	effectCommit           // frames from aux up are discarded with this one
	effectNegHeld          // negative lookahead body failed; the assertion holds
)

// frame is one entry of the explicit backtracking stack.
type frame struct {
	node   NodeID
	cursor uint32 // index of the next child to try
	fresh  bool   // the node has not been evaluated yet
	effect effect
	pos    int    // position the node is evaluated at
	next   int    // position its children are evaluated at
	aux    int    // effect payload
	scope  uint32 // lookaround or recursion context of the node
	inner  uint32 // context its children run in
}

// mark is an entry of the lookahead and recursion stacks: the saved
// position or return node, and the context to resume in.
type mark struct {
	at    int
	scope uint32
}

// BacktrackerState holds mutable per-search state for the Backtracker.
// It should be pooled for concurrent usage; each goroutine must use its own
// instance.
type BacktrackerState struct {
	frames    []frame
	capOpen   [][]int
	capClosed [][]Span
	look      []mark
	rec       []mark
	scopes    uint32
	captures  bool

	// visited is a bit vector tracking (node, position) pairs.
	// Layout: bit at index (node * width + pos).
	visited []uint64
	width   int
	memo    bool
}

// Backtracker is a depth-first executor supporting every node kind.
//
// Exploration is iterative: each frame holds a node, the position it is
// evaluated at and a cursor over its children. When a frame is exhausted it
// is popped and any side effect it applied (capture, lookahead or recursion
// bookkeeping) is undone, so the state always reflects the current path.
//
// Thread safety: the Backtracker is immutable after creation; mutable state
// lives in BacktrackerState.
type Backtracker struct {
	graph          *Graph
	maxVisitedBits int
}

// NewBacktracker creates a backtracking executor for g.
func NewBacktracker(g *Graph) *Backtracker {
	return &Backtracker{graph: g, maxVisitedBits: DefaultMaxVisitedBits}
}

// SetMaxVisitedBits changes the memo size limit. Zero disables the memo.
func (b *Backtracker) SetMaxVisitedBits(n int) {
	b.maxVisitedBits = n
}

// Graph returns the graph being executed.
func (b *Backtracker) Graph() *Graph {
	return b.graph
}

// NewState creates a state sized for the graph.
func (b *Backtracker) NewState() *BacktrackerState {
	groups := b.graph.groups + 1
	return &BacktrackerState{
		frames:    make([]frame, 0, 32),
		capOpen:   make([][]int, groups),
		capClosed: make([][]Span, groups),
	}
}

// CanMemoize reports whether searches over a haystack of the given length
// use the (node, position) memo, which bounds every search to
// O(nodes × length) steps.
func (b *Backtracker) CanMemoize(haystackLen int) bool {
	return b.graph.memoizable && b.graph.Len()*(haystackLen+1) <= b.maxVisitedBits
}

// prepare sets up the memo for a new haystack.
func (b *Backtracker) prepare(s *BacktrackerState, haystackLen int) {
	s.memo = b.CanMemoize(haystackLen)
	if !s.memo {
		return
	}
	s.width = haystackLen + 1
	words := (b.graph.Len()*s.width + 63) / 64
	if cap(s.visited) >= words {
		s.visited = s.visited[:words]
		clear(s.visited)
	} else {
		s.visited = make([]uint64, words)
	}
}

// MatchAt runs a single attempt anchored at start and returns the end of
// the match.
func (b *Backtracker) MatchAt(s *BacktrackerState, haystack []byte, start int) (int, bool) {
	b.prepare(s, len(haystack))
	s.captures = false
	return b.run(s, haystack, start)
}

// CapturesAt runs a single attempt anchored at start and returns the spans
// recorded for every group. Index 0 holds the whole match; a group that
// matched several times holds one span per iteration.
func (b *Backtracker) CapturesAt(s *BacktrackerState, haystack []byte, start int) ([][]Span, bool) {
	b.prepare(s, len(haystack))
	s.captures = true
	end, ok := b.run(s, haystack, start)
	if !ok {
		return nil, false
	}
	return b.collect(s, start, end), true
}

// Find runs attempts at at and at every later candidate and returns the
// first match. Attempts are made at code-point boundaries in increasing
// order; next, when non-nil, lets the caller skip positions that cannot
// start a match.
func (b *Backtracker) Find(s *BacktrackerState, haystack []byte, at int, next Candidates) (Span, bool) {
	b.prepare(s, len(haystack))
	return b.search(s, haystack, at, next)
}

// FindNext continues the search of a previous Find or FindNext call made
// with s on the same haystack. at must not be before the end of the last
// match. The memo carries over, so iterating over every match of a
// haystack costs no more than one Find over it.
func (b *Backtracker) FindNext(s *BacktrackerState, haystack []byte, at int, next Candidates) (Span, bool) {
	if s.memo && s.width == len(haystack)+1 && at < s.width {
		s.forget(at)
	} else {
		b.prepare(s, len(haystack))
	}
	return b.search(s, haystack, at, next)
}

func (b *Backtracker) search(s *BacktrackerState, haystack []byte, at int, next Candidates) (Span, bool) {
	s.captures = false
	for pos := at; pos <= len(haystack); pos = utf8x.NextStart(haystack, pos) {
		if next != nil {
			if pos = next(haystack, pos); pos < 0 {
				break
			}
		}
		if end, ok := b.run(s, haystack, pos); ok {
			return Span{Start: pos, End: end}, true
		}
	}
	return Span{}, false
}

// FindCaptures is like Find but also returns the group spans of the match.
func (b *Backtracker) FindCaptures(s *BacktrackerState, haystack []byte, at int, next Candidates) ([][]Span, bool) {
	b.prepare(s, len(haystack))
	s.captures = true
	for pos := at; pos <= len(haystack); pos = utf8x.NextStart(haystack, pos) {
		if next != nil {
			if pos = next(haystack, pos); pos < 0 {
				break
			}
		}
		if end, ok := b.run(s, haystack, pos); ok {
			return b.collect(s, pos, end), true
		}
	}
	return nil, false
}

func (b *Backtracker) collect(s *BacktrackerState, start, end int) [][]Span {
	out := make([][]Span, len(s.capClosed))
	out[0] = []Span{{Start: start, End: end}}
	for g := 1; g < len(s.capClosed); g++ {
		if len(s.capClosed[g]) > 0 {
			out[g] = append([]Span(nil), s.capClosed[g]...)
		}
	}
	return out
}

// reset clears the per-attempt stacks. The memo is kept: a (node, position)
// pair that failed once fails for every attempt on the same haystack.
func (s *BacktrackerState) reset() {
	s.frames = s.frames[:0]
	for g := range s.capOpen {
		s.capOpen[g] = s.capOpen[g][:0]
		s.capClosed[g] = s.capClosed[g][:0]
	}
	s.look = s.look[:0]
	s.rec = s.rec[:0]
	s.scopes = 0
}

// forget clears the memo column of pos. Only the path of the last match
// can have marked pairs at its end position without exhausting them.
func (s *BacktrackerState) forget(pos int) {
	for idx := pos; idx < len(s.visited)*64; idx += s.width {
		s.visited[idx/64] &^= uint64(1) << (idx % 64)
	}
}

// newScope returns a context id not used before in this attempt.
func (s *BacktrackerState) newScope() uint32 {
	s.scopes++
	return s.scopes
}

// admit decides whether node may be pushed at pos in scope on top of the
// frames below index limit, and returns the child cursor the new frame
// starts at.
//
// With the memo it rejects pairs explored before. Otherwise it looks for the
// same node at the same position and scope on the live path: reaching it
// again consumed nothing, so the push is rejected. When a commit lies in
// between, the live frame can no longer be backtracked into; a branching
// node then resumes with the children the live frame has not tried yet.
func (s *BacktrackerState) admit(g *Graph, node NodeID, pos int, scope uint32, limit int) (uint32, bool) {
	if s.memo {
		idx := int(node)*s.width + pos
		word, bit := idx/64, uint64(1)<<(idx%64)
		if s.visited[word]&bit != 0 {
			return 0, false
		}
		s.visited[word] |= bit
		return 0, true
	}
	committed := limit // lowest frame index covered by a commit above
	for i := limit - 1; i >= 0; i-- {
		f := &s.frames[i]
		if f.pos < pos {
			break
		}
		if f.node == node && f.pos == pos && f.scope == scope {
			if committed <= i && resumable(g.nodes[node].Kind) {
				return f.cursor, true
			}
			return 0, false
		}
		if f.effect == effectCommit {
			committed = min(committed, f.aux)
		}
	}
	return 0, true
}

func resumable(k Kind) bool {
	switch k.Family() {
	case FamilyMatch, FamilyAnchor:
		return true
	case FamilyBehaviour:
		return k != KindDropStack
	}
	return false
}

// recursing reports whether the pattern was already entered at pos, by the
// attempt itself or by a recursive call, with nothing consumed since. Scopes
// are ignored: calling again would repeat the same work one level deeper.
func (s *BacktrackerState) recursing(pos, limit int) bool {
	for i := limit - 1; i >= 0; i-- {
		f := &s.frames[i]
		if f.pos < pos {
			break
		}
		if f.pos == pos && (f.node == StartNode || f.effect == effectRecPush) {
			return true
		}
	}
	return false
}

// run performs one attempt anchored at start.
func (b *Backtracker) run(s *BacktrackerState, haystack []byte, start int) (int, bool) {
	g := b.graph
	s.reset()
	if _, ok := s.admit(g, StartNode, start, 0, 0); !ok {
		return 0, false
	}
	s.frames = append(s.frames, frame{node: StartNode, pos: start, fresh: true})

	for len(s.frames) > 0 {
		top := len(s.frames) - 1
		f := &s.frames[top]
		n := &g.nodes[f.node]

		if f.fresh {
			f.fresh = false
			f.next = f.pos
			f.inner = f.scope
			switch n.Kind.Family() {
			case FamilyMatch:
				r, size, ok := utf8x.DecodeForward(haystack[f.pos:])
				if !ok || !n.Matches(r) {
					b.pop(s)
					continue
				}
				f.next = f.pos + size

			case FamilyAnchor:
				if !CheckAnchor(n.Kind, haystack, f.pos) {
					b.pop(s)
					continue
				}

			case FamilyBehaviour:
				switch n.Kind {
				case KindCapGroup:
					if s.captures {
						s.capOpen[n.Group] = append(s.capOpen[n.Group], f.pos)
						f.effect = effectCapOpen
					}
				case KindEndCapGroup:
					if s.captures {
						open := s.capOpen[n.Group]
						f.aux = -1
						startPos := f.pos
						if len(open) > 0 {
							f.aux = open[len(open)-1]
							startPos = f.aux
							s.capOpen[n.Group] = open[:len(open)-1]
						}
						s.capClosed[n.Group] = append(s.capClosed[n.Group], Span{Start: startPos, End: f.pos})
						f.effect = effectCapClose
					}
				case KindDropStack:
					f.aux = s.commitBase(g, top)
					f.effect = effectCommit
				}

			case FamilySpecial:
				switch n.Kind {
				case KindEnd:
					if len(s.rec) == 0 {
						return f.pos, true
					}
					ret := s.rec[len(s.rec)-1]
					s.rec = s.rec[:len(s.rec)-1]
					f.effect = effectRecReturn
					f.aux = ret.at
					f.inner = ret.scope

				case KindFail:
					b.pop(s)
					continue

				case KindGlobalRecursion:
					// The children run once End returns here, not now.
					f.cursor = uint32(n.Children.Len())
					if s.recursing(f.pos, top) {
						continue
					}
					s.rec = append(s.rec, mark{at: int(f.node), scope: f.scope})
					f.effect = effectRecPush
					f.inner = s.newScope()
					s.frames = append(s.frames, frame{node: StartNode, pos: f.pos, fresh: true, scope: f.inner})
					continue

				case KindStartLookAhead:
					s.look = append(s.look, mark{at: f.pos, scope: f.scope})
					f.effect = effectLookPush
					f.inner = s.newScope()

				case KindEndLookAhead:
					if len(s.look) > 0 {
						saved := s.look[len(s.look)-1]
						s.look = s.look[:len(s.look)-1]
						f.effect = effectLookPop
						f.aux = saved.at
						f.next = saved.at
						f.inner = saved.scope
					}

				case KindStartNegativeLookAhead:
					f.inner = s.newScope()

				case KindEndNegativeLookAhead:
					// The body matched, so the assertion fails.
					b.unwind(s, n.Partner)
					continue
				}
			}
		}

		children := n.Children.IDs()
		if f.effect == effectRecReturn {
			children = g.nodes[f.aux].Children.IDs()
		}

		if int(f.cursor) >= len(children) {
			switch {
			case n.Kind == KindStartNegativeLookAhead && f.effect != effectNegHeld:
				// Every way through the body failed, so the assertion holds.
				// The frame stays as a marker while execution continues after
				// the partner at the same position.
				f.effect = effectNegHeld
				s.frames = append(s.frames, frame{node: n.Partner, pos: f.pos, next: f.pos, scope: f.scope, inner: f.scope})
			case len(children) == 0 && n.Kind.Family() == FamilyMatch:
				panic(fmt.Sprintf("nfa: match node %d (%s) has no children", f.node, n))
			default:
				b.pop(s)
			}
			continue
		}

		pos, scope := f.next, f.inner
		if len(children) == 1 && f.effect == effectNone && n.Kind != KindStartNegativeLookAhead {
			// Tail position: the frame has nothing to undo and nothing left
			// to try, so the child takes its place.
			child := children[0]
			cursor, ok := s.admit(g, child, pos, scope, top)
			if !ok {
				b.pop(s)
				continue
			}
			*f = frame{node: child, pos: pos, fresh: true, cursor: cursor, scope: scope}
			continue
		}

		child := children[f.cursor]
		f.cursor++
		if cursor, ok := s.admit(g, child, pos, scope, top+1); ok {
			s.frames = append(s.frames, frame{node: child, pos: pos, fresh: true, cursor: cursor, scope: scope})
		}
	}
	return 0, false
}

// pop removes the top frame and undoes its side effect. Popping a commit
// also pops every frame it committed to.
func (b *Backtracker) pop(s *BacktrackerState) {
	base := len(s.frames) - 1
	for len(s.frames) > base {
		f := &s.frames[len(s.frames)-1]
		switch f.effect {
		case effectCapOpen:
			grp := b.graph.nodes[f.node].Group
			s.capOpen[grp] = s.capOpen[grp][:len(s.capOpen[grp])-1]
		case effectCapClose:
			grp := b.graph.nodes[f.node].Group
			s.capClosed[grp] = s.capClosed[grp][:len(s.capClosed[grp])-1]
			if f.aux >= 0 {
				s.capOpen[grp] = append(s.capOpen[grp], f.aux)
			}
		case effectLookPush:
			s.look = s.look[:len(s.look)-1]
		case effectLookPop:
			s.look = append(s.look, mark{at: f.aux, scope: f.inner})
		case effectRecPush:
			s.rec = s.rec[:len(s.rec)-1]
		case effectRecReturn:
			s.rec = append(s.rec, mark{at: f.aux, scope: f.inner})
		case effectCommit:
			base = min(base, f.aux)
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// unwind pops frames, undoing their effects, up to and including the
// topmost open negative lookahead of node target.
func (b *Backtracker) unwind(s *BacktrackerState, target NodeID) {
	for len(s.frames) > 0 {
		f := &s.frames[len(s.frames)-1]
		done := f.node == target && f.effect != effectNegHeld
		b.pop(s)
		if done {
			return
		}
	}
}

// commitBase returns the lowest frame index a DropStack at index top commits
// to. Frames from there up to top are never backtracked into: once the
// DropStack frame is popped, they are popped with it.
//
// The innermost open lookaround bounds the commit: its start frame and
// everything below it survive, so the lookaround can still resolve.
func (s *BacktrackerState) commitBase(g *Graph, top int) int {
	closed := 0
	for i := top - 1; i >= 0; i-- {
		f := &s.frames[i]
		switch g.nodes[f.node].Kind {
		case KindEndLookAhead:
			if f.effect == effectLookPop {
				closed++
			}
		case KindStartLookAhead:
			if closed > 0 {
				closed--
				continue
			}
			return i + 1
		case KindStartNegativeLookAhead:
			if f.effect != effectNegHeld {
				return i + 1
			}
		}
	}
	return 0
}
