// Package sparse provides the node-index sets used by the parallel executor.
//
// Two flavours are provided:
//   - SparseSet keeps insertion order, which the leftmost-first search uses
//     as thread priority.
//   - SortedSet keeps its members in ascending order, which gives the
//     is-match frontier a deterministic iteration order.
//
// Both support O(1) Clear so that frontiers can be recycled between steps
// without reallocating.
package sparse

// SparseSet is a set of uint32 values drawn from [0, capacity).
// It maintains a sparse array for membership and a dense array for iteration;
// the sparse array maps values to their index in the dense array.
type SparseSet struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32 // members in insertion order
}

// NewSparseSet creates a set able to hold values below capacity.
func NewSparseSet(capacity int) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value to the set and reports whether it was newly added.
// Panics if value >= capacity.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set.
func (s *SparseSet) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements in O(1).
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no elements.
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Capacity returns the exclusive upper bound on storable values.
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// Resize adjusts the capacity. Growing keeps existing members; shrinking
// clears the set.
func (s *SparseSet) Resize(capacity int) {
	if capacity <= len(s.sparse) {
		s.Clear()
		return
	}
	sparse := make([]uint32, capacity)
	copy(sparse, s.sparse)
	s.sparse = sparse
}

// Values returns the members in insertion order.
// The returned slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}

// SortedSet is a set of uint32 values kept in ascending order.
//
// Insertion positions the value with a binary search. For the small frontier
// sizes typical of compiled patterns this beats hashing and yields a
// deterministic iteration order.
type SortedSet struct {
	items []uint32
}

// NewSortedSet creates an empty sorted set with room for capacity members.
func NewSortedSet(capacity int) *SortedSet {
	return &SortedSet{items: make([]uint32, 0, capacity)}
}

// search returns the index of the first member >= value.
func (s *SortedSet) search(value uint32) int {
	lo, hi := 0, len(s.items)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s.items[mid] < value {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Insert adds value and reports whether it was newly added.
func (s *SortedSet) Insert(value uint32) bool {
	i := s.search(value)
	if i < len(s.items) && s.items[i] == value {
		return false
	}
	s.items = append(s.items, 0)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = value
	return true
}

// Contains reports whether value is a member.
func (s *SortedSet) Contains(value uint32) bool {
	i := s.search(value)
	return i < len(s.items) && s.items[i] == value
}

// PopFirst removes and returns the smallest member.
func (s *SortedSet) PopFirst() (uint32, bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	v := s.items[0]
	s.items = s.items[:copy(s.items, s.items[1:])]
	return v, true
}

// Clear removes all elements, keeping the backing storage.
func (s *SortedSet) Clear() {
	s.items = s.items[:0]
}

// Len returns the number of elements.
func (s *SortedSet) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the set has no elements.
func (s *SortedSet) IsEmpty() bool {
	return len(s.items) == 0
}

// Values returns the members in ascending order.
// The returned slice is valid until the next mutation.
func (s *SortedSet) Values() []uint32 {
	return s.items
}
