package sparse

import (
	"slices"
	"testing"
)

func TestSparseSetInsertOrder(t *testing.T) {
	s := NewSparseSet(10)
	for _, v := range []uint32{7, 2, 5, 2, 7} {
		s.Insert(v)
	}
	if got := s.Values(); !slices.Equal(got, []uint32{7, 2, 5}) {
		t.Errorf("Values() = %v, want [7 2 5]", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSparseSetInsertReportsNew(t *testing.T) {
	s := NewSparseSet(4)
	if !s.Insert(3) {
		t.Error("first Insert(3) = false")
	}
	if s.Insert(3) {
		t.Error("second Insert(3) = true")
	}
}

func TestSparseSetClear(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(1)
	s.Insert(9)
	s.Clear()
	if !s.IsEmpty() || s.Contains(1) || s.Contains(9) {
		t.Errorf("set not empty after Clear: %v", s.Values())
	}
	// Stale sparse entries must not resurrect members.
	s.Insert(4)
	if s.Contains(1) {
		t.Error("Contains(1) after Clear and unrelated Insert")
	}
}

func TestSparseSetContainsOutOfBounds(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(5)
	if s.Contains(10) || s.Contains(100) {
		t.Error("Contains reported a value beyond capacity")
	}
}

func TestSparseSetResize(t *testing.T) {
	s := NewSparseSet(10)
	s.Insert(3)
	s.Insert(7)

	s.Resize(100)
	if !s.Contains(3) || !s.Contains(7) {
		t.Error("members lost when growing")
	}
	s.Insert(50)
	if !s.Contains(50) || s.Capacity() != 100 {
		t.Error("grown set cannot hold 50")
	}

	s.Resize(20)
	if !s.IsEmpty() {
		t.Errorf("shrinking should clear, got %v", s.Values())
	}
}

func TestSortedSet(t *testing.T) {
	s := NewSortedSet(4)
	for _, v := range []uint32{9, 3, 5, 3, 1, 9} {
		s.Insert(v)
	}
	if got := s.Values(); !slices.Equal(got, []uint32{1, 3, 5, 9}) {
		t.Fatalf("Values() = %v, want [1 3 5 9]", got)
	}
	if !s.Contains(5) || s.Contains(4) {
		t.Error("Contains mismatch")
	}
	v, ok := s.PopFirst()
	if !ok || v != 1 {
		t.Errorf("PopFirst() = %d, %v", v, ok)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d after PopFirst", s.Len())
	}
	s.Clear()
	if _, ok := s.PopFirst(); ok || !s.IsEmpty() {
		t.Error("PopFirst on cleared set succeeded")
	}
}
