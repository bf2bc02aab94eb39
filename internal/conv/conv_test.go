package conv

import "testing"

func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(42); got != 42 {
		t.Errorf("IntToUint32(42) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) did not panic")
		}
	}()
	IntToUint32(-1)
}

func TestGroupID(t *testing.T) {
	if got := GroupID(7); got != 7 {
		t.Errorf("GroupID(7) = %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("GroupID(1<<20) did not panic")
		}
	}()
	GroupID(1 << 20)
}
