package darray

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/slotforge/containers"
	"github.com/slotforge/containers/errors"
)

func u64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func TestNew(t *testing.T) {
	d, err := New(8, 8, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Destroy()

	if got, _ := d.Capacity(); got != 4 {
		t.Errorf("capacity: got %d, want 4", got)
	}
	if got, _ := d.Size(); got != 0 {
		t.Errorf("size: got %d, want 0", got)
	}
	if got, _ := d.Stride(); got != 8 {
		t.Errorf("stride: got %d, want 8", got)
	}
}

func TestNewDeferredAllocation(t *testing.T) {
	counting := containers.NewCountingAllocator(nil)
	d, err := New(8, 8, 0, WithAllocator(counting))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Destroy()

	if counting.Allocations() != 0 {
		t.Errorf("capacity 0 must defer allocation, got %d allocs", counting.Allocations())
	}

	// No room until a reserve provides the buffer.
	if err := d.Push(u64(1)); !errors.IsKind(err, errors.KindBufferFull) {
		t.Errorf("push before reserve: got %v, want buffer_full", err)
	}

	if err := d.Reserve(3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if counting.Allocations() != 1 {
		t.Errorf("allocations after reserve: got %d, want 1", counting.Allocations())
	}
	if err := d.Push(u64(1)); err != nil {
		t.Errorf("push after reserve: %v", err)
	}
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name      string
		elemSize  uint64
		alignment uint64
		capacity  uint64
	}{
		{"zero element size", 0, 8, 4},
		{"zero alignment", 8, 0, 4},
		{"alignment not power of two", 4, 3, 10},
		{"capacity overflow", 8, 8, math.MaxUint64 / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counting := containers.NewCountingAllocator(nil)
			_, err := New(tc.elemSize, tc.alignment, tc.capacity, WithAllocator(counting))
			if !errors.IsKind(err, errors.KindInvalidArgument) {
				t.Errorf("got %v, want invalid_argument", err)
			}
			if counting.Allocations() != 0 {
				t.Errorf("parameter rejection must happen before any allocation, got %d allocs",
					counting.Allocations())
			}
		})
	}
}

// Scenario: push two elements, fail a shrinking resize, grow, verify
// the first element survived, then fill to the new capacity.
func TestGrowOnlyResize(t *testing.T) {
	d, err := New(8, 8, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(u64(0xA))
	_ = d.Push(u64(0xB))

	out := make([]byte, 8)
	if err := d.Ref(0, out); err != nil {
		t.Fatalf("ref 0: %v", err)
	}
	if got := binary.LittleEndian.Uint64(out); got != 0xA {
		t.Errorf("ref 0: got %#x, want 0xA", got)
	}
	if err := d.Ref(1, out); err != nil {
		t.Fatalf("ref 1: %v", err)
	}
	if got := binary.LittleEndian.Uint64(out); got != 0xB {
		t.Errorf("ref 1: got %#x, want 0xB", got)
	}

	// Current count is 2: resizing to 1 must fail and change nothing.
	if err := d.Resize(1); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Fatalf("resize below count: got %v, want invalid_argument", err)
	}
	if got, _ := d.Size(); got != 2 {
		t.Errorf("size after failed resize: got %d, want 2", got)
	}
	if got, _ := d.Capacity(); got != 2 {
		t.Errorf("capacity after failed resize: got %d, want 2", got)
	}

	if err := d.Resize(5); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := d.Ref(0, out); err != nil {
		t.Fatalf("ref after resize: %v", err)
	}
	if got := binary.LittleEndian.Uint64(out); got != 0xA {
		t.Errorf("element lost in resize: got %#x, want 0xA", got)
	}

	for i := uint64(0); i < 3; i++ {
		if err := d.Push(u64(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if got, _ := d.Size(); got != 5 {
		t.Errorf("size: got %d, want 5", got)
	}
	if err := d.Push(u64(9)); !errors.IsKind(err, errors.KindBufferFull) {
		t.Errorf("push at capacity: got %v, want buffer_full", err)
	}
}

func TestPushFullLeavesCountUnchanged(t *testing.T) {
	d, err := New(4, 4, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(make([]byte, 4))
	if err := d.Push(make([]byte, 4)); err == nil {
		t.Fatal("expected buffer_full")
	}
	if got, _ := d.Size(); got != 1 {
		t.Errorf("count mutated by failed push: got %d, want 1", got)
	}
}

func TestRefSetOutOfRange(t *testing.T) {
	d, err := New(4, 4, 4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(make([]byte, 4))

	tests := []struct {
		name  string
		index uint64
	}{
		{"at count", 1},
		{"beyond count within capacity", 3},
		{"beyond capacity", 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := d.Ref(tc.index, make([]byte, 4)); !errors.IsKind(err, errors.KindOutOfRange) {
				t.Errorf("ref: got %v, want out_of_range", err)
			}
			if err := d.Set(tc.index, make([]byte, 4)); !errors.IsKind(err, errors.KindOutOfRange) {
				t.Errorf("set: got %v, want out_of_range", err)
			}
		})
	}
}

func TestSet(t *testing.T) {
	d, err := New(8, 8, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(u64(1))
	_ = d.Push(u64(2))

	if err := d.Set(0, u64(99)); err != nil {
		t.Fatalf("set: %v", err)
	}

	out := make([]byte, 8)
	_ = d.Ref(0, out)
	if got := binary.LittleEndian.Uint64(out); got != 99 {
		t.Errorf("ref after set: got %d, want 99", got)
	}
	_ = d.Ref(1, out)
	if got := binary.LittleEndian.Uint64(out); got != 2 {
		t.Errorf("neighbor slot mutated by set: got %d, want 2", got)
	}
}

// Ref copies the whole slot including padding; writes zero the slot
// first, so the padding a caller sees is always zero, never bytes from
// a previous occupant.
func TestRefPaddingIsZeroed(t *testing.T) {
	d, err := New(5, 8, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	full := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_ = d.Push(full)
	if err := d.Set(0, []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("set: %v", err)
	}

	out := bytes.Repeat([]byte{0xAA}, 8)
	if err := d.Ref(0, out); err != nil {
		t.Fatalf("ref: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 0, 0, 0}
	if !bytes.Equal(out, want) {
		t.Errorf("slot copy: got %x, want %x", out, want)
	}
}

func TestRefRequiresStrideBytes(t *testing.T) {
	d, err := New(5, 8, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()
	_ = d.Push(make([]byte, 5))

	// 5 bytes hold the element but not the full 8-byte slot.
	if err := d.Ref(0, make([]byte, 5)); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("short ref out: got %v, want invalid_argument", err)
	}
}

func TestReserve(t *testing.T) {
	t.Run("discards content", func(t *testing.T) {
		d, err := New(8, 8, 4)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer d.Destroy()

		_ = d.Push(u64(1))
		_ = d.Push(u64(2))

		if err := d.Reserve(6); err != nil {
			t.Fatalf("reserve: %v", err)
		}
		if got, _ := d.Size(); got != 0 {
			t.Errorf("size after reserve: got %d, want 0", got)
		}
		if got, _ := d.Capacity(); got != 6 {
			t.Errorf("capacity after reserve: got %d, want 6", got)
		}
	})

	t.Run("zero capacity is a no-op", func(t *testing.T) {
		d, err := New(8, 8, 2)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer d.Destroy()
		_ = d.Push(u64(7))

		if err := d.Reserve(0); err != nil {
			t.Fatalf("reserve 0: %v", err)
		}
		if got, _ := d.Size(); got != 1 {
			t.Errorf("size after no-op reserve: got %d, want 1", got)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		d, err := New(8, 8, 2)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		defer d.Destroy()

		if err := d.Reserve(math.MaxUint64 / 2); !errors.IsKind(err, errors.KindInvalidArgument) {
			t.Errorf("got %v, want invalid_argument", err)
		}
	})
}

func TestResizeZeroIsNoOp(t *testing.T) {
	d, err := New(8, 8, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()
	_ = d.Push(u64(3))

	if err := d.Resize(0); err != nil {
		t.Fatalf("resize 0: %v", err)
	}
	if got, _ := d.Size(); got != 1 {
		t.Errorf("size after no-op resize: got %d, want 1", got)
	}
	if got, _ := d.Capacity(); got != 2 {
		t.Errorf("capacity after no-op resize: got %d, want 2", got)
	}
}

func TestResizeOnDeferredBehavesAsReserve(t *testing.T) {
	d, err := New(8, 8, 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	if err := d.Resize(4); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if got, _ := d.Capacity(); got != 4 {
		t.Errorf("capacity: got %d, want 4", got)
	}
	if err := d.Push(u64(1)); err != nil {
		t.Errorf("push after deferred resize: %v", err)
	}
}

func TestResizeTransactionalOnAllocFailure(t *testing.T) {
	// Allow exactly the creation allocation; the resize allocation fails.
	failing := containers.NewFailAllocator(1)
	d, err := New(8, 8, 2, WithAllocator(failing))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(u64(0xDEAD))
	_ = d.Push(u64(0xBEEF))

	err = d.Resize(8)
	if !errors.IsKind(err, errors.KindAllocation) {
		t.Fatalf("got %v, want allocation failure", err)
	}

	// Old buffer and state must be fully intact.
	if got, _ := d.Capacity(); got != 2 {
		t.Errorf("capacity after failed resize: got %d, want 2", got)
	}
	out := make([]byte, 8)
	if err := d.Ref(1, out); err != nil {
		t.Fatalf("ref after failed resize: %v", err)
	}
	if got := binary.LittleEndian.Uint64(out); got != 0xBEEF {
		t.Errorf("element after failed resize: got %#x, want 0xBEEF", got)
	}
}

func TestDefaultHandle(t *testing.T) {
	var d Array

	t.Run("destroy is a no-op", func(t *testing.T) {
		d.Destroy()
		d.Destroy()
	})

	t.Run("operations report invalid darray", func(t *testing.T) {
		if err := d.Push(u64(1)); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("push: got %v, want invalid_darray", err)
		}
		if err := d.Ref(0, make([]byte, 8)); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("ref: got %v, want invalid_darray", err)
		}
		if err := d.Set(0, u64(1)); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("set: got %v, want invalid_darray", err)
		}
		if _, err := d.Size(); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("size: got %v, want invalid_darray", err)
		}
		if _, err := d.Capacity(); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("capacity: got %v, want invalid_darray", err)
		}
		if err := d.Reserve(4); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("reserve: got %v, want invalid_darray", err)
		}
		if err := d.Resize(4); !errors.IsKind(err, errors.KindInvalidDarray) {
			t.Errorf("resize: got %v, want invalid_darray", err)
		}
	})
}

func TestDestroyedHandle(t *testing.T) {
	d, err := New(8, 8, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = d.Push(u64(1))

	d.Destroy()
	d.Destroy() // idempotent

	if err := d.Push(u64(2)); !errors.IsKind(err, errors.KindInvalidDarray) {
		t.Errorf("push after destroy: got %v, want invalid_darray", err)
	}
}

func TestStats(t *testing.T) {
	d, err := New(12, 16, 4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer d.Destroy()

	_ = d.Push(make([]byte, 12))

	st := d.Stats()
	if st.ElementSize != 12 || st.Alignment != 16 || st.Stride != 16 {
		t.Errorf("layout stats: %+v", st)
	}
	if st.Capacity != 4 || st.Count != 1 {
		t.Errorf("occupancy stats: %+v", st)
	}
	if st.BufferBytes != 64 {
		t.Errorf("buffer bytes: got %d, want 64", st.BufferBytes)
	}
	if st.Utilization != 0.25 {
		t.Errorf("utilization: got %v, want 0.25", st.Utilization)
	}

	var def Array
	if got := def.Stats(); got != (Stats{}) {
		t.Errorf("default handle stats: got %+v, want zero", got)
	}
}
