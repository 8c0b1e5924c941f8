package layout

import (
	"math"

	"github.com/slotforge/containers/errors"
)

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

func SafeMulU64(a, b uint64) (uint64, bool) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Stride returns the aligned element size: the smallest multiple of
// alignment that is >= elementSize. elementSize must be non-zero and
// alignment a non-zero power of two.
func Stride(elementSize, alignment uint64) (uint64, error) {
	if elementSize == 0 {
		return 0, errors.InvalidArgument(errors.OpLayout, "element size requires a non-zero value")
	}
	if !IsPowerOfTwo(alignment) {
		return 0, errors.New(errors.OpLayout, errors.KindInvalidArgument).
			Value(alignment).
			Detail("alignment %d must be a power of two", alignment).
			Build()
	}

	padding := (alignment - elementSize%alignment) % alignment
	stride, ok := SafeAddU64(elementSize, padding)
	if !ok {
		return 0, errors.InvalidArgument(errors.OpLayout, "element size too large")
	}
	return stride, nil
}

// BufferSize returns stride*capacity, rejecting capacities whose slot
// arithmetic would wrap around the size type.
func BufferSize(stride, capacity uint64) (uint64, error) {
	size, ok := SafeMulU64(stride, capacity)
	if !ok {
		return 0, errors.CapacityOverflow(errors.OpLayout, stride, capacity)
	}
	return size, nil
}
