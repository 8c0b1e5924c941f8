package stack

import (
	"go.uber.org/zap"

	"github.com/slotforge/containers"
	"github.com/slotforge/containers/errors"
	"github.com/slotforge/containers/internal/layout"
)

// Stack is a LIFO container over a single owned byte buffer. Elements
// are raw byte payloads of a fixed size, each stored in a slot padded
// to the stack's alignment requirement.
//
// The zero value is a default handle with no backing state: Destroy is
// a safe no-op on it, and every other operation reports an
// invalid-stack error. Use New to obtain a ready stack.
//
// A Stack is not safe for concurrent use.
type Stack struct {
	alloc  containers.Allocator
	buffer []byte

	elementSize uint64
	alignment   uint64
	stride      uint64
	maxElements uint64
	topIndex    uint64

	ready bool
}

// Option configures a Stack at creation time.
type Option func(*Stack)

// WithAllocator replaces the default buffer allocator.
func WithAllocator(a containers.Allocator) Option {
	return func(s *Stack) {
		if a != nil {
			s.alloc = a
		}
	}
}

// New creates a stack holding up to capacity elements of elementSize
// bytes, each slot aligned to alignment (a power of two). The backing
// buffer is allocated up front and fully zeroed.
func New(elementSize, alignment, capacity uint64, opts ...Option) (*Stack, error) {
	if elementSize == 0 || alignment == 0 || capacity == 0 {
		return nil, errors.InvalidArgument(errors.OpCreate,
			"element size, alignment and capacity require non-zero values")
	}

	stride, err := layout.Stride(elementSize, alignment)
	if err != nil {
		return nil, errors.New(errors.OpCreate, errors.KindInvalidArgument).
			Cause(err).
			Detail("invalid slot layout").
			Build()
	}
	bufferSize, err := layout.BufferSize(stride, capacity)
	if err != nil {
		return nil, errors.CapacityOverflow(errors.OpCreate, stride, capacity)
	}

	s := &Stack{
		alloc:       containers.DefaultAllocator,
		elementSize: elementSize,
		alignment:   alignment,
		stride:      stride,
		maxElements: capacity,
	}
	for _, opt := range opts {
		opt(s)
	}

	buf, err := s.alloc.Allocate(bufferSize)
	if err != nil {
		return nil, errors.AllocationFailed(errors.OpCreate, bufferSize, err)
	}
	s.buffer = buf
	s.ready = true

	return s, nil
}

// Destroy releases the backing buffer and returns the handle to its
// default state. It is idempotent and safe on a nil or default handle.
func (s *Stack) Destroy() {
	if s == nil || !s.ready {
		return
	}
	s.alloc.Release(s.buffer)
	*s = Stack{}
}

// Push copies elementSize bytes from item into the next free slot.
// The slot is zeroed first so padding bytes never hold stale data.
func (s *Stack) Push(item []byte) error {
	if !s.valid() {
		return errors.NotInitialized(errors.OpPush, errors.KindInvalidStack, "stack")
	}
	if uint64(len(item)) < s.elementSize {
		return errors.New(errors.OpPush, errors.KindInvalidArgument).
			Value(len(item)).
			Detail("item requires at least %d bytes, got %d", s.elementSize, len(item)).
			Build()
	}
	if s.topIndex >= s.maxElements {
		return errors.Full(errors.OpPush, errors.KindStackFull, s.maxElements)
	}

	dst := s.slot(s.topIndex)
	clear(dst)
	copy(dst, item[:s.elementSize])
	s.topIndex++
	return nil
}

// Pop copies elementSize bytes of the top element into out and removes it.
func (s *Stack) Pop(out []byte) error {
	if !s.valid() {
		return errors.NotInitialized(errors.OpPop, errors.KindInvalidStack, "stack")
	}
	if uint64(len(out)) < s.elementSize {
		return errors.New(errors.OpPop, errors.KindInvalidArgument).
			Value(len(out)).
			Detail("out requires at least %d bytes, got %d", s.elementSize, len(out)).
			Build()
	}
	if s.topIndex == 0 {
		return errors.Empty(errors.OpPop, errors.KindStackEmpty)
	}

	copy(out[:s.elementSize], s.slot(s.topIndex-1))
	s.topIndex--
	return nil
}

// PeekRef returns a borrowed, read-only view of the top element. No
// copy is performed. The view is valid only until the next mutating
// call on the stack (Push, Pop, DiscardTop, Clear, Reserve, Resize,
// Destroy); callers must not write through it.
func (s *Stack) PeekRef() ([]byte, error) {
	if !s.valid() {
		return nil, errors.NotInitialized(errors.OpPeek, errors.KindInvalidStack, "stack")
	}
	if s.topIndex == 0 {
		return nil, errors.Empty(errors.OpPeek, errors.KindStackEmpty)
	}
	return s.slot(s.topIndex - 1)[:s.elementSize:s.elementSize], nil
}

// DiscardTop removes the top element without copying it out. Paired
// with PeekRef it commits a removal after the element has been read in
// place.
func (s *Stack) DiscardTop() error {
	if !s.valid() {
		return errors.NotInitialized(errors.OpDiscardTop, errors.KindInvalidStack, "stack")
	}
	if s.topIndex == 0 {
		return errors.Empty(errors.OpDiscardTop, errors.KindStackEmpty)
	}
	s.topIndex--
	return nil
}

// Clear removes all elements. The buffer is retained, not reallocated.
func (s *Stack) Clear() error {
	if !s.valid() {
		return errors.NotInitialized(errors.OpClear, errors.KindInvalidStack, "stack")
	}
	s.topIndex = 0
	return nil
}

// Reserve replaces the backing buffer with a fresh zeroed buffer of
// capacity slots, discarding all current content. It is the cheap
// growth path when prior data is disposable. On allocation failure the
// stack is left unchanged.
func (s *Stack) Reserve(capacity uint64) error {
	if capacity == 0 {
		return errors.InvalidArgument(errors.OpReserve, "capacity requires a non-zero value")
	}
	if !s.valid() {
		return errors.NotInitialized(errors.OpReserve, errors.KindInvalidStack, "stack")
	}
	bufferSize, err := layout.BufferSize(s.stride, capacity)
	if err != nil {
		return errors.CapacityOverflow(errors.OpReserve, s.stride, capacity)
	}

	buf, err := s.alloc.Allocate(bufferSize)
	if err != nil {
		return errors.AllocationFailed(errors.OpReserve, bufferSize, err)
	}

	old := s.buffer
	s.buffer = buf
	s.maxElements = capacity
	s.topIndex = 0
	s.alloc.Release(old)
	return nil
}

// Resize grows the stack to capacity slots, preserving all current
// elements in order. Shrinking is not allowed. The growth is
// transactional: allocate new, copy live slots, swap, release old. On
// allocation failure the stack is left unchanged.
func (s *Stack) Resize(capacity uint64) error {
	if capacity == 0 {
		return errors.InvalidArgument(errors.OpResize, "capacity requires a non-zero value")
	}
	if !s.valid() {
		return errors.NotInitialized(errors.OpResize, errors.KindInvalidStack, "stack")
	}
	if capacity <= s.maxElements {
		return errors.New(errors.OpResize, errors.KindInvalidArgument).
			Value(capacity).
			Detail("shrinking the buffer is not allowed: %d <= current capacity %d", capacity, s.maxElements).
			Build()
	}
	bufferSize, err := layout.BufferSize(s.stride, capacity)
	if err != nil {
		return errors.CapacityOverflow(errors.OpResize, s.stride, capacity)
	}

	buf, err := s.alloc.Allocate(bufferSize)
	if err != nil {
		return errors.AllocationFailed(errors.OpResize, bufferSize, err)
	}
	copy(buf, s.buffer[:s.topIndex*s.stride])

	old := s.buffer
	s.buffer = buf
	s.maxElements = capacity
	s.alloc.Release(old)
	return nil
}

// Capacity returns the number of slots the stack can hold.
func (s *Stack) Capacity() (uint64, error) {
	if !s.valid() {
		return 0, errors.NotInitialized(errors.OpCapacity, errors.KindInvalidStack, "stack")
	}
	return s.maxElements, nil
}

// IsFull reports whether the stack has no free slots. A default or
// destroyed handle conservatively reports full (with a warning) so
// careless callers fail closed instead of writing into an unusable
// handle.
func (s *Stack) IsFull() bool {
	if !s.valid() {
		Logger().Warn("predicate on uninitialized stack; reporting full",
			zap.String("predicate", "is_full"))
		return true
	}
	return s.topIndex >= s.maxElements
}

// IsEmpty reports whether the stack holds no elements. A default or
// destroyed handle conservatively reports empty (with a warning).
func (s *Stack) IsEmpty() bool {
	if !s.valid() {
		Logger().Warn("predicate on uninitialized stack; reporting empty",
			zap.String("predicate", "is_empty"))
		return true
	}
	return s.topIndex == 0
}

// Stats is a read-only snapshot of the stack's layout and occupancy.
type Stats struct {
	ElementSize uint64
	Alignment   uint64
	Stride      uint64
	Capacity    uint64
	Count       uint64
	BufferBytes uint64
	Utilization float64
}

// Stats returns the current layout and occupancy. A default handle
// yields the zero Stats.
func (s *Stack) Stats() Stats {
	if !s.valid() {
		return Stats{}
	}
	st := Stats{
		ElementSize: s.elementSize,
		Alignment:   s.alignment,
		Stride:      s.stride,
		Capacity:    s.maxElements,
		Count:       s.topIndex,
		BufferBytes: uint64(len(s.buffer)),
	}
	if st.Capacity > 0 {
		st.Utilization = float64(st.Count) / float64(st.Capacity)
	}
	return st
}

func (s *Stack) valid() bool {
	return s != nil && s.ready
}

func (s *Stack) slot(index uint64) []byte {
	off := index * s.stride
	return s.buffer[off : off+s.stride : off+s.stride]
}
