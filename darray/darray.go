package darray

import (
	"go.uber.org/zap"

	"github.com/slotforge/containers"
	"github.com/slotforge/containers/errors"
	"github.com/slotforge/containers/internal/layout"
)

// Array is a growable random-access container over a single owned byte
// buffer. Elements are raw byte payloads of a fixed size, each stored
// in a slot padded to the array's alignment requirement. Growth is
// always an explicit caller action; Push never reallocates.
//
// The zero value is a default handle with no backing state: Destroy is
// a safe no-op on it, and every other operation reports an
// invalid-darray error. Use New to obtain a ready array.
//
// An Array is not safe for concurrent use.
type Array struct {
	alloc  containers.Allocator
	buffer []byte

	elementSize  uint64
	alignment    uint64
	stride       uint64
	maxElements  uint64
	elementCount uint64

	ready bool
}

// Option configures an Array at creation time.
type Option func(*Array)

// WithAllocator replaces the default buffer allocator.
func WithAllocator(a containers.Allocator) Option {
	return func(d *Array) {
		if a != nil {
			d.alloc = a
		}
	}
}

// New creates an array holding up to capacity elements of elementSize
// bytes, each slot aligned to alignment (a power of two). A capacity
// of zero is legal and defers the buffer allocation to a later
// Reserve or Resize.
func New(elementSize, alignment, capacity uint64, opts ...Option) (*Array, error) {
	if elementSize == 0 || alignment == 0 {
		return nil, errors.InvalidArgument(errors.OpCreate,
			"element size and alignment require non-zero values")
	}

	stride, err := layout.Stride(elementSize, alignment)
	if err != nil {
		return nil, errors.New(errors.OpCreate, errors.KindInvalidArgument).
			Cause(err).
			Detail("invalid slot layout").
			Build()
	}

	d := &Array{
		alloc:       containers.DefaultAllocator,
		elementSize: elementSize,
		alignment:   alignment,
		stride:      stride,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ready = true

	if capacity == 0 {
		return d, nil
	}
	if err := d.Reserve(capacity); err != nil {
		return nil, err
	}
	return d, nil
}

// Destroy releases the backing buffer and returns the handle to its
// default state. It is idempotent and safe on a nil or default handle.
func (d *Array) Destroy() {
	if d == nil || !d.ready {
		return
	}
	d.alloc.Release(d.buffer)
	*d = Array{}
}

// Reserve replaces the backing buffer with a fresh zeroed buffer of
// capacity slots, discarding all current content. A capacity of zero
// succeeds as a no-op. On allocation failure the array is left
// unchanged.
func (d *Array) Reserve(capacity uint64) error {
	if !d.valid() {
		return errors.NotInitialized(errors.OpReserve, errors.KindInvalidDarray, "dynamic array")
	}
	if capacity == 0 {
		Logger().Warn("reserve with zero capacity; nothing to be done",
			zap.Uint64("element_size", d.elementSize))
		return nil
	}
	bufferSize, err := layout.BufferSize(d.stride, capacity)
	if err != nil {
		return errors.CapacityOverflow(errors.OpReserve, d.stride, capacity)
	}

	buf, err := d.alloc.Allocate(bufferSize)
	if err != nil {
		return errors.AllocationFailed(errors.OpReserve, bufferSize, err)
	}

	old := d.buffer
	d.buffer = buf
	d.maxElements = capacity
	d.elementCount = 0
	d.alloc.Release(old)
	return nil
}

// Resize grows the array to capacity slots, preserving all current
// elements and their order. The new capacity must not be smaller than
// the current element count. On an array whose allocation was deferred
// it behaves like Reserve. A capacity of zero succeeds as a no-op.
// The growth is transactional: allocate new, copy live slots, swap,
// release old. On allocation failure the array is left unchanged.
func (d *Array) Resize(capacity uint64) error {
	if !d.valid() {
		return errors.NotInitialized(errors.OpResize, errors.KindInvalidDarray, "dynamic array")
	}
	if capacity == 0 {
		Logger().Warn("resize with zero capacity; nothing to be done",
			zap.Uint64("element_count", d.elementCount))
		return nil
	}
	if d.buffer == nil {
		return d.Reserve(capacity)
	}
	if capacity < d.elementCount {
		return errors.New(errors.OpResize, errors.KindInvalidArgument).
			Value(capacity).
			Detail("cannot resize below current element count: %d < %d", capacity, d.elementCount).
			Build()
	}
	bufferSize, err := layout.BufferSize(d.stride, capacity)
	if err != nil {
		return errors.CapacityOverflow(errors.OpResize, d.stride, capacity)
	}

	buf, err := d.alloc.Allocate(bufferSize)
	if err != nil {
		return errors.AllocationFailed(errors.OpResize, bufferSize, err)
	}
	copy(buf, d.buffer[:d.elementCount*d.stride])

	old := d.buffer
	d.buffer = buf
	d.maxElements = capacity
	d.alloc.Release(old)
	return nil
}

// Push copies elementSize bytes from item into the slot after the last
// element. It never grows the buffer; at capacity it fails with a
// buffer-full error and growth must be requested explicitly. The slot
// is zeroed first so padding bytes never hold stale data.
func (d *Array) Push(item []byte) error {
	if !d.valid() {
		return errors.NotInitialized(errors.OpPush, errors.KindInvalidDarray, "dynamic array")
	}
	if uint64(len(item)) < d.elementSize {
		return errors.New(errors.OpPush, errors.KindInvalidArgument).
			Value(len(item)).
			Detail("item requires at least %d bytes, got %d", d.elementSize, len(item)).
			Build()
	}
	if d.elementCount == d.maxElements {
		return errors.Full(errors.OpPush, errors.KindBufferFull, d.maxElements)
	}

	dst := d.slot(d.elementCount)
	clear(dst)
	copy(dst, item[:d.elementSize])
	d.elementCount++
	return nil
}

// Ref copies the full slot at index into out: stride bytes, trailing
// alignment padding included, so callers whose representation gives
// the padding meaning receive it intact. out must hold at least
// Stride bytes.
func (d *Array) Ref(index uint64, out []byte) error {
	if !d.valid() {
		return errors.NotInitialized(errors.OpRef, errors.KindInvalidDarray, "dynamic array")
	}
	if uint64(len(out)) < d.stride {
		return errors.New(errors.OpRef, errors.KindInvalidArgument).
			Value(len(out)).
			Detail("out requires at least %d bytes (full slot), got %d", d.stride, len(out)).
			Build()
	}
	if index >= d.elementCount {
		return errors.OutOfRange(errors.OpRef, index, d.elementCount)
	}

	copy(out[:d.stride], d.slot(index))
	return nil
}

// Set overwrites the element at index with elementSize bytes from
// item. The slot is zeroed first so padding bytes never hold data from
// a previous occupant.
func (d *Array) Set(index uint64, item []byte) error {
	if !d.valid() {
		return errors.NotInitialized(errors.OpSet, errors.KindInvalidDarray, "dynamic array")
	}
	if uint64(len(item)) < d.elementSize {
		return errors.New(errors.OpSet, errors.KindInvalidArgument).
			Value(len(item)).
			Detail("item requires at least %d bytes, got %d", d.elementSize, len(item)).
			Build()
	}
	if index >= d.elementCount {
		return errors.OutOfRange(errors.OpSet, index, d.elementCount)
	}

	dst := d.slot(index)
	clear(dst)
	copy(dst, item[:d.elementSize])
	return nil
}

// Size returns the number of live elements.
func (d *Array) Size() (uint64, error) {
	if !d.valid() {
		return 0, errors.NotInitialized(errors.OpSize, errors.KindInvalidDarray, "dynamic array")
	}
	return d.elementCount, nil
}

// Capacity returns the number of slots the buffer can hold.
func (d *Array) Capacity() (uint64, error) {
	if !d.valid() {
		return 0, errors.NotInitialized(errors.OpCapacity, errors.KindInvalidDarray, "dynamic array")
	}
	return d.maxElements, nil
}

// Stride returns the slot size in bytes: the element size padded to
// the alignment requirement. Ref copies this many bytes.
func (d *Array) Stride() (uint64, error) {
	if !d.valid() {
		return 0, errors.NotInitialized(errors.OpLayout, errors.KindInvalidDarray, "dynamic array")
	}
	return d.stride, nil
}

// Stats is a read-only snapshot of the array's layout and occupancy.
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
func (d *Array) Stats() Stats {
	if !d.valid() {
		return Stats{}
	}
	st := Stats{
		ElementSize: d.elementSize,
		Alignment:   d.alignment,
		Stride:      d.stride,
		Capacity:    d.maxElements,
		Count:       d.elementCount,
		BufferBytes: uint64(len(d.buffer)),
	}
	if st.Capacity > 0 {
		st.Utilization = float64(st.Count) / float64(st.Capacity)
	}
	return st
}

func (d *Array) valid() bool {
	return d != nil && d.ready
}

func (d *Array) slot(index uint64) []byte {
	off := index * d.stride
	return d.buffer[off : off+d.stride : off+d.stride]
}
