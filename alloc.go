package containers

import (
	"sync/atomic"

	"github.com/slotforge/containers/errors"
)

// MaxAlloc caps a single buffer allocation. Requests above it fail
// with an allocation error instead of asking the runtime for an
// implausible region.
const MaxAlloc uint64 = 1 << 40

// Allocator acquires and returns the contiguous byte regions backing a
// container. Allocate must return a fully zeroed region, padding bytes
// included: growth operations copy whole slots, so no byte of a region
// may ever be unwritten.
type Allocator interface {
	Allocate(n uint64) ([]byte, error)
	Release(buf []byte)
}

// GoAllocator is the default Allocator, backed by the Go runtime.
// Regions come from make, which zeroes them; Release is a no-op and
// leaves reclamation to the garbage collector.
type GoAllocator struct{}

func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

func (a *GoAllocator) Allocate(n uint64) ([]byte, error) {
	if n > MaxAlloc {
		return nil, errors.New(errors.OpAllocate, errors.KindAllocation).
			Value(n).
			Detail("allocation of %d bytes exceeds maximum %d", n, MaxAlloc).
			Build()
	}
	return make([]byte, n), nil
}

func (a *GoAllocator) Release(buf []byte) {}

// DefaultAllocator is used by containers created without an explicit
// allocator option.
var DefaultAllocator Allocator = NewGoAllocator()

// CountingAllocator wraps another Allocator and counts traffic through
// it. It backs allocation-accounting assertions in tests and can be
// attached to a container to observe its growth behavior.
type CountingAllocator struct {
	inner Allocator

	allocs   atomic.Uint64
	releases atomic.Uint64
	bytes    atomic.Uint64
}

// NewCountingAllocator wraps inner, or DefaultAllocator when inner is nil.
func NewCountingAllocator(inner Allocator) *CountingAllocator {
	if inner == nil {
		inner = DefaultAllocator
	}
	return &CountingAllocator{inner: inner}
}

func (a *CountingAllocator) Allocate(n uint64) ([]byte, error) {
	buf, err := a.inner.Allocate(n)
	if err != nil {
		return nil, err
	}
	a.allocs.Add(1)
	a.bytes.Add(n)
	return buf, nil
}

func (a *CountingAllocator) Release(buf []byte) {
	if buf == nil {
		return
	}
	a.releases.Add(1)
	a.inner.Release(buf)
}

// Allocations returns the number of successful Allocate calls.
func (a *CountingAllocator) Allocations() uint64 { return a.allocs.Load() }

// Releases returns the number of Release calls with a non-nil buffer.
func (a *CountingAllocator) Releases() uint64 { return a.releases.Load() }

// AllocatedBytes returns the total bytes handed out.
func (a *CountingAllocator) AllocatedBytes() uint64 { return a.bytes.Load() }

// FailAllocator succeeds for the first Allow allocations and fails
// afterwards. It exists to test that growth is transactional: a failed
// reallocation must leave the container untouched.
type FailAllocator struct {
	inner Allocator
	Allow uint64

	allocs uint64
}

// NewFailAllocator returns an allocator that permits allow successful
// allocations before failing.
func NewFailAllocator(allow uint64) *FailAllocator {
	return &FailAllocator{inner: DefaultAllocator, Allow: allow}
}

func (a *FailAllocator) Allocate(n uint64) ([]byte, error) {
	if a.allocs >= a.Allow {
		return nil, errors.AllocationFailed(errors.OpAllocate, n, nil)
	}
	a.allocs++
	return a.inner.Allocate(n)
}

func (a *FailAllocator) Release(buf []byte) {
	a.inner.Release(buf)
}
