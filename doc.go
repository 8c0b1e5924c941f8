// Package containers provides type-erased, fixed-stride buffer
// containers built on raw byte buffers with explicit element size and
// alignment control.
//
// # Architecture Overview
//
// The library is organized into a small set of packages:
//
//	containers/          Root package with the core Allocator interface
//	├── stack/           Fixed/growable LIFO stack over aligned slots
//	├── darray/          Growable random-access array over aligned slots
//	├── errors/          Structured error types shared by the containers
//	└── internal/layout/ Stride and overflow-checked capacity arithmetic
//
// Both containers store elements in equally sized slots. The slot size
// (stride) is the element size rounded up to a caller-supplied
// power-of-two alignment, so byte-exact layout control is available
// for payloads that need it (SIMD-sized records, foreign structs).
// Elements are copied in and out as raw bytes; the caller is
// responsible for supplying a consistent element size.
//
// # Quick Start
//
//	s, err := stack.New(4, 4, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Destroy()
//
//	item := []byte{1, 2, 3, 4}
//	if err := s.Push(item); err != nil {
//	    log.Fatal(err)
//	}
//
//	out := make([]byte, 4)
//	if err := s.Pop(out); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Containers are not safe for concurrent use. Callers needing
// concurrent access must serialize externally.
package containers
