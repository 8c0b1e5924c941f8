// Package stack implements a LIFO container over a raw byte buffer
// with explicit element size and alignment control.
//
// Elements are fixed-size byte payloads stored in aligned slots. The
// stack owns a single contiguous buffer of stride*capacity bytes;
// Push/Pop copy element bytes in and out, PeekRef exposes a borrowed
// view of the top slot for the copy-free read path, and DiscardTop
// commits a removal after a peek.
//
// Growth is explicit. Reserve swaps in a fresh buffer and discards all
// content; Resize grows the buffer while preserving elements, and is
// transactional with respect to allocation failure.
package stack
