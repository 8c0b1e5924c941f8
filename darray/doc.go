// Package darray implements a growable random-access container over a
// raw byte buffer with explicit element size and alignment control.
//
// Elements are fixed-size byte payloads stored in aligned slots and
// addressed by index. Push appends, Set overwrites, and Ref copies a
// full slot out (padding included). The array never grows implicitly:
// Reserve swaps in a fresh buffer and discards content, Resize grows
// while preserving elements, and both are transactional with respect
// to allocation failure.
//
// Creating an array with capacity zero is legal and defers the buffer
// allocation until the first Reserve or Resize.
package darray
