// Package layout computes slot layout for the byte-buffer containers.
//
// A container stores fixed-size elements in equally sized slots. The
// slot size (stride) is the element size rounded up to the caller's
// alignment requirement, so that every slot starts on an aligned
// offset. All capacity arithmetic is overflow-checked before any
// allocation takes place.
//
// This package is internal to the containers library.
package layout
