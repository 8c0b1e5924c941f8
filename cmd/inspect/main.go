package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/slotforge/containers"
	"github.com/slotforge/containers/darray"
	"github.com/slotforge/containers/stack"
)

func main() {
	var (
		kind        = flag.String("kind", "stack", "Container kind: stack or darray")
		elemSize    = flag.Uint64("elem-size", 8, "Element size in bytes")
		alignment   = flag.Uint64("align", 8, "Slot alignment (power of two)")
		capacity    = flag.Uint64("capacity", 8, "Initial capacity in slots")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *kind != "stack" && *kind != "darray" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -kind stack|darray [-elem-size n] [-align n] [-capacity n]")
		fmt.Fprintln(os.Stderr, "       inspect -kind stack -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		stack.SetLogger(logger)
		darray.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*kind, *elemSize, *alignment, *capacity); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*kind, *elemSize, *alignment, *capacity); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run creates the requested container, prints its computed layout, and
// walks it through a short push/grow cycle so the allocation traffic
// is visible.
func run(kind string, elemSize, alignment, capacity uint64) error {
	counting := containers.NewCountingAllocator(nil)

	switch kind {
	case "stack":
		s, err := stack.New(elemSize, alignment, capacity, stack.WithAllocator(counting))
		if err != nil {
			return err
		}
		defer s.Destroy()

		st := s.Stats()
		printLayout("stack", st.ElementSize, st.Alignment, st.Stride, st.Capacity, st.BufferBytes)

		for i := uint64(1); !s.IsFull(); i++ {
			if err := s.Push(encode(i, elemSize)); err != nil {
				return err
			}
		}
		fmt.Printf("\nFilled to capacity: count=%d\n", s.Stats().Count)

		if err := s.Resize(capacity * 2); err != nil {
			return err
		}
		fmt.Printf("Resized to %d slots (elements preserved: %d)\n", capacity*2, s.Stats().Count)

	case "darray":
		d, err := darray.New(elemSize, alignment, capacity, darray.WithAllocator(counting))
		if err != nil {
			return err
		}
		defer d.Destroy()

		st := d.Stats()
		printLayout("darray", st.ElementSize, st.Alignment, st.Stride, st.Capacity, st.BufferBytes)

		for i := uint64(1); i <= capacity; i++ {
			if err := d.Push(encode(i, elemSize)); err != nil {
				return err
			}
		}
		size, _ := d.Size()
		fmt.Printf("\nFilled to capacity: size=%d\n", size)

		if err := d.Resize(capacity * 2); err != nil {
			return err
		}
		cap2, _ := d.Capacity()
		fmt.Printf("Resized to %d slots (elements preserved: %d)\n", cap2, d.Stats().Count)
	}

	fmt.Printf("\nAllocator traffic: %d allocations, %d releases, %d bytes\n",
		counting.Allocations(), counting.Releases(), counting.AllocatedBytes())
	return nil
}

func printLayout(kind string, elemSize, alignment, stride, capacity, bufferBytes uint64) {
	fmt.Printf("Container: %s\n", kind)
	fmt.Printf("Element size: %d bytes\n", elemSize)
	fmt.Printf("Alignment: %d\n", alignment)
	fmt.Printf("Stride: %d bytes (%d padding per slot)\n", stride, stride-elemSize)
	fmt.Printf("Capacity: %d slots, buffer %d bytes\n", capacity, bufferBytes)
}

// encode writes v little-endian into an element-sized payload. Values
// wider than the element are truncated.
func encode(v uint64, elemSize uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	if elemSize < 8 {
		return buf[:elemSize]
	}
	out := make([]byte, elemSize)
	copy(out, buf)
	return out
}
