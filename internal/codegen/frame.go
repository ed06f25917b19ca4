package codegen

import (
	"fmt"

	"github.com/skx/tiny-c-compiler/internal/diag"
)

// frame is a per-function stack-frame map: a flat, linearly-scanned
// table from local-variable name to its rbp-relative byte offset.
//
// Mirrors the teacher's preference for small flat slices over maps
// (e.g. internal/cleanup.Stack's []string) at the sizes a single
// function's locals are expected to reach.
type frame struct {
	names   []string
	offsets []int
	next    int
}

// newFrame returns an empty frame with its first free offset at -4.
func newFrame() *frame {
	return &frame{next: -4}
}

// add registers name at the current next-free offset and returns it.
// Offsets are never reused and decrease by 4 with every call.
func (f *frame) add(name string) int {
	offset := f.next
	f.names = append(f.names, name)
	f.offsets = append(f.offsets, offset)
	f.next -= 4
	return offset
}

// find returns the offset registered for name, and whether it was
// found at all.
func (f *frame) find(name string) (int, bool) {
	for i, n := range f.names {
		if n == name {
			return f.offsets[i], true
		}
	}
	return 0, false
}

// format builds the `[rbp±N]` operand text for name, or an error if
// name was never registered — reachable from ordinary, syntactically
// valid source that references an undeclared local (e.g. `return x;`
// with no prior declaration or parameter named `x`), so this is a
// regular fatal error rather than a panic.
func (f *frame) format(name string) (string, error) {
	offset, ok := f.find(name)
	if !ok {
		return "", diag.Fatalf(stageName, 0, "reference to undeclared variable %q", name)
	}
	if offset < 0 {
		return fmt.Sprintf("[rbp-%d]", -offset), nil
	}
	return fmt.Sprintf("[rbp+%d]", offset), nil
}
