package interp

import "github.com/hornetvm/hornet/pkg/memory"

// maxCallDepth bounds recursive invokestatic/invokespecial nesting, the
// same guard daimatz-gojvm/pkg/vm/vm.go keeps as maxFrameDepth against a
// runaway recursive method driving the Go call stack into the ground.
const maxCallDepth = 1024

// Thread is a single thread of execution: its own bump-pointer allocator
// (spec §5 — allocators are thread-local, never shared) and its current
// call depth. A Thread is not safe for concurrent use by multiple
// goroutines; create one per logical JVM thread.
type Thread struct {
	Allocator *memory.Pool
	depth     int
}

// NewThread creates a Thread whose heap allocations come from a fresh
// Pool with the given block size.
func NewThread(blockSize int) *Thread {
	return &Thread{Allocator: memory.NewPool(blockSize)}
}
