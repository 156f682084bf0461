// Package memory implements the bump-pointer allocator used for objects
// and arrays (spec §4.5, §9): no collector, no freeing, only growth.
// Grounded on _examples/original_source/include/hornet/vm.hh's
// thread::alloc<T> and memory_block, which swap in a fresh block once the
// current one is exhausted.
package memory

import (
	"sync"

	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

const alignment = 8

// align rounds n up to the next multiple of alignment.
func align(n uintptr) uintptr {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Block is a single bump-pointer arena. It is not safe for concurrent use
// on its own — callers needing concurrency should go through a Pool.
type Block struct {
	data   []byte
	offset int
}

// NewBlock allocates a Block backed by size bytes.
func NewBlock(size int) *Block {
	return &Block{data: make([]byte, size)}
}

// Alloc reserves n bytes, 8-byte aligned, returning the slice or
// ok=false if the block doesn't have room.
func (b *Block) Alloc(n int) (data []byte, ok bool) {
	start := int(align(uintptr(b.offset)))
	if start+n > len(b.data) {
		return nil, false
	}
	b.offset = start + n
	return b.data[start : start+n], true
}

// Remaining reports how many bytes are still available in the block.
func (b *Block) Remaining() int {
	start := int(align(uintptr(b.offset)))
	return len(b.data) - start
}

// Pool is a mutex-guarded sequence of Blocks: when the current block runs
// out of room, Alloc swaps in a fresh one rather than growing the
// existing block (see memory_block::swap in the original), so that
// previously-returned slices remain valid (no realloc, no copy).
type Pool struct {
	mu        sync.Mutex
	blockSize int
	current   *Block
	blocks    []*Block
}

// NewPool creates a Pool whose blocks are blockSize bytes each.
func NewPool(blockSize int) *Pool {
	return &Pool{blockSize: blockSize}
}

// Alloc reserves n bytes from the pool, allocating a fresh block if
// necessary. It returns OutOfMemory if n alone exceeds the pool's block
// size, since no single allocation can ever be satisfied in that case.
func (p *Pool) Alloc(n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n > p.blockSize {
		return nil, jvmerrors.New(jvmerrors.OutOfMemory, "allocation of %d bytes exceeds block size %d", n, p.blockSize)
	}

	if p.current != nil {
		if data, ok := p.current.Alloc(n); ok {
			return data, nil
		}
	}

	p.current = NewBlock(p.blockSize)
	p.blocks = append(p.blocks, p.current)
	data, ok := p.current.Alloc(n)
	if !ok {
		// Unreachable given the n > blockSize check above, but kept as a
		// typed failure rather than a panic.
		return nil, jvmerrors.New(jvmerrors.OutOfMemory, "fresh block of size %d could not satisfy %d-byte allocation", p.blockSize, n)
	}
	return data, nil
}

// BlockCount reports how many blocks the pool has allocated, for tests
// that assert growth behavior without reaching into internals.
func (p *Pool) BlockCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blocks)
}
