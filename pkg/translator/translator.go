// Package translator walks a method's bytecode, partitions it into basic
// blocks, and emits typed IR operations to a pluggable Backend (spec §4.4).
// It is grounded on _examples/original_source/java/translator.cc's
// two-pass scan()-then-translate(bblock) design — daimatz-gojvm has no
// equivalent component; its interpreter dispatches bytecode directly
// (pkg/vm/instructions.go's executeInstruction), so this package is new
// rather than adapted.
package translator

import (
	"github.com/hornetvm/hornet/pkg/bytecode"
	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// Scan partitions code into basic blocks, re-exporting bytecode.Scan: it
// starts with one block spanning the whole method and splits the block
// stream immediately after every block-ending opcode, the same algorithm as
// translator::scan in the original. pkg/class's structural verifier calls
// bytecode.Scan directly (this package imports pkg/class, so the reverse
// import would cycle); this re-export keeps the translator's own public
// entry point unchanged.
func Scan(code []byte) ([]int, error) {
	return bytecode.Scan(code)
}

// Translate scans code into basic blocks and translates every block's
// instructions into typed IR, resolving symbolic references (ldc,
// invokestatic, invokespecial) against owning's constant pool and loader.
func Translate(code []byte, owning *class.Class, loader class.Loader) (*Program, error) {
	starts, err := Scan(code)
	if err != nil {
		return nil, err
	}

	blockSet := make(map[int]bool, len(starts))
	for _, s := range starts {
		blockSet[s] = true
	}

	prog := &Program{
		Blocks:     make(map[int]*Block, len(starts)),
		Order:      starts,
		CodeLength: len(code),
	}

	for i, start := range starts {
		end := len(code)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		block, err := translateBlock(code, start, end, owning, loader, blockSet)
		if err != nil {
			return nil, err
		}
		prog.Blocks[start] = block
	}

	return prog, nil
}

func translateBlock(code []byte, start, end int, owning *class.Class, loader class.Loader, blockSet map[int]bool) (*Block, error) {
	block := &Block{Start: start, End: end}
	pos := start
	for pos < end {
		length, _ := instructionLength(code, pos) // already validated by Scan
		instr, err := decodeInstruction(code, pos, length, owning, loader, blockSet)
		if err != nil {
			return nil, err
		}
		block.Instructions = append(block.Instructions, instr)
		pos += length
	}
	return block, nil
}

// branchTarget computes pos+offset and validates it lands on an existing
// block start, per spec §4.4: "branch targets discovered during
// translation must correspond to an existing block".
func branchTarget(pos int, offset int, blockSet map[int]bool) (int, error) {
	target := pos + offset
	if !blockSet[target] {
		return 0, jvmerrors.New(jvmerrors.MalformedBytecode, "branch at pc %d targets %d, which is not a block start", pos, target)
	}
	return target, nil
}
