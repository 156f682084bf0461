package translator

import "github.com/hornetvm/hornet/pkg/jvmerrors"

// Run drives backend through prog: prologue, then begin/dispatch for each
// block, following the actual control flow produced by goto/if_cmp/return
// rather than simply walking blocks in address order — an interpreter
// back end has to execute the method, not just emit IR for it. Run only
// passes the back end the blocks execution actually reaches, in execution
// order, and passes a block again each time a loop returns to it; blocks
// on an untaken branch path are never passed to it. Every translated
// block, in ascending address order, is available in prog.Order and
// prog.Blocks.
func Run(prog *Program, backend Backend) error {
	backend.Prologue()

	pc := 0
	for {
		block, ok := prog.Blocks[pc]
		if !ok {
			return jvmerrors.New(jvmerrors.MalformedBytecode, "no block starts at pc %d", pc)
		}
		backend.Begin(block.Start)

		next, done, err := runBlock(block, backend)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		pc = next
	}
}

// runBlock executes one block's instructions in order, returning the pc
// to resume at (next) unless the method has returned (done=true).
func runBlock(block *Block, backend Backend) (next int, done bool, err error) {
	for i := range block.Instructions {
		instr := &block.Instructions[i]
		switch instr.Kind {
		case iNop:
			// no effect

		case iConst:
			if err := backend.OpConst(instr.Type, instr.Value); err != nil {
				return 0, false, err
			}
		case iLoad:
			if err := backend.OpLoad(instr.Type, instr.Index); err != nil {
				return 0, false, err
			}
		case iStore:
			if err := backend.OpStore(instr.Type, instr.Index); err != nil {
				return 0, false, err
			}
		case iPop:
			if err := backend.OpPop(); err != nil {
				return 0, false, err
			}
		case iDup:
			if err := backend.OpDup(); err != nil {
				return 0, false, err
			}
		case iDupX1:
			if err := backend.OpDupX1(); err != nil {
				return 0, false, err
			}
		case iSwap:
			if err := backend.OpSwap(); err != nil {
				return 0, false, err
			}
		case iBinary:
			if err := backend.OpBinary(instr.Type, instr.BinOp); err != nil {
				return 0, false, err
			}
		case iIinc:
			if err := backend.OpIinc(instr.Index, int(instr.Value)); err != nil {
				return 0, false, err
			}
		case iIfCmp:
			taken, err := backend.OpIfCmp(instr.Type, instr.CmpOp)
			if err != nil {
				return 0, false, err
			}
			if taken {
				return instr.Target, false, nil
			}
			// Falls through to whatever block starts right after this
			// one; since conditional branches are block-enders, that is
			// always the next instruction's position, i.e. block.End.
			return block.End, false, nil
		case iGoto:
			if err := backend.OpGoto(); err != nil {
				return 0, false, err
			}
			return instr.Target, false, nil
		case iRet:
			if err := backend.OpRet(); err != nil {
				return 0, false, err
			}
			return 0, true, nil
		case iRetVoid:
			if err := backend.OpRetVoid(); err != nil {
				return 0, false, err
			}
			return 0, true, nil
		case iNew:
			if err := backend.OpNew(instr.Class); err != nil {
				return 0, false, err
			}
		case iArrayLength:
			if err := backend.OpArrayLength(); err != nil {
				return 0, false, err
			}
		case iInvokeStatic:
			if err := backend.OpInvokeStatic(instr.Method); err != nil {
				return 0, false, err
			}
		}
	}
	// A block with no block-ending instruction falls through to the
	// next one. Only the method's final block can lack one, and Verify
	// does not require it to end in a *return; if it doesn't, block.End
	// == CodeLength, no block starts there, and Run fails with
	// MalformedBytecode.
	return block.End, false, nil
}
