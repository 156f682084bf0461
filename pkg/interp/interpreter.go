package interp

import (
	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/jvmerrors"
	"github.com/hornetvm/hornet/pkg/translator"
)

// objectHeaderSize is the pool reservation made for each op_new, standing
// in for the class pointer + array length words a real header carries
// (spec §4.5). The Object value itself is an ordinary Go value — this
// core has no use for placing it at a specific address — but the
// allocation still goes through the thread's bump-pointer Pool so
// exhaustion and OutOfMemory behave exactly as spec'd.
const objectHeaderSize = 16

// Interpreter is the reference Backend: a real operand stack and locals
// array per frame, driven by translator.Run. It is grounded on
// daimatz-gojvm/pkg/vm/vm.go's executeMethod/executeInstruction, narrowed
// to this core's opcode subset and routed through translator.Program
// instead of a monolithic PC-stepping switch.
type Interpreter struct {
	thread *Thread
	loader class.Loader
	frame  *Frame

	result    Value
	hasResult bool
}

// Invoke runs method with args already bound to its first len(args) local
// slots, the calling convention spec §4.5 describes for op_invokestatic:
// the callee's locals are populated from the caller's stack in descriptor
// order, starting at local 0.
func Invoke(thread *Thread, loader class.Loader, method *class.Method, args []Value) (result Value, hasResult bool, err error) {
	if thread.depth >= maxCallDepth {
		return Value{}, false, jvmerrors.New(jvmerrors.VerifyError, "call depth exceeds %d", maxCallDepth)
	}
	if method.Code == nil {
		return Value{}, false, jvmerrors.New(jvmerrors.VerifyError, "method %s%s has no Code attribute", method.Name, method.Descriptor)
	}

	prog, err := translator.Translate(method.Code.Code, method.Owning, loader)
	if err != nil {
		return Value{}, false, err
	}

	frame := NewFrame(method, int(method.Code.MaxLocals))
	copy(frame.Locals, args)

	interp := &Interpreter{thread: thread, loader: loader, frame: frame}
	thread.depth++
	err = translator.Run(prog, interp)
	thread.depth--
	if err != nil {
		return Value{}, false, err
	}
	return interp.result, interp.hasResult, nil
}

func (in *Interpreter) Prologue()          {}
func (in *Interpreter) Begin(blockStart int) {}

func (in *Interpreter) OpConst(t translator.Type, value int64) error {
	in.frame.push(Value{Type: t, I: value})
	return nil
}

func (in *Interpreter) OpLoad(t translator.Type, idx int) error {
	in.frame.push(in.frame.Locals[idx])
	return nil
}

func (in *Interpreter) OpStore(t translator.Type, idx int) error {
	in.frame.Locals[idx] = in.frame.pop()
	return nil
}

func (in *Interpreter) OpPop() error {
	in.frame.pop()
	return nil
}

func (in *Interpreter) OpDup() error {
	in.frame.push(in.frame.peek())
	return nil
}

func (in *Interpreter) OpDupX1() error {
	top := in.frame.pop()
	below := in.frame.pop()
	in.frame.push(top)
	in.frame.push(below)
	in.frame.push(top)
	return nil
}

func (in *Interpreter) OpSwap() error {
	top := in.frame.pop()
	below := in.frame.pop()
	in.frame.push(top)
	in.frame.push(below)
	return nil
}

// OpBinary computes a two's-complement wraparound add/sub/mul and a
// truncated div/rem (spec §4.5), raising ArithmeticException on division
// or remainder by zero. Int results wrap at 32 bits the way a real `int`
// would even though Value stores everything in a 64-bit field.
func (in *Interpreter) OpBinary(t translator.Type, op translator.BinOp) error {
	right := in.frame.pop()
	left := in.frame.pop()

	if op == translator.OpDiv || op == translator.OpRem {
		if right.I == 0 {
			return jvmerrors.New(jvmerrors.ArithmeticException, "/ by zero")
		}
	}

	var result int64
	if t == translator.TLong {
		result = binaryOp(op, left.I, right.I)
	} else {
		result = int64(int32(binaryOp(op, int64(int32(left.I)), int64(int32(right.I)))))
	}
	in.frame.push(Value{Type: t, I: result})
	return nil
}

func binaryOp(op translator.BinOp, left, right int64) int64 {
	switch op {
	case translator.OpAdd:
		return left + right
	case translator.OpSub:
		return left - right
	case translator.OpMul:
		return left * right
	case translator.OpDiv:
		return left / right
	case translator.OpRem:
		return left % right
	case translator.OpAnd:
		return left & right
	case translator.OpOr:
		return left | right
	case translator.OpXor:
		return left ^ right
	}
	return 0
}

func (in *Interpreter) OpIinc(idx int, delta int) error {
	local := in.frame.Locals[idx]
	local.I = int64(int32(local.I) + int32(delta))
	in.frame.Locals[idx] = local
	return nil
}

func (in *Interpreter) OpIfCmp(t translator.Type, op translator.CmpOp) (bool, error) {
	right := in.frame.pop()
	left := in.frame.pop()
	switch op {
	case translator.CmpEq:
		return left.I == right.I, nil
	case translator.CmpNe:
		return left.I != right.I, nil
	case translator.CmpLt:
		return left.I < right.I, nil
	case translator.CmpGe:
		return left.I >= right.I, nil
	case translator.CmpGt:
		return left.I > right.I, nil
	case translator.CmpLe:
		return left.I <= right.I, nil
	}
	return false, nil
}

func (in *Interpreter) OpGoto() error { return nil }

func (in *Interpreter) OpRet() error {
	in.result = in.frame.pop()
	in.hasResult = true
	return nil
}

func (in *Interpreter) OpRetVoid() error {
	in.hasResult = false
	return nil
}

// OpNew reserves header storage from the thread's allocator and pushes a
// reference to a new, otherwise-zeroed Object of class target.
func (in *Interpreter) OpNew(target *class.Class) error {
	if _, err := in.thread.Allocator.Alloc(objectHeaderSize); err != nil {
		return err
	}
	in.frame.push(Value{Type: translator.TRef, Ref: &Object{Class: target}})
	return nil
}

// OpArrayLength raises NullPointerException on a null reference, per
// spec §4.5; otherwise pushes the referent's Length.
func (in *Interpreter) OpArrayLength() error {
	ref := in.frame.pop()
	if ref.Ref == nil {
		return jvmerrors.New(jvmerrors.NullPointerException, "arraylength on null reference")
	}
	in.frame.push(Value{Type: translator.TInt, I: int64(ref.Ref.Length)})
	return nil
}

// OpInvokeStatic pops method's arguments off the current stack (in
// reverse order, since they were pushed left-to-right), runs the callee
// in a fresh frame on the same thread, and pushes its return value if it
// has one.
func (in *Interpreter) OpInvokeStatic(method *class.Method) error {
	args := make([]Value, method.ArgCount)
	for i := method.ArgCount - 1; i >= 0; i-- {
		args[i] = in.frame.pop()
	}
	result, hasResult, err := Invoke(in.thread, in.loader, method, args)
	if err != nil {
		return err
	}
	if hasResult {
		in.frame.push(result)
	}
	return nil
}
