package translator

import (
	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// decodeInstruction decodes the single instruction at code[pos:pos+length]
// into its typed IR form, the same dense-switch-on-opcode shape as
// daimatz-gojvm's executeInstruction (pkg/vm/instructions.go), but
// producing data instead of executing it directly.
func decodeInstruction(code []byte, pos, length int, owning *class.Class, loader class.Loader, blockSet map[int]bool) (Instruction, error) {
	op := code[pos]

	switch {
	case op == opNop:
		return Instruction{Kind: iNop}, nil

	case op == opAconstNull:
		return Instruction{Kind: iConst, Type: TRef, Value: 0}, nil

	case op >= opIconstM1 && op <= opIconst5:
		return Instruction{Kind: iConst, Type: TInt, Value: int64(op) - opIconst0}, nil

	case op == opLconst0:
		return Instruction{Kind: iConst, Type: TLong, Value: 0}, nil
	case op == opLconst1:
		return Instruction{Kind: iConst, Type: TLong, Value: 1}, nil

	case op == opBipush:
		return Instruction{Kind: iConst, Type: TInt, Value: int64(int8(code[pos+1]))}, nil
	case op == opSipush:
		return Instruction{Kind: iConst, Type: TInt, Value: int64(int16(beU16(code[pos+1:])))}, nil

	case op == opLdc:
		return decodeLdc(code, pos, owning)

	case op == opIload:
		return Instruction{Kind: iLoad, Type: TInt, Index: int(code[pos+1])}, nil
	case op == opLload:
		return Instruction{Kind: iLoad, Type: TLong, Index: int(code[pos+1])}, nil
	case op == opAload:
		return Instruction{Kind: iLoad, Type: TRef, Index: int(code[pos+1])}, nil
	case op >= opIload0 && op <= opIload3:
		return Instruction{Kind: iLoad, Type: TInt, Index: int(op - opIload0)}, nil
	case op >= opLload0 && op <= opLload3:
		return Instruction{Kind: iLoad, Type: TLong, Index: int(op - opLload0)}, nil
	case op >= opAload0 && op <= opAload3:
		return Instruction{Kind: iLoad, Type: TRef, Index: int(op - opAload0)}, nil

	case op == opIstore:
		return Instruction{Kind: iStore, Type: TInt, Index: int(code[pos+1])}, nil
	case op == opLstore:
		return Instruction{Kind: iStore, Type: TLong, Index: int(code[pos+1])}, nil
	case op == opAstore:
		return Instruction{Kind: iStore, Type: TRef, Index: int(code[pos+1])}, nil
	case op >= opIstore0 && op <= opIstore3:
		return Instruction{Kind: iStore, Type: TInt, Index: int(op - opIstore0)}, nil
	case op >= opLstore0 && op <= opLstore3:
		return Instruction{Kind: iStore, Type: TLong, Index: int(op - opLstore0)}, nil
	case op >= opAstore0 && op <= opAstore3:
		return Instruction{Kind: iStore, Type: TRef, Index: int(op - opAstore0)}, nil

	case op == opPop:
		return Instruction{Kind: iPop}, nil
	case op == opDup:
		return Instruction{Kind: iDup}, nil
	case op == opDupX1:
		return Instruction{Kind: iDupX1}, nil
	case op == opSwap:
		return Instruction{Kind: iSwap}, nil

	case op == opIadd:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpAdd}, nil
	case op == opIsub:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpSub}, nil
	case op == opImul:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpMul}, nil
	case op == opIdiv:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpDiv}, nil
	case op == opIrem:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpRem}, nil
	case op == opIand:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpAnd}, nil
	case op == opIor:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpOr}, nil
	case op == opIxor:
		return Instruction{Kind: iBinary, Type: TInt, BinOp: OpXor}, nil

	case op == opLadd:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpAdd}, nil
	case op == opLsub:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpSub}, nil
	case op == opLmul:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpMul}, nil
	case op == opLdiv:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpDiv}, nil
	case op == opLrem:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpRem}, nil
	case op == opLand:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpAnd}, nil
	case op == opLor:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpOr}, nil
	case op == opLxor:
		return Instruction{Kind: iBinary, Type: TLong, BinOp: OpXor}, nil

	case op == opIinc:
		return Instruction{Kind: iIinc, Index: int(code[pos+1]), Value: int64(int8(code[pos+2]))}, nil

	case op >= opIfIcmpeq && op <= opIfIcmple:
		target, err := branchTarget(pos, int(int16(beU16(code[pos+1:]))), blockSet)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: iIfCmp, Type: TInt, CmpOp: icmpOpFor(op), Target: target}, nil

	case op == opGoto:
		target, err := branchTarget(pos, int(int16(beU16(code[pos+1:]))), blockSet)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: iGoto, Target: target}, nil

	case op == opIreturn || op == opLreturn || op == opFreturn || op == opDreturn || op == opAreturn:
		return Instruction{Kind: iRet}, nil
	case op == opReturn:
		return Instruction{Kind: iRetVoid}, nil

	case op == opNew:
		return decodeNew(code, pos, owning, loader)
	case op == opArraylength:
		return Instruction{Kind: iArrayLength}, nil

	case op == opInvokestatic:
		return decodeInvokestatic(code, pos, owning, loader)
	case op == opInvokespecial:
		return decodeInvokespecial(code, pos, owning, loader)

	default:
		return Instruction{}, jvmerrors.New(jvmerrors.UnsupportedBytecode, "opcode 0x%02x at pc %d is not supported by this core", op, pos)
	}
}

func icmpOpFor(op byte) CmpOp {
	switch op {
	case opIfIcmpeq:
		return CmpEq
	case opIfIcmpne:
		return CmpNe
	case opIfIcmplt:
		return CmpLt
	case opIfIcmpge:
		return CmpGe
	case opIfIcmpgt:
		return CmpGt
	case opIfIcmple:
		return CmpLe
	}
	return CmpEq
}

func decodeLdc(code []byte, pos int, owning *class.Class) (Instruction, error) {
	idx := uint16(code[pos+1])
	v, err := owning.ConstantPool.IntegerAt(idx)
	if err != nil {
		return Instruction{}, jvmerrors.Wrap(jvmerrors.UnsupportedBytecode, err, "ldc at pc %d: only Integer constants are supported", pos)
	}
	return Instruction{Kind: iConst, Type: TInt, Value: int64(v)}, nil
}

// decodeNew resolves the operand's constant-pool Class entry so the
// allocated header can carry a real class reference; Backend.OpNew receives
// the resolved class because the resolution itself belongs to the
// translator, not the allocator.
func decodeNew(code []byte, pos int, owning *class.Class, loader class.Loader) (Instruction, error) {
	idx := beU16(code[pos+1:])
	name, err := owning.ConstantPool.ClassNameAt(idx)
	if err != nil {
		return Instruction{}, err
	}
	target, err := class.ResolveClass(loader, name)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: iNew, Class: target}, nil
}

func decodeInvokestatic(code []byte, pos int, owning *class.Class, loader class.Loader) (Instruction, error) {
	idx := beU16(code[pos+1:])
	method, _, err := class.ResolveMethodRef(owning, loader, idx)
	if err != nil {
		return Instruction{}, err
	}
	if !method.IsStatic() {
		return Instruction{}, jvmerrors.New(jvmerrors.VerifyError, "invokestatic at pc %d targets non-static method %s%s", pos, method.Name, method.Descriptor)
	}
	return Instruction{Kind: iInvokeStatic, Method: method}, nil
}

// decodeInvokespecial resolves the statically-named target, then applies
// the ACC_SUPER re-lookup rule (spec §4.4): if owning has ACC_SUPER, the
// resolved target is declared in a superclass of owning, and the target
// is not an initializer, re-resolve starting from owning.Super instead.
// invokespecial is emitted as the same op_invokestatic IR node as
// invokestatic — both are static, non-virtual dispatches in this core.
func decodeInvokespecial(code []byte, pos int, owning *class.Class, loader class.Loader) (Instruction, error) {
	idx := beU16(code[pos+1:])
	method, target, err := class.ResolveMethodRef(owning, loader, idx)
	if err != nil {
		return Instruction{}, err
	}
	resolved, err := class.ResolveSpecialMethod(owning, target, method.Name, method.Descriptor)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: iInvokeStatic, Method: resolved}, nil
}

func beU16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
