package translator

import "github.com/hornetvm/hornet/pkg/class"

// Type is a value's IR-level type. Floating point is out of scope (spec
// Non-goals); only the three kinds bytecode actually needs here are
// represented.
type Type int

const (
	TInt Type = iota
	TLong
	TRef
)

// BinOp identifies an arithmetic/bitwise binary operation.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
)

// CmpOp identifies a comparison used by a conditional branch.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpGe
	CmpGt
	CmpLe
)

// instrKind tags which op_* operation an Instruction represents.
type instrKind int

const (
	iNop instrKind = iota
	iConst
	iLoad
	iStore
	iPop
	iDup
	iDupX1
	iSwap
	iBinary
	iIinc
	iIfCmp
	iGoto
	iRet
	iRetVoid
	iNew
	iArrayLength
	iInvokeStatic
)

// Instruction is one typed IR operation within a Block. Fields are
// populated according to Kind; see dispatch.go for which fields each
// opcode family sets.
type Instruction struct {
	Kind   instrKind
	Type   Type
	Value  int64       // const value, or iinc delta
	Index  int         // local variable index
	BinOp  BinOp
	CmpOp  CmpOp
	Target int           // block start offset, for iGoto/iIfCmp
	Method *class.Method // resolved call target, for iInvokeStatic
	Class  *class.Class  // resolved type, for iNew
}

// Block is a basic block: a half-open byte range within a method's code
// plus its translated instructions in order.
type Block struct {
	Start, End   int
	Instructions []Instruction
}

// Program is a fully translated method body: every block, keyed and
// ordered by start offset.
type Program struct {
	Blocks     map[int]*Block
	Order      []int // block start offsets in ascending address order
	CodeLength int
}

// Backend is the execution/compilation back end the translator drives.
// It owns the operand stack and locals model; the translator never
// inspects them (spec §4.4).
type Backend interface {
	Prologue()
	Begin(blockStart int)
	OpConst(t Type, value int64) error
	OpLoad(t Type, idx int) error
	OpStore(t Type, idx int) error
	OpPop() error
	OpDup() error
	OpDupX1() error
	OpSwap() error
	OpBinary(t Type, op BinOp) error
	OpIinc(idx int, delta int) error
	// OpIfCmp evaluates the comparison and reports whether the branch is
	// taken; Run uses the result to choose the next block.
	OpIfCmp(t Type, op CmpOp) (taken bool, err error)
	OpGoto() error
	// OpRet/OpRetVoid terminate the current invocation.
	OpRet() error
	OpRetVoid() error
	OpNew(target *class.Class) error
	OpArrayLength() error
	OpInvokeStatic(method *class.Method) error
}
