package translator

import "github.com/hornetvm/hornet/pkg/bytecode"

// Local, unexported aliases for the opcodes dispatch.go decodes into IR.
// The full opcode table, instruction-length logic, and block-ending set
// live in pkg/bytecode so pkg/class's verifier can call Scan without
// depending on this package (which itself depends on pkg/class for
// *class.Class/*class.Loader).
const (
	opNop           = bytecode.OpNop
	opAconstNull    = bytecode.OpAconstNull
	opIconstM1      = bytecode.OpIconstM1
	opIconst0       = bytecode.OpIconst0
	opIconst5       = bytecode.OpIconst5
	opLconst0       = bytecode.OpLconst0
	opLconst1       = bytecode.OpLconst1
	opBipush        = bytecode.OpBipush
	opSipush        = bytecode.OpSipush
	opLdc           = bytecode.OpLdc
	opIload         = bytecode.OpIload
	opLload         = bytecode.OpLload
	opAload         = bytecode.OpAload
	opIload0        = bytecode.OpIload0
	opIload3        = bytecode.OpIload3
	opLload0        = bytecode.OpLload0
	opLload3        = bytecode.OpLload3
	opAload0        = bytecode.OpAload0
	opAload3        = bytecode.OpAload3
	opIstore        = bytecode.OpIstore
	opLstore        = bytecode.OpLstore
	opAstore        = bytecode.OpAstore
	opIstore0       = bytecode.OpIstore0
	opIstore3       = bytecode.OpIstore3
	opLstore0       = bytecode.OpLstore0
	opLstore3       = bytecode.OpLstore3
	opAstore0       = bytecode.OpAstore0
	opAstore3       = bytecode.OpAstore3
	opPop           = bytecode.OpPop
	opDup           = bytecode.OpDup
	opDupX1         = bytecode.OpDupX1
	opSwap          = bytecode.OpSwap
	opIadd          = bytecode.OpIadd
	opIsub          = bytecode.OpIsub
	opImul          = bytecode.OpImul
	opIdiv          = bytecode.OpIdiv
	opIrem          = bytecode.OpIrem
	opIand          = bytecode.OpIand
	opIor           = bytecode.OpIor
	opIxor          = bytecode.OpIxor
	opLadd          = bytecode.OpLadd
	opLsub          = bytecode.OpLsub
	opLmul          = bytecode.OpLmul
	opLdiv          = bytecode.OpLdiv
	opLrem          = bytecode.OpLrem
	opLand          = bytecode.OpLand
	opLor           = bytecode.OpLor
	opLxor          = bytecode.OpLxor
	opIinc          = bytecode.OpIinc
	opIfIcmpeq      = bytecode.OpIfIcmpeq
	opIfIcmpne      = bytecode.OpIfIcmpne
	opIfIcmplt      = bytecode.OpIfIcmplt
	opIfIcmpge      = bytecode.OpIfIcmpge
	opIfIcmpgt      = bytecode.OpIfIcmpgt
	opIfIcmple      = bytecode.OpIfIcmple
	opGoto          = bytecode.OpGoto
	opIreturn       = bytecode.OpIreturn
	opLreturn       = bytecode.OpLreturn
	opFreturn       = bytecode.OpFreturn
	opDreturn       = bytecode.OpDreturn
	opAreturn       = bytecode.OpAreturn
	opReturn        = bytecode.OpReturn
	opNew           = bytecode.OpNew
	opArraylength   = bytecode.OpArraylength
	opInvokestatic  = bytecode.OpInvokestatic
	opInvokespecial = bytecode.OpInvokespecial
)

// instructionLength delegates to pkg/bytecode, which owns the full table
// including the variable-length tableswitch/lookupswitch encodings.
func instructionLength(code []byte, pos int) (int, bool) {
	return bytecode.InstructionLength(code, pos)
}
