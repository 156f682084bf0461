package interp

import (
	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/translator"
)

// Value is one operand-stack or local-variable slot. Ints and longs share
// the I field (spec Non-goals put floats/doubles out of scope); Ref is
// only meaningful when Type is TRef.
type Value struct {
	Type translator.Type
	I    int64
	Ref  *Object
}

// Frame is one method activation: its locals array (sized to max_locals)
// and operand stack, grounded on daimatz-gojvm/pkg/vm/frame.go's Frame —
// narrowed to this core's int/long/ref value model instead of its
// int32/interface{} one, and using a Go slice instead of a fixed-size
// array with an explicit SP.
type Frame struct {
	Locals []Value
	Stack  []Value
	Method *class.Method
}

// NewFrame allocates a Frame with maxLocals empty local slots, ready for
// the caller to populate argument slots before running the method.
func NewFrame(method *class.Method, maxLocals int) *Frame {
	return &Frame{
		Locals: make([]Value, maxLocals),
		Method: method,
	}
}

func (f *Frame) push(v Value) {
	f.Stack = append(f.Stack, v)
}

func (f *Frame) pop() Value {
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v
}

func (f *Frame) peek() Value {
	return f.Stack[len(f.Stack)-1]
}
