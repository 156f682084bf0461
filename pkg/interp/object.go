// Package interp is the reference execution back end: it implements
// translator.Backend over a real operand stack, locals array, and
// bump-pointer-allocated heap values.
package interp

import "github.com/hornetvm/hornet/pkg/class"

// Object is the uniform heap header every allocated value carries (spec
// §4.5): a non-owning reference to its class, plus a length for the
// array case. Nothing in this core's dispatch table creates arrays
// (anewarray/newarray are out of scope), so Length is only ever set by
// a caller building an Object directly — op_arraylength just reads it.
type Object struct {
	Class  *class.Class
	Length int
}
