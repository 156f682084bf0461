package class

import (
	"fmt"
	"io"

	"github.com/hornetvm/hornet/pkg/bytecode"
	"github.com/hornetvm/hornet/pkg/classfile"
	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// Decode reads a class file from r, decodes it with classfile.NewDecoder,
// and resolves it into a *Class: its superclass is loaded (unless this is
// java/lang/Object, which has none), and its own methods and fields are
// attached. Interfaces are recorded by name only — resolving them eagerly
// is out of scope (spec §4.2 Non-goals: interface method dispatch).
func Decode(r io.Reader, loader Loader) (*Class, error) {
	cf, err := classfile.NewDecoder().Parse(r)
	if err != nil {
		return nil, err
	}
	return fromClassFile(cf, loader)
}

func fromClassFile(cf *classfile.ClassFile, loader Loader) (*Class, error) {
	name, err := cf.ConstantPool.ClassNameAt(cf.ThisClass)
	if err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}

	c := NewClass(name, cf.AccessFlags)
	c.ConstantPool = cf.ConstantPool

	if cf.SuperClass != 0 {
		superName, err := cf.ConstantPool.ClassNameAt(cf.SuperClass)
		if err != nil {
			return nil, fmt.Errorf("resolving super_class: %w", err)
		}
		super, err := ResolveClass(loader, superName)
		if err != nil {
			return nil, err
		}
		c.Super = super
	}

	c.Interfaces = make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		ifaceName, err := cf.ConstantPool.ClassNameAt(idx)
		if err != nil {
			return nil, fmt.Errorf("resolving interface %d: %w", i, err)
		}
		c.Interfaces[i] = ifaceName
	}

	for i := range cf.Fields {
		cfield := &cf.Fields[i]
		c.AddField(&Field{
			AccessFlags: cfield.AccessFlags,
			Name:        cfield.Name,
			Descriptor:  cfield.Descriptor,
		})
	}

	for i := range cf.Methods {
		cmethod := &cf.Methods[i]
		c.AddMethod(&Method{
			AccessFlags: cmethod.AccessFlags,
			Name:        cmethod.Name,
			Descriptor:  cmethod.Descriptor,
			ArgCount:    cmethod.ArgCount,
			ReturnKind:  cmethod.ReturnKind,
			Code:        cmethod.Code,
		})
	}

	if err := Verify(c); err != nil {
		return nil, err
	}

	return c, nil
}

// Verify performs the structural checks spec §4.2 requires: every
// native/abstract method must not carry a Code attribute while every
// concrete method must; each concrete method's max_locals must be large
// enough for its own arguments; and each concrete method's code passes
// bytecode.Scan, which is the literal "code_length > 0, pc in range at
// each opcode boundary, opcode known" pass the spec names — this is not
// full bytecode verification (spec Non-goals): no dataflow or type-safety
// analysis is performed, and branch-target-is-a-block-start checking is
// left to the translator, which needs the block set anyway.
func Verify(c *Class) error {
	for _, m := range c.methods {
		abstractOrNative := m.AccessFlags&(classfile.AccAbstract|classfile.AccNative) != 0
		if abstractOrNative && m.Code != nil {
			return jvmerrors.New(jvmerrors.VerifyError, "abstract/native method %s%s in %s has a Code attribute", m.Name, m.Descriptor, c.Name)
		}
		if !abstractOrNative && m.Code == nil {
			return jvmerrors.New(jvmerrors.VerifyError, "concrete method %s%s in %s has no Code attribute", m.Name, m.Descriptor, c.Name)
		}
		if m.Code == nil {
			continue
		}
		if int(m.Code.MaxLocals) < m.ArgCount {
			return jvmerrors.New(jvmerrors.VerifyError, "method %s%s in %s has max_locals %d smaller than its %d arguments", m.Name, m.Descriptor, c.Name, m.Code.MaxLocals, m.ArgCount)
		}
		if _, err := bytecode.Scan(m.Code.Code); err != nil {
			return jvmerrors.Wrap(jvmerrors.VerifyError, err, "method %s%s in %s has malformed code", m.Name, m.Descriptor, c.Name)
		}
	}
	return nil
}
