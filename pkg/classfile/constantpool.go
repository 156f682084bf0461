package classfile

import (
	"fmt"

	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// get bounds-checks index and fails with MalformedClassFile if it's out of
// range or lands on an unused/reserved slot (spec §3: "any index referenced
// by another entry must resolve to an entry of the expected kind").
func (cp ConstantPool) get(index uint16) (Entry, error) {
	if int(index) >= len(cp) || cp[index] == nil {
		return nil, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d out of range", index)
	}
	if _, reserved := cp[index].(Reserved); reserved {
		return nil, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is a reserved slot", index)
	}
	return cp[index], nil
}

// Utf8At returns the string stored at index, or an error if it is not a
// Utf8 entry.
func (cp ConstantPool) Utf8At(index uint16) (string, error) {
	e, err := cp.get(index)
	if err != nil {
		return "", err
	}
	u, ok := e.(Utf8)
	if !ok {
		return "", jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not Utf8 (tag=%d)", index, e.Tag())
	}
	return u.Value, nil
}

// ClassNameAt resolves the name of a CONSTANT_Class entry.
func (cp ConstantPool) ClassNameAt(index uint16) (string, error) {
	e, err := cp.get(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(ClassRef)
	if !ok {
		return "", jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not Class", index)
	}
	return cp.Utf8At(c.NameIndex)
}

// NameAndTypeAt resolves the (name, descriptor) pair of a
// CONSTANT_NameAndType entry.
func (cp ConstantPool) NameAndTypeAt(index uint16) (name, descriptor string, err error) {
	e, err := cp.get(index)
	if err != nil {
		return "", "", err
	}
	nt, ok := e.(NameAndType)
	if !ok {
		return "", "", jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not NameAndType", index)
	}
	name, err = cp.Utf8At(nt.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.Utf8At(nt.DescriptorIndex)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef is the resolved (class name, member name, descriptor) triple
// shared by Fieldref, Methodref, and InterfaceMethodref entries.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// FieldrefAt resolves a CONSTANT_Fieldref entry.
func (cp ConstantPool) FieldrefAt(index uint16) (MemberRef, error) {
	e, err := cp.get(index)
	if err != nil {
		return MemberRef{}, err
	}
	f, ok := e.(Fieldref)
	if !ok {
		return MemberRef{}, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not Fieldref", index)
	}
	return cp.resolveMemberRef(f.ClassIndex, f.NTIndex)
}

// MethodrefAt resolves a CONSTANT_Methodref entry.
func (cp ConstantPool) MethodrefAt(index uint16) (MemberRef, error) {
	e, err := cp.get(index)
	if err != nil {
		return MemberRef{}, err
	}
	m, ok := e.(Methodref)
	if !ok {
		return MemberRef{}, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not Methodref", index)
	}
	return cp.resolveMemberRef(m.ClassIndex, m.NTIndex)
}

// InterfaceMethodrefAt resolves a CONSTANT_InterfaceMethodref entry.
func (cp ConstantPool) InterfaceMethodrefAt(index uint16) (MemberRef, error) {
	e, err := cp.get(index)
	if err != nil {
		return MemberRef{}, err
	}
	m, ok := e.(InterfaceMethodref)
	if !ok {
		return MemberRef{}, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not InterfaceMethodref", index)
	}
	return cp.resolveMemberRef(m.ClassIndex, m.NTIndex)
}

func (cp ConstantPool) resolveMemberRef(classIndex, ntIndex uint16) (MemberRef, error) {
	className, err := cp.ClassNameAt(classIndex)
	if err != nil {
		return MemberRef{}, fmt.Errorf("resolving class: %w", err)
	}
	name, descriptor, err := cp.NameAndTypeAt(ntIndex)
	if err != nil {
		return MemberRef{}, fmt.Errorf("resolving name_and_type: %w", err)
	}
	return MemberRef{ClassName: className, Name: name, Descriptor: descriptor}, nil
}

// IntegerAt returns the value of a CONSTANT_Integer entry.
func (cp ConstantPool) IntegerAt(index uint16) (int32, error) {
	e, err := cp.get(index)
	if err != nil {
		return 0, err
	}
	i, ok := e.(IntegerConst)
	if !ok {
		return 0, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not Integer", index)
	}
	return i.Value, nil
}

// StringAt resolves the string value of a CONSTANT_String entry.
func (cp ConstantPool) StringAt(index uint16) (string, error) {
	e, err := cp.get(index)
	if err != nil {
		return "", err
	}
	s, ok := e.(StringConst)
	if !ok {
		return "", jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool index %d is not String", index)
	}
	return cp.Utf8At(s.StringIndex)
}
