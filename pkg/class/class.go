// Package class builds the resolved class model on top of the raw records
// decoded by package classfile: Class, Method, and Field values with their
// symbolic references resolved against a Loader, plus subclass and member
// resolution (spec §4.2).
package class

import "github.com/hornetvm/hornet/pkg/classfile"

// Loader resolves a class name to a *Class. It is defined here, in the
// package that consumes it, the same way daimatz-gojvm's vm package
// defines ClassLoader rather than classfile or class owning the
// interface.
type Loader interface {
	LoadClass(name string) (*Class, error)
}

// Method is a resolved method: its owning class, its raw descriptor data,
// and its decoded Code (nil for abstract/native methods).
type Method struct {
	Owning      *Class
	AccessFlags uint16
	Name        string
	Descriptor  string
	ArgCount    int
	ReturnKind  classfile.ReturnKind
	Code        *classfile.Code
}

// IsInitializer reports whether the method is a <clinit> or <init>.
func (m *Method) IsInitializer() bool {
	return len(m.Name) > 0 && m.Name[0] == '<'
}

// IsStatic reports whether the method has ACC_STATIC set.
func (m *Method) IsStatic() bool {
	return m.AccessFlags&classfile.AccStatic != 0
}

// Field is a resolved field: its owning class plus its raw descriptor data.
type Field struct {
	Owning      *Class
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// IsStatic reports whether the field has ACC_STATIC set.
func (f *Field) IsStatic() bool {
	return f.AccessFlags&classfile.AccStatic != 0
}

// Class is the resolved, in-memory representation of a loaded class: its
// name, its super (nil for java/lang/Object and for VoidClass), and its
// declared methods and fields, which it holds in its own tables. References
// to owning classes and supers are non-owning (spec §4.5): a Class never
// keeps its subclasses alive on its own account, only the Loader's
// registry does.
type Class struct {
	Name         string
	AccessFlags  uint16
	Super        *Class
	Interfaces   []string
	ConstantPool classfile.ConstantPool

	methods map[methodKey]*Method
	fields  map[string]*Field
}

type methodKey struct {
	name       string
	descriptor string
}

// VoidClass is the sentinel used for a method's return type when the
// descriptor's return kind is 'V', mirroring the original's
// parse_type returning &jvm_void_klass only for the void case (see
// _examples/original_source/java/class_file.cc, parse_type).
var VoidClass = &Class{Name: "void"}

// NewClass constructs a Class with empty method/field tables, ready to
// receive AddMethod/AddField calls as it's built out by Decode.
func NewClass(name string, accessFlags uint16) *Class {
	return &Class{
		Name:        name,
		AccessFlags: accessFlags,
		methods:     make(map[methodKey]*Method),
		fields:      make(map[string]*Field),
	}
}

// AddMethod registers a method declared directly on this class.
func (c *Class) AddMethod(m *Method) {
	m.Owning = c
	c.methods[methodKey{m.Name, m.Descriptor}] = m
}

// AddField registers a field declared directly on this class.
func (c *Class) AddField(f *Field) {
	f.Owning = c
	c.fields[f.Name] = f
}

// LookupMethod finds a method with exactly this name/descriptor declared
// directly on c — it does not search supers. Use ResolveMethod for the
// full lookup chain.
func (c *Class) LookupMethod(name, descriptor string) (*Method, bool) {
	m, ok := c.methods[methodKey{name, descriptor}]
	return m, ok
}

// LookupField finds a field with this name declared directly on c — it
// does not search supers. Use ResolveField for the full lookup chain.
func (c *Class) LookupField(name string) (*Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// IsSubclassOf reports whether c is other or a (possibly indirect)
// subclass of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// HasSuper reports whether c declares a superclass (every class does
// except java/lang/Object and VoidClass, per spec §4.2).
func (c *Class) HasSuper() bool {
	return c.Super != nil
}

// IsSuper reports whether c's ACC_SUPER flag is set, used by invokespecial
// resolution (spec §4.4).
func (c *Class) IsSuper() bool {
	return c.AccessFlags&classfile.AccSuper != 0
}
