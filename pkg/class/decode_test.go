package class

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hornetvm/hornet/pkg/classfile"
)

// buildMinimalClassBytes assembles a single-method class file with the
// given name and superclass name (empty means no super). There are no
// real .class fixtures in this repo, so tests synthesize the exact bytes
// they need, the same way pkg/classfile's own tests do.
func buildMinimalClassBytes(t *testing.T, name, superName string) []byte {
	t.Helper()

	var cpEntries [][]byte
	addUtf8 := func(s string) uint16 {
		var e bytes.Buffer
		e.WriteByte(classfile.TagUtf8)
		binary.Write(&e, binary.BigEndian, uint16(len(s)))
		e.WriteString(s)
		cpEntries = append(cpEntries, e.Bytes())
		return uint16(len(cpEntries))
	}
	addClass := func(nameIdx uint16) uint16 {
		var e bytes.Buffer
		e.WriteByte(classfile.TagClass)
		binary.Write(&e, binary.BigEndian, nameIdx)
		cpEntries = append(cpEntries, e.Bytes())
		return uint16(len(cpEntries))
	}

	thisIdx := addClass(addUtf8(name))
	var superIdx uint16
	if superName != "" {
		superIdx = addClass(addUtf8(superName))
	}
	methodNameIdx := addUtf8("run")
	methodDescIdx := addUtf8("()V")
	codeAttrNameIdx := addUtf8("Code")

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classfile.Magic))
	binary.Write(&out, binary.BigEndian, uint16(0))
	binary.Write(&out, binary.BigEndian, uint16(52))
	binary.Write(&out, binary.BigEndian, uint16(len(cpEntries)+1))
	for _, e := range cpEntries {
		out.Write(e)
	}
	binary.Write(&out, binary.BigEndian, uint16(classfile.AccPublic|classfile.AccSuper))
	binary.Write(&out, binary.BigEndian, thisIdx)
	binary.Write(&out, binary.BigEndian, superIdx)
	binary.Write(&out, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&out, binary.BigEndian, uint16(0)) // fields_count

	binary.Write(&out, binary.BigEndian, uint16(1)) // methods_count
	binary.Write(&out, binary.BigEndian, uint16(classfile.AccStatic))
	binary.Write(&out, binary.BigEndian, methodNameIdx)
	binary.Write(&out, binary.BigEndian, methodDescIdx)
	binary.Write(&out, binary.BigEndian, uint16(1)) // attributes_count

	binary.Write(&out, binary.BigEndian, codeAttrNameIdx)
	var code bytes.Buffer
	binary.Write(&code, binary.BigEndian, uint16(0)) // max_stack
	binary.Write(&code, binary.BigEndian, uint16(0)) // max_locals
	binary.Write(&code, binary.BigEndian, uint32(1))
	code.WriteByte(0xb1) // return
	binary.Write(&code, binary.BigEndian, uint16(0))
	binary.Write(&code, binary.BigEndian, uint16(0))
	binary.Write(&out, binary.BigEndian, uint32(code.Len()))
	out.Write(code.Bytes())

	binary.Write(&out, binary.BigEndian, uint16(0)) // class attributes_count

	return out.Bytes()
}

func TestDecodeResolvesSuper(t *testing.T) {
	base := NewClass("Base", 0)
	loader := &fakeLoader{classes: map[string]*Class{"Base": base}}

	raw := buildMinimalClassBytes(t, "Derived", "Base")
	c, err := Decode(bytes.NewReader(raw), loader)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Name != "Derived" {
		t.Errorf("Name = %q, want Derived", c.Name)
	}
	if c.Super != base {
		t.Errorf("Super = %v, want Base", c.Super)
	}
	if !c.IsSuper() {
		t.Error("IsSuper() = false, want true (ACC_SUPER was set)")
	}
	m, ok := c.LookupMethod("run", "()V")
	if !ok {
		t.Fatal("LookupMethod(run) not found")
	}
	if m.Owning != c {
		t.Errorf("method Owning = %v, want the decoded class itself", m.Owning.Name)
	}
}

func TestDecodeWithNoSuper(t *testing.T) {
	loader := &fakeLoader{classes: map[string]*Class{}}
	raw := buildMinimalClassBytes(t, "Root", "")
	c, err := Decode(bytes.NewReader(raw), loader)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Super != nil {
		t.Errorf("Super = %v, want nil", c.Super.Name)
	}
}

func TestDecodeMissingSuperFails(t *testing.T) {
	loader := &fakeLoader{classes: map[string]*Class{}}
	raw := buildMinimalClassBytes(t, "Derived", "Missing")
	if _, err := Decode(bytes.NewReader(raw), loader); err == nil {
		t.Fatal("Decode with unresolvable super = nil error, want NoClassDefFoundError")
	}
}

func TestVerifyRejectsCodeOnAbstractMethod(t *testing.T) {
	c := NewClass("Bad", 0)
	c.AddMethod(&Method{
		Name:        "m",
		Descriptor:  "()V",
		AccessFlags: classfile.AccAbstract,
		Code:        &classfile.Code{},
	})
	if err := Verify(c); err == nil {
		t.Fatal("Verify = nil error, want VerifyError for abstract method with Code")
	}
}

func TestVerifyRejectsMissingCodeOnConcreteMethod(t *testing.T) {
	c := NewClass("Bad", 0)
	c.AddMethod(&Method{Name: "m", Descriptor: "()V"})
	if err := Verify(c); err == nil {
		t.Fatal("Verify = nil error, want VerifyError for concrete method without Code")
	}
}

func TestVerifyRejectsUnknownOpcode(t *testing.T) {
	c := NewClass("Bad", 0)
	c.AddMethod(&Method{
		Name:       "m",
		Descriptor: "()V",
		Code:       &classfile.Code{Code: []byte{0xff}}, // not a defined opcode
	})
	if err := Verify(c); err == nil {
		t.Fatal("Verify = nil error, want VerifyError for an unknown opcode")
	}
}

func TestVerifyRejectsOpcodeThatOverrunsCode(t *testing.T) {
	c := NewClass("Bad", 0)
	c.AddMethod(&Method{
		Name:       "m",
		Descriptor: "()V",
		Code:       &classfile.Code{Code: []byte{0x10}}, // bipush, missing its operand byte
	})
	if err := Verify(c); err == nil {
		t.Fatal("Verify = nil error, want VerifyError for an opcode overrunning code_length")
	}
}

func TestVerifyRejectsEmptyCode(t *testing.T) {
	c := NewClass("Bad", 0)
	c.AddMethod(&Method{
		Name:       "m",
		Descriptor: "()V",
		Code:       &classfile.Code{Code: []byte{}},
	})
	if err := Verify(c); err == nil {
		t.Fatal("Verify = nil error, want VerifyError for empty code_length")
	}
}
