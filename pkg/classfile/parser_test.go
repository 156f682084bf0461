package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// classBuilder assembles a minimal, valid class-file byte stream for
// tests. There are no real .class fixtures in this repo, so tests
// synthesize the exact bytes they need.
type classBuilder struct {
	buf bytes.Buffer
	cp  [][]byte // constant pool entries, in order starting at index 1
}

func newClassBuilder() *classBuilder {
	return &classBuilder{}
}

func (b *classBuilder) addUtf8(s string) uint16 {
	var entry bytes.Buffer
	entry.WriteByte(TagUtf8)
	binary.Write(&entry, binary.BigEndian, uint16(len(s)))
	entry.WriteString(s)
	b.cp = append(b.cp, entry.Bytes())
	return uint16(len(b.cp))
}

func (b *classBuilder) addClass(nameIdx uint16) uint16 {
	var entry bytes.Buffer
	entry.WriteByte(TagClass)
	binary.Write(&entry, binary.BigEndian, nameIdx)
	b.cp = append(b.cp, entry.Bytes())
	return uint16(len(b.cp))
}

func (b *classBuilder) addLong(v int64) uint16 {
	var entry bytes.Buffer
	entry.WriteByte(TagLong)
	binary.Write(&entry, binary.BigEndian, uint64(v))
	b.cp = append(b.cp, entry.Bytes())
	idx := uint16(len(b.cp))
	b.cp = append(b.cp, nil) // reserved second slot
	return idx
}

func (b *classBuilder) addInteger(v int32) uint16 {
	var entry bytes.Buffer
	entry.WriteByte(TagInteger)
	binary.Write(&entry, binary.BigEndian, v)
	b.cp = append(b.cp, entry.Bytes())
	return uint16(len(b.cp))
}

// build assembles the full class file: access flags, this/super, a single
// method whose Code attribute is exactly codeBytes, maxStack/maxLocals as
// given, with no fields and no interfaces.
func (b *classBuilder) build(t *testing.T, accessFlags uint16, methodName, methodDescriptor string, maxStack, maxLocals uint16, codeBytes []byte) []byte {
	t.Helper()

	thisNameIdx := b.addUtf8("Test")
	thisIdx := b.addClass(thisNameIdx)
	methodNameIdx := b.addUtf8(methodName)
	methodDescIdx := b.addUtf8(methodDescriptor)
	codeAttrNameIdx := b.addUtf8("Code")

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(Magic))
	binary.Write(&out, binary.BigEndian, uint16(0))  // minor
	binary.Write(&out, binary.BigEndian, uint16(52)) // major (Java 8)

	// constant_pool_count = len(cp)+1, including reserved slots
	binary.Write(&out, binary.BigEndian, uint16(len(b.cp)+1))
	for _, entry := range b.cp {
		if entry == nil {
			continue // reserved slot: consumed no bytes, occupies an index only
		}
		out.Write(entry)
	}

	binary.Write(&out, binary.BigEndian, accessFlags)
	binary.Write(&out, binary.BigEndian, thisIdx)
	binary.Write(&out, binary.BigEndian, uint16(0)) // super_class = 0 (no super)
	binary.Write(&out, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&out, binary.BigEndian, uint16(0)) // fields_count

	binary.Write(&out, binary.BigEndian, uint16(1)) // methods_count
	binary.Write(&out, binary.BigEndian, uint16(AccStatic))
	binary.Write(&out, binary.BigEndian, methodNameIdx)
	binary.Write(&out, binary.BigEndian, methodDescIdx)
	binary.Write(&out, binary.BigEndian, uint16(1)) // attributes_count

	binary.Write(&out, binary.BigEndian, codeAttrNameIdx)
	var code bytes.Buffer
	binary.Write(&code, binary.BigEndian, maxStack)
	binary.Write(&code, binary.BigEndian, maxLocals)
	binary.Write(&code, binary.BigEndian, uint32(len(codeBytes)))
	code.Write(codeBytes)
	binary.Write(&code, binary.BigEndian, uint16(0)) // exception_table_length
	binary.Write(&code, binary.BigEndian, uint16(0)) // attributes_count
	binary.Write(&out, binary.BigEndian, uint32(code.Len()))
	out.Write(code.Bytes())

	binary.Write(&out, binary.BigEndian, uint16(0)) // class attributes_count

	return out.Bytes()
}

func TestParseMinimalClass(t *testing.T) {
	b := newClassBuilder()
	raw := b.build(t, AccPublic|AccSuper, "run", "()V", 0, 0, []byte{0xb1}) // return

	cf, err := NewDecoder().Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	name, err := cf.ConstantPool.ClassNameAt(cf.ThisClass)
	if err != nil {
		t.Fatalf("ClassNameAt: %v", err)
	}
	if name != "Test" {
		t.Errorf("this class = %q, want Test", name)
	}
	if cf.SuperClass != 0 {
		t.Errorf("super_class = %d, want 0", cf.SuperClass)
	}
	if len(cf.Methods) != 1 {
		t.Fatalf("len(Methods) = %d, want 1", len(cf.Methods))
	}

	m := cf.Methods[0]
	if m.Name != "run" {
		t.Errorf("method name = %q, want run", m.Name)
	}
	if m.ArgCount != 0 {
		t.Errorf("ArgCount = %d, want 0", m.ArgCount)
	}
	if m.ReturnKind != ReturnVoid {
		t.Errorf("ReturnKind = %v, want ReturnVoid", m.ReturnKind)
	}
	if m.Code == nil || len(m.Code.Code) != 1 || m.Code.Code[0] != 0xb1 {
		t.Errorf("Code = %+v, want single-byte return", m.Code)
	}
}

func TestParseArgCountAndReturnKind(t *testing.T) {
	tests := []struct {
		descriptor string
		wantArgs   int
		wantReturn ReturnKind
	}{
		{"()V", 0, ReturnVoid},
		{"(II)I", 2, ReturnValue},
		{"(Ljava/lang/String;I[I)Z", 3, ReturnValue},
		{"([[J)V", 1, ReturnVoid},
	}
	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			argCount, returnKind, err := ParseDescriptor(tt.descriptor)
			if err != nil {
				t.Fatalf("ParseDescriptor(%q): %v", tt.descriptor, err)
			}
			if argCount != tt.wantArgs {
				t.Errorf("argCount = %d, want %d", argCount, tt.wantArgs)
			}
			if returnKind != tt.wantReturn {
				t.Errorf("returnKind = %v, want %v", returnKind, tt.wantReturn)
			}
		})
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x00, 0, 0, 0, 52, 0, 1}
	_, err := NewDecoder().Parse(bytes.NewReader(raw))
	if kind, ok := jvmerrors.KindOf(err); !ok || kind != jvmerrors.MalformedClassFile {
		t.Fatalf("err = %v, want MalformedClassFile", err)
	}
}

func TestParseRejectsFutureMajorVersion(t *testing.T) {
	b := newClassBuilder()
	raw := b.build(t, AccPublic, "run", "()V", 0, 0, []byte{0xb1})
	// major version lives at bytes [6:8]
	raw[6] = 0xFF
	raw[7] = 0xFF

	_, err := NewDecoder().Parse(bytes.NewReader(raw))
	if kind, ok := jvmerrors.KindOf(err); !ok || kind != jvmerrors.UnsupportedClassVersion {
		t.Fatalf("err = %v, want UnsupportedClassVersion", err)
	}
}

func TestParseLongConstantBitwiseOr(t *testing.T) {
	b := newClassBuilder()
	longIdx := b.addLong(int64(0x00000001_00000000)) // high word bit set, low word zero
	raw := b.build(t, AccPublic, "run", "()V", 0, 0, []byte{0xb1})

	cf, err := NewDecoder().Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	entry := cf.ConstantPool[longIdx]
	lc, ok := entry.(LongConst)
	if !ok {
		t.Fatalf("entry at %d = %T, want LongConst", longIdx, entry)
	}
	// A logical-or implementation would collapse this to 1; bitwise-or
	// must preserve the full 64-bit value.
	if lc.Value != 0x00000001_00000000 {
		t.Errorf("Long value = 0x%X, want 0x100000000", lc.Value)
	}
}

func TestParseReservedSlotUnreadable(t *testing.T) {
	b := newClassBuilder()
	longIdx := b.addLong(42)
	raw := b.build(t, AccPublic, "run", "()V", 0, 0, []byte{0xb1})

	cf, err := NewDecoder().Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reservedIdx := longIdx + 1
	if _, err := cf.ConstantPool.Utf8At(reservedIdx); err == nil {
		t.Fatalf("Utf8At(reserved slot) = nil error, want failure")
	}
}

func TestParseTruncatedStreamIsMalformed(t *testing.T) {
	raw := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 52, 0x00}
	_, err := NewDecoder().Parse(bytes.NewReader(raw))
	if kind, ok := jvmerrors.KindOf(err); !ok || kind != jvmerrors.MalformedClassFile {
		t.Fatalf("err = %v, want MalformedClassFile", err)
	}
}

func TestParseIntegerConstant(t *testing.T) {
	b := newClassBuilder()
	intIdx := b.addInteger(-7)
	raw := b.build(t, AccPublic, "run", "()V", 0, 0, []byte{0xb1})

	cf, err := NewDecoder().Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := cf.ConstantPool.IntegerAt(intIdx)
	if err != nil {
		t.Fatalf("IntegerAt: %v", err)
	}
	if v != -7 {
		t.Errorf("IntegerAt = %d, want -7", v)
	}
}
