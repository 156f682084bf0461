package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// Decoder decodes class files with a configurable major-version ceiling.
// The zero value is not usable; use NewDecoder.
type Decoder struct {
	// MaxMajorVersion is the highest major version this decoder accepts.
	MaxMajorVersion uint16
}

// NewDecoder returns a Decoder ceilinged at DefaultMaxMajorVersion.
func NewDecoder() *Decoder {
	return &Decoder{MaxMajorVersion: DefaultMaxMajorVersion}
}

// Parse decodes a class file from r.
func (d *Decoder) Parse(r io.Reader) (*ClassFile, error) {
	br := &byteReader{r: r}

	magic, err := br.u4()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading magic number")
	}
	if magic != Magic {
		return nil, jvmerrors.New(jvmerrors.MalformedClassFile, "invalid magic number 0x%08X", magic)
	}

	cf := &ClassFile{}

	if cf.MinorVersion, err = br.u2(); err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading minor version")
	}
	if cf.MajorVersion, err = br.u2(); err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading major version")
	}
	if cf.MajorVersion > d.MaxMajorVersion {
		return nil, jvmerrors.New(jvmerrors.UnsupportedClassVersion, "major version %d exceeds ceiling %d", cf.MajorVersion, d.MaxMajorVersion)
	}

	cpCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading constant_pool_count")
	}
	if cpCount == 0 {
		return nil, jvmerrors.New(jvmerrors.MalformedClassFile, "constant pool is empty")
	}
	if cf.ConstantPool, err = parseConstantPool(br, cpCount); err != nil {
		return nil, err
	}

	if cf.AccessFlags, err = br.u2(); err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading access_flags")
	}
	if cf.ThisClass, err = br.u2(); err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading this_class")
	}
	if cf.SuperClass, err = br.u2(); err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading super_class")
	}

	ifaceCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading interfaces_count")
	}
	cf.Interfaces = make([]uint16, ifaceCount)
	for i := range cf.Interfaces {
		if cf.Interfaces[i], err = br.u2(); err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading interface %d", i)
		}
	}

	fieldsCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading fields_count")
	}
	cf.Fields = make([]Field, fieldsCount)
	for i := range cf.Fields {
		if cf.Fields[i], err = parseField(br, cf.ConstantPool); err != nil {
			return nil, fmt.Errorf("parsing field %d: %w", i, err)
		}
	}

	methodsCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading methods_count")
	}
	cf.Methods = make([]Method, methodsCount)
	for i := range cf.Methods {
		if cf.Methods[i], err = parseMethod(br, cf.ConstantPool); err != nil {
			return nil, fmt.Errorf("parsing method %d: %w", i, err)
		}
	}

	attrCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading class attributes_count")
	}
	for i := uint16(0); i < attrCount; i++ {
		if err := skipAttribute(br, cf.ConstantPool); err != nil {
			return nil, fmt.Errorf("skipping class attribute %d: %w", i, err)
		}
	}

	return cf, nil
}

func parseConstantPool(br *byteReader, count uint16) (ConstantPool, error) {
	pool := make(ConstantPool, count)
	for i := uint16(1); i < count; i++ {
		tag, err := br.u1()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading constant pool tag at index %d", i)
		}

		switch tag {
		case TagUtf8:
			length, err := br.u2()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Utf8 length at index %d", i)
			}
			bytes, err := br.bytes(int(length))
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Utf8 bytes at index %d", i)
			}
			pool[i] = Utf8{Value: string(bytes)}

		case TagInteger:
			v, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Integer at index %d", i)
			}
			pool[i] = IntegerConst{Value: int32(v)}

		case TagFloat:
			v, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Float at index %d", i)
			}
			pool[i] = FloatConst{Value: math.Float32frombits(v)}

		case TagLong:
			hi, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Long high word at index %d", i)
			}
			lo, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Long low word at index %d", i)
			}
			// Bitwise-or, not the original's logical-or bug — see
			// SPEC_FULL.md Open Question (a).
			pool[i] = LongConst{Value: int64(uint64(hi)<<32 | uint64(lo))}
			i++
			if int(i) < len(pool) {
				pool[i] = Reserved{}
			}

		case TagDouble:
			hi, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Double high word at index %d", i)
			}
			lo, err := br.u4()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Double low word at index %d", i)
			}
			pool[i] = DoubleConst{Value: math.Float64frombits(uint64(hi)<<32 | uint64(lo))}
			i++
			if int(i) < len(pool) {
				pool[i] = Reserved{}
			}

		case TagClass:
			nameIdx, err := br.u2()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Class at index %d", i)
			}
			pool[i] = ClassRef{NameIndex: nameIdx}

		case TagString:
			strIdx, err := br.u2()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading String at index %d", i)
			}
			pool[i] = StringConst{StringIndex: strIdx}

		case TagFieldref:
			classIdx, ntIdx, err := readRefPair(br)
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Fieldref at index %d", i)
			}
			pool[i] = Fieldref{ClassIndex: classIdx, NTIndex: ntIdx}

		case TagMethodref:
			classIdx, ntIdx, err := readRefPair(br)
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading Methodref at index %d", i)
			}
			pool[i] = Methodref{ClassIndex: classIdx, NTIndex: ntIdx}

		case TagInterfaceMethodref:
			classIdx, ntIdx, err := readRefPair(br)
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading InterfaceMethodref at index %d", i)
			}
			pool[i] = InterfaceMethodref{ClassIndex: classIdx, NTIndex: ntIdx}

		case TagNameAndType:
			nameIdx, descIdx, err := readRefPair(br)
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading NameAndType at index %d", i)
			}
			pool[i] = NameAndType{NameIndex: nameIdx, DescriptorIndex: descIdx}

		case TagMethodHandle:
			kind, err := br.u1()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading MethodHandle reference_kind at index %d", i)
			}
			refIdx, err := br.u2()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading MethodHandle reference_index at index %d", i)
			}
			pool[i] = MethodHandle{ReferenceKind: kind, ReferenceIndex: refIdx}

		case TagMethodType:
			descIdx, err := br.u2()
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading MethodType at index %d", i)
			}
			pool[i] = MethodType{DescriptorIndex: descIdx}

		case TagInvokeDynamic:
			bsmIdx, ntIdx, err := readRefPair(br)
			if err != nil {
				return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading InvokeDynamic at index %d", i)
			}
			pool[i] = InvokeDynamic{BootstrapMethodAttrIndex: bsmIdx, NTIndex: ntIdx}

		default:
			return nil, jvmerrors.New(jvmerrors.MalformedClassFile, "unknown constant pool tag %d at index %d", tag, i)
		}
	}
	return pool, nil
}

func readRefPair(br *byteReader) (a, b uint16, err error) {
	if a, err = br.u2(); err != nil {
		return 0, 0, err
	}
	if b, err = br.u2(); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parseField(br *byteReader, pool ConstantPool) (Field, error) {
	accessFlags, nameIdx, descIdx, attrCount, err := readMemberHeader(br)
	if err != nil {
		return Field{}, err
	}
	name, err := pool.Utf8At(nameIdx)
	if err != nil {
		return Field{}, fmt.Errorf("resolving field name: %w", err)
	}
	descriptor, err := pool.Utf8At(descIdx)
	if err != nil {
		return Field{}, fmt.Errorf("resolving field descriptor: %w", err)
	}
	for i := uint16(0); i < attrCount; i++ {
		if err := skipAttribute(br, pool); err != nil {
			return Field{}, fmt.Errorf("skipping field attribute %d: %w", i, err)
		}
	}
	return Field{AccessFlags: accessFlags, Name: name, Descriptor: descriptor}, nil
}

func parseMethod(br *byteReader, pool ConstantPool) (Method, error) {
	accessFlags, nameIdx, descIdx, attrCount, err := readMemberHeader(br)
	if err != nil {
		return Method{}, err
	}
	name, err := pool.Utf8At(nameIdx)
	if err != nil {
		return Method{}, fmt.Errorf("resolving method name: %w", err)
	}
	descriptor, err := pool.Utf8At(descIdx)
	if err != nil {
		return Method{}, fmt.Errorf("resolving method descriptor: %w", err)
	}

	argCount, returnKind, err := ParseDescriptor(descriptor)
	if err != nil {
		return Method{}, fmt.Errorf("parsing descriptor %q: %w", descriptor, err)
	}

	m := Method{
		AccessFlags: accessFlags,
		Name:        name,
		Descriptor:  descriptor,
		ArgCount:    argCount,
		ReturnKind:  returnKind,
	}

	for i := uint16(0); i < attrCount; i++ {
		name, data, err := readRawAttribute(br, pool)
		if err != nil {
			return Method{}, fmt.Errorf("reading method attribute %d: %w", i, err)
		}
		if name == "Code" {
			code, err := parseCodeAttribute(data)
			if err != nil {
				return Method{}, fmt.Errorf("parsing Code attribute: %w", err)
			}
			m.Code = code
		}
	}

	return m, nil
}

func readMemberHeader(br *byteReader) (accessFlags, nameIdx, descIdx, attrCount uint16, err error) {
	if accessFlags, err = br.u2(); err != nil {
		return
	}
	if nameIdx, err = br.u2(); err != nil {
		return
	}
	if descIdx, err = br.u2(); err != nil {
		return
	}
	attrCount, err = br.u2()
	return
}

// skipAttribute reads one length-prefixed attribute and discards its
// payload without interpreting it.
func skipAttribute(br *byteReader, pool ConstantPool) error {
	_, _, err := readRawAttribute(br, pool)
	return err
}

// readRawAttribute reads one attribute's name and raw payload.
func readRawAttribute(br *byteReader, pool ConstantPool) (name string, data []byte, err error) {
	nameIdx, err := br.u2()
	if err != nil {
		return "", nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading attribute_name_index")
	}
	length, err := br.u4()
	if err != nil {
		return "", nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading attribute_length")
	}
	data, err = br.bytes(int(length))
	if err != nil {
		return "", nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading attribute payload")
	}
	name, err = pool.Utf8At(nameIdx)
	if err != nil {
		return "", nil, fmt.Errorf("resolving attribute name: %w", err)
	}
	return name, data, nil
}

// parseCodeAttribute interprets the Code attribute's payload, including its
// exception table (read and discarded per spec §4.1) and any nested
// attributes (recursively skipped).
func parseCodeAttribute(data []byte) (*Code, error) {
	br := &byteReader{r: sliceReader(data)}

	maxStack, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading max_stack")
	}
	maxLocals, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading max_locals")
	}
	codeLength, err := br.u4()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading code_length")
	}
	code, err := br.bytes(int(codeLength))
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading code")
	}

	excTableLength, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading exception_table_length")
	}
	handlers := make([]ExceptionHandler, excTableLength)
	for i := range handlers {
		startPC, err := br.u2()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading exception handler %d", i)
		}
		endPC, err := br.u2()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading exception handler %d", i)
		}
		handlerPC, err := br.u2()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading exception handler %d", i)
		}
		catchType, err := br.u2()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading exception handler %d", i)
		}
		handlers[i] = ExceptionHandler{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType}
	}

	// The Code attribute's own constant pool isn't needed to skip its
	// nested attributes' payloads, but attribute names are — so code
	// attributes nested inside Code (e.g. LineNumberTable) are skipped
	// blind, by length only, since we have no pool reference here.
	nestedCount, err := br.u2()
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading code attributes_count")
	}
	for i := uint16(0); i < nestedCount; i++ {
		if _, err := br.u2(); err != nil { // attribute_name_index
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading nested attribute %d", i)
		}
		length, err := br.u4()
		if err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "reading nested attribute %d length", i)
		}
		if _, err := br.bytes(int(length)); err != nil {
			return nil, jvmerrors.Wrap(jvmerrors.MalformedClassFile, err, "skipping nested attribute %d", i)
		}
	}

	return &Code{MaxStack: maxStack, MaxLocals: maxLocals, Code: code, ExceptionHandlers: handlers}, nil
}

// ParseDescriptor parses a method descriptor `(argtype*)returntype` and
// returns the argument count and return-type classification, per spec
// §4.1's descriptor grammar.
func ParseDescriptor(descriptor string) (argCount int, returnKind ReturnKind, err error) {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return 0, 0, fmt.Errorf("missing '(' in descriptor %q", descriptor)
	}
	pos := 1
	for pos < len(descriptor) && descriptor[pos] != ')' {
		if err := skipType(descriptor, &pos); err != nil {
			return 0, 0, err
		}
		argCount++
	}
	if pos >= len(descriptor) {
		return 0, 0, fmt.Errorf("missing ')' in descriptor %q", descriptor)
	}
	pos++ // skip ')'

	if pos >= len(descriptor) {
		return 0, 0, fmt.Errorf("missing return type in descriptor %q", descriptor)
	}
	if descriptor[pos] == 'V' {
		return argCount, ReturnVoid, nil
	}
	if err := skipType(descriptor, &pos); err != nil {
		return 0, 0, err
	}
	return argCount, ReturnValue, nil
}

// skipType advances *pos past one field type (primitive, class, or array).
func skipType(descriptor string, pos *int) error {
	if *pos >= len(descriptor) {
		return fmt.Errorf("truncated type in descriptor %q", descriptor)
	}
	switch descriptor[*pos] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		*pos++
		return nil
	case 'L':
		end := strings.IndexByte(descriptor[*pos:], ';')
		if end == -1 {
			return fmt.Errorf("unterminated class type in descriptor %q", descriptor)
		}
		*pos += end + 1
		return nil
	case '[':
		*pos++
		return skipType(descriptor, pos)
	default:
		return fmt.Errorf("invalid type char %q in descriptor %q", descriptor[*pos], descriptor)
	}
}

// byteReader wraps an io.Reader with big-endian u1/u2/u4 helpers and turns
// any short read into a MalformedClassFile-flavored error at the call
// site (the caller wraps with jvmerrors; byteReader itself just reports
// io errors so it stays reusable for both the top-level stream and a
// Code attribute's in-memory payload).
type byteReader struct {
	r   io.Reader
	buf [4]byte
}

func (br *byteReader) u1() (uint8, error) {
	if _, err := io.ReadFull(br.r, br.buf[:1]); err != nil {
		return 0, err
	}
	return br.buf[0], nil
}

func (br *byteReader) u2() (uint16, error) {
	if _, err := io.ReadFull(br.r, br.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(br.buf[:2]), nil
}

func (br *byteReader) u4() (uint32, error) {
	if _, err := io.ReadFull(br.r, br.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(br.buf[:4]), nil
}

func (br *byteReader) bytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// sliceReader adapts a byte slice to io.Reader for re-using byteReader
// over an already-materialized attribute payload.
func sliceReader(b []byte) io.Reader {
	return &simpleSliceReader{b: b}
}

type simpleSliceReader struct {
	b   []byte
	pos int
}

func (s *simpleSliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += n
	return n, nil
}
