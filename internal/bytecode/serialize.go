package bytecode

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"lavendeux/internal/value"
)

// Type tags for serialized literal values: primitive literals carry a
// one-byte tag (Boolean=0x11, Integer=0x12, Decimal=0x14, String=0x18).
const (
	tagBoolean byte = 0x11
	tagInteger byte = 0x12
	tagDecimal byte = 0x14
	tagString  byte = 0x18
)

// writer accumulates a big-endian-encoded byte stream. Every
// multi-byte integer is big-endian; strings and vectors are
// length-prefixed by a u64 count; Option<T> is a one-byte tag (0=none,
// 1=some) optionally followed by the payload.
type writer struct{ buf []byte }

func (w *writer) u8(b byte)  { w.buf = append(w.buf, b) }
func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) str(s string) {
	w.u64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) optStr(s *string) {
	if s == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.str(*s)
}

// i128 writes n as a 16-byte two's-complement big-endian integer,
// matching the wire format's `coefficient: i128` for Decimal and every
// Integer literal.
func (w *writer) i128(n *big.Int) {
	var out [16]byte
	mag := new(big.Int).Abs(n)
	magBytes := mag.Bytes()
	copy(out[16-len(magBytes):], magBytes)
	if n.Sign() < 0 {
		// two's complement: invert and add one over the 128-bit window
		for i := range out {
			out[i] = ^out[i]
		}
		carry := byte(1)
		for i := 15; i >= 0 && carry != 0; i-- {
			sum := uint16(out[i]) + uint16(carry)
			out[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	w.bytes(out[:])
}

// SerializeValue writes v's wire representation: a one-byte tag
// followed by its payload. Only the primitive literal variants
// (Boolean/Integer/Decimal/String) are serializable — Array/Object/
// Range/Function/Reference are runtime-only and never cross the wire
// as bare constants (functions get their own SerializeFunction).
func SerializeValue(v value.Value) ([]byte, error) {
	w := &writer{}
	switch t := v.(type) {
	case value.Boolean:
		w.u8(tagBoolean)
		if t {
			w.u8(1)
		} else {
			w.u8(0)
		}
	case *value.Integer:
		w.u8(tagInteger)
		w.i128(t.Big())
	case *value.Decimal:
		w.u8(tagDecimal)
		w.i128(t.Coefficient)
		w.u8(byte(t.FracDigits))
		switch {
		case t.Currency == nil:
			w.u8(0)
		case t.Currency.Suffix:
			w.u8(2)
			w.str(t.Currency.Symbol)
		default:
			w.u8(1)
			w.str(t.Currency.Symbol)
		}
		if t.Precision == nil {
			w.u8(0)
		} else {
			w.u8(1)
			w.u8(byte(int8(*t.Precision)))
		}
	case value.String:
		w.u8(tagString)
		w.str(string(t))
	default:
		return nil, fmt.Errorf("bytecode: value of type %s is not serializable", v.Type())
	}
	return w.buf, nil
}

// serializeFunctionArgument writes (name_hash skipped — internal/vm
// resolves by name at load time, not hash, since Go doesn't share Rust's
// interned-hash constant folding) name, type, and optional default.
func serializeFunctionArgument(w *writer, a value.FunctionArgument) error {
	w.str(a.Name)
	w.str(a.TypeName)
	if a.Default == nil {
		w.u8(0)
		return nil
	}
	w.u8(1)
	payload, err := SerializeValue(a.Default)
	if err != nil {
		return err
	}
	w.bytes(payload)
	return nil
}

func serializeFunctionDocs(w *writer, d *value.FunctionDocs) {
	if d == nil {
		d = &value.FunctionDocs{}
	}
	w.str(d.Name)
	w.str(d.Args)
	w.str(d.Category)
	w.str(d.Signature)
	w.optStr(d.Short)
	w.optStr(d.Description)
	w.optStr(d.Example)
}

// SerializeFunction writes a Function record: name, return type,
// argument list, docs, and its compiled body. Native entries
// cannot be serialized — only compiled user functions with a Code body.
func SerializeFunction(fn *value.Function, body []byte) ([]byte, error) {
	if fn.IsNative {
		return nil, fmt.Errorf("bytecode: native function %q has no serializable body", fn.Name)
	}
	w := &writer{}
	w.str(fn.Name)
	w.str(fn.ReturnType)
	w.u64(uint64(len(fn.Args)))
	for _, a := range fn.Args {
		if err := serializeFunctionArgument(w, a); err != nil {
			return nil, err
		}
	}
	serializeFunctionDocs(w, fn.Docs)
	w.u64(uint64(len(body)))
	w.bytes(body)
	return w.buf, nil
}

// SerializeStdFunctionSet writes a length-prefixed vector of function
// records, the precompiled-library format loaded read-only into the
// global table (see internal/stdfuncs).
func SerializeStdFunctionSet(fns []*value.Function, bodies [][]byte) ([]byte, error) {
	if len(fns) != len(bodies) {
		return nil, fmt.Errorf("bytecode: function/body count mismatch (%d vs %d)", len(fns), len(bodies))
	}
	w := &writer{}
	w.u64(uint64(len(fns)))
	for i, fn := range fns {
		rec, err := SerializeFunction(fn, bodies[i])
		if err != nil {
			return nil, err
		}
		w.bytes(rec)
	}
	return w.buf, nil
}

func serializeConstant(w *writer, k Constant) error {
	if k.IsName {
		w.u8(1)
		w.str(k.Name)
		return nil
	}
	w.u8(0)
	payload, err := SerializeValue(k.Value)
	if err != nil {
		return err
	}
	w.bytes(payload)
	return nil
}

func deserializeConstant(r *reader) (Constant, error) {
	tag, err := r.u8()
	if err != nil {
		return Constant{}, err
	}
	if tag == 1 {
		name, err := r.str()
		if err != nil {
			return Constant{}, err
		}
		return Constant{IsName: true, Name: name}, nil
	}
	v, err := deserializeValue(r)
	if err != nil {
		return Constant{}, err
	}
	return Constant{Value: v}, nil
}

// SerializeFunctionChunk writes fn's metadata (as SerializeFunction
// does) plus the full constant pool of the Chunk its body was compiled
// into, so every PUSH/REF/FSIG/FBEG/WRFN/MKFN index in chunk.Code can
// be resolved again once the body is relocated into another Chunk —
// see internal/stdfuncs.relocate, which is why this exists separately
// from SerializeFunction's bare-body form: a bare body's indices mean
// nothing once lifted out of the chunk that compiled it.
func SerializeFunctionChunk(fn *value.Function, chunk *Chunk) ([]byte, error) {
	if fn.IsNative {
		return nil, fmt.Errorf("bytecode: native function %q has no serializable body", fn.Name)
	}
	w := &writer{}
	w.str(fn.Name)
	w.str(fn.ReturnType)
	w.u64(uint64(len(fn.Args)))
	for _, a := range fn.Args {
		if err := serializeFunctionArgument(w, a); err != nil {
			return nil, err
		}
	}
	serializeFunctionDocs(w, fn.Docs)
	w.u64(uint64(len(chunk.Constants)))
	for _, k := range chunk.Constants {
		if err := serializeConstant(w, k); err != nil {
			return nil, err
		}
	}
	w.u64(uint64(len(chunk.Code)))
	w.bytes(chunk.Code)
	return w.buf, nil
}

// SerializeStdFunctionLibrary is SerializeStdFunctionSet's counterpart
// for functions that reference named constants: each fn is paired with
// the Chunk it was compiled into (typically a throwaway Chunk holding
// nothing but that one function's body), rather than a bare body
// slice, so REF/PUSH/FSIG/etc. indices survive being relocated into a
// shared Chunk at load time.
func SerializeStdFunctionLibrary(fns []*value.Function, chunks []*Chunk) ([]byte, error) {
	if len(fns) != len(chunks) {
		return nil, fmt.Errorf("bytecode: function/chunk count mismatch (%d vs %d)", len(fns), len(chunks))
	}
	w := &writer{}
	w.u64(uint64(len(fns)))
	for i, fn := range fns {
		rec, err := SerializeFunctionChunk(fn, chunks[i])
		if err != nil {
			return nil, err
		}
		w.bytes(rec)
	}
	return w.buf, nil
}

// reader walks a big-endian-encoded byte stream produced by writer,
// the inverse half of the wire format.
type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader { return &reader{buf: b} }

func (r *reader) u8() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("bytecode: unexpected end of stream")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("bytecode: unexpected end of stream")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) str() (string, error) {
	n, err := r.u64()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) optStr() (*string, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	s, err := r.str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// i128 reads a 16-byte two's-complement big-endian integer back to a
// big.Int, the inverse of writer.i128.
func (r *reader) i128() (*big.Int, error) {
	b, err := r.take(16)
	if err != nil {
		return nil, err
	}
	neg := b[0]&0x80 != 0
	work := make([]byte, 16)
	copy(work, b)
	if neg {
		carry := byte(1)
		for i := range work {
			work[i] = ^work[i]
		}
		for i := 15; i >= 0 && carry != 0; i-- {
			sum := uint16(work[i]) + uint16(carry)
			work[i] = byte(sum)
			carry = byte(sum >> 8)
		}
	}
	n := new(big.Int).SetBytes(work)
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// DeserializeValue reads one tagged literal value, the inverse of
// SerializeValue.
func DeserializeValue(b []byte) (value.Value, error) {
	r := newReader(b)
	v, err := deserializeValue(r)
	return v, err
}

func deserializeValue(r *reader) (value.Value, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBoolean:
		b, err := r.u8()
		if err != nil {
			return nil, err
		}
		return value.Boolean(b != 0), nil
	case tagInteger:
		n, err := r.i128()
		if err != nil {
			return nil, err
		}
		return value.NewInteger(n), nil
	case tagDecimal:
		coeff, err := r.i128()
		if err != nil {
			return nil, err
		}
		fracByte, err := r.u8()
		if err != nil {
			return nil, err
		}
		symTag, err := r.u8()
		if err != nil {
			return nil, err
		}
		var currency *value.CurrencySymbol
		switch symTag {
		case 1:
			sym, err := r.str()
			if err != nil {
				return nil, err
			}
			currency = &value.CurrencySymbol{Symbol: sym, Suffix: false}
		case 2:
			sym, err := r.str()
			if err != nil {
				return nil, err
			}
			currency = &value.CurrencySymbol{Symbol: sym, Suffix: true}
		}
		precTag, err := r.u8()
		if err != nil {
			return nil, err
		}
		var precision *uint32
		if precTag == 1 {
			pb, err := r.u8()
			if err != nil {
				return nil, err
			}
			p := uint32(int8(pb))
			precision = &p
		}
		return &value.Decimal{Coefficient: coeff, FracDigits: uint32(fracByte), Currency: currency, Precision: precision}, nil
	case tagString:
		s, err := r.str()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	default:
		return nil, fmt.Errorf("bytecode: unknown value tag 0x%02x", tag)
	}
}

// deserializeFunctionArgument reads one FunctionArgument, the inverse
// of serializeFunctionArgument.
func deserializeFunctionArgument(r *reader) (value.FunctionArgument, error) {
	name, err := r.str()
	if err != nil {
		return value.FunctionArgument{}, err
	}
	typeName, err := r.str()
	if err != nil {
		return value.FunctionArgument{}, err
	}
	hasDefault, err := r.u8()
	if err != nil {
		return value.FunctionArgument{}, err
	}
	var def value.Value
	if hasDefault == 1 {
		def, err = deserializeValue(r)
		if err != nil {
			return value.FunctionArgument{}, err
		}
	}
	return value.FunctionArgument{Name: name, TypeName: typeName, Default: def}, nil
}

func deserializeFunctionDocs(r *reader) (*value.FunctionDocs, error) {
	d := &value.FunctionDocs{}
	var err error
	if d.Name, err = r.str(); err != nil {
		return nil, err
	}
	if d.Args, err = r.str(); err != nil {
		return nil, err
	}
	if d.Category, err = r.str(); err != nil {
		return nil, err
	}
	if d.Signature, err = r.str(); err != nil {
		return nil, err
	}
	if d.Short, err = r.optStr(); err != nil {
		return nil, err
	}
	if d.Description, err = r.optStr(); err != nil {
		return nil, err
	}
	if d.Example, err = r.optStr(); err != nil {
		return nil, err
	}
	return d, nil
}

// DeserializeFunction reads one Function record plus its compiled
// body, the inverse of SerializeFunction.
func DeserializeFunction(b []byte) (*value.Function, []byte, error) {
	r := newReader(b)
	fn, body, err := deserializeFunction(r)
	return fn, body, err
}

func deserializeFunction(r *reader) (*value.Function, []byte, error) {
	name, err := r.str()
	if err != nil {
		return nil, nil, err
	}
	returnType, err := r.str()
	if err != nil {
		return nil, nil, err
	}
	argc, err := r.u64()
	if err != nil {
		return nil, nil, err
	}
	args := make([]value.FunctionArgument, argc)
	for i := range args {
		args[i], err = deserializeFunctionArgument(r)
		if err != nil {
			return nil, nil, err
		}
	}
	docs, err := deserializeFunctionDocs(r)
	if err != nil {
		return nil, nil, err
	}
	bodyLen, err := r.u64()
	if err != nil {
		return nil, nil, err
	}
	body, err := r.take(int(bodyLen))
	if err != nil {
		return nil, nil, err
	}
	fn := &value.Function{Name: name, Args: args, ReturnType: returnType, Docs: docs}
	return fn, body, nil
}

// DeserializeStdFunctionSet reads a length-prefixed vector of function
// records back into memory, pairing each Function with its compiled
// body. Entry offsets are left unset; internal/stdfuncs does not use
// this form but loads DeserializeStdFunctionLibrary's output instead.
func DeserializeStdFunctionSet(b []byte) ([]*value.Function, [][]byte, error) {
	r := newReader(b)
	count, err := r.u64()
	if err != nil {
		return nil, nil, err
	}
	fns := make([]*value.Function, count)
	bodies := make([][]byte, count)
	for i := range fns {
		fns[i], bodies[i], err = deserializeFunction(r)
		if err != nil {
			return nil, nil, err
		}
	}
	return fns, bodies, nil
}

// deserializeFunctionChunk is DeserializeFunctionChunk's reader-based
// half, the inverse of SerializeFunctionChunk.
func deserializeFunctionChunk(r *reader) (*value.Function, []Constant, []byte, error) {
	name, err := r.str()
	if err != nil {
		return nil, nil, nil, err
	}
	returnType, err := r.str()
	if err != nil {
		return nil, nil, nil, err
	}
	argc, err := r.u64()
	if err != nil {
		return nil, nil, nil, err
	}
	args := make([]value.FunctionArgument, argc)
	for i := range args {
		args[i], err = deserializeFunctionArgument(r)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	docs, err := deserializeFunctionDocs(r)
	if err != nil {
		return nil, nil, nil, err
	}
	constc, err := r.u64()
	if err != nil {
		return nil, nil, nil, err
	}
	consts := make([]Constant, constc)
	for i := range consts {
		consts[i], err = deserializeConstant(r)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	bodyLen, err := r.u64()
	if err != nil {
		return nil, nil, nil, err
	}
	body, err := r.take(int(bodyLen))
	if err != nil {
		return nil, nil, nil, err
	}
	fn := &value.Function{Name: name, Args: args, ReturnType: returnType, Docs: docs}
	return fn, consts, body, nil
}

// DeserializeFunctionChunk reads one Function record plus the full
// constant pool and code of the Chunk it was serialized from, the
// inverse of SerializeFunctionChunk.
func DeserializeFunctionChunk(b []byte) (*value.Function, []Constant, []byte, error) {
	r := newReader(b)
	return deserializeFunctionChunk(r)
}

// DeserializeStdFunctionLibrary reads a length-prefixed vector of
// function+constant-pool+body records back into memory, the inverse of
// SerializeStdFunctionLibrary.
func DeserializeStdFunctionLibrary(b []byte) ([]*value.Function, [][]Constant, [][]byte, error) {
	r := newReader(b)
	count, err := r.u64()
	if err != nil {
		return nil, nil, nil, err
	}
	fns := make([]*value.Function, count)
	consts := make([][]Constant, count)
	bodies := make([][]byte, count)
	for i := range fns {
		fns[i], consts[i], bodies[i], err = deserializeFunctionChunk(r)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return fns, consts, bodies, nil
}
