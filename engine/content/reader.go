package content

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

type fixup struct {
	index int
	fn    func(interface{})
}

// Reader is the stream handed to type readers. Errors are sticky: once a
// read fails every following read is a no-op returning zero values, so
// readers can decode a whole record and check Err once at the end.
type Reader struct {
	src      *bufio.Reader
	registry *Registry
	asset    string

	pos     int64
	scratch [8]byte
	err     error

	readers     []TypeReader
	sharedCount int
	fixups      []fixup
	completions []func()
}

func NewReader(src io.Reader, registry *Registry, asset string) *Reader {
	return &Reader{
		src:      bufio.NewReader(src),
		registry: registry,
		asset:    asset,
	}
}

// Asset is the name of the asset being read.
func (r *Reader) Asset() string {
	return r.asset
}

func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an error is already pending.
func (r *Reader) Fail(err error) {
	if r.err != nil || err == nil {
		return
	}
	r.err = fmt.Errorf("%s @%d: %w", r.asset, r.pos, err)
}

func (r *Reader) fill(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := r.scratch[:n]
	read, err := io.ReadFull(r.src, buf)
	r.pos += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.Fail(err)
		return nil
	}
	return buf
}

func (r *Reader) ReadUint8() uint8 {
	b := r.fill(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadUint16() uint16 {
	b := r.fill(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.fill(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadFloat32() float32 {
	return gomath.Float32frombits(r.ReadUint32())
}

// Read7BitEncodedInt reads an unsigned LEB128 value of at most 32 bits.
func (r *Reader) Read7BitEncodedInt() int {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b := r.ReadUint8()
		if r.err != nil {
			return 0
		}
		if shift == 28 && b > 0x0f {
			r.Fail(core.ErrVarintOverflow)
			return 0
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if uint64(result) > uint64(gomath.MaxInt32) {
				r.Fail(core.ErrVarintOverflow)
				return 0
			}
			return int(result)
		}
	}
	r.Fail(core.ErrVarintOverflow)
	return 0
}

// ReadBytes reads a 7-bit length prefix followed by that many bytes.
func (r *Reader) ReadBytes() []byte {
	n := r.Read7BitEncodedInt()
	if r.err != nil {
		return nil
	}
	buf := make([]byte, 0, min(n, 1<<16))
	for len(buf) < n {
		chunk := min(n-len(buf), 1<<16)
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		read, err := io.ReadFull(r.src, buf[start:])
		r.pos += int64(read)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			r.Fail(err)
			return nil
		}
	}
	return buf
}

func (r *Reader) ReadString() string {
	return string(r.ReadBytes())
}

func (r *Reader) ReadVec3() math.Vec3 {
	return math.Vec3{X: r.ReadFloat32(), Y: r.ReadFloat32(), Z: r.ReadFloat32()}
}

func (r *Reader) ReadVec4() math.Vec4 {
	return math.Vec4{X: r.ReadFloat32(), Y: r.ReadFloat32(), Z: r.ReadFloat32(), W: r.ReadFloat32()}
}

func (r *Reader) ReadQuaternion() math.Quaternion {
	return math.Quaternion(r.ReadVec4())
}

func (r *Reader) ReadMat4() math.Mat4 {
	m := math.Mat4{}
	for i := range m.Data {
		m.Data[i] = r.ReadFloat32()
	}
	return m
}

// ReadObject reads a type id and decodes the object with the matching type
// reader. A zero id is a nil object.
func (r *Reader) ReadObject() interface{} {
	id := r.Read7BitEncodedInt()
	if r.err != nil || id == 0 {
		return nil
	}
	if id > len(r.readers) {
		r.Fail(fmt.Errorf("type id %d of %d: %w", id, len(r.readers), core.ErrBadTypeID))
		return nil
	}
	tr := r.readers[id-1]
	v, err := tr.Read(r)
	if err != nil {
		r.Fail(fmt.Errorf("%s: %w", tr.Name(), err))
		return nil
	}
	if r.err != nil {
		return nil
	}
	return v
}

// ReadObjectAs reads an object and checks it is a T. The second result is
// false for nil objects and on failure.
func ReadObjectAs[T any](r *Reader) (T, bool) {
	var zero T
	v := r.ReadObject()
	if v == nil {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		r.Fail(fmt.Errorf("got %T, want %s: %w", v, reflect.TypeOf((*T)(nil)).Elem(), core.ErrTypeMismatch))
		return zero, false
	}
	return t, true
}

// ReadSharedResource reads a shared resource index. fn runs once the whole
// asset has been read, with the resolved object. Nil references never call fn.
func (r *Reader) ReadSharedResource(fn func(interface{})) {
	idx := r.Read7BitEncodedInt()
	if r.err != nil || idx == 0 {
		return
	}
	if idx > r.sharedCount {
		r.Fail(fmt.Errorf("shared index %d of %d: %w", idx, r.sharedCount, core.ErrBadSharedIndex))
		return
	}
	r.fixups = append(r.fixups, fixup{index: idx - 1, fn: fn})
}

// ReadSharedResourceAs is ReadSharedResource with a type check on resolution.
func ReadSharedResourceAs[T any](r *Reader, fn func(T)) {
	r.ReadSharedResource(func(v interface{}) {
		t, ok := v.(T)
		if !ok {
			r.Fail(fmt.Errorf("shared resource is %T, want %s: %w", v, reflect.TypeOf((*T)(nil)).Elem(), core.ErrTypeMismatch))
			return
		}
		fn(t)
	})
}

// OnComplete registers fn to run after every shared resource fixup ran.
func (r *Reader) OnComplete(fn func()) {
	if fn != nil {
		r.completions = append(r.completions, fn)
	}
}

func (r *Reader) readHeader() metadata.ResourceHeader {
	h := metadata.ResourceHeader{
		MagicNumber:  r.ReadUint32(),
		ResourceType: metadata.ResourceType(r.ReadUint8()),
		Version:      r.ReadUint8(),
		Reserved:     r.ReadUint16(),
	}
	if r.err != nil {
		return h
	}
	if h.MagicNumber != metadata.ResourceMagic {
		r.Fail(fmt.Errorf("magic 0x%08x: %w", h.MagicNumber, core.ErrBadMagic))
	} else if h.Version != metadata.ResourceFormatVersion {
		r.Fail(fmt.Errorf("version %d: %w", h.Version, core.ErrUnsupportedVersion))
	}
	return h
}

func (r *Reader) readTypeTable() {
	count := r.Read7BitEncodedInt()
	for i := 0; i < count && r.err == nil; i++ {
		name := r.ReadString()
		version := r.ReadInt32()
		if r.err != nil {
			return
		}
		tr, ok := r.registry.Lookup(name)
		if !ok {
			r.Fail(fmt.Errorf("%q: %w", name, core.ErrUnknownReader))
			return
		}
		if tr.Version() != version {
			r.Fail(fmt.Errorf("%s file v%d, reader v%d: %w", name, version, tr.Version(), core.ErrReaderVersion))
			return
		}
		r.readers = append(r.readers, tr)
	}
}

// Decode reads a complete content file: header, type table, primary object
// and shared resources. Shared resource fixups then run in the order they
// were registered, followed by the completion callbacks.
func Decode(src io.Reader, registry *Registry, asset string) (interface{}, metadata.ResourceType, error) {
	if src == nil || registry == nil {
		return nil, metadata.ResourceTypeNone, fmt.Errorf("decode %s: %w", asset, core.ErrNilArgument)
	}
	r := NewReader(src, registry, asset)

	h := r.readHeader()
	r.readTypeTable()
	r.sharedCount = r.Read7BitEncodedInt()
	primary := r.ReadObject()

	shared := make([]interface{}, 0, min(r.sharedCount, 1024))
	for i := 0; i < r.sharedCount && r.err == nil; i++ {
		shared = append(shared, r.ReadObject())
	}
	if r.err != nil {
		return nil, h.ResourceType, r.err
	}

	for _, f := range r.fixups {
		if v := shared[f.index]; v != nil {
			f.fn(v)
		}
		if r.err != nil {
			return nil, h.ResourceType, r.err
		}
	}
	for _, fn := range r.completions {
		fn()
	}
	core.LogDebug("decoded %s: %s with %d shared resources", asset, h.ResourceType, len(shared))
	return primary, h.ResourceType, nil
}
