package content

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

// Writer produces the body of a content file. Like Reader its error is
// sticky. Type readers and shared resources are collected while writing and
// emitted ahead of the body by Encode.
type Writer struct {
	body     bytes.Buffer
	registry *Registry
	scratch  [8]byte
	err      error

	readers     []TypeReader
	readerIndex map[string]int
	shared      []interface{}
	sharedIndex map[interface{}]int
	primary     interface{}
}

func NewWriter(registry *Registry) *Writer {
	return &Writer{
		registry:    registry,
		readerIndex: make(map[string]int),
		sharedIndex: make(map[interface{}]int),
	}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	w.body.Write(b)
}

func (w *Writer) WriteUint8(v uint8) {
	w.scratch[0] = v
	w.write(w.scratch[:1])
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	w.write(w.scratch[:2])
}

func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.write(w.scratch[:4])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(gomath.Float32bits(v))
}

func (w *Writer) Write7BitEncodedInt(v int) {
	if v < 0 || v > gomath.MaxInt32 {
		w.Fail(fmt.Errorf("value %d: %w", v, core.ErrVarintOverflow))
		return
	}
	u := uint32(v)
	for u >= 0x80 {
		w.WriteUint8(uint8(u) | 0x80)
		u >>= 7
	}
	w.WriteUint8(uint8(u))
}

func (w *Writer) WriteBytes(b []byte) {
	w.Write7BitEncodedInt(len(b))
	w.write(b)
}

func (w *Writer) WriteString(s string) {
	w.Write7BitEncodedInt(len(s))
	if w.err == nil {
		w.body.WriteString(s)
	}
}

func (w *Writer) WriteVec3(v math.Vec3) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
}

func (w *Writer) WriteVec4(v math.Vec4) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
	w.WriteFloat32(v.W)
}

func (w *Writer) WriteQuaternion(q math.Quaternion) {
	w.WriteVec4(math.Vec4(q))
}

func (w *Writer) WriteMat4(m math.Mat4) {
	for _, f := range m.Data {
		w.WriteFloat32(f)
	}
}

// WriteObject writes the type id of v followed by its body. Nil values
// (including typed nil pointers) are written as id 0.
func (w *Writer) WriteObject(v interface{}) {
	if w.err != nil {
		return
	}
	if isNil(v) {
		w.Write7BitEncodedInt(0)
		return
	}
	tr, ok := w.registry.ForValue(v)
	if !ok {
		w.Fail(fmt.Errorf("%T: %w", v, core.ErrUnknownReader))
		return
	}
	idx, ok := w.readerIndex[tr.Name()]
	if !ok {
		w.readers = append(w.readers, tr)
		idx = len(w.readers)
		w.readerIndex[tr.Name()] = idx
	}
	w.Write7BitEncodedInt(idx)
	if err := tr.Write(w, v); err != nil {
		w.Fail(fmt.Errorf("%s: %w", tr.Name(), err))
	}
}

// WriteSharedResource writes a reference to v. The same value referenced
// twice gets the same index, and is written once after the primary object.
func (w *Writer) WriteSharedResource(v interface{}) {
	if w.err != nil {
		return
	}
	if isNil(v) {
		w.Write7BitEncodedInt(0)
		return
	}
	if !reflect.TypeOf(v).Comparable() {
		w.Fail(fmt.Errorf("shared resource %T is not comparable: %w", v, core.ErrTypeMismatch))
		return
	}
	if w.primary != nil && v == w.primary {
		w.Fail(fmt.Errorf("%T: %w", v, core.ErrSharedPrimary))
		return
	}
	idx, ok := w.sharedIndex[v]
	if !ok {
		w.shared = append(w.shared, v)
		idx = len(w.shared)
		w.sharedIndex[v] = idx
	}
	w.Write7BitEncodedInt(idx)
}

// Encode writes v and everything it references as a complete content file.
// The file format has no back-reference to the primary object, so a graph
// that points back at v through a shared resource is rejected with
// ErrSharedPrimary.
func Encode(dst io.Writer, registry *Registry, v interface{}) error {
	if dst == nil || registry == nil {
		return fmt.Errorf("encode: %w", core.ErrNilArgument)
	}
	w := NewWriter(registry)
	if !isNil(v) && reflect.TypeOf(v).Comparable() {
		w.primary = v
	}
	w.WriteObject(v)
	// shared resources may reference further shared resources
	for i := 0; i < len(w.shared) && w.err == nil; i++ {
		w.WriteObject(w.shared[i])
	}
	if w.err != nil {
		return w.err
	}

	rt := metadata.TypeOf(v)
	if isNil(v) {
		rt = metadata.ResourceTypeNone
	}
	head := NewWriter(registry)
	head.WriteUint32(metadata.ResourceMagic)
	head.WriteUint8(uint8(rt))
	head.WriteUint8(metadata.ResourceFormatVersion)
	head.WriteUint16(0)
	head.Write7BitEncodedInt(len(w.readers))
	for _, tr := range w.readers {
		head.WriteString(tr.Name())
		head.WriteInt32(tr.Version())
	}
	head.Write7BitEncodedInt(len(w.shared))
	if head.err != nil {
		return head.err
	}

	if _, err := head.body.WriteTo(dst); err != nil {
		return err
	}
	_, err := w.body.WriteTo(dst)
	return err
}
