package content

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blob struct {
	Label string
	Count int32
	Ref   *blob
}

type blobReader struct {
	version int32
	events  *[]string
}

func (br *blobReader) Name() string         { return "test.Blob" }
func (br *blobReader) Version() int32       { return br.version }
func (br *blobReader) Target() reflect.Type { return reflect.TypeOf(&blob{}) }

func (br *blobReader) Read(r *Reader) (interface{}, error) {
	b := &blob{
		Label: r.ReadString(),
		Count: r.ReadInt32(),
	}
	ReadSharedResourceAs(r, func(ref *blob) {
		b.Ref = ref
		br.record("fixup:" + b.Label)
	})
	r.OnComplete(func() { br.record("done:" + b.Label) })
	return b, r.Err()
}

func (br *blobReader) Write(w *Writer, v interface{}) error {
	b := v.(*blob)
	w.WriteString(b.Label)
	w.WriteInt32(b.Count)
	w.WriteSharedResource(b.Ref)
	return w.Err()
}

func (br *blobReader) record(e string) {
	if br.events != nil {
		*br.events = append(*br.events, e)
	}
}

func newTestRegistry(t *testing.T, events *[]string) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(&blobReader{version: 1, events: events}))
	return reg
}

func encode(t *testing.T, reg *Registry, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, reg, v))
	return buf.Bytes()
}

func TestEncodeLayout(t *testing.T) {
	reg := newTestRegistry(t, nil)
	got := encode(t, reg, &blob{Label: "x", Count: 5})

	want := []byte{
		0xd1, 0xad, 0xaa, 0xda, // magic
		byte(metadata.ResourceTypeCustom), 1, 0, 0, // type, version, reserved
		1, 9, 't', 'e', 's', 't', '.', 'B', 'l', 'o', 'b', 1, 0, 0, 0, // type table
		0,      // shared resource count
		1,      // type id
		1, 'x', // label
		5, 0, 0, 0, // count
		0, // nil shared reference
	}
	assert.Equal(t, want, got)
}

func TestSharedResourcesAreDeduplicatedAndResolvedLast(t *testing.T) {
	var events []string
	reg := newTestRegistry(t, &events)

	shared := &blob{Label: "shared", Count: 7}
	root := &blob{Label: "root", Ref: shared}
	// shared is referenced from root and from itself through another blob
	shared.Ref = &blob{Label: "leaf", Ref: shared}

	data := encode(t, reg, root)
	events = nil

	v, rt, err := Decode(bytes.NewReader(data), reg, "roundtrip")
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeCustom, rt)

	got := v.(*blob)
	assert.Equal(t, "root", got.Label)
	require.NotNil(t, got.Ref)
	assert.Equal(t, "shared", got.Ref.Label)
	assert.Equal(t, int32(7), got.Ref.Count)
	require.NotNil(t, got.Ref.Ref)
	assert.Equal(t, "leaf", got.Ref.Ref.Label)
	assert.Same(t, got.Ref, got.Ref.Ref.Ref, "shared resource must resolve to one instance")

	assert.Equal(t, []string{
		"fixup:root", "fixup:shared", "fixup:leaf",
		"done:root", "done:shared", "done:leaf",
	}, events)
}

func TestEncodeRejectsPrimaryAsSharedResource(t *testing.T) {
	reg := newTestRegistry(t, nil)

	root := &blob{Label: "root"}
	root.Ref = &blob{Label: "child", Ref: root}

	var buf bytes.Buffer
	err := Encode(&buf, reg, root)
	assert.ErrorIs(t, err, core.ErrSharedPrimary)
	assert.Zero(t, buf.Len(), "nothing is written on failure")

	self := &blob{Label: "self"}
	self.Ref = self
	assert.ErrorIs(t, Encode(&buf, reg, self), core.ErrSharedPrimary)
}

func TestNilPrimaryObject(t *testing.T) {
	reg := newTestRegistry(t, nil)
	data := encode(t, reg, (*blob)(nil))

	v, rt, err := Decode(bytes.NewReader(data), reg, "empty")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, metadata.ResourceTypeNone, rt)
}

func TestDecodeErrors(t *testing.T) {
	reg := newTestRegistry(t, nil)
	valid := encode(t, reg, &blob{Label: "x", Count: 5})

	patch := func(i int, b byte) []byte {
		out := append([]byte(nil), valid...)
		out[i] = b
		return out
	}

	tests := []struct {
		name string
		data []byte
		reg  *Registry
		want error
	}{
		{"bad magic", patch(0, 0x00), reg, core.ErrBadMagic},
		{"unsupported version", patch(5, 9), reg, core.ErrUnsupportedVersion},
		{"truncated", valid[:len(valid)-3], reg, io.ErrUnexpectedEOF},
		{"empty", nil, reg, io.ErrUnexpectedEOF},
		{"unknown reader", valid, NewRegistry(), core.ErrUnknownReader},
		{"reader version", patch(19, 2), reg, core.ErrReaderVersion},
		{"bad type id", patch(24, 2), reg, core.ErrBadTypeID},
		{"bad shared index", patch(len(valid)-1, 1), reg, core.ErrBadSharedIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(tt.data), tt.reg, "broken")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "broken")
		})
	}
}

func TestDecodeNilArguments(t *testing.T) {
	_, _, err := Decode(nil, NewRegistry(), "x")
	assert.ErrorIs(t, err, core.ErrNilArgument)
	_, _, err = Decode(bytes.NewReader(nil), nil, "x")
	assert.ErrorIs(t, err, core.ErrNilArgument)
	assert.ErrorIs(t, Encode(nil, NewRegistry(), 1), core.ErrNilArgument)
}

func TestEncodeUnknownType(t *testing.T) {
	err := Encode(io.Discard, NewRegistry(), &blob{})
	assert.ErrorIs(t, err, core.ErrUnknownReader)
}

func TestSevenBitEncodedInt(t *testing.T) {
	for _, v := range []int{0, 1, 127, 128, 300, 16384, 1<<31 - 1} {
		w := NewWriter(NewRegistry())
		w.Write7BitEncodedInt(v)
		require.NoError(t, w.Err())

		r := NewReader(bytes.NewReader(w.body.Bytes()), NewRegistry(), "varint")
		assert.Equal(t, v, r.Read7BitEncodedInt())
		assert.NoError(t, r.Err())
	}

	assert.Equal(t, []byte{0xac, 0x02}, func() []byte {
		w := NewWriter(NewRegistry())
		w.Write7BitEncodedInt(300)
		return w.body.Bytes()
	}())

	r := NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x7f}), NewRegistry(), "varint")
	r.Read7BitEncodedInt()
	assert.ErrorIs(t, r.Err(), core.ErrVarintOverflow)

	w := NewWriter(NewRegistry())
	w.Write7BitEncodedInt(-1)
	assert.ErrorIs(t, w.Err(), core.ErrVarintOverflow)
}

func TestPrimitivesKeepOrder(t *testing.T) {
	w := NewWriter(NewRegistry())
	w.WriteBool(true)
	w.WriteFloat32(1.5)
	w.WriteVec3(math.NewVec3(1, 2, 3))
	w.WriteQuaternion(math.NewQuatIdentity())
	w.WriteMat4(math.NewMat4Identity())
	w.WriteBytes([]byte{9, 8})
	w.WriteString("héllo")
	require.NoError(t, w.Err())

	r := NewReader(bytes.NewReader(w.body.Bytes()), NewRegistry(), "prims")
	assert.True(t, r.ReadBool())
	assert.Equal(t, float32(1.5), r.ReadFloat32())
	assert.Equal(t, math.NewVec3(1, 2, 3), r.ReadVec3())
	assert.Equal(t, math.NewQuatIdentity(), r.ReadQuaternion())
	assert.Equal(t, math.NewMat4Identity(), r.ReadMat4())
	assert.Equal(t, []byte{9, 8}, r.ReadBytes())
	assert.Equal(t, "héllo", r.ReadString())
	require.NoError(t, r.Err())

	// reading past the end sticks
	r.ReadUint32()
	assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)
	assert.Zero(t, r.ReadFloat32())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&blobReader{version: 1}))

	err := reg.Register(&blobReader{version: 2})
	assert.True(t, errors.Is(err, core.ErrDuplicateReader))
	assert.ErrorIs(t, reg.Register(nil), core.ErrNilArgument)
	var typedNil *blobReader
	assert.ErrorIs(t, reg.Register(typedNil), core.ErrNilArgument)

	tr, ok := reg.Lookup("test.Blob")
	require.True(t, ok)
	assert.Equal(t, int32(1), tr.Version())

	_, ok = reg.ForValue(&blob{})
	assert.True(t, ok)
	_, ok = reg.ForValue(blob{})
	assert.False(t, ok)

	assert.Equal(t, []string{"test.Blob"}, reg.Names())
}
