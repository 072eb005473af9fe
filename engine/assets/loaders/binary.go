package loaders

import (
	"encoding/binary"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
)

// BinaryLoader carries an opaque byte blob.
type BinaryLoader struct{}

func (bl *BinaryLoader) Name() string         { return "anima.Binary" }
func (bl *BinaryLoader) Version() int32       { return 1 }
func (bl *BinaryLoader) Target() reflect.Type { return reflect.TypeOf([]byte(nil)) }

func (bl *BinaryLoader) Read(r *content.Reader) (interface{}, error) {
	b := r.ReadBytes()
	return b, r.Err()
}

func (bl *BinaryLoader) Write(w *content.Writer, v interface{}) error {
	w.WriteBytes(v.([]byte))
	return w.Err()
}

// BytesToBytecode packs little-endian bytes into SPIR-V words. A trailing
// partial word is dropped.
func BytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return byteCode
}

func BytecodeToBytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(b[i*4:], word)
	}
	return b
}
