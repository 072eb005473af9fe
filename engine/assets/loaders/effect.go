package loaders

import (
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

// EffectLoader reads a name and a list of stages (uint8 stage, string
// entry point, bytes SPIR-V code).
type EffectLoader struct{}

func (el *EffectLoader) Name() string         { return "anima.Effect" }
func (el *EffectLoader) Version() int32       { return 1 }
func (el *EffectLoader) Target() reflect.Type { return reflect.TypeOf(&metadata.Effect{}) }

func (el *EffectLoader) Read(r *content.Reader) (interface{}, error) {
	e := &metadata.Effect{Name: r.ReadString()}
	count := r.Read7BitEncodedInt()
	for i := 0; i < count && r.Err() == nil; i++ {
		stage := metadata.EffectStage{
			Stage:      metadata.ShaderStage(r.ReadUint8()),
			EntryPoint: r.ReadString(),
		}
		stage.Code = BytesToBytecode(r.ReadBytes())
		e.Stages = append(e.Stages, stage)
	}
	return e, r.Err()
}

func (el *EffectLoader) Write(w *content.Writer, v interface{}) error {
	e := v.(*metadata.Effect)
	w.WriteString(e.Name)
	w.Write7BitEncodedInt(len(e.Stages))
	for _, s := range e.Stages {
		w.WriteUint8(uint8(s.Stage))
		w.WriteString(s.EntryPoint)
		w.WriteBytes(BytecodeToBytes(s.Code))
	}
	return w.Err()
}
