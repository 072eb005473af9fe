package loaders

import (
	"fmt"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

/*
MaterialLoader reads a material record:

	string  name
	vec4    diffuse colour
	float32 shininess
	bool    auto release
	7bit    pass count
	per pass:
	    string name
	    shared effect
	    7bit   parameter count
	    per parameter: string name, uint8 kind, value

Passes are bound inside an update batch that is closed once every shared
effect has been resolved.
*/
type MaterialLoader struct{}

func (ml *MaterialLoader) Name() string         { return "anima.Material" }
func (ml *MaterialLoader) Version() int32       { return 1 }
func (ml *MaterialLoader) Target() reflect.Type { return reflect.TypeOf(&metadata.Material{}) }

func (ml *MaterialLoader) Read(r *content.Reader) (interface{}, error) {
	m := metadata.NewMaterial(r.ReadString())
	m.DiffuseColour = r.ReadVec4()
	m.Shininess = r.ReadFloat32()
	m.AutoRelease = r.ReadBool()

	m.BeginUpdate()
	r.OnComplete(m.EndUpdate)

	count := r.Read7BitEncodedInt()
	for i := 0; i < count && r.Err() == nil; i++ {
		name := r.ReadString()
		pass := &metadata.MaterialPass{}
		content.ReadSharedResourceAs(r, func(e *metadata.Effect) {
			pass.Effect = e
		})
		pass.Parameters = readParameters(r)
		if r.Err() != nil {
			break
		}
		if err := m.SetPass(name, pass); err != nil {
			return nil, err
		}
	}
	return m, r.Err()
}

func readParameters(r *content.Reader) []metadata.MaterialParameter {
	count := r.Read7BitEncodedInt()
	params := make([]metadata.MaterialParameter, 0, min(count, maxPrealloc))
	for i := 0; i < count && r.Err() == nil; i++ {
		p := metadata.MaterialParameter{
			Name: r.ReadString(),
			Kind: metadata.ParameterKind(r.ReadUint8()),
		}
		switch p.Kind {
		case metadata.ParameterFloat:
			p.Value = r.ReadFloat32()
		case metadata.ParameterVec3:
			p.Value = r.ReadVec3()
		case metadata.ParameterVec4:
			p.Value = r.ReadVec4()
		case metadata.ParameterMat4:
			p.Value = r.ReadMat4()
		case metadata.ParameterString:
			p.Value = r.ReadString()
		default:
			r.Fail(fmt.Errorf("parameter %q has %s: %w", p.Name, p.Kind, core.ErrTypeMismatch))
			return nil
		}
		params = append(params, p)
	}
	return params
}

func (ml *MaterialLoader) Write(w *content.Writer, v interface{}) error {
	m := v.(*metadata.Material)
	w.WriteString(m.Name)
	w.WriteVec4(m.DiffuseColour)
	w.WriteFloat32(m.Shininess)
	w.WriteBool(m.AutoRelease)

	passes := m.Passes()
	w.Write7BitEncodedInt(len(passes))
	for _, pass := range passes {
		w.WriteString(pass.Name)
		w.WriteSharedResource(pass.Effect)
		w.Write7BitEncodedInt(len(pass.Parameters))
		for _, p := range pass.Parameters {
			if err := writeParameter(w, p); err != nil {
				return fmt.Errorf("material %q pass %q: %w", m.Name, pass.Name, err)
			}
		}
	}
	return w.Err()
}

func writeParameter(w *content.Writer, p metadata.MaterialParameter) error {
	w.WriteString(p.Name)
	w.WriteUint8(uint8(p.Kind))
	ok := false
	switch p.Kind {
	case metadata.ParameterFloat:
		var f float32
		if f, ok = p.Value.(float32); ok {
			w.WriteFloat32(f)
		}
	case metadata.ParameterVec3:
		var v math.Vec3
		if v, ok = p.Value.(math.Vec3); ok {
			w.WriteVec3(v)
		}
	case metadata.ParameterVec4:
		var v math.Vec4
		if v, ok = p.Value.(math.Vec4); ok {
			w.WriteVec4(v)
		}
	case metadata.ParameterMat4:
		var m math.Mat4
		if m, ok = p.Value.(math.Mat4); ok {
			w.WriteMat4(m)
		}
	case metadata.ParameterString:
		var s string
		if s, ok = p.Value.(string); ok {
			w.WriteString(s)
		}
	}
	if !ok {
		return fmt.Errorf("parameter %q: %s value %T: %w", p.Name, p.Kind, p.Value, core.ErrTypeMismatch)
	}
	return nil
}
