package metadata

import (
	"fmt"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

type ParameterKind uint8

const (
	ParameterFloat  ParameterKind = 0x1
	ParameterVec3   ParameterKind = 0x2
	ParameterVec4   ParameterKind = 0x3
	ParameterMat4   ParameterKind = 0x4
	ParameterString ParameterKind = 0x5
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterFloat:
		return "float"
	case ParameterVec3:
		return "vec3"
	case ParameterVec4:
		return "vec4"
	case ParameterMat4:
		return "mat4"
	case ParameterString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MaterialParameter is a named effect input. Value holds a float32,
// math.Vec3, math.Vec4, math.Mat4 or string depending on Kind.
type MaterialParameter struct {
	Name  string
	Kind  ParameterKind
	Value interface{}
}

// MaterialPass binds an effect and its inputs under a pass name.
type MaterialPass struct {
	Name       string
	Effect     *Effect
	Parameters []MaterialParameter
}

func (p *MaterialPass) Parameter(name string) (MaterialParameter, bool) {
	for _, param := range p.Parameters {
		if param.Name == name {
			return param, true
		}
	}
	return MaterialParameter{}, false
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world. Rendering passes are bound by name.
 */
type Material struct {
	/** @brief The material generation. Incremented every time an update batch ends. */
	Generation    uint32
	Name          string
	DiffuseColour math.Vec4
	Shininess     float32
	/** @brief Release the material automatically when no references to it remain. */
	AutoRelease bool

	passes   map[string]*MaterialPass
	order    []string
	updating int
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:          name,
		DiffuseColour: math.NewVec4One(),
		passes:        make(map[string]*MaterialPass),
	}
}

// BeginUpdate opens a batch of pass changes. Batches nest.
func (m *Material) BeginUpdate() {
	m.updating++
}

// EndUpdate closes a batch. When the outermost batch closes the material
// generation is bumped.
func (m *Material) EndUpdate() {
	if m.updating == 0 {
		return
	}
	m.updating--
	if m.updating == 0 {
		m.Generation++
	}
}

// IsReady reports whether no update batch is open.
func (m *Material) IsReady() bool {
	return m.updating == 0
}

// SetPass binds pass under name, replacing an existing binding in place.
func (m *Material) SetPass(name string, pass *MaterialPass) error {
	if pass == nil {
		return fmt.Errorf("material %q pass %q: %w", m.Name, name, core.ErrNilArgument)
	}
	if m.passes == nil {
		m.passes = make(map[string]*MaterialPass)
	}
	if _, ok := m.passes[name]; !ok {
		m.order = append(m.order, name)
	}
	pass.Name = name
	m.passes[name] = pass
	if m.updating == 0 {
		m.Generation++
	}
	return nil
}

func (m *Material) Pass(name string) (*MaterialPass, bool) {
	p, ok := m.passes[name]
	return p, ok
}

// PassNames returns pass names in binding order.
func (m *Material) PassNames() []string {
	return append([]string(nil), m.order...)
}

// Passes returns the passes in binding order.
func (m *Material) Passes() []*MaterialPass {
	out := make([]*MaterialPass, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.passes[name])
	}
	return out
}
