// Package source turns TOML or YAML asset descriptions into object graphs
// ready to be written by content.Encode.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-content/engine/assets/loaders"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"gopkg.in/yaml.v3"
)

type File struct {
	// Asset selects the primary object: "scene", "material",
	// "occluder:<name>" or "effect:<name>". Inferred when empty.
	Asset     string      `toml:"asset" yaml:"asset"`
	Scene     *NodeDesc   `toml:"scene" yaml:"scene"`
	Material  *Material   `toml:"material" yaml:"material"`
	Occluders []Occluder  `toml:"occluders" yaml:"occluders"`
	Effects   []EffectDef `toml:"effects" yaml:"effects"`
}

type NodeDesc struct {
	Name     string     `toml:"name" yaml:"name"`
	Kind     string     `toml:"kind" yaml:"kind"`
	Position []float32  `toml:"position" yaml:"position"`
	Rotation []float32  `toml:"rotation" yaml:"rotation"`
	Scale    []float32  `toml:"scale" yaml:"scale"`
	Visible  *bool      `toml:"visible" yaml:"visible"`
	Occluder string     `toml:"occluder" yaml:"occluder"`
	Children []NodeDesc `toml:"children" yaml:"children"`
	Levels   []Level    `toml:"levels" yaml:"levels"`
}

type Level struct {
	MaxDistance float32   `toml:"max_distance" yaml:"max_distance"`
	Node        *NodeDesc `toml:"node" yaml:"node"`
}

type Occluder struct {
	Name     string      `toml:"name" yaml:"name"`
	Vertices [][]float32 `toml:"vertices" yaml:"vertices"`
	Indices  []uint32    `toml:"indices" yaml:"indices"`
}

type EffectDef struct {
	Name   string  `toml:"name" yaml:"name"`
	Stages []Stage `toml:"stages" yaml:"stages"`
}

type Stage struct {
	Stage      string   `toml:"stage" yaml:"stage"`
	EntryPoint string   `toml:"entry_point" yaml:"entry_point"`
	File       string   `toml:"file" yaml:"file"`
	Words      []uint32 `toml:"words" yaml:"words"`
}

type Material struct {
	Name          string    `toml:"name" yaml:"name"`
	DiffuseColour []float32 `toml:"diffuse_colour" yaml:"diffuse_colour"`
	Shininess     float32   `toml:"shininess" yaml:"shininess"`
	AutoRelease   bool      `toml:"auto_release" yaml:"auto_release"`
	Passes        []Pass    `toml:"passes" yaml:"passes"`
}

type Pass struct {
	Name       string      `toml:"name" yaml:"name"`
	Effect     string      `toml:"effect" yaml:"effect"`
	Parameters []Parameter `toml:"parameters" yaml:"parameters"`
}

type Parameter struct {
	Name   string    `toml:"name" yaml:"name"`
	Float  *float32  `toml:"float" yaml:"float"`
	Vec3   []float32 `toml:"vec3" yaml:"vec3"`
	Vec4   []float32 `toml:"vec4" yaml:"vec4"`
	Mat4   []float32 `toml:"mat4" yaml:"mat4"`
	String *string   `toml:"string" yaml:"string"`
}

// Parse reads a source file, picking the decoder from its extension. Stage
// files are resolved relative to it.
func Parse(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parse := ParseBytes
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = ParseYAML
	}
	v, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseBytes decodes a TOML source. Unknown keys are rejected.
func ParseBytes(data []byte, baseDir string) (interface{}, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f.Build(baseDir)
}

// ParseYAML is ParseBytes for YAML documents. The layout is the same.
func ParseYAML(data []byte, baseDir string) (interface{}, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return f.Build(baseDir)
}

// builder keeps one instance per named shared object so the writer can
// deduplicate them.
type builder struct {
	baseDir   string
	occluders map[string]*metadata.OcclusionMesh
	effects   map[string]*metadata.Effect
}

// Build converts the description into its primary object.
func (f *File) Build(baseDir string) (interface{}, error) {
	b := &builder{
		baseDir:   baseDir,
		occluders: make(map[string]*metadata.OcclusionMesh),
		effects:   make(map[string]*metadata.Effect),
	}
	for _, o := range f.Occluders {
		om, err := b.occluder(o)
		if err != nil {
			return nil, err
		}
		b.occluders[o.Name] = om
	}
	for _, e := range f.Effects {
		fx, err := b.effect(e)
		if err != nil {
			return nil, err
		}
		b.effects[e.Name] = fx
	}

	asset := f.Asset
	if asset == "" {
		asset = f.inferAsset()
	}
	if name, ok := strings.CutPrefix(asset, "occluder:"); ok {
		om, ok := b.occluders[name]
		if !ok {
			return nil, fmt.Errorf("unknown occluder %q", name)
		}
		return om, nil
	}
	if name, ok := strings.CutPrefix(asset, "effect:"); ok {
		fx, ok := b.effects[name]
		if !ok {
			return nil, fmt.Errorf("unknown effect %q", name)
		}
		return fx, nil
	}
	switch asset {
	case "scene":
		if f.Scene == nil {
			return nil, fmt.Errorf("asset is scene but no [scene] table")
		}
		return b.node(*f.Scene)
	case "material":
		if f.Material == nil {
			return nil, fmt.Errorf("asset is material but no [material] table")
		}
		return b.material(*f.Material)
	}
	return nil, fmt.Errorf("cannot select asset %q", asset)
}

func (f *File) inferAsset() string {
	switch {
	case f.Scene != nil:
		return "scene"
	case f.Material != nil:
		return "material"
	case len(f.Occluders) > 0:
		return "occluder:" + f.Occluders[0].Name
	case len(f.Effects) > 0:
		return "effect:" + f.Effects[0].Name
	}
	return ""
}

func (b *builder) node(d NodeDesc) (metadata.SceneObject, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("node name is required")
	}

	var obj metadata.SceneObject
	switch d.Kind {
	case "", "node":
		obj = metadata.NewNode(d.Name)
	case "lod":
		obj = metadata.NewLODGroup(d.Name)
	default:
		return nil, fmt.Errorf("node %q: unknown kind %q", d.Name, d.Kind)
	}
	n := obj.SceneNode()

	position, err := vec3Or(d.Position, math.NewVec3Zero())
	if err != nil {
		return nil, fmt.Errorf("node %q position: %w", d.Name, err)
	}
	rotation, err := vec4Or(d.Rotation, math.Vec4(math.NewQuatIdentity()))
	if err != nil {
		return nil, fmt.Errorf("node %q rotation: %w", d.Name, err)
	}
	scale, err := vec3Or(d.Scale, math.NewVec3One())
	if err != nil {
		return nil, fmt.Errorf("node %q scale: %w", d.Name, err)
	}
	n.Transform.SetPositionRotationScale(position, math.Quaternion(rotation), scale)
	if d.Visible != nil {
		n.Visible = *d.Visible
	}
	if d.Occluder != "" {
		om, ok := b.occluders[d.Occluder]
		if !ok {
			return nil, fmt.Errorf("node %q: unknown occluder %q", d.Name, d.Occluder)
		}
		n.Occluder = om
	}

	for _, cd := range d.Children {
		child, err := b.node(cd)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}

	if len(d.Levels) > 0 {
		g, ok := obj.(*metadata.LODGroup)
		if !ok {
			return nil, fmt.Errorf("node %q has levels but is not a lod group", d.Name)
		}
		last := float32(-1)
		for _, l := range d.Levels {
			if l.MaxDistance <= last {
				return nil, fmt.Errorf("lod group %q: levels must have increasing max_distance", d.Name)
			}
			last = l.MaxDistance
			var levelObj metadata.SceneObject
			if l.Node != nil {
				if levelObj, err = b.node(*l.Node); err != nil {
					return nil, err
				}
			}
			g.AddLevel(l.MaxDistance, levelObj)
		}
	}
	return obj, nil
}

func (b *builder) occluder(o Occluder) (*metadata.OcclusionMesh, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("occluder name is required")
	}
	om := &metadata.OcclusionMesh{Name: o.Name, Indices: o.Indices}
	for i, v := range o.Vertices {
		if len(v) != 3 {
			return nil, fmt.Errorf("occluder %q vertex %d: expected 3 values, got %d", o.Name, i, len(v))
		}
		om.Vertices = append(om.Vertices, math.NewVec3(v[0], v[1], v[2]))
	}
	if len(om.Indices)%3 != 0 {
		return nil, fmt.Errorf("occluder %q: index count %d is not a multiple of 3", o.Name, len(om.Indices))
	}
	for _, idx := range om.Indices {
		if int(idx) >= len(om.Vertices) {
			return nil, fmt.Errorf("occluder %q: index %d out of range", o.Name, idx)
		}
	}
	return om, nil
}

func (b *builder) effect(e EffectDef) (*metadata.Effect, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("effect name is required")
	}
	fx := &metadata.Effect{Name: e.Name}
	for _, s := range e.Stages {
		stage := metadata.EffectStage{EntryPoint: s.EntryPoint}
		switch s.Stage {
		case "vertex":
			stage.Stage = metadata.ShaderStageVertex
		case "fragment":
			stage.Stage = metadata.ShaderStageFragment
		default:
			return nil, fmt.Errorf("effect %q: unknown stage %q", e.Name, s.Stage)
		}
		if stage.EntryPoint == "" {
			stage.EntryPoint = "main"
		}
		switch {
		case s.File != "" && len(s.Words) > 0:
			return nil, fmt.Errorf("effect %q %s stage: file and words are exclusive", e.Name, s.Stage)
		case s.File != "":
			code, err := os.ReadFile(filepath.Join(b.baseDir, s.File))
			if err != nil {
				return nil, err
			}
			stage.Code = loaders.BytesToBytecode(code)
		default:
			stage.Code = s.Words
		}
		fx.Stages = append(fx.Stages, stage)
	}
	return fx, nil
}

func (b *builder) material(m Material) (*metadata.Material, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("material name is required")
	}
	mat := metadata.NewMaterial(m.Name)
	colour, err := vec4Or(m.DiffuseColour, math.NewVec4One())
	if err != nil {
		return nil, fmt.Errorf("material %q diffuse_colour: %w", m.Name, err)
	}
	if !isValidColour(colour) {
		return nil, fmt.Errorf("material %q: diffuse_colour values must be between 0.0 and 1.0", m.Name)
	}
	if m.Shininess < 0 {
		return nil, fmt.Errorf("material %q: shininess must be a non-negative value", m.Name)
	}
	mat.DiffuseColour = colour
	mat.Shininess = m.Shininess
	mat.AutoRelease = m.AutoRelease

	mat.BeginUpdate()
	defer mat.EndUpdate()
	for _, p := range m.Passes {
		pass := &metadata.MaterialPass{}
		if p.Effect != "" {
			fx, ok := b.effects[p.Effect]
			if !ok {
				return nil, fmt.Errorf("material %q pass %q: unknown effect %q", m.Name, p.Name, p.Effect)
			}
			pass.Effect = fx
		}
		for _, pd := range p.Parameters {
			param, err := parameter(pd)
			if err != nil {
				return nil, fmt.Errorf("material %q pass %q: %w", m.Name, p.Name, err)
			}
			pass.Parameters = append(pass.Parameters, param)
		}
		if err := mat.SetPass(p.Name, pass); err != nil {
			return nil, err
		}
	}
	return mat, nil
}

func parameter(p Parameter) (metadata.MaterialParameter, error) {
	out := metadata.MaterialParameter{Name: p.Name}
	set := 0
	if p.Float != nil {
		out.Kind, out.Value = metadata.ParameterFloat, *p.Float
		set++
	}
	if p.Vec3 != nil {
		v, err := vec3Or(p.Vec3, math.Vec3{})
		if err != nil {
			return out, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		out.Kind, out.Value = metadata.ParameterVec3, v
		set++
	}
	if p.Vec4 != nil {
		v, err := vec4Or(p.Vec4, math.Vec4{})
		if err != nil {
			return out, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		out.Kind, out.Value = metadata.ParameterVec4, v
		set++
	}
	if p.Mat4 != nil {
		if len(p.Mat4) != 16 {
			return out, fmt.Errorf("parameter %q: mat4 expects 16 values, got %d", p.Name, len(p.Mat4))
		}
		m := math.Mat4{}
		copy(m.Data[:], p.Mat4)
		out.Kind, out.Value = metadata.ParameterMat4, m
		set++
	}
	if p.String != nil {
		out.Kind, out.Value = metadata.ParameterString, *p.String
		set++
	}
	if set != 1 {
		return out, fmt.Errorf("parameter %q must set exactly one value, got %d: %w", p.Name, set, core.ErrTypeMismatch)
	}
	return out, nil
}

func vec3Or(v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.NewVec3(v[0], v[1], v[2]), nil
	}
	return def, fmt.Errorf("expected 3 values, got %d", len(v))
}

func vec4Or(v []float32, def math.Vec4) (math.Vec4, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 4:
		return math.NewVec4(v[0], v[1], v[2], v[3]), nil
	}
	return def, fmt.Errorf("expected 4 values, got %d", len(v))
}

func isValidColour(v math.Vec4) bool {
	return inRange(v.X) && inRange(v.Y) && inRange(v.Z) && inRange(v.W)
}

func inRange(value float32) bool {
	return math.Clamp(value, 0, 1) == value
}
