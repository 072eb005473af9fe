package testbed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

// A tiny SPIR-V module header; enough for the effect reader to carry.
var spirvHeader = []uint32{0x07230203, 0x00010000, 0x00080001, 0x0000000d, 0x00000000}

func builtinEffect(name string) *metadata.Effect {
	return &metadata.Effect{
		Name: name,
		Stages: []metadata.EffectStage{
			{Stage: metadata.ShaderStageVertex, EntryPoint: "main", Code: spirvHeader},
			{Stage: metadata.ShaderStageFragment, EntryPoint: "main", Code: spirvHeader},
		},
	}
}

func surfaceMaterial(name string, colour math.Vec4, fx *metadata.Effect) (*metadata.Material, error) {
	m := metadata.NewMaterial(name)
	m.DiffuseColour = colour
	m.Shininess = 8.0
	m.AutoRelease = true

	m.BeginUpdate()
	defer m.EndUpdate()
	err := m.SetPass("forward", &metadata.MaterialPass{
		Name:   "forward",
		Effect: fx,
		Parameters: []metadata.MaterialParameter{
			{Name: "diffuse_texture", Kind: metadata.ParameterString, Value: "textures/" + name},
			{Name: "roughness", Kind: metadata.ParameterFloat, Value: float32(0.6)},
		},
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func box(name string, size float32) *metadata.OcclusionMesh {
	h := size * 0.5
	return &metadata.OcclusionMesh{
		Name: name,
		Vertices: []math.Vec3{
			{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
			{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
		},
		Indices: []uint32{
			0, 1, 2, 2, 3, 0,
			4, 5, 6, 6, 7, 4,
			0, 4, 7, 7, 3, 0,
			1, 5, 6, 6, 2, 1,
			3, 2, 6, 6, 7, 3,
			0, 1, 5, 5, 4, 0,
		},
	}
}

func placed(name string, position math.Vec3) *metadata.Node {
	n := metadata.NewNode(name)
	n.Transform.SetPosition(position)
	return n
}

// SampleScene builds the testbed world: three chained cubes, a car with
// two levels of detail and a scaled down sponza hall.
func SampleScene() *metadata.Node {
	root := metadata.NewNode("testbed")

	cubeOccluder := box("cube_occluder", 10.0)
	cube1 := metadata.NewNode("test_cube")
	cube1.Occluder = cubeOccluder
	cube2 := placed("test_cube_2", math.NewVec3(10.0, 0.0, 1.0))
	cube2.Occluder = cubeOccluder
	cube3 := placed("test_cube_3", math.NewVec3(5.0, 0.0, 1.0))
	cube1.AddChild(cube2)
	cube2.AddChild(cube3)
	root.AddChild(cube1)

	car := metadata.NewLODGroup("falcon")
	car.Transform.SetPosition(math.NewVec3(15.0, 0.0, 1.0))
	car.AddLevel(25.0, metadata.NewNode("falcon_high"))
	car.AddLevel(100.0, metadata.NewNode("falcon_low"))
	car.AddLevel(400.0, nil)
	root.AddChild(car)

	sponza := metadata.NewNode("sponza")
	sponza.Transform.SetPositionRotationScale(math.NewVec3(15.0, 0.0, 1.0), math.NewQuatIdentity(), math.NewVec3(0.05, 0.05, 0.05))
	sponza.Occluder = box("sponza_occluder", 200.0)
	root.AddChild(sponza)

	return root
}

// SampleAssets returns every testbed asset keyed by the name it is
// written under.
func SampleAssets() (map[string]interface{}, error) {
	fx := builtinEffect("Shader.Builtin.Material")
	assets := map[string]interface{}{
		"scenes/testbed":  SampleScene(),
		"shaders/builtin": fx,
		"occluders/cube":  box("cube_occluder", 10.0),
	}
	surfaces := []struct {
		name   string
		colour math.Vec4
	}{
		{"cobblestone", math.NewVec4(0.55, 0.5, 0.45, 1.0)},
		{"paving", math.NewVec4(0.7, 0.7, 0.7, 1.0)},
		{"paving2", math.NewVec4(0.6, 0.62, 0.65, 1.0)},
	}
	for _, s := range surfaces {
		m, err := surfaceMaterial(s.name, s.colour, fx)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", s.name, err)
		}
		assets["materials/"+s.name] = m
	}
	return assets, nil
}

// WriteSamples encodes every sample asset below dir using ext as the file
// extension.
func WriteSamples(dir, ext string, registry *content.Registry) ([]string, error) {
	samples, err := SampleAssets()
	if err != nil {
		return nil, err
	}
	var written []string
	for name, asset := range samples {
		path := filepath.Join(dir, filepath.FromSlash(name)+ext)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, err
		}
		f, err := os.Create(path)
		if err != nil {
			return written, err
		}
		err = content.Encode(f, registry, asset)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		core.LogDebug("wrote sample %s", path)
		written = append(written, name)
	}
	return written, nil
}
