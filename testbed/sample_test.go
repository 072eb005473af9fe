package testbed

import (
	"testing"

	"github.com/spaghettifunk/anima-content/engine/assets"
	"github.com/spaghettifunk/anima-content/engine/assets/loaders"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleScene(t *testing.T) {
	root := SampleScene()

	cube3 := metadata.Find(root, "test_cube_3")
	require.NotNil(t, cube3)
	world := math.NewVec3Zero().Transform(cube3.SceneNode().World())
	assert.True(t, world.Compare(math.NewVec3(15.0, 0.0, 2.0), 0.0001), "got %v", world)

	cube1 := metadata.Find(root, "test_cube").SceneNode()
	cube2 := metadata.Find(root, "test_cube_2").SceneNode()
	assert.Same(t, cube1.Occluder, cube2.Occluder)
}

func TestWriteSamplesLoadsBack(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteSamples(dir, core.DefaultExtension, loaders.NewDefaultRegistry())
	require.NoError(t, err)
	samples, err := SampleAssets()
	require.NoError(t, err)
	assert.Len(t, written, len(samples))

	cm, err := assets.NewContentManager(core.ContentConfig{RootDir: dir})
	require.NoError(t, err)
	defer cm.Close()

	scene, err := assets.LoadAs[*metadata.Node](cm, "scenes/testbed")
	require.NoError(t, err)
	car, ok := metadata.Find(scene, "falcon").(*metadata.LODGroup)
	require.True(t, ok)
	assert.Equal(t, "falcon_low", car.Select(50).SceneNode().Name)
	assert.Nil(t, car.Select(250))

	cube2 := metadata.Find(scene, "test_cube_2").SceneNode()
	cube3 := metadata.Find(scene, "test_cube_3").SceneNode()
	assert.Same(t, cube2.Transform, cube3.Transform.Parent)
	assert.Same(t, metadata.Find(scene, "test_cube").SceneNode().Occluder, cube2.Occluder)

	paving, err := assets.LoadAs[*metadata.Material](cm, "materials/paving")
	require.NoError(t, err)
	assert.True(t, paving.IsReady())
	pass, ok := paving.Pass("forward")
	require.True(t, ok)
	require.NotNil(t, pass.Effect)
	assert.Equal(t, "Shader.Builtin.Material", pass.Effect.Name)
	assert.Len(t, pass.Effect.Stages, 2)
}

func TestSampleMaterialsAreBound(t *testing.T) {
	samples, err := SampleAssets()
	require.NoError(t, err)

	var shared *metadata.Effect
	for _, name := range []string{"materials/cobblestone", "materials/paving", "materials/paving2"} {
		m, ok := samples[name].(*metadata.Material)
		require.True(t, ok, name)
		assert.True(t, m.IsReady(), name)
		assert.Equal(t, uint32(1), m.Generation, name)
		pass, ok := m.Pass("forward")
		require.True(t, ok, name)
		if shared == nil {
			shared = pass.Effect
		}
		assert.Same(t, shared, pass.Effect, name)
	}
}
