package metadata

import (
	"testing"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")

	a.AddChild(c)
	assert.Same(t, a, c.Parent)
	assert.Same(t, a.Transform, c.Transform.Parent)

	b.AddChild(c)
	assert.Equal(t, 0, a.NumChildren())
	assert.Same(t, b, c.Parent)
	assert.Same(t, b.Transform, c.Transform.Parent)

	assert.True(t, b.RemoveChild(c))
	assert.Nil(t, c.Parent)
	assert.Nil(t, c.Transform.Parent)
	assert.False(t, b.RemoveChild(c))

	b.AddChild(nil)
	assert.Equal(t, 0, b.NumChildren())
}

func TestWalkIsBreadthFirst(t *testing.T) {
	root := NewNode("root")
	x := NewNode("x")
	y := NewNode("y")
	lod := NewLODGroup("lod")
	lod.AddLevel(10, NewNode("lod-high"))
	x.AddChild(NewNode("x1"))
	root.AddChild(x)
	root.AddChild(y)
	root.AddChild(lod)

	var names []string
	var depths []int
	Walk(root, func(obj SceneObject, depth int) bool {
		names = append(names, obj.SceneNode().Name)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "x", "y", "lod", "x1", "lod-high"}, names)
	assert.Equal(t, []int{0, 1, 1, 1, 2, 2}, depths)

	count := 0
	Walk(root, func(SceneObject, int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)

	assert.Nil(t, Find(root, "missing"))
	Walk(nil, func(SceneObject, int) bool { t.Fatal("visited nil root"); return false })
}

func TestNodeWorldFollowsParent(t *testing.T) {
	root := NewNode("root")
	root.Transform.SetPosition(math.NewVec3(1, 0, 0))
	child := NewNode("child")
	child.Transform.SetPosition(math.NewVec3(0, 0, 3))
	root.AddChild(child)

	p := math.NewVec3Zero().Transform(child.World())
	assert.True(t, p.Compare(math.NewVec3(1, 0, 3), 1e-5), "got %v", p)
}

func TestLODSelect(t *testing.T) {
	g := NewLODGroup("g")
	high := NewNode("high")
	low := NewNode("low")
	g.AddLevel(10, high)
	g.AddLevel(40, low)
	g.AddLevel(80, nil)

	assert.Equal(t, SceneObject(high), g.Select(-5))
	assert.Equal(t, SceneObject(high), g.Select(10))
	assert.Equal(t, SceneObject(low), g.Select(10.5))
	assert.Nil(t, g.Select(60))
	assert.Nil(t, g.Select(1000))
	assert.Same(t, &g.Node, high.Parent)
}

func TestOcclusionBounds(t *testing.T) {
	om := &OcclusionMesh{
		Vertices: []math.Vec3{{X: 1, Y: -2, Z: 0}, {X: -3, Y: 4, Z: 5}, {X: 0, Y: 0, Z: -1}},
		Indices:  []uint32{0, 1, 2, 2, 1},
	}
	b := om.Bounds()
	assert.Equal(t, math.NewVec3(-3, -2, -1), b.Min)
	assert.Equal(t, math.NewVec3(1, 4, 5), b.Max)
	assert.Equal(t, 1, om.TriangleCount())
	assert.Equal(t, math.Extents3D{}, (&OcclusionMesh{}).Bounds())
}

func TestMaterialPassBindings(t *testing.T) {
	m := NewMaterial("m")
	err := m.SetPass("forward", nil)
	assert.ErrorIs(t, err, core.ErrNilArgument)

	m.BeginUpdate()
	m.BeginUpdate()
	require.NoError(t, m.SetPass("forward", &MaterialPass{}))
	require.NoError(t, m.SetPass("shadow", &MaterialPass{}))
	replacement := &MaterialPass{}
	require.NoError(t, m.SetPass("forward", replacement))
	m.EndUpdate()
	assert.False(t, m.IsReady())
	assert.Zero(t, m.Generation)
	m.EndUpdate()
	assert.True(t, m.IsReady())
	assert.Equal(t, uint32(1), m.Generation)

	// unbalanced EndUpdate is ignored
	m.EndUpdate()
	assert.Equal(t, uint32(1), m.Generation)

	assert.Equal(t, []string{"forward", "shadow"}, m.PassNames())
	p, ok := m.Pass("forward")
	require.True(t, ok)
	assert.Same(t, replacement, p)
	assert.Equal(t, "forward", p.Name)
	assert.Len(t, m.Passes(), 2)

	require.NoError(t, m.SetPass("outline", &MaterialPass{}))
	assert.Equal(t, uint32(2), m.Generation)

	var zero Material
	require.NoError(t, zero.SetPass("p", &MaterialPass{}))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ResourceTypeLODGroup, TypeOf(NewLODGroup("g")))
	assert.Equal(t, ResourceTypeSceneNode, TypeOf(NewNode("n")))
	assert.Equal(t, ResourceTypeMaterial, TypeOf(NewMaterial("m")))
	assert.Equal(t, ResourceTypeBinary, TypeOf([]byte{1}))
	assert.Equal(t, ResourceTypeNone, TypeOf(nil))
	assert.Equal(t, "occlusion-mesh", ResourceTypeOcclusionMesh.String())
}
