package loaders

import (
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

/*
SceneNodeLoader reads a node record:

	string     name
	vec3       position
	quaternion rotation
	vec3       scale
	bool       visible
	shared     occluder (OcclusionMesh)
	7bit       child count
	object     children...
*/
type SceneNodeLoader struct{}

func (sl *SceneNodeLoader) Name() string         { return "anima.SceneNode" }
func (sl *SceneNodeLoader) Version() int32       { return 1 }
func (sl *SceneNodeLoader) Target() reflect.Type { return reflect.TypeOf(&metadata.Node{}) }

func (sl *SceneNodeLoader) Read(r *content.Reader) (interface{}, error) {
	n := &metadata.Node{}
	readNode(r, n)
	return n, r.Err()
}

func (sl *SceneNodeLoader) Write(w *content.Writer, v interface{}) error {
	writeNode(w, v.(*metadata.Node))
	return w.Err()
}

func readNode(r *content.Reader, n *metadata.Node) {
	n.Name = r.ReadString()
	position := r.ReadVec3()
	rotation := r.ReadQuaternion()
	scale := r.ReadVec3()
	n.Transform = math.TransformFromPositionRotationScale(position, rotation, scale)
	n.Visible = r.ReadBool()
	content.ReadSharedResourceAs(r, func(om *metadata.OcclusionMesh) {
		n.Occluder = om
	})

	count := r.Read7BitEncodedInt()
	for i := 0; i < count && r.Err() == nil; i++ {
		if child, ok := content.ReadObjectAs[metadata.SceneObject](r); ok {
			n.AddChild(child)
		}
	}
}

func writeNode(w *content.Writer, n *metadata.Node) {
	t := n.Transform
	if t == nil {
		t = math.TransformCreate()
	}
	w.WriteString(n.Name)
	w.WriteVec3(t.Position)
	w.WriteQuaternion(t.Rotation)
	w.WriteVec3(t.Scale)
	w.WriteBool(n.Visible)
	w.WriteSharedResource(n.Occluder)

	w.Write7BitEncodedInt(len(n.Children))
	for _, c := range n.Children {
		w.WriteObject(c)
	}
}
