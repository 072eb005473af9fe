package loaders

import (
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

// LODGroupLoader reads the node body followed by the levels, each a float32
// max distance and an object (nil for nothing drawn at that range).
type LODGroupLoader struct{}

func (ll *LODGroupLoader) Name() string         { return "anima.LODGroup" }
func (ll *LODGroupLoader) Version() int32       { return 1 }
func (ll *LODGroupLoader) Target() reflect.Type { return reflect.TypeOf(&metadata.LODGroup{}) }

func (ll *LODGroupLoader) Read(r *content.Reader) (interface{}, error) {
	g := &metadata.LODGroup{}
	readNode(r, &g.Node)

	count := r.Read7BitEncodedInt()
	for i := 0; i < count && r.Err() == nil; i++ {
		distance := r.ReadFloat32()
		obj, _ := content.ReadObjectAs[metadata.SceneObject](r)
		if r.Err() != nil {
			break
		}
		g.AddLevel(distance, obj)
	}
	return g, r.Err()
}

func (ll *LODGroupLoader) Write(w *content.Writer, v interface{}) error {
	g := v.(*metadata.LODGroup)
	writeNode(w, &g.Node)

	w.Write7BitEncodedInt(len(g.Levels))
	for _, l := range g.Levels {
		w.WriteFloat32(l.MaxDistance)
		w.WriteObject(l.Object)
	}
	return w.Err()
}
