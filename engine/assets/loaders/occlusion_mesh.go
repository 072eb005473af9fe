package loaders

import (
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/math"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
)

// Upper bound for slice preallocation from counts read off the stream.
const maxPrealloc = 1 << 16

// OcclusionMeshLoader reads a name, a vec3 vertex list and a uint32 index list.
type OcclusionMeshLoader struct{}

func (ol *OcclusionMeshLoader) Name() string         { return "anima.OcclusionMesh" }
func (ol *OcclusionMeshLoader) Version() int32       { return 1 }
func (ol *OcclusionMeshLoader) Target() reflect.Type { return reflect.TypeOf(&metadata.OcclusionMesh{}) }

func (ol *OcclusionMeshLoader) Read(r *content.Reader) (interface{}, error) {
	om := &metadata.OcclusionMesh{Name: r.ReadString()}

	vertexCount := r.Read7BitEncodedInt()
	om.Vertices = make([]math.Vec3, 0, min(vertexCount, maxPrealloc))
	for i := 0; i < vertexCount && r.Err() == nil; i++ {
		om.Vertices = append(om.Vertices, r.ReadVec3())
	}

	indexCount := r.Read7BitEncodedInt()
	om.Indices = make([]uint32, 0, min(indexCount, maxPrealloc))
	for i := 0; i < indexCount && r.Err() == nil; i++ {
		om.Indices = append(om.Indices, r.ReadUint32())
	}
	return om, r.Err()
}

func (ol *OcclusionMeshLoader) Write(w *content.Writer, v interface{}) error {
	om := v.(*metadata.OcclusionMesh)
	w.WriteString(om.Name)
	w.Write7BitEncodedInt(len(om.Vertices))
	for _, vtx := range om.Vertices {
		w.WriteVec3(vtx)
	}
	w.Write7BitEncodedInt(len(om.Indices))
	for _, idx := range om.Indices {
		w.WriteUint32(idx)
	}
	return w.Err()
}
