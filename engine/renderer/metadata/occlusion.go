package metadata

import "github.com/spaghettifunk/anima-content/engine/math"

// OcclusionMesh is a low-poly triangle list used to cull what is behind it.
type OcclusionMesh struct {
	Name     string
	Vertices []math.Vec3
	Indices  []uint32
}

func (om *OcclusionMesh) TriangleCount() int {
	return len(om.Indices) / 3
}

// Bounds returns the extents of the vertices. An empty mesh has zero extents.
func (om *OcclusionMesh) Bounds() math.Extents3D {
	if len(om.Vertices) == 0 {
		return math.Extents3D{}
	}
	e := math.Extents3D{Min: om.Vertices[0], Max: om.Vertices[0]}
	for _, v := range om.Vertices[1:] {
		e.Min = e.Min.Min(v)
		e.Max = e.Max.Max(v)
	}
	return e
}
