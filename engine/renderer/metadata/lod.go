package metadata

import "github.com/spaghettifunk/anima-content/engine/math"

// LODLevel is used while the viewer is at most MaxDistance away. A nil
// Object means nothing is drawn at that range.
type LODLevel struct {
	MaxDistance float32
	Object      SceneObject
}

// LODGroup is a node that swaps between representations based on distance.
type LODGroup struct {
	Node
	Levels []LODLevel
}

func NewLODGroup(name string) *LODGroup {
	return &LODGroup{Node: *NewNode(name)}
}

// AddLevel appends a level. Levels are expected in increasing distance order.
func (g *LODGroup) AddLevel(maxDistance float32, obj SceneObject) {
	if obj != nil {
		g.adopt(obj.SceneNode())
	}
	g.Levels = append(g.Levels, LODLevel{MaxDistance: maxDistance, Object: obj})
}

// Select returns the object of the first level covering distance, or nil
// when the distance is beyond every level.
func (g *LODGroup) Select(distance float32) SceneObject {
	d := math.Clamp(distance, 0, math.K_INFINITY)
	for _, l := range g.Levels {
		if d <= l.MaxDistance {
			return l.Object
		}
	}
	return nil
}
