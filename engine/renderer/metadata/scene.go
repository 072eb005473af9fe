package metadata

import (
	"github.com/spaghettifunk/anima-content/engine/containers"
	"github.com/spaghettifunk/anima-content/engine/math"
)

// SceneObject is anything that can live in the scene graph.
type SceneObject interface {
	SceneNode() *Node
}

/**
 * @brief A named node in the scene graph. Children are contained by their
 * parent, and a child's transform is parented to the parent's transform.
 */
type Node struct {
	Name      string
	Transform *math.Transform
	Visible   bool
	/** @brief Optional occluder shared between nodes. */
	Occluder *OcclusionMesh

	Parent   *Node
	Children []SceneObject
}

func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: math.TransformCreate(),
		Visible:   true,
	}
}

func (n *Node) SceneNode() *Node {
	return n
}

func (n *Node) NumChildren() int {
	return len(n.Children)
}

func (n *Node) Child(i int) SceneObject {
	return n.Children[i]
}

// AddChild attaches child to n, detaching it from any previous parent first.
func (n *Node) AddChild(child SceneObject) {
	if child == nil {
		return
	}
	c := child.SceneNode()
	if c.Parent != nil {
		c.Parent.RemoveChild(child)
	}
	n.adopt(c)
	n.Children = append(n.Children, child)
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child SceneObject) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			cn := child.SceneNode()
			cn.Parent = nil
			if cn.Transform != nil {
				cn.Transform.Parent = nil
			}
			return true
		}
	}
	return false
}

func (n *Node) adopt(c *Node) {
	c.Parent = n
	if c.Transform != nil {
		c.Transform.Parent = n.Transform
	}
}

// World returns the node's world matrix.
func (n *Node) World() math.Mat4 {
	return n.Transform.GetWorld()
}

// Walk visits root and every object below it breadth-first, including the
// objects held by LOD levels. Returning false from fn stops the walk.
func Walk(root SceneObject, fn func(obj SceneObject, depth int) bool) {
	if root == nil {
		return
	}
	type entry struct {
		obj   SceneObject
		depth int
	}
	queue := containers.NewRingQueue[entry](8)
	queue.Enqueue(entry{root, 0})
	for !queue.IsEmpty() {
		e, _ := queue.Dequeue()
		if !fn(e.obj, e.depth) {
			return
		}
		if g, ok := e.obj.(*LODGroup); ok {
			for _, l := range g.Levels {
				if l.Object != nil {
					queue.Enqueue(entry{l.Object, e.depth + 1})
				}
			}
		}
		for _, c := range e.obj.SceneNode().Children {
			queue.Enqueue(entry{c, e.depth + 1})
		}
	}
}

// Find returns the first object named name below (and including) root.
func Find(root SceneObject, name string) SceneObject {
	var found SceneObject
	Walk(root, func(obj SceneObject, _ int) bool {
		if obj.SceneNode().Name == name {
			found = obj
			return false
		}
		return true
	})
	return found
}
