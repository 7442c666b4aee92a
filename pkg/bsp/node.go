package bsp

import "github.com/chazu/polycsg/pkg/geom"

// Node is one node of a solid BSP tree. Each node owns a splitting plane and
// the polygon-tree nodes lying on it; Front and Back hold the half spaces.
// A node without a plane is an empty leaf.
type Node struct {
	plane            *geom.Plane
	front, back      *Node
	parent           *Node
	polygonTreeNodes []PolygonTreeNode
}

func newNode(parent *Node) *Node {
	return &Node{parent: parent}
}

// Plane returns the splitting plane. ok is false for an empty node.
func (n *Node) Plane() (plane geom.Plane, ok bool) {
	if n.plane == nil {
		return geom.Plane{}, false
	}
	return *n.plane, true
}

// Front returns the subtree in front of the plane, if any.
func (n *Node) Front() *Node { return n.front }

// Back returns the subtree behind the plane, if any.
func (n *Node) Back() *Node { return n.back }

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// PolygonTreeNodes returns the polygon-tree nodes coplanar with n's plane.
func (n *Node) PolygonTreeNodes() []PolygonTreeNode { return n.polygonTreeNodes }

type pendingAdd struct {
	node   *Node
	leaves []PolygonTreeNode
}

// AddPolygonTreeNodes inserts leaves into the subtree rooted at n. An empty
// node adopts the plane of the first leaf's polygon; the rest are split
// against it and pushed down.
func (n *Node) AddPolygonTreeNodes(leaves []PolygonTreeNode) {
	stack := []pendingAdd{{node: n, leaves: leaves}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, leaves := top.node, top.leaves
		if len(leaves) == 0 {
			continue
		}
		if node.plane == nil {
			plane := leaves[0].Polygon().Plane
			node.plane = &plane
		}

		var front, back []PolygonTreeNode
		for _, leaf := range leaves {
			leaf.SplitByPlane(*node.plane, &node.polygonTreeNodes, &back, &front, &back)
		}

		if len(front) > 0 {
			if node.front == nil {
				node.front = newNode(node)
			}
			stack = append(stack, pendingAdd{node: node.front, leaves: front})
		}
		if len(back) > 0 {
			if node.back == nil {
				node.back = newNode(node)
			}
			stack = append(stack, pendingAdd{node: node.back, leaves: back})
		}
	}
}

// Invert flips every plane in the subtree and swaps front and back children.
// Polygons are not touched; the owning Tree flips those.
func (n *Node) Invert() {
	queue := []*Node{n}
	for i := 0; i < len(queue); i++ {
		node := queue[i]
		if node.plane != nil {
			flipped := node.plane.Flipped()
			node.plane = &flipped
		}
		if node.front != nil {
			queue = append(queue, node.front)
		}
		if node.back != nil {
			queue = append(queue, node.back)
		}
		node.front, node.back = node.back, node.front
	}
}

type pendingClip struct {
	node   *Node
	leaves []PolygonTreeNode
}

// ClipPolygons removes the parts of leaves that lie inside the solid of n.
// Fragments landing in a back half space with no further subtree are
// removed. With alsoRemoveCoplanarFront set, fragments coplanar and facing
// the same way as a plane are removed as well.
func (n *Node) ClipPolygons(leaves []PolygonTreeNode, alsoRemoveCoplanarFront bool) {
	stack := []pendingClip{{node: n, leaves: leaves}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, leaves := top.node, top.leaves
		if node.plane == nil {
			continue
		}

		var front, back []PolygonTreeNode
		coplanarFront := &front
		if alsoRemoveCoplanarFront {
			coplanarFront = &back
		}
		for _, leaf := range leaves {
			if leaf.IsRemoved() {
				continue
			}
			leaf.SplitByPlane(*node.plane, coplanarFront, &back, &front, &back)
		}

		if node.front != nil && len(front) > 0 {
			stack = append(stack, pendingClip{node: node.front, leaves: front})
		}
		if node.back != nil && len(back) > 0 {
			stack = append(stack, pendingClip{node: node.back, leaves: back})
		} else {
			for _, leaf := range back {
				leaf.Remove()
			}
		}
	}
}

// ClipTo clips every polygon stored in n's subtree against tree.
func (n *Node) ClipTo(tree *Tree, alsoRemoveCoplanarFront bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(node.polygonTreeNodes) > 0 {
			tree.root.ClipPolygons(node.polygonTreeNodes, alsoRemoveCoplanarFront)
		}
		if node.front != nil {
			stack = append(stack, node.front)
		}
		if node.back != nil {
			stack = append(stack, node.back)
		}
	}
}
