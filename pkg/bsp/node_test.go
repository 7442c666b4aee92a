package bsp

import (
	"testing"

	"github.com/chazu/polycsg/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/tdewolff/test"
)

func TestNodeConvexSolidIsBackChain(t *testing.T) {
	polys := box(v3.Vec{}, 1)
	tree := NewTree(polys)

	depth := 0
	for n := tree.RootNode(); n != nil; n = n.Back() {
		plane, ok := n.Plane()
		test.That(t, ok, "node", depth, "has no plane")
		test.T(t, plane, polys[depth].Plane)
		test.That(t, n.Front() == nil, "convex solid produced a front child at depth", depth)
		test.T(t, len(n.PolygonTreeNodes()), 1)
		if depth > 0 {
			test.That(t, n.Parent() != nil && n.Parent().Back() == n, "parent link broken at depth", depth)
		}
		depth++
	}
	test.T(t, depth, 6)
	test.That(t, tree.RootNode().Parent() == nil, "root has a parent")
}

func TestNodeCoplanarPolygonsShareNode(t *testing.T) {
	polys := box(v3.Vec{}, 1)
	// A second, smaller quad on the -x face plane.
	extra := box(v3.Vec{X: -0.5}, 0.5)[0]
	tree := NewTree(append(polys, extra))
	test.T(t, len(tree.RootNode().PolygonTreeNodes()), 2)
}

func TestNodeInvertSwapsSubtrees(t *testing.T) {
	tree := NewTree(box(v3.Vec{}, 1))
	root := tree.RootNode()
	root.Invert()
	test.That(t, root.Back() == nil, "back child should have moved to front")
	test.That(t, root.Front() != nil, "front child missing after invert")
	plane, _ := root.Plane()
	test.T(t, plane.Normal, v3.Vec{X: 1, Y: 0, Z: 0})
}

func TestNodeClipPolygonsSkipsRemoved(t *testing.T) {
	a := NewTree(box(v3.Vec{}, 0.5))
	b := NewTree(box(v3.Vec{}, 1))
	leaves := a.RootNode().PolygonTreeNodes()
	b.RootNode().ClipPolygons(leaves, false)
	test.That(t, leaves[0].IsRemoved(), "contained polygon not removed")
	// A second pass over removed leaves must not panic or resurrect them.
	b.RootNode().ClipPolygons(leaves, false)
	test.That(t, leaves[0].IsRemoved(), "removed polygon resurrected")
}

func TestNodeCoplanarBackGoesToBackChild(t *testing.T) {
	up := box(v3.Vec{}, 1)[5] // +z face
	down := up.Flipped()
	tree := NewTree([]*geom.Polygon{up, down})

	root := tree.RootNode()
	test.T(t, len(root.PolygonTreeNodes()), 1)
	test.That(t, root.PolygonTreeNodes()[0].Polygon() == up, "root bucket does not hold the first polygon")
	test.That(t, root.Front() == nil, "opposite twin produced a front child")

	back := root.Back()
	test.That(t, back != nil, "opposite twin did not reach a back child")
	test.T(t, len(back.PolygonTreeNodes()), 1)
	test.That(t, back.PolygonTreeNodes()[0].Polygon() == down, "back child holds the wrong polygon")
	plane, _ := back.Plane()
	test.T(t, plane, up.Plane.Flipped())
}
