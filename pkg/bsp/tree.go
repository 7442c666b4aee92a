// Package bsp holds the solid BSP tree used by the boolean operations. A Tree
// pairs a Node hierarchy of splitting planes with a polygon tree recording
// how each input polygon was fragmented while being clipped.
package bsp

import "github.com/chazu/polycsg/pkg/geom"

// Tree is a BSP tree over one solid's polygons.
type Tree struct {
	polygons PolygonTreeNode
	root     *Node
}

// NewTree builds a tree over polygons. The polygons themselves are shared,
// not copied.
func NewTree(polygons []*geom.Polygon) *Tree {
	t := &Tree{
		polygons: NewPolygonTree(),
		root:     newNode(nil),
	}
	if len(polygons) > 0 {
		t.AddPolygons(polygons)
	}
	return t
}

// RootNode returns the top of the plane hierarchy.
func (t *Tree) RootNode() *Node {
	return t.root
}

// Invert turns the solid inside out.
func (t *Tree) Invert() {
	t.polygons.Invert()
	t.root.Invert()
}

// ClipTo removes every part of t's polygons that lies inside other.
func (t *Tree) ClipTo(other *Tree, alsoRemoveCoplanarFront bool) {
	t.root.ClipTo(other, alsoRemoveCoplanarFront)
}

// AllPolygons returns the surviving polygons. Polygons that were split but
// never had a fragment removed come back whole.
func (t *Tree) AllPolygons() []*geom.Polygon {
	return t.polygons.Polygons()
}

// AddPolygons inserts more polygons into the tree.
func (t *Tree) AddPolygons(polygons []*geom.Polygon) {
	leaves := t.polygons.AddPolygons(polygons)
	t.root.AddPolygonTreeNodes(leaves)
}
