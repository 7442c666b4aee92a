package bsp

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/polycsg/pkg/geom"
)

// ErrInvariant is wrapped by every panic raised when the tree bookkeeping is
// used in a way that can only be a programming error.
var ErrInvariant = errors.New("bsp: invariant violation")

// SphereTolerance pads a polygon's bounding sphere in the quick front/back
// test that runs before an exact split.
const SphereTolerance = 1e-4

const noParent int32 = -1

func invariant(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
}

// polygonEntry is one slot of the polygon-tree arena.
type polygonEntry struct {
	parent   int32
	children []int32
	polygon  *geom.Polygon
	removed  bool
}

// polygonArena owns every polygon-tree node of one Tree. Entries are never
// freed; removal only detaches them.
type polygonArena struct {
	entries []polygonEntry
}

// PolygonTreeNode addresses a node of a polygon tree. The tree records the
// split history of every polygon added to it: each added polygon becomes a
// child of the root, and splitting a polygon adds its fragments as children.
// A node that still holds a polygon stands for all of its descendants, so
// geometry is only fragmented where a fragment was actually removed.
//
// The zero value is not usable; start from NewPolygonTree.
type PolygonTreeNode struct {
	arena *polygonArena
	id    int32
}

// NewPolygonTree returns the root of an empty polygon tree.
func NewPolygonTree() PolygonTreeNode {
	a := &polygonArena{entries: []polygonEntry{{parent: noParent}}}
	return PolygonTreeNode{arena: a, id: 0}
}

func (n PolygonTreeNode) entry() *polygonEntry {
	return &n.arena.entries[n.id]
}

func (n PolygonTreeNode) node(id int32) PolygonTreeNode {
	return PolygonTreeNode{arena: n.arena, id: id}
}

// IsRoot reports whether n is the synthetic root of its tree.
func (n PolygonTreeNode) IsRoot() bool {
	return n.entry().parent == noParent
}

// IsRemoved reports whether n was removed by clipping.
func (n PolygonTreeNode) IsRemoved() bool {
	return n.entry().removed
}

// Polygon returns the polygon held by n. It panics when n holds none.
func (n PolygonTreeNode) Polygon() *geom.Polygon {
	p := n.entry().polygon
	if p == nil {
		invariant("node %d is not associated with a polygon", n.id)
	}
	return p
}

// AddChild attaches a new leaf holding polygon under n.
func (n PolygonTreeNode) AddChild(polygon *geom.Polygon) PolygonTreeNode {
	a := n.arena
	id := int32(len(a.entries))
	a.entries = append(a.entries, polygonEntry{parent: n.id, polygon: polygon})
	a.entries[n.id].children = append(a.entries[n.id].children, id)
	return n.node(id)
}

// AddPolygons adds one leaf per polygon. Only the root accepts new polygons.
func (n PolygonTreeNode) AddPolygons(polygons []*geom.Polygon) []PolygonTreeNode {
	if !n.IsRoot() {
		invariant("polygons can only be added to the root node")
	}
	leaves := make([]PolygonTreeNode, len(polygons))
	for i, p := range polygons {
		leaves[i] = n.AddChild(p)
	}
	return leaves
}

// Remove detaches n from its parent and invalidates the polygon of every
// ancestor that still stands for its descendants. Removing twice is a no-op.
func (n PolygonTreeNode) Remove() {
	e := n.entry()
	if e.removed {
		return
	}
	if e.parent == noParent {
		invariant("cannot remove the root node")
	}
	if len(e.children) > 0 {
		invariant("cannot remove node %d with %d children", n.id, len(e.children))
	}
	e.removed = true

	parent := &n.arena.entries[e.parent]
	i := slices.Index(parent.children, n.id)
	if i < 0 {
		invariant("node %d not found among its parent's children", n.id)
	}
	parent.children = slices.Delete(parent.children, i, i+1)

	n.arena.invalidate(e.parent)
}

// invalidate clears the polygon of id and its ancestors, stopping at the
// first one that already has none.
func (a *polygonArena) invalidate(id int32) {
	for id != noParent && a.entries[id].polygon != nil {
		a.entries[id].polygon = nil
		id = a.entries[id].parent
	}
}

// Polygons returns the polygons of n's subtree breadth-first. A node holding
// a polygon is emitted whole and its descendants are skipped.
func (n PolygonTreeNode) Polygons() []*geom.Polygon {
	var result []*geom.Polygon
	queue := []int32{n.id}
	for i := 0; i < len(queue); i++ {
		e := &n.arena.entries[queue[i]]
		if e.polygon != nil {
			result = append(result, e.polygon)
			continue
		}
		queue = append(queue, e.children...)
	}
	return result
}

// Invert flips every polygon in the tree. Only the root can be inverted.
func (n PolygonTreeNode) Invert() {
	if !n.IsRoot() {
		invariant("only the root node can be inverted")
	}
	queue := []int32{n.id}
	for i := 0; i < len(queue); i++ {
		e := &n.arena.entries[queue[i]]
		if e.polygon != nil {
			e.polygon = e.polygon.Flipped()
		}
		queue = append(queue, e.children...)
	}
}

// SplitByPlane classifies the polygons under n against plane and appends the
// resulting nodes to the given buckets. When n has children every childless
// descendant is classified instead of n. The bucket pointers may alias.
func (n PolygonTreeNode) SplitByPlane(plane geom.Plane, coplanarFront, coplanarBack, front, back *[]PolygonTreeNode) {
	a := n.arena
	if len(a.entries[n.id].children) == 0 {
		n.splitPolygon(plane, coplanarFront, coplanarBack, front, back)
		return
	}
	queue := slices.Clone(a.entries[n.id].children)
	for i := 0; i < len(queue); i++ {
		id := queue[i]
		if children := a.entries[id].children; len(children) > 0 {
			queue = append(queue, children...)
			continue
		}
		n.node(id).splitPolygon(plane, coplanarFront, coplanarBack, front, back)
	}
}

func (n PolygonTreeNode) splitPolygon(plane geom.Plane, coplanarFront, coplanarBack, front, back *[]PolygonTreeNode) {
	polygon := n.entry().polygon
	if polygon == nil {
		return
	}

	center, radius := polygon.BoundingSphere()
	radius += SphereTolerance
	d := plane.SignedDistance(center)
	if d > radius {
		*front = append(*front, n)
		return
	}
	if d < -radius {
		*back = append(*back, n)
		return
	}

	r := plane.SplitPolygon(polygon)
	switch r.Type {
	case geom.CoplanarFront:
		*coplanarFront = append(*coplanarFront, n)
	case geom.CoplanarBack:
		*coplanarBack = append(*coplanarBack, n)
	case geom.Front:
		*front = append(*front, n)
	case geom.Back:
		*back = append(*back, n)
	case geom.Spanning:
		if r.Front != nil {
			*front = append(*front, n.AddChild(r.Front))
		}
		if r.Back != nil {
			*back = append(*back, n.AddChild(r.Back))
		}
	}
}
