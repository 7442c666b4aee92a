// Package canon snaps nearly equal vertices, planes and shared metadata of a
// polygon soup onto single representatives, so that later passes can compare
// them by tag instead of by value.
package canon

import (
	"github.com/chazu/polycsg/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Tolerance is the per-coordinate distance below which two vertices or two
// planes are merged.
const Tolerance = 1e-5

// TagAllocator hands out increasing integer tags. Tags are unique per
// allocator, not globally.
type TagAllocator struct {
	next int
}

// NewTagAllocator returns an allocator whose first tag is 1.
func NewTagAllocator() *TagAllocator {
	return &TagAllocator{next: 1}
}

// Next returns a tag never returned before by a.
func (a *TagAllocator) Next() int {
	tag := a.next
	a.next++
	return tag
}

type sharedEntry struct {
	shared *geom.Shared
	tag    int
}

// Factory interns geometry. A Factory is meant for one pass over one polygon
// set; it is not safe for concurrent use.
type Factory struct {
	tags     *TagAllocator
	vertices *fuzzyIndex[v3.Vec]
	planes   *fuzzyIndex[geom.Plane]
	shared   map[string]sharedEntry
}

// NewFactory returns an empty factory drawing tags from tags. A nil tags gets
// a private allocator.
func NewFactory(tags *TagAllocator) *Factory {
	if tags == nil {
		tags = NewTagAllocator()
	}
	return &Factory{
		tags:     tags,
		vertices: newFuzzyIndex[v3.Vec](3, Tolerance),
		planes:   newFuzzyIndex[geom.Plane](4, Tolerance),
		shared:   make(map[string]sharedEntry),
	}
}

// Vertex returns the representative of v and its tag.
func (f *Factory) Vertex(v v3.Vec) (v3.Vec, int) {
	return f.vertices.lookupOrCreate([]float64{v.X, v.Y, v.Z}, v, f.tags)
}

// Plane returns the representative of p and its tag.
func (f *Factory) Plane(p geom.Plane) (geom.Plane, int) {
	return f.planes.lookupOrCreate([]float64{p.Normal.X, p.Normal.Y, p.Normal.Z, p.W}, p, f.tags)
}

// Shared returns the representative of s and its tag. Metadata is matched by
// Hash, exactly.
func (f *Factory) Shared(s *geom.Shared) (*geom.Shared, int) {
	h := s.Hash()
	if e, ok := f.shared[h]; ok {
		return e.shared, e.tag
	}
	e := sharedEntry{shared: s, tag: f.tags.Next()}
	f.shared[h] = e
	return e.shared, e.tag
}

// Polygon rebuilds p from interned parts. Vertices that collapsed onto the
// same representative as their predecessor are dropped; nil is returned when
// fewer than three remain.
func (f *Factory) Polygon(p *geom.Polygon) *geom.Polygon {
	plane, _ := f.Plane(p.Plane)
	shared, _ := f.Shared(p.Shared)

	type tagged struct {
		v   v3.Vec
		tag int
	}
	interned := lo.Map(p.Vertices, func(v v3.Vec, _ int) tagged {
		rv, tag := f.Vertex(v)
		return tagged{rv, tag}
	})
	if len(interned) == 0 {
		return nil
	}

	vertices := make([]v3.Vec, 0, len(interned))
	prev := interned[len(interned)-1].tag
	for _, t := range interned {
		if t.tag != prev {
			vertices = append(vertices, t.v)
		}
		prev = t.tag
	}
	if len(vertices) < 3 {
		return nil
	}
	return geom.NewPolygonWithPlane(vertices, shared, plane)
}

// Polygons canonicalizes a polygon set, dropping polygons that degenerate.
func (f *Factory) Polygons(polygons []*geom.Polygon) []*geom.Polygon {
	return lo.FilterMap(polygons, func(p *geom.Polygon, _ int) (*geom.Polygon, bool) {
		q := f.Polygon(p)
		return q, q != nil
	})
}

// Stats reports how many distinct vertices and planes were interned.
func (f *Factory) Stats() (vertices, planes int) {
	return f.vertices.Len(), f.planes.Len()
}
