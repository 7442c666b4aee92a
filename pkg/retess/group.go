package retess

import (
	"github.com/chazu/polycsg/pkg/canon"
	"github.com/chazu/polycsg/pkg/geom"
)

type groupKey struct {
	plane, shared int
}

// exactTags tags planes and metadata by exact value, for input that was
// already canonicalized.
type exactTags struct {
	tags   *canon.TagAllocator
	planes map[geom.Plane]int
	shared map[string]int
}

func (e *exactTags) key(p *geom.Polygon) groupKey {
	plane, ok := e.planes[p.Plane]
	if !ok {
		plane = e.tags.Next()
		e.planes[p.Plane] = plane
	}
	h := p.Shared.Hash()
	shared, ok := e.shared[h]
	if !ok {
		shared = e.tags.Next()
		e.shared[h] = shared
	}
	return groupKey{plane, shared}
}

// Polygons retesselates a polygon soup. Polygons are grouped by plane and
// shared metadata in order of first appearance; each group of two or more is
// replaced by Coplanar's merge of it. Canonical input is grouped by exact
// plane value; otherwise planes and metadata are matched through factory.
func Polygons(polygons []*geom.Polygon, factory *canon.Factory, canonical bool) []*geom.Polygon {
	key := func(p *geom.Polygon) groupKey {
		_, plane := factory.Plane(p.Plane)
		_, shared := factory.Shared(p.Shared)
		return groupKey{plane, shared}
	}
	if canonical {
		exact := &exactTags{
			tags:   canon.NewTagAllocator(),
			planes: make(map[geom.Plane]int),
			shared: make(map[string]int),
		}
		key = exact.key
	}

	var order []groupKey
	groups := make(map[groupKey][]*geom.Polygon)
	for _, p := range polygons {
		k := key(p)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}

	var result []*geom.Polygon
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			result = append(result, group...)
			continue
		}
		result = append(result, Coplanar(group)...)
	}
	return result
}
