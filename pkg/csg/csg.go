// Package csg implements boolean operations on solids bounded by convex
// polygons. Each operation builds a BSP tree per operand, clips the trees
// against each other and collects the surviving polygons.
//
// A Csg is never modified after construction; every operation returns a new
// value.
package csg

import (
	"fmt"

	"github.com/chazu/polycsg/pkg/bsp"
	"github.com/chazu/polycsg/pkg/canon"
	"github.com/chazu/polycsg/pkg/geom"
	"github.com/chazu/polycsg/pkg/retess"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Csg is a solid described by the polygons bounding it.
type Csg struct {
	polygons      []*geom.Polygon
	properties    Properties
	canonicalized bool
	retesselated  bool
}

// FromPolygons wraps polygons in a Csg. The slice is owned by the result.
func FromPolygons(polygons []*geom.Polygon) *Csg {
	return &Csg{polygons: polygons, properties: Properties{}}
}

// Polygons returns the bounding polygons. The slice must not be modified.
func (c *Csg) Polygons() []*geom.Polygon { return c.polygons }

// Properties returns the solid's metadata. The map must not be modified.
func (c *Csg) Properties() Properties { return c.properties }

// IsCanonicalized reports whether nearly equal vertices and planes have been
// merged.
func (c *Csg) IsCanonicalized() bool { return c.canonicalized }

// IsRetesselated reports whether coplanar fragments have been merged.
func (c *Csg) IsRetesselated() bool { return c.retesselated }

func (c *Csg) String() string {
	return fmt.Sprintf("Csg(%d polygons, canonicalized=%t, retesselated=%t)",
		len(c.polygons), c.canonicalized, c.retesselated)
}

// Union returns the union of c and others. Operands are combined pairwise
// through a work queue, and the final result is retesselated and
// canonicalized.
func (c *Csg) Union(others ...*Csg) *Csg {
	queue := append([]*Csg{c}, others...)
	i := 1
	for ; i < len(queue); i += 2 {
		queue = append(queue, queue[i-1].unionSub(queue[i]))
	}
	return queue[i-1].Retesselated().Canonicalized()
}

func (c *Csg) unionSub(other *Csg) *Csg {
	if !c.MayOverlap(other) {
		return c.unionForNonIntersecting(other)
	}
	a := bsp.NewTree(c.polygons)
	b := bsp.NewTree(other.polygons)
	a.ClipTo(b, false)
	b.ClipTo(a, false)
	b.Invert()
	b.ClipTo(a, false)
	b.Invert()

	polygons := append(a.AllPolygons(), b.AllPolygons()...)
	result := FromPolygons(polygons)
	result.properties = c.properties.Merge(other.properties)
	return result
}

func (c *Csg) unionForNonIntersecting(other *Csg) *Csg {
	polygons := make([]*geom.Polygon, 0, len(c.polygons)+len(other.polygons))
	polygons = append(polygons, c.polygons...)
	polygons = append(polygons, other.polygons...)
	result := FromPolygons(polygons)
	result.properties = c.properties.Merge(other.properties)
	result.canonicalized = c.canonicalized && other.canonicalized
	result.retesselated = c.retesselated && other.retesselated
	return result
}

// Subtract returns c with every operand removed, applied left to right. Only
// the last step is retesselated and canonicalized; with no operands c itself
// is returned.
func (c *Csg) Subtract(others ...*Csg) *Csg {
	result := c
	for i, other := range others {
		last := i == len(others)-1
		result = result.subtractSub(other, last)
	}
	return result
}

func (c *Csg) subtractSub(other *Csg, finish bool) *Csg {
	a := bsp.NewTree(c.polygons)
	b := bsp.NewTree(other.polygons)
	a.Invert()
	a.ClipTo(b, false)
	b.ClipTo(a, true)
	a.AddPolygons(b.AllPolygons())
	a.Invert()

	result := FromPolygons(a.AllPolygons())
	result.properties = c.properties.Merge(other.properties)
	if finish {
		result = result.Retesselated().Canonicalized()
	}
	return result
}

// Intersect returns the volume common to c and every operand, applied left
// to right. Only the last step is retesselated and canonicalized; with no
// operands c itself is returned.
func (c *Csg) Intersect(others ...*Csg) *Csg {
	result := c
	for i, other := range others {
		last := i == len(others)-1
		result = result.intersectSub(other, last)
	}
	return result
}

func (c *Csg) intersectSub(other *Csg, finish bool) *Csg {
	a := bsp.NewTree(c.polygons)
	b := bsp.NewTree(other.polygons)
	a.Invert()
	b.ClipTo(a, false)
	b.Invert()
	a.ClipTo(b, false)
	b.ClipTo(a, false)
	a.AddPolygons(b.AllPolygons())
	a.Invert()

	result := FromPolygons(a.AllPolygons())
	result.properties = c.properties.Merge(other.properties)
	if finish {
		result = result.Retesselated().Canonicalized()
	}
	return result
}

// Canonicalized returns c with nearly equal vertices, planes and metadata
// snapped together and degenerate polygons dropped.
func (c *Csg) Canonicalized() *Csg {
	if c.canonicalized {
		return c
	}
	factory := canon.NewFactory(canon.NewTagAllocator())
	return &Csg{
		polygons:      factory.Polygons(c.polygons),
		properties:    c.properties,
		canonicalized: true,
		retesselated:  c.retesselated,
	}
}

// Retesselated returns c with the fragments of each face merged back into as
// few convex polygons as possible. The result is not canonicalized.
func (c *Csg) Retesselated() *Csg {
	if c.retesselated {
		return c
	}
	factory := canon.NewFactory(canon.NewTagAllocator())
	return &Csg{
		polygons:     retess.Polygons(c.polygons, factory, c.canonicalized),
		properties:   c.properties,
		retesselated: true,
	}
}

// Bounds returns the axis-aligned box around every vertex. An empty solid
// has a zero box.
func (c *Csg) Bounds() sdf.Box3 {
	if len(c.polygons) == 0 {
		return sdf.Box3{}
	}
	return lo.Reduce(c.polygons[1:], func(box sdf.Box3, p *geom.Polygon, _ int) sdf.Box3 {
		b := p.BoundingBox()
		return sdf.Box3{Min: box.Min.Min(b.Min), Max: box.Max.Max(b.Max)}
	}, c.polygons[0].BoundingBox())
}

// MayOverlap reports whether the bounding boxes of c and other intersect.
// Solids without polygons never overlap anything.
func (c *Csg) MayOverlap(other *Csg) bool {
	if len(c.polygons) == 0 || len(other.polygons) == 0 {
		return false
	}
	a, b := c.Bounds(), other.Bounds()
	switch {
	case a.Max.X < b.Min.X, a.Min.X > b.Max.X:
		return false
	case a.Max.Y < b.Min.Y, a.Min.Y > b.Max.Y:
		return false
	case a.Max.Z < b.Min.Z, a.Min.Z > b.Max.Z:
		return false
	}
	return true
}

// Volume returns the enclosed volume. It is only meaningful for closed,
// outward-facing surfaces.
func (c *Csg) Volume() float64 {
	return lo.SumBy(c.polygons, func(p *geom.Polygon) float64 { return p.SignedVolume() })
}

// Transform maps every vertex through m. Mirroring transforms reverse the
// winding so the surface keeps facing outward. Retesselation survives a
// transform; canonicalization does not.
func (c *Csg) Transform(m sdf.M44) *Csg {
	mirror := isMirror(m)
	polygons := lo.Map(c.polygons, func(p *geom.Polygon, _ int) *geom.Polygon {
		return p.Transform(m, mirror)
	})
	return &Csg{
		polygons:     polygons,
		properties:   c.properties,
		retesselated: c.retesselated,
	}
}

// isMirror reports whether m flips handedness.
func isMirror(m sdf.M44) bool {
	o := m.MulPosition(v3.Vec{})
	x := m.MulPosition(v3.Vec{X: 1}).Sub(o)
	y := m.MulPosition(v3.Vec{Y: 1}).Sub(o)
	z := m.MulPosition(v3.Vec{Z: 1}).Sub(o)
	return x.Cross(y).Dot(z) < 0
}

// Translate moves the solid by offset.
func (c *Csg) Translate(offset v3.Vec) *Csg {
	return c.Transform(sdf.Translate3d(offset))
}

// Inverse turns the solid inside out.
func (c *Csg) Inverse() *Csg {
	polygons := lo.Map(c.polygons, func(p *geom.Polygon, _ int) *geom.Polygon {
		return p.Flipped()
	})
	return &Csg{polygons: polygons, properties: c.properties}
}

// Triangles fans every polygon into triangles.
func (c *Csg) Triangles() []*sdf.Triangle3 {
	return lo.FlatMap(c.polygons, func(p *geom.Polygon, _ int) []*sdf.Triangle3 {
		tris := make([]*sdf.Triangle3, 0, max(0, len(p.Vertices)-2))
		for i := 1; i+1 < len(p.Vertices); i++ {
			tris = append(tris, &sdf.Triangle3{p.Vertices[0], p.Vertices[i], p.Vertices[i+1]})
		}
		return tris
	})
}
