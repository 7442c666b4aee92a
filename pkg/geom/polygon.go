package geom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Shared is per-polygon metadata carried unchanged through splitting and
// boolean operations. A nil *Shared is the default (no color).
type Shared struct {
	Color []float64 // RGBA components in [0,1], or nil
}

// NewColorShared returns metadata carrying an RGBA color.
func NewColorShared(r, g, b, a float64) *Shared {
	return &Shared{Color: []float64{r, g, b, a}}
}

// Hash identifies shared metadata by value. Two *Shared with the same hash are
// interchangeable.
func (s *Shared) Hash() string {
	if s == nil || s.Color == nil {
		return "null"
	}
	parts := lo.Map(s.Color, func(c float64, _ int) string {
		return fmt.Sprintf("%g", c)
	})
	return strings.Join(parts, "/")
}

// Polygon is a convex planar polygon. Vertices wind counter-clockwise around
// Plane.Normal. Polygons are treated as immutable once built; operations that
// change geometry return a new polygon.
type Polygon struct {
	Vertices []v3.Vec
	Shared   *Shared
	Plane    Plane

	sphereCenter v3.Vec
	sphereRadius float64
}

// NewPolygon builds a polygon whose plane is taken from its first three
// vertices.
func NewPolygon(vertices []v3.Vec, shared *Shared) *Polygon {
	if len(vertices) < 3 {
		panic(fmt.Sprintf("geom: polygon needs at least 3 vertices, got %d", len(vertices)))
	}
	return NewPolygonWithPlane(vertices, shared, PlaneFromPoints(vertices[0], vertices[1], vertices[2]))
}

// NewPolygonWithPlane builds a polygon on a known plane. The vertices are not
// checked against the plane.
func NewPolygonWithPlane(vertices []v3.Vec, shared *Shared, plane Plane) *Polygon {
	p := &Polygon{Vertices: vertices, Shared: shared, Plane: plane}
	if len(vertices) > 0 {
		box := p.BoundingBox()
		p.sphereCenter = box.Min.Add(box.Max).MulScalar(0.5)
		p.sphereRadius = box.Max.Sub(p.sphereCenter).Length()
	}
	return p
}

// BoundingBox returns the axis-aligned box around the vertices.
func (p *Polygon) BoundingBox() sdf.Box3 {
	if len(p.Vertices) == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: p.Vertices[0], Max: p.Vertices[0]}
	for _, v := range p.Vertices[1:] {
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}

// BoundingSphere returns the sphere around the bounding box, used for the
// quick front/back test before an exact split.
func (p *Polygon) BoundingSphere() (center v3.Vec, radius float64) {
	return p.sphereCenter, p.sphereRadius
}

// Flipped returns the polygon with reversed winding and plane.
func (p *Polygon) Flipped() *Polygon {
	vertices := lo.Reverse(slices.Clone(p.Vertices))
	return &Polygon{
		Vertices:     vertices,
		Shared:       p.Shared,
		Plane:        p.Plane.Flipped(),
		sphereCenter: p.sphereCenter,
		sphereRadius: p.sphereRadius,
	}
}

// Transform maps every vertex through m. When m mirrors space the vertex order
// is reversed so the polygon keeps facing outward.
func (p *Polygon) Transform(m sdf.M44, mirror bool) *Polygon {
	vertices := lo.Map(p.Vertices, func(v v3.Vec, _ int) v3.Vec {
		return m.MulPosition(v)
	})
	if mirror {
		vertices = lo.Reverse(vertices)
	}
	return NewPolygonWithPlane(vertices, p.Shared, planeFromVertices(vertices))
}

// planeFromVertices fits a plane to a loop with Newell's method, which stays
// well defined when some consecutive vertices are collinear.
func planeFromVertices(vertices []v3.Vec) Plane {
	var normal, centroid v3.Vec
	for i, a := range vertices {
		b := vertices[(i+1)%len(vertices)]
		normal.X += (a.Y - b.Y) * (a.Z + b.Z)
		normal.Y += (a.Z - b.Z) * (a.X + b.X)
		normal.Z += (a.X - b.X) * (a.Y + b.Y)
		centroid = centroid.Add(a)
	}
	normal = normal.Normalize()
	centroid = centroid.MulScalar(1 / float64(len(vertices)))
	return Plane{Normal: normal, W: normal.Dot(centroid)}
}

// Area returns the area of the polygon.
func (p *Polygon) Area() float64 {
	var sum v3.Vec
	for i := 1; i+1 < len(p.Vertices); i++ {
		a := p.Vertices[i].Sub(p.Vertices[0])
		b := p.Vertices[i+1].Sub(p.Vertices[0])
		sum = sum.Add(a.Cross(b))
	}
	return 0.5 * sum.Length()
}

// SignedVolume returns the signed volume of the cone from the origin to the
// polygon. Summed over a closed surface it gives the enclosed volume.
func (p *Polygon) SignedVolume() float64 {
	var volume float64
	for i := 1; i+1 < len(p.Vertices); i++ {
		volume += p.Vertices[0].Dot(p.Vertices[i].Cross(p.Vertices[i+1]))
	}
	return volume / 6
}

func (p *Polygon) String() string {
	return fmt.Sprintf("Polygon(%d vertices, n=%v, w=%g)", len(p.Vertices), p.Plane.Normal, p.Plane.W)
}
