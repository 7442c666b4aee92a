// Package geom defines the planar primitives the BSP engine works on:
// planes, convex polygons, and the classification of one against the other.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the distance within which a vertex counts as lying on a plane.
const Epsilon = 1e-5

// SplitType classifies a polygon against a plane.
type SplitType int

const (
	CoplanarFront SplitType = iota // on the plane, facing the same way
	CoplanarBack                   // on the plane, facing the other way
	Front                          // entirely in front
	Back                           // entirely behind
	Spanning                       // crosses the plane
)

func (t SplitType) String() string {
	switch t {
	case CoplanarFront:
		return "coplanar-front"
	case CoplanarBack:
		return "coplanar-back"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	default:
		return "unknown"
	}
}

// SplitResult is the outcome of Plane.SplitPolygon. Front and Back are only
// set for Spanning results, and only when the fragment kept at least three
// distinct vertices.
type SplitResult struct {
	Type  SplitType
	Front *Polygon
	Back  *Polygon
}

// Plane is the set of points p with Normal·p = W. Normal is unit length.
type Plane struct {
	Normal v3.Vec
	W      float64
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that
// a, b, c wind counter-clockwise when seen from the front.
func PlaneFromPoints(a, b, c v3.Vec) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, W: n.Dot(a)}
}

// Flipped returns the plane facing the opposite direction.
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Neg(), W: -p.W}
}

// SignedDistance returns the distance of v in front of the plane.
func (p Plane) SignedDistance(v v3.Vec) float64 {
	return p.Normal.Dot(v) - p.W
}

// SplitLine returns the point where the segment a-b crosses the plane,
// clamped to the segment.
func (p Plane) SplitLine(a, b v3.Vec) v3.Vec {
	direction := b.Sub(a)
	lambda := (p.W - p.Normal.Dot(a)) / p.Normal.Dot(direction)
	if math.IsNaN(lambda) {
		lambda = 0
	}
	lambda = math.Max(0, math.Min(1, lambda))
	return a.Add(direction.MulScalar(lambda))
}

// SplitPolygon classifies polygon against the plane. A polygon whose own
// plane equals p exactly is coplanar-front without looking at its vertices.
func (p Plane) SplitPolygon(polygon *Polygon) SplitResult {
	if polygon.Plane == p {
		return SplitResult{Type: CoplanarFront}
	}

	vertices := polygon.Vertices
	isBack := make([]bool, len(vertices))
	hasFront, hasBack := false, false
	for i, v := range vertices {
		t := p.SignedDistance(v)
		isBack[i] = t < 0
		if t > Epsilon {
			hasFront = true
		}
		if t < -Epsilon {
			hasBack = true
		}
	}

	switch {
	case !hasFront && !hasBack:
		if p.Normal.Dot(polygon.Plane.Normal) >= 0 {
			return SplitResult{Type: CoplanarFront}
		}
		return SplitResult{Type: CoplanarBack}
	case !hasBack:
		return SplitResult{Type: Front}
	case !hasFront:
		return SplitResult{Type: Back}
	}

	var front, back []v3.Vec
	n := len(vertices)
	for i, v := range vertices {
		j := (i + 1) % n
		if isBack[i] == isBack[j] {
			if isBack[i] {
				back = append(back, v)
			} else {
				front = append(front, v)
			}
			continue
		}
		x := p.SplitLine(v, vertices[j])
		if isBack[i] {
			back = append(back, v, x)
			front = append(front, x)
		} else {
			front = append(front, v, x)
			back = append(back, x)
		}
	}

	result := SplitResult{Type: Spanning}
	if front = dropNearDuplicates(front); len(front) >= 3 {
		result.Front = NewPolygonWithPlane(front, polygon.Shared, polygon.Plane)
	}
	if back = dropNearDuplicates(back); len(back) >= 3 {
		result.Back = NewPolygonWithPlane(back, polygon.Shared, polygon.Plane)
	}
	return result
}

// dropNearDuplicates removes vertices closer than Epsilon to their
// predecessor, treating the slice as a closed loop. Loops shorter than three
// vertices are returned untouched.
func dropNearDuplicates(vertices []v3.Vec) []v3.Vec {
	if len(vertices) < 3 {
		return vertices
	}
	const epsSquared = Epsilon * Epsilon
	prev := vertices[len(vertices)-1]
	for i := 0; i < len(vertices); i++ {
		v := vertices[i]
		if d := v.Sub(prev); d.Dot(d) < epsSquared {
			vertices = append(vertices[:i], vertices[i+1:]...)
			i--
		}
		prev = v
	}
	return vertices
}
