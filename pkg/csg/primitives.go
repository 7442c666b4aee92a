package csg

import (
	"math"

	"github.com/chazu/polycsg/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

const (
	// DefaultResolution2D is the number of segments around a cylinder.
	DefaultResolution2D = 32
	// DefaultResolution3D is the number of segments around a sphere.
	DefaultResolution3D = 12
)

// SphereOptions configures Sphere. Zero fields take their defaults: radius 1
// and DefaultResolution3D.
type SphereOptions struct {
	Center     v3.Vec
	Radius     float64
	Resolution int
	Shared     *geom.Shared
}

// Sphere returns a UV sphere made of quads with triangles at the poles. The
// resolution is clamped to at least 4; a resolution of 12 gives 72 polygons.
func Sphere(opts SphereOptions) *Csg {
	radius := lo.Ternary(opts.Radius == 0, 1, opts.Radius)
	resolution := lo.Ternary(opts.Resolution == 0, DefaultResolution3D, opts.Resolution)
	resolution = max(resolution, 4)
	qresolution := int(math.Round(float64(resolution) / 4))

	center := opts.Center
	xAxis := v3.Vec{X: radius}
	yAxis := v3.Vec{Y: -radius}
	zAxis := v3.Vec{Z: radius}

	var polygons []*geom.Polygon
	var prevCylinder v3.Vec
	for slice1 := 0; slice1 <= resolution; slice1++ {
		angle := 2 * math.Pi * float64(slice1) / float64(resolution)
		cylinder := xAxis.MulScalar(math.Cos(angle)).Add(yAxis.MulScalar(math.Sin(angle)))
		if slice1 > 0 {
			var prevCos, prevSin float64
			for slice2 := 0; slice2 <= qresolution; slice2++ {
				pitch := 0.5 * math.Pi * float64(slice2) / float64(qresolution)
				cos, sin := math.Cos(pitch), math.Sin(pitch)
				if slice2 > 0 {
					// Southern band.
					south := []v3.Vec{
						center.Add(prevCylinder.MulScalar(prevCos)).Sub(zAxis.MulScalar(prevSin)),
						center.Add(cylinder.MulScalar(prevCos)).Sub(zAxis.MulScalar(prevSin)),
					}
					if slice2 < qresolution {
						south = append(south, center.Add(cylinder.MulScalar(cos)).Sub(zAxis.MulScalar(sin)))
					}
					south = append(south, center.Add(prevCylinder.MulScalar(cos)).Sub(zAxis.MulScalar(sin)))
					polygons = append(polygons, geom.NewPolygon(south, opts.Shared))

					// Northern band, mirrored so it winds outward.
					north := []v3.Vec{
						center.Add(prevCylinder.MulScalar(prevCos)).Add(zAxis.MulScalar(prevSin)),
						center.Add(cylinder.MulScalar(prevCos)).Add(zAxis.MulScalar(prevSin)),
					}
					if slice2 < qresolution {
						north = append(north, center.Add(cylinder.MulScalar(cos)).Add(zAxis.MulScalar(sin)))
					}
					north = append(north, center.Add(prevCylinder.MulScalar(cos)).Add(zAxis.MulScalar(sin)))
					polygons = append(polygons, geom.NewPolygon(lo.Reverse(north), opts.Shared))
				}
				prevCos, prevSin = cos, sin
			}
		}
		prevCylinder = cylinder
	}

	result := FromPolygons(polygons)
	result.properties["sphere"] = Properties{
		"center":    center,
		"facepoint": center.Add(xAxis),
	}
	return result
}

// CubeOptions configures Cube. Radius is the half extent along each axis and
// defaults to (1,1,1) when zero.
type CubeOptions struct {
	Center v3.Vec
	Radius v3.Vec
	Shared *geom.Shared
}

// cubeFaces lists the corner indices of each face, outward winding. Bit 0 of
// a corner index selects +x, bit 1 +y and bit 2 +z.
var cubeFaces = [6][4]int{
	{0, 4, 6, 2}, // -x
	{1, 3, 7, 5}, // +x
	{0, 1, 5, 4}, // -y
	{2, 6, 7, 3}, // +y
	{0, 2, 3, 1}, // -z
	{4, 5, 7, 6}, // +z
}

// Cube returns an axis-aligned box of six quads.
func Cube(opts CubeOptions) *Csg {
	r := lo.Ternary(opts.Radius == (v3.Vec{}), v3.Vec{X: 1, Y: 1, Z: 1}, opts.Radius)
	c := opts.Center
	sign := func(i, bit int) float64 {
		if i&bit != 0 {
			return 1
		}
		return -1
	}
	polygons := lo.Map(cubeFaces[:], func(face [4]int, _ int) *geom.Polygon {
		vertices := lo.Map(face[:], func(i int, _ int) v3.Vec {
			return v3.Vec{
				X: c.X + r.X*sign(i, 1),
				Y: c.Y + r.Y*sign(i, 2),
				Z: c.Z + r.Z*sign(i, 4),
			}
		})
		return geom.NewPolygon(vertices, opts.Shared)
	})

	result := FromPolygons(polygons)
	result.properties["cube"] = Properties{"center": c}
	return result
}

// CylinderOptions configures Cylinder. Start and End default to (0,-1,0) and
// (0,1,0) when both are zero, Radius to 1 and Resolution to
// DefaultResolution2D.
type CylinderOptions struct {
	Start, End v3.Vec
	Radius     float64
	Resolution int
	Shared     *geom.Shared
}

// Cylinder returns a cylinder between Start and End: one quad per side
// segment and a triangle fan on each cap.
func Cylinder(opts CylinderOptions) *Csg {
	start, end := opts.Start, opts.End
	if start == (v3.Vec{}) && end == (v3.Vec{}) {
		start, end = v3.Vec{Y: -1}, v3.Vec{Y: 1}
	}
	radius := lo.Ternary(opts.Radius == 0, 1, opts.Radius)
	segments := lo.Ternary(opts.Resolution == 0, DefaultResolution2D, opts.Resolution)
	segments = max(segments, 3)

	ray := end.Sub(start)
	axisZ := ray.Normalize()
	axisY := nonParallel(axisZ).Cross(axisZ).Normalize()
	axisX := axisZ.Cross(axisY)

	point := func(stack, slice float64) v3.Vec {
		angle := slice * 2 * math.Pi
		out := axisX.MulScalar(math.Cos(angle)).Add(axisY.MulScalar(math.Sin(angle)))
		return start.Add(ray.MulScalar(stack)).Add(out.MulScalar(radius))
	}

	polygons := make([]*geom.Polygon, 0, 3*segments)
	for i := 0; i < segments; i++ {
		t0 := float64(i) / float64(segments)
		t1 := float64(i+1) / float64(segments)
		polygons = append(polygons,
			geom.NewPolygon([]v3.Vec{start, point(0, t0), point(0, t1)}, opts.Shared),
			geom.NewPolygon([]v3.Vec{point(0, t1), point(0, t0), point(1, t0), point(1, t1)}, opts.Shared),
			geom.NewPolygon([]v3.Vec{end, point(1, t1), point(1, t0)}, opts.Shared),
		)
	}

	result := FromPolygons(polygons)
	result.properties["cylinder"] = Properties{"start": start, "end": end}
	return result
}

// nonParallel returns the unit axis along v's smallest component.
func nonParallel(v v3.Vec) v3.Vec {
	x, y, z := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case x <= y && x <= z:
		return v3.Vec{X: 1}
	case y <= x && y <= z:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}
