// Package bspkernel implements the kernel.Kernel interface with the
// polygon-soup CSG of package csg.
package bspkernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/polycsg/pkg/csg"
	"github.com/chazu/polycsg/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*BSPKernel)(nil)

// ErrEmptySolid is returned by ToMesh for a solid without polygons.
var ErrEmptySolid = errors.New("bspkernel: solid has no polygons")

// bspSolid wraps a *csg.Csg to implement kernel.Solid.
type bspSolid struct {
	c *csg.Csg
}

// BoundingBox returns the axis-aligned bounding box.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	bb := s.c.Bounds()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// BSPKernel implements kernel.Kernel using BSP tree CSG.
type BSPKernel struct{}

// New returns a new BSPKernel.
func New() *BSPKernel {
	return &BSPKernel{}
}

// Csg returns the polygon solid behind s, or nil if s did not come from a
// BSPKernel.
func Csg(s kernel.Solid) *csg.Csg {
	if b, ok := s.(*bspSolid); ok {
		return b.c
	}
	return nil
}

// FromCsg wraps a polygon solid as a kernel.Solid.
func FromCsg(c *csg.Csg) kernel.Solid {
	return wrap(c)
}

func unwrap(s kernel.Solid) *csg.Csg {
	c := Csg(s)
	if c == nil {
		panic(fmt.Sprintf("bspkernel: foreign solid %T", s))
	}
	return c
}

func wrap(c *csg.Csg) kernel.Solid {
	return &bspSolid{c: c}
}

// Box creates a box with its minimum corner at the origin.
func (k *BSPKernel) Box(x, y, z float64) kernel.Solid {
	if x <= 0 || y <= 0 || z <= 0 {
		panic(fmt.Sprintf("bspkernel.Box: non-positive size (%g, %g, %g)", x, y, z))
	}
	half := v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}
	return wrap(csg.Cube(csg.CubeOptions{Center: half, Radius: half}))
}

// Cylinder creates a cylinder along the Z axis, centered on the origin.
func (k *BSPKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if height <= 0 || radius <= 0 {
		panic(fmt.Sprintf("bspkernel.Cylinder: non-positive size (height %g, radius %g)", height, radius))
	}
	return wrap(csg.Cylinder(csg.CylinderOptions{
		Start:      v3.Vec{Z: -height / 2},
		End:        v3.Vec{Z: height / 2},
		Radius:     radius,
		Resolution: segments,
	}))
}

// Sphere creates a sphere centered on the origin.
func (k *BSPKernel) Sphere(radius float64, segments int) kernel.Solid {
	if radius <= 0 {
		panic(fmt.Sprintf("bspkernel.Sphere: non-positive radius %g", radius))
	}
	return wrap(csg.Sphere(csg.SphereOptions{Radius: radius, Resolution: segments}))
}

// Union returns the union of two solids.
func (k *BSPKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Union(unwrap(b)))
}

// Difference returns the difference a - b.
func (k *BSPKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Subtract(unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *BSPKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Intersect(unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *BSPKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(unwrap(s).Translate(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *BSPKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(unwrap(s).Transform(m))
}

// ToMesh fans the polygons of a solid into a flat shaded triangle mesh.
func (k *BSPKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	c := Csg(s)
	if c == nil {
		return nil, fmt.Errorf("bspkernel: cannot mesh solid of type %T", s)
	}
	if len(c.Polygons()) == 0 {
		return nil, ErrEmptySolid
	}
	return kernel.MeshFromTriangles(c.Triangles()), nil
}
