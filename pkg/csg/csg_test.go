package csg

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/tdewolff/test"
)

func unitCube(center v3.Vec) *Csg {
	return Cube(CubeOptions{Center: center})
}

func TestSubtractSpheres(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		want   int
	}{
		{"overlapping", 0.5, 84},
		{"no overlap", 50, 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Sphere(SphereOptions{Radius: 1, Center: v3.Vec{X: -tt.offset}})
			b := Sphere(SphereOptions{Radius: 1, Center: v3.Vec{X: tt.offset}})
			r := a.Subtract(b)
			test.T(t, len(r.Polygons()), tt.want)
			test.That(t, r.IsCanonicalized(), "result not canonicalized")
			test.That(t, r.IsRetesselated(), "result not retesselated")
		})
	}
}

func TestBooleanVolumes(t *testing.T) {
	a := unitCube(v3.Vec{})
	b := unitCube(v3.Vec{X: 1, Y: 1, Z: 1})
	tests := []struct {
		name string
		got  *Csg
		want float64
	}{
		{"union", a.Union(b), 15},
		{"union reversed", b.Union(a), 15},
		{"subtract", a.Subtract(b), 7},
		{"subtract reversed", b.Subtract(a), 7},
		{"intersect", a.Intersect(b), 1},
		{"intersect reversed", b.Intersect(a), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.FloatDiff(t, tt.got.Volume(), tt.want, 1e-9)
			test.That(t, tt.got.IsCanonicalized() && tt.got.IsRetesselated(), "flags not set", tt.got)
		})
	}
	// The overlap of two offset cubes is itself a cube.
	test.T(t, len(a.Intersect(b).Polygons()), 6)
}

func TestSelfOperations(t *testing.T) {
	shapes := map[string]*Csg{
		"cube":   unitCube(v3.Vec{}),
		"sphere": Sphere(SphereOptions{}),
	}
	for name, s := range shapes {
		t.Run(name, func(t *testing.T) {
			n := len(s.Polygons())
			v := s.Volume()

			u := s.Union(s)
			test.T(t, len(u.Polygons()), n)
			test.FloatDiff(t, u.Volume(), v, 1e-9)

			d := s.Subtract(s)
			test.T(t, len(d.Polygons()), 0)
			test.FloatDiff(t, d.Volume(), 0, 1e-9)

			i := s.Intersect(s)
			test.T(t, len(i.Polygons()), n)
			test.FloatDiff(t, i.Volume(), v, 1e-9)
		})
	}
}

func TestUnionCommutes(t *testing.T) {
	a := Sphere(SphereOptions{Center: v3.Vec{X: -0.5}})
	b := Sphere(SphereOptions{Center: v3.Vec{X: 0.5, Y: 0.2}})
	ab, ba := a.Union(b), b.Union(a)
	test.FloatDiff(t, ab.Volume(), ba.Volume(), 1e-4)
	test.That(t, ab.Volume() > a.Volume(), "union smaller than operand")
	test.That(t, ab.Volume() < a.Volume()+b.Volume(), "union not smaller than sum for overlapping operands")
}

func TestNaryOperations(t *testing.T) {
	cubes := []*Csg{
		unitCube(v3.Vec{X: 10}),
		unitCube(v3.Vec{X: 20}),
		unitCube(v3.Vec{X: 30}),
	}
	base := unitCube(v3.Vec{})

	u := base.Union(cubes...)
	test.T(t, len(u.Polygons()), 24)
	test.FloatDiff(t, u.Volume(), 32, 1e-9)

	big := Cube(CubeOptions{Radius: v3.Vec{X: 2, Y: 2, Z: 2}})
	holes := []*Csg{
		unitCube(v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}),
		unitCube(v3.Vec{X: -1.5, Y: -1.5, Z: -1.5}),
	}
	d := big.Subtract(holes...)
	test.FloatDiff(t, d.Volume(), 64-2*1.5*1.5*1.5, 1e-9)
	test.That(t, d.IsCanonicalized() && d.IsRetesselated(), "last step not finished")

	i := big.Intersect(
		unitCube(v3.Vec{X: 1.5, Y: 0.25, Z: 0.25}),
		unitCube(v3.Vec{X: 0.9, Y: -0.25, Z: -0.25}),
	)
	test.FloatDiff(t, i.Volume(), 1.4*1.5*1.5, 1e-9)
}

func TestNoOperands(t *testing.T) {
	c := unitCube(v3.Vec{})
	test.That(t, c.Subtract() == c, "Subtract() must return the receiver")
	test.That(t, c.Intersect() == c, "Intersect() must return the receiver")

	u := c.Union()
	test.That(t, u.IsCanonicalized() && u.IsRetesselated(), "Union() must finish its receiver")
	test.T(t, len(u.Polygons()), 6)
}

func TestFinishingIsIdempotent(t *testing.T) {
	c := Sphere(SphereOptions{})
	test.That(t, !c.IsCanonicalized() && !c.IsRetesselated(), "fresh solid has flags set")

	canonical := c.Canonicalized()
	test.That(t, canonical.IsCanonicalized() && !canonical.IsRetesselated(), "wrong flags after Canonicalized")
	test.That(t, canonical.Canonicalized() == canonical, "Canonicalized not idempotent")

	retesselated := c.Retesselated()
	test.That(t, retesselated.IsRetesselated() && !retesselated.IsCanonicalized(), "wrong flags after Retesselated")
	test.That(t, retesselated.Retesselated() == retesselated, "Retesselated not idempotent")

	both := canonical.Retesselated().Canonicalized()
	test.That(t, both.IsCanonicalized() && both.IsRetesselated(), "flags lost")
	test.T(t, len(both.Polygons()), 72)
}

func TestFastUnionFlags(t *testing.T) {
	finished := func(c *Csg) *Csg { return c.Retesselated().Canonicalized() }
	a := finished(unitCube(v3.Vec{}))
	b := finished(unitCube(v3.Vec{X: 5}))
	raw := unitCube(v3.Vec{X: -5})

	ab := a.unionSub(b)
	test.That(t, ab.IsCanonicalized() && ab.IsRetesselated(), "flags of finished operands lost")
	test.T(t, len(ab.Polygons()), 12)

	araw := a.unionSub(raw)
	test.That(t, !araw.IsCanonicalized() && !araw.IsRetesselated(), "flags of raw operand ignored")
}

func TestMayOverlap(t *testing.T) {
	a := unitCube(v3.Vec{})
	tests := []struct {
		name  string
		other *Csg
		want  bool
	}{
		{"overlapping", unitCube(v3.Vec{X: 1}), true},
		{"touching", unitCube(v3.Vec{X: 2}), true},
		{"apart in x", unitCube(v3.Vec{X: 2.5}), false},
		{"apart in y", unitCube(v3.Vec{Y: -3}), false},
		{"apart in z", unitCube(v3.Vec{Z: 3}), false},
		{"empty", FromPolygons(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.T(t, a.MayOverlap(tt.other), tt.want)
			test.T(t, tt.other.MayOverlap(a), tt.want)
		})
	}
}

func TestResultProperties(t *testing.T) {
	s := Sphere(SphereOptions{})
	c := Cube(CubeOptions{Center: v3.Vec{X: 0.5}})
	for _, r := range []*Csg{s.Union(c), s.Subtract(c), s.Intersect(c)} {
		_, hasSphere := r.Properties()["sphere"]
		_, hasCube := r.Properties()["cube"]
		test.That(t, hasSphere && hasCube, "properties not merged", r.Properties())
	}
}

func TestTransforms(t *testing.T) {
	c := unitCube(v3.Vec{})

	moved := c.Translate(v3.Vec{X: 3, Y: -1})
	b := moved.Bounds()
	test.T(t, b.Min, v3.Vec{X: 2, Y: -2, Z: -1})
	test.T(t, b.Max, v3.Vec{X: 4, Y: 0, Z: 1})
	test.FloatDiff(t, moved.Volume(), 8, 1e-9)

	mirrored := c.Transform(sdf.Scale3d(v3.Vec{X: -1, Y: 1, Z: 1}))
	test.FloatDiff(t, mirrored.Volume(), 8, 1e-9)
	test.That(t, isMirror(sdf.Scale3d(v3.Vec{X: -1, Y: 1, Z: 1})), "mirror not detected")
	test.That(t, !isMirror(sdf.RotateZ(1)), "rotation reported as mirror")

	finished := c.Retesselated().Canonicalized()
	tm := finished.Translate(v3.Vec{X: 1})
	test.That(t, tm.IsRetesselated() && !tm.IsCanonicalized(), "wrong flags after transform")

	test.FloatDiff(t, c.Inverse().Volume(), -8, 1e-9)
	test.T(t, len(c.Triangles()), 12)
}

func TestInputsUnchanged(t *testing.T) {
	a := unitCube(v3.Vec{})
	b := unitCube(v3.Vec{X: 1, Y: 1, Z: 1})
	before := a.Polygons()[0].Vertices[0]
	a.Subtract(b)
	a.Union(b)
	a.Intersect(b)
	test.T(t, len(a.Polygons()), 6)
	test.T(t, a.Polygons()[0].Vertices[0], before)
	test.FloatDiff(t, a.Volume(), 8, 1e-9)
}

func TestLargeMeshBooleans(t *testing.T) {
	if testing.Short() {
		t.Skip("large mesh booleans take several seconds")
	}
	a := Sphere(SphereOptions{Center: v3.Vec{X: -0.5}, Resolution: 120})
	b := Sphere(SphereOptions{Center: v3.Vec{X: 0.5}, Resolution: 120})
	test.T(t, len(a.Polygons()), 7200)

	d := a.Subtract(b)
	i := a.Intersect(b)
	test.That(t, len(d.Polygons()) > 0 && len(i.Polygons()) > 0, "large boolean produced an empty result")
	test.That(t, d.IsCanonicalized() && d.IsRetesselated(), "large subtract not finished")

	// The two halves of a partition the sphere's volume.
	test.FloatDiff(t, d.Volume()+i.Volume(), a.Volume(), 1e-5)
	// Against the analytic lens of two unit spheres one radius apart.
	lens := math.Pi * 5 / 12
	test.FloatDiff(t, i.Volume(), lens, 1e-2)
}
