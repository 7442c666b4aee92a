package bsp

import (
	"testing"

	"github.com/chazu/polycsg/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
	"github.com/tdewolff/test"
)

// box returns the six outward-facing quads of an axis-aligned cube.
func box(center v3.Vec, r float64) []*geom.Polygon {
	faces := [][4]int{
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
	}
	sign := func(i, bit int) float64 {
		if i&bit != 0 {
			return 1
		}
		return -1
	}
	return lo.Map(faces, func(face [4]int, _ int) *geom.Polygon {
		vertices := lo.Map(face[:], func(i int, _ int) v3.Vec {
			return v3.Vec{
				X: center.X + r*sign(i, 1),
				Y: center.Y + r*sign(i, 2),
				Z: center.Z + r*sign(i, 4),
			}
		})
		return geom.NewPolygon(vertices, nil)
	})
}

func totalArea(polys []*geom.Polygon) float64 {
	return lo.SumBy(polys, func(p *geom.Polygon) float64 { return p.Area() })
}

// checkLiveAncestry walks the arena and fails if a live polygon hangs below a
// removed node.
func checkLiveAncestry(t *testing.T, tree *Tree) {
	t.Helper()
	a := tree.polygons.arena
	for id, e := range a.entries {
		if e.removed || e.polygon == nil {
			continue
		}
		for p := e.parent; p != noParent; p = a.entries[p].parent {
			if a.entries[p].removed {
				t.Errorf("live node %d has removed ancestor %d", id, p)
			}
		}
	}
}

func TestTreeRoundTrip(t *testing.T) {
	polys := box(v3.Vec{}, 1)
	tree := NewTree(polys)
	got := tree.AllPolygons()
	test.T(t, len(got), len(polys))
	for i := range got {
		test.That(t, got[i] == polys[i], "polygon", i, "was not returned as-is")
	}
}

func TestTreeEmpty(t *testing.T) {
	tree := NewTree(nil)
	test.T(t, len(tree.AllPolygons()), 0)
	_, ok := tree.RootNode().Plane()
	test.That(t, !ok, "empty tree must have no root plane")
}

func TestTreeDoubleInvert(t *testing.T) {
	polys := box(v3.Vec{}, 1)
	tree := NewTree(polys)
	root := tree.RootNode()
	plane, _ := root.Plane()
	front, back := root.Front(), root.Back()

	tree.Invert()
	flipped, _ := root.Plane()
	test.T(t, flipped, plane.Flipped())
	test.That(t, root.Front() == back && root.Back() == front, "children not swapped")
	test.T(t, tree.AllPolygons()[0].Plane, polys[0].Plane.Flipped())

	tree.Invert()
	restored, _ := root.Plane()
	test.T(t, restored, plane)
	test.That(t, root.Front() == front && root.Back() == back, "children not restored")
	for i, p := range tree.AllPolygons() {
		test.T(t, p.Vertices, polys[i].Vertices)
		test.T(t, p.Plane, polys[i].Plane)
	}
}

func TestTreeClipTo(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []*geom.Polygon
		coplanar  bool
		wantCount int
		wantArea  float64
	}{
		{"disjoint", box(v3.Vec{}, 1), box(v3.Vec{X: 10}, 1), false, 6, 24},
		{"contained", box(v3.Vec{}, 0.5), box(v3.Vec{}, 1), false, 0, 0},
		{"half overlap keeps coplanar faces", box(v3.Vec{}, 1), box(v3.Vec{X: 1}, 1), false, 5, 20},
		{"half overlap drops coplanar faces", box(v3.Vec{}, 1), box(v3.Vec{X: 1}, 1), true, 5, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NewTree(tt.a), NewTree(tt.b)
			a.ClipTo(b, tt.coplanar)
			got := a.AllPolygons()
			test.T(t, len(got), tt.wantCount)
			test.Float(t, totalArea(got), tt.wantArea)
			checkLiveAncestry(t, a)
			// The clipping tree is read-only.
			test.T(t, len(b.AllPolygons()), len(tt.b))
		})
	}
}

func TestTreeAddPolygonsAfterClip(t *testing.T) {
	a := NewTree(box(v3.Vec{}, 1))
	b := NewTree(box(v3.Vec{X: 10}, 1))
	a.AddPolygons(b.AllPolygons())
	test.T(t, len(a.AllPolygons()), 12)
	test.Float(t, totalArea(a.AllPolygons()), 48)
}
