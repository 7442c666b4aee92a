// Package retess merges the coplanar fragments left behind by boolean
// operations back into larger convex polygons.
package retess

import (
	"math"
	"slices"

	"github.com/chazu/polycsg/pkg/geom"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Epsilon is the 2D distance below which scanline corners are joined.
const Epsilon = 1e-5

// yBinningFactor snaps y coordinates closer than about 1e-6 onto one row.
const yBinningFactor = 10 / Epsilon

// basis maps points of a plane to 2D and back.
type basis struct {
	u, v, origin v3.Vec
}

func newBasis(p geom.Plane) basis {
	right := nonParallel(p.Normal)
	v := p.Normal.Cross(right).Normalize()
	u := v.Cross(p.Normal)
	return basis{u: u, v: v, origin: p.Normal.MulScalar(p.W)}
}

// nonParallel returns the unit axis along n's smallest component.
func nonParallel(n v3.Vec) v3.Vec {
	x, y, z := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case x <= y && x <= z:
		return v3.Vec{X: 1}
	case y <= x && y <= z:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}

func (b basis) to2D(p v3.Vec) v2.Vec {
	return v2.Vec{X: p.Dot(b.u), Y: p.Dot(b.v)}
}

func (b basis) to3D(p v2.Vec) v3.Vec {
	return b.origin.Add(b.u.MulScalar(p.X)).Add(b.v.MulScalar(p.Y))
}

// interpolateX returns the x coordinate of segment p1-p2 at height y,
// clamped to the segment.
func interpolateX(p1, p2 v2.Vec, y float64) float64 {
	f1 := y - p1.Y
	f2 := p2.Y - p1.Y
	if f2 < 0 {
		f1, f2 = -f1, -f2
	}
	var t float64
	switch {
	case f1 <= 0:
		t = 0
	case f1 >= f2:
		t = 1
	case f2 < 1e-10:
		t = 0.5
	default:
		t = f1 / f2
	}
	return p1.X + t*(p2.X-p1.X)
}

func distance(a, b v2.Vec) float64 {
	return a.Sub(b).Length()
}

// directionX is the x component of the unit vector from a to b. It is NaN
// for a zero-length segment.
func directionX(a, b v2.Vec) float64 {
	d := b.Sub(a)
	return d.X / d.Length()
}

// activePolygon is a source polygon crossing the current scanline.
type activePolygon struct {
	index       int
	left, right int
	topLeft     v2.Vec
	topRight    v2.Vec
	bottomLeft  v2.Vec
	bottomRight v2.Vec
}

// outPolygon collects the outline of one merged polygon.
type outPolygon struct {
	left, right []v2.Vec
}

// rowPolygon is a trapezoid between two scanlines.
type rowPolygon struct {
	topLeft, topRight       v2.Vec
	bottomLeft, bottomRight v2.Vec
	leftDirX, rightDirX     float64

	out                           *outPolygon
	leftContinues, rightContinues bool
}

// insertSorted inserts ap keeping active ordered by the x of the left edge
// at height y.
func insertSorted(active []*activePolygon, ap *activePolygon, y float64) []*activePolygon {
	x := interpolateX(ap.topLeft, ap.bottomLeft, y)
	low, high := 0, len(active)
	for high > low {
		mid := (low + high) / 2
		if x > interpolateX(active[mid].topLeft, active[mid].bottomLeft, y) {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return slices.Insert(active, low, ap)
}

// Coplanar merges polygons that lie on one plane and share metadata into
// convex polygons covering the same area. The plane and metadata of the first
// polygon are used for the output. Polygons collapsing to a line in the
// plane's 2D basis are dropped.
func Coplanar(polygons []*geom.Polygon) []*geom.Polygon {
	if len(polygons) == 0 {
		return nil
	}
	plane := polygons[0].Plane
	shared := polygons[0].Shared
	b := newBasis(plane)

	vertices2d := make([][]v2.Vec, len(polygons))
	topIndex := make([]int, len(polygons))
	topYToPolygons := make(map[float64][]int)
	yToPolygons := make(map[float64]map[int]bool)
	yBins := make(map[float64]float64)

	for i, p := range polygons {
		n := len(p.Vertices)
		verts := make([]v2.Vec, 0, n)
		minIndex := -1
		var minY, maxY float64
		for j, v := range p.Vertices {
			pos := b.to2D(v)
			bin := math.Floor(pos.Y * yBinningFactor)
			if y, ok := yBins[bin]; ok {
				pos.Y = y
			} else if y, ok := yBins[bin+1]; ok {
				pos.Y = y
			} else if y, ok := yBins[bin-1]; ok {
				pos.Y = y
			} else {
				yBins[bin] = pos.Y
			}
			verts = append(verts, pos)

			if j == 0 || pos.Y < minY {
				minY = pos.Y
				minIndex = j
			}
			if j == 0 || pos.Y > maxY {
				maxY = pos.Y
			}
			if yToPolygons[pos.Y] == nil {
				yToPolygons[pos.Y] = make(map[int]bool)
			}
			yToPolygons[pos.Y][i] = true
		}
		if n > 0 {
			if minY >= maxY {
				// Flat in y; its rows still count but it covers nothing.
				verts = nil
				n = 0
				minIndex = -1
			} else {
				topYToPolygons[minY] = append(topYToPolygons[minY], i)
			}
		}
		vertices2d[i] = lo.Reverse(verts)
		topIndex[i] = n - minIndex - 1
	}

	ys := lo.Keys(yToPolygons)
	slices.Sort(ys)

	var (
		active  []*activePolygon
		prevRow []*rowPolygon
		result  []*geom.Polygon
	)
	for yi, y := range ys {
		withCorner := yToPolygons[y]

		// Advance or retire polygons with a corner on this scanline.
		for ai := 0; ai < len(active); ai++ {
			ap := active[ai]
			if !withCorner[ap.index] {
				continue
			}
			verts := vertices2d[ap.index]
			n := len(verts)
			newLeft, newRight := ap.left, ap.right
			for {
				next := (newLeft + 1) % n
				if verts[next].Y != y {
					break
				}
				newLeft = next
			}
			if next := (newRight - 1 + n) % n; verts[next].Y == y {
				newRight = next
			}
			if newLeft != ap.left && newLeft == newRight {
				active = slices.Delete(active, ai, ai+1)
				ai--
				continue
			}
			ap.left, ap.right = newLeft, newRight
			ap.topLeft, ap.topRight = verts[newLeft], verts[newRight]
			ap.bottomLeft = verts[(newLeft+1)%n]
			ap.bottomRight = verts[(newRight-1+n)%n]
		}

		var nextY float64
		if yi == len(ys)-1 {
			active = nil
		} else {
			nextY = ys[yi+1]
			middleY := 0.5 * (y + nextY)
			for _, pi := range topYToPolygons[y] {
				verts := vertices2d[pi]
				n := len(verts)
				top := topIndex[pi]
				// The top may be a horizontal edge; find both of its ends.
				topLeft := top
				for {
					i := (topLeft + 1) % n
					if verts[i].Y != y || i == top {
						break
					}
					topLeft = i
				}
				topRight := top
				for {
					i := (topRight - 1 + n) % n
					if verts[i].Y != y || i == topLeft {
						break
					}
					topRight = i
				}
				ap := &activePolygon{
					index:       pi,
					left:        topLeft,
					right:       topRight,
					topLeft:     verts[topLeft],
					topRight:    verts[topRight],
					bottomLeft:  verts[(topLeft+1)%n],
					bottomRight: verts[(topRight-1+n)%n],
				}
				active = insertSorted(active, ap, middleY)
			}
		}

		// Cut the active polygons into trapezoids between y and nextY,
		// joining neighbours that touch.
		var row []*rowPolygon
		for _, ap := range active {
			rp := &rowPolygon{
				topLeft:     v2.Vec{X: interpolateX(ap.topLeft, ap.bottomLeft, y), Y: y},
				topRight:    v2.Vec{X: interpolateX(ap.topRight, ap.bottomRight, y), Y: y},
				bottomLeft:  v2.Vec{X: interpolateX(ap.topLeft, ap.bottomLeft, nextY), Y: nextY},
				bottomRight: v2.Vec{X: interpolateX(ap.topRight, ap.bottomRight, nextY), Y: nextY},
			}
			rp.leftDirX = directionX(rp.topLeft, rp.bottomLeft)
			rp.rightDirX = directionX(rp.bottomRight, rp.topRight)
			if len(row) > 0 {
				prev := row[len(row)-1]
				if distance(rp.topLeft, prev.topRight) < Epsilon && distance(rp.bottomLeft, prev.bottomRight) < Epsilon {
					rp.topLeft = prev.topLeft
					rp.leftDirX = prev.leftDirX
					rp.bottomLeft = prev.bottomLeft
					row = row[:len(row)-1]
				}
			}
			row = append(row, rp)
		}

		if yi > 0 {
			continued := make([]bool, len(prevRow))
			matched := make([]bool, len(prevRow))
			for _, rp := range row {
				for ii, prev := range prevRow {
					if matched[ii] {
						continue
					}
					if distance(prev.bottomLeft, rp.topLeft) >= Epsilon || distance(prev.bottomRight, rp.topRight) >= Epsilon {
						continue
					}
					matched[ii] = true
					d1 := rp.leftDirX - prev.leftDirX
					d2 := rp.rightDirX - prev.rightDirX
					leftContinues := math.Abs(d1) < Epsilon
					rightContinues := math.Abs(d2) < Epsilon
					if (leftContinues || d1 >= 0) && (rightContinues || d2 >= 0) {
						rp.out = prev.out
						rp.leftContinues = leftContinues
						rp.rightContinues = rightContinues
						continued[ii] = true
					}
					break
				}
			}
			for ii, prev := range prevRow {
				if continued[ii] {
					continue
				}
				out := prev.out
				out.right = append(out.right, prev.bottomRight)
				if distance(prev.bottomRight, prev.bottomLeft) > Epsilon {
					out.left = append(out.left, prev.bottomLeft)
				}
				points := slices.Concat(out.right, lo.Reverse(out.left))
				vertices := lo.Map(points, func(p v2.Vec, _ int) v3.Vec { return b.to3D(p) })
				result = append(result, geom.NewPolygonWithPlane(vertices, shared, plane))
			}
		}

		for _, rp := range row {
			if rp.out == nil {
				rp.out = &outPolygon{left: []v2.Vec{rp.topLeft}}
				if distance(rp.topLeft, rp.topRight) > Epsilon {
					rp.out.right = append(rp.out.right, rp.topRight)
				}
				continue
			}
			if !rp.leftContinues {
				rp.out.left = append(rp.out.left, rp.topLeft)
			}
			if !rp.rightContinues {
				rp.out.right = append(rp.out.right, rp.topRight)
			}
		}
		prevRow = row
	}
	return result
}
