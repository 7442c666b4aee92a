package canon

import (
	"github.com/dhconnelly/rtreego"
)

const (
	minChildren = 25
	maxChildren = 50
)

// fuzzyEntry is one interned value with the coordinates it was interned at.
type fuzzyEntry[T any] struct {
	rect  rtreego.Rect
	seq   int
	tag   int
	value T
}

func (e *fuzzyEntry[T]) Bounds() rtreego.Rect {
	return e.rect
}

// fuzzyIndex interns values keyed by a coordinate vector. A lookup returns
// the earliest value whose coordinates are all within tolerance of the query.
type fuzzyIndex[T any] struct {
	tree      *rtreego.Rtree
	tolerance float64
	count     int
}

func newFuzzyIndex[T any](dim int, tolerance float64) *fuzzyIndex[T] {
	return &fuzzyIndex[T]{
		tree:      rtreego.NewTree(dim, minChildren, maxChildren),
		tolerance: tolerance,
	}
}

// lookupOrCreate returns the interned value near coords, or stores value
// under a fresh tag from tags when nothing is close enough.
func (x *fuzzyIndex[T]) lookupOrCreate(coords []float64, value T, tags *TagAllocator) (T, int) {
	rect := rtreego.Point(coords).ToRect(x.tolerance / 2)

	var best *fuzzyEntry[T]
	for _, hit := range x.tree.SearchIntersect(rect) {
		e := hit.(*fuzzyEntry[T])
		if best == nil || e.seq < best.seq {
			best = e
		}
	}
	if best != nil {
		return best.value, best.tag
	}

	e := &fuzzyEntry[T]{rect: rect, seq: x.count, tag: tags.Next(), value: value}
	x.count++
	x.tree.Insert(e)
	return e.value, e.tag
}

// Len returns the number of distinct values interned.
func (x *fuzzyIndex[T]) Len() int {
	return x.tree.Size()
}
