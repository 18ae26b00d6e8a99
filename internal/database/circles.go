package database

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

type circle struct {
	center    ir.Point
	hasCenter bool
	points    *roaring.Bitmap
}

// circleStore keeps circles as growing point sets. Two circles are the
// same when they share a point and a known center, or share three points
// without conflicting centers.
type circleStore struct {
	circles []*circle
}

func bitmapOf(pts []ir.Point) *roaring.Bitmap {
	bm := roaring.New()
	for _, p := range pts {
		bm.Add(uint32(p))
	}
	return bm
}

func (s *circleStore) live() []*circle {
	out := make([]*circle, 0, len(s.circles))
	for _, c := range s.circles {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (s *circleStore) containsAll(pts []ir.Point) bool {
	want := bitmapOf(pts)
	for _, c := range s.circles {
		if c != nil && want.AndCardinality(c.points) == want.GetCardinality() {
			return true
		}
	}
	return false
}

func (s *circleStore) containsCentered(center ir.Point, pts []ir.Point) bool {
	want := bitmapOf(pts)
	for _, c := range s.circles {
		if c != nil && c.hasCenter && c.center == center &&
			want.AndCardinality(c.points) == want.GetCardinality() {
			return true
		}
	}
	return false
}

// circleOf returns the points of the first circle holding every point.
func (s *circleStore) circleOf(pts []ir.Point) ([]ir.Point, bool) {
	want := bitmapOf(pts)
	for _, c := range s.circles {
		if c != nil && want.AndCardinality(c.points) == want.GetCardinality() {
			return bitmapPoints(c.points), true
		}
	}
	return nil, false
}

func (s *circleStore) add(center ir.Point, hasCenter bool, pts []ir.Point) {
	s.circles = append(s.circles, &circle{center: center, hasCenter: hasCenter, points: bitmapOf(pts)})
	s.close()
}

func mergeable(a, b *circle) bool {
	shared := a.points.AndCardinality(b.points)
	if a.hasCenter && b.hasCenter {
		if a.center != b.center {
			return false
		}
		return shared >= 1
	}
	return shared >= 3
}

// close merges circles until no mergeable pair remains. The survivor is
// the lower slot.
func (s *circleStore) close() {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(s.circles); i++ {
			a := s.circles[i]
			if a == nil {
				continue
			}
			for j := i + 1; j < len(s.circles); j++ {
				b := s.circles[j]
				if b == nil || !mergeable(a, b) {
					continue
				}
				a.points.Or(b.points)
				if !a.hasCenter && b.hasCenter {
					a.center, a.hasCenter = b.center, true
				}
				s.circles[j] = nil
				changed = true
			}
		}
	}
	s.compact()
}

func (s *circleStore) compact() {
	s.circles = s.live()
}

func bitmapPoints(bm *roaring.Bitmap) []ir.Point {
	out := make([]ir.Point, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ir.Point(it.Next()))
	}
	return out
}
