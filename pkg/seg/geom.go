package seg

import (
	"math"

	"github.com/zumolabs/zumo/pkg/gen"
)

// Rect is an axis-aligned bounding box in (x, y, w, h) form.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) Area() float64 {
	return r.W * r.H
}

func (r Rect) Union(b Rect) Rect {
	x1 := gen.Min(r.X, b.X)
	y1 := gen.Min(r.Y, b.Y)
	x2 := gen.Max(r.X+r.W, b.X+b.W)
	y2 := gen.Max(r.Y+r.H, b.Y+b.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// XYWH returns the box as the 4-element slice used in annotations.
func (r Rect) XYWH() []float64 {
	return []float64{r.X, r.Y, r.W, r.H}
}

// BoundsOf returns the bounding box of a point set.
func BoundsOf(pts []Point) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = gen.Min(minX, p.X)
		minY = gen.Min(minY, p.Y)
		maxX = gen.Max(maxX, p.X)
		maxY = gen.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// PolygonArea returns the area of a closed ring via the shoelace formula.
// Orientation does not matter.
func PolygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return gen.Abs(sum) / 2
}
