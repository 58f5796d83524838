package seg

import "math"

func perpendicularDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / math.Hypot(dx, dy)
}

// douglasPeucker simplifies an open polyline, keeping both endpoints.
func douglasPeucker(pts []Point, tol float64) []Point {
	if len(pts) <= 2 {
		return pts
	}
	last := len(pts) - 1
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < last; i++ {
		if d := perpendicularDistance(pts[i], pts[0], pts[last]); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist <= tol {
		return []Point{pts[0], pts[last]}
	}
	left := douglasPeucker(pts[:maxIdx+1], tol)
	right := douglasPeucker(pts[maxIdx:], tol)
	out := make([]Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

// SimplifyPolygon reduces the vertex count of a closed ring with
// Douglas-Peucker, splitting the ring at the vertex farthest from the
// first so both halves keep stable anchors. If simplification would
// collapse the ring below a triangle, the original ring is returned.
func SimplifyPolygon(ring []Point, tol float64) []Point {
	if len(ring) < 4 {
		return ring
	}
	far := 0
	farDist := 0.0
	for i := 1; i < len(ring); i++ {
		d := math.Hypot(ring[i].X-ring[0].X, ring[i].Y-ring[0].Y)
		if d > farDist {
			farDist = d
			far = i
		}
	}
	if far == 0 {
		return ring
	}
	secondHalf := make([]Point, 0, len(ring)-far+1)
	secondHalf = append(secondHalf, ring[far:]...)
	secondHalf = append(secondHalf, ring[0])

	first := douglasPeucker(ring[:far+1], tol)
	second := douglasPeucker(secondHalf, tol)

	out := make([]Point, 0, len(first)+len(second)-2)
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	if len(out) < 3 {
		return ring
	}
	return out
}
