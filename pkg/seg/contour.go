package seg

// Point is a contour vertex in (x, y) pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// FindContours traces the iso-contours of a binary mask at the given
// level using marching squares with linear interpolation. Contours are
// returned as closed rings (first point not repeated). The mask must be
// padded so no blob touches the border, otherwise chains can stay open
// and are discarded.
//
// Each 2x2 cell of pixel centers contributes directed segments chosen so
// the on-region lies to the left of the walking direction; stitching then
// reduces to following a from->to map. Saddle cells (two diagonal on
// corners) are resolved as disconnected.
func FindContours(m *Mask, level float64) [][]Point {
	val := func(x, y int) float64 {
		if m.At(x, y) {
			return 1
		}
		return 0
	}
	interp := func(v0, v1 float64) float64 {
		return (level - v0) / (v1 - v0)
	}

	next := map[Point]Point{}
	var starts []Point
	add := func(from, to Point) {
		next[from] = to
		starts = append(starts, from)
	}

	for r := 0; r < m.Height-1; r++ {
		for c := 0; c < m.Width-1; c++ {
			tl := val(c, r)
			tr := val(c+1, r)
			bl := val(c, r+1)
			br := val(c+1, r+1)
			idx := 0
			if tl > level {
				idx |= 8
			}
			if tr > level {
				idx |= 4
			}
			if br > level {
				idx |= 2
			}
			if bl > level {
				idx |= 1
			}
			if idx == 0 || idx == 15 {
				continue
			}
			// Crossing points on the four cell edges. Only the ones named
			// by the case below are real crossings.
			top := Point{float64(c) + interp(tl, tr), float64(r)}
			bottom := Point{float64(c) + interp(bl, br), float64(r) + 1}
			left := Point{float64(c), float64(r) + interp(tl, bl)}
			right := Point{float64(c) + 1, float64(r) + interp(tr, br)}
			switch idx {
			case 1:
				add(bottom, left)
			case 2:
				add(right, bottom)
			case 3:
				add(right, left)
			case 4:
				add(top, right)
			case 5:
				add(top, right)
				add(bottom, left)
			case 6:
				add(top, bottom)
			case 7:
				add(top, left)
			case 8:
				add(left, top)
			case 9:
				add(bottom, top)
			case 10:
				add(left, top)
				add(right, bottom)
			case 11:
				add(right, top)
			case 12:
				add(left, right)
			case 13:
				add(bottom, right)
			case 14:
				add(left, bottom)
			}
		}
	}

	visited := map[Point]bool{}
	var contours [][]Point
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var ring []Point
		p := start
		closed := false
		for !visited[p] {
			visited[p] = true
			ring = append(ring, p)
			q, ok := next[p]
			if !ok {
				break
			}
			p = q
			if p == start {
				closed = true
				break
			}
		}
		if closed && len(ring) >= 3 {
			contours = append(contours, ring)
		}
	}
	return contours
}
