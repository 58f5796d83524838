package saver

import "github.com/zumolabs/zumo/pkg/gen"

// ClipBbox clamps an x,y,w,h box to image bounds. With normalized
// coordinates the bounds are [0,1] regardless of width/height.
func ClipBbox(bbox []float64, width, height float64, normalized bool) []float64 {
	if len(bbox) != 4 {
		return bbox
	}
	maxX, maxY := width, height
	if normalized {
		maxX, maxY = 1, 1
	}
	x := gen.Clamp(bbox[0], 0, maxX)
	y := gen.Clamp(bbox[1], 0, maxY)
	w := gen.Clamp(bbox[2], 0, maxX-x)
	h := gen.Clamp(bbox[3], 0, maxY-y)
	return []float64{x, y, w, h}
}

// ClipCoordinateList clamps a flattened x,y polygon to image bounds.
func ClipCoordinateList(coords []float64, width, height float64, normalized bool) []float64 {
	maxX, maxY := width, height
	if normalized {
		maxX, maxY = 1, 1
	}
	out := make([]float64, len(coords))
	for i := 0; i+1 < len(coords); i += 2 {
		out[i] = gen.Clamp(coords[i], 0, maxX)
		out[i+1] = gen.Clamp(coords[i+1], 0, maxY)
	}
	return out
}
