package seg

import "fmt"

// RLE is a run-length encoded binary mask in column-major order:
// Counts alternate between off and on runs, starting with the off run
// (so Counts[0] is 0 when the mask starts on). Size is [height, width].
type RLE struct {
	Counts []int  `json:"counts"`
	Size   [2]int `json:"size"`
}

// MaskRLE encodes a binary mask.
func MaskRLE(m *Mask) *RLE {
	rle := &RLE{Size: [2]int{m.Height, m.Width}}
	cur := false
	run := 0
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			v := m.At(x, y)
			if v == cur {
				run++
				continue
			}
			rle.Counts = append(rle.Counts, run)
			cur = v
			run = 1
		}
	}
	if run > 0 {
		rle.Counts = append(rle.Counts, run)
	}
	return rle
}

// Decode reconstructs the binary mask from its run-length encoding.
func (r *RLE) Decode() (*Mask, error) {
	height, width := r.Size[0], r.Size[1]
	m := NewMask(width, height)
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	if total != width*height {
		return nil, fmt.Errorf("RLE counts sum to %v, expected %v", total, width*height)
	}
	i := 0
	on := false
	for _, c := range r.Counts {
		for j := 0; j < c; j++ {
			if on {
				// column-major
				m.Set(i/height, i%height, true)
			}
			i++
		}
		on = !on
	}
	return m, nil
}
