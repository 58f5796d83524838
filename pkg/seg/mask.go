package seg

// Mask is a binary image, row-major.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At returns the pixel value, treating everything outside the mask as off.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

func (m *Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of on pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Pad returns a copy of the mask with n off pixels added on every side.
// Blobs that touch the image border then produce closed contours.
func (m *Mask) Pad(n int) *Mask {
	out := NewMask(m.Width+2*n, m.Height+2*n)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				out.Set(x+n, y+n, true)
			}
		}
	}
	return out
}

// Cross-shaped structuring element (4-connectivity), matching the
// default footprint of the morphology this pipeline was tuned against.
var crossOffsets = [][2]int{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// BinaryErode turns off every pixel whose cross neighborhood is not
// entirely on.
func BinaryErode(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			on := true
			for _, d := range crossOffsets {
				if !m.At(x+d[0], y+d[1]) {
					on = false
					break
				}
			}
			out.Set(x, y, on)
		}
	}
	return out
}

// BinaryDilate turns on every pixel with at least one on pixel in its
// cross neighborhood.
func BinaryDilate(m *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			on := false
			for _, d := range crossOffsets {
				if m.At(x+d[0], y+d[1]) {
					on = true
					break
				}
			}
			out.Set(x, y, on)
		}
	}
	return out
}

// BinaryOpen is erosion followed by dilation: suppresses specks smaller
// than the structuring element ("salt").
func BinaryOpen(m *Mask) *Mask {
	return BinaryDilate(BinaryErode(m))
}

// BinaryClose is dilation followed by erosion: fills pits smaller than
// the structuring element ("pepper").
func BinaryClose(m *Mask) *Mask {
	return BinaryErode(BinaryDilate(m))
}

// FillHoles turns on every off region that is not connected to the mask
// border, so only external contours remain.
func FillHoles(m *Mask) *Mask {
	reach := NewMask(m.Width, m.Height)
	var queue [][2]int
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
			return
		}
		if m.At(x, y) || reach.At(x, y) {
			return
		}
		reach.Set(x, y, true)
		queue = append(queue, [2]int{x, y})
	}
	for x := 0; x < m.Width; x++ {
		push(x, 0)
		push(x, m.Height-1)
	}
	for y := 0; y < m.Height; y++ {
		push(0, y)
		push(m.Width-1, y)
	}
	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		push(p[0]-1, p[1])
		push(p[0]+1, p[1])
		push(p[0], p[1]-1)
		push(p[0], p[1]+1)
	}
	out := NewMask(m.Width, m.Height)
	for i := range m.Pix {
		out.Pix[i] = m.Pix[i] || !reach.Pix[i]
	}
	return out
}
