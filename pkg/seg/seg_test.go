package seg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zumolabs/zumo/pkg/zcolor"
)

var red = zcolor.RGB{1, 0, 0}

// fillRect turns on a w x h block with top-left corner at (x, y).
func fillRect(m *Mask, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			m.Set(xx, yy, true)
		}
	}
}

func paintRect(r *Raster, x, y, w, h int, c [3]uint8) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			r.SetRGB(xx, yy, c[0], c[1], c[2])
		}
	}
}

func TestMorphology(t *testing.T) {
	// Opening removes an isolated pixel ("salt")
	m := NewMask(10, 10)
	fillRect(m, 2, 2, 4, 4)
	m.Set(8, 8, true)
	opened := BinaryOpen(m)
	require.False(t, opened.At(8, 8))
	require.True(t, opened.At(3, 3))

	// Closing fills a single-pixel pit ("pepper")
	m = NewMask(10, 10)
	fillRect(m, 2, 2, 5, 5)
	m.Set(4, 4, false)
	closed := BinaryClose(m)
	require.True(t, closed.At(4, 4))
}

func TestFillHoles(t *testing.T) {
	// 6x6 block with a 2x2 hole punched out of the middle
	m := NewMask(10, 10)
	fillRect(m, 2, 2, 6, 6)
	m.Set(4, 4, false)
	m.Set(5, 4, false)
	m.Set(4, 5, false)
	m.Set(5, 5, false)

	filled := FillHoles(m)
	require.True(t, filled.At(4, 4))
	require.True(t, filled.At(5, 5))
	// Background stays background
	require.False(t, filled.At(0, 0))
	require.False(t, filled.At(9, 9))
}

func TestMaskRLE(t *testing.T) {
	// 2x3 mask (w=3, h=2), on at (0,0) and (2,1)
	m := NewMask(3, 2)
	m.Set(0, 0, true)
	m.Set(2, 1, true)
	rle := MaskRLE(m)
	require.Equal(t, [2]int{2, 3}, rle.Size)
	// Column-major: (0,0)=on, (0,1)=off, (1,0)=off, (1,1)=off, (2,0)=off, (2,1)=on
	// First count is 0 because the mask starts on.
	require.Equal(t, []int{0, 1, 4, 1}, rle.Counts)

	back, err := rle.Decode()
	require.NoError(t, err)
	require.Equal(t, m.Pix, back.Pix)

	// Counts that don't cover the mask are rejected
	bad := &RLE{Counts: []int{1, 2}, Size: [2]int{2, 3}}
	_, err = bad.Decode()
	require.Error(t, err)
}

func TestFindContoursSquare(t *testing.T) {
	m := NewMask(12, 12)
	fillRect(m, 3, 3, 3, 3)
	contours := FindContours(m, 0.5)
	require.Len(t, contours, 1)
	ring := contours[0]
	bounds := BoundsOf(ring)
	require.InDelta(t, 2.5, bounds.X, 1e-9)
	require.InDelta(t, 2.5, bounds.Y, 1e-9)
	require.InDelta(t, 3.0, bounds.W, 1e-9)
	require.InDelta(t, 3.0, bounds.H, 1e-9)
	// 3x3 midpoint contour is a square with beveled corners
	require.InDelta(t, 8.5, PolygonArea(ring), 1e-9)
}

func TestFindContoursTwoBlobs(t *testing.T) {
	m := NewMask(20, 20)
	fillRect(m, 2, 2, 4, 4)
	fillRect(m, 10, 10, 4, 4)
	contours := FindContours(m, 0.5)
	require.Len(t, contours, 2)
}

func TestSimplifyPolygon(t *testing.T) {
	// Square with collinear midpoints: simplification keeps the corners.
	ring := []Point{
		{0, 0}, {2, 0}, {4, 0},
		{4, 2}, {4, 4},
		{2, 4}, {0, 4},
		{0, 2},
	}
	simple := SimplifyPolygon(ring, 0.5)
	require.True(t, len(simple) <= 6)
	require.InDelta(t, 16.0, PolygonArea(simple), 1e-9)
	require.Equal(t, BoundsOf(ring), BoundsOf(simple))

	// A triangle never collapses further
	tri := []Point{{0, 0}, {5, 0}, {0, 5}}
	require.Equal(t, tri, SimplifyPolygon(tri, 100))
}

// The midpoint contour of a solid block is a rectangle with half-pixel
// corner bevels. The production tolerance must keep those bevel
// vertices: collapsing them pulls the polygon inside the blob and
// under-reports bbox and area.
func TestSimplifyKeepsCornerBevels(t *testing.T) {
	octagon := []Point{
		{2, 1.5}, {4, 1.5}, {4.5, 2}, {4.5, 4},
		{4, 4.5}, {2, 4.5}, {1.5, 4}, {1.5, 2},
	}
	simple := SimplifyPolygon(octagon, simplifyTolerance)
	require.Len(t, simple, 8)
	require.InDelta(t, 8.5, PolygonArea(simple), 1e-9)
	require.Equal(t, BoundsOf(octagon), BoundsOf(simple))

	// Collinear midpoints on straight edges still collapse.
	withMid := []Point{
		{2, 1.5}, {3, 1.5}, {4, 1.5}, {4.5, 2}, {4.5, 3}, {4.5, 4},
		{4, 4.5}, {3, 4.5}, {2, 4.5}, {1.5, 4}, {1.5, 3}, {1.5, 2},
	}
	simple = SimplifyPolygon(withMid, simplifyTolerance)
	require.Len(t, simple, 8)
	require.InDelta(t, 8.5, PolygonArea(simple), 1e-9)
}

// A 10x10 black raster with a 3x3 red square at (2,2) must extract to a
// single fragment with bbox (2,2,3,3) and area 9, within contour
// tolerance.
func TestExtractSquare(t *testing.T) {
	img := NewRaster(10, 10)
	paintRect(img, 2, 2, 3, 3, [3]uint8{255, 0, 0})

	opt := NewExtractOptions()
	// A 3-pixel blob is at the noise-suppression limit; extract it raw.
	opt.RemoveSalt = false
	opt.Colors = []zcolor.RGB{red}
	frags, err := Extract(img, opt)
	require.NoError(t, err)
	require.Len(t, frags, 1)

	f := frags[0]
	require.Equal(t, red, f.Color)
	require.InDelta(t, 2, f.Bbox[0], 1)
	require.InDelta(t, 2, f.Bbox[1], 1)
	require.InDelta(t, 3, f.Bbox[2], 1)
	require.InDelta(t, 3, f.Bbox[3], 1)
	require.InDelta(t, 9, f.Area, 1)
	require.Len(t, f.Segmentation, 1)
	require.Len(t, f.Bboxes, 1)
	require.Len(t, f.Areas, 1)
}

func TestExtractMultiBlob(t *testing.T) {
	img := NewRaster(24, 24)
	paintRect(img, 2, 2, 5, 5, [3]uint8{255, 0, 0})
	paintRect(img, 14, 14, 5, 5, [3]uint8{255, 0, 0})

	frags, err := Extract(img, NewExtractOptions())
	require.NoError(t, err)
	require.Len(t, frags, 1)
	f := frags[0]
	require.Len(t, f.Segmentation, 2)
	require.Len(t, f.Bboxes, 2)
	// Union bbox spans both blobs
	require.InDelta(t, 2, f.Bbox[0], 1)
	require.InDelta(t, 17, f.Bbox[2], 1.5)
	// Total area is the sum of the per-blob areas
	require.InDelta(t, f.Areas[0]+f.Areas[1], f.Area, 1e-9)
}

func TestExtractFloatAndRLE(t *testing.T) {
	img := NewRaster(20, 10)
	paintRect(img, 4, 2, 5, 5, [3]uint8{0, 255, 0})

	opt := NewExtractOptions()
	opt.RemoveSalt = false
	opt.RLE = true
	opt.Float = true
	frags, err := Extract(img, opt)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	f := frags[0]

	// Normalized bbox divides x by width and y by height
	require.InDelta(t, f.Bbox[0]/20, f.BboxFloat[0], 1e-9)
	require.InDelta(t, f.Bbox[1]/10, f.BboxFloat[1], 1e-9)
	require.InDelta(t, f.Bbox[2]/20, f.BboxFloat[2], 1e-9)
	require.InDelta(t, f.Bbox[3]/10, f.BboxFloat[3], 1e-9)
	require.InDelta(t, f.Area/200, f.AreaFloat, 1e-9)

	// RLE is of the padded mask
	require.NotNil(t, f.SegmentationRLE)
	require.Equal(t, [2]int{12, 22}, f.SegmentationRLE.Size)
	mask, err := f.SegmentationRLE.Decode()
	require.NoError(t, err)
	require.Equal(t, 25, mask.Count())
}

// Salt (a lone pixel) produces no contours after noise suppression, so
// the color is skipped entirely rather than erroring.
func TestExtractSaltOnly(t *testing.T) {
	img := NewRaster(10, 10)
	img.SetRGB(5, 5, 0, 0, 255)

	frags, err := Extract(img, NewExtractOptions())
	require.NoError(t, err)
	require.Len(t, frags, 0)
}

func TestExtractTooManyColors(t *testing.T) {
	img := NewRaster(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGB(x, y, uint8(x*16), uint8(y*16), 0)
		}
	}
	opt := NewExtractOptions()
	opt.MaxColors = 10
	_, err := Extract(img, opt)
	require.Error(t, err)
}

func TestRasterRoundTrip(t *testing.T) {
	img := NewRaster(4, 3)
	img.SetRGB(1, 2, 10, 20, 30)
	r, g, b := img.RGBAt(1, 2)
	require.Equal(t, uint8(10), r)
	require.Equal(t, uint8(20), g)
	require.Equal(t, uint8(30), b)
	require.Equal(t, zcolor.IRGBToRGB(10, 20, 30), img.ColorAt(1, 2))

	colors, err := img.UniqueColors(10)
	require.NoError(t, err)
	require.Len(t, colors, 2) // background + one color
}
