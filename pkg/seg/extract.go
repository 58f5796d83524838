package seg

import (
	"github.com/zumolabs/zumo/pkg/zcolor"
)

// Contours are traced at the midpoint between on and off pixel centers:
// a solid 3x3 blob yields a bbox of width 3 and an area of 9 give or
// take the corner bevels.
const contourLevel = 0.5

// Polygon simplification tolerance, in pixels. Collinear runs along
// straight edges collapse at any positive tolerance; it must stay below
// the ~0.35px deviation of the half-pixel corner bevels, or
// simplification eats the blob's corners and under-reports bbox and
// area.
const simplifyTolerance = 0.25

// ExtractOptions control what Extract computes per color.
type ExtractOptions struct {
	// RemoveSalt applies a binary opening then closing to each color mask
	// before contour tracing, suppressing sub-pixel render noise. Note
	// that the opening also erases blobs thinner than 3 pixels.
	RemoveSalt bool
	// RLE additionally emits the column-major run-length encoding of the
	// (padded) binary mask.
	RLE bool
	// Float additionally emits coordinates normalized to [0,1]
	// (x divided by width, y by height).
	Float bool
	// MaxColors guards against non-categorical rasters: Extract fails if
	// the image has more unique colors than this.
	MaxColors int
	// Colors restricts extraction to the given expected colors.
	// When empty, every unique non-background color is extracted.
	Colors []zcolor.RGB
}

func NewExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		RemoveSalt: true,
		MaxColors:  1000,
	}
}

// Fragment is the geometry extracted for one color of a segmentation
// raster. Bbox and Area cover the union of all disconnected blobs of
// that color; Bboxes, Areas and Segmentation keep the per-blob values.
type Fragment struct {
	Color        zcolor.RGB
	Segmentation [][]float64 // one flattened x,y ring per blob
	Bbox         []float64   // x, y, w, h
	Area         float64
	Bboxes       [][]float64
	Areas        []float64

	SegmentationRLE *RLE

	SegmentationFloat [][]float64
	BboxFloat         []float64
	AreaFloat         float64
	BboxesFloat       [][]float64
	AreasFloat        []float64
}

// Extract converts a segmentation raster into one Fragment per color.
// Colors whose mask produces no contours (all salt) are skipped; that is
// not an error. The background color (black) is never extracted.
func Extract(img *Raster, opt *ExtractOptions) ([]Fragment, error) {
	if opt == nil {
		opt = NewExtractOptions()
	}
	var colors [][3]uint8
	if len(opt.Colors) > 0 {
		for _, c := range opt.Colors {
			r, g, b := zcolor.RGBToIRGB(c)
			colors = append(colors, [3]uint8{uint8(r), uint8(g), uint8(b)})
		}
	} else {
		var err error
		colors, err = img.UniqueColors(opt.MaxColors)
		if err != nil {
			return nil, err
		}
	}

	var fragments []Fragment
	for _, c := range colors {
		if c == [3]uint8{0, 0, 0} {
			continue
		}
		frag, ok := extractColor(img, c, opt)
		if ok {
			fragments = append(fragments, frag)
		}
	}
	return fragments, nil
}

func extractColor(img *Raster, c [3]uint8, opt *ExtractOptions) (Fragment, bool) {
	mask := img.MaskOf(c)
	if opt.RemoveSalt {
		mask = BinaryClose(BinaryOpen(mask))
	}
	padded := mask.Pad(1)

	frag := Fragment{
		Color: zcolor.IRGBToRGB(int(c[0]), int(c[1]), int(c[2])),
	}
	if opt.RLE {
		frag.SegmentationRLE = MaskRLE(padded)
	}

	contours := FindContours(FillHoles(padded), contourLevel)
	if len(contours) == 0 {
		return Fragment{}, false
	}

	width := float64(img.Width)
	height := float64(img.Height)
	union := Rect{}
	for i, ring := range contours {
		// Subtract the padding pixel
		for j := range ring {
			ring[j].X -= 1
			ring[j].Y -= 1
		}
		ring = SimplifyPolygon(ring, simplifyTolerance)

		flat := make([]float64, 0, len(ring)*2)
		for _, p := range ring {
			flat = append(flat, p.X, p.Y)
		}
		frag.Segmentation = append(frag.Segmentation, flat)

		bounds := BoundsOf(ring)
		area := PolygonArea(ring)
		frag.Bboxes = append(frag.Bboxes, bounds.XYWH())
		frag.Areas = append(frag.Areas, area)
		frag.Area += area
		if i == 0 {
			union = bounds
		} else {
			union = union.Union(bounds)
		}

		if opt.Float {
			flatF := make([]float64, 0, len(flat))
			for _, p := range ring {
				flatF = append(flatF, p.X/width, p.Y/height)
			}
			frag.SegmentationFloat = append(frag.SegmentationFloat, flatF)
			frag.BboxesFloat = append(frag.BboxesFloat, normalizedBbox(bounds, width, height))
			frag.AreasFloat = append(frag.AreasFloat, area/(width*height))
		}
	}
	frag.Bbox = union.XYWH()
	if opt.Float {
		frag.BboxFloat = normalizedBbox(union, width, height)
		frag.AreaFloat = frag.Area / (width * height)
	}
	return frag, true
}

func normalizedBbox(r Rect, width, height float64) []float64 {
	return []float64{r.X / width, r.Y / height, r.W / width, r.H / height}
}
