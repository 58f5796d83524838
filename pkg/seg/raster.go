package seg

// Package seg extracts geometric annotations (bounding boxes, polygon
// contours, RLE masks) from segmentation rasters, where each distinct
// pixel color denotes one object instance or category.

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"

	"github.com/zumolabs/zumo/pkg/zcolor"
)

// Raster is an in-memory H x W x 3 pixel buffer, row-major, 8 bits per
// channel. Segmentation rasters are categorical: every pixel is exactly
// one of a small set of solid colors, so byte equality is the right
// comparison and no float pixel representation is needed.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel
}

func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

func (r *Raster) RGBAt(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

func (r *Raster) SetRGB(x, y int, red, green, blue uint8) {
	i := (y*r.Width + x) * 3
	r.Pix[i] = red
	r.Pix[i+1] = green
	r.Pix[i+2] = blue
}

// ColorAt returns the pixel as a float color in [0,1].
func (r *Raster) ColorAt(x, y int) zcolor.RGB {
	red, green, blue := r.RGBAt(x, y)
	return zcolor.IRGBToRGB(int(red), int(green), int(blue))
}

// RasterFromImage converts any decoded image to a Raster.
// The alpha channel, if present, is stripped.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			cr, cg, cb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r.SetRGB(x, y, uint8(cr>>8), uint8(cg>>8), uint8(cb>>8))
		}
	}
	return r
}

// LoadRaster reads a PNG or JPEG file from disk.
func LoadRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode image %v: %v", path, err)
	}
	return RasterFromImage(img), nil
}

// UniqueColors returns every distinct pixel color (background included),
// sorted lexicographically by (r,g,b) so iteration order is stable.
// Returns an error if the count exceeds max: that almost certainly means
// the raster is not a categorical segmentation image.
func (r *Raster) UniqueColors(max int) ([][3]uint8, error) {
	set := map[[3]uint8]struct{}{}
	for i := 0; i < len(r.Pix); i += 3 {
		set[[3]uint8{r.Pix[i], r.Pix[i+1], r.Pix[i+2]}] = struct{}{}
	}
	if len(set) > max {
		return nil, fmt.Errorf("Over %v categories: %v unique colors", max, len(set))
	}
	colors := make([][3]uint8, 0, len(set))
	for c := range set {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		a, b := colors[i], colors[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return colors, nil
}

// MaskOf returns the binary mask of pixels exactly matching the color.
func (r *Raster) MaskOf(c [3]uint8) *Mask {
	m := NewMask(r.Width, r.Height)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			red, green, blue := r.RGBAt(x, y)
			if red == c[0] && green == c[1] && blue == c[2] {
				m.Set(x, y, true)
			}
		}
	}
	return m
}
