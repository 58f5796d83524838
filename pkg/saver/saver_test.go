package saver

import (
	"fmt"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
	"github.com/zumolabs/zumo/pkg/seg"
	"github.com/zumolabs/zumo/pkg/zcolor"
)

func newTestSaver(t *testing.T) *Saver {
	return NewSaver(t.TempDir(), "test dataset", logs.NewTestingLog(t), nil)
}

// fillRect paints a solid rectangle into a raster.
func fillRect(r *seg.Raster, x, y, w, h int, c [3]uint8) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			r.SetRGB(xx, yy, c[0], c[1], c[2])
		}
	}
}

func addFramePair(t *testing.T, s *Saver, frame int) (rgb, segImg *Image) {
	rgb, err := s.AddImage(rgbName(frame), StyleDefault, "", frame, 32, 32)
	require.NoError(t, err)
	segImg, err = s.AddImage(segName(frame), StyleSegmentation, "", frame, 32, 32)
	require.NoError(t, err)
	return rgb, segImg
}

func rgbName(frame int) string { return fmt.Sprintf("image.%06d.rgb.png", frame) }
func segName(frame int) string { return fmt.Sprintf("image.%06d.iseg.png", frame) }

func TestAddCategory(t *testing.T) {
	s := newTestSaver(t)

	red := zcolor.RGB{1, 0, 0}
	cat, err := s.AddCategory(CategoryOpts{Name: "car", Color: &red})
	require.NoError(t, err)
	require.Equal(t, 0, cat.ID)
	require.Equal(t, red, cat.Color)

	// Auto-allocated colors come from the palette and skip the default.
	cat2, err := s.AddCategory(CategoryOpts{Name: "truck", Subcategories: []string{"pickup", "semi"}})
	require.NoError(t, err)
	require.Equal(t, 1, cat2.ID)
	require.NotEqual(t, zcolor.DefaultColor(), cat2.Color)
	require.Len(t, cat2.SubcategoryCount, 2)

	_, err = s.AddCategory(CategoryOpts{Name: "car"})
	require.ErrorIs(t, err, ErrDuplicateName)
	// Failed adds don't burn an id.
	cat3, err := s.AddCategory(CategoryOpts{Name: "bus"})
	require.NoError(t, err)
	require.Equal(t, 2, cat3.ID)

	_, err = s.AddCategory(CategoryOpts{Name: "person", Keypoints: []string{"nose"}})
	require.Error(t, err)
}

func TestAddImageAndAnnotation(t *testing.T) {
	s := newTestSaver(t)
	s.opts.ParseOnAdd = false

	_, err := s.AddCategory(CategoryOpts{Name: "car", Subcategories: []string{"sedan", "coupe"}})
	require.NoError(t, err)
	rgb, segImg := addFramePair(t, s, 0)
	require.Equal(t, 0, rgb.ID)
	require.Equal(t, 1, segImg.ID)

	_, err = s.AddImage(rgbName(0), StyleDefault, "", 0, 32, 32)
	require.ErrorIs(t, err, ErrDuplicateName)

	color := zcolor.RGB{0, 1, 0}
	ann, err := s.AddAnnotation(AnnotationOpts{
		Image: rgb.Name, Category: "car", Subcategory: "coupe",
		SegImage: segImg.Name, SegColor: &color,
	})
	require.NoError(t, err)
	require.Equal(t, 0, ann.ID)
	require.Equal(t, rgb.ID, ann.ImageID)
	require.NotNil(t, ann.SubcategoryID)
	require.Equal(t, 1, *ann.SubcategoryID)
	require.False(t, ann.Resolved())

	cat, ok := s.CategoryByName("car")
	require.True(t, ok)
	require.Equal(t, 1, cat.Count)
	require.Equal(t, []int{0, 1}, cat.SubcategoryCount)

	_, err = s.AddAnnotation(AnnotationOpts{Image: "nope", Category: "car"})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddAnnotation(AnnotationOpts{Image: rgb.Name, Category: "bike"})
	require.ErrorIs(t, err, ErrNotFound)
	// Annotations must hang off the default-style image.
	_, err = s.AddAnnotation(AnnotationOpts{Image: segImg.Name, Category: "car"})
	require.Error(t, err)
}

func TestAddAnnotationBadSegImage(t *testing.T) {
	s := newTestSaver(t)
	s.opts.ParseOnAdd = false

	_, err := s.AddCategory(CategoryOpts{Name: "car", Subcategories: []string{"sedan"}})
	require.NoError(t, err)
	rgb, _ := addFramePair(t, s, 0)

	color := zcolor.RGB{0, 1, 0}
	_, err = s.AddAnnotation(AnnotationOpts{
		Image: rgb.Name, Category: "car", Subcategory: "sedan",
		SegImage: "no-such-image", SegColor: &color,
	})
	require.ErrorIs(t, err, ErrNotFound)
	// The seg reference must point at a segmentation-style image.
	_, err = s.AddAnnotation(AnnotationOpts{
		Image: rgb.Name, Category: "car",
		SegImage: rgb.Name, SegColor: &color,
	})
	require.Error(t, err)

	// Failed adds leave no half-registered annotation behind.
	require.Empty(t, s.Annotations)
	cat, ok := s.CategoryByName("car")
	require.True(t, ok)
	require.Equal(t, 0, cat.Count)
	require.Equal(t, []int{0}, cat.SubcategoryCount)
}

func TestParseBackfill(t *testing.T) {
	s := newTestSaver(t)
	s.opts.ParseOnAdd = false
	s.opts.Extract.RemoveSalt = false

	green := zcolor.RGB{0, 1, 0}
	_, err := s.AddCategory(CategoryOpts{Name: "car", Color: &green})
	require.NoError(t, err)
	rgb, segImg := addFramePair(t, s, 0)

	ann, err := s.AddAnnotation(AnnotationOpts{
		Image: rgb.Name, Category: "car",
		SegImage: segImg.Name, SegColor: &green,
	})
	require.NoError(t, err)
	require.False(t, ann.Resolved())

	raster := seg.NewRaster(32, 32)
	fillRect(raster, 4, 6, 8, 5, [3]uint8{0, 255, 0})
	require.NoError(t, s.ParseAnnotationsFromRaster(segImg.Name, raster))

	require.True(t, ann.Resolved())
	require.InDelta(t, 4, ann.Bbox[0], 1)
	require.InDelta(t, 6, ann.Bbox[1], 1)
	require.InDelta(t, 8, ann.Bbox[2], 1)
	require.InDelta(t, 5, ann.Bbox[3], 1)
	require.NotNil(t, ann.Area)
	require.InDelta(t, 40, *ann.Area, 3)
	// Backfill never touches identity.
	require.Equal(t, 0, ann.ID)
	require.Equal(t, 0, s.UnmatchedFragments)
}

func TestParseClosestColorFallback(t *testing.T) {
	s := newTestSaver(t)
	s.opts.ParseOnAdd = false
	s.opts.Extract.RemoveSalt = false

	red := zcolor.RGB{1, 0, 0}
	_, err := s.AddCategory(CategoryOpts{Name: "car", Color: &red})
	require.NoError(t, err)
	rgb, segImg := addFramePair(t, s, 0)
	ann, err := s.AddAnnotation(AnnotationOpts{
		Image: rgb.Name, Category: "car",
		SegImage: segImg.Name, SegColor: &red,
	})
	require.NoError(t, err)

	// The render is slightly off pure red, but within MaxColorDist.
	raster := seg.NewRaster(32, 32)
	fillRect(raster, 10, 10, 6, 6, [3]uint8{250, 4, 3})
	require.NoError(t, s.ParseAnnotationsFromRaster(segImg.Name, raster))
	require.True(t, ann.Resolved())
	require.Equal(t, 0, s.UnmatchedFragments)

	// A wildly different color is dropped and counted, not merged.
	s2 := newTestSaver(t)
	s2.opts.ParseOnAdd = false
	s2.opts.Extract.RemoveSalt = false
	_, err = s2.AddCategory(CategoryOpts{Name: "car", Color: &red})
	require.NoError(t, err)
	rgb2, segImg2 := addFramePair(t, s2, 0)
	ann2, err := s2.AddAnnotation(AnnotationOpts{
		Image: rgb2.Name, Category: "car",
		SegImage: segImg2.Name, SegColor: &red,
	})
	require.NoError(t, err)
	raster2 := seg.NewRaster(32, 32)
	fillRect(raster2, 10, 10, 6, 6, [3]uint8{0, 0, 255})
	require.NoError(t, s2.ParseAnnotationsFromRaster(segImg2.Name, raster2))
	require.False(t, ann2.Resolved())
	require.Equal(t, 1, s2.UnmatchedFragments)
}

func TestRemapFilterCategories(t *testing.T) {
	s := newTestSaver(t)
	s.opts.ParseOnAdd = false

	for _, name := range []string{"car", "truck", "bike"} {
		_, err := s.AddCategory(CategoryOpts{Name: name})
		require.NoError(t, err)
	}
	rgb, _ := addFramePair(t, s, 0)
	for _, cat := range []string{"car", "car", "truck", "bike"} {
		_, err := s.AddAnnotation(AnnotationOpts{Image: rgb.Name, Category: cat})
		require.NoError(t, err)
	}

	// Unknown name and duplicate target both fail before mutating.
	require.Error(t, s.RemapFilterCategories(map[int]string{0: "boat"}))
	require.Error(t, s.RemapFilterCategories(map[int]string{0: "car", 1: "car"}))
	require.Len(t, s.Categories, 3)

	// Keep car and bike under new ids, drop truck.
	require.NoError(t, s.RemapFilterCategories(map[int]string{5: "car", 9: "bike"}))
	require.Len(t, s.Categories, 2)
	require.Equal(t, "car", s.Categories[5].Name)
	require.Equal(t, "bike", s.Categories[9].Name)
	require.Equal(t, 2, s.Categories[5].Count)
	require.Equal(t, 1, s.Categories[9].Count)
	require.Len(t, s.Annotations, 3)
	for i, ann := range s.Annotations {
		require.Equal(t, i, ann.ID)
		require.Contains(t, []int{5, 9}, ann.CategoryID)
	}

	// A stale out-of-range subcategory id must not derail the recount.
	stale := 3
	s.Annotations[0].SubcategoryID = &stale
	require.NoError(t, s.RemapFilterCategories(map[int]string{0: "car", 1: "bike"}))
	require.Equal(t, 2, s.Categories[0].Count)
	require.Empty(t, s.Categories[0].SubcategoryCount)
}

func TestClipping(t *testing.T) {
	require.Equal(t, []float64{0, 0, 10, 10}, ClipBbox([]float64{-5, -5, 15, 15}, 10, 10, false))
	require.Equal(t, []float64{8, 0, 2, 4}, ClipBbox([]float64{8, 0, 7, 4}, 10, 10, false))
	require.Equal(t, []float64{0, 0.5, 1, 0.5}, ClipBbox([]float64{-1, 0.5, 3, 2}, 100, 100, true))
	require.Equal(t, []float64{0, 5, 10, 8}, ClipCoordinateList([]float64{-2, 5, 12, 8}, 10, 10, false))
}
