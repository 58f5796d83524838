package viz

// Package viz renders accumulated annotations on top of their images,
// for eyeballing a dataset before training on it.

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/fogleman/gg"
	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/saver"
)

const (
	strokeWidth  = 2.0
	fillAlpha    = 0.3
	outlineAlpha = 0.9
)

// DrawAnnotations paints bboxes and segmentation polygons over img,
// using each annotation's category color. Unresolved annotations are
// skipped. The input image is not modified.
func DrawAnnotations(img image.Image, anns []*saver.Annotation, categories map[int]*saver.Category) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(strokeWidth)
	for _, ann := range anns {
		if !ann.Resolved() {
			continue
		}
		r, g, b := 1.0, 1.0, 1.0
		if cat, ok := categories[ann.CategoryID]; ok {
			r, g, b = cat.Color[0], cat.Color[1], cat.Color[2]
		}
		for _, poly := range ann.Segmentation {
			if len(poly) < 6 {
				continue
			}
			dc.MoveTo(poly[0], poly[1])
			for i := 2; i+1 < len(poly); i += 2 {
				dc.LineTo(poly[i], poly[i+1])
			}
			dc.ClosePath()
			dc.SetRGBA(r, g, b, fillAlpha)
			dc.FillPreserve()
			dc.SetRGBA(r, g, b, outlineAlpha)
			dc.Stroke()
		}
		dc.DrawRectangle(ann.Bbox[0], ann.Bbox[1], ann.Bbox[2], ann.Bbox[3])
		dc.SetRGBA(r, g, b, outlineAlpha)
		dc.Stroke()

		// Keypoints as dots, visible ones only (v == 2).
		for i := 0; i+2 < len(ann.KeypointsXYV); i += 3 {
			if ann.KeypointsXYV[i+2] != 2 {
				continue
			}
			dc.DrawCircle(float64(ann.KeypointsXYV[i]), float64(ann.KeypointsXYV[i+1]), strokeWidth+1)
			dc.SetRGBA(r, g, b, outlineAlpha)
			dc.Fill()
		}
	}
	return dc.Image()
}

// SaveAnnotatedImages writes an annotated copy of up to max default
// style images into outDir, named after the source image. max <= 0
// means all. Images whose file cannot be loaded are logged and skipped.
func SaveAnnotatedImages(s *saver.Saver, outDir string, max int, logger logs.Log) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	saved := 0
	for _, id := range gen.SortedKeys(s.Images) {
		if max > 0 && saved >= max {
			break
		}
		img := s.Images[id]
		if img.Style != saver.StyleDefault {
			continue
		}
		src, err := gg.LoadImage(img.OutputPath)
		if err != nil {
			logger.Warnf("Loading %v: %v", img.OutputPath, err)
			continue
		}
		anns := s.AnnotationsForImage(id)
		if len(anns) == 0 {
			continue
		}
		annotated := DrawAnnotations(src, anns, s.Categories)
		dst := filepath.Join(outDir, img.Name)
		if err := gg.SavePNG(dst, annotated); err != nil {
			return fmt.Errorf("Saving %v: %w", dst, err)
		}
		saved++
	}
	logger.Infof("Saved %v annotated images to %v", saved, outDir)
	return nil
}
