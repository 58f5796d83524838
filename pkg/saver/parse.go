package saver

import (
	"fmt"

	"github.com/zumolabs/zumo/pkg/seg"
	"github.com/zumolabs/zumo/pkg/zcolor"
)

// ParseAnnotationsFromSegImage loads the segmentation image from its
// output path and backfills geometry. See ParseAnnotationsFromRaster.
func (s *Saver) ParseAnnotationsFromSegImage(name string) error {
	id, ok := s.imageNameToID[name]
	if !ok {
		return fmt.Errorf("%w: image %q", ErrNotFound, name)
	}
	img := s.Images[id]
	raster, err := seg.LoadRaster(img.OutputPath)
	if err != nil {
		return fmt.Errorf("Loading segmentation image %q: %w", img.OutputPath, err)
	}
	return s.ParseAnnotationsFromRaster(name, raster)
}

// ParseAnnotationsFromRaster extracts fragments from a segmentation
// raster and merges their geometry into the annotations whose seg color
// was registered against the image. Matching is exact first, then
// nearest registered color within MaxColorDist. Fragments that match
// nothing are logged, counted in UnmatchedFragments and dropped.
// Merging only ever touches geometry fields: ids, keypoints and tracking
// fields stay as registered.
func (s *Saver) ParseAnnotationsFromRaster(name string, raster *seg.Raster) error {
	id, ok := s.imageNameToID[name]
	if !ok {
		return fmt.Errorf("%w: image %q", ErrNotFound, name)
	}
	img := s.Images[id]
	if img.Style != StyleSegmentation {
		return fmt.Errorf("Image %q has style %v, segmentation parsing needs %v", name, img.Style, StyleSegmentation)
	}
	known := s.segColorToAnn[name]
	if len(known) == 0 {
		s.log.Warnf("No annotations registered colors for segmentation image %q", name)
		return nil
	}
	knownColors := make([]zcolor.RGB, 0, len(known))
	for c := range known {
		knownColors = append(knownColors, c)
	}

	fragments, err := seg.Extract(raster, s.opts.Extract)
	if err != nil {
		return fmt.Errorf("Extracting fragments from %q: %w", name, err)
	}
	for _, frag := range fragments {
		annID, ok := known[frag.Color]
		if !ok {
			// Anti-aliased or color-managed renders shift colors slightly.
			nearest, matched := zcolor.Closest(frag.Color, knownColors, s.opts.MaxColorDist)
			if !matched {
				s.log.Warnf("Fragment color %v in %q matches no annotation, dropping", frag.Color, name)
				s.UnmatchedFragments++
				continue
			}
			annID = known[nearest]
		}
		s.mergeFragment(s.Annotations[annID], frag)
	}
	return nil
}

func (s *Saver) mergeFragment(ann *Annotation, frag seg.Fragment) {
	ann.Segmentation = frag.Segmentation
	ann.Bbox = frag.Bbox
	area := frag.Area
	ann.Area = &area
	ann.Bboxes = frag.Bboxes
	ann.Areas = frag.Areas
	ann.SegmentationRLE = frag.SegmentationRLE
	ann.SegmentationFloat = frag.SegmentationFloat
	ann.BboxFloat = frag.BboxFloat
	if frag.BboxFloat != nil {
		areaFloat := frag.AreaFloat
		ann.AreaFloat = &areaFloat
	}
	ann.BboxesFloat = frag.BboxesFloat
	ann.AreasFloat = frag.AreasFloat
}
