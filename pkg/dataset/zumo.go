package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/saver"
)

// ZUMO output. Lossless: the file is the accumulator model itself, with
// categories and images keyed by stringified id so lookups stay O(1) for
// consumers that stream the JSON.

type zumoFile struct {
	Metadata    saver.Metadata             `json:"metadata"`
	Categories  map[string]*saver.Category `json:"categories"`
	Images      map[string]*saver.Image    `json:"images"`
	Annotations []*saver.Annotation        `json:"annotations"`
}

func serializeZUMO(s *saver.Saver) ([]byte, error) {
	out := zumoFile{
		Metadata:    s.Metadata,
		Categories:  map[string]*saver.Category{},
		Images:      map[string]*saver.Image{},
		Annotations: s.Annotations,
	}
	for _, id := range gen.SortedKeys(s.Categories) {
		out.Categories[strconv.Itoa(id)] = s.Categories[id]
	}
	for _, id := range gen.SortedKeys(s.Images) {
		out.Images[strconv.Itoa(id)] = s.Images[id]
	}
	return json.MarshalIndent(&out, "", "  ")
}

func parseZUMO(data []byte, opt *ParseOptions) (*saver.Saver, error) {
	var in zumoFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, parseErrorf(FormatZUMO, "invalid JSON: %v", err)
	}
	if len(in.Categories) == 0 || len(in.Images) == 0 || len(in.Annotations) == 0 {
		return nil, parseErrorf(FormatZUMO, "empty dataset: %v categories, %v images, %v annotations",
			len(in.Categories), len(in.Images), len(in.Annotations))
	}

	s := saver.NewSaver(opt.DataDir, in.Metadata.Description, opt.Log, saver.NewOptions())
	s.Metadata = in.Metadata

	for key, cat := range in.Categories {
		id, err := strconv.Atoi(key)
		if err != nil || id != cat.ID {
			return nil, parseErrorf(FormatZUMO, "category key %q does not match id %v", key, cat.ID)
		}
		if cat.Name == "" {
			return nil, parseErrorf(FormatZUMO, "category %v has no name", cat.ID)
		}
		if len(cat.Keypoints) > 0 && len(cat.Skeleton) == 0 {
			return nil, parseErrorf(FormatZUMO, "category %q has keypoints but no skeleton", cat.Name)
		}
		if len(cat.SubcategoryCount) != 0 && len(cat.SubcategoryCount) != len(cat.Subcategories) {
			return nil, parseErrorf(FormatZUMO, "category %q has %v subcategory counts for %v subcategories",
				cat.Name, len(cat.SubcategoryCount), len(cat.Subcategories))
		}
		s.Categories[id] = cat
	}
	for key, img := range in.Images {
		id, err := strconv.Atoi(key)
		if err != nil || id != img.ID {
			return nil, parseErrorf(FormatZUMO, "image key %q does not match id %v", key, img.ID)
		}
		if img.Name == "" {
			return nil, parseErrorf(FormatZUMO, "image %v has no name", img.ID)
		}
		if img.Frame < 0 {
			return nil, parseErrorf(FormatZUMO, "image %q has negative frame %v", img.Name, img.Frame)
		}
		if img.Width <= 0 || img.Height <= 0 {
			return nil, parseErrorf(FormatZUMO, "image %q has invalid size %vx%v", img.Name, img.Width, img.Height)
		}
		switch img.Style {
		case saver.StyleDefault, saver.StyleSegmentation, saver.StyleDepth:
		default:
			return nil, parseErrorf(FormatZUMO, "image %q has unknown style %q", img.Name, img.Style)
		}
		// The frame must be recoverable from the name when the name
		// carries digits at all.
		if f := FrameFromImageName(img.Name); f >= 0 && f != img.Frame && f != img.ID {
			return nil, parseErrorf(FormatZUMO, "image name %q encodes frame %v but frame is %v", img.Name, f, img.Frame)
		}
		if opt.CheckPaths && img.OutputPath != "" {
			path := img.OutputPath
			if !filepath.IsAbs(path) {
				path = filepath.Join(opt.DataDir, path)
			}
			if _, err := os.Stat(path); err != nil {
				return nil, parseErrorf(FormatZUMO, "image file %v does not exist", path)
			}
		}
		s.Images[id] = img
	}
	for i, ann := range in.Annotations {
		if ann.ID != i {
			return nil, parseErrorf(FormatZUMO, "annotation %v out of order at index %v", ann.ID, i)
		}
		if _, ok := s.Images[ann.ImageID]; !ok {
			return nil, parseErrorf(FormatZUMO, "annotation %v references unknown image %v", ann.ID, ann.ImageID)
		}
		if _, ok := s.Categories[ann.CategoryID]; !ok {
			return nil, parseErrorf(FormatZUMO, "annotation %v references unknown category %v", ann.ID, ann.CategoryID)
		}
		if ann.NumKeypoints > 0 {
			if len(ann.KeypointsXYV) > 0 && len(ann.KeypointsXYV) != ann.NumKeypoints*3 {
				return nil, parseErrorf(FormatZUMO, "annotation %v has %v xyv values, expected %v",
					ann.ID, len(ann.KeypointsXYV), ann.NumKeypoints*3)
			}
			if len(ann.KeypointsXYZ) > 0 && len(ann.KeypointsXYZ) != ann.NumKeypoints*3 {
				return nil, parseErrorf(FormatZUMO, "annotation %v has %v xyz values, expected %v",
					ann.ID, len(ann.KeypointsXYZ), ann.NumKeypoints*3)
			}
		}
		if ann.SubcategoryID != nil {
			cat := s.Categories[ann.CategoryID]
			if len(cat.Subcategories) == 0 {
				return nil, parseErrorf(FormatZUMO, "annotation %v has subcategory %v but category %q has none",
					ann.ID, *ann.SubcategoryID, cat.Name)
			}
			// Files may be zero or one indexed, so [0, len] is the
			// accepted span.
			if *ann.SubcategoryID < 0 || *ann.SubcategoryID > len(cat.Subcategories) {
				return nil, parseErrorf(FormatZUMO, "annotation %v subcategory %v out of range for category %q (%v subcategories)",
					ann.ID, *ann.SubcategoryID, cat.Name, len(cat.Subcategories))
			}
		}
		if len(ann.Bbox) != 0 && len(ann.Bbox) != 4 {
			return nil, parseErrorf(FormatZUMO, "annotation %v bbox has %v values", ann.ID, len(ann.Bbox))
		}
		s.Annotations = append(s.Annotations, ann)
	}
	if err := s.Reindex(); err != nil {
		return nil, parseErrorf(FormatZUMO, "%v", err)
	}
	return s, nil
}
