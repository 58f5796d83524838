package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/saver"
)

// COCO output. Lossy: only default-style images survive, and only
// annotations with resolved geometry. Pixel coordinates throughout.

type cocoInfo struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Year        string `json:"year"`
	Contributor string `json:"contributor"`
	DateCreated string `json:"date_created"`
	SavePath    string `json:"save_path"`
}

type cocoLicense struct {
	URL  string `json:"url"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type cocoCategory struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Supercategory string   `json:"supercategory,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	Keypoints     []string `json:"keypoints,omitempty"`
	Skeleton      [][2]int `json:"skeleton,omitempty"`
}

type cocoImage struct {
	License  int    `json:"license"`
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	CocoURL  string `json:"coco_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	ID            int         `json:"id"`
	ImageID       int         `json:"image_id"`
	CategoryID    int         `json:"category_id"`
	SubcategoryID *int        `json:"subcategory_id,omitempty"`
	Bbox          []float64   `json:"bbox"`
	Area          float64     `json:"area"`
	Segmentation  [][]float64 `json:"segmentation,omitempty"`
	IsCrowd       int         `json:"iscrowd"`
	NumKeypoints  int         `json:"num_keypoints,omitempty"`
	Keypoints     []int       `json:"keypoints,omitempty"`
}

type cocoFile struct {
	Info cocoInfo `json:"info"`
	// A single license object, not a list.
	Licenses    cocoLicense      `json:"licenses"`
	Categories  []cocoCategory   `json:"categories"`
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
}

func serializeCOCO(s *saver.Saver, opt *Options) ([]byte, error) {
	out := cocoFile{
		Info: cocoInfo{
			Description: s.Metadata.Description,
			URL:         s.Metadata.URL,
			Version:     "1.0",
			Year:        s.Metadata.Year,
			Contributor: s.Metadata.Contributor,
			DateCreated: s.Metadata.DateCreated,
			SavePath:    s.Metadata.SavePath,
		},
		Licenses: cocoLicense{URL: s.Metadata.URL, ID: 0, Name: s.Metadata.Description},
	}
	for _, id := range gen.SortedKeys(s.Categories) {
		cat := s.Categories[id]
		c := cocoCategory{
			ID:            cat.ID,
			Name:          cat.Name,
			Subcategories: cat.Subcategories,
			Keypoints:     cat.Keypoints,
			Skeleton:      cat.Skeleton,
		}
		if len(cat.Supercategories) > 0 {
			c.Supercategory = cat.Supercategories[0]
		}
		out.Categories = append(out.Categories, c)
	}
	sizes := map[int][2]float64{}
	for _, id := range gen.SortedKeys(s.Images) {
		img := s.Images[id]
		if img.Style != saver.StyleDefault {
			continue
		}
		sizes[img.ID] = [2]float64{float64(img.Width), float64(img.Height)}
		out.Images = append(out.Images, cocoImage{
			ID:       img.ID,
			FileName: img.Name,
			CocoURL:  img.Name,
			Width:    img.Width,
			Height:   img.Height,
		})
	}
	for _, ann := range s.Annotations {
		size, ok := sizes[ann.ImageID]
		if !ok {
			continue
		}
		// Geometry was never backfilled: nothing useful to emit.
		if !ann.Resolved() {
			continue
		}
		bbox := ann.Bbox
		segm := ann.Segmentation
		if opt.Clipped {
			bbox = saver.ClipBbox(bbox, size[0], size[1], false)
			segm = make([][]float64, len(ann.Segmentation))
			for i, poly := range ann.Segmentation {
				segm[i] = saver.ClipCoordinateList(poly, size[0], size[1], false)
			}
		}
		base := cocoAnnotation{
			ImageID:       ann.ImageID,
			CategoryID:    ann.CategoryID,
			SubcategoryID: ann.SubcategoryID,
			NumKeypoints:  ann.NumKeypoints,
			Keypoints:     ann.KeypointsXYV,
		}
		if opt.SplitSeg && len(ann.Bboxes) == len(segm) && len(segm) > 1 {
			// One annotation per polygon component, fresh dense ids.
			for i, poly := range segm {
				a := base
				a.ID = len(out.Annotations)
				a.Segmentation = [][]float64{poly}
				a.Bbox = ann.Bboxes[i]
				if opt.Clipped {
					a.Bbox = saver.ClipBbox(a.Bbox, size[0], size[1], false)
				}
				a.Area = a.Bbox[2] * a.Bbox[3]
				out.Annotations = append(out.Annotations, a)
			}
		} else {
			a := base
			a.ID = len(out.Annotations)
			a.Segmentation = segm
			a.Bbox = bbox
			// Box area, not mask area.
			a.Area = bbox[2] * bbox[3]
			out.Annotations = append(out.Annotations, a)
		}
	}
	return json.MarshalIndent(&out, "", "  ")
}

func parseCOCO(data []byte, opt *ParseOptions) (*saver.Saver, error) {
	var in cocoFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, parseErrorf(FormatCOCO, "invalid JSON: %v", err)
	}
	if len(in.Categories) == 0 || len(in.Images) == 0 || len(in.Annotations) == 0 {
		return nil, parseErrorf(FormatCOCO, "empty dataset: %v categories, %v images, %v annotations",
			len(in.Categories), len(in.Images), len(in.Annotations))
	}

	s := saver.NewSaver(opt.DataDir, in.Info.Description, opt.Log, saver.NewOptions())
	s.Metadata.Contributor = in.Info.Contributor
	s.Metadata.URL = in.Info.URL
	s.Metadata.Year = in.Info.Year
	s.Metadata.DateCreated = in.Info.DateCreated
	s.Metadata.SavePath = in.Info.SavePath

	for _, c := range in.Categories {
		if c.ID < 0 {
			return nil, parseErrorf(FormatCOCO, "category %q has negative id %v", c.Name, c.ID)
		}
		if c.Name == "" {
			return nil, parseErrorf(FormatCOCO, "category %v has no name", c.ID)
		}
		if _, dup := s.Categories[c.ID]; dup {
			return nil, parseErrorf(FormatCOCO, "duplicate category id %v", c.ID)
		}
		if len(c.Keypoints) > 0 && len(c.Skeleton) == 0 {
			return nil, parseErrorf(FormatCOCO, "category %q has keypoints but no skeleton", c.Name)
		}
		cat := &saver.Category{
			ID:        c.ID,
			Name:      c.Name,
			Keypoints: c.Keypoints,
			Skeleton:  c.Skeleton,
		}
		if c.Supercategory != "" {
			cat.Supercategories = []string{c.Supercategory}
		}
		if len(c.Subcategories) > 0 {
			cat.Subcategories = c.Subcategories
			cat.SubcategoryCount = make([]int, len(c.Subcategories))
		}
		s.Categories[c.ID] = cat
	}
	for _, im := range in.Images {
		if im.ID < 0 {
			return nil, parseErrorf(FormatCOCO, "image %q has negative id %v", im.FileName, im.ID)
		}
		if im.FileName == "" {
			return nil, parseErrorf(FormatCOCO, "image %v has no file_name", im.ID)
		}
		if im.Width <= 0 || im.Height <= 0 {
			return nil, parseErrorf(FormatCOCO, "image %q has invalid size %vx%v", im.FileName, im.Width, im.Height)
		}
		if _, dup := s.Images[im.ID]; dup {
			return nil, parseErrorf(FormatCOCO, "duplicate image id %v", im.ID)
		}
		fullPath := filepath.Join(opt.DataDir, im.FileName)
		if opt.CheckPaths {
			if _, err := os.Stat(fullPath); err != nil {
				return nil, parseErrorf(FormatCOCO, "image file %v does not exist", fullPath)
			}
		}
		frame := FrameFromImageName(im.FileName)
		if frame < 0 {
			frame = im.ID
		}
		s.Images[im.ID] = &saver.Image{
			ID:         im.ID,
			Name:       im.FileName,
			Style:      saver.StyleDefault,
			OutputPath: fullPath,
			Frame:      frame,
			Width:      im.Width,
			Height:     im.Height,
		}
	}
	seenAnn := map[int]bool{}
	for _, a := range in.Annotations {
		if seenAnn[a.ID] {
			return nil, parseErrorf(FormatCOCO, "duplicate annotation id %v", a.ID)
		}
		seenAnn[a.ID] = true
		img, ok := s.Images[a.ImageID]
		if !ok {
			return nil, parseErrorf(FormatCOCO, "annotation %v references unknown image %v", a.ID, a.ImageID)
		}
		cat, ok := s.Categories[a.CategoryID]
		if !ok {
			return nil, parseErrorf(FormatCOCO, "annotation %v references unknown category %v", a.ID, a.CategoryID)
		}
		if a.NumKeypoints > 0 && len(a.Keypoints) != a.NumKeypoints*3 {
			return nil, parseErrorf(FormatCOCO, "annotation %v has %v keypoint values, expected %v",
				a.ID, len(a.Keypoints), a.NumKeypoints*3)
		}
		if len(a.Bbox) != 0 && len(a.Bbox) != 4 {
			return nil, parseErrorf(FormatCOCO, "annotation %v bbox has %v values", a.ID, len(a.Bbox))
		}
		area := a.Area
		ann := &saver.Annotation{
			ID:            len(s.Annotations),
			ImageID:       img.ID,
			CategoryID:    cat.ID,
			SubcategoryID: a.SubcategoryID,
			Bbox:          a.Bbox,
			Area:          &area,
			Segmentation:  a.Segmentation,
			NumKeypoints:  a.NumKeypoints,
			KeypointsXYV:  a.Keypoints,
		}
		s.Annotations = append(s.Annotations, ann)
		cat.Count++
		if a.SubcategoryID != nil {
			if *a.SubcategoryID < 0 || *a.SubcategoryID >= len(cat.SubcategoryCount) {
				return nil, parseErrorf(FormatCOCO, "annotation %v subcategory %v out of range for category %q (%v subcategories)",
					a.ID, *a.SubcategoryID, cat.Name, len(cat.Subcategories))
			}
			cat.SubcategoryCount[*a.SubcategoryID]++
		}
	}
	if err := s.Reindex(); err != nil {
		return nil, parseErrorf(FormatCOCO, "%v", err)
	}
	return s, nil
}
