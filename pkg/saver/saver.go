package saver

// Package saver accumulates categories, images and annotations during a
// synthetic-data run into a canonical in-memory dataset model. The model
// is what every on-disk format (COCO, ZUMO, MOT) is projected from; the
// ZUMO format is essentially this package serialized.

import (
	"errors"
	"fmt"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/seg"
	"github.com/zumolabs/zumo/pkg/zcolor"
)

var (
	ErrDuplicateName = errors.New("name already in use")
	ErrNotFound      = errors.New("name not found")
)

// Style classifies an image within a frame group.
type Style string

const (
	StyleDefault      Style = "default" // the RGB render
	StyleSegmentation Style = "segmentation"
	StyleDepth        Style = "depth"
)

// Metadata describes a dataset, COCO-info style.
type Metadata struct {
	Description string `json:"description"`
	Contributor string `json:"contributor"`
	URL         string `json:"url"`
	Year        string `json:"year"`
	DateCreated string `json:"date_created"`
	SavePath    string `json:"save_path"`
}

const (
	dateCreatedFormat = "20060102_150405"
	yearFormat        = "2006"
)

// Category is one object class. Subcategories are ordered: the index of
// a subcategory name is its subcategory id.
type Category struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Supercategories  []string   `json:"supercategories,omitempty"`
	Subcategories    []string   `json:"subcategories,omitempty"`
	Color            zcolor.RGB `json:"color"`
	Count            int        `json:"count"`
	SubcategoryCount []int      `json:"subcategory_count,omitempty"`
	Keypoints        []string   `json:"keypoints,omitempty"`
	Skeleton         [][2]int   `json:"skeleton,omitempty"`
}

// Image is one rendered output. Images sharing a Frame value form a
// correspondence group: one default (RGB) image plus any number of
// segmentation/depth images of the same instant.
type Image struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Style      Style  `json:"style"`
	OutputPath string `json:"output_path"`
	Frame      int    `json:"frame"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Annotation is one detected object on a default-style image.
// Geometry fields (Bbox, Area, Segmentation, ...) are backfilled when the
// matching segmentation image is parsed; until then the annotation is
// registered but unresolved.
type Annotation struct {
	ID            int         `json:"id"`
	ImageID       int         `json:"image_id"`
	CategoryID    int         `json:"category_id"`
	SubcategoryID *int        `json:"subcategory_id,omitempty"`
	Bbox          []float64   `json:"bbox,omitempty"`
	Area          *float64    `json:"area,omitempty"`
	Segmentation  [][]float64 `json:"segmentation,omitempty"`
	Bboxes        [][]float64 `json:"bboxes,omitempty"`
	Areas         []float64   `json:"areas,omitempty"`

	SegmentationRLE *seg.RLE `json:"segmentation_rle,omitempty"`

	SegmentationFloat [][]float64 `json:"segmentation_float,omitempty"`
	BboxFloat         []float64   `json:"bbox_float,omitempty"`
	AreaFloat         *float64    `json:"area_float,omitempty"`
	BboxesFloat       [][]float64 `json:"bboxes_float,omitempty"`
	AreasFloat        []float64   `json:"areas_float,omitempty"`

	NumKeypoints int       `json:"num_keypoints,omitempty"`
	KeypointsXYV []int     `json:"keypoints_xyv,omitempty"`
	KeypointsXYZ []float64 `json:"keypoints_xyz,omitempty"`

	SegColor *zcolor.RGB `json:"seg_color,omitempty"`

	// MOT tracking fields
	PersonID *int `json:"person_id,omitempty"`
	MotType  int  `json:"mot_type,omitempty"`
}

// Resolved reports whether the annotation's geometry has been backfilled
// from a segmentation image.
func (a *Annotation) Resolved() bool {
	return len(a.Bbox) == 4
}

// Options configure a Saver.
type Options struct {
	// ZeroIndexed makes category/image/subcategory ids start at 0 (else 1).
	ZeroIndexed bool
	// ParseOnAdd parses the segmentation image immediately when an
	// annotation registers a seg color for it.
	ParseOnAdd bool
	// Extract configures the segmentation extractor.
	Extract *seg.ExtractOptions
	// MaxColorDist bounds the nearest-color fallback when a fragment's
	// color has no exact registration (squared distance in float RGB).
	MaxColorDist float64
}

func NewOptions() *Options {
	return &Options{
		ZeroIndexed:  true,
		ParseOnAdd:   true,
		Extract:      seg.NewExtractOptions(),
		MaxColorDist: 0.05,
	}
}

// Saver owns the accumulated dataset state for one session.
// Single-writer: callers must not mutate the same Saver concurrently.
type Saver struct {
	OutputDir   string
	Metadata    Metadata
	Categories  map[int]*Category
	Images      map[int]*Image
	Annotations []*Annotation

	// Colors hands out deterministic per-category colors. Each Saver owns
	// its own allocator, so sessions never leak color state into each other.
	Colors *zcolor.Allocator

	// UnmatchedFragments counts extracted fragments that matched no
	// registered color, and were therefore dropped (lossy).
	UnmatchedFragments int

	categoryNameToID map[string]int
	imageNameToID    map[string]int
	// (seg image name, seg color) -> annotation id
	segColorToAnn map[string]map[zcolor.RGB]int

	opts *Options
	log  logs.Log
}

func NewSaver(outputDir, description string, logger logs.Log, opts *Options) *Saver {
	if opts == nil {
		opts = NewOptions()
	}
	now := time.Now()
	return &Saver{
		OutputDir: outputDir,
		Metadata: Metadata{
			Description: description,
			Contributor: "Zumo Labs",
			URL:         "zumolabs.ai",
			Year:        now.Format(yearFormat),
			DateCreated: now.Format(dateCreatedFormat),
			SavePath:    outputDir,
		},
		Categories:       map[int]*Category{},
		Images:           map[int]*Image{},
		Colors:           zcolor.NewAllocator(),
		categoryNameToID: map[string]int{},
		imageNameToID:    map[string]int{},
		segColorToAnn:    map[string]map[zcolor.RGB]int{},
		opts:             opts,
		log:              logger,
	}
}

func (s *Saver) baseID() int {
	if s.opts.ZeroIndexed {
		return 0
	}
	return 1
}

// CategoryOpts are the inputs to AddCategory.
type CategoryOpts struct {
	Name            string
	Supercategories []string
	Subcategories   []string
	// Color of the category's objects in segmentation renders.
	// When nil, the next palette color is allocated.
	Color     *zcolor.RGB
	Keypoints []string
	Skeleton  [][2]int
}

// AddCategory registers a new category. The id is the number of
// categories already present (plus one if one-indexed): dense and
// insertion-ordered. Duplicate names are rejected.
func (s *Saver) AddCategory(opt CategoryOpts) (*Category, error) {
	if _, ok := s.categoryNameToID[opt.Name]; ok {
		return nil, fmt.Errorf("%w: category %q", ErrDuplicateName, opt.Name)
	}
	if len(opt.Keypoints) > 0 && len(opt.Skeleton) == 0 {
		return nil, fmt.Errorf("Category %q has keypoints but no skeleton", opt.Name)
	}
	color := zcolor.RGB{}
	if opt.Color != nil {
		color = *opt.Color
	} else {
		c, err := s.Colors.Next()
		if err != nil {
			// Recoverable: a duplicate color degrades seg matching but
			// the dataset is still usable.
			s.log.Errorf("Color allocation for category %q: %v", opt.Name, err)
		}
		color = c
	}
	cat := &Category{
		ID:               len(s.Categories) + s.baseID(),
		Name:             opt.Name,
		Supercategories:  opt.Supercategories,
		Subcategories:    opt.Subcategories,
		Color:            color,
		SubcategoryCount: make([]int, len(opt.Subcategories)),
		Keypoints:        opt.Keypoints,
		Skeleton:         opt.Skeleton,
	}
	s.Categories[cat.ID] = cat
	s.categoryNameToID[cat.Name] = cat.ID
	s.log.Debugf("Added category %v (id %v)", cat.Name, cat.ID)
	return cat, nil
}

// AddImage registers a rendered image. Duplicate names are rejected.
func (s *Saver) AddImage(name string, style Style, outputPath string, frame, width, height int) (*Image, error) {
	if _, ok := s.imageNameToID[name]; ok {
		return nil, fmt.Errorf("%w: image %q", ErrDuplicateName, name)
	}
	img := &Image{
		ID:         len(s.Images) + s.baseID(),
		Name:       name,
		Style:      style,
		OutputPath: outputPath,
		Frame:      frame,
		Width:      width,
		Height:     height,
	}
	s.Images[img.ID] = img
	s.imageNameToID[name] = img.ID
	s.log.Debugf("Added image %v (id %v, style %v)", img.Name, img.ID, img.Style)
	return img, nil
}

// AnnotationOpts are the inputs to AddAnnotation.
type AnnotationOpts struct {
	Image       string // name of the default-style image
	Category    string
	Subcategory string // optional
	// SegImage+SegColor register which color this object renders as in
	// which segmentation image, enabling geometry backfill.
	SegImage string
	SegColor *zcolor.RGB

	NumKeypoints int
	KeypointsXYV []int
	KeypointsXYZ []float64

	PersonID *int
	MotType  int
}

// AddAnnotation registers a logical detection. Image and category are
// resolved by name; unknown names fail with ErrNotFound. If a
// segmentation image and color are given, the correspondence is recorded
// and (with ParseOnAdd) the segmentation image is parsed immediately to
// backfill geometry.
func (s *Saver) AddAnnotation(opt AnnotationOpts) (*Annotation, error) {
	imageID, ok := s.imageNameToID[opt.Image]
	if !ok {
		return nil, fmt.Errorf("%w: image %q", ErrNotFound, opt.Image)
	}
	if s.Images[imageID].Style != StyleDefault {
		return nil, fmt.Errorf("Annotations must reference a default-style image, %q is %v", opt.Image, s.Images[imageID].Style)
	}
	categoryID, ok := s.categoryNameToID[opt.Category]
	if !ok {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, opt.Category)
	}
	cat := s.Categories[categoryID]

	if opt.NumKeypoints > 0 {
		if len(opt.KeypointsXYV) > 0 && len(opt.KeypointsXYV) != opt.NumKeypoints*3 {
			return nil, fmt.Errorf("keypoints_xyv has %v values, expected %v", len(opt.KeypointsXYV), opt.NumKeypoints*3)
		}
		if len(opt.KeypointsXYZ) > 0 && len(opt.KeypointsXYZ) != opt.NumKeypoints*3 {
			return nil, fmt.Errorf("keypoints_xyz has %v values, expected %v", len(opt.KeypointsXYZ), opt.NumKeypoints*3)
		}
	}

	// Resolve the seg image before touching any counts, so a failed add
	// leaves the saver unchanged.
	if opt.SegImage != "" && opt.SegColor != nil {
		segID, ok := s.imageNameToID[opt.SegImage]
		if !ok {
			return nil, fmt.Errorf("%w: segmentation image %q", ErrNotFound, opt.SegImage)
		}
		if s.Images[segID].Style != StyleSegmentation {
			return nil, fmt.Errorf("Image %q is %v, not %v", opt.SegImage, s.Images[segID].Style, StyleSegmentation)
		}
	}

	ann := &Annotation{
		ID:           len(s.Annotations),
		ImageID:      imageID,
		CategoryID:   categoryID,
		NumKeypoints: opt.NumKeypoints,
		KeypointsXYV: opt.KeypointsXYV,
		KeypointsXYZ: opt.KeypointsXYZ,
		PersonID:     opt.PersonID,
		MotType:      opt.MotType,
	}
	if opt.Subcategory != "" {
		idx := gen.IndexOf(cat.Subcategories, opt.Subcategory)
		if idx < 0 {
			return nil, fmt.Errorf("%w: subcategory %q of category %q", ErrNotFound, opt.Subcategory, opt.Category)
		}
		cat.SubcategoryCount[idx]++
		subID := idx + s.baseID()
		ann.SubcategoryID = &subID
	}
	cat.Count++
	s.Annotations = append(s.Annotations, ann)

	if opt.SegImage != "" && opt.SegColor != nil {
		ann.SegColor = opt.SegColor
		if s.segColorToAnn[opt.SegImage] == nil {
			s.segColorToAnn[opt.SegImage] = map[zcolor.RGB]int{}
		}
		s.segColorToAnn[opt.SegImage][*opt.SegColor] = ann.ID
		if s.opts.ParseOnAdd {
			if err := s.ParseAnnotationsFromSegImage(opt.SegImage); err != nil {
				return nil, err
			}
		}
	}
	return ann, nil
}

// CategoryByName resolves a category by its unique name.
func (s *Saver) CategoryByName(name string) (*Category, bool) {
	id, ok := s.categoryNameToID[name]
	if !ok {
		return nil, false
	}
	return s.Categories[id], true
}

// ImageByName resolves an image by its unique name.
func (s *Saver) ImageByName(name string) (*Image, bool) {
	id, ok := s.imageNameToID[name]
	if !ok {
		return nil, false
	}
	return s.Images[id], true
}

// AnnotationsForImage returns the annotations referencing the image.
func (s *Saver) AnnotationsForImage(imageID int) []*Annotation {
	var out []*Annotation
	for _, a := range s.Annotations {
		if a.ImageID == imageID {
			out = append(out, a)
		}
	}
	return out
}

// Reindex rebuilds the name lookup tables from the exported collections.
// Format parsers and the splitter populate Categories/Images/Annotations
// directly and then call this. Fails on duplicate names.
func (s *Saver) Reindex() error {
	s.categoryNameToID = map[string]int{}
	s.imageNameToID = map[string]int{}
	for id, cat := range s.Categories {
		if _, ok := s.categoryNameToID[cat.Name]; ok {
			return fmt.Errorf("%w: category %q", ErrDuplicateName, cat.Name)
		}
		s.categoryNameToID[cat.Name] = id
	}
	for id, img := range s.Images {
		if _, ok := s.imageNameToID[img.Name]; ok {
			return fmt.Errorf("%w: image %q", ErrDuplicateName, img.Name)
		}
		s.imageNameToID[img.Name] = id
	}
	return nil
}

// Log returns the saver's logger.
func (s *Saver) Log() logs.Log {
	return s.log
}
