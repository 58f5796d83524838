package tvt

// Package tvt merges rendered batches and splits them into train, val
// and test sets. Splitting happens at frame granularity, so all images
// and annotations of one frame land in the same set and correspondence
// groups are never torn apart.

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/zumolabs/zumo/pkg/dataset"
	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/iox"
	"github.com/zumolabs/zumo/pkg/saver"
)

// Options configure a split.
type Options struct {
	// OutputDir receives one subdirectory per set.
	OutputDir string
	// Name prefixes the set directories: <name>_train etc.
	Name string
	// SplitVal and SplitTest are fractions of the total frames. The
	// remainder goes to train.
	SplitVal  float64
	SplitTest float64

	// Require* drop annotations missing the named field before routing.
	RequireBbox         bool
	RequireSegmentation bool
	RequireKeypoints    bool

	// Rand drives frame sampling. Callers own the seed, so a fixed seed
	// gives a reproducible split.
	Rand *rand.Rand

	// CopyImages copies default-style image files into the set
	// directories. Missing source files are logged and skipped.
	CopyImages bool
}

func NewOptions(outputDir, name string) *Options {
	return &Options{
		OutputDir:  outputDir,
		Name:       name,
		SplitVal:   0.1,
		SplitTest:  0.1,
		Rand:       rand.New(rand.NewSource(0)),
		CopyImages: true,
	}
}

// Result holds the three output datasets.
type Result struct {
	Train *saver.Saver
	Val   *saver.Saver
	Test  *saver.Saver
	// Dirs maps set name ("train", "val", "test") to its directory.
	Dirs map[string]string
}

// Savers returns the three sets keyed by name.
func (r *Result) Savers() map[string]*saver.Saver {
	return map[string]*saver.Saver{"train": r.Train, "val": r.Val, "test": r.Test}
}

// Split reads the ZUMO annotations of every batch directory, merges
// them, partitions the frames and writes three self-contained ZUMO
// datasets. Batches must agree on metadata (description, contributor,
// url). Categories are merged by name and renumbered densely, so
// batches may number the same categories differently.
func Split(batches []string, opt *Options, logger logs.Log) (*Result, error) {
	if len(batches) == 0 {
		return nil, fmt.Errorf("No batch directories given")
	}
	if opt.SplitVal < 0 || opt.SplitTest < 0 || opt.SplitVal+opt.SplitTest > 1 {
		return nil, fmt.Errorf("Invalid split fractions: val %v, test %v", opt.SplitVal, opt.SplitTest)
	}
	if opt.Rand == nil {
		return nil, fmt.Errorf("Options.Rand must be set")
	}

	loaded := make([]*saver.Saver, 0, len(batches))
	for _, dir := range batches {
		s, err := loadBatch(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("Batch %v: %w", dir, err)
		}
		loaded = append(loaded, s)
	}

	// Batches must describe the same dataset.
	meta := loaded[0].Metadata
	for i, s := range loaded[1:] {
		m := s.Metadata
		if m.Description != meta.Description || m.Contributor != meta.Contributor || m.URL != meta.URL {
			return nil, fmt.Errorf("Batch %v metadata differs from batch %v: %q vs %q",
				batches[i+1], batches[0], m.Description, meta.Description)
		}
	}

	// Merge categories by name and assign dense ids in first-seen
	// order. Batches may number the same category differently, so every
	// batch gets its own old id -> new id map for annotation remapping.
	idByName := map[string]int{}
	merged := map[int]*saver.Category{}
	catRemap := make([]map[int]int, len(loaded))
	for bi, s := range loaded {
		catRemap[bi] = map[int]int{}
		for _, id := range gen.SortedKeys(s.Categories) {
			cat := s.Categories[id]
			newID, ok := idByName[cat.Name]
			if !ok {
				newID = len(idByName)
				idByName[cat.Name] = newID
				c := *cat
				c.ID = newID
				merged[newID] = &c
			}
			catRemap[bi][cat.ID] = newID
		}
	}

	result := &Result{Dirs: map[string]string{}}
	sets := map[string]*saver.Saver{}
	for _, name := range []string{"train", "val", "test"} {
		dir := filepath.Join(opt.OutputDir, setDirName(opt.Name, name))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		result.Dirs[name] = dir
		out := saver.NewSaver(dir, meta.Description, logger, saver.NewOptions())
		out.Metadata.Contributor = meta.Contributor
		out.Metadata.URL = meta.URL
		out.Metadata.Year = meta.Year
		for _, id := range gen.SortedKeys(merged) {
			src := merged[id]
			cat := *src
			cat.Count = 0
			cat.SubcategoryCount = make([]int, len(src.Subcategories))
			out.Categories[id] = &cat
		}
		if err := out.Reindex(); err != nil {
			return nil, err
		}
		sets[name] = out
	}
	result.Train, result.Val, result.Test = sets["train"], sets["val"], sets["test"]

	for bi, s := range loaded {
		if err := routeBatch(s, batches[bi], catRemap[bi], sets, opt, logger); err != nil {
			return nil, err
		}
	}

	for name, out := range sets {
		path := filepath.Join(result.Dirs[name], dataset.FormatZUMO.AnnotationFilename())
		if len(out.Annotations) == 0 {
			logger.Warnf("Set %v is empty, skipping annotation file", name)
			continue
		}
		if err := dataset.WriteFile(out, dataset.FormatZUMO, path, nil); err != nil {
			return nil, fmt.Errorf("Writing %v set: %w", name, err)
		}
		logger.Infof("Set %v: %v images, %v annotations -> %v",
			name, len(out.Images), len(out.Annotations), path)
	}
	return result, nil
}

// routeBatch assigns each frame of one batch to a set and copies its
// images and annotations across, renumbering ids densely per set.
func routeBatch(s *saver.Saver, batchDir string, catRemap map[int]int, sets map[string]*saver.Saver, opt *Options, logger logs.Log) error {
	frameSet := map[int]bool{}
	for _, img := range s.Images {
		frameSet[img.Frame] = true
	}
	frames := gen.SortedKeys(frameSet)

	nVal := int(float64(len(frames)) * opt.SplitVal)
	nTest := int(float64(len(frames)) * opt.SplitTest)
	perm := opt.Rand.Perm(len(frames))
	setByFrame := map[int]string{}
	for i, pi := range perm {
		switch {
		case i < nVal:
			setByFrame[frames[pi]] = "val"
		case i < nVal+nTest:
			setByFrame[frames[pi]] = "test"
		default:
			setByFrame[frames[pi]] = "train"
		}
	}

	// Map old image id -> new image in its destination set. Only
	// default-style images carry over: the split output is a training
	// dataset, not a render archive.
	newImage := map[int]*saver.Image{}
	setByOldImage := map[int]string{}
	for _, id := range gen.SortedKeys(s.Images) {
		img := s.Images[id]
		setName := setByFrame[img.Frame]
		setByOldImage[id] = setName
		if img.Style != saver.StyleDefault {
			continue
		}
		out := sets[setName]
		newID := len(out.Images)
		newFrame := newID
		name := dataset.RGBImageName(newFrame)
		dst := filepath.Join(out.OutputDir, name)
		copied, err := out.AddImage(name, saver.StyleDefault, dst, newFrame, img.Width, img.Height)
		if err != nil {
			return err
		}
		newImage[id] = copied
		if opt.CopyImages {
			src := img.OutputPath
			if src == "" || !fileExists(src) {
				src = filepath.Join(batchDir, img.Name)
			}
			if err := iox.CopyFile(src, dst); err != nil {
				logger.Warnf("Copying %v: %v", src, err)
			}
		}
	}

	for _, ann := range s.Annotations {
		if opt.RequireBbox && !ann.Resolved() {
			continue
		}
		if opt.RequireSegmentation && len(ann.Segmentation) == 0 {
			continue
		}
		if opt.RequireKeypoints && ann.NumKeypoints == 0 {
			continue
		}
		img, ok := newImage[ann.ImageID]
		if !ok {
			// Annotation on a non-default image, nothing to carry.
			continue
		}
		newCatID, ok := catRemap[ann.CategoryID]
		if !ok {
			logger.Warnf("Annotation %v references unknown category %v, skipping", ann.ID, ann.CategoryID)
			continue
		}
		out := sets[setByOldImage[ann.ImageID]]
		copied := *ann
		copied.ID = len(out.Annotations)
		copied.ImageID = img.ID
		copied.CategoryID = newCatID
		out.Annotations = append(out.Annotations, &copied)
		cat := out.Categories[copied.CategoryID]
		cat.Count++
		if copied.SubcategoryID != nil && *copied.SubcategoryID < len(cat.SubcategoryCount) {
			cat.SubcategoryCount[*copied.SubcategoryID]++
		}
	}
	return nil
}

// loadBatch finds and parses the batch's ZUMO annotation file.
func loadBatch(dir string, logger logs.Log) (*saver.Saver, error) {
	candidates := []string{
		filepath.Join(dir, dataset.FormatZUMO.AnnotationFilename()),
		filepath.Join(dir, "ZUMO_META.json"),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return dataset.ParseFile(path, dataset.FormatZUMO, &dataset.ParseOptions{DataDir: dir, Log: logger})
		}
	}
	return nil, fmt.Errorf("No ZUMO annotation file found in %v", dir)
}

func setDirName(prefix, set string) string {
	if prefix == "" {
		return set
	}
	return prefix + "_" + set
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
