package dataset

// Package dataset serializes an accumulated dataset to the supported
// annotation formats (COCO, ZUMO, MOT) and parses them back with strict
// validation. ZUMO is the lossless native format; COCO and MOT are lossy
// projections.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/zumolabs/zumo/pkg/saver"
)

// Format identifies an annotation file format.
type Format int

const (
	FormatCOCO Format = iota
	FormatZUMO
	FormatMOT
)

func (f Format) String() string {
	switch f {
	case FormatCOCO:
		return "COCO"
	case FormatZUMO:
		return "ZUMO"
	case FormatMOT:
		return "MOT"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a user-facing format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "coco", "COCO":
		return FormatCOCO, nil
	case "zumo", "ZUMO":
		return FormatZUMO, nil
	case "mot", "MOT":
		return FormatMOT, nil
	}
	return 0, fmt.Errorf("Unknown annotation format %q (want coco, zumo or mot)", name)
}

// AnnotationFilename is the conventional file name for the format's
// annotation file inside a dataset directory.
func (f Format) AnnotationFilename() string {
	switch f {
	case FormatCOCO:
		return "_annotations.coco.json"
	case FormatZUMO:
		return "_annotations.zumo.json"
	case FormatMOT:
		return "_annotations.mot.csv"
	}
	return ""
}

// ParseError is a validation failure while parsing an annotation file.
type ParseError struct {
	Format Format
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%vParseError: %v", e.Format, e.Msg)
}

func parseErrorf(f Format, format string, args ...interface{}) *ParseError {
	return &ParseError{Format: f, Msg: fmt.Sprintf(format, args...)}
}

// Options configure serialization.
type Options struct {
	// Clipped clamps bboxes and polygons to image bounds on the way out
	// (COCO only).
	Clipped bool
	// SplitSeg emits one COCO annotation per polygon component instead of
	// one multi-polygon annotation per object. Component annotations get
	// fresh dense ids.
	SplitSeg bool
}

func NewOptions() *Options {
	return &Options{Clipped: true}
}

// ParseOptions configure parsing.
type ParseOptions struct {
	// DataDir is the dataset directory, used to resolve image paths.
	DataDir string
	// CheckPaths additionally verifies that every referenced image file
	// exists under DataDir.
	CheckPaths bool
	Log        logs.Log
}

func NewParseOptions(dataDir string, logger logs.Log) *ParseOptions {
	return &ParseOptions{DataDir: dataDir, Log: logger}
}

// Serialize renders the dataset in the given format. An empty dataset
// (no categories, images or annotations) is refused.
func Serialize(s *saver.Saver, f Format, opt *Options) ([]byte, error) {
	if opt == nil {
		opt = NewOptions()
	}
	if len(s.Categories) == 0 || len(s.Images) == 0 || len(s.Annotations) == 0 {
		return nil, fmt.Errorf("Refusing to serialize empty dataset: %v categories, %v images, %v annotations",
			len(s.Categories), len(s.Images), len(s.Annotations))
	}
	switch f {
	case FormatCOCO:
		return serializeCOCO(s, opt)
	case FormatZUMO:
		return serializeZUMO(s)
	case FormatMOT:
		return serializeMOT(s)
	}
	return nil, fmt.Errorf("Unknown format %v", f)
}

// Parse validates an annotation file and reconstructs the dataset.
// COCO and ZUMO return a live Saver; MOT is validate-only and returns a
// nil Saver on success, since MOT rows carry too little to rebuild
// images and categories.
func Parse(data []byte, f Format, opt *ParseOptions) (*saver.Saver, error) {
	if opt == nil {
		opt = &ParseOptions{}
	}
	if opt.Log == nil {
		logger, _ := logs.NewLog()
		opt.Log = logger
	}
	switch f {
	case FormatCOCO:
		return parseCOCO(data, opt)
	case FormatZUMO:
		return parseZUMO(data, opt)
	case FormatMOT:
		return nil, parseMOT(data, opt)
	}
	return nil, fmt.Errorf("Unknown format %v", f)
}

// WriteFile serializes the dataset to path and immediately re-parses the
// written bytes, so an invalid dataset never lands on disk unnoticed.
func WriteFile(s *saver.Saver, f Format, path string, opt *Options) error {
	data, err := Serialize(s, f, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("Writing %v annotations to %v: %w", f, path, err)
	}
	_, err = Parse(data, f, &ParseOptions{DataDir: filepath.Dir(path), Log: s.Log()})
	if err != nil {
		return fmt.Errorf("Validation of written %v file failed: %w", path, err)
	}
	return nil
}

// ParseFile reads and parses an annotation file. DataDir defaults to the
// file's directory.
func ParseFile(path string, f Format, opt *ParseOptions) (*saver.Saver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opt == nil {
		opt = &ParseOptions{}
	}
	if opt.DataDir == "" {
		opt.DataDir = filepath.Dir(path)
	}
	return Parse(data, f, opt)
}
