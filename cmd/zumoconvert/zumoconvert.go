package main

// zumoconvert reads an annotation file in one format and writes it out
// in another, optionally drawing the annotations for inspection.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/zumolabs/zumo/pkg/dataset"
	"github.com/zumolabs/zumo/pkg/viz"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("zumoconvert", "Convert annotation files between COCO, ZUMO and MOT formats")
	input := parser.String("i", "input", &argparse.Options{Help: "Input annotation file", Required: true})
	inFormat := parser.String("f", "from", &argparse.Options{Help: "Input format (coco, zumo)", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Output annotation file", Required: true})
	outFormat := parser.String("t", "to", &argparse.Options{Help: "Output format (coco, zumo, mot)", Required: true})
	unclipped := parser.Flag("", "unclipped", &argparse.Options{Help: "Do not clip geometry to image bounds", Required: false})
	splitSeg := parser.Flag("", "splitseg", &argparse.Options{Help: "One COCO annotation per polygon component", Required: false})
	checkPaths := parser.Flag("", "check-paths", &argparse.Options{Help: "Verify that referenced image files exist", Required: false})
	drawDir := parser.String("d", "draw", &argparse.Options{Help: "Also save annotated images to this directory", Required: false, Default: ""})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	from, err := dataset.ParseFormat(*inFormat)
	check(err)
	to, err := dataset.ParseFormat(*outFormat)
	check(err)
	if from == dataset.FormatMOT {
		check(fmt.Errorf("MOT files cannot be read back into a dataset"))
	}

	popt := &dataset.ParseOptions{
		DataDir:    filepath.Dir(*input),
		CheckPaths: *checkPaths,
		Log:        logger,
	}
	s, err := dataset.ParseFile(*input, from, popt)
	check(err)
	logger.Infof("Parsed %v: %v categories, %v images, %v annotations",
		*input, len(s.Categories), len(s.Images), len(s.Annotations))

	opt := dataset.NewOptions()
	opt.Clipped = !*unclipped
	check(dataset.WriteFile(s, to, *output, opt))
	logger.Infof("Wrote %v annotations to %v", to, *output)

	if *splitSeg && to == dataset.FormatCOCO {
		// One annotation per polygon component, as a sibling file.
		splitOpt := *opt
		splitOpt.SplitSeg = true
		splitPath := dataset.AddToPath(*output, "splitseg")
		check(dataset.WriteFile(s, to, splitPath, &splitOpt))
		logger.Infof("Wrote split-segmentation annotations to %v", splitPath)
	}

	if *drawDir != "" {
		check(viz.SaveAnnotatedImages(s, *drawDir, 0, logger))
	}
}
