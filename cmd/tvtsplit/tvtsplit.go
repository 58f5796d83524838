package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/zumolabs/zumo/pkg/dataset"
	"github.com/zumolabs/zumo/pkg/tvt"
	"github.com/zumolabs/zumo/pkg/viz"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("tvtsplit", "Merge rendered batches and split them into train/val/test sets")
	batches := parser.String("b", "batches", &argparse.Options{Help: "Comma-separated list of batch directories", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Output directory", Required: true})
	name := parser.String("n", "name", &argparse.Options{Help: "Dataset name, prefixes the set directories", Required: false, Default: ""})
	splitVal := parser.Float("", "val", &argparse.Options{Help: "Fraction of frames for the val set", Required: false, Default: 0.1})
	splitTest := parser.Float("", "test", &argparse.Options{Help: "Fraction of frames for the test set", Required: false, Default: 0.1})
	seed := parser.Int("s", "seed", &argparse.Options{Help: "Random seed for the frame split", Required: false, Default: 0})
	requireBbox := parser.Flag("", "require-bbox", &argparse.Options{Help: "Drop annotations without a bbox", Required: false})
	requireSeg := parser.Flag("", "require-seg", &argparse.Options{Help: "Drop annotations without segmentation", Required: false})
	noCopy := parser.Flag("", "no-copy", &argparse.Options{Help: "Do not copy image files into the set directories", Required: false})
	cocoOut := parser.Flag("", "coco", &argparse.Options{Help: "Also write COCO annotations for each set", Required: false})
	previews := parser.Int("p", "previews", &argparse.Options{Help: "Save up to this many annotated preview images per set", Required: false, Default: 0})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, _ := logs.NewLog()

	opt := tvt.NewOptions(*output, *name)
	opt.SplitVal = *splitVal
	opt.SplitTest = *splitTest
	opt.Rand = rand.New(rand.NewSource(int64(*seed)))
	opt.RequireBbox = *requireBbox
	opt.RequireSegmentation = *requireSeg
	opt.CopyImages = !*noCopy

	result, err := tvt.Split(strings.Split(*batches, ","), opt, logger)
	check(err)

	for setName, set := range result.Savers() {
		logger.Infof("%v: %v images, %v annotations in %v", setName, len(set.Images), len(set.Annotations), result.Dirs[setName])
		if len(set.Annotations) == 0 {
			continue
		}
		if *cocoOut {
			path := filepath.Join(result.Dirs[setName], dataset.FormatCOCO.AnnotationFilename())
			check(dataset.WriteFile(set, dataset.FormatCOCO, path, nil))
			logger.Infof("%v: wrote %v", setName, path)
		}
		if *previews > 0 {
			check(viz.SaveAnnotatedImages(set, filepath.Join(result.Dirs[setName], "previews"), *previews, logger))
		}
	}
}
