package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Rendered images follow the pattern image.<frame:06>.<style>.png, so a
// directory listing sorts by frame and the frame is recoverable from the
// name alone.

func RGBImageName(frame int) string {
	return fmt.Sprintf("image.%06d.rgb.png", frame)
}

func ISegImageName(frame int) string {
	return fmt.Sprintf("image.%06d.iseg.png", frame)
}

func CSegImageName(frame int) string {
	return fmt.Sprintf("image.%06d.cseg.png", frame)
}

func DepthImageName(frame int) string {
	return fmt.Sprintf("image.%06d.depth.png", frame)
}

// FrameFromImageName extracts the frame number from an image file name,
// taking the first run of digits. Returns -1 if the name has none.
func FrameFromImageName(name string) int {
	start := -1
	for i, r := range name {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			n, _ := strconv.Atoi(name[start:i])
			return n
		}
	}
	if start >= 0 {
		n, _ := strconv.Atoi(name[start:])
		return n
	}
	return -1
}

// AddToPath inserts a suffix before a file path's extension:
// AddToPath("a/b.json", "splitseg") is "a/b_splitseg.json".
func AddToPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}
