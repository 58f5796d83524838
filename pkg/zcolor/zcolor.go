package zcolor

// Package zcolor converts between the color representations used by the
// annotation pipeline: hex strings, integer RGB (0..255), float RGB (0..1)
// and gamma-corrected sRGB. Float RGB is the canonical form; it is what
// segmentation rasters are matched against and what gets serialized.

import (
	"fmt"
	"math"
)

// RGB is a float color with each channel in [0,1].
type RGB [3]float64

// RGBA is a float color with an alpha channel, each in [0,1].
type RGBA [4]float64

// HexToIRGB converts "#rrggbb" to integer RGB (0 to 255).
func HexToIRGB(hex string) (int, int, int, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("Invalid hex color %q: must be #rrggbb", hex)
	}
	var v int
	if _, err := fmt.Sscanf(hex[1:], "%06x", &v); err != nil {
		return 0, 0, 0, fmt.Errorf("Invalid hex color %q: %v", hex, err)
	}
	return (v >> 16) & 0xff, (v >> 8) & 0xff, v & 0xff, nil
}

// IRGBToHex converts integer RGB (0 to 255) to "#rrggbb".
func IRGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// IRGBToRGB converts integer RGB (0 to 255) to float RGB (0 to 1).
func IRGBToRGB(r, g, b int) RGB {
	return RGB{float64(r) / 255.0, float64(g) / 255.0, float64(b) / 255.0}
}

// RGBToIRGB converts float RGB (0 to 1) to integer RGB (0 to 255).
// Channels are truncated (int(x*255)), not rounded.
func RGBToIRGB(c RGB) (int, int, int) {
	return int(c[0] * 255.0), int(c[1] * 255.0), int(c[2] * 255.0)
}

// HexToRGB converts "#rrggbb" to float RGB (0 to 1).
func HexToRGB(hex string) (RGB, error) {
	r, g, b, err := HexToIRGB(hex)
	if err != nil {
		return RGB{}, err
	}
	return IRGBToRGB(r, g, b), nil
}

// RGBToHex converts float RGB (0 to 1) to "#rrggbb".
func RGBToHex(c RGB) string {
	return IRGBToHex(RGBToIRGB(c))
}

// RGBToRGBA appends an alpha channel.
func RGBToRGBA(c RGB, alpha float64) RGBA {
	return RGBA{c[0], c[1], c[2], alpha}
}

const gammaExponent = 1.0 / 2.2

// RGBToSRGB converts linear float RGB to gamma-corrected sRGB.
func RGBToSRGB(c RGB) RGB {
	return RGB{
		math.Pow(c[0], gammaExponent),
		math.Pow(c[1], gammaExponent),
		math.Pow(c[2], gammaExponent),
	}
}

// RGBToSRGBA converts linear float RGB to gamma-corrected sRGBA.
func RGBToSRGBA(c RGB, alpha float64) RGBA {
	s := RGBToSRGB(c)
	return RGBA{s[0], s[1], s[2], alpha}
}

// DistanceSquared is the squared Euclidean distance between two colors
// in float RGB space.
func DistanceSquared(a, b RGB) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

// Closest returns the candidate with the smallest squared Euclidean
// distance to target. Ties go to the first candidate encountered.
// Returns false if there are no candidates, or if the smallest distance
// exceeds maxDist.
func Closest(target RGB, candidates []RGB, maxDist float64) (RGB, bool) {
	best := RGB{}
	bestDist := math.Inf(1)
	for _, c := range candidates {
		if d := DistanceSquared(target, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist > maxDist {
		return RGB{}, false
	}
	return best, true
}
