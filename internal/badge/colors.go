package badge

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/desertthunder/tunecard/internal/models"
)

// brightnessThreshold separates light from dark cover-art colors.
const brightnessThreshold = 80

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as lowercase hex without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// Brightness computes perceived brightness using the HSP luminance formula.
func Brightness(c RGB) float64 {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	return math.Sqrt(0.299*r*r + 0.587*g*g + 0.114*b*b)
}

// IsLight reports whether the color reads as light against the threshold.
func IsLight(c RGB, threshold float64) bool {
	return Brightness(c) > threshold
}

// DominantColors extracts up to count dominant colors from encoded image
// bytes, ordered by prevalence.
func DominantColors(data []byte, count int) ([]RGB, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	items, err := prominentcolor.KmeansWithAll(count, img, prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize, []prominentcolor.ColorBackgroundMask{})
	if err != nil {
		return nil, fmt.Errorf("failed to extract colors: %w", err)
	}

	colors := make([]RGB, 0, len(items))
	for _, item := range items {
		colors = append(colors, RGB{
			R: uint8(item.Color.R),
			G: uint8(item.Color.G),
			B: uint8(item.Color.B),
		})
	}

	return colors, nil
}

// pickBarColor walks colors in prevalence order and returns the first
// acceptable bar color. The default theme skips dark candidates; every other
// theme takes the most prevalent color as-is. ok=false means no candidate
// qualified and the requested color should be kept.
func pickBarColor(colors []RGB, theme string) (string, bool) {
	for _, c := range colors {
		if !IsLight(c, brightnessThreshold) && theme == models.ThemeDefault {
			continue
		}
		return c.Hex(), true
	}
	return "", false
}
