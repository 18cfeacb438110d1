// Package palette holds the named colors used for vectors, grids and axes.
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	Red     = colorful.Color{R: 0.9, G: 0.2, B: 0.2}
	Green   = colorful.Color{R: 0.2, G: 0.8, B: 0.3}
	Blue    = colorful.Color{R: 0.2, G: 0.4, B: 0.9}
	Yellow  = colorful.Color{R: 0.95, G: 0.85, B: 0.2}
	Cyan    = colorful.Color{R: 0.2, G: 0.8, B: 0.9}
	Magenta = colorful.Color{R: 0.9, G: 0.2, B: 0.8}
	Orange  = colorful.Color{R: 1.0, G: 0.5, B: 0.1}
	Purple  = colorful.Color{R: 0.6, G: 0.3, B: 0.9}
	White   = colorful.Color{R: 1, G: 1, B: 1}
	Gray    = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	Background     = colorful.Color{R: 0.12, G: 0.12, B: 0.15}
	Grid           = colorful.Color{R: 0.22, G: 0.22, B: 0.25}
	GridMajor      = colorful.Color{R: 0.30, G: 0.30, B: 0.35}
	AxisX          = colorful.Color{R: 0.8, G: 0.3, B: 0.3}
	AxisY          = colorful.Color{R: 0.3, G: 0.8, B: 0.3}
	AxisZ          = colorful.Color{R: 0.3, G: 0.3, B: 0.8}
	Eigen1         = colorful.Color{R: 1.0, G: 0.8, B: 0.2}
	Eigen2         = colorful.Color{R: 0.2, G: 0.9, B: 0.8}
	TransformAfter = colorful.Color{R: 0.25, G: 0.5, B: 0.85}

	// Vector is the color a new vector starts with.
	Vector = colorful.Color{R: 1.0, G: 0.3, B: 0.3}
)

var named = map[string]colorful.Color{
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"orange":  Orange,
	"purple":  Purple,
	"white":   White,
	"gray":    Gray,
	"grey":    Gray,
}

// Get resolves a color by name, by "#rrggbb" hex, or by any SVG color
// name such as "teal".
func Get(name string) (colorful.Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if c, ok := named[key]; ok {
		return c, nil
	}
	if strings.HasPrefix(key, "#") {
		c, err := colorful.Hex(key)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("palette: bad hex color %q: %w", name, err)
		}
		return c, nil
	}
	if rgba, ok := colornames.Map[strings.ReplaceAll(key, "_", "")]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c, nil
	}
	return colorful.Color{}, fmt.Errorf("palette: unknown color %q", name)
}

// Dim scales a color toward black. The previous state of an animated
// vector is drawn with Dim(c, 0.4).
func Dim(c colorful.Color, factor float64) colorful.Color {
	return colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}
}

// Lerp blends two colors in RGB space.
func Lerp(a, b colorful.Color, t float64) colorful.Color {
	return a.BlendRgb(b, t)
}

// RGBA255 converts a color for renderers that take 8-bit channels.
func RGBA255(c colorful.Color) (r, g, b, a uint8) {
	r, g, b = c.Clamped().RGB255()
	return r, g, b, 255
}
