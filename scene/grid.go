package scene

import (
	"math"
	"strconv"
)

// GridLine is a reference line. Major lines fall on every fifth spacing
// or through zero.
type GridLine struct {
	From  [3]float64 `json:"from"`
	To    [3]float64 `json:"to"`
	Major bool       `json:"major,omitempty"`
}

// AxisLine is a coordinate axis, named "x", "y" or "z".
type AxisLine struct {
	From [3]float64 `json:"from"`
	To   [3]float64 `json:"to"`
	Axis string     `json:"axis"`
}

// Label is a tick label anchored at a world point.
type Label struct {
	At   [3]float64 `json:"at"`
	Text string     `json:"text"`
}

const majorEvery = 5

// Grid2D covers the visible part of the plane with lines whose spacing
// adapts to the zoom level.
type Grid2D struct {
	ShowGrid   bool
	ShowAxes   bool
	ShowLabels bool
}

func NewGrid2D() *Grid2D {
	return &Grid2D{ShowGrid: true, ShowAxes: true, ShowLabels: true}
}

// Spacing returns the world distance between grid lines at zoom.
func Spacing(zoom float64) float64 {
	switch {
	case zoom < 20:
		return 5
	case zoom < 50:
		return 2
	case zoom > 300:
		return 0.2
	case zoom > 150:
		return 0.5
	}
	return 1
}

// ticks lists multiples of spacing covering [lo, hi].
func ticks(lo, hi, spacing float64) []float64 {
	var out []float64
	first := math.Floor(lo / spacing)
	for i := first; i*spacing <= hi; i++ {
		out = append(out, i*spacing)
	}
	return out
}

func isMajor(v, spacing float64) bool {
	if math.Abs(v) < 1e-3 {
		return true
	}
	return int64(math.Round(v/spacing))%majorEvery == 0
}

func (g *Grid2D) Lines(c *Camera2D) []GridLine {
	if !g.ShowGrid {
		return nil
	}
	minX, minY, maxX, maxY := c.ViewBounds()
	spacing := Spacing(c.Zoom())
	var lines []GridLine
	for _, x := range ticks(minX, maxX, spacing) {
		lines = append(lines, GridLine{From: [3]float64{x, minY}, To: [3]float64{x, maxY}, Major: isMajor(x, spacing)})
	}
	for _, y := range ticks(minY, maxY, spacing) {
		lines = append(lines, GridLine{From: [3]float64{minX, y}, To: [3]float64{maxX, y}, Major: isMajor(y, spacing)})
	}
	return lines
}

func (g *Grid2D) Axes(c *Camera2D) []AxisLine {
	if !g.ShowAxes {
		return nil
	}
	minX, minY, maxX, maxY := c.ViewBounds()
	return []AxisLine{
		{From: [3]float64{minX, 0}, To: [3]float64{maxX, 0}, Axis: "x"},
		{From: [3]float64{0, minY}, To: [3]float64{0, maxY}, Axis: "y"},
	}
}

// Labels returns tick labels along both axes, skipping the origin.
func (g *Grid2D) Labels(c *Camera2D) []Label {
	if !g.ShowLabels {
		return nil
	}
	minX, minY, maxX, maxY := c.ViewBounds()
	spacing := Spacing(c.Zoom())
	var labels []Label
	for _, x := range ticks(minX, maxX, spacing) {
		if math.Abs(x) > 1e-3 {
			labels = append(labels, Label{At: [3]float64{x, -0.3}, Text: tickText(x)})
		}
	}
	for _, y := range ticks(minY, maxY, spacing) {
		if math.Abs(y) > 1e-3 {
			labels = append(labels, Label{At: [3]float64{-0.3, y}, Text: tickText(y)})
		}
	}
	return labels
}

func tickText(v float64) string {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Grid3D is a fixed square lattice in the XZ plane with three axes.
type Grid3D struct {
	ShowGrid bool
	ShowAxes bool
	Size     float64
	Spacing  float64
}

func NewGrid3D() *Grid3D {
	return &Grid3D{ShowGrid: true, ShowAxes: true, Size: 10, Spacing: 1}
}

func (g *Grid3D) Lines() []GridLine {
	if !g.ShowGrid || g.Spacing <= 0 {
		return nil
	}
	half := g.Size / 2
	var lines []GridLine
	for _, x := range ticks(-half, half, g.Spacing) {
		lines = append(lines, GridLine{From: [3]float64{x, 0, -half}, To: [3]float64{x, 0, half}, Major: math.Abs(x) < 1e-3})
	}
	for _, z := range ticks(-half, half, g.Spacing) {
		lines = append(lines, GridLine{From: [3]float64{-half, 0, z}, To: [3]float64{half, 0, z}, Major: math.Abs(z) < 1e-3})
	}
	return lines
}

func (g *Grid3D) Axes() []AxisLine {
	if !g.ShowAxes {
		return nil
	}
	l := g.Size/2 + 1
	return []AxisLine{
		{From: [3]float64{-l, 0, 0}, To: [3]float64{l, 0, 0}, Axis: "x"},
		{From: [3]float64{0, -l, 0}, To: [3]float64{0, l, 0}, Axis: "y"},
		{From: [3]float64{0, 0, -l}, To: [3]float64{0, 0, l}, Axis: "z"},
	}
}
