package scene

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linviz/animation"
)

// ghostDim is how much the start state of an animating vector is darkened.
const ghostDim = 0.4

// VectorDraw is one arrow to draw.
type VectorDraw struct {
	Dim        int            `json:"dim"`
	Components [3]float64     `json:"components"`
	Origin     [3]float64     `json:"origin"`
	Color      colorful.Color `json:"-"`
	Hex        string         `json:"color"`
	Width      float64        `json:"width"`
}

// Tip is the arrow end point.
func (v VectorDraw) Tip() [3]float64 {
	return [3]float64{v.Origin[0] + v.Components[0], v.Origin[1] + v.Components[1], v.Origin[2] + v.Components[2]}
}

// GridDraw is a lattice deformed by an interpolated matrix.
type GridDraw struct {
	Matrix   [][]float64         `json:"matrix"`
	Progress float64             `json:"progress"`
	Segments []animation.Segment `json:"segments"`
	Hex      string              `json:"color"`
	Color    colorful.Color      `json:"-"`
}

// Frame is everything a renderer needs for one tick. It holds no
// references into the scene.
type Frame struct {
	Dim      int     `json:"dim"`
	Time     float64 `json:"time"`
	Progress float64 `json:"progress"`
	Paused   bool    `json:"paused"`
	Finished bool    `json:"finished"`
	View     View    `json:"view"`

	Grid   []GridLine `json:"grid,omitempty"`
	Axes   []AxisLine `json:"axes,omitempty"`
	Labels []Label    `json:"labels,omitempty"`

	Transforms []GridDraw   `json:"transforms,omitempty"`
	Ghosts     []VectorDraw `json:"ghosts,omitempty"`
	Vectors    []VectorDraw `json:"vectors"`
}

// Status is the one-line transport state shown by frontends.
func (f *Frame) Status() string {
	if f.Paused {
		return "PAUSED"
	}
	return "PLAYING"
}

// ControlsHint lists the frontend key bindings.
const ControlsHint = "Space:Pause  R:Replay  ←→:Step  C:Reset  Esc:Exit"

func vectorDraw(v animation.VectorValue, c colorful.Color, width float64) VectorDraw {
	return VectorDraw{Dim: v.Dim, Components: v.Components, Origin: v.Origin, Color: c, Hex: c.Clamped().Hex(), Width: width}
}
