// Package render rasterizes snapshots in software, for PNG frames, GIF
// export and the HTTP image endpoint.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/palette"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/util"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cellWidth  = 64.0
	cellHeight = 30.0
)

// Rasterizer draws snapshots onto a fixed-size canvas. It is not safe
// for concurrent use.
type Rasterizer struct {
	width, height int
	face          text.Face
}

// NewRasterizer creates a width x height rasterizer using Go Regular at
// fontSize points.
func NewRasterizer(width, height int, fontSize float64) (*Rasterizer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: bad canvas size %dx%d", width, height)
	}
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Rasterizer{width: width, height: height, face: source.Face(fontSize)}, nil
}

func (r *Rasterizer) Size() (width, height int) { return r.width, r.height }

func setColor(dc *gg.Context, c colorful.Color, alpha float64) {
	c = c.Clamped()
	dc.SetRGBA(c.R, c.G, c.B, alpha)
}

// Draw renders s and returns the canvas.
func (r *Rasterizer) Draw(s runner.Snapshot) image.Image {
	dc := gg.NewContext(r.width, r.height)
	defer dc.Close()
	bg := palette.Background
	dc.ClearWithColor(gg.RGB(bg.R, bg.G, bg.B))
	dc.SetFont(r.face)

	switch {
	case s.Scene != nil:
		r.drawScene(dc, s.Scene)
	case s.Arith != nil:
		r.drawArith(dc, s.Arith)
	}
	if s.Title != "" {
		setColor(dc, palette.White, 1)
		dc.DrawStringAnchored(s.Title, float64(r.width)/2, 10, 0.5, 0)
	}
	return dc.Image()
}

func (r *Rasterizer) line(dc *gg.Context, v scene.View, from, to [3]float64) {
	x1, y1, ok1 := v.Project(from)
	x2, y2, ok2 := v.Project(to)
	if !ok1 || !ok2 {
		return
	}
	dc.DrawLine(x1, y1, x2, y2)
	_ = dc.Stroke()
}

func axisColor(axis string) colorful.Color {
	switch axis {
	case "x":
		return palette.AxisX
	case "y":
		return palette.AxisY
	}
	return palette.AxisZ
}

func (r *Rasterizer) drawScene(dc *gg.Context, f *scene.Frame) {
	v := f.View

	for _, l := range f.Grid {
		if l.Major {
			setColor(dc, palette.GridMajor, 1)
			dc.SetLineWidth(1.5)
		} else {
			setColor(dc, palette.Grid, 1)
			dc.SetLineWidth(1)
		}
		r.line(dc, v, l.From, l.To)
	}

	for _, t := range f.Transforms {
		setColor(dc, t.Color, 0.7)
		dc.SetLineWidth(1.5)
		for _, s := range t.Segments {
			r.line(dc, v, s.From, s.To)
		}
	}

	dc.SetLineWidth(2)
	for _, a := range f.Axes {
		setColor(dc, axisColor(a.Axis), 1)
		r.line(dc, v, a.From, a.To)
	}

	setColor(dc, palette.Gray, 1)
	for _, l := range f.Labels {
		if x, y, ok := v.Project(l.At); ok {
			dc.DrawStringAnchored(l.Text, x, y, 0.5, 0.5)
		}
	}

	head := util.Clamp(0.3*v.WorldUnit(), 6, 20)
	for _, g := range f.Ghosts {
		r.arrow(dc, v, g, head, 0.6)
	}
	for _, a := range f.Vectors {
		r.arrow(dc, v, a, head, 1)
	}

	setColor(dc, palette.White, 1)
	dc.DrawString(fmt.Sprintf("%s  t=%s", f.Status(), util.FormatNumber(f.Progress)), 10, 20)
	setColor(dc, palette.Gray, 1)
	dc.DrawString(scene.ControlsHint, 10, float64(r.height)-10)
}

func (r *Rasterizer) arrow(dc *gg.Context, v scene.View, a scene.VectorDraw, head, alpha float64) {
	x1, y1, ok1 := v.Project(a.Origin)
	x2, y2, ok2 := v.Project(a.Tip())
	if !ok1 || !ok2 {
		return
	}
	setColor(dc, a.Color, alpha)
	dc.SetLineWidth(a.Width)
	dc.DrawLine(x1, y1, x2, y2)
	_ = dc.Stroke()

	lx, ly, rx, ry, ok := util.ArrowHead(x1, y1, x2, y2, head)
	if !ok {
		return
	}
	dc.MoveTo(x2, y2)
	dc.LineTo(lx, ly)
	dc.LineTo(rx, ry)
	dc.ClosePath()
	_ = dc.Fill()
}

// operand draws a bracketed grid of numbers with its top-left corner at
// (x, y) and returns its width.
func (r *Rasterizer) operand(dc *gg.Context, o *arith.Operand, x, y float64) float64 {
	rows := len(o.Values)
	cols := 0
	if rows > 0 {
		cols = len(o.Values[0])
	}
	w, h := float64(cols)*cellWidth, float64(rows)*cellHeight

	for i, row := range o.Values {
		for j, val := range row {
			cx, cy := x+float64(j)*cellWidth, y+float64(i)*cellHeight
			if i == o.HighlightRow || j == o.HighlightCol {
				setColor(dc, palette.Eigen1, 0.25)
				dc.DrawRectangle(cx+2, cy+2, cellWidth-4, cellHeight-4)
				_ = dc.Fill()
			}
			setColor(dc, palette.White, 1)
			dc.DrawStringAnchored(util.FormatNumber(val), cx+cellWidth/2, cy+cellHeight/2, 0.5, 0.5)
		}
	}

	setColor(dc, palette.Gray, 1)
	dc.SetLineWidth(2)
	for _, side := range []struct{ at, dir float64 }{{x - 4, 1}, {x + w + 4, -1}} {
		dc.MoveTo(side.at+6*side.dir, y)
		dc.LineTo(side.at, y)
		dc.LineTo(side.at, y+h)
		dc.LineTo(side.at+6*side.dir, y+h)
		_ = dc.Stroke()
	}
	return w
}

func (r *Rasterizer) drawArith(dc *gg.Context, v *arith.View) {
	setColor(dc, palette.White, 1)
	dc.DrawStringAnchored(v.Title, float64(r.width)/2, 40, 0.5, 0)

	x, y := 60.0, 100.0
	sign := func(s string) {
		setColor(dc, palette.White, 1)
		dc.DrawStringAnchored(s, x+20, y+cellHeight, 0.5, 0.5)
		x += 40
	}
	x += r.operand(dc, &v.Left, x, y) + 10
	if v.Result == nil && v.ResultText == "" {
		sign("·")
	} else {
		sign("×")
	}
	x += r.operand(dc, &v.Right, x, y) + 10
	sign("=")
	switch {
	case v.Result != nil:
		r.operand(dc, v.Result, x, y)
	case v.ResultText != "":
		setColor(dc, palette.Eigen1, 1)
		dc.DrawStringAnchored(v.ResultText, x+cellWidth/2, y+cellHeight, 0.5, 0.5)
	default:
		setColor(dc, palette.Gray, 1)
		dc.DrawStringAnchored("?", x+cellWidth/2, y+cellHeight, 0.5, 0.5)
	}

	if v.Calculation != "" {
		setColor(dc, palette.Eigen2, 1)
		dc.DrawStringAnchored(v.Calculation, float64(r.width)/2, float64(r.height)-80, 0.5, 0.5)
	}
	status := "PLAYING"
	if v.Paused {
		status = "PAUSED"
	}
	setColor(dc, palette.White, 1)
	dc.DrawString(fmt.Sprintf("%s  step %d/%d", status, v.Step, v.Total), 10, 20)
	setColor(dc, palette.Gray, 1)
	dc.DrawString(arith.ControlsHint, 10, float64(r.height)-10)
	progress := 0.0
	if v.Total > 0 {
		progress = math.Min(1, float64(v.Step)/float64(v.Total))
	}
	setColor(dc, palette.Eigen2, 0.8)
	dc.DrawRectangle(10, float64(r.height)-40, progress*float64(r.width-20), 6)
	_ = dc.Fill()
}
