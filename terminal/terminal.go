// Package terminal plays snapshots in a text console. Each character cell
// stands for a block of cellWidth x cellHeight virtual pixels, so cameras
// keep working in pixel units.
package terminal

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/palette"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/util"
)

const (
	cellWidth  = 8
	cellHeight = 16

	operandCell = 8
)

// Player is the part of a *runner.Runner the terminal drives.
type Player interface {
	Send(c scene.Command) bool
	Step(dt float64) runner.Snapshot
	Interval() time.Duration
	Program() runner.Program
}

type Terminal struct {
	screen tcell.Screen
	player Player

	dragging     bool
	lastX, lastY int
}

// New creates a terminal frontend. The screen is initialised by Run.
func New(screen tcell.Screen, player Player) *Terminal {
	t := new(Terminal)
	t.screen = screen
	t.player = player
	return t
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b, _ := palette.RGBA255(c)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *Terminal) style(c colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(toTcell(c)).Background(toTcell(palette.Background))
}

// resize tells the program the virtual pixel size of the console.
func (t *Terminal) resize() {
	w, h := t.screen.Size()
	t.player.Send(scene.Command{Kind: scene.Resize, Width: w * cellWidth, Height: h * cellHeight})
}

// Run draws at the player's rate until Esc or q is pressed or ctx is done.
// The player advances by the measured time between draws.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer t.screen.Fini()
	t.screen.EnableMouse()
	t.resize()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go t.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(t.player.Interval())
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || t.handle(ev) {
				return nil
			}
		case <-ticker.C:
			now := time.Now()
			t.Draw(t.player.Step(now.Sub(last).Seconds()))
			last = now
			t.screen.Show()
		}
	}
}

// keyCommand maps a key press to a transport command.
func keyCommand(ev *tcell.EventKey) (scene.Command, bool) {
	switch ev.Key() {
	case tcell.KeyRight:
		return scene.Command{Kind: scene.StepForward}, true
	case tcell.KeyLeft:
		return scene.Command{Kind: scene.StepBackward}, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return scene.Command{Kind: scene.TogglePause}, true
		case 'r', 'R':
			return scene.Command{Kind: scene.Replay}, true
		case 'c', 'C':
			return scene.Command{Kind: scene.ResetCamera}, true
		}
	}
	return scene.Command{}, false
}

// handle processes one input event and reports whether to quit.
func (t *Terminal) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return true
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			case 'y', 'Y':
				t.screen.SetClipboard([]byte(t.player.Program().Summary()))
				return false
			}
		}
		if c, ok := keyCommand(ev); ok {
			t.player.Send(c)
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		buttons := ev.Buttons()
		switch {
		case buttons&tcell.WheelUp != 0:
			t.player.Send(scene.Command{Kind: scene.Scroll, Notches: 1, X: float64(x * cellWidth), Y: float64(y * cellHeight)})
		case buttons&tcell.WheelDown != 0:
			t.player.Send(scene.Command{Kind: scene.Scroll, Notches: -1, X: float64(x * cellWidth), Y: float64(y * cellHeight)})
		case buttons&tcell.Button1 != 0:
			if t.dragging && (x != t.lastX || y != t.lastY) {
				t.player.Send(scene.Command{
					Kind:  scene.Drag,
					DX:    float64((x - t.lastX) * cellWidth),
					DY:    float64((y - t.lastY) * cellHeight),
					Shift: ev.Modifiers()&tcell.ModShift != 0,
				})
			}
			t.dragging, t.lastX, t.lastY = true, x, y
		default:
			t.dragging = false
		}
	}
	return false
}

func (t *Terminal) put(col, row int, ch rune, st tcell.Style) {
	w, h := t.screen.Size()
	if col < 0 || row < 0 || col >= w || row >= h {
		return
	}
	t.screen.SetContent(col, row, ch, nil, st)
}

func (t *Terminal) text(col, row int, s string, st tcell.Style) {
	for _, ch := range s {
		t.put(col, row, ch, st)
		col++
	}
}

func cell(sx, sy float64) (int, int) {
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

// lineRune picks a glyph for a segment with pixel direction (dx, dy).
func lineRune(dx, dy float64) rune {
	a := math.Abs(math.Atan2(-dy, dx))
	switch {
	case a < math.Pi/8 || a > 7*math.Pi/8:
		return '─'
	case a > 3*math.Pi/8 && a < 5*math.Pi/8:
		return '│'
	case (dx > 0) == (dy < 0):
		return '╱'
	}
	return '╲'
}

var arrowRunes = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// arrowRune picks the tip glyph for a vector with pixel direction (dx, dy).
func arrowRune(dx, dy float64) rune {
	octant := int(math.Round(math.Atan2(-dy, dx)/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return arrowRunes[octant]
}

// segment plots the cells between two world points. ch 0 picks a glyph
// from the slope.
func (t *Terminal) segment(v scene.View, from, to [3]float64, ch rune, st tcell.Style) {
	x1, y1, ok1 := v.Project(from)
	x2, y2, ok2 := v.Project(to)
	if !ok1 || !ok2 {
		return
	}
	if ch == 0 {
		ch = lineRune(x2-x1, y2-y1)
	}
	c1, r1 := cell(x1, y1)
	c2, r2 := cell(x2, y2)
	steps := max(abs(c2-c1), abs(r2-r1))
	if steps > 4096 {
		return
	}
	for i := 0; i <= steps; i++ {
		f := 0.0
		if steps > 0 {
			f = float64(i) / float64(steps)
		}
		t.put(int(math.Round(util.Lerp(float64(c1), float64(c2), f))), int(math.Round(util.Lerp(float64(r1), float64(r2), f))), ch, st)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (t *Terminal) arrow(v scene.View, a scene.VectorDraw, dim float64) {
	c := a.Color
	if dim < 1 {
		c = palette.Dim(c, dim)
	}
	st := t.style(c)
	t.segment(v, a.Origin, a.Tip(), 0, st)
	x1, y1, ok1 := v.Project(a.Origin)
	x2, y2, ok2 := v.Project(a.Tip())
	if !ok1 || !ok2 {
		return
	}
	col, row := cell(x2, y2)
	t.put(col, row, arrowRune(x2-x1, y2-y1), st.Bold(true))
}

// Draw renders s into the screen buffer. Call Show to display it.
func (t *Terminal) Draw(s runner.Snapshot) {
	t.screen.Fill(' ', t.style(palette.White))
	switch {
	case s.Scene != nil:
		t.drawScene(s.Scene)
	case s.Arith != nil:
		t.drawArith(s.Arith)
	}
	if s.Title != "" {
		w, _ := t.screen.Size()
		t.text((w-len([]rune(s.Title)))/2, 0, s.Title, t.style(palette.White).Bold(true))
	}
}

func (t *Terminal) drawScene(f *scene.Frame) {
	v := f.View
	for _, l := range f.Grid {
		if l.Major {
			t.segment(v, l.From, l.To, '·', t.style(palette.GridMajor))
		}
	}
	for _, g := range f.Transforms {
		st := t.style(g.Color)
		for _, s := range g.Segments {
			t.segment(v, s.From, s.To, '·', st)
		}
	}
	for _, a := range f.Axes {
		t.segment(v, a.From, a.To, 0, t.style(axisColor(a.Axis)))
	}
	for _, l := range f.Labels {
		if x, y, ok := v.Project(l.At); ok {
			col, row := cell(x, y)
			t.text(col, row, l.Text, t.style(palette.Gray))
		}
	}
	for _, g := range f.Ghosts {
		t.arrow(v, g, 0.6)
	}
	for _, a := range f.Vectors {
		t.arrow(v, a, 1)
	}

	_, h := t.screen.Size()
	t.text(0, h-2, fmt.Sprintf("%s  t=%s", f.Status(), util.FormatNumber(f.Progress)), t.style(palette.White))
	t.text(0, h-1, scene.ControlsHint+"  Y:Copy  Q:Quit", t.style(palette.Gray))
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

// operand writes a bracketed grid at (col, row) and returns its width in
// cells.
func (t *Terminal) operand(o *arith.Operand, col, row int) int {
	cols := 0
	if len(o.Values) > 0 {
		cols = len(o.Values[0])
	}
	width := cols*operandCell + 2
	base := t.style(palette.White)
	for i, vals := range o.Values {
		t.put(col, row+i, '[', t.style(palette.Gray))
		for j, val := range vals {
			st := base
			if i == o.HighlightRow || j == o.HighlightCol {
				st = t.style(palette.Eigen1).Bold(true)
			}
			s := util.FormatNumber(val)
			pad := max(0, operandCell-len(s))
			t.text(col+1+j*operandCell+pad/2, row+i, s, st)
		}
		t.put(col+width-1, row+i, ']', t.style(palette.Gray))
	}
	return width
}

func (t *Terminal) drawArith(v *arith.View) {
	w, h := t.screen.Size()
	t.text((w-len([]rune(v.Title)))/2, 2, v.Title, t.style(palette.White))

	col, row := 2, 4
	sign := func(s string) {
		t.text(col+1, row, s, t.style(palette.White))
		col += 4
	}
	col += t.operand(&v.Left, col, row)
	if v.Result == nil && v.ResultText == "" {
		sign("·")
	} else {
		sign("×")
	}
	col += t.operand(&v.Right, col, row)
	sign("=")
	switch {
	case v.Result != nil:
		t.operand(v.Result, col, row)
	case v.ResultText != "":
		t.text(col, row, v.ResultText, t.style(palette.Eigen1).Bold(true))
	default:
		t.text(col, row, "?", t.style(palette.Gray))
	}

	if v.Calculation != "" {
		t.text(2, h-5, v.Calculation, t.style(palette.Eigen2))
	}
	status := "PLAYING"
	if v.Paused {
		status = "PAUSED"
	}
	t.text(0, h-3, fmt.Sprintf("%s  step %d/%d", status, v.Step, v.Total), t.style(palette.White))
	if v.Total > 0 {
		filled := int(math.Min(1, float64(v.Step)/float64(v.Total)) * float64(w))
		t.text(0, h-2, strings.Repeat("█", filled), t.style(palette.Eigen2))
	}
	t.text(0, h-1, arith.ControlsHint+"  Y:Copy  Q:Quit", t.style(palette.Gray))
}
