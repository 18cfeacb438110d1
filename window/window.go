// Package window plays snapshots in a desktop window.
package window

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/matt-g-everett/linviz/palette"
	"github.com/matt-g-everett/linviz/render"
	"github.com/matt-g-everett/linviz/runner"
	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/util"
	"golang.design/x/clipboard"
)

// pulseFrames is the period of the paused indicator.
const pulseFrames = 90

// Player is the part of a *runner.Runner the window drives.
type Player interface {
	Send(c scene.Command) bool
	Step(dt float64) runner.Snapshot
	Interval() time.Duration
	Program() runner.Program
}

// input is the keyboard and mouse state read in one Update.
type input struct {
	toggle, replay, forward, back, reset bool

	mouseDown, shift bool
	x, y             int
	wheel            float64
}

type Game struct {
	player   Player
	fontSize float64

	raster *render.Rasterizer
	canvas *ebiten.Image
	pixels *image.RGBA
	width  int
	height int

	snap runner.Snapshot

	dragging     bool
	lastX, lastY int

	pulse   []float64
	frame   int
	canCopy bool
}

// New creates a window frontend. Text is drawn at fontSize points.
func New(player Player, fontSize float64) *Game {
	g := new(Game)
	g.player = player
	g.fontSize = fontSize
	g.pulse = util.GenerateLut(pulseFrames)
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	} else {
		g.canCopy = true
	}
	return g
}

// commands turns one tick of input into transport and camera commands.
func (g *Game) commands(in input) []scene.Command {
	var cmds []scene.Command
	switch {
	case in.toggle:
		cmds = append(cmds, scene.Command{Kind: scene.TogglePause})
	case in.replay:
		cmds = append(cmds, scene.Command{Kind: scene.Replay})
	case in.forward:
		cmds = append(cmds, scene.Command{Kind: scene.StepForward})
	case in.back:
		cmds = append(cmds, scene.Command{Kind: scene.StepBackward})
	case in.reset:
		cmds = append(cmds, scene.Command{Kind: scene.ResetCamera})
	}

	if in.mouseDown {
		if g.dragging && (in.x != g.lastX || in.y != g.lastY) {
			cmds = append(cmds, scene.Command{
				Kind:  scene.Drag,
				DX:    float64(in.x - g.lastX),
				DY:    float64(in.y - g.lastY),
				Shift: in.shift,
			})
		}
		g.dragging, g.lastX, g.lastY = true, in.x, in.y
	} else {
		g.dragging = false
	}

	if in.wheel != 0 {
		cmds = append(cmds, scene.Command{Kind: scene.Scroll, Notches: in.wheel, X: float64(in.x), Y: float64(in.y)})
	}
	return cmds
}

func readInput() input {
	x, y := ebiten.CursorPosition()
	_, wheel := ebiten.Wheel()
	return input{
		toggle:    inpututil.IsKeyJustPressed(ebiten.KeySpace),
		replay:    inpututil.IsKeyJustPressed(ebiten.KeyR),
		forward:   inpututil.IsKeyJustPressed(ebiten.KeyArrowRight),
		back:      inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft),
		reset:     inpututil.IsKeyJustPressed(ebiten.KeyC),
		mouseDown: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		shift:     ebiten.IsKeyPressed(ebiten.KeyShift),
		x:         x,
		y:         y,
		wheel:     wheel,
	}
}

func (g *Game) copySummary() {
	if !g.canCopy {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(g.player.Program().Summary()))
	log.Printf("Copied summary to clipboard")
}

// Update handles input and advances the player by one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyY) {
		g.copySummary()
	}
	for _, c := range g.commands(readInput()) {
		g.player.Send(c)
	}
	g.snap = g.player.Step(1 / float64(ebiten.TPS()))
	g.frame++
	return nil
}

func paused(s runner.Snapshot) bool {
	switch {
	case s.Scene != nil:
		return s.Scene.Paused
	case s.Arith != nil:
		return s.Arith.Paused
	}
	return false
}

// pulseAlpha is the paused indicator opacity for a frame.
func (g *Game) pulseAlpha(frame int) float64 {
	return 0.3 + 0.7*g.pulse[frame%len(g.pulse)]
}

// Draw blits the rasterized snapshot and overlays the paused pulse and
// the frame rate.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.raster == nil {
		return
	}
	img := g.raster.Draw(g.snap)
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*g.width {
		g.canvas.WritePixels(rgba.Pix)
	} else {
		draw.Draw(g.pixels, g.pixels.Rect, img, img.Bounds().Min, draw.Src)
		g.canvas.WritePixels(g.pixels.Pix)
	}
	screen.DrawImage(g.canvas, nil)

	if paused(g.snap) {
		r, gr, b, _ := palette.RGBA255(palette.Eigen1)
		a := g.pulseAlpha(g.frame)
		c := color.RGBA{R: uint8(float64(r) * a), G: uint8(float64(gr) * a), B: uint8(float64(b) * a), A: uint8(255 * a)}
		vector.FillRect(screen, float32(g.width-24), 10, 12, 12, c, false)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f fps", ebiten.ActualFPS()), g.width-70, g.height-20)
}

// Layout resizes the canvas and the cameras to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return max(outsideWidth, 1), max(outsideHeight, 1)
	}
	if outsideWidth != g.width || outsideHeight != g.height {
		raster, err := render.NewRasterizer(outsideWidth, outsideHeight, g.fontSize)
		if err != nil {
			log.Printf("Resize failed: %v", err)
			return outsideWidth, outsideHeight
		}
		if g.canvas != nil {
			g.canvas.Deallocate()
		}
		g.raster = raster
		g.canvas = ebiten.NewImage(outsideWidth, outsideHeight)
		g.pixels = image.NewRGBA(image.Rect(0, 0, outsideWidth, outsideHeight))
		g.width, g.height = outsideWidth, outsideHeight
		g.player.Send(scene.Command{Kind: scene.Resize, Width: outsideWidth, Height: outsideHeight})
	}
	return outsideWidth, outsideHeight
}

// Run opens a resizable window and plays until it is closed or Esc is
// pressed.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(time.Second / g.player.Interval()))
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
