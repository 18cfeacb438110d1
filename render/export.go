package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/matt-g-everett/linviz/runner"
	"golang.org/x/image/draw"
)

// EncodePNG rasterizes s and writes it to w.
func (r *Rasterizer) EncodePNG(w io.Writer, s runner.Snapshot) error {
	return png.Encode(w, r.Draw(s))
}

// PNGSink writes every snapshot as frame-NNNN.png in a directory.
type PNGSink struct {
	r     *Rasterizer
	dir   string
	count int
}

func NewPNGSink(r *Rasterizer, dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &PNGSink{r: r, dir: dir}, nil
}

func (p *PNGSink) Publish(s runner.Snapshot) error {
	path := filepath.Join(p.dir, fmt.Sprintf("frame-%04d.png", p.count))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := p.r.EncodePNG(w, s); err != nil {
		f.Close()
		return fmt.Errorf("render: %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("render: %s: %w", path, err)
	}
	p.count++
	return f.Close()
}

// Count is the number of frames written.
func (p *PNGSink) Count() int { return p.count }

// GIFSink collects snapshots into an animated GIF. Frames are scaled by
// Scale and dithered onto the Plan 9 palette.
type GIFSink struct {
	r     *Rasterizer
	delay int
	Scale float64
	anim  gif.GIF
}

// NewGIFSink records frames shown for delay hundredths of a second each.
func NewGIFSink(r *Rasterizer, delay int) *GIFSink {
	if delay <= 0 {
		delay = 2
	}
	return &GIFSink{r: r, delay: delay, Scale: 1}
}

func (g *GIFSink) Publish(s runner.Snapshot) error {
	src := g.r.Draw(s)
	b := src.Bounds()
	if g.Scale > 0 && g.Scale != 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, int(float64(b.Dx())*g.Scale), int(float64(b.Dy())*g.Scale)))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)
		src = scaled
		b = scaled.Bounds()
	}
	frame := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(frame, b, src, b.Min)
	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Len is the number of recorded frames.
func (g *GIFSink) Len() int { return len(g.anim.Image) }

// Encode writes the animation, looping forever.
func (g *GIFSink) Encode(w io.Writer) error {
	if len(g.anim.Image) == 0 {
		return fmt.Errorf("render: no frames recorded")
	}
	g.anim.LoopCount = 0
	return gif.EncodeAll(w, &g.anim)
}

// Save encodes the animation to path.
func (g *GIFSink) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := g.Encode(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("render: %w", err)
	}
	log.Printf("Wrote %d frames to %s", g.Len(), path)
	return f.Close()
}
