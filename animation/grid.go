package animation

import (
	"fmt"

	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/linalg"
)

// Segment is a line between two points. 2D segments leave the third
// coordinate at 0.
type Segment struct {
	From [3]float64 `json:"from"`
	To   [3]float64 `json:"to"`
}

// Bounds is the extent of the reference lattice. The Y range is unused by
// the 3D lattice, which lies in the y=0 plane.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// DefaultBounds spans -5..5 on every axis.
var DefaultBounds = Bounds{MinX: -5, MinY: -5, MinZ: -5, MaxX: 5, MaxY: 5, MaxZ: 5}

// DefaultDensity is the number of subdivisions per lattice side.
const DefaultDensity = 10

// GridAnimation deforms a reference lattice from the identity to a
// target matrix.
type GridAnimation struct {
	Clock
	target   linalg.Matrix
	identity linalg.Matrix
}

func (*GridAnimation) kind() {}

// NewGridAnimation animates the lattice toward target. A nil curve uses
// easing.Default. The zero Matrix is rejected with linalg.ErrDimension.
func NewGridAnimation(target linalg.Matrix, duration float64, curve easing.Func) (*GridAnimation, error) {
	id, err := linalg.Identity(target.Dim())
	if err != nil {
		return nil, fmt.Errorf("grid animation: %w", err)
	}
	return &GridAnimation{Clock: newClock(duration, curve), target: target, identity: id}, nil
}

func (a *GridAnimation) Target() linalg.Matrix { return a.target }

// Value is identity + t·(target − identity) at the current eased progress.
func (a *GridAnimation) Value() linalg.Matrix {
	m, _ := linalg.Lerp(a.identity, a.target, a.EasedProgress())
	return m
}

// Lines returns the lattice under the current matrix: density+1 lines of
// constant x followed by density+1 lines of constant y, or of constant z
// for a 3x3 target.
func (a *GridAnimation) Lines(b Bounds, density int) []Segment {
	if density < 1 {
		density = 1
	}
	m := a.Value()
	lines := make([]Segment, 0, 2*(density+1))
	if m.Dim() == 3 {
		for i := 0; i <= density; i++ {
			x := b.MinX + float64(i)/float64(density)*(b.MaxX-b.MinX)
			lines = append(lines, Segment{m.Apply([3]float64{x, 0, b.MinZ}), m.Apply([3]float64{x, 0, b.MaxZ})})
		}
		for i := 0; i <= density; i++ {
			z := b.MinZ + float64(i)/float64(density)*(b.MaxZ-b.MinZ)
			lines = append(lines, Segment{m.Apply([3]float64{b.MinX, 0, z}), m.Apply([3]float64{b.MaxX, 0, z})})
		}
		return lines
	}
	for i := 0; i <= density; i++ {
		x := b.MinX + float64(i)/float64(density)*(b.MaxX-b.MinX)
		lines = append(lines, Segment{m.Apply([3]float64{x, b.MinY}), m.Apply([3]float64{x, b.MaxY})})
	}
	for i := 0; i <= density; i++ {
		y := b.MinY + float64(i)/float64(density)*(b.MaxY-b.MinY)
		lines = append(lines, Segment{m.Apply([3]float64{b.MinX, y}), m.Apply([3]float64{b.MaxX, y})})
	}
	return lines
}
