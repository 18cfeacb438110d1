package animation

import (
	"fmt"

	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/linalg"
)

// An Animation is either a *VectorAnimation or a *GridAnimation.
type Animation interface {
	Update(dt float64)
	Reset()
	Duration() float64
	Elapsed() float64
	Progress() float64
	EasedProgress() float64
	Finished() bool
	State() State

	kind()
}

// VectorAnimation moves a vector from a start snapshot to an end snapshot.
type VectorAnimation struct {
	Clock
	start linalg.Vector
	end   linalg.Vector
}

func (*VectorAnimation) kind() {}

// NewVectorAnimation interpolates from start to end. A nil curve uses
// easing.Default.
func NewVectorAnimation(start, end linalg.Vector, duration float64, curve easing.Func) (*VectorAnimation, error) {
	if start.Dim() != end.Dim() {
		return nil, fmt.Errorf("animate %dD vector to %dD: %w", start.Dim(), end.Dim(), linalg.ErrDimensionMismatch)
	}
	return &VectorAnimation{Clock: newClock(duration, curve), start: start, end: end}, nil
}

// FromVector builds the animation a vector requested with Animate. ok is
// false when v has no pending animation.
func FromVector(v linalg.Vector) (a *VectorAnimation, ok bool) {
	p, ok := v.Pending()
	if !ok {
		return nil, false
	}
	prev, ok := v.Previous()
	if !ok {
		return nil, false
	}
	a, err := NewVectorAnimation(prev, v, p.Duration, p.Easing)
	if err != nil {
		return nil, false
	}
	return a, true
}

func (a *VectorAnimation) Start() linalg.Vector { return a.start }
func (a *VectorAnimation) End() linalg.Vector   { return a.end }

// Target identifies the vector this animation comes to rest at.
func (a *VectorAnimation) Target() linalg.ID { return a.end.ID() }

// VectorValue is an interpolated vector state.
type VectorValue struct {
	Dim        int
	Components [3]float64
	Origin     [3]float64
}

// Value interpolates components and origin at the current eased progress.
func (a *VectorAnimation) Value() VectorValue {
	t := a.EasedProgress()
	sc, ec := a.start.Array(), a.end.Array()
	so, eo := a.start.OriginArray(), a.end.OriginArray()
	v := VectorValue{Dim: a.end.Dim()}
	for i := 0; i < 3; i++ {
		v.Components[i] = sc[i] + t*(ec[i]-sc[i])
		v.Origin[i] = so[i] + t*(eo[i]-so[i])
	}
	return v
}

// ValueOf is the resting value of a vector.
func ValueOf(v linalg.Vector) VectorValue {
	return VectorValue{Dim: v.Dim(), Components: v.Array(), Origin: v.OriginArray()}
}
