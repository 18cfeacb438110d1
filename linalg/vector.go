package linalg

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/palette"
)

// ID identifies a vector across the copies of its value. Every
// constructor and every derivation allocates a fresh ID; restyling
// (WithOrigin, WithColor, Animate) keeps it.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Pending describes the animation a vector requests from its previous
// state to itself. It is consumed when the vector is admitted into a scene
// or timeline.
type Pending struct {
	Duration float64
	Easing   easing.Func
}

// Vector is an immutable 2D or 3D arrow with an origin and a color.
type Vector struct {
	id      ID
	dim     int
	c       [3]float64
	o       [3]float64
	color   colorful.Color
	prev    *Vector
	pending *Pending
}

// NewVector creates a vector from 2 or 3 components with its origin at 0.
func NewVector(components ...float64) (Vector, error) {
	if len(components) != 2 && len(components) != 3 {
		return Vector{}, fmt.Errorf("vector with %d components: %w", len(components), ErrDimension)
	}
	v := Vector{id: nextID(), dim: len(components), color: palette.Vector}
	copy(v.c[:], components)
	return v, nil
}

// MustVector is like NewVector but panics on a bad component count.
func MustVector(components ...float64) Vector {
	v, err := NewVector(components...)
	if err != nil {
		panic(err)
	}
	return v
}

// ID returns the identity shared by all copies of this vector.
func (v Vector) ID() ID { return v.id }

// Dim returns 2 or 3.
func (v Vector) Dim() int { return v.dim }

func (v Vector) X() float64 { return v.c[0] }
func (v Vector) Y() float64 { return v.c[1] }

// Z returns the third component, or 0 for a 2D vector.
func (v Vector) Z() float64 { return v.c[2] }

// Components returns a copy of the components.
func (v Vector) Components() []float64 {
	return append([]float64(nil), v.c[:v.dim]...)
}

// Origin returns a copy of the origin point.
func (v Vector) Origin() []float64 {
	return append([]float64(nil), v.o[:v.dim]...)
}

// Array returns the components padded to three entries.
func (v Vector) Array() [3]float64 { return v.c }

// OriginArray returns the origin padded to three entries.
func (v Vector) OriginArray() [3]float64 { return v.o }

func (v Vector) Color() colorful.Color { return v.color }

// WithOrigin returns the vector anchored at origin.
func (v Vector) WithOrigin(origin ...float64) (Vector, error) {
	if len(origin) != v.dim {
		return v, fmt.Errorf("origin with %d entries for %dD vector: %w", len(origin), v.dim, ErrDimensionMismatch)
	}
	var o [3]float64
	copy(o[:], origin)
	v.o = o
	return v, nil
}

// WithColor returns the vector drawn in c.
func (v Vector) WithColor(c colorful.Color) Vector {
	v.color = c
	return v
}

// WithColorName returns the vector drawn in the named palette color.
func (v Vector) WithColorName(name string) (Vector, error) {
	c, err := palette.Get(name)
	if err != nil {
		return v, err
	}
	return v.WithColor(c), nil
}

// Magnitude returns the Euclidean length of the components.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(dot(v.c, v.c))
}

// Normalized returns the unit vector in the same direction, or the zero
// vector when v has no length.
func (v Vector) Normalized() Vector {
	mag := v.Magnitude()
	out := Vector{id: nextID(), dim: v.dim, color: palette.Vector}
	if mag < Epsilon {
		return out
	}
	for i := 0; i < v.dim; i++ {
		out.c[i] = v.c[i] / mag
	}
	return out
}

// derive builds a new vector that remembers v as its previous state.
func (v Vector) derive(c, o [3]float64) Vector {
	snapshot := v
	snapshot.prev = nil
	snapshot.pending = nil
	return Vector{id: nextID(), dim: v.dim, c: c, o: o, color: v.color, prev: &snapshot}
}

// Transform applies m to the components, and to the origin unless the
// origin is 0.
func (v Vector) Transform(m Matrix) (Vector, error) {
	if m.dim != v.dim {
		return v, fmt.Errorf("transform %dD vector by %dx%d matrix: %w", v.dim, m.dim, m.dim, ErrDimensionMismatch)
	}
	o := v.o
	if o != ([3]float64{}) {
		o = m.Apply(o)
	}
	return v.derive(m.Apply(v.c), o), nil
}

// Scale multiplies the components by factor.
func (v Vector) Scale(factor float64) Vector {
	var c [3]float64
	for i := 0; i < v.dim; i++ {
		c[i] = v.c[i] * factor
	}
	return v.derive(c, v.o)
}

// Negate flips the vector.
func (v Vector) Negate() Vector { return v.Scale(-1) }

// Add returns v + other, keeping v's origin.
func (v Vector) Add(other Vector) (Vector, error) {
	if err := v.sameDim(other, "add"); err != nil {
		return v, err
	}
	var c [3]float64
	for i := 0; i < v.dim; i++ {
		c[i] = v.c[i] + other.c[i]
	}
	return v.derive(c, v.o), nil
}

// Subtract returns v - other, keeping v's origin.
func (v Vector) Subtract(other Vector) (Vector, error) {
	if err := v.sameDim(other, "subtract"); err != nil {
		return v, err
	}
	var c [3]float64
	for i := 0; i < v.dim; i++ {
		c[i] = v.c[i] - other.c[i]
	}
	return v.derive(c, v.o), nil
}

// Dot returns the scalar product.
func (v Vector) Dot(other Vector) (float64, error) {
	if err := v.sameDim(other, "dot"); err != nil {
		return 0, err
	}
	return dot(v.c, other.c), nil
}

// Cross returns the cross product of two 3D vectors. The result is a fresh
// vector with no previous state.
func (v Vector) Cross(other Vector) (Vector, error) {
	if v.dim != 3 || other.dim != 3 {
		return Vector{}, ErrCrossDimension
	}
	a, b := v.c, other.c
	return NewVector(
		a[1]*b[2]-a[2]*b[1],
		a[2]*b[0]-a[0]*b[2],
		a[0]*b[1]-a[1]*b[0],
	)
}

// ProjectOnto returns the projection of v onto other. Projecting onto a
// (near) zero vector yields the zero vector.
func (v Vector) ProjectOnto(other Vector) (Vector, error) {
	if err := v.sameDim(other, "project"); err != nil {
		return v, err
	}
	magSq := dot(other.c, other.c)
	if magSq < Epsilon {
		return Vector{id: nextID(), dim: v.dim, color: palette.Vector}, nil
	}
	scalar := dot(v.c, other.c) / magSq
	var c [3]float64
	for i := 0; i < v.dim; i++ {
		c[i] = scalar * other.c[i]
	}
	return v.derive(c, v.o), nil
}

// AngleWith returns the angle between the vectors in radians. A zero
// vector on either side gives π/2.
func (v Vector) AngleWith(other Vector) (float64, error) {
	if err := v.sameDim(other, "angle"); err != nil {
		return 0, err
	}
	cos := dot(v.c, other.c) / (v.Magnitude()*other.Magnitude() + Epsilon)
	return math.Acos(math.Max(-1, math.Min(1, cos))), nil
}

// Previous returns the state v was derived from, if any.
func (v Vector) Previous() (Vector, bool) {
	if v.prev == nil {
		return Vector{}, false
	}
	return *v.prev, true
}

// Animate requests an animation from the previous state to v. It has no
// effect on a vector that was not derived from another one.
func (v Vector) Animate(duration float64, curve ...easing.Func) Vector {
	if v.prev == nil {
		return v
	}
	p := &Pending{Duration: duration, Easing: easing.Default}
	if len(curve) > 0 && curve[0] != nil {
		p.Easing = curve[0]
	}
	v.pending = p
	return v
}

// Pending returns the requested animation, if any.
func (v Vector) Pending() (Pending, bool) {
	if v.pending == nil {
		return Pending{}, false
	}
	return *v.pending, true
}

// Equal compares components within floating tolerance. Origin, color and
// identity are ignored.
func (v Vector) Equal(other Vector) bool {
	if v.dim != other.dim {
		return false
	}
	for i := 0; i < v.dim; i++ {
		if !closeTo(v.c[i], other.c[i]) {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	if v.dim == 3 {
		return fmt.Sprintf("Vector(%.3f, %.3f, %.3f)", v.c[0], v.c[1], v.c[2])
	}
	return fmt.Sprintf("Vector(%.3f, %.3f)", v.c[0], v.c[1])
}

func (v Vector) sameDim(other Vector, op string) error {
	if v.dim != other.dim {
		return fmt.Errorf("%s %dD and %dD vectors: %w", op, v.dim, other.dim, ErrDimensionMismatch)
	}
	return nil
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// closeTo mirrors numpy.allclose defaults.
func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}
