package animation

import (
	"errors"
	"math"
	"testing"

	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/linalg"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func gridAnim(t *testing.T, target linalg.Matrix, d float64, curve easing.Func) *GridAnimation {
	t.Helper()
	a, err := NewGridAnimation(target, d, curve)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestClockFinishesAtDuration(t *testing.T) {
	for _, name := range easing.Names() {
		curve, _ := easing.Lookup(name)
		for _, d := range []float64{0.01, 0.5, 1, 3.7} {
			c := newClock(d, curve)
			c.Update(d)
			if c.Progress() != 1 || !c.Finished() {
				t.Fatalf("%s d=%v: progress %v finished %v", name, d, c.Progress(), c.Finished())
			}
			if !approx(c.EasedProgress(), 1) {
				t.Fatalf("%s d=%v: eased %v", name, d, c.EasedProgress())
			}
			c.Update(d)
			if c.Elapsed() != d || c.State() != Finished {
				t.Fatalf("%s d=%v: update after finish changed elapsed to %v", name, d, c.Elapsed())
			}
		}
	}
}

func TestClockStates(t *testing.T) {
	c := newClock(1, easing.Linear)
	if c.State() != Idle {
		t.Fatalf("state = %v", c.State())
	}
	c.Update(0.25)
	if c.State() != Running || !approx(c.Progress(), 0.25) {
		t.Fatalf("state = %v progress = %v", c.State(), c.Progress())
	}
	c.Update(-1)
	if !approx(c.Elapsed(), 0.25) {
		t.Fatalf("negative dt moved elapsed to %v", c.Elapsed())
	}
	c.Update(5)
	if c.State() != Finished || c.Elapsed() != 1 {
		t.Fatalf("state = %v elapsed = %v", c.State(), c.Elapsed())
	}
	c.Reset()
	if c.State() != Idle || c.Elapsed() != 0 {
		t.Fatalf("after reset state = %v elapsed = %v", c.State(), c.Elapsed())
	}
}

func TestZeroDuration(t *testing.T) {
	c := newClock(0, nil)
	if c.Progress() != 1 {
		t.Fatalf("progress = %v", c.Progress())
	}
	c.Update(0)
	if !c.Finished() {
		t.Fatal("zero-length clock should finish on its first update")
	}
}

func TestVectorAnimationEndpoints(t *testing.T) {
	start, _ := linalg.MustVector(1, 2).WithOrigin(0, 1)
	end, _ := linalg.MustVector(-3, 5).WithOrigin(2, 2)
	for _, name := range []string{"linear", "in_out_cubic", "out_sine", "in_quad"} {
		curve, _ := easing.Lookup(name)
		a, err := NewVectorAnimation(start, end, 2, curve)
		if err != nil {
			t.Fatal(err)
		}
		if got := a.Value(); got != ValueOf(start) {
			t.Fatalf("%s start value = %+v", name, got)
		}
		a.Update(2)
		got, want := a.Value(), ValueOf(end)
		for i := 0; i < 3; i++ {
			if !approx(got.Components[i], want.Components[i]) || !approx(got.Origin[i], want.Origin[i]) {
				t.Fatalf("%s end value = %+v, want %+v", name, got, want)
			}
		}
	}
}

func TestVectorAnimationMidpoint(t *testing.T) {
	a, _ := NewVectorAnimation(linalg.MustVector(0, 0), linalg.MustVector(4, 2), 1, easing.Linear)
	a.Update(0.5)
	v := a.Value()
	if !approx(v.Components[0], 2) || !approx(v.Components[1], 1) {
		t.Fatalf("midpoint = %+v", v)
	}
}

func TestVectorAnimationDimension(t *testing.T) {
	_, err := NewVectorAnimation(linalg.MustVector(1, 2), linalg.MustVector(1, 2, 3), 1, nil)
	if !errors.Is(err, linalg.ErrDimensionMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestFromVector(t *testing.T) {
	v := linalg.MustVector(1, 0)
	if _, ok := FromVector(v); ok {
		t.Fatal("plain vector should not produce an animation")
	}
	w, _ := v.Transform(linalg.Rotation(math.Pi / 2))
	if _, ok := FromVector(w); ok {
		t.Fatal("vector without Animate should not produce an animation")
	}
	w = w.Animate(0.75)
	a, ok := FromVector(w)
	if !ok {
		t.Fatal("expected an animation")
	}
	if a.Target() != w.ID() || a.Start().ID() != v.ID() || a.Duration() != 0.75 {
		t.Fatalf("animation = %+v", a)
	}
}

func TestGridAnimationHalfway(t *testing.T) {
	target := linalg.MustMatrix([][]float64{{2, 0}, {0, 2}})
	a := gridAnim(t, target, 1, easing.Linear)
	a.Update(0.5)
	want := linalg.MustMatrix([][]float64{{1.5, 0}, {0, 1.5}})
	if !a.Value().Equal(want) {
		t.Fatalf("value = %v", a.Value())
	}
}

func TestGridLines(t *testing.T) {
	a := gridAnim(t, linalg.MustMatrix([][]float64{{2, 0}, {0, 1}}), 1, easing.Linear)
	lines := a.Lines(DefaultBounds, DefaultDensity)
	if len(lines) != 22 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0].From != [3]float64{-5, -5} || lines[0].To != [3]float64{-5, 5} {
		t.Fatalf("identity first line = %+v", lines[0])
	}

	a.Update(1)
	lines = a.Lines(DefaultBounds, DefaultDensity)
	if lines[0].From != [3]float64{-10, -5} {
		t.Fatalf("transformed first line = %+v", lines[0])
	}
	last := lines[len(lines)-1]
	if last.From != [3]float64{-10, 5} || last.To != [3]float64{10, 5} {
		t.Fatalf("transformed last line = %+v", last)
	}
}

func TestGridAnimationRejectsZeroMatrix(t *testing.T) {
	if _, err := NewGridAnimation(linalg.Matrix{}, 1, nil); !errors.Is(err, linalg.ErrDimension) {
		t.Fatalf("err = %v", err)
	}
}

func TestGridLines3DLieInPlane(t *testing.T) {
	a := gridAnim(t, linalg.RotationX(0), 1, nil)
	for _, s := range a.Lines(DefaultBounds, 4) {
		if s.From[1] != 0 || s.To[1] != 0 {
			t.Fatalf("segment %+v leaves the y=0 plane", s)
		}
	}
}
