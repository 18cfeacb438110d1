package arith

import (
	"errors"
	"testing"

	"github.com/matt-g-everett/linviz/scene"
)

func TestMatrixVectorSteps(t *testing.T) {
	w, err := NewMatrixVector([][]float64{{2, -1, 3}, {0, 1, 4}}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if w.Total() != 3 {
		t.Fatalf("total = %d", w.Total())
	}

	v := w.View()
	if v.Result != nil || v.Calculation != "" || v.Left.HighlightRow != 0 {
		t.Fatalf("step 0 view = %+v", v)
	}

	w.Update(0.5)
	w.Update(0.5)
	v = w.View()
	if w.Step() != 1 {
		t.Fatalf("step = %d", w.Step())
	}
	if v.Calculation != "Row 1: 2×1 + -1×2 + 3×3 = 9" {
		t.Fatalf("calculation = %q", v.Calculation)
	}
	if v.Result.Values[0][0] != 9 || v.Result.Values[1][0] != 0 {
		t.Fatalf("partial result = %v", v.Result.Values)
	}

	w.Advance(1)
	v = w.View()
	if v.Calculation != "Row 2: 0×1 + 1×2 + 4×3 = 14" || v.Left.HighlightRow != 1 {
		t.Fatalf("step 2 view = %+v", v)
	}

	w.Advance(5)
	v = w.View()
	if w.Step() != w.Total() || !w.Done() || v.Calculation != "" || v.Left.HighlightRow != -1 {
		t.Fatalf("final view = %+v", v)
	}
	if v.Result.Values[1][0] != 14 {
		t.Fatalf("final result = %v", v.Result.Values)
	}
}

func TestMatrixMatrixSteps(t *testing.T) {
	w, err := NewMatrixMatrix([][]float64{{1, 2}, {3, 4}}, [][]float64{{5, 6}, {7, 8}})
	if err != nil {
		t.Fatal(err)
	}
	if w.Total() != 5 {
		t.Fatalf("total = %d", w.Total())
	}
	w.Advance(2)
	v := w.View()
	if v.Calculation != "C[1,2]: 1×6 + 2×8 = 22" {
		t.Fatalf("calculation = %q", v.Calculation)
	}
	if v.Left.HighlightRow != 0 || v.Right.HighlightCol != 1 {
		t.Fatalf("highlights = %d, %d", v.Left.HighlightRow, v.Right.HighlightCol)
	}
	if v.Result.Values[0][1] != 22 || v.Result.Values[1][0] != 0 {
		t.Fatalf("partial = %v", v.Result.Values)
	}
}

func TestDotSteps(t *testing.T) {
	w, err := NewDot([]float64{2, 3, 4}, []float64{1, -2, 3})
	if err != nil {
		t.Fatal(err)
	}
	w.Advance(2)
	v := w.View()
	if v.Calculation != "2×1 + 3×-2 = -4" || v.ResultText != "" {
		t.Fatalf("view = %+v", v)
	}
	w.Advance(1)
	v = w.View()
	if v.Calculation != "2×1 + 3×-2 + 4×3 = 8" || v.ResultText != "8" {
		t.Fatalf("view = %+v", v)
	}
	if len(v.Left.Values) != 3 {
		t.Fatalf("left operand should be a column: %v", v.Left.Values)
	}
}

func TestShapeErrors(t *testing.T) {
	if _, err := NewDot([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrShape) {
		t.Fatalf("dot err = %v", err)
	}
	if _, err := NewMatrixVector([][]float64{{1, 2}}, []float64{1, 2, 3}); !errors.Is(err, ErrShape) {
		t.Fatalf("matrix-vector err = %v", err)
	}
	if _, err := NewMatrixMatrix([][]float64{{1, 2}, {3}}, [][]float64{{1}}); !errors.Is(err, ErrShape) {
		t.Fatalf("ragged err = %v", err)
	}
}

func TestDispatchAndPause(t *testing.T) {
	w, _ := NewDot([]float64{1, 1}, []float64{1, 1})
	w.Dispatch(scene.Command{Kind: scene.TogglePause})
	w.Update(5)
	if w.Step() != 0 {
		t.Fatal("paused walkthrough advanced")
	}
	w.Dispatch(scene.Command{Kind: scene.StepForward})
	w.Dispatch(scene.Command{Kind: scene.StepForward})
	w.Dispatch(scene.Command{Kind: scene.StepBackward})
	if w.Step() != 1 {
		t.Fatalf("step = %d", w.Step())
	}
	w.Dispatch(scene.Command{Kind: scene.StepBackward})
	w.Dispatch(scene.Command{Kind: scene.StepBackward})
	if w.Step() != 0 {
		t.Fatalf("step = %d", w.Step())
	}
	w.Dispatch(scene.Command{Kind: scene.Play})
	w.Update(1)
	w.Dispatch(scene.Command{Kind: scene.Replay})
	if w.Step() != 0 || w.Paused() {
		t.Fatalf("after replay step %d paused %v", w.Step(), w.Paused())
	}
}
