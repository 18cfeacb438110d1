// Package arith walks through matrix and vector products one entry at a
// time, showing the numbers involved in each step.
package arith

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matt-g-everett/linviz/scene"
	"github.com/matt-g-everett/linviz/util"
	"gonum.org/v1/gonum/mat"
)

// Kind is the product being explained.
type Kind int

const (
	MatrixVector Kind = iota
	MatrixMatrix
	Dot
)

var ErrShape = errors.New("arith: operand shapes do not agree")

// DefaultStepDuration is the time in seconds each step stays on screen
// while auto-advancing.
const DefaultStepDuration = 1.0

// ControlsHint lists the keys a walkthrough responds to.
const ControlsHint = "Space:Pause  R:Restart  ←→:Step  Esc:Exit"

// Walkthrough reveals the entries of a product one step per
// StepDuration while not paused.
type Walkthrough struct {
	kind   Kind
	a, b   *mat.Dense
	result *mat.Dense

	step  int
	total int
	timer float64

	StepDuration float64
	paused       bool
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix: %w", ErrShape)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(r), cols, ErrShape)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func column(v []float64) (*mat.Dense, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("empty vector: %w", ErrShape)
	}
	return mat.NewDense(len(v), 1, append([]float64(nil), v...)), nil
}

// NewMatrixVector explains m·v, one row per step.
func NewMatrixVector(m [][]float64, v []float64) (*Walkthrough, error) {
	a, err := toDense(m)
	if err != nil {
		return nil, err
	}
	b, err := column(v)
	if err != nil {
		return nil, err
	}
	return newWalkthrough(MatrixVector, a, b)
}

// NewMatrixMatrix explains a·b, one result entry per step in row-major
// order.
func NewMatrixMatrix(a, b [][]float64) (*Walkthrough, error) {
	da, err := toDense(a)
	if err != nil {
		return nil, err
	}
	db, err := toDense(b)
	if err != nil {
		return nil, err
	}
	return newWalkthrough(MatrixMatrix, da, db)
}

// NewDot explains a·b, one term per step.
func NewDot(a, b []float64) (*Walkthrough, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("dot of %d and %d entries: %w", len(a), len(b), ErrShape)
	}
	row, err := toDense([][]float64{a})
	if err != nil {
		return nil, err
	}
	col, err := column(b)
	if err != nil {
		return nil, err
	}
	return newWalkthrough(Dot, row, col)
}

func newWalkthrough(kind Kind, a, b *mat.Dense) (*Walkthrough, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, fmt.Errorf("%dx%d times %dx%d: %w", ar, ac, br, bc, ErrShape)
	}
	w := &Walkthrough{kind: kind, a: a, b: b, StepDuration: DefaultStepDuration}
	w.result = new(mat.Dense)
	w.result.Mul(a, b)
	switch kind {
	case MatrixVector:
		w.total = ar + 1
	case MatrixMatrix:
		w.total = ar*bc + 1
	case Dot:
		w.total = ac + 1
	}
	return w, nil
}

func (w *Walkthrough) Kind() Kind       { return w.kind }
func (w *Walkthrough) Step() int        { return w.step }
func (w *Walkthrough) Total() int       { return w.total }
func (w *Walkthrough) Paused() bool     { return w.paused }
func (w *Walkthrough) Done() bool       { return w.step >= w.total }
func (w *Walkthrough) TogglePause()     { w.paused = !w.paused }
func (w *Walkthrough) SetPaused(p bool) { w.paused = p }

// Update auto-advances one step each time StepDuration elapses.
func (w *Walkthrough) Update(dt float64) {
	if w.paused {
		return
	}
	w.timer += dt
	if w.timer >= w.StepDuration {
		w.timer = 0
		if w.step < w.total {
			w.step++
		}
	}
}

// Restart goes back to step 0.
func (w *Walkthrough) Restart() {
	w.step = 0
	w.timer = 0
}

// Advance moves delta steps, clamped to [0, Total].
func (w *Walkthrough) Advance(delta int) {
	w.step += delta
	if w.step < 0 {
		w.step = 0
	}
	if w.step > w.total {
		w.step = w.total
	}
}

// Dispatch maps transport commands onto the walkthrough. Camera
// commands are ignored.
func (w *Walkthrough) Dispatch(c scene.Command) {
	switch c.Kind {
	case scene.Play:
		w.paused = false
	case scene.Pause:
		w.paused = true
	case scene.TogglePause:
		w.TogglePause()
	case scene.Replay:
		w.Restart()
	case scene.StepForward:
		w.Advance(1)
	case scene.StepBackward:
		w.Advance(-1)
	}
}

// Operand is a matrix or column vector on screen. Highlight fields are -1
// when nothing is highlighted.
type Operand struct {
	Values       [][]float64 `json:"values"`
	HighlightRow int         `json:"highlightRow"`
	HighlightCol int         `json:"highlightCol"`
}

// View is what a frontend draws for the current step.
type View struct {
	Title       string   `json:"title"`
	Left        Operand  `json:"left"`
	Right       Operand  `json:"right"`
	Result      *Operand `json:"result,omitempty"`
	ResultText  string   `json:"resultText,omitempty"`
	Calculation string   `json:"calculation,omitempty"`
	Step        int      `json:"step"`
	Total       int      `json:"total"`
	Paused      bool     `json:"paused"`
}

func rowsOf(d mat.Matrix) [][]float64 {
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}

func operand(d mat.Matrix) Operand {
	return Operand{Values: rowsOf(d), HighlightRow: -1, HighlightCol: -1}
}

func term(a, b float64) string {
	return util.FormatNumber(a) + "×" + util.FormatNumber(b)
}

// View describes the current step.
func (w *Walkthrough) View() View {
	v := View{Step: w.step, Total: w.total, Paused: w.paused, Left: operand(w.a), Right: operand(w.b)}
	_, ac := w.a.Dims()
	_, bc := w.b.Dims()
	revealed := w.total - 1
	if w.step < revealed {
		revealed = w.step
	}
	// focus is the entry computed by the current step, or the first one
	// before anything is computed.
	focus := w.step - 1
	if focus < 0 {
		focus = 0
	}
	active := w.step < w.total

	switch w.kind {
	case MatrixVector:
		v.Title = "Matrix × Vector = Result"
		if active {
			v.Left.HighlightRow = focus
			v.Right.HighlightRow = focus
		}
		if w.step > 0 {
			res := operand(w.partial(revealed, 1))
			if active {
				res.HighlightRow = focus
			}
			v.Result = &res
		}
		if w.step > 0 && active {
			terms := make([]string, ac)
			for j := range terms {
				terms[j] = term(w.a.At(focus, j), w.b.At(j, 0))
			}
			v.Calculation = fmt.Sprintf("Row %d: %s = %s", focus+1, strings.Join(terms, " + "), util.FormatNumber(w.result.At(focus, 0)))
		}

	case MatrixMatrix:
		v.Title = "Matrix × Matrix = Result"
		r, c := focus/bc, focus%bc
		if active {
			v.Left.HighlightRow = r
			v.Right.HighlightCol = c
		}
		if w.step > 0 {
			res := operand(w.partial(revealed, bc))
			if active {
				res.HighlightRow, res.HighlightCol = r, c
			}
			v.Result = &res
		}
		if w.step > 0 && active {
			terms := make([]string, ac)
			for k := range terms {
				terms[k] = term(w.a.At(r, k), w.b.At(k, c))
			}
			v.Calculation = fmt.Sprintf("C[%d,%d]: %s = %s", r+1, c+1, strings.Join(terms, " + "), util.FormatNumber(w.result.At(r, c)))
		}

	case Dot:
		v.Title = "Vector Dot Product: a · b"
		v.Left = operand(w.a.T())
		if active {
			v.Left.HighlightRow = focus
			v.Right.HighlightRow = focus
		}
		if w.step >= ac {
			v.ResultText = util.FormatNumber(w.result.At(0, 0))
		}
		if w.step > 0 {
			terms := make([]string, revealed)
			sum := 0.0
			for i := range terms {
				x, y := w.a.At(0, i), w.b.At(i, 0)
				terms[i] = term(x, y)
				sum += x * y
			}
			v.Calculation = strings.Join(terms, " + ") + " = " + util.FormatNumber(sum)
		}
	}
	return v
}

// partial returns the result with only its first n entries, in row-major
// order, filled in.
func (w *Walkthrough) partial(n, cols int) *mat.Dense {
	r, c := w.result.Dims()
	out := mat.NewDense(r, c, nil)
	for idx := 0; idx < n; idx++ {
		i, j := idx/cols, idx%cols
		out.Set(i, j, w.result.At(i, j))
	}
	return out
}

// String is the finished product, e.g. for copying to the clipboard.
func (w *Walkthrough) String() string {
	v := w.View()
	var b strings.Builder
	b.WriteString(v.Title)
	b.WriteString("\n")
	for _, row := range rowsOf(w.result) {
		parts := make([]string, len(row))
		for i, x := range row {
			parts[i] = util.FormatNumber(x)
		}
		b.WriteString("[" + strings.Join(parts, ", ") + "]\n")
	}
	return b.String()
}
