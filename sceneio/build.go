package sceneio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matt-g-everett/linviz/animation"
	"github.com/matt-g-everett/linviz/arith"
	"github.com/matt-g-everett/linviz/easing"
	"github.com/matt-g-everett/linviz/linalg"
	"github.com/matt-g-everett/linviz/scene"
)

var ErrDocument = errors.New("sceneio: invalid document")

// Loaded is a built document: exactly one of Scene and Walkthrough is set.
type Loaded struct {
	Title       string
	Scene       *scene.Scene
	Walkthrough *arith.Walkthrough
	// Names maps vector names to the vectors placed in Scene.
	Names map[string]linalg.Vector
}

// Load reads and builds the document at path with a camera sized
// width x height.
func Load(path string, width, height int) (*Loaded, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l, err := doc.Build(width, height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

type builder struct {
	doc      *Document
	ev       *Evaluator
	matrices map[string]linalg.Matrix
	building map[string]bool
}

// Build evaluates the document and assembles its scene or walkthrough.
func (d *Document) Build(width, height int) (*Loaded, error) {
	b := &builder{
		doc:      d,
		ev:       NewEvaluator(),
		matrices: make(map[string]linalg.Matrix),
		building: make(map[string]bool),
	}
	for _, item := range d.Vars {
		name := fmt.Sprint(item.Key)
		v, err := b.ev.Eval(Expr(strings.TrimSpace(fmt.Sprint(item.Value))))
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", name, err)
		}
		if err := b.ev.Set(name, v); err != nil {
			return nil, err
		}
	}
	for name := range d.Matrices {
		if _, err := b.matrix(name); err != nil {
			return nil, err
		}
	}

	if d.Arithmetic != nil {
		if len(d.Vectors) > 0 || len(d.Grids) > 0 {
			return nil, fmt.Errorf("arithmetic document with vectors or grids: %w", ErrDocument)
		}
		w, err := b.walkthrough(d.Arithmetic)
		if err != nil {
			return nil, err
		}
		if d.Autoplay != nil && !*d.Autoplay {
			w.SetPaused(true)
		}
		return &Loaded{Title: d.Title, Walkthrough: w}, nil
	}
	return b.scene(width, height)
}

func (b *builder) scene(width, height int) (*Loaded, error) {
	d := b.doc
	dim := d.Dim
	if dim == 0 {
		dim = 2
	}
	s, err := scene.New(dim, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	if d.StepSize != nil {
		step, err := b.ev.Eval(*d.StepSize)
		if err != nil {
			return nil, fmt.Errorf("stepSize: %w", err)
		}
		if step <= 0 {
			return nil, fmt.Errorf("stepSize %v must be positive: %w", step, ErrDocument)
		}
		s.SetStepSize(step)
	}
	if d.ShowGrid != nil {
		s.SetShowGrid(*d.ShowGrid)
	}
	if d.Lattice != nil {
		bounds, err := b.lattice(d.Lattice, dim)
		if err != nil {
			return nil, err
		}
		s.SetLattice(bounds, d.Lattice.Density)
	}

	l := &Loaded{Title: d.Title, Scene: s, Names: make(map[string]linalg.Vector)}
	for i, vd := range d.Vectors {
		label := vd.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		v, err := b.vector(s, vd)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", label, err)
		}
		if vd.Name != "" {
			if _, dup := l.Names[vd.Name]; dup {
				return nil, fmt.Errorf("vector %s defined twice: %w", vd.Name, ErrDocument)
			}
			l.Names[vd.Name] = v
		}
	}
	for i, gd := range d.Grids {
		if err := b.grid(s, gd); err != nil {
			return nil, fmt.Errorf("grid #%d: %w", i+1, err)
		}
	}

	if d.Autoplay == nil || *d.Autoplay {
		s.Play()
	} else {
		s.Pause()
	}
	return l, nil
}

func (b *builder) lattice(lt *Lattice, dim int) (animation.Bounds, error) {
	bounds := animation.DefaultBounds
	lo, err := b.ev.EvalAll(lt.Min)
	if err != nil {
		return bounds, fmt.Errorf("lattice min: %w", err)
	}
	hi, err := b.ev.EvalAll(lt.Max)
	if err != nil {
		return bounds, fmt.Errorf("lattice max: %w", err)
	}
	if (len(lo) != 0 && len(lo) != dim) || (len(hi) != 0 && len(hi) != dim) {
		return bounds, fmt.Errorf("lattice bounds need %d entries: %w", dim, ErrDocument)
	}
	set := func(vals []float64, x, y, z *float64) {
		if len(vals) == 0 {
			return
		}
		*x, *y = vals[0], vals[1]
		if dim == 3 {
			*z = vals[2]
		}
	}
	set(lo, &bounds.MinX, &bounds.MinY, &bounds.MinZ)
	set(hi, &bounds.MaxX, &bounds.MaxY, &bounds.MaxZ)
	return bounds, nil
}

func (b *builder) curve(name string) (easing.Func, error) {
	f, err := easing.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}
	return f, nil
}

func (b *builder) duration(e *Expr, def float64) (float64, error) {
	if e == nil {
		return def, nil
	}
	v, err := b.ev.Eval(*e)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative duration %v: %w", v, ErrDocument)
	}
	return v, nil
}

// start evaluates an optional timeline start. ok is false when the item
// is not scheduled.
func (b *builder) start(e *Expr) (at float64, ok bool, err error) {
	if e == nil {
		return 0, false, nil
	}
	at, err = b.ev.Eval(*e)
	if err != nil {
		return 0, false, fmt.Errorf("at: %w", err)
	}
	if at < 0 {
		return 0, false, fmt.Errorf("negative start %v: %w", at, ErrDocument)
	}
	return at, true, nil
}

func (b *builder) vector(s *scene.Scene, vd VectorDoc) (linalg.Vector, error) {
	comps, err := b.ev.EvalAll(vd.Components)
	if err != nil {
		return linalg.Vector{}, err
	}
	v, err := linalg.NewVector(comps...)
	if err != nil {
		return v, err
	}
	if len(vd.Origin) > 0 {
		o, err := b.ev.EvalAll(vd.Origin)
		if err != nil {
			return v, err
		}
		if v, err = v.WithOrigin(o...); err != nil {
			return v, err
		}
	}
	if vd.Color != "" {
		if v, err = v.WithColorName(vd.Color); err != nil {
			return v, err
		}
	}

	// Transforms compose into one matrix so the animation runs from the
	// untransformed vector straight to the result.
	var m *linalg.Matrix
	for _, name := range vd.Transform {
		t, err := b.matrix(name)
		if err != nil {
			return v, err
		}
		if m == nil {
			m = &t
			continue
		}
		next, err := t.Mul(*m)
		if err != nil {
			return v, err
		}
		m = &next
	}
	if vd.Scale != nil {
		f, err := b.ev.Eval(*vd.Scale)
		if err != nil {
			return v, fmt.Errorf("scale: %w", err)
		}
		factors := make([]float64, v.Dim())
		for i := range factors {
			factors[i] = f
		}
		sm, err := linalg.Scaling(factors...)
		if err != nil {
			return v, err
		}
		if m == nil {
			m = &sm
		} else if next, err := sm.Mul(*m); err != nil {
			return v, err
		} else {
			m = &next
		}
	}

	final := v
	if m != nil {
		if final, err = v.Transform(*m); err != nil {
			return v, err
		}
	}

	at, scheduled, err := b.start(vd.At)
	if err != nil {
		return v, err
	}
	if vd.Animate == nil {
		if scheduled {
			return v, fmt.Errorf("at without animate: %w", ErrDocument)
		}
		return final, s.Add(final)
	}

	dur, err := b.duration(vd.Animate.Duration, animation.DefaultVectorDuration)
	if err != nil {
		return v, err
	}
	curve, err := b.curve(vd.Animate.Easing)
	if err != nil {
		return v, err
	}

	if m != nil {
		final = final.Animate(dur, curve)
		if scheduled {
			return final, s.Schedule(at, final)
		}
		return final, s.Add(final)
	}

	// Nothing transforms the vector, so it grows from zero at its origin.
	zero, _ := linalg.NewVector(make([]float64, v.Dim())...)
	zero, _ = zero.WithOrigin(v.Origin()...)
	zero = zero.WithColor(v.Color())
	a, err := animation.NewVectorAnimation(zero, final, dur, curve)
	if err != nil {
		return v, err
	}
	if err := s.Add(final); err != nil {
		return v, err
	}
	if scheduled {
		s.ScheduleAnimation(at, a)
	} else {
		s.AddAnimation(a)
	}
	return final, nil
}

func (b *builder) grid(s *scene.Scene, gd GridDoc) error {
	m, err := b.matrix(gd.Matrix)
	if err != nil {
		return err
	}
	if m.Dim() != s.Dim() {
		return fmt.Errorf("%dx%d matrix in %dD scene: %w", m.Dim(), m.Dim(), s.Dim(), linalg.ErrDimensionMismatch)
	}
	dur, err := b.duration(gd.Duration, animation.DefaultGridDuration)
	if err != nil {
		return err
	}
	curve, err := b.curve(gd.Easing)
	if err != nil {
		return err
	}
	at, scheduled, err := b.start(gd.At)
	if err != nil {
		return err
	}
	g, err := animation.NewGridAnimation(m, dur, curve)
	if err != nil {
		return err
	}
	if scheduled {
		s.ScheduleAnimation(at, g)
	} else {
		s.AddAnimation(g)
	}
	return nil
}

// matrix resolves a named matrix, building it and any product operands
// on first use.
func (b *builder) matrix(name string) (linalg.Matrix, error) {
	if m, ok := b.matrices[name]; ok {
		return m, nil
	}
	md, ok := b.doc.Matrices[name]
	if !ok {
		return linalg.Matrix{}, fmt.Errorf("unknown matrix %q: %w", name, ErrDocument)
	}
	if b.building[name] {
		return linalg.Matrix{}, fmt.Errorf("matrix %q refers to itself: %w", name, ErrDocument)
	}
	b.building[name] = true
	defer delete(b.building, name)

	m, err := b.buildMatrix(md)
	if err != nil {
		return m, fmt.Errorf("matrix %s: %w", name, err)
	}
	b.matrices[name] = m
	return m, nil
}

func (b *builder) one(e *Expr) (float64, error) {
	return b.ev.Eval(*e)
}

func (b *builder) pair(es []Expr, what string) (x, y float64, err error) {
	if len(es) != 2 {
		return 0, 0, fmt.Errorf("%s needs 2 entries, got %d: %w", what, len(es), ErrDocument)
	}
	vals, err := b.ev.EvalAll(es)
	if err != nil {
		return 0, 0, err
	}
	return vals[0], vals[1], nil
}

func (b *builder) buildMatrix(md MatrixDoc) (linalg.Matrix, error) {
	set := 0
	for _, on := range []bool{
		md.Rows != nil, md.Identity != 0, md.Rotation != nil, md.RotationX != nil,
		md.RotationY != nil, md.RotationZ != nil, md.Scaling != nil, md.Shear != nil,
		md.Reflection != "", md.Projection != nil, md.Product != nil,
	} {
		if on {
			set++
		}
	}
	if set != 1 {
		return linalg.Matrix{}, fmt.Errorf("exactly one definition required, got %d: %w", set, ErrDocument)
	}

	switch {
	case md.Rows != nil:
		rows := make([][]float64, len(md.Rows))
		for i, r := range md.Rows {
			vals, err := b.ev.EvalAll(r)
			if err != nil {
				return linalg.Matrix{}, err
			}
			rows[i] = vals
		}
		return linalg.NewMatrix(rows)
	case md.Identity != 0:
		return linalg.Identity(md.Identity)
	case md.Rotation != nil:
		a, err := b.one(md.Rotation)
		return linalg.Rotation(a), err
	case md.RotationX != nil:
		a, err := b.one(md.RotationX)
		return linalg.RotationX(a), err
	case md.RotationY != nil:
		a, err := b.one(md.RotationY)
		return linalg.RotationY(a), err
	case md.RotationZ != nil:
		a, err := b.one(md.RotationZ)
		return linalg.RotationZ(a), err
	case md.Scaling != nil:
		f, err := b.ev.EvalAll(md.Scaling)
		if err != nil {
			return linalg.Matrix{}, err
		}
		return linalg.Scaling(f...)
	case md.Shear != nil:
		x, y, err := b.pair(md.Shear, "shear")
		return linalg.Shear(x, y), err
	case md.Reflection != "":
		return linalg.Reflection(md.Reflection), nil
	case md.Projection != nil:
		x, y, err := b.pair(md.Projection, "projection")
		return linalg.Projection(x, y), err
	}

	if len(md.Product) == 0 {
		return linalg.Matrix{}, fmt.Errorf("empty product: %w", ErrDocument)
	}
	out, err := b.matrix(md.Product[0])
	if err != nil {
		return out, err
	}
	for _, name := range md.Product[1:] {
		next, err := b.matrix(name)
		if err != nil {
			return out, err
		}
		if out, err = out.Mul(next); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (b *builder) operand(o Operand) ([][]float64, []float64, error) {
	switch {
	case o.Rows != nil:
		rows := make([][]float64, len(o.Rows))
		for i, r := range o.Rows {
			vals, err := b.ev.EvalAll(r)
			if err != nil {
				return nil, nil, err
			}
			rows[i] = vals
		}
		return rows, nil, nil
	case o.Vector != nil:
		vec, err := b.ev.EvalAll(o.Vector)
		return nil, vec, err
	case o.Name != "":
		m, err := b.matrix(o.Name)
		if err != nil {
			return nil, nil, err
		}
		return m.Rows(), nil, nil
	}
	return nil, nil, fmt.Errorf("missing operand: %w", ErrDocument)
}

func (b *builder) walkthrough(ad *ArithDoc) (*arith.Walkthrough, error) {
	am, av, err := b.operand(ad.A)
	if err != nil {
		return nil, fmt.Errorf("arithmetic a: %w", err)
	}
	bm, bv, err := b.operand(ad.B)
	if err != nil {
		return nil, fmt.Errorf("arithmetic b: %w", err)
	}

	var w *arith.Walkthrough
	switch strings.ToLower(strings.ReplaceAll(ad.Kind, "_", "-")) {
	case "matrix-vector", "mv":
		if am == nil || bv == nil {
			return nil, fmt.Errorf("matrix-vector needs a matrix and a vector: %w", ErrDocument)
		}
		w, err = arith.NewMatrixVector(am, bv)
	case "matrix-matrix", "mm":
		if am == nil || bm == nil {
			return nil, fmt.Errorf("matrix-matrix needs two matrices: %w", ErrDocument)
		}
		w, err = arith.NewMatrixMatrix(am, bm)
	case "dot":
		if av == nil || bv == nil {
			return nil, fmt.Errorf("dot needs two vectors: %w", ErrDocument)
		}
		w, err = arith.NewDot(av, bv)
	default:
		return nil, fmt.Errorf("arithmetic kind %q: %w", ad.Kind, ErrDocument)
	}
	if err != nil {
		return nil, err
	}
	if ad.StepTime != nil {
		st, err := b.ev.Eval(*ad.StepTime)
		if err != nil {
			return nil, fmt.Errorf("stepTime: %w", err)
		}
		if st > 0 {
			w.StepDuration = st
		}
	}
	return w, nil
}
