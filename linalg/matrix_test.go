package linalg

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestNewMatrixShape(t *testing.T) {
	cases := []struct {
		name string
		rows [][]float64
		want error
	}{
		{"2x2", [][]float64{{1, 2}, {3, 4}}, nil},
		{"3x3", [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, nil},
		{"ragged", [][]float64{{1, 2}, {3}}, ErrNotSquare},
		{"2x3", [][]float64{{1, 2, 3}, {4, 5, 6}}, ErrNotSquare},
		{"1x1", [][]float64{{1}}, ErrDimension},
		{"4x4", [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}, ErrDimension},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewMatrix(c.rows)
			if c.want == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestDeterminantTraceRank(t *testing.T) {
	m := MustMatrix([][]float64{{2, 1}, {1, 3}})
	if !approx(m.Determinant(), 5) {
		t.Fatalf("det = %v", m.Determinant())
	}
	if !approx(m.Trace(), 5) {
		t.Fatalf("trace = %v", m.Trace())
	}
	if m.Rank() != 2 {
		t.Fatalf("rank = %d", m.Rank())
	}
	if r := Projection(1, 1).Rank(); r != 1 {
		t.Fatalf("projection rank = %d", r)
	}
	if r := MustMatrix([][]float64{{0, 0}, {0, 0}}).Rank(); r != 0 {
		t.Fatalf("zero rank = %d", r)
	}
}

func TestInverse(t *testing.T) {
	m := MustMatrix([][]float64{{4, 7}, {2, 6}})
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	id, _ := Identity(2)
	p, _ := m.Mul(inv)
	if !p.Equal(id) {
		t.Fatalf("m·m⁻¹ = %v", p)
	}

	if _, err := MustMatrix([][]float64{{1, 2}, {2, 4}}).Inverse(); err == nil {
		t.Fatal("expected an error for a singular matrix")
	}
}

func TestEigen(t *testing.T) {
	m := MustMatrix([][]float64{{2, 0}, {0, 3}})
	pairs, err := m.Eigenvectors()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs", len(pairs))
	}
	sort.Slice(pairs, func(i, j int) bool { return real(pairs[i].Value) < real(pairs[j].Value) })
	if !approx(real(pairs[0].Value), 2) || !approx(real(pairs[1].Value), 3) {
		t.Fatalf("values = %v, %v", pairs[0].Value, pairs[1].Value)
	}
	for _, p := range pairs {
		got, err := p.Vector.Transform(m)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(p.Vector.Scale(real(p.Value))) {
			t.Fatalf("A·v = %v, want λv for λ=%v", got, p.Value)
		}
	}

	vals, err := Rotation(math.Pi / 2).Eigenvalues()
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vals {
		if !approx(math.Abs(imag(v)), 1) {
			t.Fatalf("rotation eigenvalue %v should be ±i", v)
		}
	}
}

func TestMulAndApply(t *testing.T) {
	a := Rotation(math.Pi / 2)
	b, _ := Scaling(2, 2)
	ab, err := a.Mul(b)
	if err != nil {
		t.Fatal(err)
	}
	got := ab.Apply([3]float64{1, 0, 7})
	if !approx(got[0], 0) || !approx(got[1], 2) || got[2] != 7 {
		t.Fatalf("apply = %v", got)
	}
	if _, err := a.Mul(RotationX(1)); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("mismatched mul err = %v", err)
	}
}

func TestLerpHalfway(t *testing.T) {
	id, _ := Identity(2)
	target := MustMatrix([][]float64{{2, 0}, {0, 2}})
	m, err := Lerp(id, target, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(MustMatrix([][]float64{{1.5, 0}, {0, 1.5}})) {
		t.Fatalf("lerp = %v", m)
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		m    Matrix
		in   [3]float64
		want [3]float64
	}{
		{"shear", Shear(1, 0), [3]float64{0, 1}, [3]float64{1, 1}},
		{"reflect x", Reflection("x"), [3]float64{1, 1}, [3]float64{1, -1}},
		{"reflect y", Reflection("y"), [3]float64{1, 1}, [3]float64{-1, 1}},
		{"reflect origin", Reflection("o"), [3]float64{1, 1}, [3]float64{-1, -1}},
		{"project", Projection(1, 0), [3]float64{3, 4}, [3]float64{3, 0}},
		{"project zero", Projection(0, 0), [3]float64{3, 4}, [3]float64{0, 0}},
		{"rotate x", RotationX(math.Pi / 2), [3]float64{0, 1, 0}, [3]float64{0, 0, 1}},
		{"rotate y", RotationY(math.Pi / 2), [3]float64{0, 0, 1}, [3]float64{1, 0, 0}},
		{"rotate z", RotationZ(math.Pi / 2), [3]float64{1, 0, 0}, [3]float64{0, 1, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.m.Apply(c.in)
			for i := range got {
				if !approx(got[i], c.want[i]) {
					t.Fatalf("got %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestTransposeAndString(t *testing.T) {
	m := MustMatrix([][]float64{{1, 2}, {3, 4}})
	if m.Transpose().At(0, 1) != 3 {
		t.Fatalf("transpose = %v", m.Transpose())
	}
	if s := m.String(); s != "Matrix([1.000, 2.000], [3.000, 4.000])" {
		t.Fatalf("String = %q", s)
	}
}
