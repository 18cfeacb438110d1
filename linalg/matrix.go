package linalg

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable 2x2 or 3x3 matrix.
type Matrix struct {
	dim int
	m   [3][3]float64
}

// EigenPair is an eigenvalue with the real part of its eigenvector.
type EigenPair struct {
	Value  complex128
	Vector Vector
}

// NewMatrix creates a matrix from its rows.
func NewMatrix(rows [][]float64) (Matrix, error) {
	n := len(rows)
	for i, r := range rows {
		if len(r) != n {
			return Matrix{}, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(r), n, ErrNotSquare)
		}
	}
	if n != 2 && n != 3 {
		return Matrix{}, fmt.Errorf("%dx%d matrix: %w", n, n, ErrDimension)
	}
	out := Matrix{dim: n}
	for i, r := range rows {
		copy(out.m[i][:], r)
	}
	return out, nil
}

// MustMatrix is like NewMatrix but panics on malformed rows.
func MustMatrix(rows [][]float64) Matrix {
	m, err := NewMatrix(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Identity returns the dim x dim identity.
func Identity(dim int) (Matrix, error) {
	if dim != 2 && dim != 3 {
		return Matrix{}, fmt.Errorf("identity of size %d: %w", dim, ErrDimension)
	}
	out := Matrix{dim: dim}
	for i := 0; i < dim; i++ {
		out.m[i][i] = 1
	}
	return out, nil
}

// Rotation returns the 2D counter-clockwise rotation by angle radians.
func Rotation(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{dim: 2, m: [3][3]float64{{c, -s}, {s, c}}}
}

func RotationX(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{dim: 3, m: [3][3]float64{{1, 0, 0}, {0, c, -s}, {0, s, c}}}
}

func RotationY(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{dim: 3, m: [3][3]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}}
}

func RotationZ(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{dim: 3, m: [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}}
}

// Scaling returns the diagonal matrix of the given factors.
func Scaling(factors ...float64) (Matrix, error) {
	if len(factors) != 2 && len(factors) != 3 {
		return Matrix{}, fmt.Errorf("scaling with %d factors: %w", len(factors), ErrDimension)
	}
	out := Matrix{dim: len(factors)}
	for i, f := range factors {
		out.m[i][i] = f
	}
	return out, nil
}

// Shear returns the 2D shear [[1, sx], [sy, 1]].
func Shear(sx, sy float64) Matrix {
	return Matrix{dim: 2, m: [3][3]float64{{1, sx}, {sy, 1}}}
}

// Reflection mirrors across the "x" or "y" axis; any other axis reflects
// through the origin.
func Reflection(axis string) Matrix {
	switch axis {
	case "x":
		return Matrix{dim: 2, m: [3][3]float64{{1, 0}, {0, -1}}}
	case "y":
		return Matrix{dim: 2, m: [3][3]float64{{-1, 0}, {0, 1}}}
	}
	return Matrix{dim: 2, m: [3][3]float64{{-1, 0}, {0, -1}}}
}

// Projection projects onto the line through (x, y). A zero direction
// gives the zero matrix.
func Projection(x, y float64) Matrix {
	n := x*x + y*y
	if n < Epsilon {
		return Matrix{dim: 2}
	}
	return Matrix{dim: 2, m: [3][3]float64{{x * x / n, x * y / n}, {x * y / n, y * y / n}}}
}

// Dim returns 2 or 3.
func (m Matrix) Dim() int { return m.dim }

// At returns the entry at row i, column j.
func (m Matrix) At(i, j int) float64 { return m.m[i][j] }

// Rows returns a copy of the entries.
func (m Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.dim)
	for i := range rows {
		rows[i] = append([]float64(nil), m.m[i][:m.dim]...)
	}
	return rows
}

// Apply multiplies a point padded to three entries. For a 2x2 matrix the
// third entry passes through unchanged.
func (m Matrix) Apply(p [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out[i] += m.m[i][j] * p[j]
		}
	}
	if m.dim == 2 {
		out[2] = p[2]
	}
	return out
}

// Mul returns the composition m·other.
func (m Matrix) Mul(other Matrix) (Matrix, error) {
	if m.dim != other.dim {
		return Matrix{}, fmt.Errorf("compose %dx%d with %dx%d: %w", m.dim, m.dim, other.dim, other.dim, ErrDimensionMismatch)
	}
	out := Matrix{dim: m.dim}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			for k := 0; k < m.dim; k++ {
				out.m[i][j] += m.m[i][k] * other.m[k][j]
			}
		}
	}
	return out, nil
}

// Lerp returns a + t·(b − a) entry by entry. t may leave [0,1].
func Lerp(a, b Matrix, t float64) (Matrix, error) {
	if a.dim != b.dim {
		return Matrix{}, fmt.Errorf("interpolate %dx%d to %dx%d: %w", a.dim, a.dim, b.dim, b.dim, ErrDimensionMismatch)
	}
	out := Matrix{dim: a.dim}
	for i := 0; i < a.dim; i++ {
		for j := 0; j < a.dim; j++ {
			out.m[i][j] = a.m[i][j] + t*(b.m[i][j]-a.m[i][j])
		}
	}
	return out, nil
}

// Transpose swaps rows and columns.
func (m Matrix) Transpose() Matrix {
	out := Matrix{dim: m.dim}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out.m[j][i] = m.m[i][j]
		}
	}
	return out
}

func (m Matrix) Determinant() float64 {
	return mat.Det(m.dense())
}

func (m Matrix) Trace() float64 {
	return mat.Trace(m.dense())
}

// Inverse returns whatever the LU-based inverse produces. err is non-nil
// for singular or ill-conditioned input; the matrix is still returned.
func (m Matrix) Inverse() (Matrix, error) {
	var inv mat.Dense
	err := inv.Inverse(m.dense())
	if inv.IsEmpty() {
		return Matrix{dim: m.dim}, err
	}
	return fromDense(&inv), err
}

// Eigenvalues returns the (possibly complex) eigenvalues.
func (m Matrix) Eigenvalues() ([]complex128, error) {
	var eig mat.Eigen
	if !eig.Factorize(m.dense(), mat.EigenNone) {
		return nil, errEigen
	}
	return eig.Values(nil), nil
}

// Eigenvectors returns each eigenvalue with the real part of its right
// eigenvector.
func (m Matrix) Eigenvectors() ([]EigenPair, error) {
	var eig mat.Eigen
	if !eig.Factorize(m.dense(), mat.EigenRight) {
		return nil, errEigen
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	pairs := make([]EigenPair, len(values))
	for j, val := range values {
		comps := make([]float64, m.dim)
		for i := range comps {
			comps[i] = real(vecs.At(i, j))
		}
		v, err := NewVector(comps...)
		if err != nil {
			return nil, err
		}
		pairs[j] = EigenPair{Value: val, Vector: v}
	}
	return pairs, nil
}

var errEigen = errors.New("linalg: eigen decomposition did not converge")

// Rank counts singular values above max(s)·dim·ε, the same tolerance
// numpy's matrix_rank uses.
func (m Matrix) Rank() int {
	var svd mat.SVD
	if !svd.Factorize(m.dense(), mat.SVDNone) {
		return 0
	}
	s := svd.Values(nil)
	if len(s) == 0 {
		return 0
	}
	tol := s[0] * float64(m.dim) * 2.220446049250313e-16
	rank := 0
	for _, v := range s {
		if v > tol {
			rank++
		}
	}
	return rank
}

// Equal compares entries within floating tolerance.
func (m Matrix) Equal(other Matrix) bool {
	if m.dim != other.dim {
		return false
	}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			if !closeTo(m.m[i][j], other.m[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m Matrix) String() string {
	rows := make([]string, m.dim)
	for i := 0; i < m.dim; i++ {
		cells := make([]string, m.dim)
		for j := 0; j < m.dim; j++ {
			cells[j] = fmt.Sprintf("%.3f", m.m[i][j])
		}
		rows[i] = strings.Join(cells, ", ")
	}
	return "Matrix([" + strings.Join(rows, "], [") + "])"
}

func (m Matrix) dense() *mat.Dense {
	data := make([]float64, 0, m.dim*m.dim)
	for i := 0; i < m.dim; i++ {
		data = append(data, m.m[i][:m.dim]...)
	}
	return mat.NewDense(m.dim, m.dim, data)
}

func fromDense(d *mat.Dense) Matrix {
	r, _ := d.Dims()
	out := Matrix{dim: r}
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			out.m[i][j] = d.At(i, j)
		}
	}
	return out
}
