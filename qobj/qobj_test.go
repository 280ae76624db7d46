//go:build unit
// +build unit

package qobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromBlochRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		bloch []float64
	}{
		{
			name:  "pure plus state",
			bloch: []float64{0.5, 0.5, 0, 0},
		},
		{
			name:  "mixed state with y component",
			bloch: []float64{0.5, 0.25, -0.1, 0.05},
		},
		{
			name:  "two qubit state",
			bloch: []float64{0.25, 0.1, 0, 0, 0, 0.05, 0, 0, 0, 0, -0.02, 0, 0, 0, 0, 0.08},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := FromBloch(tt.bloch)
			require.Nil(t, err)
			got := q.Bloch()
			require.Len(t, got, len(tt.bloch))
			for i := range tt.bloch {
				assert.InDelta(t, tt.bloch[i], got[i], 1e-12)
			}
		})
	}
}

func TestFromBlochInvalidLength(t *testing.T) {
	_, err := FromBloch([]float64{0.5, 0.5, 0})
	assert.Error(t, err)

	// Length 8 is a power of 2 but not of 4.
	_, err = FromBloch(make([]float64, 8))
	assert.Error(t, err)
}

func TestNewRejectsBadShapes(t *testing.T) {
	_, err := New(mat.NewCDense(2, 3, nil))
	assert.Error(t, err)

	_, err = New(mat.NewCDense(3, 3, nil))
	assert.Error(t, err)
}

func TestMaximallyMixed(t *testing.T) {
	q := MaximallyMixed(2)
	assert.Equal(t, 2, q.NQubits())
	assert.InDelta(t, 1, real(q.Trace()), 1e-12)
	bloch := q.Bloch()
	assert.InDelta(t, 0.25, bloch[0], 1e-12)
	for _, v := range bloch[1:] {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestKronAndPartialTrace(t *testing.T) {
	rho, err := FromBloch([]float64{0.5, 0.5, 0, 0})
	require.Nil(t, err)
	sigma := MaximallyMixed(1)

	full := rho.Kron(sigma)
	assert.Equal(t, 2, full.NQubits())
	assert.InDelta(t, 1, real(full.Trace()), 1e-12)

	left := full.PartialTrace([]int{0})
	assert.True(t, AlmostEqual(left, rho, 1e-12))

	right := full.PartialTrace([]int{1})
	assert.True(t, AlmostEqual(right, sigma, 1e-12))
}

func TestTransposeAdjointConj(t *testing.T) {
	y, err := New(SigmaY())
	require.Nil(t, err)

	// sigma_y is Hermitian and purely imaginary.
	assert.True(t, AlmostEqual(y.H(), y, 1e-12))
	assert.True(t, AlmostEqual(y.T(), y.Scale(-1), 1e-12))
	assert.True(t, AlmostEqual(y.Conj(), y.Scale(-1), 1e-12))
	assert.True(t, AlmostEqual(y.Conj().Conj(), y, 1e-12))
}

func TestMulAndTrace(t *testing.T) {
	x, err := New(SigmaX())
	require.Nil(t, err)
	z, err := New(SigmaZ())
	require.Nil(t, err)

	// X * Z = -iY
	prod := x.Mul(z)
	want, err := New(SigmaY())
	require.Nil(t, err)
	assert.True(t, AlmostEqual(prod, want.Scale(-1i), 1e-12))
	assert.InDelta(t, 0, real(prod.Trace()), 1e-12)
}

func TestMulTwoQubitProduct(t *testing.T) {
	x, err := New(SigmaX())
	require.Nil(t, err)
	y, err := New(SigmaY())
	require.Nil(t, err)
	z, err := New(SigmaZ())
	require.Nil(t, err)

	// (X(x)Y)(Y(x)X) = (XY)(x)(YX) = (iZ)(x)(-iZ) = Z(x)Z
	got := x.Kron(y).Mul(y.Kron(x))
	assert.Equal(t, 2, got.NQubits())
	assert.True(t, AlmostEqual(got, z.Kron(z), 1e-12))
	assert.True(t, AlmostEqual(got, x.Mul(y).Kron(y.Mul(x)), 1e-12))
}

func TestMulDimensionMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		MaximallyMixed(1).Mul(MaximallyMixed(2))
	})
}

func TestPauliBasisOrthogonality(t *testing.T) {
	basis := PauliBasis(1)
	require.Len(t, basis, 4)
	for i, a := range basis {
		for j, b := range basis {
			qa, err := New(a)
			require.Nil(t, err)
			qb, err := New(b)
			require.Nil(t, err)
			tr := real(qa.Mul(qb).Trace())
			if i == j {
				assert.InDelta(t, 2, tr, 1e-12)
			} else {
				assert.InDelta(t, 0, tr, 1e-12)
			}
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	q := MaximallyMixed(1)
	c := q.Copy()
	c.Matrix().Set(0, 0, 42)
	assert.InDelta(t, 0.5, real(q.At(0, 0)), 1e-12)
}
