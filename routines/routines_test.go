//go:build unit
// +build unit

package routines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGenerateSingleEntries(t *testing.T) {
	entries := GenerateSingleEntries(2)
	require.Len(t, entries, 4)
	for idx, e := range entries {
		i, j := idx/2, idx%2
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				want := complex128(0)
				if r == i && c == j {
					want = 1
				}
				assert.Equal(t, want, e.At(r, c))
			}
		}
	}
}

func TestLeftPseudoInverse(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	pinv, err := LeftPseudoInverse(a)
	require.Nil(t, err)

	var ident mat.Dense
	ident.Mul(pinv, a)
	r, c := ident.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, ident.At(i, j), 1e-12)
		}
	}
}

func TestKron(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{2, 3})
	b := mat.NewDense(1, 2, []float64{5, 7})
	out := Kron(a, b)
	r, c := out.Dims()
	require.Equal(t, 1, r)
	require.Equal(t, 4, c)
	assert.Equal(t, []float64{10, 14, 15, 21}, out.RawMatrix().Data)
}
