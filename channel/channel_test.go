//go:build unit
// +build unit

package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/qobj"
)

func identityFunc(q *qobj.Qobj) *qobj.Qobj { return q.Copy() }

func bitFlipFunc(t *testing.T) TransformFunc {
	x, err := qobj.New(qobj.SigmaX())
	require.Nil(t, err)
	return func(q *qobj.Qobj) *qobj.Qobj {
		return x.Mul(q).Mul(x)
	}
}

func depolarizingFunc(p float64) TransformFunc {
	return func(q *qobj.Qobj) *qobj.Qobj {
		mixed := qobj.Identity(q.NQubits()).Scale(q.Trace() / complex(float64(q.Size()), 0))
		return mixed.Scale(complex(p, 0)).Add(q.Scale(complex(1-p, 0)))
	}
}

func TestNewFromFuncValidation(t *testing.T) {
	_, err := NewFromFunc(nil, 1)
	assert.Error(t, err)

	_, err = NewFromFunc(identityFunc, 0)
	assert.Error(t, err)

	ch, err := NewFromFunc(identityFunc, 1)
	require.Nil(t, err)
	assert.Equal(t, 1, ch.NQubits())
}

func TestNewFromChoiValidation(t *testing.T) {
	// A single-qubit operator is not a valid Choi matrix: its side
	// length is a power of 2 but not of 4.
	bad := qobj.MaximallyMixed(1)
	_, err := NewFromChoi(bad)
	assert.Error(t, err)

	good := qobj.MaximallyMixed(2)
	ch, err := NewFromChoi(good)
	require.Nil(t, err)
	assert.Equal(t, 1, ch.NQubits())
}

func TestIdentityChannelChoi(t *testing.T) {
	ch, err := NewFromFunc(identityFunc, 1)
	require.Nil(t, err)

	// The identity Choi matrix is the unnormalized Bell projector,
	// with unit entries connecting |00> and |11>.
	want := mat.NewCDense(4, 4, nil)
	want.Set(0, 0, 1)
	want.Set(0, 3, 1)
	want.Set(3, 0, 1)
	want.Set(3, 3, 1)
	wantQ, err := qobj.New(want)
	require.Nil(t, err)

	assert.True(t, qobj.AlmostEqual(ch.Choi(), wantQ, 1e-12))
}

func TestChoiIsCached(t *testing.T) {
	ch, err := NewFromFunc(identityFunc, 1)
	require.Nil(t, err)
	first := ch.Choi()
	second := ch.Choi()
	assert.Same(t, first, second)
}

func TestFuncAndChoiPathsAgree(t *testing.T) {
	tests := []struct {
		name string
		fn   TransformFunc
	}{
		{name: "identity", fn: identityFunc},
		{name: "bit flip", fn: bitFlipFunc(t)},
		{name: "depolarizing", fn: depolarizingFunc(0.3)},
	}

	state, err := qobj.FromBloch([]float64{0.5, 0.2, 0.1, -0.3})
	require.Nil(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := NewFromFunc(tt.fn, 1)
			require.Nil(t, err)
			want := ch.Transform(state)

			choiOnly, err := NewFromChoi(ch.Choi())
			require.Nil(t, err)
			got := choiOnly.Transform(state)

			assert.True(t, qobj.AlmostEqual(got, want, 1e-9))
		})
	}
}

func TestSetChoiInvalidatesFunc(t *testing.T) {
	ch, err := NewFromFunc(identityFunc, 1)
	require.Nil(t, err)

	flip, err := NewFromFunc(bitFlipFunc(t), 1)
	require.Nil(t, err)
	require.Nil(t, ch.SetChoi(flip.Choi()))

	zero, err := qobj.FromBloch([]float64{0.5, 0, 0, 0.5})
	require.Nil(t, err)
	one, err := qobj.FromBloch([]float64{0.5, 0, 0, -0.5})
	require.Nil(t, err)

	// The channel now acts through the bit-flip Choi matrix, not the
	// stale identity function.
	assert.True(t, qobj.AlmostEqual(ch.Transform(zero), one, 1e-9))

	require.Nil(t, ch.SetFunc(identityFunc, 1))
	assert.True(t, qobj.AlmostEqual(ch.Transform(zero), zero, 1e-9))
}

func TestDerivedChannelInvolutions(t *testing.T) {
	y, err := qobj.New(qobj.SigmaY())
	require.Nil(t, err)
	ch, err := NewFromFunc(func(q *qobj.Qobj) *qobj.Qobj {
		return y.Mul(q).Mul(y)
	}, 1)
	require.Nil(t, err)

	choi := ch.Choi()
	assert.True(t, qobj.AlmostEqual(ch.Transpose().Transpose().Choi(), choi, 1e-12))
	assert.True(t, qobj.AlmostEqual(ch.Adjoint().Adjoint().Choi(), choi, 1e-12))
	assert.True(t, qobj.AlmostEqual(ch.Conj().Conj().Choi(), choi, 1e-12))
}

func TestCopySharesNoChoi(t *testing.T) {
	ch, err := NewFromFunc(identityFunc, 1)
	require.Nil(t, err)
	_ = ch.Choi()

	cp := ch.Copy()
	assert.NotSame(t, ch.Choi(), cp.Choi())
	assert.True(t, qobj.AlmostEqual(ch.Choi(), cp.Choi(), 1e-12))
}
