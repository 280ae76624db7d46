//go:build unit
// +build unit

package measurements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/qobj"
)

func TestGenerateMeasurementMatrixErrors(t *testing.T) {
	_, err := GenerateMeasurementMatrix("tetra", 1)
	assert.Error(t, err)

	_, err = GenerateMeasurementMatrix("proj", 0)
	assert.Error(t, err)
}

func TestOutcomeCounts(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		nQubits  int
		wantRows int
	}{
		{name: "proj one qubit", scheme: "proj", nQubits: 1, wantRows: 6},
		{name: "proj two qubits", scheme: "proj", nQubits: 2, wantRows: 36},
		{name: "sic one qubit", scheme: "sic", nQubits: 1, wantRows: 4},
		{name: "sic two qubits", scheme: "sic", nQubits: 2, wantRows: 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := GenerateMeasurementMatrix(tt.scheme, tt.nQubits)
			require.Nil(t, err)
			rows, cols := m.Dims()
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, 1<<(2*tt.nQubits), cols)
		})
	}
}

func probabilities(t *testing.T, m *mat.Dense, state *qobj.Qobj) []float64 {
	t.Helper()
	bloch := state.Bloch()
	var pv mat.VecDense
	pv.MulVec(m, mat.NewVecDense(len(bloch), bloch))
	out := make([]float64, pv.Len())
	scale := float64(int64(1) << state.NQubits())
	for i := range out {
		out[i] = pv.AtVec(i) * scale
	}
	return out
}

func TestProbabilitiesAreNormalized(t *testing.T) {
	state, err := qobj.FromBloch([]float64{0.5, 0.3, -0.2, 0.1})
	require.Nil(t, err)
	for _, scheme := range []string{"proj", "sic"} {
		m, err := GenerateMeasurementMatrix(scheme, 1)
		require.Nil(t, err)
		probs := probabilities(t, m, state)
		var sum float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1, sum, 1e-12)
	}
}

func TestMaximallyMixedIsUniform(t *testing.T) {
	state := qobj.MaximallyMixed(2)
	m, err := GenerateMeasurementMatrix("proj", 2)
	require.Nil(t, err)
	probs := probabilities(t, m, state)
	for _, p := range probs {
		assert.InDelta(t, 1.0/36, p, 1e-12)
	}
}

func TestProjProbabilitiesOfPlusState(t *testing.T) {
	state, err := qobj.FromBloch([]float64{0.5, 0.5, 0, 0})
	require.Nil(t, err)
	m, err := GenerateMeasurementMatrix("proj", 1)
	require.Nil(t, err)
	probs := probabilities(t, m, state)
	// +x is certain within its basis, y and z are coin flips.
	want := []float64{1.0 / 3, 0, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6}
	for i := range want {
		assert.InDelta(t, want[i], probs[i], 1e-12)
	}
}
