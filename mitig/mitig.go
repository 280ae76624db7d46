// Package mitig corrects readout errors in measured outcome counts. The
// device's per-qubit assignment errors define a confusion matrix whose
// left pseudo-inverse maps noisy counts back to an estimate of the true
// counts before any state estimation runs.
package mitig

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/routines"
)

// QubitReadoutError holds the assignment error probabilities of one
// qubit.
type QubitReadoutError struct {
	ProbMeas1Prep0 float64 `toml:"prob_meas1_prep0"`
	ProbMeas0Prep1 float64 `toml:"prob_meas0_prep1"`
}

func (e QubitReadoutError) validate() error {
	if e.ProbMeas1Prep0 < 0 || e.ProbMeas1Prep0 > 1 {
		return errors.Errorf("prob_meas1_prep0 out of range: %g", e.ProbMeas1Prep0)
	}
	if e.ProbMeas0Prep1 < 0 || e.ProbMeas0Prep1 > 1 {
		return errors.Errorf("prob_meas0_prep1 out of range: %g", e.ProbMeas0Prep1)
	}
	return nil
}

// AssignmentMatrix tensors the per-qubit confusion matrices into the full
// 2^n x 2^n assignment matrix. Column j holds the probabilities of each
// measured bitstring given prepared bitstring j; qubit 0 owns the most
// significant bit.
func AssignmentMatrix(errs []QubitReadoutError) (*mat.Dense, error) {
	if len(errs) == 0 {
		return nil, errors.New("no readout errors given")
	}
	var out *mat.Dense
	for _, e := range errs {
		if err := e.validate(); err != nil {
			return nil, err
		}
		single := mat.NewDense(2, 2, []float64{
			1 - e.ProbMeas1Prep0, e.ProbMeas0Prep1,
			e.ProbMeas1Prep0, 1 - e.ProbMeas0Prep1,
		})
		if out == nil {
			out = single
		} else {
			out = routines.Kron(out, single)
		}
	}
	return out, nil
}

// PseudoInverseMitigation applies the left pseudo-inverse of the
// assignment matrix to the outcome counts, clamps negative entries to
// zero and rescales back to the original total. The counts length must
// be 2^len(errs).
func PseudoInverseMitigation(counts []float64, errs []QubitReadoutError) ([]float64, error) {
	if len(counts) != 1<<len(errs) {
		return nil, errors.Errorf("got %d counts for %d qubits, want %d",
			len(counts), len(errs), 1<<len(errs))
	}
	a, err := AssignmentMatrix(errs)
	if err != nil {
		return nil, err
	}
	pinv, err := routines.LeftPseudoInverse(a)
	if err != nil {
		return nil, errors.Wrap(err, "assignment matrix inversion")
	}
	var corrected mat.VecDense
	corrected.MulVec(pinv, mat.NewVecDense(len(counts), counts))

	var total, correctedTotal float64
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	for i := range out {
		v := corrected.AtVec(i)
		if v < 0 {
			v = 0
		}
		out[i] = v
		correctedTotal += v
	}
	if correctedTotal == 0 {
		return nil, errors.New("mitigated counts vanished")
	}
	for i := range out {
		out[i] *= total / correctedTotal
	}
	zap.L().Debug("applied pseudo-inverse readout mitigation",
		zap.Int("outcomes", len(out)), zap.Float64("total", total))
	return out, nil
}
