// Package estimation computes expectation values of Pauli observables
// against a (reconstructed) quantum state.
package estimation

import (
	"math"

	"github.com/go-faster/errors"

	"github.com/qst-team/qst-engine/qobj"
)

// Observable is one weighted Pauli string, e.g. {"XZ", 0.5}.
type Observable struct {
	Pauli string  `json:"pauli"`
	Coeff float64 `json:"coeff"`
}

// ParsePauliString builds the tensor-product operator for a string over
// the alphabet I, X, Y, Z. Character k acts on qubit k.
func ParsePauliString(s string) (*qobj.Qobj, error) {
	if len(s) == 0 {
		return nil, errors.New("empty Pauli string")
	}
	var out *qobj.Qobj
	for _, r := range s {
		var m *qobj.Qobj
		var err error
		switch r {
		case 'I':
			m, err = qobj.New(qobj.SigmaI())
		case 'X':
			m, err = qobj.New(qobj.SigmaX())
		case 'Y':
			m, err = qobj.New(qobj.SigmaY())
		case 'Z':
			m, err = qobj.New(qobj.SigmaZ())
		default:
			return nil, errors.Errorf("invalid Pauli character: %q", r)
		}
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = m
		} else {
			out = out.Kron(m)
		}
	}
	return out, nil
}

// Expectation returns Tr(obs * state), real for Hermitian operands.
func Expectation(state, obs *qobj.Qobj) float64 {
	return real(obs.Mul(state).Trace())
}

// ExpectationOfSum evaluates a weighted sum of Pauli observables. All
// strings must have the state's qubit count.
func ExpectationOfSum(state *qobj.Qobj, obs []Observable) (float64, error) {
	var sum float64
	for _, o := range obs {
		op, err := ParsePauliString(o.Pauli)
		if err != nil {
			return 0, err
		}
		if op.NQubits() != state.NQubits() {
			return 0, errors.Errorf("observable %q acts on %d qubits, state has %d",
				o.Pauli, op.NQubits(), state.NQubits())
		}
		sum += o.Coeff * Expectation(state, op)
	}
	return sum, nil
}

// StandardError estimates the shot-noise standard error of a single
// Pauli expectation value: Pauli strings square to the identity, so the
// outcome variance is 1 - expval^2.
func StandardError(expval float64, shots int64) float64 {
	if shots < 1 {
		return math.Inf(1)
	}
	variance := 1 - expval*expval
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance / float64(shots))
}
