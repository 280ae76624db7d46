// Package measurements generates POVM measurement matrices in Bloch
// coordinates. Each row is the Bloch vector of one POVM element, so that
// outcome probabilities follow as p = (R * bloch) * 2^n. Multi-qubit
// schemes are tensor products of the single-qubit scheme.
package measurements

import (
	"math"

	"github.com/go-faster/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/routines"
)

// GenerateMeasurementMatrix builds the measurement matrix for the named
// scheme acting on nQubits qubits.
//
// Supported schemes:
//   - "proj": projective measurements onto the +-X, +-Y, +-Z eigenstates,
//     each basis picked with probability 1/3 (6^n outcomes);
//   - "sic":  the tetrahedral symmetric informationally complete POVM
//     (4^n outcomes).
func GenerateMeasurementMatrix(scheme string, nQubits int) (*mat.Dense, error) {
	if nQubits < 1 {
		return nil, errors.Errorf("invalid qubit count: %d", nQubits)
	}
	var single *mat.Dense
	switch scheme {
	case "proj":
		single = projSingle()
	case "sic":
		single = sicSingle()
	default:
		return nil, errors.Errorf("unknown POVM scheme: %s", scheme)
	}
	out := single
	for q := 1; q < nQubits; q++ {
		out = routines.Kron(out, single)
	}
	return out, nil
}

// projSingle lists the Bloch rows of the six projectors (I +- sigma_a)/6
// for a in {x, y, z}, ordered +x, -x, +y, -y, +z, -z.
func projSingle() *mat.Dense {
	const h = 1.0 / 6.0
	return mat.NewDense(6, 4, []float64{
		h, h, 0, 0,
		h, -h, 0, 0,
		h, 0, h, 0,
		h, 0, -h, 0,
		h, 0, 0, h,
		h, 0, 0, -h,
	})
}

// sicSingle lists the Bloch rows of the four tetrahedral POVM elements
// (I + s_k . sigma)/4.
func sicSingle() *mat.Dense {
	t := 1 / (4 * math.Sqrt(3))
	return mat.NewDense(4, 4, []float64{
		0.25, t, t, t,
		0.25, t, -t, -t,
		0.25, -t, t, -t,
		0.25, -t, -t, t,
	})
}
