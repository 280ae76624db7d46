// Package tomo implements quantum state tomography: simulation of
// measurement outcomes for a known state, and reconstruction of a state
// estimate from the accumulated statistics by linear inversion or
// maximum-likelihood optimization.
package tomo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/qst-team/qst-engine/geometry"
	"github.com/qst-team/qst-engine/measurements"
	"github.com/qst-team/qst-engine/qobj"
	"github.com/qst-team/qst-engine/routines"
)

// ErrNoExperiment is returned when a point estimate or a warm start is
// requested before any experiment has been performed.
var ErrNoExperiment = errors.New("no experiment has been performed")

const logEps = 1e-10

// Tomograph runs one tomographic experiment/estimation session against a
// fixed true state. The true state is used only to simulate outcomes.
type Tomograph struct {
	state   *qobj.Qobj
	dst     geometry.DistanceFunc
	verbose bool
	src     rand.Source
	id      string

	povmMatrix    *mat.Dense
	results       []float64
	nMeasurements int64
}

// New binds a true state and a distance metric chosen by name
// ("hs", "trace" or "if").
func New(state *qobj.Qobj, dst string, verbose bool) (*Tomograph, error) {
	fn, err := geometry.ByName(dst)
	if err != nil {
		return nil, err
	}
	return NewWithMetric(state, fn, verbose), nil
}

// NewWithMetric binds a true state and a custom scoring function.
func NewWithMetric(state *qobj.Qobj, dst geometry.DistanceFunc, verbose bool) *Tomograph {
	return &Tomograph{
		state:   state,
		dst:     dst,
		verbose: verbose,
		src:     rand.NewPCG(rand.Uint64(), rand.Uint64()),
		id:      uuid.NewString(),
	}
}

// ID returns the session identifier used in log lines.
func (t *Tomograph) ID() string { return t.id }

// Seed makes the outcome simulation deterministic.
func (t *Tomograph) Seed(seed uint64) {
	t.src = rand.NewPCG(seed, seed)
}

// NMeasurements returns the total number of simulated measurements.
func (t *Tomograph) NMeasurements() int64 { return t.nMeasurements }

// Results returns a copy of the accumulated outcome counts, one entry
// per POVM outcome, in call order across warm starts.
func (t *Tomograph) Results() []float64 {
	out := make([]float64, len(t.results))
	copy(out, t.results)
	return out
}

// Experiment simulates nMeasurements measurement outcomes of the true
// state under the named POVM scheme and stores the measurement matrix and
// counts. With warmStart the new data is merged with the existing data:
// the measurement matrices are averaged weighted by measurement count,
// the outcome vectors concatenated and the totals summed. A warm start
// requires a prior Experiment call.
func (t *Tomograph) Experiment(nMeasurements int64, povm string, warmStart bool) error {
	if nMeasurements < 1 {
		return errors.Errorf("invalid measurement count: %d", nMeasurements)
	}
	if warmStart && t.povmMatrix == nil {
		return errors.Wrap(ErrNoExperiment, "warm start")
	}
	povmMatrix, err := measurements.GenerateMeasurementMatrix(povm, t.state.NQubits())
	if err != nil {
		return err
	}
	probs := t.outcomeProbabilities(povmMatrix, t.state.Bloch())
	if t.verbose {
		zap.L().Debug(fmt.Sprintf("tomograph(%s) outcome probabilities: %v", t.id, probs))
	}
	results := multinomial(nMeasurements, probs, t.src)

	if warmStart {
		t.povmMatrix = mergePOVMMatrices(
			t.povmMatrix, float64(t.nMeasurements),
			povmMatrix, float64(nMeasurements),
		)
		t.results = append(t.results, results...)
		t.nMeasurements += nMeasurements
	} else {
		t.povmMatrix = povmMatrix
		t.results = results
		t.nMeasurements = nMeasurements
	}
	return nil
}

// PointEstimate reconstructs a state estimate from the accumulated
// outcome counts. Methods: "lin" (linear inversion) and "mle"
// (maximum likelihood). With physical the non-fixed Bloch coordinates are
// projected onto the boundary of the feasible norm ball whenever their
// norm exceeds sqrt((2^n - 1) / 4^n).
func (t *Tomograph) PointEstimate(method string, physical bool) (*qobj.Qobj, error) {
	if t.povmMatrix == nil {
		return nil, errors.Wrap(ErrNoExperiment, "point estimate")
	}
	var est *qobj.Qobj
	var err error
	switch method {
	case "lin":
		est, err = t.pointEstimateLin(physical)
	case "mle":
		est, err = t.pointEstimateMLE(physical)
	default:
		return nil, errors.Errorf("unknown point estimate method: %s", method)
	}
	if err != nil {
		return nil, err
	}
	if t.verbose {
		zap.L().Debug(fmt.Sprintf("tomograph(%s) %s estimate at distance %g from the true state",
			t.id, method, t.dst(est, t.state)))
	}
	return est, nil
}

func (t *Tomograph) pointEstimateLin(physical bool) (*qobj.Qobj, error) {
	total := floats.Sum(t.results)
	freq := make([]float64, len(t.results))
	for i, r := range t.results {
		freq[i] = r / total
	}
	pinv, err := routines.LeftPseudoInverse(t.povmMatrix)
	if err != nil {
		return nil, err
	}
	var raw mat.VecDense
	raw.MulVec(pinv, mat.NewVecDense(len(freq), freq))

	scale := 1 / float64(int64(1)<<t.state.NQubits())
	bloch := make([]float64, raw.Len())
	for i := range bloch {
		bloch[i] = raw.AtVec(i) * scale
	}
	if physical {
		projectOntoNormBall(bloch[1:], t.maxNorm())
	}
	return qobj.FromBloch(bloch)
}

func (t *Tomograph) pointEstimateMLE(physical bool) (*qobj.Qobj, error) {
	// The first Bloch coordinate is fixed by normalization; only the tail
	// of the maximally mixed state seeds the optimizer.
	x0 := qobj.MaximallyMixed(t.state.NQubits()).Bloch()[1:]
	x, err := minimizeConstrained(t.negLogLikelihood, isFeasible, x0)
	if err != nil {
		return nil, errors.Wrap(err, "MLE optimization")
	}
	if physical {
		projectOntoNormBall(x, t.maxNorm())
	}
	bloch := append([]float64{1 / float64(int64(1)<<t.state.NQubits())}, x...)
	return qobj.FromBloch(bloch)
}

// negLogLikelihood scores a candidate Bloch tail under the multinomial
// model: -sum_k results_k * log(p_k + eps). The epsilon keeps the
// objective finite at the boundary of the probability simplex.
func (t *Tomograph) negLogLikelihood(x []float64) float64 {
	bloch := append([]float64{1 / float64(int64(1)<<t.state.NQubits())}, x...)
	probs := t.outcomeProbabilities(t.povmMatrix, bloch)
	var ll float64
	for i, p := range t.results {
		if probs[i] < 0 {
			probs[i] = 0
		}
		ll += p * math.Log(probs[i]+logEps)
	}
	if t.verbose {
		zap.L().Debug(fmt.Sprintf("tomograph(%s) negative log-likelihood: %g", t.id, -ll))
	}
	return -ll
}

// isFeasible is the trace-condition proxy for physicality used as the MLE
// inequality constraint: sqrt(d) - 1 - d * sum(x^2) with d = len(x) + 1.
// It is a necessary but not sufficient condition for a valid density
// operator.
func isFeasible(x []float64) float64 {
	d := float64(len(x) + 1)
	var sq float64
	for _, v := range x {
		sq += v * v
	}
	return math.Sqrt(d) - 1 - d*sq
}

func (t *Tomograph) outcomeProbabilities(povmMatrix *mat.Dense, bloch []float64) []float64 {
	var pv mat.VecDense
	pv.MulVec(povmMatrix, mat.NewVecDense(len(bloch), bloch))
	scale := float64(int64(1) << t.state.NQubits())
	out := make([]float64, pv.Len())
	for i := range out {
		out[i] = pv.AtVec(i) * scale
	}
	return out
}

func (t *Tomograph) maxNorm() float64 {
	dim := float64(int64(1) << t.state.NQubits())
	return math.Sqrt((dim - 1) / (dim * dim))
}

// projectOntoNormBall rescales vec in place onto the boundary of the ball
// of radius maxNorm when it lies outside. This is a norm projection, not
// a full positivity projection.
func projectOntoNormBall(vec []float64, maxNorm float64) {
	norm := floats.Norm(vec, 2)
	if norm <= maxNorm {
		return
	}
	for i := range vec {
		vec[i] *= maxNorm / norm
	}
}

// mergePOVMMatrices stacks two measurement matrices weighted by their
// measurement counts.
func mergePOVMMatrices(a *mat.Dense, na float64, b *mat.Dense, nb float64) *mat.Dense {
	ar, cols := a.Dims()
	br, _ := b.Dims()
	out := mat.NewDense(ar+br, cols, nil)
	total := na + nb
	for r := 0; r < ar; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, a.At(r, c)*na/total)
		}
	}
	for r := 0; r < br; r++ {
		for c := 0; c < cols; c++ {
			out.Set(ar+r, c, b.At(r, c)*nb/total)
		}
	}
	return out
}
