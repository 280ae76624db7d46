// Package channel represents quantum operations in one of two
// interchangeable forms: a transformation function on states, or a Choi
// matrix on the doubled space. Conversion from the function form to the
// Choi form is lazy and cached.
package channel

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/qst-team/qst-engine/qobj"
	"github.com/qst-team/qst-engine/routines"
)

// TransformFunc maps an input state to an output state on the same number
// of qubits. It must be linear for the Choi construction to be faithful.
type TransformFunc func(*qobj.Qobj) *qobj.Qobj

// representation tracks which of the two channel forms currently hold
// valid data. Exactly one of the three variants is active at any time.
type representation uint8

const (
	reprFunc representation = iota + 1
	reprChoi
	reprBoth
)

// Channel is a linear map on operators for a fixed qubit count.
// It is not safe for concurrent use: reading the Choi matrix may mutate
// the cached representation.
type Channel struct {
	nQubits int
	repr    representation
	fn      TransformFunc
	choi    *qobj.Qobj
}

// NewFromFunc builds a channel from a transformation function. The qubit
// count cannot be inferred from a function and is therefore mandatory.
func NewFromFunc(fn TransformFunc, nQubits int) (*Channel, error) {
	if fn == nil {
		return nil, errors.New("transformation function must not be nil")
	}
	if nQubits < 1 {
		return nil, errors.Errorf("invalid qubit count: %d", nQubits)
	}
	return &Channel{nQubits: nQubits, repr: reprFunc, fn: fn}, nil
}

// NewFromChoi builds a channel from its Choi matrix. The qubit count is
// inferred from the matrix side length 4^n.
func NewFromChoi(choi *qobj.Qobj) (*Channel, error) {
	n, err := qubitCountFromChoi(choi)
	if err != nil {
		return nil, err
	}
	return &Channel{nQubits: n, repr: reprChoi, choi: choi.Copy()}, nil
}

// NQubits returns the qubit count of the channel's input and output space.
func (c *Channel) NQubits() int { return c.nQubits }

// SetFunc replaces the transformation function and discards any cached
// Choi matrix.
func (c *Channel) SetFunc(fn TransformFunc, nQubits int) error {
	if fn == nil {
		return errors.New("transformation function must not be nil")
	}
	if nQubits < 1 {
		return errors.Errorf("invalid qubit count: %d", nQubits)
	}
	c.fn = fn
	c.nQubits = nQubits
	c.choi = nil
	c.repr = reprFunc
	return nil
}

// SetChoi replaces the Choi matrix and discards any stored transformation
// function. The qubit count is recomputed from the matrix dimensions.
func (c *Channel) SetChoi(choi *qobj.Qobj) error {
	n, err := qubitCountFromChoi(choi)
	if err != nil {
		return err
	}
	c.choi = choi.Copy()
	c.nQubits = n
	c.fn = nil
	c.repr = reprChoi
	return nil
}

// Choi returns the Choi matrix, computing and caching it from the
// function representation on first access. Repeated reads without
// intervening mutation return the identical cached operator.
func (c *Channel) Choi() *qobj.Qobj {
	if c.repr == reprFunc {
		c.choi = c.buildChoi()
		c.repr = reprBoth
	}
	return c.choi
}

// buildChoi accumulates kron(E, f(E)) over the complete single-entry
// operator basis. The sum is the Choi matrix of any linear map, with no
// assumption of complete positivity or trace preservation.
func (c *Channel) buildChoi() *qobj.Qobj {
	dim := 1 << c.nQubits
	sum := qobj.Zeros(2 * c.nQubits)
	for _, entry := range routines.GenerateSingleEntries(dim) {
		e, err := qobj.New(entry)
		if err != nil {
			panic(err)
		}
		sum = sum.Add(e.Kron(c.fn(e)))
	}
	return sum
}

// Transform applies the channel to a state. The function representation
// is preferred when valid; otherwise the channel acts through its Choi
// matrix: ptrace_in( kron(state^T, I) * Choi ).
func (c *Channel) Transform(state *qobj.Qobj) *qobj.Qobj {
	if c.repr == reprFunc || c.repr == reprBoth {
		return c.fn(state)
	}
	lifted := state.T().Kron(qobj.Identity(c.nQubits))
	keep := make([]int, c.nQubits)
	for i := range keep {
		keep[i] = c.nQubits + i
	}
	return lifted.Mul(c.choi).PartialTrace(keep)
}

// Transpose returns a new channel with the transposed Choi matrix,
// forcing its computation if needed.
func (c *Channel) Transpose() *Channel {
	return &Channel{nQubits: c.nQubits, repr: reprChoi, choi: c.Choi().T()}
}

// Adjoint returns a new channel with the adjoint Choi matrix.
func (c *Channel) Adjoint() *Channel {
	return &Channel{nQubits: c.nQubits, repr: reprChoi, choi: c.Choi().H()}
}

// Conj returns a new channel with the conjugated Choi matrix.
func (c *Channel) Conj() *Channel {
	return &Channel{nQubits: c.nQubits, repr: reprChoi, choi: c.Choi().Conj()}
}

// Copy returns a channel sharing the transformation function but owning
// its own copy of any cached Choi matrix.
func (c *Channel) Copy() *Channel {
	out := &Channel{nQubits: c.nQubits, repr: c.repr, fn: c.fn}
	if c.choi != nil {
		out.choi = c.choi.Copy()
	}
	return out
}

func (c *Channel) String() string {
	return fmt.Sprintf("quantum channel on %d qubit(s)", c.nQubits)
}

func qubitCountFromChoi(choi *qobj.Qobj) (int, error) {
	if choi == nil {
		return 0, errors.New("Choi matrix must not be nil")
	}
	if choi.NQubits()%2 != 0 || choi.NQubits() == 0 {
		return 0, errors.Errorf("Choi matrix side length %d is not a power of 4", choi.Size())
	}
	return choi.NQubits() / 2, nil
}
