package qobj

import "gonum.org/v1/gonum/mat"

// Single-qubit Pauli operators. Each call returns a fresh matrix so the
// caller may mutate the result freely.

func SigmaI() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
}

func SigmaX() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})
}

func SigmaY() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, -1i, 1i, 0})
}

func SigmaZ() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1})
}

// PauliBasis returns the 4^n tensor-product Pauli operators for nQubits
// qubits. Index i is read as base-4 digits, most significant digit first,
// with digit order I, X, Y, Z. The basis satisfies
// Tr(sigma_i sigma_j) = 2^n delta_ij.
func PauliBasis(nQubits int) []*mat.CDense {
	singles := []*mat.CDense{SigmaI(), SigmaX(), SigmaY(), SigmaZ()}
	if nQubits == 0 {
		return []*mat.CDense{mat.NewCDense(1, 1, []complex128{1})}
	}
	basis := singles
	for q := 1; q < nQubits; q++ {
		next := make([]*mat.CDense, 0, len(basis)*4)
		for _, a := range basis {
			for _, b := range singles {
				next = append(next, kronCDense(a, b))
			}
		}
		basis = next
	}
	return basis
}

func kronCDense(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					out.Set(i*br+k, j*bc+l, v*b.At(k, l))
				}
			}
		}
	}
	return out
}
