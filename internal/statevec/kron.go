package statevec

import "qtermsim/internal/gates"

// Dense is a row-major square matrix over the full register.
type Dense [][]complex128

// Kron returns a ⊗ b.
func Kron(a, b Dense) Dense {
	ra, rb := len(a), len(b)
	out := make(Dense, ra*rb)
	for i := range out {
		out[i] = make([]complex128, ra*rb)
	}
	for i := range ra {
		for j := range ra {
			if a[i][j] == 0 {
				continue
			}
			for k := range rb {
				for l := range rb {
					out[i*rb+k][j*rb+l] = a[i][j] * b[k][l]
				}
			}
		}
	}
	return out
}

func dense2(m gates.Matrix2) Dense {
	return Dense{{m[0][0], m[0][1]}, {m[1][0], m[1][1]}}
}

// FullOperator builds I ⊗ … ⊗ m ⊗ … ⊗ I with m in slot q of n. It is
// exponential in n and only meant for checking the pair kernels.
func FullOperator(m gates.Matrix2, q, n int) Dense {
	var full Dense
	for k := range n {
		op := dense2(gates.Identity)
		if k == q {
			op = dense2(m)
		}
		if full == nil {
			full = op
			continue
		}
		full = Kron(full, op)
	}
	return full
}

// Apply returns op·v.
func (op Dense) Apply(v []complex128) []complex128 {
	out := make([]complex128, len(op))
	for i, row := range op {
		var sum complex128
		for j, x := range row {
			sum += x * v[j]
		}
		out[i] = sum
	}
	return out
}
