// Package gates holds the fixed gate vocabulary of the simulator.
//
// Matrices are written in the internal basis order, where the first operand
// of a multi-qubit gate is the most significant bit of the local index.
package gates

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Matrix2 is a single-qubit operator, indexed [row][col].
type Matrix2 [2][2]complex128

// Matrix4 is a two-qubit operator over |first second⟩.
type Matrix4 [4][4]complex128

// Kind enumerates every gate the simulator knows about.
type Kind int

const (
	I Kind = iota
	X
	Y
	Z
	H
	S
	SDG
	T
	TDG
	RX
	RY
	RZ
	U
	U2
	U1
	CX
	CY
	CZ
	CH
	SWAP
	CCX
	numKinds
)

var kindNames = [numKinds]string{
	I: "id", X: "x", Y: "y", Z: "z", H: "h",
	S: "s", SDG: "sdg", T: "t", TDG: "tdg",
	RX: "rx", RY: "ry", RZ: "rz",
	U: "u3", U2: "u2", U1: "u1",
	CX: "cx", CY: "cy", CZ: "cz", CH: "ch", SWAP: "swap",
	CCX: "ccx",
}

// aliases maps accepted spellings onto a kind; canonical names are added in init.
var aliases = map[string]Kind{
	"i":       I,
	"u":       U,
	"p":       U1,
	"phase":   U1,
	"cnot":    CX,
	"toffoli": CCX,
}

func init() {
	for k, name := range kindNames {
		aliases[name] = Kind(k)
	}
}

// Lookup resolves a gate name, ignoring case.
func Lookup(name string) (Kind, bool) {
	k, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// String returns the canonical QASM spelling of the gate.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Arity is the number of qubit operands the gate takes.
func (k Kind) Arity() int {
	switch k {
	case CX, CY, CZ, CH, SWAP:
		return 2
	case CCX:
		return 3
	default:
		return 1
	}
}

// NumParams is the number of real parameters the gate needs.
func (k Kind) NumParams() int {
	switch k {
	case RX, RY, RZ, U1:
		return 1
	case U2:
		return 2
	case U:
		return 3
	default:
		return 0
	}
}

// Parametrized reports whether the gate is a family that must be instantiated.
func (k Kind) Parametrized() bool { return k.NumParams() > 0 }

var invSqrt2 = complex(1/math.Sqrt2, 0)

// Fixed single-qubit gates.
var (
	Identity = Matrix2{{1, 0}, {0, 1}}
	PauliX   = Matrix2{{0, 1}, {1, 0}}
	PauliY   = Matrix2{{0, -1i}, {1i, 0}}
	PauliZ   = Matrix2{{1, 0}, {0, -1}}
	Hadamard = Matrix2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	Phase    = Matrix2{{1, 0}, {0, 1i}}
	PhaseDg  = Phase.Dagger()
	PiBy8    = Matrix2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
	PiBy8Dg  = PiBy8.Dagger()
)

// Fixed two-qubit gates over |control target⟩.
var (
	CXMatrix = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}
	CZMatrix = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	}
	CYMatrix = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, -1i},
		{0, 0, 1i, 0},
	}
	CHMatrix = Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, invSqrt2, invSqrt2},
		{0, 0, invSqrt2, -invSqrt2},
	}
	SWAPMatrix = Matrix4{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	}
)

// RotX is exp(-iθX/2).
func RotX(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return Matrix2{{c, js}, {js, c}}
}

// RotY is exp(-iθY/2).
func RotY(theta float64) Matrix2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix2{{c, -s}, {s, c}}
}

// RotZ is exp(-iθZ/2).
func RotZ(theta float64) Matrix2 {
	phase := cmplx.Exp(complex(0, theta/2))
	return Matrix2{{cmplx.Conj(phase), 0}, {0, phase}}
}

// Unitary is the generic single-qubit gate U(θ, φ, λ).
func Unitary(theta, phi, lambda float64) Matrix2 {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	return Matrix2{
		{complex(c, 0), -cmplx.Exp(complex(0, lambda)) * complex(s, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(s, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0)},
	}
}

// Matrix instantiates a single-qubit gate with its parameters.
func (k Kind) Matrix(params ...float64) (Matrix2, error) {
	if k.Arity() != 1 {
		return Matrix2{}, fmt.Errorf("%s is a %d-qubit gate", k, k.Arity())
	}
	if len(params) != k.NumParams() {
		return Matrix2{}, fmt.Errorf("%s takes %d parameter(s), got %d", k, k.NumParams(), len(params))
	}
	switch k {
	case I:
		return Identity, nil
	case X:
		return PauliX, nil
	case Y:
		return PauliY, nil
	case Z:
		return PauliZ, nil
	case H:
		return Hadamard, nil
	case S:
		return Phase, nil
	case SDG:
		return PhaseDg, nil
	case T:
		return PiBy8, nil
	case TDG:
		return PiBy8Dg, nil
	case RX:
		return RotX(params[0]), nil
	case RY:
		return RotY(params[0]), nil
	case RZ:
		return RotZ(params[0]), nil
	case U:
		return Unitary(params[0], params[1], params[2]), nil
	case U2:
		return Unitary(math.Pi/2, params[0], params[1]), nil
	case U1:
		return Unitary(0, 0, params[0]), nil
	}
	return Matrix2{}, fmt.Errorf("no matrix for %s", k)
}

// Matrix4 returns the fixed operator of a two-qubit gate.
func (k Kind) Matrix4() (Matrix4, bool) {
	switch k {
	case CX:
		return CXMatrix, true
	case CY:
		return CYMatrix, true
	case CZ:
		return CZMatrix, true
	case CH:
		return CHMatrix, true
	case SWAP:
		return SWAPMatrix, true
	}
	return Matrix4{}, false
}

// Dagger returns the conjugate transpose.
func (m Matrix2) Dagger() Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// Mul returns m·o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	var r Matrix2
	for i := range 2 {
		for j := range 2 {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return r
}

// IsUnitary reports whether m·m† is the identity within tol.
func (m Matrix2) IsUnitary(tol float64) bool {
	p := m.Mul(m.Dagger())
	for i := range 2 {
		for j := range 2 {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(p[i][j]-want) > tol {
				return false
			}
		}
	}
	return true
}

// Kinds lists the vocabulary in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, 0, numKinds)
	for k := range numKinds {
		ks = append(ks, k)
	}
	return ks
}
