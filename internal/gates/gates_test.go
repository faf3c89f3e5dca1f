package gates

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"h", H, true},
		{"H", H, true},
		{"CX", CX, true},
		{"cnot", CX, true},
		{"u3", U, true},
		{"U", U, true},
		{"p", U1, true},
		{"Tdg", TDG, true},
		{"ccx", CCX, true},
		{"foo", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		assert.Equal(t, tt.ok, ok, "Lookup(%q)", tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got, "Lookup(%q)", tt.name)
		}
	}
}

func TestArityAndParams(t *testing.T) {
	assert.Equal(t, 1, H.Arity())
	assert.Equal(t, 2, CH.Arity())
	assert.Equal(t, 3, CCX.Arity())
	assert.Equal(t, 0, X.NumParams())
	assert.Equal(t, 1, RZ.NumParams())
	assert.Equal(t, 3, U.NumParams())
	assert.True(t, U2.Parametrized())
	assert.False(t, SWAP.Parametrized())
}

func TestSingleQubitMatricesAreUnitary(t *testing.T) {
	params := map[int][]float64{
		0: nil,
		1: {0.7},
		2: {0.3, -1.1},
		3: {1.2, 0.4, -2.5},
	}
	for _, k := range Kinds() {
		if k.Arity() != 1 {
			continue
		}
		m, err := k.Matrix(params[k.NumParams()]...)
		require.NoError(t, err, k.String())
		assert.True(t, m.IsUnitary(1e-12), "%s is not unitary", k)
	}
}

func TestMatrixParamCount(t *testing.T) {
	_, err := RX.Matrix()
	assert.Error(t, err)

	_, err = H.Matrix(1.0)
	assert.Error(t, err)

	_, err = CX.Matrix()
	assert.Error(t, err)
}

func TestDaggers(t *testing.T) {
	assert.Equal(t, Identity, Phase.Mul(PhaseDg))

	p := PiBy8.Mul(PiBy8Dg)
	assert.InDelta(t, 1, real(p[1][1]), 1e-12)
	assert.InDelta(t, 0, imag(p[1][1]), 1e-12)

	// T² = S
	tt := PiBy8.Mul(PiBy8)
	assert.InDelta(t, 0, cmplx.Abs(tt[1][1]-1i), 1e-12)
}

func TestUnitaryFamilies(t *testing.T) {
	// U(θ,0,0) matches RY(θ).
	theta := 0.9
	u := Unitary(theta, 0, 0)
	ry := RotY(theta)
	for i := range 2 {
		for j := range 2 {
			assert.InDelta(t, 0, cmplx.Abs(u[i][j]-ry[i][j]), 1e-12)
		}
	}

	// U2(0, π) is the Hadamard.
	h, err := U2.Matrix(0, math.Pi)
	require.NoError(t, err)
	for i := range 2 {
		for j := range 2 {
			assert.InDelta(t, 0, cmplx.Abs(h[i][j]-Hadamard[i][j]), 1e-12)
		}
	}

	// RX(π) is X up to a global phase of -i.
	rx := RotX(math.Pi)
	assert.InDelta(t, 0, cmplx.Abs(rx[0][1]-(-1i)), 1e-12)
}

func TestNonFiniteParamsPropagate(t *testing.T) {
	m, err := RX.Matrix(math.NaN())
	require.NoError(t, err)
	assert.True(t, cmplx.IsNaN(m[0][0]))
}

func TestMatrix4(t *testing.T) {
	for _, k := range []Kind{CX, CY, CZ, CH, SWAP} {
		_, ok := k.Matrix4()
		assert.True(t, ok, k.String())
	}
	_, ok := H.Matrix4()
	assert.False(t, ok)
}
