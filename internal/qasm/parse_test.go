package qasm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/internal/simerr"
)

func TestParseTeleportation(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[2];

h q[1];
cx q[1], q[2];
cx q[0], q[1];
h q[0];
measure q[0] -> c[0];
measure q[1] -> c[1];

if(c==2) x q[2];
if (c==1) z q[2];
`
	c, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"OPENQASM 2.0", `include "qelib1.inc"`}, c.Metadata)
	assert.Equal(t, Register{Name: "q", Size: 3}, c.QReg)
	assert.Equal(t, Register{Name: "c", Size: 2}, c.CReg)
	require.Len(t, c.Ops, 8)

	assert.Equal(t, OpGate, c.Ops[0].Kind)
	assert.Equal(t, "h", c.Ops[0].Name)
	assert.Equal(t, []int{1}, c.Ops[0].Qubits)
	assert.Equal(t, 7, c.Ops[0].Line)

	assert.Equal(t, "cx", c.Ops[1].Name)
	assert.Equal(t, []int{1, 2}, c.Ops[1].Qubits)

	m := c.Ops[5]
	assert.Equal(t, OpMeasure, m.Kind)
	assert.Equal(t, []int{1}, m.Qubits)
	assert.Equal(t, 1, m.Cbit)

	g6 := c.Ops[6]
	assert.Equal(t, "x", g6.Name)
	require.NotNil(t, g6.Cond)
	assert.Equal(t, Condition{Register: "c", Bit: -1, Value: 2}, *g6.Cond)

	g7 := c.Ops[7]
	assert.Equal(t, "z", g7.Name)
	assert.Equal(t, uint64(1), g7.Cond.Value)

	assert.Equal(t, 6, c.CountOps()[OpGate])
	assert.Equal(t, 2, c.CountOps()[OpMeasure])
}

func TestParseGateNamesCaseInsensitive(t *testing.T) {
	c, err := Parse("qreg q[2];\nH q[0];\nCX q[0],q[1];\nRz(PI/2) q[1];")
	require.NoError(t, err)
	assert.Equal(t, "h", c.Ops[0].Name)
	assert.Equal(t, "cx", c.Ops[1].Name)
	assert.Equal(t, "rz", c.Ops[2].Name)
	assert.InDelta(t, math.Pi/2, c.Ops[2].Params[0], 1e-12)
}

func TestParseParams(t *testing.T) {
	c, err := Parse(`qreg q[1];
u3(pi/2, -pi, 0.25) q[0];
rx( 2*pi/3 ) q[0];
u1(sin(pi/2)) q[0];`)
	require.NoError(t, err)
	require.Len(t, c.Ops, 3)

	assert.InDeltaSlice(t, []float64{math.Pi / 2, -math.Pi, 0.25}, c.Ops[0].Params, 1e-12)
	assert.InDelta(t, 2*math.Pi/3, c.Ops[1].Params[0], 1e-12)
	assert.InDelta(t, 1, c.Ops[2].Params[0], 1e-12)
}

func TestParseUnknownGateDeferred(t *testing.T) {
	c, err := Parse("qreg q[1];\nfrobnicate q[0];")
	require.NoError(t, err)
	assert.Equal(t, "frobnicate", c.Ops[0].Name)
}

func TestParseMultipleStatementsAndComments(t *testing.T) {
	c, err := Parse("qreg q[2]; creg c[2]; // registers\nh q[0]; x q[1]; // two gates\n// measure q[0] -> c[0];")
	require.NoError(t, err)
	require.Len(t, c.Ops, 2)
	assert.Equal(t, 2, c.Ops[1].Line)
}

func TestParseWholeRegisterMeasure(t *testing.T) {
	c, err := Parse("qreg q[3];\ncreg c[3];\nmeasure q -> c;")
	require.NoError(t, err)
	require.Len(t, c.Ops, 3)
	for i, op := range c.Ops {
		assert.Equal(t, OpMeasure, op.Kind)
		assert.Equal(t, []int{i}, op.Qubits)
		assert.Equal(t, i, op.Cbit)
	}

	_, err = Parse("qreg q[3];\ncreg c[2];\nmeasure q -> c;")
	var dimErr *simerr.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestParseResetAndBarrier(t *testing.T) {
	c, err := Parse("qreg q[2];\nreset q[1];\nbarrier q[0], q[1];\nbarrier q;\nreset q;")
	require.NoError(t, err)
	require.Len(t, c.Ops, 5)
	assert.Equal(t, OpReset, c.Ops[0].Kind)
	assert.Equal(t, []int{1}, c.Ops[0].Qubits)
	assert.Equal(t, OpBarrier, c.Ops[1].Kind)
	assert.Equal(t, []int{0, 1}, c.Ops[2].Qubits)
	assert.Equal(t, []int{0}, c.Ops[3].Qubits)
	assert.Equal(t, []int{1}, c.Ops[4].Qubits)
}

func TestParseConditionalForms(t *testing.T) {
	c, err := Parse(`qreg q[2];
creg c[2];
if (c[1]==1) x q[0];
if (c==3) measure q[1] -> c[0];
if (c==0) reset q[0];
if (c==1) rx(pi) q[1];`)
	require.NoError(t, err)
	require.Len(t, c.Ops, 4)

	assert.Equal(t, Condition{Register: "c", Bit: 1, Value: 1}, *c.Ops[0].Cond)
	assert.Equal(t, OpMeasure, c.Ops[1].Kind)
	assert.Equal(t, 0, c.Ops[1].Cbit)
	assert.Equal(t, OpReset, c.Ops[2].Kind)
	assert.InDelta(t, math.Pi, c.Ops[3].Params[0], 1e-12)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		dim    bool // DimensionError instead of ParseError
		line   int
	}{
		{"no_qreg", "h q[0];", false, 1},
		{"missing_qreg_at_all", "creg c[1];", false, 0},
		{"bad_qreg", "qreg q[];", false, 1},
		{"zero_qreg", "qreg q[0];", true, 1},
		{"huge_qreg", "qreg q[25];", true, 1},
		{"second_qreg", "qreg q[1];\nqreg r[1];", false, 2},
		{"second_creg", "qreg q[1];\ncreg a[1];\ncreg b[1];", false, 3},
		{"huge_creg", "qreg q[1];\ncreg c[65];", true, 2},
		{"qubit_out_of_range", "qreg q[2];\nh q[2];", true, 2},
		{"same_control_target", "qreg q[2];\ncx q[1], q[1];", true, 2},
		{"unknown_qreg", "qreg q[2];\nh r[0];", false, 2},
		{"missing_index", "qreg q[2];\nh q;", false, 2},
		{"bad_operand", "qreg q[2];\nh q[0] q[1];", false, 2},
		{"bad_param", "qreg q[1];\nrx(foo) q[0];", false, 2},
		{"empty_param", "qreg q[1];\nrx() q[0];", false, 2},
		{"div_zero", "qreg q[1];\nrx(pi/0) q[0];", false, 2},
		{"measure_no_creg", "qreg q[1];\nmeasure q[0] -> c[0];", false, 2},
		{"measure_bit_range", "qreg q[1];\ncreg c[1];\nmeasure q[0] -> c[1];", true, 3},
		{"measure_mixed", "qreg q[1];\ncreg c[1];\nmeasure q -> c[0];", false, 3},
		{"if_unknown_creg", "qreg q[1];\ncreg c[1];\nif (d==1) x q[0];", false, 3},
		{"if_bit_range", "qreg q[1];\ncreg c[1];\nif (c[2]==1) x q[0];", true, 3},
		{"nested_if", "qreg q[1];\ncreg c[1];\nif (c==1) if (c==0) x q[0];", false, 3},
		{"if_empty", "qreg q[1];\ncreg c[1];\nif (c==1)", false, 3},
		{"if_malformed", "qreg q[1];\ncreg c[1];\nif c==1 x q[0];", false, 3},
		{"garbage", "qreg q[1];\n(((;", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			require.Error(t, err)

			if tt.dim {
				var dimErr *simerr.DimensionError
				require.True(t, errors.As(err, &dimErr), "got %T: %v", err, err)
				assert.Equal(t, tt.line, dimErr.Line)
				return
			}
			var parseErr *simerr.ParseError
			require.True(t, errors.As(err, &parseErr), "got %T: %v", err, err)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
creg c[3];
h q[0];
rx(pi/2) q[1];
u3(3*pi/4, -pi, 0.125) q[2];
ccx q[0], q[1], q[2];
barrier q[0], q[1], q[2];
measure q[0] -> c[0];
if (c==1) x q[2];
if (c[0]==1) ch q[0], q[1];
reset q[1];
`
	c := MustParse(src)
	out := Format(c)

	assert.Contains(t, out, "rx(pi/2) q[1];")
	assert.Contains(t, out, "u3(3*pi/4, -pi, 0.125) q[2];")
	assert.Contains(t, out, "if (c==1) x q[2];")
	assert.Contains(t, out, "if (c[0]==1) ch q[0], q[1];")
	assert.Equal(t, 1, strings.Count(out, "OPENQASM"))

	again, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, again.Ops, len(c.Ops))
	for i := range c.Ops {
		assert.Equal(t, c.Ops[i].Kind, again.Ops[i].Kind)
		assert.Equal(t, c.Ops[i].Name, again.Ops[i].Name)
		assert.Equal(t, c.Ops[i].Qubits, again.Ops[i].Qubits)
		assert.Equal(t, c.Ops[i].Cbit, again.Ops[i].Cbit)
		assert.Equal(t, c.Ops[i].Cond, again.Ops[i].Cond)
		assert.InDeltaSlice(t, c.Ops[i].Params, again.Ops[i].Params, 1e-12)
	}
}

func TestFormatWithoutMetadata(t *testing.T) {
	out := Format(MustParse("qreg r[1];\nx r[0];"))
	assert.True(t, strings.HasPrefix(out, "OPENQASM 2.0;\n"))
	assert.Contains(t, out, "x r[0];")
	assert.NotContains(t, out, "creg")
}
