package qasm

import (
	"fmt"
	"strings"
)

// Format renders the circuit as QASM 2.0. Parsing the output yields an
// equivalent circuit.
func Format(c *Circuit) string {
	var sb strings.Builder

	header := false
	for _, m := range c.Metadata {
		if strings.HasPrefix(strings.ToUpper(m), "OPENQASM") {
			header = true
		}
	}
	if !header {
		sb.WriteString("OPENQASM 2.0;\n")
	}
	for _, m := range c.Metadata {
		fmt.Fprintf(&sb, "%s;\n", m)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "qreg %s[%d];\n", c.QReg.Name, c.QReg.Size)
	if c.CReg.Size > 0 {
		fmt.Fprintf(&sb, "creg %s[%d];\n", c.CReg.Name, c.CReg.Size)
	}
	sb.WriteString("\n")

	for _, op := range c.Ops {
		sb.WriteString(FormatOp(c, op))
		sb.WriteString(";\n")
	}
	return sb.String()
}

// FormatOp renders a single operation without the trailing semicolon.
func FormatOp(c *Circuit, op Operation) string {
	var sb strings.Builder
	if op.Cond != nil {
		if op.Cond.Bit >= 0 {
			fmt.Fprintf(&sb, "if (%s[%d]==%d) ", op.Cond.Register, op.Cond.Bit, op.Cond.Value)
		} else {
			fmt.Fprintf(&sb, "if (%s==%d) ", op.Cond.Register, op.Cond.Value)
		}
	}

	qubits := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		qubits[i] = fmt.Sprintf("%s[%d]", c.QReg.Name, q)
	}

	switch op.Kind {
	case OpMeasure:
		fmt.Fprintf(&sb, "measure %s -> %s[%d]", qubits[0], c.CReg.Name, op.Cbit)
	case OpReset:
		fmt.Fprintf(&sb, "reset %s", qubits[0])
	case OpBarrier:
		if len(qubits) == 0 {
			fmt.Fprintf(&sb, "barrier %s", c.QReg.Name)
		} else {
			fmt.Fprintf(&sb, "barrier %s", strings.Join(qubits, ", "))
		}
	default:
		sb.WriteString(op.Name)
		if len(op.Params) > 0 {
			params := make([]string, len(op.Params))
			for i, v := range op.Params {
				params[i] = formatParam(v)
			}
			fmt.Fprintf(&sb, "(%s)", strings.Join(params, ", "))
		}
		fmt.Fprintf(&sb, " %s", strings.Join(qubits, ", "))
	}
	return sb.String()
}
