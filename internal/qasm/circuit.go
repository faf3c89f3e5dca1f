// Package qasm reads the OpenQASM 2.0 subset understood by the simulator
// into a Circuit and writes circuits back out as QASM text.
package qasm

// OpKind distinguishes the statements a Circuit can hold.
type OpKind int

const (
	OpGate OpKind = iota
	OpMeasure
	OpReset
	OpBarrier
)

func (k OpKind) String() string {
	switch k {
	case OpGate:
		return "gate"
	case OpMeasure:
		return "measure"
	case OpReset:
		return "reset"
	case OpBarrier:
		return "barrier"
	}
	return "unknown"
}

// Register is a declared qreg or creg.
type Register struct {
	Name string
	Size int
}

// Condition guards an operation on the classical register.
type Condition struct {
	Register string
	Bit      int // -1 compares the whole register
	Value    uint64
}

// Operation is one parsed instruction.
type Operation struct {
	Kind   OpKind
	Name   string    // lower-cased gate name, OpGate only
	Qubits []int     // operands in source order; control(s) first
	Params []float64 // evaluated gate parameters
	Cbit   int       // destination bit of a measurement, -1 otherwise
	Cond   *Condition
	Line   int
	Text   string // source statement, trimmed
}

// Circuit is the parsed program. It is not modified after Parse returns.
type Circuit struct {
	Metadata []string
	QReg     Register
	CReg     Register
	Ops      []Operation
}

// NumQubits is the declared quantum register size.
func (c *Circuit) NumQubits() int { return c.QReg.Size }

// NumCbits is the declared classical register size.
func (c *Circuit) NumCbits() int { return c.CReg.Size }

// CountOps tallies operations by kind, conditional operations included.
func (c *Circuit) CountOps() map[OpKind]int {
	counts := make(map[OpKind]int)
	for _, op := range c.Ops {
		counts[op.Kind]++
	}
	return counts
}
