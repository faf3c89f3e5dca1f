package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qtermsim/internal/simerr"
	"qtermsim/internal/statevec"
)

// MaxCbits bounds the classical register so its value fits a uint64.
const MaxCbits = 64

// Pre-compiled regexps for QASM statements.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+([A-Za-z_]\w*)\s*\[\s*(\d+)\s*\]$`)
	cregRegex    = regexp.MustCompile(`^creg\s+([A-Za-z_]\w*)\s*\[\s*(\d+)\s*\]$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*([A-Za-z_]\w*)\s*(?:\[\s*(\d+)\s*\])?\s*==\s*(\d+)\s*\)\s*(.*)$`)
	measureRegex = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	resetRegex   = regexp.MustCompile(`^reset\s+(.+)$`)
	barrierRegex = regexp.MustCompile(`^barrier(?:\s+(.*))?$`)
	gateRegex    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\((.*)\))?\s+(\S.*)$`)
	operandRegex = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\[\s*(\d+)\s*\])?$`)
)

// operand is a register reference; index -1 means the whole register.
type operand struct {
	reg   string
	index int
}

type parser struct {
	c     *Circuit
	haveQ bool
	haveC bool
	line  int
	stmt  string
}

// Parse reads circuit text. Gate names are not resolved here, so an unknown
// gate is only reported when the circuit is run.
func Parse(text string) (*Circuit, error) {
	p := &parser{c: &Circuit{}}

	for i, raw := range strings.Split(text, "\n") {
		p.line = i + 1
		if idx := strings.Index(raw, "//"); idx >= 0 {
			raw = raw[:idx]
		}
		for _, stmt := range strings.Split(raw, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			p.stmt = stmt
			if err := p.statement(stmt); err != nil {
				return nil, err
			}
		}
	}

	if !p.haveQ {
		return nil, &simerr.ParseError{Text: "", Msg: "no qreg declared"}
	}
	return p.c, nil
}

// MustParse is Parse for fixed circuits in tests and examples.
func MustParse(text string) *Circuit {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

func (p *parser) errorf(format string, args ...any) error {
	return &simerr.ParseError{Line: p.line, Text: p.stmt, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) dimensionf(format string, args ...any) error {
	return &simerr.DimensionError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// keyword is the lower-cased leading word of a statement.
func keyword(stmt string) string {
	fields := strings.FieldsFunc(stmt, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '(' || r == '['
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func (p *parser) statement(stmt string) error {
	switch keyword(stmt) {
	case "openqasm", "include":
		p.c.Metadata = append(p.c.Metadata, stmt)
		return nil
	case "qreg":
		return p.declare(stmt, true)
	case "creg":
		return p.declare(stmt, false)
	case "if":
		return p.conditional(stmt)
	}

	ops, err := p.operation(stmt)
	if err != nil {
		return err
	}
	p.c.Ops = append(p.c.Ops, ops...)
	return nil
}

func (p *parser) declare(stmt string, quantum bool) error {
	re, kind := cregRegex, "creg"
	if quantum {
		re, kind = qregRegex, "qreg"
	}
	matches := re.FindStringSubmatch(stmt)
	if matches == nil {
		return p.errorf("malformed %s declaration", kind)
	}
	size, err := strconv.Atoi(matches[2])
	if err != nil || size < 1 {
		return p.dimensionf("%s %s has invalid size %s", kind, matches[1], matches[2])
	}
	reg := Register{Name: matches[1], Size: size}

	if quantum {
		if p.haveQ {
			return p.errorf("only one qreg is supported, %s already declared", p.c.QReg.Name)
		}
		if size > statevec.MaxQubits {
			return p.dimensionf("qreg %s has %d qubits, at most %d are supported", reg.Name, size, statevec.MaxQubits)
		}
		p.c.QReg, p.haveQ = reg, true
		return nil
	}
	if p.haveC {
		return p.errorf("only one creg is supported, %s already declared", p.c.CReg.Name)
	}
	if size > MaxCbits {
		return p.dimensionf("creg %s has %d bits, at most %d are supported", reg.Name, size, MaxCbits)
	}
	p.c.CReg, p.haveC = reg, true
	return nil
}

func (p *parser) conditional(stmt string) error {
	matches := ifRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return p.errorf("malformed if statement")
	}
	if !p.haveC || matches[1] != p.c.CReg.Name {
		return p.errorf("if refers to undeclared creg %s", matches[1])
	}
	value, err := strconv.ParseUint(matches[3], 10, 64)
	if err != nil {
		return p.errorf("condition value %s: %v", matches[3], err)
	}
	cond := &Condition{Register: matches[1], Bit: -1, Value: value}
	if matches[2] != "" {
		cond.Bit, _ = strconv.Atoi(matches[2])
		if cond.Bit >= p.c.CReg.Size {
			return p.dimensionf("bit %d outside creg %s[%d]", cond.Bit, p.c.CReg.Name, p.c.CReg.Size)
		}
	}

	inner := strings.TrimSpace(matches[4])
	if inner == "" {
		return p.errorf("if without an operation")
	}
	if keyword(inner) == "if" {
		return p.errorf("nested if is not supported")
	}

	ops, err := p.operation(inner)
	if err != nil {
		return err
	}
	if len(ops) != 1 || ops[0].Kind == OpBarrier {
		return p.errorf("if must guard a single gate, measure or reset")
	}
	ops[0].Cond = cond
	ops[0].Text = stmt
	p.c.Ops = append(p.c.Ops, ops[0])
	return nil
}

// operation parses a gate, measure, reset or barrier. Whole-register measure
// and reset expand to one operation per qubit.
func (p *parser) operation(stmt string) ([]Operation, error) {
	if !p.haveQ {
		return nil, p.errorf("operation before qreg declaration")
	}
	base := Operation{Cbit: -1, Line: p.line, Text: stmt}

	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		return p.measure(base, m[1], m[2])
	}
	if m := resetRegex.FindStringSubmatch(stmt); m != nil {
		qs, err := p.qubitList(m[1], true)
		if err != nil {
			return nil, err
		}
		ops := make([]Operation, len(qs))
		for i, q := range qs {
			op := base
			op.Kind, op.Qubits = OpReset, []int{q}
			ops[i] = op
		}
		return ops, nil
	}
	if m := barrierRegex.FindStringSubmatch(stmt); m != nil {
		op := base
		op.Kind = OpBarrier
		if strings.TrimSpace(m[1]) != "" {
			qs, err := p.qubitList(m[1], true)
			if err != nil {
				return nil, err
			}
			op.Qubits = qs
		}
		return []Operation{op}, nil
	}

	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return nil, p.errorf("malformed statement")
	}
	op := base
	op.Kind = OpGate
	op.Name = strings.ToLower(m[1])
	if head := stmt[:len(stmt)-len(m[3])]; strings.Contains(head, "(") {
		params, err := evalParams(m[2])
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		op.Params = params
	}
	qs, err := p.qubitList(m[3], false)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if seen[q] {
			return nil, p.dimensionf("%s uses qubit %d more than once", op.Name, q)
		}
		seen[q] = true
	}
	op.Qubits = qs
	return []Operation{op}, nil
}

func (p *parser) measure(base Operation, src, dst string) ([]Operation, error) {
	if !p.haveC {
		return nil, p.errorf("measure without a creg declaration")
	}
	q, err := p.operand(src)
	if err != nil {
		return nil, err
	}
	c, err := p.operand(dst)
	if err != nil {
		return nil, err
	}
	if q.reg != p.c.QReg.Name {
		return nil, p.errorf("unknown qreg %s", q.reg)
	}
	if c.reg != p.c.CReg.Name {
		return nil, p.errorf("unknown creg %s", c.reg)
	}

	if (q.index < 0) != (c.index < 0) {
		return nil, p.errorf("measure must map a bit to a bit or a register to a register")
	}
	if q.index < 0 {
		if p.c.QReg.Size != p.c.CReg.Size {
			return nil, p.dimensionf("measure %s -> %s: register sizes %d and %d differ",
				q.reg, c.reg, p.c.QReg.Size, p.c.CReg.Size)
		}
		ops := make([]Operation, p.c.QReg.Size)
		for i := range ops {
			op := base
			op.Kind, op.Qubits, op.Cbit = OpMeasure, []int{i}, i
			ops[i] = op
		}
		return ops, nil
	}

	if q.index >= p.c.QReg.Size {
		return nil, p.dimensionf("qubit %d outside qreg %s[%d]", q.index, q.reg, p.c.QReg.Size)
	}
	if c.index >= p.c.CReg.Size {
		return nil, p.dimensionf("bit %d outside creg %s[%d]", c.index, c.reg, p.c.CReg.Size)
	}
	op := base
	op.Kind, op.Qubits, op.Cbit = OpMeasure, []int{q.index}, c.index
	return []Operation{op}, nil
}

func (p *parser) operand(s string) (operand, error) {
	m := operandRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return operand{}, p.errorf("malformed operand %q", strings.TrimSpace(s))
	}
	o := operand{reg: m[1], index: -1}
	if m[2] != "" {
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			return operand{}, p.errorf("operand index %s: %v", m[2], err)
		}
		o.index = idx
	}
	return o, nil
}

// qubitList resolves comma-separated qubit operands to indices. A bare
// register name expands to all of its qubits when wholeOK is set.
func (p *parser) qubitList(s string, wholeOK bool) ([]int, error) {
	var qs []int
	for _, part := range strings.Split(s, ",") {
		o, err := p.operand(part)
		if err != nil {
			return nil, err
		}
		if o.reg != p.c.QReg.Name {
			return nil, p.errorf("unknown qreg %s", o.reg)
		}
		if o.index < 0 {
			if !wholeOK {
				return nil, p.errorf("gate operand %s needs an index", o.reg)
			}
			for i := range p.c.QReg.Size {
				qs = append(qs, i)
			}
			continue
		}
		if o.index >= p.c.QReg.Size {
			return nil, p.dimensionf("qubit %d outside qreg %s[%d]", o.index, o.reg, p.c.QReg.Size)
		}
		qs = append(qs, o.index)
	}
	return qs, nil
}
