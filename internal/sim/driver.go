// Package sim interprets a parsed circuit against a state vector and a
// classical register and reports the final amplitudes and an outcome
// histogram.
package sim

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"qtermsim/internal/gates"
	"qtermsim/internal/qasm"
	"qtermsim/internal/simerr"
	"qtermsim/internal/statevec"
)

// normTolerance bounds |‖ψ‖² - 1| after every state mutation.
const normTolerance = 1e-9

// Result is the outcome of a run.
type Result struct {
	RunID uuid.UUID

	NumQubits int
	// Amplitudes is in display order: qubit 0 is the least significant bit.
	Amplitudes []complex128
	// Counts maps display-order bit strings to the number of shots.
	Counts map[string]int
	Shots  int

	// Qubits holds the marginal probabilities of each qubit.
	Qubits []statevec.QubitProbability

	// Register is the classical register at the end of the (last) execution.
	Register *ClassicalRegister
	Mode     ShotMode
	Elapsed  time.Duration
}

// Validate resolves every gate in c against the gate library and checks its
// operand and parameter counts, without touching any state.
func Validate(c *qasm.Circuit) error {
	for _, op := range c.Ops {
		if op.Kind != qasm.OpGate {
			continue
		}
		if _, err := resolve(op); err != nil {
			return err
		}
	}
	return nil
}

func resolve(op qasm.Operation) (gates.Kind, error) {
	kind, ok := gates.Lookup(op.Name)
	if !ok {
		return 0, &simerr.UnknownGateError{Name: op.Name, Line: op.Line}
	}
	if len(op.Qubits) != kind.Arity() {
		return 0, &simerr.DimensionError{
			Line: op.Line,
			Msg:  fmt.Sprintf("%s acts on %d qubit(s), got %d", kind, kind.Arity(), len(op.Qubits)),
		}
	}
	if len(op.Params) != kind.NumParams() {
		return 0, &simerr.ParseError{
			Line: op.Line,
			Text: op.Text,
			Msg:  fmt.Sprintf("%s takes %d parameter(s), got %d", kind, kind.NumParams(), len(op.Params)),
		}
	}
	return kind, nil
}

// Run executes c under cfg.
func Run(c *qasm.Circuit, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	shots := cfg.shots()

	res := &Result{
		RunID:     uuid.New(),
		NumQubits: c.NumQubits(),
		Shots:     shots,
		Mode:      cfg.ShotMode,
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("run", res.RunID.String())
	logger.Info("run started",
		"qubits", c.NumQubits(), "ops", len(c.Ops), "shots", shots,
		"p", cfg.ErrorProbability, "seed", cfg.Seed, "mode", cfg.ShotMode)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var last *Interpreter
	switch cfg.ShotMode {
	case ShotFinal:
		in, err := NewInterpreter(c, cfg, rng, logger)
		if err != nil {
			return nil, err
		}
		if err := in.Execute(); err != nil {
			return nil, err
		}
		res.Counts = in.State.SampleHistogram(shots)
		last = in

	case ShotRerun:
		res.Counts = make(map[string]int)
		for shot := range shots {
			in, err := NewInterpreter(c, cfg, rng, logger.With("shot", shot))
			if err != nil {
				return nil, err
			}
			if err := in.Execute(); err != nil {
				return nil, err
			}
			res.Counts[in.State.SampleOne()]++
			last = in
		}
	}

	res.Amplitudes = last.State.DisplayOrder()
	res.Qubits = last.State.QubitProbabilities()
	res.Register = last.Creg
	res.Elapsed = time.Since(start)
	logger.Info("run finished", "outcomes", len(res.Counts), "creg", last.Creg.String(), "elapsed", res.Elapsed)
	return res, nil
}

// Interpreter steps through the operations of one circuit execution.
type Interpreter struct {
	State *statevec.State
	Creg  *ClassicalRegister

	circuit *qasm.Circuit
	cfg     Config
	log     *log.Logger
	pc      int
}

// NewInterpreter prepares |0…0⟩ and an all-zero classical register for c.
// A nil logger discards records.
func NewInterpreter(c *qasm.Circuit, cfg Config, rng *rand.Rand, logger *log.Logger) (*Interpreter, error) {
	st, err := statevec.New(c.NumQubits(), rng)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Interpreter{
		State:   st,
		Creg:    NewClassicalRegister(c.NumCbits()),
		circuit: c,
		cfg:     cfg,
		log:     logger,
	}, nil
}

// Done reports whether every operation has been executed.
func (in *Interpreter) Done() bool { return in.pc >= len(in.circuit.Ops) }

// Execute runs the remaining operations.
func (in *Interpreter) Execute() error {
	for !in.Done() {
		if err := in.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes the next operation, followed by a noise tick unless it is a
// barrier.
func (in *Interpreter) Step() error {
	if in.Done() {
		return errors.New("no operations left")
	}
	op := in.circuit.Ops[in.pc]
	in.pc++

	if op.Kind == qasm.OpBarrier {
		in.log.Debug("barrier", "line", op.Line)
		return nil
	}

	if op.Cond == nil || in.Creg.Matches(op.Cond) {
		if err := in.apply(op); err != nil {
			return withLine(err, op.Line)
		}
	} else {
		in.log.Debug("condition false", "line", op.Line, "creg", in.Creg.String())
	}

	if in.cfg.ErrorProbability > 0 {
		if err := in.State.ApplyNoiseTick(in.cfg.ErrorProbability); err != nil {
			return err
		}
		if err := in.State.CheckNorm(normTolerance); err != nil {
			return withLine(err, op.Line)
		}
	}
	return nil
}

func (in *Interpreter) apply(op qasm.Operation) error {
	switch op.Kind {
	case qasm.OpMeasure:
		v, err := in.State.Measure(op.Qubits[0])
		if err != nil {
			return err
		}
		in.Creg.Write(op.Cbit, v, in.cfg.MeasurePolicy)
		in.log.Debug("measure", "line", op.Line, "qubit", op.Qubits[0], "cbit", op.Cbit, "outcome", v)

	case qasm.OpReset:
		if err := in.State.Reset(op.Qubits[0]); err != nil {
			return err
		}
		in.log.Debug("reset", "line", op.Line, "qubit", op.Qubits[0])

	case qasm.OpGate:
		kind, err := resolve(op)
		if err != nil {
			return err
		}
		if err := in.applyGate(kind, op); err != nil {
			return err
		}
		in.log.Debug("gate", "line", op.Line, "gate", kind, "qubits", op.Qubits)

	default:
		return fmt.Errorf("unhandled operation %v", op.Kind)
	}
	return in.State.CheckNorm(normTolerance)
}

func (in *Interpreter) applyGate(kind gates.Kind, op qasm.Operation) error {
	q := op.Qubits
	switch kind.Arity() {
	case 1:
		m, err := kind.Matrix(op.Params...)
		if err != nil {
			return &simerr.ParseError{Line: op.Line, Text: op.Text, Msg: err.Error()}
		}
		return in.State.ApplySingle(m, q[0])
	case 2:
		return in.State.ApplyTwoQubit(kind, q[0], q[1])
	case 3:
		return in.State.ApplyToffoli(q[0], q[1], q[2])
	}
	return &simerr.UnknownGateError{Name: op.Name, Line: op.Line}
}

// withLine attaches a source line to engine errors that were raised without
// one.
func withLine(err error, line int) error {
	var dimErr *simerr.DimensionError
	if errors.As(err, &dimErr) && dimErr.Line == 0 {
		dimErr.Line = line
	}
	return err
}
