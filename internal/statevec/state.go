// Package statevec owns the amplitude vector of a qubit register and every
// operation that reads or mutates it.
//
// Qubit q maps to bit (n-1-q) of a basis index, so qubit 0 is the most
// significant bit. DisplayOrder converts to the reversed convention used for
// reporting, where qubit 0 is the least significant bit.
package statevec

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"qtermsim/internal/gates"
	"qtermsim/internal/simerr"
)

// MaxQubits bounds the register size; 2^24 amplitudes is 256 MiB.
const MaxQubits = 24

// State is the joint state of NumQubits qubits.
type State struct {
	Amplitudes []complex128
	NumQubits  int

	rng *rand.Rand
}

// New returns |0…0⟩ on numQubits qubits. rng drives measurement, sampling
// and noise; a nil rng gets a fixed seed.
func New(numQubits int, rng *rand.Rand) (*State, error) {
	if numQubits < 1 || numQubits > MaxQubits {
		return nil, simerr.Dimensionf("register of %d qubits is outside 1..%d", numQubits, MaxQubits)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &State{Amplitudes: amps, NumQubits: numQubits, rng: rng}, nil
}

// Clone copies the amplitudes; the copy shares the random source.
func (s *State) Clone() *State {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &State{Amplitudes: amps, NumQubits: s.NumQubits, rng: s.rng}
}

// mask is the basis-index bit that holds qubit q.
func (s *State) mask(q int) int {
	return 1 << (s.NumQubits - 1 - q)
}

func (s *State) checkQubit(q int) error {
	if q < 0 || q >= s.NumQubits {
		return simerr.Dimensionf("qubit %d outside register of %d", q, s.NumQubits)
	}
	return nil
}

// ApplySingle applies a 2×2 operator to qubit q. The result equals
// FullOperator(m, q, n) times the state vector.
func (s *State) ApplySingle(m gates.Matrix2, q int) error {
	if err := s.checkQubit(q); err != nil {
		return err
	}
	bit := s.mask(q)
	amps := s.Amplitudes
	forEachPair(len(amps), bit, func(i, j int) {
		a0, a1 := amps[i], amps[j]
		amps[i] = m[0][0]*a0 + m[0][1]*a1
		amps[j] = m[1][0]*a0 + m[1][1]*a1
	})
	return nil
}

// ApplyTwoQubit applies a controlled gate (or swap) to a pair of qubits.
func (s *State) ApplyTwoQubit(kind gates.Kind, control, target int) error {
	if err := s.checkQubit(control); err != nil {
		return err
	}
	if err := s.checkQubit(target); err != nil {
		return err
	}
	if control == target {
		return simerr.Dimensionf("%s control and target are both qubit %d", kind, control)
	}
	cBit, tBit := s.mask(control), s.mask(target)
	amps := s.Amplitudes

	switch kind {
	case gates.CX:
		forEachPair(len(amps), tBit, func(i, j int) {
			if i&cBit != 0 {
				amps[i], amps[j] = amps[j], amps[i]
			}
		})
	case gates.CY:
		forEachPair(len(amps), tBit, func(i, j int) {
			if i&cBit != 0 {
				// target 0 moves up with +i, target 1 moves down with -i
				amps[i], amps[j] = -1i*amps[j], 1i*amps[i]
			}
		})
	case gates.CZ:
		both := cBit | tBit
		forEachIndex(len(amps), func(i int) {
			if i&both == both {
				amps[i] = -amps[i]
			}
		})
	case gates.CH:
		h := complex(1/math.Sqrt2, 0)
		forEachPair(len(amps), tBit, func(i, j int) {
			if i&cBit != 0 {
				a0, a1 := amps[i], amps[j]
				amps[i] = h*a0 + h*a1
				amps[j] = h*a0 - h*a1
			}
		})
	case gates.SWAP:
		forEachPair(len(amps), tBit, func(i, j int) {
			if i&cBit != 0 {
				// i holds (1,0) on (control,target); its partner is (0,1)
				k := (i &^ cBit) | tBit
				amps[i], amps[k] = amps[k], amps[i]
			}
		})
	default:
		return &simerr.UnknownGateError{Name: kind.String()}
	}
	return nil
}

// ApplyToffoli flips target where both controls are 1.
func (s *State) ApplyToffoli(c1, c2, target int) error {
	for _, q := range []int{c1, c2, target} {
		if err := s.checkQubit(q); err != nil {
			return err
		}
	}
	if c1 == c2 || c1 == target || c2 == target {
		return simerr.Dimensionf("ccx operands %d, %d, %d are not distinct", c1, c2, target)
	}
	controls := s.mask(c1) | s.mask(c2)
	amps := s.Amplitudes
	forEachPair(len(amps), s.mask(target), func(i, j int) {
		if i&controls == controls {
			amps[i], amps[j] = amps[j], amps[i]
		}
	})
	return nil
}

// Norm is the Euclidean norm of the amplitude vector.
func (s *State) Norm() float64 {
	sum := 0.0
	for _, a := range s.Amplitudes {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// CheckNorm fails with a NormalizationError when the squared norm is more
// than tol away from 1, or is not finite.
func (s *State) CheckNorm(tol float64) error {
	n := s.Norm()
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n*n-1) > tol {
		return &simerr.NormalizationError{Norm: n}
	}
	return nil
}

// Probabilities returns |a_i|² in internal order.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// QubitProbability holds the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal of every qubit.
func (s *State) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		p := real(a * cmplx.Conj(a))
		for q := range s.NumQubits {
			if i&s.mask(q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}
