package statevec

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"qtermsim/internal/gates"
)

// Measure draws the value of qubit q and collapses the state onto it.
//
// If the surviving amplitudes have zero norm the state is left untouched and
// the result is 0.
func (s *State) Measure(q int) (int, error) {
	if err := s.checkQubit(q); err != nil {
		return 0, err
	}
	bit := s.mask(q)

	p1 := 0.0
	for i, a := range s.Amplitudes {
		if i&bit != 0 {
			p1 += real(a * cmplx.Conj(a))
		}
	}

	outcome := 0
	if s.rng.Float64() < p1 {
		outcome = 1
	}

	keep := func(i int) bool { return (i&bit != 0) == (outcome == 1) }

	surviving := 0.0
	for i, a := range s.Amplitudes {
		if keep(i) {
			surviving += real(a * cmplx.Conj(a))
		}
	}
	if surviving == 0 {
		return 0, nil
	}

	scale := complex(1/math.Sqrt(surviving), 0)
	for i := range s.Amplitudes {
		if keep(i) {
			s.Amplitudes[i] *= scale
		} else {
			s.Amplitudes[i] = 0
		}
	}
	return outcome, nil
}

// Reset measures qubit q and flips it back to |0⟩ when it read 1.
func (s *State) Reset(q int) error {
	v, err := s.Measure(q)
	if err != nil {
		return err
	}
	if v == 1 {
		return s.ApplySingle(gates.PauliX, q)
	}
	return nil
}

// SampleHistogram draws shots outcomes from the current distribution without
// touching the state. Keys are display-order bit strings.
func (s *State) SampleHistogram(shots int) map[string]int {
	probs := s.Probabilities()
	cumulative := make([]float64, len(probs))
	total := 0.0
	for i, p := range probs {
		total += p
		cumulative[i] = total
	}

	byIndex := make(map[int]int)
	for range shots {
		r := s.rng.Float64() * total
		i := sort.Search(len(cumulative), func(k int) bool { return cumulative[k] > r })
		if i == len(cumulative) {
			i = len(cumulative) - 1
		}
		byIndex[i]++
	}

	counts := make(map[string]int, len(byIndex))
	for i, n := range byIndex {
		counts[s.Bitstring(i)] += n
	}
	return counts
}

// SampleOne draws a single outcome, see SampleHistogram.
func (s *State) SampleOne() string {
	for key := range s.SampleHistogram(1) {
		return key
	}
	return ""
}

// Bitstring renders an internal-order basis index as its display-order
// label, most significant qubit first.
func (s *State) Bitstring(index int) string {
	return fmt.Sprintf("%0*b", s.NumQubits, reverseBits(index, s.NumQubits))
}

var noiseOps = [3]gates.Matrix2{gates.PauliX, gates.PauliY, gates.PauliZ}

// ApplyNoiseTick draws, per qubit, X, Y or Z with probability p/3 each, or
// identity with 1-p, and applies the drawn product. p == 0 performs no draws.
func (s *State) ApplyNoiseTick(p float64) error {
	if p <= 0 {
		return nil
	}
	for q := range s.NumQubits {
		r := s.rng.Float64()
		if r >= p {
			continue
		}
		op := noiseOps[min(int(r/(p/3)), 2)]
		if err := s.ApplySingle(op, q); err != nil {
			return err
		}
	}
	return nil
}

// DisplayOrder returns a copy with each basis index bit-reversed. Applying
// it twice yields the original ordering.
func (s *State) DisplayOrder() []complex128 {
	return Reorder(s.Amplitudes, s.NumQubits)
}

// Reorder bit-reverses the basis indices of amps over n qubits.
func Reorder(amps []complex128, n int) []complex128 {
	out := make([]complex128, len(amps))
	for i, a := range amps {
		out[reverseBits(i, n)] = a
	}
	return out
}

func reverseBits(i, n int) int {
	r := 0
	for range n {
		r = r<<1 | i&1
		i >>= 1
	}
	return r
}
