package sim

import (
	"strings"

	"qtermsim/internal/qasm"
)

// ClassicalRegister holds up to 64 measured bits. Bit i carries weight 2^i
// in Value.
type ClassicalRegister struct {
	bits uint64
	size int
}

func NewClassicalRegister(size int) *ClassicalRegister {
	return &ClassicalRegister{size: size}
}

func (r *ClassicalRegister) Size() int { return r.size }

func (r *ClassicalRegister) Value() uint64 { return r.bits }

func (r *ClassicalRegister) Bit(i int) int {
	return int(r.bits >> uint(i) & 1)
}

// Write stores a measurement outcome in bit i according to policy.
func (r *ClassicalRegister) Write(i, v int, policy MeasurePolicy) {
	mask := uint64(1) << uint(i)
	switch {
	case v != 0:
		r.bits |= mask
	case policy == MeasureOverwrite:
		r.bits &^= mask
	}
}

// Matches evaluates an if-condition against the register.
func (r *ClassicalRegister) Matches(cond *qasm.Condition) bool {
	if cond.Bit >= 0 {
		return uint64(r.Bit(cond.Bit)) == cond.Value
	}
	return r.bits == cond.Value
}

// String renders the bits with bit 0 last.
func (r *ClassicalRegister) String() string {
	var sb strings.Builder
	for i := r.size - 1; i >= 0; i-- {
		sb.WriteByte(byte('0' + r.Bit(i)))
	}
	return sb.String()
}
