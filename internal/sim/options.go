package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// ShotMode selects how the outcome histogram is produced.
type ShotMode int

const (
	// ShotFinal executes the circuit once and samples every shot from the
	// final distribution.
	ShotFinal ShotMode = iota
	// ShotRerun executes the whole circuit once per shot with fresh state and
	// samples a single outcome from each run.
	ShotRerun
)

func (m ShotMode) String() string {
	switch m {
	case ShotFinal:
		return "final"
	case ShotRerun:
		return "rerun"
	}
	return fmt.Sprintf("ShotMode(%d)", int(m))
}

// ParseShotMode accepts "final" or "rerun"; the empty string is final.
func ParseShotMode(s string) (ShotMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "final":
		return ShotFinal, nil
	case "rerun":
		return ShotRerun, nil
	}
	return 0, fmt.Errorf("unknown shot mode %q (want final or rerun)", s)
}

// MeasurePolicy selects how a measured bit is written to the classical
// register.
type MeasurePolicy int

const (
	// MeasureOr ORs the outcome into the bit, so a bit once set stays set.
	MeasureOr MeasurePolicy = iota
	// MeasureOverwrite assigns the outcome to the bit.
	MeasureOverwrite
)

func (p MeasurePolicy) String() string {
	switch p {
	case MeasureOr:
		return "or"
	case MeasureOverwrite:
		return "overwrite"
	}
	return fmt.Sprintf("MeasurePolicy(%d)", int(p))
}

// ParseMeasurePolicy accepts "or" or "overwrite"; the empty string is or.
func ParseMeasurePolicy(s string) (MeasurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "or":
		return MeasureOr, nil
	case "overwrite":
		return MeasureOverwrite, nil
	}
	return 0, fmt.Errorf("unknown measure policy %q (want or or overwrite)", s)
}

// Config holds the parameters of one run. It is read once by Run and never
// modified.
type Config struct {
	Shots            int
	ErrorProbability float64
	Seed             uint64
	ShotMode         ShotMode
	MeasurePolicy    MeasurePolicy

	// Logger receives run and per-operation records. Nil discards them.
	Logger *log.Logger
}

// DefaultShots is used when Config.Shots is zero.
const DefaultShots = 1024

// Validate checks the run parameters.
func (c Config) Validate() error {
	if c.Shots < 0 {
		return fmt.Errorf("shots must not be negative, got %d", c.Shots)
	}
	if c.ErrorProbability < 0 || c.ErrorProbability > 1 || math.IsNaN(c.ErrorProbability) {
		return fmt.Errorf("error probability must be in [0,1], got %g", c.ErrorProbability)
	}
	if c.ShotMode != ShotFinal && c.ShotMode != ShotRerun {
		return fmt.Errorf("invalid shot mode %v", c.ShotMode)
	}
	if c.MeasurePolicy != MeasureOr && c.MeasurePolicy != MeasureOverwrite {
		return fmt.Errorf("invalid measure policy %v", c.MeasurePolicy)
	}
	return nil
}

func (c Config) shots() int {
	if c.Shots == 0 {
		return DefaultShots
	}
	return c.Shots
}
