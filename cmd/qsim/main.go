// Command qsim runs an OpenQASM 2.0 circuit on the state-vector simulator and
// prints the final amplitudes and the sampled outcome histogram.
//
//	qsim [flags] circuit.qasm
//	qsim -tui [circuit.qasm]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"math/cmplx"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"

	"qtermsim/internal/config"
	"qtermsim/internal/qasm"
	"qtermsim/internal/sim"
	"qtermsim/internal/tui"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	shots      int
	p          float64
	seed       uint64
	mode       string
	policy     string
	logLevel   string
	dump       bool
	check      bool
	tui        bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("qsim", flag.ContinueOnError)
	fset.SetOutput(stderr)
	var o options
	fset.StringVar(&o.configPath, "config", "", "YAML run configuration")
	fset.IntVar(&o.shots, "shots", sim.DefaultShots, "number of shots")
	fset.Float64Var(&o.p, "p", 0, "per-operation Pauli error probability")
	fset.Uint64Var(&o.seed, "seed", 0, "random seed (0 picks one from the clock)")
	fset.StringVar(&o.mode, "mode", "final", "shot mode: final or rerun")
	fset.StringVar(&o.policy, "measure", "or", "measure policy: or or overwrite")
	fset.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fset.BoolVar(&o.dump, "dump", false, "dump the parsed circuit")
	fset.BoolVar(&o.check, "check", false, "parse and validate only")
	fset.BoolVar(&o.tui, "tui", false, "open the interactive editor")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: qsim [flags] <circuit.qasm>")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	var path string
	switch {
	case fset.NArg() == 1:
		path = fset.Arg(0)
	case fset.NArg() == 0 && o.tui:
	default:
		fset.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(fset, o)
	if err != nil {
		fmt.Fprintf(stderr, "qsim: %v\n", err)
		return exitUsage
	}
	level, _ := cfg.Level()
	logger := log.NewWithOptions(stderr, log.Options{
		Level:           level,
		Prefix:          "qsim",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	if o.tui {
		return runTUI(path, cfg, o.configPath, stderr)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "qsim: %v\n", err)
		return exitError
	}
	c, err := qasm.Parse(string(src))
	if err != nil {
		fmt.Fprintf(stderr, "qsim: %s: %v\n", path, err)
		return exitError
	}
	if o.dump {
		spew.Fdump(stdout, c)
	}
	if err := sim.Validate(c); err != nil {
		fmt.Fprintf(stderr, "qsim: %s: %v\n", path, err)
		return exitError
	}
	if o.check {
		fmt.Fprintf(stdout, "%s: ok, %d qubits, %d classical bits, %d operations, depth %d\n",
			path, c.NumQubits(), c.NumCbits(), len(c.Ops), qasm.BuildDAG(c).Depth())
		return exitOK
	}

	seed := cfg.ResolveSeed(time.Now())
	sc, err := cfg.Sim(logger)
	if err != nil {
		fmt.Fprintf(stderr, "qsim: %v\n", err)
		return exitUsage
	}
	res, err := sim.Run(c, sc)
	if err != nil {
		fmt.Fprintf(stderr, "qsim: %s: %v\n", path, err)
		return exitError
	}
	printResult(stdout, c, res, seed)
	return exitOK
}

// loadConfig layers explicitly set flags over the config file (or the
// defaults when there is none).
func loadConfig(fset *flag.FlagSet, o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shots":
			cfg.Shots = o.shots
		case "p":
			cfg.ErrorProbability = o.p
		case "seed":
			cfg.Seed = o.seed
		case "mode":
			cfg.ShotMode = o.mode
		case "measure":
			cfg.MeasurePolicy = o.policy
		case "log-level":
			cfg.LogLevel = o.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runTUI(path string, cfg config.Config, cfgPath string, stderr io.Writer) int {
	var src string
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			src = string(data)
		case errors.Is(err, fs.ErrNotExist):
			// a new file, created on first save
		default:
			fmt.Fprintf(stderr, "qsim: %v\n", err)
			return exitError
		}
	}

	m := tui.New(tui.Options{Path: path, Source: src, Config: cfg, ConfigPath: cfgPath})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(stderr, "qsim: %v\n", err)
		return exitError
	}
	return exitOK
}

func printResult(w io.Writer, c *qasm.Circuit, res *sim.Result, seed uint64) {
	fmt.Fprintf(w, "run %s  qubits %d  depth %d  shots %d  seed %d  mode %s  (%s)\n",
		res.RunID, res.NumQubits, qasm.BuildDAG(c).Depth(), res.Shots, seed, res.Mode, res.Elapsed.Round(time.Microsecond))

	fmt.Fprintln(w, "\namplitudes (qubit 0 rightmost):")
	for i, a := range res.Amplitudes {
		if cmplx.Abs(a) < 1e-9 {
			continue
		}
		p := real(a * cmplx.Conj(a))
		fmt.Fprintf(w, "  |%0*b⟩  %+.6f %+.6fi  p=%.6f\n", res.NumQubits, i, real(a), imag(a), p)
	}

	keys := make([]string, 0, len(res.Counts))
	for k := range res.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "\ncounts:")
	for _, k := range keys {
		n := res.Counts[k]
		fmt.Fprintf(w, "  %s  %*d  %.4f\n", k, len(fmt.Sprint(res.Shots)), n, float64(n)/float64(res.Shots))
	}

	if c.NumCbits() > 0 {
		fmt.Fprintf(w, "\ncreg %s = %s\n", c.CReg.Name, res.Register)
	}
}
