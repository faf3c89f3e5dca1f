package tui

import (
	"fmt"
	"strconv"
	"strings"

	"qtermsim/internal/config"
	"qtermsim/internal/sim"
)

type formField int

const (
	fieldShots formField = iota
	fieldNoise
	fieldSeed
	fieldMode
	fieldPolicy
	numFields
)

var fieldLabels = [numFields]string{
	fieldShots:  "Shots",
	fieldNoise:  "Error p",
	fieldSeed:   "Seed (0 = clock)",
	fieldMode:   "Shot mode",
	fieldPolicy: "Measure policy",
}

// choice fields cycle through a fixed list instead of taking text.
var fieldChoices = map[formField][]string{
	fieldMode:   {sim.ShotFinal.String(), sim.ShotRerun.String()},
	fieldPolicy: {sim.MeasureOr.String(), sim.MeasureOverwrite.String()},
}

// runForm edits the run parameters in the popup.
type runForm struct {
	idx    formField
	values [numFields]string
	err    string
}

func newRunForm(cfg config.Config) runForm {
	var f runForm
	f.values[fieldShots] = strconv.Itoa(cfg.Shots)
	f.values[fieldNoise] = strconv.FormatFloat(cfg.ErrorProbability, 'g', -1, 64)
	f.values[fieldSeed] = strconv.FormatUint(cfg.Seed, 10)
	f.values[fieldMode] = cfg.ShotMode
	f.values[fieldPolicy] = cfg.MeasurePolicy
	return f
}

func (f *runForm) move(delta int) {
	f.idx = formField((int(f.idx) + delta + int(numFields)) % int(numFields))
}

// cycle steps a choice field; other fields ignore it.
func (f *runForm) cycle(delta int) {
	choices, ok := fieldChoices[f.idx]
	if !ok {
		return
	}
	cur := 0
	for i, c := range choices {
		if strings.EqualFold(c, f.values[f.idx]) {
			cur = i
		}
	}
	f.values[f.idx] = choices[(cur+delta+len(choices))%len(choices)]
}

func (f *runForm) typeKey(key string) {
	if _, ok := fieldChoices[f.idx]; ok {
		return
	}
	if key == "backspace" {
		if v := f.values[f.idx]; len(v) > 0 {
			f.values[f.idx] = v[:len(v)-1]
		}
		return
	}
	if len(key) == 1 && strings.ContainsAny(key, "0123456789.eE-+") {
		f.values[f.idx] += key
	}
}

// apply returns cfg with the form values, or an error naming the bad field.
func (f runForm) apply(cfg config.Config) (config.Config, error) {
	shots, err := strconv.Atoi(strings.TrimSpace(f.values[fieldShots]))
	if err != nil {
		return cfg, fmt.Errorf("shots: %w", err)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(f.values[fieldNoise]), 64)
	if err != nil {
		return cfg, fmt.Errorf("error p: %w", err)
	}
	seed, err := strconv.ParseUint(strings.TrimSpace(f.values[fieldSeed]), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("seed: %w", err)
	}

	out := cfg
	out.Shots = shots
	out.ErrorProbability = p
	out.Seed = seed
	out.ShotMode = f.values[fieldMode]
	out.MeasurePolicy = f.values[fieldPolicy]
	if err := out.Validate(); err != nil {
		return cfg, err
	}
	return out, nil
}

// renderRunForm renders the run-parameter popup.
func (m Model) renderRunForm() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Run Parameters"))
	sb.WriteString("\n\n")
	for i := range numFields {
		value := m.form.values[i]
		if _, ok := fieldChoices[i]; ok {
			value = "◂ " + value + " ▸"
		} else if i == m.form.idx {
			value += "_"
		}
		line := fmt.Sprintf("%-17s %s", fieldLabels[i], value)
		if i == m.form.idx {
			sb.WriteString(menuSelectedStyle.Render("▸ " + line))
		} else {
			sb.WriteString(menuNormalStyle.Render("  " + line))
		}
		sb.WriteString("\n")
	}
	if m.form.err != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.form.err))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Field  ←→ Choice  ⏎ Apply  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}
