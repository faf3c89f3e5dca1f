package tui

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qtermsim/internal/sim"
)

// amplitudes below this magnitude are hidden from the results panel
const ampEpsilon = 1e-9

// ──────────────────────────── Formatting helpers ────────────────────────────

func shortID(res *sim.Result) string {
	return res.RunID.String()[:8]
}

// formatAmplitude renders a complex amplitude with fixed precision.
func formatAmplitude(a complex128) string {
	return fmt.Sprintf("%+.4f %+.4fi", real(a), imag(a))
}

// amplitudeLines lists the basis states with non-negligible amplitude, in
// display order.
func amplitudeLines(res *sim.Result) []string {
	var lines []string
	for i, a := range res.Amplitudes {
		mag := cmplx.Abs(a)
		if mag < ampEpsilon {
			continue
		}
		label := fmt.Sprintf("|%0*b⟩", res.NumQubits, i)
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			basisStyle.Render(fmt.Sprintf("%-*s", labelW, label)),
			formatAmplitude(a),
			dimStyle.Render(fmt.Sprintf("p=%.4f", mag*mag))))
	}
	return lines
}

// histogramLines renders one bar per outcome, sorted by bit string. The
// longest bar is barW cells.
func histogramLines(counts map[string]int, barW int) []string {
	keys := make([]string, 0, len(counts))
	peak := 0
	for k, n := range counts {
		keys = append(keys, k)
		peak = max(peak, n)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		n := counts[k]
		w := 0
		if peak > 0 {
			w = n * barW / peak
		}
		if w == 0 && n > 0 {
			w = 1
		}
		lines = append(lines, fmt.Sprintf("%s %s %d",
			basisStyle.Render(fmt.Sprintf("%-*s", labelW, "|"+k+"⟩")),
			barStyle.Render(strings.Repeat("█", w)),
			n))
	}
	return lines
}

func marginalLines(res *sim.Result) []string {
	lines := make([]string, len(res.Qubits))
	for q, p := range res.Qubits {
		lines[q] = fmt.Sprintf("q[%d]  P(0)=%.4f  P(1)=%.4f", q, p.Prob0, p.Prob1)
	}
	return lines
}

// resultLines is the scrollable body of the results panel.
func (m Model) resultLines(width int) []string {
	res := m.result
	var lines []string

	lines = append(lines, fmt.Sprintf("run %s  depth %d  shots %d  p=%g  seed %d  %s",
		shortID(res), m.depth, res.Shots, m.cfg.ErrorProbability, m.seed, res.Mode))
	if res.Register != nil && res.Register.Size() > 0 {
		lines = append(lines, fmt.Sprintf("creg = %s (%d)", res.Register, res.Register.Value()))
	}

	lines = append(lines, "", titleStyle.Render("Amplitudes"))
	lines = append(lines, amplitudeLines(res)...)

	lines = append(lines, "", titleStyle.Render("Qubits"))
	lines = append(lines, marginalLines(res)...)

	barW := min(maxBarW, max(width-labelW-10, 4))
	lines = append(lines, "", titleStyle.Render("Histogram"))
	lines = append(lines, histogramLines(res.Counts, barW)...)
	return lines
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderEditorPanel renders the QASM editor panel.
func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM · " + m.path
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())

	return editorStyle.Width(width).Height(height).Render(sb.String())
}

// renderResultsPanel renders amplitudes, marginals and the histogram of the
// last run.
func (m Model) renderResultsPanel(width, height int) string {
	var sb strings.Builder

	title := "Results"
	if m.focus == focusResults {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	switch {
	case m.running:
		sb.WriteString(dimStyle.Render("Running…"))
	case m.runErr != nil:
		sb.WriteString(errorStyle.Width(max(width-4, 10)).Render(m.runErr.Error()))
	case m.result == nil:
		sb.WriteString(dimStyle.Render("Press ctrl+r to run the circuit."))
	default:
		lines := m.resultLines(width)
		visible := max(height-3, 1)
		start := min(m.scroll, max(len(lines)-visible, 0))
		end := min(start+visible, len(lines))
		sb.WriteString(strings.Join(lines[start:end], "\n"))
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(keyStyle.Render("Editor:  "))
	sb.WriteString("Tab Focus results  ^G Insert gate  ^O Run params  ^L Format\n")

	sb.WriteString(keyStyle.Render("Actions: "))
	sb.WriteString("^R Run  ^S Save  ↑↓ Scroll results  q/^C Quit")
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", keyStyle.Render(m.statusMsg))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	editorWidth := max(m.width/2, minEditorW+4)
	resultsWidth := max(m.width-editorWidth-4, 20)
	panelHeight := max(m.height-controlsH-4, 6)

	editorPanel := m.renderEditorPanel(editorWidth, panelHeight)
	resultsPanel := m.renderResultsPanel(resultsWidth, panelHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsH-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, resultsPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusRunForm:
		frame = overlayAt(frame, m.renderRunForm(), 4, 3)
	}

	return frame
}
