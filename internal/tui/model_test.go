package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/internal/config"
	"qtermsim/internal/simerr"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// send feeds msg to m and resolves any resulting command chain until it
// yields no further model messages.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range collect(cmd) {
		if done, ok := out.(runFinishedMsg); ok {
			m = send(t, m, done)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func newTestModel(t *testing.T, src string) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	cfg.Shots = 200
	m := New(Options{Source: src, Config: cfg, Path: filepath.Join(t.TempDir(), "c.qasm")})
	return send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Loading...", New(Options{}).View())
}

func TestInitialView(t *testing.T) {
	m := newTestModel(t, "")
	view := m.View()
	assert.Contains(t, view, "QASM")
	assert.Contains(t, view, "Results")
	assert.Contains(t, view, "Press ctrl+r")
	assert.Contains(t, m.editor.Value(), "cx q[0], q[1];")
}

func TestRunBellCircuit(t *testing.T) {
	m := newTestModel(t, "qreg q[2];\nh q[0];\ncx q[0], q[1];")
	m = send(t, m, key(tea.KeyCtrlR))

	require.NoError(t, m.Err())
	res := m.Result()
	require.NotNil(t, res)
	assert.Equal(t, 200, res.Counts["00"]+res.Counts["11"])
	assert.False(t, m.running)
	assert.Equal(t, uint64(1), m.seed)
	assert.Equal(t, 2, m.depth)

	view := m.View()
	assert.Contains(t, view, "Histogram")
	assert.Contains(t, view, "|00⟩")
	assert.Contains(t, view, "|11⟩")
	assert.NotContains(t, view, "|01⟩")
}

func TestRunErrorsAreShown(t *testing.T) {
	m := newTestModel(t, "qreg q[1];\nfoo q[0];")
	m = send(t, m, key(tea.KeyCtrlR))

	var gateErr *simerr.UnknownGateError
	require.True(t, errors.As(m.Err(), &gateErr))
	assert.Nil(t, m.Result())
	assert.Contains(t, m.View(), "unknown gate")

	m.editor.SetValue("qreg q[1];\nh q[3];")
	m = send(t, m, key(tea.KeyCtrlR))
	var dimErr *simerr.DimensionError
	assert.True(t, errors.As(m.Err(), &dimErr))
}

func TestGateMenuInsertsSnippet(t *testing.T) {
	m := newTestModel(t, "qreg r[3];")
	m = send(t, m, key(tea.KeyCtrlG))
	require.Equal(t, focusMenu, m.focus)
	assert.Contains(t, m.View(), "Insert Gate")

	// Multi Qubit tab, first entry is CX
	m = send(t, m, key(tea.KeyRight))
	m = send(t, m, key(tea.KeyRight))
	m = send(t, m, key(tea.KeyEnter))

	assert.Equal(t, focusEditor, m.focus)
	assert.Contains(t, m.editor.Value(), "cx r[0], r[1];")
}

func TestMenuCoversGateLibrary(t *testing.T) {
	menu := buildMenu("q", "c")
	var snippets []string
	for _, cat := range menu {
		for _, item := range cat.items {
			assert.NotEmpty(t, item.name)
			snippets = append(snippets, item.snippet)
		}
	}
	joined := strings.Join(snippets, "\n")
	for _, want := range []string{"h q[0];", "rx(pi/2) q[0];", "u3(pi/2, 0, pi/4) q[0];", "ccx q[0], q[1], q[2];", "measure q -> c;"} {
		assert.Contains(t, joined, want)
	}
}

func TestRunForm(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, key(tea.KeyCtrlO))
	require.Equal(t, focusRunForm, m.focus)
	assert.Contains(t, m.View(), "Run Parameters")

	for range 2 {
		m = send(t, m, key(tea.KeyBackspace))
	}
	m = send(t, m, runes("5"))
	m = send(t, m, runes("0"))
	assert.Equal(t, "250", m.form.values[fieldShots])

	m = send(t, m, key(tea.KeyDown))
	m = send(t, m, key(tea.KeyDown))
	m = send(t, m, key(tea.KeyDown))
	m = send(t, m, key(tea.KeyRight))
	assert.Equal(t, "rerun", m.form.values[fieldMode])

	m = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, focusEditor, m.focus)
	assert.Equal(t, 250, m.cfg.Shots)
	assert.Equal(t, "rerun", m.cfg.ShotMode)
}

func TestRunFormRejectsBadValues(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, key(tea.KeyCtrlO))
	m = send(t, m, key(tea.KeyDown))
	m = send(t, m, key(tea.KeyBackspace))
	m = send(t, m, runes("2"))
	m = send(t, m, key(tea.KeyEnter))

	assert.Equal(t, focusRunForm, m.focus)
	assert.NotEmpty(t, m.form.err)
	assert.Zero(t, m.cfg.ErrorProbability)

	m = send(t, m, key(tea.KeyEsc))
	assert.Equal(t, focusEditor, m.focus)
}

func TestRunFormSavesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qsim.yaml")
	m := New(Options{Config: config.Default(), ConfigPath: path})
	m = send(t, m, key(tea.KeyCtrlO))
	m = send(t, m, key(tea.KeyEnter))

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), saved)
}

func TestSaveAndFormat(t *testing.T) {
	m := newTestModel(t, "qreg q[1];\nrx(pi/2) q[0];")

	m = send(t, m, key(tea.KeyCtrlS))
	data, err := os.ReadFile(m.path)
	require.NoError(t, err)
	assert.Equal(t, m.editor.Value(), string(data))
	assert.Contains(t, m.statusMsg, "Saved")

	m = send(t, m, key(tea.KeyCtrlL))
	assert.True(t, strings.HasPrefix(m.editor.Value(), "OPENQASM 2.0;"))
	assert.Contains(t, m.editor.Value(), "rx(pi/2) q[0];")
}

func TestFocusSwitching(t *testing.T) {
	m := newTestModel(t, "")
	m = send(t, m, key(tea.KeyTab))
	assert.Equal(t, focusResults, m.focus)
	assert.False(t, m.editor.Focused())

	m = send(t, m, runes("p"))
	assert.Equal(t, focusRunForm, m.focus)
	m = send(t, m, key(tea.KeyEsc))
	assert.Equal(t, focusResults, m.focus)

	m = send(t, m, key(tea.KeyTab))
	assert.Equal(t, focusEditor, m.focus)
	assert.True(t, m.editor.Focused())

	_, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHistogramLines(t *testing.T) {
	lines := histogramLines(map[string]int{"11": 100, "00": 50}, 10)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "|00⟩")
	assert.Equal(t, 5, strings.Count(lines[0], "█"))
	assert.Equal(t, 10, strings.Count(lines[1], "█"))
	assert.True(t, strings.HasSuffix(lines[1], " 100"))
}

func TestFormatAmplitude(t *testing.T) {
	assert.Equal(t, "+0.7071 -0.5000i", formatAmplitude(complex(0.70710678, -0.5)))
}

func TestSpliceLineAt(t *testing.T) {
	assert.Equal(t, "abXYef", spliceLineAt("abcdef", "XY", 2))
	assert.Equal(t, "ab  XY", spliceLineAt("ab", "XY", 4))
	assert.Equal(t, "a\nXY\nc", overlayAt("a\nb\nc", "XY", 0, 1))
	assert.Equal(t, "a", overlayAt("a", "XY", 0, 3))
}
