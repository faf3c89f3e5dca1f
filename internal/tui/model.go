// Package tui is an interactive editor for circuits: a QASM text area on the
// left, the last run's amplitudes and histogram on the right.
package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"qtermsim/internal/config"
	"qtermsim/internal/qasm"
	"qtermsim/internal/sim"
)

// focus represents which panel/popup has keyboard input.
type focus int

const (
	focusEditor focus = iota
	focusResults
	focusMenu
	focusRunForm
)

// DefaultPath is where ctrl+s writes when no file was opened.
const DefaultPath = "circuit.qasm"

const starterCircuit = `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

h q[0];
cx q[0], q[1];
measure q -> c;
`

// Options configures a new Model.
type Options struct {
	Path   string // circuit file, written by ctrl+s
	Source string // initial editor text; empty loads a starter circuit
	Config config.Config
	// ConfigPath, when set, receives the run parameters confirmed in the popup.
	ConfigPath string
	Logger     *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	editor    textarea.Model
	width     int
	height    int
	focus     focus
	prevFocus focus
	statusMsg string // transient status message (e.g. save confirmation)

	path    string
	cfg     config.Config
	cfgPath string
	logger  *log.Logger

	result  *sim.Result
	seed    uint64 // seed of the last run
	depth   int    // circuit depth of the last run
	runErr  error
	running bool
	scroll  int

	// Menu state
	menu     []menuCategory
	menuCat  int
	menuItem int

	form runForm
}

// runFinishedMsg carries the outcome of a background run.
type runFinishedMsg struct {
	result *sim.Result
	seed   uint64
	depth  int
	err    error
}

// New builds the initial model with the editor focused.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(minEditorW)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	src := opts.Source
	if src == "" {
		src = starterCircuit
	}
	ta.SetValue(src)
	ta.Focus()

	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return Model{
		editor:  ta,
		focus:   focusEditor,
		path:    path,
		cfg:     opts.Config,
		cfgPath: opts.ConfigPath,
		logger:  logger,
	}
}

// Result is the last successful run, if any.
func (m Model) Result() *sim.Result { return m.result }

// Err is the error of the last run, if any.
func (m Model) Err() error { return m.runErr }

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// runCmd parses and executes src off the UI goroutine.
func runCmd(src string, cfg config.Config, logger *log.Logger) tea.Cmd {
	return func() tea.Msg {
		c, err := qasm.Parse(src)
		if err != nil {
			return runFinishedMsg{err: err}
		}
		if err := sim.Validate(c); err != nil {
			return runFinishedMsg{err: err}
		}
		seed := cfg.ResolveSeed(time.Now())
		sc, err := cfg.Sim(logger)
		if err != nil {
			return runFinishedMsg{err: err}
		}
		res, err := sim.Run(c, sc)
		return runFinishedMsg{result: res, seed: seed, depth: qasm.BuildDAG(c).Depth(), err: err}
	}
}

func (m *Model) startRun() tea.Cmd {
	if m.running {
		return nil
	}
	m.running = true
	m.statusMsg = "Running…"
	return runCmd(m.editor.Value(), m.cfg, m.logger)
}

func (m *Model) save() {
	if err := os.WriteFile(m.path, []byte(m.editor.Value()), 0o644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.path
}

// tidy replaces the editor text with its canonical formatting.
func (m *Model) tidy() {
	c, err := qasm.Parse(m.editor.Value())
	if err != nil {
		m.statusMsg = fmt.Sprintf("Cannot format: %v", err)
		return
	}
	m.editor.SetValue(qasm.Format(c))
	m.statusMsg = "Formatted"
}

func (m *Model) openMenu() {
	qreg, creg := "q", "c"
	if c, err := qasm.Parse(m.editor.Value()); err == nil {
		qreg = c.QReg.Name
		if c.CReg.Name != "" {
			creg = c.CReg.Name
		}
	}
	m.menu = buildMenu(qreg, creg)
	m.menuCat, m.menuItem = 0, 0
	m.prevFocus = m.focus
	m.focus = focusMenu
	m.editor.Blur()
}

func (m *Model) openRunForm() {
	m.form = newRunForm(m.cfg)
	m.prevFocus = m.focus
	m.focus = focusRunForm
	m.editor.Blur()
}

func (m *Model) closePopup() {
	m.focus = m.prevFocus
	if m.focus == focusEditor {
		m.editor.Focus()
	}
}

// ──────────────────────────── Update ────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/2-6, minEditorW))
		m.editor.SetHeight(max(msg.Height-controlsH-8, 4))

	case runFinishedMsg:
		m.running = false
		m.runErr = msg.err
		m.scroll = 0
		if msg.err != nil {
			m.statusMsg = "Run failed"
			break
		}
		m.result, m.seed, m.depth = msg.result, msg.seed, msg.depth
		m.statusMsg = fmt.Sprintf("Run %s done in %s", shortID(msg.result), msg.result.Elapsed.Round(time.Microsecond))

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusEditor:
			switch key {
			case "tab":
				m.focus = focusResults
				m.editor.Blur()
			case "ctrl+r":
				cmds = append(cmds, m.startRun())
			case "ctrl+s":
				m.save()
			case "ctrl+g":
				m.openMenu()
			case "ctrl+o":
				m.openRunForm()
			case "ctrl+l":
				m.tidy()
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusResults:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusEditor
				m.editor.Focus()
			case "ctrl+r", "r":
				cmds = append(cmds, m.startRun())
			case "ctrl+s":
				m.save()
			case "a", "ctrl+g":
				m.openMenu()
			case "p", "ctrl+o":
				m.openRunForm()
			case "up", "k":
				if m.scroll > 0 {
					m.scroll--
				}
			case "down", "j":
				m.scroll++
			}

		case focusMenu:
			switch key {
			case "esc":
				m.closePopup()
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(m.menu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(m.menu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := m.menu[m.menuCat].items[m.menuItem]
				m.editor.InsertString(item.snippet + "\n")
				m.focus = focusEditor
				m.editor.Focus()
				m.statusMsg = "Inserted " + item.name
			}

		case focusRunForm:
			switch key {
			case "esc":
				m.closePopup()
			case "up", "shift+tab":
				m.form.move(-1)
			case "down", "tab":
				m.form.move(1)
			case "left":
				m.form.cycle(-1)
			case "right", " ":
				m.form.cycle(1)
			case "enter":
				cfg, err := m.form.apply(m.cfg)
				if err != nil {
					m.form.err = err.Error()
					break
				}
				m.cfg = cfg
				m.statusMsg = "Run parameters updated"
				if m.cfgPath != "" {
					if err := config.Save(m.cfgPath, cfg); err != nil {
						m.statusMsg = fmt.Sprintf("Config save error: %v", err)
					} else {
						m.statusMsg = "Saved " + m.cfgPath
					}
				}
				m.closePopup()
			default:
				m.form.typeKey(key)
			}
		}
	}

	return m, tea.Batch(cmds...)
}
