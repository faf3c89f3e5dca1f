package tui

import (
	"fmt"
	"strings"

	"qtermsim/internal/gates"
)

// menuItem is one insertable statement in the gate picker.
type menuItem struct {
	name    string
	snippet string // statement inserted at the editor cursor
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

var gateNames = map[gates.Kind]string{
	gates.I:    "Identity",
	gates.X:    "Pauli-X (NOT)",
	gates.Y:    "Pauli-Y",
	gates.Z:    "Pauli-Z",
	gates.H:    "Hadamard",
	gates.S:    "Phase (S)",
	gates.SDG:  "Phase Dagger (S†)",
	gates.T:    "T Gate",
	gates.TDG:  "T Dagger (T†)",
	gates.RX:   "Rotate X",
	gates.RY:   "Rotate Y",
	gates.RZ:   "Rotate Z",
	gates.U:    "Universal U3",
	gates.U2:   "Universal U2",
	gates.U1:   "Phase Shift U1",
	gates.CX:   "CNOT",
	gates.CY:   "Controlled-Y",
	gates.CZ:   "Controlled-Z",
	gates.CH:   "Controlled-H",
	gates.SWAP: "SWAP",
	gates.CCX:  "Toffoli (CCX)",
}

var exampleParams = []string{"pi/2", "0", "pi/4"}

// gateSnippet renders a ready-to-edit invocation of k on the first qubits of
// register reg.
func gateSnippet(k gates.Kind, reg string) string {
	var sb strings.Builder
	sb.WriteString(k.String())
	if n := k.NumParams(); n > 0 {
		fmt.Fprintf(&sb, "(%s)", strings.Join(exampleParams[:n], ", "))
	}
	qubits := make([]string, k.Arity())
	for i := range qubits {
		qubits[i] = fmt.Sprintf("%s[%d]", reg, i)
	}
	fmt.Fprintf(&sb, " %s;", strings.Join(qubits, ", "))
	return sb.String()
}

// buildMenu lays out the gate library as picker tabs.
func buildMenu(qreg, creg string) []menuCategory {
	single := menuCategory{name: "Single Qubit"}
	rotation := menuCategory{name: "Rotation"}
	multi := menuCategory{name: "Multi Qubit"}

	for _, k := range gates.Kinds() {
		item := menuItem{name: gateNames[k], snippet: gateSnippet(k, qreg)}
		switch {
		case k.Arity() > 1:
			multi.items = append(multi.items, item)
		case k.Parametrized():
			rotation.items = append(rotation.items, item)
		default:
			single.items = append(single.items, item)
		}
	}

	special := menuCategory{
		name: "Special",
		items: []menuItem{
			{name: "Measure", snippet: fmt.Sprintf("measure %s[0] -> %s[0];", qreg, creg)},
			{name: "Measure All", snippet: fmt.Sprintf("measure %s -> %s;", qreg, creg)},
			{name: "Reset", snippet: fmt.Sprintf("reset %s[0];", qreg)},
			{name: "Barrier", snippet: fmt.Sprintf("barrier %s;", qreg)},
			{name: "Conditional X", snippet: fmt.Sprintf("if (%s==1) x %s[0];", creg, qreg)},
		},
	}
	return []menuCategory{single, rotation, multi, special}
}

// renderMenu renders the floating gate-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Insert Gate"))
	sb.WriteString("\n")

	for i, cat := range m.menu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(keyStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(m.menu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 48)))
	sb.WriteString("\n")

	for i, item := range m.menu[m.menuCat].items {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(barStyle.Render(item.snippet))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.snippet))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Insert  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
