package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gcraig/odpi/memdriver"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	nativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type typeEntry struct {
	name      string
	id        oratypes.TypeID
	native    oratypes.NativeType
	needsSize bool
}

type modelState int

const (
	stateSelectType modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	types    []typeEntry
	inputs   []textinput.Model
	result   string
	selected int
	focusIdx int
	state    modelState
}

type probeResultMsg struct {
	err    error
	result string
}

func newInteractiveModel() *interactiveModel {
	var types []typeEntry
	for name, id := range typesByName {
		typ, err := oratypes.Lookup(id)
		if err != nil {
			continue
		}
		types = append(types, typeEntry{
			name:      name,
			id:        id,
			native:    typ.DefaultNative,
			needsSize: typ.WireSize == 0,
		})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].name < types[j].name })
	return &interactiveModel{types: types, state: stateSelectType}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				m.prepareInputs()
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.runProbe

			case stateShowResult:
				m.state = stateSelectType
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectType
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectType
				m.result = ""
				m.err = nil
			}
		}

	case probeResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	entry := m.types[m.selected]

	elems := textinput.New()
	elems.Prompt = "elements: "
	elems.Placeholder = "4"
	elems.Width = 40
	elems.Focus()
	m.inputs = []textinput.Model{elems}

	if entry.needsSize {
		size := textinput.New()
		size.Prompt = "size (bytes): "
		size.Placeholder = "64"
		size.Width = 40
		m.inputs = append(m.inputs, size)
	}

	values := textinput.New()
	values.Prompt = "values: "
	values.Placeholder = "a,b,null,c"
	values.Width = 40
	m.inputs = append(m.inputs, values)
	m.focusIdx = 0
}

func (m *interactiveModel) runProbe() tea.Msg {
	entry := m.types[m.selected]

	elems := uint32(4)
	if v := strings.TrimSpace(m.inputs[0].Value()); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return probeResultMsg{err: fmt.Errorf("elements: %w", err)}
		}
		elems = uint32(n)
	}

	size := uint32(64)
	valuesIdx := 1
	if entry.needsSize {
		if v := strings.TrimSpace(m.inputs[1].Value()); v != "" {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return probeResultMsg{err: fmt.Errorf("size: %w", err)}
			}
			size = uint32(n)
		}
		valuesIdx = 2
	}

	conn := memdriver.NewConn()
	v, _, err := variable.New(conn, entry.id, oratypes.NativeNone, elems,
		size, true, false, nil)
	if err != nil {
		return probeResultMsg{err: err}
	}
	defer v.Release()

	if raw := strings.TrimSpace(m.inputs[valuesIdx].Value()); raw != "" {
		for i, value := range strings.Split(raw, ",") {
			if uint32(i) >= v.MaxArraySize() {
				break
			}
			if err := writeOne(v, uint32(i), value); err != nil {
				return probeResultMsg{err: fmt.Errorf("element %d: %w", i, err)}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s as %s, %d x %d bytes, dynamic=%v\n\n",
		v.OracleType(), v.NativeType(), v.MaxArraySize(), v.SizeInBytes(),
		v.IsDynamic())
	for pos := uint32(0); pos < v.MaxArraySize(); pos++ {
		d, err := v.ReadValue(pos)
		if err != nil {
			return probeResultMsg{err: fmt.Errorf("read element %d: %w", pos, err)}
		}
		fmt.Fprintf(&b, "[%d] %s\n", pos, formatValue(v.NativeType(), d))
	}
	return probeResultMsg{result: b.String()}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Variable Probe"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type to probe:\n\n")
		for i, entry := range m.types {
			line := typeNameStyle.Render(entry.name) + " -> " +
				nativeStyle.Render(entry.native.String())
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + entry.name))
				b.WriteString(" -> " + nativeStyle.Render(entry.native.String()))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter configure • q quit"))

	case stateInputArgs:
		entry := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Probing %s\n\n", typeNameStyle.Render(entry.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))

	case stateShowResult:
		entry := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Result for %s:\n\n", typeNameStyle.Render(entry.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
