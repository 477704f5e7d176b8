package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
)

// Field indices for the add-target form.
const (
	fieldName = iota
	fieldInstanceID
	fieldProfile
	fieldRegion
	fieldPort
	fieldUser
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name",
	"Instance ID",
	"Profile (optional)",
	"Region (optional)",
	"Port (optional, default 22)",
	"SSH user (optional)",
}

// RunAddTargetForm shows the add-target form and blocks until submitted or
// cancelled. ok is false on cancel.
func RunAddTargetForm() (model.Target, bool, error) {
	out, err := tea.NewProgram(newFormModel()).Run()
	if err != nil {
		return model.Target{}, false, err
	}
	final, _ := out.(formModel)
	return final.result, final.done, nil
}

type formModel struct {
	inputs [fieldCount]textinput.Model
	focus  int
	errMsg string

	result model.Target
	done   bool
}

func newFormModel() formModel {
	var m formModel
	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.CharLimit = 64
		ti.Prompt = "> "
		m.inputs[i] = ti
	}
	m.inputs[fieldName].Placeholder = "dev-box"
	m.inputs[fieldInstanceID].Placeholder = "i-0123456789abcdef0"
	m.inputs[fieldName].Focus()
	return m
}

func (m formModel) Init() tea.Cmd { return textinput.Blink }

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.focus < fieldCount-1 {
				return m.setFocus(m.focus + 1)
			}
			target, err := buildTarget(m.values())
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.result = target
			m.done = true
			return m, tea.Quit
		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m formModel) setFocus(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

func (m formModel) values() [fieldCount]string {
	var out [fieldCount]string
	for i := range m.inputs {
		out[i] = m.inputs[i].Value()
	}
	return out
}

func (m formModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add target"))
	b.WriteString("\n\n")
	for i := 0; i < fieldCount; i++ {
		b.WriteString(fieldLabels[i])
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: next/submit  tab: move  esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// buildTarget validates raw form values and assembles a Target. Kept pure so
// validation is testable without driving the TUI.
func buildTarget(v [fieldCount]string) (model.Target, error) {
	name := strings.TrimSpace(v[fieldName])
	if name == "" {
		return model.Target{}, fmt.Errorf("name is required")
	}
	if strings.ContainsAny(name, " \t*?!") {
		return model.Target{}, fmt.Errorf("name cannot contain spaces or wildcard characters")
	}
	id := strings.TrimSpace(v[fieldInstanceID])
	if !util.IsInstanceID(id) {
		return model.Target{}, fmt.Errorf("instance ID must look like i-0123456789abcdef0")
	}
	port := 0
	if p := strings.TrimSpace(v[fieldPort]); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return model.Target{}, fmt.Errorf("port must be a number")
		}
		if err := util.ValidatePort(n); err != nil {
			return model.Target{}, err
		}
		port = n
	}
	return model.Target{
		Name:       name,
		InstanceID: id,
		Profile:    strings.TrimSpace(v[fieldProfile]),
		Region:     strings.TrimSpace(v[fieldRegion]),
		Port:       port,
		User:       strings.TrimSpace(v[fieldUser]),
	}, nil
}
