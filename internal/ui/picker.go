// Package ui provides the interactive target picker and the add-target form.
//
// Neither screen runs during a ProxyCommand invocation — there stdout is the
// SSH byte stream and no UI may exist. The picker backs `ssm-connect
// targets`, the form backs `ssm-connect targets add`.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfreitag/ssm-connect/internal/history"
	"github.com/mfreitag/ssm-connect/internal/model"
	"github.com/mfreitag/ssm-connect/internal/util"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

// RunPicker shows the target list and blocks until the user selects a target
// or dismisses the screen. ok is false on dismissal.
func RunPicker(targets []model.Target, lastUsed map[string]int64) (model.Target, bool, error) {
	m := newPickerModel(targets, lastUsed)
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return model.Target{}, false, err
	}
	final, _ := out.(pickerModel)
	return final.choice, final.chosen, nil
}

type pickerModel struct {
	targets  []model.Target
	filtered []model.Target
	lastUsed map[string]int64

	sel        int
	filter     textinput.Model
	filterMode bool
	width      int

	choice model.Target
	chosen bool
}

func newPickerModel(targets []model.Target, lastUsed map[string]int64) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "filter targets"
	ti.CharLimit = 64
	m := pickerModel{
		targets:  history.SortTargetsRecent(targets, lastUsed),
		lastUsed: lastUsed,
		filter:   ti,
	}
	m.filtered = filterTargets(m.targets, "")
	return m
}

// filterTargets matches the filter string against name and instance ID,
// case-insensitive. Empty filter returns a copy of all targets.
func filterTargets(targets []model.Target, filter string) []model.Target {
	f := strings.ToLower(strings.TrimSpace(filter))
	if f == "" {
		return append([]model.Target(nil), targets...)
	}
	var out []model.Target
	for _, t := range targets {
		if strings.Contains(strings.ToLower(t.DisplayName()), f) ||
			strings.Contains(strings.ToLower(t.InstanceID), f) {
			out = append(out, t)
		}
	}
	return out
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.filterMode {
			switch msg.String() {
			case "enter", "esc":
				m.filterMode = false
				m.filter.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.filtered = filterTargets(m.targets, m.filter.Value())
				m.clampSel()
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.sel > 0 {
				m.sel--
			}
			return m, nil
		case "down", "j":
			if m.sel < len(m.filtered)-1 {
				m.sel++
			}
			return m, nil
		case "/":
			m.filterMode = true
			return m, m.filter.Focus()
		case "enter":
			if m.sel >= 0 && m.sel < len(m.filtered) {
				m.choice = m.filtered[m.sel]
				m.chosen = true
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *pickerModel) clampSel() {
	if m.sel >= len(m.filtered) {
		m.sel = len(m.filtered) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ssm-connect targets"))
	b.WriteString("\n\n")

	if m.filterMode || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("no targets — add one with `ssm-connect targets add`"))
		b.WriteString("\n")
	}

	header := fmt.Sprintf("%-20s %-22s %-12s %-14s %s", "NAME", "INSTANCE", "PROFILE", "REGION", "LAST USED")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	for i, t := range m.filtered {
		row := fmt.Sprintf("%-20s %-22s %-12s %-14s %s",
			t.DisplayName(),
			t.InstanceID,
			util.EmptyDash(t.Profile),
			util.EmptyDash(t.Region),
			humanizeLastUsed(m.lastUsed[t.DisplayName()], time.Now()),
		)
		if i == m.sel {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: shell  /: filter  q: quit"))
	b.WriteString("\n")
	return b.String()
}

// humanizeLastUsed renders a unix timestamp as a rough age. Zero means the
// target has never been connected to.
func humanizeLastUsed(ts int64, now time.Time) string {
	if ts <= 0 {
		return "never"
	}
	d := now.Sub(time.Unix(ts, 0))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
