package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/aayushbajaj/step-telemetry/internal/session"
)

const maxSuggestions = 3

const (
	focusName = iota
	focusMinutes
)

type formKeyMap struct {
	Next   key.Binding
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Down, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Up, k.Quit}}
}

func defaultFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "previous suggestion")),
		Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("up/down", "pick suggestion")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "log")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// activityForm collects a name and a duration for LogActivity.
type activityForm struct {
	name    textinput.Model
	minutes textinput.Model
	focus   int

	names       []string
	suggestions []string
	selected    int

	err string
}

func newActivityForm(names []string) *activityForm {
	name := textinput.New()
	name.Prompt = "Name:    "
	name.Placeholder = "Walking"
	name.CharLimit = 64
	name.Focus()

	minutes := textinput.New()
	minutes.Prompt = "Minutes: "
	minutes.Placeholder = "30"
	minutes.CharLimit = 5

	f := &activityForm{name: name, minutes: minutes, names: names, selected: -1}
	f.updateSuggestions()
	return f
}

func (f *activityForm) toggleFocus() {
	if f.focus == focusName {
		f.focus = focusMinutes
		f.name.Blur()
		f.minutes.Focus()
		return
	}
	f.focus = focusName
	f.minutes.Blur()
	f.name.Focus()
}

func (f *activityForm) updateSuggestions() {
	f.suggestions = suggest(f.name.Value(), f.names, maxSuggestions)
	f.selected = -1
}

// pick moves the suggestion highlight by delta and copies it into the name.
func (f *activityForm) pick(delta int) {
	if f.focus != focusName || len(f.suggestions) == 0 {
		return
	}
	f.selected = (f.selected + delta + len(f.suggestions)) % len(f.suggestions)
	f.name.SetValue(f.suggestions[f.selected])
	f.name.CursorEnd()
}

func (f *activityForm) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Log Activity"))
	b.WriteString("\n")
	b.WriteString(f.name.View())
	b.WriteString("\n")

	for i, s := range f.suggestions {
		if i == f.selected {
			b.WriteString("  " + selectedStyle.Render(s))
		} else {
			b.WriteString("  " + mutedStyle.Render(s))
		}
		b.WriteString("\n")
	}

	b.WriteString(f.minutes.View())
	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	return b.String()
}

// suggest returns up to limit names matching pattern, best match first.
// An empty pattern returns the leading names unchanged.
func suggest(pattern string, names []string, limit int) []string {
	pattern = strings.TrimSpace(pattern)

	var out []string
	if pattern == "" {
		out = append(out, names...)
	} else {
		for _, match := range fuzzy.Find(pattern, names) {
			if strings.EqualFold(match.Str, pattern) {
				continue
			}
			out = append(out, match.Str)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form

	switch {
	case key.Matches(msg, m.formKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.formKeys.Cancel):
		m.form = nil
		m.setStatus("Activity not logged", false)
		return m, nil

	case key.Matches(msg, m.formKeys.Next):
		f.toggleFocus()
		return m, nil

	case key.Matches(msg, m.formKeys.Up):
		f.pick(-1)
		return m, nil

	case key.Matches(msg, m.formKeys.Down):
		f.pick(1)
		return m, nil

	case key.Matches(msg, m.formKeys.Submit):
		return m.submitForm()
	}

	var cmd tea.Cmd
	if f.focus == focusName {
		before := f.name.Value()
		f.name, cmd = f.name.Update(msg)
		if f.name.Value() != before {
			f.updateSuggestions()
		}
	} else {
		f.minutes, cmd = f.minutes.Update(msg)
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form

	minutes, err := session.ParseMinutes(f.minutes.Value())
	if err != nil {
		f.err = err.Error()
		return m, nil
	}
	if m.ctrl == nil {
		m.form = nil
		return m, nil
	}

	entry, err := m.ctrl.LogActivity(f.name.Value(), minutes)
	if err != nil {
		f.err = err.Error()
		return m, nil
	}

	m.form = nil
	m.setStatus(fmt.Sprintf("Logged %s (%d min) at %s", entry.Name, entry.DurationMinutes, entry.Time), false)
	return m, m.fetchSummary
}
