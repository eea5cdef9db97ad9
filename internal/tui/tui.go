// Package tui is the terminal dashboard for a step tracking session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aayushbajaj/step-telemetry/internal/session"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
)

// DefaultRefresh is how often the dashboard polls the controller.
const DefaultRefresh = 100 * time.Millisecond

const weekDays = 7

// Controller is the part of session.Controller the dashboard drives.
type Controller interface {
	CurrentSummary() session.Summary
	SaveCurrentSteps() (session.Totals, error)
	ResetSteps()
	LogActivity(name string, durationMinutes int) (storage.ActivityEntry, error)
	History(days int) []session.DayTotals
	ActivityNames() []string
}

type tickMsg time.Time

type summaryMsg struct {
	summary session.Summary
	week    []session.DayTotals
}

type keyMap struct {
	Save  key.Binding
	Reset key.Binding
	Log   key.Binding
	Theme key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Reset, k.Log, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save steps")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Log:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "log activity")),
		Theme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctrl    Controller
	refresh time.Duration

	summary *session.Summary
	week    []session.DayTotals

	form      *activityForm
	status    string
	statusErr bool

	keys     keyMap
	formKeys formKeyMap
	help     help.Model

	width  int
	height int
}

// New returns a dashboard over ctrl that refreshes every refresh interval.
func New(ctrl Controller, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	m := Model{
		ctrl:     ctrl,
		refresh:  refresh,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeyMap(),
		help:     help.New(),
	}
	if l, ok := ctrl.(interface{ LoadErr() error }); ok {
		if err := l.LoadErr(); err != nil {
			m.setStatus("Ledger could not be read, starting empty: "+err.Error(), true)
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSummary, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSummary() tea.Msg {
	if m.ctrl == nil {
		return nil
	}
	return summaryMsg{
		summary: m.ctrl.CurrentSummary(),
		week:    m.ctrl.History(weekDays),
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateDashboard(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchSummary, m.tick())

	case summaryMsg:
		summary := msg.summary
		m.summary = &summary
		m.week = msg.week
		return m, nil
	}

	return m, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Save):
		if m.ctrl == nil {
			return m, nil
		}
		added, err := m.ctrl.SaveCurrentSteps()
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Saved %s steps (%.2f km, %d kcal)",
			formatNumber(added.Steps), added.DistanceKm, added.Calories), false)
		return m, m.fetchSummary

	case key.Matches(msg, m.keys.Reset):
		if m.ctrl == nil {
			return m, nil
		}
		m.ctrl.ResetSteps()
		m.setStatus("Session steps reset", false)
		return m, m.fetchSummary

	case key.Matches(msg, m.keys.Log):
		var names []string
		if m.ctrl != nil {
			names = m.ctrl.ActivityNames()
		}
		m.form = newActivityForm(names)
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		next := NextTheme(currentThemeKey)
		SetTheme(next)
		m.setStatus("Theme: "+CurrentTheme.Name, false)
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) View() string {
	if m.summary == nil {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Step Telemetry"))
	b.WriteString("\n")

	live := m.summary.Live
	liveBox := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Session"),
		bigValueStyle.Render(formatNumber(live.Steps))+" "+labelStyle.Render("steps"),
		labelStyle.Render("Distance: ")+valueStyle.Render(fmt.Sprintf("%.2f km", live.DistanceKm)),
		labelStyle.Render("Calories: ")+valueStyle.Render(fmt.Sprintf("%d kcal", live.Calories)),
	))

	todayBox := boxStyle.Render(m.renderToday())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, liveBox, " ", todayBox))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("This Week"))
	b.WriteString("\n")
	b.WriteString(m.renderWeeklyGraph())
	b.WriteString("\n\n")

	if m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.formKeys.ShortHelp()))
		return b.String()
	}

	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderToday() string {
	lines := []string{headerStyle.Render("Today " + m.summary.Date)}

	rec := m.summary.Today
	if rec == nil {
		lines = append(lines, mutedStyle.Render("Nothing saved yet"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		labelStyle.Render("Steps:    ")+valueStyle.Render(formatNumber(rec.Steps)),
		labelStyle.Render("Distance: ")+valueStyle.Render(fmt.Sprintf("%.2f km", rec.DistanceKm)),
		labelStyle.Render("Calories: ")+valueStyle.Render(fmt.Sprintf("%d kcal", rec.Calories)),
	)
	if len(rec.Activities) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, "", headerStyle.Render("Activities"))
	for _, act := range rec.Activities {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			mutedStyle.Render(act.Time), act.Name, labelStyle.Render(fmt.Sprintf("%d min", act.DurationMinutes))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderWeeklyGraph() string {
	if len(m.week) == 0 {
		return "No data"
	}

	maxSteps := 0
	for _, d := range m.week {
		if d.Record.Steps > maxSteps {
			maxSteps = d.Record.Steps
		}
	}
	if maxSteps == 0 {
		return "No activity this week"
	}

	bars := []rune("▁▂▃▄▅▆▇█")
	var graph, labels strings.Builder
	for _, d := range m.week {
		idx := 0
		if d.Record.Steps > 0 {
			idx = d.Record.Steps * (len(bars) - 1) / maxSteps
			if idx == 0 {
				idx = 1
			}
		}
		graph.WriteString(graphStyle.Render(strings.Repeat(string(bars[idx]), 3)))
		graph.WriteString(" ")

		label := "   "
		if t, err := time.Parse(storage.DateLayout, d.Date); err == nil {
			label = t.Format("Mon")
		}
		labels.WriteString(label)
		labels.WriteString(" ")
	}

	peak := mutedStyle.Render(fmt.Sprintf("peak %s", formatNumber(maxSteps)))
	return graph.String() + " " + peak + "\n" + labelStyle.Render(labels.String())
}

func formatNumber(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
