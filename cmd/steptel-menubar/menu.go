package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aayushbajaj/step-telemetry/internal/session"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
)

// Version is set at build time via ldflags: -X main.Version=$(VERSION)
var Version = "dev"

type controller interface {
	CurrentSummary() session.Summary
	SaveCurrentSteps() (session.Totals, error)
	ResetSteps()
	LogActivity(name string, durationMinutes int) (storage.ActivityEntry, error)
}

// titleCache avoids redrawing the status item when nothing changed.
type titleCache struct {
	mu   sync.Mutex
	last string
}

// changed records title and reports whether it differs from the last one.
func (c *titleCache) changed(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if title == c.last {
		return false
	}
	c.last = title
	return true
}

func menuTitle(s session.Summary) string {
	return "👣 " + formatAbsolute(s.Live.Steps)
}

func formatAbsolute(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}

// sessionLines describe the unsaved steps.
func sessionLines(s session.Summary) []string {
	return []string{
		fmt.Sprintf("Session: %s steps", formatAbsolute(s.Live.Steps)),
		fmt.Sprintf("  %.2f km · %d kcal", s.Live.DistanceKm, s.Live.Calories),
	}
}

// todayLines describe today's saved record.
func todayLines(s session.Summary) []string {
	if s.Today == nil {
		return []string{"Today: nothing saved yet"}
	}
	rec := s.Today
	lines := []string{
		fmt.Sprintf("Today: %s steps", formatAbsolute(rec.Steps)),
		fmt.Sprintf("  %.2f km · %d kcal", rec.DistanceKm, rec.Calories),
	}
	for _, act := range rec.Activities {
		lines = append(lines, fmt.Sprintf("  %s %s (%d min)", act.Time, act.Name, act.DurationMinutes))
	}
	return lines
}

// saveSteps saves the session and returns the alert to show.
func saveSteps(ctrl controller) (title, message string) {
	added, err := ctrl.SaveCurrentSteps()
	if err != nil {
		return "Save Failed", err.Error()
	}
	return "Steps Saved", fmt.Sprintf("Added %s steps (%.2f km, %d kcal) to today.",
		formatAbsolute(added.Steps), added.DistanceKm, added.Calories)
}

// logFromInputs logs an activity from the two alert inputs: name and minutes.
func logFromInputs(ctrl controller, inputs []string) (storage.ActivityEntry, error) {
	if len(inputs) != 2 {
		return storage.ActivityEntry{}, errors.New("expected activity name and minutes")
	}
	minutes, err := session.ParseMinutes(inputs[1])
	if err != nil {
		return storage.ActivityEntry{}, err
	}
	return ctrl.LogActivity(inputs[0], minutes)
}
