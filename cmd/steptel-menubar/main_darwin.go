//go:build darwin
// +build darwin

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"os/user"
	"runtime"
	"syscall"
	"time"

	"github.com/caseymrm/menuet"
	"github.com/sirupsen/logrus"

	"github.com/aayushbajaj/step-telemetry/internal/app"
	"github.com/aayushbajaj/step-telemetry/internal/keylogger"
)

const minTitleRefresh = time.Second

func init() {
	runtime.LockOSThread()
}

type menuBar struct {
	ctrl  controller
	log   logrus.FieldLogger
	title titleCache
}

func main() {
	// Ensure HOME is set (needed when launched via launchctl/open)
	if os.Getenv("HOME") == "" {
		if u, err := user.Current(); err == nil {
			os.Setenv("HOME", u.HomeDir)
		}
	}

	a, err := app.Open(app.Overrides{}, app.Options{LogFile: "menubar.log"})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	a.Log.Info("starting steptel menu bar app")

	if !keylogger.CheckAccessibilityPermissions() {
		a.Log.Warn("accessibility permissions not granted, waiting for them")
		showPermissionAlert()
	}

	stop := a.Track(context.Background(), a.Sources()...)

	m := &menuBar{ctrl: a.Controller, log: a.Log.WithField("component", "menubar")}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.Log.Info("shutting down")
		stop()
		a.Close()
		os.Exit(0)
	}()

	interval := a.Config.RefreshInterval
	if interval < minTitleRefresh {
		interval = minTitleRefresh
	}
	go m.refreshLoop(interval)

	menu := menuet.App()
	menu.Name = "Step Telemetry"
	menu.Label = "com.aayushbajaj.steptel"
	menu.Children = m.items
	menu.SetMenuState(&menuet.MenuState{Title: menuTitle(m.ctrl.CurrentSummary())})
	menu.RunApplication()
}

func (m *menuBar) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		title := menuTitle(m.ctrl.CurrentSummary())
		if m.title.changed(title) {
			menuet.App().SetMenuState(&menuet.MenuState{Title: title})
		}
	}
}

func (m *menuBar) items() []menuet.MenuItem {
	summary := m.ctrl.CurrentSummary()

	var items []menuet.MenuItem
	for _, line := range sessionLines(summary) {
		items = append(items, menuet.MenuItem{Text: line})
	}
	items = append(items, menuet.MenuItem{Type: menuet.Separator})
	for _, line := range todayLines(summary) {
		items = append(items, menuet.MenuItem{Text: line})
	}
	items = append(items,
		menuet.MenuItem{Type: menuet.Separator},
		menuet.MenuItem{Text: "Save Steps", Clicked: m.save},
		menuet.MenuItem{Text: "Reset Steps", Clicked: m.reset},
		menuet.MenuItem{Text: "Log Activity…", Clicked: m.logActivity},
		menuet.MenuItem{Type: menuet.Separator},
		menuet.MenuItem{Text: "About", Clicked: showAbout},
	)
	return items
}

func (m *menuBar) save() {
	title, msg := saveSteps(m.ctrl)
	menuet.App().Alert(menuet.Alert{
		MessageText:     title,
		InformativeText: msg,
		Buttons:         []string{"OK"},
	})
	m.redraw()
}

func (m *menuBar) reset() {
	clicked := menuet.App().Alert(menuet.Alert{
		MessageText:     "Reset Steps",
		InformativeText: "Discard the steps counted since the last save?",
		Buttons:         []string{"Reset", "Cancel"},
	})
	if clicked.Button != 0 {
		return
	}
	m.ctrl.ResetSteps()
	m.redraw()
}

func (m *menuBar) logActivity() {
	clicked := menuet.App().Alert(menuet.Alert{
		MessageText:     "Log Activity",
		InformativeText: "Enter the activity name and its duration in minutes.",
		Buttons:         []string{"Log", "Cancel"},
		Inputs:          []string{"Activity name", "Minutes"},
	})
	if clicked.Button != 0 {
		return
	}

	entry, err := logFromInputs(m.ctrl, clicked.Inputs)
	if err != nil {
		m.log.WithError(err).Warn("activity not logged")
		menuet.App().Alert(menuet.Alert{
			MessageText:     "Activity Not Logged",
			InformativeText: err.Error(),
			Buttons:         []string{"OK"},
		})
		return
	}

	menuet.App().Notification(menuet.Notification{
		Title:   "Activity Logged",
		Message: fmt.Sprintf("%s, %d min at %s", entry.Name, entry.DurationMinutes, entry.Time),
	})
	menuet.App().MenuChanged()
}

func (m *menuBar) redraw() {
	title := menuTitle(m.ctrl.CurrentSummary())
	m.title.changed(title)
	menuet.App().SetMenuState(&menuet.MenuState{Title: title})
	menuet.App().MenuChanged()
}

func showAbout() {
	menuet.App().Alert(menuet.Alert{
		MessageText:     "Step Telemetry",
		InformativeText: fmt.Sprintf("Version %s\n\nEstimates steps from mouse and keyboard activity.", Version),
		Buttons:         []string{"OK"},
	})
}

func showPermissionAlert() {
	menuet.App().Alert(menuet.Alert{
		MessageText: "Accessibility Permission Needed",
		InformativeText: "Key presses are not counted until this app is allowed under " +
			"System Settings > Privacy & Security > Accessibility. Counting starts automatically once enabled.",
		Buttons: []string{"OK"},
	})
}
