// Package app wires configuration, logging, storage and the session
// controller together for the command-line and menu bar binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aayushbajaj/step-telemetry/internal/config"
	"github.com/aayushbajaj/step-telemetry/internal/keylogger"
	"github.com/aayushbajaj/step-telemetry/internal/logging"
	"github.com/aayushbajaj/step-telemetry/internal/mousetracker"
	"github.com/aayushbajaj/step-telemetry/internal/pedometer"
	"github.com/aayushbajaj/step-telemetry/internal/session"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
)

// Overrides are command-line values that take precedence over the config
// file and environment. Empty fields are ignored.
type Overrides struct {
	ConfigPath string
	DataFile   string
	Backend    string
	LogLevel   string
}

// Apply copies the non-empty overrides onto cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.DataFile != "" {
		cfg.DataFile = o.DataFile
	}
	if o.Backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}

// App is a running session with its resources.
type App struct {
	Config     config.Config
	Log        *logrus.Logger
	Store      storage.Store
	Controller *session.Controller

	logCloser io.Closer
}

// Options select the log file and, in tests, replace the log output.
type Options struct {
	LogFile   string
	LogOutput io.Writer
}

// Open loads configuration, opens the log file and the ledger, and builds
// the session controller.
func Open(ov Overrides, opts Options) (*App, error) {
	cfg, err := config.Load(ov.ConfigPath)
	if err != nil {
		return nil, err
	}
	ov.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		Dir:      cfg.LogDir,
		FileName: opts.LogFile,
		Output:   opts.LogOutput,
	})
	if err != nil {
		return nil, err
	}

	path, err := cfg.LedgerPath()
	if err != nil {
		closer.Close()
		return nil, err
	}

	store, err := storage.Open(cfg.Backend, path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to open ledger")
		closer.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	ctrl, err := session.New(session.Options{
		Counter: pedometer.NewCounter(cfg.PedometerOptions()),
		Store:   store,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		closer.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"config":  cfg.Source,
		"backend": cfg.Backend,
		"ledger":  store.Path(),
	}).Info("session opened")

	return &App{
		Config:     cfg,
		Log:        logger,
		Store:      store,
		Controller: ctrl,
		logCloser:  closer,
	}, nil
}

// Sources returns the key and pointer sources for this platform.
func (a *App) Sources() []pedometer.EventSource {
	return []pedometer.EventSource{
		keylogger.NewSource(a.Log),
		mousetracker.New(a.Config.PollInterval),
	}
}

// Track feeds input sources into the step counter in the background. The
// returned stop function stops counting, cancels the sources and waits for
// them to finish.
func (a *App) Track(ctx context.Context, sources ...pedometer.EventSource) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := pedometer.Attach(ctx, a.Controller.Counter(), sources...); err != nil {
			a.Log.WithError(err).Warn("input source stopped")
		}
	}()

	return func() {
		a.Controller.Stop()
		cancel()
		<-done
	}
}

// Close releases the ledger and the log file.
func (a *App) Close() error {
	err := a.Store.Close()
	if cerr := a.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}
