package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("steps", 12).Info("steps saved")
	out := buf.String()
	if !strings.Contains(out, "steps saved") || !strings.Contains(out, "steps=12") {
		t.Errorf("Unexpected log output %q", out)
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	logger, closer, err := New(Options{Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closer.Close()

	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %s", logger.GetLevel())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "loud", Output: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := New(Options{Dir: dir, FileName: "menubar.log"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Warn("ledger is corrupt")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "menubar.log"))
	if err != nil {
		t.Fatalf("Read log file failed: %v", err)
	}
	if !strings.Contains(string(data), "ledger is corrupt") {
		t.Errorf("Expected message in log file, got %q", string(data))
	}
}
