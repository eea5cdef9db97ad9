package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the JSON ledger file name.
const DefaultFileName = "aktivitas_data.json"

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrCorrupt marks a backing store that exists but could not be parsed.
// Load still returns a usable empty ledger alongside it.
var ErrCorrupt = errors.New("ledger store is corrupt")

// ErrUnpreserved is returned by Save when the existing file could not be
// read or copied aside, so replacing it would lose data.
var ErrUnpreserved = errors.New("ledger file not preserved")

// Store persists the whole ledger at once.
type Store interface {
	// Load reads the full ledger. A missing store yields an empty ledger and
	// no error; an unparsable one yields an empty ledger and ErrCorrupt.
	Load() (Ledger, error)

	// Save replaces the stored ledger with l.
	Save(l Ledger) error

	// Path reports where the ledger lives.
	Path() string

	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// DefaultDataDir returns ~/.local/share/steptel, creating it if needed.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "steptel")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
