package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONStore keeps the ledger in a single JSON object file.
type JSONStore struct {
	path  string
	clock func() time.Time

	// unpreserved is set when Load could not read the file or could not copy
	// a corrupt one aside. Save refuses to replace the file until a copy of
	// it has been kept.
	unpreserved bool
}

// NewJSONStore creates a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	if path == "" {
		path = DefaultFileName
	}
	return &JSONStore{path: path, clock: time.Now}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the ledger file. On a parse failure the bad file is copied aside
// to <path>.corrupt-<unix> before an empty ledger is returned.
func (s *JSONStore) Load() (Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.unpreserved = false
			return NewLedger(), nil
		}
		s.unpreserved = true
		return NewLedger(), fmt.Errorf("read ledger file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.unpreserved = false
		return NewLedger(), fmt.Errorf("%w: %s is empty", ErrCorrupt, s.path)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		backup, qerr := s.quarantine(data)
		if qerr != nil {
			s.unpreserved = true
			return NewLedger(), fmt.Errorf("%w: unmarshal %s: %v (no copy kept: %v)", ErrCorrupt, s.path, err, qerr)
		}
		s.unpreserved = false
		return NewLedger(), fmt.Errorf("%w: unmarshal %s (copy kept at %s): %v", ErrCorrupt, s.path, backup, err)
	}
	if ledger == nil {
		ledger = NewLedger()
	}
	ledger.normalize()
	s.unpreserved = false

	return ledger, nil
}

// quarantine writes the unreadable contents next to the ledger file and
// returns the copy's path.
func (s *JSONStore) quarantine(data []byte) (string, error) {
	backup := fmt.Sprintf("%s.corrupt-%d", s.path, s.clock().Unix())
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return "", err
	}
	return backup, nil
}

// preserve copies the current file aside so Save may replace it.
func (s *JSONStore) preserve() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	_, err = s.quarantine(data)
	return err
}

// Save writes the ledger to a temp file in the same directory and renames it
// over the previous file.
func (s *JSONStore) Save(l Ledger) error {
	if s.unpreserved {
		if err := s.preserve(); err != nil {
			return fmt.Errorf("%w: %s was not read and cannot be copied aside: %v", ErrUnpreserved, s.path, err)
		}
		s.unpreserved = false
	}

	if l == nil {
		l = NewLedger()
	}
	l.normalize()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp ledger file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *JSONStore) Close() error {
	return nil
}
