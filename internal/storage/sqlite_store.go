package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the ledger in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string

	// pending is reported once by the first Load after a damaged database
	// was moved aside at open.
	pending error
}

// NewSQLiteStore opens (or creates) the database at path. A file that is not
// a usable database is renamed to <path>.corrupt-<unix> and replaced with an
// empty one; the first Load then returns an empty ledger and ErrCorrupt.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return openSQLiteStore(path, time.Now)
}

func openSQLiteStore(path string, clock func() time.Time) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := openDB(path)
	if err == nil {
		return &SQLiteStore{db: db, path: path}, nil
	}
	if !isDamaged(err) {
		return nil, err
	}

	backup := fmt.Sprintf("%s.corrupt-%d", path, clock().Unix())
	if rerr := os.Rename(path, backup); rerr != nil {
		return nil, fmt.Errorf("%w: %v (could not move it aside: %v)", ErrCorrupt, err, rerr)
	}
	db, ferr := openDB(path)
	if ferr != nil {
		return nil, ferr
	}

	return &SQLiteStore{
		db:      db,
		path:    path,
		pending: fmt.Errorf("%w: %v (copy kept at %s)", ErrCorrupt, err, backup),
	}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// isDamaged reports whether err means the file itself is unusable, as opposed
// to a lock or permission problem that may clear up.
func isDamaged(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == sqlite3.ErrNotADB || serr.Code == sqlite3.ErrCorrupt
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		steps INTEGER NOT NULL DEFAULT 0,
		distance_km REAL NOT NULL DEFAULT 0,
		calories INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		logged_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date, position);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads every daily record and its activities.
func (s *SQLiteStore) Load() (Ledger, error) {
	if s.pending != nil {
		err := s.pending
		s.pending = nil
		return NewLedger(), err
	}

	ledger := NewLedger()

	rows, err := s.db.Query(`SELECT date, steps, distance_km, calories FROM daily_records ORDER BY date`)
	if err != nil {
		return NewLedger(), fmt.Errorf("%w: query daily records: %v", ErrCorrupt, err)
	}
	defer rows.Close()

	for rows.Next() {
		var date string
		rec := NewDailyRecord()
		if err := rows.Scan(&date, &rec.Steps, &rec.DistanceKm, &rec.Calories); err != nil {
			return NewLedger(), fmt.Errorf("%w: scan daily record: %v", ErrCorrupt, err)
		}
		ledger[date] = rec
	}
	if err := rows.Err(); err != nil {
		return NewLedger(), fmt.Errorf("%w: iterate daily records: %v", ErrCorrupt, err)
	}

	actRows, err := s.db.Query(`
		SELECT date, name, duration_minutes, logged_at
		FROM activities
		ORDER BY date, position
	`)
	if err != nil {
		return NewLedger(), fmt.Errorf("%w: query activities: %v", ErrCorrupt, err)
	}
	defer actRows.Close()

	for actRows.Next() {
		var date string
		var entry ActivityEntry
		if err := actRows.Scan(&date, &entry.Name, &entry.DurationMinutes, &entry.Time); err != nil {
			return NewLedger(), fmt.Errorf("%w: scan activity: %v", ErrCorrupt, err)
		}
		rec, ok := ledger[date]
		if !ok {
			rec = NewDailyRecord()
		}
		rec.Activities = append(rec.Activities, entry)
		ledger[date] = rec
	}
	if err := actRows.Err(); err != nil {
		return NewLedger(), fmt.Errorf("%w: iterate activities: %v", ErrCorrupt, err)
	}

	return ledger, nil
}

// Save rewrites both tables inside one transaction.
func (s *SQLiteStore) Save(l Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM activities`); err != nil {
		return fmt.Errorf("clear activities: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_records`); err != nil {
		return fmt.Errorf("clear daily records: %w", err)
	}

	recStmt, err := tx.Prepare(`INSERT INTO daily_records (date, steps, distance_km, calories) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare daily record insert: %w", err)
	}
	defer recStmt.Close()

	actStmt, err := tx.Prepare(`INSERT INTO activities (date, position, name, duration_minutes, logged_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare activity insert: %w", err)
	}
	defer actStmt.Close()

	for _, date := range l.Dates() {
		rec := l[date]
		if _, err := recStmt.Exec(date, rec.Steps, rec.DistanceKm, rec.Calories); err != nil {
			return fmt.Errorf("insert daily record %s: %w", date, err)
		}
		for i, entry := range rec.Activities {
			if _, err := actStmt.Exec(date, i, entry.Name, entry.DurationMinutes, entry.Time); err != nil {
				return fmt.Errorf("insert activity %s #%d: %w", date, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
