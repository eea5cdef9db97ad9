package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aayushbajaj/step-telemetry/internal/pedometer"
	"github.com/aayushbajaj/step-telemetry/internal/storage"
)

// Options configures a Controller.
type Options struct {
	Counter *pedometer.Counter
	Store   storage.Store
	Clock   func() time.Time
	Logger  logrus.FieldLogger
}

// Summary is what the presentation layer renders on each refresh.
type Summary struct {
	Date string
	Live Totals
	// Today is nil until something has been saved or logged today.
	Today *storage.DailyRecord
}

// DayTotals pairs a date with its saved record.
type DayTotals struct {
	Date   string
	Record storage.DailyRecord
}

// Controller owns the step counter and the ledger.
type Controller struct {
	counter *pedometer.Counter
	store   storage.Store
	clock   func() time.Time
	log     logrus.FieldLogger

	mu      sync.Mutex
	ledger  storage.Ledger
	loadErr error
	// stale is set while the store could not be read; mutations then work
	// on the in-memory ledger until a save succeeds.
	stale bool
}

// New loads the ledger and returns a controller. A corrupt or unreadable
// ledger is logged and replaced with an empty one; see LoadErr.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Counter == nil {
		opts.Counter = pedometer.NewCounter(pedometer.Options{})
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	c := &Controller{
		counter: opts.Counter,
		store:   opts.Store,
		clock:   opts.Clock,
		log:     opts.Logger.WithField("component", "session"),
	}

	ledger, err := opts.Store.Load()
	if err != nil {
		c.loadErr = err
		c.stale = true
		fields := logrus.Fields{"path": opts.Store.Path(), "error": err}
		if errors.Is(err, storage.ErrCorrupt) {
			c.log.WithFields(fields).Warn("ledger is corrupt, starting with an empty ledger")
		} else {
			c.log.WithFields(fields).Warn("ledger could not be read, starting with an empty ledger")
		}
	}
	if ledger == nil {
		ledger = storage.NewLedger()
	}
	c.ledger = ledger
	c.log.WithFields(logrus.Fields{"path": opts.Store.Path(), "days": len(ledger)}).Info("ledger loaded")

	return c, nil
}

// Counter exposes the step counter so event sources can be attached to it.
func (c *Controller) Counter() *pedometer.Counter {
	return c.counter
}

// LoadErr returns the error hit while loading the ledger, if any.
func (c *Controller) LoadErr() error {
	return c.loadErr
}

func (c *Controller) today() (time.Time, string) {
	now := c.clock()
	return now, now.Format(storage.DateLayout)
}

// refresh re-reads the ledger before a mutation so entries written by another
// process since the last load are kept. Must hold mu.
func (c *Controller) refresh() {
	if c.stale {
		return
	}
	ledger, err := c.store.Load()
	if err != nil {
		c.stale = true
		c.log.WithFields(logrus.Fields{"path": c.store.Path(), "error": err}).Warn("ledger reload failed, using the copy in memory")
		return
	}
	if ledger == nil {
		ledger = storage.NewLedger()
	}
	c.ledger = ledger
}

// persist saves the ledger and clears stale on success. Must hold mu.
func (c *Controller) persist() error {
	if err := c.store.Save(c.ledger); err != nil {
		return err
	}
	c.stale = false
	return nil
}

// restore puts back a record replaced by a failed mutation. Must hold mu.
func (c *Controller) restore(date string, prev storage.DailyRecord, existed bool) {
	if existed {
		c.ledger[date] = prev
	} else {
		delete(c.ledger, date)
	}
}

// SaveCurrentSteps adds the unsaved session steps to today's record, persists
// the ledger and resets the counter. It returns the totals that were added.
// Steps counted while the save is in progress stay on the counter.
func (c *Controller) SaveCurrentSteps() (Totals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refresh()
	_, date := c.today()
	steps := c.counter.Take()
	added := TotalsFor(steps)

	prev, existed := c.ledger[date]
	rec := storage.NewDailyRecord()
	if existed {
		rec = prev.Clone()
	}
	rec.Steps += added.Steps
	rec.DistanceKm = roundTo(rec.DistanceKm+added.DistanceKm, 2)
	rec.Calories += added.Calories
	c.ledger[date] = rec

	if err := c.persist(); err != nil {
		c.restore(date, prev, existed)
		c.counter.Add(steps)
		c.log.WithFields(logrus.Fields{"date": date, "steps": added.Steps, "error": err}).Error("failed to save steps")
		return Totals{}, &PersistenceError{Op: "save steps", Err: err}
	}

	c.log.WithFields(logrus.Fields{"date": date, "steps": added.Steps, "total_steps": rec.Steps}).Info("steps saved")
	return added, nil
}

// ResetSteps discards the unsaved session steps. The ledger is untouched.
func (c *Controller) ResetSteps() {
	c.counter.Reset()
	c.log.Info("step counter reset")
}

// ParseMinutes converts form input into a duration in minutes.
func ParseMinutes(input string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, &ValidationError{Field: "duration", Reason: fmt.Sprintf("%q is not a whole number of minutes", input)}
	}
	if minutes < 0 {
		return 0, &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return minutes, nil
}

// LogActivity appends an activity to today's record and persists the ledger.
func (c *Controller) LogActivity(name string, durationMinutes int) (storage.ActivityEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.ActivityEntry{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if durationMinutes < 0 {
		return storage.ActivityEntry{}, &ValidationError{Field: "duration", Reason: "must not be negative"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.refresh()
	now, date := c.today()
	entry := storage.ActivityEntry{
		Name:            name,
		DurationMinutes: durationMinutes,
		Time:            now.Format(storage.TimeLayout),
	}

	prev, existed := c.ledger[date]
	rec := storage.NewDailyRecord()
	if existed {
		rec = prev.Clone()
	}
	rec.Activities = append(rec.Activities, entry)
	c.ledger[date] = rec

	if err := c.persist(); err != nil {
		c.restore(date, prev, existed)
		c.log.WithFields(logrus.Fields{"date": date, "activity": name, "error": err}).Error("failed to log activity")
		return storage.ActivityEntry{}, &PersistenceError{Op: "log activity", Err: err}
	}

	c.log.WithFields(logrus.Fields{"date": date, "activity": name, "minutes": durationMinutes}).Info("activity logged")
	return entry, nil
}

// CurrentSummary returns the live session figures and today's saved record.
func (c *Controller) CurrentSummary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, date := c.today()
	summary := Summary{
		Date: date,
		Live: TotalsFor(c.counter.Steps()),
	}
	if rec, ok := c.ledger[date]; ok {
		today := rec.Clone()
		summary.Today = &today
	}
	return summary
}

// History returns the saved records for the last days calendar days, oldest
// first. Days without a record are returned zeroed.
func (c *Controller) History(days int) []DayTotals {
	if days <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now, _ := c.today()
	out := make([]DayTotals, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(storage.DateLayout)
		rec, ok := c.ledger[date]
		if ok {
			rec = rec.Clone()
		} else {
			rec = storage.NewDailyRecord()
		}
		out = append(out, DayTotals{Date: date, Record: rec})
	}
	return out
}

// Record returns the saved record for date.
func (c *Controller) Record(date string) (storage.DailyRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.ledger[date]
	if !ok {
		return storage.DailyRecord{}, false
	}
	return rec.Clone(), true
}

// ActivityNames lists distinct logged activity names, most recent first.
func (c *Controller) ActivityNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	var names []string
	dates := c.ledger.Dates()
	for i := len(dates) - 1; i >= 0; i-- {
		acts := c.ledger[dates[i]].Activities
		for j := len(acts) - 1; j >= 0; j-- {
			key := strings.ToLower(acts[j].Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, acts[j].Name)
		}
	}
	return names
}

// Stop stops step counting. Event sources should be cancelled afterwards.
func (c *Controller) Stop() {
	c.counter.Stop()
	c.log.Info("step counter stopped")
}
