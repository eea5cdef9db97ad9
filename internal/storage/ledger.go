package storage

import "sort"

// DateLayout is the ledger key format.
const DateLayout = "2006-01-02"

// TimeLayout is the activity timestamp format.
const TimeLayout = "15:04"

// ActivityEntry is a free-text activity logged by the user.
type ActivityEntry struct {
	Name            string `json:"nama"`
	DurationMinutes int    `json:"durasi"`
	Time            string `json:"waktu"` // HH:MM
}

// DailyRecord holds the saved totals for one calendar day.
type DailyRecord struct {
	Steps      int             `json:"langkah"`
	DistanceKm float64         `json:"jarak"`
	Calories   int             `json:"kalori"`
	Activities []ActivityEntry `json:"aktivitas"`
}

// NewDailyRecord returns a zeroed record with an empty activity list.
func NewDailyRecord() DailyRecord {
	return DailyRecord{Activities: []ActivityEntry{}}
}

// Clone returns a deep copy of the record.
func (r DailyRecord) Clone() DailyRecord {
	out := r
	out.Activities = make([]ActivityEntry, len(r.Activities))
	copy(out.Activities, r.Activities)
	return out
}

// Ledger maps a YYYY-MM-DD date to that day's record.
type Ledger map[string]DailyRecord

// NewLedger returns an empty ledger.
func NewLedger() Ledger {
	return make(Ledger)
}

// Dates returns the ledger keys in ascending order.
func (l Ledger) Dates() []string {
	dates := make([]string, 0, len(l))
	for date := range l {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for date, rec := range l {
		out[date] = rec.Clone()
	}
	return out
}

// normalize replaces nil activity lists so they encode as [] rather than null.
func (l Ledger) normalize() {
	for date, rec := range l {
		if rec.Activities == nil {
			rec.Activities = []ActivityEntry{}
			l[date] = rec
		}
	}
}
