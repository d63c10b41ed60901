// internal/domain/entry.go
package domain

import (
	"time"
)

// DateLayout is the ISO-8601 calendar date format used everywhere an entry date
// is serialized (CSV rows, JSON, form fields).
const DateLayout = "2006-01-02"

// Entry is one validated survey submission.
type Entry struct {
	Date   time.Time `bson:"date" json:"date"`     // Calendar date, UTC midnight
	Steps  int       `bson:"steps" json:"steps"`   // Non-negative step count
	Energy int       `bson:"energy" json:"energy"` // 1..10
	Notes  string    `bson:"notes" json:"notes"`   // Optional free text
}

// DateString returns the entry date as YYYY-MM-DD.
func (e Entry) DateString() string {
	return e.Date.Format(DateLayout)
}

// EntryTable is the full persisted history in append order.
// It is not necessarily sorted by Date.
type EntryTable []Entry

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// TruncateDate drops the time-of-day component, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
