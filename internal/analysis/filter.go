package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/stepsurvey/steps-survey/internal/domain"
)

// Sanitize drops rows that are not yet valid for display: non-positive steps or
// non-positive energy, which includes values coerced to 0 on load.
func Sanitize(table domain.EntryTable) domain.EntryTable {
	out := make(domain.EntryTable, 0, len(table))
	for _, e := range table {
		if e.Steps > 0 && e.Energy > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Apply returns the rows matching every predicate of c, in table order.
func Apply(table domain.EntryTable, c domain.FilterCriteria) domain.EntryTable {
	keyword := strings.ToLower(strings.TrimSpace(c.Keyword))
	start := domain.TruncateDate(c.DateStart)
	end := domain.TruncateDate(c.DateEnd)

	out := make(domain.EntryTable, 0, len(table))
	for _, e := range table {
		d := domain.TruncateDate(e.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if e.Steps < c.MinSteps || e.Steps > c.MaxSteps {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(e.Notes), keyword) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortByDate returns a chronologically sorted copy. Rows sharing a date keep
// their table order.
func SortByDate(table domain.EntryTable) domain.EntryTable {
	out := make(domain.EntryTable, len(table))
	copy(out, table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Bounds derives the limits offered by the filter form. maxStepsCap caps the
// upper step bound; a non-positive cap means no cap. ok is false for an empty table.
func Bounds(table domain.EntryTable, maxStepsCap int) (b domain.FilterBounds, ok bool) {
	if len(table) == 0 {
		return b, false
	}
	b.MinDate = domain.TruncateDate(table[0].Date)
	b.MaxDate = b.MinDate
	b.MinSteps = table[0].Steps
	b.MaxSteps = table[0].Steps
	for _, e := range table[1:] {
		d := domain.TruncateDate(e.Date)
		if d.Before(b.MinDate) {
			b.MinDate = d
		}
		if d.After(b.MaxDate) {
			b.MaxDate = d
		}
		if e.Steps < b.MinSteps {
			b.MinSteps = e.Steps
		}
		if e.Steps > b.MaxSteps {
			b.MaxSteps = e.Steps
		}
	}
	if maxStepsCap > 0 && b.MaxSteps > maxStepsCap {
		b.MaxSteps = maxStepsCap
	}
	return b, true
}

// DefaultCriteria includes every row within b.
func DefaultCriteria(b domain.FilterBounds) domain.FilterCriteria {
	return domain.FilterCriteria{
		DateStart: b.MinDate,
		DateEnd:   b.MaxDate,
		MinSteps:  b.MinSteps,
		MaxSteps:  b.MaxSteps,
	}
}

// Clamp fits c into the filter form's limits: dates are pulled into
// [b.MinDate, b.MaxDate], steps are non-negative and MaxSteps is never below MinSteps.
func Clamp(c domain.FilterCriteria, b domain.FilterBounds, maxStepsCap int) domain.FilterCriteria {
	c.DateStart = clampDate(domain.TruncateDate(c.DateStart), b.MinDate, b.MaxDate)
	c.DateEnd = clampDate(domain.TruncateDate(c.DateEnd), b.MinDate, b.MaxDate)

	if c.MinSteps < 0 {
		c.MinSteps = 0
	}
	if maxStepsCap > 0 {
		c.MinSteps = min(c.MinSteps, maxStepsCap)
		c.MaxSteps = min(c.MaxSteps, maxStepsCap)
	}
	if c.MaxSteps < c.MinSteps {
		c.MaxSteps = c.MinSteps
	}
	c.Keyword = strings.TrimSpace(c.Keyword)
	return c
}

func clampDate(d, lo, hi time.Time) time.Time {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}
