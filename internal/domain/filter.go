// internal/domain/filter.go
package domain

import "time"

// FilterCriteria is a transient set of inclusion bounds applied to an EntryTable.
// Build one per view render and treat it as immutable.
type FilterCriteria struct {
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`
	MinSteps  int       `json:"minSteps"`
	MaxSteps  int       `json:"maxSteps"`
	Keyword   string    `json:"keyword,omitempty"` // Case-insensitive substring of Notes; empty = no constraint
}

// FilterBounds are the limits the filter input surface offers, derived from the data.
type FilterBounds struct {
	MinDate  time.Time `json:"minDate"`
	MaxDate  time.Time `json:"maxDate"`
	MinSteps int       `json:"minSteps"`
	MaxSteps int       `json:"maxSteps"`
}
