// internal/service/validation.go
package service

import (
	"errors"
	"strconv"

	"github.com/stepsurvey/steps-survey/internal/domain"
)

// --- Error Definitions ---
var (
	ErrNonIntegerSteps  = errors.New("steps must be a whole number; enter digits only (no letters or symbols)")
	ErrNonIntegerEnergy = errors.New("energy must be a whole number between 1 and 10; enter digits only")
	ErrEnergyOutOfRange = errors.New("energy must be between 1 and 10")
	ErrInvalidDate      = errors.New("date must be a valid calendar date (YYYY-MM-DD)")
)

const (
	MinEnergy = 1
	MaxEnergy = 10
)

// ValidationError is a rejected submission. Kind is one of the Err* values above.
type ValidationError struct {
	Field string
	Value string
	Kind  error
}

func (e *ValidationError) Error() string { return e.Kind.Error() }

func (e *ValidationError) Unwrap() error { return e.Kind }

// Code is the stable name of the failure, used by the JSON API.
func (e *ValidationError) Code() string {
	switch e.Kind {
	case ErrNonIntegerSteps:
		return "NonIntegerSteps"
	case ErrNonIntegerEnergy:
		return "NonIntegerEnergy"
	case ErrEnergyOutOfRange:
		return "EnergyOutOfRange"
	case ErrInvalidDate:
		return "InvalidDate"
	}
	return "ValidationFailed"
}

// SubmissionInput is the raw text of one form submission.
type SubmissionInput struct {
	Date   string
	Steps  string
	Energy string
	Notes  string
}

// ValidateEntry turns raw input into an Entry. Checks run in order
// steps format, energy format, energy range, date; the first failure wins.
func ValidateEntry(in SubmissionInput) (domain.Entry, error) {
	if !isDigits(in.Steps) {
		return domain.Entry{}, &ValidationError{Field: "steps", Value: in.Steps, Kind: ErrNonIntegerSteps}
	}
	if !isDigits(in.Energy) {
		return domain.Entry{}, &ValidationError{Field: "energy", Value: in.Energy, Kind: ErrNonIntegerEnergy}
	}

	steps, err := strconv.Atoi(in.Steps)
	if err != nil {
		// Only overflow gets here.
		return domain.Entry{}, &ValidationError{Field: "steps", Value: in.Steps, Kind: ErrNonIntegerSteps}
	}
	energy, err := strconv.Atoi(in.Energy)
	if err != nil {
		return domain.Entry{}, &ValidationError{Field: "energy", Value: in.Energy, Kind: ErrNonIntegerEnergy}
	}
	if energy < MinEnergy || energy > MaxEnergy {
		return domain.Entry{}, &ValidationError{Field: "energy", Value: in.Energy, Kind: ErrEnergyOutOfRange}
	}

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return domain.Entry{}, &ValidationError{Field: "date", Value: in.Date, Kind: ErrInvalidDate}
	}

	return domain.Entry{
		Date:   date,
		Steps:  steps,
		Energy: energy,
		Notes:  in.Notes,
	}, nil
}

// isDigits reports whether s is non-empty and made only of ASCII 0-9.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
