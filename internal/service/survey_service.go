// internal/service/survey_service.go
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

// SurveyService accepts submissions and exposes the stored table.
type SurveyService interface {
	// Submit validates the input and appends it to the Entry Store.
	// Returns *ValidationError or *repository.PersistenceError.
	Submit(ctx context.Context, in SubmissionInput) (domain.Entry, error)

	// Entries returns the full table, or repository.ErrEmptyStore.
	Entries(ctx context.Context) (domain.EntryTable, error)

	// Latest returns up to n of the most recently appended entries, oldest first.
	// An empty store yields an empty table.
	Latest(ctx context.Context, n int) (domain.EntryTable, error)
}

type surveyService struct {
	entries repository.EntryRepository
	log     *slog.Logger
}

// NewSurveyService creates a new instance of surveyService.
func NewSurveyService(entries repository.EntryRepository, logger *slog.Logger) SurveyService {
	return &surveyService{entries: entries, log: logger}
}

func (s *surveyService) Submit(ctx context.Context, in SubmissionInput) (domain.Entry, error) {
	entry, err := ValidateEntry(in)
	if err != nil {
		s.log.Info("submission rejected", "err", err)
		return domain.Entry{}, err
	}

	if err := s.entries.Append(ctx, entry); err != nil {
		s.log.Error("failed to save entry", "date", entry.DateString(), "err", err)
		return domain.Entry{}, err
	}

	s.log.Info("entry saved", "date", entry.DateString(), "steps", entry.Steps, "energy", entry.Energy)
	return entry, nil
}

func (s *surveyService) Entries(ctx context.Context) (domain.EntryTable, error) {
	table, _, err := s.entries.Load(ctx)
	return table, err
}

func (s *surveyService) Latest(ctx context.Context, n int) (domain.EntryTable, error) {
	table, _, err := s.entries.Load(ctx)
	if errors.Is(err, repository.ErrEmptyStore) {
		return domain.EntryTable{}, nil
	}
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(table) > n {
		table = table[len(table)-n:]
	}
	return table, nil
}
