package service

import (
	"context"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

// memoryEntries is an in-memory EntryRepository.
type memoryEntries struct {
	table     domain.EntryTable
	stored    bool
	appendErr error
	loadErr   error
}

func (m *memoryEntries) Append(_ context.Context, e domain.Entry) error {
	if m.appendErr != nil {
		return &repository.PersistenceError{Op: "append", Key: "memory", Err: m.appendErr}
	}
	m.table = append(m.table, e)
	m.stored = true
	return nil
}

func (m *memoryEntries) Load(context.Context) (domain.EntryTable, repository.LoadReport, error) {
	if m.loadErr != nil {
		return nil, repository.LoadReport{}, m.loadErr
	}
	if !m.stored {
		return nil, repository.LoadReport{}, repository.ErrEmptyStore
	}
	out := make(domain.EntryTable, len(m.table))
	copy(out, m.table)
	return out, repository.LoadReport{Rows: len(out)}, nil
}

type staticReference struct {
	ds  domain.ReferenceDataset
	err error
}

func (s staticReference) Load(context.Context) (domain.ReferenceDataset, error) {
	return s.ds, s.err
}
