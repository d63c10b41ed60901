package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/logging"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

func newRepo(t *testing.T) repository.EntryRepository {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "survey.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEntryRepository(db, logging.Discard())
}

func TestLoadEmpty(t *testing.T) {
	_, _, err := newRepo(t).Load(context.Background())
	if !errors.Is(err, repository.ErrEmptyStore) {
		t.Fatalf("Load = %v, want ErrEmptyStore", err)
	}
}

func TestAppendThenLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	in := domain.EntryTable{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Steps: 7000, Energy: 9},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Steps: 5000, Energy: 7, Notes: `felt "good", mostly`},
	}
	for _, e := range in {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, report, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if !report.Clean() || report.Rows != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestAppendRejectedByConstraint(t *testing.T) {
	repo := newRepo(t)
	err := repo.Append(context.Background(), domain.Entry{Date: time.Now(), Steps: 10, Energy: 11})
	var perr *repository.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Append = %v, want *PersistenceError", err)
	}
}
