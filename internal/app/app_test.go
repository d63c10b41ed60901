package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stepsurvey/steps-survey/internal/config"
	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/logging"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/service"
)

func csvConfig(dir string) config.Config {
	return config.Config{
		Store: config.StoreConfig{
			Driver:       config.DriverCSV,
			Backend:      config.BackendLocal,
			DataDir:      dir,
			EntriesKey:   "data.csv",
			ReferenceKey: "data.json",
		},
		Survey: config.SurveyConfig{StepThreshold: 6000, MaxStepsCap: 100000},
	}
}

func TestOpenCSVLocal(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, csvConfig(t.TempDir()), logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, _, err := a.Entries.Load(ctx); !errors.Is(err, repository.ErrEmptyStore) {
		t.Fatalf("Load on fresh dir = %v, want ErrEmptyStore", err)
	}

	if _, err := a.SurveyService().Submit(ctx, service.SubmissionInput{Date: "2024-01-02", Steps: "7000", Energy: "9"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res, err := a.ResultsService().Build(ctx, service.ResultsQuery{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Status != service.StatusOK || len(res.HighExercise) != 1 {
		t.Errorf("status = %s high = %d, want ok with one high-exercise row", res.Status, len(res.HighExercise))
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := res.Rows[0].Date; !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
	if res.Reference.ChartTitle != domain.DefaultReferenceTitle {
		t.Errorf("reference title = %q", res.Reference.ChartTitle)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := csvConfig(t.TempDir())
	cfg.Store.Driver = "excel"
	if _, err := Open(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("Open accepted an unknown driver")
	}
}

func TestCloseRunsInReverse(t *testing.T) {
	var order []int
	a := &App{log: logging.Discard()}
	a.closers = []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errors.New("boom") },
	}
	if err := a.Close(); err == nil || err.Error() != "boom" {
		t.Errorf("Close = %v, want boom", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("close order = %v, want [2 1]", order)
	}
}
