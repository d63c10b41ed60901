// internal/service/results_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/stepsurvey/steps-survey/internal/analysis"
	"github.com/stepsurvey/steps-survey/internal/chart"
	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

// ResultsStatus says how much of the results view can be shown.
type ResultsStatus string

const (
	StatusOK          ResultsStatus = "ok"
	StatusNoData      ResultsStatus = "no_data"       // Nothing stored yet
	StatusNoValidData ResultsStatus = "no_valid_data" // Rows exist but none survive sanitizing
)

// FilterInput is what the filter form submitted. Nil fields fall back to the
// data bounds.
type FilterInput struct {
	DateStart *time.Time
	DateEnd   *time.Time
	MinSteps  *int
	MaxSteps  *int
	Keyword   string
}

// Resolve builds the criteria for one render: bounds first, then the submitted
// values, then clamping into what the form allows.
func (in FilterInput) Resolve(b domain.FilterBounds, maxStepsCap int) domain.FilterCriteria {
	c := analysis.DefaultCriteria(b)
	if in.DateStart != nil {
		c.DateStart = *in.DateStart
	}
	if in.DateEnd != nil {
		c.DateEnd = *in.DateEnd
	}
	if in.MinSteps != nil {
		c.MinSteps = *in.MinSteps
	}
	if in.MaxSteps != nil {
		c.MaxSteps = *in.MaxSteps
	}
	c.Keyword = in.Keyword
	return analysis.Clamp(c, b, maxStepsCap)
}

// ResultsQuery describes one results render. A nil Filter means the filter
// form has not been applied and every valid row is shown.
type ResultsQuery struct {
	Filter    *FilterInput
	Threshold *int
}

// Results is the view model of the results page.
type Results struct {
	Status         ResultsStatus            `json:"status"`
	Applied        bool                     `json:"applied"`
	Bounds         domain.FilterBounds      `json:"bounds"`
	Criteria       domain.FilterCriteria    `json:"criteria"`
	Threshold      int                      `json:"threshold"`
	MaxStepsCap    int                      `json:"maxStepsCap"`
	Rows           domain.EntryTable        `json:"rows"`
	TimeSeries     domain.EntryTable        `json:"timeSeries"`
	LowExercise    domain.EntryTable        `json:"lowExercise"`
	HighExercise   domain.EntryTable        `json:"highExercise"`
	LowFrequency   []analysis.CategoryCount `json:"lowFrequency"`
	HighFrequency  []analysis.CategoryCount `json:"highFrequency"`
	Reference      domain.ReferenceDataset  `json:"reference"`
	ReferenceError string                   `json:"referenceError,omitempty"`
	Report         repository.LoadReport    `json:"loadReport"`
	Charts         chart.Set                `json:"charts"`
}

// ResultsService runs the load → sanitize → filter → aggregate pipeline.
type ResultsService interface {
	Build(ctx context.Context, q ResultsQuery) (*Results, error)
	Reference(ctx context.Context) (domain.ReferenceDataset, error)
}

type resultsService struct {
	entries     repository.EntryRepository
	reference   repository.ReferenceRepository
	threshold   int
	maxStepsCap int
	log         *slog.Logger
}

// NewResultsService creates a new instance of resultsService.
func NewResultsService(entries repository.EntryRepository, reference repository.ReferenceRepository, threshold, maxStepsCap int, logger *slog.Logger) ResultsService {
	return &resultsService{
		entries:     entries,
		reference:   reference,
		threshold:   threshold,
		maxStepsCap: maxStepsCap,
		log:         logger,
	}
}

func (s *resultsService) Reference(ctx context.Context) (domain.ReferenceDataset, error) {
	return s.reference.Load(ctx)
}

// Build never fails on missing data or a bad reference resource; those
// degrade the view. Only an unreadable entry table is returned as an error.
func (s *resultsService) Build(ctx context.Context, q ResultsQuery) (*Results, error) {
	res := &Results{
		Threshold:   s.threshold,
		MaxStepsCap: s.maxStepsCap,
	}
	if q.Threshold != nil {
		res.Threshold = *q.Threshold
	}

	res.Reference, res.ReferenceError = s.loadReference(ctx)
	res.Charts.Reference = chart.Reference(res.Reference)

	table, report, err := s.entries.Load(ctx)
	res.Report = report
	if errors.Is(err, repository.ErrEmptyStore) {
		res.Status = StatusNoData
		return res, nil
	}
	if err != nil {
		s.log.Error("failed to load entries", "err", err)
		return nil, err
	}

	valid := analysis.Sanitize(table)
	bounds, ok := analysis.Bounds(valid, s.maxStepsCap)
	if !ok {
		res.Status = StatusNoValidData
		return res, nil
	}
	res.Status = StatusOK
	res.Bounds = bounds

	if q.Filter != nil {
		res.Applied = true
		res.Criteria = q.Filter.Resolve(bounds, s.maxStepsCap)
		res.Rows = analysis.Apply(valid, res.Criteria)
	} else {
		res.Criteria = analysis.DefaultCriteria(bounds)
		res.Rows = valid
	}

	res.TimeSeries = analysis.SortByDate(res.Rows)
	res.LowExercise, res.HighExercise = analysis.BucketBySteps(res.Rows, res.Threshold)
	res.LowFrequency = analysis.Ordered(analysis.Frequency(res.LowExercise))
	res.HighFrequency = analysis.Ordered(analysis.Frequency(res.HighExercise))

	res.Charts.TimeSeries = chart.TimeSeries(res.TimeSeries)
	res.Charts.LowExercise = chart.EnergyPie(lowTitle(res.Threshold), res.LowFrequency)
	res.Charts.HighExercise = chart.EnergyPie(highTitle(res.Threshold), res.HighFrequency)

	s.log.Debug("results built", "rows", len(res.Rows), "applied", res.Applied, "threshold", res.Threshold)
	return res, nil
}

func (s *resultsService) loadReference(ctx context.Context) (domain.ReferenceDataset, string) {
	ds, err := s.reference.Load(ctx)
	if err == nil {
		return ds, ""
	}
	var perr *repository.ParseError
	if errors.As(err, &perr) {
		s.log.Warn("reference dataset is malformed; omitting reference chart", "err", err)
	} else {
		s.log.Error("failed to load reference dataset", "err", err)
	}
	return domain.ReferenceDataset{}, err.Error()
}

func lowTitle(threshold int) string {
	return "Energy levels for low exercise (< " + strconv.Itoa(threshold) + " steps)"
}

func highTitle(threshold int) string {
	return "Energy levels for high exercise (≥ " + strconv.Itoa(threshold) + " steps)"
}
