// internal/api/results_handler.go
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/metrics"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/service"
)

// Query parameters of the results page and GET /api/v1/results.
const (
	paramApply     = "apply"
	paramDateStart = "date_start"
	paramDateEnd   = "date_end"
	paramMinSteps  = "min_steps"
	paramMaxSteps  = "max_steps"
	paramKeyword   = "keyword"
	paramThreshold = "threshold"
)

// ResultsHandler serves the results page and its JSON counterpart.
type ResultsHandler struct {
	results service.ResultsService
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(results service.ResultsService, m *metrics.Metrics, logger *slog.Logger) *ResultsHandler {
	return &ResultsHandler{results: results, metrics: m, log: logger}
}

// resultsPage is the template data of results.tmpl.
type resultsPage struct {
	*service.Results
	Error string
	Query resultsForm
}

// resultsForm echoes the submitted filter values back into the form.
type resultsForm struct {
	DateStart string
	DateEnd   string
	MinSteps  string
	MaxSteps  string
	Keyword   string
	Threshold string
}

// ResultsPage handles GET /results.
func (h *ResultsHandler) ResultsPage(c *gin.Context) {
	q, err := parseResultsQuery(c)
	if err != nil {
		c.HTML(http.StatusBadRequest, "results.tmpl", resultsPage{
			Results: &service.Results{},
			Error:   err.Error(),
		})
		return
	}

	res, err := h.build(c, q)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "results.tmpl", resultsPage{
			Results: &service.Results{},
			Error:   "Could not read the stored survey data: " + err.Error(),
		})
		return
	}
	c.HTML(http.StatusOK, "results.tmpl", resultsPage{Results: res, Query: formFor(res)})
}

// GetResults handles GET /api/v1/results.
func (h *ResultsHandler) GetResults(c *gin.Context) {
	q, err := parseResultsQuery(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.build(c, q)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load entries.")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetReference handles GET /api/v1/reference.
func (h *ResultsHandler) GetReference(c *gin.Context) {
	ds, err := h.results.Reference(c.Request.Context())
	var perr *repository.ParseError
	if errors.As(err, &perr) {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		loggerFor(c, h.log).Error("failed to load reference dataset", "err", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to load reference dataset.")
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (h *ResultsHandler) build(c *gin.Context, q service.ResultsQuery) (*service.Results, error) {
	res, err := h.results.Build(c.Request.Context(), q)
	if err != nil {
		loggerFor(c, h.log).Error("failed to build results", "err", err)
		h.metrics.ObserveResults("error", 0)
		return nil, err
	}
	if !res.Report.Clean() {
		loggerFor(c, h.log).Warn("entry table needed repair",
			"rows", res.Report.Rows,
			"coerced", res.Report.Coerced,
			"droppedDate", res.Report.DroppedDate,
		)
	}
	h.metrics.ObserveResults(string(res.Status), res.Report.Coerced+res.Report.DroppedDate)
	return res, nil
}

// parseResultsQuery reads the filter form. Filters only take effect when
// "apply" is present; absent fields fall back to the data bounds.
func parseResultsQuery(c *gin.Context) (service.ResultsQuery, error) {
	var q service.ResultsQuery

	if raw := strings.TrimSpace(c.Query(paramThreshold)); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 0 {
			return q, fmt.Errorf("invalid %s %q: must be a non-negative whole number", paramThreshold, raw)
		}
		q.Threshold = &t
	}

	if _, ok := c.GetQuery(paramApply); !ok {
		return q, nil
	}

	in := &service.FilterInput{Keyword: c.Query(paramKeyword)}
	var err error
	if in.DateStart, err = optionalDate(c, paramDateStart); err != nil {
		return q, err
	}
	if in.DateEnd, err = optionalDate(c, paramDateEnd); err != nil {
		return q, err
	}
	if in.MinSteps, err = optionalInt(c, paramMinSteps); err != nil {
		return q, err
	}
	if in.MaxSteps, err = optionalInt(c, paramMaxSteps); err != nil {
		return q, err
	}
	q.Filter = in
	return q, nil
}

func optionalDate(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", name, raw)
	}
	return &d, nil
}

func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: must be a whole number", name, raw)
	}
	return &n, nil
}

func formFor(res *service.Results) resultsForm {
	if res.Status != service.StatusOK {
		return resultsForm{Threshold: strconv.Itoa(res.Threshold)}
	}
	return resultsForm{
		DateStart: res.Criteria.DateStart.Format(domain.DateLayout),
		DateEnd:   res.Criteria.DateEnd.Format(domain.DateLayout),
		MinSteps:  strconv.Itoa(res.Criteria.MinSteps),
		MaxSteps:  strconv.Itoa(res.Criteria.MaxSteps),
		Keyword:   res.Criteria.Keyword,
		Threshold: strconv.Itoa(res.Threshold),
	}
}
