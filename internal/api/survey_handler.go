// internal/api/survey_handler.go
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/metrics"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/service"
)

// latestShown is how many rows the success page lists.
const latestShown = 5

// SurveyHandler serves the submission form and the entries API.
type SurveyHandler struct {
	survey  service.SurveyService
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(survey service.SurveyService, m *metrics.Metrics, logger *slog.Logger) *SurveyHandler {
	return &SurveyHandler{survey: survey, metrics: m, log: logger, now: time.Now}
}

// --- DTOs for API (Data Transfer Objects) ---

// SurveyForm is the HTML form submission. Every field is raw text.
type SurveyForm struct {
	Date   string `form:"date"`
	Steps  string `form:"steps"`
	Energy string `form:"energy"`
	Notes  string `form:"notes"`
}

// CreateEntryRequest is the JSON body of POST /api/v1/entries.
// Steps and energy may be sent as strings or bare numbers; either way the
// validator sees the literal text.
type CreateEntryRequest struct {
	Date   string  `json:"date"`
	Steps  rawText `json:"steps"`
	Energy rawText `json:"energy"`
	Notes  string  `json:"notes"`
}

// EntryResponse is the DTO for returning an entry.
type EntryResponse struct {
	Date   string `json:"date"`
	Steps  int    `json:"steps"`
	Energy int    `json:"energy"`
	Notes  string `json:"notes"`
}

// ValidationErrorResponse describes a rejected submission.
type ValidationErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field"`
}

// MapEntryToResponse converts a domain.Entry to EntryResponse DTO.
func MapEntryToResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		Date:   e.DateString(),
		Steps:  e.Steps,
		Energy: e.Energy,
		Notes:  e.Notes,
	}
}

// MapEntriesToResponse converts a table to a slice of EntryResponse DTOs.
func MapEntriesToResponse(table domain.EntryTable) []EntryResponse {
	responses := make([]EntryResponse, len(table))
	for i, e := range table {
		responses[i] = MapEntryToResponse(e)
	}
	return responses
}

// rawText keeps the literal JSON text of a string or number.
type rawText string

func (r *rawText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("must be a string or a number")
	}
	*r = rawText(n.String())
	return nil
}

// surveyPage is the template data of survey.tmpl.
type surveyPage struct {
	Form    SurveyForm
	Error   string
	Success string
	Latest  []EntryResponse
}

// --- Handler Methods ---

// SurveyPage renders the empty form with today's date.
func (h *SurveyHandler) SurveyPage(c *gin.Context) {
	c.HTML(http.StatusOK, "survey.tmpl", surveyPage{
		Form: SurveyForm{Date: h.now().Format(domain.DateLayout)},
	})
}

// SubmitForm handles the HTML form. Validation and persistence failures
// re-render the form with the input kept so the user can correct and resubmit.
func (h *SurveyHandler) SubmitForm(c *gin.Context) {
	var form SurveyForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "survey.tmpl", surveyPage{Form: form, Error: "Error: could not read the form. Please try again."})
		return
	}

	entry, err := h.submit(c, service.SubmissionInput(form))
	if err != nil {
		status, msg := submissionFailure(err)
		c.HTML(status, "survey.tmpl", surveyPage{Form: form, Error: msg})
		return
	}

	latest, err := h.survey.Latest(c.Request.Context(), latestShown)
	if err != nil {
		loggerFor(c, h.log).Warn("saved entry but could not reload latest entries", "err", err)
	}
	c.HTML(http.StatusOK, "survey.tmpl", surveyPage{
		Form:    SurveyForm{Date: entry.DateString()},
		Success: "Entry saved successfully!",
		Latest:  MapEntriesToResponse(latest),
	})
}

// CreateEntry handles POST /api/v1/entries.
func (h *SurveyHandler) CreateEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.submit(c, service.SubmissionInput{
		Date:   req.Date,
		Steps:  string(req.Steps),
		Energy: string(req.Energy),
		Notes:  req.Notes,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
				Error: verr.Error(),
				Code:  verr.Code(),
				Field: verr.Field,
			})
			return
		}
		_, msg := submissionFailure(err)
		abortWithError(c, http.StatusInternalServerError, msg)
		return
	}

	c.JSON(http.StatusCreated, MapEntryToResponse(entry))
}

// ListEntries handles GET /api/v1/entries. An empty store is not an error.
func (h *SurveyHandler) ListEntries(c *gin.Context) {
	table, err := h.survey.Entries(c.Request.Context())
	if errors.Is(err, repository.ErrEmptyStore) {
		c.JSON(http.StatusOK, gin.H{"entries": []EntryResponse{}, "empty": true})
		return
	}
	if err != nil {
		loggerFor(c, h.log).Error("failed to load entries", "err", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to load entries.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": MapEntriesToResponse(table), "empty": false})
}

func (h *SurveyHandler) submit(c *gin.Context, in service.SubmissionInput) (domain.Entry, error) {
	entry, err := h.survey.Submit(c.Request.Context(), in)
	var verr *service.ValidationError
	switch {
	case err == nil:
		h.metrics.ObserveSubmission(metrics.OutcomeSaved, "")
	case errors.As(err, &verr):
		h.metrics.ObserveSubmission(metrics.OutcomeValidationFailed, verr.Code())
	default:
		h.metrics.ObserveSubmission(metrics.OutcomePersistFailed, "")
		loggerFor(c, h.log).Error("submission not saved", "err", err)
	}
	return entry, err
}

// submissionFailure maps a Submit error to a status and a user-facing message.
func submissionFailure(err error) (int, string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, validationMessage(verr)
	}
	var perr *repository.PersistenceError
	if errors.As(err, &perr) {
		return http.StatusInternalServerError, "Failed to save entry: " + perr.Err.Error()
	}
	return http.StatusInternalServerError, "Failed to save entry: " + err.Error()
}

func validationMessage(verr *service.ValidationError) string {
	switch verr.Kind {
	case service.ErrNonIntegerSteps:
		return "Error: Steps must be a whole number. Please enter digits only (no letters or symbols)."
	case service.ErrNonIntegerEnergy:
		return "Error: Energy must be a whole number between 1 and 10. Please enter digits only."
	case service.ErrEnergyOutOfRange:
		return "Error: Energy must be between 1 and 10."
	case service.ErrInvalidDate:
		return "Error: Please pick a valid date."
	}
	return "Error: " + verr.Error()
}
