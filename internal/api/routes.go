package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stepsurvey/steps-survey/internal/metrics"
	"github.com/stepsurvey/steps-survey/internal/service"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Survey   service.SurveyService
	Results  service.ResultsService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter creates the gin engine with middleware, templates and routes.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(d.Logger))
	router.SetHTMLTemplate(loadTemplates())
	SetupRoutes(router, d)
	return router
}

func SetupRoutes(router *gin.Engine, d Deps) {
	surveyHandler := NewSurveyHandler(d.Survey, d.Metrics, d.Logger)
	resultsHandler := NewResultsHandler(d.Results, d.Metrics, d.Logger)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// --- Pages ---
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/survey")
	})
	router.GET("/survey", surveyHandler.SurveyPage)
	router.POST("/survey", surveyHandler.SubmitForm)
	router.GET("/results", resultsHandler.ResultsPage)

	// --- JSON API ---
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/entries", surveyHandler.CreateEntry)
		apiV1.GET("/entries", surveyHandler.ListEntries)
		apiV1.GET("/results", resultsHandler.GetResults)
		apiV1.GET("/reference", resultsHandler.GetReference)
	}
}
