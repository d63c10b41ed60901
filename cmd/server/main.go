package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stepsurvey/steps-survey/internal/api"
	"github.com/stepsurvey/steps-survey/internal/app"
	"github.com/stepsurvey/steps-survey/internal/config"
	"github.com/stepsurvey/steps-survey/internal/logging"
	"github.com/stepsurvey/steps-survey/internal/metrics"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml and .env")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		logging.Fatal(logging.New(config.LogConfig{}, os.Stderr), "could not load config", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)
	logger.Info("starting steps survey server", "driver", cfg.Store.Driver, "backend", cfg.Store.Backend)

	// --- Storage ---
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.Open(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logging.Fatal(logger, "could not open storage", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close storage", "err", err)
		}
	}()

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Router ---
	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.Deps{
		Survey:   a.SurveyService(),
		Results:  a.ResultsService(),
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handlers.CompressHandler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal(logger, "listen failed", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
	logger.Info("server exiting")
}
