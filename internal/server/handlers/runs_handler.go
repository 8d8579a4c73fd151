package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/groow/smoke/internal/catalog"
	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository"
	"github.com/groow/smoke/internal/service/reporting"
	"github.com/groow/smoke/internal/service/runs"
	"github.com/groow/smoke/internal/smoke"
)

// RunsService is the subset of the runs service the HTTP layer needs.
type RunsService interface {
	Suites() []models.Suite
	Validate(opts runs.Options) error
	Execute(ctx context.Context, opts runs.Options) (runs.Run, error)
}

// BackgroundRunner starts runs outside the request lifecycle.
type BackgroundRunner interface {
	Trigger(opts runs.Options) bool
	Running() bool
}

// TrendReporter aggregates recent runs.
type TrendReporter interface {
	LastDays(ctx context.Context, days int) (reporting.Trend, error)
}

// RunsHandler exposes smoke runs over HTTP.
type RunsHandler struct {
	svc        RunsService
	store      repository.RunRepository
	background BackgroundRunner
	trends     TrendReporter
	logger     *zap.Logger
}

// NewRunsHandler constructs the handler. background may be nil, which disables async runs.
func NewRunsHandler(svc RunsService, store repository.RunRepository, background BackgroundRunner, trends TrendReporter, logger *zap.Logger) *RunsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunsHandler{svc: svc, store: store, background: background, trends: trends, logger: logger}
}

type suiteView struct {
	Module    string `json:"module"`
	Category  string `json:"category"`
	Endpoints int    `json:"endpoints"`
}

// ListSuites describes the loaded catalog.
func (h *RunsHandler) ListSuites(c *gin.Context) {
	suites := h.svc.Suites()
	views := make([]suiteView, 0, len(suites))
	for _, s := range suites {
		views = append(views, suiteView{Module: s.Module, Category: s.Category, Endpoints: len(s.Endpoints)})
	}
	c.JSON(http.StatusOK, gin.H{
		"suites":    views,
		"endpoints": catalog.Count(suites),
		"policies":  smoke.PolicyNames(),
	})
}

// ListRuns returns recent runs without their per-request results.
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit := repository.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	list, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed listing runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	if list == nil {
		list = []models.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": list})
}

// Trend aggregates the runs of the trailing ?days (default 7, at most 90).
func (h *RunsHandler) Trend(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
			return
		}
		days = n
	}

	trend, err := h.trends.LastDays(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("failed calculating trend", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate trend"})
		return
	}
	c.JSON(http.StatusOK, trend)
}

// LatestRun returns the most recent run with its results.
func (h *RunsHandler) LatestRun(c *gin.Context) {
	latest, err := h.store.LatestRun(c.Request.Context())
	if errors.Is(err, repository.ErrNoRuns) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded"})
		return
	}
	if err != nil {
		h.logger.Error("failed loading latest run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest run"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

type runRequest struct {
	Policy  string   `json:"policy"`
	Modules []string `json:"modules"`
	Role    string   `json:"role"`
	Async   bool     `json:"async"`
}

// StartRun executes a run. Synchronous runs answer with the summary; async
// runs are handed to the background runner and answer 202.
func (h *RunsHandler) StartRun(c *gin.Context) {
	var req runRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	opts := runs.Options{
		Policy:  req.Policy,
		Modules: req.Modules,
		Role:    config.Role(strings.ToLower(strings.TrimSpace(req.Role))),
	}
	if err := h.svc.Validate(opts); err != nil {
		h.respondInvalid(c, err)
		return
	}

	if req.Async {
		h.startBackground(c, opts)
		return
	}

	run, err := h.svc.Execute(c.Request.Context(), opts)
	if err != nil {
		if isInvalid(err) {
			h.respondInvalid(c, err)
			return
		}
		h.logger.Warn("run interrupted", zap.String("run_id", run.Summary.RunID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "summary": run.Summary})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": run.Summary, "reports": run.Reports})
}

func (h *RunsHandler) startBackground(c *gin.Context, opts runs.Options) {
	if h.background == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "background runs are not available"})
		return
	}
	if !h.background.Trigger(opts) {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// RunStatus reports whether a background run is in flight.
func (h *RunsHandler) RunStatus(c *gin.Context) {
	running := h.background != nil && h.background.Running()
	c.JSON(http.StatusOK, gin.H{"running": running})
}

func (h *RunsHandler) respondInvalid(c *gin.Context, err error) {
	if isInvalid(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("failed validating run", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start run"})
}

func isInvalid(err error) bool {
	return errors.Is(err, smoke.ErrUnknownPolicy) ||
		errors.Is(err, catalog.ErrUnknownModule) ||
		errors.Is(err, runs.ErrNoCredentials)
}
