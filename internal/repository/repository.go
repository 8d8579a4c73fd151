package repository

import (
	"context"
	"errors"

	"github.com/groow/smoke/internal/domain/models"
)

// ErrNoRuns is returned when no run has been stored yet.
var ErrNoRuns = errors.New("no smoke runs recorded")

// RunRepository persists smoke run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, summary models.Summary) error
	// LatestRun returns the most recent run including its results.
	LatestRun(ctx context.Context) (models.Summary, error)
	// ListRuns returns up to limit runs, newest first, without results.
	ListRuns(ctx context.Context, limit int) ([]models.Summary, error)
}

// DefaultListLimit applies when ListRuns is called with a non-positive limit.
const DefaultListLimit = 20
