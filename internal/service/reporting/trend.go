package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/domain/models"
)

const (
	dateLayout = "2006-01-02"
	// scanLimit caps how many stored runs a trend looks at.
	scanLimit = 1000
)

// RunLister lists stored runs, newest first.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.Summary, error)
}

// Trend aggregates the runs finished within [Start, End].
type Trend struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Runs        int           `json:"runs"`
	Healthy     int           `json:"healthy"`
	Requests    int           `json:"requests"`
	Passed      int           `json:"passed"`
	PassRate    float64       `json:"passRate"`
	AvgDuration time.Duration `json:"avgDuration"`
	WorstRunID  string        `json:"worstRunId,omitempty"`
	WorstRate   float64       `json:"worstPassRate,omitempty"`
}

// Service exposes lightweight run analytics for WhatsApp and HTTP summaries.
type Service struct {
	runs   RunLister
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(runs RunLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runs: runs, logger: logger, now: time.Now}
}

// LastDays is the trend over the trailing days up to now.
func (s *Service) LastDays(ctx context.Context, days int) (Trend, error) {
	end := s.now().UTC()
	return s.Calculate(ctx, end.AddDate(0, 0, -days), end)
}

// Calculate aggregates pass rates for runs whose timestamp falls within the window.
func (s *Service) Calculate(ctx context.Context, start, end time.Time) (Trend, error) {
	list, err := s.runs.ListRuns(ctx, scanLimit)
	if err != nil {
		return Trend{}, fmt.Errorf("list runs: %w", err)
	}

	trend := Trend{Start: start, End: end, WorstRate: math.Inf(1)}
	var total time.Duration

	for _, run := range list {
		if run.Timestamp.Before(start) || run.Timestamp.After(end) {
			continue
		}
		trend.Runs++
		if run.Healthy() {
			trend.Healthy++
		}
		trend.Requests += run.TotalTests
		trend.Passed += run.Passed
		total += run.Duration

		if run.TotalTests == 0 {
			s.logger.Debug("skip empty run for worst-run ranking", zap.String("run_id", run.RunID))
			continue
		}
		if rate := percent(run.Passed, run.TotalTests); rate < trend.WorstRate {
			trend.WorstRate = rate
			trend.WorstRunID = run.RunID
		}
	}

	if trend.WorstRunID == "" {
		trend.WorstRate = 0
	}
	if trend.Runs > 0 {
		trend.AvgDuration = total / time.Duration(trend.Runs)
	}
	if trend.Requests > 0 {
		trend.PassRate = percent(trend.Passed, trend.Requests)
	}
	return trend, nil
}

// String renders the trend for a chat message.
func (t Trend) String() string {
	window := fmt.Sprintf("%s-%s", t.Start.Format(dateLayout), t.End.Format(dateLayout))
	if t.Runs == 0 {
		return fmt.Sprintf("Smoke trend (%s): no runs recorded.", window)
	}

	msg := fmt.Sprintf("Smoke trend (%s): %d runs, %d healthy. Pass rate %.2f%% over %d requests. Average duration %.1fs.",
		window, t.Runs, t.Healthy, t.PassRate, t.Requests, t.AvgDuration.Seconds())
	if t.WorstRunID != "" && t.WorstRate < 100 {
		msg += fmt.Sprintf(" Worst run %s at %.2f%%.", shortID(t.WorstRunID), t.WorstRate)
	}
	return msg
}

func percent(part, whole int) float64 {
	rate := float64(part) / float64(whole) * 100
	return math.Round(rate*100) / 100
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
