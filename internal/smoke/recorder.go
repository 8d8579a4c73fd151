package smoke

import (
	"sync"
	"time"

	"github.com/groow/smoke/internal/domain/models"
)

// Recorder collects results from concurrently running suites.
type Recorder struct {
	mu      sync.Mutex
	started time.Time
	results []models.Result
	now     func() time.Time
}

// NewRecorder starts a new session clock.
func NewRecorder() *Recorder {
	return newRecorder(time.Now)
}

func newRecorder(now func() time.Time) *Recorder {
	return &Recorder{started: now(), now: now}
}

// Record appends one result.
func (r *Recorder) Record(res models.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Len returns the number of recorded results.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// Summary aggregates everything recorded so far. Results keep recording order.
func (r *Recorder) Summary() models.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]models.Result, len(r.results))
	copy(results, r.results)

	summary := models.Summary{
		TotalTests:      len(results),
		Results:         results,
		CategorySummary: make(map[string]models.CategoryStats),
	}
	for _, res := range results {
		stats := summary.CategorySummary[res.Category]
		stats.Total++
		if res.Success {
			summary.Passed++
			stats.Passed++
		} else {
			summary.Failed++
			stats.Failed++
		}
		summary.CategorySummary[res.Category] = stats
	}

	now := r.now()
	summary.Duration = now.Sub(r.started)
	summary.Timestamp = now.UTC()
	return summary
}
