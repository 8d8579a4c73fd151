package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository"
)

// MaxRuns is how many summaries the store retains; older ones are dropped.
const MaxRuns = 1000

// Store keeps runs in process memory. It is used when no MongoDB URI is configured.
// Only the newest run keeps its per-endpoint results.
type Store struct {
	mu   sync.RWMutex
	runs []models.Summary
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) SaveRun(_ context.Context, summary models.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, summary)
	sort.SliceStable(s.runs, func(i, j int) bool { return s.runs[i].Timestamp.After(s.runs[j].Timestamp) })

	if len(s.runs) > MaxRuns {
		clear(s.runs[MaxRuns:])
		s.runs = s.runs[:MaxRuns]
	}
	for i := 1; i < len(s.runs); i++ {
		s.runs[i].Results = nil
	}
	return nil
}

func (s *Store) LatestRun(_ context.Context) (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return models.Summary{}, repository.ErrNoRuns
	}
	return s.runs[0], nil
}

func (s *Store) ListRuns(_ context.Context, limit int) ([]models.Summary, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.runs))
	out := make([]models.Summary, 0, n)
	for _, run := range s.runs[:n] {
		out = append(out, run.WithoutResults())
	}
	return out, nil
}
