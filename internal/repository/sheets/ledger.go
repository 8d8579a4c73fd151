package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/groow/smoke/internal/domain/models"
)

const (
	runsRange   = "Runs!A:J"
	headerRange = "Runs!A1:J1"
)

var ledgerHeader = []interface{}{"Timestamp", "Run ID", "Policy", "Role", "Authenticated", "Total", "Passed", "Failed", "Skipped", "Duration (s)"}

// RunLedger appends one row per smoke run to the "Runs" tab.
type RunLedger struct {
	repo Repository

	mu            sync.Mutex
	headerChecked bool
}

// NewRunLedger wraps a sheets repository.
func NewRunLedger(repo Repository) *RunLedger {
	return &RunLedger{repo: repo}
}

// AppendRun writes the header on first use of an empty tab, then the run row.
func (l *RunLedger) AppendRun(ctx context.Context, summary models.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.headerChecked {
		if err := l.ensureHeader(ctx); err != nil {
			return err
		}
		l.headerChecked = true
	}

	row := []interface{}{
		summary.Timestamp.UTC().Format(time.RFC3339),
		summary.RunID,
		summary.Policy,
		summary.Role,
		summary.Authenticated,
		summary.TotalTests,
		summary.Passed,
		summary.Failed,
		summary.Skipped,
		fmt.Sprintf("%.2f", summary.Duration.Seconds()),
	}
	if err := l.repo.WriteRow(ctx, runsRange, row); err != nil {
		return fmt.Errorf("append run %s: %w", summary.RunID, err)
	}
	return nil
}

func (l *RunLedger) ensureHeader(ctx context.Context) error {
	rows, err := l.repo.ReadRange(ctx, headerRange)
	if err != nil {
		return fmt.Errorf("read ledger header: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	if err := l.repo.WriteRow(ctx, runsRange, ledgerHeader); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	return nil
}
