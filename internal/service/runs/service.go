package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/catalog"
	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/report"
	"github.com/groow/smoke/internal/repository"
	"github.com/groow/smoke/internal/smoke"
)

// ErrNoCredentials is returned for roles without a configured account.
var ErrNoCredentials = errors.New("no credentials configured for role")

// persistTimeout bounds post-run side effects, which run even when the run was cancelled.
const persistTimeout = 30 * time.Second

// Options selects what a run covers. Zero values fall back to configured defaults.
type Options struct {
	Policy  string
	Modules []string
	Role    config.Role
}

// Run is the outcome of Execute.
type Run struct {
	Summary models.Summary
	Reports report.Files
}

// Ledger appends run rows to an external sheet.
type Ledger interface {
	AppendRun(ctx context.Context, summary models.Summary) error
}

// Notifier announces failing runs.
type Notifier interface {
	NotifyRun(ctx context.Context, summary models.Summary) error
}

// Deps wires the service. Ledger and Notifier are optional.
type Deps struct {
	// NewAPI returns a fresh API client per run so tokens never leak between roles.
	NewAPI      func() smoke.API
	Suites      []models.Suite
	Credentials config.CredentialsConfig
	Smoke       config.SmokeConfig
	Repo        repository.RunRepository
	Ledger      Ledger
	Notifier    Notifier
	Logger      *zap.Logger
}

// Service orchestrates a smoke run end to end.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

// NewService wires a runs service.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: deps.Logger}
}

// Suites returns the catalog the service runs against.
func (s *Service) Suites() []models.Suite {
	return s.deps.Suites
}

// Validate resolves the options without running anything.
func (s *Service) Validate(opts Options) error {
	_, _, _, err := s.resolve(opts)
	return err
}

// Execute loads, filters, runs, reports, persists and notifies. Failures after
// the run itself are logged and never returned. A cancelled run still returns
// its partial summary together with the context error.
func (s *Service) Execute(ctx context.Context, opts Options) (Run, error) {
	policy, account, suites, err := s.resolve(opts)
	if err != nil {
		return Run{}, err
	}
	role := opts.Role
	if role == "" {
		role = config.RoleAdmin
	}

	runner := smoke.NewRunner(s.deps.NewAPI(), smoke.Options{
		Policy:         policy,
		Role:           string(role),
		Email:          account.Email,
		Password:       account.Password,
		FixtureID:      s.deps.Smoke.FixtureID,
		ParallelSuites: s.deps.Smoke.ParallelSuites,
		Logger:         s.logger.Named("runner"),
	})

	summary, runErr := runner.Run(ctx, suites)
	run := Run{Summary: summary}

	afterCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if s.deps.Smoke.ReportDir != "" {
		files, err := report.WriteAll(s.deps.Smoke.ReportDir, ReportBasename(summary), summary)
		if err != nil {
			s.logger.Error("failed to write reports", zap.String("run_id", summary.RunID), zap.Error(err))
		} else {
			run.Reports = files
		}
	}

	if s.deps.Repo != nil {
		if err := s.deps.Repo.SaveRun(afterCtx, summary); err != nil {
			s.logger.Error("failed to persist run", zap.String("run_id", summary.RunID), zap.Error(err))
		}
	}

	if s.deps.Ledger != nil {
		if err := s.deps.Ledger.AppendRun(afterCtx, summary); err != nil {
			s.logger.Error("failed to append run to ledger", zap.String("run_id", summary.RunID), zap.Error(err))
		}
	}

	if s.deps.Notifier != nil && !summary.Healthy() {
		if err := s.deps.Notifier.NotifyRun(afterCtx, summary); err != nil {
			s.logger.Error("failed to notify run", zap.String("run_id", summary.RunID), zap.Error(err))
		}
	}

	return run, runErr
}

func (s *Service) resolve(opts Options) (smoke.Policy, config.Account, []models.Suite, error) {
	name := opts.Policy
	if name == "" {
		name = s.deps.Smoke.Policy
	}
	policy, err := smoke.ParsePolicy(name)
	if err != nil {
		return nil, config.Account{}, nil, err
	}

	role := opts.Role
	if role == "" {
		role = config.RoleAdmin
	}
	account, ok := s.deps.Credentials.Account(role)
	if !ok {
		return nil, config.Account{}, nil, fmt.Errorf("%w: %q", ErrNoCredentials, role)
	}

	suites := s.deps.Suites
	if len(opts.Modules) > 0 {
		if suites, err = catalog.Filter(suites, opts.Modules...); err != nil {
			return nil, config.Account{}, nil, err
		}
	}
	return policy, account, suites, nil
}

// ReportBasename names report files after the policy, finish time and run id prefix.
func ReportBasename(summary models.Summary) string {
	id := summary.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("smoke-%s-%s-%s", summary.Policy, summary.Timestamp.UTC().Format("20060102T150405Z"), id)
}
