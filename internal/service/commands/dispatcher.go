package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/repository"
	"github.com/groow/smoke/internal/service/notify"
	"github.com/groow/smoke/internal/service/reporting"
	"github.com/groow/smoke/internal/service/runs"
	"github.com/groow/smoke/internal/smoke"
)

const (
	maxListedFailures = 20
	defaultTrendDays  = 7
	maxTrendDays      = 90
)

const helpText = `Groow smoke commands:
/status - summary of the latest run
/failures - failed requests of the latest run
/run [policy] [modules...] - start a run, e.g. /run tolerant reports audit
/trend [days] - pass rate over the last days (default 7)
/help - this message`

// RunReader reads stored runs.
type RunReader interface {
	LatestRun(ctx context.Context) (models.Summary, error)
}

// Runner validates and starts background runs.
type Runner interface {
	Validate(opts runs.Options) error
	Trigger(opts runs.Options) bool
}

// TrendReporter aggregates recent runs.
type TrendReporter interface {
	LastDays(ctx context.Context, days int) (reporting.Trend, error)
}

// Dispatcher executes parsed operator commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	runs   RunReader
	runner Runner
	trends TrendReporter
	logger *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(reader RunReader, runner Runner, trends TrendReporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runs: reader, runner: runner, trends: trends, logger: logger}
}

// HandleCommand returns the reply for cmd. Errors are reserved for storage
// failures; bad arguments produce a corrective reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStatus:
		latest, ok, err := s.latest(ctx)
		if err != nil || !ok {
			return noRunsReply, err
		}
		return notify.FormatSummary(latest), nil

	case models.CommandFailures:
		latest, ok, err := s.latest(ctx)
		if err != nil || !ok {
			return noRunsReply, err
		}
		return formatFailures(latest), nil

	case models.CommandRun:
		return s.startRun(cmd.Args, sender), nil

	case models.CommandTrend:
		days := defaultTrendDays
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n < 1 || n > maxTrendDays {
				return fmt.Sprintf("Usage: /trend [days], days between 1 and %d.", maxTrendDays), nil
			}
			days = n
		}
		trend, err := s.trends.LastDays(ctx, days)
		if err != nil {
			return "", fmt.Errorf("calculate trend: %w", err)
		}
		return trend.String(), nil

	case models.CommandHelp:
		return helpText, nil

	default:
		return "Unknown command. Supported: /status, /failures, /run, /trend, /help.", nil
	}
}

const noRunsReply = "No smoke runs recorded yet."

func (s *Service) latest(ctx context.Context) (models.Summary, bool, error) {
	latest, err := s.runs.LatestRun(ctx)
	if errors.Is(err, repository.ErrNoRuns) {
		return models.Summary{}, false, nil
	}
	if err != nil {
		return models.Summary{}, false, fmt.Errorf("load latest run: %w", err)
	}
	return latest, true, nil
}

func (s *Service) startRun(args []string, sender string) string {
	opts := ParseRunArgs(args)
	if err := s.runner.Validate(opts); err != nil {
		return fmt.Sprintf("Cannot start run: %v", err)
	}
	if !s.runner.Trigger(opts) {
		return "A smoke run is already in progress."
	}

	s.logger.Info("run triggered over whatsapp", zap.String("sender", sender), zap.String("policy", opts.Policy), zap.Strings("modules", opts.Modules))

	policy := opts.Policy
	if policy == "" {
		policy = "default"
	}
	modules := "all"
	if len(opts.Modules) > 0 {
		modules = strings.Join(opts.Modules, ", ")
	}
	return fmt.Sprintf("Smoke run started (policy %s, modules %s). Send /status when it completes.", policy, modules)
}

// ParseRunArgs treats the first known policy name as the policy and every
// other argument as a module name.
func ParseRunArgs(args []string) runs.Options {
	var opts runs.Options
	names := smoke.PolicyNames()
	for _, arg := range args {
		if opts.Policy == "" && slices.Contains(names, arg) {
			opts.Policy = arg
			continue
		}
		opts.Modules = append(opts.Modules, arg)
	}
	return opts
}

func formatFailures(summary models.Summary) string {
	failures := summary.Failures()
	if len(failures) == 0 {
		return fmt.Sprintf("Run %s has no failures.", summary.RunID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d failed of %d", summary.RunID, len(failures), summary.TotalTests)
	for i, f := range failures {
		if i == maxListedFailures {
			fmt.Fprintf(&b, "\n...and %d more", len(failures)-maxListedFailures)
			break
		}
		fmt.Fprintf(&b, "\n[%s] %s", f.Category, f.Error)
	}
	return b.String()
}
