package smoke

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/groow/smoke/internal/catalog"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/pkg/clients/marketplace"
)

// DefaultFixtureID fills every {param} segment when no fixture id is configured.
const DefaultFixtureID = "test-id"

// GenericBody is sent with POST, PUT and PATCH requests unless the policy replays a bodyless baseline.
var GenericBody = map[string]string{
	"name":   "Test",
	"value":  "test-value",
	"status": "active",
}

// API is the part of the marketplace client the runner drives.
type API interface {
	Login(ctx context.Context, email, password string) (marketplace.LoginResult, error)
	Do(ctx context.Context, method, path string, body any) (*marketplace.Response, error)
}

// Options configures a Runner.
type Options struct {
	Policy Policy
	// Role labels the summary; Email and Password are the credentials used for login.
	Role     string
	Email    string
	Password string
	// FixtureID replaces {param} path segments.
	FixtureID string
	// ParallelSuites bounds how many suites run at once. Requests inside a suite are sequential.
	ParallelSuites int
	Logger         *zap.Logger
}

// Runner executes suites against the API. The API client it is given must have
// retries disabled so every status is observed exactly once.
type Runner struct {
	api    API
	opts   Options
	logger *zap.Logger
}

// NewRunner builds a runner, defaulting to the fixed policy and one suite at a time.
func NewRunner(api API, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == nil {
		opts.Policy = fixed{}
	}
	if opts.FixtureID == "" {
		opts.FixtureID = DefaultFixtureID
	}
	if opts.ParallelSuites < 1 {
		opts.ParallelSuites = 1
	}
	return &Runner{api: api, opts: opts, logger: opts.Logger}
}

// Run logs in, then issues every endpoint of every suite. HTTP statuses never
// abort the run. On cancellation the partial summary is returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, suites []models.Suite) (models.Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID), zap.String("policy", r.opts.Policy.Name()))

	authenticated := r.login(ctx, logger)

	rec := NewRecorder()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ParallelSuites)

	for _, suite := range suites {
		g.Go(func() error {
			return r.runSuite(gctx, suite, rec, authenticated, logger)
		})
	}
	err := g.Wait()

	summary := rec.Summary()
	summary.RunID = runID
	summary.Policy = r.opts.Policy.Name()
	summary.Role = r.opts.Role
	summary.Authenticated = authenticated
	summary.Skipped = catalog.Count(suites) - summary.TotalTests

	logger.Info("smoke run finished",
		zap.Int("total", summary.TotalTests),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration))

	return summary, err
}

func (r *Runner) login(ctx context.Context, logger *zap.Logger) bool {
	if r.opts.Email == "" {
		logger.Warn("no credentials configured, running unauthenticated")
		return false
	}

	res, err := r.api.Login(ctx, r.opts.Email, r.opts.Password)
	if err != nil || !res.OK() {
		logger.Warn("login failed, continuing anyway",
			zap.String("role", r.opts.Role),
			zap.Int("status", res.StatusCode),
			zap.Error(err))
		return false
	}

	logger.Info("authenticated", zap.String("role", r.opts.Role))
	return true
}

func (r *Runner) runSuite(ctx context.Context, suite models.Suite, rec *Recorder, authenticated bool, logger *zap.Logger) error {
	for _, ep := range suite.Endpoints {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := catalog.ExpandPath(ep.Path, r.opts.FixtureID)
		var body any
		if r.opts.Policy.SendsBody(ep) {
			body = GenericBody
		}

		start := time.Now()
		resp, err := r.api.Do(ctx, ep.Method, path, body)
		elapsed := time.Since(start)

		result := models.Result{
			Endpoint:     path,
			Method:       ep.Method,
			Expected:     r.opts.Policy.Expected(ep),
			ResponseTime: elapsed.Milliseconds(),
			Timestamp:    start.UTC(),
			Category:     suite.Category,
			Module:       suite.Module,
			RequiresAuth: authenticated,
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			result.Error = err.Error()
			rec.Record(result)
			logger.Warn("request failed", zap.String("endpoint", ep.String()), zap.Error(err))
			continue
		}

		verdict := r.opts.Policy.Check(ep, resp.StatusCode)
		result.StatusCode = resp.StatusCode
		result.Success = verdict.Success
		result.Warning = verdict.Warning
		result.Error = verdict.Error
		rec.Record(result)

		switch {
		case !verdict.Success:
			logger.Warn("endpoint failed", zap.String("endpoint", ep.String()), zap.Int("status", resp.StatusCode))
		case verdict.Warning != "":
			logger.Debug(verdict.Warning, zap.String("endpoint", ep.String()))
		default:
			logger.Debug("endpoint passed", zap.String("endpoint", ep.String()), zap.Int("status", resp.StatusCode))
		}
	}
	return nil
}
