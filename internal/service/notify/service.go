package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/domain/models"
	client "github.com/groow/smoke/pkg/clients/whatsapp"
)

const (
	sendTimeout      = 10 * time.Second
	maxListedFailure = 10
)

// Service sends run summaries to the configured WhatsApp recipients.
type Service struct {
	client     client.Client
	recipients []string
	logger     *zap.Logger
}

// NewService wires a notification service.
func NewService(c client.Client, recipients []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: c, recipients: recipients, logger: logger}
}

// NotifyRun sends the run summary to every recipient and returns the joined
// delivery errors. Healthy runs are not announced.
func (s *Service) NotifyRun(ctx context.Context, summary models.Summary) error {
	if summary.Healthy() {
		return nil
	}
	return s.Broadcast(ctx, FormatSummary(summary))
}

// Broadcast sends body to every recipient.
func (s *Service) Broadcast(ctx context.Context, body string) error {
	var errs []error
	for _, to := range s.recipients {
		if err := s.Send(ctx, to, body); err != nil {
			s.logger.Error("failed to send notification", zap.String("to", to), zap.Error(err))
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

// Send delivers one message.
func (s *Service) Send(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: body})
	return err
}

// FormatSummary renders a run for a chat message, listing the first failures.
func FormatSummary(summary models.Summary) string {
	var b strings.Builder

	status := "PASSED"
	if !summary.Healthy() {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "Groow smoke run %s (%s)\n", status, summary.Policy)
	fmt.Fprintf(&b, "Run: %s\n", summary.RunID)
	if summary.Role != "" {
		auth := "authenticated"
		if !summary.Authenticated {
			auth = "unauthenticated"
		}
		fmt.Fprintf(&b, "Role: %s, %s\n", summary.Role, auth)
	}
	fmt.Fprintf(&b, "Passed %d/%d, failed %d", summary.Passed, summary.TotalTests, summary.Failed)
	if summary.Skipped > 0 {
		fmt.Fprintf(&b, ", skipped %d", summary.Skipped)
	}
	fmt.Fprintf(&b, " in %.1fs", summary.Duration.Seconds())

	failures := summary.Failures()
	if len(failures) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	for i, f := range failures {
		if i == maxListedFailure {
			fmt.Fprintf(&b, "\n...and %d more", len(failures)-maxListedFailure)
			break
		}
		fmt.Fprintf(&b, "\n%s %s -> %d", f.Method, f.Endpoint, f.StatusCode)
	}
	return b.String()
}
