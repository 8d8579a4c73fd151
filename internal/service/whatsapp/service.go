package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/service/commands"
	client "github.com/groow/smoke/pkg/clients/whatsapp"
)

const replyTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	operators  []string
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		operators:  cfg.Recipients(),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Delivery receipts and
// messages from numbers outside the operator list are ignored.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !slices.Contains(s.operators, msg.From) {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = fmt.Sprintf("Command failed: %v", err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	_, sendErr := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: msg.From, Body: reply})
	if sendErr != nil {
		return fmt.Errorf("reply to %s: %w", msg.From, sendErr)
	}
	return nil
}
