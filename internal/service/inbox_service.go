package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/metrics"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/tracing"
	"unifiedinbox/internal/validation"
	"unifiedinbox/pkg/circuitbreaker"
	"unifiedinbox/pkg/whatsapp"
	"unifiedinbox/pkg/whatsapp/types"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Metric names
const (
	MetricInboxMessages      = "inbox_messages_total"
	MetricWebhookParseErrors = "webhook_parse_errors_total"
	MetricWhatsAppSend       = "whatsapp_send_total"
	MetricInboxSize          = "inbox_size"
	MetricWebhookDuration    = "webhook_processing_duration"
)

// Send outcomes
const (
	SendOutcomeAccepted = "accepted"
	SendOutcomeRejected = "rejected"
	SendOutcomeError    = "error"

	SendOutcomeCircuitOpen = "circuit_open"
)

// ErrReplyFieldsRequired is returned when a reply lacks a recipient or text
var ErrReplyFieldsRequired = apperrors.NewValidationError("to,text", "to and text are required")

type InboxStore interface {
	Prepend(ctx context.Context, msg models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	Len(ctx context.Context) (int, error)
}

type InboxService interface {
	// HandleWebhook ingests a raw webhook body and returns the number of
	// records stored. Failures are logged and counted, never returned.
	HandleWebhook(ctx context.Context, body []byte) int
	Reply(ctx context.Context, to, text string) (*ReplyResult, error)
	List(ctx context.Context) ([]models.Message, error)
	Subscribe() (<-chan models.Message, func())
}

// ReplyResult is the outcome of a successful reply: the stored outbound
// record and the provider's raw response.
type ReplyResult struct {
	Record           models.Message
	ProviderResponse json.RawMessage
}

type Option func(*inboxService)

func WithBroadcaster(b *Broadcaster) Option {
	return func(s *inboxService) { s.broadcaster = b }
}

func WithMetrics(r *metrics.Registry) Option {
	return func(s *inboxService) { s.metrics = r }
}

// WithClock replaces the time and id sources used for new records
func WithClock(now func() time.Time, newID func(time.Time) string) Option {
	return func(s *inboxService) {
		s.now = now
		s.newID = newID
	}
}

type inboxService struct {
	logger      *logrus.Logger
	store       InboxStore
	client      whatsapp.Client
	normalizer  *whatsapp.Normalizer
	broadcaster *Broadcaster
	metrics     *metrics.Registry
	now         func() time.Time
	newID       func(time.Time) string
}

func NewInboxService(store InboxStore, client whatsapp.Client, logger *logrus.Logger, options ...Option) InboxService {
	s := &inboxService{
		logger:  logger,
		store:   store,
		client:  client,
		metrics: metrics.GetRegistry(),
		now:     time.Now,
		newID:   whatsapp.NewRecordID,
	}
	for _, opt := range options {
		opt(s)
	}
	s.normalizer = whatsapp.NewNormalizerWithClock(s.now, s.newID)
	return s
}

func (s *inboxService) HandleWebhook(ctx context.Context, body []byte) int {
	ctx, span := tracing.StartSpan(ctx, "inbox.handle_webhook",
		attribute.Int(LogFieldSize, len(body)))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordTimer(MetricWebhookDuration, time.Since(start), nil, "Time spent processing a webhook delivery")
	}()

	if IsVerboseLogging(ctx) {
		s.logger.WithFields(LogFields(ctx, logrus.Fields{
			LogFieldPayload: string(body),
		})).Debug("Received WhatsApp webhook")
	}

	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.metrics.IncrementCounter(MetricWebhookParseErrors, nil, "Webhook deliveries that could not be decoded")
		tracing.RecordError(ctx, err)

		// A type mismatch leaves the rest of the envelope decoded; keep going.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			s.logger.WithFields(LogFields(ctx, logrus.Fields{
				LogFieldSize: len(body),
			})).WithError(err).Warn("Skipping WhatsApp webhook: undecodable body")
			return 0
		}
		s.logger.WithFields(LogFields(ctx, logrus.Fields{
			LogFieldSize: len(body),
		})).WithError(err).Warn("Decoded WhatsApp webhook with mistyped fields")
	}

	records := s.normalizer.Normalize(&env)
	if len(records) == 0 {
		s.logger.WithFields(LogFields(ctx, nil)).Debug("Skipping WhatsApp webhook: no message or status")
		return 0
	}

	stored := 0
	for _, rec := range records {
		if err := s.store.Prepend(ctx, rec); err != nil {
			tracing.RecordError(ctx, err)
			apperrors.LogError(s.logger.WithFields(LogFields(ctx, logrus.Fields{
				LogFieldMessageID: rec.ID,
				LogFieldDirection: rec.Direction,
			})), err, "Failed to store inbox record")
			continue
		}
		stored++
		s.recordStored(ctx, rec)
	}

	tracing.AddSpanAttributes(ctx, attribute.Int(LogFieldCount, stored))
	return stored
}

func (s *inboxService) Reply(ctx context.Context, to, text string) (*ReplyResult, error) {
	if !validation.Required(to, text) {
		return nil, ErrReplyFieldsRequired
	}

	recipient := whatsapp.NormalizeRecipient(to)

	ctx, span := tracing.StartSpan(ctx, "inbox.reply")
	defer span.End()

	result, err := s.client.SendText(ctx, recipient, text)
	if err != nil {
		tracing.RecordError(ctx, err)
		logger := s.logger.WithFields(LogFields(ctx, logrus.Fields{
			LogFieldTo: recipient,
		}))
		if circuitbreaker.IsCircuitBreakerError(err) {
			s.metrics.IncrementCounter(MetricWhatsAppSend, map[string]string{"outcome": SendOutcomeCircuitOpen}, "WhatsApp send attempts")
			logger.WithError(err).Warn("WhatsApp sends suspended by circuit breaker")
			return nil, err
		}
		s.metrics.IncrementCounter(MetricWhatsAppSend, map[string]string{"outcome": SendOutcomeError}, "WhatsApp send attempts")
		apperrors.LogError(logger, err, "Failed to send WhatsApp reply")
		return nil, err
	}

	outcome := SendOutcomeAccepted
	if !result.Accepted() {
		outcome = SendOutcomeRejected
		fields := logrus.Fields{
			LogFieldTo:         recipient,
			LogFieldStatusCode: result.StatusCode,
		}
		if result.APIError != nil {
			fields[LogFieldErrorCode] = result.APIError.Code
			fields[LogFieldErrorType] = result.APIError.Type
		}
		s.logger.WithFields(LogFields(ctx, fields)).Warn("WhatsApp API rejected reply, recording as pending")
	}
	s.metrics.IncrementCounter(MetricWhatsAppSend, map[string]string{"outcome": outcome}, "WhatsApp send attempts")
	tracing.AddSpanAttributes(ctx,
		attribute.Int(LogFieldStatusCode, result.StatusCode),
		attribute.String("outcome", outcome))

	if IsVerboseLogging(ctx) {
		s.logger.WithFields(LogFields(ctx, logrus.Fields{
			LogFieldPayload: string(result.Body),
		})).Debug("WhatsApp API response")
	}

	now := s.now()
	record := models.Message{
		ID:         s.newID(now),
		Channel:    models.ChannelWhatsApp,
		Direction:  models.DirectionOutbound,
		To:         recipient,
		Text:       text,
		ReceivedAt: now.UTC(),
		Status:     models.StatusPendingConfirm,
	}
	if err := s.store.Prepend(ctx, record); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	s.recordStored(ctx, record)

	return &ReplyResult{Record: record, ProviderResponse: result.Body}, nil
}

func (s *inboxService) List(ctx context.Context) ([]models.Message, error) {
	return s.store.List(ctx)
}

func (s *inboxService) Subscribe() (<-chan models.Message, func()) {
	if s.broadcaster == nil {
		ch := make(chan models.Message)
		close(ch)
		return ch, func() {}
	}
	return s.broadcaster.Subscribe()
}

// recordStored logs, counts and publishes a record that reached the store
func (s *inboxService) recordStored(ctx context.Context, rec models.Message) {
	s.metrics.IncrementCounter(MetricInboxMessages, map[string]string{
		"direction": string(rec.Direction),
	}, "Records added to the inbox")

	if size, err := s.store.Len(ctx); err == nil {
		s.metrics.SetGauge(MetricInboxSize, float64(size), nil, "Records currently held in the inbox")
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(rec)
	}

	fields := logrus.Fields{
		LogFieldMessageID: rec.ID,
		LogFieldChannel:   rec.Channel,
		LogFieldDirection: rec.Direction,
		LogFieldStatus:    rec.Status,
	}
	if rec.From != "" {
		fields[LogFieldFrom] = rec.From
	}
	if rec.To != "" {
		fields[LogFieldTo] = rec.To
	}
	s.logger.WithFields(LogFields(ctx, fields)).Info("Stored inbox record")
}
