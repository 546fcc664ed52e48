package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
	"github.com/celebook/service-booking/internal/pkg/kafka"
)

// PayoutConfirmer marks a celebrity payout as sent. *application.BookingService implements it.
type PayoutConfirmer interface {
	ConfirmCelebrityPayout(ctx context.Context, bookingID uuid.UUID) (*application.BookingDTO, error)
}

// PaymentEventConsumer listens to payment events and records celebrity payouts.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PayoutConfirmer
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PayoutConfirmer,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentPayoutSent:
		return c.handlePayoutSent(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePayoutSent(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PayoutSentEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PayoutSentEvent data", zap.Error(err))
		return nil
	}
	if evt.BookingID == uuid.Nil {
		c.logger.Warn("payout event without booking id", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	_, err := c.service.ConfirmCelebrityPayout(ctx, evt.BookingID)
	switch {
	case err == nil:
		c.logger.Info("celebrity payout recorded", zap.String("booking_id", evt.BookingID.String()))
		return nil
	case domain.IsInvalidState(err):
		// Redelivery of an event already applied.
		c.logger.Debug("payout already recorded", zap.String("booking_id", evt.BookingID.String()))
		return nil
	case domain.IsNotFound(err):
		c.logger.Warn("payout event for unknown booking", zap.String("booking_id", evt.BookingID.String()))
		return nil
	default:
		c.logger.Error("failed to record celebrity payout",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
}
