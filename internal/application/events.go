package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	"github.com/celebook/service-booking/internal/pkg/events"
	"github.com/celebook/service-booking/internal/pkg/kafka"
)

const eventSource = "service-booking"

// EventPublisher publishes CloudEvents to the bus. *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// eventEmitter wraps a publisher. Publishing is best effort: a failure is
// logged and never rolls back the state change that triggered it.
type eventEmitter struct {
	publisher EventPublisher
	logger    *zap.Logger
}

func (e eventEmitter) publish(ctx context.Context, eventType, key string, data interface{}) {
	if e.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		e.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := e.publisher.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		e.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (e eventEmitter) statusChanged(ctx context.Context, eventType string, bk *bookingDomain.Booking, from bookingDomain.BookingStatus, by *uuid.UUID, automatic bool) {
	e.publish(ctx, eventType, bk.ID().String(), events.BookingStatusChangedEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		ClientID:    bk.ClientID(),
		CelebrityID: bk.CelebrityID(),
		From:        string(from),
		To:          string(bk.Status()),
		ChangedBy:   by,
		Note:        bk.CancelNote(),
		Automatic:   automatic,
		OccurredAt:  bk.UpdatedAt(),
	})
}

func (e eventEmitter) notice(ctx context.Context, bk *bookingDomain.Booking, recipient uuid.UUID, message string) {
	e.publish(ctx, events.BookingNotice, recipient.String(), events.NoticeEvent{
		BookingID:   bk.ID(),
		Reference:   bk.Reference(),
		RecipientID: recipient,
		Status:      string(bk.Status()),
		Message:     message,
		OccurredAt:  bk.UpdatedAt(),
	})
}
