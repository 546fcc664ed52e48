package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/celebook/service-booking/internal/application"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
	"github.com/celebook/service-booking/internal/pkg/kafka"
)

type stubConfirmer struct {
	err   error
	calls []uuid.UUID
}

func (s *stubConfirmer) ConfirmCelebrityPayout(_ context.Context, bookingID uuid.UUID) (*application.BookingDTO, error) {
	s.calls = append(s.calls, bookingID)
	if s.err != nil {
		return nil, s.err
	}
	return &application.BookingDTO{ID: bookingID, PayoutStatus: "paid"}, nil
}

func payoutMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-payment", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicPaymentEvents, Value: raw}
}

func TestHandleMessage_PayoutSent(t *testing.T) {
	bookingID := uuid.New()
	tests := []struct {
		name       string
		confirmErr error
		wantErr    bool
	}{
		{name: "recorded"},
		{name: "already paid is not retried", confirmErr: domain.NewInvalidStateError("paid", "paid")},
		{name: "unknown booking is dropped", confirmErr: domain.NewNotFoundError("Booking", bookingID.String())},
		{name: "storage failure is retried", confirmErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubConfirmer{err: tt.confirmErr}
			c := &PaymentEventConsumer{service: svc, logger: zap.NewNop()}

			err := c.handleMessage(context.Background(), payoutMessage(t, events.PaymentPayoutSent, events.PayoutSentEvent{
				BookingID:  bookingID,
				Reference:  "BK-ABCDEFGH",
				OccurredAt: time.Now(),
			}))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []uuid.UUID{bookingID}, svc.calls)
		})
	}
}

func TestHandleMessage_IgnoresOtherEvents(t *testing.T) {
	svc := &stubConfirmer{}
	c := &PaymentEventConsumer{service: svc, logger: zap.NewNop()}

	err := c.handleMessage(context.Background(), payoutMessage(t, "payment.initiated", map[string]string{"id": "x"}))

	assert.NoError(t, err)
	assert.Empty(t, svc.calls)
}

func TestHandleMessage_MalformedPayloadIsDropped(t *testing.T) {
	svc := &stubConfirmer{}
	c := &PaymentEventConsumer{service: svc, logger: zap.NewNop()}

	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), payoutMessage(t, events.PaymentPayoutSent, map[string]string{"booking_id": ""})))
	assert.Empty(t, svc.calls)
}
