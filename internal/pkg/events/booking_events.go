// Package events defines the topics, event types and payloads exchanged on
// the message bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types.
const (
	BookingRequested       = "booking.requested"
	BookingAccepted        = "booking.accepted"
	BookingDeclined        = "booking.declined"
	BookingCancelled       = "booking.cancelled"
	BookingCompleted       = "booking.completed"
	BookingReviewed        = "booking.reviewed"
	BookingRefunded        = "booking.refunded"
	BookingPayoutConfirmed = "booking.payout_confirmed"
	BookingNotice          = "booking.notice"
)

// Payment event types consumed by this service.
const (
	PaymentPayoutSent = "payment.payout_sent"
)

// BookingRequestedEvent is published when a client creates a booking.
type BookingRequestedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	ClientID    uuid.UUID `json:"client_id"`
	CelebrityID uuid.UUID `json:"celebrity_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	EventDate   string    `json:"event_date"`
	TimeSlot    string    `json:"time_slot"`
	PriceMinor  int64     `json:"price_minor"`
	TotalMinor  int64     `json:"total_minor"`
	Currency    string    `json:"currency"`
	PaymentRef  string    `json:"payment_reference,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on every lifecycle transition.
type BookingStatusChangedEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	Reference   string     `json:"reference"`
	ClientID    uuid.UUID  `json:"client_id"`
	CelebrityID uuid.UUID  `json:"celebrity_id"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	ChangedBy   *uuid.UUID `json:"changed_by,omitempty"`
	Note        string     `json:"note,omitempty"`
	Automatic   bool       `json:"automatic"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// BookingReviewedEvent is published when a client reviews a booking.
type BookingReviewedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	CelebrityID uuid.UUID `json:"celebrity_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Rating      int       `json:"rating"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingRefundedEvent is published after a successful payout reversal.
type BookingRefundedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	ClientID        uuid.UUID `json:"client_id"`
	AmountMinor     int64     `json:"amount_minor"`
	Currency        string    `json:"currency"`
	RefundReference string    `json:"refund_reference"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// PayoutConfirmedEvent is published when a celebrity is marked paid.
type PayoutConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	CelebrityID uuid.UUID `json:"celebrity_id"`
	PriceMinor  int64     `json:"price_minor"`
	Status      string    `json:"booking_status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NoticeEvent is a user-facing notification. Delivery is at-least-once, so
// consumers may see the same notice more than once.
type NoticeEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PayoutSentEvent is received from the payment service once a celebrity has
// been paid for a booking.
type PayoutSentEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	OccurredAt time.Time `json:"occurred_at"`
}
