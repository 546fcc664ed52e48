package booking

import (
	"strings"
	"time"

	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/google/uuid"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id             uuid.UUID
	reference      string
	clientID       uuid.UUID
	clientName     string
	celebrityID    uuid.UUID
	celebrityName  string
	celebrityImage string
	pkg            PackageSnapshot
	eventDate      time.Time
	timeSlot       string
	eventDesc      string
	location       string

	status       BookingStatus
	payoutStatus PayoutStatus

	paymentReference string
	amountPaidMinor  int64
	currency         string

	reviewed   bool
	rating     int
	comment    string
	reviewedAt *time.Time

	refundReference     string
	refundedAmountMinor int64
	refundedAt          *time.Time

	confirmedAt       *time.Time
	completedAt       *time.Time
	cancelledAt       *time.Time
	cancelNote        string
	payoutConfirmedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBookingParams holds the inputs to NewBooking.
type NewBookingParams struct {
	ClientID         uuid.UUID
	ClientName       string
	CelebrityID      uuid.UUID
	CelebrityName    string
	CelebrityImage   string
	Package          PackageSnapshot
	EventDate        time.Time
	TimeSlot         string
	EventDescription string
	Location         string
	PaymentReference string
	AmountPaidMinor  int64
	Currency         string
}

// MissingFields returns the names of required inputs that are absent, in
// request-field spelling.
func (p NewBookingParams) MissingFields() []string {
	var missing []string
	if p.CelebrityID == uuid.Nil {
		missing = append(missing, "celebrity_id")
	}
	if p.Package.IsZero() {
		missing = append(missing, "package")
	}
	if p.EventDate.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(p.TimeSlot) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(p.EventDescription) == "" {
		missing = append(missing, "event_description")
	}
	if strings.TrimSpace(p.Location) == "" {
		missing = append(missing, "location")
	}
	return missing
}

// NewBooking creates a new Booking aggregate with status=pending and payout=pending.
func NewBooking(p NewBookingParams, now time.Time) (*Booking, error) {
	if p.ClientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if missing := p.MissingFields(); len(missing) > 0 {
		return nil, domain.NewMissingFieldsError(missing...)
	}
	if p.Package.PriceMinor < 0 {
		return nil, domain.NewValidationError("package price cannot be negative")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Booking{
		id:               uuid.New(),
		reference:        reference,
		clientID:         p.ClientID,
		clientName:       p.ClientName,
		celebrityID:      p.CelebrityID,
		celebrityName:    p.CelebrityName,
		celebrityImage:   p.CelebrityImage,
		pkg:              p.Package.clone(),
		eventDate:        CalendarDate(p.EventDate, time.UTC),
		timeSlot:         strings.TrimSpace(p.TimeSlot),
		eventDesc:        strings.TrimSpace(p.EventDescription),
		location:         strings.TrimSpace(p.Location),
		status:           StatusPending,
		payoutStatus:     PayoutPending,
		paymentReference: p.PaymentReference,
		amountPaidMinor:  p.AmountPaidMinor,
		currency:         p.Currency,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Snapshot is the full persisted state of a booking. It is used only to move
// data between the aggregate and storage.
type Snapshot struct {
	ID                  uuid.UUID
	Reference           string
	ClientID            uuid.UUID
	ClientName          string
	CelebrityID         uuid.UUID
	CelebrityName       string
	CelebrityImage      string
	Package             PackageSnapshot
	EventDate           time.Time
	TimeSlot            string
	EventDescription    string
	Location            string
	Status              BookingStatus
	PayoutStatus        PayoutStatus
	PaymentReference    string
	AmountPaidMinor     int64
	Currency            string
	Reviewed            bool
	Rating              int
	Comment             string
	ReviewedAt          *time.Time
	RefundReference     string
	RefundedAmountMinor int64
	RefundedAt          *time.Time
	ConfirmedAt         *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CancelNote          string
	PayoutConfirmedAt   *time.Time
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(s Snapshot) *Booking {
	return &Booking{
		id:                  s.ID,
		reference:           s.Reference,
		clientID:            s.ClientID,
		clientName:          s.ClientName,
		celebrityID:         s.CelebrityID,
		celebrityName:       s.CelebrityName,
		celebrityImage:      s.CelebrityImage,
		pkg:                 s.Package.clone(),
		eventDate:           s.EventDate,
		timeSlot:            s.TimeSlot,
		eventDesc:           s.EventDescription,
		location:            s.Location,
		status:              s.Status,
		payoutStatus:        s.PayoutStatus,
		paymentReference:    s.PaymentReference,
		amountPaidMinor:     s.AmountPaidMinor,
		currency:            s.Currency,
		reviewed:            s.Reviewed,
		rating:              s.Rating,
		comment:             s.Comment,
		reviewedAt:          s.ReviewedAt,
		refundReference:     s.RefundReference,
		refundedAmountMinor: s.RefundedAmountMinor,
		refundedAt:          s.RefundedAt,
		confirmedAt:         s.ConfirmedAt,
		completedAt:         s.CompletedAt,
		cancelledAt:         s.CancelledAt,
		cancelNote:          s.CancelNote,
		payoutConfirmedAt:   s.PayoutConfirmedAt,
		version:             s.Version,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
	}
}

// Snapshot returns the persisted state of the booking.
func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:                  b.id,
		Reference:           b.reference,
		ClientID:            b.clientID,
		ClientName:          b.clientName,
		CelebrityID:         b.celebrityID,
		CelebrityName:       b.celebrityName,
		CelebrityImage:      b.celebrityImage,
		Package:             b.pkg.clone(),
		EventDate:           b.eventDate,
		TimeSlot:            b.timeSlot,
		EventDescription:    b.eventDesc,
		Location:            b.location,
		Status:              b.status,
		PayoutStatus:        b.payoutStatus,
		PaymentReference:    b.paymentReference,
		AmountPaidMinor:     b.amountPaidMinor,
		Currency:            b.currency,
		Reviewed:            b.reviewed,
		Rating:              b.rating,
		Comment:             b.comment,
		ReviewedAt:          b.reviewedAt,
		RefundReference:     b.refundReference,
		RefundedAmountMinor: b.refundedAmountMinor,
		RefundedAt:          b.refundedAt,
		ConfirmedAt:         b.confirmedAt,
		CompletedAt:         b.completedAt,
		CancelledAt:         b.cancelledAt,
		CancelNote:          b.cancelNote,
		PayoutConfirmedAt:   b.payoutConfirmedAt,
		Version:             b.version,
		CreatedAt:           b.createdAt,
		UpdatedAt:           b.updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// ClientID returns the booking client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// ClientName returns the client's display name at booking time.
func (b *Booking) ClientName() string { return b.clientName }

// CelebrityID returns the booked celebrity's user ID.
func (b *Booking) CelebrityID() uuid.UUID { return b.celebrityID }

// CelebrityName returns the celebrity's display name at booking time.
func (b *Booking) CelebrityName() string { return b.celebrityName }

// CelebrityImage returns the celebrity's image URL at booking time.
func (b *Booking) CelebrityImage() string { return b.celebrityImage }

// Package returns a copy of the package snapshot.
func (b *Booking) Package() PackageSnapshot { return b.pkg.clone() }

// EventDate returns the civil date of the event (midnight UTC).
func (b *Booking) EventDate() time.Time { return b.eventDate }

// TimeSlot returns the free-text time slot label.
func (b *Booking) TimeSlot() string { return b.timeSlot }

// EventDescription returns the client's description of the event.
func (b *Booking) EventDescription() string { return b.eventDesc }

// Location returns the event location.
func (b *Booking) Location() string { return b.location }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PayoutStatus returns whether the celebrity has been paid out.
func (b *Booking) PayoutStatus() PayoutStatus { return b.payoutStatus }

// PaymentReference returns the processor's transaction reference.
func (b *Booking) PaymentReference() string { return b.paymentReference }

// AmountPaidMinor returns the verified amount paid at checkout.
func (b *Booking) AmountPaidMinor() int64 { return b.amountPaidMinor }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Reviewed reports whether the client has reviewed the booking.
func (b *Booking) Reviewed() bool { return b.reviewed }

// Rating returns the review rating, 0 when not reviewed.
func (b *Booking) Rating() int { return b.rating }

// Comment returns the review comment.
func (b *Booking) Comment() string { return b.comment }

// ReviewedAt returns when the review was submitted.
func (b *Booking) ReviewedAt() *time.Time { return b.reviewedAt }

// RefundReference returns the payout reversal reference.
func (b *Booking) RefundReference() string { return b.refundReference }

// RefundedAmountMinor returns the amount refunded to the client.
func (b *Booking) RefundedAmountMinor() int64 { return b.refundedAmountMinor }

// RefundedAt returns when the refund was recorded.
func (b *Booking) RefundedAt() *time.Time { return b.refundedAt }

// ConfirmedAt returns when the celebrity accepted.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CompletedAt returns when the booking was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns when the booking was cancelled or declined.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation or decline note.
func (b *Booking) CancelNote() string { return b.cancelNote }

// PayoutConfirmedAt returns when the payout was marked paid.
func (b *Booking) PayoutConfirmedAt() *time.Time { return b.payoutConfirmedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsParty reports whether userID is the client or the celebrity of this booking.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return userID == b.clientID || userID == b.celebrityID
}

// --- Behavior ---

func (b *Booking) transition(target BookingStatus, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// Accept transitions the booking from pending to confirmed.
func (b *Booking) Accept(now time.Time) error {
	if err := b.transition(StatusConfirmed, now); err != nil {
		return err
	}
	t := now.UTC()
	b.confirmedAt = &t
	return nil
}

// Decline transitions the booking from pending to declined.
func (b *Booking) Decline(note string, now time.Time) error {
	return b.Cancel(StatusDeclined, note, now)
}

// Cancel moves the booking to target, which must be cancelled or declined.
// The source state is checked against the state machine, so completed or
// refunded bookings cannot be cancelled.
func (b *Booking) Cancel(target BookingStatus, note string, now time.Time) error {
	if target != StatusCancelled && target != StatusDeclined {
		return domain.NewValidationError("target status must be cancelled or declined")
	}
	if err := b.transition(target, now); err != nil {
		return err
	}
	t := now.UTC()
	b.cancelledAt = &t
	b.cancelNote = note
	return nil
}

// Complete transitions the booking from confirmed to completed.
func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(StatusCompleted, now); err != nil {
		return err
	}
	t := now.UTC()
	b.completedAt = &t
	return nil
}

// SubmitReview attaches the client's single review to a completed booking.
func (b *Booking) SubmitReview(rating int, comment string, now time.Time) error {
	if b.status != StatusCompleted {
		return domain.NewInvalidStateError(string(b.status), "reviewed")
	}
	if b.reviewed {
		return domain.NewConflictError("booking has already been reviewed")
	}
	if rating < 1 || rating > 5 {
		return domain.NewValidationError("rating must be between 1 and 5")
	}
	t := now.UTC()
	b.reviewed = true
	b.rating = rating
	b.comment = strings.TrimSpace(comment)
	b.reviewedAt = &t
	b.updatedAt = t
	return nil
}

// CanRefund reports whether the booking may still be refunded.
func (b *Booking) CanRefund() error {
	if !b.status.CanTransitionTo(StatusRefunded) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRefunded))
	}
	return nil
}

// MarkRefunded records a successful payout reversal and moves to refunded.
func (b *Booking) MarkRefunded(reference string, amountMinor int64, now time.Time) error {
	if err := b.transition(StatusRefunded, now); err != nil {
		return err
	}
	t := now.UTC()
	b.refundReference = reference
	b.refundedAmountMinor = amountMinor
	b.refundedAt = &t
	return nil
}

// ConfirmPayout marks the celebrity as paid out. It does not look at the
// booking status: a refunded booking may still be paid out.
func (b *Booking) ConfirmPayout(now time.Time) error {
	if b.payoutStatus != PayoutPending {
		return domain.NewInvalidStateError(string(b.payoutStatus), string(PayoutPaid))
	}
	t := now.UTC()
	b.payoutStatus = PayoutPaid
	b.payoutConfirmedAt = &t
	b.updatedAt = t
	return nil
}

// IsStale reports whether the event date is strictly before today.
func (b *Booking) IsStale(today time.Time) bool {
	return b.eventDate.Before(today)
}

// Reconcile applies the time-passage rule: a stale pending booking is
// cancelled and a stale confirmed booking is completed. It returns the new
// status and whether anything changed. Applying it twice is a no-op the second
// time.
func (b *Booking) Reconcile(today, now time.Time) (BookingStatus, bool, error) {
	if !b.IsStale(today) {
		return b.status, false, nil
	}
	switch b.status {
	case StatusPending:
		if err := b.Cancel(StatusCancelled, AutoCancelNote, now); err != nil {
			return b.status, false, err
		}
		return b.status, true, nil
	case StatusConfirmed:
		if err := b.Complete(now); err != nil {
			return b.status, false, err
		}
		return b.status, true, nil
	}
	return b.status, false, nil
}

// AutoCancelNote is recorded on bookings the sweep cancels.
const AutoCancelNote = "event date passed before the celebrity responded"

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
