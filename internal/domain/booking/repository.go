package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// ErrPaymentReferenceUsed is returned when a processor payment reference is
// already attached to another booking.
var ErrPaymentReferenceUsed = domain.NewConflictError("payment reference has already been used for another booking")

// StaleCursor is the keyset position of the last stale booking read. The zero
// value starts from the earliest event date.
type StaleCursor struct {
	EventDate time.Time
	ID        uuid.UUID
}

// IsZero reports whether the cursor is at the start.
func (c StaleCursor) IsZero() bool {
	return c.ID == uuid.Nil
}

// CursorAfter returns the cursor positioned on bk.
func CursorAfter(bk *Booking) StaleCursor {
	return StaleCursor{EventDate: bk.EventDate(), ID: bk.ID()}
}

// Earnings summarises a celebrity's completed engagements by payout state.
type Earnings struct {
	CompletedCount int64
	PendingMinor   int64
	PaidMinor      int64
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-readable reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByPaymentReference retrieves the booking paid for by a processor
	// payment reference.
	FindByPaymentReference(ctx context.Context, reference string) (*Booking, error)

	// FindByClientID retrieves bookings made by a client with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByCelebrityID retrieves bookings for a celebrity with pagination.
	FindByCelebrityID(ctx context.Context, celebrityID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// FindStale returns up to limit pending or confirmed bookings whose event
	// date is strictly before today, ordered by (event date, id) and starting
	// strictly after the cursor.
	FindStale(ctx context.Context, today time.Time, after StaleCursor, limit int) ([]*Booking, error)

	// HasConfirmedInSlot reports whether the celebrity has a confirmed booking
	// other than excludeID on date at timeSlot.
	HasConfirmedInSlot(ctx context.Context, celebrityID uuid.UUID, date time.Time, timeSlot string, excludeID uuid.UUID) (bool, error)

	// EarningsForCelebrity sums package prices of completed bookings.
	EarningsForCelebrity(ctx context.Context, celebrityID uuid.UUID) (Earnings, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
