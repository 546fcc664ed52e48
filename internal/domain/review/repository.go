package review

import (
	"context"

	"github.com/google/uuid"
)

// Summary aggregates a celebrity's ratings.
type Summary struct {
	Count   int64
	Average float64
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Save fails with a ConflictError if the booking already has a review.
	Save(ctx context.Context, review *Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	FindByCelebrityID(ctx context.Context, celebrityID uuid.UUID, page, limit int) ([]*Review, int64, error)
	SummaryForCelebrity(ctx context.Context, celebrityID uuid.UUID) (Summary, error)
}
