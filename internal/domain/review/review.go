package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// Review is a client's rating of a completed booking. There is at most one
// per booking and it cannot be edited.
type Review struct {
	bookingID     uuid.UUID
	celebrityID   uuid.UUID
	clientID      uuid.UUID
	celebrityName string
	clientName    string
	rating        int
	comment       string
	createdAt     time.Time
}

// NewReviewParams holds the inputs to NewReview.
type NewReviewParams struct {
	BookingID     uuid.UUID
	CelebrityID   uuid.UUID
	ClientID      uuid.UUID
	CelebrityName string
	ClientName    string
	Rating        int
	Comment       string
}

// NewReview creates a review record.
func NewReview(p NewReviewParams, now time.Time) (*Review, error) {
	if p.BookingID == uuid.Nil || p.CelebrityID == uuid.Nil || p.ClientID == uuid.Nil {
		return nil, domain.NewValidationError("booking, celebrity and client IDs are required")
	}
	if p.Rating < 1 || p.Rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	return &Review{
		bookingID:     p.BookingID,
		celebrityID:   p.CelebrityID,
		clientID:      p.ClientID,
		celebrityName: p.CelebrityName,
		clientName:    p.ClientName,
		rating:        p.Rating,
		comment:       strings.TrimSpace(p.Comment),
		createdAt:     now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Review from persistence.
func Reconstruct(bookingID, celebrityID, clientID uuid.UUID, celebrityName, clientName string, rating int, comment string, createdAt time.Time) *Review {
	return &Review{
		bookingID:     bookingID,
		celebrityID:   celebrityID,
		clientID:      clientID,
		celebrityName: celebrityName,
		clientName:    clientName,
		rating:        rating,
		comment:       comment,
		createdAt:     createdAt,
	}
}

// Getters.
func (r *Review) BookingID() uuid.UUID   { return r.bookingID }
func (r *Review) CelebrityID() uuid.UUID { return r.celebrityID }
func (r *Review) ClientID() uuid.UUID    { return r.clientID }
func (r *Review) CelebrityName() string  { return r.celebrityName }
func (r *Review) ClientName() string     { return r.clientName }
func (r *Review) Rating() int            { return r.rating }
func (r *Review) Comment() string        { return r.comment }
func (r *Review) CreatedAt() time.Time   { return r.createdAt }
