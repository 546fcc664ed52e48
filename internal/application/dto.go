package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	"github.com/celebook/service-booking/internal/pkg/auth"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  auth.Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == auth.RoleAdmin }

// PackageDTO is the package snapshot stored on a booking.
type PackageDTO struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Title       string    `json:"title"`
	PriceMinor  int64     `json:"price"`
	Duration    string    `json:"duration,omitempty"`
	Description string    `json:"description,omitempty"`
	Features    []string  `json:"features,omitempty"`
}

// ReviewDTO is the review attached to a booking.
type ReviewDTO struct {
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Reference           string     `json:"reference"`
	ClientID            uuid.UUID  `json:"client_id"`
	ClientName          string     `json:"client_name"`
	CelebrityID         uuid.UUID  `json:"celebrity_id"`
	CelebrityName       string     `json:"celebrity_name"`
	CelebrityImage      string     `json:"celebrity_image,omitempty"`
	Package             PackageDTO `json:"package"`
	Date                string     `json:"date"`
	Time                string     `json:"time"`
	EventDescription    string     `json:"event_description"`
	Location            string     `json:"location"`
	Status              string     `json:"status"`
	PayoutStatus        string     `json:"celeb_payment_status"`
	FeeMinor            int64      `json:"service_fee"`
	TotalMinor          int64      `json:"total"`
	Currency            string     `json:"currency"`
	PaymentReference    string     `json:"payment_reference,omitempty"`
	AmountPaidMinor     int64      `json:"amount_paid"`
	Reviewed            bool       `json:"reviewed"`
	Review              *ReviewDTO `json:"review,omitempty"`
	RefundReference     string     `json:"refund_reference,omitempty"`
	RefundedAmountMinor int64      `json:"refunded_amount,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CancelNote          string     `json:"cancel_note,omitempty"`
	PayoutConfirmedAt   *time.Time `json:"payout_confirmed_at,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toBookingDTO(bk *bookingDomain.Booking, pricing bookingDomain.PricingStrategy) BookingDTO {
	pkg := bk.Package()
	dto := BookingDTO{
		ID:             bk.ID(),
		Reference:      bk.Reference(),
		ClientID:       bk.ClientID(),
		ClientName:     bk.ClientName(),
		CelebrityID:    bk.CelebrityID(),
		CelebrityName:  bk.CelebrityName(),
		CelebrityImage: bk.CelebrityImage(),
		Package: PackageDTO{
			ServiceID:   pkg.ServiceID,
			Title:       pkg.Title,
			PriceMinor:  pkg.PriceMinor,
			Duration:    pkg.Duration,
			Description: pkg.Description,
			Features:    pkg.Features,
		},
		Date:                bk.EventDate().Format(bookingDomain.DateLayout),
		Time:                bk.TimeSlot(),
		EventDescription:    bk.EventDescription(),
		Location:            bk.Location(),
		Status:              string(bk.Status()),
		PayoutStatus:        string(bk.PayoutStatus()),
		TotalMinor:          pkg.PriceMinor,
		Currency:            bk.Currency(),
		PaymentReference:    bk.PaymentReference(),
		AmountPaidMinor:     bk.AmountPaidMinor(),
		Reviewed:            bk.Reviewed(),
		RefundReference:     bk.RefundReference(),
		RefundedAmountMinor: bk.RefundedAmountMinor(),
		RefundedAt:          bk.RefundedAt(),
		ConfirmedAt:         bk.ConfirmedAt(),
		CompletedAt:         bk.CompletedAt(),
		CancelledAt:         bk.CancelledAt(),
		CancelNote:          bk.CancelNote(),
		PayoutConfirmedAt:   bk.PayoutConfirmedAt(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
	if pricing != nil {
		if q, err := pricing.Quote(pkg.PriceMinor); err == nil {
			dto.FeeMinor = q.FeeMinor
			dto.TotalMinor = q.TotalMinor
		}
	}
	if bk.Reviewed() {
		dto.Review = &ReviewDTO{
			Rating:     bk.Rating(),
			Comment:    bk.Comment(),
			ReviewedAt: bk.ReviewedAt(),
		}
	}
	return dto
}

func toBookingDTOs(bookings []*bookingDomain.Booking, pricing bookingDomain.PricingStrategy) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk, pricing)
	}
	return dtos
}
