package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	"github.com/celebook/service-booking/internal/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                  uuid.UUID                                         `gorm:"type:uuid;primaryKey"`
	Reference           string                                            `gorm:"uniqueIndex;not null;size:20"`
	ClientID            uuid.UUID                                         `gorm:"type:uuid;index;not null"`
	ClientName          string                                            `gorm:"size:200"`
	CelebrityID         uuid.UUID                                         `gorm:"type:uuid;index;not null"`
	CelebrityName       string                                            `gorm:"size:200"`
	CelebrityImage      string                                            `gorm:"type:text"`
	Package             datatypes.JSONType[bookingDomain.PackageSnapshot] `gorm:"type:jsonb;not null"`
	PriceMinor          int64                                             `gorm:"not null"`
	EventDate           datatypes.Date                                    `gorm:"type:date;not null;index"`
	TimeSlot            string                                            `gorm:"size:50;not null"`
	EventDescription    string                                            `gorm:"type:text;not null"`
	Location            string                                            `gorm:"size:500;not null"`
	Status              string                                            `gorm:"not null;size:30;index"`
	PayoutStatus        string                                            `gorm:"not null;size:20;default:'pending'"`
	PaymentReference    string                                            `gorm:"size:100;index"`
	AmountPaidMinor     int64                                             `gorm:"not null;default:0"`
	Currency            string                                            `gorm:"not null;size:3;default:'NGN'"`
	Reviewed            bool                                              `gorm:"not null;default:false"`
	Rating              int                                               `gorm:""`
	Comment             string                                            `gorm:"type:text"`
	ReviewedAt          *time.Time                                        `gorm:""`
	RefundReference     string                                            `gorm:"size:100"`
	RefundedAmountMinor int64                                             `gorm:"not null;default:0"`
	RefundedAt          *time.Time                                        `gorm:""`
	ConfirmedAt         *time.Time                                        `gorm:""`
	CompletedAt         *time.Time                                        `gorm:""`
	CancelledAt         *time.Time                                        `gorm:""`
	CancelNote          string                                            `gorm:"size:500"`
	PayoutConfirmedAt   *time.Time                                        `gorm:""`
	Version             int64                                             `gorm:"not null;default:1"`
	CreatedAt           time.Time                                         `gorm:"not null"`
	UpdatedAt           time.Time                                         `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its human-readable reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByPaymentReference retrieves the booking paid for by a processor reference.
func (r *GormBookingRepository) FindByPaymentReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by payment reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByClientID retrieves bookings made by a client with pagination.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("client_id = ?", clientID), page, limit)
}

// FindByCelebrityID retrieves bookings for a celebrity with pagination.
func (r *GormBookingRepository) FindByCelebrityID(ctx context.Context, celebrityID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("celebrity_id = ?", celebrityID), page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db, page, limit)
}

func (r *GormBookingRepository) paginate(ctx context.Context, scope *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := scope.Session(&gorm.Session{}).WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// FindStale returns up to limit pending or confirmed bookings dated before
// today, paged by (event_date, id) after the cursor.
func (r *GormBookingRepository) FindStale(ctx context.Context, today time.Time, after bookingDomain.StaleCursor, limit int) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ? AND event_date < ?",
			[]string{string(bookingDomain.StatusPending), string(bookingDomain.StatusConfirmed)},
			today.Format(bookingDomain.DateLayout))
	if !after.IsZero() {
		date := after.EventDate.Format(bookingDomain.DateLayout)
		query = query.Where("(event_date > ? OR (event_date = ? AND id > ?))", date, date, after.ID)
	}

	var models []BookingModel
	if err := query.
		Order("event_date ASC, id ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale bookings: %w", err)
	}
	return toDomainBookings(models)
}

// HasConfirmedInSlot reports whether another confirmed booking holds the slot.
func (r *GormBookingRepository) HasConfirmedInSlot(ctx context.Context, celebrityID uuid.UUID, date time.Time, timeSlot string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("celebrity_id = ? AND event_date = ? AND time_slot = ? AND status = ? AND id <> ?",
			celebrityID, date.Format(bookingDomain.DateLayout), timeSlot,
			string(bookingDomain.StatusConfirmed), excludeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}
	return count > 0, nil
}

// EarningsForCelebrity sums package prices of completed bookings by payout state.
func (r *GormBookingRepository) EarningsForCelebrity(ctx context.Context, celebrityID uuid.UUID) (bookingDomain.Earnings, error) {
	type payoutSum struct {
		PayoutStatus string
		Count        int64
		Total        int64
	}
	var rows []payoutSum
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("payout_status, count(*) as count, coalesce(sum(price_minor), 0) as total").
		Where("celebrity_id = ? AND status = ?", celebrityID, string(bookingDomain.StatusCompleted)).
		Group("payout_status").
		Find(&rows).Error; err != nil {
		return bookingDomain.Earnings{}, fmt.Errorf("failed to sum earnings: %w", err)
	}

	var e bookingDomain.Earnings
	for _, row := range rows {
		e.CompletedCount += row.Count
		switch bookingDomain.PayoutStatus(row.PayoutStatus) {
		case bookingDomain.PayoutPaid:
			e.PaidMinor += row.Total
		default:
			e.PendingMinor += row.Total
		}
	}
	return e, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if r.paymentReferenceTaken(ctx, model.PaymentReference) {
				return bookingDomain.ErrPaymentReferenceUsed
			}
			return domain.NewConflictError("booking reference already taken")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// paymentReferenceTaken tells a payment reference collision apart from a
// booking reference collision after a unique violation.
func (r *GormBookingRepository) paymentReferenceTaken(ctx context.Context, reference string) bool {
	if reference == "" {
		return false
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row holds version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":                model.Status,
			"payout_status":         model.PayoutStatus,
			"reviewed":              model.Reviewed,
			"rating":                model.Rating,
			"comment":               model.Comment,
			"reviewed_at":           model.ReviewedAt,
			"refund_reference":      model.RefundReference,
			"refunded_amount_minor": model.RefundedAmountMinor,
			"refunded_at":           model.RefundedAt,
			"confirmed_at":          model.ConfirmedAt,
			"completed_at":          model.CompletedAt,
			"cancelled_at":          model.CancelledAt,
			"cancel_note":           model.CancelNote,
			"payout_confirmed_at":   model.PayoutConfirmedAt,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewSlotUnavailableError(model.CelebrityID.String(),
				bk.EventDate().Format(bookingDomain.DateLayout), model.TimeSlot)
		}
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	s := bk.Snapshot()
	return &BookingModel{
		ID:                  s.ID,
		Reference:           s.Reference,
		ClientID:            s.ClientID,
		ClientName:          s.ClientName,
		CelebrityID:         s.CelebrityID,
		CelebrityName:       s.CelebrityName,
		CelebrityImage:      s.CelebrityImage,
		Package:             datatypes.NewJSONType(s.Package),
		PriceMinor:          s.Package.PriceMinor,
		EventDate:           datatypes.Date(s.EventDate),
		TimeSlot:            s.TimeSlot,
		EventDescription:    s.EventDescription,
		Location:            s.Location,
		Status:              string(s.Status),
		PayoutStatus:        string(s.PayoutStatus),
		PaymentReference:    s.PaymentReference,
		AmountPaidMinor:     s.AmountPaidMinor,
		Currency:            s.Currency,
		Reviewed:            s.Reviewed,
		Rating:              s.Rating,
		Comment:             s.Comment,
		ReviewedAt:          s.ReviewedAt,
		RefundReference:     s.RefundReference,
		RefundedAmountMinor: s.RefundedAmountMinor,
		RefundedAt:          s.RefundedAt,
		ConfirmedAt:         s.ConfirmedAt,
		CompletedAt:         s.CompletedAt,
		CancelledAt:         s.CancelledAt,
		CancelNote:          s.CancelNote,
		PayoutConfirmedAt:   s.PayoutConfirmedAt,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	payoutStatus, err := bookingDomain.ParsePayoutStatus(m.PayoutStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(bookingDomain.Snapshot{
		ID:                  m.ID,
		Reference:           m.Reference,
		ClientID:            m.ClientID,
		ClientName:          m.ClientName,
		CelebrityID:         m.CelebrityID,
		CelebrityName:       m.CelebrityName,
		CelebrityImage:      m.CelebrityImage,
		Package:             m.Package.Data(),
		EventDate:           bookingDomain.CalendarDate(time.Time(m.EventDate), time.UTC),
		TimeSlot:            m.TimeSlot,
		EventDescription:    m.EventDescription,
		Location:            m.Location,
		Status:              status,
		PayoutStatus:        payoutStatus,
		PaymentReference:    m.PaymentReference,
		AmountPaidMinor:     m.AmountPaidMinor,
		Currency:            m.Currency,
		Reviewed:            m.Reviewed,
		Rating:              m.Rating,
		Comment:             m.Comment,
		ReviewedAt:          m.ReviewedAt,
		RefundReference:     m.RefundReference,
		RefundedAmountMinor: m.RefundedAmountMinor,
		RefundedAt:          m.RefundedAt,
		ConfirmedAt:         m.ConfirmedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
		CancelNote:          m.CancelNote,
		PayoutConfirmedAt:   m.PayoutConfirmedAt,
		Version:             m.Version,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
