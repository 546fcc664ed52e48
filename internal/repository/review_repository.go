package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	reviewDomain "github.com/celebook/service-booking/internal/domain/review"
	"github.com/celebook/service-booking/internal/pkg/domain"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	BookingID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CelebrityID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null"`
	CelebrityName string    `gorm:"type:varchar(200)"`
	ClientName    string    `gorm:"type:varchar(200)"`
	Rating        int       `gorm:"not null"`
	Comment       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ReviewModel) TableName() string { return "reviews" }

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Save persists a new review. The booking ID is the primary key, so a second
// review of the same booking is rejected by the store.
func (r *GormReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := toReviewModel(rv)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking has already been reviewed")
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// FindByBookingID returns the review of a booking.
func (r *GormReviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", bookingID.String())
		}
		return nil, err
	}
	return toReviewDomain(&model), nil
}

// FindByCelebrityID returns a page of a celebrity's reviews, newest first.
func (r *GormReviewRepository) FindByCelebrityID(ctx context.Context, celebrityID uuid.UUID, page, limit int) ([]*reviewDomain.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("celebrity_id = ?", celebrityID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var models []ReviewModel
	if err := r.db.WithContext(ctx).
		Where("celebrity_id = ?", celebrityID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find reviews: %w", err)
	}

	reviews := make([]*reviewDomain.Review, len(models))
	for i := range models {
		reviews[i] = toReviewDomain(&models[i])
	}
	return reviews, total, nil
}

// SummaryForCelebrity returns the review count and average rating.
func (r *GormReviewRepository) SummaryForCelebrity(ctx context.Context, celebrityID uuid.UUID) (reviewDomain.Summary, error) {
	var row struct {
		Count   int64
		Average float64
	}
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("count(*) as count, coalesce(avg(rating), 0) as average").
		Where("celebrity_id = ?", celebrityID).
		Scan(&row).Error; err != nil {
		return reviewDomain.Summary{}, fmt.Errorf("failed to summarise reviews: %w", err)
	}
	return reviewDomain.Summary{Count: row.Count, Average: row.Average}, nil
}

func toReviewModel(rv *reviewDomain.Review) ReviewModel {
	return ReviewModel{
		BookingID:     rv.BookingID(),
		CelebrityID:   rv.CelebrityID(),
		ClientID:      rv.ClientID(),
		CelebrityName: rv.CelebrityName(),
		ClientName:    rv.ClientName(),
		Rating:        rv.Rating(),
		Comment:       rv.Comment(),
		CreatedAt:     rv.CreatedAt(),
	}
}

func toReviewDomain(m *ReviewModel) *reviewDomain.Review {
	return reviewDomain.Reconstruct(
		m.BookingID,
		m.CelebrityID,
		m.ClientID,
		m.CelebrityName,
		m.ClientName,
		m.Rating,
		m.Comment,
		m.CreatedAt,
	)
}
