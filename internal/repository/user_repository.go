package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	userDomain "github.com/celebook/service-booking/internal/domain/user"
	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/domain"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        uuid.UUID                                    `gorm:"type:uuid;primaryKey"`
	Name      string                                       `gorm:"type:varchar(200);not null"`
	Email     string                                       `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      string                                       `gorm:"type:varchar(20);not null;index"`
	Status    string                                       `gorm:"type:varchar(20);not null;default:'active'"`
	Payout    datatypes.JSONType[userDomain.PayoutDetails] `gorm:"type:jsonb"`
	CreatedAt time.Time                                    `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time                                    `gorm:"type:timestamptz;not null;default:now()"`
}

func (UserModel) TableName() string { return "users" }

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, err
	}
	return toUserDomain(&model), nil
}

// List returns accounts, optionally filtered by role (admin).
func (r *GormUserRepository) List(ctx context.Context, role string, page, limit int) ([]*userDomain.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&UserModel{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserModel
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*userDomain.User, len(models))
	for i := range models {
		users[i] = toUserDomain(&models[i])
	}
	return users, total, nil
}

func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("user already registered")
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) Update(ctx context.Context, u *userDomain.User) error {
	model := toUserModel(u)
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"status":     model.Status,
			"payout":     model.Payout,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", model.ID.String())
	}
	return nil
}

// --- Conversions ---

func toUserModel(u *userDomain.User) *UserModel {
	var payout userDomain.PayoutDetails
	if p := u.Payout(); p != nil {
		payout = *p
	}
	return &UserModel{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		Status:    string(u.Status()),
		Payout:    datatypes.NewJSONType(payout),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

func toUserDomain(m *UserModel) *userDomain.User {
	var payout *userDomain.PayoutDetails
	if p := m.Payout.Data(); p.IsComplete() {
		payout = &p
	}
	return userDomain.Reconstruct(
		m.ID, m.Name, m.Email,
		auth.Role(m.Role),
		userDomain.Status(m.Status),
		payout,
		m.CreatedAt, m.UpdatedAt,
	)
}
