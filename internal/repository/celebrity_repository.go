package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	celebrityDomain "github.com/celebook/service-booking/internal/domain/celebrity"
	"github.com/celebook/service-booking/internal/pkg/domain"
)

// CelebrityModel is the GORM model for the celebrities table.
type CelebrityModel struct {
	ID          uuid.UUID                                       `gorm:"type:uuid;primaryKey"`
	DisplayName string                                          `gorm:"type:varchar(200);not null"`
	Category    string                                          `gorm:"type:varchar(50);not null;index"`
	Subcategory string                                          `gorm:"type:varchar(100)"`
	Bio         string                                          `gorm:"type:text"`
	ImageURL    string                                          `gorm:"type:text"`
	Gallery     datatypes.JSONType[[]string]                    `gorm:"type:jsonb"`
	Bank        datatypes.JSONType[celebrityDomain.BankDetails] `gorm:"type:jsonb"`
	Version     int64                                           `gorm:"not null;default:1"`
	CreatedAt   time.Time                                       `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time                                       `gorm:"type:timestamptz;not null;default:now()"`
}

func (CelebrityModel) TableName() string { return "celebrities" }

// ServicePackageModel is the GORM model for the service_packages table.
type ServicePackageModel struct {
	ID          uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	CelebrityID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Title       string                       `gorm:"type:varchar(200);not null"`
	PriceMinor  int64                        `gorm:"not null"`
	Description string                       `gorm:"type:text"`
	Features    datatypes.JSONType[[]string] `gorm:"type:jsonb"`
	Duration    string                       `gorm:"type:varchar(100)"`
	Status      string                       `gorm:"type:varchar(20);not null;default:'active'"`
	Version     int64                        `gorm:"not null;default:1"`
	CreatedAt   time.Time                    `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time                    `gorm:"type:timestamptz;not null;default:now()"`
}

func (ServicePackageModel) TableName() string { return "service_packages" }

// GormCelebrityRepository implements ProfileRepository using GORM.
type GormCelebrityRepository struct {
	db *gorm.DB
}

func NewGormCelebrityRepository(db *gorm.DB) *GormCelebrityRepository {
	return &GormCelebrityRepository{db: db}
}

func (r *GormCelebrityRepository) FindByID(ctx context.Context, id uuid.UUID) (*celebrityDomain.Profile, error) {
	var model CelebrityModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Celebrity", id.String())
		}
		return nil, err
	}
	return toProfileDomain(&model), nil
}

// List returns profiles, optionally filtered by category, newest first.
func (r *GormCelebrityRepository) List(ctx context.Context, category string, page, limit int) ([]*celebrityDomain.Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&CelebrityModel{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count celebrities: %w", err)
	}

	var models []CelebrityModel
	if err := query.Session(&gorm.Session{}).
		Order("display_name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list celebrities: %w", err)
	}

	profiles := make([]*celebrityDomain.Profile, len(models))
	for i := range models {
		profiles[i] = toProfileDomain(&models[i])
	}
	return profiles, total, nil
}

func (r *GormCelebrityRepository) Save(ctx context.Context, p *celebrityDomain.Profile) error {
	if err := r.db.WithContext(ctx).Create(toProfileModel(p)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("celebrity profile already exists")
		}
		return err
	}
	return nil
}

func (r *GormCelebrityRepository) Update(ctx context.Context, p *celebrityDomain.Profile) error {
	model := toProfileModel(p)
	previousVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&CelebrityModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("celebrity profile was modified by another transaction")
	}
	return nil
}

// GormServicePackageRepository implements PackageRepository using GORM.
type GormServicePackageRepository struct {
	db *gorm.DB
}

func NewGormServicePackageRepository(db *gorm.DB) *GormServicePackageRepository {
	return &GormServicePackageRepository{db: db}
}

func (r *GormServicePackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*celebrityDomain.ServicePackage, error) {
	var model ServicePackageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ServicePackage", id.String())
		}
		return nil, err
	}
	return toPackageDomain(&model), nil
}

func (r *GormServicePackageRepository) FindActiveByCelebrityID(ctx context.Context, celebrityID uuid.UUID) ([]*celebrityDomain.ServicePackage, error) {
	var models []ServicePackageModel
	if err := r.db.WithContext(ctx).
		Where("celebrity_id = ? AND status = ?", celebrityID, string(celebrityDomain.PackageActive)).
		Order("price_minor ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	pkgs := make([]*celebrityDomain.ServicePackage, len(models))
	for i := range models {
		pkgs[i] = toPackageDomain(&models[i])
	}
	return pkgs, nil
}

func (r *GormServicePackageRepository) Save(ctx context.Context, pkg *celebrityDomain.ServicePackage) error {
	return r.db.WithContext(ctx).Create(toPackageModel(pkg)).Error
}

func (r *GormServicePackageRepository) Update(ctx context.Context, pkg *celebrityDomain.ServicePackage) error {
	model := toPackageModel(pkg)
	previousVersion := pkg.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ServicePackageModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").Omit("id", "celebrity_id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("service package was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toProfileModel(p *celebrityDomain.Profile) *CelebrityModel {
	return &CelebrityModel{
		ID:          p.ID(),
		DisplayName: p.DisplayName(),
		Category:    p.Category(),
		Subcategory: p.Subcategory(),
		Bio:         p.Bio(),
		ImageURL:    p.ImageURL(),
		Gallery:     datatypes.NewJSONType(p.Gallery()),
		Bank:        datatypes.NewJSONType(p.Bank()),
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func toProfileDomain(m *CelebrityModel) *celebrityDomain.Profile {
	return celebrityDomain.ReconstructProfile(
		m.ID,
		m.DisplayName, m.Category, m.Subcategory, m.Bio, m.ImageURL,
		m.Gallery.Data(),
		m.Bank.Data(),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toPackageModel(s *celebrityDomain.ServicePackage) *ServicePackageModel {
	return &ServicePackageModel{
		ID:          s.ID(),
		CelebrityID: s.CelebrityID(),
		Title:       s.Title(),
		PriceMinor:  s.PriceMinor(),
		Description: s.Description(),
		Features:    datatypes.NewJSONType(s.Features()),
		Duration:    s.Duration(),
		Status:      string(s.Status()),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

func toPackageDomain(m *ServicePackageModel) *celebrityDomain.ServicePackage {
	return celebrityDomain.ReconstructServicePackage(
		m.ID, m.CelebrityID,
		m.Title, m.PriceMinor, m.Description,
		m.Features.Data(),
		m.Duration,
		celebrityDomain.PackageStatus(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
