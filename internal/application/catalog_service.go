package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	celebrityDomain "github.com/celebook/service-booking/internal/domain/celebrity"
	reviewDomain "github.com/celebook/service-booking/internal/domain/review"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/validation"
)

// UpsertProfileRequest is the request DTO for creating or editing a profile.
type UpsertProfileRequest struct {
	DisplayName   string   `json:"display_name" binding:"max=200"`
	Category      string   `json:"category" binding:"max=50"`
	Subcategory   string   `json:"subcategory" binding:"max=100"`
	Bio           string   `json:"bio"`
	ImageURL      string   `json:"image_url" binding:"omitempty,url"`
	Gallery       []string `json:"gallery"`
	BankName      string   `json:"bank_name"`
	AccountNumber string   `json:"account_number" binding:"omitempty,numeric"`
	AccountName   string   `json:"account_name"`
}

func (r UpsertProfileRequest) fields() celebrityDomain.ProfileFields {
	return celebrityDomain.ProfileFields{
		DisplayName: r.DisplayName,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Bio:         r.Bio,
		ImageURL:    r.ImageURL,
		Gallery:     r.Gallery,
		Bank: celebrityDomain.BankDetails{
			BankName:      r.BankName,
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
		},
	}
}

// ServicePackageRequest is the request DTO for creating or editing a package.
type ServicePackageRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=200"`
	PriceMinor  int64    `json:"price" binding:"required,gt=0"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Duration    string   `json:"duration" binding:"max=100"`
}

func (r ServicePackageRequest) fields() celebrityDomain.PackageFields {
	return celebrityDomain.PackageFields{
		Title:       r.Title,
		PriceMinor:  r.PriceMinor,
		Description: r.Description,
		Features:    r.Features,
		Duration:    r.Duration,
	}
}

// CelebrityDTO is the public representation of a celebrity profile.
type CelebrityDTO struct {
	ID            uuid.UUID           `json:"id"`
	DisplayName   string              `json:"display_name"`
	Category      string              `json:"category"`
	Subcategory   string              `json:"subcategory,omitempty"`
	Bio           string              `json:"bio,omitempty"`
	ImageURL      string              `json:"image_url,omitempty"`
	Gallery       []string            `json:"gallery"`
	ReviewCount   int64               `json:"review_count"`
	AverageRating float64             `json:"average_rating"`
	Services      []ServicePackageDTO `json:"services,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ServicePackageDTO is a catalog entry with its checkout price.
type ServicePackageDTO struct {
	ID          uuid.UUID `json:"id"`
	CelebrityID uuid.UUID `json:"celebrity_id"`
	Title       string    `json:"title"`
	PriceMinor  int64     `json:"price"`
	FeeMinor    int64     `json:"service_fee"`
	TotalMinor  int64     `json:"total"`
	Description string    `json:"description,omitempty"`
	Features    []string  `json:"features"`
	Duration    string    `json:"duration,omitempty"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CelebrityReviewDTO is a review as shown on a celebrity's page.
type CelebrityReviewDTO struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ClientName string    `json:"client_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CatalogService implements use cases for celebrity profiles, their service
// catalog and their public reviews.
type CatalogService struct {
	profiles celebrityDomain.ProfileRepository
	packages celebrityDomain.PackageRepository
	reviews  reviewDomain.ReviewRepository
	pricing  bookingDomain.PricingStrategy
	now      func() time.Time
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	profiles celebrityDomain.ProfileRepository,
	packages celebrityDomain.PackageRepository,
	reviews reviewDomain.ReviewRepository,
	pricing bookingDomain.PricingStrategy,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		profiles: profiles,
		packages: packages,
		reviews:  reviews,
		pricing:  pricing,
		now:      time.Now,
		logger:   logger,
	}
}

// ListCelebrities returns a page of profiles, optionally in one category.
func (s *CatalogService) ListCelebrities(ctx context.Context, category string, page, limit int) (*domain.PaginatedResult[CelebrityDTO], error) {
	profiles, total, err := s.profiles.List(ctx, strings.ToLower(strings.TrimSpace(category)), page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]CelebrityDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toCelebrityDTO(p)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetCelebrity returns a profile with its active services and rating summary.
func (s *CatalogService) GetCelebrity(ctx context.Context, celebrityID uuid.UUID) (*CelebrityDTO, error) {
	profile, err := s.profiles.FindByID(ctx, celebrityID)
	if err != nil {
		return nil, err
	}
	services, err := s.ListServices(ctx, celebrityID)
	if err != nil {
		return nil, err
	}
	summary, err := s.reviews.SummaryForCelebrity(ctx, celebrityID)
	if err != nil {
		return nil, err
	}

	result := toCelebrityDTO(profile)
	result.Services = services
	result.ReviewCount = summary.Count
	result.AverageRating = summary.Average
	return &result, nil
}

// UpsertProfile creates the caller's profile, or updates it if one exists.
func (s *CatalogService) UpsertProfile(ctx context.Context, celebrityID uuid.UUID, req UpsertProfileRequest) (*CelebrityDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByID(ctx, celebrityID)
	switch {
	case domain.IsNotFound(err):
		profile, err = celebrityDomain.NewProfile(celebrityID, req.fields(), s.now())
		if err != nil {
			return nil, err
		}
		if err := s.profiles.Save(ctx, profile); err != nil {
			s.logger.Error("failed to create celebrity profile", zap.Error(err))
			return nil, fmt.Errorf("failed to create celebrity profile: %w", err)
		}
		s.logger.Info("celebrity profile created", zap.String("celebrity_id", celebrityID.String()))
	case err != nil:
		return nil, err
	default:
		profile.Update(req.fields(), s.now())
		if err := s.profiles.Update(ctx, profile); err != nil {
			s.logger.Error("failed to update celebrity profile", zap.Error(err))
			return nil, fmt.Errorf("failed to update celebrity profile: %w", err)
		}
		s.logger.Info("celebrity profile updated", zap.String("celebrity_id", celebrityID.String()))
	}

	result := toCelebrityDTO(profile)
	return &result, nil
}

// ListServices returns the celebrity's bookable packages.
func (s *CatalogService) ListServices(ctx context.Context, celebrityID uuid.UUID) ([]ServicePackageDTO, error) {
	pkgs, err := s.packages.FindActiveByCelebrityID(ctx, celebrityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}
	dtos := make([]ServicePackageDTO, len(pkgs))
	for i, p := range pkgs {
		dtos[i] = s.toServicePackageDTO(p)
	}
	return dtos, nil
}

// CreateService adds a package to the caller's catalog. The caller must
// already have a profile.
func (s *CatalogService) CreateService(ctx context.Context, celebrityID uuid.UUID, req ServicePackageRequest) (*ServicePackageDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.profiles.FindByID(ctx, celebrityID); err != nil {
		return nil, err
	}

	pkg, err := celebrityDomain.NewServicePackage(celebrityID, req.fields(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.packages.Save(ctx, pkg); err != nil {
		s.logger.Error("failed to create service package", zap.Error(err))
		return nil, fmt.Errorf("failed to create service package: %w", err)
	}

	s.logger.Info("service package created",
		zap.String("service_id", pkg.ID().String()),
		zap.String("celebrity_id", celebrityID.String()),
	)
	result := s.toServicePackageDTO(pkg)
	return &result, nil
}

// UpdateService edits a package, verifying ownership. Existing bookings keep
// the snapshot they were made with.
func (s *CatalogService) UpdateService(ctx context.Context, celebrityID, serviceID uuid.UUID, req ServicePackageRequest) (*ServicePackageDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	pkg, err := s.ownedPackage(ctx, celebrityID, serviceID)
	if err != nil {
		return nil, err
	}
	if err := pkg.Update(req.fields(), s.now()); err != nil {
		return nil, err
	}
	if err := s.packages.Update(ctx, pkg); err != nil {
		s.logger.Error("failed to update service package", zap.Error(err))
		return nil, fmt.Errorf("failed to update service package: %w", err)
	}

	s.logger.Info("service package updated", zap.String("service_id", serviceID.String()))
	result := s.toServicePackageDTO(pkg)
	return &result, nil
}

// DeleteService archives a package so it can no longer be booked.
func (s *CatalogService) DeleteService(ctx context.Context, celebrityID, serviceID uuid.UUID) error {
	pkg, err := s.ownedPackage(ctx, celebrityID, serviceID)
	if err != nil {
		return err
	}
	if !pkg.IsActive() {
		return nil
	}
	pkg.Archive(s.now())
	if err := s.packages.Update(ctx, pkg); err != nil {
		s.logger.Error("failed to archive service package", zap.Error(err))
		return fmt.Errorf("failed to archive service package: %w", err)
	}

	s.logger.Info("service package archived", zap.String("service_id", serviceID.String()))
	return nil
}

// ListReviews returns a page of the celebrity's reviews.
func (s *CatalogService) ListReviews(ctx context.Context, celebrityID uuid.UUID, page, limit int) (*domain.PaginatedResult[CelebrityReviewDTO], error) {
	reviews, total, err := s.reviews.FindByCelebrityID(ctx, celebrityID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]CelebrityReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = CelebrityReviewDTO{
			BookingID:  r.BookingID(),
			ClientName: r.ClientName(),
			Rating:     r.Rating(),
			Comment:    r.Comment(),
			CreatedAt:  r.CreatedAt(),
		}
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func (s *CatalogService) ownedPackage(ctx context.Context, celebrityID, serviceID uuid.UUID) (*celebrityDomain.ServicePackage, error) {
	pkg, err := s.packages.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsOwnedBy(celebrityID) {
		return nil, domain.NewForbiddenError("you do not own this service package")
	}
	return pkg, nil
}

func (s *CatalogService) toServicePackageDTO(p *celebrityDomain.ServicePackage) ServicePackageDTO {
	dto := ServicePackageDTO{
		ID:          p.ID(),
		CelebrityID: p.CelebrityID(),
		Title:       p.Title(),
		PriceMinor:  p.PriceMinor(),
		TotalMinor:  p.PriceMinor(),
		Description: p.Description(),
		Features:    p.Features(),
		Duration:    p.Duration(),
		Status:      string(p.Status()),
		UpdatedAt:   p.UpdatedAt(),
	}
	if q, err := s.pricing.Quote(p.PriceMinor()); err == nil {
		dto.FeeMinor = q.FeeMinor
		dto.TotalMinor = q.TotalMinor
	}
	return dto
}

func toCelebrityDTO(p *celebrityDomain.Profile) CelebrityDTO {
	return CelebrityDTO{
		ID:          p.ID(),
		DisplayName: p.DisplayName(),
		Category:    p.Category(),
		Subcategory: p.Subcategory(),
		Bio:         p.Bio(),
		ImageURL:    p.ImageURL(),
		Gallery:     p.Gallery(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}
