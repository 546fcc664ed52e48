package celebrity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// PackageStatus is the lifecycle of a catalog entry.
type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageArchived PackageStatus = "archived"
)

// ServicePackage is a priced offering in a celebrity's live catalog.
// Bookings copy it by value; editing it never changes an existing booking.
type ServicePackage struct {
	id          uuid.UUID
	celebrityID uuid.UUID
	title       string
	priceMinor  int64
	description string
	features    []string
	duration    string
	status      PackageStatus
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// PackageFields are the editable parts of a package.
type PackageFields struct {
	Title       string
	PriceMinor  int64
	Description string
	Features    []string
	Duration    string
}

func (f PackageFields) validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return domain.NewMissingFieldsError("title")
	}
	if f.PriceMinor <= 0 {
		return domain.NewValidationError("price must be positive")
	}
	return nil
}

// NewServicePackage creates an active package owned by celebrityID.
func NewServicePackage(celebrityID uuid.UUID, f PackageFields, now time.Time) (*ServicePackage, error) {
	if celebrityID == uuid.Nil {
		return nil, domain.NewValidationError("celebrity ID is required")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &ServicePackage{
		id:          uuid.New(),
		celebrityID: celebrityID,
		title:       strings.TrimSpace(f.Title),
		priceMinor:  f.PriceMinor,
		description: f.Description,
		features:    compactStrings(f.Features),
		duration:    f.Duration,
		status:      PackageActive,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructServicePackage rebuilds a ServicePackage from persistence data.
func ReconstructServicePackage(
	id, celebrityID uuid.UUID,
	title string,
	priceMinor int64,
	description string,
	features []string,
	duration string,
	status PackageStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *ServicePackage {
	return &ServicePackage{
		id:          id,
		celebrityID: celebrityID,
		title:       title,
		priceMinor:  priceMinor,
		description: description,
		features:    features,
		duration:    duration,
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (s *ServicePackage) ID() uuid.UUID          { return s.id }
func (s *ServicePackage) CelebrityID() uuid.UUID { return s.celebrityID }
func (s *ServicePackage) Title() string          { return s.title }
func (s *ServicePackage) PriceMinor() int64      { return s.priceMinor }
func (s *ServicePackage) Description() string    { return s.description }
func (s *ServicePackage) Features() []string     { return append([]string(nil), s.features...) }
func (s *ServicePackage) Duration() string       { return s.duration }
func (s *ServicePackage) Status() PackageStatus  { return s.status }
func (s *ServicePackage) Version() int64         { return s.version }
func (s *ServicePackage) CreatedAt() time.Time   { return s.createdAt }
func (s *ServicePackage) UpdatedAt() time.Time   { return s.updatedAt }

// IsOwnedBy checks if the package belongs to the given celebrity.
func (s *ServicePackage) IsOwnedBy(celebrityID uuid.UUID) bool {
	return s.celebrityID == celebrityID
}

// IsActive reports whether the package can still be booked.
func (s *ServicePackage) IsActive() bool {
	return s.status == PackageActive
}

// Update replaces the editable fields.
func (s *ServicePackage) Update(f PackageFields, now time.Time) error {
	if err := f.validate(); err != nil {
		return err
	}
	s.title = strings.TrimSpace(f.Title)
	s.priceMinor = f.PriceMinor
	s.description = f.Description
	s.features = compactStrings(f.Features)
	s.duration = f.Duration
	s.version++
	s.updatedAt = now.UTC()
	return nil
}

// Archive removes the package from the bookable catalog.
func (s *ServicePackage) Archive(now time.Time) {
	s.status = PackageArchived
	s.version++
	s.updatedAt = now.UTC()
}
