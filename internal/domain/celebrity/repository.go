package celebrity

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence operations for celebrity profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, category string, page, limit int) ([]*Profile, int64, error)
	Save(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
}

// PackageRepository defines persistence operations for the service catalog.
type PackageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServicePackage, error)
	FindActiveByCelebrityID(ctx context.Context, celebrityID uuid.UUID) ([]*ServicePackage, error)
	Save(ctx context.Context, pkg *ServicePackage) error
	Update(ctx context.Context, pkg *ServicePackage) error
}
