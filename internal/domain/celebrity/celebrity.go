package celebrity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

// BankDetails is where the platform sends payouts.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// IsComplete reports whether every field is filled in.
func (b BankDetails) IsComplete() bool {
	return b.BankName != "" && b.AccountNumber != "" && b.AccountName != ""
}

// Profile is the aggregate root for a celebrity's public profile. Its ID is
// the celebrity's user ID.
type Profile struct {
	id          uuid.UUID
	displayName string
	category    string
	subcategory string
	bio         string
	imageURL    string
	gallery     []string
	bank        BankDetails
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// ProfileFields are the editable parts of a profile.
type ProfileFields struct {
	DisplayName string
	Category    string
	Subcategory string
	Bio         string
	ImageURL    string
	Gallery     []string
	Bank        BankDetails
}

// NewProfile creates a profile for the celebrity user userID.
func NewProfile(userID uuid.UUID, f ProfileFields, now time.Time) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("celebrity ID is required")
	}
	var missing []string
	if strings.TrimSpace(f.DisplayName) == "" {
		missing = append(missing, "display_name")
	}
	if strings.TrimSpace(f.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingFieldsError(missing...)
	}

	now = now.UTC()
	p := &Profile{id: userID, version: 1, createdAt: now}
	p.apply(f, now)
	return p, nil
}

// ReconstructProfile rebuilds a Profile from persistence data (no validation).
func ReconstructProfile(
	id uuid.UUID,
	displayName, category, subcategory, bio, imageURL string,
	gallery []string,
	bank BankDetails,
	version int64,
	createdAt, updatedAt time.Time,
) *Profile {
	return &Profile{
		id:          id,
		displayName: displayName,
		category:    category,
		subcategory: subcategory,
		bio:         bio,
		imageURL:    imageURL,
		gallery:     gallery,
		bank:        bank,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (p *Profile) ID() uuid.UUID        { return p.id }
func (p *Profile) DisplayName() string  { return p.displayName }
func (p *Profile) Category() string     { return p.category }
func (p *Profile) Subcategory() string  { return p.subcategory }
func (p *Profile) Bio() string          { return p.bio }
func (p *Profile) ImageURL() string     { return p.imageURL }
func (p *Profile) Gallery() []string    { return append([]string(nil), p.gallery...) }
func (p *Profile) Bank() BankDetails    { return p.bank }
func (p *Profile) Version() int64       { return p.version }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// --- Behavior ---

// Update replaces the editable fields. Empty display name or category keep
// their current values.
func (p *Profile) Update(f ProfileFields, now time.Time) {
	if strings.TrimSpace(f.DisplayName) == "" {
		f.DisplayName = p.displayName
	}
	if strings.TrimSpace(f.Category) == "" {
		f.Category = p.category
	}
	p.apply(f, now.UTC())
	p.version++
}

func (p *Profile) apply(f ProfileFields, now time.Time) {
	p.displayName = strings.TrimSpace(f.DisplayName)
	p.category = strings.ToLower(strings.TrimSpace(f.Category))
	p.subcategory = strings.TrimSpace(f.Subcategory)
	p.bio = f.Bio
	p.imageURL = f.ImageURL
	p.gallery = compactStrings(f.Gallery)
	p.bank = f.Bank
	p.updatedAt = now
}

func compactStrings(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
