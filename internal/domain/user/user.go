package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celebook/service-booking/internal/pkg/auth"
	"github.com/celebook/service-booking/internal/pkg/domain"
)

// Status is the account lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// PayoutDetails are the bank details refunds and payouts are sent to.
type PayoutDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// IsComplete reports whether every field is filled in.
func (p PayoutDetails) IsComplete() bool {
	return p.BankName != "" && p.AccountNumber != "" && p.AccountName != ""
}

// User is a marketplace account. Credentials live with the identity provider;
// this record keeps the role, status and payout details.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	role      auth.Role
	status    Status
	payout    *PayoutDetails
	createdAt time.Time
	updatedAt time.Time
}

// NewUser registers an account for an identity already issued by the provider.
func NewUser(id uuid.UUID, name, email string, role auth.Role, now time.Time) (*User, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingFieldsError(missing...)
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("invalid role: " + string(role))
	}

	now = now.UTC()
	return &User{
		id:        id,
		name:      strings.TrimSpace(name),
		email:     strings.ToLower(strings.TrimSpace(email)),
		role:      role,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence.
func Reconstruct(id uuid.UUID, name, email string, role auth.Role, status Status, payout *PayoutDetails, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		role:      role,
		status:    status,
		payout:    payout,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) Role() auth.Role      { return u.role }
func (u *User) Status() Status       { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Payout returns a copy of the payout details, or nil when none are stored.
func (u *User) Payout() *PayoutDetails {
	if u.payout == nil {
		return nil
	}
	p := *u.payout
	return &p
}

// IsActive reports whether the account may still sign in.
func (u *User) IsActive() bool { return u.status == StatusActive }

// SetPayoutDetails stores the bank details refunds are sent to.
func (u *User) SetPayoutDetails(p PayoutDetails, now time.Time) error {
	if !p.IsComplete() {
		var missing []string
		if p.BankName == "" {
			missing = append(missing, "bank_name")
		}
		if p.AccountNumber == "" {
			missing = append(missing, "account_number")
		}
		if p.AccountName == "" {
			missing = append(missing, "account_name")
		}
		return domain.NewMissingFieldsError(missing...)
	}
	u.payout = &p
	u.updatedAt = now.UTC()
	return nil
}

// Deactivate marks the account deleted. The next session check signs it out.
func (u *User) Deactivate(now time.Time) error {
	if u.status == StatusDeleted {
		return domain.NewInvalidStateError(string(u.status), string(StatusDeleted))
	}
	u.status = StatusDeleted
	u.updatedAt = now.UTC()
	return nil
}
