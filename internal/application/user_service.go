package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/celebook/service-booking/internal/domain/user"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/validation"
)

// UpdatePayoutRequest is the request DTO for storing bank details.
type UpdatePayoutRequest struct {
	BankName      string `json:"bank_name" binding:"required,notblank"`
	AccountNumber string `json:"account_number" binding:"required,notblank,numeric"`
	AccountName   string `json:"account_name" binding:"required,notblank"`
}

// UserDTO is the API representation of an account.
type UserDTO struct {
	ID        uuid.UUID                 `json:"id"`
	Name      string                    `json:"name"`
	Email     string                    `json:"email"`
	Role      string                    `json:"role"`
	Status    string                    `json:"status"`
	Payout    *userDomain.PayoutDetails `json:"payout,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

// UserService manages marketplace accounts.
type UserService struct {
	repo   userDomain.UserRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo userDomain.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, now: time.Now, logger: logger}
}

// Register records the account behind a provider-issued identity. Calling it
// again for the same identity returns the existing account.
func (s *UserService) Register(ctx context.Context, actor Actor) (*UserDTO, error) {
	existing, err := s.repo.FindByID(ctx, actor.ID)
	if err == nil {
		result := toUserDTO(existing)
		return &result, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	u, err := userDomain.NewUser(actor.ID, actor.Name, actor.Email, actor.Role, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("role", string(u.Role())),
	)
	result := toUserDTO(u)
	return &result, nil
}

// GetUser returns an account by ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// UpdatePayoutDetails stores the bank account refunds are sent to.
func (s *UserService) UpdatePayoutDetails(ctx context.Context, userID uuid.UUID, req UpdatePayoutRequest) (*UserDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.SetPayoutDetails(userDomain.PayoutDetails{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	}, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update payout details: %w", err)
	}
	result := toUserDTO(u)
	return &result, nil
}

// ListUsers returns a page of accounts, optionally filtered by role (admin).
func (s *UserService) ListUsers(ctx context.Context, role string, page, limit int) ([]UserDTO, int64, error) {
	users, total, err := s.repo.List(ctx, role, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, total, nil
}

// DeleteUser marks an account deleted (admin). The user is signed out on
// their next request.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.Deactivate(s.now()); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	return nil
}

// IsActive reports whether the account may keep using the API. Identities
// that have not registered yet are treated as active.
func (s *UserService) IsActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return u.IsActive(), nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		Status:    string(u.Status()),
		Payout:    u.Payout(),
		CreatedAt: u.CreatedAt(),
	}
}
