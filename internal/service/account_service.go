package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atm-maintenance-service/internal/auth"
	"github.com/spec-kit/atm-maintenance-service/internal/config"
	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// AccountService handles technician authentication and administration.
type AccountService struct {
	technicians repository.TechnicianRepository
	tokens      *auth.TokenManager
	bcryptCost  int
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	Technician *domain.Technician
}

// TechnicianCreateInput describes technician registration payload.
type TechnicianCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.TechnicianRole
	ZoneID   *string
}

// NewAccountService constructs the service.
func NewAccountService(cfg config.Config, technicianRepo repository.TechnicianRepository) *AccountService {
	return &AccountService{
		technicians: technicianRepo,
		tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login authenticates by email and password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	technician, err := s.technicians.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !technician.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(technician.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(technician.ID, technician.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Technician: technician}, nil
}

// ChangePassword rotates the caller's password after verifying the old one.
func (s *AccountService) ChangePassword(ctx context.Context, technicianID, oldPassword, newPassword string) error {
	technician, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(technician.PasswordHash, oldPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if len(newPassword) < 8 {
		return apperrors.NewInvalidInput("password must be at least 8 characters", nil)
	}
	hashed, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	technician.PasswordHash = hashed
	if err := s.technicians.Update(ctx, technician); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// CreateTechnician registers a new account.
func (s *AccountService) CreateTechnician(ctx context.Context, input TechnicianCreateInput) (*domain.Technician, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewInvalidInput("valid email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewInvalidInput("password must be at least 8 characters", nil)
	}
	if _, err := s.technicians.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleTechnician
	}
	technician := &domain.Technician{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		ZoneID:       input.ZoneID,
		Active:       true,
	}
	if err := s.technicians.Create(ctx, technician); err != nil {
		return nil, apperrors.MapError(err)
	}
	return technician, nil
}

// ListTechnicians returns accounts matching the filter.
func (s *AccountService) ListTechnicians(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	technicians, err := s.technicians.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return technicians, nil
}
