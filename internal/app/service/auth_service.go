package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/common/security"
	"autohaven/internal/domain/model"
	"autohaven/internal/domain/repository"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", common.ErrUnauthorized)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.Engine
	hasher   security.PasswordHasher
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.Engine, hasher security.PasswordHasher) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, hasher: hasher}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, false)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Compare(user.HashedPassword, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// Profile returns the caller's stored user record.
func (s *AuthService) Profile(ctx context.Context, caller model.CallerIdentity) (*model.User, error) {
	if caller.IsAnonymous() || caller.User == nil {
		return nil, common.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, caller.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user.Public(), nil
}

// EnsureAdmin makes sure an admin account exists for email, creating it or
// promoting an existing account.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.userRepo.SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, fmt.Errorf("failed to promote %s: %w", email, err)
			}
			existing.IsAdmin = true
			log.Printf("INFO: Promoted existing user %s to admin", email)
		}
		return existing.Public(), nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := common.Validate(RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("admin account: %w", err)
	}
	user, err := s.createUser(ctx, name, email, password, true)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Created admin user %s", email)
	return user.Public(), nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, isAdmin bool) (*model.User, error) {
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict for a taken email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) authResponse(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.IssueCredential(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user.Public(), Token: token}, nil
}
