package services

import (
	"context"
	"log"
	"strings"
	"time"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/repositories"
	"chrona/internal/utils"
)

const (
	localIdentityPrefix  = "local:"
	googleIdentityPrefix = "google:"
	minPasswordLength    = 6
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	authService  AuthService
	emailService EmailService
	verifier     IdentityVerifier
	now          func() time.Time
}

// NewUserService wires user registration and login. emailService and verifier may be nil.
func NewUserService(repo repositories.UserRepository, authService AuthService, emailService EmailService, verifier IdentityVerifier) UserService {
	return &userService{
		repo:         repo,
		authService:  authService,
		emailService: emailService,
		verifier:     verifier,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account. Email uniqueness is checked by lookup, not by the store.
func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already registered")
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	opaque, err := utils.NewOpaqueID(16)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:              email,
		Name:               strings.TrimSpace(req.Name),
		ExternalIdentityID: localIdentityPrefix + opaque,
		PasswordHash:       hash,
		CreatedAt:          models.NewLocalTime(s.now()),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			log.Printf("[user][register] warning: welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" || !s.authService.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.Unauthorized("incorrect email or password")
	}
	return user, nil
}

// LoginWithGoogle finds or creates the user behind a Google ID token.
func (s *userService) LoginWithGoogle(ctx context.Context, idToken string) (*models.User, error) {
	if s.verifier == nil {
		return nil, apperrors.Unauthorized("google sign-in is not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, apperrors.Validation("id_token is required")
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, &apperrors.Error{Kind: apperrors.KindUnauthorized, Message: "invalid google id token", Err: err}
	}

	externalID := googleIdentityPrefix + identity.Subject
	user, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil || user != nil {
		return user, err
	}

	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.Validation("google account has no email")
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already registered with another sign-in method")
	}
	user = &models.User{
		Email:              email,
		Name:               identity.Name,
		ExternalIdentityID: externalID,
		CreatedAt:          models.NewLocalTime(s.now()),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
