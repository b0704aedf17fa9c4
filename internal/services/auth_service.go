package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/identity"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *identity.TokenManager
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *identity.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string
	User  *models.User
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

// Register creates a plain user and signs a token for them.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := newUser(input.DisplayName, input.Email, input.Password, models.RoleUser, s.now())
	if err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.userRepo, user.Email, 0); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, storageFailure("create user", err)
	}

	return s.issue(user)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageFailure("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find user", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to the stored user. The role comes
// from the database, so demotions take effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return s.ResolveUser(ctx, id.UserID)
}

// ResolveUser loads the caller for an already-trusted id (e.g. from the session).
func (s *AuthService) ResolveUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return user, err
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", validationError("password must be at least %d characters", constants.MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func newUser(displayName, email, password string, role models.Role, now time.Time) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	email = normalizeEmail(email)
	if displayName == "" {
		return nil, validationError("display name is required")
	}
	if email == "" {
		return nil, validationError("email is required")
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ensureEmailFree reports ErrEmailTaken unless email is unused or belongs to exceptID.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, email string, exceptID uint64) error {
	existing, err := users.FindByEmail(ctx, email)
	if err == nil {
		if existing.ID == exceptID {
			return nil
		}
		return ErrEmailTaken
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return storageFailure("check email", err)
}
