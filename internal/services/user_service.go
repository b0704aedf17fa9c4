package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/patch"
	"github.com/yukikurage/report-tracker-api/internal/policy"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// UserService is the admin-only account management surface.
type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

func (s *UserService) List(ctx context.Context, actor *policy.Actor, page utils.PaginationParams) ([]models.User, int64, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, 0, storageFailure("list users", err)
	}
	return users, total, nil
}

type CreateUserInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        string
}

func (s *UserService) Create(ctx context.Context, actor *policy.Actor, input CreateUserInput) (*models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := newUser(input.DisplayName, input.Email, input.Password, models.ParseRole(input.Role), s.now())
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
	return user, nil
}

// Bootstrap creates an admin account without an acting caller. It backs the
// create-admin command and must not be reachable over HTTP.
func (s *UserService) Bootstrap(ctx context.Context, displayName, email, password string) (*models.User, error) {
	user, err := newUser(displayName, email, password, models.RoleAdmin, s.now())
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
		return nil, storageFailure("create admin", err)
	}
	return user, nil
}

// UpdateUserInput changes only the fields that are set. An empty password
// leaves the current one in place.
type UpdateUserInput struct {
	DisplayName patch.Field[string]
	Email       patch.Field[string]
	Role        patch.Field[string]
	Password    patch.Field[string]
}

func (s *UserService) Update(ctx context.Context, actor *policy.Actor, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName.Set {
		name := strings.TrimSpace(input.DisplayName.Value)
		if name == "" {
			return nil, validationError("display name cannot be empty")
		}
		user.DisplayName = name
	}
	if input.Email.Set {
		email := normalizeEmail(input.Email.Value)
		if email == "" {
			return nil, validationError("email cannot be empty")
		}
		if err := ensureEmailFree(ctx, s.userRepo, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Role.Set {
		user.Role = models.ParseRole(input.Role.Value)
	}
	if input.Password.Set && input.Password.Value != "" {
		hashed, err := hashPassword(input.Password.Value)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrEmailTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, storageFailure("update user", err)
	}
	return user, nil
}

// Delete removes the account, its reports, and detaches its issues.
// Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *policy.Actor, id uint64) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return validationError("you cannot delete your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageFailure("delete user", err)
	}
	return nil
}

func (s *UserService) find(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find user", err)
	}
	return user, nil
}
