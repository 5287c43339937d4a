package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userbase/internal/cache"
	apperrors "userbase/internal/errors"
	"userbase/internal/model"
	"userbase/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// UserService enforces all account-related invariants; the repositories
// perform no validation beyond the storage-level unique index on email.
type UserService interface {
	AddUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, name, email, password string, role model.Role) (*model.User, error)
	// DeleteUser reports false, not an error, for an unknown id.
	DeleteUser(ctx context.Context, id uint) (bool, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUsers(ctx context.Context, page, size int, orderBy, direction string) (*model.Paged[model.User], error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// AddUser creates a user with a freshly hashed password. The email existence
// check is advisory; the unique index decides concurrent races, surfacing as
// gorm.ErrDuplicatedKey.
func (s *userService) AddUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email availability: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites name, email and role, and re-hashes the supplied
// password. Callers always resend a password; it is hashed even when
// unchanged (documented contract, see DESIGN.md).
func (s *userService) UpdateUser(ctx context.Context, id uint, name, email, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// advisory check: the email must be free or already owned by this user
	if other, err := s.repo.FindByEmail(ctx, email); err == nil && other != nil && other.ID != id {
		return nil, apperrors.ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email availability: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.Name = name
	user.Email = email
	user.PasswordHash = string(hash)
	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if found {
		_ = s.cache.Delete(ctx, userCacheKey(id))
	}
	return found, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	// Cached copies round-trip through the JSON tags, so PasswordHash is
	// empty on a hit. Credential checks must read through the repository,
	// never through GetUser.
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// GetUsers returns one page of users. Bounds are normalized rather than
// rejected: page < 1 means page 1, size < 1 yields an empty data slice while
// TotalRows still reports the full count. Unrecognized sort combinations
// fall back to id ascending in the repository.
func (s *userService) GetUsers(ctx context.Context, page, size int, orderBy, direction string) (*model.Paged[model.User], error) {
	orderBy = strings.ToLower(orderBy)
	direction = strings.ToLower(direction)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 0
	}

	users, total, err := s.repo.ListPaged(ctx, page, size, orderBy, direction)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &model.Paged[model.User]{
		Data:        users,
		TotalRows:   total,
		CurrentPage: page,
		PageSize:    size,
		OrderBy:     orderBy,
		Direction:   direction,
	}, nil
}
