package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userbase/internal/auth"
	"userbase/internal/cache"
	apperrors "userbase/internal/errors"
	"userbase/internal/model"
	"userbase/internal/repository"
)

// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// AuthService handles credential authentication, JWT sessions and the
// password-reset token lifecycle.
type AuthService interface {
	// Authenticate returns the user only when the email exists and the
	// password validates against the stored hash. Both failure causes map
	// to the same error so callers cannot enumerate accounts.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	// ForgotPassword expires any valid tokens for the email and issues a
	// fresh one, atomically. An unknown email yields an empty token and no
	// error; the HTTP layer answers identically either way.
	ForgotPassword(ctx context.Context, email string) (string, error)
	// ResetPassword redeems a valid token: the token is expired (single
	// use) and the new password is hashed and stored.
	ResetPassword(ctx context.Context, email, token, newPassword string) (*model.User, error)
	// ValidResetTokens lists all non-expired token values. It exposes raw
	// tokens and must only be routed to admin diagnostics.
	ValidResetTokens(ctx context.Context) ([]string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.ResetTokenRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
	resetTTL   time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	cache *cache.Client,
	resetTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
		resetTTL:   resetTTL,
	}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// only a missing row is a credential failure; store errors propagate
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the credentials and issues access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.Authenticate(ctx, email, password)
	if err != nil {
		return "", "", nil, err
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, user.Role, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, storedRole, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserID, claims.Email, storedRole)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no such account; reveal nothing to the caller
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token := uuid.New().String()
	now := time.Now()

	// Expiring the superseded tokens and inserting the fresh one must
	// commit together, or a failure in between would leave the email with
	// no valid token while the caller holds one.
	err = s.tokenRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.ResetTokenRepository) error {
		if err := txRepo.ExpireValid(ctx, user.Email, now); err != nil {
			return err
		}
		return txRepo.Insert(ctx, &model.PasswordResetToken{
			Email:     user.Email,
			Token:     token,
			ExpiresAt: now.Add(s.resetTTL),
		})
	})
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, token, newPassword string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := time.Now()
	row, err := s.tokenRepo.FindValid(ctx, email, token, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Burn the token before storing the new hash so a failure partway
	// cannot leave a redeemable token behind.
	if err := s.tokenRepo.ExpireByID(ctx, row.ID, now); err != nil {
		return nil, fmt.Errorf("expire reset token: %w", err)
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return user, nil
}

func (s *authService) ValidResetTokens(ctx context.Context) ([]string, error) {
	return s.tokenRepo.ListValid(ctx, time.Now())
}
