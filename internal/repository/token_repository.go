package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"userbase/internal/model"
)

// ResetTokenRepository defines persistence operations over password-reset
// tokens. Expired rows are never deleted; expiry is the terminal state.
type ResetTokenRepository interface {
	Insert(ctx context.Context, token *model.PasswordResetToken) error
	// FindValid returns the token row for (email, token) if it has not
	// expired at the given instant.
	FindValid(ctx context.Context, email, token string, now time.Time) (*model.PasswordResetToken, error)
	// ExpireValid moves every still-valid token for the email to expired.
	ExpireValid(ctx context.Context, email string, now time.Time) error
	// ExpireByID expires a single token row (single-use redemption).
	ExpireByID(ctx context.Context, id uint, now time.Time) error
	// ListValid returns the raw values of all non-expired tokens.
	ListValid(ctx context.Context, now time.Time) ([]string, error)
	// WithTransaction executes fn against a transactional repository. The
	// expire-old/insert-new pair of a reset request must run inside one
	// transaction to preserve the single-valid-token invariant.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ResetTokenRepository) error) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository builds a GORM-backed repository.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Insert(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *resetTokenRepository) FindValid(ctx context.Context, email, token string, now time.Time) (*model.PasswordResetToken, error) {
	var row model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND token = ? AND expires_at > ?", email, token, now).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *resetTokenRepository) ExpireValid(ctx context.Context, email string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("email = ? AND expires_at > ?", email, now).
		Update("expires_at", now).Error
}

func (r *resetTokenRepository) ExpireByID(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ?", id).
		Update("expires_at", now).Error
}

func (r *resetTokenRepository) ListValid(ctx context.Context, now time.Time) ([]string, error) {
	tokens := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("expires_at > ?", now).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// WithTransaction executes a function within a database transaction.
func (r *resetTokenRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ResetTokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &resetTokenRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
