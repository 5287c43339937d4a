package repository

import (
	"context"

	"gorm.io/gorm"

	"userbase/internal/model"
)

// UserRepository defines persistence operations over user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user and reports whether a row existed.
	Delete(ctx context.Context, id uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ListPaged returns one page of users plus the total unfiltered count.
	ListPaged(ctx context.Context, page, size int, orderBy, direction string) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListPaged(ctx context.Context, page, size int, orderBy, direction string) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []model.User{}
	err := r.db.WithContext(ctx).
		Order(sortClause(orderBy, direction)).
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// sortClause dispatches over the allowed sort key/direction combinations.
// Anything unrecognized falls back to id ascending.
func sortClause(orderBy, direction string) string {
	switch [2]string{orderBy, direction} {
	case [2]string{"id", "asc"}:
		return "id ASC"
	case [2]string{"id", "desc"}:
		return "id DESC"
	case [2]string{"name", "asc"}:
		return "name ASC"
	case [2]string{"name", "desc"}:
		return "name DESC"
	case [2]string{"email", "asc"}:
		return "email ASC"
	case [2]string{"email", "desc"}:
		return "email DESC"
	default:
		return "id ASC"
	}
}
