package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "userbase/internal/errors"
	"userbase/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListPaged(ctx context.Context, page, size int, orderBy, direction string) ([]model.User, int64, error) {
	args := m.Called(ctx, page, size, orderBy, direction)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func TestUserService_AddUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful creation",
			email: "new@mail.com",
			role:  model.RoleGuest,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@mail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email already taken",
			email: "taken@mail.com",
			role:  model.RoleGuest,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "taken@mail.com").Return(&model.User{ID: 7, Email: "taken@mail.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "concurrent insert loses to unique index",
			email: "raced@mail.com",
			role:  model.RoleGuest,
			setupMock: func(m *MockUserRepository) {
				// advisory check passes, the storage-level index rejects
				m.On("FindByEmail", mock.Anything, "raced@mail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:          "role outside enumeration",
			email:         "new@mail.com",
			role:          model.Role("superuser"),
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.AddUser(context.Background(), "Some User", tt.email, "password123", tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEqual(t, "password123", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	existing := func() *model.User {
		return &model.User{ID: 1, Name: "Administrator", Email: "admin@mail.com", PasswordHash: "old-hash", Role: model.RoleAdmin}
	}

	tests := []struct {
		name          string
		id            uint
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "unknown id",
			id:    42,
			email: "admin@mail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:  "email owned by another user",
			id:    1,
			email: "manager@mail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(existing(), nil)
				m.On("FindByEmail", mock.Anything, "manager@mail.com").Return(&model.User{ID: 2, Email: "manager@mail.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "own unchanged email succeeds",
			id:    1,
			email: "admin@mail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(existing(), nil)
				m.On("FindByEmail", mock.Anything, "admin@mail.com").Return(existing(), nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email freed up succeeds",
			id:    1,
			email: "fresh@mail.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(existing(), nil)
				m.On("FindByEmail", mock.Anything, "fresh@mail.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil)
			user, err := svc.UpdateUser(context.Background(), tt.id, "Updated Name", tt.email, "newpassword", model.RoleManager)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "Updated Name", user.Name)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleManager, user.Role)
				// the supplied password is always re-hashed
				assert.NotEqual(t, "old-hash", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword")))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(true, nil)
	mockRepo.On("Delete", mock.Anything, uint(99)).Return(false, nil)

	svc := NewUserService(mockRepo, nil)

	found, err := svc.DeleteUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, found)

	// unknown id reports false, not an error
	found, err = svc.DeleteUser(context.Background(), 99)
	assert.NoError(t, err)
	assert.False(t, found)

	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUsers(t *testing.T) {
	rows := []model.User{
		{ID: 3, Name: "Guest", Email: "guest@mail.com"},
		{ID: 2, Name: "Manager", Email: "manager@mail.com"},
	}

	mockRepo := new(MockUserRepository)
	mockRepo.On("ListPaged", mock.Anything, 1, 2, "name", "desc").Return(rows, int64(3), nil)

	svc := NewUserService(mockRepo, nil)

	// sort parameters are lowercased before dispatch
	paged, err := svc.GetUsers(context.Background(), 1, 2, "NAME", "DESC")
	assert.NoError(t, err)
	assert.Len(t, paged.Data, 2)
	assert.Equal(t, int64(3), paged.TotalRows)
	assert.Equal(t, 1, paged.CurrentPage)
	assert.Equal(t, 2, paged.PageSize)
	assert.Equal(t, "name", paged.OrderBy)
	assert.Equal(t, "desc", paged.Direction)

	mockRepo.AssertExpectations(t)
}

// sliceUserRepo mimics the repository's id-ascending slicing so the seeded
// paging scenario can run without a database.
type sliceUserRepo struct {
	users []model.User
}

func (f *sliceUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (f *sliceUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (f *sliceUserRepo) Delete(ctx context.Context, id uint) (bool, error)  { return false, nil }
func (f *sliceUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *sliceUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *sliceUserRepo) ListPaged(ctx context.Context, page, size int, orderBy, direction string) ([]model.User, int64, error) {
	start := (page - 1) * size
	if start > len(f.users) {
		start = len(f.users)
	}
	end := start + size
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[start:end], int64(len(f.users)), nil
}

func TestUserService_GetUsers_SeededScenario(t *testing.T) {
	repo := &sliceUserRepo{users: []model.User{
		{ID: 1, Name: "admin", Email: "admin@mail.com"},
		{ID: 2, Name: "manager", Email: "manager@mail.com"},
		{ID: 3, Name: "guest", Email: "guest@mail.com"},
	}}
	svc := NewUserService(repo, nil)

	paged, err := svc.GetUsers(context.Background(), 1, 2, "id", "asc")
	assert.NoError(t, err)
	assert.Len(t, paged.Data, 2)
	assert.Equal(t, uint(1), paged.Data[0].ID)
	assert.Equal(t, uint(2), paged.Data[1].ID)
	assert.Equal(t, int64(3), paged.TotalRows)

	paged, err = svc.GetUsers(context.Background(), 2, 2, "id", "asc")
	assert.NoError(t, err)
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, uint(3), paged.Data[0].ID)
	assert.Equal(t, int64(3), paged.TotalRows)
}

func TestUserService_GetUsers_BoundsNormalization(t *testing.T) {
	mockRepo := new(MockUserRepository)
	// page below 1 is treated as page 1
	mockRepo.On("ListPaged", mock.Anything, 1, 10, "id", "asc").Return([]model.User{}, int64(3), nil)
	// size below 1 degrades to an empty slice but the count is still reported
	mockRepo.On("ListPaged", mock.Anything, 2, 0, "id", "asc").Return([]model.User{}, int64(3), nil)

	svc := NewUserService(mockRepo, nil)

	paged, err := svc.GetUsers(context.Background(), -4, 10, "id", "asc")
	assert.NoError(t, err)
	assert.Equal(t, 1, paged.CurrentPage)

	paged, err = svc.GetUsers(context.Background(), 2, -1, "id", "asc")
	assert.NoError(t, err)
	assert.Empty(t, paged.Data)
	assert.Equal(t, int64(3), paged.TotalRows)

	mockRepo.AssertExpectations(t)
}
