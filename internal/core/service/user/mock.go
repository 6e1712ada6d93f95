package user

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}
