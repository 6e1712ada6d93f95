package settings

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (domain.GallerySettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.GallerySettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, settings domain.GallerySettings) (domain.GallerySettings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(domain.GallerySettings), args.Error(1)
}
