package gallery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// MockGalleryService is a mock implementation of GalleryService
type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) Index(ctx context.Context) (*domain.MediaIndex, error) {
	args := m.Called(ctx)
	idx, _ := args.Get(0).(*domain.MediaIndex)
	return idx, args.Error(1)
}

func (m *MockGalleryService) MediaForYear(ctx context.Context, year int) ([]domain.MediaRecord, error) {
	args := m.Called(ctx, year)
	records, _ := args.Get(0).([]domain.MediaRecord)
	return records, args.Error(1)
}
