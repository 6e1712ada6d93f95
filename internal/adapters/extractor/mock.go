package extractor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

type MockExtractor struct {
	mock.Mock
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, filename, contentType string) (*domain.EmbeddedMetadata, error) {
	args := m.Called(ctx, data, filename, contentType)
	meta, _ := args.Get(0).(*domain.EmbeddedMetadata)
	return meta, args.Error(1)
}
