package upload

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Ingest(ctx context.Context, up domain.Upload) (*domain.UploadTransaction, error) {
	args := m.Called(ctx, up)
	txn, _ := args.Get(0).(*domain.UploadTransaction)
	return txn, args.Error(1)
}

func (m *MockUploadService) Transaction(id string) (*domain.UploadTransaction, bool) {
	args := m.Called(id)
	txn, _ := args.Get(0).(*domain.UploadTransaction)
	return txn, args.Bool(1)
}
