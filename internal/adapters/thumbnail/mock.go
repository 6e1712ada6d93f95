package thumbnail

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockThumbnailer struct {
	mock.Mock
}

func NewMockThumbnailer() *MockThumbnailer {
	return &MockThumbnailer{}
}

func (m *MockThumbnailer) Generate(ctx context.Context, data []byte, contentType string) ([]byte, error) {
	args := m.Called(ctx, data, contentType)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}
