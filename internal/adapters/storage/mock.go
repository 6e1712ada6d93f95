package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

type MockBlobStorage struct {
	mock.Mock
}

func NewMockBlobStorage() *MockBlobStorage {
	return &MockBlobStorage{}
}

func (m *MockBlobStorage) IssueUploadCredential(ctx context.Context, path, contentType string, size int64) (*port.UploadCredential, error) {
	args := m.Called(ctx, path, contentType, size)
	cred, _ := args.Get(0).(*port.UploadCredential)
	return cred, args.Error(1)
}

func (m *MockBlobStorage) Put(ctx context.Context, cred *port.UploadCredential, data []byte) error {
	args := m.Called(ctx, cred, data)
	return args.Error(0)
}

func (m *MockBlobStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{}
}

func (m *MockObjectStore) GetObject(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *MockObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) RemoveObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
