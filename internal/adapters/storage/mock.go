package storage

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) GeneratePresignedPost(ctx context.Context, fileKey string, maxBytes int64, expiresAt time.Time) (string, map[string]string, error) {
	args := m.Called(ctx, fileKey, maxBytes, expiresAt)
	return args.String(0), args.Get(1).(map[string]string), args.Error(2)
}

func (m *MockStorage) GetObjectInfo(ctx context.Context, fileKey string) (*minio.ObjectInfo, error) {
	args := m.Called(ctx, fileKey)
	return args.Get(0).(*minio.ObjectInfo), args.Error(1)
}

func (m *MockStorage) GetHeaderBytes(ctx context.Context, fileKey string, n int64) ([]byte, error) {
	args := m.Called(ctx, fileKey, n)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) DeleteObject(ctx context.Context, fileKey string) error {
	args := m.Called(ctx, fileKey)
	return args.Error(0)
}
