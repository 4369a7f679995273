package uploader

import (
	"context"
	"io"
	"mask-drawing/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

func (m *MockUploader) Upload(ctx context.Context, role domain.AssetRole, filename string, file io.Reader, credentialEndpoint string) (*domain.UploadResult, error) {
	args := m.Called(ctx, role, filename, file, credentialEndpoint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}
