package credential

import (
	"context"
	"mask-drawing/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockCredentialService is a mock implementation of CredentialService
type MockCredentialService struct {
	mock.Mock
}

// NewMockCredentialService creates a new MockCredentialService
func NewMockCredentialService() *MockCredentialService {
	return &MockCredentialService{}
}

func (m *MockCredentialService) Issue(ctx context.Context, role domain.AssetRole) (*domain.UploadCredential, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(*domain.UploadCredential), args.Error(1)
}

func (m *MockCredentialService) RoleForKey(key string) (domain.AssetRole, error) {
	args := m.Called(key)
	return args.Get(0).(domain.AssetRole), args.Error(1)
}
