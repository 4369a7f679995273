package repository

import (
	"context"
	"mask-drawing/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockTraceRepository struct {
	mock.Mock
}

func NewMockTraceRepository() *MockTraceRepository {
	return &MockTraceRepository{}
}

func (m *MockTraceRepository) Record(ctx context.Context, role domain.AssetRole, key string) error {
	args := m.Called(ctx, role, key)
	return args.Error(0)
}

func (m *MockTraceRepository) FindByRole(ctx context.Context, role domain.AssetRole) (*domain.TraceEntry, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TraceEntry), args.Error(1)
}

func (m *MockTraceRepository) List(ctx context.Context) ([]domain.TraceEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TraceEntry), args.Error(1)
}
