package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
)

// MockCertificationTypeRepo is a mock implementation of port.CertificationTypeRepository.
type MockCertificationTypeRepo struct {
	mock.Mock
}

func (m *MockCertificationTypeRepo) ListActive(ctx context.Context) ([]domain.CertificationType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CertificationType), args.Error(1)
}

func (m *MockCertificationTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CertificationType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CertificationType), args.Error(1)
}
