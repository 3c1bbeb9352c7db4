package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
)

// MockBatchFileRepo is a mock implementation of port.BatchFileRepository.
type MockBatchFileRepo struct {
	mock.Mock
}

func (m *MockBatchFileRepo) Create(ctx context.Context, file *domain.BatchFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockBatchFileRepo) GetByID(ctx context.Context, batchID, fileID uuid.UUID) (*domain.BatchFile, error) {
	args := m.Called(ctx, batchID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchFile), args.Error(1)
}

func (m *MockBatchFileRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchFile), args.Error(1)
}

func (m *MockBatchFileRepo) ListAnalyzed(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchFile), args.Error(1)
}

func (m *MockBatchFileRepo) SetAnalyzed(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) error {
	args := m.Called(ctx, batchID, fileIDs)
	return args.Error(0)
}

func (m *MockBatchFileRepo) Delete(ctx context.Context, batchID, fileID uuid.UUID) error {
	args := m.Called(ctx, batchID, fileID)
	return args.Error(0)
}
