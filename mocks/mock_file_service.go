package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
	"transquote/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, input service.FileUploadInput) (*domain.BatchFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchFile), args.Error(1)
}

func (m *MockFileService) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchFile), args.Error(1)
}

func (m *MockFileService) GetDownloadURL(ctx context.Context, batchID, fileID uuid.UUID) (string, error) {
	args := m.Called(ctx, batchID, fileID)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, batchID, fileID uuid.UUID) error {
	args := m.Called(ctx, batchID, fileID)
	return args.Error(0)
}
