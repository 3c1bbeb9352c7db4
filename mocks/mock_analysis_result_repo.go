package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
)

// MockAnalysisResultRepo is a mock implementation of port.AnalysisResultRepository.
type MockAnalysisResultRepo struct {
	mock.Mock
}

func (m *MockAnalysisResultRepo) Create(ctx context.Context, res *domain.AnalysisResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockAnalysisResultRepo) GetByID(ctx context.Context, resultID uuid.UUID) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisResultRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.AnalysisResult, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisResultRepo) UpsertFromAnalysis(ctx context.Context, res *domain.AnalysisResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockAnalysisResultRepo) UpdatePricing(ctx context.Context, resultID uuid.UUID, snap domain.PricingSnapshot, expectedSavedAt *time.Time) error {
	args := m.Called(ctx, resultID, snap, expectedSavedAt)
	return args.Error(0)
}

func (m *MockAnalysisResultRepo) Delete(ctx context.Context, resultID uuid.UUID) error {
	args := m.Called(ctx, resultID)
	return args.Error(0)
}
