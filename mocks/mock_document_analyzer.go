package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"transquote/internal/port"
)

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) Submit(ctx context.Context, batchID uuid.UUID, files []port.AnalyzeFileRef) (*port.JobState, error) {
	args := m.Called(ctx, batchID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobState), args.Error(1)
}

func (m *MockDocumentAnalyzer) JobStatus(ctx context.Context, jobID string) (*port.JobState, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobState), args.Error(1)
}

func (m *MockDocumentAnalyzer) Results(ctx context.Context, jobID string) ([]port.AnalyzedDocument, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.AnalyzedDocument), args.Error(1)
}

func (m *MockDocumentAnalyzer) AnalyzeFile(ctx context.Context, file port.AnalyzeFileRef) ([]port.AnalyzedDocument, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.AnalyzedDocument), args.Error(1)
}
