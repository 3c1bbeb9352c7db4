package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"transquote/internal/domain"
	"transquote/internal/pricing"
	"transquote/internal/service"
)

// MockSheetService is a mock implementation of service.SheetService.
type MockSheetService struct {
	mock.Mock
}

func (m *MockSheetService) Open(ctx context.Context, batchID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) Get(ctx context.Context, batchID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) Rows(ctx context.Context, batchID uuid.UUID) ([]pricing.Row, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Row), args.Error(1)
}

func (m *MockSheetService) EditComplexity(ctx context.Context, batchID, analysisID uuid.UUID, complexity domain.Complexity) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID, complexity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) EditBillablePages(ctx context.Context, batchID, analysisID uuid.UUID, pages decimal.Decimal) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) EditBaseRate(ctx context.Context, batchID, analysisID uuid.UUID, rate decimal.Decimal) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) SetRowCertification(ctx context.Context, batchID, analysisID, certTypeID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID, certTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) SetDocumentCertification(ctx context.Context, batchID, analysisID uuid.UUID, index int, certTypeID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID, index, certTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) ToggleExclude(ctx context.Context, batchID, analysisID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) AddManualDocument(ctx context.Context, batchID uuid.UUID, input *service.AddManualDocumentInput) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) DeleteManualDocument(ctx context.Context, batchID, analysisID uuid.UUID) (*service.SheetView, error) {
	args := m.Called(ctx, batchID, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SheetView), args.Error(1)
}

func (m *MockSheetService) Save(ctx context.Context, batchID uuid.UUID) (*service.SaveReport, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaveReport), args.Error(1)
}

func (m *MockSheetService) Close(batchID uuid.UUID, force bool) error {
	args := m.Called(batchID, force)
	return args.Error(0)
}

func (m *MockSheetService) QuotePayload(ctx context.Context, batchID uuid.UUID) (*pricing.QuotePayload, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.QuotePayload), args.Error(1)
}
