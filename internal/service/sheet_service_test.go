package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"transquote/internal/domain"
	"transquote/internal/service"
	"transquote/mocks"
)

var (
	notarizationID = uuid.New()
	swornID        = uuid.New()
)

func testCertTypes() []domain.CertificationType {
	return []domain.CertificationType{
		{ID: notarizationID, Name: "Notarization", Code: "notarization", UnitPrice: decimal.RequireFromString("30"), IsActive: true},
		{ID: swornID, Name: "Sworn Translation", Code: "sworn_translation", UnitPrice: decimal.RequireFromString("50"), IsActive: true},
	}
}

func analyzedResult(batchID uuid.UUID) domain.AnalysisResult {
	return domain.AnalysisResult{
		ID:               uuid.New(),
		BatchID:          batchID,
		FileName:         "birth_certificate.pdf",
		WordCount:        450,
		PageCount:        2,
		DocumentType:     "birth_certificate",
		Complexity:       domain.ComplexityMedium,
		DocumentCount:    1,
		SourceLanguage:   "es",
		ProcessingStatus: domain.ProcessingCompleted,
		EntryMethod:      domain.EntryOCR,
	}
}

type sheetServiceFixture struct {
	svc        service.SheetService
	batchRepo  *mocks.MockBatchRepo
	resultRepo *mocks.MockAnalysisResultRepo
	certRepo   *mocks.MockCertificationTypeRepo
	settings   *mocks.MockSettingsService
}

func newSheetServiceFixture() *sheetServiceFixture {
	f := &sheetServiceFixture{
		batchRepo:  new(mocks.MockBatchRepo),
		resultRepo: new(mocks.MockAnalysisResultRepo),
		certRepo:   new(mocks.MockCertificationTypeRepo),
		settings:   new(mocks.MockSettingsService),
	}
	f.svc = service.NewSheetService(f.batchRepo, f.resultRepo, f.certRepo, f.settings)
	return f
}

func (f *sheetServiceFixture) expectOpen(batchID uuid.UUID, results []domain.AnalysisResult) {
	f.batchRepo.On("GetByID", mock.Anything, batchID).Return(&domain.Batch{ID: batchID, Name: "March intake"}, nil)
	f.resultRepo.On("ListByBatch", mock.Anything, batchID).Return(results, nil)
	f.certRepo.On("ListActive", mock.Anything).Return(testCertTypes(), nil)
	f.settings.On("Current", mock.Anything).Return(domain.DefaultSettings())
}

func TestSheetService_OpenBuildsSheet(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	view, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, res.ID, view.Rows[0].AnalysisID)
	assert.False(t, view.HasUnsavedChanges)
	assert.True(t, decimal.RequireFromString("2.3").Equal(view.Rows[0].BillablePages))

	f.batchRepo.AssertExpectations(t)
	f.resultRepo.AssertExpectations(t)
}

func TestSheetService_OpenUnknownBatch(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	f.batchRepo.On("GetByID", mock.Anything, batchID).Return(nil, domain.ErrBatchNotFound)

	_, err := f.svc.Open(context.Background(), batchID)
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestSheetService_EditRequiresOpenSheet(t *testing.T) {
	f := newSheetServiceFixture()

	_, err := f.svc.EditComplexity(context.Background(), uuid.New(), uuid.New(), domain.ComplexityHard)
	assert.ErrorIs(t, err, domain.ErrSheetNotOpen)

	_, err = f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSheetNotOpen)
}

func TestSheetService_EditFlow(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)

	view, err := f.svc.EditBaseRate(context.Background(), batchID, res.ID, decimal.RequireFromString("80"))
	require.NoError(t, err)
	assert.True(t, view.HasUnsavedChanges)
	assert.True(t, view.Rows[0].BaseRateOverridden)

	view, err = f.svc.SetRowCertification(context.Background(), batchID, res.ID, swornID)
	require.NoError(t, err)
	assert.Equal(t, swornID, view.Rows[0].CertificationTypeID)

	_, err = f.svc.EditComplexity(context.Background(), batchID, res.ID, domain.Complexity("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidComplexity)
}

func TestSheetService_SaveAllRows(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	_, err = f.svc.ToggleExclude(context.Background(), batchID, res.ID)
	require.NoError(t, err)

	f.resultRepo.On("UpdatePricing", mock.Anything, res.ID, mock.AnythingOfType("domain.PricingSnapshot"), (*time.Time)(nil)).
		Return(nil)

	report, err := f.svc.Save(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{res.ID}, report.Saved)
	assert.Empty(t, report.Failed)

	view, err := f.svc.Get(context.Background(), batchID)
	require.NoError(t, err)
	assert.False(t, view.HasUnsavedChanges)

	f.resultRepo.AssertExpectations(t)
}

func TestSheetService_SaveReportsStaleRows(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	first := analyzedResult(batchID)
	second := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{first, second})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	_, err = f.svc.ToggleExclude(context.Background(), batchID, first.ID)
	require.NoError(t, err)

	f.resultRepo.On("UpdatePricing", mock.Anything, first.ID, mock.AnythingOfType("domain.PricingSnapshot"), (*time.Time)(nil)).
		Return(nil)
	f.resultRepo.On("UpdatePricing", mock.Anything, second.ID, mock.AnythingOfType("domain.PricingSnapshot"), (*time.Time)(nil)).
		Return(domain.ErrStaleSheet)

	report, err := f.svc.Save(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, report.Saved)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, second.ID, report.Failed[0].AnalysisID)
	assert.True(t, report.Failed[0].Stale)

	// Partial save keeps the sheet dirty
	view, err := f.svc.Get(context.Background(), batchID)
	require.NoError(t, err)
	assert.True(t, view.HasUnsavedChanges)
}

func TestSheetService_CloseGatesOnUnsavedChanges(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	_, err = f.svc.ToggleExclude(context.Background(), batchID, res.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Close(batchID, false), domain.ErrUnsavedChanges)

	require.NoError(t, f.svc.Close(batchID, true))
	_, err = f.svc.Get(context.Background(), batchID)
	assert.ErrorIs(t, err, domain.ErrSheetNotOpen)
}

func TestSheetService_CloseWithoutSessionIsNoop(t *testing.T) {
	f := newSheetServiceFixture()
	assert.NoError(t, f.svc.Close(uuid.New(), false))
}

func TestSheetService_AddManualDocument(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)

	f.resultRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.AnalysisResult) bool {
		return r.BatchID == batchID &&
			r.EntryMethod == domain.EntryManual &&
			r.ProcessingStatus == domain.ProcessingManual &&
			r.WordCount == 0
	})).Return(nil)

	view, err := f.svc.AddManualDocument(context.Background(), batchID, &service.AddManualDocumentInput{
		DocumentType:   "diploma",
		SourceLanguage: "fr",
	})
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)

	manual := view.Rows[1]
	assert.Equal(t, domain.EntryManual, manual.EntryMethod)
	assert.Equal(t, "Manual document 2", manual.FileName)
	assert.True(t, decimal.NewFromInt(1).Equal(manual.BillablePages))
	assert.True(t, manual.BillablePagesOverridden)
	assert.True(t, view.HasUnsavedChanges)

	f.resultRepo.AssertExpectations(t)
}

func TestSheetService_DeleteManualDocument(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)

	f.resultRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	view, err := f.svc.AddManualDocument(context.Background(), batchID, &service.AddManualDocumentInput{})
	require.NoError(t, err)
	manualID := view.Rows[1].AnalysisID

	f.resultRepo.On("Delete", mock.Anything, manualID).Return(nil)
	view, err = f.svc.DeleteManualDocument(context.Background(), batchID, manualID)
	require.NoError(t, err)
	assert.Len(t, view.Rows, 1)

	f.resultRepo.AssertExpectations(t)
}

func TestSheetService_DeleteManualDocumentRejectsPipelineRows(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)

	_, err = f.svc.DeleteManualDocument(context.Background(), batchID, res.ID)
	assert.ErrorIs(t, err, domain.ErrNotManualEntry)
}

func TestSheetService_QuotePayloadSkipsExcludedRows(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	first := analyzedResult(batchID)
	second := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{first, second})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	_, err = f.svc.ToggleExclude(context.Background(), batchID, second.ID)
	require.NoError(t, err)

	payload, err := f.svc.QuotePayload(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, batchID, payload.BatchID)
	require.Len(t, payload.Lines, 1)
	assert.Equal(t, first.ID, payload.Lines[0].AnalysisID)
	assert.True(t, payload.GrandTotal.Equal(payload.Lines[0].LineTotal))
}

func TestSheetService_ReopenRebuildsFromStore(t *testing.T) {
	f := newSheetServiceFixture()
	batchID := uuid.New()
	res := analyzedResult(batchID)
	f.expectOpen(batchID, []domain.AnalysisResult{res})

	_, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	_, err = f.svc.EditBaseRate(context.Background(), batchID, res.ID, decimal.RequireFromString("99"))
	require.NoError(t, err)

	// Reopen discards the unsaved edit and rebuilds from stored state
	view, err := f.svc.Open(context.Background(), batchID)
	require.NoError(t, err)
	assert.False(t, view.HasUnsavedChanges)
	assert.False(t, view.Rows[0].BaseRateOverridden)
	assert.True(t, decimal.RequireFromString("65.00").Equal(view.Rows[0].BaseRate))
}
