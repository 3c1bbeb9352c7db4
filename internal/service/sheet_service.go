package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transquote/internal/domain"
	"transquote/internal/port"
	"transquote/internal/pricing"
)

// SheetView is the read model handed to the transport layer: a point-in-time
// copy of the sheet's rows, totals and billing constants.
type SheetView struct {
	BatchID           uuid.UUID       `json:"batch_id"`
	Rows              []pricing.Row   `json:"rows"`
	Totals            pricing.Totals  `json:"totals"`
	Settings          domain.Settings `json:"settings"`
	HasUnsavedChanges bool            `json:"has_unsaved_changes"`
}

// RowSaveFailure describes one row that could not be persisted during a
// save pass.
type RowSaveFailure struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	FileName   string    `json:"file_name"`
	Reason     string    `json:"reason"`
	Stale      bool      `json:"stale"`
}

// SaveReport summarizes a best-effort save: which rows persisted and which
// failed. The sheet stays dirty whenever Failed is non-empty.
type SaveReport struct {
	Saved  []uuid.UUID      `json:"saved"`
	Failed []RowSaveFailure `json:"failed"`
}

// AddManualDocumentInput is the DTO for inserting a hand-entered document
// into an open sheet.
type AddManualDocumentInput struct {
	FileName       string
	DocumentType   string
	SourceLanguage string
	DocumentCount  int
}

// SheetService manages the in-memory pricing sheet sessions, one per
// batch. Opening a sheet rebuilds it from the stored analysis results and
// any persisted pricing snapshots; every edit goes through the session so
// concurrent requests for the same batch serialize.
type SheetService interface {
	// Open builds (or rebuilds, discarding unsaved edits) the sheet for a
	// batch from the current analysis results, settings and certification
	// reference data.
	Open(ctx context.Context, batchID uuid.UUID) (*SheetView, error)
	// Get returns the currently open sheet, or domain.ErrSheetNotOpen.
	Get(ctx context.Context, batchID uuid.UUID) (*SheetView, error)
	Rows(ctx context.Context, batchID uuid.UUID) ([]pricing.Row, error)

	EditComplexity(ctx context.Context, batchID, analysisID uuid.UUID, complexity domain.Complexity) (*SheetView, error)
	EditBillablePages(ctx context.Context, batchID, analysisID uuid.UUID, pages decimal.Decimal) (*SheetView, error)
	EditBaseRate(ctx context.Context, batchID, analysisID uuid.UUID, rate decimal.Decimal) (*SheetView, error)
	SetRowCertification(ctx context.Context, batchID, analysisID, certTypeID uuid.UUID) (*SheetView, error)
	SetDocumentCertification(ctx context.Context, batchID, analysisID uuid.UUID, index int, certTypeID uuid.UUID) (*SheetView, error)
	ToggleExclude(ctx context.Context, batchID, analysisID uuid.UUID) (*SheetView, error)

	AddManualDocument(ctx context.Context, batchID uuid.UUID, input *AddManualDocumentInput) (*SheetView, error)
	DeleteManualDocument(ctx context.Context, batchID, analysisID uuid.UUID) (*SheetView, error)

	// Save persists every row's pricing snapshot best-effort: one row
	// failing never blocks the others. Rows whose stored snapshot changed
	// since the sheet was opened are reported stale and left untouched.
	Save(ctx context.Context, batchID uuid.UUID) (*SaveReport, error)
	// Close discards the session. With unsaved edits it refuses unless
	// force is set, so the caller can confirm with the operator first.
	Close(batchID uuid.UUID, force bool) error

	// QuotePayload renders the open sheet into the payload consumed by
	// quote creation and update.
	QuotePayload(ctx context.Context, batchID uuid.UUID) (*pricing.QuotePayload, error)
}

type sheetSession struct {
	mu    sync.Mutex
	sheet *pricing.Sheet
}

type sheetService struct {
	batchRepo  port.BatchRepository
	resultRepo port.AnalysisResultRepository
	certRepo   port.CertificationTypeRepository
	settings   SettingsService

	mu       sync.Mutex
	sessions map[uuid.UUID]*sheetSession
}

// NewSheetService creates a new SheetService implementation.
func NewSheetService(
	batchRepo port.BatchRepository,
	resultRepo port.AnalysisResultRepository,
	certRepo port.CertificationTypeRepository,
	settings SettingsService,
) SheetService {
	return &sheetService{
		batchRepo:  batchRepo,
		resultRepo: resultRepo,
		certRepo:   certRepo,
		settings:   settings,
		sessions:   make(map[uuid.UUID]*sheetSession),
	}
}

func (s *sheetService) Open(ctx context.Context, batchID uuid.UUID) (*SheetView, error) {
	if _, err := s.batchRepo.GetByID(ctx, batchID); err != nil {
		return nil, fmt.Errorf("sheetService.Open: %w", err)
	}

	results, err := s.resultRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("sheetService.Open: list analysis results: %w", err)
	}
	certTypes, err := s.certRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheetService.Open: list certification types: %w", err)
	}

	settings := s.settings.Current(ctx)
	builder := pricing.NewBuilder(settings, certTypes)
	sheet := builder.BuildSheet(batchID, results)

	s.mu.Lock()
	sess, ok := s.sessions[batchID]
	if !ok {
		sess = &sheetSession{}
		s.sessions[batchID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.sheet != nil && sess.sheet.HasUnsavedChanges() {
		log.Printf("sheetService.Open: batch %s reopened with unsaved changes, discarding", batchID)
	}
	sess.sheet = sheet
	return viewOf(sheet), nil
}

// session returns the open session for a batch, or domain.ErrSheetNotOpen.
func (s *sheetService) session(batchID uuid.UUID) (*sheetSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[batchID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrSheetNotOpen
	}
	sess.mu.Lock()
	if sess.sheet == nil {
		sess.mu.Unlock()
		return nil, domain.ErrSheetNotOpen
	}
	return sess, nil
}

func (s *sheetService) Get(ctx context.Context, batchID uuid.UUID) (*SheetView, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return viewOf(sess.sheet), nil
}

func (s *sheetService) Rows(ctx context.Context, batchID uuid.UUID) ([]pricing.Row, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.sheet.Rows(), nil
}

// edit runs one mutation against the open sheet and returns the refreshed
// view.
func (s *sheetService) edit(batchID uuid.UUID, fn func(sheet *pricing.Sheet) error) (*SheetView, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	if err := fn(sess.sheet); err != nil {
		return nil, err
	}
	return viewOf(sess.sheet), nil
}

func (s *sheetService) EditComplexity(ctx context.Context, batchID, analysisID uuid.UUID, complexity domain.Complexity) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.EditComplexity(analysisID, complexity)
	})
}

func (s *sheetService) EditBillablePages(ctx context.Context, batchID, analysisID uuid.UUID, pages decimal.Decimal) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.EditBillablePages(analysisID, pages)
	})
}

func (s *sheetService) EditBaseRate(ctx context.Context, batchID, analysisID uuid.UUID, rate decimal.Decimal) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.EditBaseRate(analysisID, rate)
	})
}

func (s *sheetService) SetRowCertification(ctx context.Context, batchID, analysisID, certTypeID uuid.UUID) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.SetRowCertification(analysisID, certTypeID)
	})
}

func (s *sheetService) SetDocumentCertification(ctx context.Context, batchID, analysisID uuid.UUID, index int, certTypeID uuid.UUID) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.SetDocumentCertification(analysisID, index, certTypeID)
	})
}

func (s *sheetService) ToggleExclude(ctx context.Context, batchID, analysisID uuid.UUID) (*SheetView, error) {
	return s.edit(batchID, func(sheet *pricing.Sheet) error {
		return sheet.ToggleExclude(analysisID)
	})
}

func (s *sheetService) AddManualDocument(ctx context.Context, batchID uuid.UUID, input *AddManualDocumentInput) (*SheetView, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	res := &domain.AnalysisResult{
		ID:               uuid.New(),
		BatchID:          batchID,
		FileName:         input.FileName,
		DocumentType:     input.DocumentType,
		SourceLanguage:   input.SourceLanguage,
		DocumentCount:    input.DocumentCount,
		ProcessingStatus: domain.ProcessingManual,
		EntryMethod:      domain.EntryManual,
	}
	if res.FileName == "" {
		res.FileName = fmt.Sprintf("Manual document %d", sess.sheet.Len()+1)
	}
	if res.DocumentCount < 1 {
		res.DocumentCount = 1
	}

	if err := s.resultRepo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("sheetService.AddManualDocument: %w", err)
	}
	if _, err := sess.sheet.AddRow(res); err != nil {
		// The record exists but the sheet could not take the row; remove
		// the orphan so a reopen does not resurrect it unexpectedly.
		if delErr := s.resultRepo.Delete(ctx, res.ID); delErr != nil {
			log.Printf("sheetService.AddManualDocument: cleanup of %s failed: %v", res.ID, delErr)
		}
		return nil, err
	}
	return viewOf(sess.sheet), nil
}

func (s *sheetService) DeleteManualDocument(ctx context.Context, batchID, analysisID uuid.UUID) (*SheetView, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	row, err := sess.sheet.Row(analysisID)
	if err != nil {
		return nil, err
	}
	if row.EntryMethod != domain.EntryManual {
		return nil, domain.ErrNotManualEntry
	}
	if err := s.resultRepo.Delete(ctx, analysisID); err != nil {
		return nil, fmt.Errorf("sheetService.DeleteManualDocument: %w", err)
	}
	if err := sess.sheet.RemoveRow(analysisID); err != nil {
		return nil, err
	}
	return viewOf(sess.sheet), nil
}

func (s *sheetService) Save(ctx context.Context, batchID uuid.UUID) (*SaveReport, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	now := time.Now().UTC()
	report := &SaveReport{Saved: []uuid.UUID{}, Failed: []RowSaveFailure{}}

	for _, row := range sess.sheet.Rows() {
		snap := row.Snapshot(now)
		if err := s.resultRepo.UpdatePricing(ctx, row.AnalysisID, snap, row.LoadedSavedAt()); err != nil {
			stale := errors.Is(err, domain.ErrStaleSheet)
			log.Printf("sheetService.Save: row %s (%s) failed: %v", row.AnalysisID, row.FileName, err)
			report.Failed = append(report.Failed, RowSaveFailure{
				AnalysisID: row.AnalysisID,
				FileName:   row.FileName,
				Reason:     err.Error(),
				Stale:      stale,
			})
			continue
		}
		sess.sheet.MarkRowSaved(row.AnalysisID, snap)
		report.Saved = append(report.Saved, row.AnalysisID)
	}

	if len(report.Failed) == 0 {
		sess.sheet.ClearUnsaved()
	}
	return report, nil
}

func (s *sheetService) Close(batchID uuid.UUID, force bool) error {
	s.mu.Lock()
	sess, ok := s.sessions[batchID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.sheet != nil && sess.sheet.HasUnsavedChanges() && !force {
		return domain.ErrUnsavedChanges
	}
	sess.sheet = nil

	s.mu.Lock()
	delete(s.sessions, batchID)
	s.mu.Unlock()
	return nil
}

func (s *sheetService) QuotePayload(ctx context.Context, batchID uuid.UUID) (*pricing.QuotePayload, error) {
	sess, err := s.session(batchID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	payload := pricing.BuildQuotePayload(sess.sheet)
	return &payload, nil
}

func viewOf(sheet *pricing.Sheet) *SheetView {
	return &SheetView{
		BatchID:           sheet.BatchID,
		Rows:              sheet.Rows(),
		Totals:            sheet.Totals(),
		Settings:          sheet.Settings(),
		HasUnsavedChanges: sheet.HasUnsavedChanges(),
	}
}
