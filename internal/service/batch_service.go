package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"transquote/internal/domain"
	"transquote/internal/port"
)

// CreateBatchInput is the DTO for creating a batch.
type CreateBatchInput struct {
	Name string
}

// BatchService manages batches and their analysis jobs.
type BatchService interface {
	Create(ctx context.Context, input *CreateBatchInput) (*domain.Batch, error)
	GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error)
	// Analyze submits the selected files for OCR/AI analysis. A single
	// file is analyzed synchronously and the batch lands directly in a
	// terminal state; multiple files go through a pollable job watched by
	// the monitor.
	Analyze(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) (*domain.Batch, error)
	// Reanalyze re-selects the previously analyzed files and submits them
	// as a fresh job. The prior job is never mutated.
	Reanalyze(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
	// RefreshStatus performs one out-of-band poll of the batch's job.
	RefreshStatus(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
}

type batchService struct {
	batchRepo  port.BatchRepository
	fileRepo   port.BatchFileRepository
	resultRepo port.AnalysisResultRepository
	storage    port.ObjectStorage
	analyzer   port.DocumentAnalyzer
	monitor    *BatchJobMonitor
	presignTTL int64
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(
	batchRepo port.BatchRepository,
	fileRepo port.BatchFileRepository,
	resultRepo port.AnalysisResultRepository,
	storage port.ObjectStorage,
	analyzer port.DocumentAnalyzer,
	monitor *BatchJobMonitor,
	presignTTL int64,
) BatchService {
	return &batchService{
		batchRepo:  batchRepo,
		fileRepo:   fileRepo,
		resultRepo: resultRepo,
		storage:    storage,
		analyzer:   analyzer,
		monitor:    monitor,
		presignTTL: presignTTL,
	}
}

func (s *batchService) Create(ctx context.Context, input *CreateBatchInput) (*domain.Batch, error) {
	batch := &domain.Batch{
		ID:     uuid.New(),
		Name:   input.Name,
		Status: domain.BatchQueued,
	}
	log.Printf("batchService.Create: creating batch %s (%q)", batch.ID, batch.Name)
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	return batch, nil
}

func (s *batchService) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	return s.batchRepo.GetByID(ctx, batchID)
}

func (s *batchService) List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error) {
	return s.batchRepo.List(ctx, offset, limit)
}

func (s *batchService) Analyze(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) (*domain.Batch, error) {
	if len(fileIDs) == 0 {
		return nil, domain.ErrNoFilesSelected
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == domain.BatchProcessing {
		return nil, domain.ErrBatchAlreadyProcessing
	}

	refs, err := s.fileRefs(ctx, batchID, fileIDs)
	if err != nil {
		return nil, err
	}

	if len(refs) == 1 {
		return s.analyzeSync(ctx, batch, refs[0])
	}
	return s.submitJob(ctx, batch, refs)
}

func (s *batchService) Reanalyze(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == domain.BatchProcessing {
		return nil, domain.ErrBatchAlreadyProcessing
	}

	files, err := s.fileRepo.ListAnalyzed(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrNoAnalyzedFiles
	}

	fileIDs := make([]uuid.UUID, 0, len(files))
	for _, f := range files {
		fileIDs = append(fileIDs, f.ID)
	}
	log.Printf("batchService.Reanalyze: re-submitting %d files for batch %s", len(fileIDs), batchID)
	return s.Analyze(ctx, batchID, fileIDs)
}

func (s *batchService) RefreshStatus(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	return s.monitor.Poll(ctx, batchID)
}

// fileRefs resolves the selected files into analyzer references with
// presigned download URLs.
func (s *batchService) fileRefs(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) ([]port.AnalyzeFileRef, error) {
	refs := make([]port.AnalyzeFileRef, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		file, err := s.fileRepo.GetByID(ctx, batchID, fileID)
		if err != nil {
			return nil, err
		}
		url, err := s.storage.GetPresignedURL(ctx, file.S3Bucket, file.S3Key, s.presignTTL)
		if err != nil {
			return nil, fmt.Errorf("presigning %s: %w", file.FileName, err)
		}
		refs = append(refs, port.AnalyzeFileRef{
			FileID:      file.ID,
			FileName:    file.FileName,
			ContentType: file.ContentType,
			DownloadURL: url,
		})
	}
	return refs, nil
}

// analyzeSync runs the synchronous single-shot path: the batch goes
// straight to a terminal state without ever entering processing.
func (s *batchService) analyzeSync(ctx context.Context, batch *domain.Batch, ref port.AnalyzeFileRef) (*domain.Batch, error) {
	log.Printf("batchService.Analyze: synchronous analysis of %s in batch %s", ref.FileName, batch.ID)

	batch.JobID = ""
	batch.TotalFiles = 1

	docs, err := s.analyzer.AnalyzeFile(ctx, ref)
	if err != nil {
		log.Printf("batchService.Analyze: synchronous analysis failed: %v", err)
		docs = []port.AnalyzedDocument{{
			FileID:       ref.FileID,
			FileName:     ref.FileName,
			Failed:       true,
			ErrorMessage: err.Error(),
		}}
	}

	if err := ingestResults(ctx, s.resultRepo, s.fileRepo, batch.ID, docs); err != nil {
		return nil, err
	}

	completed, failed := countOutcomes(docs)
	batch.CompletedFiles = completed
	batch.FailedFiles = failed
	switch {
	case completed == 0:
		batch.Status = domain.BatchFailed
	case failed > 0:
		batch.Status = domain.BatchPartial
	default:
		batch.Status = domain.BatchCompleted
	}

	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *batchService) submitJob(ctx context.Context, batch *domain.Batch, refs []port.AnalyzeFileRef) (*domain.Batch, error) {
	state, err := s.analyzer.Submit(ctx, batch.ID, refs)
	if err != nil {
		return nil, fmt.Errorf("submitting analysis job: %w", err)
	}

	log.Printf("batchService.Analyze: submitted job %s for batch %s (%d files)",
		state.JobID, batch.ID, len(refs))

	batch.JobID = state.JobID
	batch.Status = state.Status
	if batch.Status == "" {
		batch.Status = domain.BatchQueued
	}
	batch.TotalFiles = len(refs)
	batch.CompletedFiles = 0
	batch.FailedFiles = 0

	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	if !batch.Status.Terminal() {
		s.monitor.Watch(batch.ID)
	}
	return batch, nil
}

// countOutcomes tallies distinct files by failure, since one file can
// yield several analyzed documents.
func countOutcomes(docs []port.AnalyzedDocument) (completed, failed int) {
	seen := make(map[uuid.UUID]bool)
	for _, d := range docs {
		if seen[d.FileID] {
			continue
		}
		seen[d.FileID] = true
		if d.Failed {
			failed++
		} else {
			completed++
		}
	}
	return completed, failed
}

// ingestResults adapts analyzer output into canonical analysis results and
// upserts them, preserving persisted pricing snapshots, then marks the
// source files analyzed.
func ingestResults(
	ctx context.Context,
	resultRepo port.AnalysisResultRepository,
	fileRepo port.BatchFileRepository,
	batchID uuid.UUID,
	docs []port.AnalyzedDocument,
) error {
	fileIDs := make([]uuid.UUID, 0, len(docs))
	for i := range docs {
		res := resultFromAnalyzed(batchID, &docs[i])
		if err := resultRepo.UpsertFromAnalysis(ctx, res); err != nil {
			return fmt.Errorf("storing analysis result for %s: %w", docs[i].FileName, err)
		}
		fileIDs = append(fileIDs, docs[i].FileID)
	}
	if err := fileRepo.SetAnalyzed(ctx, batchID, fileIDs); err != nil {
		return err
	}
	return nil
}

// resultFromAnalyzed is the record-store boundary adapter from the
// analyzer's output format to the canonical AnalysisResult.
func resultFromAnalyzed(batchID uuid.UUID, doc *port.AnalyzedDocument) *domain.AnalysisResult {
	res := &domain.AnalysisResult{
		ID:             uuid.New(),
		BatchID:        batchID,
		FileID:         uuid.NullUUID{UUID: doc.FileID, Valid: doc.FileID != uuid.Nil},
		FileName:       doc.FileName,
		WordCount:      doc.WordCount,
		PageCount:      doc.PageCount,
		DocumentType:   doc.DocumentType,
		Complexity:     doc.Complexity,
		DocumentCount:  doc.DocumentCount,
		SubDocuments:   doc.SubDocuments,
		SourceLanguage: doc.SourceLanguage,
		ErrorMessage:   doc.ErrorMessage,
	}
	if doc.Failed {
		res.ProcessingStatus = domain.ProcessingFailed
		res.EntryMethod = domain.EntryAIFailed
	} else {
		res.ProcessingStatus = domain.ProcessingCompleted
		res.EntryMethod = domain.EntryOCR
	}
	if res.WordCount < 0 {
		res.WordCount = 0
	}
	if res.DocumentCount < 1 {
		res.DocumentCount = 1
	}
	if !domain.ValidComplexities[res.Complexity] {
		res.Complexity = domain.ComplexityEasy
	}
	return res
}
