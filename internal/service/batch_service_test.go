package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"transquote/internal/domain"
	"transquote/internal/port"
	"transquote/internal/service"
	"transquote/mocks"
)

type batchServiceFixture struct {
	svc        service.BatchService
	monitor    *service.BatchJobMonitor
	batchRepo  *mocks.MockBatchRepo
	fileRepo   *mocks.MockBatchFileRepo
	resultRepo *mocks.MockAnalysisResultRepo
	storage    *mocks.MockObjectStorage
	analyzer   *mocks.MockDocumentAnalyzer
}

func newBatchServiceFixture() *batchServiceFixture {
	f := &batchServiceFixture{
		batchRepo:  new(mocks.MockBatchRepo),
		fileRepo:   new(mocks.MockBatchFileRepo),
		resultRepo: new(mocks.MockAnalysisResultRepo),
		storage:    new(mocks.MockObjectStorage),
		analyzer:   new(mocks.MockDocumentAnalyzer),
	}
	// A long poll interval keeps the watcher ticker quiet during tests.
	f.monitor = service.NewBatchJobMonitor(f.batchRepo, f.resultRepo, f.fileRepo, f.analyzer, service.MonitorConfig{
		PollInterval: time.Hour,
	})
	f.svc = service.NewBatchService(f.batchRepo, f.fileRepo, f.resultRepo, f.storage, f.analyzer, f.monitor, 900)
	return f
}

func storedFile(batchID uuid.UUID, name string) *domain.BatchFile {
	return &domain.BatchFile{
		ID:          uuid.New(),
		BatchID:     batchID,
		FileName:    name,
		FileType:    domain.FileTypePDF,
		S3Bucket:    "scans",
		S3Key:       "batches/" + batchID.String() + "/" + name,
		ContentType: "application/pdf",
	}
}

func TestBatchService_Create(t *testing.T) {
	f := newBatchServiceFixture()
	f.batchRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Batch) bool {
		return b.Name == "March intake" && b.Status == domain.BatchQueued
	})).Return(nil)

	batch, err := f.svc.Create(context.Background(), &service.CreateBatchInput{Name: "March intake"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, batch.ID)

	f.batchRepo.AssertExpectations(t)
}

func TestBatchService_AnalyzeRequiresFiles(t *testing.T) {
	f := newBatchServiceFixture()
	_, err := f.svc.Analyze(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNoFilesSelected)
}

func TestBatchService_AnalyzeRejectsProcessingBatch(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchProcessing}, nil)

	_, err := f.svc.Analyze(context.Background(), batchID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, domain.ErrBatchAlreadyProcessing)
}

func TestBatchService_AnalyzeSingleFileSynchronously(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	file := storedFile(batchID, "passport.pdf")

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchQueued}, nil)
	f.fileRepo.On("GetByID", mock.Anything, batchID, file.ID).Return(file, nil)
	f.storage.On("GetPresignedURL", mock.Anything, file.S3Bucket, file.S3Key, int64(900)).
		Return("https://signed.example/passport.pdf", nil)

	f.analyzer.On("AnalyzeFile", mock.Anything, mock.MatchedBy(func(ref port.AnalyzeFileRef) bool {
		return ref.FileID == file.ID && ref.DownloadURL == "https://signed.example/passport.pdf"
	})).Return([]port.AnalyzedDocument{{
		FileID:        file.ID,
		FileName:      file.FileName,
		WordCount:     450,
		DocumentType:  "passport",
		Complexity:    domain.ComplexityMedium,
		DocumentCount: 1,
	}}, nil)

	f.resultRepo.On("UpsertFromAnalysis", mock.Anything, mock.MatchedBy(func(r *domain.AnalysisResult) bool {
		return r.BatchID == batchID &&
			r.ProcessingStatus == domain.ProcessingCompleted &&
			r.EntryMethod == domain.EntryOCR
	})).Return(nil)
	f.fileRepo.On("SetAnalyzed", mock.Anything, batchID, []uuid.UUID{file.ID}).Return(nil)
	f.batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	batch, err := f.svc.Analyze(context.Background(), batchID, []uuid.UUID{file.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)
	assert.Equal(t, 1, batch.CompletedFiles)
	assert.Equal(t, 0, batch.FailedFiles)
	assert.Empty(t, batch.JobID)

	f.analyzer.AssertExpectations(t)
	f.resultRepo.AssertExpectations(t)
}

func TestBatchService_AnalyzeSingleFileFailureStillRecorded(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	file := storedFile(batchID, "blurry.pdf")

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchQueued}, nil)
	f.fileRepo.On("GetByID", mock.Anything, batchID, file.ID).Return(file, nil)
	f.storage.On("GetPresignedURL", mock.Anything, file.S3Bucket, file.S3Key, int64(900)).
		Return("https://signed.example/blurry.pdf", nil)
	f.analyzer.On("AnalyzeFile", mock.Anything, mock.Anything).
		Return(nil, errors.New("ocr engine unavailable"))

	f.resultRepo.On("UpsertFromAnalysis", mock.Anything, mock.MatchedBy(func(r *domain.AnalysisResult) bool {
		return r.ProcessingStatus == domain.ProcessingFailed &&
			r.EntryMethod == domain.EntryAIFailed &&
			r.ErrorMessage != ""
	})).Return(nil)
	f.fileRepo.On("SetAnalyzed", mock.Anything, batchID, []uuid.UUID{file.ID}).Return(nil)
	f.batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	batch, err := f.svc.Analyze(context.Background(), batchID, []uuid.UUID{file.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchFailed, batch.Status)
	assert.Equal(t, 1, batch.FailedFiles)
}

func TestBatchService_AnalyzeMultipleFilesSubmitsJob(t *testing.T) {
	f := newBatchServiceFixture()
	defer f.monitor.Shutdown()

	batchID := uuid.New()
	first := storedFile(batchID, "passport.pdf")
	second := storedFile(batchID, "diploma.pdf")

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchQueued}, nil)
	f.fileRepo.On("GetByID", mock.Anything, batchID, first.ID).Return(first, nil)
	f.fileRepo.On("GetByID", mock.Anything, batchID, second.ID).Return(second, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "scans", mock.Anything, int64(900)).
		Return("https://signed.example/file", nil)

	f.analyzer.On("Submit", mock.Anything, batchID, mock.MatchedBy(func(refs []port.AnalyzeFileRef) bool {
		return len(refs) == 2
	})).Return(&port.JobState{JobID: "job-42", Status: domain.BatchProcessing}, nil)
	f.batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	batch, err := f.svc.Analyze(context.Background(), batchID, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, "job-42", batch.JobID)
	assert.Equal(t, domain.BatchProcessing, batch.Status)
	assert.Equal(t, 2, batch.TotalFiles)

	f.analyzer.AssertExpectations(t)
}

func TestBatchService_ReanalyzeUsesPreviouslyAnalyzedFiles(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	file := storedFile(batchID, "passport.pdf")
	file.Analyzed = true

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchCompleted}, nil)
	f.fileRepo.On("ListAnalyzed", mock.Anything, batchID).Return([]domain.BatchFile{*file}, nil)
	f.fileRepo.On("GetByID", mock.Anything, batchID, file.ID).Return(file, nil)
	f.storage.On("GetPresignedURL", mock.Anything, file.S3Bucket, file.S3Key, int64(900)).
		Return("https://signed.example/passport.pdf", nil)
	f.analyzer.On("AnalyzeFile", mock.Anything, mock.Anything).Return([]port.AnalyzedDocument{{
		FileID:        file.ID,
		FileName:      file.FileName,
		WordCount:     500,
		DocumentCount: 1,
	}}, nil)
	f.resultRepo.On("UpsertFromAnalysis", mock.Anything, mock.Anything).Return(nil)
	f.fileRepo.On("SetAnalyzed", mock.Anything, batchID, []uuid.UUID{file.ID}).Return(nil)
	f.batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	batch, err := f.svc.Reanalyze(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)
}

func TestBatchService_ReanalyzeWithoutAnalyzedFiles(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchCompleted}, nil)
	f.fileRepo.On("ListAnalyzed", mock.Anything, batchID).Return([]domain.BatchFile{}, nil)

	_, err := f.svc.Reanalyze(context.Background(), batchID)
	assert.ErrorIs(t, err, domain.ErrNoAnalyzedFiles)
}
