package service_test

import (
	"context"
	"errors"
	"sync/atomic"
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

func TestBatchJobMonitor_PollSkipsBatchesWithoutJob(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchQueued}, nil)

	batch, err := f.monitor.Poll(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchQueued, batch.Status)

	f.analyzer.AssertNotCalled(t, "JobStatus", mock.Anything, mock.Anything)
}

func TestBatchJobMonitor_PollUpdatesCounters(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, JobID: "job-7", Status: domain.BatchProcessing, TotalFiles: 4}, nil)
	f.analyzer.On("JobStatus", mock.Anything, "job-7").Return(&port.JobState{
		JobID:          "job-7",
		Status:         domain.BatchProcessing,
		TotalFiles:     4,
		CompletedFiles: 2,
		FailedFiles:    1,
	}, nil)
	f.batchRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Batch) bool {
		return b.CompletedFiles == 2 && b.FailedFiles == 1
	})).Return(nil)

	batch, err := f.monitor.Poll(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchProcessing, batch.Status)

	f.analyzer.AssertNotCalled(t, "Results", mock.Anything, mock.Anything)
	f.batchRepo.AssertExpectations(t)
}

func TestBatchJobMonitor_PollIngestsResultsOnTerminalJob(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()
	fileID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, JobID: "job-7", Status: domain.BatchProcessing, TotalFiles: 1}, nil)
	f.analyzer.On("JobStatus", mock.Anything, "job-7").Return(&port.JobState{
		JobID:          "job-7",
		Status:         domain.BatchCompleted,
		TotalFiles:     1,
		CompletedFiles: 1,
	}, nil)
	f.analyzer.On("Results", mock.Anything, "job-7").Return([]port.AnalyzedDocument{{
		FileID:        fileID,
		FileName:      "passport.pdf",
		WordCount:     450,
		DocumentCount: 1,
	}}, nil)
	f.resultRepo.On("UpsertFromAnalysis", mock.Anything, mock.MatchedBy(func(r *domain.AnalysisResult) bool {
		return r.BatchID == batchID && r.FileID.UUID == fileID
	})).Return(nil)
	f.fileRepo.On("SetAnalyzed", mock.Anything, batchID, []uuid.UUID{fileID}).Return(nil)
	f.batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	batch, err := f.monitor.Poll(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)

	f.resultRepo.AssertExpectations(t)
	f.fileRepo.AssertExpectations(t)
}

func TestBatchJobMonitor_PollRetriesWhenResultsFetchFails(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, JobID: "job-7", Status: domain.BatchProcessing}, nil)
	f.analyzer.On("JobStatus", mock.Anything, "job-7").Return(&port.JobState{
		JobID:  "job-7",
		Status: domain.BatchCompleted,
	}, nil)
	f.analyzer.On("Results", mock.Anything, "job-7").Return(nil, errors.New("temporarily unavailable"))

	_, err := f.monitor.Poll(context.Background(), batchID)
	require.Error(t, err)

	// The stored batch is not updated, so the next poll fetches again.
	f.batchRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBatchJobMonitor_UnwatchStopsReplacementWatcher(t *testing.T) {
	batchRepo := new(mocks.MockBatchRepo)
	resultRepo := new(mocks.MockAnalysisResultRepo)
	fileRepo := new(mocks.MockBatchFileRepo)
	analyzer := new(mocks.MockDocumentAnalyzer)
	monitor := service.NewBatchJobMonitor(batchRepo, resultRepo, fileRepo, analyzer, service.MonitorConfig{
		PollInterval: 5 * time.Millisecond,
	})
	defer monitor.Shutdown()

	batchID := uuid.New()
	var polls atomic.Int64
	batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, JobID: "job-9", Status: domain.BatchProcessing}, nil)
	analyzer.On("JobStatus", mock.Anything, "job-9").
		Run(func(mock.Arguments) { polls.Add(1) }).
		Return(&port.JobState{JobID: "job-9", Status: domain.BatchProcessing}, nil)
	batchRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	monitor.Watch(batchID)
	monitor.Watch(batchID) // re-analysis replaces the first watcher

	require.Eventually(t, func() bool { return polls.Load() > 0 }, time.Second, time.Millisecond)

	monitor.Unwatch(batchID)

	// Let any tick already in flight finish, then verify polling stopped.
	time.Sleep(25 * time.Millisecond)
	before := polls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, polls.Load())
}

func TestBatchJobMonitor_ShutdownStopsWatchers(t *testing.T) {
	f := newBatchServiceFixture()
	batchID := uuid.New()

	f.monitor.Watch(batchID)
	f.monitor.Watch(batchID) // replaces the first watcher
	f.monitor.Unwatch(batchID)

	// Shutdown must drain the watcher goroutines without deadlocking.
	f.monitor.Shutdown()
}
