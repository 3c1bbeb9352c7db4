package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"transquote/internal/domain"
	"transquote/internal/port"
)

// MonitorConfig holds settings for the batch job monitor.
type MonitorConfig struct {
	PollInterval time.Duration
}

// BatchJobMonitor tracks asynchronous analysis jobs. One watcher goroutine
// per job polls on a fixed interval until the job reaches a terminal state,
// then ingests the results and stops. Watchers are tied to the monitor's
// lifetime, not to any caller; Shutdown cancels them all and waits.
type BatchJobMonitor struct {
	batchRepo  port.BatchRepository
	resultRepo port.AnalysisResultRepository
	fileRepo   port.BatchFileRepository
	analyzer   port.DocumentAnalyzer
	cfg        MonitorConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	watchers map[uuid.UUID]*watcherHandle
}

// watcherHandle identifies one watcher goroutine's registration. The
// goroutine's cleanup compares the stored handle against its own so a
// replaced watcher never removes its replacement's entry.
type watcherHandle struct {
	cancel context.CancelFunc
}

// NewBatchJobMonitor creates a new BatchJobMonitor.
func NewBatchJobMonitor(
	batchRepo port.BatchRepository,
	resultRepo port.AnalysisResultRepository,
	fileRepo port.BatchFileRepository,
	analyzer port.DocumentAnalyzer,
	cfg MonitorConfig,
) *BatchJobMonitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchJobMonitor{
		batchRepo:  batchRepo,
		resultRepo: resultRepo,
		fileRepo:   fileRepo,
		analyzer:   analyzer,
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		watchers:   make(map[uuid.UUID]*watcherHandle),
	}
}

// Watch starts polling the batch's current job. A previous watcher for the
// same batch is cancelled first: re-analysis produces a new job and only
// the newest submission is tracked.
func (m *BatchJobMonitor) Watch(batchID uuid.UUID) {
	m.mu.Lock()
	if h, ok := m.watchers[batchID]; ok {
		h.cancel()
	}
	watchCtx, cancel := context.WithCancel(m.ctx)
	handle := &watcherHandle{cancel: cancel}
	m.watchers[batchID] = handle
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			if m.watchers[batchID] == handle {
				delete(m.watchers, batchID)
			}
			m.mu.Unlock()
		}()

		ticker := time.NewTicker(m.cfg.PollInterval)
		defer ticker.Stop()

		log.Printf("batchJobMonitor: watching batch %s (poll=%s)", batchID, m.cfg.PollInterval)

		for {
			select {
			case <-watchCtx.Done():
				log.Printf("batchJobMonitor: watcher for batch %s cancelled", batchID)
				return
			case <-ticker.C:
				batch, err := m.Poll(watchCtx, batchID)
				if err != nil {
					if watchCtx.Err() != nil {
						return
					}
					log.Printf("batchJobMonitor: poll failed for batch %s: %v", batchID, err)
					continue
				}
				if batch.Status.Terminal() {
					log.Printf("batchJobMonitor: batch %s reached %s, stopping", batchID, batch.Status)
					return
				}
			}
		}
	}()
}

// Unwatch cancels the watcher for a batch, if any.
func (m *BatchJobMonitor) Unwatch(batchID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.watchers[batchID]; ok {
		h.cancel()
		delete(m.watchers, batchID)
	}
}

// Shutdown cancels all watchers and waits for them to finish.
func (m *BatchJobMonitor) Shutdown() {
	m.cancel()
	m.wg.Wait()
	log.Printf("batchJobMonitor: shutdown complete")
}

// Poll performs a single status check against the analyzer. It updates the
// stored batch counters, and on a terminal job fetches and ingests the
// per-document results. Also used directly for a manual "refresh status"
// action, independent of the polling loop.
func (m *BatchJobMonitor) Poll(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	batch, err := m.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.JobID == "" || batch.Status.Terminal() {
		return batch, nil
	}

	state, err := m.analyzer.JobStatus(ctx, batch.JobID)
	if err != nil {
		return nil, err
	}

	batch.Status = state.Status
	if state.TotalFiles > 0 {
		batch.TotalFiles = state.TotalFiles
	}
	batch.CompletedFiles = state.CompletedFiles
	batch.FailedFiles = state.FailedFiles

	if state.Status.Terminal() {
		docs, err := m.analyzer.Results(ctx, batch.JobID)
		if err != nil {
			// Leave the batch non-terminal so the next poll retries the
			// results fetch rather than losing the job's output.
			log.Printf("batchJobMonitor: fetching results for job %s failed: %v", batch.JobID, err)
			return batch, err
		}
		if err := ingestResults(ctx, m.resultRepo, m.fileRepo, batch.ID, docs); err != nil {
			return nil, err
		}
	}

	if err := m.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}
