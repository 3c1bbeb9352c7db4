package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transquote/internal/domain"
)

// BatchRepository defines the contract for batch persistence.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error)
	Update(ctx context.Context, batch *domain.Batch) error
	Delete(ctx context.Context, batchID uuid.UUID) error
}

// BatchFileRepository defines the contract for uploaded-file metadata.
type BatchFileRepository interface {
	Create(ctx context.Context, file *domain.BatchFile) error
	GetByID(ctx context.Context, batchID, fileID uuid.UUID) (*domain.BatchFile, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error)
	ListAnalyzed(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error)
	SetAnalyzed(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) error
	Delete(ctx context.Context, batchID, fileID uuid.UUID) error
}

// AnalysisResultRepository is the Analysis Result Store: one record per
// logical document within a batch, including the pricing snapshot columns.
type AnalysisResultRepository interface {
	Create(ctx context.Context, res *domain.AnalysisResult) error
	GetByID(ctx context.Context, resultID uuid.UUID) (*domain.AnalysisResult, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.AnalysisResult, error)
	// UpsertFromAnalysis replaces the OCR/AI-derived fields of the record
	// for (batchID, fileID), preserving any persisted pricing snapshot, or
	// inserts a new record when none exists. Used on (re-)analysis.
	UpsertFromAnalysis(ctx context.Context, res *domain.AnalysisResult) error
	// UpdatePricing persists the pricing snapshot fields. expectedSavedAt
	// is the snapshot timestamp the caller's sheet was built from; the
	// update is rejected with domain.ErrStaleSheet when the stored value
	// is different, so one operator cannot clobber another's save.
	UpdatePricing(ctx context.Context, resultID uuid.UUID, snap domain.PricingSnapshot, expectedSavedAt *time.Time) error
	// Delete removes a record. Only manually created entries are ever
	// deleted; the service layer enforces that.
	Delete(ctx context.Context, resultID uuid.UUID) error
}

// CertificationTypeRepository provides certification reference data.
type CertificationTypeRepository interface {
	ListActive(ctx context.Context) ([]domain.CertificationType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CertificationType, error)
}

// SettingRepository provides key/value billing constants.
type SettingRepository interface {
	All(ctx context.Context) (map[string]string, error)
}
