package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"transquote/internal/domain"
	"transquote/internal/port"
)

type analysisResultRepo struct {
	db *sqlx.DB
}

// NewAnalysisResultRepo creates a new PostgreSQL-backed AnalysisResultRepository.
func NewAnalysisResultRepo(db *sqlx.DB) port.AnalysisResultRepository {
	return &analysisResultRepo{db: db}
}

func (r *analysisResultRepo) Create(ctx context.Context, res *domain.AnalysisResult) error {
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analysis_results (
			id, batch_id, file_id, file_name,
			word_count, page_count, document_type, complexity, document_count,
			sub_documents, source_language, processing_status, entry_method, error_message,
			pricing_billable_pages, pricing_complexity, pricing_complexity_multiplier,
			pricing_base_rate, pricing_certification_type_id, pricing_is_excluded,
			pricing_billable_overridden, pricing_document_certifications, pricing_saved_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20,
			$21, $22, $23,
			$24, $25
		)`,
		res.ID, res.BatchID, res.FileID, res.FileName,
		res.WordCount, res.PageCount, res.DocumentType, res.Complexity, res.DocumentCount,
		res.SubDocuments, res.SourceLanguage, res.ProcessingStatus, res.EntryMethod, res.ErrorMessage,
		res.BillablePages, res.PricingSnapshot.Complexity, res.ComplexityMultiplier,
		res.BaseRate, res.CertificationTypeID, res.IsExcluded,
		res.BillableOverridden, res.DocumentCertifications, res.SavedAt,
		res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("analysisResultRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisResultRepo) GetByID(ctx context.Context, resultID uuid.UUID) (*domain.AnalysisResult, error) {
	var res domain.AnalysisResult
	err := r.db.GetContext(ctx, &res,
		"SELECT * FROM analysis_results WHERE id = $1", resultID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisResultNotFound
		}
		return nil, fmt.Errorf("analysisResultRepo.GetByID: %w", err)
	}
	return &res, nil
}

func (r *analysisResultRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.AnalysisResult, error) {
	var results []domain.AnalysisResult
	err := r.db.SelectContext(ctx, &results,
		"SELECT * FROM analysis_results WHERE batch_id = $1 ORDER BY created_at, file_name", batchID)
	if err != nil {
		return nil, fmt.Errorf("analysisResultRepo.ListByBatch: %w", err)
	}
	return results, nil
}

// UpsertFromAnalysis writes fresh OCR/AI output for (batch_id, file_id),
// leaving any persisted pricing snapshot untouched so that saved human
// decisions survive a re-analysis.
func (r *analysisResultRepo) UpsertFromAnalysis(ctx context.Context, res *domain.AnalysisResult) error {
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analysis_results (
			id, batch_id, file_id, file_name,
			word_count, page_count, document_type, complexity, document_count,
			sub_documents, source_language, processing_status, entry_method, error_message,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16
		)
		ON CONFLICT (batch_id, file_id) WHERE file_id IS NOT NULL DO UPDATE SET
			file_name = EXCLUDED.file_name,
			word_count = EXCLUDED.word_count,
			page_count = EXCLUDED.page_count,
			document_type = EXCLUDED.document_type,
			complexity = EXCLUDED.complexity,
			document_count = EXCLUDED.document_count,
			sub_documents = EXCLUDED.sub_documents,
			source_language = EXCLUDED.source_language,
			processing_status = EXCLUDED.processing_status,
			entry_method = EXCLUDED.entry_method,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at`,
		res.ID, res.BatchID, res.FileID, res.FileName,
		res.WordCount, res.PageCount, res.DocumentType, res.Complexity, res.DocumentCount,
		res.SubDocuments, res.SourceLanguage, res.ProcessingStatus, res.EntryMethod, res.ErrorMessage,
		res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("analysisResultRepo.UpsertFromAnalysis: %w", err)
	}
	return nil
}

// UpdatePricing persists the pricing snapshot fields. The update only
// applies when the stored pricing_saved_at still matches what the caller's
// sheet was built from; a mismatch means another operator saved since and
// the row is reported stale instead of being clobbered.
func (r *analysisResultRepo) UpdatePricing(ctx context.Context, resultID uuid.UUID, snap domain.PricingSnapshot, expectedSavedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE analysis_results SET
			pricing_billable_pages = $1,
			pricing_complexity = $2,
			pricing_complexity_multiplier = $3,
			pricing_base_rate = $4,
			pricing_certification_type_id = $5,
			pricing_is_excluded = $6,
			pricing_billable_overridden = $7,
			pricing_document_certifications = $8,
			pricing_saved_at = $9,
			updated_at = $9
		 WHERE id = $10 AND pricing_saved_at IS NOT DISTINCT FROM $11`,
		snap.BillablePages, snap.Complexity, snap.ComplexityMultiplier,
		snap.BaseRate, snap.CertificationTypeID, snap.IsExcluded,
		snap.BillableOverridden, snap.DocumentCertifications, snap.SavedAt,
		resultID, expectedSavedAt)
	if err != nil {
		return fmt.Errorf("analysisResultRepo.UpdatePricing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the row is gone or someone saved a newer snapshot.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM analysis_results WHERE id = $1)", resultID); err != nil {
			return fmt.Errorf("analysisResultRepo.UpdatePricing: %w", err)
		}
		if !exists {
			return domain.ErrAnalysisResultNotFound
		}
		return domain.ErrStaleSheet
	}
	return nil
}

func (r *analysisResultRepo) Delete(ctx context.Context, resultID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM analysis_results WHERE id = $1", resultID)
	if err != nil {
		return fmt.Errorf("analysisResultRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAnalysisResultNotFound
	}
	return nil
}
