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

type batchFileRepo struct {
	db *sqlx.DB
}

// NewBatchFileRepo creates a new PostgreSQL-backed BatchFileRepository.
func NewBatchFileRepo(db *sqlx.DB) port.BatchFileRepository {
	return &batchFileRepo{db: db}
}

func (r *batchFileRepo) Create(ctx context.Context, file *domain.BatchFile) error {
	file.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batch_files (id, batch_id, file_name, file_type, file_size, s3_bucket, s3_key, content_type, analyzed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		file.ID, file.BatchID, file.FileName, file.FileType, file.FileSize,
		file.S3Bucket, file.S3Key, file.ContentType, file.Analyzed, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("batchFileRepo.Create: %w", err)
	}
	return nil
}

func (r *batchFileRepo) GetByID(ctx context.Context, batchID, fileID uuid.UUID) (*domain.BatchFile, error) {
	var file domain.BatchFile
	err := r.db.GetContext(ctx, &file,
		"SELECT * FROM batch_files WHERE id = $1 AND batch_id = $2", fileID, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchFileNotFound
		}
		return nil, fmt.Errorf("batchFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *batchFileRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	var files []domain.BatchFile
	err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM batch_files WHERE batch_id = $1 ORDER BY created_at", batchID)
	if err != nil {
		return nil, fmt.Errorf("batchFileRepo.ListByBatch: %w", err)
	}
	return files, nil
}

func (r *batchFileRepo) ListAnalyzed(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	var files []domain.BatchFile
	err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM batch_files WHERE batch_id = $1 AND analyzed ORDER BY created_at", batchID)
	if err != nil {
		return nil, fmt.Errorf("batchFileRepo.ListAnalyzed: %w", err)
	}
	return files, nil
}

func (r *batchFileRepo) SetAnalyzed(ctx context.Context, batchID uuid.UUID, fileIDs []uuid.UUID) error {
	if len(fileIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(
		"UPDATE batch_files SET analyzed = TRUE WHERE batch_id = ? AND id IN (?)",
		batchID, fileIDs)
	if err != nil {
		return fmt.Errorf("batchFileRepo.SetAnalyzed: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batchFileRepo.SetAnalyzed: %w", err)
	}
	return nil
}

func (r *batchFileRepo) Delete(ctx context.Context, batchID, fileID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM batch_files WHERE id = $1 AND batch_id = $2", fileID, batchID)
	if err != nil {
		return fmt.Errorf("batchFileRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchFileNotFound
	}
	return nil
}
