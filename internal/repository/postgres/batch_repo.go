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

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *domain.Batch) error {
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO batches (id, name, status, job_id, total_files, completed_files, failed_files, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		batch.ID, batch.Name, batch.Status, batch.JobID,
		batch.TotalFiles, batch.CompletedFiles, batch.FailedFiles,
		batch.CreatedAt, batch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.Create: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	var batch domain.Batch
	err := r.db.GetContext(ctx, &batch, "SELECT * FROM batches WHERE id = $1", batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &batch, nil
}

func (r *batchRepo) List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches"); err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List count: %w", err)
	}

	var batches []domain.Batch
	err := r.db.SelectContext(ctx, &batches,
		"SELECT * FROM batches ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List: %w", err)
	}
	return batches, total, nil
}

func (r *batchRepo) Update(ctx context.Context, batch *domain.Batch) error {
	batch.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches SET
			name = $1, status = $2, job_id = $3,
			total_files = $4, completed_files = $5, failed_files = $6,
			updated_at = $7
		 WHERE id = $8`,
		batch.Name, batch.Status, batch.JobID,
		batch.TotalFiles, batch.CompletedFiles, batch.FailedFiles,
		batch.UpdatedAt, batch.ID)
	if err != nil {
		return fmt.Errorf("batchRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *batchRepo) Delete(ctx context.Context, batchID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM batches WHERE id = $1", batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}
