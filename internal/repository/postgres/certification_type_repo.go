package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"transquote/internal/domain"
	"transquote/internal/port"
)

type certificationTypeRepo struct {
	db *sqlx.DB
}

// NewCertificationTypeRepo creates a new PostgreSQL-backed CertificationTypeRepository.
func NewCertificationTypeRepo(db *sqlx.DB) port.CertificationTypeRepository {
	return &certificationTypeRepo{db: db}
}

func (r *certificationTypeRepo) ListActive(ctx context.Context) ([]domain.CertificationType, error) {
	var types []domain.CertificationType
	err := r.db.SelectContext(ctx, &types,
		"SELECT * FROM certification_types WHERE is_active ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("certificationTypeRepo.ListActive: %w", err)
	}
	return types, nil
}

func (r *certificationTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CertificationType, error) {
	var ct domain.CertificationType
	err := r.db.GetContext(ctx, &ct,
		"SELECT * FROM certification_types WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCertTypeNotFound
		}
		return nil, fmt.Errorf("certificationTypeRepo.GetByID: %w", err)
	}
	return &ct, nil
}
