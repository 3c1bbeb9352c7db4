package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"transquote/internal/domain"
	"transquote/internal/port"
)

type settingRepo struct {
	db *sqlx.DB
}

// NewSettingRepo creates a new PostgreSQL-backed SettingRepository.
func NewSettingRepo(db *sqlx.DB) port.SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) All(ctx context.Context) (map[string]string, error) {
	var settings []domain.Setting
	if err := r.db.SelectContext(ctx, &settings, "SELECT * FROM settings"); err != nil {
		return nil, fmt.Errorf("settingRepo.All: %w", err)
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out, nil
}
