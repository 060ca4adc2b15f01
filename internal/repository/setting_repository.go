package repository

import (
	"context"

	"github.com/segyhp/xp-lending/internal/domain"

	"github.com/jmoiron/sqlx"
)

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetAll(ctx context.Context) ([]*domain.SystemSetting, error) {
	query := `
		SELECT key, value, description, data_type, category, updated_at, updated_by
		FROM system_settings
		ORDER BY category, key
	`

	var settings []*domain.SystemSetting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *settingRepository) Get(ctx context.Context, key string) (*domain.SystemSetting, error) {
	query := `
		SELECT key, value, description, data_type, category, updated_at, updated_by
		FROM system_settings
		WHERE key = $1
	`

	var setting domain.SystemSetting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}

	return &setting, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *domain.SystemSetting) error {
	query := `
		INSERT INTO system_settings (key, value, description, data_type, category, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, data_type = EXCLUDED.data_type, category = EXCLUDED.category,
			updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
	`

	_, err := r.db.ExecContext(ctx, query,
		setting.Key,
		setting.Value,
		setting.Description,
		setting.DataType,
		setting.Category,
		setting.UpdatedAt,
		setting.UpdatedBy,
	)

	return err
}
