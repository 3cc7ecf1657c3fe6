package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yla-umzug/quotes-service/internal/model"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Find(ctx context.Context, group, key string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).
		Where(map[string]any{"group_name": group, "key": key}).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *SettingRepository) ListGroup(ctx context.Context, group string) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).
		Where(map[string]any{"group_name": group}).
		Order("key").
		Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) ListPublic(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).
		Where(map[string]any{"is_public": true}).
		Order("group_name").Order("key").
		Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) List(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).
		Order("group_name").Order("key").
		Find(&settings).Error
	return settings, err
}

// Upsert writes value and type for (group, key), creating the row if needed.
func (r *SettingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_name"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "type", "is_public", "description", "updated_at"}),
		}).
		Create(setting).Error
}
