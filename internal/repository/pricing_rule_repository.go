package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yla-umzug/quotes-service/internal/model"
)

type PricingRuleRepository struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) *PricingRuleRepository {
	return &PricingRuleRepository{db: db}
}

// ListActive returns active rules in evaluation order.
func (r *PricingRuleRepository) ListActive(ctx context.Context) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	err := r.db.WithContext(ctx).
		Where(map[string]any{"active": true}).
		Order("priority").Order("created_at").
		Find(&rules).Error
	return rules, err
}

func (r *PricingRuleRepository) List(ctx context.Context) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	err := r.db.WithContext(ctx).Order("priority").Order("created_at").Find(&rules).Error
	return rules, err
}

func (r *PricingRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error) {
	var rule model.PricingRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *PricingRuleRepository) Create(ctx context.Context, rule *model.PricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *PricingRuleRepository) Update(ctx context.Context, rule *model.PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *PricingRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.PricingRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
