package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/repository"
	"github.com/yla-umzug/quotes-service/internal/settings"
)

// AdminService covers catalog, pricing rule and settings maintenance.
type AdminService struct {
	catalog  *repository.ServiceRepository
	rules    *repository.PricingRuleRepository
	settings *settings.Store
	validate *validator.Validate
}

func NewAdminService(catalog *repository.ServiceRepository, rules *repository.PricingRuleRepository, store *settings.Store) *AdminService {
	return &AdminService{catalog: catalog, rules: rules, settings: store, validate: newValidator()}
}

type ServiceInput struct {
	Key           string          `json:"key" validate:"required,max=64"`
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	BasePrice     float64         `json:"base_price" validate:"gte=0"`
	Active        *bool           `json:"active"`
	Configuration json.RawMessage `json:"configuration"`
	SortOrder     int             `json:"sort_order"`
}

func (s *AdminService) ListServices(ctx context.Context, actor model.Principal) ([]model.Service, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.catalog.List(ctx)
}

func (s *AdminService) CreateService(ctx context.Context, in ServiceInput, actor model.Principal) (*model.Service, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	svc := &model.Service{Active: true}
	if err := s.applyService(svc, in); err != nil {
		return nil, err
	}
	if err := s.catalog.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *AdminService) UpdateService(ctx context.Context, id uuid.UUID, in ServiceInput, actor model.Principal) (*model.Service, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	svc, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.applyService(svc, in); err != nil {
		return nil, err
	}
	if err := s.catalog.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *AdminService) applyService(svc *model.Service, in ServiceInput) error {
	in.Key = strings.ToLower(strings.TrimSpace(in.Key))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	if len(in.Configuration) > 0 && !json.Valid(in.Configuration) {
		return fieldError("configuration", "Ungültiges JSON")
	}

	svc.Key = in.Key
	svc.Name = in.Name
	svc.Description = in.Description
	svc.BasePrice = in.BasePrice
	svc.SortOrder = in.SortOrder
	if in.Active != nil {
		svc.Active = *in.Active
	}
	if len(in.Configuration) > 0 {
		svc.Configuration = datatypes.JSON(in.Configuration)
	}
	return nil
}

type RuleInput struct {
	Name            string             `json:"name" validate:"required,max=255"`
	ServiceKey      string             `json:"service_key" validate:"max=64"`
	RuleType        model.RuleType     `json:"rule_type" validate:"required,oneof=surcharge discount"`
	RuleKey         string             `json:"rule_key" validate:"required,max=128"`
	Operator        model.RuleOperator `json:"operator" validate:"required"`
	ConditionValues json.RawMessage    `json:"condition_values"`
	PriceValue      float64            `json:"price_value" validate:"gte=0"`
	PriceType       model.PriceType    `json:"price_type" validate:"required,oneof=fixed percent"`
	Priority        int                `json:"priority"`
	Active          *bool              `json:"active"`
}

func (s *AdminService) ListRules(ctx context.Context, actor model.Principal) ([]model.PricingRule, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.rules.List(ctx)
}

func (s *AdminService) CreateRule(ctx context.Context, in RuleInput, actor model.Principal) (*model.PricingRule, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	rule := &model.PricingRule{Active: true}
	if err := s.applyRule(rule, in); err != nil {
		return nil, err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *AdminService) UpdateRule(ctx context.Context, id uuid.UUID, in RuleInput, actor model.Principal) (*model.PricingRule, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.applyRule(rule, in); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *AdminService) DeleteRule(ctx context.Context, id uuid.UUID, actor model.Principal) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return notFound(s.rules.Delete(ctx, id))
}

func (s *AdminService) applyRule(rule *model.PricingRule, in RuleInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.RuleKey = strings.TrimSpace(in.RuleKey)
	in.ServiceKey = strings.ToLower(strings.TrimSpace(in.ServiceKey))
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	if !in.Operator.Valid() {
		return fieldError("operator", "Unbekannter Operator")
	}
	if in.Operator != model.OperatorExists && len(in.ConditionValues) == 0 {
		return fieldError("condition_values", "Bedingungswerte erforderlich")
	}
	if len(in.ConditionValues) > 0 && !json.Valid(in.ConditionValues) {
		return fieldError("condition_values", "Ungültiges JSON")
	}

	rule.Name = in.Name
	rule.ServiceKey = in.ServiceKey
	rule.RuleType = in.RuleType
	rule.RuleKey = in.RuleKey
	rule.Operator = in.Operator
	rule.ConditionValues = datatypes.JSON(in.ConditionValues)
	rule.PriceValue = in.PriceValue
	rule.PriceType = in.PriceType
	rule.Priority = in.Priority
	if in.Active != nil {
		rule.Active = *in.Active
	}
	return nil
}

type SettingInput struct {
	Value       any               `json:"value"`
	Type        model.SettingType `json:"type" validate:"required"`
	IsPublic    bool              `json:"is_public"`
	Description string            `json:"description"`
}

func (s *AdminService) ListSettings(ctx context.Context, actor model.Principal) ([]model.Setting, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.settings.List(ctx)
}

func (s *AdminService) PublicSettings(ctx context.Context) map[string]map[string]any {
	return s.settings.Public(ctx)
}

func (s *AdminService) SetSetting(ctx context.Context, group, key string, in SettingInput, actor model.Principal) (*model.Setting, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	setting, err := s.settings.Set(ctx, settings.SetInput{
		Group:       group,
		Key:         key,
		Value:       in.Value,
		Type:        in.Type,
		IsPublic:    in.IsPublic,
		Description: in.Description,
	})
	if err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			return nil, fieldError("value", err.Error())
		}
		return nil, err
	}
	return setting, nil
}
