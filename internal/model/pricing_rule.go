package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RuleType string

const (
	RuleTypeSurcharge RuleType = "surcharge"
	RuleTypeDiscount  RuleType = "discount"
)

type PriceType string

const (
	PriceTypeFixed   PriceType = "fixed"
	PriceTypePercent PriceType = "percent"
)

type RuleOperator string

const (
	OperatorEq      RuleOperator = "eq"
	OperatorNeq     RuleOperator = "neq"
	OperatorGt      RuleOperator = "gt"
	OperatorGte     RuleOperator = "gte"
	OperatorLt      RuleOperator = "lt"
	OperatorLte     RuleOperator = "lte"
	OperatorIn      RuleOperator = "in"
	OperatorBetween RuleOperator = "between"
	OperatorExists  RuleOperator = "exists"
)

func (o RuleOperator) Valid() bool {
	switch o {
	case OperatorEq, OperatorNeq, OperatorGt, OperatorGte, OperatorLt, OperatorLte,
		OperatorIn, OperatorBetween, OperatorExists:
		return true
	default:
		return false
	}
}

// PricingRule adds a surcharge or discount line when its condition matches
// the facts of a calculation. ServiceKey restricts the rule to requests that
// include that service; empty means any request.
type PricingRule struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	ServiceKey      string         `gorm:"size:64;not null;default:''" json:"service_key"`
	RuleType        RuleType       `gorm:"size:16;not null" json:"rule_type"`
	RuleKey         string         `gorm:"size:128;not null" json:"rule_key"`
	Operator        RuleOperator   `gorm:"size:16;not null" json:"operator"`
	ConditionValues datatypes.JSON `json:"condition_values"`
	PriceValue      float64        `gorm:"type:decimal(10,2);not null" json:"price_value"`
	PriceType       PriceType      `gorm:"size:16;not null" json:"price_type"`
	Priority        int            `gorm:"not null;default:0" json:"priority"`
	Active          bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (PricingRule) TableName() string { return "pricing_rules" }

func (r *PricingRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
