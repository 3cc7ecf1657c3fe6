package pricing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yla-umzug/quotes-service/internal/model"
)

func TestFactsLookup(t *testing.T) {
	facts := Facts{
		"general": map[string]any{"urgency": "express"},
		"umzug":   map[string]any{"flat_rooms": 3.0, "nested": map[string]any{"a": "b"}},
	}

	v, ok := facts.Lookup("general.urgency")
	require.True(t, ok)
	assert.Equal(t, "express", v)

	v, ok = facts.Lookup("umzug.nested.a")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = facts.Lookup("umzug.flat_rooms.deeper")
	assert.False(t, ok)
	_, ok = facts.Lookup("putzservice.size")
	assert.False(t, ok)
}

func TestMatches(t *testing.T) {
	facts := Facts{
		"general": map[string]any{"urgency": "Express", "weekday": "saturday", "note": ""},
		"umzug":   map[string]any{"flat_rooms": "4", "size_m2": 85.0},
	}

	tests := []struct {
		name   string
		op     model.RuleOperator
		key    string
		values string
		want   bool
	}{
		{name: "eq ignores case", op: model.OperatorEq, key: "general.urgency", values: `"express"`, want: true},
		{name: "eq numeric string", op: model.OperatorEq, key: "umzug.flat_rooms", values: `[4]`, want: true},
		{name: "neq", op: model.OperatorNeq, key: "general.urgency", values: `"normal"`, want: true},
		{name: "gt", op: model.OperatorGt, key: "umzug.size_m2", values: `80`, want: true},
		{name: "gte boundary", op: model.OperatorGte, key: "umzug.size_m2", values: `85`, want: true},
		{name: "lt", op: model.OperatorLt, key: "umzug.size_m2", values: `85`, want: false},
		{name: "lte", op: model.OperatorLte, key: "umzug.flat_rooms", values: `4`, want: true},
		{name: "in", op: model.OperatorIn, key: "general.weekday", values: `["saturday","sunday"]`, want: true},
		{name: "not in", op: model.OperatorIn, key: "general.weekday", values: `["monday"]`, want: false},
		{name: "between", op: model.OperatorBetween, key: "umzug.size_m2", values: `[50, 100]`, want: true},
		{name: "exists", op: model.OperatorExists, key: "umzug.size_m2", want: true},
		{name: "exists empty string", op: model.OperatorExists, key: "general.note", want: false},
		{name: "missing fact", op: model.OperatorEq, key: "umzug.piano", values: `true`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := model.PricingRule{Name: tt.name, Operator: tt.op, RuleKey: tt.key}
			if tt.values != "" {
				rule.ConditionValues = datatypes.JSON(tt.values)
			}
			got, err := Matches(rule, facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesRejectsBrokenRules(t *testing.T) {
	facts := Facts{"umzug": map[string]any{"size_m2": 85.0}}

	_, err := Matches(model.PricingRule{Operator: "like", RuleKey: "umzug.size_m2"}, facts)
	assert.Error(t, err)

	_, err = Matches(model.PricingRule{Operator: model.OperatorGt, RuleKey: "umzug.size_m2"}, facts)
	assert.Error(t, err)

	_, err = Matches(model.PricingRule{
		Operator: model.OperatorBetween, RuleKey: "umzug.size_m2", ConditionValues: datatypes.JSON(`[1]`),
	}, facts)
	assert.Error(t, err)
}

func TestRuleEngineApply(t *testing.T) {
	rules := staticRules{
		{
			Name: "Wochenendrabatt", RuleType: model.RuleTypeDiscount, PriceType: model.PriceTypePercent,
			RuleKey: "general.weekday", Operator: model.OperatorEq, ConditionValues: datatypes.JSON(`"saturday"`),
			PriceValue: 5, Priority: 2, Active: true,
		},
		{
			Name: "Klaviertransport", ServiceKey: ServiceMoving, RuleType: model.RuleTypeSurcharge, PriceType: model.PriceTypeFixed,
			RuleKey: "umzug.piano", Operator: model.OperatorExists, PriceValue: 100, Priority: 1, Active: true,
		},
		{
			Name: "Sperrmüll", ServiceKey: ServiceDecluttering, RuleType: model.RuleTypeSurcharge, PriceType: model.PriceTypeFixed,
			RuleKey: "general.weekday", Operator: model.OperatorExists, PriceValue: 70, Active: true,
		},
		{
			Name: "Inaktiv", RuleType: model.RuleTypeSurcharge, PriceType: model.PriceTypeFixed,
			RuleKey: "general.weekday", Operator: model.OperatorExists, PriceValue: 999, Active: false,
		},
	}
	engine := NewRuleEngine(rules, zerolog.Nop())
	facts := Facts{
		"general": map[string]any{"weekday": "saturday"},
		"umzug":   map[string]any{"piano": true},
	}

	items, total := engine.Apply(context.Background(), facts, []string{ServiceMoving}, 300)
	require.Len(t, items, 2)
	assert.Equal(t, "Klaviertransport", items[0].Service)
	assert.Equal(t, 100.0, items[0].Cost)
	assert.Equal(t, "Wochenendrabatt", items[1].Service)
	assert.Equal(t, -20.0, items[1].Cost)
	assert.Equal(t, 380.0, total)
}

func TestRuleEngineNil(t *testing.T) {
	var engine *RuleEngine
	items, total := engine.Apply(context.Background(), Facts{}, nil, 120)
	assert.Nil(t, items)
	assert.Equal(t, 120.0, total)
}
