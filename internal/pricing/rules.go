package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/model"
)

type RuleSource interface {
	ListActive(ctx context.Context) ([]model.PricingRule, error)
}

// Facts is the nested view rules are evaluated against. Rule keys address
// it with dotted paths such as "umzug.flat_rooms" or "general.urgency".
type Facts map[string]any

func (f Facts) Lookup(path string) (any, bool) {
	var current any = map[string]any(f)
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			current = v
		case Payload:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

type RuleEngine struct {
	source RuleSource
	log    zerolog.Logger
}

func NewRuleEngine(source RuleSource, log zerolog.Logger) *RuleEngine {
	return &RuleEngine{source: source, log: log}
}

// Apply evaluates active rules in priority order. Percent rules act on the
// running total including earlier rule lines. It returns the produced line
// items and the new running total.
func (e *RuleEngine) Apply(ctx context.Context, facts Facts, selected []string, total float64) ([]model.LineItem, float64) {
	if e == nil || e.source == nil {
		return nil, total
	}
	rules, err := e.source.ListActive(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("pricing rules unavailable")
		return nil, total
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	var items []model.LineItem
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if rule.ServiceKey != "" && !chosen[rule.ServiceKey] {
			continue
		}
		ok, err := Matches(rule, facts)
		if err != nil {
			e.log.Warn().Err(err).Str("rule", rule.Name).Msg("pricing rule skipped")
			continue
		}
		if !ok {
			continue
		}

		amount := rule.PriceValue
		if rule.PriceType == model.PriceTypePercent {
			amount = Percent(total, rule.PriceValue)
		}
		amount = Round2(amount)
		if rule.RuleType == model.RuleTypeDiscount {
			amount = -amount
		}
		if amount == 0 {
			continue
		}

		total += amount
		items = append(items, model.LineItem{
			Service: rule.Name,
			Cost:    amount,
			Details: []string{describeRule(rule)},
		})
	}
	return items, total
}

// Matches reports whether the rule condition holds for facts.
func Matches(rule model.PricingRule, facts Facts) (bool, error) {
	if !rule.Operator.Valid() {
		return false, fmt.Errorf("unknown operator %q", rule.Operator)
	}

	fact, present := facts.Lookup(rule.RuleKey)
	if rule.Operator == model.OperatorExists {
		return present && !isEmpty(fact), nil
	}
	if !present {
		return false, nil
	}

	values, err := conditionValues(rule)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, fmt.Errorf("rule %q has no condition values", rule.Name)
	}

	switch rule.Operator {
	case model.OperatorEq:
		return equal(fact, values[0]), nil
	case model.OperatorNeq:
		return !equal(fact, values[0]), nil
	case model.OperatorIn:
		for _, v := range values {
			if equal(fact, v) {
				return true, nil
			}
		}
		return false, nil
	case model.OperatorBetween:
		if len(values) < 2 {
			return false, fmt.Errorf("rule %q: between needs two values", rule.Name)
		}
		f, ok1 := toFloat(fact)
		lo, ok2 := toFloat(values[0])
		hi, ok3 := toFloat(values[1])
		if !ok1 || !ok2 || !ok3 {
			return false, nil
		}
		return f >= lo && f <= hi, nil
	default:
		f, ok1 := toFloat(fact)
		v, ok2 := toFloat(values[0])
		if !ok1 || !ok2 {
			return false, nil
		}
		switch rule.Operator {
		case model.OperatorGt:
			return f > v, nil
		case model.OperatorGte:
			return f >= v, nil
		case model.OperatorLt:
			return f < v, nil
		default:
			return f <= v, nil
		}
	}
}

func conditionValues(rule model.PricingRule) ([]any, error) {
	if len(rule.ConditionValues) == 0 {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal(rule.ConditionValues, &raw); err != nil {
		return nil, fmt.Errorf("rule %q: condition values: %w", rule.Name, err)
	}
	if list, ok := raw.([]any); ok {
		return list, nil
	}
	return []any{raw}, nil
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(a)), strings.TrimSpace(fmt.Sprint(b)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(n), ",", ".", 1), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func describeRule(rule model.PricingRule) string {
	kind := "Zuschlag"
	if rule.RuleType == model.RuleTypeDiscount {
		kind = "Rabatt"
	}
	value := FormatEUR(rule.PriceValue)
	if rule.PriceType == model.PriceTypePercent {
		value = formatNumber(rule.PriceValue) + " %"
	}
	return fmt.Sprintf("%s %s (%s %s %s)", kind, value, rule.RuleKey, rule.Operator, string(rule.ConditionValues))
}
