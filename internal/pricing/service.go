package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/metrics"
	"github.com/yla-umzug/quotes-service/internal/model"
)

// Request is the calculator form submission.
type Request struct {
	SelectedServices []string `json:"selectedServices"`
	MovingDetails    Payload  `json:"movingDetails,omitempty"`
	CleaningDetails  Payload  `json:"cleaningDetails,omitempty"`
	DeclutterDetails Payload  `json:"declutterDetails,omitempty"`
	GeneralInfo      Payload  `json:"generalInfo,omitempty"`
}

// DetailsFor returns the detail payload submitted for a service key.
func (r Request) DetailsFor(service string) Payload {
	switch service {
	case ServiceMoving:
		return r.MovingDetails
	case ServiceCleaning:
		return r.CleaningDetails
	case ServiceDecluttering:
		return r.DeclutterDetails
	default:
		return nil
	}
}

// Services returns the selected keys without blanks and duplicates, keeping
// submission order.
func (r Request) Services() []string {
	seen := make(map[string]bool, len(r.SelectedServices))
	out := make([]string, 0, len(r.SelectedServices))
	for _, s := range r.SelectedServices {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (r Request) Urgency() string {
	return strings.ToLower(r.GeneralInfo.String("urgency"))
}

type Service struct {
	calculators map[string]Calculator
	discounts   *DiscountCalculator
	rules       *RuleEngine
	settings    Settings
	log         zerolog.Logger
}

func NewService(s Settings, discounts *DiscountCalculator, rules *RuleEngine, log zerolog.Logger, calculators ...Calculator) *Service {
	byKey := make(map[string]Calculator, len(calculators))
	for _, c := range calculators {
		byKey[c.Service()] = c
	}
	return &Service{
		calculators: byKey,
		discounts:   discounts,
		rules:       rules,
		settings:    s,
		log:         log.With().Str("component", "pricing").Logger(),
	}
}

// Supports reports whether a calculator is registered for key.
func (s *Service) Supports(key string) bool {
	_, ok := s.calculators[key]
	return ok
}

// Calculate prices every selected service and applies rule lines, the
// combination discount, the express surcharge and the minimum order value.
// Services that are unknown, invalid or fail are skipped.
func (s *Service) Calculate(ctx context.Context, req Request) model.PricingResult {
	services := req.Services()
	breakdown := make([]model.LineItem, 0, len(services)+3)
	total := 0.0

	facts := Facts{
		"general":       map[string]any(req.GeneralInfo),
		"services":      toAnySlice(services),
		"service_count": float64(len(services)),
	}

	for _, key := range services {
		calc, ok := s.calculators[key]
		if !ok {
			s.log.Warn().Str("service", key).Msg("no calculator for service, skipping")
			metrics.PricingCalculations.WithLabelValues(key, "unknown").Inc()
			continue
		}

		payload := req.DetailsFor(key).Merge(req.GeneralInfo)
		facts[key] = map[string]any(payload)

		if problems := calc.Validate(ctx, payload); len(problems) > 0 {
			s.log.Info().Str("service", key).Strs("problems", problems).Msg("service payload invalid, skipping")
			metrics.PricingCalculations.WithLabelValues(key, "invalid").Inc()
			continue
		}

		item, err := s.safeCalculate(ctx, calc, payload)
		if err != nil {
			s.log.Error().Err(err).Str("service", key).Msg("calculator failed, skipping")
			metrics.PricingCalculations.WithLabelValues(key, "error").Inc()
			continue
		}
		metrics.PricingCalculations.WithLabelValues(key, "ok").Inc()

		if item.Cost > 0 {
			breakdown = append(breakdown, item)
			total += item.Cost
		}
	}

	facts["subtotal"] = total
	ruleItems, total := s.rules.Apply(ctx, facts, services, total)
	breakdown = append(breakdown, ruleItems...)

	if len(services) > 1 {
		discount := s.discounts.CombinationDiscount(ctx, len(services), total)
		if discount.Amount > 0 {
			breakdown = append(breakdown, model.LineItem{
				Service: discount.Description,
				Cost:    -discount.Amount,
				Details: []string{fmt.Sprintf("%d Leistungen kombiniert", len(services))},
			})
			total -= discount.Amount
		}
	}

	if req.Urgency() == "express" {
		surcharge := s.discounts.ExpressSurcharge(ctx, total)
		breakdown = append(breakdown, model.LineItem{
			Service: surcharge.Description,
			Cost:    surcharge.Amount,
			Details: []string{"Bearbeitung innerhalb von 48 Stunden"},
		})
		total += surcharge.Amount
	}

	total = Round2(total)
	minimum := s.settings.Float(ctx, pricingGroup, "minimum_order_value", 150)
	if total < minimum {
		shortfall := Round2(minimum - total)
		breakdown = append(breakdown, model.LineItem{
			Service: "Mindestbestellwert",
			Cost:    shortfall,
			Details: []string{"Aufschlag auf den Mindestbestellwert von " + FormatEUR(minimum)},
		})
		total = Round2(minimum)
	}

	return model.PricingResult{
		Total:     total,
		Currency:  model.CurrencyEUR,
		Breakdown: breakdown,
	}
}

func (s *Service) safeCalculate(ctx context.Context, calc Calculator, payload Payload) (item model.LineItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculator panic: %v", r)
		}
	}()
	return calc.Calculate(ctx, payload)
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
