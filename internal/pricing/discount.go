package pricing

import (
	"context"
	"fmt"
)

const pricingGroup = "pricing"

// Adjustment is a percentage-based change to a running total.
type Adjustment struct {
	Percent     float64
	Amount      float64
	Description string
}

type DiscountCalculator struct {
	settings Settings
}

func NewDiscountCalculator(s Settings) *DiscountCalculator {
	return &DiscountCalculator{settings: s}
}

// CombinationDiscount applies the two-service tier for exactly two services
// and the three-plus tier above that.
func (d *DiscountCalculator) CombinationDiscount(ctx context.Context, serviceCount int, total float64) Adjustment {
	var pct float64
	switch {
	case serviceCount == 2:
		pct = d.settings.Float(ctx, pricingGroup, "discounts.two_services", 10)
	case serviceCount >= 3:
		pct = d.settings.Float(ctx, pricingGroup, "discounts.three_plus_services", 15)
	default:
		return Adjustment{}
	}
	return Adjustment{
		Percent:     pct,
		Amount:      Percent(total, pct),
		Description: fmt.Sprintf("Kombinationsrabatt (%s%%)", formatNumber(pct)),
	}
}

func (d *DiscountCalculator) ExpressSurcharge(ctx context.Context, total float64) Adjustment {
	pct := d.settings.Float(ctx, pricingGroup, "surcharges.express", 20)
	return Adjustment{
		Percent:     pct,
		Amount:      Percent(total, pct),
		Description: fmt.Sprintf("Express-Zuschlag (%s%%)", formatNumber(pct)),
	}
}
