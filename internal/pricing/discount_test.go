package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinationDiscount(t *testing.T) {
	d := NewDiscountCalculator(mapSettings{})
	ctx := context.Background()

	assert.Equal(t, Adjustment{}, d.CombinationDiscount(ctx, 1, 500))

	two := d.CombinationDiscount(ctx, 2, 410)
	assert.Equal(t, 10.0, two.Percent)
	assert.Equal(t, 41.0, two.Amount)
	assert.Equal(t, "Kombinationsrabatt (10%)", two.Description)

	three := d.CombinationDiscount(ctx, 3, 590)
	assert.Equal(t, 15.0, three.Percent)
	assert.Equal(t, 88.5, three.Amount)
}

func TestCombinationDiscountFromSettings(t *testing.T) {
	d := NewDiscountCalculator(mapSettings{"pricing/discounts.two_services": "12.5"})
	adj := d.CombinationDiscount(context.Background(), 2, 200)
	assert.Equal(t, 25.0, adj.Amount)
	assert.Equal(t, "Kombinationsrabatt (12,5%)", adj.Description)
}

func TestExpressSurcharge(t *testing.T) {
	d := NewDiscountCalculator(mapSettings{})
	adj := d.ExpressSurcharge(context.Background(), 300)
	assert.Equal(t, 60.0, adj.Amount)
	assert.Equal(t, "Express-Zuschlag (20%)", adj.Description)
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 33.33, Percent(333.33, 10))
	assert.Equal(t, "1.234,50 €", FormatEUR(1234.5))
	assert.Equal(t, "-41,00 €", FormatEUR(-41))
	assert.Equal(t, "0,00 €", FormatEUR(0))
	assert.Equal(t, "1.000.000,00 €", FormatEUR(1e6))
}
