package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaningCalculator(t *testing.T) {
	calc := NewCleaningCalculator(mapSettings{})
	ctx := context.Background()

	tests := []struct {
		name    string
		payload Payload
		want    float64
	}{
		{name: "small normal", payload: Payload{"size": "small"}, want: 110},
		{name: "medium deep", payload: Payload{"size": "medium", "intensity": "deep"}, want: 190},
		{name: "large construction", payload: Payload{"size": "Large", "intensity": "construction"}, want: 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Empty(t, calc.Validate(ctx, tt.payload))
			item, err := calc.Calculate(ctx, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Cost)
		})
	}
}

func TestCleaningCustomMultipliers(t *testing.T) {
	calc := NewCleaningCalculator(mapSettings{"putzservice/size_multipliers": `{"xl":5}`, "putzservice/price_per_room": "40"})
	item, err := calc.Calculate(context.Background(), Payload{"size": "xl"})
	require.NoError(t, err)
	assert.Equal(t, 280.0, item.Cost)

	assert.NotEmpty(t, calc.Validate(context.Background(), Payload{"size": "small"}))
}

func TestCleaningValidate(t *testing.T) {
	calc := NewCleaningCalculator(mapSettings{})
	ctx := context.Background()

	assert.Len(t, calc.Validate(ctx, Payload{}), 1)
	assert.Len(t, calc.Validate(ctx, Payload{"size": "huge", "intensity": "sparkly"}), 2)
}

func TestDeclutterCalculator(t *testing.T) {
	calc := NewDeclutterCalculator(mapSettings{})
	ctx := context.Background()

	tests := []struct {
		name    string
		payload Payload
		want    float64
	}{
		{name: "large house", payload: Payload{"volume": "large", "object_type": "house"}, want: 540},
		{name: "small basement", payload: Payload{"volume": "small", "object_type": "basement"}, want: 230},
		{name: "medium apartment", payload: Payload{"volume": "medium", "object_type": "apartment"}, want: 260},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Empty(t, calc.Validate(ctx, tt.payload))
			item, err := calc.Calculate(ctx, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Cost)
		})
	}

	assert.NotEmpty(t, calc.Validate(ctx, Payload{"object_type": "house"}))
	assert.NotEmpty(t, calc.Validate(ctx, Payload{"volume": "gigantic"}))
}
