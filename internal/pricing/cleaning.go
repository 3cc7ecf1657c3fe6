package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/yla-umzug/quotes-service/internal/model"
)

const cleaningGroup = "putzservice"

var defaultSizeMultipliers = map[string]float64{"small": 1, "medium": 2, "large": 3, "very_large": 4}

var cleaningIntensities = map[string]string{
	"":             "",
	"normal":       "",
	"deep":         "deep_surcharge",
	"construction": "construction_surcharge",
}

type CleaningCalculator struct {
	settings Settings
}

func NewCleaningCalculator(s Settings) *CleaningCalculator {
	return &CleaningCalculator{settings: s}
}

func (c *CleaningCalculator) Service() string { return ServiceCleaning }

func (c *CleaningCalculator) Validate(ctx context.Context, p Payload) []string {
	var errs []string
	size := strings.ToLower(p.String("size"))
	if size == "" {
		errs = append(errs, "Größe der Reinigungsfläche fehlt")
	} else if _, ok := lookupMultiplier(ctx, c.settings, cleaningGroup, "size_multipliers", defaultSizeMultipliers, size); !ok {
		errs = append(errs, fmt.Sprintf("Unbekannte Größe %q", size))
	}
	if _, ok := cleaningIntensities[strings.ToLower(p.String("intensity"))]; !ok {
		errs = append(errs, fmt.Sprintf("Unbekannte Reinigungsart %q", p.String("intensity")))
	}
	return errs
}

func (c *CleaningCalculator) Calculate(ctx context.Context, p Payload) (model.LineItem, error) {
	size := strings.ToLower(p.String("size"))
	intensity := strings.ToLower(p.String("intensity"))

	multiplier, ok := lookupMultiplier(ctx, c.settings, cleaningGroup, "size_multipliers", defaultSizeMultipliers, size)
	if !ok {
		return model.LineItem{}, fmt.Errorf("unknown cleaning size %q", size)
	}

	base := c.settings.Float(ctx, cleaningGroup, "base_price", 80)
	perRoom := c.settings.Float(ctx, cleaningGroup, "price_per_room", 30)
	sizeCost := multiplier * perRoom
	total := base + sizeCost
	lines := []string{
		"Grundpreis: " + FormatEUR(base),
		fmt.Sprintf("Größe %s (Faktor %s × %s): %s", size, formatNumber(multiplier), FormatEUR(perRoom), FormatEUR(sizeCost)),
	}

	switch intensity {
	case "deep":
		surcharge := c.settings.Float(ctx, cleaningGroup, "deep_surcharge", 50)
		total += surcharge
		lines = append(lines, "Grundreinigung: "+FormatEUR(surcharge))
	case "construction":
		surcharge := c.settings.Float(ctx, cleaningGroup, "construction_surcharge", 100)
		total += surcharge
		lines = append(lines, "Bauendreinigung: "+FormatEUR(surcharge))
	}

	return model.LineItem{Service: "Putzservice", Cost: Round2(total), Details: lines}, nil
}
