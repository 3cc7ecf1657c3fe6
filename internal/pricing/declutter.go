package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/yla-umzug/quotes-service/internal/model"
)

const declutterGroup = "entruempelung"

var defaultVolumeMultipliers = map[string]float64{"small": 1, "medium": 2, "large": 3, "very_large": 4}

type DeclutterCalculator struct {
	settings Settings
}

func NewDeclutterCalculator(s Settings) *DeclutterCalculator {
	return &DeclutterCalculator{settings: s}
}

func (c *DeclutterCalculator) Service() string { return ServiceDecluttering }

func (c *DeclutterCalculator) Validate(ctx context.Context, p Payload) []string {
	volume := strings.ToLower(p.String("volume"))
	if volume == "" {
		return []string{"Umfang der Entrümpelung fehlt"}
	}
	if _, ok := lookupMultiplier(ctx, c.settings, declutterGroup, "volume_multipliers", defaultVolumeMultipliers, volume); !ok {
		return []string{fmt.Sprintf("Unbekannter Umfang %q", volume)}
	}
	return nil
}

func (c *DeclutterCalculator) Calculate(ctx context.Context, p Payload) (model.LineItem, error) {
	volume := strings.ToLower(p.String("volume"))
	objectType := strings.ToLower(p.String("object_type"))

	multiplier, ok := lookupMultiplier(ctx, c.settings, declutterGroup, "volume_multipliers", defaultVolumeMultipliers, volume)
	if !ok {
		return model.LineItem{}, fmt.Errorf("unknown decluttering volume %q", volume)
	}

	base := c.settings.Float(ctx, declutterGroup, "base_price", 100)
	perUnit := c.settings.Float(ctx, declutterGroup, "price_per_volume_unit", 80)
	volumeCost := multiplier * perUnit
	total := base + volumeCost
	lines := []string{
		"Grundpreis: " + FormatEUR(base),
		fmt.Sprintf("Umfang %s (Faktor %s × %s): %s", volume, formatNumber(multiplier), FormatEUR(perUnit), FormatEUR(volumeCost)),
	}

	switch objectType {
	case "house":
		surcharge := c.settings.Float(ctx, declutterGroup, "house_surcharge", 200)
		total += surcharge
		lines = append(lines, "Zuschlag Haus: "+FormatEUR(surcharge))
	case "basement":
		surcharge := c.settings.Float(ctx, declutterGroup, "basement_surcharge", 50)
		total += surcharge
		lines = append(lines, "Zuschlag Keller: "+FormatEUR(surcharge))
	}

	return model.LineItem{Service: "Entrümpelung", Cost: Round2(total), Details: lines}, nil
}
