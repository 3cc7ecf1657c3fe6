package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/model"
)

const movingGroup = "umzug"

var (
	defaultRoomPrices = map[string]float64{"1": 250, "2": 350, "3": 450, "4": 550, "5": 650}
	defaultItemPrices = map[string]float64{
		"sofa": 40, "wardrobe": 50, "bed": 40, "table": 20, "chair": 5,
		"washing_machine": 35, "fridge": 35, "piano": 150,
	}
	defaultAdditionalServices = map[string]float64{
		"packing": 120, "kitchen_assembly": 150, "furniture_assembly": 90, "storage": 100,
	}
)

type MovingShape string

const (
	MovingShapeLegacy   MovingShape = "legacy"
	MovingShapeDetailed MovingShape = "detailed"
)

// MovingDetails is the single request schema for moves. Legacy forms send
// rooms/floors/distance_km only; detailed forms send flat_rooms and the
// per-building, inventory and add-on fields.
type MovingDetails struct {
	Rooms      Number  `json:"rooms"`
	Floors     Number  `json:"floors"`
	DistanceKm *Number `json:"distance_km"`

	FlatRooms          Number            `json:"flat_rooms"`
	SizeM2             Number            `json:"size_m2"`
	FromPostalCode     string            `json:"from_postal_code"`
	FromStreet         string            `json:"from_street"`
	FromCity           string            `json:"from_city"`
	FromFloor          Number            `json:"from_floor"`
	FromElevator       Flag              `json:"from_elevator"`
	ToPostalCode       string            `json:"to_postal_code"`
	ToStreet           string            `json:"to_street"`
	ToCity             string            `json:"to_city"`
	ToFloor            Number            `json:"to_floor"`
	ToElevator         Flag              `json:"to_elevator"`
	Furniture          map[string]Number `json:"furniture"`
	Boxes              Number            `json:"boxes"`
	Disassembly        Flag              `json:"disassembly"`
	AdditionalServices map[string]Flag   `json:"additional_services"`
	Parking            string            `json:"parking"`
}

// DetectMovingShape picks the legacy tariff only for payloads that carry
// rooms without flat_rooms.
func DetectMovingShape(p Payload) MovingShape {
	if p.Has("rooms") && !p.Has("flat_rooms") {
		return MovingShapeLegacy
	}
	return MovingShapeDetailed
}

type MovingCalculator struct {
	settings Settings
	distance DistanceEstimator
	log      zerolog.Logger
}

func NewMovingCalculator(s Settings, estimator DistanceEstimator, log zerolog.Logger) *MovingCalculator {
	return &MovingCalculator{settings: s, distance: estimator, log: log}
}

func (c *MovingCalculator) Service() string { return ServiceMoving }

func (c *MovingCalculator) Validate(_ context.Context, p Payload) []string {
	var errs []string
	switch DetectMovingShape(p) {
	case MovingShapeLegacy:
		if numberOf(p, "rooms") <= 0 {
			errs = append(errs, "Anzahl der Zimmer muss größer als 0 sein")
		}
	default:
		if math.Round(numberOf(p, "flat_rooms")) < 1 {
			errs = append(errs, "Anzahl der Zimmer fehlt")
		}
	}
	return errs
}

// Calculate never fails: any problem while pricing yields the flat fallback
// price with the error recorded on the line item.
func (c *MovingCalculator) Calculate(ctx context.Context, p Payload) (item model.LineItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			item = c.fallback(ctx, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	var details MovingDetails
	if decodeErr := p.decode(&details); decodeErr != nil {
		return c.fallback(ctx, decodeErr), nil
	}

	if DetectMovingShape(p) == MovingShapeLegacy {
		return c.legacy(ctx, details), nil
	}
	return c.detailed(ctx, details), nil
}

func (c *MovingCalculator) fallback(ctx context.Context, cause error) model.LineItem {
	price := c.settings.Float(ctx, movingGroup, "fallback_price", 150)
	c.log.Warn().Err(cause).Float64("price", price).Msg("moving calculation failed, using flat price")
	return model.LineItem{
		Service: "Umzug",
		Cost:    Round2(price),
		Details: []string{"Pauschalpreis (Richtwert): " + FormatEUR(price)},
		Error:   cause.Error(),
	}
}

func (c *MovingCalculator) legacy(ctx context.Context, d MovingDetails) model.LineItem {
	base := c.settings.Float(ctx, movingGroup, "base_price", 150)
	perRoom := c.settings.Float(ctx, movingGroup, "price_per_room", 50)
	floorPrice := c.settings.Float(ctx, movingGroup, "legacy_floor_price", 30)
	freeKm := c.settings.Float(ctx, movingGroup, "legacy_free_km", 0)
	perKm := c.settings.Float(ctx, movingGroup, "price_per_km", 1.5)

	rooms := math.Max(0, d.Rooms.Float())
	total := base + rooms*perRoom
	lines := []string{
		"Grundpreis: " + FormatEUR(base),
		fmt.Sprintf("%s Zimmer × %s = %s", formatNumber(rooms), FormatEUR(perRoom), FormatEUR(rooms*perRoom)),
	}

	if floors := d.Floors.Float(); floors > 2 {
		surcharge := (floors - 2) * floorPrice
		total += surcharge
		lines = append(lines, fmt.Sprintf("Etagenzuschlag (%s Etagen): %s", formatNumber(floors), FormatEUR(surcharge)))
	}

	if d.DistanceKm != nil {
		if charged := d.DistanceKm.Float() - freeKm; charged > 0 {
			cost := charged * perKm
			total += cost
			lines = append(lines, fmt.Sprintf("Entfernung %s km × %s = %s", formatNumber(charged), FormatEUR(perKm), FormatEUR(cost)))
		}
	}

	return model.LineItem{Service: "Umzug", Cost: Round2(total), Details: lines}
}

func (c *MovingCalculator) detailed(ctx context.Context, d MovingDetails) model.LineItem {
	var lines []string

	rooms := max(1, int(math.Round(d.FlatRooms.Float())))
	base := c.roomBasePrice(ctx, rooms)
	total := base
	lines = append(lines, fmt.Sprintf("Grundpreis %d-Zimmer-Wohnung: %s", rooms, FormatEUR(base)))

	if cost, line := c.distanceSurcharge(ctx, d); cost > 0 {
		total += cost
		lines = append(lines, line)
	}

	floorPrice := c.settings.Float(ctx, movingGroup, "floor_price", 25)
	for _, b := range []struct {
		label    string
		floor    float64
		elevator bool
	}{
		{"Auszug", d.FromFloor.Float(), bool(d.FromElevator)},
		{"Einzug", d.ToFloor.Float(), bool(d.ToElevator)},
	} {
		if b.elevator || b.floor <= 0 {
			continue
		}
		cost := b.floor * floorPrice
		total += cost
		lines = append(lines, fmt.Sprintf("Etagenzuschlag %s (%s. OG, ohne Aufzug): %s", b.label, formatNumber(b.floor), FormatEUR(cost)))
	}

	volume, volumeLines := c.volumePrice(ctx, d)
	total += volume
	lines = append(lines, volumeLines...)

	extras, extraLines := c.additionalServicesPrice(ctx, d)
	total += extras
	lines = append(lines, extraLines...)

	return model.LineItem{Service: "Umzug", Cost: Round2(total), Details: lines}
}

// roomBasePrice charges the greatest configured tier not above rooms. Flats
// larger than the biggest tier add price_per_room for each extra room; flats
// smaller than the smallest tier pay the smallest tier.
func (c *MovingCalculator) roomBasePrice(ctx context.Context, rooms int) float64 {
	prices := map[string]float64{}
	if !c.settings.JSON(ctx, movingGroup, "room_prices", &prices) || len(prices) == 0 {
		prices = defaultRoomPrices
	}

	byRooms := make(map[int]float64, len(prices))
	tiers := make([]int, 0, len(prices))
	for k, p := range prices {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			byRooms[n] = p
			tiers = append(tiers, n)
		}
	}
	if len(tiers) == 0 {
		return c.settings.Float(ctx, movingGroup, "base_price", 150)
	}
	sort.Ints(tiers)

	tier := tiers[0]
	for _, n := range tiers {
		if n > rooms {
			break
		}
		tier = n
	}
	price := byRooms[tier]
	if largest := tiers[len(tiers)-1]; rooms > largest {
		price += float64(rooms-largest) * c.settings.Float(ctx, movingGroup, "price_per_room", 50)
	}
	return price
}

func (c *MovingCalculator) distanceSurcharge(ctx context.Context, d MovingDetails) (float64, string) {
	km := 0.0
	source := ""
	switch {
	case d.DistanceKm != nil:
		km = d.DistanceKm.Float()
	case c.distance != nil:
		result, err := c.distance.Estimate(ctx, distance.Request{
			FromPostalCode: d.FromPostalCode,
			ToPostalCode:   d.ToPostalCode,
			FromStreet:     d.FromStreet,
			FromCity:       d.FromCity,
			ToStreet:       d.ToStreet,
			ToCity:         d.ToCity,
		})
		if err != nil {
			c.log.Debug().Err(err).Msg("no distance for moving quote")
			return 0, ""
		}
		km = result.DistanceKm
		if result.Fallback {
			source = " (geschätzt)"
		}
	}

	freeKm := c.settings.Float(ctx, movingGroup, "free_km", 20)
	perKm := c.settings.Float(ctx, movingGroup, "price_per_km", 1.5)
	charged := km - freeKm
	if charged <= 0 {
		return 0, ""
	}
	cost := charged * perKm
	return cost, fmt.Sprintf("Entfernung %s km%s, davon %s km × %s = %s",
		formatNumber(km), source, formatNumber(charged), FormatEUR(perKm), FormatEUR(cost))
}

func (c *MovingCalculator) volumePrice(ctx context.Context, d MovingDetails) (float64, []string) {
	var total float64
	var lines []string

	prices := map[string]float64{}
	if !c.settings.JSON(ctx, movingGroup, "item_prices", &prices) || len(prices) == 0 {
		prices = defaultItemPrices
	}
	for _, item := range sortedKeys(d.Furniture) {
		count := d.Furniture[item].Float()
		price, ok := prices[item]
		if !ok || count <= 0 {
			continue
		}
		cost := count * price
		total += cost
		lines = append(lines, fmt.Sprintf("%s × %s à %s = %s", formatNumber(count), item, FormatEUR(price), FormatEUR(cost)))
	}

	if boxes := d.Boxes.Float(); boxes > 0 {
		price := c.settings.Float(ctx, movingGroup, "box_price", 3)
		total += boxes * price
		lines = append(lines, fmt.Sprintf("%s Umzugskartons à %s = %s", formatNumber(boxes), FormatEUR(price), FormatEUR(boxes*price)))
	}

	if d.Disassembly {
		fee := c.settings.Float(ctx, movingGroup, "disassembly_fee", 80)
		total += fee
		lines = append(lines, "Möbelabbau und -aufbau: "+FormatEUR(fee))
	}

	if size := d.SizeM2.Float(); size > 0 {
		rate := c.settings.Float(ctx, movingGroup, "price_per_m2", 2)
		total += size * rate
		lines = append(lines, fmt.Sprintf("Wohnfläche %s m² × %s = %s", formatNumber(size), FormatEUR(rate), FormatEUR(size*rate)))
	}

	return total, lines
}

func (c *MovingCalculator) additionalServicesPrice(ctx context.Context, d MovingDetails) (float64, []string) {
	var total float64
	var lines []string

	prices := map[string]float64{}
	if !c.settings.JSON(ctx, movingGroup, "additional_services", &prices) || len(prices) == 0 {
		prices = defaultAdditionalServices
	}
	for _, name := range sortedKeys(d.AdditionalServices) {
		if !d.AdditionalServices[name] {
			continue
		}
		price, ok := prices[name]
		if !ok {
			continue
		}
		total += price
		lines = append(lines, fmt.Sprintf("Zusatzleistung %s: %s", name, FormatEUR(price)))
	}

	if d.Parking != "" && d.Parking != "street" {
		fee := c.settings.Float(ctx, movingGroup, "parking_zone_fee", 90)
		total += fee
		lines = append(lines, "Halteverbotszone: "+FormatEUR(fee))
	}

	return total, lines
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
