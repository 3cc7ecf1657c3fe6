package db

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yla-umzug/quotes-service/internal/model"
)

// DefaultSettings mirrors the hardcoded calculator defaults so that the admin
// panel shows every tunable price on a fresh install.
var DefaultSettings = []model.Setting{
	{Group: "pricing", Key: "minimum_order_value", Value: "150", Type: model.SettingTypeDecimal, IsPublic: true, Description: "Mindestbestellwert in EUR"},
	{Group: "pricing", Key: "discounts.two_services", Value: "10", Type: model.SettingTypeDecimal, IsPublic: true, Description: "Kombinationsrabatt bei zwei Leistungen (%)"},
	{Group: "pricing", Key: "discounts.three_plus_services", Value: "15", Type: model.SettingTypeDecimal, IsPublic: true, Description: "Kombinationsrabatt ab drei Leistungen (%)"},
	{Group: "pricing", Key: "surcharges.express", Value: "20", Type: model.SettingTypeDecimal, IsPublic: true, Description: "Express-Zuschlag (%)"},

	{Group: "umzug", Key: "base_price", Value: "150", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "price_per_room", Value: "50", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "legacy_floor_price", Value: "30", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "legacy_free_km", Value: "0", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "room_prices", Value: `{"1":250,"2":350,"3":450,"4":550,"5":650}`, Type: model.SettingTypeJSON},
	{Group: "umzug", Key: "free_km", Value: "20", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "price_per_km", Value: "1.5", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "floor_price", Value: "25", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "item_prices", Value: `{"sofa":40,"wardrobe":50,"bed":40,"table":20,"chair":5,"washing_machine":35,"fridge":35,"piano":150}`, Type: model.SettingTypeJSON},
	{Group: "umzug", Key: "box_price", Value: "3", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "disassembly_fee", Value: "80", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "price_per_m2", Value: "2", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "additional_services", Value: `{"packing":120,"kitchen_assembly":150,"furniture_assembly":90,"storage":100}`, Type: model.SettingTypeJSON},
	{Group: "umzug", Key: "parking_zone_fee", Value: "90", Type: model.SettingTypeDecimal},
	{Group: "umzug", Key: "fallback_price", Value: "150", Type: model.SettingTypeDecimal},

	{Group: "putzservice", Key: "base_price", Value: "80", Type: model.SettingTypeDecimal},
	{Group: "putzservice", Key: "price_per_room", Value: "30", Type: model.SettingTypeDecimal},
	{Group: "putzservice", Key: "size_multipliers", Value: `{"small":1,"medium":2,"large":3,"very_large":4}`, Type: model.SettingTypeJSON},
	{Group: "putzservice", Key: "deep_surcharge", Value: "50", Type: model.SettingTypeDecimal},
	{Group: "putzservice", Key: "construction_surcharge", Value: "100", Type: model.SettingTypeDecimal},

	{Group: "entruempelung", Key: "base_price", Value: "100", Type: model.SettingTypeDecimal},
	{Group: "entruempelung", Key: "price_per_volume_unit", Value: "80", Type: model.SettingTypeDecimal},
	{Group: "entruempelung", Key: "volume_multipliers", Value: `{"small":1,"medium":2,"large":3,"very_large":4}`, Type: model.SettingTypeJSON},
	{Group: "entruempelung", Key: "house_surcharge", Value: "200", Type: model.SettingTypeDecimal},
	{Group: "entruempelung", Key: "basement_surcharge", Value: "50", Type: model.SettingTypeDecimal},

	{Group: "company", Key: "quote_validity_days", Value: "30", Type: model.SettingTypeInteger, IsPublic: true},
	{Group: "company", Key: "whatsapp_enabled", Value: "1", Type: model.SettingTypeBoolean, IsPublic: true},
}

var DefaultServices = []model.Service{
	{Key: "umzug", Name: "Umzug", Description: "Privat- und Firmenumzüge inklusive Transport, Möbelmontage und Verpackung.", BasePrice: 150, Active: true, SortOrder: 1, Configuration: datatypes.JSON(`{"details_key":"movingDetails"}`)},
	{Key: "putzservice", Name: "Putzservice", Description: "End-, Grund- und Bauendreinigung mit Übergabegarantie.", BasePrice: 80, Active: true, SortOrder: 2, Configuration: datatypes.JSON(`{"details_key":"cleaningDetails"}`)},
	{Key: "entruempelung", Name: "Entrümpelung", Description: "Haushaltsauflösung, Keller- und Dachbodenräumung inklusive Entsorgung.", BasePrice: 100, Active: true, SortOrder: 3, Configuration: datatypes.JSON(`{"details_key":"declutterDetails"}`)},
}

// Seed inserts default settings and services. Existing rows are left alone so
// admin edits survive restarts.
func Seed(db *gorm.DB) error {
	for _, s := range DefaultSettings {
		setting := s
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return fmt.Errorf("seed setting %s.%s: %w", s.Group, s.Key, err)
		}
	}
	for _, s := range DefaultServices {
		service := s
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&service).Error; err != nil {
			return fmt.Errorf("seed service %s: %w", s.Key, err)
		}
	}
	return nil
}
