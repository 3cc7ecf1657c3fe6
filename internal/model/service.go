package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is a bookable catalog entry shown by the calculator.
type Service struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Key           string         `gorm:"size:64;not null;uniqueIndex" json:"key"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	BasePrice     float64        `gorm:"type:decimal(10,2);not null;default:0" json:"base_price"`
	Active        bool           `gorm:"not null;default:true" json:"active"`
	Configuration datatypes.JSON `json:"configuration,omitempty"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

func (s *Service) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
