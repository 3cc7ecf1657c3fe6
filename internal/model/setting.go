package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeInteger SettingType = "integer"
	SettingTypeDecimal SettingType = "decimal"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeJSON    SettingType = "json"
)

func (t SettingType) Valid() bool {
	switch t {
	case SettingTypeString, SettingTypeInteger, SettingTypeDecimal, SettingTypeBoolean, SettingTypeJSON:
		return true
	default:
		return false
	}
}

// Setting is a typed configuration value addressed by (group, key). Value is
// always stored as text and interpreted according to Type.
type Setting struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Group       string      `gorm:"column:group_name;size:64;not null;uniqueIndex:uq_settings_group_key" json:"group"`
	Key         string      `gorm:"size:128;not null;uniqueIndex:uq_settings_group_key" json:"key"`
	Value       string      `gorm:"type:text;not null;default:''" json:"value"`
	Type        SettingType `gorm:"size:16;not null;default:'string'" json:"type"`
	IsPublic    bool        `gorm:"not null;default:false" json:"is_public"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

func (s *Setting) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
