package model

import "time"

// SequenceCounter stores the last value handed out for a named counter.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
