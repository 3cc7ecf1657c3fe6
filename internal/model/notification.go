package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

type NotificationKind string

const (
	NotificationCustomerConfirmation NotificationKind = "customer_confirmation"
	NotificationAdminNewQuote        NotificationKind = "admin_new_quote"
	NotificationQuoteOffer           NotificationKind = "quote_offer"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is an outbox row drained by the dispatcher.
type Notification struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey"`
	QuoteID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Channel   NotificationChannel `gorm:"size:16;not null"`
	Kind      NotificationKind    `gorm:"size:32;not null"`
	Recipient string              `gorm:"size:255;not null"`
	Status    NotificationStatus  `gorm:"size:16;not null;default:'pending';index"`
	Attempts  int                 `gorm:"not null;default:0"`
	LastError string              `gorm:"type:text"`
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
