package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusReviewed  QuoteStatus = "reviewed"
	QuoteStatusQuoted    QuoteStatus = "quoted"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusCompleted QuoteStatus = "completed"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusReviewed, QuoteStatusQuoted,
		QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusCompleted:
		return true
	default:
		return false
	}
}

// Label is the German status name used in documents and exports.
func (s QuoteStatus) Label() string {
	switch s {
	case QuoteStatusPending:
		return "Ausstehend"
	case QuoteStatusReviewed:
		return "Geprüft"
	case QuoteStatusQuoted:
		return "Angebot versendet"
	case QuoteStatusAccepted:
		return "Angenommen"
	case QuoteStatusRejected:
		return "Abgelehnt"
	case QuoteStatusCompleted:
		return "Abgeschlossen"
	default:
		return string(s)
	}
}

type QuoteAction string

const (
	ActionReview   QuoteAction = "review"
	ActionQuote    QuoteAction = "quote"
	ActionAccept   QuoteAction = "accept"
	ActionReject   QuoteAction = "reject"
	ActionComplete QuoteAction = "complete"
	ActionReopen   QuoteAction = "reopen"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type TransitionError struct {
	From   QuoteStatus
	Action QuoteAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s a %s quote", ErrInvalidTransition, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

var transitions = map[QuoteAction]struct {
	from []QuoteStatus
	to   QuoteStatus
}{
	ActionReview:   {from: []QuoteStatus{QuoteStatusPending}, to: QuoteStatusReviewed},
	ActionQuote:    {from: []QuoteStatus{QuoteStatusPending, QuoteStatusReviewed}, to: QuoteStatusQuoted},
	ActionAccept:   {from: []QuoteStatus{QuoteStatusQuoted}, to: QuoteStatusAccepted},
	ActionReject:   {from: []QuoteStatus{QuoteStatusPending, QuoteStatusReviewed, QuoteStatusQuoted}, to: QuoteStatusRejected},
	ActionComplete: {from: []QuoteStatus{QuoteStatusAccepted}, to: QuoteStatusCompleted},
	ActionReopen:   {from: []QuoteStatus{QuoteStatusRejected}, to: QuoteStatusPending},
}

// Transition returns the status reached by applying action to current.
func Transition(current QuoteStatus, action QuoteAction) (QuoteStatus, error) {
	rule, ok := transitions[action]
	if !ok {
		return current, &TransitionError{From: current, Action: action}
	}
	for _, from := range rule.from {
		if from == current {
			return rule.to, nil
		}
	}
	return current, &TransitionError{From: current, Action: action}
}

// AvailableActions lists the actions allowed from status, in a stable order.
func AvailableActions(status QuoteStatus) []QuoteAction {
	order := []QuoteAction{ActionReview, ActionQuote, ActionAccept, ActionReject, ActionComplete, ActionReopen}
	var actions []QuoteAction
	for _, action := range order {
		if _, err := Transition(status, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}

type QuoteRequest struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber      string         `gorm:"size:32;not null;uniqueIndex" json:"quote_number"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Email            string         `gorm:"size:255;not null;index" json:"email"`
	Phone            string         `gorm:"size:64;not null" json:"phone"`
	PreferredContact string         `gorm:"size:32" json:"preferred_contact,omitempty"`
	Message          string         `gorm:"type:text" json:"message,omitempty"`
	FromPostalCode   string         `gorm:"size:16" json:"from_postal_code,omitempty"`
	ToPostalCode     string         `gorm:"size:16" json:"to_postal_code,omitempty"`
	MovingDate       *time.Time     `json:"moving_date,omitempty"`
	SelectedServices datatypes.JSON `gorm:"not null" json:"selected_services"`
	ServiceDetails   datatypes.JSON `json:"service_details"`
	PricingData      datatypes.JSON `json:"pricing_data"`
	EstimatedTotal   float64        `gorm:"type:decimal(10,2);not null;default:0" json:"estimated_total"`
	FinalAmount      *float64       `gorm:"type:decimal(10,2)" json:"final_amount,omitempty"`
	DistanceKm       *float64       `gorm:"type:decimal(10,2)" json:"distance_km,omitempty"`
	Status           QuoteStatus    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	AdminNotes       string         `gorm:"type:text" json:"admin_notes,omitempty"`
	QuotedAt         *time.Time     `json:"quoted_at,omitempty"`
	EmailSentAt      *time.Time     `json:"email_sent_at,omitempty"`
	WhatsAppSentAt   *time.Time     `gorm:"column:whatsapp_sent_at" json:"whatsapp_sent_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (QuoteRequest) TableName() string { return "quote_requests" }

func (q *QuoteRequest) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuoteStatusPending
	}
	return nil
}

func (q *QuoteRequest) Services() []string {
	var services []string
	if len(q.SelectedServices) == 0 {
		return services
	}
	_ = json.Unmarshal(q.SelectedServices, &services)
	return services
}

func (q *QuoteRequest) Pricing() PricingResult {
	var result PricingResult
	if len(q.PricingData) == 0 {
		return result
	}
	_ = json.Unmarshal(q.PricingData, &result)
	return result
}

// Amount is the admin-confirmed amount when set, the estimate otherwise.
func (q *QuoteRequest) Amount() float64 {
	if q.FinalAmount != nil {
		return *q.FinalAmount
	}
	return q.EstimatedTotal
}

// AppendNote adds a timestamped line to the admin notes.
func (q *QuoteRequest) AppendNote(at time.Time, note string) {
	line := fmt.Sprintf("[%s] %s", at.Format("02.01.2006 15:04"), note)
	if q.AdminNotes == "" {
		q.AdminNotes = line
		return
	}
	q.AdminNotes += "\n" + line
}
