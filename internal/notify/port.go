// Package notify delivers quote messages by email and WhatsApp and drains the
// notification outbox.
package notify

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("notification channel not configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Port is implemented by the channel senders.
type Port interface {
	SendQuoteEmail(ctx context.Context, msg Message) error
	SendWhatsApp(ctx context.Context, to, body string) error
}

// Channels combines a mailer and a WhatsApp sender into a Port. Either may be
// nil, in which case that channel reports ErrNotConfigured.
type Channels struct {
	Mail     *Mailer
	WhatsApp *WhatsAppSender
}

func (c Channels) SendQuoteEmail(ctx context.Context, msg Message) error {
	if c.Mail == nil {
		return ErrNotConfigured
	}
	return c.Mail.Send(ctx, msg)
}

func (c Channels) SendWhatsApp(ctx context.Context, to, body string) error {
	if c.WhatsApp == nil {
		return ErrNotConfigured
	}
	return c.WhatsApp.Send(ctx, to, body)
}
