package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/yla-umzug/quotes-service/internal/config"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type WhatsAppSender struct {
	api  messageCreator
	from string
	log  zerolog.Logger
}

// NewWhatsAppSender returns nil when the Twilio account is not configured.
func NewWhatsAppSender(cfg config.WhatsAppConfig, log zerolog.Logger) *WhatsAppSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &WhatsAppSender{api: client.Api, from: cfg.From, log: log}
}

func (s *WhatsAppSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	number := NormalizePhone(to)
	if number == "" {
		return fmt.Errorf("invalid whatsapp number %q", to)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + number)
	params.SetFrom("whatsapp:" + NormalizePhone(s.from))
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.log.Debug().Str("sid", *resp.Sid).Msg("whatsapp message accepted")
	}
	return nil
}

// NormalizePhone converts German phone notations to E.164. Numbers without
// a country prefix are assumed to be German.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case digits == "" || digits == "+":
		return ""
	case strings.HasPrefix(digits, "+"):
		return digits
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		return "+49" + digits[1:]
	default:
		return "+" + digits
	}
}
