package notify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yla-umzug/quotes-service/internal/config"
)

func TestMailerBuildsMultipartMessage(t *testing.T) {
	var captured struct {
		addr string
		from string
		to   []string
		raw  []byte
	}
	m := NewMailer(config.MailConfig{Host: "smtp.example.org", Port: 587, From: "angebote@yla-umzug.de"})
	m.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr, captured.from, captured.to, captured.raw = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{
		To:      []string{"kunde@example.org"},
		Subject: "Ihr Angebot QR-2025-001",
		Body:    "Grüße aus Berlin",
		Attachments: []Attachment{
			{Filename: "Angebot-QR-2025-001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 test")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.org:587", captured.addr)
	assert.Equal(t, []string{"kunde@example.org"}, captured.to)

	parsed, err := mail.ReadMessage(bufio.NewReader(bytes.NewReader(captured.raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Ihr Angebot QR-2025-001", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	var parts []string
	var bodies [][]byte
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		encoded, err := io.ReadAll(part)
		require.NoError(t, err)
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
		require.NoError(t, err)
		parts = append(parts, part.Header.Get("Content-Type"))
		bodies = append(bodies, decoded)
	}

	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "text/plain")
	assert.Equal(t, "Grüße aus Berlin", string(bodies[0]))
	assert.Contains(t, parts[1], "application/pdf")
	assert.Equal(t, "%PDF-1.3 test", string(bodies[1]))
}

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer(config.MailConfig{})
	err := m.Send(context.Background(), Message{To: []string{"a@b.de"}})
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, Channels{}.SendQuoteEmail(context.Background(), Message{}), ErrNotConfigured)
	assert.ErrorIs(t, Channels{}.SendWhatsApp(context.Background(), "+49", "x"), ErrNotConfigured)
}

func TestMailerWrapsSendErrors(t *testing.T) {
	m := NewMailer(config.MailConfig{Host: "smtp.example.org", Port: 25, From: "a@b.de"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := m.Send(context.Background(), Message{To: []string{"kunde@example.org"}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
