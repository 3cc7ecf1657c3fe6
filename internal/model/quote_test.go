package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    QuoteStatus
		action  QuoteAction
		want    QuoteStatus
		wantErr bool
	}{
		{name: "review pending", from: QuoteStatusPending, action: ActionReview, want: QuoteStatusReviewed},
		{name: "quote pending", from: QuoteStatusPending, action: ActionQuote, want: QuoteStatusQuoted},
		{name: "quote reviewed", from: QuoteStatusReviewed, action: ActionQuote, want: QuoteStatusQuoted},
		{name: "accept quoted", from: QuoteStatusQuoted, action: ActionAccept, want: QuoteStatusAccepted},
		{name: "reject quoted", from: QuoteStatusQuoted, action: ActionReject, want: QuoteStatusRejected},
		{name: "complete accepted", from: QuoteStatusAccepted, action: ActionComplete, want: QuoteStatusCompleted},
		{name: "reopen rejected", from: QuoteStatusRejected, action: ActionReopen, want: QuoteStatusPending},
		{name: "accept pending", from: QuoteStatusPending, action: ActionAccept, wantErr: true},
		{name: "quote completed", from: QuoteStatusCompleted, action: ActionQuote, wantErr: true},
		{name: "reject completed", from: QuoteStatusCompleted, action: ActionReject, wantErr: true},
		{name: "review quoted", from: QuoteStatusQuoted, action: ActionReview, wantErr: true},
		{name: "unknown action", from: QuoteStatusPending, action: QuoteAction("archive"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.action)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				var te *TransitionError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, tt.from, te.From)
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t, []QuoteAction{ActionReview, ActionQuote, ActionReject}, AvailableActions(QuoteStatusPending))
	assert.Equal(t, []QuoteAction{ActionAccept, ActionReject}, AvailableActions(QuoteStatusQuoted))
	assert.Empty(t, AvailableActions(QuoteStatusCompleted))
}

func TestAppendNote(t *testing.T) {
	q := &QuoteRequest{}
	at := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	q.AppendNote(at, "Angebot erstellt")
	q.AppendNote(at, "Rückruf")
	assert.Equal(t, "[04.03.2026 09:30] Angebot erstellt\n[04.03.2026 09:30] Rückruf", q.AdminNotes)
}

func TestQuoteAmountPrefersFinal(t *testing.T) {
	q := &QuoteRequest{EstimatedTotal: 300}
	assert.Equal(t, 300.0, q.Amount())
	final := 420.5
	q.FinalAmount = &final
	assert.Equal(t, 420.5, q.Amount())
}
