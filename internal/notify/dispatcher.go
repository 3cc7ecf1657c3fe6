package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/metrics"
	"github.com/yla-umzug/quotes-service/internal/model"
)

type Outbox interface {
	ListPending(ctx context.Context, limit, maxAttempts int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int, at time.Time) error
}

// Deliverer renders and sends a single outbox row.
type Deliverer interface {
	Deliver(ctx context.Context, n model.Notification) error
}

type DispatcherOptions struct {
	Schedule    string
	BatchSize   int
	MaxAttempts int
}

// Dispatcher drains the outbox on a cron schedule. Delivery is at least once:
// a row is marked sent only after the deliverer returns.
type Dispatcher struct {
	outbox    Outbox
	deliverer Deliverer
	opts      DispatcherOptions
	cron      *cron.Cron
	log       zerolog.Logger
	now       func() time.Time
}

func NewDispatcher(outbox Outbox, deliverer Deliverer, opts DispatcherOptions, log zerolog.Logger) *Dispatcher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Dispatcher{
		outbox:    outbox,
		deliverer: deliverer,
		opts:      opts,
		cron:      cron.New(),
		log:       log.With().Str("component", "notify").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	if _, err := d.cron.AddFunc(d.opts.Schedule, func() {
		d.RunOnce(ctx)
	}); err != nil {
		return err
	}
	d.cron.Start()
	d.log.Info().Str("schedule", d.opts.Schedule).Msg("notification dispatcher started")
	return nil
}

// Stop waits for a running batch to finish or ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) {
	done := d.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce delivers one batch and reports how many rows were sent and failed.
func (d *Dispatcher) RunOnce(ctx context.Context) (sent, failed int) {
	pending, err := d.outbox.ListPending(ctx, d.opts.BatchSize, d.opts.MaxAttempts)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to load pending notifications")
		return 0, 0
	}

	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}
		logger := d.log.With().
			Str("notification_id", n.ID.String()).
			Str("quote_id", n.QuoteID.String()).
			Str("kind", string(n.Kind)).
			Logger()

		if err := d.deliverer.Deliver(ctx, n); err != nil {
			failed++
			metrics.NotificationsDispatched.WithLabelValues(string(n.Channel), "failed").Inc()
			logger.Warn().Err(err).Int("attempt", n.Attempts+1).Msg("notification delivery failed")
			if markErr := d.outbox.MarkAttemptFailed(ctx, n.ID, err.Error(), d.opts.MaxAttempts, d.now()); markErr != nil {
				logger.Error().Err(markErr).Msg("failed to record notification attempt")
			}
			continue
		}

		sent++
		metrics.NotificationsDispatched.WithLabelValues(string(n.Channel), "sent").Inc()
		if err := d.outbox.MarkSent(ctx, n.ID, d.now()); err != nil {
			logger.Error().Err(err).Msg("failed to mark notification sent")
		}
	}

	if sent+failed > 0 {
		d.log.Info().Int("sent", sent).Int("failed", failed).Msg("notification batch processed")
	}
	return sent, failed
}
