package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yla-umzug/quotes-service/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, notification *model.Notification) error {
	if notification.Status == "" {
		notification.Status = model.NotificationPending
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListPending returns the oldest pending rows that still have attempts left.
func (r *NotificationRepository) ListPending(ctx context.Context, limit, maxAttempts int) ([]model.Notification, error) {
	var items []model.Notification
	err := r.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", model.NotificationPending, maxAttempts).
		Order("created_at").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *NotificationRepository) ListForQuote(ctx context.Context, quoteID uuid.UUID) ([]model.Notification, error) {
	var items []model.Notification
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at").
		Find(&items).Error
	return items, err
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE notifications
		SET status = ?, attempts = attempts + 1, last_error = '', sent_at = ?, updated_at = ?
		WHERE id = ?
	`, model.NotificationSent, at, at, id).Error
}

// MarkAttemptFailed records the error; the row turns failed once attempts
// reach maxAttempts.
func (r *NotificationRepository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int, at time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE notifications
		SET attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END,
			updated_at = ?
		WHERE id = ?
	`, errMsg, maxAttempts, model.NotificationFailed, at, id).Error
}
