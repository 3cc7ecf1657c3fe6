package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yla-umzug/quotes-service/internal/model"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

type QuoteFilter struct {
	Status   model.QuoteStatus
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// QuoteNumber formats the yearly sequence value as QR-YYYY-NNN.
func QuoteNumber(year int, seq int64) string {
	return fmt.Sprintf("QR-%04d-%03d", year, seq)
}

// Create assigns the next quote number for createdAt's year and stores the
// quote together with its outbox notifications in one transaction.
func (r *QuoteRepository) Create(ctx context.Context, quote *model.QuoteRequest, outbox []model.Notification) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := quote.CreatedAt.Year()
		seq, err := nextSequenceValue(tx, fmt.Sprintf("quote_number:%d", year))
		if err != nil {
			return fmt.Errorf("next quote number: %w", err)
		}
		quote.QuoteNumber = QuoteNumber(year, seq)

		if err := tx.Create(quote).Error; err != nil {
			return err
		}

		for i := range outbox {
			outbox[i].QuoteID = quote.ID
			if err := tx.Create(&outbox[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuoteRequest, error) {
	var quote model.QuoteRequest
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) GetByNumber(ctx context.Context, number string) (*model.QuoteRequest, error) {
	var quote model.QuoteRequest
	if err := r.db.WithContext(ctx).First(&quote, "quote_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) List(ctx context.Context, filter QuoteFilter) ([]model.QuoteRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.QuoteRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(quote_number) LIKE ?", like, like, like)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var quotes []model.QuoteRequest
	if err := query.Order("created_at DESC").Order("quote_number DESC").Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

func (r *QuoteRepository) Save(ctx context.Context, quote *model.QuoteRequest) error {
	quote.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *QuoteRepository) TouchEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE quote_requests
		SET email_sent_at = ?, updated_at = ?
		WHERE id = ?
	`, at, at, id).Error
}

func (r *QuoteRepository) TouchWhatsAppSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE quote_requests
		SET whatsapp_sent_at = ?, updated_at = ?
		WHERE id = ?
	`, at, at, id).Error
}

// CountByStatus backs the admin dashboard counters.
func (r *QuoteRepository) CountByStatus(ctx context.Context) (map[model.QuoteStatus]int64, error) {
	var rows []struct {
		Status model.QuoteStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS total
		FROM quote_requests
		GROUP BY status
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
