package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yla-umzug/quotes-service/internal/cache"
	"github.com/yla-umzug/quotes-service/internal/model"
)

type fakeRepo struct {
	mu    sync.Mutex
	rows  map[string]model.Setting
	finds int
}

func newFakeRepo(rows ...model.Setting) *fakeRepo {
	r := &fakeRepo{rows: map[string]model.Setting{}}
	for _, row := range rows {
		r.rows[row.Group+"/"+row.Key] = row
	}
	return r
}

func (r *fakeRepo) Find(_ context.Context, group, key string) (*model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	row, ok := r.rows[group+"/"+key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *fakeRepo) ListGroup(_ context.Context, group string) ([]model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Setting
	for _, row := range r.rows {
		if row.Group == group {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListPublic(_ context.Context) ([]model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Setting
	for _, row := range r.rows {
		if row.IsPublic {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(_ context.Context) ([]model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Setting, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeRepo) Upsert(_ context.Context, s *model.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.Group+"/"+s.Key] = *s
	return nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) Delete(context.Context, ...string) error {
	return errors.New("connection refused")
}

func TestStoreTypedValues(t *testing.T) {
	repo := newFakeRepo(
		model.Setting{Group: "umzug", Key: "base_price", Value: "150.50", Type: model.SettingTypeDecimal},
		model.Setting{Group: "company", Key: "quote_validity_days", Value: "30", Type: model.SettingTypeInteger},
		model.Setting{Group: "company", Key: "whatsapp_enabled", Value: "1", Type: model.SettingTypeBoolean},
		model.Setting{Group: "company", Key: "greeting", Value: "Moin", Type: model.SettingTypeString},
		model.Setting{Group: "umzug", Key: "room_prices", Value: `{"1":250}`, Type: model.SettingTypeJSON},
		model.Setting{Group: "umzug", Key: "broken", Value: "abc", Type: model.SettingTypeDecimal},
	)
	store := NewStore(repo, cache.NewMemory(), time.Hour, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, 150.5, store.Float(ctx, "umzug", "base_price", 0))
	assert.Equal(t, int64(30), store.Int(ctx, "company", "quote_validity_days", 14))
	assert.True(t, store.Bool(ctx, "company", "whatsapp_enabled", false))
	assert.Equal(t, "Moin", store.String(ctx, "company", "greeting", ""))
	assert.Equal(t, map[string]any{"1": float64(250)}, store.Get(ctx, "umzug", "room_prices", nil))

	var prices map[string]float64
	require.True(t, store.JSON(ctx, "umzug", "room_prices", &prices))
	assert.Equal(t, 250.0, prices["1"])

	assert.Equal(t, 42.0, store.Float(ctx, "umzug", "missing", 42))
	assert.Equal(t, 9.0, store.Float(ctx, "umzug", "broken", 9))
	assert.False(t, store.JSON(ctx, "umzug", "missing", &prices))
}

func TestStoreCachesReads(t *testing.T) {
	repo := newFakeRepo(model.Setting{Group: "umzug", Key: "base_price", Value: "150", Type: model.SettingTypeDecimal})
	store := NewStore(repo, cache.NewMemory(), time.Hour, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Equal(t, 150.0, store.Float(ctx, "umzug", "base_price", 0))
		assert.Equal(t, 1.0, store.Float(ctx, "umzug", "missing", 1))
	}
	assert.Equal(t, 2, repo.finds)
}

func TestStoreSetInvalidatesKeyAndGroup(t *testing.T) {
	repo := newFakeRepo(model.Setting{Group: "pricing", Key: "minimum_order_value", Value: "150", Type: model.SettingTypeDecimal, IsPublic: true})
	store := NewStore(repo, cache.NewMemory(), time.Hour, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, 150.0, store.Float(ctx, "pricing", "minimum_order_value", 0))
	assert.Equal(t, map[string]any{"minimum_order_value": 150.0}, store.Group(ctx, "pricing"))
	assert.Equal(t, 150.0, store.Public(ctx)["pricing"]["minimum_order_value"])

	_, err := store.Set(ctx, SetInput{Group: "pricing", Key: "minimum_order_value", Value: "199,90", Type: model.SettingTypeDecimal, IsPublic: true})
	require.NoError(t, err)

	assert.Equal(t, 199.9, store.Float(ctx, "pricing", "minimum_order_value", 0))
	assert.Equal(t, map[string]any{"minimum_order_value": 199.9}, store.Group(ctx, "pricing"))
	assert.Equal(t, 199.9, store.Public(ctx)["pricing"]["minimum_order_value"])
}

func TestStoreSwallowsCacheErrors(t *testing.T) {
	repo := newFakeRepo(model.Setting{Group: "umzug", Key: "base_price", Value: "175", Type: model.SettingTypeDecimal})
	store := NewStore(repo, brokenCache{}, time.Hour, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, 175.0, store.Float(ctx, "umzug", "base_price", 0))
	_, err := store.Set(ctx, SetInput{Group: "umzug", Key: "base_price", Value: 180.0, Type: model.SettingTypeDecimal})
	require.NoError(t, err)
	assert.Equal(t, 180.0, store.Float(ctx, "umzug", "base_price", 0))
}

func TestStoreSetRejectsInvalidValues(t *testing.T) {
	store := NewStore(newFakeRepo(), cache.NewMemory(), time.Hour, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name  string
		input SetInput
	}{
		{name: "missing key", input: SetInput{Group: "umzug", Type: model.SettingTypeString, Value: "x"}},
		{name: "unknown type", input: SetInput{Group: "umzug", Key: "a", Type: "money", Value: "1"}},
		{name: "bad integer", input: SetInput{Group: "umzug", Key: "a", Type: model.SettingTypeInteger, Value: "1.5"}},
		{name: "bad boolean", input: SetInput{Group: "umzug", Key: "a", Type: model.SettingTypeBoolean, Value: "vielleicht"}},
		{name: "bad json", input: SetInput{Group: "umzug", Key: "a", Type: model.SettingTypeJSON, Value: "{"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Set(ctx, tt.input)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestEncodeBoolean(t *testing.T) {
	got, err := Encode(model.SettingTypeBoolean, true)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = Encode(model.SettingTypeBoolean, "false")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}
