// Package settings exposes typed configuration values from the settings
// table through a read-through cache.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yla-umzug/quotes-service/internal/cache"
	"github.com/yla-umzug/quotes-service/internal/model"
)

var ErrInvalidValue = errors.New("invalid setting value")

type Repository interface {
	Find(ctx context.Context, group, key string) (*model.Setting, error)
	ListGroup(ctx context.Context, group string) ([]model.Setting, error)
	ListPublic(ctx context.Context) ([]model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, setting *model.Setting) error
}

// Reader is the read side used by calculators.
type Reader interface {
	Float(ctx context.Context, group, key string, def float64) float64
	Int(ctx context.Context, group, key string, def int64) int64
	Bool(ctx context.Context, group, key string, def bool) bool
	String(ctx context.Context, group, key, def string) string
	JSON(ctx context.Context, group, key string, dst any) bool
}

type Store struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

type cachedSetting struct {
	Found bool              `json:"found"`
	Type  model.SettingType `json:"type,omitempty"`
	Value string            `json:"value,omitempty"`
}

const publicCacheKey = "settings:public"

func NewStore(repo Repository, c cache.Cache, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		repo:  repo,
		cache: c,
		ttl:   ttl,
		log:   log.With().Str("component", "settings").Logger(),
	}
}

func keyCacheKey(group, key string) string {
	return "setting:" + group + ":" + key
}

func groupCacheKey(group string) string {
	return "settings:group:" + group
}

// Get returns the typed value for (group, key) or def when the key is
// missing or its stored text does not parse.
func (s *Store) Get(ctx context.Context, group, key string, def any) any {
	entry := s.load(ctx, group, key)
	if !entry.Found {
		return def
	}
	value, err := Decode(entry.Type, entry.Value)
	if err != nil {
		s.log.Warn().Err(err).Str("group", group).Str("key", key).Msg("setting does not parse, using default")
		return def
	}
	return value
}

func (s *Store) Float(ctx context.Context, group, key string, def float64) float64 {
	switch v := s.Get(ctx, group, key, def).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func (s *Store) Int(ctx context.Context, group, key string, def int64) int64 {
	switch v := s.Get(ctx, group, key, def).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return def
}

func (s *Store) Bool(ctx context.Context, group, key string, def bool) bool {
	switch v := s.Get(ctx, group, key, def).(type) {
	case bool:
		return v
	case string:
		if b, ok := parseBool(v); ok {
			return b
		}
	}
	return def
}

func (s *Store) String(ctx context.Context, group, key, def string) string {
	entry := s.load(ctx, group, key)
	if !entry.Found {
		return def
	}
	return entry.Value
}

// JSON decodes the raw stored value into dst. It reports false and leaves
// dst untouched when the key is missing or the value is not valid JSON.
func (s *Store) JSON(ctx context.Context, group, key string, dst any) bool {
	entry := s.load(ctx, group, key)
	if !entry.Found || strings.TrimSpace(entry.Value) == "" {
		return false
	}
	if err := json.Unmarshal([]byte(entry.Value), dst); err != nil {
		s.log.Warn().Err(err).Str("group", group).Str("key", key).Msg("setting is not valid json")
		return false
	}
	return true
}

// Group returns every setting of a group as typed values keyed by key.
func (s *Store) Group(ctx context.Context, group string) map[string]any {
	var rows []model.Setting
	if !s.cacheGet(ctx, groupCacheKey(group), &rows) {
		var err error
		rows, err = s.repo.ListGroup(ctx, group)
		if err != nil {
			s.log.Error().Err(err).Str("group", group).Msg("load setting group failed")
			return map[string]any{}
		}
		s.cacheSet(ctx, groupCacheKey(group), rows)
	}
	return typedMap(rows)
}

// Public returns settings flagged public, grouped by group name.
func (s *Store) Public(ctx context.Context) map[string]map[string]any {
	var rows []model.Setting
	if !s.cacheGet(ctx, publicCacheKey, &rows) {
		var err error
		rows, err = s.repo.ListPublic(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("load public settings failed")
			return map[string]map[string]any{}
		}
		s.cacheSet(ctx, publicCacheKey, rows)
	}

	result := make(map[string]map[string]any)
	for _, row := range rows {
		value, err := Decode(row.Type, row.Value)
		if err != nil {
			continue
		}
		if result[row.Group] == nil {
			result[row.Group] = make(map[string]any)
		}
		result[row.Group][row.Key] = value
	}
	return result
}

func (s *Store) List(ctx context.Context) ([]model.Setting, error) {
	return s.repo.List(ctx)
}

type SetInput struct {
	Group       string
	Key         string
	Value       any
	Type        model.SettingType
	IsPublic    bool
	Description string
}

// Set validates and stores a value, then invalidates the key, group and
// public cache entries.
func (s *Store) Set(ctx context.Context, input SetInput) (*model.Setting, error) {
	group := strings.TrimSpace(input.Group)
	key := strings.TrimSpace(input.Key)
	if group == "" || key == "" {
		return nil, fmt.Errorf("%w: group and key are required", ErrInvalidValue)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidValue, input.Type)
	}

	text, err := Encode(input.Type, input.Value)
	if err != nil {
		return nil, err
	}

	setting := &model.Setting{
		Group:       group,
		Key:         key,
		Value:       text,
		Type:        input.Type,
		IsPublic:    input.IsPublic,
		Description: input.Description,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.Forget(ctx, group, key)
	return setting, nil
}

// Forget drops every cache entry that can contain (group, key).
func (s *Store) Forget(ctx context.Context, group, key string) {
	if err := s.cache.Delete(ctx, keyCacheKey(group, key), groupCacheKey(group), publicCacheKey); err != nil {
		s.log.Warn().Err(err).Str("group", group).Str("key", key).Msg("setting cache invalidation failed")
	}
}

func (s *Store) load(ctx context.Context, group, key string) cachedSetting {
	cacheKey := keyCacheKey(group, key)

	var entry cachedSetting
	if s.cacheGet(ctx, cacheKey, &entry) {
		return entry
	}

	setting, err := s.repo.Find(ctx, group, key)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = cachedSetting{Found: false}
	case err != nil:
		s.log.Error().Err(err).Str("group", group).Str("key", key).Msg("load setting failed")
		return cachedSetting{}
	default:
		entry = cachedSetting{Found: true, Type: setting.Type, Value: setting.Value}
	}

	s.cacheSet(ctx, cacheKey, entry)
	return entry
}

func (s *Store) cacheGet(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("cache_key", key).Msg("settings cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("cache_key", key).Msg("settings cache entry is corrupt")
		return false
	}
	return true
}

func (s *Store) cacheSet(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("cache_key", key).Msg("settings cache write failed")
	}
}

func typedMap(rows []model.Setting) map[string]any {
	result := make(map[string]any, len(rows))
	for _, row := range rows {
		value, err := Decode(row.Type, row.Value)
		if err != nil {
			continue
		}
		result[row.Key] = value
	}
	return result
}
