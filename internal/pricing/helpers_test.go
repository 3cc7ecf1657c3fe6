package pricing

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/model"
)

// mapSettings serves raw setting values keyed "group/key".
type mapSettings map[string]string

func (m mapSettings) Float(_ context.Context, group, key string, def float64) float64 {
	if raw, ok := m[group+"/"+key]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return def
}

func (m mapSettings) Int(_ context.Context, group, key string, def int64) int64 {
	if raw, ok := m[group+"/"+key]; ok {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func (m mapSettings) Bool(_ context.Context, group, key string, def bool) bool {
	if raw, ok := m[group+"/"+key]; ok {
		return raw == "1"
	}
	return def
}

func (m mapSettings) String(_ context.Context, group, key, def string) string {
	if raw, ok := m[group+"/"+key]; ok {
		return raw
	}
	return def
}

func (m mapSettings) JSON(_ context.Context, group, key string, dst any) bool {
	raw, ok := m[group+"/"+key]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

type fixedDistance struct {
	result distance.Result
	err    error
	calls  int
}

func (f *fixedDistance) Estimate(context.Context, distance.Request) (distance.Result, error) {
	f.calls++
	return f.result, f.err
}

type staticRules []model.PricingRule

func (s staticRules) ListActive(context.Context) ([]model.PricingRule, error) {
	return s, nil
}

func decodePayload(raw string) Payload {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		panic(err)
	}
	return p
}
