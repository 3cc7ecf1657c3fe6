// Package distance estimates driving distances between moving addresses.
package distance

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/cache"
	"github.com/yla-umzug/quotes-service/internal/metrics"
)

var (
	ErrMissingInput      = errors.New("postal codes or addresses are required")
	ErrInvalidPostalCode = errors.New("invalid postal code")
	ErrNotConfigured     = errors.New("routing api is not configured")
	ErrNoMatch           = errors.New("address not found")
)

const (
	SourceAddress   = "address"
	SourcePostal    = "postal_code"
	SourceIdentical = "identical"
	SourceFallback  = "fallback"

	postalTTL  = time.Hour
	addressTTL = 24 * time.Hour
)

type Request struct {
	FromPostalCode string `json:"from_postal_code"`
	ToPostalCode   string `json:"to_postal_code"`
	FromStreet     string `json:"from_street"`
	FromCity       string `json:"from_city"`
	ToStreet       string `json:"to_street"`
	ToCity         string `json:"to_city"`
}

func (r Request) hasAddresses() bool {
	return strings.TrimSpace(r.FromStreet) != "" && strings.TrimSpace(r.FromCity) != "" &&
		strings.TrimSpace(r.ToStreet) != "" && strings.TrimSpace(r.ToCity) != ""
}

func (r Request) hasPostalCodes() bool {
	return NormalizePostalCode(r.FromPostalCode) != "" && NormalizePostalCode(r.ToPostalCode) != ""
}

func (r Request) fromAddress() string {
	return joinAddress(r.FromStreet, r.FromPostalCode, r.FromCity)
}

func (r Request) toAddress() string {
	return joinAddress(r.ToStreet, r.ToPostalCode, r.ToCity)
}

type Result struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	Success         bool    `json:"success"`
	Fallback        bool    `json:"fallback"`
	Source          string  `json:"source"`
}

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
}

type RouteProvider interface {
	Geocode(ctx context.Context, query string) (Coordinates, error)
	Route(ctx context.Context, from, to Coordinates) (Route, error)
}

type Estimator struct {
	provider RouteProvider
	cache    cache.Cache
	log      zerolog.Logger
}

func NewEstimator(provider RouteProvider, c cache.Cache, log zerolog.Logger) *Estimator {
	return &Estimator{
		provider: provider,
		cache:    c,
		log:      log.With().Str("component", "distance").Logger(),
	}
}

// Estimate prefers a routed distance between full addresses, then between
// postal codes, and falls back to the postal code heuristic when the routing
// API is unavailable. Fallback results carry Success=false.
func (e *Estimator) Estimate(ctx context.Context, req Request) (Result, error) {
	if req.hasAddresses() {
		key := "distance:address:" + strings.ToLower(req.fromAddress()+"|"+req.toAddress())
		result, err := e.routed(ctx, key, addressTTL, req.fromAddress(), req.toAddress(), SourceAddress)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrNotConfigured) {
			e.log.Warn().Err(err).Msg("address routing failed")
		}
	}

	if !req.hasPostalCodes() {
		if req.hasAddresses() {
			return e.fallback(req)
		}
		return Result{}, ErrMissingInput
	}

	from := NormalizePostalCode(req.FromPostalCode)
	to := NormalizePostalCode(req.ToPostalCode)
	if from == to {
		metrics.DistanceLookups.WithLabelValues(SourceIdentical).Inc()
		return Result{Success: true, Source: SourceIdentical}, nil
	}

	key := "distance:postal:" + from + ":" + to
	result, err := e.routed(ctx, key, postalTTL, from+", Deutschland", to+", Deutschland", SourcePostal)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrNotConfigured) {
		e.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("postal code routing failed")
	}
	return e.fallback(req)
}

func (e *Estimator) fallback(req Request) (Result, error) {
	result, err := Fallback(req.FromPostalCode, req.ToPostalCode)
	if err != nil {
		return Result{}, err
	}
	metrics.DistanceLookups.WithLabelValues(SourceFallback).Inc()
	return result, nil
}

func (e *Estimator) routed(ctx context.Context, key string, ttl time.Duration, from, to, source string) (Result, error) {
	if e.provider == nil {
		return Result{}, ErrNotConfigured
	}

	if raw, err := e.cache.Get(ctx, key); err == nil {
		var cached Result
		if json.Unmarshal(raw, &cached) == nil {
			return cached, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		e.log.Warn().Err(err).Str("cache_key", key).Msg("distance cache read failed")
	}

	fromCoords, err := e.provider.Geocode(ctx, from)
	if err != nil {
		return Result{}, err
	}
	toCoords, err := e.provider.Geocode(ctx, to)
	if err != nil {
		return Result{}, err
	}
	route, err := e.provider.Route(ctx, fromCoords, toCoords)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		DistanceKm:      round1(route.DistanceMeters / 1000),
		DurationMinutes: math.Round(route.DurationSeconds / 60),
		Success:         true,
		Source:          source,
	}
	metrics.DistanceLookups.WithLabelValues(source).Inc()

	if raw, err := json.Marshal(result); err == nil {
		if err := e.cache.Set(ctx, key, raw, ttl); err != nil {
			e.log.Warn().Err(err).Str("cache_key", key).Msg("distance cache write failed")
		}
	}
	return result, nil
}

func joinAddress(street, postalCode, city string) string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(street); s != "" {
		parts = append(parts, s)
	}
	locality := strings.TrimSpace(NormalizePostalCode(postalCode) + " " + strings.TrimSpace(city))
	if locality != "" {
		parts = append(parts, locality)
	}
	parts = append(parts, "Deutschland")
	return strings.Join(parts, ", ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
