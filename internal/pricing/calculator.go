// Package pricing turns calculator form submissions into priced breakdowns.
package pricing

import (
	"context"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/settings"
)

const (
	ServiceMoving       = "umzug"
	ServiceCleaning     = "putzservice"
	ServiceDecluttering = "entruempelung"
)

// Calculator prices one service. Validate returns human readable problems;
// an empty slice means the payload can be priced.
type Calculator interface {
	Service() string
	Validate(ctx context.Context, payload Payload) []string
	Calculate(ctx context.Context, payload Payload) (model.LineItem, error)
}

// DistanceEstimator is the part of distance.Estimator the moving calculator needs.
type DistanceEstimator interface {
	Estimate(ctx context.Context, req distance.Request) (distance.Result, error)
}

type Settings = settings.Reader

func lookupMultiplier(ctx context.Context, s Settings, group, key string, defaults map[string]float64, category string) (float64, bool) {
	table := map[string]float64{}
	if !s.JSON(ctx, group, key, &table) || len(table) == 0 {
		table = defaults
	}
	v, ok := table[category]
	return v, ok
}
