package service

import (
	"context"
	"errors"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/pricing"
	"github.com/yla-umzug/quotes-service/internal/repository"
)

type Pricer interface {
	PricingCalculator
	Supports(key string) bool
}

// CalculatorService backs the public price calculator.
type CalculatorService struct {
	pricer   Pricer
	catalog  *repository.ServiceRepository
	distance pricing.DistanceEstimator
}

func NewCalculatorService(pricer Pricer, catalog *repository.ServiceRepository, estimator pricing.DistanceEstimator) *CalculatorService {
	return &CalculatorService{pricer: pricer, catalog: catalog, distance: estimator}
}

func (s *CalculatorService) Calculate(ctx context.Context, req pricing.Request) (model.PricingResult, error) {
	services := req.Services()
	if len(services) == 0 {
		return model.PricingResult{}, fieldError("selectedServices", "Mindestens eine Leistung auswählen")
	}
	for _, key := range services {
		if !s.pricer.Supports(key) {
			return model.PricingResult{}, fieldError("selectedServices", "Unbekannte Leistung: "+key)
		}
	}
	return s.pricer.Calculate(ctx, req), nil
}

func (s *CalculatorService) Services(ctx context.Context) ([]model.Service, error) {
	return s.catalog.ListActive(ctx)
}

func (s *CalculatorService) Distance(ctx context.Context, req distance.Request) (distance.Result, error) {
	result, err := s.distance.Estimate(ctx, req)
	if err != nil {
		if errors.Is(err, distance.ErrMissingInput) || errors.Is(err, distance.ErrInvalidPostalCode) {
			return distance.Result{}, fieldError("postal_code", "Gültige Postleitzahlen erforderlich")
		}
		return distance.Result{}, err
	}
	return result, nil
}
