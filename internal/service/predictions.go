package service

import (
	"context"
	"math"

	"github.com/fortuna/splash/internal/store"
	"github.com/fortuna/splash/internal/store/repository"
)

// PredictionService exposes prediction store reads to the API layer
type PredictionService struct {
	repo *repository.PredictionRepository
}

// NewPredictionService creates a new prediction service
func NewPredictionService(db *store.Database) *PredictionService {
	return &PredictionService{
		repo: repository.NewPredictionRepository(db),
	}
}

// GetAll returns every prediction, newest input date first
func (s *PredictionService) GetAll(ctx context.Context) ([]*store.Prediction, error) {
	return s.repo.All(ctx)
}

// GetPending returns the next prediction waiting on an actual outcome,
// or nil when none is pending
func (s *PredictionService) GetPending(ctx context.Context) (*store.Prediction, error) {
	return s.repo.Pending(ctx)
}

// AccuracyMetrics summarizes model performance over completed
// predictions (those with a recorded actual outcome).
type AccuracyMetrics struct {
	MSE       float64 `json:"mse"`
	MAE       float64 `json:"mae"`
	RSquared  float64 `json:"r_squared"`
	Completed int     `json:"completed"`
}

// GetAccuracyMetrics computes accuracy metrics over all predictions
func (s *PredictionService) GetAccuracyMetrics(ctx context.Context) (*AccuracyMetrics, error) {
	predictions, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	return ComputeAccuracy(predictions), nil
}

// ComputeAccuracy calculates MSE, MAE and R² over predictions with a
// recorded actual outcome. R² is left at 0 when the actuals carry no
// variance (fewer than two distinct outcomes).
func ComputeAccuracy(predictions []*store.Prediction) *AccuracyMetrics {
	var completed []*store.Prediction
	for _, p := range predictions {
		if p.ActualPts.Valid {
			completed = append(completed, p)
		}
	}

	metrics := &AccuracyMetrics{Completed: len(completed)}
	if len(completed) == 0 {
		return metrics
	}

	var sumSq, sumAbs, sumActual float64
	for _, p := range completed {
		diff := p.ActualPts.Float64 - p.PredictedPts
		sumSq += diff * diff
		sumAbs += math.Abs(diff)
		sumActual += p.ActualPts.Float64
	}

	n := float64(len(completed))
	metrics.MSE = sumSq / n
	metrics.MAE = sumAbs / n

	mean := sumActual / n
	var ssTot float64
	for _, p := range completed {
		d := p.ActualPts.Float64 - mean
		ssTot += d * d
	}

	if ssTot > 0 {
		metrics.RSquared = 1 - sumSq/ssTot
	}

	return metrics
}
