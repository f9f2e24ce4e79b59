package prediction

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/domain/models"
	"github.com/mamadbah2/avipredict/internal/predictor"
)

// Display precision per metric. The asymmetry is intentional and matches how
// downstream consumers read each value.
const (
	mortalityDecimals   = 2
	consumptionDecimals = 3
	icaDecimals         = 2
	weightDecimals      = 3
)

// BatchPredictor runs the four regressors over a feature batch and shapes the
// combined result. It holds no per-call mutable state; the model set is
// effectively immutable after startup, so concurrent calls are safe.
type BatchPredictor struct {
	set    *predictor.Set
	logger *zap.Logger
}

// NewBatchPredictor wires a predictor service around a loaded model set.
func NewBatchPredictor(set *predictor.Set, logger *zap.Logger) *BatchPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchPredictor{set: set, logger: logger}
}

// PredictAll scores every row of the batch with all four models and returns
// one result per input row, index-aligned with the input. Each model is
// invoked exactly once over the whole matrix. Any unavailable or failing
// model fails the entire batch; partial results are never returned.
func (s *BatchPredictor) PredictAll(rows []models.FeatureRow) ([]models.PredictionResult, error) {
	if len(rows) == 0 {
		return nil, models.ErrEmptyBatch
	}
	if !s.set.Complete() {
		return nil, models.ErrPredictorUnavailable
	}

	matrix := models.Matrix(rows)
	for i, row := range matrix {
		if len(row) != models.FeatureColumns {
			return nil, fmt.Errorf("malformed input: row %d has %d columns, want %d", i, len(row), models.FeatureColumns)
		}
	}

	mort, err := s.runModel("mortality", s.set.Mortality, matrix)
	if err != nil {
		return nil, err
	}
	cons, err := s.runModel("consumption", s.set.Consumption, matrix)
	if err != nil {
		return nil, err
	}
	ica, err := s.runModel("feed_conversion", s.set.FeedConversion, matrix)
	if err != nil {
		return nil, err
	}
	weight, err := s.runModel("final_weight", s.set.FinalWeight, matrix)
	if err != nil {
		return nil, err
	}

	results := make([]models.PredictionResult, len(rows))
	for i := range rows {
		results[i] = models.PredictionResult{
			PrePorcMort: roundTo(mort[i], mortalityDecimals),
			PrePorcCon:  roundTo(cons[i], consumptionDecimals),
			PreICA:      roundTo(ica[i], icaDecimals),
			PrePeProFin: roundTo(weight[i], weightDecimals),
		}
	}

	s.logger.Debug("batch scored", zap.Int("rows", len(rows)))
	return results, nil
}

func (s *BatchPredictor) runModel(name string, p predictor.Predictor, matrix [][]float64) ([]float64, error) {
	preds, err := p.Predict(matrix)
	if err != nil {
		return nil, fmt.Errorf("%s model failed: %w", name, err)
	}
	if len(preds) != len(matrix) {
		return nil, fmt.Errorf("%s model returned %d predictions for %d rows", name, len(preds), len(matrix))
	}
	return preds, nil
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
