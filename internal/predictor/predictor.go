package predictor

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Predictor is an opaque pretrained regressor. Implementations must be safe
// for concurrent read-only use after construction.
type Predictor interface {
	// Predict scores an N×4 feature matrix and returns one value per row.
	Predict(batch [][]float64) ([]float64, error)
}

// Artifact file names, one per target metric.
const (
	mortalityArtifact   = "model_porcMort.json"
	consumptionArtifact = "model_porcConsumo.json"
	icaArtifact         = "model_ica.json"
	weightArtifact      = "model_pesoProm.json"
)

// Set holds the four regressors the batch pipeline runs. All four are loaded
// once at process start and never replaced.
type Set struct {
	Mortality      Predictor
	Consumption    Predictor
	FeedConversion Predictor
	FinalWeight    Predictor
}

// LoadSet loads all four model artifacts from dir. A missing or corrupt
// artifact is a startup failure; the caller must not serve requests with a
// partial set.
func LoadSet(dir string, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	load := func(name string) (Predictor, error) {
		model, err := LoadLinearModel(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load model artifact %s: %w", name, err)
		}
		logger.Info("model artifact loaded", zap.String("artifact", name), zap.String("model", model.Name))
		return model, nil
	}

	mort, err := load(mortalityArtifact)
	if err != nil {
		return nil, err
	}
	cons, err := load(consumptionArtifact)
	if err != nil {
		return nil, err
	}
	ica, err := load(icaArtifact)
	if err != nil {
		return nil, err
	}
	weight, err := load(weightArtifact)
	if err != nil {
		return nil, err
	}

	return &Set{
		Mortality:      mort,
		Consumption:    cons,
		FeedConversion: ica,
		FinalWeight:    weight,
	}, nil
}

// Complete reports whether all four predictors are present.
func (s *Set) Complete() bool {
	return s != nil && s.Mortality != nil && s.Consumption != nil && s.FeedConversion != nil && s.FinalWeight != nil
}
