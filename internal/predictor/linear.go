package predictor

import (
	"encoding/json"
	"fmt"
	"os"
)

// LinearModel is a regression model exported from the training pipeline as an
// intercept plus one coefficient per feature column.
type LinearModel struct {
	Name         string    `json:"name"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LoadLinearModel reads and validates a model artifact file.
func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var model LinearModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	if len(model.Coefficients) == 0 {
		return nil, fmt.Errorf("artifact %s has no coefficients", path)
	}

	return &model, nil
}

// Predict scores the whole batch in one call. Every row must have exactly
// as many columns as the model has coefficients.
func (m *LinearModel) Predict(batch [][]float64) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, row := range batch {
		if len(row) != len(m.Coefficients) {
			return nil, fmt.Errorf("model %s expects %d features, row %d has %d", m.Name, len(m.Coefficients), i, len(row))
		}
		v := m.Intercept
		for j, c := range m.Coefficients {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}
