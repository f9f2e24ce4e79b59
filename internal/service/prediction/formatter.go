package prediction

import (
	"errors"

	"github.com/mamadbah2/avipredict/internal/domain/models"
)

// ErrNoResults indicates a single-row accessor was called on an empty batch.
var ErrNoResults = errors.New("no prediction results")

// ResultColumns names the four output columns in their fixed order.
var ResultColumns = []string{"prePorcMort", "prePorcCon", "preICA", "prePeProFin"}

// Flatten reshapes a result batch into per-row ordered value lists
// [mortality, consumption, ica, weight]. It performs no numeric work.
func Flatten(results []models.PredictionResult) [][]float64 {
	out := make([][]float64, len(results))
	for i, r := range results {
		out[i] = []float64{r.PrePorcMort, r.PrePorcCon, r.PreICA, r.PrePeProFin}
	}
	return out
}

// First unwraps the single-row case explicitly. Results are always a
// sequence of length >= 1; callers that submitted one row use First instead
// of sniffing the shape.
func First(results []models.PredictionResult) (models.PredictionResult, error) {
	if len(results) == 0 {
		return models.PredictionResult{}, ErrNoResults
	}
	return results[0], nil
}
