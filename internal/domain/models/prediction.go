package models

import (
	"fmt"
	"time"
)

// FeatureColumns is the fixed column order expected by the regressors.
const FeatureColumns = 4

// Slaughter ages offered on the manual entry path.
var ManualSlaughterAges = []int{14, 21, 28, 35}

// Sale-age bounds enforced on the manual entry path only; file ingest
// accepts any numeric value.
const (
	MinSaleAgeDays = 0
	MaxSaleAgeDays = 5000
)

// FeatureRow is one fully encoded case, ready for inference.
type FeatureRow struct {
	AreaCode         int
	SexCode          int
	SlaughterAgeDays int
	SaleAgeDays      float64
}

// Vector returns the row in the fixed column order
// [area_code, sex_code, slaughter_age_days, sale_age_days].
func (r FeatureRow) Vector() []float64 {
	return []float64{float64(r.AreaCode), float64(r.SexCode), float64(r.SlaughterAgeDays), r.SaleAgeDays}
}

// Matrix converts an ordered batch of rows into the N×4 numeric input the
// regressors consume. Row i of the matrix corresponds to rows[i].
func Matrix(rows []FeatureRow) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Vector()
	}
	return out
}

// ValidateManualBounds enforces the manual-form value constraints.
func (r FeatureRow) ValidateManualBounds() error {
	valid := false
	for _, age := range ManualSlaughterAges {
		if r.SlaughterAgeDays == age {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("slaughter age must be one of %v, got %d", ManualSlaughterAges, r.SlaughterAgeDays)
	}
	if r.SaleAgeDays < MinSaleAgeDays || r.SaleAgeDays > MaxSaleAgeDays {
		return fmt.Errorf("sale age must be between %d and %d, got %g", MinSaleAgeDays, MaxSaleAgeDays, r.SaleAgeDays)
	}
	return nil
}

// PredictionResult carries the four predicted metrics for one input row,
// already rounded to display precision. Results are created per inference
// call and never mutated afterwards.
type PredictionResult struct {
	PrePorcMort float64 `json:"prePorcMort"` // mortality %, 2 decimals
	PrePorcCon  float64 `json:"prePorcCon"`  // consumption %, 3 decimals
	PreICA      float64 `json:"preICA"`      // feed conversion ratio, 2 decimals
	PrePeProFin float64 `json:"prePeProFin"` // final average weight, 3 decimals
}

// SavedPredictionRecord is the provenance row persisted to the remote table:
// raw inputs, predicted outputs and submitting-user metadata. Once written it
// is owned by the backend; the service keeps no durable copy.
type SavedPredictionRecord struct {
	ID             int64     `json:"id,omitempty"`
	Nombre         string    `json:"nombre"`
	Cargo          string    `json:"cargo"`
	AreaGranja     string    `json:"areaGranja"`
	Sexo           string    `json:"sexo"`
	EdadSacrificio int       `json:"EdadSacrificio"`
	EdadVenta      float64   `json:"EdadVenta"`
	PrePorcMort    float64   `json:"prePorcMort"`
	PrePorcCon     float64   `json:"prePorcCon"`
	PreICA         float64   `json:"preICA"`
	PrePeProFin    float64   `json:"prePeProFin"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// ApplyResult merges the predicted metrics into the provenance record.
func (r *SavedPredictionRecord) ApplyResult(res PredictionResult) {
	r.PrePorcMort = res.PrePorcMort
	r.PrePorcCon = res.PrePorcCon
	r.PreICA = res.PreICA
	r.PrePeProFin = res.PrePeProFin
}
