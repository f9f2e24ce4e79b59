package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureRowVectorOrder(t *testing.T) {
	row := FeatureRow{AreaCode: 3, SexCode: 1, SlaughterAgeDays: 35, SaleAgeDays: 1000}
	require.Equal(t, []float64{3, 1, 35, 1000}, row.Vector())
}

func TestMatrixPreservesRowOrder(t *testing.T) {
	rows := []FeatureRow{
		{AreaCode: 1, SexCode: 0, SlaughterAgeDays: 14, SaleAgeDays: 100},
		{AreaCode: 8, SexCode: 1, SlaughterAgeDays: 35, SaleAgeDays: 5000},
	}

	m := Matrix(rows)
	require.Len(t, m, 2)
	require.Equal(t, rows[0].Vector(), m[0])
	require.Equal(t, rows[1].Vector(), m[1])
}

func TestValidateManualBounds(t *testing.T) {
	tests := []struct {
		name    string
		row     FeatureRow
		wantErr bool
	}{
		{"valid", FeatureRow{SlaughterAgeDays: 35, SaleAgeDays: 1000}, false},
		{"min sale age", FeatureRow{SlaughterAgeDays: 14, SaleAgeDays: 0}, false},
		{"max sale age", FeatureRow{SlaughterAgeDays: 28, SaleAgeDays: 5000}, false},
		{"slaughter age off the grid", FeatureRow{SlaughterAgeDays: 30, SaleAgeDays: 1000}, true},
		{"sale age negative", FeatureRow{SlaughterAgeDays: 21, SaleAgeDays: -1}, true},
		{"sale age too large", FeatureRow{SlaughterAgeDays: 21, SaleAgeDays: 5001}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.row.ValidateManualBounds()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestApplyResult(t *testing.T) {
	record := SavedPredictionRecord{Nombre: "Ana", Cargo: "Supervisora"}
	record.ApplyResult(PredictionResult{PrePorcMort: 6.27, PrePorcCon: 103.15, PreICA: 1.63, PrePeProFin: 2.52})

	require.Equal(t, 6.27, record.PrePorcMort)
	require.Equal(t, 103.15, record.PrePorcCon)
	require.Equal(t, 1.63, record.PreICA)
	require.Equal(t, 2.52, record.PrePeProFin)
}
