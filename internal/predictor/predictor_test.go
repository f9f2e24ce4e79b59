package predictor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeFullSet(t *testing.T, dir string) {
	t.Helper()
	writeArtifact(t, dir, "model_porcMort.json", `{"name":"porcMort","intercept":2.0,"coefficients":[1,1,1,1]}`)
	writeArtifact(t, dir, "model_porcConsumo.json", `{"name":"porcConsumo","intercept":0,"coefficients":[0,0,1,0]}`)
	writeArtifact(t, dir, "model_ica.json", `{"name":"ica","intercept":1,"coefficients":[0,0,0,0.001]}`)
	writeArtifact(t, dir, "model_pesoProm.json", `{"name":"pesoProm","intercept":0.5,"coefficients":[0.1,0.1,0,0]}`)
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)

	set, err := LoadSet(dir, nil)
	require.NoError(t, err)
	require.True(t, set.Complete())

	preds, err := set.Mortality.Predict([][]float64{{1, 1, 35, 1000}})
	require.NoError(t, err)
	require.Equal(t, []float64{2 + 1 + 1 + 35 + 1000}, preds)
}

func TestLoadSetMissingArtifactFails(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "model_ica.json")))

	set, err := LoadSet(dir, nil)
	require.Error(t, err)
	require.Nil(t, set)
	require.Contains(t, err.Error(), "model_ica.json")
}

func TestLoadSetCorruptArtifactFails(t *testing.T) {
	dir := t.TempDir()
	writeFullSet(t, dir)
	writeArtifact(t, dir, "model_pesoProm.json", `not json`)

	_, err := LoadSet(dir, nil)
	require.Error(t, err)
}

func TestLoadLinearModelRejectsEmptyCoefficients(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "empty.json", `{"name":"x","intercept":1,"coefficients":[]}`)

	_, err := LoadLinearModel(filepath.Join(dir, "empty.json"))
	require.Error(t, err)
}

func TestLinearModelPredictBatch(t *testing.T) {
	model := &LinearModel{Name: "t", Intercept: 1, Coefficients: []float64{2, 0, 0, 0}}

	preds, err := model.Predict([][]float64{
		{1, 0, 0, 0},
		{2, 0, 0, 0},
		{3, 0, 0, 0},
	})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 5, 7}, preds)
}

func TestLinearModelPredictRejectsColumnMismatch(t *testing.T) {
	model := &LinearModel{Name: "t", Intercept: 0, Coefficients: []float64{1, 1, 1, 1}}

	_, err := model.Predict([][]float64{{1, 2, 3}})
	require.Error(t, err)
}

// The artifacts shipped with the repository are the reference models; the
// expected values below were captured from them and guard against accidental
// coefficient changes.
func TestShippedArtifactsReferenceScenario(t *testing.T) {
	set, err := LoadSet(filepath.Join("..", "..", "models"), nil)
	require.NoError(t, err)

	input := [][]float64{{1, 1, 35, 1000}}

	mort, err := set.Mortality.Predict(input)
	require.NoError(t, err)
	require.InDelta(t, 6.27, mort[0], 1e-9)

	cons, err := set.Consumption.Predict(input)
	require.NoError(t, err)
	require.InDelta(t, 103.15, cons[0], 1e-9)

	ica, err := set.FeedConversion.Predict(input)
	require.NoError(t, err)
	require.InDelta(t, 1.63, ica[0], 1e-9)

	weight, err := set.FinalWeight.Predict(input)
	require.NoError(t, err)
	require.InDelta(t, 2.52, weight[0], 1e-9)
}
