package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

func sampleWeights() *ModelWeights {
	return &ModelWeights{
		ModelType:       "LinearSVM",
		Solver:          "MCSVM_CS",
		Labels:          []int{1, 2, 3},
		Coefficients:    [][]float64{{0.5, -1}, {0, 2}, {-0.25, 0.75}},
		Bias:            -1,
		Hyperparameters: map[string]interface{}{"c": 1.0},
		IsFitted:        true,
	}
}

func TestModelWeightsJSON(t *testing.T) {
	mw := sampleWeights()
	data, err := mw.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"solver": "MCSVM_CS"`)

	var back ModelWeights
	require.NoError(t, back.FromJSON(data))
	assert.Equal(t, mw.Coefficients, back.Coefficients)
	assert.Equal(t, mw.Labels, back.Labels)
	assert.Equal(t, 1.0, back.Hyperparameters["c"])
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ModelWeights)
	}{
		{"missing type", func(mw *ModelWeights) { mw.ModelType = "" }},
		{"fitted without coefficients", func(mw *ModelWeights) { mw.Coefficients = nil }},
		{"unfitted with coefficients", func(mw *ModelWeights) { mw.IsFitted = false }},
		{"ragged rows", func(mw *ModelWeights) { mw.Coefficients[2] = []float64{1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := sampleWeights()
			tt.mutate(mw)
			err := mw.Validate()
			require.Error(t, err)
			assert.True(t, perrors.Is(err, perrors.ErrInvalidInput))
		})
	}

	var bad ModelWeights
	assert.True(t, perrors.Is(bad.FromJSON([]byte("{")), perrors.ErrInvalidInput))
}

func TestModelWeightsClone(t *testing.T) {
	mw := sampleWeights()
	clone := mw.Clone()
	clone.Coefficients[0][0] = 99
	clone.Labels[0] = 99
	clone.Hyperparameters["c"] = 2.0

	assert.Equal(t, 0.5, mw.Coefficients[0][0])
	assert.Equal(t, 1, mw.Labels[0])
	assert.Equal(t, 1.0, mw.Hyperparameters["c"])
}
