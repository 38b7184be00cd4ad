package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linearsvm/liblinear"
)

func row(values ...float64) []liblinear.FeatureNode {
	out := make([]liblinear.FeatureNode, 0, len(values)+1)
	for j, v := range values {
		out = append(out, liblinear.FeatureNode{Index: j + 1, Value: v})
	}
	return append(out, liblinear.FeatureNode{Index: liblinear.SentinelIndex})
}

func trainedModel(t *testing.T, solver liblinear.SolverType) *liblinear.Model {
	t.Helper()
	samples := [][]float64{{5, 0.1}, {6, 1}, {0.2, 5}, {1, 6}, {-5, -5}, {-6, -4.5}}
	prob := &liblinear.Problem{
		L:    len(samples),
		N:    2,
		Y:    []float64{0, 0, 1, 1, 2, 2},
		Bias: -1,
	}
	for _, s := range samples {
		prob.X = append(prob.X, row(s...))
	}
	param := liblinear.DefaultParameter()
	param.Solver = solver
	m, err := liblinear.Train(prob, &param)
	require.NoError(t, err)
	return m
}

var probeRows = [][]liblinear.FeatureNode{
	row(5, 0), row(0, 5), row(-4, -4), row(0.3, -0.7), row(1e-9, 1e9),
}

// requireSameDecisions checks bit-identical decision values on probeRows.
func requireSameDecisions(t *testing.T, want, got *liblinear.Model) {
	t.Helper()
	for _, x := range probeRows {
		d1 := make([]float64, want.NrW())
		d2 := make([]float64, got.NrW())
		l1 := liblinear.PredictValues(want, x, d1)
		l2 := liblinear.PredictValues(got, x, d2)
		require.Equal(t, l1, l2)
		require.Equal(t, d1, d2)
	}
}
