package liblinear

import (
	"math"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// PredictValues fills dec with the NrW() decision values for x and returns
// the predicted label (or value, for regression). dec must hold at least
// NrW() entries. Indices beyond NrFeature are ignored.
func PredictValues(m *Model, x []FeatureNode, dec []float64) float64 {
	nrW := m.NrW()
	n := m.NrFeature
	for k := 0; k < nrW; k++ {
		dec[k] = 0
	}

	for _, node := range x {
		if node.Index == SentinelIndex {
			break
		}
		if node.Index < 1 || node.Index > n {
			continue
		}
		base := (node.Index - 1) * nrW
		for k := 0; k < nrW; k++ {
			dec[k] += m.W[base+k] * node.Value
		}
	}
	if m.Bias >= 0 {
		base := n * nrW
		for k := 0; k < nrW; k++ {
			dec[k] += m.W[base+k] * m.Bias
		}
	}

	if m.IsRegression() {
		return dec[0]
	}
	if nrW == 1 && m.NrClass == 2 {
		if dec[0] > 0 {
			return float64(m.Label[0])
		}
		return float64(m.Label[1])
	}

	best := 0
	for k := 1; k < nrW; k++ {
		if dec[k] > dec[best] {
			best = k
		}
	}
	return float64(m.Label[best])
}

// Predict returns the label for x without exposing decision values.
func Predict(m *Model, x []FeatureNode) float64 {
	dec := make([]float64, m.NrW())
	return PredictValues(m, x, dec)
}

// PredictProbability fills prob with NrClass class probabilities for
// logistic regression models.
func PredictProbability(m *Model, x []FeatureNode, prob []float64) (float64, error) {
	if !m.IsProbabilityModel() {
		return 0, perrors.NewValueError("PredictProbability",
			"probability estimates are only available for logistic regression solvers, got "+m.Solver.String())
	}
	nrW := m.NrW()
	dec := make([]float64, nrW)
	label := PredictValues(m, x, dec)

	for k := 0; k < nrW; k++ {
		prob[k] = 1 / (1 + math.Exp(-dec[k]))
	}
	if m.NrClass == 2 {
		prob[1] = 1 - prob[0]
		return label, nil
	}

	var sum float64
	for k := 0; k < m.NrClass; k++ {
		sum += prob[k]
	}
	for k := 0; k < m.NrClass; k++ {
		prob[k] /= sum
	}
	return label, nil
}
