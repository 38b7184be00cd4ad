package liblinear

// Model is the result of Train. It is never mutated after Train or
// ReadModel returns, so concurrent prediction is safe.
//
// W is feature-major: the weight of feature j (1-based) for decision
// function k is W[(j-1)*NrW()+k]. When Bias >= 0 the bias weights follow
// the last feature.
type Model struct {
	Solver    SolverType
	NrClass   int
	NrFeature int
	W         []float64
	Label     []int // nil for regression models
	Bias      float64
}

// NrW is the number of decision functions stored in W.
func (m *Model) NrW() int {
	if m.NrClass == 2 && m.Solver != MCSVM_CS {
		return 1
	}
	return m.NrClass
}

// WSize is the number of weight rows, including the bias row.
func (m *Model) WSize() int {
	if m.Bias >= 0 {
		return m.NrFeature + 1
	}
	return m.NrFeature
}

// IsProbabilityModel reports whether PredictProbability is available.
func (m *Model) IsProbabilityModel() bool {
	return m.Solver.IsLogisticRegression()
}

// IsRegression reports whether the model predicts real values.
func (m *Model) IsRegression() bool {
	return m.Solver.IsRegression()
}

// Labels returns a copy of the class labels in internal order.
func (m *Model) Labels() []int {
	if m.Label == nil {
		return nil
	}
	out := make([]int, len(m.Label))
	copy(out, m.Label)
	return out
}

// Decision returns the weight of feature idx (1-based) in decision
// function k. Out-of-range arguments yield 0.
func (m *Model) Decision(idx, k int) float64 {
	nrW := m.NrW()
	if idx < 1 || idx > m.WSize() || k < 0 || k >= nrW {
		return 0
	}
	return m.W[(idx-1)*nrW+k]
}
