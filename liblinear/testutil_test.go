package liblinear

func denseRow(values ...float64) []FeatureNode {
	row := make([]FeatureNode, 0, len(values)+1)
	for j, v := range values {
		if v != 0 {
			row = append(row, FeatureNode{Index: j + 1, Value: v})
		}
	}
	return append(row, FeatureNode{Index: SentinelIndex})
}

func denseProblem(x [][]float64, y []float64, bias float64) *Problem {
	rows := make([][]FeatureNode, len(x))
	for i, r := range x {
		rows[i] = denseRow(r...)
	}
	return &Problem{L: len(x), N: len(x[0]), Y: y, X: rows, Bias: bias}
}

// separable through the origin by w = (1, 1)
func separableProblem() *Problem {
	return denseProblem(
		[][]float64{{2, 1}, {1, 2}, {3, 3}, {2, 2}, {-2, -1}, {-1, -2}, {-3, -3}, {-2, -2}},
		[]float64{1, 1, 1, 1, -1, -1, -1, -1},
		-1,
	)
}

func threeClassProblem() *Problem {
	return denseProblem(
		[][]float64{
			{5, 0}, {6, 1}, {5, -1},
			{0, 5}, {1, 6}, {-1, 5},
			{-5, -5}, {-6, -5}, {-5, -6},
		},
		[]float64{0, 0, 0, 1, 1, 1, 2, 2, 2},
		-1,
	)
}
