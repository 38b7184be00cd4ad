package liblinear

// Sparse kernels over sentinel-terminated rows. A row slice without a
// sentinel is treated as ending at its length.

func nrm2sq(x []FeatureNode) float64 {
	var ret float64
	for _, node := range x {
		if node.Index == SentinelIndex {
			break
		}
		ret += node.Value * node.Value
	}
	return ret
}

func dot(w []float64, x []FeatureNode) float64 {
	var ret float64
	for _, node := range x {
		if node.Index == SentinelIndex {
			break
		}
		ret += w[node.Index-1] * node.Value
	}
	return ret
}

func axpy(a float64, x []FeatureNode, y []float64) {
	for _, node := range x {
		if node.Index == SentinelIndex {
			break
		}
		y[node.Index-1] += a * node.Value
	}
}
