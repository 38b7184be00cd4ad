package liblinear

import (
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// SentinelIndex terminates every sparse row.
const SentinelIndex = -1

// FeatureNode is one (index, value) pair of a sparse row. Indices are
// 1-based; a node with Index == SentinelIndex ends the row.
type FeatureNode struct {
	Index int
	Value float64
}

// Problem is the training set handed to Train.
//
// N counts real features only. When Bias >= 0, Train appends a constant
// feature N+1 with value Bias to every row; Bias < 0 disables it.
type Problem struct {
	L    int             // number of instances
	N    int             // number of features
	Y    []float64       // one target per instance
	X    [][]FeatureNode // sentinel-terminated rows
	Bias float64
}

// Validate checks sizes and that every row has strictly increasing indices
// in [1, N] before its sentinel.
func (p *Problem) Validate() error {
	if p.L <= 0 {
		return perrors.NewValidationError("l", "problem has no instances", p.L)
	}
	if p.N <= 0 {
		return perrors.NewValidationError("n", "problem has no features", p.N)
	}
	if len(p.Y) != p.L {
		return perrors.NewDimensionError("Problem.Validate", p.L, len(p.Y), 0)
	}
	if len(p.X) != p.L {
		return perrors.NewDimensionError("Problem.Validate", p.L, len(p.X), 0)
	}
	for i, row := range p.X {
		prev := 0
		for _, node := range row {
			if node.Index == SentinelIndex {
				break
			}
			if node.Index <= prev || node.Index > p.N {
				return perrors.NewValidationError("x",
					"feature indices must be strictly increasing within [1, n]",
					map[string]int{"row": i, "index": node.Index})
			}
			prev = node.Index
		}
	}
	return nil
}

// subProblem is the solver-facing view: rows already carry the bias node
// and n counts it.
type subProblem struct {
	l int
	n int
	y []float64
	x [][]FeatureNode
}

// withBias copies every row and appends the constant bias node.
func withBias(p *Problem) [][]FeatureNode {
	x := make([][]FeatureNode, p.L)
	for i, row := range p.X {
		k := rowLen(row)
		r := make([]FeatureNode, k+2)
		copy(r, row[:k])
		r[k] = FeatureNode{Index: p.N + 1, Value: p.Bias}
		r[k+1] = FeatureNode{Index: SentinelIndex}
		x[i] = r
	}
	return x
}

// rowLen returns the number of nodes before the sentinel.
func rowLen(row []FeatureNode) int {
	for k, node := range row {
		if node.Index == SentinelIndex {
			return k
		}
	}
	return len(row)
}

// transpose builds the column-major copy used by the L1-regularized
// solvers. Column j holds (row+1, value) for every row touching feature j+1,
// with each value multiplied by scale[row] when scale is non-nil.
func transpose(sp *subProblem, scale []float64) [][]FeatureNode {
	colLen := make([]int, sp.n)
	for _, row := range sp.x {
		for _, node := range row {
			if node.Index == SentinelIndex {
				break
			}
			colLen[node.Index-1]++
		}
	}

	cols := make([][]FeatureNode, sp.n)
	for j := range cols {
		cols[j] = make([]FeatureNode, 0, colLen[j])
	}
	for i, row := range sp.x {
		for _, node := range row {
			if node.Index == SentinelIndex {
				break
			}
			v := node.Value
			if scale != nil {
				v *= scale[i]
			}
			cols[node.Index-1] = append(cols[node.Index-1], FeatureNode{Index: i + 1, Value: v})
		}
	}
	return cols
}
