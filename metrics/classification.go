// Package metrics は LinearSVM.Score で使う評価指標を提供します。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// Accuracy は正解ラベルと完全一致した割合を返す
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i, t := range yTrue {
		if t == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ClassificationError は 1 - Accuracy
func ClassificationError(yTrue, yPred []float64) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// LogLoss は多クラスの交差エントロピーを計算する。
// probs[i][k] は classes[k] の予測確率。確率は [eps, 1-eps] にクリップする。
func LogLoss(yTrue []float64, probs [][]float64, classes []int) (float64, error) {
	const eps = 1e-15
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("LogLoss", "empty vector")
	}
	if len(probs) != len(yTrue) {
		return 0, errors.NewDimensionError("LogLoss", len(yTrue), len(probs), 0)
	}

	index := make(map[float64]int, len(classes))
	for k, c := range classes {
		index[float64(c)] = k
	}

	var sum float64
	for i, t := range yTrue {
		k, ok := index[t]
		if !ok {
			return 0, errors.NewValueError("LogLoss", "label not among classes")
		}
		if len(probs[i]) != len(classes) {
			return 0, errors.NewDimensionError("LogLoss", len(classes), len(probs[i]), 1)
		}
		p := math.Min(math.Max(probs[i][k], eps), 1-eps)
		sum -= math.Log(p)
	}
	return sum / float64(len(yTrue)), nil
}
