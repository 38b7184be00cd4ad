package svm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

func matrix(rows ...[]float64) *mat.Dense {
	d := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		d.SetRow(i, r)
	}
	return d
}

func column(v ...float64) *mat.Dense {
	return mat.NewDense(len(v), 1, v)
}

// separable2D は w=(1,1) の超平面で分離できる8点
func separable2D() (*mat.Dense, *mat.Dense) {
	X := matrix(
		[]float64{2, 1}, []float64{1, 2}, []float64{3, 3}, []float64{2, 2.5},
		[]float64{-2, -1}, []float64{-1, -2}, []float64{-3, -3}, []float64{-2, -2.5},
	)
	return X, column(1, 1, 1, 1, -1, -1, -1, -1)
}

// threeClass は原点から離れた3つのクラスタ
func threeClass() (*mat.Dense, *mat.Dense) {
	X := matrix(
		[]float64{5, 0}, []float64{6, 1}, []float64{5, -1},
		[]float64{0, 5}, []float64{1, 6}, []float64{-1, 5},
		[]float64{-5, -5}, []float64{-6, -5}, []float64{-5, -6},
	)
	return X, column(1, 1, 1, 2, 2, 2, 3, 3, 3)
}

func fitted(t *testing.T, cfg Config) *LinearSVM {
	t.Helper()
	X, y := separable2D()
	s := NewLinearSVM()
	require.NoError(t, s.Fit(X, y, cfg))
	return s
}

// silenceWarnings は警告を収集し、テスト終了時に元へ戻す
func silenceWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	perrors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { perrors.SetWarningHandler(func(error) {}) })
	return &got
}

func nan() float64 { return math.NaN() }
