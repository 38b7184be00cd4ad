// Package preprocessing は線形モデルの学習前に特徴量の尺度を揃える変換器を提供する。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/linearsvm/core/model"
	"github.com/YuminosukeSato/linearsvm/core/parallel"
	"github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// parallelThreshold 以下の行数では変換を逐次実行する
const parallelThreshold = 1000

var (
	_ model.Transformer = (*StandardScaler)(nil)
	_ model.Transformer = (*MinMaxScaler)(nil)
)

// constantEps 未満の幅・標準偏差は定数特徴量として扱う
const constantEps = 1e-8

// columnStats は各列に fn を適用する
func columnStats(X mat.Matrix, fn func(j int, col []float64)) {
	r, c := X.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		fn(j, col)
	}
}

// apply は out[i][j] = f(j, X[i][j]) を行単位で並列に計算する
func apply(X mat.Matrix, f func(j int, v float64) float64) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			mat.Row(row, i, X)
			for j, v := range row {
				row[j] = f(j, v)
			}
		}
	})
	return out
}

func checkFit(op string, X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	return nil
}

// StandardScaler は各特徴量を平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64
	// Scale は各特徴量の標準偏差（定数特徴量では1）
	Scale []float64

	WithMean bool
	WithStd  bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{state: model.NewStateManager(), WithMean: withMean, WithStd: withStd}
}

// Fit は訓練データから平均と母標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	if err := checkFit("StandardScaler.Fit", X); err != nil {
		return err
	}
	r, c := X.Dims()
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	columnStats(X, func(j int, col []float64) {
		mean, std := stat.PopMeanStdDev(col, nil)
		if !s.WithMean {
			mean = 0
		}
		if !s.WithStd || std < constantEps {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	})
	s.state.MarkFitted(model.SourceFit, c, r)
	return nil
}

// Transform は学習済みの統計量でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check("Transform", X); err != nil {
		return nil, err
	}
	return apply(X, func(j int, v float64) float64 { return (v - s.Mean[j]) / s.Scale[j] }), nil
}

// FitTransform は Fit の後に同じデータを Transform する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check("InverseTransform", X); err != nil {
		return nil, err
	}
	return apply(X, func(j int, v float64) float64 { return v*s.Scale[j] + s.Mean[j] }), nil
}

func (s *StandardScaler) check(method string, X mat.Matrix) error {
	if err := s.state.RequireFitted("StandardScaler", method); err != nil {
		return err
	}
	nFeatures, _ := s.state.GetDimensions()
	if _, c := X.Dims(); c != nFeatures {
		return errors.NewDimensionError("StandardScaler."+method, nFeatures, c, 1)
	}
	return nil
}

func (s *StandardScaler) String() string {
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, nFeatures)
}

// MinMaxScaler は各特徴量を [Lower, Upper] に線形変換する。
// 既定の範囲 [-1, 1] は svm-scale と同じ。
type MinMaxScaler struct {
	state *model.StateManager

	// DataMin, DataMax は学習データの列ごとの最小値・最大値
	DataMin []float64
	DataMax []float64

	Lower, Upper float64
}

// NewMinMaxScaler は範囲 [lower, upper] の MinMaxScaler を作成する
func NewMinMaxScaler(lower, upper float64) (*MinMaxScaler, error) {
	if !(lower < upper) || math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return nil, errors.NewValidationError("feature_range", "lower must be below upper and both finite",
			[2]float64{lower, upper})
	}
	return &MinMaxScaler{state: model.NewStateManager(), Lower: lower, Upper: upper}, nil
}

// NewSVMScaler は範囲 [-1, 1] の MinMaxScaler を作成する
func NewSVMScaler() *MinMaxScaler {
	m, _ := NewMinMaxScaler(-1, 1)
	return m
}

// Fit は列ごとの最小値・最大値を記録する
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	if err := checkFit("MinMaxScaler.Fit", X); err != nil {
		return err
	}
	r, c := X.Dims()
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	columnStats(X, func(j int, col []float64) {
		m.DataMin[j], m.DataMax[j] = floats.Min(col), floats.Max(col)
	})
	m.state.MarkFitted(model.SourceFit, c, r)
	return nil
}

// Transform は学習時の範囲を [Lower, Upper] に写す。
// 定数特徴量は Lower に写す。
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.check("Transform", X); err != nil {
		return nil, err
	}
	width := m.Upper - m.Lower
	return apply(X, func(j int, v float64) float64 {
		span := m.DataMax[j] - m.DataMin[j]
		if span < constantEps {
			return m.Lower
		}
		return m.Lower + (v-m.DataMin[j])/span*width
	}), nil
}

// FitTransform は Fit の後に同じデータを Transform する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す。
// 定数特徴量は学習時の値に戻る。
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.check("InverseTransform", X); err != nil {
		return nil, err
	}
	width := m.Upper - m.Lower
	return apply(X, func(j int, v float64) float64 {
		span := m.DataMax[j] - m.DataMin[j]
		if span < constantEps {
			return m.DataMin[j]
		}
		return m.DataMin[j] + (v-m.Lower)/width*span
	}), nil
}

func (m *MinMaxScaler) check(method string, X mat.Matrix) error {
	if err := m.state.RequireFitted("MinMaxScaler", method); err != nil {
		return err
	}
	nFeatures, _ := m.state.GetDimensions()
	if _, c := X.Dims(); c != nFeatures {
		return errors.NewDimensionError("MinMaxScaler."+method, nFeatures, c, 1)
	}
	return nil
}

func (m *MinMaxScaler) String() string {
	nFeatures, _ := m.state.GetDimensions()
	return fmt.Sprintf("MinMaxScaler(range=[%g, %g], n_features=%d)", m.Lower, m.Upper, nFeatures)
}
