// Package model はモデル共通のインターフェースと学習状態の管理を提供します。
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は設定値を受け取って学習するモデルのインターフェース
type Fitter[C any] interface {
	// Fit は特徴量行列 X とラベル列ベクトル y でモデルを学習させる
	Fit(X, y mat.Matrix, cfg C) error
}

// SamplePredictor は1サンプルずつ予測するモデルのインターフェース
type SamplePredictor interface {
	// Predict はラベルと決定関数値を返す
	Predict(sample []float64) (label, decision float64, err error)
}

// BatchPredictor は行列単位で予測するモデルのインターフェース
type BatchPredictor interface {
	PredictBatch(X mat.Matrix) (labels, decisions []float64, err error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns accuracy for classifiers and R^2 for regressors.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines interfaces for linear classification models.
type Classifier[C any] interface {
	Fitter[C]
	SamplePredictor
	BatchPredictor
	Scorer

	// Classes returns the class labels in the model's internal order.
	Classes() []int

	// IsFitted reports whether a model is installed.
	IsFitted() bool
}

// Transformer は特徴量変換器のインターフェース
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}
