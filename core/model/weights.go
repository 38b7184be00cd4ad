package model

import (
	"encoding/json"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// ModelWeights はモデルの重みを表す構造体（検査・エクスポート用）
type ModelWeights struct {
	// ModelType はモデルの種類（LinearSVM 等）
	ModelType string `json:"model_type"`

	// Solver は学習に使ったソルバー名
	Solver string `json:"solver"`

	// Labels はクラスラベル（回帰では空）
	Labels []int `json:"labels,omitempty"`

	// Coefficients は決定関数ごとの重み。Coefficients[k][j] が特徴量 j+1 の係数
	Coefficients [][]float64 `json:"coefficients"`

	// Bias はバイアス項の値。負なら未使用
	Bias float64 `json:"bias"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	out, err := json.MarshalIndent(mw, "", "  ")
	if err != nil {
		return nil, perrors.WithStack(err)
	}
	return out, nil
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return perrors.Mark(perrors.Wrap(err, "decode model weights"), perrors.ErrInvalidInput)
	}
	return mw.Validate()
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return perrors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return perrors.NewValidationError("coefficients", "unfitted model should not have coefficients", len(mw.Coefficients))
	}
	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return perrors.NewValidationError("coefficients", "fitted model must have coefficients", 0)
	}
	for _, row := range mw.Coefficients {
		if len(row) != len(mw.Coefficients[0]) {
			return perrors.NewDimensionError("ModelWeights.Validate", len(mw.Coefficients[0]), len(row), 1)
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Solver:          mw.Solver,
		Bias:            mw.Bias,
		IsFitted:        mw.IsFitted,
		Labels:          append([]int(nil), mw.Labels...),
		Coefficients:    make([][]float64, len(mw.Coefficients)),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
	}
	for k, row := range mw.Coefficients {
		clone.Coefficients[k] = append([]float64(nil), row...)
	}
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	return clone
}
