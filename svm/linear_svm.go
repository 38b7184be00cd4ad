package svm

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linearsvm/core/model"
	"github.com/YuminosukeSato/linearsvm/core/parallel"
	"github.com/YuminosukeSato/linearsvm/liblinear"
	"github.com/YuminosukeSato/linearsvm/metrics"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
	"github.com/YuminosukeSato/linearsvm/pkg/log"
	"github.com/YuminosukeSato/linearsvm/sparse"
	"github.com/YuminosukeSato/linearsvm/store"
)

const modelName = "LinearSVM"

// batchThreshold 以下の行数では PredictBatch を逐次実行する
const batchThreshold = 512

var _ model.Classifier[Config] = (*LinearSVM)(nil)

// LinearSVM は liblinear 互換の線形 SVM / ロジスティック回帰モデル。
// 同一インスタンスへの Fit / Predict / Save / Load は呼び出し側で直列化すること。
type LinearSVM struct {
	state  *model.StateManager
	model  *liblinear.Model
	cfg    Config
	logger log.Logger
}

// ModelOption は LinearSVM の構築オプション
type ModelOption func(*LinearSVM)

// WithLogger は LinearSVM が使うロガーを差し替える
func WithLogger(l log.Logger) ModelOption {
	return func(s *LinearSVM) { s.logger = l }
}

// NewLinearSVM は未学習の LinearSVM を作成する
func NewLinearSVM(opts ...ModelOption) *LinearSVM {
	s := &LinearSVM{
		state: model.NewStateManager(),
		cfg:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("svm")
	}
	s.logger = s.logger.With(log.ModelNameKey, modelName)
	return s
}

// Fit trains a new model on X (l×n) and the column vector y (l×1).
//
// Inputs are validated before the solver runs. On any failure the
// previously installed model, if any, stays in place.
func (s *LinearSVM) Fit(X, y mat.Matrix, cfg Config) error {
	const op = "LinearSVM.Fit"

	l, n := X.Dims()
	if l == 0 || n == 0 {
		return perrors.NewValueError(op, "empty feature matrix")
	}
	ry, cy := y.Dims()
	if cy != 1 {
		return perrors.NewDimensionError(op, 1, cy, 1)
	}
	if ry != l {
		return perrors.NewDimensionError(op, l, ry, 0)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.BalanceClasses {
		perrors.Warn(perrors.NewUnsupportedOptionWarning("BalanceClasses",
			"class weights are not applied; training continues unweighted"))
	}

	logger := s.logger.With(
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SolverKey, cfg.Solver.String(),
	)
	logger.Info("fit started",
		log.SamplesKey, l,
		log.FeaturesKey, n,
		log.RegularizationKey, cfg.C,
		log.ToleranceKey, cfg.Tolerance,
	)
	start := time.Now()

	buf := sparse.EncodeMatrix(X)
	defer buf.Release()

	prob := &liblinear.Problem{
		L:    l,
		N:    n,
		Y:    mat.Col(nil, 0, y),
		X:    buf.Rows(),
		Bias: -1,
	}
	param := cfg.parameter()

	var trained *liblinear.Model
	err := perrors.SafeExecute("liblinear.Train", func() error {
		m, err := liblinear.Train(prob, &param)
		trained = m
		return err
	})
	if err != nil {
		var pe *perrors.PanicError
		if perrors.As(err, &pe) {
			err = perrors.NewTrainingError(cfg.Solver.String(), pe)
		}
		logger.Error("fit failed", err, log.ErrorCodeKey, errorCode(err))
		return err
	}

	s.model = trained
	s.cfg = cfg
	s.state.MarkFitted(model.SourceFit, n, l)

	logger.Info("fit finished",
		log.ClassesKey, trained.NrClass,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は1サンプルのラベルと最初の決定関数値を返す。
// 回帰ソルバーではラベルと決定関数値は同じ値になる。
func (s *LinearSVM) Predict(sample []float64) (label, decision float64, err error) {
	if err := s.state.RequireFitted(modelName, "Predict"); err != nil {
		return 0, 0, err
	}
	dec := make([]float64, s.model.NrW())
	label = liblinear.PredictValues(s.model, sparse.EncodeRow(sample), dec)
	return label, dec[0], nil
}

// PredictValues は全ての決定関数値を返す。
// 2クラス分類と回帰では1個、それ以外は NrClass 個。
func (s *LinearSVM) PredictValues(sample []float64) (label float64, decisions []float64, err error) {
	if err := s.state.RequireFitted(modelName, "PredictValues"); err != nil {
		return 0, nil, err
	}
	decisions = make([]float64, s.model.NrW())
	label = liblinear.PredictValues(s.model, sparse.EncodeRow(sample), decisions)
	return label, decisions, nil
}

// PredictProbability はクラス確率を Classes() の順で返す。
// ロジスティック回帰ソルバー以外では InvalidInput エラー。
func (s *LinearSVM) PredictProbability(sample []float64) (label float64, probs []float64, err error) {
	if err := s.state.RequireFitted(modelName, "PredictProbability"); err != nil {
		return 0, nil, err
	}
	probs = make([]float64, s.model.NrClass)
	label, err = liblinear.PredictProbability(s.model, sparse.EncodeRow(sample), probs)
	if err != nil {
		return 0, nil, err
	}
	return label, probs, nil
}

// PredictBatch predicts every row of X. Rows are split across workers, each
// with its own encoding buffer; the model is only read.
func (s *LinearSVM) PredictBatch(X mat.Matrix) (labels, decisions []float64, err error) {
	if err := s.state.RequireFitted(modelName, "PredictBatch"); err != nil {
		return nil, nil, err
	}
	r, c := X.Dims()
	if nFeatures, _ := s.state.GetDimensions(); c != nFeatures {
		return nil, nil, perrors.NewDimensionError("LinearSVM.PredictBatch", nFeatures, c, 1)
	}

	m := s.model
	labels = make([]float64, r)
	decisions = make([]float64, r)
	parallel.ParallelizeWithThreshold(r, batchThreshold, func(start, end int) {
		row := make([]float64, c)
		x := make([]liblinear.FeatureNode, c+1)
		dec := make([]float64, m.NrW())
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			sparse.EncodeRowInto(x, row)
			labels[i] = liblinear.PredictValues(m, x, dec)
			decisions[i] = dec[0]
		}
	})
	s.logger.Debug("batch predicted",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
	)
	return labels, decisions, nil
}

// Score は分類ソルバーでは正解率、回帰ソルバーでは決定係数 R² を返す
func (s *LinearSVM) Score(X, y mat.Matrix) (float64, error) {
	yTrue, err := metrics.Column(y)
	if err != nil {
		return 0, err
	}
	yPred, _, err := s.PredictBatch(X)
	if err != nil {
		return 0, err
	}
	scoreFn, metric := metrics.Accuracy, "accuracy"
	if s.model.IsRegression() {
		scoreFn, metric = metrics.R2Score, "r2"
	}
	score, err := scoreFn(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("scored", log.OperationKey, log.OperationScore, "metric", metric, "score", score)
	return score, nil
}

// IsFitted reports whether a model is installed, by Fit or Load.
func (s *LinearSVM) IsFitted() bool {
	return s.state.IsFitted()
}

// Model returns the installed model, or nil. The model must not be mutated.
func (s *LinearSVM) Model() *liblinear.Model {
	return s.model
}

// Classes returns the class labels in the model's internal order, or nil
// for regression solvers and untrained instances.
func (s *LinearSVM) Classes() []int {
	if s.model == nil {
		return nil
	}
	return s.model.Labels()
}

// Config returns the configuration of the last successful Fit.
func (s *LinearSVM) Config() Config {
	return s.cfg
}

// State は学習状態のスナップショットを返す
func (s *LinearSVM) State() model.ModelState {
	return s.state.GetState()
}

// Weights は学習済みの重みを決定関数ごとに並べ替えて返す
func (s *LinearSVM) Weights() (*model.ModelWeights, error) {
	if err := s.state.RequireFitted(modelName, "Weights"); err != nil {
		return nil, err
	}
	m := s.model
	nrW := m.NrW()
	coef := make([][]float64, nrW)
	for k := range coef {
		coef[k] = make([]float64, m.NrFeature)
		for j := range coef[k] {
			coef[k][j] = m.W[j*nrW+k]
		}
	}
	return &model.ModelWeights{
		ModelType:    modelName,
		Solver:       m.Solver.String(),
		Labels:       m.Labels(),
		Coefficients: coef,
		Bias:         m.Bias,
		Hyperparameters: map[string]interface{}{
			"c":              s.cfg.C,
			"tolerance":      s.cfg.Tolerance,
			"max_iterations": s.cfg.MaxIterations,
			"svr_epsilon":    s.cfg.SVREpsilon,
			"seed":           s.cfg.Seed,
		},
		IsFitted: true,
	}, nil
}

// Save persists the installed model to st and returns its new handle.
func (s *LinearSVM) Save(ctx context.Context, st store.Store) (store.Handle, error) {
	if err := s.state.RequireFitted(modelName, "Save"); err != nil {
		return "", err
	}
	logger := s.logger.With(log.OperationKey, log.OperationSave)
	h, err := st.Save(ctx, s.model)
	if err != nil {
		logger.Error("save failed", err, log.ErrorCodeKey, errorCode(err))
		return "", err
	}
	logger.Info("model saved", log.HandleKey, string(h), log.SolverKey, s.model.Solver.String())
	return h, nil
}

// Load replaces the installed model with the one stored under h. On
// failure the current model is kept.
func (s *LinearSVM) Load(ctx context.Context, st store.Store, h store.Handle) error {
	logger := s.logger.With(log.OperationKey, log.OperationLoad, log.HandleKey, string(h))
	m, err := st.Load(ctx, h)
	if err != nil {
		logger.Error("load failed", err, log.ErrorCodeKey, errorCode(err))
		return err
	}

	s.model = m
	s.cfg = s.cfg.With(WithSolver(m.Solver))
	s.state.MarkFitted(model.SourceLoad, m.NrFeature, 0)

	logger.Info("model loaded",
		log.SolverKey, m.Solver.String(),
		log.ClassesKey, m.NrClass,
		log.FeaturesKey, m.NrFeature,
	)
	return nil
}

// errorCode maps an error kind to its log code.
func errorCode(err error) string {
	switch {
	case perrors.Is(err, perrors.ErrInvalidInput):
		return log.ErrorInvalidInput
	case perrors.Is(err, perrors.ErrTrainingFailure):
		return log.ErrorTrainingFailure
	case perrors.Is(err, perrors.ErrNotTrained):
		return log.ErrorNotTrained
	case perrors.Is(err, perrors.ErrPersistence):
		return log.ErrorPersistence
	}
	return ""
}
