package svm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linearsvm/core/model"
	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
	"github.com/YuminosukeSato/linearsvm/pkg/log"
	"github.com/YuminosukeSato/linearsvm/store"
)

func TestFitPredictSeparable(t *testing.T) {
	solvers := []liblinear.SolverType{
		liblinear.L2R_LR, liblinear.L2R_L2LOSS_SVC_DUAL, liblinear.L2R_L2LOSS_SVC,
		liblinear.L2R_L1LOSS_SVC_DUAL, liblinear.MCSVM_CS, liblinear.L1R_L2LOSS_SVC,
		liblinear.L1R_LR, liblinear.L2R_LR_DUAL,
	}
	X, y := separable2D()
	for _, st := range solvers {
		t.Run(st.String(), func(t *testing.T) {
			silenceWarnings(t)
			s := NewLinearSVM()
			require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithSolver(st), WithTolerance(0.01))))
			assert.True(t, s.IsFitted())
			assert.Equal(t, []int{1, -1}, s.Classes())

			r, _ := X.Dims()
			for i := 0; i < r; i++ {
				label, _, err := s.Predict(X.RawRowView(i))
				require.NoError(t, err)
				assert.Equal(t, y.At(i, 0), label, "row %d", i)
			}
			acc, err := s.Score(X, y)
			require.NoError(t, err)
			assert.Equal(t, 1.0, acc)
		})
	}
}

// 4点の問題はバイアスなしでは w=0 が最適解になる。
// [0,0] の決定値は常に 0 なので2番目のラベル -1 が返る。
func TestFourPointScenario(t *testing.T) {
	X := matrix([]float64{0, 1}, []float64{1, 0}, []float64{1, 1}, []float64{0, 0})
	y := column(1, 1, -1, -1)

	s := NewLinearSVM()
	require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithSolver(liblinear.L2R_L2LOSS_SVC_DUAL), WithC(1))))
	assert.Equal(t, []int{1, -1}, s.Classes())

	label, dec, err := s.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, -1.0, label)
	assert.Equal(t, 0.0, dec)

	// 既定のシードでは決定値がわずかに正になり 1 が返る
	for _, sample := range [][]float64{{0, 1}, {1, 0}} {
		label, dec, err := s.Predict(sample)
		require.NoError(t, err)
		assert.Equal(t, 1.0, label, "sample %v", sample)
		assert.InDelta(t, 0, dec, 1e-3)
	}
}

func TestPredictDecisionSign(t *testing.T) {
	s := fitted(t, DefaultConfig())

	label, dec, err := s.Predict([]float64{4, 4})
	require.NoError(t, err)
	assert.Equal(t, 1.0, label)
	assert.Greater(t, dec, 0.0)

	label, dec, err = s.Predict([]float64{-4, -4})
	require.NoError(t, err)
	assert.Equal(t, -1.0, label)
	assert.Less(t, dec, 0.0)

	_, values, err := s.PredictValues([]float64{4, 4})
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestPredictIgnoresExtraFeatures(t *testing.T) {
	s := fitted(t, DefaultConfig())

	_, want, err := s.Predict([]float64{1, -3})
	require.NoError(t, err)
	_, got, err := s.Predict([]float64{1, -3, 100, -100})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPredictIsIdempotent(t *testing.T) {
	s := fitted(t, DefaultConfig())
	before := append([]float64(nil), s.Model().W...)

	l1, d1, err := s.Predict([]float64{0.3, -1.7})
	require.NoError(t, err)
	l2, d2, err := s.Predict([]float64{0.3, -1.7})
	require.NoError(t, err)

	assert.Equal(t, l1, l2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, before, s.Model().W)
}

func TestFitIsDeterministic(t *testing.T) {
	for _, st := range []liblinear.SolverType{liblinear.L2R_L1LOSS_SVC_DUAL, liblinear.MCSVM_CS, liblinear.L1R_LR} {
		t.Run(st.String(), func(t *testing.T) {
			silenceWarnings(t)
			X, y := threeClass()
			cfg := DefaultConfig().With(WithSolver(st), WithSeed(42))

			a, b := NewLinearSVM(), NewLinearSVM()
			require.NoError(t, a.Fit(X, y, cfg))
			require.NoError(t, b.Fit(X, y, cfg))
			assert.Equal(t, a.Model().W, b.Model().W)
		})
	}
}

func TestMulticlass(t *testing.T) {
	for _, st := range []liblinear.SolverType{liblinear.L2R_L2LOSS_SVC_DUAL, liblinear.MCSVM_CS, liblinear.L2R_LR} {
		t.Run(st.String(), func(t *testing.T) {
			silenceWarnings(t)
			X, y := threeClass()
			s := NewLinearSVM()
			require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithSolver(st))))
			assert.Equal(t, []int{1, 2, 3}, s.Classes())

			labels, _, err := s.PredictBatch(X)
			require.NoError(t, err)
			assert.Equal(t, mat.Col(nil, 0, y), labels)

			_, values, err := s.PredictValues([]float64{5, 0})
			require.NoError(t, err)
			assert.Len(t, values, 3)
		})
	}
}

func TestSingleSample(t *testing.T) {
	s := NewLinearSVM()
	require.NoError(t, s.Fit(matrix([]float64{1, 2}), column(3), DefaultConfig()))
	assert.Equal(t, []int{3}, s.Classes())

	label, _, err := s.Predict([]float64{-5, 8})
	require.NoError(t, err)
	assert.Equal(t, 3.0, label, "a single class is always predicted")
}

func TestSingleFeature(t *testing.T) {
	X := matrix([]float64{-2}, []float64{-1}, []float64{1}, []float64{2})
	y := column(-1, -1, 1, 1)

	s := NewLinearSVM()
	require.NoError(t, s.Fit(X, y, DefaultConfig()))
	assert.Equal(t, []int{1, -1}, s.Classes(), "{-1,+1} is reordered to put +1 first")
	assert.Equal(t, 1, s.Model().NrFeature)
	assert.Greater(t, s.Model().W[0], 0.0)

	labels, _, err := s.PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, 1, 1}, labels)
}

func TestFitRejectsBadInputKeepsModel(t *testing.T) {
	s := fitted(t, DefaultConfig())
	prev := s.Model()
	X, _ := separable2D()

	tests := []struct {
		name string
		X, y mat.Matrix
		cfg  Config
	}{
		{"label length mismatch", X, column(1, -1, 1), DefaultConfig()},
		{"labels not a column", X, mat.NewDense(8, 2, nil), DefaultConfig()},
		{"bad C", X, column(1, 1, 1, 1, -1, -1, -1, -1), DefaultConfig().With(WithC(-1))},
		{"unknown solver", X, column(1, 1, 1, 1, -1, -1, -1, -1), DefaultConfig().With(WithSolver(99))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Fit(tt.X, tt.y, tt.cfg)
			require.Error(t, err)
			assert.True(t, perrors.Is(err, perrors.ErrInvalidInput))
			assert.Same(t, prev, s.Model())
			assert.True(t, s.IsFitted())
		})
	}
}

func TestFitEmptyMatrix(t *testing.T) {
	s := NewLinearSVM()
	err := s.Fit(&mat.Dense{}, &mat.Dense{}, DefaultConfig())
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrInvalidInput))
	assert.False(t, s.IsFitted())
}

func TestNotTrained(t *testing.T) {
	s := NewLinearSVM()
	ctx := context.Background()
	X, y := separable2D()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Predict([]float64{1, 2})
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))
	_, _, err = s.PredictValues([]float64{1, 2})
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))
	_, _, err = s.PredictProbability([]float64{1, 2})
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))
	_, _, err = s.PredictBatch(X)
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))
	_, err = s.Score(X, y)
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))
	_, err = s.Save(ctx, fs)
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))

	assert.False(t, s.IsFitted())
	assert.Nil(t, s.Model())
	assert.Nil(t, s.Classes())
}

func TestPredictProbability(t *testing.T) {
	t.Run("binary", func(t *testing.T) {
		s := fitted(t, DefaultConfig().With(WithSolver(liblinear.L2R_LR)))
		label, probs, err := s.PredictProbability([]float64{3, 3})
		require.NoError(t, err)
		assert.Equal(t, 1.0, label)
		require.Len(t, probs, 2)
		assert.Greater(t, probs[0], 0.5)
		assert.InDelta(t, 1, probs[0]+probs[1], 1e-12)
	})

	t.Run("multiclass", func(t *testing.T) {
		X, y := threeClass()
		s := NewLinearSVM()
		require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithSolver(liblinear.L2R_LR_DUAL))))
		label, probs, err := s.PredictProbability([]float64{0, 6})
		require.NoError(t, err)
		assert.Equal(t, 2.0, label)
		require.Len(t, probs, 3)
		assert.InDelta(t, 1, probs[0]+probs[1]+probs[2], 1e-12)
		assert.Greater(t, probs[1], probs[0])
		assert.Greater(t, probs[1], probs[2])
	})

	t.Run("not logistic", func(t *testing.T) {
		s := fitted(t, DefaultConfig())
		_, _, err := s.PredictProbability([]float64{3, 3})
		require.Error(t, err)
		assert.True(t, perrors.Is(err, perrors.ErrInvalidInput))
	})
}

func TestPredictBatch(t *testing.T) {
	s := fitted(t, DefaultConfig())

	// 逐次実行の閾値を超える行数で並列経路を通す
	const rows = 3 * batchThreshold
	X := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		X.Set(i, 0, float64(i%17)-8)
		X.Set(i, 1, float64(i%5)-2.5)
	}

	labels, decisions, err := s.PredictBatch(X)
	require.NoError(t, err)
	require.Len(t, labels, rows)
	for _, i := range []int{0, 1, 255, rows / 2, rows - 1} {
		label, dec, err := s.Predict(X.RawRowView(i))
		require.NoError(t, err)
		assert.Equal(t, label, labels[i], "row %d", i)
		assert.Equal(t, dec, decisions[i], "row %d", i)
	}

	_, _, err = s.PredictBatch(mat.NewDense(2, 3, nil))
	require.Error(t, err)
	var dimErr *perrors.DimensionError
	require.True(t, perrors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
}

func TestRegressionScore(t *testing.T) {
	X := mat.NewDense(20, 2, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		a, b := float64(i%7)-3, float64(i%4)-1.5
		X.SetRow(i, []float64{a, b})
		y.Set(i, 0, 2*a-b)
	}

	for _, st := range []liblinear.SolverType{liblinear.L2R_L2LOSS_SVR, liblinear.L2R_L2LOSS_SVR_DUAL, liblinear.L2R_L1LOSS_SVR_DUAL} {
		t.Run(st.String(), func(t *testing.T) {
			silenceWarnings(t)
			s := NewLinearSVM()
			cfg := DefaultConfig().With(WithSolver(st), WithC(10), WithSVREpsilon(0.01), WithTolerance(1e-4))
			require.NoError(t, s.Fit(X, y, cfg))
			assert.Nil(t, s.Classes())

			label, dec, err := s.Predict([]float64{1, 1})
			require.NoError(t, err)
			assert.Equal(t, label, dec, "regression label equals its decision value")
			assert.InDelta(t, 1.0, label, 0.5)

			r2, err := s.Score(X, y)
			require.NoError(t, err)
			assert.Greater(t, r2, 0.95)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir(), store.WithCompression(store.CompressionZstd))
	require.NoError(t, err)
	sq, err := store.OpenSQLiteStore(":memory:", store.WithCompression(store.CompressionLZ4))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	probes := [][]float64{{0, 0}, {1, -1}, {0.25, 3}, {-7, 2}, {5, 0}}
	for name, st := range map[string]store.Store{"file": fs, "sqlite": sq} {
		t.Run(name, func(t *testing.T) {
			X, y := threeClass()
			src := NewLinearSVM()
			require.NoError(t, src.Fit(X, y, DefaultConfig().With(WithSolver(liblinear.MCSVM_CS))))

			h, err := src.Save(ctx, st)
			require.NoError(t, err)
			require.NoError(t, h.Validate())

			dst := NewLinearSVM()
			require.NoError(t, dst.Load(ctx, st, h))
			assert.True(t, dst.IsFitted())
			assert.Equal(t, model.SourceLoad, dst.State().Source)
			assert.Equal(t, liblinear.MCSVM_CS, dst.Config().Solver)
			assert.Equal(t, src.Classes(), dst.Classes())

			for _, p := range probes {
				_, want, err := src.PredictValues(p)
				require.NoError(t, err)
				_, got, err := dst.PredictValues(p)
				require.NoError(t, err)
				assert.Equal(t, want, got, "decision values must be bit-identical for %v", p)
			}
		})
	}
}

func TestSaveHandlesAreUnique(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	s := fitted(t, DefaultConfig())

	seen := map[store.Handle]bool{}
	for i := 0; i < 20; i++ {
		h, err := s.Save(ctx, fs)
		require.NoError(t, err)
		assert.False(t, seen[h], "duplicate handle %s", h)
		seen[h] = true
	}
}

func TestLoadFailureKeepsModel(t *testing.T) {
	ctx := context.Background()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := fitted(t, DefaultConfig())
	prev := s.Model()

	err = s.Load(ctx, fs, "no-such-model")
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrPersistence))
	assert.True(t, perrors.Is(err, store.ErrNotFound))
	assert.Same(t, prev, s.Model())
	assert.Equal(t, model.SourceFit, s.State().Source)

	fresh := NewLinearSVM()
	require.Error(t, fresh.Load(ctx, fs, "no-such-model"))
	assert.False(t, fresh.IsFitted())
}

func TestLoadCorruptHeaderKeepsModel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	raw := "solver_type L2R_LR\nnr_class 2\nlabel 1 -1\nnr_feature 9223372036854775807\nbias 1\nw\n0.5 \n"
	data, err := store.Codec{Compression: store.CompressionZstd}.Seal([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hostile.model"), data, 0o644))

	s := fitted(t, DefaultConfig())
	prev := s.Model()

	require.NotPanics(t, func() {
		err = s.Load(ctx, fs, "hostile")
	})
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrPersistence))
	assert.True(t, perrors.Is(err, store.ErrCorrupt))
	assert.Same(t, prev, s.Model())
}

func TestBalanceClassesWarns(t *testing.T) {
	warnings := silenceWarnings(t)
	s := fitted(t, DefaultConfig().With(WithBalanceClasses(true)))
	assert.True(t, s.IsFitted())
	assert.True(t, s.Config().BalanceClasses)

	require.NotEmpty(t, *warnings)
	var uw *perrors.UnsupportedOptionWarning
	assert.True(t, perrors.As((*warnings)[0], &uw))
	assert.Contains(t, (*warnings)[0].Error(), "BalanceClasses")
}

func TestConvergenceWarningIsNotAnError(t *testing.T) {
	warnings := silenceWarnings(t)
	X, y := threeClass()
	s := NewLinearSVM()
	require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithMaxIterations(1), WithTolerance(1e-12))))
	assert.True(t, s.IsFitted())

	require.NotEmpty(t, *warnings)
	var cw *perrors.ConvergenceWarning
	assert.True(t, perrors.As((*warnings)[0], &cw))
}

func TestLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	s := NewLinearSVM(WithLogger(logger))
	X, y := separable2D()
	require.NoError(t, s.Fit(X, y, DefaultConfig()))

	assert.True(t, logger.ContainsMessage("fit finished"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, modelName))
	assert.True(t, logger.ContainsField(log.SolverKey, "L2R_L2LOSS_SVC_DUAL"))
	assert.True(t, logger.ContainsField(log.SamplesKey, 8.0))
	assert.True(t, logger.ContainsField(log.ClassesKey, 2.0))

	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.Error(t, s.Load(context.Background(), fs, "missing"))
	assert.True(t, logger.ContainsMessage("load failed"))
	assert.True(t, logger.ContainsField(log.ErrorCodeKey, log.ErrorPersistence))
}

func TestWeights(t *testing.T) {
	X, y := threeClass()
	s := NewLinearSVM()
	_, err := s.Weights()
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))

	require.NoError(t, s.Fit(X, y, DefaultConfig().With(WithC(2))))
	mw, err := s.Weights()
	require.NoError(t, err)
	require.NoError(t, mw.Validate())

	assert.Equal(t, "L2R_L2LOSS_SVC_DUAL", mw.Solver)
	assert.Equal(t, []int{1, 2, 3}, mw.Labels)
	assert.Equal(t, -1.0, mw.Bias)
	assert.Equal(t, 2.0, mw.Hyperparameters["c"])
	require.Len(t, mw.Coefficients, 3)
	for k := 0; k < 3; k++ {
		for j := 1; j <= 2; j++ {
			assert.Equal(t, s.Model().Decision(j, k), mw.Coefficients[k][j-1])
		}
	}
}
