package errors

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", NewValidationError("C", "must be positive", -1.0), ErrInvalidInput},
		{"dimension", NewDimensionError("Fit", 4, 3, 0), ErrInvalidInput},
		{"value", NewValueError("Fit", "empty matrix"), ErrInvalidInput},
		{"empty data", ErrEmptyData, ErrInvalidInput},
		{"not fitted", NewNotFittedError("LinearSVM", "Predict"), ErrNotTrained},
		{"training", NewTrainingError("L2R_LR", fmt.Errorf("nan weights")), ErrTrainingFailure},
		{"persistence", NewPersistenceError("load", "abc", fmt.Errorf("no such file")), ErrPersistence},
	}

	kinds := []error{ErrInvalidInput, ErrTrainingFailure, ErrNotTrained, ErrPersistence}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range kinds {
				assert.Equal(t, k == tt.kind, Is(tt.err, k), "kind %v", k)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := Wrap(NewNotFittedError("LinearSVM", "Predict"), "scoring batch")
	assert.True(t, Is(err, ErrNotTrained))

	var nf *NotFittedError
	require.True(t, As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)
}

func TestNotFittedErrorMessage(t *testing.T) {
	err := NewNotFittedError("LinearSVM", "Predict")
	assert.Equal(t,
		"linearsvm: LinearSVM: this model is not trained yet. Call Fit() or Load() before using Predict()",
		err.Error())
}

func TestDimensionErrorMessage(t *testing.T) {
	err := NewDimensionError("Fit", 4, 3, 0)
	assert.Equal(t, "linearsvm: Fit: dimension mismatch on axis 0 (rows). Expected 4, got 3", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Got)
}

func TestStackTraceAttached(t *testing.T) {
	err := NewValidationError("C", "must be positive", 0.0)
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("checksum mismatch")
	err := NewPersistenceError("load", "h-1", cause)
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), `load "h-1"`)
}

func TestConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("L2R_L2LOSS_SVC_DUAL", 1000, "")
	assert.Contains(t, w.Error(), "failed to converge after 1000 iterations")

	w = NewConvergenceWarning("L1R_LR", 100, "newton iterations exhausted")
	assert.Equal(t, "L1R_LR failed to converge after 100 iterations: newton iterations exhausted", w.Error())
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(error) {})

	Warn(NewUnsupportedOptionWarning("BalanceClasses", "class weights are not supported"))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "BalanceClasses")

	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	Warn(NewConvergenceWarning("x", 1, ""))
	SetZerologWarnFunc(nil)

	assert.Equal(t, 1, viaZerolog)
	assert.Len(t, got, 1, "zerolog hook takes precedence over the handler")
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("w", []float64{0, 1, -2}, 0))

	err := CheckNumericalStability("w", []float64{1, math.NaN(), math.Inf(1)}, 3)
	require.Error(t, err)
	var ni *NumericalInstabilityError
	require.True(t, As(err, &ni))
	assert.Len(t, ni.Values, 2)
	assert.Equal(t, 3, ni.Iteration)

	assert.Error(t, CheckScalar("loss", math.Inf(-1), 0))
	assert.NoError(t, CheckScalar("loss", 1.5, 0))
}

func TestRecover(t *testing.T) {
	t.Run("panic becomes PanicError", func(t *testing.T) {
		err := SafeExecute("Train", func() error {
			var rows [][]float64
			_ = rows[3]
			return nil
		})
		require.Error(t, err)
		var pe *PanicError
		require.True(t, As(err, &pe))
		assert.Equal(t, "Train", pe.Operation)
		assert.NotEmpty(t, pe.StackTrace)
	})

	t.Run("no panic keeps result", func(t *testing.T) {
		sentinel := fmt.Errorf("plain")
		err := SafeExecute("Train", func() error { return sentinel })
		assert.Equal(t, sentinel, err)
		assert.NoError(t, SafeExecute("Train", func() error { return nil }))
	})

	t.Run("panic after error wraps it", func(t *testing.T) {
		original := fmt.Errorf("original")
		fn := func() (err error) {
			defer Recover(&err, "Op")
			err = original
			panic("boom")
		}
		err := fn()
		require.Error(t, err)
		assert.True(t, Is(err, original))
		assert.Contains(t, err.Error(), "panic in Op: boom")
	})
}
