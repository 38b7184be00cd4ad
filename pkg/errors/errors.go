// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// エラーは4種類の分類（InvalidInput / TrainingFailure / NotTrained / PersistenceFailure）
// のいずれかでマークされ、呼び出し側は errors.Is で分類を判定できます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	エラー分類
//
// ===========================================================================

var (
	// ErrInvalidInput は学習前の入力検証に失敗したことを示します。
	ErrInvalidInput = errors.New("invalid input")

	// ErrTrainingFailure はソルバーが問題を受理できなかったことを示します。
	ErrTrainingFailure = errors.New("training failure")

	// ErrNotTrained は学習済みモデルが存在しない状態で推論が呼ばれたことを示します。
	ErrNotTrained = errors.New("model not trained")

	// ErrPersistence はモデルの保存・読み込みに失敗したことを示します。
	ErrPersistence = errors.New("corrupt or missing model")
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("linearsvm-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning はソルバーが最大反復回数に達した場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing MaxIterations or the tolerance.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UnsupportedOptionWarning は受け付けたが適用されない設定項目を知らせる警告です。
type UnsupportedOptionWarning struct {
	Option string
	Reason string
}

func (w *UnsupportedOptionWarning) Error() string {
	return fmt.Sprintf("option '%s' is accepted but has no effect: %s", w.Option, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnsupportedOptionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("option", w.Option).
		Str("reason", w.Reason).
		Str("type", "UnsupportedOptionWarning")
}

// NewUnsupportedOptionWarning は新しいUnsupportedOptionWarningを作成します。
func NewUnsupportedOptionWarning(option, reason string) *UnsupportedOptionWarning {
	return &UnsupportedOptionWarning{Option: option, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Save` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("linearsvm: %s: this model is not trained yet. Call Fit() or Load() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースとErrNotTrainedマークを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.Mark(errors.WithStack(err), ErrNotTrained)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("linearsvm: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、ErrInvalidInputとしてマークします。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.Mark(errors.WithStack(err), ErrInvalidInput)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("linearsvm: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、ErrInvalidInputとしてマークします。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.Mark(errors.WithStack(err), ErrInvalidInput)
}

// TrainingError はソルバーが学習に失敗した場合のエラーです。
type TrainingError struct {
	Solver string
	Err    error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("linearsvm: training with %s failed: %v", e.Solver, e.Err)
	}
	return fmt.Sprintf("linearsvm: training with %s failed", e.Solver)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// NewTrainingError は新しいTrainingErrorを作成し、ErrTrainingFailureとしてマークします。
func NewTrainingError(solver string, err error) error {
	trainErr := &TrainingError{Solver: solver, Err: err}
	return errors.Mark(errors.WithStack(trainErr), ErrTrainingFailure)
}

// PersistenceError はモデルの保存・読み込みに失敗した場合のエラーです。
type PersistenceError struct {
	Op     string // "save" or "load"
	Handle string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("linearsvm: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("linearsvm: %s %q: %v", e.Op, e.Handle, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PersistenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("handle", e.Handle).
		Str("type", "PersistenceError")
}

// NewPersistenceError は新しいPersistenceErrorを作成し、ErrPersistenceとしてマークします。
func NewPersistenceError(op, handle string, err error) error {
	pErr := &PersistenceError{Op: op, Handle: handle, Err: err}
	return errors.Mark(errors.WithStack(pErr), ErrPersistence)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("linearsvm: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、ErrInvalidInputとしてマークします。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.Mark(errors.WithStack(err), ErrInvalidInput)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Mark はエラーに分類マークを付与します。
func Mark(err error, kind error) error {
	return errors.Mark(err, kind)
}

// ===========================================================================
//
//	数値計算エラー
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "dual_cd", "lbfgs"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("linearsvm: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ErrEmptyData は空のデータが渡された場合のエラーです。
var ErrEmptyData = errors.Mark(errors.New("empty data"), ErrInvalidInput)
