package svm

import (
	"math"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// DefaultTolerance is float32 machine epsilon.
const DefaultTolerance = 0x1p-23

// Config は学習設定。値型で、With は新しい Config を返す。
type Config struct {
	Solver         liblinear.SolverType `yaml:"-"`
	C              float64              `yaml:"c"`
	Tolerance      float64              `yaml:"tolerance"`
	MaxIterations  int                  `yaml:"max_iterations"`
	SVREpsilon     float64              `yaml:"svr_epsilon"`
	BalanceClasses bool                 `yaml:"balance_classes"`
	Seed           int64                `yaml:"seed"`
}

// DefaultConfig returns L2R_L2LOSS_SVC_DUAL with C = 1.
func DefaultConfig() Config {
	return Config{
		Solver:        liblinear.L2R_L2LOSS_SVC_DUAL,
		C:             1,
		Tolerance:     DefaultTolerance,
		MaxIterations: 1000,
		SVREpsilon:    1,
	}
}

// Option は Config を変更する関数
type Option func(*Config)

// WithSolver はソルバーを設定
func WithSolver(s liblinear.SolverType) Option {
	return func(c *Config) { c.Solver = s }
}

// WithC は正則化パラメータ C を設定
func WithC(v float64) Option {
	return func(c *Config) { c.C = v }
}

// WithTolerance は収束判定の許容誤差を設定
func WithTolerance(v float64) Option {
	return func(c *Config) { c.Tolerance = v }
}

// WithMaxIterations は最大反復回数を設定
func WithMaxIterations(n int) Option {
	return func(c *Config) { c.MaxIterations = n }
}

// WithSVREpsilon は SVR の不感帯幅 p を設定
func WithSVREpsilon(v float64) Option {
	return func(c *Config) { c.SVREpsilon = v }
}

// WithSeed は座標降下法のシャッフル用シードを設定
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithBalanceClasses is accepted for compatibility; class weights are never
// applied and Fit emits an UnsupportedOptionWarning.
func WithBalanceClasses(b bool) Option {
	return func(c *Config) { c.BalanceClasses = b }
}

// With returns a copy of c with opts applied.
func (c Config) With(opts ...Option) Config {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Validate reports the first invalid field as an InvalidInput error.
func (c Config) Validate() error {
	if !c.Solver.Valid() {
		return perrors.NewValidationError("Solver", "unknown solver kind", int(c.Solver))
	}
	if !(c.C > 0) || math.IsInf(c.C, 0) {
		return perrors.NewValidationError("C", "must be a finite positive number", c.C)
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return perrors.NewValidationError("Tolerance", "must be a finite positive number", c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return perrors.NewValidationError("MaxIterations", "must be positive", c.MaxIterations)
	}
	if !(c.SVREpsilon >= 0) || math.IsInf(c.SVREpsilon, 0) {
		return perrors.NewValidationError("SVREpsilon", "must be a finite non-negative number", c.SVREpsilon)
	}
	return nil
}

// parameter translates c to the solver's native parameters.
// BalanceClasses has no counterpart.
func (c Config) parameter() liblinear.Parameter {
	return liblinear.Parameter{
		Solver:  c.Solver,
		C:       c.C,
		Eps:     c.Tolerance,
		MaxIter: c.MaxIterations,
		P:       c.SVREpsilon,
		Seed:    c.Seed,
	}
}
