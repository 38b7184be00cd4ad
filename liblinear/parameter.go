package liblinear

import (
	"math"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// Parameter configures one Train call. Class weights are not supported.
type Parameter struct {
	Solver  SolverType
	C       float64 // cost of constraint violation, > 0
	Eps     float64 // stopping tolerance, > 0
	MaxIter int     // outer iteration bound, > 0
	P       float64 // epsilon-insensitive width for SVR, >= 0
	Seed    int64   // shuffling seed for coordinate descent
}

// DefaultParameter mirrors LIBLINEAR's command-line defaults for L2R_L2LOSS_SVC_DUAL.
func DefaultParameter() Parameter {
	return Parameter{
		Solver:  L2R_L2LOSS_SVC_DUAL,
		C:       1,
		Eps:     0.1,
		MaxIter: 1000,
		P:       0.1,
	}
}

// Validate is LIBLINEAR's check_parameter.
func (p *Parameter) Validate() error {
	if !p.Solver.Valid() {
		return perrors.NewValidationError("solver", "unknown solver", int(p.Solver))
	}
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return perrors.NewValidationError("C", "must be a finite positive number", p.C)
	}
	if !(p.Eps > 0) || math.IsInf(p.Eps, 0) {
		return perrors.NewValidationError("eps", "must be a finite positive number", p.Eps)
	}
	if p.MaxIter <= 0 {
		return perrors.NewValidationError("max_iter", "must be positive", p.MaxIter)
	}
	if !(p.P >= 0) || math.IsInf(p.P, 0) {
		return perrors.NewValidationError("p", "must be a finite non-negative number", p.P)
	}
	return nil
}
