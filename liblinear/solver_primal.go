package liblinear

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// primalObjective is a smooth L2-regularized primal objective in w.
type primalObjective interface {
	name() string
	fun(w []float64) float64
	grad(g, w []float64)
}

// solvePrimal minimizes obj from w = 0 with L-BFGS until the gradient's
// infinity norm falls below tol times its initial value.
func solvePrimal(obj primalObjective, n int, tol float64, maxIter int, w []float64) (solveInfo, error) {
	init := make([]float64, n)
	g0 := make([]float64, n)
	obj.grad(g0, init)
	gnorm0 := floats.Norm(g0, math.Inf(1))
	if gnorm0 == 0 {
		copy(w, init)
		return solveInfo{}, nil
	}

	problem := optimize.Problem{
		Func: obj.fun,
		Grad: obj.grad,
	}
	settings := &optimize.Settings{
		GradientThreshold: tol * gnorm0,
		MajorIterations:   maxIter,
	}
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		if err == nil {
			err = perrors.New("optimizer returned no result")
		}
		return solveInfo{}, perrors.NewTrainingError(obj.name(), err)
	}
	if cerr := perrors.CheckNumericalStability(obj.name(), result.X, result.MajorIterations); cerr != nil {
		return solveInfo{}, perrors.NewTrainingError(obj.name(), cerr)
	}
	copy(w, result.X)

	info := solveInfo{
		iterations: result.MajorIterations,
		maxIterHit: result.Status == optimize.IterationLimit,
	}
	// the optimizer can stop early (e.g. no progress in the line search);
	// the best finite point is kept
	if err != nil {
		info.maxIterHit = true
		info.note = err.Error()
	}
	return info, nil
}

func margins(sp *subProblem, w []float64) []float64 {
	z := make([]float64, sp.l)
	for i, xi := range sp.x {
		z[i] = dot(w, xi)
	}
	return z
}

func labelCost(y, cp, cn float64) float64 {
	if y > 0 {
		return cp
	}
	return cn
}

// lrObjective is 0.5 wᵀw + Σ C_i log(1 + exp(-y_i wᵀx_i)).
type lrObjective struct {
	sp     *subProblem
	cp, cn float64
}

func (o lrObjective) name() string { return L2R_LR.String() }

func (o lrObjective) fun(w []float64) float64 {
	f := 0.5 * floats.Dot(w, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		yz := o.sp.y[i] * zi
		c := labelCost(o.sp.y[i], o.cp, o.cn)
		if yz >= 0 {
			f += c * math.Log1p(math.Exp(-yz))
		} else {
			f += c * (-yz + math.Log1p(math.Exp(yz)))
		}
	}
	return f
}

func (o lrObjective) grad(g, w []float64) {
	copy(g, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		yi := o.sp.y[i]
		s := 1 / (1 + math.Exp(-yi*zi))
		axpy(labelCost(yi, o.cp, o.cn)*(s-1)*yi, o.sp.x[i], g)
	}
}

// l2svcObjective is 0.5 wᵀw + Σ C_i max(0, 1 - y_i wᵀx_i)².
type l2svcObjective struct {
	sp     *subProblem
	cp, cn float64
}

func (o l2svcObjective) name() string { return L2R_L2LOSS_SVC.String() }

func (o l2svcObjective) fun(w []float64) float64 {
	f := 0.5 * floats.Dot(w, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		d := 1 - o.sp.y[i]*zi
		if d > 0 {
			f += labelCost(o.sp.y[i], o.cp, o.cn) * d * d
		}
	}
	return f
}

func (o l2svcObjective) grad(g, w []float64) {
	copy(g, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		yi := o.sp.y[i]
		if yz := yi * zi; yz < 1 {
			axpy(2*labelCost(yi, o.cp, o.cn)*(yz-1)*yi, o.sp.x[i], g)
		}
	}
}

// l2svrObjective is 0.5 wᵀw + Σ C max(0, |wᵀx_i - y_i| - p)².
type l2svrObjective struct {
	sp   *subProblem
	c, p float64
}

func (o l2svrObjective) name() string { return L2R_L2LOSS_SVR.String() }

func (o l2svrObjective) fun(w []float64) float64 {
	f := 0.5 * floats.Dot(w, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		d := math.Abs(zi-o.sp.y[i]) - o.p
		if d > 0 {
			f += o.c * d * d
		}
	}
	return f
}

func (o l2svrObjective) grad(g, w []float64) {
	copy(g, w)
	z := margins(o.sp, w)
	for i, zi := range z {
		d := zi - o.sp.y[i]
		switch {
		case d < -o.p:
			axpy(2*o.c*(d+o.p), o.sp.x[i], g)
		case d > o.p:
			axpy(2*o.c*(d-o.p), o.sp.x[i], g)
		}
	}
}
