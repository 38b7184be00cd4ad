package liblinear

import (
	"math"
	"math/rand"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
	"github.com/YuminosukeSato/linearsvm/pkg/log"
)

// solveInfo is what every solver reports back to Train.
type solveInfo struct {
	iterations int
	maxIterHit bool
	note       string
}

// Train fits a model to prob. It neither retains nor mutates prob, so the
// caller may release the row storage as soon as Train returns.
func Train(prob *Problem, param *Parameter) (*Model, error) {
	if err := param.Validate(); err != nil {
		return nil, err
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("liblinear").With(
		log.SolverKey, param.Solver.String(),
		log.SamplesKey, prob.L,
		log.FeaturesKey, prob.N,
	)

	sp := &subProblem{l: prob.L, n: prob.N, y: prob.Y, x: prob.X}
	if prob.Bias >= 0 {
		sp.x = withBias(prob)
		sp.n = prob.N + 1
	}

	rng := rand.New(rand.NewSource(param.Seed))
	model := &Model{
		Solver:    param.Solver,
		NrFeature: prob.N,
		Bias:      prob.Bias,
	}

	var infos []solveInfo
	if param.Solver.IsRegression() {
		model.NrClass = 2
		model.W = make([]float64, sp.n)
		info, err := trainOne(sp, param, model.W, param.C, param.C, rng)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	} else {
		groups := groupClasses(prob.Y)
		nrClass := len(groups.label)
		model.NrClass = nrClass
		model.Label = groups.label

		// 同じクラスのインスタンスが連続するように並べ替える
		sub := &subProblem{l: sp.l, n: sp.n, y: make([]float64, sp.l), x: make([][]FeatureNode, sp.l)}
		for i, p := range groups.perm {
			sub.x[i] = sp.x[p]
		}

		switch {
		case param.Solver == MCSVM_CS:
			model.W = make([]float64, sp.n*nrClass)
			for c := 0; c < nrClass; c++ {
				for i := groups.start[c]; i < groups.start[c]+groups.count[c]; i++ {
					sub.y[i] = float64(c)
				}
			}
			infos = append(infos, solveMCSVMCS(sub, nrClass, param.C, param.Eps, param.MaxIter, model.W, rng))

		case nrClass == 2:
			model.W = make([]float64, sp.n)
			e0 := groups.start[0] + groups.count[0]
			for i := 0; i < sub.l; i++ {
				if i < e0 {
					sub.y[i] = 1
				} else {
					sub.y[i] = -1
				}
			}
			info, err := trainOne(sub, param, model.W, param.C, param.C, rng)
			if err != nil {
				return nil, err
			}
			infos = append(infos, info)

		default:
			// one-vs-rest; a single class degenerates to one all-positive problem
			model.W = make([]float64, sp.n*nrClass)
			w := make([]float64, sp.n)
			for c := 0; c < nrClass; c++ {
				si, ei := groups.start[c], groups.start[c]+groups.count[c]
				for i := 0; i < sub.l; i++ {
					if i >= si && i < ei {
						sub.y[i] = 1
					} else {
						sub.y[i] = -1
					}
				}
				for j := range w {
					w[j] = 0
				}
				info, err := trainOne(sub, param, w, param.C, param.C, rng)
				if err != nil {
					return nil, err
				}
				infos = append(infos, info)
				for j := 0; j < sp.n; j++ {
					model.W[j*nrClass+c] = w[j]
				}
			}
		}
	}

	if err := perrors.CheckNumericalStability(param.Solver.String(), model.W, 0); err != nil {
		return nil, perrors.NewTrainingError(param.Solver.String(), err)
	}

	for _, info := range infos {
		if info.maxIterHit {
			perrors.Warn(perrors.NewConvergenceWarning(param.Solver.String(), info.iterations, info.note))
		}
		logger.Debug("optimization finished", log.IterationKey, info.iterations)
	}
	return model, nil
}

// trainOne solves one binary (or regression) problem into w.
func trainOne(sp *subProblem, param *Parameter, w []float64, cp, cn float64, rng *rand.Rand) (solveInfo, error) {
	pos := 0
	for _, y := range sp.y {
		if y > 0 {
			pos++
		}
	}
	neg := sp.l - pos
	primalTol := param.Eps * math.Max(float64(min(pos, neg)), 1) / float64(sp.l)

	switch param.Solver {
	case L2R_LR:
		return solvePrimal(lrObjective{sp: sp, cp: cp, cn: cn}, sp.n, primalTol, param.MaxIter, w)
	case L2R_L2LOSS_SVC:
		return solvePrimal(l2svcObjective{sp: sp, cp: cp, cn: cn}, sp.n, primalTol, param.MaxIter, w)
	case L2R_L2LOSS_SVC_DUAL:
		return solveL2RL1L2SVC(sp, w, param.Eps, cp, cn, l2Loss, param.MaxIter, rng), nil
	case L2R_L1LOSS_SVC_DUAL:
		return solveL2RL1L2SVC(sp, w, param.Eps, cp, cn, l1Loss, param.MaxIter, rng), nil
	case L1R_L2LOSS_SVC:
		return solveL1RL2SVC(sp, w, primalTol, cp, cn, param.MaxIter, rng), nil
	case L1R_LR:
		return solveL1RLR(sp, w, primalTol, cp, cn, param.MaxIter, rng), nil
	case L2R_LR_DUAL:
		return solveL2RLRDual(sp, w, param.Eps, cp, cn, param.MaxIter, rng), nil
	case L2R_L2LOSS_SVR:
		return solvePrimal(l2svrObjective{sp: sp, c: param.C, p: param.P}, sp.n, param.Eps, param.MaxIter, w)
	case L2R_L2LOSS_SVR_DUAL:
		return solveL2RL1L2SVR(sp, w, param.C, param.P, param.Eps, l2Loss, param.MaxIter, rng), nil
	case L2R_L1LOSS_SVR_DUAL:
		return solveL2RL1L2SVR(sp, w, param.C, param.P, param.Eps, l1Loss, param.MaxIter, rng), nil
	}
	return solveInfo{}, perrors.NewValidationError("solver", "unknown solver", int(param.Solver))
}

// classGroups is the result of groupClasses.
type classGroups struct {
	label []int
	start []int
	count []int
	perm  []int // perm[i] is the original row placed at position i
}

// groupClasses orders labels by first appearance. For a {-1, +1} problem
// whose first label is -1 the two classes are swapped so that +1 is
// internally positive.
func groupClasses(y []float64) classGroups {
	var label, count []int
	dataLabel := make([]int, len(y))
	index := make(map[int]int)

	for i, v := range y {
		lab := int(v)
		c, ok := index[lab]
		if !ok {
			c = len(label)
			index[lab] = c
			label = append(label, lab)
			count = append(count, 0)
		}
		count[c]++
		dataLabel[i] = c
	}

	if len(label) == 2 && label[0] == -1 && label[1] == 1 {
		label[0], label[1] = label[1], label[0]
		count[0], count[1] = count[1], count[0]
		for i := range dataLabel {
			dataLabel[i] = 1 - dataLabel[i]
		}
	}

	start := make([]int, len(label))
	for c := 1; c < len(label); c++ {
		start[c] = start[c-1] + count[c-1]
	}
	perm := make([]int, len(y))
	next := make([]int, len(label))
	copy(next, start)
	for i, c := range dataLabel {
		perm[next[c]] = i
		next[c]++
	}
	return classGroups{label: label, start: start, count: count, perm: perm}
}

func shuffle(rng *rand.Rand, index []int) {
	for i := range index {
		j := i + rng.Intn(len(index)-i)
		index[i], index[j] = index[j], index[i]
	}
}
