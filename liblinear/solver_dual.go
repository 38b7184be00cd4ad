package liblinear

import (
	"math"
	"math/rand"
)

type lossKind int

const (
	l1Loss lossKind = iota
	l2Loss
)

// solveL2RL1L2SVC is dual coordinate descent with shrinking for the L2-
// regularized L1- and L2-loss SVC:
//
//	min_α 0.5 αᵀQα - eᵀα   s.t. 0 ≤ α_i ≤ U_i
//
// with U_i = C_i, D_ii = 0 for L1 loss and U_i = ∞, D_ii = 1/(2C_i) for
// L2 loss.
func solveL2RL1L2SVC(sp *subProblem, w []float64, eps, cp, cn float64, loss lossKind, maxIter int, rng *rand.Rand) solveInfo {
	l := sp.l
	qd := make([]float64, l)
	index := make([]int, l)
	alpha := make([]float64, l)
	y := make([]int8, l)
	activeSize := l

	pgMaxOld := math.Inf(1)
	pgMinOld := math.Inf(-1)

	diag := [3]float64{0.5 / cn, 0, 0.5 / cp}
	upper := [3]float64{math.Inf(1), 0, math.Inf(1)}
	if loss == l1Loss {
		diag = [3]float64{0, 0, 0}
		upper = [3]float64{cn, 0, cp}
	}

	for i := 0; i < l; i++ {
		if sp.y[i] > 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	for j := range w {
		w[j] = 0
	}
	for i := 0; i < l; i++ {
		gi := y[i] + 1
		qd[i] = diag[gi] + nrm2sq(sp.x[i])
		index[i] = i
	}

	iter := 0
	for iter < maxIter {
		pgMaxNew := math.Inf(-1)
		pgMinNew := math.Inf(1)

		shuffle(rng, index[:activeSize])

		for s := 0; s < activeSize; s++ {
			i := index[s]
			yi := float64(y[i])
			gi := y[i] + 1
			xi := sp.x[i]

			g := yi*dot(w, xi) - 1 + alpha[i]*diag[gi]
			c := upper[gi]

			pg := 0.0
			switch {
			case alpha[i] == 0:
				if g > pgMaxOld {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				} else if g < 0 {
					pg = g
				}
			case alpha[i] == c:
				if g < pgMinOld {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				} else if g > 0 {
					pg = g
				}
			default:
				pg = g
			}

			pgMaxNew = math.Max(pgMaxNew, pg)
			pgMinNew = math.Min(pgMinNew, pg)

			if math.Abs(pg) > 1e-12 {
				alphaOld := alpha[i]
				alpha[i] = math.Min(math.Max(alpha[i]-g/qd[i], 0), c)
				axpy((alpha[i]-alphaOld)*yi, xi, w)
			}
		}

		iter++
		if pgMaxNew-pgMinNew <= eps {
			if activeSize == l {
				break
			}
			activeSize = l
			pgMaxOld = math.Inf(1)
			pgMinOld = math.Inf(-1)
			continue
		}
		pgMaxOld = pgMaxNew
		pgMinOld = pgMinNew
		if pgMaxOld <= 0 {
			pgMaxOld = math.Inf(1)
		}
		if pgMinOld >= 0 {
			pgMinOld = math.Inf(-1)
		}
	}

	return solveInfo{iterations: iter, maxIterHit: iter >= maxIter,
		note: "consider a larger tolerance or scaling the data"}
}

// solveL2RLRDual is the dual coordinate descent method for L2-regularized
// logistic regression:
//
//	min_α 0.5 αᵀQα + Σ α_i log α_i + (C_i-α_i) log(C_i-α_i)   s.t. 0 ≤ α_i ≤ C_i
//
// Each coordinate is a one-variable Newton problem on whichever of α_i and
// C_i-α_i keeps the step inside the domain.
func solveL2RLRDual(sp *subProblem, w []float64, eps, cp, cn float64, maxIter int, rng *rand.Rand) solveInfo {
	const (
		maxInnerIter = 100
		innerEpsMin  = math.SmallestNonzeroFloat64
		eta          = 0.1
	)
	l := sp.l
	xTx := make([]float64, l)
	index := make([]int, l)
	alpha := make([]float64, 2*l) // α_i and C_i-α_i
	y := make([]int8, l)
	upper := [3]float64{cn, 0, cp}
	innerEps := 1e-2

	for i := 0; i < l; i++ {
		if sp.y[i] > 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	for i := 0; i < l; i++ {
		c := upper[y[i]+1]
		alpha[2*i] = math.Min(0.001*c, 1e-8)
		alpha[2*i+1] = c - alpha[2*i]
	}
	for j := range w {
		w[j] = 0
	}
	for i := 0; i < l; i++ {
		xTx[i] = nrm2sq(sp.x[i])
		axpy(float64(y[i])*alpha[2*i], sp.x[i], w)
		index[i] = i
	}

	iter := 0
	for iter < maxIter {
		shuffle(rng, index)
		newtonIter := 0
		gMax := 0.0
		for s := 0; s < l; s++ {
			i := index[s]
			yi := float64(y[i])
			c := upper[y[i]+1]
			xi := sp.x[i]
			a := xTx[i]
			b := yi * dot(w, xi)

			ind1, ind2, sign := 2*i, 2*i+1, 1.0
			if 0.5*a*(alpha[ind2]-alpha[ind1])+b < 0 {
				ind1, ind2, sign = 2*i+1, 2*i, -1
			}

			alphaOld := alpha[ind1]
			z := alphaOld
			if c-z < 0.5*c {
				z *= 0.1
			}
			gp := a*(z-alphaOld) + sign*b + math.Log(z/(c-z))
			gMax = math.Max(gMax, math.Abs(gp))

			inner := 0
			for inner <= maxInnerIter {
				if math.Abs(gp) < innerEps {
					break
				}
				gpp := a + c/(c-z)/z
				tmpz := z - gp/gpp
				if tmpz <= 0 {
					z *= eta
				} else {
					z = tmpz
				}
				gp = a*(z-alphaOld) + sign*b + math.Log(z/(c-z))
				newtonIter++
				inner++
			}

			if inner > 0 {
				alpha[ind1] = z
				alpha[ind2] = c - z
				axpy(sign*(z-alphaOld)*yi, xi, w)
			}
		}

		iter++
		if gMax < eps {
			break
		}
		if newtonIter <= l/10 {
			innerEps = math.Max(innerEpsMin, 0.1*innerEps)
		}
	}

	return solveInfo{iterations: iter, maxIterHit: iter >= maxIter,
		note: "consider a larger tolerance or scaling the data"}
}

// solveL2RL1L2SVR is dual coordinate descent for L2-regularized L1- and
// L2-loss epsilon-insensitive support vector regression, using the
// one-variable-per-instance formulation β = α⁺ - α⁻.
func solveL2RL1L2SVR(sp *subProblem, w []float64, c, p, eps float64, loss lossKind, maxIter int, rng *rand.Rand) solveInfo {
	l := sp.l
	activeSize := l
	index := make([]int, l)
	beta := make([]float64, l)
	qd := make([]float64, l)
	y := sp.y

	gMaxOld := math.Inf(1)
	gNorm1Init := -1.0

	lambda := 0.5 / c
	upper := 0.0
	if loss == l1Loss {
		lambda = 0
		upper = c
	}

	for j := range w {
		w[j] = 0
	}
	for i := 0; i < l; i++ {
		qd[i] = nrm2sq(sp.x[i])
		index[i] = i
	}

	iter := 0
	for iter < maxIter {
		gMaxNew := 0.0
		gNorm1New := 0.0

		shuffle(rng, index[:activeSize])

		for s := 0; s < activeSize; s++ {
			i := index[s]
			xi := sp.x[i]
			g := -y[i] + lambda*beta[i] + dot(w, xi)
			h := qd[i] + lambda

			gp := g + p
			gn := g - p
			violation := 0.0
			switch {
			case beta[i] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld && gn < -gMaxOld {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
			case beta[i] >= upper && loss == l1Loss:
				if gp > 0 {
					violation = gp
				} else if gp < -gMaxOld {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
			case beta[i] <= -upper && loss == l1Loss:
				if gn < 0 {
					violation = -gn
				} else if gn > gMaxOld {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
			case beta[i] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}

			gMaxNew = math.Max(gMaxNew, violation)
			gNorm1New += violation

			// Newton direction
			var d float64
			switch {
			case gp < h*beta[i]:
				d = -gp / h
			case gn > h*beta[i]:
				d = -gn / h
			default:
				d = -beta[i]
			}

			if math.Abs(d) < 1e-12 {
				continue
			}

			betaOld := beta[i]
			beta[i] += d
			if loss == l1Loss {
				beta[i] = math.Min(math.Max(beta[i], -upper), upper)
			}
			d = beta[i] - betaOld
			if d != 0 {
				axpy(d, xi, w)
			}
		}

		if iter == 0 {
			gNorm1Init = gNorm1New
		}
		iter++

		if gNorm1New <= eps*gNorm1Init {
			if activeSize == l {
				break
			}
			activeSize = l
			gMaxOld = math.Inf(1)
			continue
		}
		gMaxOld = gMaxNew
	}

	return solveInfo{iterations: iter, maxIterHit: iter >= maxIter,
		note: "consider a larger tolerance or scaling the data"}
}
