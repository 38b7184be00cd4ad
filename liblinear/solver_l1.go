package liblinear

import (
	"math"
	"math/rand"
)

func binaryLabels(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if v > 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// solveL1RL2SVC is coordinate descent (CDN) with shrinking for
//
//	min_w ||w||_1 + Σ C_i max(0, 1 - y_i wᵀx_i)²
//
// on the column-major copy of the problem.
func solveL1RL2SVC(sp *subProblem, w []float64, eps, cp, cn float64, maxIter int, rng *rand.Rand) solveInfo {
	const (
		maxNumLinesearch = 20
		sigma            = 0.01
	)
	l, wSize := sp.l, sp.n
	y := binaryLabels(sp.y)
	cols := transpose(sp, y) // x_ij * y_i

	activeSize := wSize
	index := make([]int, wSize)
	b := make([]float64, l) // b = 1 - y wᵀx
	xjSq := make([]float64, wSize)
	cost := func(i int) float64 {
		if y[i] > 0 {
			return cp
		}
		return cn
	}

	gMaxOld := math.Inf(1)
	gNorm1Init := -1.0
	var lossOld float64

	for j := range w {
		w[j] = 0
	}
	for i := range b {
		b[i] = 1
	}
	for j := 0; j < wSize; j++ {
		index[j] = j
		for _, node := range cols[j] {
			ind := node.Index - 1
			xjSq[j] += cost(ind) * node.Value * node.Value
		}
	}

	iter := 0
	for iter < maxIter {
		gMaxNew := 0.0
		gNorm1New := 0.0

		shuffle(rng, index[:activeSize])

		for s := 0; s < activeSize; s++ {
			j := index[s]
			gLoss, h := 0.0, 0.0
			for _, node := range cols[j] {
				ind := node.Index - 1
				if b[ind] > 0 {
					tmp := cost(ind) * node.Value
					gLoss -= tmp * b[ind]
					h += tmp * node.Value
				}
			}
			gLoss *= 2
			g := gLoss
			h = math.Max(2*h, 1e-12)

			gp, gn := g+1, g-1
			violation := 0.0
			switch {
			case w[j] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld/float64(l) && gn < -gMaxOld/float64(l) {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
			case w[j] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gMaxNew = math.Max(gMaxNew, violation)
			gNorm1New += violation

			// Newton direction
			var d float64
			switch {
			case gp < h*w[j]:
				d = -gp / h
			case gn > h*w[j]:
				d = -gn / h
			default:
				d = -w[j]
			}
			if math.Abs(d) < 1e-12 {
				continue
			}

			delta := math.Abs(w[j]+d) - math.Abs(w[j]) + g*d
			dOld := 0.0
			numLinesearch := 0
			for ; numLinesearch < maxNumLinesearch; numLinesearch++ {
				dDiff := dOld - d
				cond := math.Abs(w[j]+d) - math.Abs(w[j]) - sigma*delta

				appxcond := xjSq[j]*d*d + gLoss*d + cond
				if appxcond <= 0 {
					axpy(dDiff, cols[j], b)
					break
				}

				lossNew := 0.0
				if numLinesearch == 0 {
					lossOld = 0
					for _, node := range cols[j] {
						ind := node.Index - 1
						if b[ind] > 0 {
							lossOld += cost(ind) * b[ind] * b[ind]
						}
						bNew := b[ind] + dDiff*node.Value
						b[ind] = bNew
						if bNew > 0 {
							lossNew += cost(ind) * bNew * bNew
						}
					}
				} else {
					for _, node := range cols[j] {
						ind := node.Index - 1
						bNew := b[ind] + dDiff*node.Value
						b[ind] = bNew
						if bNew > 0 {
							lossNew += cost(ind) * bNew * bNew
						}
					}
				}

				cond = cond + lossNew - lossOld
				if cond <= 0 {
					break
				}
				dOld = d
				d *= 0.5
				delta *= 0.5
			}

			w[j] += d

			// b drifted from the accepted step; rebuild it
			if numLinesearch >= maxNumLinesearch {
				for i := range b {
					b[i] = 1
				}
				for i := 0; i < wSize; i++ {
					if w[i] == 0 {
						continue
					}
					axpy(-w[i], cols[i], b)
				}
			}
		}

		if iter == 0 {
			gNorm1Init = gNorm1New
		}
		iter++

		if gNorm1New <= eps*gNorm1Init {
			if activeSize == wSize {
				break
			}
			activeSize = wSize
			gMaxOld = math.Inf(1)
			continue
		}
		gMaxOld = gMaxNew
	}

	return solveInfo{iterations: iter, maxIterHit: iter >= maxIter,
		note: "consider a larger tolerance or scaling the data"}
}

// solveL1RLR is newGLMNET for L1-regularized logistic regression:
//
//	min_w ||w||_1 + Σ C_i log(1 + exp(-y_i wᵀx_i))
//
// Each Newton step solves a quadratic model by coordinate descent and is
// accepted by a backtracking line search.
func solveL1RLR(sp *subProblem, w []float64, eps, cp, cn float64, maxNewtonIter int, rng *rand.Rand) solveInfo {
	const (
		maxInnerIter     = 1000
		maxNumLinesearch = 20
		nu               = 1e-12
		sigma            = 0.01
	)
	l, wSize := sp.l, sp.n
	y := binaryLabels(sp.y)
	cols := transpose(sp, nil)

	index := make([]int, wSize)
	hdiag := make([]float64, wSize)
	grad := make([]float64, wSize)
	wpd := make([]float64, wSize)
	xjNegSum := make([]float64, wSize)
	xTd := make([]float64, l)
	expWTx := make([]float64, l)
	expWTxNew := make([]float64, l)
	tau := make([]float64, l)
	dd := make([]float64, l)
	cost := func(i int) float64 {
		if y[i] > 0 {
			return cp
		}
		return cn
	}

	innerEps := 1.0
	gNorm1Init := -1.0
	gMaxOld := math.Inf(1)
	lastNote := ""

	for j := range w {
		w[j] = 0
	}
	wNorm := 0.0
	for j := 0; j < wSize; j++ {
		wNorm += math.Abs(w[j])
		wpd[j] = w[j]
		index[j] = j
		for _, node := range cols[j] {
			ind := node.Index - 1
			expWTx[ind] += w[j] * node.Value
			if y[ind] == -1 {
				xjNegSum[j] += cost(ind) * node.Value
			}
		}
	}
	for i := 0; i < l; i++ {
		expWTx[i] = math.Exp(expWTx[i])
		tauTmp := 1 / (1 + expWTx[i])
		tau[i] = cost(i) * tauTmp
		dd[i] = cost(i) * expWTx[i] * tauTmp * tauTmp
	}

	newtonIter := 0
	for newtonIter < maxNewtonIter {
		gMaxNew := 0.0
		gNorm1New := 0.0
		activeSize := wSize

		for s := 0; s < activeSize; s++ {
			j := index[s]
			hdiag[j] = nu
			tmp := 0.0
			for _, node := range cols[j] {
				ind := node.Index - 1
				hdiag[j] += node.Value * node.Value * dd[ind]
				tmp += node.Value * tau[ind]
			}
			grad[j] = -tmp + xjNegSum[j]

			gp, gn := grad[j]+1, grad[j]-1
			violation := 0.0
			switch {
			case w[j] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				} else if gp > gMaxOld/float64(l) && gn < -gMaxOld/float64(l) {
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
			case w[j] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gMaxNew = math.Max(gMaxNew, violation)
			gNorm1New += violation
		}

		if newtonIter == 0 {
			gNorm1Init = gNorm1New
		}
		if gNorm1New <= eps*gNorm1Init {
			break
		}

		// coordinate descent on the quadratic model over wpd
		iter := 0
		qpGMaxOld := math.Inf(1)
		qpActiveSize := activeSize
		for i := range xTd {
			xTd[i] = 0
		}

		for iter < maxInnerIter {
			qpGMaxNew := 0.0
			qpGNorm1New := 0.0

			shuffle(rng, index[:qpActiveSize])

			for s := 0; s < qpActiveSize; s++ {
				j := index[s]
				h := hdiag[j]
				g := grad[j] + (wpd[j]-w[j])*nu
				for _, node := range cols[j] {
					ind := node.Index - 1
					g += node.Value * dd[ind] * xTd[ind]
				}

				gp, gn := g+1, g-1
				violation := 0.0
				switch {
				case wpd[j] == 0:
					if gp < 0 {
						violation = -gp
					} else if gn > 0 {
						violation = gn
					} else if gp > qpGMaxOld/float64(l) && gn < -qpGMaxOld/float64(l) {
						qpActiveSize--
						index[s], index[qpActiveSize] = index[qpActiveSize], index[s]
						s--
						continue
					}
				case wpd[j] > 0:
					violation = math.Abs(gp)
				default:
					violation = math.Abs(gn)
				}
				qpGMaxNew = math.Max(qpGMaxNew, violation)
				qpGNorm1New += violation

				var z float64
				switch {
				case gp < h*wpd[j]:
					z = -gp / h
				case gn > h*wpd[j]:
					z = -gn / h
				default:
					z = -wpd[j]
				}
				if math.Abs(z) < 1e-12 {
					continue
				}
				z = math.Min(math.Max(z, -10), 10)

				wpd[j] += z
				axpy(z, cols[j], xTd)
			}

			iter++

			if qpGNorm1New <= innerEps*gNorm1Init {
				if qpActiveSize == activeSize {
					break
				}
				qpActiveSize = activeSize
				qpGMaxOld = math.Inf(1)
				continue
			}
			qpGMaxOld = qpGMaxNew
		}
		if iter >= maxInnerIter {
			lastNote = "reached the inner coordinate descent limit"
		}

		delta := 0.0
		wNormNew := 0.0
		for j := 0; j < wSize; j++ {
			delta += grad[j] * (wpd[j] - w[j])
			if wpd[j] != 0 {
				wNormNew += math.Abs(wpd[j])
			}
		}
		delta += wNormNew - wNorm

		negsumXTd := 0.0
		for i := 0; i < l; i++ {
			if y[i] == -1 {
				negsumXTd += cost(i) * xTd[i]
			}
		}

		numLinesearch := 0
		for ; numLinesearch < maxNumLinesearch; numLinesearch++ {
			cond := wNormNew - wNorm + negsumXTd - sigma*delta
			for i := 0; i < l; i++ {
				expXTd := math.Exp(xTd[i])
				expWTxNew[i] = expWTx[i] * expXTd
				cond += cost(i) * math.Log((1+expWTxNew[i])/(expXTd+expWTxNew[i]))
			}

			if cond <= 0 {
				wNorm = wNormNew
				copy(w, wpd)
				for i := 0; i < l; i++ {
					expWTx[i] = expWTxNew[i]
					tauTmp := 1 / (1 + expWTx[i])
					tau[i] = cost(i) * tauTmp
					dd[i] = cost(i) * expWTx[i] * tauTmp * tauTmp
				}
				break
			}

			wNormNew = 0
			for j := 0; j < wSize; j++ {
				wpd[j] = (w[j] + wpd[j]) * 0.5
				if wpd[j] != 0 {
					wNormNew += math.Abs(wpd[j])
				}
			}
			delta *= 0.5
			negsumXTd *= 0.5
			for i := range xTd {
				xTd[i] *= 0.5
			}
		}

		// too many line search steps; recompute exp(wᵀx) from w
		if numLinesearch >= maxNumLinesearch {
			for i := range expWTx {
				expWTx[i] = 0
			}
			for j := 0; j < wSize; j++ {
				if w[j] == 0 {
					continue
				}
				axpy(w[j], cols[j], expWTx)
			}
			for i := range expWTx {
				expWTx[i] = math.Exp(expWTx[i])
			}
		}

		if iter == 1 {
			innerEps *= 0.25
		}

		newtonIter++
		gMaxOld = gMaxNew
	}

	return solveInfo{iterations: newtonIter, maxIterHit: newtonIter >= maxNewtonIter, note: lastNote}
}
