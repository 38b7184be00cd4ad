package liblinear

import (
	"math"
	"math/rand"
	"sort"
)

// mcsvmCS holds the working state of the Crammer and Singer multi-class
// solver. y of the sub-problem carries 0-based class indices.
type mcsvmCS struct {
	sp      *subProblem
	nrClass int
	c       float64
	b       []float64
	g       []float64
	d       []float64
}

// solveMCSVMCS minimizes
//
//	min_α 0.5 Σ_m ||w_m||² + Σ_i Σ_m e_i^m α_i^m
//	s.t.  α_i^m ≤ C^m_{y_i},  Σ_m α_i^m = 0
//
// with w_m = Σ_i α_i^m x_i and C^m_{y_i} = C if m == y_i, else 0, by
// sequential dual block coordinate descent with shrinking.
func solveMCSVMCS(sp *subProblem, nrClass int, c, eps float64, maxIter int, w []float64, rng *rand.Rand) solveInfo {
	s := &mcsvmCS{
		sp:      sp,
		nrClass: nrClass,
		c:       c,
		b:       make([]float64, nrClass),
		g:       make([]float64, nrClass),
		d:       make([]float64, nrClass),
	}
	return s.solve(w, eps, maxIter, rng)
}

// solveSubProblem solves the simplex-constrained block for one instance
// and writes the new α_i into alphaNew[:activeI].
func (s *mcsvmCS) solveSubProblem(ai float64, yi int, cyi float64, activeI int, alphaNew []float64) {
	d := s.d[:activeI]
	copy(d, s.b[:activeI])
	if yi < activeI {
		d[yi] += ai * cyi
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(d)))

	beta := d[0] - ai*cyi
	r := 1
	for ; r < activeI && beta < float64(r)*d[r]; r++ {
		beta += d[r]
	}
	beta /= float64(r)

	for r = 0; r < activeI; r++ {
		if r == yi {
			alphaNew[r] = math.Min(cyi, (beta-s.b[r])/ai)
		} else {
			alphaNew[r] = math.Min(0, (beta-s.b[r])/ai)
		}
	}
}

func (s *mcsvmCS) beShrunk(m, yi int, alpha, minG float64) bool {
	bound := 0.0
	if m == yi {
		bound = s.c
	}
	return alpha == bound && s.g[m] < minG
}

func (s *mcsvmCS) solve(w []float64, eps float64, maxIter int, rng *rand.Rand) solveInfo {
	sp := s.sp
	l, nrClass := sp.l, s.nrClass

	alpha := make([]float64, l*nrClass)
	alphaNew := make([]float64, nrClass)
	index := make([]int, l)
	qd := make([]float64, l)
	dInd := make([]int, nrClass)
	dVal := make([]float64, nrClass)
	alphaIndex := make([]int, nrClass*l)
	yIndex := make([]int, l)
	activeSizeI := make([]int, l)
	activeSize := l
	epsShrink := math.Max(10*eps, 1)
	startFromAll := true

	for j := range w {
		w[j] = 0
	}
	for i := 0; i < l; i++ {
		for m := 0; m < nrClass; m++ {
			alphaIndex[i*nrClass+m] = m
		}
		qd[i] = nrm2sq(sp.x[i])
		activeSizeI[i] = nrClass
		yIndex[i] = int(sp.y[i])
		index[i] = i
	}

	iter := 0
	for iter < maxIter {
		stopping := math.Inf(-1)
		shuffle(rng, index[:activeSize])

		for si := 0; si < activeSize; si++ {
			i := index[si]
			ai := qd[i]
			alphaI := alpha[i*nrClass : (i+1)*nrClass]
			alphaIndexI := alphaIndex[i*nrClass : (i+1)*nrClass]

			if ai > 0 {
				for m := 0; m < activeSizeI[i]; m++ {
					s.g[m] = 1
				}
				if yIndex[i] < activeSizeI[i] {
					s.g[yIndex[i]] = 0
				}

				for _, node := range sp.x[i] {
					if node.Index == SentinelIndex {
						break
					}
					base := (node.Index - 1) * nrClass
					for m := 0; m < activeSizeI[i]; m++ {
						s.g[m] += w[base+alphaIndexI[m]] * node.Value
					}
				}

				minG := math.Inf(1)
				maxG := math.Inf(-1)
				for m := 0; m < activeSizeI[i]; m++ {
					if alphaI[alphaIndexI[m]] < 0 && s.g[m] < minG {
						minG = s.g[m]
					}
					if s.g[m] > maxG {
						maxG = s.g[m]
					}
				}
				if yIndex[i] < activeSizeI[i] && alphaI[int(sp.y[i])] < s.c && s.g[yIndex[i]] < minG {
					minG = s.g[yIndex[i]]
				}

				for m := 0; m < activeSizeI[i]; m++ {
					if !s.beShrunk(m, yIndex[i], alphaI[alphaIndexI[m]], minG) {
						continue
					}
					activeSizeI[i]--
					for activeSizeI[i] > m {
						last := activeSizeI[i]
						if !s.beShrunk(last, yIndex[i], alphaI[alphaIndexI[last]], minG) {
							alphaIndexI[m], alphaIndexI[last] = alphaIndexI[last], alphaIndexI[m]
							s.g[m], s.g[last] = s.g[last], s.g[m]
							if yIndex[i] == last {
								yIndex[i] = m
							} else if yIndex[i] == m {
								yIndex[i] = last
							}
							break
						}
						activeSizeI[i]--
					}
				}

				if activeSizeI[i] <= 1 {
					activeSize--
					index[si], index[activeSize] = index[activeSize], index[si]
					si--
					continue
				}

				if maxG-minG <= 1e-12 {
					continue
				}
				stopping = math.Max(maxG-minG, stopping)

				for m := 0; m < activeSizeI[i]; m++ {
					s.b[m] = s.g[m] - ai*alphaI[alphaIndexI[m]]
				}

				s.solveSubProblem(ai, yIndex[i], s.c, activeSizeI[i], alphaNew)
				nzD := 0
				for m := 0; m < activeSizeI[i]; m++ {
					d := alphaNew[m] - alphaI[alphaIndexI[m]]
					alphaI[alphaIndexI[m]] = alphaNew[m]
					if math.Abs(d) >= 1e-12 {
						dInd[nzD] = alphaIndexI[m]
						dVal[nzD] = d
						nzD++
					}
				}

				for _, node := range sp.x[i] {
					if node.Index == SentinelIndex {
						break
					}
					base := (node.Index - 1) * nrClass
					for k := 0; k < nzD; k++ {
						w[base+dInd[k]] += dVal[k] * node.Value
					}
				}
			}
		}

		iter++

		if stopping < epsShrink {
			if stopping < eps && startFromAll {
				break
			}
			activeSize = l
			for i := 0; i < l; i++ {
				activeSizeI[i] = nrClass
			}
			epsShrink = math.Max(epsShrink/2, eps)
			startFromAll = true
		} else {
			startFromAll = false
		}
	}

	return solveInfo{iterations: iter, maxIterHit: iter >= maxIter,
		note: "consider a larger tolerance or scaling the data"}
}
