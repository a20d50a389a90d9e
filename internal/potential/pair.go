package potential

import (
	"math"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// #region pow2
// pow2 evaluates r^e1 and r^e2 sharing a single logarithm, the combined
// two-exponent power step of the pair term.
func pow2(r, e1, e2 float64) (float64, float64) {
	lr := math.Log(r)
	return math.Exp(e1 * lr), math.Exp(e2 * lr)
}

// #endregion pow2

// #region pair-term
// PairTerm is the two-body value and radial gradient at one neighbor
// distance.
type PairTerm struct {
	Val  float64
	Grad float64
}

// EvalPair computes the two-body term for a neighbor with r < a1:
//
//	phi_r = A * r^-p
//	phi_a = -B * r^-q
//	f_cut = exp(delta / (r - a1))      (r < a1, so the exponent is negative)
//	v2    = (phi_r + phi_a) * f_cut
//	v2'   = -v2*delta/(r-a1)^2 - f_cut*(1/r)*(p*phi_r + q*phi_a)
//
// The gradient is skipped when withGrad is false (energy-only fits).
// Callers must ensure r < p.A1; at and beyond a1 the contribution is zero
// by construction.
func EvalPair(p params.PairParams, r, invR float64, withGrad bool) PairTerm {
	pr, pa := pow2(r, -p.P, -p.Q)
	phiR := p.A * pr
	phiA := -p.B * pa
	invC := 1.0 / (r - p.A1)
	fCut := math.Exp(p.Delta * invC)

	t := PairTerm{Val: (phiR + phiA) * fCut}
	if withGrad {
		t.Grad = -t.Val*p.Delta*invC*invC - fCut*invR*(p.P*phiR+p.Q*phiA)
	}
	return t
}

// Halve scales value and gradient by 0.5. Applied when a neighbor entry is
// the central atom's own periodic image, to avoid double counting.
func (t PairTerm) Halve() PairTerm {
	return PairTerm{Val: 0.5 * t.Val, Grad: 0.5 * t.Grad}
}

// #endregion pair-term
