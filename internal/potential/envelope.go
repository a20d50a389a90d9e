package potential

import (
	"math"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// #region envelope
// Envelope computes the secondary smooth cutoff used by the three-body
// term. For r < a2 with (r - a2) more negative than -0.01*gamma:
//
//	f  = exp(gamma / (r - a2))
//	df = -f * gamma / ((r - a2)^2 * r)
//
// Inside the numerical-safety guard next to the singularity at a2, and at
// or beyond a2, both values are zero. This cutoff is independent of and
// unrelated in value to the pair term's a1/delta cutoff.
func Envelope(e params.EnvelopeParams, r float64) (f, df float64) {
	d := r - e.A2
	if d >= -0.01*e.Gamma {
		return 0, 0
	}
	inv := 1.0 / d
	f = math.Exp(e.Gamma * inv)
	df = -f * e.Gamma * inv * inv / r
	return f, df
}

// RefreshEnvelopes recomputes the cached envelope value and derivative for
// every neighbor of atom that lies inside its a2 cutoff, zeroing the rest.
// Must run for every atom of a configuration before its three-body pass
// consumes the cache within the same evaluation.
func RefreshEnvelopes(atom *Atom, table *params.Table) {
	for n := range atom.Neighbors {
		neigh := &atom.Neighbors[n]
		env := table.Envelope(neigh.Col)
		if neigh.R < env.A2 {
			neigh.F, neigh.DF = Envelope(env, neigh.R)
		} else {
			neigh.F, neigh.DF = 0, 0
		}
	}
}

// #endregion envelope
