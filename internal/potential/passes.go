package potential

import (
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// #region pair-pass
// PairPass accumulates the two-body energy, forces, and stresses of one
// configuration. Full neighbor lists double-visit each bond, so only half
// of v2 is added per directed entry; a neighbor that resolves to the
// central atom's own periodic image contributes half value and gradient.
func PairPass(cfg *Configuration, table *params.Table, acc *Accumulator, withForces, withStress bool) {
	for i := range cfg.Atoms {
		atom := &cfg.Atoms[i]
		for n := range atom.Neighbors {
			neigh := &atom.Neighbors[n]
			p := table.Pair(neigh.Col)
			if neigh.R >= p.A1 {
				continue
			}
			term := EvalPair(p, neigh.R, neigh.InvR, withForces)
			if neigh.Index == i {
				term = term.Halve()
			}
			acc.Energy += 0.5 * term.Val
			if !withForces {
				continue
			}
			force := neigh.Dir.Scale(term.Grad)
			acc.Forces[i] = acc.Forces[i].Add(force)
			if withStress {
				acc.addPairStress(neigh.Disp, force)
			}
		}
	}
}

// #endregion pair-pass

// #region triple-pass
// TriplePass accumulates the three-body term of one configuration. Every
// unordered neighbor pair (j,k) of each atom is visited exactly once via
// the ordered j < k enumeration, so no halving applies. Requires the
// envelope cache (Neighbor.F/DF) to be fresh for this evaluation; see
// RefreshEnvelopes.
//
// For each triple, atom i receives +force_j+force_k and atoms j,k receive
// -force_j and -force_k, conserving momentum exactly.
func TriplePass(cfg *Configuration, table *params.Table, acc *Accumulator, withForces, withStress bool) {
	for i := range cfg.Atoms {
		atom := &cfg.Atoms[i]
		nn := len(atom.Neighbors)
		for jj := 0; jj < nn-1; jj++ {
			nj := &atom.Neighbors[jj]
			if nj.R >= table.Envelope(nj.Col).A2 {
				continue
			}
			for kk := jj + 1; kk < nn; kk++ {
				nk := &atom.Neighbors[kk]
				if nk.R >= table.Envelope(nk.Col).A2 {
					continue
				}
				lambda := table.Lambda(atom.Type, nj.Type, nk.Type)
				if lambda == 0 {
					continue
				}

				cos := atom.CosAngle(jj, kk)
				c := cos + 1.0/3.0
				acc.Energy += lambda * nj.F * nk.F * c * c
				if !withForces {
					continue
				}

				grad1 := lambda * nj.F * nk.F * 2 * c
				grad2 := lambda * c * c

				invJJ := 1.0 / (nj.R * nj.R)
				invJK := 1.0 / (nj.R * nk.R)
				invKK := 1.0 / (nk.R * nk.R)

				t1 := grad2*nj.DF*nk.F - grad1*cos*invJJ
				t2 := grad1 * invJK
				forceJ := nj.Disp.Scale(t1).Add(nk.Disp.Scale(t2))

				t1 = grad2*nk.DF*nj.F - grad1*cos*invKK
				forceK := nk.Disp.Scale(t1).Add(nj.Disp.Scale(t2))

				acc.Forces[i] = acc.Forces[i].Add(forceJ).Add(forceK)
				acc.Forces[nj.Index] = acc.Forces[nj.Index].Sub(forceJ)
				acc.Forces[nk.Index] = acc.Forces[nk.Index].Sub(forceK)

				if withStress {
					acc.addTripleStress(forceJ, nj.Disp, forceK, nk.Disp)
				}
			}
		}
	}
}

// #endregion triple-pass
