// Package potential implements the analytic Stillinger-Weber two-body and
// three-body evaluators over prebuilt neighbor lists. Positions are static
// for the lifetime of an optimization run; only the parameter vector varies
// between evaluations.
package potential

// #region vec3
// Vec3 is a 3-component double vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v.X, s * v.Y, s * v.Z}
}

// Dot returns the inner product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// #endregion vec3

// #region neighbor
// Neighbor is one directed entry of an atom's full neighbor list. Neighbor
// geometry is immutable; F and DF are a per-evaluation cache refreshed by
// RefreshEnvelopes before every three-body pass.
type Neighbor struct {
	Index int // index of the neighbor atom within the configuration
	Type  int // atom type of the neighbor
	Col   int // pair column selecting the applicable parameters

	R    float64 // distance
	InvR float64 // 1/distance
	Dir  Vec3    // direction cosines (unit vector from the central atom)
	Disp Vec3    // displacement vector, Dir scaled by R

	// AngleStart is the offset of this neighbor's (j, j+1) entry in the
	// owning atom's angular cache.
	AngleStart int

	// F and DF cache the three-body cutoff envelope value and derivative.
	F  float64
	DF float64
}

// #endregion neighbor

// #region atom
// Atom carries identity, its neighbor list, and the precomputed cache of
// pairwise angular cosines for all ordered neighbor pairs j < k. The cosine
// for pair (j,k) lives at Neighbors[j].AngleStart + (k - j - 1).
type Atom struct {
	Type         int
	Contributing bool    // participates in the force residual when masking is on
	AbsForce     float64 // reference force magnitude, for adaptive weighting
	Neighbors    []Neighbor
	AngleCos     []float64
}

// CosAngle returns the cached cos(angle j-i-k) for ordered neighbors j < k.
func (a *Atom) CosAngle(j, k int) float64 {
	return a.AngleCos[a.Neighbors[j].AngleStart+(k-j-1)]
}

// #endregion atom

// #region configuration
// Configuration groups atoms sharing one reference energy, an optional
// reference stress, a fit weight, a volume, and fitting-enable flags.
type Configuration struct {
	Index     int // position within the dataset
	FirstAtom int // global index of the first atom, for flat buffer layout

	Atoms  []Atom
	Weight float64
	Volume float64

	UseForces bool
	UseStress bool
}

// #endregion configuration

// #region dataset
// Dataset is the full immutable configuration set for one optimization run.
type Dataset struct {
	Configurations []Configuration
	NAtoms         int // total atoms across all configurations
	NTypes         int
}

// Recount recomputes NAtoms and the per-configuration Index/FirstAtom
// bookkeeping after configurations were assembled.
func (d *Dataset) Recount() {
	total := 0
	for i := range d.Configurations {
		d.Configurations[i].Index = i
		d.Configurations[i].FirstAtom = total
		total += len(d.Configurations[i].Atoms)
	}
	d.NAtoms = total
}

// #endregion dataset
