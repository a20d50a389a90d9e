package potential

// #region accumulator
// Accumulator collects per-atom forces, energy, and the 6-component stress
// tensor for one configuration. Atoms are addressed by their index within
// the configuration; the flat output layout is produced only at the
// boundary, by the objective layer.
//
// Stress components are ordered xx, yy, zz, xy, yz, zx. The two-body term
// subtracts its displacement-force products while the three-body term adds
// them; the asymmetry follows the virial attribution of each term and is
// preserved bit-for-bit against the reference implementation.
type Accumulator struct {
	Forces []Vec3
	Energy float64
	Stress [6]float64
}

// NewAccumulator allocates an accumulator for natoms atoms.
func NewAccumulator(natoms int) *Accumulator {
	return &Accumulator{Forces: make([]Vec3, natoms)}
}

// Reset zeroes energy and stress and sizes the force slice for natoms
// atoms, reusing storage across evaluations.
func (a *Accumulator) Reset(natoms int) {
	if cap(a.Forces) < natoms {
		a.Forces = make([]Vec3, natoms)
	}
	a.Forces = a.Forces[:natoms]
	for i := range a.Forces {
		a.Forces[i] = Vec3{}
	}
	a.Energy = 0
	a.Stress = [6]float64{}
}

func (a *Accumulator) addPairStress(disp, force Vec3) {
	a.Stress[0] -= 0.5 * disp.X * force.X
	a.Stress[1] -= 0.5 * disp.Y * force.Y
	a.Stress[2] -= 0.5 * disp.Z * force.Z
	a.Stress[3] -= 0.5 * disp.X * force.Y
	a.Stress[4] -= 0.5 * disp.Y * force.Z
	a.Stress[5] -= 0.5 * disp.Z * force.X
}

func (a *Accumulator) addTripleStress(fj, rj, fk, rk Vec3) {
	a.Stress[0] += fj.X*rj.X + fk.X*rk.X
	a.Stress[1] += fj.Y*rj.Y + fk.Y*rk.Y
	a.Stress[2] += fj.Z*rj.Z + fk.Z*rk.Z
	a.Stress[3] += 0.5 * (fj.Y*rj.Z + fk.Y*rk.Z + fj.Z*rj.Y + fk.Z*rk.Y)
	a.Stress[4] += 0.5 * (fj.Z*rj.X + fk.Z*rk.X + fj.X*rj.Z + fk.X*rk.Z)
	a.Stress[5] += 0.5 * (fj.X*rj.Y + fk.X*rk.Y + fj.Y*rj.X + fk.Y*rk.X)
}

// #endregion accumulator
