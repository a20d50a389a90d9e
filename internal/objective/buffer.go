// Package objective turns raw force/energy/stress accumulation into the
// weighted sum-of-squares objective consumed by the external optimizer.
package objective

// #region buffer
// Buffer is the flat output array of one evaluation, laid out as
// [3*natoms force components][nconf energies][6*nconf stress components].
// It is fully overwritten, never accumulated into, on every call. The force
// section holds deviations from the reference baseline, so a gathered
// buffer can be consumed as residuals directly.
//
// The same type serves as the read-only reference baseline.
type Buffer struct {
	natoms int
	nconf  int
	raw    []float64
}

// NewBuffer allocates a zeroed buffer for natoms atoms and nconf
// configurations.
func NewBuffer(natoms, nconf int) *Buffer {
	return &Buffer{
		natoms: natoms,
		nconf:  nconf,
		raw:    make([]float64, 3*natoms+nconf+6*nconf),
	}
}

// NAtoms returns the atom count the buffer was sized for.
func (b *Buffer) NAtoms() int { return b.natoms }

// NConf returns the configuration count the buffer was sized for.
func (b *Buffer) NConf() int { return b.nconf }

// Raw exposes the full flat array in wire order.
func (b *Buffer) Raw() []float64 { return b.raw }

// Forces returns the 3*natoms force component section.
func (b *Buffer) Forces() []float64 {
	return b.raw[:3*b.natoms]
}

// ForceAt returns the 3-component force slice of one atom by global index.
func (b *Buffer) ForceAt(atom int) []float64 {
	return b.raw[3*atom : 3*atom+3]
}

// Energies returns the per-configuration energy section.
func (b *Buffer) Energies() []float64 {
	return b.raw[3*b.natoms : 3*b.natoms+b.nconf]
}

// Stresses returns the 6*nconf stress component section.
func (b *Buffer) Stresses() []float64 {
	return b.raw[3*b.natoms+b.nconf:]
}

// StressAt returns the 6-component stress slice of one configuration.
func (b *Buffer) StressAt(conf int) []float64 {
	base := 3*b.natoms + b.nconf + 6*conf
	return b.raw[base : base+6]
}

// CopyFrom copies the counterpart sections of src for a contiguous
// partition of atoms and configurations, the gather step of the
// distributed loop.
func (b *Buffer) CopyFrom(src *Buffer, firstAtom, natoms, firstConf, nconf int) {
	copy(b.raw[3*firstAtom:3*(firstAtom+natoms)], src.raw[3*firstAtom:3*(firstAtom+natoms)])
	eb := 3 * b.natoms
	copy(b.raw[eb+firstConf:eb+firstConf+nconf], src.raw[eb+firstConf:eb+firstConf+nconf])
	sb := 3*b.natoms + b.nconf
	copy(b.raw[sb+6*firstConf:sb+6*(firstConf+nconf)], src.raw[sb+6*firstConf:sb+6*(firstConf+nconf)])
}

// #endregion buffer
