package objective

import (
	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"
)

// #region options
// Options are the per-run residual settings. Every former compile-time
// switch of the reference implementation is an explicit field here, checked
// once per evaluation.
type Options struct {
	// EnergyWeight scales squared energy residuals globally, on top of the
	// per-configuration weight.
	EnergyWeight float64

	// StressWeight scales squared stress residuals globally.
	StressWeight float64

	// StressFitting enables stress residuals for configurations that carry
	// reference stresses. Stress needs the force pass, so a configuration
	// with UseForces false never contributes stress residuals.
	StressFitting bool

	// AdaptiveForceWeighting divides each atom's force deviation by
	// (ForceEpsilon + reference force magnitude) before squaring.
	AdaptiveForceWeighting bool

	// ForceEpsilon guards the adaptive weighting against atoms with near
	// zero reference force.
	ForceEpsilon float64

	// ContributionMasking restricts the force residual sum to atoms flagged
	// as contributing.
	ContributionMasking bool
}

// DefaultOptions returns the residual settings of a plain energy+force fit.
func DefaultOptions() Options {
	return Options{
		EnergyWeight: 1.0,
		StressWeight: 1.0,
		ForceEpsilon: 0.1,
	}
}

// #endregion options

// #region evaluate-configuration
// EvaluateConfiguration runs the pair, envelope, and triple passes for one
// configuration, writes normalized deviations into out, and returns the
// configuration's weighted squared-residual contribution.
//
// out receives: per-atom force deviations (computed force minus baseline,
// after optional adaptive scaling), the normalized energy deviation
// (accumulated sum / natoms - reference), and the volume-normalized stress
// deviations. Sections that are not fitted are zeroed.
func EvaluateConfiguration(cfg *potential.Configuration, table *params.Table, acc *potential.Accumulator, opts Options, out, baseline *Buffer) float64 {
	natoms := len(cfg.Atoms)
	withForces := cfg.UseForces
	withStress := opts.StressFitting && cfg.UseStress && withForces

	acc.Reset(natoms)
	potential.PairPass(cfg, table, acc, withForces, withStress)
	for i := range cfg.Atoms {
		potential.RefreshEnvelopes(&cfg.Atoms[i], table)
	}
	potential.TriplePass(cfg, table, acc, withForces, withStress)

	sum := 0.0

	// force residuals
	for a := range cfg.Atoms {
		dst := out.ForceAt(cfg.FirstAtom + a)
		if !withForces {
			dst[0], dst[1], dst[2] = 0, 0, 0
			continue
		}
		ref := baseline.ForceAt(cfg.FirstAtom + a)
		dev := acc.Forces[a].Sub(potential.Vec3{X: ref[0], Y: ref[1], Z: ref[2]})
		if opts.AdaptiveForceWeighting {
			dev = dev.Scale(1.0 / (opts.ForceEpsilon + cfg.Atoms[a].AbsForce))
		}
		dst[0], dst[1], dst[2] = dev.X, dev.Y, dev.Z
		if opts.ContributionMasking && !cfg.Atoms[a].Contributing {
			continue
		}
		sum += cfg.Weight * (dev.X*dev.X + dev.Y*dev.Y + dev.Z*dev.Z)
	}

	// energy residual
	e := acc.Energy/float64(natoms) - baseline.Energies()[cfg.Index]
	out.Energies()[cfg.Index] = e
	sum += cfg.Weight * opts.EnergyWeight * e * e

	// stress residuals
	dst := out.StressAt(cfg.Index)
	if withStress {
		ref := baseline.StressAt(cfg.Index)
		for i := 0; i < 6; i++ {
			s := acc.Stress[i]/cfg.Volume - ref[i]
			dst[i] = s
			sum += cfg.Weight * opts.StressWeight * s * s
		}
	} else {
		for i := 0; i < 6; i++ {
			dst[i] = 0
		}
	}

	return sum
}

// #endregion evaluate-configuration

// #region evaluate-partition
// EvaluatePartition evaluates a contiguous run of configurations and
// returns the partition's objective sum. Per-configuration sums are
// combined left to right, keeping the reduction order deterministic for a
// fixed partitioning.
func EvaluatePartition(ds *potential.Dataset, first, count int, table *params.Table, opts Options, out, baseline *Buffer) float64 {
	partials := make([]float64, count)
	acc := potential.NewAccumulator(0)
	for i := 0; i < count; i++ {
		cfg := &ds.Configurations[first+i]
		partials[i] = EvaluateConfiguration(cfg, table, acc, opts, out, baseline)
	}
	return floats.Sum(partials)
}

// #endregion evaluate-partition
