package objective_test

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/fixture"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/objective"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"
)

func TestBufferLayout(t *testing.T) {
	b := objective.NewBuffer(2, 3)
	raw := b.Raw()
	if len(raw) != 3*2+3+6*3 {
		t.Fatalf("raw length: got %d", len(raw))
	}

	b.ForceAt(1)[2] = 1.5
	if raw[5] != 1.5 {
		t.Fatalf("force slot misplaced: raw[5]=%g", raw[5])
	}
	b.Energies()[2] = 2.5
	if raw[6+2] != 2.5 {
		t.Fatalf("energy slot misplaced: raw[8]=%g", raw[8])
	}
	b.StressAt(1)[0] = 3.5
	if raw[6+3+6+0] != 3.5 {
		t.Fatalf("stress slot misplaced: raw[15]=%g", raw[15])
	}
}

func TestBufferCopyFrom(t *testing.T) {
	dst := objective.NewBuffer(4, 2)
	src := objective.NewBuffer(4, 2)
	for i := range src.Raw() {
		src.Raw()[i] = float64(i + 1)
	}

	// copy the second configuration's partition: atoms 2..3, conf 1
	dst.CopyFrom(src, 2, 2, 1, 1)

	for i := 0; i < 6; i++ {
		if dst.Raw()[i] != 0 {
			t.Fatalf("first partition touched at %d", i)
		}
	}
	if dst.ForceAt(2)[0] != src.ForceAt(2)[0] || dst.ForceAt(3)[2] != src.ForceAt(3)[2] {
		t.Fatal("force section not copied")
	}
	if dst.Energies()[0] != 0 || dst.Energies()[1] != src.Energies()[1] {
		t.Fatalf("energy section wrong: %v", dst.Energies())
	}
	if dst.StressAt(0)[0] != 0 || dst.StressAt(1)[5] != src.StressAt(1)[5] {
		t.Fatal("stress section wrong")
	}
}

// zeroDataset builds a dimer dataset whose parameters are all zero, so the
// computed energy, forces, and stresses vanish identically.
func zeroDataset(t *testing.T) (*potential.Dataset, *objective.Buffer, *params.Table) {
	t.Helper()
	ds, err := fixture.BuildDataset(1, []fixture.ClusterSpec{{
		Positions: []potential.Vec3{{}, {X: 2.35}},
		Types:     []int{0, 0},
		Cutoff:    4.0,
		Weight:    1.0,
		Volume:    100.0,
		UseForces: true,
		UseStress: true,
	}})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	baseline := fixture.NewBaseline(ds)

	layout := params.Layout{NTypes: 1}
	tab := params.NewTable(layout)
	if err := tab.Bind(make([]float64, layout.Size())); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return ds, baseline, tab
}

func TestEvaluateConfigurationResiduals(t *testing.T) {
	ds, baseline, tab := zeroDataset(t)
	baseline.Energies()[0] = -1.5
	baseline.ForceAt(0)[0] = 0.25
	fixture.ApplyReferenceForces(ds, baseline)

	out := objective.NewBuffer(ds.NAtoms, 1)
	acc := potential.NewAccumulator(0)
	opts := objective.DefaultOptions()

	sum := objective.EvaluateConfiguration(&ds.Configurations[0], tab, acc, opts, out, baseline)

	// zero computed values: residuals are just the negated references
	want := 0.25*0.25 + 1.5*1.5
	if math.Abs(sum-want) > 1e-12 {
		t.Fatalf("objective: got %g want %g", sum, want)
	}
	if out.Energies()[0] != 1.5 {
		t.Fatalf("energy deviation: got %g", out.Energies()[0])
	}
	if out.ForceAt(0)[0] != -0.25 {
		t.Fatalf("force deviation: got %g", out.ForceAt(0)[0])
	}
}

func TestEnergyNormalizedPerAtom(t *testing.T) {
	layout := params.Layout{NTypes: 1}
	vec := make([]float64, layout.Size())
	vec[0] = 177.3
	vec[1] = 15.29
	vec[2] = 4.0
	vec[4] = 2.0951
	vec[5] = 3.7712
	tab := params.NewTable(layout)
	if err := tab.Bind(vec); err != nil {
		t.Fatalf("bind: %v", err)
	}

	r := 2.35
	ds, err := fixture.BuildDataset(1, []fixture.ClusterSpec{{
		Positions: []potential.Vec3{{}, {X: r}},
		Types:     []int{0, 0},
		Cutoff:    4.0,
		Weight:    1.0,
	}})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	baseline := fixture.NewBaseline(ds)
	out := objective.NewBuffer(ds.NAtoms, 1)

	objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		objective.DefaultOptions(), out, baseline)

	// dimer pair energy v2, normalized by the two atoms
	pair := potential.EvalPair(tab.Pair(0), r, 1.0/r, false)
	want := pair.Val / 2
	if math.Abs(out.Energies()[0]-want) > 1e-12*math.Abs(want) {
		t.Fatalf("per-atom energy: got %g want %g", out.Energies()[0], want)
	}
}

func TestAdaptiveForceWeighting(t *testing.T) {
	ds, baseline, tab := zeroDataset(t)
	baseline.ForceAt(0)[1] = 2.0
	fixture.ApplyReferenceForces(ds, baseline)

	out := objective.NewBuffer(ds.NAtoms, 1)
	opts := objective.DefaultOptions()
	opts.AdaptiveForceWeighting = true
	opts.ForceEpsilon = 0.5

	objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		opts, out, baseline)

	// deviation -2.0 scaled by 1/(0.5 + 2.0)
	want := -2.0 / 2.5
	if math.Abs(out.ForceAt(0)[1]-want) > 1e-12 {
		t.Fatalf("scaled deviation: got %g want %g", out.ForceAt(0)[1], want)
	}
}

func TestContributionMasking(t *testing.T) {
	ds, baseline, tab := zeroDataset(t)
	ds.Configurations[0].Atoms[0].Contributing = false
	baseline.ForceAt(0)[0] = 1.0
	baseline.ForceAt(1)[0] = 1.0

	out := objective.NewBuffer(ds.NAtoms, 1)
	opts := objective.DefaultOptions()
	opts.ContributionMasking = true

	sum := objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		opts, out, baseline)

	// only atom 1 contributes to the sum; both deviations are still written
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("masked objective: got %g want 1", sum)
	}
	if out.ForceAt(0)[0] != -1.0 {
		t.Fatalf("masked atom deviation not written: %g", out.ForceAt(0)[0])
	}
}

func TestStressRequiresForcesAndToggle(t *testing.T) {
	ds, baseline, tab := zeroDataset(t)
	baseline.StressAt(0)[0] = 0.5

	out := objective.NewBuffer(ds.NAtoms, 1)

	// toggle off: stress section zeroed even though UseStress is set
	opts := objective.DefaultOptions()
	sum := objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		opts, out, baseline)
	if sum != 0 || out.StressAt(0)[0] != 0 {
		t.Fatalf("stress fitted while disabled: sum=%g dev=%g", sum, out.StressAt(0)[0])
	}

	// toggle on: zero computed stress minus reference
	opts.StressFitting = true
	sum = objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		opts, out, baseline)
	if math.Abs(sum-0.25) > 1e-12 {
		t.Fatalf("stress objective: got %g want 0.25", sum)
	}
	if out.StressAt(0)[0] != -0.5 {
		t.Fatalf("stress deviation: got %g", out.StressAt(0)[0])
	}
}

func TestEvaluatePartitionSums(t *testing.T) {
	spec := fixture.ClusterSpec{
		Positions: []potential.Vec3{{}, {X: 2.35}},
		Types:     []int{0, 0},
		Cutoff:    4.0,
		Weight:    1.0,
		UseForces: true,
	}
	ds, err := fixture.BuildDataset(1, []fixture.ClusterSpec{spec, spec, spec})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	baseline := fixture.NewBaseline(ds)
	for c := 0; c < 3; c++ {
		baseline.Energies()[c] = -1.0
	}

	layout := params.Layout{NTypes: 1}
	tab := params.NewTable(layout)
	if err := tab.Bind(make([]float64, layout.Size())); err != nil {
		t.Fatalf("bind: %v", err)
	}
	out := objective.NewBuffer(ds.NAtoms, 3)
	opts := objective.DefaultOptions()

	whole := objective.EvaluatePartition(ds, 0, 3, tab, opts, out, baseline)
	single := objective.EvaluateConfiguration(&ds.Configurations[0], tab, potential.NewAccumulator(0),
		opts, out, baseline)
	if math.Abs(whole-3*single) > 1e-12 {
		t.Fatalf("partition sum: got %g want %g", whole, 3*single)
	}
}
