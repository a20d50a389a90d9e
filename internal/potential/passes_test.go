package potential

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// testTable binds a single-species parameter vector with silicon-like
// values and the given lambda.
func testTable(t *testing.T, lambda float64) *params.Table {
	t.Helper()
	l := params.Layout{NTypes: 1}
	vec := make([]float64, l.Size())
	vec[0] = 177.3  // A
	vec[1] = 15.29  // B
	vec[2] = 4.0    // p
	vec[3] = 0.0    // q
	vec[4] = 2.0951 // delta
	vec[5] = 3.7712 // a1
	eb := l.EnvelopeBase(0)
	vec[eb] = 2.5141
	vec[eb+1] = 3.7712
	vec[l.LambdaIndex(0, 0, 0)] = lambda

	tab := params.NewTable(l)
	if err := tab.Bind(vec); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return tab
}

// cluster builds a configuration with full neighbor lists and angle caches
// from explicit positions, all atoms type 0.
func cluster(positions []Vec3, cutoff float64) Configuration {
	cfg := Configuration{
		Atoms:     make([]Atom, len(positions)),
		Weight:    1.0,
		UseForces: true,
	}
	for i := range positions {
		atom := Atom{Contributing: true}
		for j := range positions {
			if j == i {
				continue
			}
			disp := positions[j].Sub(positions[i])
			r := math.Sqrt(disp.Dot(disp))
			if r >= cutoff {
				continue
			}
			atom.Neighbors = append(atom.Neighbors, Neighbor{
				Index: j,
				R:     r,
				InvR:  1.0 / r,
				Dir:   disp.Scale(1.0 / r),
				Disp:  disp,
			})
		}
		n := len(atom.Neighbors)
		for jj := 0; jj < n-1; jj++ {
			atom.Neighbors[jj].AngleStart = len(atom.AngleCos)
			for kk := jj + 1; kk < n; kk++ {
				atom.AngleCos = append(atom.AngleCos,
					atom.Neighbors[jj].Dir.Dot(atom.Neighbors[kk].Dir))
			}
		}
		cfg.Atoms[i] = atom
	}
	return cfg
}

func TestPairPassDimer(t *testing.T) {
	tab := testTable(t, 0)
	r := 2.35
	cfg := cluster([]Vec3{{}, {X: r}}, 4.0)

	acc := NewAccumulator(2)
	acc.Reset(2)
	PairPass(&cfg, tab, acc, true, false)

	// two directed entries, half the pair value each
	want := EvalPair(tab.Pair(0), r, 1.0/r, true)
	if math.Abs(acc.Energy-want.Val) > 1e-12*math.Abs(want.Val) {
		t.Fatalf("dimer energy: got %g want %g", acc.Energy, want.Val)
	}

	f0, f1 := acc.Forces[0], acc.Forces[1]
	if math.Abs(f0.X+f1.X) > 1e-12 || f0.Y != 0 || f1.Y != 0 {
		t.Fatalf("forces not equal and opposite: %+v %+v", f0, f1)
	}
	if math.Abs(f0.X-want.Grad) > 1e-12*math.Abs(want.Grad) {
		t.Fatalf("force on atom 0: got %g want %g", f0.X, want.Grad)
	}
}

func TestPairPassSkipsBeyondCutoff(t *testing.T) {
	tab := testTable(t, 0)
	cfg := cluster([]Vec3{{}, {X: 3.8}}, 10.0) // beyond a1 = 3.7712

	acc := NewAccumulator(2)
	acc.Reset(2)
	PairPass(&cfg, tab, acc, true, false)

	if acc.Energy != 0 {
		t.Fatalf("expected zero energy beyond cutoff, got %g", acc.Energy)
	}
}

func TestPairPassSelfImageHalved(t *testing.T) {
	tab := testTable(t, 0)
	r := 2.35

	dimer := cluster([]Vec3{{}, {X: r}}, 4.0)
	acc := NewAccumulator(2)
	acc.Reset(2)
	PairPass(&dimer, tab, acc, true, false)
	dimerEnergy := acc.Energy

	// one atom seeing its own periodic image at the same distance
	image := Configuration{
		Atoms: []Atom{{
			Contributing: true,
			Neighbors: []Neighbor{{
				Index: 0,
				R:     r,
				InvR:  1.0 / r,
				Dir:   Vec3{X: 1},
				Disp:  Vec3{X: r},
			}},
		}},
		Weight:    1.0,
		UseForces: true,
	}
	acc.Reset(1)
	PairPass(&image, tab, acc, true, false)

	want := dimerEnergy / 4 // one directed entry instead of two, halved again
	if math.Abs(acc.Energy-want) > 1e-12*math.Abs(want) {
		t.Fatalf("self-image energy: got %g want %g", acc.Energy, want)
	}
}

func TestTriplePassTrimerEnergy(t *testing.T) {
	lambda := 45.53
	tab := testTable(t, lambda)
	r := 2.35
	h := r * math.Sqrt(3) / 2
	cfg := cluster([]Vec3{{}, {X: r}, {X: r / 2, Y: h}}, 4.0)

	for i := range cfg.Atoms {
		RefreshEnvelopes(&cfg.Atoms[i], tab)
	}
	acc := NewAccumulator(3)
	acc.Reset(3)
	TriplePass(&cfg, tab, acc, true, false)

	// equilateral: every vertex angle has cos = 1/2, all sides length r
	f, _ := Envelope(tab.Envelope(0), r)
	c := 0.5 + 1.0/3.0
	want := 3 * lambda * f * f * c * c
	if math.Abs(acc.Energy-want) > 1e-12*want {
		t.Fatalf("trimer energy: got %g want %g", acc.Energy, want)
	}
}

func TestTriplePassConservesMomentum(t *testing.T) {
	tab := testTable(t, 45.53)
	// scalene triangle, nothing cancels by symmetry
	cfg := cluster([]Vec3{{}, {X: 2.2, Y: 0.3}, {X: 0.9, Y: 2.6, Z: 0.4}}, 4.0)

	for i := range cfg.Atoms {
		RefreshEnvelopes(&cfg.Atoms[i], tab)
	}
	acc := NewAccumulator(3)
	acc.Reset(3)
	TriplePass(&cfg, tab, acc, true, false)

	if acc.Energy == 0 {
		t.Fatal("expected nonzero three-body energy")
	}
	var total Vec3
	for _, f := range acc.Forces {
		total = total.Add(f)
	}
	if math.Abs(total.X) > 1e-12 || math.Abs(total.Y) > 1e-12 || math.Abs(total.Z) > 1e-12 {
		t.Fatalf("net force not zero: %+v", total)
	}
}

func TestTriplePassZeroLambda(t *testing.T) {
	tab := testTable(t, 0)
	r := 2.35
	cfg := cluster([]Vec3{{}, {X: r}, {X: r / 2, Y: r}}, 4.0)

	for i := range cfg.Atoms {
		RefreshEnvelopes(&cfg.Atoms[i], tab)
	}
	acc := NewAccumulator(3)
	acc.Reset(3)
	TriplePass(&cfg, tab, acc, true, false)

	if acc.Energy != 0 {
		t.Fatalf("expected zero energy with zero lambda, got %g", acc.Energy)
	}
	for i, f := range acc.Forces {
		if f != (Vec3{}) {
			t.Fatalf("atom %d force nonzero: %+v", i, f)
		}
	}
}

func TestAccumulatorResetReusesStorage(t *testing.T) {
	acc := NewAccumulator(5)
	acc.Energy = 3
	acc.Forces[2] = Vec3{X: 1}
	acc.Stress[4] = 2

	acc.Reset(3)
	if len(acc.Forces) != 3 {
		t.Fatalf("expected 3 forces after reset, got %d", len(acc.Forces))
	}
	if acc.Energy != 0 || acc.Stress[4] != 0 || acc.Forces[2] != (Vec3{}) {
		t.Fatal("reset did not zero state")
	}
}
