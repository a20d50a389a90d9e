package fixture

import (
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// #region demo

// Demo returns a small single-species silicon-like fixture: a dimer, an
// equilateral trimer, and a five-atom tetrahedral cluster, with starting
// parameters in eV/Angstrom units.
func Demo() *Fixture {
	layout := params.Layout{NTypes: 1}
	vec := make([]float64, layout.Size())

	// pair column 0: A, B, p, q, delta, a1
	vec[0] = 177.3
	vec[1] = 15.29
	vec[2] = 4.0
	vec[3] = 0.0
	vec[4] = 2.0951
	vec[5] = 3.7712
	// envelope column 0: gamma, a2
	eb := layout.EnvelopeBase(0)
	vec[eb] = 2.5141
	vec[eb+1] = 3.7712
	// single lambda
	vec[layout.LambdaIndex(0, 0, 0)] = 45.53

	const bond = 2.35
	const height = bond * 0.8660254037844386 // equilateral triangle height

	return &Fixture{
		Description: "silicon-like demo clusters",
		NTypes:      1,
		Params:      vec,
		Configurations: []FixtureConfiguration{
			{
				Positions: [][3]float64{{0, 0, 0}, {bond, 0, 0}},
				Types:     []int{0, 0},
				Cutoff:    4.0,
				Weight:    1.0,
				Volume:    1000.0,
				UseForces: true,
				RefEnergy: -1.08,
				RefForces: [][3]float64{{0, 0, 0}, {0, 0, 0}},
			},
			{
				Positions: [][3]float64{
					{0, 0, 0},
					{bond, 0, 0},
					{bond / 2, height, 0},
				},
				Types:     []int{0, 0, 0},
				Cutoff:    4.0,
				Weight:    1.0,
				Volume:    1000.0,
				UseForces: true,
				RefEnergy: -1.61,
				RefForces: [][3]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
			},
			{
				// central atom plus four tetrahedral sites at the silicon
				// bond length
				Positions: [][3]float64{
					{0, 0, 0},
					{1.3568, 1.3568, 1.3568},
					{1.3568, -1.3568, -1.3568},
					{-1.3568, 1.3568, -1.3568},
					{-1.3568, -1.3568, 1.3568},
				},
				Types:     []int{0, 0, 0, 0, 0},
				Cutoff:    4.0,
				Weight:    1.0,
				Volume:    1000.0,
				UseForces: true,
				UseStress: true,
				RefEnergy: -2.17,
				RefForces: [][3]float64{
					{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
				},
			},
		},
	}
}

// #endregion demo
