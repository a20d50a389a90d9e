package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/objective"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a dataset fixture: the
// configurations, their reference data, and an initial parameter vector.
type Fixture struct {
	Description    string                 `json:"description"`
	NTypes         int                    `json:"ntypes"`
	Params         []float64              `json:"params"`
	Configurations []FixtureConfiguration `json:"configurations"`
}

// FixtureConfiguration mirrors one ClusterSpec plus its reference data
// with JSON tags.
type FixtureConfiguration struct {
	Positions    [][3]float64   `json:"positions"`
	Types        []int          `json:"types"`
	Images       []FixtureImage `json:"images,omitempty"`
	Cutoff       float64        `json:"cutoff"`
	Weight       float64        `json:"weight"`
	Volume       float64        `json:"volume"`
	UseForces    bool           `json:"use_forces"`
	UseStress    bool           `json:"use_stress"`
	Contributing []bool         `json:"contributing,omitempty"`
	RefEnergy    float64        `json:"ref_energy"`
	RefForces    [][3]float64   `json:"ref_forces,omitempty"`
	RefStress    [6]float64     `json:"ref_stress,omitempty"`
}

// FixtureImage mirrors a periodic self-image entry with JSON tags.
type FixtureImage struct {
	Atom int        `json:"atom"`
	Disp [3]float64 `json:"disp"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToClusterSpec converts a FixtureConfiguration to a builder ClusterSpec.
func (fc *FixtureConfiguration) ToClusterSpec() ClusterSpec {
	spec := ClusterSpec{
		Positions:    make([]potential.Vec3, len(fc.Positions)),
		Types:        fc.Types,
		Cutoff:       fc.Cutoff,
		Weight:       fc.Weight,
		Volume:       fc.Volume,
		UseForces:    fc.UseForces,
		UseStress:    fc.UseStress,
		Contributing: fc.Contributing,
	}
	for i, p := range fc.Positions {
		spec.Positions[i] = potential.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	for _, img := range fc.Images {
		spec.Images = append(spec.Images, Image{
			Atom: img.Atom,
			Disp: potential.Vec3{X: img.Disp[0], Y: img.Disp[1], Z: img.Disp[2]},
		})
	}
	return spec
}

// Materialize builds the dataset, reference baseline, and parameter vector
// a fixture describes. The parameter vector length is validated against the
// layout implied by NTypes.
func (f *Fixture) Materialize() (*potential.Dataset, *objective.Buffer, []float64, error) {
	layout := params.Layout{NTypes: f.NTypes}
	if len(f.Params) != layout.Size() {
		return nil, nil, nil, fmt.Errorf("fixture: %d params, layout for %d types wants %d",
			len(f.Params), f.NTypes, layout.Size())
	}

	specs := make([]ClusterSpec, len(f.Configurations))
	for i := range f.Configurations {
		specs[i] = f.Configurations[i].ToClusterSpec()
	}
	ds, err := BuildDataset(f.NTypes, specs)
	if err != nil {
		return nil, nil, nil, err
	}

	baseline := NewBaseline(ds)
	for i := range f.Configurations {
		fc := &f.Configurations[i]
		cfg := &ds.Configurations[i]
		baseline.Energies()[i] = fc.RefEnergy
		if len(fc.RefForces) > 0 {
			if len(fc.RefForces) != len(cfg.Atoms) {
				return nil, nil, nil, fmt.Errorf("configuration %d: %d reference forces for %d atoms",
					i, len(fc.RefForces), len(cfg.Atoms))
			}
			for a, rf := range fc.RefForces {
				copy(baseline.ForceAt(cfg.FirstAtom+a), rf[:])
			}
		}
		copy(baseline.StressAt(i), fc.RefStress[:])
	}
	ApplyReferenceForces(ds, baseline)

	vec := make([]float64, len(f.Params))
	copy(vec, f.Params)
	return ds, baseline, vec, nil
}

// #endregion fixture-loader
