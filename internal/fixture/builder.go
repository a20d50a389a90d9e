// Package fixture builds small datasets for tests and the CLI tools. It
// plays the role of the external neighbor-list collaborator: full directed
// neighbor lists, direction cosines, pair columns, and angular caches are
// derived here, once, before any evaluation.
package fixture

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/objective"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"
)

// #region cluster-spec

// Image makes an atom see its own periodic image at the given displacement,
// yielding a self-interaction neighbor entry.
type Image struct {
	Atom int
	Disp potential.Vec3
}

// ClusterSpec describes one non-periodic cluster configuration.
type ClusterSpec struct {
	Positions []potential.Vec3
	Types     []int
	Images    []Image

	// Cutoff is the neighbor search radius; it must cover the largest a2
	// any candidate parameter vector will use.
	Cutoff float64

	Weight    float64
	Volume    float64
	UseForces bool
	UseStress bool

	// Contributing marks atoms for the contribution mask; nil means all.
	Contributing []bool
}

// #endregion cluster-spec

// #region build-configuration

// BuildConfiguration derives neighbor lists and angular caches for one
// cluster. Index/FirstAtom bookkeeping is left to Dataset.Recount.
func BuildConfiguration(spec ClusterSpec, layout params.Layout) (potential.Configuration, error) {
	n := len(spec.Positions)
	if len(spec.Types) != n {
		return potential.Configuration{}, fmt.Errorf("fixture: %d positions but %d types", n, len(spec.Types))
	}
	if spec.Cutoff <= 0 {
		return potential.Configuration{}, fmt.Errorf("fixture: cutoff must be positive")
	}

	cfg := potential.Configuration{
		Atoms:     make([]potential.Atom, n),
		Weight:    spec.Weight,
		Volume:    spec.Volume,
		UseForces: spec.UseForces,
		UseStress: spec.UseStress,
	}

	for i := 0; i < n; i++ {
		atom := potential.Atom{Type: spec.Types[i], Contributing: true}
		if spec.Contributing != nil {
			atom.Contributing = spec.Contributing[i]
		}

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			disp := spec.Positions[j].Sub(spec.Positions[i])
			if neigh, ok := makeNeighbor(j, spec.Types[j], spec.Types[i], disp, spec.Cutoff, layout); ok {
				atom.Neighbors = append(atom.Neighbors, neigh)
			}
		}
		for _, img := range spec.Images {
			if img.Atom != i {
				continue
			}
			if neigh, ok := makeNeighbor(i, spec.Types[i], spec.Types[i], img.Disp, spec.Cutoff, layout); ok {
				atom.Neighbors = append(atom.Neighbors, neigh)
			}
		}

		buildAngleCache(&atom)
		cfg.Atoms[i] = atom
	}

	return cfg, nil
}

func makeNeighbor(index, ntype, ctype int, disp potential.Vec3, cutoff float64, layout params.Layout) (potential.Neighbor, bool) {
	r := math.Sqrt(disp.Dot(disp))
	if r <= 0 || r >= cutoff {
		return potential.Neighbor{}, false
	}
	invR := 1.0 / r
	return potential.Neighbor{
		Index: index,
		Type:  ntype,
		Col:   layout.PairColumn(ctype, ntype),
		R:     r,
		InvR:  invR,
		Dir:   disp.Scale(invR),
		Disp:  disp,
	}, true
}

func buildAngleCache(atom *potential.Atom) {
	n := len(atom.Neighbors)
	if n < 2 {
		return
	}
	atom.AngleCos = make([]float64, 0, n*(n-1)/2)
	for j := 0; j < n-1; j++ {
		atom.Neighbors[j].AngleStart = len(atom.AngleCos)
		for k := j + 1; k < n; k++ {
			atom.AngleCos = append(atom.AngleCos, atom.Neighbors[j].Dir.Dot(atom.Neighbors[k].Dir))
		}
	}
}

// #endregion build-configuration

// #region build-dataset

// BuildDataset assembles configurations into a dataset with consistent
// Index/FirstAtom bookkeeping.
func BuildDataset(ntypes int, specs []ClusterSpec) (*potential.Dataset, error) {
	layout := params.Layout{NTypes: ntypes}
	ds := &potential.Dataset{NTypes: ntypes}
	for i, spec := range specs {
		cfg, err := BuildConfiguration(spec, layout)
		if err != nil {
			return nil, fmt.Errorf("configuration %d: %w", i, err)
		}
		ds.Configurations = append(ds.Configurations, cfg)
	}
	ds.Recount()
	return ds, nil
}

// NewBaseline allocates a zeroed reference buffer matching the dataset.
func NewBaseline(ds *potential.Dataset) *objective.Buffer {
	return objective.NewBuffer(ds.NAtoms, len(ds.Configurations))
}

// ApplyReferenceForces copies per-atom reference force magnitudes from the
// baseline onto the atoms, for the adaptive force weighting toggle.
func ApplyReferenceForces(ds *potential.Dataset, baseline *objective.Buffer) {
	for c := range ds.Configurations {
		cfg := &ds.Configurations[c]
		for a := range cfg.Atoms {
			f := baseline.ForceAt(cfg.FirstAtom + a)
			cfg.Atoms[a].AbsForce = math.Sqrt(f[0]*f[0] + f[1]*f[1] + f[2]*f[2])
		}
	}
}

// #endregion build-dataset
