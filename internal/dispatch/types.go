// Package dispatch owns the evaluation loop: one coordinator and a fixed
// set of workers repeatedly evaluate the same objective over a static
// partition of the dataset, coordinated only through explicit broadcast,
// reduce, and gather steps at iteration boundaries.
package dispatch

import "github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"

// #region control-code
// Code is the per-call control code supplied alongside the parameter
// vector. Unrecognized values behave like Evaluate.
type Code int

const (
	// Evaluate runs a normal objective evaluation.
	Evaluate Code = 0
	// Terminate makes every worker exit its run loop without computing.
	Terminate Code = 1
	// Resync marks the parameter vector as structurally changed; workers
	// refresh their parameter views before evaluating.
	Resync Code = 2
)

func (c Code) String() string {
	switch c {
	case Terminate:
		return "terminate"
	case Resync:
		return "resync"
	default:
		return "evaluate"
	}
}

// #endregion control-code

// NaNSentinel is returned in place of a not-a-number global sum, so the
// optimizer treats the parameter point as maximally unfavorable instead of
// propagating NaN.
const NaNSentinel = 1e30

// #region partition
// Partition is one worker's statically assigned contiguous run of
// configurations and the matching atom range, registered once at loop
// construction and reused as gather offsets every call.
type Partition struct {
	FirstConf int
	NConf     int
	FirstAtom int
	NAtoms    int
}

// SplitDataset splits the dataset's configurations into n contiguous
// partitions, distributing the remainder over the leading partitions.
func SplitDataset(ds *potential.Dataset, n int) []Partition {
	nconf := len(ds.Configurations)
	base, rem := nconf/n, nconf%n

	parts := make([]Partition, n)
	first := 0
	for i := range parts {
		count := base
		if i < rem {
			count++
		}
		p := Partition{FirstConf: first, NConf: count}
		if count > 0 {
			firstCfg := &ds.Configurations[first]
			lastCfg := &ds.Configurations[first+count-1]
			p.FirstAtom = firstCfg.FirstAtom
			p.NAtoms = lastCfg.FirstAtom + len(lastCfg.Atoms) - p.FirstAtom
		}
		parts[i] = p
		first += count
	}
	return parts
}

// #endregion partition

// #region recorder
// Recorder receives one entry per coordinator evaluation. Implementations
// must not block; recording failures are logged and otherwise ignored.
type Recorder interface {
	Record(call int64, code Code, objective, penalty float64, wasNaN bool) error
}

// #endregion recorder
