package dispatch

import (
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/config"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/objective"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/potential"
)

// #region loop-struct

// Loop is the persistent evaluation loop. The coordinator (the caller of
// Call) owns partition 0 and evaluates it inline; the remaining partitions
// run on worker goroutines that stay blocked between calls awaiting the
// next broadcast.
//
// Worker isolation comes from the static partitioning: a configuration,
// its atoms, and its per-evaluation envelope caches are touched only by
// the partition owner, so no locking is needed.
type Loop struct {
	opts    objective.Options
	ds      *potential.Dataset
	layout  params.Layout
	bounds  *params.Bounds          // optional; nil skips clamping
	penalty func([]float64) float64 // optional override of bounds.Penalty

	out      *objective.Buffer
	baseline *objective.Buffer

	coordPart  Partition
	coordTable *params.Table

	workers []*worker
	grp     *errgroup.Group

	rec        Recorder
	calls      int64
	terminated bool
}

type command struct {
	code Code
	vec  []float64 // coordinator-owned; workers copy, never alias
}

type result struct {
	sum float64
}

type worker struct {
	id    int
	part  Partition
	table *params.Table
	vec   []float64
	buf   *objective.Buffer

	cmds    chan command
	results chan result
}

// #endregion loop-struct

// #region constructor

// New builds the evaluation loop. baseline supplies the read-only
// reference data in the output layout; bounds may be nil to disable
// clamping and the default penalty.
//
// With fc.Distributed false or fc.Workers <= 1 the loop degenerates to a
// single implicit worker that is also the coordinator: no broadcast,
// reduce, or gather runs.
func New(fc config.FitConfig, ds *potential.Dataset, layout params.Layout, baseline *objective.Buffer, bounds *params.Bounds) (*Loop, error) {
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	nconf := len(ds.Configurations)
	if baseline.NAtoms() != ds.NAtoms || baseline.NConf() != nconf {
		return nil, fmt.Errorf("dispatch: baseline sized for %d atoms/%d configurations, dataset has %d/%d",
			baseline.NAtoms(), baseline.NConf(), ds.NAtoms, nconf)
	}
	if bounds != nil {
		if err := bounds.Validate(layout.Size()); err != nil {
			return nil, err
		}
	}

	nworkers := 1
	if fc.Distributed && fc.Workers > 1 {
		nworkers = fc.Workers
	}
	parts := SplitDataset(ds, nworkers)

	l := &Loop{
		opts:       fc.ObjectiveOptions(),
		ds:         ds,
		layout:     layout,
		bounds:     bounds,
		out:        objective.NewBuffer(ds.NAtoms, nconf),
		baseline:   baseline,
		coordPart:  parts[0],
		coordTable: params.NewTable(layout),
	}

	if nworkers > 1 {
		l.grp = &errgroup.Group{}
		for i := 1; i < nworkers; i++ {
			w := &worker{
				id:      i,
				part:    parts[i],
				table:   params.NewTable(layout),
				buf:     objective.NewBuffer(ds.NAtoms, nconf),
				cmds:    make(chan command),
				results: make(chan result),
			}
			l.workers = append(l.workers, w)
			l.grp.Go(func() error {
				return w.run(ds, l.opts, baseline)
			})
		}
		log.Printf("[DISPATCH] started %d workers over %d configurations", nworkers, nconf)
	}

	return l, nil
}

// Output returns the coordinator's gathered output buffer.
func (l *Loop) Output() *objective.Buffer {
	return l.out
}

// Calls returns the number of completed objective evaluations.
func (l *Loop) Calls() int64 {
	return l.calls
}

// SetRecorder attaches an evaluation recorder.
func (l *Loop) SetRecorder(rec Recorder) {
	l.rec = rec
}

// SetPenalty replaces the default bounds penalty with a caller-supplied
// punishment term, evaluated on the raw vector before clamping.
func (l *Loop) SetPenalty(fn func([]float64) float64) {
	l.penalty = fn
}

// #endregion constructor

// #region call

// Call is the per-iteration entry point invoked by the optimizer.
// The objective is returned with ok true for Evaluate and Resync calls;
// Terminate shuts the workers down and returns ok false. After Terminate
// the loop is spent.
//
// Evaluate path: the coordinator computes the out-of-bounds penalty and
// clamps the vector once, broadcasts vector and code to all workers,
// evaluates its own partition, reduces the local sums, gathers the worker
// buffers into its output buffer, and converts a NaN global sum into the
// large finite sentinel.
func (l *Loop) Call(vec []float64, code Code) (float64, bool, error) {
	if l.terminated {
		return 0, false, fmt.Errorf("dispatch: loop already terminated")
	}

	if code == Terminate {
		for _, w := range l.workers {
			w.cmds <- command{code: Terminate}
		}
		if l.grp != nil {
			if err := l.grp.Wait(); err != nil {
				return 0, false, err
			}
		}
		l.terminated = true
		return 0, false, nil
	}

	if len(vec) != l.layout.Size() {
		return 0, false, fmt.Errorf("dispatch: vector has %d slots, layout needs %d", len(vec), l.layout.Size())
	}

	// validation, coordinator only
	penalty := 0.0
	if l.penalty != nil {
		penalty = l.penalty(vec)
	} else if l.bounds != nil {
		penalty = l.bounds.Penalty(vec)
	}
	if l.bounds != nil {
		l.bounds.Clamp(vec)
	}

	// broadcast: all workers observe the identical clamped vector and code
	for _, w := range l.workers {
		w.cmds <- command{code: code, vec: vec}
	}

	// the coordinator resolves views against the caller's vector directly
	if err := l.coordTable.Bind(vec); err != nil {
		return 0, false, err
	}

	localSums := make([]float64, 1+len(l.workers))
	localSums[0] = objective.EvaluatePartition(l.ds, l.coordPart.FirstConf, l.coordPart.NConf,
		l.coordTable, l.opts, l.out, l.baseline)

	// reduce
	for i, w := range l.workers {
		localSums[1+i] = (<-w.results).sum
	}
	sum := floats.Sum(localSums) + penalty

	// gather: coordinator data is already in place, worker partitions are
	// copied by their pre-registered offsets
	for _, w := range l.workers {
		l.out.CopyFrom(w.buf, w.part.FirstAtom, w.part.NAtoms, w.part.FirstConf, w.part.NConf)
	}

	l.calls++
	wasNaN := math.IsNaN(sum)
	if wasNaN {
		sum = NaNSentinel
	}
	if l.rec != nil {
		if err := l.rec.Record(l.calls, code, sum, penalty, wasNaN); err != nil {
			log.Printf("[DISPATCH] failed to record evaluation %d: %v", l.calls, err)
		}
	}
	return sum, true, nil
}

// #endregion call

// #region worker-loop

// run is one worker's persistent loop: awaiting control, refreshing
// parameter views on resync, evaluating its partition, and reporting the
// local sum. Terminate exits without touching the worker's buffer.
func (w *worker) run(ds *potential.Dataset, opts objective.Options, baseline *objective.Buffer) error {
	for cmd := range w.cmds {
		if cmd.code == Terminate {
			return nil
		}
		if cmd.code == Resync || w.vec == nil || len(w.vec) != len(cmd.vec) {
			w.vec = make([]float64, len(cmd.vec))
			if err := w.table.Bind(w.vec); err != nil {
				return fmt.Errorf("worker %d: %w", w.id, err)
			}
		}
		copy(w.vec, cmd.vec)

		sum := objective.EvaluatePartition(ds, w.part.FirstConf, w.part.NConf,
			w.table, opts, w.buf, baseline)
		w.results <- result{sum: sum}
	}
	return nil
}

// #endregion worker-loop
