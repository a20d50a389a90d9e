package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/config"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/dispatch"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/fitlog"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/fixture"
	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/params"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to dataset fixture JSON")
	demo := flag.Bool("demo", false, "use the built-in demo fixture")
	configPath := flag.String("config", "", "path to fit config YAML (optional)")
	dbPath := flag.String("db", "", "path to fitlog.db for evaluation provenance (optional)")
	workers := flag.Int("workers", 0, "override worker count (>1 enables distributed mode)")
	calls := flag.Int("calls", 1, "number of evaluation calls to run")
	flag.Parse()

	if (*fixturePath == "" && !*demo) || (*fixturePath != "" && *demo) {
		fmt.Fprintln(os.Stderr, "usage: evaluate --fixture path/to/fixture.json [--config fit.yaml] [--db fitlog.db] [--workers N] [--calls N]")
		fmt.Fprintln(os.Stderr, "       evaluate --demo [--config fit.yaml] [--db fitlog.db] [--workers N] [--calls N]")
		os.Exit(2)
	}
	if *calls < 1 {
		fmt.Fprintln(os.Stderr, "error: --calls must be >= 1")
		os.Exit(2)
	}

	if err := run(*fixturePath, *demo, *configPath, *dbPath, *workers, *calls); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(fixturePath string, demo bool, configPath, dbPath string, workers, calls int) error {
	var f *fixture.Fixture
	if demo {
		f = fixture.Demo()
	} else {
		loaded, err := fixture.LoadFixture(fixturePath)
		if err != nil {
			return err
		}
		f = loaded
	}

	ds, baseline, vec, err := f.Materialize()
	if err != nil {
		return err
	}
	layout := params.Layout{NTypes: f.NTypes}

	fc := config.DefaultFitConfig()
	if configPath != "" {
		fc, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if workers > 0 {
		fc.Workers = workers
		fc.Distributed = workers > 1
	}

	loop, err := dispatch.New(fc, ds, layout, baseline, params.NewBounds(layout))
	if err != nil {
		return err
	}

	if dbPath != "" {
		store, err := fitlog.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		loop.SetRecorder(store)
		log.Printf("[EVALUATE] recording run %s to %s", store.RunID(), dbPath)
	}

	fmt.Printf("%s: %d configurations, %d atoms, %d parameters\n",
		f.Description, len(ds.Configurations), ds.NAtoms, len(vec))

	var sum float64
	for i := 0; i < calls; i++ {
		sum, _, err = loop.Call(vec, dispatch.Evaluate)
		if err != nil {
			return err
		}
	}

	printSummary(loop, sum, calls)

	if _, _, err := loop.Call(nil, dispatch.Terminate); err != nil {
		return err
	}
	return nil
}

// #endregion run

// #region output

func printSummary(loop *dispatch.Loop, sum float64, calls int) {
	out := loop.Output()

	fmt.Printf("\nObjective: %.8g  (%d call(s))\n", sum, calls)

	fmt.Printf("\n%-6s  %14s  %14s\n", "Conf", "Energy", "Stress xx")
	for c := 0; c < out.NConf(); c++ {
		fmt.Printf("%-6d  %14.6f  %14.6f\n", c, out.Energies()[c], out.StressAt(c)[0])
	}

	worst, worstAtom := 0.0, -1
	for a := 0; a < out.NAtoms(); a++ {
		fv := out.ForceAt(a)
		mag := math.Sqrt(fv[0]*fv[0] + fv[1]*fv[1] + fv[2]*fv[2])
		if mag > worst {
			worst, worstAtom = mag, a
		}
	}
	if worstAtom >= 0 {
		fmt.Printf("\nLargest force deviation: %.6g (atom %d)\n", worst, worstAtom)
	}
}

// #endregion output
