package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/fixture"
)

// #region main

func main() {
	outPath := flag.String("out", "", "output fixture JSON path")
	inPath := flag.String("in", "", "validate and re-export an existing fixture instead of the demo")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--in existing.json]")
		os.Exit(2)
	}

	if err := run(*inPath, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(inPath, outPath string) error {
	var f *fixture.Fixture
	if inPath != "" {
		loaded, err := fixture.LoadFixture(inPath)
		if err != nil {
			return err
		}
		f = loaded
	} else {
		f = fixture.Demo()
	}

	// Materialize proves the fixture is internally consistent before it is
	// written out.
	ds, _, vec, err := f.Materialize()
	if err != nil {
		return fmt.Errorf("fixture is not materializable: %w", err)
	}

	if err := fixture.SaveFixture(outPath, f); err != nil {
		return err
	}

	fmt.Printf("Wrote fixture to %s (%d configurations, %d atoms, %d parameters)\n",
		outPath, len(ds.Configurations), ds.NAtoms, len(vec))
	return nil
}

// #endregion run
