package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/fitlog"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fitlog.db")
	last := flag.Int("last", 20, "show N most recent evaluations")
	run := flag.String("run", "", "show all evaluations of one run")
	best := flag.Bool("best", false, "with --run: show only the best evaluation")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*best && *run == "") {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/fitlog.db [--last N] [--run id [--best]] [--json]")
		os.Exit(2)
	}

	store, err := fitlog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *best:
		err = runBestMode(store, *run, *jsonOut)
	case *run != "":
		err = runRunMode(store, *run, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region modes

type evalRow struct {
	RunID     string  `json:"run_id"`
	CallNum   int64   `json:"call_num"`
	Code      string  `json:"control_code"`
	Objective float64 `json:"objective"`
	Penalty   float64 `json:"penalty"`
	WasNaN    bool    `json:"was_nan"`
	CreatedAt string  `json:"created_at"`
}

func toRow(ev fitlog.Evaluation) evalRow {
	return evalRow{
		RunID:     ev.RunID,
		CallNum:   ev.CallNum,
		Code:      ev.Code,
		Objective: ev.Objective,
		Penalty:   ev.Penalty,
		WasNaN:    ev.WasNaN,
		CreatedAt: ev.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func runListMode(store *fitlog.Store, last int, jsonOut bool) error {
	evals, err := store.Recent(last)
	if err != nil {
		return err
	}
	if len(evals) == 0 {
		fmt.Fprintln(os.Stderr, "no evaluations found")
		return nil
	}
	return printEvals(evals, jsonOut)
}

func runRunMode(store *fitlog.Store, runID string, jsonOut bool) error {
	evals, err := store.Run(runID)
	if err != nil {
		return err
	}
	if len(evals) == 0 {
		fmt.Fprintf(os.Stderr, "no evaluations found for run %s\n", runID)
		return nil
	}
	return printEvals(evals, jsonOut)
}

func runBestMode(store *fitlog.Store, runID string, jsonOut bool) error {
	ev, err := store.Best(runID)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(toRow(ev))
	}
	fmt.Printf("Run:       %s\n", ev.RunID)
	fmt.Printf("Call:      %d\n", ev.CallNum)
	fmt.Printf("Objective: %.8g\n", ev.Objective)
	fmt.Printf("Penalty:   %.8g\n", ev.Penalty)
	fmt.Printf("Recorded:  %s\n", ev.CreatedAt.Format("2006-01-02T15:04:05Z"))
	return nil
}

// #endregion modes

// #region output

func printEvals(evals []fitlog.Evaluation, jsonOut bool) error {
	rows := make([]evalRow, len(evals))
	for i, ev := range evals {
		rows[i] = toRow(ev)
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %6s  %-10s  %14s  %12s  %-5s  %s\n",
		"Run", "Call", "Code", "Objective", "Penalty", "NaN", "Time")
	fmt.Printf("%-10s+-%6s+-%-10s+-%14s+-%12s+-%-5s+-%s\n",
		"----------", "------", "----------", "--------------", "------------", "-----", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %6d  %-10s  %14.6g  %12.6g  %-5v  %s\n",
			shortID(r.RunID), r.CallNum, r.Code, r.Objective, r.Penalty, r.WasNaN, r.CreatedAt)
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
