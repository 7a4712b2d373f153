package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
)

// printReport writes the run statistics and the per-unit breakdown.
func printReport(w io.Writer, runID string, stats core.Stats, config *latency.TimingConfig) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Simulation Report (run %s)", runID)
	summary.AppendRows([]table.Row{
		{"Fast-forwarded uops", stats.FastForwarded},
		{"Warm-up cycles", stats.WarmUpCycles},
		{"Detailed cycles", stats.DetailedCycles},
		{"Measured cycles", stats.MeasuredCycles},
		{"Dispatched", stats.Dispatched},
		{"Retired", stats.Retired},
		{"IPC", fmt.Sprintf("%.4f", stats.IPC())},
		{"CPI", fmt.Sprintf("%.4f", stats.CPI())},
		{"Dispatch stalls", stats.DispatchStalls},
		{"Max pending events", stats.Pipeline.MaxPendingEvents},
		{"Simulated time (s)", fmt.Sprintf("%.9f", float64(stats.SimulatedTime))},
		{"Dispatch width", config.DispatchWidth},
		{"CDB width", config.CDBWidth},
	})
	summary.Render()

	units := table.NewWriter()
	units.SetOutputMirror(w)
	units.AppendHeader(table.Row{"FU", "Units", "Stations", "Dispatched", "Issued", "Retired", "Stalls"})
	for _, t := range insts.FUTypes {
		u := config.Unit(t)
		fu := stats.Pipeline.FU[t]
		units.AppendRow(table.Row{
			t, u.NumUnits, u.NumStations, fu.Dispatched, fu.Issued, fu.Retired, fu.Stalls,
		})
	}
	units.Render()
}
