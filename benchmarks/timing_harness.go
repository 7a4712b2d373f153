// Package benchmarks provides synthetic micro-op kernels and a harness that
// runs them through the scheduler.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the number of cycles until the last result retired
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// UopsRetired is the number of completed micro-ops
	UopsRetired uint64 `json:"uops_retired"`

	// CPI is cycles per micro-op
	CPI float64 `json:"cpi"`

	// IPC is micro-ops per cycle
	IPC float64 `json:"ipc"`

	// DispatchStalls counts dispatch attempts rejected by a full pool
	DispatchStalls uint64 `json:"dispatch_stalls"`

	// MaxPendingEvents is the deepest the event queue got
	MaxPendingEvents int `json:"max_pending_events"`

	// Retired breaks UopsRetired down by functional unit type
	Retired map[string]uint64 `json:"retired_by_fu"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single micro-op kernel.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Uops is the micro-op stream, in program order
	Uops []insts.Uop
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the processor configuration every kernel runs on
	Timing *latency.TimingConfig

	// CheckInvariants verifies the scheduler state at every cycle
	CheckInvariants bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration: a modest
// out-of-order machine with four stations per class, two integer ALUs and
// two-wide dispatch and write-back.
func DefaultConfig() HarnessConfig {
	timing := latency.DefaultTimingConfig()
	for _, t := range insts.FUTypes {
		timing.Unit(t).NumStations = 4
	}
	timing.IALU.NumUnits = 2
	timing.DispatchWidth = 2
	timing.CDBWidth = 2

	return HarnessConfig{
		Timing: timing,
		Output: os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.RunBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// RunBenchmark executes a single benchmark on a fresh core and drains it.
func (h *Harness) RunBenchmark(bench Benchmark) BenchmarkResult {
	var pipeOpts []pipeline.PipelineOption
	if h.config.CheckInvariants {
		pipeOpts = append(pipeOpts, pipeline.WithInvariantChecks())
	}

	c := core.NewCore(
		core.ClockConfig{Freq: 1 * sim.GHz},
		core.WithTimingConfig(h.config.Timing.Clone()),
		core.WithPipelineOptions(pipeOpts...),
	)

	start := time.Now()
	for _, uop := range bench.Uops {
		c.SimUop(uop)
	}
	c.Drain()
	wallTime := time.Since(start)

	stats := c.Stats()
	result := BenchmarkResult{
		Name:             bench.Name,
		Description:      bench.Description,
		SimulatedCycles:  stats.DetailedCycles,
		UopsRetired:      stats.Retired,
		CPI:              stats.CPI(),
		IPC:              stats.IPC(),
		DispatchStalls:   stats.DispatchStalls,
		MaxPendingEvents: stats.Pipeline.MaxPendingEvents,
		Retired:          make(map[string]uint64),
		WallTime:         wallTime,
	}
	for _, t := range insts.FUTypes {
		if n := stats.Pipeline.FU[t].Retired; n > 0 {
			result.Retired[t.String()] = n
		}
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d uops in %d cycles\n",
			bench.Name, result.UopsRetired, result.SimulatedCycles)
	}

	return result
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.SetTitle("Tomasulo Timing Benchmark Results")
	t.AppendHeader(table.Row{
		"Benchmark", "Cycles", "Uops", "CPI", "IPC", "Stalls", "Max Events", "Wall Time",
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name,
			r.SimulatedCycles,
			r.UopsRetired,
			fmt.Sprintf("%.3f", r.CPI),
			fmt.Sprintf("%.3f", r.IPC),
			r.DispatchStalls,
			r.MaxPendingEvents,
			r.WallTime,
		})
	}

	t.Render()
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,uops,cpi,ipc,dispatch_stalls,max_pending_events")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%.3f,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.UopsRetired,
			r.CPI,
			r.IPC,
			r.DispatchStalls,
			r.MaxPendingEvents,
		)
	}
}

// ParseTrace decodes a kernel written in the trace format. It panics on a
// malformed line, so it is meant for kernels built into the binary.
func ParseTrace(src string) []insts.Uop {
	reader := insts.NewTraceReader(strings.NewReader(src))

	var uops []insts.Uop
	for {
		uop, err := reader.Next()
		if err == io.EOF {
			return uops
		}
		if err != nil {
			panic(fmt.Sprintf("bad kernel: %v", err))
		}
		uops = append(uops, uop)
	}
}

// Repeat returns n copies of body, one after the other.
func Repeat(body []insts.Uop, n int) []insts.Uop {
	out := make([]insts.Uop, 0, len(body)*n)
	for i := 0; i < n; i++ {
		out = append(out, body...)
	}
	return out
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// RunID identifies the run in logs and reports
	RunID string `json:"run_id,omitempty"`

	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Config is the processor configuration used
	Config *latency.TimingConfig `json:"config"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalUops is the sum of all micro-ops retired
	TotalUops uint64 `json:"total_uops"`

	// AverageCPI is the average cycles per micro-op
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(runID string, results []BenchmarkResult) error {
	var totalCycles, totalUops uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalUops += r.UopsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalUops > 0 {
		avgCPI = float64(totalCycles) / float64(totalUops)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			RunID:     runID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "0.1.0",
			Config:    h.config.Timing,
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks: len(results),
			TotalCycles:     totalCycles,
			TotalUops:       totalUops,
			AverageCPI:      avgCPI,
			TotalWallTime:   totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
