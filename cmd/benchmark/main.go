// Command benchmark runs the tomasim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: table)
//	-json    Output results in JSON format
//	-config  Path to a timing configuration JSON file
//	-core    Run only the 3 core kernels
//	-check   Verify scheduler invariants every cycle
//
// Example:
//
//	# Run all benchmarks with table output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	coreOnly := flag.Bool("core", false, "Run only the core kernels")
	check := flag.Bool("check", false, "Verify scheduler invariants every cycle")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}
	if err := config.Timing.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
		os.Exit(1)
	}
	config.CheckInvariants = *check
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	runID := xid.New().String()
	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(runID, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Printf("Run %s: dispatch width %d, CDB width %d\n\n",
			runID, config.Timing.DispatchWidth, config.Timing.CDBWidth)
		harness.PrintResults(results)

		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- independent_alu: bounded by ALU count and dispatch width")
		fmt.Println("- dependency_chain: one op per result latency")
		fmt.Println("- memory_sequential: memory ops issue in order")
		fmt.Println("- divide_chain: bounded by divider latency")
	}
}
