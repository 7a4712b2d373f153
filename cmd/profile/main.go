// Package main provides a profiling wrapper for tomasim to identify
// performance bottlenecks in the scheduler.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
)

var (
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	maxUops    = flag.Int("max-uops", 1000000, "max micro-ops to simulate (0 = unlimited)")
	kernel     = flag.String("kernel", "daxpy", "built-in kernel to repeat when no trace is given")
)

// uopSource yields micro-ops until io.EOF.
type uopSource func() (insts.Uop, error)

func main() {
	flag.Parse()

	timingConfig := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
	}

	next, err := openSource(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	c := core.NewCore(
		core.ClockConfig{Freq: 1 * sim.GHz},
		core.WithTimingConfig(timingConfig),
	)

	var count int
	for *maxUops == 0 || count < *maxUops {
		uop, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
			os.Exit(1)
		}
		c.SimUop(uop)
		count++
	}
	c.Drain()

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	stats := c.Stats()
	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Micro-ops simulated: %d\n", count)
	fmt.Printf("Cycles: %d\n", stats.DetailedCycles)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if count > 0 {
		fmt.Printf("Micro-ops/second: %.0f\n", float64(count)/elapsed.Seconds())
		fmt.Printf("Cycles/second: %.0f\n", float64(stats.DetailedCycles)/elapsed.Seconds())
	}
}

// openSource reads the trace file if one is given. Otherwise it loops over
// the selected built-in kernel forever.
func openSource(args []string) (uopSource, error) {
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		return insts.NewTraceReader(f).Next, nil
	}

	for _, b := range benchmarks.GetMicrobenchmarks() {
		if b.Name != *kernel {
			continue
		}

		i := 0
		return func() (insts.Uop, error) {
			uop := b.Uops[i%len(b.Uops)]
			i++
			return uop, nil
		}, nil
	}

	return nil, fmt.Errorf("unknown kernel %q", *kernel)
}
