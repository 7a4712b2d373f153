// Package main validates that scheduler changes preserve simulation
// results: decoding, determinism, invariants and reset behavior.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// testTraceDecoding validates that every spelling of a micro-op decodes to
// the same value.
func testTraceDecoding() bool {
	decoder := insts.NewDecoder()

	testCases := [][]string{
		{"IALU r1 r2 r3", "ialu 1 2 3", "IALU r1 r2 r3 r0", "  IALU\tR1 r2 3 # comment"},
		{"LOAD r5 r1", "load 5 1 0 0"},
		{"STORE r0 r4 r5", "Store 0 4 5"},
		{"FDIV r9", "fdiv r9 r0"},
	}

	fmt.Println("Testing trace decoder accuracy...")

	for i, spellings := range testCases {
		want, err := decoder.Decode(spellings[0])
		if err != nil {
			fmt.Printf("❌ Test case %d failed: %v\n", i, err)
			return false
		}

		for _, line := range spellings[1:] {
			got, err := decoder.Decode(line)
			if err != nil || got != want {
				fmt.Printf("❌ Test case %d failed: Decode mismatch\n", i)
				fmt.Printf("  %q: %v\n", spellings[0], want)
				fmt.Printf("  %q: %v (%v)\n", line, got, err)
				return false
			}
		}

		fmt.Printf("✅ Test case %d: %v decoded consistently\n", i, want)
	}

	return true
}

func configs() map[string]*latency.TimingConfig {
	scalar := latency.DefaultTimingConfig()

	wide := benchmarks.DefaultConfig().Timing

	deep := latency.DefaultTimingConfig()
	for _, t := range insts.FUTypes {
		u := deep.Unit(t)
		u.NumStations = 8
		u.PipeDepth = 4
	}
	deep.DispatchWidth = 4
	deep.CDBWidth = 1
	deep.LoadAccessLatency = 3

	return map[string]*latency.TimingConfig{
		"scalar": scalar,
		"wide":   wide,
		"deep":   deep,
	}
}

func run(config *latency.TimingConfig, uops []insts.Uop) (stats core.Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	c := core.NewCore(
		core.ClockConfig{Freq: 1 * sim.GHz},
		core.WithTimingConfig(config.Clone()),
		core.WithPipelineOptions(pipeline.WithInvariantChecks()),
	)
	for _, uop := range uops {
		c.SimUop(uop)
	}
	c.Drain()

	return c.Stats(), nil
}

// testSchedulerDeterminism runs every kernel twice on every configuration
// with invariant checks and compares the statistics.
func testSchedulerDeterminism() bool {
	fmt.Println("\nTesting scheduler determinism and invariants...")

	for name, config := range configs() {
		for _, bench := range benchmarks.GetMicrobenchmarks() {
			first, err := run(config, bench.Uops)
			if err != nil {
				fmt.Printf("❌ %s/%s: invariant violated: %v\n", name, bench.Name, err)
				return false
			}

			second, err := run(config, bench.Uops)
			if err != nil || first != second {
				fmt.Printf("❌ %s/%s: runs differ\n", name, bench.Name)
				fmt.Printf("  first:  %+v\n", first)
				fmt.Printf("  second: %+v\n", second)
				return false
			}

			if first.Retired != uint64(len(bench.Uops)) {
				fmt.Printf("❌ %s/%s: retired %d of %d uops\n",
					name, bench.Name, first.Retired, len(bench.Uops))
				return false
			}

			fmt.Printf("✅ %s/%s: %d cycles, CPI %.3f\n",
				name, bench.Name, first.DetailedCycles, first.CPI())
		}
	}

	return true
}

// testResetBehavior validates that a reset core reproduces a fresh run.
func testResetBehavior() bool {
	fmt.Println("\nTesting core reset behavior...")

	config := benchmarks.DefaultConfig().Timing
	c := core.NewCore(core.ClockConfig{Freq: 1 * sim.GHz}, core.WithTimingConfig(config))

	var results []core.Stats
	for i := 0; i < 2; i++ {
		for _, bench := range benchmarks.GetCoreBenchmarks() {
			for _, uop := range bench.Uops {
				c.SimUop(uop)
			}
		}
		c.Drain()
		results = append(results, c.Stats())
		c.Reset()
	}

	if results[0] != results[1] {
		fmt.Println("❌ Post-reset run differs from the first run")
		return false
	}

	fmt.Println("✅ Core reset behavior validated")
	return true
}

func main() {
	fmt.Println("Tomasim Accuracy Validation")
	fmt.Println("===========================")

	allPassed := true

	if !testTraceDecoding() {
		allPassed = false
	}

	if !testSchedulerDeterminism() {
		allPassed = false
	}

	if !testResetBehavior() {
		allPassed = false
	}

	fmt.Println("\n===========================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
