// Package main provides the entry point for tomasim, a cycle-accurate
// Tomasulo out-of-order scheduler simulator.
//
// Usage:
//
//	tomasim [options] [trace.txt]
//
// The trace is read from stdin when no file is given. Each line holds one
// micro-op: OP dst [src1 [src2 [src3]]].
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

var (
	configPath    = flag.String("config", "", "Path to timing configuration JSON file")
	fastForward   = flag.Uint64("ffwd", core.DefaultClockConfig().FastForward, "Number of micro-ops to skip before detailed simulation")
	warmUp        = flag.Uint64("warmUp", core.DefaultClockConfig().WarmUpCycles, "Number of warm-up cycles before measurement")
	detailed      = flag.Uint64("detailed", core.DefaultClockConfig().DetailedCycles, "Detailed cycle budget, warm-up included (0 = unbounded)")
	keepAlive     = flag.Uint64("keepalive", core.DefaultClockConfig().KeepAliveInterval, "Cycles between progress messages (0 = off)")
	dispatchWidth = flag.Uint("dispatch_width", 0, "Override the dispatch width")
	cdbWidth      = flag.Uint("cdb_width", 0, "Override the number of common data buses")
	verbosity     = flag.Int("verb", 0, "Verbosity: 0 warn, 1 info, 2 dispatch, 3 execute, 4 write-result")
	logJSON       = flag.Bool("log-json", false, "Write logs as JSON")
	check         = flag.Bool("check", false, "Verify scheduler invariants every cycle")
	dump          = flag.Bool("dump", false, "Dump the scheduler state at the end of the run")
)

func main() {
	flag.Parse()

	runID := xid.New().String()
	logger := newLogger(os.Stderr, *verbosity, *logJSON).With("run", runID)
	slog.SetDefault(logger)

	timingConfig, err := loadTimingConfig(*configPath, uint32(*dispatchWidth), uint32(*cdbWidth))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
		atexit.Exit(1)
	}

	input, err := openTrace(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		atexit.Exit(1)
	}

	clockConfig := core.DefaultClockConfig()
	clockConfig.FastForward = *fastForward
	clockConfig.WarmUpCycles = *warmUp
	clockConfig.DetailedCycles = *detailed
	clockConfig.KeepAliveInterval = *keepAlive

	c := core.NewCore(clockConfig,
		core.WithTimingConfig(timingConfig),
		core.WithLogger(logger),
		core.WithPipelineOptions(pipelineOptions(logger)...),
	)

	finish := func(stats core.Stats) {
		if *dump {
			c.Pipeline.DumpState(os.Stderr)
		}
		printReport(os.Stdout, runID, stats, c.Pipeline.Config())
		atexit.Exit(0)
	}
	c.OnTerminate(finish)

	logger.Info("simulation started",
		"ffwd", clockConfig.FastForward,
		"warm_up", clockConfig.WarmUpCycles,
		"detailed", clockConfig.DetailedCycles,
	)

	if err := simulate(c, input); err != nil {
		logger.Error("simulation failed", "err", err)
		atexit.Exit(1)
	}

	finish(c.Stats())
}

func pipelineOptions(logger *slog.Logger) []pipeline.PipelineOption {
	var opts []pipeline.PipelineOption
	if *verbosity >= 2 {
		opts = append(opts, pipeline.WithHook(pipeline.NewTracer(logger, *verbosity)))
	}
	if *check {
		opts = append(opts, pipeline.WithInvariantChecks())
	}
	return opts
}

// newLogger maps the verbosity onto a slog level. Levels 2 and up enable
// the per-micro-op trace.
func newLogger(w io.Writer, verbosity int, jsonOutput bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = pipeline.LevelTrace
	case verbosity == 1:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadTimingConfig loads the processor configuration and applies the
// command-line overrides. Zero overrides are ignored.
func loadTimingConfig(path string, dispatchWidth, cdbWidth uint32) (*latency.TimingConfig, error) {
	config := latency.DefaultTimingConfig()
	if path != "" {
		var err error
		config, err = latency.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if dispatchWidth > 0 {
		config.DispatchWidth = dispatchWidth
	}
	if cdbWidth > 0 {
		config.CDBWidth = cdbWidth
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	return config, nil
}

func openTrace(args []string) (io.Reader, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		_ = f.Close()
	})

	return f, nil
}

// simulate feeds the trace into the core until the trace ends or the core
// terminates. Dispatched micro-ops are drained at the end of the trace.
func simulate(c *core.Core, r io.Reader) error {
	reader := insts.NewTraceReader(r)

	for !c.Terminated() {
		uop, err := reader.Next()
		if errors.Is(err, io.EOF) {
			c.Drain()
			return nil
		}
		if err != nil {
			return err
		}

		c.SimUop(uop)
	}

	return nil
}
