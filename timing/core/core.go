// Package core drives the Tomasulo scheduler one micro-op at a time.
// It owns the simulation clock: fast-forward, warm-up, the detailed cycle
// budget and termination.
package core

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

// Stats holds the statistics of a run. Counters other than the cycle
// totals cover the measured window only.
type Stats struct {
	// FastForwarded is the number of micro-ops skipped without simulation.
	FastForwarded uint64
	// DetailedCycles is the total number of cycles simulated.
	DetailedCycles uint64
	// WarmUpCycles is the number of cycles simulated before measurement.
	WarmUpCycles uint64
	// MeasuredCycles is the number of cycles since measurement started.
	MeasuredCycles uint64

	Dispatched     uint64
	Retired        uint64
	DispatchStalls uint64

	// SimulatedTime is the detailed cycle count at the clock frequency.
	SimulatedTime sim.VTimeInSec

	// Pipeline holds the scheduler counters of the measured window.
	Pipeline pipeline.Statistics
}

// IPC returns the micro-ops retired per measured cycle.
func (s Stats) IPC() float64 {
	if s.MeasuredCycles == 0 {
		return 0
	}
	return float64(s.Retired) / float64(s.MeasuredCycles)
}

// CPI returns the measured cycles per retired micro-op.
func (s Stats) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.MeasuredCycles) / float64(s.Retired)
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger for phase changes and progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithTimingConfig sets the processor configuration.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.pipeOpts = append(c.pipeOpts,
			pipeline.WithLatencyTable(latency.NewTableWithConfig(config)))
	}
}

// WithPipelineOptions passes options to the underlying pipeline.
func WithPipelineOptions(opts ...pipeline.PipelineOption) Option {
	return func(c *Core) {
		c.pipeOpts = append(c.pipeOpts, opts...)
	}
}

// Core feeds micro-ops into the pipeline and advances the clock.
type Core struct {
	// Pipeline is the underlying scheduler.
	Pipeline *pipeline.Pipeline

	clock       *Clock
	logger      *slog.Logger
	pipeOpts    []pipeline.PipelineOption
	baseline    pipeline.Statistics
	onTerminate []func(Stats)
}

// NewCore creates a Core with the given budgets.
func NewCore(config ClockConfig, opts ...Option) *Core {
	c := &Core{
		clock:  NewClock(config),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Pipeline = pipeline.NewPipeline(c.pipeOpts...)

	return c
}

// Clock returns the simulation clock.
func (c *Core) Clock() *Clock {
	return c.clock
}

// Phase returns the current phase of the run.
func (c *Core) Phase() Phase {
	return c.clock.Phase()
}

// Terminated returns true once the detailed budget is used up.
func (c *Core) Terminated() bool {
	return c.clock.Terminated()
}

// OnTerminate registers a callback invoked with the final statistics when
// the detailed budget is used up.
func (c *Core) OnTerminate(fn func(Stats)) {
	c.onTerminate = append(c.onTerminate, fn)
}

// SimUop simulates one micro-op. It returns once the micro-op is
// dispatched, advancing as many cycles as needed. Micro-ops are ignored
// after termination.
func (c *Core) SimUop(uop insts.Uop) {
	if c.clock.Terminated() {
		return
	}

	if skipped, ended := c.clock.SkipUop(); skipped {
		if ended {
			c.logger.Info("fast-forward phase ended",
				"uops", c.clock.FastForwarded())
		}
		return
	}

	for {
		dispatched := c.Pipeline.TryDispatch(uop)
		if !dispatched || c.Pipeline.WidthExhausted() {
			c.tick()
			if c.clock.Terminated() {
				return
			}
		}

		if dispatched {
			return
		}
	}
}

// Drain advances cycles until every dispatched micro-op has retired or the
// detailed budget is used up.
func (c *Core) Drain() {
	for !c.Pipeline.Idle() && !c.clock.Terminated() {
		c.tick()
	}
}

func (c *Core) tick() {
	c.Pipeline.Tick()

	warmUpEnded, budgetReached := c.clock.Advance()

	if warmUpEnded {
		c.baseline = c.Pipeline.Stats()
		c.logger.Info("warm-up phase ended", "cycle", c.clock.Cycles())
	}

	if c.clock.KeepAlive() {
		c.logger.Info("keep alive",
			"cycle", c.clock.Cycles(),
			"retired", c.Pipeline.Stats().Retired,
		)
	}

	if budgetReached {
		c.terminate()
	}
}

func (c *Core) terminate() {
	stats := c.Stats()
	c.logger.Info("detailed simulation ended",
		"cycle", stats.DetailedCycles,
		"retired", stats.Retired,
	)

	for _, fn := range c.onTerminate {
		fn(stats)
	}
}

// Stats returns the statistics of the run so far.
func (c *Core) Stats() Stats {
	s := Stats{
		FastForwarded:  c.clock.FastForwarded(),
		DetailedCycles: c.clock.Cycles(),
		WarmUpCycles:   c.clock.Cycles(),
		SimulatedTime:  c.clock.SimulatedTime(c.clock.Cycles()),
	}

	if !c.clock.Measuring() {
		return s
	}

	measured := c.Pipeline.Stats().Sub(c.baseline)

	s.WarmUpCycles = c.clock.MeasureStart()
	s.MeasuredCycles = c.clock.MeasuredCycles()
	s.Dispatched = measured.Dispatched
	s.Retired = measured.Retired
	s.DispatchStalls = measured.DispatchStalls
	s.Pipeline = measured

	return s
}

// Reset clears the pipeline and restarts the clock. Termination callbacks
// stay registered.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	c.clock.Reset()
	c.baseline = pipeline.Statistics{}
}
