package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// ClockConfig holds the simulation budgets of a Core.
type ClockConfig struct {
	// FastForward is the number of micro-ops skipped before detailed
	// simulation starts.
	FastForward uint64 `json:"fast_forward"`

	// WarmUpCycles is the number of detailed cycles simulated before
	// statistics are measured.
	WarmUpCycles uint64 `json:"warm_up_cycles"`

	// DetailedCycles is the total detailed cycle budget, warm-up included.
	// Zero means unbounded.
	DetailedCycles uint64 `json:"detailed_cycles"`

	// Freq is the clock frequency used to report simulated time.
	Freq sim.Freq `json:"freq"`

	// KeepAliveInterval is the number of cycles between progress messages.
	// Zero disables them.
	KeepAliveInterval uint64 `json:"keep_alive_interval"`
}

// DefaultClockConfig returns the default budgets.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		FastForward:       0,
		WarmUpCycles:      1_000_000,
		DetailedCycles:    1_001_000_000,
		Freq:              1 * sim.GHz,
		KeepAliveInterval: 100_000_000,
	}
}

// Phase is the stage of a simulation run.
type Phase int

const (
	PhaseFastForward Phase = iota
	PhaseWarmUp
	PhaseMeasure
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseFastForward:
		return "fast-forward"
	case PhaseWarmUp:
		return "warm-up"
	case PhaseMeasure:
		return "measure"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Clock tracks the fast-forward, warm-up and detailed budgets.
type Clock struct {
	config ClockConfig

	fastForwarded uint64
	cycles        uint64
	measureStart  uint64
	measuring     bool
	terminated    bool
}

// NewClock creates a Clock. With no warm-up, measurement starts at cycle 0.
func NewClock(config ClockConfig) *Clock {
	c := &Clock{config: config}
	c.measuring = config.WarmUpCycles == 0
	return c
}

// Config returns the budgets of the clock.
func (c *Clock) Config() ClockConfig {
	return c.config
}

// Phase returns the current phase.
func (c *Clock) Phase() Phase {
	switch {
	case c.terminated:
		return PhaseTerminated
	case c.fastForwarded < c.config.FastForward:
		return PhaseFastForward
	case !c.measuring:
		return PhaseWarmUp
	default:
		return PhaseMeasure
	}
}

// Budget returns the detailed cycle budget, at least as long as the
// warm-up. Zero means unbounded.
func (c *Clock) Budget() uint64 {
	if c.config.DetailedCycles == 0 {
		return 0
	}
	return max(c.config.DetailedCycles, c.config.WarmUpCycles)
}

// SkipUop consumes one micro-op of the fast-forward budget. skipped is
// false once the budget is spent; ended marks the last skipped micro-op.
func (c *Clock) SkipUop() (skipped, ended bool) {
	if c.fastForwarded >= c.config.FastForward {
		return false, false
	}
	c.fastForwarded++
	return true, c.fastForwarded == c.config.FastForward
}

// Advance counts one detailed cycle. It reports whether the warm-up ended
// and whether the detailed budget is now used up.
func (c *Clock) Advance() (warmUpEnded, budgetReached bool) {
	c.cycles++

	if !c.measuring && c.cycles >= c.config.WarmUpCycles {
		c.measuring = true
		c.measureStart = c.cycles
		warmUpEnded = true
	}

	if b := c.Budget(); b > 0 && c.cycles >= b {
		c.terminated = true
		budgetReached = true
	}

	return warmUpEnded, budgetReached
}

// Cycles returns the number of detailed cycles simulated.
func (c *Clock) Cycles() uint64 {
	return c.cycles
}

// FastForwarded returns the number of skipped micro-ops.
func (c *Clock) FastForwarded() uint64 {
	return c.fastForwarded
}

// Measuring returns true once the warm-up is over.
func (c *Clock) Measuring() bool {
	return c.measuring
}

// MeasureStart returns the cycle at which measurement started.
func (c *Clock) MeasureStart() uint64 {
	return c.measureStart
}

// MeasuredCycles returns the cycles simulated since measurement started.
func (c *Clock) MeasuredCycles() uint64 {
	if !c.measuring {
		return 0
	}
	return c.cycles - c.measureStart
}

// Terminated returns true once the detailed budget is used up.
func (c *Clock) Terminated() bool {
	return c.terminated
}

// KeepAlive returns true if a progress message is due at this cycle.
func (c *Clock) KeepAlive() bool {
	n := c.config.KeepAliveInterval
	return n > 0 && c.cycles%n == 0
}

// SimulatedTime converts cycles into seconds at the configured frequency.
func (c *Clock) SimulatedTime(cycles uint64) sim.VTimeInSec {
	if c.config.Freq == 0 {
		return 0
	}
	return sim.VTimeInSec(float64(cycles) / float64(c.config.Freq))
}

// Reset restarts all budgets.
func (c *Clock) Reset() {
	*c = *NewClock(c.config)
}
