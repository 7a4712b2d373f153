// Package pipeline provides the Tomasulo scheduling engine for cycle-accurate
// timing simulation.
//
// A Pipeline holds the whole scheduler state: the reservation station arena,
// one FUClass per functional-unit type, the register status table and the
// event queue of pending results. Each cycle boundary runs Write-Result and
// then Execute, so a result broadcast in a cycle can wake a dependent that
// starts executing in the same cycle.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// FUStatistics holds per functional-unit type counters.
type FUStatistics struct {
	Dispatched uint64
	Issued     uint64
	Retired    uint64
	Stalls     uint64
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Dispatched is the number of micro-ops placed in reservation stations.
	Dispatched uint64
	// Issued is the number of micro-ops initiated on a functional unit.
	Issued uint64
	// Retired is the number of results written back.
	Retired uint64
	// DispatchStalls is the number of dispatch attempts rejected because the
	// reservation station pool was full. Each one ends a cycle.
	DispatchStalls uint64
	// MaxPendingEvents is the high-water mark of the event queue.
	MaxPendingEvents int
	// FU holds the per-type counters, indexed by insts.FUType.
	FU [insts.NumFUTypes]FUStatistics
}

// CPI returns the cycles per retired micro-op.
func (s Statistics) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired)
}

// IPC returns the retired micro-ops per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Retired) / float64(s.Cycles)
}

// Sub returns the counters accumulated since base was taken.
func (s Statistics) Sub(base Statistics) Statistics {
	d := Statistics{
		Cycles:           s.Cycles - base.Cycles,
		Dispatched:       s.Dispatched - base.Dispatched,
		Issued:           s.Issued - base.Issued,
		Retired:          s.Retired - base.Retired,
		DispatchStalls:   s.DispatchStalls - base.DispatchStalls,
		MaxPendingEvents: s.MaxPendingEvents,
	}
	for i := range s.FU {
		d.FU[i] = FUStatistics{
			Dispatched: s.FU[i].Dispatched - base.FU[i].Dispatched,
			Issued:     s.FU[i].Issued - base.FU[i].Issued,
			Retired:    s.FU[i].Retired - base.FU[i].Retired,
			Stalls:     s.FU[i].Stalls - base.FU[i].Stalls,
		}
	}
	return d
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLatencyTable sets the latency table, and with it the processor
// configuration the pipeline is built from.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithInvariantChecks makes every cycle boundary verify the scheduler
// invariants and panic on the first violation.
func WithInvariantChecks() PipelineOption {
	return func(p *Pipeline) {
		p.checkInvariants = true
	}
}

// WithHook registers a hook at construction time.
func WithHook(hook sim.Hook) PipelineOption {
	return func(p *Pipeline) {
		p.AcceptHook(hook)
	}
}

// Pipeline is the Tomasulo scheduler: Dispatch, Execute and Write-Result
// over a shared set of reservation station pools.
type Pipeline struct {
	*sim.HookableBase

	latencyTable    *latency.Table
	checkInvariants bool

	stations  stationArena
	classes   [insts.NumFUTypes]*FUClass
	regStatus *RegisterStatus
	eventQ    *EventQueue

	cycle         uint64
	dispatchCount uint32
	nextSeq       uint64

	stats Statistics
}

// NewPipeline creates a new pipeline. It panics if the timing configuration
// is invalid.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		HookableBase: sim.NewHookableBase(),
		latencyTable: latency.NewTable(),
		eventQ:       NewEventQueue(),
	}

	for _, opt := range opts {
		opt(p)
	}

	config := p.latencyTable.Config()
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid timing config: %v", err))
	}

	for _, t := range insts.FUTypes {
		p.classes[t] = newFUClass(t, *config.Unit(t))
	}
	p.regStatus = NewRegisterStatus(int(config.NumRegisters))

	return p
}

// Config returns the timing configuration of the pipeline.
func (p *Pipeline) Config() *latency.TimingConfig {
	return p.latencyTable.Config()
}

// Cycle returns the current cycle.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Stats returns the pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Class returns the functional-unit class of the given type.
func (p *Pipeline) Class(t insts.FUType) *FUClass {
	if !t.Valid() {
		panic(fmt.Sprintf("invalid functional unit type %d", t))
	}
	return p.classes[t]
}

// RegisterStatus returns the register renaming table.
func (p *Pipeline) RegisterStatus() *RegisterStatus {
	return p.regStatus
}

// PendingEvents returns the scheduled results in write-back order.
func (p *Pipeline) PendingEvents() []Event {
	return p.eventQ.Events()
}

// Station returns a copy of the station behind t, and false if t does not
// reference a live station.
func (p *Pipeline) Station(t Tag) (Station, bool) {
	if !p.stations.valid(t) {
		return Station{}, false
	}
	return *p.stations.get(t), true
}

// InFlight returns the number of stations occupying any pool.
func (p *Pipeline) InFlight() int {
	return p.stations.live
}

// Idle returns true when no station is waiting or executing.
func (p *Pipeline) Idle() bool {
	return p.stations.live == 0 && p.eventQ.Len() == 0
}

// WidthExhausted returns true once the dispatch width of the current cycle
// has been used up.
func (p *Pipeline) WidthExhausted() bool {
	return p.dispatchCount >= p.Config().DispatchWidth
}

// Tick advances the pipeline by one cycle. Stages run in reverse order:
// Write-Result first, then Execute.
func (p *Pipeline) Tick() {
	p.cycle++
	p.dispatchCount = 0

	p.writeResult()
	p.execute()

	p.stats.Cycles = p.cycle

	if p.checkInvariants {
		if err := p.CheckInvariants(); err != nil {
			panic(fmt.Sprintf("cycle %d: %v", p.cycle, err))
		}
	}

	p.invoke(HookPosCycle, TraceRecord{Cycle: p.cycle})
}

// Reset clears all scheduler state and statistics.
func (p *Pipeline) Reset() {
	p.stations.reset()
	for _, t := range insts.FUTypes {
		p.classes[t].reset()
	}
	p.regStatus.reset()
	p.eventQ.reset()

	p.cycle = 0
	p.dispatchCount = 0
	p.nextSeq = 0
	p.stats = Statistics{}
}
