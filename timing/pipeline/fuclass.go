package pipeline

import (
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

type unitState struct {
	lastInit  uint64
	initiated bool
	inFlight  uint32
}

// FUClass is one kind of functional unit: its configuration, the state of
// each physical unit, and the reservation station pool shared by the units.
type FUClass struct {
	Type               insts.FUType
	NumStations        int
	PipeDepth          uint32
	InitiationInterval uint32
	Latency            uint32

	units []unitState

	// pool holds the stations of this class in program order.
	pool []Tag
}

func newFUClass(t insts.FUType, config latency.UnitConfig) *FUClass {
	return &FUClass{
		Type:               t,
		NumStations:        int(config.NumStations),
		PipeDepth:          config.PipeDepth,
		InitiationInterval: config.InitiationInterval,
		Latency:            config.Latency,
		units:              make([]unitState, config.NumUnits),
		pool:               make([]Tag, 0, config.NumStations),
	}
}

// NumUnits returns the number of physical units of the class.
func (c *FUClass) NumUnits() int {
	return len(c.units)
}

// Len returns the number of occupied reservation stations.
func (c *FUClass) Len() int {
	return len(c.pool)
}

// Full returns true if no reservation station is free.
func (c *FUClass) Full() bool {
	return len(c.pool) >= c.NumStations
}

// Pool returns a copy of the station tags in program order.
func (c *FUClass) Pool() []Tag {
	return append([]Tag(nil), c.pool...)
}

// InFlight returns the number of operations in progress on a unit.
func (c *FUClass) InFlight(unit int) uint32 {
	return c.units[unit].inFlight
}

// LastInitiation returns the cycle of the last initiation on a unit, and
// false if the unit never initiated.
func (c *FUClass) LastInitiation(unit int) (uint64, bool) {
	u := &c.units[unit]
	return u.lastInit, u.initiated
}

// canInitiate checks the initiation interval and pipeline occupancy of a
// unit.
func (c *FUClass) canInitiate(unit int, now uint64) bool {
	u := &c.units[unit]
	if u.initiated && now-u.lastInit < uint64(c.InitiationInterval) {
		return false
	}
	return u.inFlight < c.PipeDepth
}

func (c *FUClass) initiate(unit int, now uint64) {
	u := &c.units[unit]
	u.inFlight++
	u.lastInit = now
	u.initiated = true
}

func (c *FUClass) complete(unit int) {
	u := &c.units[unit]
	if u.inFlight == 0 {
		panic("completion on an idle functional unit")
	}
	u.inFlight--
}

func (c *FUClass) push(t Tag) {
	c.pool = append(c.pool, t)
}

func (c *FUClass) indexOf(t Tag) int {
	for i, p := range c.pool {
		if p == t {
			return i
		}
	}
	return -1
}

func (c *FUClass) removeAt(i int) {
	copy(c.pool[i:], c.pool[i+1:])
	c.pool[len(c.pool)-1] = Tag{}
	c.pool = c.pool[:len(c.pool)-1]
}

func (c *FUClass) reset() {
	for i := range c.units {
		c.units[i] = unitState{}
	}
	c.pool = c.pool[:0]
}
