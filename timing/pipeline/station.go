package pipeline

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// Tag identifies a reservation station. It is a handle into the station
// arena: a slot index plus the generation of the slot at allocation time.
// The zero Tag means "no producer", i.e. the value is ready.
type Tag struct {
	slot uint32
	gen  uint32
}

// IsZero returns true if the tag references no station.
func (t Tag) IsZero() bool {
	return t.gen == 0
}

// String formats the tag as rs<slot>.<gen>.
func (t Tag) String() string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("rs%d.%d", t.slot, t.gen)
}

// Station is the scheduling state of one in-flight micro-op.
type Station struct {
	// Uop is the dispatched micro-op.
	Uop insts.Uop

	// Src holds, per source operand, the tag of the station producing the
	// value. A zero tag means the operand is ready.
	Src [3]Tag

	// Issued is set once Execute has scheduled the station. An issued
	// station is never selected again.
	Issued bool

	// Seq is the program-order sequence number of the micro-op.
	Seq uint64

	// DispatchCycle and IssueCycle record when the station entered its pool
	// and when it was initiated on a unit.
	DispatchCycle uint64
	IssueCycle    uint64
}

// Ready returns true if all source operands are available.
func (s *Station) Ready() bool {
	return s.Src[0].IsZero() && s.Src[1].IsZero() && s.Src[2].IsZero()
}

type arenaSlot struct {
	station Station
	gen     uint32
	live    bool

	// refs counts the references to the station held outside its pool:
	// operand slots of other stations, register status entries and events.
	refs int
}

// stationArena owns every station. Stations are referenced by Tag only;
// releasing a slot bumps its generation so stale tags are caught.
type stationArena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

func (a *stationArena) alloc(st Station) Tag {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot{gen: 1})
	}

	slot := &a.slots[idx]
	slot.station = st
	slot.live = true
	slot.refs = 0
	a.live++

	return Tag{slot: idx, gen: slot.gen}
}

func (a *stationArena) slot(t Tag) *arenaSlot {
	if t.IsZero() || int(t.slot) >= len(a.slots) {
		panic(fmt.Sprintf("invalid station tag %v", t))
	}

	s := &a.slots[t.slot]
	if !s.live || s.gen != t.gen {
		panic(fmt.Sprintf("stale station tag %v", t))
	}

	return s
}

// valid reports whether t references a live station.
func (a *stationArena) valid(t Tag) bool {
	if t.IsZero() || int(t.slot) >= len(a.slots) {
		return false
	}
	s := &a.slots[t.slot]
	return s.live && s.gen == t.gen
}

// get returns the station behind t. The pointer is only valid until the
// next alloc.
func (a *stationArena) get(t Tag) *Station {
	return &a.slot(t).station
}

func (a *stationArena) retain(t Tag) {
	a.slot(t).refs++
}

func (a *stationArena) drop(t Tag) {
	s := a.slot(t)
	if s.refs == 0 {
		panic(fmt.Sprintf("station %v dropped with no reference", t))
	}
	s.refs--
}

func (a *stationArena) refs(t Tag) int {
	return a.slot(t).refs
}

// release destroys the station. Every reference to it must already be
// cleared.
func (a *stationArena) release(t Tag) {
	s := a.slot(t)
	if s.refs != 0 {
		panic(fmt.Sprintf("station %v released with %d live references", t, s.refs))
	}

	s.station = Station{}
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, t.slot)
	a.live--
}

func (a *stationArena) reset() {
	a.slots = nil
	a.free = nil
	a.live = 0
}
