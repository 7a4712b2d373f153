package pipeline

import (
	"container/heap"
	"sort"

	"github.com/sarchlab/tomasim/insts"
)

// Event records a scheduled result broadcast.
type Event struct {
	// DueCycle is the cycle in which the result is written back.
	DueCycle uint64

	// FU is the class executing the station.
	FU insts.FUType

	// Position is the station's index in its pool when it was scheduled.
	// Older stations may retire first, so Write-Result locates the station
	// by Station, not by Position.
	Position int

	// Station is the executing station.
	Station Tag

	// Unit is the physical unit index within the class.
	Unit int

	seq uint64
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].DueCycle != h[j].DueCycle {
		return h[i].DueCycle < h[j].DueCycle
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// EventQueue orders pending results by due cycle. Events due in the same
// cycle pop in insertion order.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push schedules an event.
func (q *EventQueue) Push(e Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, e)
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() Event {
	return heap.Pop(&q.events).(Event)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Events returns the pending events in pop order.
func (q *EventQueue) Events() []Event {
	out := append([]Event(nil), q.events...)
	sort.Slice(out, func(i, j int) bool {
		return eventHeap(out).Less(i, j)
	})
	return out
}

func (q *EventQueue) reset() {
	q.events = q.events[:0]
	q.nextSeq = 0
}
