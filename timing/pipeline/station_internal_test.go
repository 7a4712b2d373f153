package pipeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("stationArena", func() {
	var arena *stationArena

	BeforeEach(func() {
		arena = &stationArena{}
	})

	It("should never hand out the zero tag", func() {
		t := arena.alloc(Station{})
		Expect(t.IsZero()).To(BeFalse())
		Expect(arena.live).To(Equal(1))
	})

	It("should return the stored station", func() {
		t := arena.alloc(Station{Uop: insts.Uop{Op: insts.OpIMUL, Dst: 4}})
		Expect(arena.get(t).Uop.Dst).To(Equal(insts.Reg(4)))
	})

	It("should reuse slots with a new generation", func() {
		first := arena.alloc(Station{})
		arena.release(first)

		second := arena.alloc(Station{})
		Expect(second.slot).To(Equal(first.slot))
		Expect(second.gen).To(Equal(first.gen + 1))
		Expect(second).NotTo(Equal(first))
	})

	It("should reject stale tags", func() {
		t := arena.alloc(Station{})
		arena.release(t)

		Expect(arena.valid(t)).To(BeFalse())
		Expect(func() { arena.get(t) }).To(Panic())
	})

	It("should reject the zero tag", func() {
		Expect(func() { arena.get(Tag{}) }).To(Panic())
	})

	It("should refuse to release a referenced station", func() {
		t := arena.alloc(Station{})
		arena.retain(t)

		Expect(func() { arena.release(t) }).To(Panic())

		arena.drop(t)
		Expect(func() { arena.release(t) }).NotTo(Panic())
		Expect(arena.live).To(Equal(0))
	})

	It("should panic when dropping an unreferenced station", func() {
		t := arena.alloc(Station{})
		Expect(func() { arena.drop(t) }).To(Panic())
	})
})

var _ = Describe("FUClass", func() {
	It("should enforce initiation interval and depth", func() {
		class := &FUClass{
			NumStations:        2,
			PipeDepth:          2,
			InitiationInterval: 3,
			units:              make([]unitState, 1),
		}

		Expect(class.canInitiate(0, 1)).To(BeTrue())
		class.initiate(0, 1)
		Expect(class.canInitiate(0, 2)).To(BeFalse())
		Expect(class.canInitiate(0, 3)).To(BeFalse())
		Expect(class.canInitiate(0, 4)).To(BeTrue())
		class.initiate(0, 4)
		Expect(class.canInitiate(0, 9)).To(BeFalse())

		class.complete(0)
		Expect(class.canInitiate(0, 9)).To(BeTrue())
	})

	It("should keep program order when removing from the middle", func() {
		class := &FUClass{NumStations: 3}
		a, b, c := Tag{0, 1}, Tag{1, 1}, Tag{2, 1}
		class.push(a)
		class.push(b)
		class.push(c)

		Expect(class.Full()).To(BeTrue())
		class.removeAt(class.indexOf(b))
		Expect(class.Pool()).To(Equal([]Tag{a, c}))
		Expect(class.indexOf(b)).To(Equal(-1))
	})
})

var _ = Describe("EventQueue", func() {
	It("should pop by due cycle, then insertion order", func() {
		q := NewEventQueue()
		q.Push(Event{DueCycle: 5, Unit: 0})
		q.Push(Event{DueCycle: 3, Unit: 1})
		q.Push(Event{DueCycle: 5, Unit: 2})
		q.Push(Event{DueCycle: 3, Unit: 3})

		var units []int
		for q.Len() > 0 {
			units = append(units, q.Pop().Unit)
		}
		Expect(units).To(Equal([]int{1, 3, 0, 2}))
	})

	It("should peek without removing", func() {
		q := NewEventQueue()
		_, ok := q.Peek()
		Expect(ok).To(BeFalse())

		q.Push(Event{DueCycle: 7})
		ev, ok := q.Peek()
		Expect(ok).To(BeTrue())
		Expect(ev.DueCycle).To(Equal(uint64(7)))
		Expect(q.Len()).To(Equal(1))
	})
})
