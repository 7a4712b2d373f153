package pipeline

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// TryDispatch attempts to place uop into a reservation station of its
// functional-unit class. It returns false when the pool is full; the caller
// must then end the cycle and offer the same micro-op again.
func (p *Pipeline) TryDispatch(uop insts.Uop) bool {
	p.regStatus.check(uop.Dst)
	for _, src := range uop.Sources() {
		p.regStatus.check(src)
	}

	fu := uop.Op.FUType()
	class := p.classes[fu]

	if class.Full() {
		p.stats.DispatchStalls++
		p.stats.FU[fu].Stalls++
		p.invoke(HookPosStall, TraceRecord{Cycle: p.cycle, Uop: uop, FU: fu})
		return false
	}

	st := Station{
		Uop:           uop,
		Seq:           p.nextSeq,
		DispatchCycle: p.cycle,
	}
	p.nextSeq++

	// Sources are read before the destination is renamed, so "r1 = r1 op x"
	// waits on the previous writer of r1.
	for i, src := range uop.Sources() {
		if src == insts.RegNone {
			continue
		}
		st.Src[i] = p.regStatus.Lookup(src)
	}

	tag := p.stations.alloc(st)
	for _, producer := range st.Src {
		if !producer.IsZero() {
			p.stations.retain(producer)
		}
	}

	if uop.WritesReg() {
		if prev := p.regStatus.set(uop.Dst, tag); !prev.IsZero() {
			p.stations.drop(prev)
		}
		p.stations.retain(tag)
	}

	class.push(tag)
	p.dispatchCount++

	p.stats.Dispatched++
	p.stats.FU[fu].Dispatched++
	p.invoke(HookPosDispatch, TraceRecord{
		Cycle: p.cycle, Tag: tag, Uop: uop, FU: fu,
	})

	return true
}

// execute initiates ready stations on free functional units.
func (p *Pipeline) execute() {
	for _, t := range insts.FUTypes {
		class := p.classes[t]

		for unit := 0; unit < class.NumUnits(); unit++ {
			if !class.canInitiate(unit, p.cycle) {
				continue
			}

			pos, ok := p.selectReady(class)
			if !ok {
				break
			}

			p.issue(class, unit, pos)
		}
	}
}

// selectReady returns the pool index of the oldest station that is ready and
// not yet issued. Memory operations issue strictly in order: the oldest
// unissued memory operation is the only candidate.
func (p *Pipeline) selectReady(class *FUClass) (int, bool) {
	for i, tag := range class.pool {
		st := p.stations.get(tag)
		if st.Issued {
			continue
		}

		if st.Ready() {
			return i, true
		}

		if class.Type == insts.FUMem {
			return 0, false
		}
	}

	return 0, false
}

func (p *Pipeline) issue(class *FUClass, unit, pos int) {
	tag := class.pool[pos]
	st := p.stations.get(tag)

	st.Issued = true
	st.IssueCycle = p.cycle
	class.initiate(unit, p.cycle)

	ev := Event{
		DueCycle: p.cycle + p.latencyTable.GetLatency(st.Uop),
		FU:       class.Type,
		Position: pos,
		Station:  tag,
		Unit:     unit,
	}
	p.eventQ.Push(ev)
	p.stations.retain(tag)

	if n := p.eventQ.Len(); n > p.stats.MaxPendingEvents {
		p.stats.MaxPendingEvents = n
	}
	p.stats.Issued++
	p.stats.FU[class.Type].Issued++
	p.invoke(HookPosIssue, TraceRecord{
		Cycle:    p.cycle,
		Tag:      tag,
		Uop:      st.Uop,
		FU:       class.Type,
		Unit:     unit,
		DueCycle: ev.DueCycle,
	})
}

// writeResult retires due results, one per common data bus.
func (p *Pipeline) writeResult() {
	width := int(p.Config().CDBWidth)

	for bus := 0; bus < width; bus++ {
		ev, ok := p.eventQ.Peek()
		if !ok || ev.DueCycle > p.cycle {
			return
		}

		p.retire(ev)
		p.eventQ.Pop()
	}
}

func (p *Pipeline) retire(ev Event) {
	class := p.classes[ev.FU]
	class.complete(ev.Unit)

	pos := class.indexOf(ev.Station)
	if pos < 0 {
		panic(fmt.Sprintf("event for station %v not found in %v pool",
			ev.Station, ev.FU))
	}

	st := p.stations.get(ev.Station)
	uop := st.Uop

	p.broadcast(ev.Station)

	if uop.WritesReg() && p.regStatus.clearIf(uop.Dst, ev.Station) {
		p.stations.drop(ev.Station)
	}

	class.removeAt(pos)
	p.stations.drop(ev.Station)
	p.stations.release(ev.Station)

	p.stats.Retired++
	p.stats.FU[ev.FU].Retired++
	p.invoke(HookPosRetire, TraceRecord{
		Cycle:    p.cycle,
		Tag:      ev.Station,
		Uop:      uop,
		FU:       ev.FU,
		Unit:     ev.Unit,
		DueCycle: ev.DueCycle,
	})
}

// broadcast marks every operand waiting on producer as ready.
func (p *Pipeline) broadcast(producer Tag) {
	for _, t := range insts.FUTypes {
		for _, tag := range p.classes[t].pool {
			st := p.stations.get(tag)
			for i := range st.Src {
				if st.Src[i] == producer {
					st.Src[i] = Tag{}
					p.stations.drop(producer)
				}
			}
		}
	}
}
