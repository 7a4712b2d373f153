package pipeline

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tomasim/insts"
)

// CheckInvariants verifies the lifetime and resource invariants of the
// scheduler and returns the first violation found.
func (p *Pipeline) CheckInvariants() error {
	refs := make(map[Tag]int)
	pooled := 0

	for _, t := range insts.FUTypes {
		class := p.classes[t]

		if class.Len() > class.NumStations {
			return fmt.Errorf("%v pool holds %d stations, capacity %d",
				t, class.Len(), class.NumStations)
		}

		for u := 0; u < class.NumUnits(); u++ {
			if class.InFlight(u) > class.PipeDepth {
				return fmt.Errorf("%v unit %d has %d operations in flight, depth %d",
					t, u, class.InFlight(u), class.PipeDepth)
			}
		}

		for _, tag := range class.pool {
			if !p.stations.valid(tag) {
				return fmt.Errorf("%v pool holds dead station %v", t, tag)
			}
			pooled++

			st := p.stations.get(tag)
			if st.Uop.Op.FUType() != t {
				return fmt.Errorf("station %v (%v) sits in the %v pool", tag, st.Uop.Op, t)
			}
			for _, src := range st.Src {
				if src.IsZero() {
					continue
				}
				if !p.stations.valid(src) {
					return fmt.Errorf("station %v waits on retired station %v", tag, src)
				}
				refs[src]++
			}
		}
	}

	if pooled != p.stations.live {
		return fmt.Errorf("%d live stations but %d pooled", p.stations.live, pooled)
	}

	for r, tag := range p.regStatus.entries {
		if tag.IsZero() {
			continue
		}
		if r == 0 {
			return fmt.Errorf("register r0 is tagged with %v", tag)
		}
		if !p.stations.valid(tag) {
			return fmt.Errorf("register r%d references retired station %v", r, tag)
		}
		st := p.stations.get(tag)
		if !st.Uop.WritesReg() || st.Uop.Dst != insts.Reg(r) {
			return fmt.Errorf("register r%d references station %v which does not write it", r, tag)
		}
		refs[tag]++
	}

	events := make(map[Tag]int)
	for _, ev := range p.eventQ.events {
		if !p.stations.valid(ev.Station) {
			return fmt.Errorf("event references retired station %v", ev.Station)
		}
		if p.classes[ev.FU].indexOf(ev.Station) < 0 {
			return fmt.Errorf("event station %v missing from %v pool", ev.Station, ev.FU)
		}
		if !p.stations.get(ev.Station).Issued {
			return fmt.Errorf("event station %v is not issued", ev.Station)
		}
		events[ev.Station]++
		if events[ev.Station] > 1 {
			return fmt.Errorf("station %v has more than one event", ev.Station)
		}
		refs[ev.Station]++
	}

	for _, t := range insts.FUTypes {
		for _, tag := range p.classes[t].pool {
			if got, want := p.stations.refs(tag), refs[tag]; got != want {
				return fmt.Errorf("station %v has %d recorded references, found %d",
					tag, got, want)
			}
		}
	}

	return nil
}

// DumpState writes the reservation station pools and the event queue as
// tables.
func (p *Pipeline) DumpState(w io.Writer) {
	rsTable := table.NewWriter()
	rsTable.SetOutputMirror(w)
	rsTable.SetTitle("Reservation Stations @ cycle %d", p.cycle)
	rsTable.AppendHeader(table.Row{"FU", "Pos", "Station", "Uop", "Src1", "Src2", "Src3", "Issued"})

	for _, t := range insts.FUTypes {
		for i, tag := range p.classes[t].pool {
			st := p.stations.get(tag)
			rsTable.AppendRow(table.Row{
				t, i, tag, st.Uop, st.Src[0], st.Src[1], st.Src[2], st.Issued,
			})
		}
	}
	rsTable.Render()

	evTable := table.NewWriter()
	evTable.SetOutputMirror(w)
	evTable.SetTitle("Event Queue (%d pending)", p.eventQ.Len())
	evTable.AppendHeader(table.Row{"Due", "FU", "Unit", "Station", "Position"})
	for _, ev := range p.eventQ.Events() {
		evTable.AppendRow(table.Row{ev.DueCycle, ev.FU, ev.Unit, ev.Station, ev.Position})
	}
	evTable.Render()
}
