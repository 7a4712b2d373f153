package pipeline_test

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

func newTestPipeline(
	config *latency.TimingConfig,
	opts ...pipeline.PipelineOption,
) *pipeline.Pipeline {
	opts = append([]pipeline.PipelineOption{
		pipeline.WithLatencyTable(latency.NewTableWithConfig(config)),
		pipeline.WithInvariantChecks(),
	}, opts...)

	return pipeline.NewPipeline(opts...)
}

// feed offers uop until it is accepted. The cycle ends on a stall or once
// the dispatch width is used up.
func feed(p *pipeline.Pipeline, uop insts.Uop) {
	for {
		ok := p.TryDispatch(uop)
		if !ok || p.WidthExhausted() {
			p.Tick()
		}
		if ok {
			return
		}
	}
}

func drain(p *pipeline.Pipeline) {
	for !p.Idle() {
		p.Tick()
	}
}

type recorder struct {
	records map[*sim.HookPos][]pipeline.TraceRecord
}

func newRecorder() *recorder {
	return &recorder{records: make(map[*sim.HookPos][]pipeline.TraceRecord)}
}

func (r *recorder) Func(ctx sim.HookCtx) {
	rec := ctx.Item.(pipeline.TraceRecord)
	r.records[ctx.Pos] = append(r.records[ctx.Pos], rec)
}

func (r *recorder) cycles(pos *sim.HookPos) []uint64 {
	var out []uint64
	for _, rec := range r.records[pos] {
		out = append(out, rec.Cycle)
	}
	return out
}

// cycleOf returns the cycle in which the micro-op writing dst hit pos.
func (r *recorder) cycleOf(pos *sim.HookPos, dst insts.Reg) uint64 {
	for _, rec := range r.records[pos] {
		if rec.Uop.Dst == dst {
			return rec.Cycle
		}
	}
	return 0
}

func ialu(dst, src1, src2 insts.Reg) insts.Uop {
	return insts.Uop{Op: insts.OpIALU, Dst: dst, Src1: src1, Src2: src2}
}
