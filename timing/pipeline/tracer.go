package pipeline

import (
	"context"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
)

// LevelTrace is the slog level of per-micro-op trace messages. It sits
// below Debug so traces are only emitted when asked for.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Hook positions invoked by the pipeline. The hook item is a TraceRecord.
var (
	HookPosDispatch = &sim.HookPos{Name: "Dispatch"}
	HookPosStall    = &sim.HookPos{Name: "DispatchStall"}
	HookPosIssue    = &sim.HookPos{Name: "Issue"}
	HookPosRetire   = &sim.HookPos{Name: "Retire"}
	HookPosCycle    = &sim.HookPos{Name: "Cycle"}
)

// TraceRecord describes one scheduling event.
type TraceRecord struct {
	Cycle    uint64
	Tag      Tag
	Uop      insts.Uop
	FU       insts.FUType
	Unit     int
	DueCycle uint64
}

func (p *Pipeline) invoke(pos *sim.HookPos, rec TraceRecord) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   rec,
	})
}

// Tracer is a hook that writes scheduling events to a logger. The verbosity
// selects the stages traced: 2 dispatch, 3 adds execute, 4 adds write-result
// and cycle boundaries.
type Tracer struct {
	logger    *slog.Logger
	positions map[*sim.HookPos]bool
}

// NewTracer creates a Tracer with the given verbosity.
func NewTracer(logger *slog.Logger, verbosity int) *Tracer {
	t := &Tracer{
		logger:    logger,
		positions: make(map[*sim.HookPos]bool),
	}

	if verbosity >= 2 {
		t.positions[HookPosDispatch] = true
		t.positions[HookPosStall] = true
	}
	if verbosity >= 3 {
		t.positions[HookPosIssue] = true
	}
	if verbosity >= 4 {
		t.positions[HookPosRetire] = true
		t.positions[HookPosCycle] = true
	}

	return t
}

// Func logs the event if its position is traced.
func (t *Tracer) Func(ctx sim.HookCtx) {
	if !t.positions[ctx.Pos] {
		return
	}

	rec, ok := ctx.Item.(TraceRecord)
	if !ok {
		return
	}

	if ctx.Pos == HookPosCycle {
		t.logger.Log(context.Background(), LevelTrace, ctx.Pos.Name,
			"cycle", rec.Cycle)
		return
	}

	t.logger.Log(context.Background(), LevelTrace, ctx.Pos.Name,
		"cycle", rec.Cycle,
		"station", rec.Tag.String(),
		"uop", rec.Uop.String(),
		"fu", rec.FU.String(),
		"unit", rec.Unit,
		"due", rec.DueCycle,
	)
}
