// Package latency provides the processor configuration and the micro-op
// timing model for cycle-accurate scheduling.
//
// The configuration is a TimingConfig: one UnitConfig per functional-unit
// type plus the dispatch and result-bus widths.
package latency

import (
	"github.com/sarchlab/tomasim/insts"
)

// Table provides micro-op latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the number of cycles between initiation and result
// broadcast for the given micro-op.
func (t *Table) GetLatency(uop insts.Uop) uint64 {
	lat := uint64(t.config.Unit(uop.Op.FUType()).Latency)

	if uop.Op == insts.OpLOAD {
		lat += uint64(t.config.LoadAccessLatency)
	}

	return lat
}

// IsMemoryOp returns true if the micro-op accesses memory.
func (t *Table) IsMemoryOp(uop insts.Uop) bool {
	return uop.Op.IsMemory()
}

// IsLoadOp returns true if the micro-op is a load.
func (t *Table) IsLoadOp(uop insts.Uop) bool {
	return uop.Op == insts.OpLOAD
}

// IsStoreOp returns true if the micro-op is a store.
func (t *Table) IsStoreOp(uop insts.Uop) bool {
	return uop.Op == insts.OpSTORE
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
