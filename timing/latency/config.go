package latency

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/tomasim/insts"
)

// UnitConfig describes one class of functional units and the reservation
// station pool the units share.
type UnitConfig struct {
	// NumUnits is the number of physical units of this type. Default: 1.
	NumUnits uint32 `json:"num_units"`

	// NumStations is the number of reservation stations shared by all units
	// of this type. A full pool stalls dispatch. Default: 1.
	NumStations uint32 `json:"num_stations"`

	// PipeDepth is the number of operations one unit may have in flight.
	// Default: 1.
	PipeDepth uint32 `json:"pipe_depth"`

	// InitiationInterval is the minimum number of cycles between two
	// initiations on the same unit.
	InitiationInterval uint32 `json:"initiation_interval"`

	// Latency is the number of cycles from initiation until the result is
	// broadcast. For the memory unit this is the address-generation latency.
	Latency uint32 `json:"latency"`
}

// TimingConfig holds the processor configuration of the scheduler.
// Defaults follow the classic Tomasulo lab setup: a scalar machine with a
// single unit and a single reservation station per class.
type TimingConfig struct {
	Mem  UnitConfig `json:"mem"`
	IALU UnitConfig `json:"ialu"`
	IMUL UnitConfig `json:"imul"`
	IDIV UnitConfig `json:"idiv"`
	FALU UnitConfig `json:"falu"`
	FMUL UnitConfig `json:"fmul"`
	FDIV UnitConfig `json:"fdiv"`

	// LoadAccessLatency is added to the memory unit latency for loads, which
	// wait for the memory access as well as address generation. Stores only
	// wait for address generation. Default: 0.
	LoadAccessLatency uint32 `json:"load_access_latency"`

	// DispatchWidth is the number of micro-ops dispatched per cycle.
	// Default: 1.
	DispatchWidth uint32 `json:"dispatch_width"`

	// CDBWidth is the number of common data buses, i.e. the number of
	// results broadcast per cycle. Default: 1.
	CDBWidth uint32 `json:"cdb_width"`

	// NumRegisters is the size of the architectural register space.
	// Register ids at or above it are rejected. Default: 512.
	NumRegisters uint32 `json:"num_registers"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	unit := func(interval, lat uint32) UnitConfig {
		return UnitConfig{
			NumUnits:           1,
			NumStations:        1,
			PipeDepth:          1,
			InitiationInterval: interval,
			Latency:            lat,
		}
	}

	return &TimingConfig{
		Mem:               unit(1, 1),
		IALU:              unit(1, 1),
		IMUL:              unit(1, 4),
		IDIV:              unit(4, 8),
		FALU:              unit(1, 4),
		FMUL:              unit(2, 8),
		FDIV:              unit(5, 10),
		LoadAccessLatency: 0,
		DispatchWidth:     1,
		CDBWidth:          1,
		NumRegisters:      512,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Unit returns the configuration of the given functional-unit type.
func (c *TimingConfig) Unit(t insts.FUType) *UnitConfig {
	switch t {
	case insts.FUMem:
		return &c.Mem
	case insts.FUIALU:
		return &c.IALU
	case insts.FUIMUL:
		return &c.IMUL
	case insts.FUIDIV:
		return &c.IDIV
	case insts.FUFALU:
		return &c.FALU
	case insts.FUFMUL:
		return &c.FMUL
	case insts.FUFDIV:
		return &c.FDIV
	default:
		panic(fmt.Sprintf("invalid functional unit type %d", t))
	}
}

// Validate checks that every unit and width is usable (> 0).
func (c *TimingConfig) Validate() error {
	for _, t := range insts.FUTypes {
		if err := c.Unit(t).validate(); err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
	}
	if c.DispatchWidth == 0 {
		return fmt.Errorf("dispatch_width must be > 0")
	}
	if c.CDBWidth == 0 {
		return fmt.Errorf("cdb_width must be > 0")
	}
	if c.NumRegisters == 0 {
		return fmt.Errorf("num_registers must be > 0")
	}
	return nil
}

func (u *UnitConfig) validate() error {
	if u.NumUnits == 0 {
		return fmt.Errorf("num_units must be > 0")
	}
	if u.NumStations == 0 {
		return fmt.Errorf("num_stations must be > 0")
	}
	if u.PipeDepth == 0 {
		return fmt.Errorf("pipe_depth must be > 0")
	}
	if u.InitiationInterval == 0 {
		return fmt.Errorf("initiation_interval must be > 0")
	}
	if u.Latency == 0 {
		return fmt.Errorf("latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
