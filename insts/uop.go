package insts

import (
	"fmt"
	"strings"
)

// Op represents a micro-op opcode class.
type Op uint8

// Micro-op opcodes. The values from OpMEMOP up to (but excluding)
// NumFUTypes double as functional-unit types.
const (
	OpUnknown Op = iota
	OpMEMOP      // Not a real opcode; bundles LOAD and STORE.
	OpIALU
	OpIMUL
	OpIDIV
	OpFALU
	OpFMUL
	OpFDIV
	numFUOps
	OpLOAD
	OpSTORE
)

// FUType identifies a class of functional units sharing one reservation
// station pool.
type FUType uint8

// Functional-unit types.
const (
	FUMem  = FUType(OpMEMOP)
	FUIALU = FUType(OpIALU)
	FUIMUL = FUType(OpIMUL)
	FUIDIV = FUType(OpIDIV)
	FUFALU = FUType(OpFALU)
	FUFMUL = FUType(OpFMUL)
	FUFDIV = FUType(OpFDIV)
)

// NumFUTypes bounds the FUType values; valid types are in [FUMem, NumFUTypes).
const NumFUTypes = int(numFUOps)

// FUTypes lists every functional-unit type in scheduling order.
var FUTypes = []FUType{FUMem, FUIALU, FUIMUL, FUIDIV, FUFALU, FUFMUL, FUFDIV}

var opNames = map[Op]string{
	OpUnknown: "UNKNOWN",
	OpMEMOP:   "MEMOP",
	OpIALU:    "IALU",
	OpIMUL:    "IMUL",
	OpIDIV:    "IDIV",
	OpFALU:    "FALU",
	OpFMUL:    "FMUL",
	OpFDIV:    "FDIV",
	OpLOAD:    "LOAD",
	OpSTORE:   "STORE",
}

// String returns the mnemonic of the opcode.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// ParseOp converts a mnemonic (case-insensitive) into an Op.
func ParseOp(name string) (Op, error) {
	upper := strings.ToUpper(name)
	for op, n := range opNames {
		if n == upper && op != OpUnknown && op != OpMEMOP {
			return op, nil
		}
	}
	return OpUnknown, fmt.Errorf("unknown opcode %q", name)
}

// FUType returns the functional-unit type that executes the opcode.
// LOAD and STORE share the memory unit.
func (op Op) FUType() FUType {
	switch op {
	case OpLOAD, OpSTORE, OpMEMOP:
		return FUMem
	case OpIALU, OpIMUL, OpIDIV, OpFALU, OpFMUL, OpFDIV:
		return FUType(op)
	default:
		panic(fmt.Sprintf("opcode %v has no functional unit", op))
	}
}

// IsMemory returns true for opcodes executed by the memory unit.
func (op Op) IsMemory() bool {
	return op == OpLOAD || op == OpSTORE || op == OpMEMOP
}

// String returns the name of the functional-unit type.
func (t FUType) String() string {
	return Op(t).String()
}

// Valid reports whether t names a real functional-unit type.
func (t FUType) Valid() bool {
	return t >= FUMem && int(t) < NumFUTypes
}

// Reg is an architectural register id. RegNone (0) is always ready.
type Reg uint32

// RegNone marks an absent operand or destination.
const RegNone Reg = 0

// Uop is one decoded micro-op.
type Uop struct {
	Op   Op
	Dst  Reg
	Src1 Reg
	Src2 Reg
	Src3 Reg
}

// Sources returns the three source registers in operand order.
func (u Uop) Sources() [3]Reg {
	return [3]Reg{u.Src1, u.Src2, u.Src3}
}

// WritesReg returns true if the micro-op renames its destination register.
// STORE never writes a register, whatever its destination field says.
func (u Uop) WritesReg() bool {
	return u.Op != OpSTORE && u.Dst != RegNone
}

// String formats the micro-op in trace syntax.
func (u Uop) String() string {
	return fmt.Sprintf("%v r%d r%d r%d r%d", u.Op, u.Dst, u.Src1, u.Src2, u.Src3)
}
