package pipeline

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// RegisterStatus is the register renaming table. Each entry holds the tag
// of the station that will next produce the register, or the zero tag if
// the register holds a ready value. Register 0 is never tagged.
type RegisterStatus struct {
	entries []Tag
}

// NewRegisterStatus creates a table covering register ids [0, numRegs).
func NewRegisterStatus(numRegs int) *RegisterStatus {
	return &RegisterStatus{
		entries: make([]Tag, numRegs),
	}
}

// Len returns the size of the register space.
func (r *RegisterStatus) Len() int {
	return len(r.entries)
}

// Lookup returns the pending producer of reg, or the zero tag.
func (r *RegisterStatus) Lookup(reg insts.Reg) Tag {
	r.check(reg)
	return r.entries[reg]
}

// Tagged returns the number of registers waiting for a producer.
func (r *RegisterStatus) Tagged() int {
	n := 0
	for _, t := range r.entries {
		if !t.IsZero() {
			n++
		}
	}
	return n
}

// check panics if reg is outside the register space.
func (r *RegisterStatus) check(reg insts.Reg) {
	if int(reg) >= len(r.entries) {
		panic(fmt.Sprintf("register r%d outside register space of %d",
			reg, len(r.entries)))
	}
}

// set renames reg to t and returns the tag it replaced.
func (r *RegisterStatus) set(reg insts.Reg, t Tag) Tag {
	r.check(reg)
	if reg == insts.RegNone {
		panic("register r0 cannot be renamed")
	}
	prev := r.entries[reg]
	r.entries[reg] = t
	return prev
}

// clearIf clears reg if it still references t. A later rename is left in
// place.
func (r *RegisterStatus) clearIf(reg insts.Reg, t Tag) bool {
	r.check(reg)
	if r.entries[reg] != t {
		return false
	}
	r.entries[reg] = Tag{}
	return true
}

func (r *RegisterStatus) reset() {
	for i := range r.entries {
		r.entries[i] = Tag{}
	}
}
