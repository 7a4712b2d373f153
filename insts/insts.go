// Package insts provides micro-op definitions and trace decoding.
//
// A micro-op is the unit the scheduler consumes: an opcode class, one
// destination register and up to three source registers, already resolved
// to architectural register ids. Register id 0 means "not used".
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	uop, err := decoder.Decode("IALU r3 r1 r2")
//	fmt.Printf("Op: %v, Dst: %d, Src1: %d\n", uop.Op, uop.Dst, uop.Src1)
package insts
