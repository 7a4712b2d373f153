package benchmarks

import "github.com/sarchlab/tomasim/insts"

// GetMicrobenchmarks returns the standard set of kernels. Each one stresses
// a single scheduler resource.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		dependencyChain(),
		memorySequential(),
		loadUse(),
		multiplyAccumulate(),
		divideChain(),
		floatingPointMix(),
		daxpy(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 kernels for quick validation:
// throughput, latency and memory ordering.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		independentALU(),
		dependencyChain(),
		memorySequential(),
	}
}

func uop(op insts.Op, dst, src1, src2 insts.Reg) insts.Uop {
	return insts.Uop{Op: op, Dst: dst, Src1: src1, Src2: src2}
}

// 1. Independent ALU - ALU throughput bounded by units and dispatch width
func independentALU() Benchmark {
	uops := make([]insts.Uop, 0, 40)
	for i := 0; i < 40; i++ {
		uops = append(uops, uop(insts.OpIALU, insts.Reg(i%8+1), 0, 0))
	}

	return Benchmark{
		Name:        "independent_alu",
		Description: "40 independent IALU ops - measures ALU throughput",
		Uops:        uops,
	}
}

// 2. Dependency Chain - every op waits for the previous result
func dependencyChain() Benchmark {
	uops := make([]insts.Uop, 0, 40)
	for i := 0; i < 40; i++ {
		uops = append(uops, uop(insts.OpIALU, 1, 1, 0))
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "40 dependent IALU ops (r1 = r1 op r0) - measures result latency",
		Uops:        uops,
	}
}

// 3. Memory Sequential - loads and stores through the in-order memory unit
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "alternating loads and stores - memory ops issue in program order",
		Uops: Repeat(ParseTrace(`
			LOAD  r10 r1
			STORE r0  r10 r2
			LOAD  r11 r1
			STORE r0  r11 r2
		`), 10),
	}
}

// 4. Load Use - each load feeds an ALU op that produces the next address
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "pointer chase: LOAD r2 <- r1, IALU r1 <- r2",
		Uops: Repeat(ParseTrace(`
			LOAD r2 r1
			IALU r1 r2
		`), 20),
	}
}

// 5. Multiply Accumulate - IMUL results folded into a running sum
func multiplyAccumulate() Benchmark {
	return Benchmark{
		Name:        "multiply_accumulate",
		Description: "independent IMULs accumulated by a dependent IALU chain",
		Uops: Repeat(ParseTrace(`
			IMUL r10 r2 r3
			IALU r1  r1 r10
			IMUL r11 r4 r5
			IALU r1  r1 r11
		`), 10),
	}
}

// 6. Divide Chain - long-latency, low-throughput unit
func divideChain() Benchmark {
	uops := make([]insts.Uop, 0, 10)
	for i := 0; i < 10; i++ {
		uops = append(uops, uop(insts.OpIDIV, 1, 1, 2))
	}

	return Benchmark{
		Name:        "divide_chain",
		Description: "10 dependent IDIVs - measures divider latency",
		Uops:        uops,
	}
}

// 7. Floating Point Mix - FALU, FMUL and FDIV in parallel streams
func floatingPointMix() Benchmark {
	return Benchmark{
		Name:        "fp_mix",
		Description: "interleaved FALU, FMUL and FDIV streams - unit-level parallelism",
		Uops: Repeat(ParseTrace(`
			FALU r20 r20 r21
			FMUL r22 r22 r23
			FALU r24 r21 r21
			FDIV r25 r26 r27
		`), 8),
	}
}

// 8. DAXPY - y[i] = a*x[i] + y[i], loop body unrolled
func daxpy() Benchmark {
	return Benchmark{
		Name:        "daxpy",
		Description: "unrolled y = a*x + y loop body",
		Uops: Repeat(ParseTrace(`
			LOAD  r10 r1         # x[i]
			FMUL  r11 r10 r2     # a*x[i]
			LOAD  r12 r3         # y[i]
			FALU  r13 r11 r12
			STORE r0  r13 r3
			IALU  r1  r1
			IALU  r3  r3
		`), 8),
	}
}
