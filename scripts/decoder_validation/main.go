// Validate decoder throughput - measures allocations in the trace decoder
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/tomasim/insts"
)

func main() {
	decoder := insts.NewDecoder()

	lines := []string{
		"IALU r1 r2 r3",
		"LOAD r10 r1",
		"FMUL r11 r10 r2 # a*x",
		"STORE r0 r13 r3",
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		_, _ = decoder.Decode(lines[0])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for _, line := range lines {
			if _, err := decoder.Decode(line); err != nil {
				fmt.Printf("decode %q failed: %v\n", line, err)
				return
			}
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(lines)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Trace Decoder Validation Results:\n")
	fmt.Printf("=================================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))

	// strings.Fields allocates the field slice, so one allocation per
	// decode is expected.
	if float64(allocations)/float64(totalDecodes) <= 1.5 {
		fmt.Printf("\n✅ GOOD: Low allocation rate (<= 1.5 per decode)\n")
	} else {
		fmt.Printf("\n⚠️  WARNING: High allocation rate detected\n")
	}
}
