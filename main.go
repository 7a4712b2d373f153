// Package main provides the entry point for tomasim.
// tomasim is a cycle-accurate Tomasulo out-of-order scheduler simulator.
//
// For the full CLI, use: go run ./cmd/tomasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tomasim - Tomasulo Scheduler Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tomasim [options] [trace.txt]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -ffwd      Micro-ops to skip before detailed simulation")
	fmt.Println("  -warmUp    Warm-up cycles before measurement")
	fmt.Println("  -detailed  Detailed cycle budget (0 = unbounded)")
	fmt.Println("  -verb      Verbosity (0-4)")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasim' instead.")
	}
}
