// Package main provides a pointer to the real entry point.
//
// For the full CLI, use: go run ./cmd/emulator
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv64sim - RV64I hart simulator")
	fmt.Println("")
	fmt.Println("Usage: emulator [options] <image.bin>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -v    Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/emulator' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/emulator' instead.")
	}
}
