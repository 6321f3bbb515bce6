// Package main provides the entry point for the RV64I hart simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv64sim/emu"
	"github.com/sarchlab/rv64sim/loader"
)

var verbose = flag.Bool("v", false, "Verbose output")

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: emulator [options] <image.bin>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	imagePath := flag.Arg(0)

	image, err := loader.Load(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s (%d bytes)\n", imagePath, len(image))
	}

	hart := emu.NewHart(image)
	result := hart.Run()

	if *verbose {
		fmt.Printf("Instructions executed: %d\n", hart.InstructionCount())
	}

	if result.Fatal {
		dumpRegisters(hart)
		os.Exit(1)
	}
}

// dumpRegisters prints the final register file and faulting PC to
// stderr, the way the reference implementation dumps state before
// exiting on a fatal trap.
func dumpRegisters(hart *emu.Hart) {
	fmt.Fprintf(os.Stderr, "PC: 0x%016x\n", hart.PC())
	regs := hart.RegFile()
	for i := 0; i < 32; i++ {
		fmt.Fprintf(os.Stderr, "x%-2d: 0x%016x\n", i, regs.ReadReg(uint8(i)))
	}
}
