// Command transfervm runs a compiled transfer program (transfer,
// interchunk, or postchunk, detected from its own header line) against
// a stream of analyzed words. Grounded on apertium_vm.cc's CLI and
// cmd/server/main.go's flat flag.* style.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	transfer "github.com/apertium-go/transfer"
)

func main() {
	codeFile := flag.String("c", "", "compiled transfer program (required)")
	inputFile := flag.String("i", "", "input file (stdin by default)")
	outputFile := flag.String("o", "", "output file (stdout by default)")
	debug := flag.Bool("g", false, "log each rule selection as it fires")
	flag.Parse()

	if *codeFile == "" {
		log.Fatal("a code file is required, see -c")
	}

	code, err := os.Open(*codeFile)
	if err != nil {
		log.Fatalf("can't open code file %q: %v", *codeFile, err)
	}
	defer code.Close()

	in := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatalf("can't open input file %q: %v", *inputFile, err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			log.Fatalf("can't open output file %q: %v", *outputFile, err)
		}
		defer f.Close()
		out = f
	}

	vm := transfer.NewVM(out, transfer.WithDebug(*debug))
	if runErr := vm.Run(context.Background(), code, in); runErr != nil {
		log.Fatal(runErr)
	}
}
