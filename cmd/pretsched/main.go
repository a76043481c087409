// Command pretsched compiles a YAML reactor-program description into a
// linked PretVM instruction listing, mirroring go-gavel's
// generate_benchmark_dataset tool as a thin, log.Fatalf-on-error CLI shell
// around the library packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lf-go/pretsched/internal/application"
	"github.com/lf-go/pretsched/internal/domain"
)

func main() {
	var (
		input           = flag.String("input", "", "path to a YAML reactor program description")
		numWorkers      = flag.Int("workers", 1, "number of PretVM workers to schedule onto")
		shutdownTimeout = flag.Duration("shutdown-timeout", 0, "SHUTDOWN_TIMEOUT exploration horizon")
		fastMode        = flag.Bool("fast-mode", false, "omit DU delay-until instructions after tag advances and before sync-block jumps")
	)
	flag.Parse()

	if *input == "" {
		log.Fatalf("missing required -input flag")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	loader, err := application.NewProgramLoader()
	if err != nil {
		log.Fatalf("failed to construct program loader: %v", err)
	}

	pipeline := application.NewPipeline(application.PipelineOptions{
		NumWorkers:      *numWorkers,
		ShutdownTimeout: domain.Timestamp(shutdownTimeout.Nanoseconds()),
		FastMode:        *fastMode,
	})

	ctx := context.Background()
	program, err := loader.CompileWithPipeline(ctx, data, pipeline)
	if err != nil {
		log.Fatalf("compile failed: %v", err)
	}

	printProgram(program)
}

// printProgram disassembles every worker's instruction stream to stdout,
// one line per instruction.
func printProgram(p *domain.Program) {
	fmt.Printf("hyperperiod: %d\n", p.Hyperperiod)
	for w, stream := range p.Workers {
		fmt.Printf("worker %d:\n", w)
		for pc, inst := range stream {
			line := fmt.Sprintf("  %4d: %s", pc, inst.Op)
			if inst.HasLabel() {
				line += fmt.Sprintf(" [%s]", inst.Label)
			}
			ops := []domain.Operand{inst.A, inst.B, inst.C}
			for i := 0; i < inst.NumOperands; i++ {
				line += " " + formatOperand(ops[i])
			}
			fmt.Println(line)
		}
	}
}

func formatOperand(op domain.Operand) string {
	switch op.Kind {
	case domain.Immediate:
		return fmt.Sprintf("%d", op.Imm)
	case domain.LabelOperand:
		return op.Label
	default:
		if op.IsPlaceholder {
			if op.ResolvedSymbol != "" {
				return op.ResolvedSymbol
			}
			return "PLACEHOLDER"
		}
		return string(op.Register)
	}
}

