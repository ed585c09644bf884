package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"majority-vote/internal/bench"
	"majority-vote/internal/logging"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "YAML benchmark plan (defaults are used when empty)")
	output := flag.String("output", "", "Output JSON file for the report (optional)")
	warmup := flag.Int("warmup", -1, "Warmup iterations, overrides the plan when >= 0")
	measurement := flag.Int("iterations", 0, "Measurement iterations, overrides the plan when > 0")
	iterationTime := flag.Duration("iteration-time", 0, "Time per iteration, overrides the plan when > 0")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")
	flag.Parse()

	config := bench.DefaultConfig()
	if *configPath != "" {
		loaded, err := bench.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load benchmark plan: %v", err)
		}
		config = loaded
	}
	if *warmup >= 0 {
		config.WarmupIterations = *warmup
	}
	if *measurement > 0 {
		config.MeasurementIterations = *measurement
	}
	if *iterationTime > 0 {
		config.IterationTime = *iterationTime
	}

	h, err := bench.New(config, logging.New("microbench", *quiet))
	if err != nil {
		log.Fatalf("Invalid benchmark plan: %v", err)
	}

	// Ctrl+C stops the run after the current iteration
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := h.Run(ctx)
	if err != nil {
		log.Printf("Benchmark stopped early: %v", err)
	}

	report.Print(os.Stdout)

	if *output != "" {
		if err := report.SaveJSON(*output); err != nil {
			log.Fatalf("Failed to save report: %v", err)
		}
		log.Printf("Report saved to %s", *output)
	}
}
