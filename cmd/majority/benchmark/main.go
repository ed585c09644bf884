package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"majority-vote/internal/dataset"
	"majority-vote/internal/logging"
	"majority-vote/internal/metrics"
	"majority-vote/internal/runner"
	"majority-vote/internal/storage"

	prom "github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Command line flags
	sizesFlag := flag.String("sizes", "", "Comma separated input sizes (default 1500,1000,10000)")
	output := flag.String("output", "benchmarks.csv", "CSV file the results are appended to")
	withMajority := flag.Bool("with-majority", false, "Generate inputs that contain a majority element")
	distribution := flag.String("distribution", "", "Input distribution, overrides -with-majority (uniform, random, sorted, reverse, nearly_sorted, majority)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for input generation")
	storePath := flag.String("store", "", "BBolt file keeping the run history (disabled when empty)")
	listRuns := flag.Bool("list-runs", false, "List the runs kept in -store and exit")
	promTextfile := flag.String("prom-textfile", "", "Write Prometheus metrics to this file after the run (disabled when empty)")
	noGC := flag.Bool("no-gc", false, "Do not run a GC around each measurement")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")
	flag.Parse()

	logger := logging.New("benchmark", *quiet)

	if *listRuns {
		if *storePath == "" {
			log.Fatal("-list-runs requires -store")
		}
		printRuns(*storePath)
		return
	}

	config := runner.DefaultConfig()
	config.Seed = *seed
	config.WithMajority = *withMajority
	config.GC = !*noGC
	config.Logger = logger

	if *sizesFlag != "" {
		sizes, err := runner.ParseSizes(*sizesFlag)
		if err != nil || len(sizes) == 0 {
			fmt.Fprintf(os.Stderr, "Invalid -sizes %q (%v), using defaults %v\n", *sizesFlag, err, runner.DefaultSizes)
		} else {
			config.Sizes = sizes
		}
	}

	if *distribution != "" {
		d, err := dataset.ParseDistribution(*distribution)
		if err != nil {
			log.Fatalf("Invalid -distribution: %v", err)
		}
		config.Distribution = d
	}

	fmt.Println("========================================")
	fmt.Println("MAJORITY VOTE BENCHMARK")
	fmt.Println("========================================")
	fmt.Printf("Sizes: %v\n", config.Sizes)
	fmt.Printf("Output: %s\n", *output)
	fmt.Printf("Seed: %d\n", config.Seed)
	fmt.Println("========================================")
	fmt.Println()

	sinks := []runner.Sink{runner.CSVSink{Path: *output}}

	if *storePath != "" {
		db, err := storage.NewBboltStorage(*storePath)
		if err != nil {
			log.Fatalf("Failed to open run history: %v", err)
		}
		defer db.Close()
		sinks = append(sinks, db)
	}

	var reg *prom.Registry
	if *promTextfile != "" {
		reg = prom.NewRegistry()
		sinks = append(sinks, runner.PrometheusSink{Exporter: metrics.NewPrometheusExporter(reg)})
	}

	r, err := runner.New(config, os.Stdout, sinks...)
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}

	summary, err := r.Run()
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	if reg != nil {
		if err := metrics.WriteTextfile(reg, *promTextfile); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	fmt.Println()
	fmt.Printf("Run %s: %d sizes measured\n", summary.RunID, len(summary.Measurements))
	if summary.SinkFailures > 0 {
		fmt.Printf("⚠️  %d results could not be saved, see the log above\n", summary.SinkFailures)
	} else {
		fmt.Printf("✓ Results appended to %s\n", *output)
	}
}

func printRuns(path string) {
	db, err := storage.NewBboltStorage(path)
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %d records\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Records)
		records, err := db.GetRun(run.ID)
		if err != nil {
			log.Printf("Warning: failed to read run %s: %v", run.ID, err)
			continue
		}
		for _, rec := range records {
			fmt.Printf("    n=%-8d time=%.6f ms  comparisons=%d\n", rec.N, float64(rec.ElapsedNs)/1e6, rec.Comparisons)
		}
	}
}
