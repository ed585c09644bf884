package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"majority-vote/internal/service"
)

func main() {
	// Command line flags
	serverAddr := flag.String("server", "localhost:50051", "Server address to connect to")
	values := flag.String("values", "2,2,1,1,2,2,3", "Comma separated integers to search for a majority")
	instrument := flag.Bool("instrument", true, "Ask the server for operation counters")
	flag.Parse()

	seq, err := parseValues(*values)
	if err != nil {
		log.Fatalf("❌ Invalid -values: %v", err)
	}

	fmt.Printf("================================================\n")
	fmt.Printf("Majority Client - Finding the Majority Element\n")
	fmt.Printf("================================================\n")
	fmt.Printf("Server: %s\n", *serverAddr)
	fmt.Printf("Values: %v\n", seq)
	fmt.Printf("================================================\n\n")

	client, err := service.NewClient(*serverAddr)
	if err != nil {
		log.Fatalf("❌ Failed to connect to server: %v\n\nMake sure the server is running:\n  go run ./cmd/majority\n", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.FindMajority(ctx, seq, *instrument)
	if err != nil {
		log.Fatalf("❌ Error calling FindMajority: %v\n\nTroubleshooting:\n  - Is the server running?\n  - Is the server at %s reachable?\n", err, *serverAddr)
	}

	fmt.Printf("Request ID: %s\n", result.RequestID)
	if result.Present {
		fmt.Printf("✅ Majority element: %d\n", result.Value)
	} else {
		fmt.Printf("➖ No majority element\n")
	}
	if m := result.Metrics; m != nil {
		fmt.Printf("   Comparisons=%d, Assignments=%d, Iterations=%d, Time=%.3f ms, Memory=%d bytes\n",
			m.Comparisons, m.Assignments, m.Iterations, m.ElapsedMs, m.MemoryBytes)
	}
}

func parseValues(s string) ([]int, error) {
	var seq []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", f, err)
		}
		seq = append(seq, v)
	}
	return seq, nil
}
