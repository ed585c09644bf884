package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"majority-vote/internal/logging"
	"majority-vote/internal/metrics"
	"majority-vote/internal/service"

	prom "github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Command line flags
	port := flag.Int("port", 50051, "Port to run the gRPC server on")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :9090 (disabled when empty)")
	gc := flag.Bool("gc", false, "Run a GC around instrumented calls for steadier memory readings")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")
	flag.Parse()

	logger := logging.New("majority", *quiet)
	reg := prom.NewRegistry()

	opts := []service.ServerOption{
		service.WithLogger(logger),
		service.WithExporter(metrics.NewPrometheusExporter(reg)),
	}
	if *gc {
		opts = append(opts, service.WithGC())
	}
	srv := service.NewServer(opts...)

	var metricsServer *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		metricsServer = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Printf("Serving metrics on %s/metrics", *metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
	}

	go func() {
		if err := srv.Start(*port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Create context that listens for the interrupt signal from the OS.
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Block until an interrupt signal is received.
	<-signalCtx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// Pending calls get 5 seconds to finish
	forceShutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		srv.GracefulShutdown()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Server shutdown gracefully")
	case <-forceShutdownCtx.Done():
		log.Println("Graceful shutdown timeout reached, forcing shutdown...")
		srv.ForceShutdown()
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(forceShutdownCtx); err != nil {
			log.Printf("Metrics server shutdown: %v", err)
		}
	}
	log.Println("Server exiting")
}
