// Manual harness for the blocked-customer log publisher: exercises the async
// buffer under load and exposes the process metrics for inspection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fraudgate/internal/audit"
	"fraudgate/internal/profile"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := audit.NewMemoryStore()
	publisher := audit.NewPublisher(
		store,
		audit.WithAsyncBuffer(10), // Small buffer to test backpressure
		audit.WithPublisherLogger(logger),
	)

	// Start metrics server in background
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		fmt.Println("Metrics available at http://localhost:9090/metrics")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	ctx := context.Background()

	fmt.Println("\n=== Blocked Log Publisher Test ===")

	fmt.Println("1. Emitting 5 events (should all succeed)...")
	for i := 0; i < 5; i++ {
		event := audit.NewEvent(profile.CustomerProfile{
			FullName:     fmt.Sprintf("Test Customer %d", i+1),
			BillingEmail: fmt.Sprintf("customer%d@example.com", i+1),
			IPAddress:    fmt.Sprintf("203.0.113.%d", i+1),
		}, "Billing Email")
		if err := publisher.Emit(ctx, event); err != nil {
			fmt.Printf("   Event %d failed: %v\n", i+1, err)
		} else {
			fmt.Printf("   Event %d emitted\n", i+1)
		}
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	fmt.Println("\n2. Flooding buffer with 20 events (buffer size is 10)...")
	dropped := 0
	for i := 0; i < 20; i++ {
		event := audit.NewEvent(profile.CustomerProfile{
			BillingEmail: fmt.Sprintf("flood%d@example.com", i+1),
		}, "Max Fraud Attempts exceeded")
		if err := publisher.Emit(ctx, event); err != nil {
			dropped++
		}
	}
	fmt.Printf("   Emitted 20 events, %d dropped due to full buffer\n", dropped)

	time.Sleep(500 * time.Millisecond)

	fmt.Println("\n3. Checking store contents...")
	allEvents, _ := store.List(ctx)
	fmt.Printf("   Total events in store: %d\n", len(allEvents))

	fmt.Println("\nView full metrics at: http://localhost:9090/metrics")
	fmt.Println("Press Ctrl+C to exit...")

	select {}
}
