// gymgate-kiosk reads member codes (one per line, e.g. from a USB QR
// scanner in keyboard-wedge mode) and drives the check-in/check-out toggle
// against a gymgate server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"gymgate/internal/client"
)

func main() {
	serverURL := flag.String("server", envOr("GYMGATE_SERVER", "http://localhost:8080/api/v1"), "gymgate API base URL")
	apiKey := flag.String("api-key", os.Getenv("GYMGATE_API_KEY"), "kiosk API key, if the server requires one")
	flag.Parse()

	api := client.New(*serverURL)
	if *apiKey != "" {
		api.SetAPIKey(*apiKey)
	}

	session := client.NewScanSession(api, newStdinSource())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("kiosk %s ready, scan a code (or type a member id and press enter)", session.DeviceID())

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("kiosk stopped: %v", err)
	}
}

// stdinSource adapts standard input to the scanner interface.
type stdinSource struct {
	codes     chan string
	closeOnce sync.Once
	closed    chan struct{}
}

func newStdinSource() *stdinSource {
	s := &stdinSource{
		codes:  make(chan string),
		closed: make(chan struct{}),
	}

	go func() {
		defer close(s.codes)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			code := strings.TrimSpace(scanner.Text())
			if code == "" {
				continue
			}
			select {
			case s.codes <- code:
			case <-s.closed:
				return
			}
		}
	}()

	return s
}

func (s *stdinSource) Codes() <-chan string {
	return s.codes
}

func (s *stdinSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
