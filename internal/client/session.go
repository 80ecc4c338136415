package client

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"gymgate/internal/checkin"
)

// ErrScanInFlight means a scan arrived while another decision was still
// outstanding. At most one admission request runs at a time; rapid repeat
// scans are refused, never dispatched concurrently.
var ErrScanInFlight = errors.New("a scan is already being processed")

// CodeSource is the kiosk's scanner device: a stream of scanned member
// codes and a deterministic release of the underlying resource.
type CodeSource interface {
	Codes() <-chan string
	Close() error
}

// ScanSession drives the check-in/check-out toggle for a kiosk. The local
// presumed state is only a last-known cache: before every decision the
// session re-reads the server's authoritative check-in status, and the
// flag flips only after a confirmed ALLOWED response.
type ScanSession struct {
	client   *Client
	source   CodeSource
	deviceID string

	mu       sync.Mutex
	inFlight bool
	presumed string

	closeOnce sync.Once
}

func NewScanSession(client *Client, source CodeSource) *ScanSession {
	return &ScanSession{
		client:   client,
		source:   source,
		deviceID: uuid.NewString(),
		presumed: checkin.StatusCheckedOut,
	}
}

// Run consumes the code source until it closes or the context is
// cancelled. The source is released on every exit path.
func (s *ScanSession) Run(ctx context.Context) error {
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code, ok := <-s.source.Codes():
			if !ok {
				return nil
			}

			decision, err := s.Scan(ctx, code)
			if err != nil {
				if errors.Is(err, ErrScanInFlight) {
					continue
				}
				log.Printf("scan failed: %v", err)
				continue
			}

			if decision.Allowed() {
				log.Printf("%s: %s", code, s.PresumedState())
			} else {
				log.Printf("%s: denied (%s)", code, decision.Reason)
			}
		}
	}
}

// Scan resolves one scanned code into a check-in or check-out decision.
func (s *ScanSession) Scan(ctx context.Context, code string) (*Decision, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrScanInFlight
	}
	s.inFlight = true
	base := s.presumed
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	// Reconcile against the server before deciding the direction; the
	// cached flag only covers a server that didn't answer.
	if status, err := s.client.CheckStatus(ctx, code); err == nil && status != nil && status.CurrentCheckInStatus != "" {
		base = status.CurrentCheckInStatus
	}

	var decision *Decision
	var err error
	if base == checkin.StatusCheckedIn {
		decision, err = s.client.CheckOut(ctx, code, s.deviceID)
	} else {
		decision, err = s.client.CheckIn(ctx, code, s.deviceID)
	}
	if err != nil {
		return nil, err
	}

	// Only a confirmed ALLOWED flips the cached state; DENIED leaves it
	// untouched.
	if decision.Allowed() {
		s.mu.Lock()
		if base == checkin.StatusCheckedIn {
			s.presumed = checkin.StatusCheckedOut
		} else {
			s.presumed = checkin.StatusCheckedIn
		}
		s.mu.Unlock()
	}

	return decision, nil
}

// PresumedState reports the cached belief about whether the last scanned
// member is inside.
func (s *ScanSession) PresumedState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presumed
}

func (s *ScanSession) DeviceID() string {
	return s.deviceID
}

// Close releases the scanner resource exactly once.
func (s *ScanSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.source.Close()
	})
	return err
}
