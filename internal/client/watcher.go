package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gymgate/internal/models"
)

// TerminalSignal is the first word on a member's final review outcome.
type TerminalSignal struct {
	Status models.MembershipStatus
	// Source is "push" or "poll", whichever produced the signal first.
	Source string
}

// StatusWatcher keeps a pending member's status eventually consistent:
// push events have no replay, so it also polls on a fixed cadence, and the
// first terminal report from either producer wins. The winner is delivered
// exactly once; everything after is dropped.
type StatusWatcher struct {
	client   *Client
	interval time.Duration
	events   <-chan Event
	onError  func(error)

	once sync.Once
	done chan TerminalSignal
}

func NewStatusWatcher(client *Client, interval time.Duration) *StatusWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StatusWatcher{
		client:   client,
		interval: interval,
		done:     make(chan TerminalSignal, 1),
	}
}

// SetEvents attaches a push event stream, typically a Subscriber already
// joined to the member's private channel. Without one the watcher is
// poll-only.
func (w *StatusWatcher) SetEvents(events <-chan Event) {
	w.events = events
}

// SetErrorHandler receives poll failures. They are surfaced, not retried;
// the poll cadence itself is the retry.
func (w *StatusWatcher) SetErrorHandler(fn func(error)) {
	w.onError = fn
}

// Watch starts both producers and returns the one-shot result channel.
// Cancelling the context stops everything; the channel then stays silent.
func (w *StatusWatcher) Watch(ctx context.Context, memberID string) <-chan TerminalSignal {
	go w.pollLoop(ctx, memberID)
	if w.events != nil {
		go w.pushLoop(ctx, memberID)
	}
	return w.done
}

func (w *StatusWatcher) pollLoop(ctx context.Context, memberID string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx, memberID)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *StatusWatcher) poll(ctx context.Context, memberID string) {
	status, err := w.client.CheckStatus(ctx, memberID)
	if err != nil {
		if w.onError != nil && ctx.Err() == nil {
			w.onError(err)
		}
		return
	}
	if status == nil {
		return
	}
	if isTerminal(status.Status) {
		w.resolve(TerminalSignal{Status: status.Status, Source: "poll"})
	}
}

func (w *StatusWatcher) pushLoop(ctx context.Context, memberID string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.events:
			if !ok {
				return
			}

			var data MemberEventData
			if err := json.Unmarshal(event.Data, &data); err != nil {
				continue
			}
			if data.MemberID != memberID {
				continue
			}

			switch event.Event {
			case "member:approved":
				w.resolve(TerminalSignal{Status: models.MembershipStatusApproved, Source: "push"})
			case "member:rejected":
				w.resolve(TerminalSignal{Status: models.MembershipStatusRejected, Source: "push"})
			}
		}
	}
}

func (w *StatusWatcher) resolve(signal TerminalSignal) {
	w.once.Do(func() {
		w.done <- signal
	})
}

func isTerminal(status models.MembershipStatus) bool {
	switch status {
	case models.MembershipStatusApproved, models.MembershipStatusActive, models.MembershipStatusRejected:
		return true
	}
	return false
}
