package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seedora/registry"
)

func eventMessage(t *testing.T, event registry.Event) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &redis.Message{Payload: string(payload)}
}

func TestStreamForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan *redis.Message)
	input := make(chan []string)
	output := make(chan registry.Event)

	s := &SignalService{}
	done := make(chan struct{})
	go func() {
		s.stream(ctx, msgs, input, output)
		close(done)
	}()

	msgs <- eventMessage(t, registry.Event{Type: registry.EventTypeConfirmed, Owner: "ACCTA", TxID: "TX1"})

	select {
	case event := <-output:
		if event.TxID != "TX1" || event.Owner != "ACCTA" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("event was not forwarded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop on context cancellation")
	}
}

func TestStreamAppliesOwnerFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan *redis.Message)
	input := make(chan []string)
	output := make(chan registry.Event)

	s := &SignalService{}
	go s.stream(ctx, msgs, input, output)

	input <- []string{"ACCTB"}

	// The first event is filtered out; the second matches. Receiving the
	// second proves the first never reached output.
	msgs <- eventMessage(t, registry.Event{Owner: "ACCTA", TxID: "TXFILTERED"})
	msgs <- eventMessage(t, registry.Event{Owner: "ACCTB", TxID: "TXMATCHED"})

	select {
	case event := <-output:
		if event.TxID != "TXMATCHED" {
			t.Fatalf("expected the matching event, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("matching event was not forwarded")
	}
}

func TestStreamSkipsMalformedPayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan *redis.Message)
	output := make(chan registry.Event)

	s := &SignalService{}
	go s.stream(ctx, msgs, make(chan []string), output)

	msgs <- &redis.Message{Payload: "{not json"}
	msgs <- eventMessage(t, registry.Event{Owner: "ACCTA", TxID: "TXGOOD"})

	select {
	case event := <-output:
		if event.TxID != "TXGOOD" {
			t.Fatalf("expected the decodable event, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("stream stalled on a malformed payload")
	}
}

func TestStreamAbandonsPendingForwardOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	msgs := make(chan *redis.Message)
	output := make(chan registry.Event)

	s := &SignalService{}
	done := make(chan struct{})
	go func() {
		s.stream(ctx, msgs, make(chan []string), output)
		close(done)
	}()

	// Nobody receives from output, so the forward parks. Cancelling must
	// unblock it; the client side never closes the channel.
	msgs <- eventMessage(t, registry.Event{Owner: "ACCTA", TxID: "TXPENDING"})
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stream stayed parked on an abandoned forward")
	}
}

func TestStreamStopsWhenSubscriptionCloses(t *testing.T) {
	msgs := make(chan *redis.Message)

	s := &SignalService{}
	done := make(chan struct{})
	go func() {
		s.stream(context.Background(), msgs, make(chan []string), make(chan registry.Event))
		close(done)
	}()

	close(msgs)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop when the subscription closed")
	}
}

func TestOwnerMatches(t *testing.T) {
	cases := []struct {
		name    string
		filters []string
		owner   string
		want    bool
	}{
		{"empty filters match everything", nil, "ACCTXYZ", true},
		{"listed owner matches", []string{"ACCTA", "ACCTXYZ"}, "ACCTXYZ", true},
		{"unlisted owner filtered out", []string{"ACCTA"}, "ACCTXYZ", false},
		{"empty owner against filters", []string{"ACCTA"}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ownerMatches(tc.filters, tc.owner); got != tc.want {
				t.Fatalf("ownerMatches(%v, %q) = %v, want %v", tc.filters, tc.owner, got, tc.want)
			}
		})
	}
}
