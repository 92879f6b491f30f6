package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
)

var testTime = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func TestInProc_RoundTrip(t *testing.T) {
	q := NewInProc(8)
	ctx := context.Background()

	published, err := event.NewFailedLogin(testTime, event.FailedLogin{
		Email: "victim@example.com", IPAddress: "203.0.113.7",
		BruteForce: true, Attempts: 12, WindowMinutes: 5,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := q.Publish(ctx, published); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var mu sync.Mutex
	var received []event.Event
	err = q.Run(ctx, func(ctx context.Context, ev event.Event) error {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("received %d events, want 1", len(received))
	}
	got, ok := received[0].(*event.FailedLogin)
	if !ok {
		t.Fatalf("received %T, want *event.FailedLogin", received[0])
	}
	if got.ID() != published.ID() {
		t.Errorf("ID = %q, want %q", got.ID(), published.ID())
	}
	if got.Severity() != event.SeverityCritical {
		t.Errorf("Severity = %v, want critical after transport", got.Severity())
	}
}

func TestInProc_CloseDrainsBeforeReturning(t *testing.T) {
	q := NewInProc(8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ev, err := event.NewDatabaseFailure(testTime, event.DatabaseFailure{
			Operation: "query", ErrMessage: "timeout", FailureCount: i + 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := q.Publish(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	n := 0
	if err := q.Run(ctx, func(ctx context.Context, ev event.Event) error {
		n++
		return nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 5 {
		t.Errorf("handled %d events, want all 5 before Run returned", n)
	}
}

func TestInProc_PublishAfterClose(t *testing.T) {
	q := NewInProc(1)
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	ev, err := event.NewDatabaseFailure(testTime, event.DatabaseFailure{
		Operation: "query", ErrMessage: "timeout", FailureCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := q.Publish(context.Background(), ev); err == nil {
		t.Error("Publish() after Close() expected error")
	}
}

func TestInProc_CloseUnblocksFullBufferPublish(t *testing.T) {
	q := NewInProc(0)
	ctx := context.Background()

	ev, err := event.NewDatabaseFailure(testTime, event.DatabaseFailure{
		Operation: "query", ErrMessage: "timeout", FailureCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	// With no consumer and a zero buffer the send blocks until Close.
	done := make(chan error, 1)
	go func() {
		done <- q.Publish(ctx, ev)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("Publish() during Close() expected error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Publish() did not return after Close()")
	}
}

func TestInProc_RunStopsOnContextCancel(t *testing.T) {
	q := NewInProc(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- q.Run(ctx, func(ctx context.Context, ev event.Event) error { return nil })
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestInProc_CloseTwice(t *testing.T) {
	q := NewInProc(1)
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
