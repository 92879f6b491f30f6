package remediation

import (
	"context"
	"testing"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/store/memory"
	"github.com/vigilo-hq/vigilo/internal/testutil"
)

var testTime = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newService(t *testing.T) (remediation.Actions, *testutil.FakeClock, *memory.Store) {
	t.Helper()
	clk := testutil.NewFakeClock(testTime)
	store := memory.New(clk)
	return NewService(store, store, clk, testutil.NewTestLogger()), clk, store
}

func TestBlockIP_LifecycleAndExpiry(t *testing.T) {
	svc, clk, _ := newService(t)
	ctx := context.Background()

	if err := svc.BlockIP(ctx, "203.0.113.7", 24*time.Hour, "brute force", event.SeverityCritical); err != nil {
		t.Fatalf("BlockIP() error = %v", err)
	}

	state, err := svc.IsIPBlocked(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("IsIPBlocked() error = %v", err)
	}
	if state == nil {
		t.Fatal("IsIPBlocked() = nil, want active block")
	}
	if state.Subject != "203.0.113.7" {
		t.Errorf("Subject = %q, want the blocked address", state.Subject)
	}
	if want := testTime.Add(24 * time.Hour); !state.Until.Equal(want) {
		t.Errorf("Until = %v, want %v", state.Until, want)
	}

	clk.Advance(24*time.Hour + time.Second)

	state, err = svc.IsIPBlocked(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("IsIPBlocked() after expiry error = %v", err)
	}
	if state != nil {
		t.Errorf("IsIPBlocked() after expiry = %+v, want nil", state)
	}
}

func TestBlockIP_ReblockReplacesRecord(t *testing.T) {
	svc, clk, _ := newService(t)
	ctx := context.Background()

	if err := svc.BlockIP(ctx, "203.0.113.7", time.Hour, "first", event.SeverityMedium); err != nil {
		t.Fatalf("BlockIP() error = %v", err)
	}

	clk.Advance(30 * time.Minute)
	if err := svc.BlockIP(ctx, "203.0.113.7", 7*24*time.Hour, "known attacker", event.SeverityCritical); err != nil {
		t.Fatalf("BlockIP() second call error = %v", err)
	}

	// The original TTL would have lapsed here; the replacement must not.
	clk.Advance(time.Hour)

	state, err := svc.IsIPBlocked(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("IsIPBlocked() error = %v", err)
	}
	if state == nil {
		t.Fatal("IsIPBlocked() = nil, want the replacement block")
	}
	if state.Reason != "known attacker" {
		t.Errorf("Reason = %q, want latest reason", state.Reason)
	}
	if want := testTime.Add(30*time.Minute + 7*24*time.Hour); !state.Until.Equal(want) {
		t.Errorf("Until = %v, want %v", state.Until, want)
	}
}

func TestSuspendAccount(t *testing.T) {
	svc, clk, _ := newService(t)
	ctx := context.Background()

	if state, _ := svc.IsSuspended(ctx, "u1"); state != nil {
		t.Fatalf("IsSuspended() before suspension = %+v, want nil", state)
	}

	if err := svc.SuspendAccount(ctx, "u1", 48*time.Hour, "access violation"); err != nil {
		t.Fatalf("SuspendAccount() error = %v", err)
	}

	state, err := svc.IsSuspended(ctx, "u1")
	if err != nil {
		t.Fatalf("IsSuspended() error = %v", err)
	}
	if state == nil {
		t.Fatal("IsSuspended() = nil, want active suspension")
	}
	if state.Reason != "access violation" {
		t.Errorf("Reason = %q", state.Reason)
	}

	clk.Advance(49 * time.Hour)
	if state, _ := svc.IsSuspended(ctx, "u1"); state != nil {
		t.Errorf("IsSuspended() after expiry = %+v, want nil", state)
	}
}

func TestEnableMonitoring(t *testing.T) {
	svc, clk, store := newService(t)
	ctx := context.Background()

	if err := svc.EnableMonitoring(ctx, "u1", 12*time.Hour); err != nil {
		t.Fatalf("EnableMonitoring() error = %v", err)
	}

	var state remediation.ProtectiveState
	found, err := store.Get(ctx, remediation.MonitoredKey("u1"), &state)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("no monitoring record stored")
	}
	if state.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", state.Subject)
	}
	if want := testTime.Add(12 * time.Hour); !state.Until.Equal(want) {
		t.Errorf("Until = %v, want %v", state.Until, want)
	}

	clk.Advance(12*time.Hour + time.Second)
	if found, _ := store.Get(ctx, remediation.MonitoredKey("u1"), &state); found {
		t.Error("monitoring record still present after expiry")
	}
}

func TestTerminateSession(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	if err := store.AddSession(ctx, "u1", "s1"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddSession(ctx, "u1", "s2"); err != nil {
		t.Fatal(err)
	}

	if err := svc.TerminateSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("TerminateSession() error = %v", err)
	}

	remaining, err := store.SessionsOf(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0] != "s2" {
		t.Errorf("SessionsOf() = %v, want only s2", remaining)
	}
}

func TestTerminateAllSessions(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := store.AddSession(ctx, "u1", id); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.TerminateAllSessions(ctx, "u1"); err != nil {
		t.Fatalf("TerminateAllSessions() error = %v", err)
	}

	remaining, err := store.SessionsOf(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("SessionsOf() = %v, want empty", remaining)
	}
}

func TestTerminateAllSessions_EmptySetIsNoOp(t *testing.T) {
	svc, _, _ := newService(t)

	if err := svc.TerminateAllSessions(context.Background(), "nobody"); err != nil {
		t.Errorf("TerminateAllSessions() on empty set error = %v", err)
	}
}
