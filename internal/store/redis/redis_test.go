package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

type record struct {
	Value string `json:"value"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := NewWithClient(client)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestPutGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", record{Value: "v1"}, time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var got record
	found, err := s.Get(ctx, "k", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got.Value != "v1" {
		t.Errorf("value = %q, want %q", got.Value, "v1")
	}
}

func TestGet_MissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	var got record
	found, err := s.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for an absent key")
	}
}

func TestPut_TTLExpiry(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", record{Value: "v"}, time.Hour); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(time.Hour + time.Second)

	var got record
	if found, _ := s.Get(ctx, "k", &got); found {
		t.Error("Get() found = true after TTL lapsed")
	}
}

func TestPut_ReplacesRecordAndTTL(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", record{Value: "old"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", record{Value: "new"}, time.Hour); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)

	var got record
	found, err := s.Get(ctx, "k", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("Get() found = false, want the rewritten record")
	}
	if got.Value != "new" {
		t.Errorf("value = %q, want %q", got.Value, "new")
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", record{Value: "v"}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got record
	if found, _ := s.Get(ctx, "k", &got); found {
		t.Error("Get() found = true after delete")
	}

	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete() of absent key error = %v", err)
	}
}

func TestSessionIndex(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := s.AddSession(ctx, "u1", id); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := s.SessionsOf(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Errorf("SessionsOf() = %v, want 3 sessions", ids)
	}

	if err := s.RemoveSession(ctx, "u1", "s2"); err != nil {
		t.Fatal(err)
	}
	ids, _ = s.SessionsOf(ctx, "u1")
	if len(ids) != 2 {
		t.Errorf("SessionsOf() after remove = %v, want 2 sessions", ids)
	}

	if err := s.ClearSessions(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	ids, _ = s.SessionsOf(ctx, "u1")
	if len(ids) != 0 {
		t.Errorf("SessionsOf() after clear = %v, want none", ids)
	}
}
