package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/vigilo-hq/vigilo/internal/domain/principal"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
	"github.com/vigilo-hq/vigilo/internal/testutil"
)

func seedUsers(t *testing.T, db *sql.DB) {
	t.Helper()
	users := []struct {
		id, email, role, managerID string
	}{
		{"a1", "a1@example.com", "admin", ""},
		{"a2", "a2@example.com", "admin", ""},
		{"m1", "m1@example.com", "manager", ""},
		{"u1", "u1@example.com", "target", "m1"},
		{"u2", "u2@example.com", "target", ""},
	}
	for _, u := range users {
		var managerID interface{}
		if u.managerID != "" {
			managerID = u.managerID
		}
		_, err := db.Exec(`INSERT INTO users (id, email, name, role, manager_id) VALUES (?, ?, ?, ?, ?)`,
			u.id, u.email, "", u.role, managerID)
		if err != nil {
			t.Fatalf("seed user %s: %v", u.id, err)
		}
	}
}

func TestDirectoryRepository_UsersWithRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)
	seedUsers(t, db)
	dir := NewDirectoryRepository(db)

	admins, err := dir.UsersWithRole(context.Background(), principal.RoleAdmin)
	if err != nil {
		t.Fatalf("UsersWithRole() error = %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("admins = %d, want 2", len(admins))
	}

	hr, err := dir.UsersWithRole(context.Background(), principal.RoleHR)
	if err != nil {
		t.Fatalf("UsersWithRole() error = %v", err)
	}
	if len(hr) != 0 {
		t.Errorf("hr = %d, want 0", len(hr))
	}
}

func TestDirectoryRepository_ManagerOf(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)
	seedUsers(t, db)
	dir := NewDirectoryRepository(db)
	ctx := context.Background()

	mgr, err := dir.ManagerOf(ctx, "u1")
	if err != nil {
		t.Fatalf("ManagerOf() error = %v", err)
	}
	if mgr == nil || mgr.ID != "m1" {
		t.Errorf("ManagerOf(u1) = %v, want m1", mgr)
	}

	// No manager is a normal state.
	mgr, err = dir.ManagerOf(ctx, "u2")
	if err != nil {
		t.Fatalf("ManagerOf() error = %v", err)
	}
	if mgr != nil {
		t.Errorf("ManagerOf(u2) = %v, want nil", mgr)
	}

	mgr, err = dir.ManagerOf(ctx, "ghost")
	if err != nil {
		t.Fatalf("ManagerOf() error = %v", err)
	}
	if mgr != nil {
		t.Errorf("ManagerOf(ghost) = %v, want nil", mgr)
	}
}

func TestDirectoryRepository_ByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)
	seedUsers(t, db)
	dir := NewDirectoryRepository(db)
	ctx := context.Background()

	p, err := dir.ByID(ctx, "u1")
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if p.Email != "u1@example.com" || p.Role != principal.RoleTarget {
		t.Errorf("ByID(u1) = %+v", p)
	}

	_, err = dir.ByID(ctx, "ghost")
	if err == nil {
		t.Fatal("ByID(ghost) expected error")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}
