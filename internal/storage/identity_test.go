// ABOUTME: Tests for the configurable uniqueness of users.clerk_user_id.
// ABOUTME: Covers the unenforced default, enforcement, and enabling over duplicates.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/models"
)

func TestDuplicateIdentityAllowedByDefault(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := models.NewUser("user_dup")
	second := models.NewUser("user_dup")
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	second.UpdatedAt = second.CreatedAt
	for _, u := range []*models.User{first, second} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	if db.UniqueIdentityEnforced() {
		t.Error("uniqueness should not be enforced by default")
	}

	got, err := db.GetUserByClerkID(ctx, "user_dup")
	if err != nil {
		t.Fatalf("GetUserByClerkID failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected oldest user %v, got %v", first.ID, got.ID)
	}
}

func TestDuplicateIdentityRejectedWhenEnforced(t *testing.T) {
	db := setupTestDBWithOptions(t, Options{EnforceUniqueIdentity: true})
	ctx := context.Background()

	if err := db.CreateUser(ctx, models.NewUser("user_unique")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	err := db.CreateUser(ctx, models.NewUser("user_unique"))
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("expected ErrDuplicateIdentity, got %v", err)
	}

	other := models.NewUser("user_other")
	if err := db.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	other.ClerkUserID = "user_unique"
	if err := db.UpdateUser(ctx, other); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("UpdateUser to a taken identity: expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestEnforceIdentityOverExistingDuplicates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.CreateUser(ctx, models.NewUser("user_twice")); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	db.Close()

	_, err = Open(dbPath, Options{EnforceUniqueIdentity: true})
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity when enforcing over duplicates, got %v", err)
	}

	// Toggling back off keeps working.
	db, err = Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	users, err := db.ListUsers(ctx, 0)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestIdentityIndexFollowsOption(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	for _, enforce := range []bool{true, false, true} {
		db, err := Open(dbPath, Options{EnforceUniqueIdentity: enforce})
		if err != nil {
			t.Fatalf("Open(enforce=%v) failed: %v", enforce, err)
		}

		tables, err := db.DescribeSchema(ctx)
		if err != nil {
			t.Fatalf("DescribeSchema failed: %v", err)
		}
		var users TableInfo
		for _, ti := range tables {
			if ti.Name == TableUsers {
				users = ti
			}
		}
		idx, ok := users.Index(IdentityIndexName)
		if ok != enforce {
			t.Errorf("enforce=%v: index present = %v", enforce, ok)
		}
		if ok && !idx.Unique {
			t.Errorf("identity index should be unique")
		}
		db.Close()
	}
}
