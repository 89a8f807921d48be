package store

import (
	"context"
	"testing"

	"github.com/ameliecafe/storefront/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, database, "Admin@ameliecafe.com.br", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "admin@ameliecafe.com.br" {
		t.Errorf("expected lowercased email, got %q", u.Email)
	}

	got, err := GetUserByEmail(ctx, database, "ADMIN@ameliecafe.com.br")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("expected lookup by email to match, got %+v", got)
	}
}

func TestCountUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	n, err := CountUsers(ctx, database)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 users, got %d", n)
	}

	CreateUser(ctx, database, "admin@example.com", "hash")
	n, _ = CountUsers(ctx, database)
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestUpdateUserPasswordAndEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "admin@example.com", "old-hash")

	if err := UpdateUserPassword(ctx, database, u.ID, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	if err := UpdateUserEmail(ctx, database, u.ID, "Owner@example.com"); err != nil {
		t.Fatalf("UpdateUserEmail: %v", err)
	}

	got, _ := GetUser(ctx, database, u.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
	if got.Email != "owner@example.com" {
		t.Errorf("expected updated email, got %q", got.Email)
	}
}
