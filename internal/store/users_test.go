package store

import (
	"context"
	"testing"

	"github.com/opencampus/lostfound/internal/db"
	"github.com/opencampus/lostfound/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash123", "CS-101", "555-0100", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "alice@campus.edu" {
		t.Errorf("expected email 'alice@campus.edu', got %q", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}
	if user.EmailVerified {
		t.Error("expected new user to be unverified")
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("expected name 'Alice', got %q", got.Name)
	}
	if got.Phone != "555-0100" {
		t.Errorf("expected phone '555-0100', got %q", got.Phone)
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleAdmin)

	user, err := GetUserByEmail(ctx, database, "alice@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Name != "Alice" {
		t.Errorf("expected 'Alice', got %q", user.Name)
	}

	missing, err := GetUserByEmail(ctx, database, "bob@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUserExists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleUser)

	exists, err := UserExists(ctx, database, "alice@campus.edu", "EE-999")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if !exists {
		t.Error("expected existing email to match")
	}

	exists, _ = UserExists(ctx, database, "other@campus.edu", "CS-101")
	if !exists {
		t.Error("expected existing roll number to match")
	}

	exists, _ = UserExists(ctx, database, "other@campus.edu", "EE-999")
	if exists {
		t.Error("expected no match for unknown email and roll number")
	}
}

func TestSetEmailVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleUser)
	if err := SetEmailVerified(ctx, database, user.ID); err != nil {
		t.Fatalf("SetEmailVerified: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if !got.EmailVerified {
		t.Error("expected email_verified to be set")
	}
}

func TestUpdateUserProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleUser)
	if err := UpdateUserProfile(ctx, database, user.ID, "Alice B", "555-0199"); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Name != "Alice B" || got.Phone != "555-0199" {
		t.Errorf("profile not updated: name=%q phone=%q", got.Name, got.Phone)
	}
}

func TestSoftDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleUser)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// Still fetchable by ID, but marked deleted.
	got, _ := GetUser(ctx, database, user.ID)
	if got == nil {
		t.Fatal("expected soft-deleted user to still be fetchable by ID")
	}
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}

func TestEmailReusableAfterSoftDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	old, _ := CreateUser(ctx, database, "Alice", "shared@campus.edu", "hash", "CS-101", "", model.RoleUser)
	if err := DeleteUser(ctx, database, old.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// The address is free again: registration checks pass and a new account
	// can be created with it.
	exists, err := UserExists(ctx, database, "shared@campus.edu", "CS-202")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if exists {
		t.Fatal("expected soft-deleted account to free up the email")
	}
	fresh, err := CreateUser(ctx, database, "Bob", "shared@campus.edu", "hash", "CS-202", "", model.RoleUser)
	if err != nil {
		t.Fatalf("re-creating user with freed email: %v", err)
	}

	// Lookups by email must resolve the new holder, not the deleted row.
	got, err := GetUserByEmail(ctx, database, "shared@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil {
		t.Fatal("expected the new account to resolve")
	}
	if got.ID != fresh.ID {
		t.Errorf("resolved user %d, want the active account %d", got.ID, fresh.ID)
	}
	if got.DeletedAt != nil {
		t.Error("resolved account should not be soft-deleted")
	}
}

func TestUserPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", "CS-101", "", model.RoleUser)
	photoData := []byte("fake photo data")
	if err := SetUserPhoto(ctx, database, user.ID, photoData, "image/jpeg"); err != nil {
		t.Fatalf("SetUserPhoto: %v", err)
	}

	data, mime, err := GetUserPhoto(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUserPhoto: %v", err)
	}
	if string(data) != "fake photo data" {
		t.Errorf("expected photo data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}
}
