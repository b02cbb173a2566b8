package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/opencampus/lostfound/internal/db"
	"github.com/opencampus/lostfound/internal/model"
)

// newTestUser creates a user for item tests.
func newTestUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), database, "Test User", email, "hash", "RN-"+email, "", model.RoleUser)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func TestCreateAndGetLostItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database, "alice@campus.edu")

	lostDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	item, err := CreateLostItem(ctx, database, user.ID, "Blue Backpack", "Jansport, torn strap", "Library", &lostDate)
	if err != nil {
		t.Fatalf("CreateLostItem: %v", err)
	}
	if item.Name != "Blue Backpack" {
		t.Errorf("expected name 'Blue Backpack', got %q", item.Name)
	}
	if item.PosterName != "Test User" {
		t.Errorf("expected joined poster name, got %q", item.PosterName)
	}
	if item.LostDate == nil || !item.LostDate.Equal(lostDate) {
		t.Errorf("expected lost date %v, got %v", lostDate, item.LostDate)
	}
}

func TestListLostItemsByUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, database, "alice@campus.edu")
	bob := newTestUser(t, database, "bob@campus.edu")

	CreateLostItem(ctx, database, alice.ID, "Keys", "", "Gym", nil)
	CreateLostItem(ctx, database, bob.ID, "Wallet", "", "Cafeteria", nil)

	all, err := ListLostItems(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListLostItems: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}

	mine, _ := ListLostItems(ctx, database, alice.ID)
	if len(mine) != 1 {
		t.Errorf("expected 1 item for alice, got %d", len(mine))
	}
	if len(mine) == 1 && mine[0].Name != "Keys" {
		t.Errorf("expected 'Keys', got %q", mine[0].Name)
	}
}

func TestUpdateLostItemOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, database, "alice@campus.edu")
	bob := newTestUser(t, database, "bob@campus.edu")

	item, _ := CreateLostItem(ctx, database, alice.ID, "Keys", "", "Gym", nil)

	// Non-owner update must not touch the row.
	ok, err := UpdateLostItem(ctx, database, item.ID, bob.ID, "Stolen Keys", "", "Gym", nil)
	if err != nil {
		t.Fatalf("UpdateLostItem: %v", err)
	}
	if ok {
		t.Error("expected non-owner update to be rejected")
	}

	ok, _ = UpdateLostItem(ctx, database, item.ID, alice.ID, "House Keys", "on a red ring", "Gym", nil)
	if !ok {
		t.Fatal("expected owner update to succeed")
	}

	got, _ := GetLostItem(ctx, database, item.ID)
	if got.Name != "House Keys" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
}

func TestDeleteLostItemOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, database, "alice@campus.edu")
	bob := newTestUser(t, database, "bob@campus.edu")

	item, _ := CreateLostItem(ctx, database, alice.ID, "Keys", "", "Gym", nil)

	ok, err := DeleteLostItem(ctx, database, item.ID, bob.ID)
	if err != nil {
		t.Fatalf("DeleteLostItem: %v", err)
	}
	if ok {
		t.Error("expected non-owner delete to be rejected")
	}

	ok, _ = DeleteLostItem(ctx, database, item.ID, alice.ID)
	if !ok {
		t.Fatal("expected owner delete to succeed")
	}

	got, _ := GetLostItem(ctx, database, item.ID)
	if got != nil {
		t.Error("expected item to be gone after delete")
	}
}

func TestDeleteLostItemCascadesReports(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, database, "alice@campus.edu")
	bob := newTestUser(t, database, "bob@campus.edu")

	item, _ := CreateLostItem(ctx, database, alice.ID, "Keys", "", "Gym", nil)
	CreateFoundReport(ctx, database, item.ID, bob.ID, "found them", "Gate 2")

	ok, err := DeleteLostItem(ctx, database, item.ID, alice.ID)
	if err != nil {
		t.Fatalf("DeleteLostItem: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to succeed")
	}

	reports, _ := ListFoundReportsByFinder(ctx, database, bob.ID)
	if len(reports) != 0 {
		t.Errorf("expected reports to be removed with the item, got %d", len(reports))
	}
}

func TestLostItemPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newTestUser(t, database, "alice@campus.edu")
	bob := newTestUser(t, database, "bob@campus.edu")

	item, _ := CreateLostItem(ctx, database, alice.ID, "Keys", "", "Gym", nil)

	ok, _ := SetLostItemPhoto(ctx, database, item.ID, bob.ID, []byte("data"), "image/jpeg")
	if ok {
		t.Error("expected non-owner photo set to be rejected")
	}

	ok, err := SetLostItemPhoto(ctx, database, item.ID, alice.ID, []byte("photo bytes"), "image/jpeg")
	if err != nil || !ok {
		t.Fatalf("SetLostItemPhoto: ok=%v err=%v", ok, err)
	}

	data, mime, err := GetLostItemPhoto(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetLostItemPhoto: %v", err)
	}
	if string(data) != "photo bytes" || mime != "image/jpeg" {
		t.Errorf("unexpected photo: %q %q", string(data), mime)
	}
}
