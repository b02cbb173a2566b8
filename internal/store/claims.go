package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/opencampus/lostfound/internal/model"
)

const claimSelect = `SELECT c.id, c.found_item_id, c.claimer_id, c.message, c.status, c.created_at,
       f.name AS item_name, f.user_id AS item_owner_id, f.pickup_location,
       u.name AS claimer_name, u.email AS claimer_email
FROM claims c
JOIN found_items f ON f.id = c.found_item_id
JOIN users u ON u.id = c.claimer_id`

// ErrDuplicateClaim means a pending claim by the same user already exists for
// the item. Raised by the partial unique index, so it also catches inserts
// racing past the caller's pre-check.
var ErrDuplicateClaim = errors.New("pending claim already exists")

// CreateClaim inserts a pending claim on a found item.
func CreateClaim(ctx context.Context, db *sql.DB, foundItemID, claimerID int64, message string) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (found_item_id, claimer_id, message) VALUES (?, ?, ?)`,
		foundItemID, claimerID, nullIfEmpty(message),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateClaim
		}
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID, joined with item and claimer details.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	var message sql.NullString
	err := db.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id).Scan(
		&c.ID, &c.FoundItemID, &c.ClaimerID, &message, &c.Status, &c.CreatedAt,
		&c.ItemName, &c.ItemOwnerID, &c.PickupLocation, &c.ClaimerName, &c.ClaimerEmail,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	c.Message = message.String
	return c, nil
}

// ListClaimsForItem returns all claims on a found item, newest first.
func ListClaimsForItem(ctx context.Context, db *sql.DB, foundItemID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		claimSelect+` WHERE c.found_item_id = ? ORDER BY c.created_at DESC`, foundItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for item: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListClaimsByUser returns all claims filed by a user, newest first.
func ListClaimsByUser(ctx context.Context, db *sql.DB, claimerID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		claimSelect+` WHERE c.claimer_id = ? ORDER BY c.created_at DESC`, claimerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims by user: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// HasPendingClaim reports whether the user already has a pending claim on the item.
func HasPendingClaim(ctx context.Context, db *sql.DB, foundItemID, claimerID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims
		 WHERE found_item_id = ? AND claimer_id = ? AND status = 'pending'`,
		foundItemID, claimerID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending claim: %w", err)
	}
	return count > 0, nil
}

// UpdateClaimStatus sets a claim's status.
func UpdateClaimStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating claim status: %w", err)
	}
	return nil
}

// DeleteClaimOwned deletes a claim if it was filed by claimerID. Returns false
// if the claim does not exist or belongs to someone else.
func DeleteClaimOwned(ctx context.Context, db *sql.DB, id, claimerID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM claims WHERE id = ? AND claimer_id = ?`, id, claimerID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var message sql.NullString
		if err := rows.Scan(&c.ID, &c.FoundItemID, &c.ClaimerID, &message, &c.Status, &c.CreatedAt,
			&c.ItemName, &c.ItemOwnerID, &c.PickupLocation, &c.ClaimerName, &c.ClaimerEmail); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.Message = message.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
