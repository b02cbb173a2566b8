package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opencampus/lostfound/internal/model"
)

const reportSelect = `SELECT r.id, r.lost_item_id, r.finder_id, r.message, r.pickup_location, r.status, r.created_at,
       l.name AS item_name, l.user_id AS item_owner_id,
       o.name AS owner_name, o.email AS owner_email,
       u.name AS finder_name, u.email AS finder_email
FROM found_reports r
JOIN lost_items l ON l.id = r.lost_item_id
JOIN users o ON o.id = l.user_id
JOIN users u ON u.id = r.finder_id`

// CreateFoundReport inserts a pending found-report against a lost item.
func CreateFoundReport(ctx context.Context, db *sql.DB, lostItemID, finderID int64, message, pickupLocation string) (*model.FoundReport, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO found_reports (lost_item_id, finder_id, message, pickup_location)
		 VALUES (?, ?, ?, ?)`,
		lostItemID, finderID, nullIfEmpty(message), pickupLocation,
	)
	if err != nil {
		return nil, fmt.Errorf("creating found report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found report id: %w", err)
	}

	return GetFoundReport(ctx, db, id)
}

// GetFoundReport returns a found-report by ID, joined with item, owner, and
// finder details.
func GetFoundReport(ctx context.Context, db *sql.DB, id int64) (*model.FoundReport, error) {
	r := &model.FoundReport{}
	var message sql.NullString
	err := db.QueryRowContext(ctx, reportSelect+` WHERE r.id = ?`, id).Scan(
		&r.ID, &r.LostItemID, &r.FinderID, &message, &r.PickupLocation, &r.Status, &r.CreatedAt,
		&r.ItemName, &r.ItemOwnerID, &r.OwnerName, &r.OwnerEmail, &r.FinderName, &r.FinderEmail,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found report: %w", err)
	}
	r.Message = message.String
	return r, nil
}

// ListFoundReportsByFinder returns reports filed by a user, newest first.
func ListFoundReportsByFinder(ctx context.Context, db *sql.DB, finderID int64) ([]model.FoundReport, error) {
	rows, err := db.QueryContext(ctx,
		reportSelect+` WHERE r.finder_id = ? ORDER BY r.created_at DESC`, finderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing found reports by finder: %w", err)
	}
	defer rows.Close()

	return scanFoundReports(rows)
}

// ListFoundReportsForOwner returns reports concerning lost items posted by the
// given user, newest first.
func ListFoundReportsForOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]model.FoundReport, error) {
	rows, err := db.QueryContext(ctx,
		reportSelect+` WHERE l.user_id = ? ORDER BY r.created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing found reports for owner: %w", err)
	}
	defer rows.Close()

	return scanFoundReports(rows)
}

// UpdateFoundReportStatus sets a found-report's status.
func UpdateFoundReportStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE found_reports SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating found report status: %w", err)
	}
	return nil
}

// DeleteFoundReportOwned deletes a found-report if it was filed by finderID.
// Returns false if the report does not exist or belongs to someone else.
func DeleteFoundReportOwned(ctx context.Context, db *sql.DB, id, finderID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM found_reports WHERE id = ? AND finder_id = ?`, id, finderID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting found report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting found report: %w", err)
	}
	return n > 0, nil
}

func scanFoundReports(rows *sql.Rows) ([]model.FoundReport, error) {
	var reports []model.FoundReport
	for rows.Next() {
		var r model.FoundReport
		var message sql.NullString
		if err := rows.Scan(&r.ID, &r.LostItemID, &r.FinderID, &message, &r.PickupLocation,
			&r.Status, &r.CreatedAt, &r.ItemName, &r.ItemOwnerID,
			&r.OwnerName, &r.OwnerEmail, &r.FinderName, &r.FinderEmail); err != nil {
			return nil, fmt.Errorf("scanning found report: %w", err)
		}
		r.Message = message.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
