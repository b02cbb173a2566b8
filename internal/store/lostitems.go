package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opencampus/lostfound/internal/model"
)

// CreateLostItem creates a lost item record for the posting user.
func CreateLostItem(ctx context.Context, db *sql.DB, userID int64, name, description, lostLocation string, lostDate *time.Time) (*model.LostItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO lost_items (user_id, name, description, lost_location, lost_date)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, name, description, lostLocation, lostDate,
	)
	if err != nil {
		return nil, fmt.Errorf("creating lost item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting lost item id: %w", err)
	}

	return GetLostItem(ctx, db, id)
}

// GetLostItem returns a lost item by ID, joined with poster details.
func GetLostItem(ctx context.Context, db *sql.DB, id int64) (*model.LostItem, error) {
	item := &model.LostItem{}
	var description, photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT l.id, l.user_id, l.name, l.description, l.lost_location, l.lost_date,
		        l.photo_mime, l.created_at, l.updated_at,
		        u.name AS poster_name, u.email AS poster_email
		 FROM lost_items l
		 JOIN users u ON u.id = l.user_id
		 WHERE l.id = ?`, id,
	).Scan(&item.ID, &item.UserID, &item.Name, &description, &item.LostLocation, &item.LostDate,
		&photoMime, &item.CreatedAt, &item.UpdatedAt, &item.PosterName, &item.PosterEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting lost item: %w", err)
	}
	item.Description = description.String
	item.PhotoMime = photoMime.String
	return item, nil
}

// ListLostItems returns all lost items, newest losses first, joined with poster details.
// When userID > 0 only that user's items are returned.
func ListLostItems(ctx context.Context, db *sql.DB, userID int64) ([]model.LostItem, error) {
	query := `SELECT l.id, l.user_id, l.name, l.description, l.lost_location, l.lost_date,
	                 l.photo_mime, l.created_at, l.updated_at,
	                 u.name AS poster_name, u.email AS poster_email
	          FROM lost_items l
	          JOIN users u ON u.id = l.user_id`
	var args []any

	if userID > 0 {
		query += ` WHERE l.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing lost items: %w", err)
	}
	defer rows.Close()

	var items []model.LostItem
	for rows.Next() {
		var item model.LostItem
		var description, photoMime sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &description, &item.LostLocation,
			&item.LostDate, &photoMime, &item.CreatedAt, &item.UpdatedAt,
			&item.PosterName, &item.PosterEmail); err != nil {
			return nil, fmt.Errorf("scanning lost item: %w", err)
		}
		item.Description = description.String
		item.PhotoMime = photoMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateLostItem updates a lost item owned by userID. Returns false if the item
// does not exist or belongs to someone else.
func UpdateLostItem(ctx context.Context, db *sql.DB, id, userID int64, name, description, lostLocation string, lostDate *time.Time) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE lost_items
		 SET name = ?, description = ?, lost_location = ?, lost_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		name, description, lostLocation, lostDate, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("updating lost item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating lost item: %w", err)
	}
	return n > 0, nil
}

// DeleteLostItem deletes a lost item owned by userID, along with any
// found-reports filed against it. Returns false if the item does not exist
// or belongs to someone else.
func DeleteLostItem(ctx context.Context, db *sql.DB, id, userID int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner int64
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM lost_items WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking lost item owner: %w", err)
	}
	if owner != userID {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM found_reports WHERE lost_item_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting found reports for item: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lost_items WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting lost item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}

// SetLostItemPhoto sets a lost item's photo if owned by userID.
func SetLostItemPhoto(ctx context.Context, db *sql.DB, id, userID int64, photo []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE lost_items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		photo, mime, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("setting lost item photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting lost item photo: %w", err)
	}
	return n > 0, nil
}

// GetLostItemPhoto returns a lost item's photo and MIME type.
func GetLostItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM lost_items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting lost item photo: %w", err)
	}
	return photo, mime.String, nil
}
