package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opencampus/lostfound/internal/model"
)

// CreateFoundItem creates a found item record for the finding user.
func CreateFoundItem(ctx context.Context, db *sql.DB, userID int64, name, description, foundLocation, pickupLocation, securityQuestion, securityAnswer string, foundDate *time.Time) (*model.FoundItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO found_items (user_id, name, description, found_location, found_date,
		                          pickup_location, security_question, security_answer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, name, description, foundLocation, foundDate,
		pickupLocation, nullIfEmpty(securityQuestion), nullIfEmpty(securityAnswer),
	)
	if err != nil {
		return nil, fmt.Errorf("creating found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting found item id: %w", err)
	}

	return GetFoundItem(ctx, db, id)
}

// GetFoundItem returns a found item by ID, joined with poster details.
func GetFoundItem(ctx context.Context, db *sql.DB, id int64) (*model.FoundItem, error) {
	item := &model.FoundItem{}
	var description, question, answer, photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT f.id, f.user_id, f.name, f.description, f.found_location, f.found_date,
		        f.pickup_location, f.security_question, f.security_answer,
		        f.photo_mime, f.created_at, f.updated_at,
		        u.name AS poster_name, u.email AS poster_email
		 FROM found_items f
		 JOIN users u ON u.id = f.user_id
		 WHERE f.id = ?`, id,
	).Scan(&item.ID, &item.UserID, &item.Name, &description, &item.FoundLocation, &item.FoundDate,
		&item.PickupLocation, &question, &answer, &photoMime, &item.CreatedAt, &item.UpdatedAt,
		&item.PosterName, &item.PosterEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting found item: %w", err)
	}
	item.Description = description.String
	item.SecurityQuestion = question.String
	item.SecurityAnswer = answer.String
	item.PhotoMime = photoMime.String
	return item, nil
}

// ListFoundItems returns all found items, newest first, joined with poster details.
// When userID > 0 only that user's items are returned.
func ListFoundItems(ctx context.Context, db *sql.DB, userID int64) ([]model.FoundItem, error) {
	query := `SELECT f.id, f.user_id, f.name, f.description, f.found_location, f.found_date,
	                 f.pickup_location, f.security_question, f.security_answer,
	                 f.photo_mime, f.created_at, f.updated_at,
	                 u.name AS poster_name, u.email AS poster_email
	          FROM found_items f
	          JOIN users u ON u.id = f.user_id`
	var args []any

	if userID > 0 {
		query += ` WHERE f.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY f.created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing found items: %w", err)
	}
	defer rows.Close()

	var items []model.FoundItem
	for rows.Next() {
		var item model.FoundItem
		var description, question, answer, photoMime sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &description, &item.FoundLocation,
			&item.FoundDate, &item.PickupLocation, &question, &answer, &photoMime,
			&item.CreatedAt, &item.UpdatedAt, &item.PosterName, &item.PosterEmail); err != nil {
			return nil, fmt.Errorf("scanning found item: %w", err)
		}
		item.Description = description.String
		item.SecurityQuestion = question.String
		item.SecurityAnswer = answer.String
		item.PhotoMime = photoMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateFoundItem updates a found item owned by userID. Returns false if the
// item does not exist or belongs to someone else.
func UpdateFoundItem(ctx context.Context, db *sql.DB, id, userID int64, name, description, foundLocation, pickupLocation string, foundDate *time.Time) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE found_items
		 SET name = ?, description = ?, found_location = ?, pickup_location = ?,
		     found_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		name, description, foundLocation, pickupLocation, foundDate, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("updating found item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating found item: %w", err)
	}
	return n > 0, nil
}

// UpdateFoundItemSecurityQA updates the security question and answer used to
// screen claimants. Returns false if the item is not owned by userID.
func UpdateFoundItemSecurityQA(ctx context.Context, db *sql.DB, id, userID int64, question, answer string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE found_items
		 SET security_question = ?, security_answer = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		question, answer, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("updating security question: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating security question: %w", err)
	}
	return n > 0, nil
}

// DeleteFoundItem deletes a found item owned by userID, along with any claims
// filed against it. Returns false if the item does not exist or belongs to
// someone else.
func DeleteFoundItem(ctx context.Context, db *sql.DB, id, userID int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner int64
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM found_items WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking found item owner: %w", err)
	}
	if owner != userID {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE found_item_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting claims for item: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM found_items WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting found item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}

// SetFoundItemPhoto sets a found item's photo if owned by userID.
func SetFoundItemPhoto(ctx context.Context, db *sql.DB, id, userID int64, photo []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE found_items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		photo, mime, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("setting found item photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting found item photo: %w", err)
	}
	return n > 0, nil
}

// GetFoundItemPhoto returns a found item's photo and MIME type.
func GetFoundItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM found_items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting found item photo: %w", err)
	}
	return photo, mime.String, nil
}
