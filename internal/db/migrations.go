package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: enforce at most one pending claim per user per found item.
	// Databases created before the index existed may carry duplicates; drop them
	// first so the index can be built.
	`DELETE FROM claims WHERE id NOT IN (
	     SELECT MIN(id) FROM claims WHERE status = 'pending' GROUP BY found_item_id, claimer_id
	 ) AND status = 'pending'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_one_pending
	     ON claims(found_item_id, claimer_id) WHERE status = 'pending'`,
}

// Migrate creates the schema and applies the migrations on top.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
