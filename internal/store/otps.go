package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"
)

// OTP purposes.
const (
	OTPPurposeVerify = "verify"
	OTPPurposeReset  = "reset"
)

// OTPValidity is how long a one-time code stays usable.
const OTPValidity = 10 * time.Minute

// CreateOTP generates a 6-digit one-time code for the user and purpose,
// stores it, and returns it.
func CreateOTP(ctx context.Context, db *sql.DB, userID int64, purpose string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	// Only one code per user and purpose is active at a time.
	_, err = db.ExecContext(ctx,
		`DELETE FROM otps WHERE user_id = ? AND purpose = ?`, userID, purpose,
	)
	if err != nil {
		return "", fmt.Errorf("replacing otp: %w", err)
	}

	// created_at is bound from Go so the expiry comparison in VerifyOTP sees
	// the same text representation on both sides.
	_, err = db.ExecContext(ctx,
		`INSERT INTO otps (user_id, code, purpose, created_at) VALUES (?, ?, ?, ?)`,
		userID, code, purpose, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("storing otp: %w", err)
	}

	// Opportunistically clean up expired codes.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM otps WHERE created_at < ?`, time.Now().Add(-OTPValidity),
	)

	return code, nil
}

// VerifyOTP checks the most recent unexpired code for the user and purpose.
// A matching code is consumed.
func VerifyOTP(ctx context.Context, db *sql.DB, userID int64, purpose, code string) (bool, error) {
	var id int64
	var stored string
	err := db.QueryRowContext(ctx,
		`SELECT id, code FROM otps
		 WHERE user_id = ? AND purpose = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`,
		userID, purpose, time.Now().Add(-OTPValidity),
	).Scan(&id, &stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking otp: %w", err)
	}

	if stored != code {
		return false, nil
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM otps WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("consuming otp: %w", err)
	}
	return true, nil
}
