package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResetTokenExpiry is how long a password-reset link stays valid.
const ResetTokenExpiry = time.Hour

// CreatePasswordReset issues a single-use reset token for a user.
func CreatePasswordReset(ctx context.Context, db *sql.DB, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO password_resets (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Add(ResetTokenExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("creating password reset: %w", err)
	}
	return token, nil
}

// ConsumePasswordReset validates a reset token and marks it used, returning
// the user ID it was issued for. Returns 0 (no error) for unknown, expired,
// or already-used tokens so callers can't distinguish the cases.
func ConsumePasswordReset(ctx context.Context, db *sql.DB, token string) (int64, error) {
	var userID int64
	var expiresAt time.Time
	var usedAt sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT user_id, expires_at, used_at FROM password_resets WHERE token = ?`, token,
	).Scan(&userID, &expiresAt, &usedAt)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up password reset: %w", err)
	}

	if usedAt.Valid || time.Now().After(expiresAt) {
		return 0, nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE password_resets SET used_at = CURRENT_TIMESTAMP WHERE token = ?`, token,
	)
	if err != nil {
		return 0, fmt.Errorf("consuming password reset: %w", err)
	}

	// Opportunistically clean up stale tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < ?`, time.Now().Add(-24*time.Hour),
	)

	return userID, nil
}
