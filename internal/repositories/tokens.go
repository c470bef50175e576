package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunecard/internal/models"
	"github.com/desertthunder/tunecard/internal/shared"
)

// TokenRepository persists [models.TokenRecord] rows keyed by user id.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get retrieves the token record for a user id.
// Returns [shared.ErrNoTokenData] when no row exists.
func (r *TokenRepository) Get(uid string) (*models.TokenRecord, error) {
	query := `
		SELECT uid, access_token, refresh_token, expires_at
		FROM tokens
		WHERE uid = ?
	`

	var (
		userID       string
		accessToken  string
		refreshToken string
		expiresAt    int64
	)

	err := r.db.QueryRow(query, uid).Scan(&userID, &accessToken, &refreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoTokenData, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	record := &models.TokenRecord{
		UID:          userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if expiresAt > 0 {
		record.ExpiresAt = time.Unix(expiresAt, 0)
	}

	return record, nil
}

// Save inserts or replaces the full token record for a user.
func (r *TokenRepository) Save(record *models.TokenRecord) error {
	if record.UID == "" {
		return fmt.Errorf("%w: uid", shared.ErrInvalidArgument)
	}
	if record.RefreshToken == "" {
		return fmt.Errorf("%w: refresh_token", shared.ErrInvalidArgument)
	}

	query := `
		INSERT INTO tokens (uid, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(uid) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query, record.UID, record.AccessToken, record.RefreshToken, unixOrZero(record.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// UpdateAccess writes a refreshed access token and expiry for a user.
// The stored refresh token is never rewritten here.
func (r *TokenRepository) UpdateAccess(uid, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE tokens
		SET access_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE uid = ?
	`

	result, err := r.db.Exec(query, accessToken, unixOrZero(expiresAt), uid)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoTokenData, uid)
	}

	return nil
}

// Delete removes the token record for a user id.
func (r *TokenRepository) Delete(uid string) error {
	result, err := r.db.Exec("DELETE FROM tokens WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoTokenData, uid)
	}

	return nil
}

// List retrieves every stored token record ordered by user id.
func (r *TokenRepository) List() ([]*models.TokenRecord, error) {
	rows, err := r.db.Query(`
		SELECT uid, access_token, refresh_token, expires_at
		FROM tokens
		ORDER BY uid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var records []*models.TokenRecord
	for rows.Next() {
		var (
			userID       string
			accessToken  string
			refreshToken string
			expiresAt    int64
		)

		if err := rows.Scan(&userID, &accessToken, &refreshToken, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}

		record := &models.TokenRecord{
			UID:          userID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		}
		if expiresAt > 0 {
			record.ExpiresAt = time.Unix(expiresAt, 0)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
