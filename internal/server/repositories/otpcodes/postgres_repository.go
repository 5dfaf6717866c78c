package otpcodes

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT INTO otp_codes (id, user_id, purpose, code_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		code.ID, code.UserID, code.Purpose, code.CodeHash, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume performs check-and-mark in one statement. The expiry comparison
// uses the caller's clock reading so check and use share one time source.
func (r *PostgresRepository) Consume(ctx context.Context, userID, purpose, codeHash string, now time.Time) (bool, error) {
	query := `
		UPDATE otp_codes SET consumed = true
		WHERE user_id = $1 AND purpose = $2 AND code_hash = $3
		  AND consumed = false AND expires_at > $4
	`
	res, err := r.db.ExecContext(ctx, query, userID, purpose, codeHash, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}
