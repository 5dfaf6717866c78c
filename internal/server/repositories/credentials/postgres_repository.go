package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *PostgresRepository) Create(ctx context.Context, userID string, passwordHash string) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (id, user_id, password_hash)
		VALUES ($1, $2, $3)
		RETURNING updated_at
	`
	cred := &models.Credential{ID: uuid.New().String(), UserID: userID, PasswordHash: passwordHash}
	if err := r.db.QueryRowContext(ctx, query, cred.ID, cred.UserID, cred.PasswordHash).Scan(&cred.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	query := `
		SELECT id, user_id, password_hash, updated_at
		FROM credentials
		WHERE user_id = $1
	`
	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&cred.ID, &cred.UserID, &cred.PasswordHash, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}

func (r *PostgresRepository) UpdateHash(ctx context.Context, userID string, passwordHash string) error {
	query := `
		UPDATE credentials SET password_hash = $2, updated_at = now()
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
