package otpcodes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+otp_codes\s*\(id,\s*user_id,\s*purpose,\s*code_hash,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	mock.ExpectExec(q).
		WithArgs("c-1", "u-1", "password_reset", "hash123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.OTPCode{
		ID: "c-1", UserID: "u-1", Purpose: "password_reset",
		CodeHash: "hash123", ExpiresAt: time.Now().Add(5 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConsume_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+otp_codes\s+SET\s+consumed\s*=\s*true\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2\s+AND\s+code_hash\s*=\s*\$3\s+AND\s+consumed\s*=\s*false\s+AND\s+expires_at\s*>\s*\$4\s*$`

	mock.ExpectExec(q).
		WithArgs("u-1", "password_reset", "hash123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Consume(context.Background(), "u-1", "password_reset", "hash123", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected consume to succeed")
	}
}

func TestConsume_AlreadyConsumedOrExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+otp_codes\s+SET\s+consumed\s*=\s*true\b`

	// Wrong, expired, and consumed codes all land here: zero rows.
	mock.ExpectExec(q).
		WithArgs("u-1", "password_reset", "hash123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Consume(context.Background(), "u-1", "password_reset", "hash123", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected consume to report false")
	}
}

func TestConsume_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+otp_codes\s+SET\s+consumed\s*=\s*true\b`

	mock.ExpectExec(q).
		WithArgs("u-1", "password_reset", "hash123", sqlmock.AnyArg()).
		WillReturnError(errors.New("db err"))

	_, err := repo.Consume(context.Background(), "u-1", "password_reset", "hash123", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
