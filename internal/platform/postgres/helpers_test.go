package postgres

import (
	"database/sql"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, Message: "test error", ConstraintName: "test_constraint"}
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	l, _ := logger.NewTestLogger(t)
	return l
}
