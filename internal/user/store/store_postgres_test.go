package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"rngenius/internal/user/models"
	"rngenius/pkg/platform/sentinel"
)

// failingConnector yields connections that fail every statement with a fixed
// driver error, mimicking what the pgx stdlib driver surfaces.
type failingConnector struct{ err error }

func (c failingConnector) Connect(context.Context) (driver.Conn, error) {
	return failingConn{err: c.err}, nil
}
func (c failingConnector) Driver() driver.Driver { return nil }

type failingConn struct{ err error }

func (c failingConn) Prepare(string) (driver.Stmt, error) { return nil, c.err }
func (c failingConn) Close() error                        { return nil }
func (c failingConn) Begin() (driver.Tx, error)           { return nil, c.err }

func TestPostgresStoreAddTranslatesUniqueViolation(t *testing.T) {
	db := sql.OpenDB(failingConnector{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}})
	defer db.Close()

	err := NewPostgresStore(db).Add(context.Background(), &models.User{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	})
	require.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestPostgresStoreAddPassesThroughOtherErrors(t *testing.T) {
	driverErr := errors.New("connection reset")
	db := sql.OpenDB(failingConnector{err: driverErr})
	defer db.Close()

	err := NewPostgresStore(db).Add(context.Background(), &models.User{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, sentinel.ErrConflict)
	require.ErrorIs(t, err, driverErr)
}
