package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"rngenius/internal/generator/models"
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

func dbFailingWith(err error) *sql.DB {
	return sql.OpenDB(failingConnector{err: err})
}

func TestPostgresParticipantsAddTranslatesUniqueViolation(t *testing.T) {
	db := dbFailingWith(&pgconn.PgError{Code: "23505", ConstraintName: "participants_generator_id_user_id_key"})
	defer db.Close()

	err := NewPostgres(db).Participants().Add(context.Background(), &models.Participant{
		GeneratorID: 1, UserID: 2,
	})
	require.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestPostgresParticipantsAddPassesThroughOtherErrors(t *testing.T) {
	driverErr := errors.New("connection reset")
	db := dbFailingWith(driverErr)
	defer db.Close()

	err := NewPostgres(db).Participants().Add(context.Background(), &models.Participant{
		GeneratorID: 1, UserID: 2,
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, sentinel.ErrConflict)
	require.ErrorIs(t, err, driverErr)
}
