package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDB struct {
	stmts  []string
	failAt int
}

func (r *recordingDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	if len(r.stmts) == r.failAt {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (r *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestMigrateRunsEveryStatement(t *testing.T) {
	db := &recordingDB{}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, schema, db.stmts)
}

func TestMigrateStopsAtFirstFailure(t *testing.T) {
	db := &recordingDB{failAt: 3}
	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema statement 3")
	assert.Len(t, db.stmts, 3)
}

// Deleting a user must not reach into other tables.
func TestSchemaHasNoUserForeignKeys(t *testing.T) {
	var drops int
	for _, stmt := range schema {
		upper := strings.ToUpper(stmt)
		assert.NotContains(t, upper, "REFERENCES", stmt)
		assert.NotContains(t, upper, "ON DELETE", stmt)
		if strings.Contains(upper, "DROP CONSTRAINT IF EXISTS") {
			drops++
		}
	}
	assert.Equal(t, 10, drops, "every former user foreign key is dropped on existing databases")
}
