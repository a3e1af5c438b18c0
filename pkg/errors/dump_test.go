package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCollectsChainAndCode(t *testing.T) {
	cause := stdErrors.New("dial tcp: refused")
	err := fmt.Errorf("checkout: %w", Wrap(CodeDependency, cause, "insert order"))

	d := Dump(err)
	assert.Equal(t, CodeDependency, d.Code)
	require.Len(t, d.Chain, 3)
	assert.Contains(t, d.Chain[2], "dial tcp: refused")
	assert.NotContains(t, d.Fields(), "pg_code")
}

func TestDumpExtractsPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "orders_tracking_id_key", TableName: "orders", Message: "duplicate key value"}
	d := Dump(Wrap(CodeConflict, pgErr, "insert order"))

	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "orders_tracking_id_key", d.PGConstraint)
	assert.Equal(t, "orders", d.Fields()["pg_table"])
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
