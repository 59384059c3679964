package teams

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/lnk-io/lnk-console/internal/platform/httpx"
)

func TestMapWriteErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "teams_slug_key"}

	assert.ErrorIs(t, mapWriteError(pgErr), httpx.ErrDuplicate)

	wrapped := fmt.Errorf("insert team: %w", pgErr)
	assert.ErrorIs(t, mapWriteError(wrapped), httpx.ErrDuplicate)
}

func TestMapWriteErrorPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	assert.Equal(t, boom, mapWriteError(boom))

	fk := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, mapWriteError(fk), httpx.ErrDuplicate)
}
