package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Tablero-api/internal/domain"
)

// Caso 1: storageErr marca el error con el sentinela de almacenamiento
// (los handlers lo mapean a 503) y conserva la causa del driver para el log.
func TestStorageErr_EnvuelveConSentinela(t *testing.T) {
	cause := errors.New("ERROR: connection refused (SQLSTATE 08006)")

	err := storageErr("insert row", cause)

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert row")
}

// Caso 2: Los clasificadores de errores pgx reconocen el código SQLSTATE.
func TestClasificadoresDeErroresPgx(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("otra cosa")))

	assert.True(t, isSerialization(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isSerialization(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isSerialization(&pgconn.PgError{Code: "23505"}))
}
