package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"blogserver/internal/interfaces"
	"blogserver/internal/schemas"
)

// BeginTransaction begins a new database transaction on the request context.
// If the transaction fails to begin, it logs and sends an error response and
// returns nil.
func BeginTransaction(c *gin.Context, pool interfaces.PgxPoolIface) pgx.Tx {
	LogMessageWithFields(c, "debug", "Beginning transaction")

	tx, err := pool.Begin(c)
	if err != nil {
		WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil
	}

	return tx
}

// RollbackTransaction rolls back the given transaction if an error occurred.
// A rollback of an already committed transaction is not an error.
func RollbackTransaction(c *gin.Context, tx pgx.Tx, err error) {
	if err == nil {
		return
	}

	LogMessageWithFieldsAndError(c, "debug", "Rolling back transaction", err)

	if rollbackErr := tx.Rollback(c); rollbackErr != nil {
		if errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return
		}
		LogMessageWithFieldsAndError(c, "error", "Error rolling back transaction", rollbackErr)
	}
}

// CommitTransaction attempts to commit the given transaction.
// If the commit fails, it logs the error, sends an error response and
// returns the error so the handler can bail out.
func CommitTransaction(c *gin.Context, tx pgx.Tx) error {
	LogMessageWithFields(c, "debug", "Committing transaction")

	if err := tx.Commit(c); err != nil {
		WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	return nil
}
