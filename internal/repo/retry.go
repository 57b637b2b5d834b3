package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"zenithlist/internal/engine"
)

const defaultCompleteAttempts = 5

// SQLSTATE codes Postgres raises when concurrent transactions collide under
// serializable isolation.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// completeWithRetry re-runs the full completion cycle on serialization
// failures. Any other error, and success, return immediately; exhausting
// attempts surfaces ErrTransactionConflict.
func completeWithRetry(attempts int, run func() (engine.Result, error)) (engine.Result, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := run()
		if err == nil || !isSerializationFailure(err) {
			return res, err
		}
		lastErr = err
	}
	return engine.Result{}, fmt.Errorf("%w after %d attempts: %w", ErrTransactionConflict, attempts, lastErr)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
