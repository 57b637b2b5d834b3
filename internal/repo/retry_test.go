package repo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenithlist/internal/engine"
	"zenithlist/internal/models"
)

func conflictErr() error {
	return &pgconn.PgError{Code: codeSerializationFailure, Message: "could not serialize access"}
}

func TestCompleteWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	res, err := completeWithRetry(5, func() (engine.Result, error) {
		calls++
		return engine.Result{Profile: models.Profile{Points: 25}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 25, res.Profile.Points)
}

func TestCompleteWithRetryRecoversFromConflict(t *testing.T) {
	// The second writer loses the first round and wins the re-run against a
	// fresh read: no delta is lost.
	calls := 0
	res, err := completeWithRetry(5, func() (engine.Result, error) {
		calls++
		if calls < 3 {
			return engine.Result{}, conflictErr()
		}
		return engine.Result{Profile: models.Profile{Points: 40}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 40, res.Profile.Points)
}

func TestCompleteWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := completeWithRetry(5, func() (engine.Result, error) {
		calls++
		return engine.Result{}, conflictErr()
	})
	assert.Equal(t, 5, calls)
	assert.ErrorIs(t, err, ErrTransactionConflict)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr), "underlying pg error should stay wrapped")
}

func TestCompleteWithRetryDoesNotRetryFatalErrors(t *testing.T) {
	calls := 0
	_, err := completeWithRetry(5, func() (engine.Result, error) {
		calls++
		return engine.Result{}, ErrProfileNotFound
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(conflictErr()))
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: codeDeadlockDetected}))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("plain")))
	assert.False(t, isSerializationFailure(nil))
}
