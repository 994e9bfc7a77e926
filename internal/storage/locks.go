package db

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ClaimLockID derives the advisory lock key guarding watch passes of one claim.
func ClaimLockID(claimID string) int64 {
	return int64(xxhash.Sum64String("sred-watch:" + claimID)) //nolint:gosec // wraparound is fine for a lock key
}

// TryAcquireAdvisoryLock takes a session-level advisory lock on a dedicated
// connection. When acquired, the returned release func unlocks and returns
// the connection to the pool; it must be called exactly once.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (func(), bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		if _, err := conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", lockID); err != nil {
			db.Logger.Warn().Err(err).Int64("lock_id", lockID).Msg("release advisory lock")
		}

		conn.Release()
	}

	return release, true, nil
}
