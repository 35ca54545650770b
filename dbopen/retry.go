package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"modernc.org/sqlite"
)

// SQLite primary result codes for a contended database.
const (
	codeBusy   = 5
	codeLocked = 6
)

// IsBusy reports whether err means another connection holds the lock.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == codeBusy || code == codeLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}

// Exec runs a write, retrying a few times while the database is locked
// beyond busy_timeout. Any other error is returned at once.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = time.Second

	return backoff.Retry(ctx, func() (sql.Result, error) {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil && !IsBusy(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(4))
}
