package classify

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// fromStorageDriver recognizes Postgres and Redis driver errors that surfaced
// without a StorageFailure wrapper.
func (c *Classifier) fromStorageDriver(err error) (apperr.ClassifiedError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.storage("postgres", err), true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return c.storage("postgres connect", err), true
	}
	if errors.Is(err, redis.Nil) {
		return c.storage("redis get", err), true
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return c.storage("redis", err), true
	}
	return nil, false
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
