package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Коды ошибок Postgres, которые трактуются особо.
const (
	pgInvalidTextRepresentation = "22P02"
)

// IsRetryable сообщает, что операцию можно безопасно повторить:
// запрос гарантированно не дошел до сервера.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return pgconn.SafeToRetry(err)
}

// IsConnectivityFailure сообщает, что ошибка говорит о недоступности хранилища,
// а не об ответе сервера. Такие ошибки учитывает Circuit Breaker.
func IsConnectivityFailure(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return false
	}
	var pgErr *pgconn.PgError
	return !errors.As(err, &pgErr)
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}
