package pgdb

import (
	"context"
	"errors"
	"net"

	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// postgresDuplicate определяет нарушение уникального ограничения.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// storeErr переводит таймауты и сетевые сбои хранилища в e.ErrStoreUnavailable,
// чтобы доставка отдала их клиенту как retryable 503.
func storeErr(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return e.Wrap(err.Error(), e.ErrStoreUnavailable)
	}

	return err
}
