package tr

import (
	"context"

	"github.com/DRSN-tech/online-store/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// Manager абстрагирует транзакционную границу для usecase-слоя.
type Manager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PgxManager управляет транзакциями pgx через транзакционный менеджер.
type PgxManager struct {
	pool transaction.Transactional
}

func NewPgxManager(pool transaction.Transactional) *PgxManager {
	return &PgxManager{pool: pool}
}

// WithinTransaction открывает транзакцию, кладёт её в контекст и выполняет fn.
// При ошибке fn или коммита транзакция откатывается.
func (m *PgxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.pool)
	if err != nil {
		return e.Wrap("tr.WithinTransaction", err)
	}

	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()

	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err = fn(ctx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	txAny := ctx.Value("tx")
	tx, ok := txAny.(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
