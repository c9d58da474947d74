package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const orderColumns = `id, order_id, username, total_price, payment_method, status, idempotency_key, created_at`

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
// Заказы неизменяемы: есть только вставка в транзакции оформления и чтение.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
	cfg  *cfg.PGDBCfg
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter, cfg *cfg.PGDBCfg) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
		cfg:  cfg,
	}
}

// Create вставляет заказ вместе с позициями внутри текущей транзакции.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var idempotencyKey *string
	if order.IdempotencyKey != "" {
		idempotencyKey = &order.IdempotencyKey
	}

	query := `
		INSERT INTO orders (order_id, username, total_price, payment_method, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	created := *order
	err = tx.QueryRow(ctx, query,
		order.OrderID, order.Username, order.TotalPrice,
		string(order.PaymentMethod), order.Status, idempotencyKey,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(order.OrderID, e.ErrDuplicateOrder)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			created.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Subtotal,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
		}
	}

	return &created, nil
}

// GetByIdempotencyKey возвращает ранее созданный заказ по ключу идемпотентности.
func (o *OrderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.QueryTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`

	model, err := scanOrder(o.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrOrderNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	items, err := o.itemsFor(ctx, []int64{model.ID})
	if err != nil {
		return nil, err
	}

	return o.conv.ToEntity(model, items[model.ID]), nil
}

// List возвращает все заказы с позициями, новые первыми.
func (o *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.QueryTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`

	rows, err := o.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	var models []*converter.OrderModel
	ids := make([]int64, 0)
	for rows.Next() {
		model, err := scanOrderRow(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
		ids = append(ids, model.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	if len(models) == 0 {
		return []domain.Order{}, nil
	}

	itemsByOrder, err := o.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Order, 0, len(models))
	for _, model := range models {
		result = append(result, *o.conv.ToEntity(model, itemsByOrder[model.ID]))
	}

	return result, nil
}

// itemsFor загружает позиции для набора заказов одним запросом.
func (o *OrderRepo) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]*converter.OrderItemModel, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := o.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	result := make(map[int64][]*converter.OrderItemModel, len(orderIDs))
	for rows.Next() {
		var model converter.OrderItemModel
		if err := rows.Scan(
			&model.ID, &model.OrderID, &model.ProductID, &model.ProductName,
			&model.Quantity, &model.UnitPrice, &model.Subtotal,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[model.OrderID] = append(result[model.OrderID], &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return result, nil
}

func scanOrder(row pgx.Row) (*converter.OrderModel, error) {
	var model converter.OrderModel
	err := row.Scan(
		&model.ID, &model.OrderID, &model.Username, &model.TotalPrice,
		&model.PaymentMethod, &model.Status, &model.IdempotencyKey, &model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func scanOrderRow(rows pgx.Rows) (*converter.OrderModel, error) {
	return scanOrder(rows)
}
