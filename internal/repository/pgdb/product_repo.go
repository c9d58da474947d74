package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `id, name, manufacturer, category, description, image_url, price, stock, created_at, updated_at, is_archived`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
	cfg  *cfg.PGDBCfg
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter, cfg *cfg.PGDBCfg) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
		cfg:  cfg,
	}
}

// List возвращает все неархивированные товары.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_archived
		ORDER BY id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *p.conv.ToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return result, nil
}

// GetByID возвращает неархивированный товар либо e.ErrProductNotFound.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND NOT is_archived
	`

	model, err := scanProduct(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product %d", id), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return p.conv.ToEntity(model), nil
}

// Create вставляет новый товар и возвращает его с заполненными полями БД.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	query := `
		INSERT INTO products (name, manufacturer, category, description, image_url, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns + `
	`

	model, err := scanProduct(p.pool.QueryRow(ctx, query,
		product.Name, product.Manufacturer, string(product.Category),
		product.Description, product.ImageURL, product.Price, product.Stock,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return p.conv.ToEntity(model), nil
}

// Update выполняет частичное обновление: изменяются только не-nil поля.
func (p *ProductRepo) Update(ctx context.Context, id int64, upd *usecase.ProductUpdate) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Manufacturer != nil {
		add("manufacturer", *upd.Manufacturer)
	}
	if upd.Category != nil {
		add("category", string(*upd.Category))
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Stock != nil {
		add("stock", *upd.Stock)
	}

	if len(set) == 0 {
		return p.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE products
		SET %s, updated_at = NOW()
		WHERE id = $%d AND NOT is_archived
		RETURNING `+productColumns,
		strings.Join(set, ", "), len(args),
	)

	model, err := scanProduct(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product %d", id), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return p.conv.ToEntity(model), nil
}

// Archive помечает товар удалённым, сохраняя строку для ссылок из заказов.
func (p *ProductRepo) Archive(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	query := `
		UPDATE products
		SET is_archived = true, updated_at = NOW()
		WHERE id = $1 AND NOT is_archived
	`

	result, err := p.pool.Exec(ctx, query, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(fmt.Sprintf("product %d", id), e.ErrProductNotFound)
	}

	return nil
}

// SetImageURL обновляет ссылку на изображение товара.
func (p *ProductRepo) SetImageURL(ctx context.Context, id int64, url string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	query := `
		UPDATE products
		SET image_url = $2, updated_at = NOW()
		WHERE id = $1 AND NOT is_archived
		RETURNING ` + productColumns

	model, err := scanProduct(p.pool.QueryRow(ctx, query, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product %d", id), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return p.conv.ToEntity(model), nil
}

// DecrementStock атомарно списывает quantity единиц при достаточном остатке.
// Условный UPDATE сериализует конкурирующие оформления по строке товара:
// две транзакции не могут обе пройти проверку stock >= quantity.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, quantity int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND NOT is_archived AND stock >= $2
		RETURNING ` + productColumns

	model, err := scanProduct(tx.QueryRow(ctx, query, id, quantity))
	if err == nil {
		return p.conv.ToEntity(model), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	// Промах: различаем отсутствующий товар и нехватку остатка.
	var name string
	var stock int64
	lookup := `SELECT name, stock FROM products WHERE id = $1 AND NOT is_archived`
	if err := tx.QueryRow(ctx, lookup, id).Scan(&name, &stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(fmt.Sprintf("product %d", id), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return nil, e.NewInsufficientStockError(id, name, stock)
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Manufacturer, &model.Category,
		&model.Description, &model.ImageURL, &model.Price, &model.Stock,
		&model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}
