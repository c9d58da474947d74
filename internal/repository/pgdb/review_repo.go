package pgdb

import (
	"context"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ReviewRepo реализует репозиторий отзывов поверх PostgreSQL.
type ReviewRepo struct {
	pool *pgxpool.Pool
	conv converter.ReviewConverter
	cfg  *cfg.PGDBCfg
}

func NewReviewRepo(pool *pgxpool.Pool, conv converter.ReviewConverter, cfg *cfg.PGDBCfg) *ReviewRepo {
	return &ReviewRepo{
		pool: pool,
		conv: conv,
		cfg:  cfg,
	}
}

// Create добавляет отзыв к товару.
func (r *ReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
	defer cancel()

	query := `
		INSERT INTO product_reviews (product_id, username, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, product_id, username, rating, comment, created_at
	`

	var model converter.ReviewModel
	err := r.pool.QueryRow(ctx, query, review.ProductID, review.Username, review.Rating, review.Comment).
		Scan(&model.ID, &model.ProductID, &model.Username, &model.Rating, &model.Comment, &model.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return r.conv.ToEntity(&model), nil
}

// ListByProduct возвращает отзывы товара в порядке добавления.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
	defer cancel()

	query := `
		SELECT id, product_id, username, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}
	defer rows.Close()

	var models []*converter.ReviewModel
	for rows.Next() {
		var model converter.ReviewModel
		if err := rows.Scan(&model.ID, &model.ProductID, &model.Username, &model.Rating, &model.Comment, &model.CreatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), storeErr(err))
	}

	return r.conv.ToArrEntity(models), nil
}
