package usecase

import (
	"context"

	"github.com/DRSN-tech/online-store/internal/domain"
)

type UserRepository interface {
	// Create возвращает e.ErrUsernameTaken, если имя уже занято.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id int64, upd *ProductUpdate) (*domain.Product, error)
	Archive(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) (*domain.Product, error)
	// DecrementStock атомарно списывает quantity единиц, только если остатка хватает.
	// Возвращает e.ErrProductNotFound либо *e.InsufficientStockError.
	// Вызывается только внутри транзакции оформления заказа.
	DecrementStock(ctx context.Context, id int64, quantity int64) (*domain.Product, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
}

type OrderRepository interface {
	// Create вызывается только внутри транзакции оформления заказа.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByIdempotencyKey возвращает e.ErrOrderNotFound, если ключ ещё не встречался.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// List возвращает заказы в порядке убывания времени создания.
	List(ctx context.Context) ([]domain.Order, error)
}

type OutboxRepository interface {
	// Create вызывается только внутри транзакции оформления заказа.
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ImageRepository interface {
	// Upload возвращает ключ загруженного объекта.
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

type CacheRepository interface {
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	SetProduct(ctx context.Context, product *ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
