package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
)

// CatalogUseCase реализует бизнес-логику каталога: CRUD товаров,
// загрузку изображений и отзывы.
type CatalogUseCase struct {
	productRepo ProductRepository
	reviewRepo  ReviewRepository
	cacheRepo   CacheRepository
	imagesInfra ImagesInfra
	imageURLFor func(objectKey string) string
	logger      logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	reviewRepo ReviewRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	publicImageBaseURL string,
	logger logger.Logger,
) *CatalogUseCase {
	base := strings.TrimRight(publicImageBaseURL, "/")
	return &CatalogUseCase{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cacheRepo:   cacheRepo,
		imagesInfra: imagesInfra,
		imageURLFor: func(objectKey string) string { return base + "/" + objectKey },
		logger:      logger,
	}
}

// ListProducts возвращает все неархивированные товары без гарантий пагинации.
func (c *CatalogUseCase) ListProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "CatalogUseCase.ListProducts"

	products, err := c.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]ProductInfo, 0, len(products))
	for i := range products {
		result = append(result, NewProductInfo(&products[i]))
	}

	return result, nil
}

// GetProduct возвращает товар с упорядоченным списком отзывов.
// Карточка товара читается через кэш; отзывы всегда из БД.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*ProductRes, error) {
	const op = "CatalogUseCase.GetProduct"

	info, err := c.getProductInfo(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	reviews, err := c.reviewRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	reviewInfos := make([]ReviewInfo, 0, len(reviews))
	for i := range reviews {
		reviewInfos = append(reviewInfos, NewReviewInfo(&reviews[i]))
	}

	return NewProductRes(*info, reviewInfos), nil
}

// getProductInfo читает карточку товара: сначала кэш, при промахе БД
// с фоновым заполнением кэша (как и промах, ошибка кэша означает поход в БД).
func (c *CatalogUseCase) getProductInfo(ctx context.Context, id int64) (*ProductInfo, error) {
	cached, err := c.cacheRepo.GetProduct(ctx, id)
	if err == nil && cached != nil {
		return cached, nil
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	info := NewProductInfo(product)

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProduct(bgCtx, &info); err != nil {
			c.logger.Warnf("Failed to cache product in background: %v", err)
		}
	}()

	return &info, nil
}

// CreateProduct добавляет новый товар. Вызывается только от имени администратора:
// проверка роли выполняется на уровне доставки по claims токена.
func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error) {
	const op = "CatalogUseCase.CreateProduct"

	if err := validateNewProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.Create(ctx, domain.NewProduct(
		req.Name, req.Manufacturer, req.Category, req.Description, req.ImageURL, req.Price, req.Stock,
	))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product)
	return &info, nil
}

// UpdateProduct выполняет частичное обновление и сбрасывает кэш товара.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, upd *ProductUpdate) (*ProductInfo, error) {
	const op = "CatalogUseCase.UpdateProduct"

	if err := validateProductUpdate(upd); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, id)

	info := NewProductInfo(product)
	return &info, nil
}

// DeleteProduct архивирует товар: строка остаётся ради ссылок из позиций заказов.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteProduct"

	if err := c.productRepo.Archive(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	c.invalidate(ctx, id)
	return nil
}

// UploadProductImage сохраняет изображение в объектном хранилище и
// обновляет imageUrl товара. Если обновление БД не удалось,
// загруженный объект зачищается компенсирующим действием.
func (c *CatalogUseCase) UploadProductImage(ctx context.Context, req *UploadImageReq) (*ProductInfo, error) {
	const op = "CatalogUseCase.UploadProductImage"

	// Товар должен существовать до загрузки объекта.
	if _, err := c.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, e.Wrap(op, err)
	}

	key, err := c.imagesInfra.UploadImage(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.SetImageURL(ctx, req.ProductID, c.imageURLFor(key))
	if err != nil {
		c.logger.Warnf(
			"Cleaning up orphaned image after failed imageUrl update. product_id: %d, error: %v",
			req.ProductID,
			e.Wrap(op, err),
		)
		c.imagesInfra.CleanupImage(key)
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, req.ProductID)

	info := NewProductInfo(product)
	return &info, nil
}

// AddReview добавляет отзыв с оценкой 1–5 от имени пользователя из токена.
func (c *CatalogUseCase) AddReview(ctx context.Context, req *AddReviewReq) (*ReviewInfo, error) {
	const op = "CatalogUseCase.AddReview"

	if req.Rating < 1 || req.Rating > 5 {
		return nil, e.Wrap(op, e.ErrInvalidRating)
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	if _, err := c.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, e.Wrap(op, err)
	}

	review, err := c.reviewRepo.Create(ctx, domain.NewReview(req.ProductID, req.Username, req.Rating, req.Comment))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewReviewInfo(review)
	return &info, nil
}

// invalidate удаляет товар из кэша; ошибка кэша не фатальна.
func (c *CatalogUseCase) invalidate(ctx context.Context, id int64) {
	if err := c.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		c.logger.Warnf("Failed to invalidate product cache: %v", err)
	}
}

func validateNewProduct(req *CreateProductReq) error {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Manufacturer) == "" ||
		req.Category == "" {
		return e.ErrMissingFields
	}

	if !domain.ValidCategory(req.Category) {
		return fmt.Errorf("%q: %w", req.Category, e.ErrInvalidCategory)
	}

	if req.Price < 0 {
		return e.ErrInvalidPrice
	}

	if req.Stock < 0 {
		return e.ErrInvalidStock
	}

	return nil
}

func validateProductUpdate(upd *ProductUpdate) error {
	if upd.Category != nil && !domain.ValidCategory(*upd.Category) {
		return fmt.Errorf("%q: %w", *upd.Category, e.ErrInvalidCategory)
	}

	if upd.Price != nil && *upd.Price < 0 {
		return e.ErrInvalidPrice
	}

	if upd.Stock != nil && *upd.Stock < 0 {
		return e.ErrInvalidStock
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return e.ErrMissingFields
	}

	return nil
}
