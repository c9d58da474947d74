package usecase

import (
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
)

// AUTH USECASE

// RegisterReq — запрос на регистрацию нового пользователя.
type RegisterReq struct {
	Username string
	Password string
}

// LoginReq — запрос на вход по имени и паролю.
type LoginReq struct {
	Username string
	Password string
}

// AuthRes — результат успешной регистрации или входа.
type AuthRes struct {
	Token    string
	Username string
	Role     domain.Role
}

// CATALOG USECASE

// ProductInfo — DTO с информацией о товаре для внешнего использования.
type ProductInfo struct {
	ID           int64
	Name         string
	Manufacturer string
	Category     domain.Category
	Description  string
	ImageURL     string
	Price        int64 // в центах
	Stock        int64
}

// ReviewInfo — DTO отзыва о товаре.
type ReviewInfo struct {
	Username  string
	Rating    int32
	Comment   string
	CreatedAt time.Time
}

// ProductRes — товар вместе с упорядоченным списком отзывов.
type ProductRes struct {
	Product ProductInfo
	Reviews []ReviewInfo
}

// CreateProductReq — запрос на добавление товара в каталог.
type CreateProductReq struct {
	Name         string
	Manufacturer string
	Category     domain.Category
	Description  string
	ImageURL     string
	Price        int64
	Stock        int64
}

// ProductUpdate — частичное обновление товара; nil-поля не трогаются.
type ProductUpdate struct {
	Name         *string
	Manufacturer *string
	Category     *domain.Category
	Description  *string
	ImageURL     *string
	Price        *int64
	Stock        *int64
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// UploadImageReq — запрос на загрузку изображения товара.
type UploadImageReq struct {
	ProductID int64
	Image     ProductImage
}

// AddReviewReq — запрос на добавление отзыва.
// Username всегда берётся из проверенного токена.
type AddReviewReq struct {
	ProductID int64
	Username  string
	Rating    int32
	Comment   string
}

// CHECKOUT USECASE

// CartLine — позиция корзины, присланная клиентом. Корзина — лишь подсказка:
// остатки и цены перепроверяются по БД при оформлении.
type CartLine struct {
	ProductID int64
	Quantity  int64
}

// CheckoutReq — запрос на оформление заказа.
type CheckoutReq struct {
	Username       string
	Items          []CartLine
	TotalPrice     int64 // заявленная клиентом сумма, в центах
	PaymentMethod  domain.PaymentMethod
	IdempotencyKey string // пустая строка — ключ не передан
}

// OrderLine — позиция заказа в ответе.
type OrderLine struct {
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   int64
	Subtotal    int64
}

// OrderSummary — сводка заказа, возвращаемая клиенту.
type OrderSummary struct {
	OrderID       string
	Username      string
	Items         []OrderLine
	TotalPrice    int64
	PaymentMethod domain.PaymentMethod
	Status        string
	Timestamp     time.Time
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const EventOrderCreated OutboxEventType = "order.created"

// OutboxEvent — событие, записываемое в одной транзакции с заказом
// и доставляемое в брокер фоновым worker'ом.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	OrderID     string // публичный идентификатор заказа, ключ партиционирования
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// WriteRawMessageReq — готовый к отправке в брокер payload.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewAuthRes(tokenStr, username string, role domain.Role) *AuthRes {
	return &AuthRes{
		Token:    tokenStr,
		Username: username,
		Role:     role,
	}
}

func NewProductInfo(p *domain.Product) ProductInfo {
	return ProductInfo{
		ID:           p.ID,
		Name:         p.Name,
		Manufacturer: p.Manufacturer,
		Category:     p.Category,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Price:        p.Price,
		Stock:        p.Stock,
	}
}

func NewReviewInfo(r *domain.Review) ReviewInfo {
	return ReviewInfo{
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func NewProductRes(product ProductInfo, reviews []ReviewInfo) *ProductRes {
	return &ProductRes{
		Product: product,
		Reviews: reviews,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewOrderLine(item *domain.OrderItem) OrderLine {
	return OrderLine{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Subtotal,
	}
}

func NewOrderSummary(order *domain.Order) *OrderSummary {
	items := make([]OrderLine, 0, len(order.Items))
	for i := range order.Items {
		items = append(items, NewOrderLine(&order.Items[i]))
	}

	return &OrderSummary{
		OrderID:       order.OrderID,
		Username:      order.Username,
		Items:         items,
		TotalPrice:    order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Timestamp:     order.CreatedAt,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
