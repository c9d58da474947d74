package converter

import (
	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// ReviewConverter преобразует сущности Review между domain и моделью PostgreSQL.
type ReviewConverter interface {
	ToEntity(model *ReviewModel) *domain.Review
	ToArrEntity(models []*ReviewModel) []domain.Review
}

// UserConverter преобразует сущности User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToEntity(model *UserModel) *domain.User
}

// OrderConverter собирает заказ из строк orders и order_items.
type OrderConverter interface {
	ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl { return &ProductConverterImpl{} }

func (c *ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Manufacturer: entity.Manufacturer,
		Category:     string(entity.Category),
		Description:  entity.Description,
		ImageURL:     entity.ImageURL,
		Price:        entity.Price,
		Stock:        entity.Stock,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
		IsArchived:   entity.IsArchived,
	}
}

func (c *ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:           model.ID,
		Name:         model.Name,
		Manufacturer: model.Manufacturer,
		Category:     domain.Category(model.Category),
		Description:  model.Description,
		ImageURL:     model.ImageURL,
		Price:        model.Price,
		Stock:        model.Stock,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		IsArchived:   model.IsArchived,
	}
}

type ReviewConverterImpl struct{}

func NewReviewConverterImpl() *ReviewConverterImpl { return &ReviewConverterImpl{} }

func (c *ReviewConverterImpl) ToEntity(model *ReviewModel) *domain.Review {
	return &domain.Review{
		ID:        model.ID,
		ProductID: model.ProductID,
		Username:  model.Username,
		Rating:    model.Rating,
		Comment:   model.Comment,
		CreatedAt: model.CreatedAt,
	}
}

func (c *ReviewConverterImpl) ToArrEntity(models []*ReviewModel) []domain.Review {
	result := make([]domain.Review, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}
	return result
}

type UserConverterImpl struct{}

func NewUserConverterImpl() *UserConverterImpl { return &UserConverterImpl{} }

func (c *UserConverterImpl) ToEntity(model *UserModel) *domain.User {
	return &domain.User{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		Role:         domain.Role(model.Role),
		CreatedAt:    model.CreatedAt,
	}
}

type OrderConverterImpl struct{}

func NewOrderConverterImpl() *OrderConverterImpl { return &OrderConverterImpl{} }

func (c *OrderConverterImpl) ToEntity(model *OrderModel, items []*OrderItemModel) *domain.Order {
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	idempotencyKey := ""
	if model.IdempotencyKey != nil {
		idempotencyKey = *model.IdempotencyKey
	}

	return &domain.Order{
		ID:             model.ID,
		OrderID:        model.OrderID,
		Username:       model.Username,
		Items:          orderItems,
		TotalPrice:     model.TotalPrice,
		PaymentMethod:  domain.PaymentMethod(model.PaymentMethod),
		Status:         model.Status,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      model.CreatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl { return &OutboxEventConverterImpl{} }

func (c *OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		OrderID:     entity.OrderID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		OrderID:     model.OrderID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c *OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}
	return result
}
