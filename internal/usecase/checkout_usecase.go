package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/DRSN-tech/online-store/pkg/tr"
	"github.com/google/uuid"
)

// CheckoutUseCase оформляет заказы. Списание остатков, запись заказа
// и outbox-событие выполняются в одной транзакции: частичное применение
// (заказ без списания либо списание без заказа) невозможно.
type CheckoutUseCase struct {
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	trManager   tr.Manager
	logger      logger.Logger
}

func NewCheckoutUC(
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	trManager tr.Manager,
	logger logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		trManager:   trManager,
		logger:      logger,
	}
}

// orderCreatedPayload — тело события order.created для брокера.
type orderCreatedPayload struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	Username   string    `json:"username"`
	TotalPrice int64     `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	Items      []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
		UnitPrice int64 `json:"unit_price"`
	} `json:"items"`
}

// Checkout выполняет оформление заказа.
//
// Порядок внутри транзакции существенен: условное списание каждой позиции
// сериализует конкурирующие оформления на уровне строки товара, поэтому два
// параллельных запроса не могут оба пройти проверку остатка. Любая ошибка
// до коммита откатывает и списания, и заказ.
func (p *CheckoutUseCase) Checkout(ctx context.Context, req *CheckoutReq) (*OrderSummary, error) {
	const op = "CheckoutUseCase.Checkout"

	if err := validateCheckout(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Повтор с тем же ключом возвращает уже созданный заказ без списания.
	if req.IdempotencyKey != "" {
		existing, err := p.orderRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return NewOrderSummary(existing), nil
		}
		if !errors.Is(err, e.ErrOrderNotFound) {
			return nil, e.Wrap(op, err)
		}
	}

	var order *domain.Order
	err := p.trManager.WithinTransaction(ctx, func(ctx context.Context) error {
		items := make([]domain.OrderItem, 0, len(req.Items))
		var total int64

		for _, line := range req.Items {
			product, err := p.productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}

			subtotal := product.Price * line.Quantity
			total += subtotal
			items = append(items, domain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    subtotal,
			})
		}

		// Сумма пересчитывается по снимкам цен; заявленной клиентом сумме не доверяем.
		if total != req.TotalPrice {
			return e.ErrTotalPriceMismatch
		}

		created, err := p.orderRepo.Create(ctx, domain.NewOrder(
			newPublicOrderID(), req.Username, items, total, req.PaymentMethod, req.IdempotencyKey,
		))
		if err != nil {
			return err
		}
		order = created

		event, err := p.newOrderCreatedEvent(order)
		if err != nil {
			return err
		}

		if _, err := p.outboxRepo.Create(ctx, event); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		// Гонка двух запросов с одним ключом: проигравший возвращает
		// заказ, созданный победителем.
		if errors.Is(err, e.ErrDuplicateOrder) && req.IdempotencyKey != "" {
			existing, getErr := p.orderRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
			if getErr == nil {
				return NewOrderSummary(existing), nil
			}
		}
		return nil, e.Wrap(op, err)
	}

	// Удаление устаревших остатков из кэша после коммита.
	ids := make([]int64, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.ProductID)
	}
	if err := p.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		p.logger.Warnf("Failed to invalidate product cache after checkout: %v", e.Wrap(op, err))
	}

	return NewOrderSummary(order), nil
}

// ListOrders возвращает все заказы, новые первыми.
func (p *CheckoutUseCase) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	const op = "CheckoutUseCase.ListOrders"

	orders, err := p.orderRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		result = append(result, *NewOrderSummary(&orders[i]))
	}

	return result, nil
}

func (p *CheckoutUseCase) newOrderCreatedEvent(order *domain.Order) (*OutboxEvent, error) {
	payload := orderCreatedPayload{
		EventID:    uuid.NewString(),
		OrderID:    order.OrderID,
		Username:   order.Username,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
			UnitPrice int64 `json:"unit_price"`
		}{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   payload.EventID,
		EventType: EventOrderCreated,
		OrderID:   order.OrderID,
		Payload:   data,
		Status:    Pending,
	}, nil
}

// newPublicOrderID генерирует публичный идентификатор заказа вида ORDER-XXXXXXXXX.
func newPublicOrderID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORDER-" + raw[:9]
}

func validateCheckout(req *CheckoutReq) error {
	if len(req.Items) == 0 {
		return e.ErrCartEmpty
	}

	for _, line := range req.Items {
		if line.Quantity < 1 {
			return e.ErrInvalidQuantity
		}
	}

	if req.TotalPrice <= 0 {
		return e.ErrInvalidTotalPrice
	}

	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		return e.ErrInvalidPaymentMethod
	}

	return nil
}
