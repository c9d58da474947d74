package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture() (*CheckoutUseCase, *fakeStore, *fakeCacheRepo) {
	store := newFakeStore()
	cache := newFakeCacheRepo()

	uc := NewCheckoutUC(
		&fakeProductRepo{store: store},
		&fakeOrderRepo{store: store},
		&fakeOutboxRepo{store: store},
		cache,
		&fakeTrManager{store: store},
		nopLogger{},
	)
	return uc, store, cache
}

func seedProduct(store *fakeStore, name string, price, stock int64) *domain.Product {
	return store.addProduct(domain.NewProduct(name, "Acme", domain.CategoryLaptops, "", "", price, stock))
}

func TestCheckout_Validation(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	product := seedProduct(store, "Laptop", 100_000, 5)

	testCases := []struct {
		name    string
		req     *CheckoutReq
		wantErr error
	}{
		{
			name: "empty cart",
			req: &CheckoutReq{
				Username:      "alice",
				TotalPrice:    100_000,
				PaymentMethod: domain.PaymentCreditCard,
			},
			wantErr: e.ErrCartEmpty,
		},
		{
			name: "zero quantity",
			req: &CheckoutReq{
				Username:      "alice",
				Items:         []CartLine{{ProductID: product.ID, Quantity: 0}},
				TotalPrice:    100_000,
				PaymentMethod: domain.PaymentCreditCard,
			},
			wantErr: e.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			req: &CheckoutReq{
				Username:      "alice",
				Items:         []CartLine{{ProductID: product.ID, Quantity: -2}},
				TotalPrice:    100_000,
				PaymentMethod: domain.PaymentCreditCard,
			},
			wantErr: e.ErrInvalidQuantity,
		},
		{
			name: "non-positive total",
			req: &CheckoutReq{
				Username:      "alice",
				Items:         []CartLine{{ProductID: product.ID, Quantity: 1}},
				TotalPrice:    0,
				PaymentMethod: domain.PaymentCreditCard,
			},
			wantErr: e.ErrInvalidTotalPrice,
		},
		{
			name: "unknown payment method",
			req: &CheckoutReq{
				Username:      "alice",
				Items:         []CartLine{{ProductID: product.ID, Quantity: 1}},
				TotalPrice:    100_000,
				PaymentMethod: "Cash",
			},
			wantErr: e.ErrInvalidPaymentMethod,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Checkout(context.Background(), tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Ни одна из невалидных попыток не списала остаток.
	assert.Equal(t, int64(5), store.products[product.ID].Stock)
	assert.Empty(t, store.orders)
}

func TestCheckout_Success(t *testing.T) {
	uc, store, cache := newCheckoutFixture()
	laptop := seedProduct(store, "Laptop", 150_000, 5)
	mouse := seedProduct(store, "Mouse", 2_500, 10)

	summary, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username: "alice",
		Items: []CartLine{
			{ProductID: laptop.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 4},
		},
		TotalPrice:    2*150_000 + 4*2_500,
		PaymentMethod: domain.PaymentPayPal,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(summary.OrderID, "ORDER-"))
	assert.Len(t, summary.OrderID, len("ORDER-")+9)
	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, domain.OrderStatusPaid, summary.Status)
	assert.Equal(t, int64(310_000), summary.TotalPrice)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, int64(300_000), summary.Items[0].Subtotal)
	assert.Equal(t, int64(10_000), summary.Items[1].Subtotal)

	assert.Equal(t, int64(3), store.products[laptop.ID].Stock)
	assert.Equal(t, int64(6), store.products[mouse.ID].Stock)

	// Заказ и outbox-событие записаны вместе.
	require.Len(t, store.orders, 1)
	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, EventOrderCreated, event.EventType)
	assert.Equal(t, summary.OrderID, event.OrderID)
	assert.Equal(t, Pending, event.Status)

	var payload struct {
		OrderID    string `json:"order_id"`
		Username   string `json:"username"`
		TotalPrice int64  `json:"total_price"`
		Items      []struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, summary.OrderID, payload.OrderID)
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, int64(310_000), payload.TotalPrice)
	require.Len(t, payload.Items, 2)

	// Кэш обоих товаров сброшен после коммита.
	assert.ElementsMatch(t, []int64{laptop.ID, mouse.ID}, cache.deleted)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	laptop := seedProduct(store, "Laptop", 150_000, 1)
	mouse := seedProduct(store, "Mouse", 2_500, 10)

	_, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username: "alice",
		Items: []CartLine{
			{ProductID: mouse.ID, Quantity: 3},
			{ProductID: laptop.ID, Quantity: 2},
		},
		TotalPrice:    3*2_500 + 2*150_000,
		PaymentMethod: domain.PaymentCreditCard,
	})

	require.ErrorIs(t, err, e.ErrInsufficientStock)

	var stockErr *e.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, laptop.ID, stockErr.ProductID)
	assert.Equal(t, "Laptop", stockErr.ProductName)
	assert.Equal(t, int64(1), stockErr.Remaining)

	// Транзакция откатилась целиком: списание мыши тоже отменено.
	assert.Equal(t, int64(10), store.products[mouse.ID].Stock)
	assert.Equal(t, int64(1), store.products[laptop.ID].Stock)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.events)
}

func TestCheckout_UnknownProduct(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	mouse := seedProduct(store, "Mouse", 2_500, 10)

	_, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username: "alice",
		Items: []CartLine{
			{ProductID: mouse.ID, Quantity: 1},
			{ProductID: 999, Quantity: 1},
		},
		TotalPrice:    2_500,
		PaymentMethod: domain.PaymentCreditCard,
	})

	require.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Equal(t, int64(10), store.products[mouse.ID].Stock)
	assert.Empty(t, store.orders)
}

func TestCheckout_TotalMismatch(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	laptop := seedProduct(store, "Laptop", 150_000, 5)

	_, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username:      "alice",
		Items:         []CartLine{{ProductID: laptop.ID, Quantity: 1}},
		TotalPrice:    1, // клиент прислал не ту сумму
		PaymentMethod: domain.PaymentCreditCard,
	})

	require.ErrorIs(t, err, e.ErrTotalPriceMismatch)
	assert.Equal(t, int64(5), store.products[laptop.ID].Stock)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.events)
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	laptop := seedProduct(store, "Laptop", 150_000, 5)

	req := &CheckoutReq{
		Username:       "alice",
		Items:          []CartLine{{ProductID: laptop.ID, Quantity: 2}},
		TotalPrice:     300_000,
		PaymentMethod:  domain.PaymentBankTransfer,
		IdempotencyKey: "key-123",
	}

	first, err := uc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.products[laptop.ID].Stock)

	second, err := uc.Checkout(context.Background(), req)
	require.NoError(t, err)

	// Повтор вернул тот же заказ и не списал остаток ещё раз.
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, int64(3), store.products[laptop.ID].Stock)
	assert.Len(t, store.orders, 1)
	assert.Len(t, store.events, 1)
}

// Конкурирующие оформления не могут продать больше, чем есть на складе.
func TestCheckout_ConcurrentNeverOversells(t *testing.T) {
	uc, store, _ := newCheckoutFixture()

	const (
		initialStock = 10
		workers      = 25
		perOrder     = 2
	)
	laptop := seedProduct(store, "Laptop", 150_000, initialStock)

	var (
		wg        sync.WaitGroup
		succeeded int64
		mu        sync.Mutex
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Checkout(context.Background(), &CheckoutReq{
				Username:      "alice",
				Items:         []CartLine{{ProductID: laptop.ID, Quantity: perOrder}},
				TotalPrice:    perOrder * 150_000,
				PaymentMethod: domain.PaymentCreditCard,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, e.ErrInsufficientStock) {
				t.Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	remaining := store.products[laptop.ID].Stock
	assert.GreaterOrEqual(t, remaining, int64(0), "stock must never go negative")
	assert.Equal(t, int64(initialStock), remaining+succeeded*perOrder,
		"sold quantity must match stock decrease exactly")
	assert.Equal(t, int64(initialStock/perOrder), succeeded)
	assert.Len(t, store.orders, int(succeeded))
	assert.Len(t, store.events, int(succeeded))
}

func TestListOrders_NewestFirst(t *testing.T) {
	uc, store, _ := newCheckoutFixture()
	laptop := seedProduct(store, "Laptop", 150_000, 10)

	first, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username:      "alice",
		Items:         []CartLine{{ProductID: laptop.ID, Quantity: 1}},
		TotalPrice:    150_000,
		PaymentMethod: domain.PaymentCreditCard,
	})
	require.NoError(t, err)

	second, err := uc.Checkout(context.Background(), &CheckoutReq{
		Username:      "bob",
		Items:         []CartLine{{ProductID: laptop.ID, Quantity: 2}},
		TotalPrice:    300_000,
		PaymentMethod: domain.PaymentPayPal,
	})
	require.NoError(t, err)

	orders, err := uc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].OrderID)
	assert.Equal(t, first.OrderID, orders[1].OrderID)
}
