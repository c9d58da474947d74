package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
)

type PaymentHandler struct {
	checkoutUsecase usecase.CheckoutUC
	logger          logger.Logger
}

func NewPaymentHandler(checkoutUsecase usecase.CheckoutUC, logger logger.Logger) *PaymentHandler {
	return &PaymentHandler{checkoutUsecase: checkoutUsecase, logger: logger}
}

type cartLineBody struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type checkoutBody struct {
	Items         []cartLineBody `json:"items"`
	TotalPrice    priceField     `json:"totalPrice"`
	PaymentMethod string         `json:"paymentMethod"`
}

type orderItemJSON struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type orderJSON struct {
	OrderID       string          `json:"orderId"`
	Username      string          `json:"username"`
	Items         []orderItemJSON `json:"items"`
	TotalPrice    string          `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
}

func toOrderJSON(summary *usecase.OrderSummary) orderJSON {
	items := make([]orderItemJSON, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, orderItemJSON{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: formatCents(item.UnitPrice),
			Subtotal:  formatCents(item.Subtotal),
		})
	}

	return orderJSON{
		OrderID:       summary.OrderID,
		Username:      summary.Username,
		Items:         items,
		TotalPrice:    formatCents(summary.TotalPrice),
		PaymentMethod: string(summary.PaymentMethod),
		Status:        summary.Status,
		Timestamp:     summary.Timestamp,
	}
}

// checkout оформляет заказ от имени владельца токена.
// Повтор запроса с тем же заголовком Idempotency-Key вернёт прежний заказ.
func (p *PaymentHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var body checkoutBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	totalCents, err := parsePriceToCents(string(body.TotalPrice))
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrInvalidTotalPrice)
		return
	}

	items := make([]usecase.CartLine, 0, len(body.Items))
	for _, line := range body.Items {
		items = append(items, usecase.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	claims := claimsFromCtx(r.Context())

	summary, err := p.checkoutUsecase.Checkout(r.Context(), &usecase.CheckoutReq{
		Username:       claims.Username,
		Items:          items,
		TotalPrice:     totalCents,
		PaymentMethod:  domain.PaymentMethod(body.PaymentMethod),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   toOrderJSON(summary),
	})
}

func (p *PaymentHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := p.checkoutUsecase.ListOrders(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	result := make([]orderJSON, 0, len(orders))
	for i := range orders {
		result = append(result, toOrderJSON(&orders[i]))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  result,
	})
}
