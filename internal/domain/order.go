package domain

import "time"

// PaymentMethod — способ оплаты из фиксированного набора.
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentPayPal       PaymentMethod = "PayPal"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
)

// ValidPaymentMethod сообщает, входит ли способ оплаты в допустимый набор.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

// OrderStatusPaid — единственный терминальный статус заказа:
// оплата симулируется, состояний отмены/возврата нет.
const OrderStatusPaid = "Payment Successful"

// Order — неизменяемая запись завершённого заказа.
// Создаётся один раз при оформлении и далее не мутируется.
type Order struct {
	ID             int64
	OrderID        string // публичный идентификатор вида ORDER-XXXXXXXXX
	Username       string
	Items          []OrderItem
	TotalPrice     int64 // в центах; равен сумме Subtotal всех позиций
	PaymentMethod  PaymentMethod
	Status         string
	IdempotencyKey string // пустая строка, если клиент ключ не передал
	CreatedAt      time.Time
}

// OrderItem — позиция заказа со снимком цены на момент оформления.
type OrderItem struct {
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   int64 // снимок цены товара, в центах
	Subtotal    int64 // UnitPrice * Quantity
}

func NewOrder(orderID, username string, items []OrderItem, totalPrice int64, method PaymentMethod, idempotencyKey string) *Order {
	return &Order{
		OrderID:        orderID,
		Username:       username,
		Items:          items,
		TotalPrice:     totalPrice,
		PaymentMethod:  method,
		Status:         OrderStatusPaid,
		IdempotencyKey: idempotencyKey,
	}
}
