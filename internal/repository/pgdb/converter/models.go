package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Manufacturer string     `db:"manufacturer"`
	Category     string     `db:"category"`
	Description  string     `db:"description"`
	ImageURL     string     `db:"image_url"`
	Price        int64      `db:"price"`
	Stock        int64      `db:"stock"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
	IsArchived   bool       `db:"is_archived"`
}

// ReviewModel представляет запись таблицы product_reviews в PostgreSQL.
type ReviewModel struct {
	ID        int64     `db:"id"`
	ProductID int64     `db:"product_id"`
	Username  string    `db:"username"`
	Rating    int32     `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID             int64     `db:"id"`
	OrderID        string    `db:"order_id"`
	Username       string    `db:"username"`
	TotalPrice     int64     `db:"total_price"`
	PaymentMethod  string    `db:"payment_method"`
	Status         string    `db:"status"`
	IdempotencyKey *string   `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}

// OrderItemModel представляет запись таблицы order_items в PostgreSQL.
type OrderItemModel struct {
	ID          int64  `db:"id"`
	OrderID     int64  `db:"order_id"`
	ProductID   int64  `db:"product_id"`
	ProductName string `db:"product_name"`
	Quantity    int64  `db:"quantity"`
	UnitPrice   int64  `db:"unit_price"`
	Subtotal    int64  `db:"subtotal"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	OrderID     string     `db:"order_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
