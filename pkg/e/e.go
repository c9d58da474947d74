package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrMissingFields        = fmt.Errorf("required fields are missing")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidCategory      = fmt.Errorf("unknown product category")
	ErrInvalidStock         = fmt.Errorf("stock must be a non-negative integer")
	ErrInvalidRating        = fmt.Errorf("rating must be between 1 and 5")
	ErrCartEmpty            = fmt.Errorf("cart is empty")
	ErrInvalidQuantity      = fmt.Errorf("quantity must be at least 1")
	ErrInvalidTotalPrice    = fmt.Errorf("invalid total price")
	ErrTotalPriceMismatch   = fmt.Errorf("total price does not match cart contents")
	ErrInvalidPaymentMethod = fmt.Errorf("payment method is missing or unknown")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrNoImage              = fmt.Errorf("no image provided")
	ErrFileTooLarge         = fmt.Errorf("file is too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 401 Unauthorized
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrMissingToken       = fmt.Errorf("authorization token is missing")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrTokenExpired       = fmt.Errorf("token has expired")

	// 403 Forbidden
	ErrAdminOnly = fmt.Errorf("admin privileges required")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")

	// 409 Conflict
	ErrUsernameTaken  = fmt.Errorf("username already exists")
	ErrDuplicateOrder = fmt.Errorf("order with this idempotency key already exists")

	// 422 Unprocessable Entity
	ErrInsufficientStock = fmt.Errorf("insufficient stock")

	// 503 Service Unavailable
	ErrStoreUnavailable = fmt.Errorf("store is unavailable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// InsufficientStockError указывает товар, для которого не хватило остатка,
// и сколько единиц ещё доступно.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Remaining   int64
}

func NewInsufficientStockError(productID int64, name string, remaining int64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Remaining:   remaining,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d left", e.ProductName, e.Remaining)
}

// Unwrap позволяет errors.Is сопоставлять ошибку с ErrInsufficientStock.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
