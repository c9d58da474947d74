package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	var stockErr *e.InsufficientStockError
	if errors.As(err, &stockErr) {
		return http.StatusUnprocessableEntity, stockErr.Error()
	}

	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrInvalidCategory):
		return http.StatusBadRequest, e.ErrInvalidCategory.Error()
	case errors.Is(err, e.ErrInvalidStock):
		return http.StatusBadRequest, e.ErrInvalidStock.Error()
	case errors.Is(err, e.ErrInvalidRating):
		return http.StatusBadRequest, e.ErrInvalidRating.Error()
	case errors.Is(err, e.ErrCartEmpty):
		return http.StatusBadRequest, e.ErrCartEmpty.Error()
	case errors.Is(err, e.ErrInvalidQuantity):
		return http.StatusBadRequest, e.ErrInvalidQuantity.Error()
	case errors.Is(err, e.ErrInvalidTotalPrice):
		return http.StatusBadRequest, e.ErrInvalidTotalPrice.Error()
	case errors.Is(err, e.ErrTotalPriceMismatch):
		return http.StatusBadRequest, e.ErrTotalPriceMismatch.Error()
	case errors.Is(err, e.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, e.ErrInvalidPaymentMethod.Error()
	case errors.Is(err, e.ErrNoImage):
		return http.StatusBadRequest, e.ErrNoImage.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusBadRequest, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusBadRequest, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error()
	case errors.Is(err, e.ErrMissingToken):
		return http.StatusUnauthorized, e.ErrMissingToken.Error()
	case errors.Is(err, e.ErrTokenExpired):
		return http.StatusUnauthorized, e.ErrTokenExpired.Error()
	case errors.Is(err, e.ErrInvalidToken):
		return http.StatusUnauthorized, e.ErrInvalidToken.Error()
	case errors.Is(err, e.ErrAdminOnly):
		return http.StatusForbidden, e.ErrAdminOnly.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrUserNotFound):
		return http.StatusNotFound, e.ErrUserNotFound.Error()
	case errors.Is(err, e.ErrOrderNotFound):
		return http.StatusNotFound, e.ErrOrderNotFound.Error()
	case errors.Is(err, e.ErrUsernameTaken):
		return http.StatusConflict, e.ErrUsernameTaken.Error()
	case errors.Is(err, e.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, e.ErrInsufficientStock.Error()
	case errors.Is(err, e.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, e.ErrStoreUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// priceField принимает цену как JSON-число или строку: 599.99 и "599.99" эквивалентны.
type priceField string

func (p *priceField) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*p = priceField(s)
	return nil
}

// parsePriceToCents переводит строку вида "599.99" или "600" в центы.
// Допустимы неотрицательные суммы до миллиарда с не более чем двумя знаками
// после точки.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	return cents.IntPart(), nil
}

// formatCents возвращает денежную сумму в центах как строку с двумя знаками.
func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

func parseImage(files []*multipart.FileHeader) (*usecase.ProductImage, error) {
	const maxFileSize = 15 << 20

	if len(files) == 0 {
		return nil, e.ErrNoImage
	}

	fh := files[0]
	data, mimeType, err := readFile(fh, maxFileSize)
	if err != nil {
		return nil, err
	}

	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
