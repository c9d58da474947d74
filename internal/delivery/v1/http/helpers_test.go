package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceToCents(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    int64
		wantErr error
	}{
		{name: "integer", in: "600", want: 60_000},
		{name: "two decimals", in: "599.99", want: 59_999},
		{name: "one decimal", in: "10.5", want: 1_050},
		{name: "zero", in: "0", want: 0},
		{name: "leading zero", in: "0.01", want: 1},
		{name: "empty", in: "", wantErr: e.ErrInvalidPrice},
		{name: "blank", in: "   ", wantErr: e.ErrInvalidPrice},
		{name: "not a number", in: "abc", wantErr: e.ErrInvalidPrice},
		{name: "negative", in: "-1", wantErr: e.ErrInvalidPrice},
		{name: "over limit", in: "1000000001", wantErr: e.ErrInvalidPrice},
		{name: "three decimals", in: "1.999", wantErr: e.ErrPricePrecision},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePriceToCents(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPriceField_UnmarshalJSON(t *testing.T) {
	var body struct {
		Price priceField `json:"price"`
	}

	// Число и строка эквивалентны.
	require.NoError(t, json.Unmarshal([]byte(`{"price": 599.99}`), &body))
	assert.Equal(t, priceField("599.99"), body.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": "599.99"}`), &body))
	assert.Equal(t, priceField("599.99"), body.Price)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "599.99", formatCents(59_999))
	assert.Equal(t, "600.00", formatCents(60_000))
	assert.Equal(t, "0.01", formatCents(1))
	assert.Equal(t, "0.00", formatCents(0))
}

func TestToHTTPResponse(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "validation", err: e.Wrap("op", e.ErrMissingFields), wantCode: http.StatusBadRequest},
		{name: "bad credentials", err: e.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "admin only", err: e.ErrAdminOnly, wantCode: http.StatusForbidden},
		{name: "not found", err: e.Wrap("op", e.ErrProductNotFound), wantCode: http.StatusNotFound},
		{name: "conflict", err: e.ErrUsernameTaken, wantCode: http.StatusConflict},
		{name: "store down", err: e.ErrStoreUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "unknown", err: assert.AnError, wantCode: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := ToHTTPResponse(tc.err)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestToHTTPResponse_InsufficientStock(t *testing.T) {
	err := e.Wrap("op", e.NewInsufficientStockError(7, "Laptop", 2))

	code, msg := ToHTTPResponse(err)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, `insufficient stock for "Laptop": 2 left`, msg)
}
