package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthUC проверяет токены по таблице вместо подписи.
type fakeAuthUC struct {
	tokens map[string]*token.Claims
}

func (f *fakeAuthUC) Register(ctx context.Context, req *usecase.RegisterReq) (*usecase.AuthRes, error) {
	panic("not used")
}

func (f *fakeAuthUC) Login(ctx context.Context, req *usecase.LoginReq) (*usecase.AuthRes, error) {
	panic("not used")
}

func (f *fakeAuthUC) Verify(tokenStr string) (*token.Claims, error) {
	claims, ok := f.tokens[tokenStr]
	if !ok {
		return nil, e.ErrInvalidToken
	}
	return claims, nil
}

func (f *fakeAuthUC) CurrentUser(ctx context.Context, tokenStr string) (*domain.User, error) {
	panic("not used")
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{})            {}
func (nopLogger) Infof(format string, args ...interface{})             {}
func (nopLogger) Warnf(format string, args ...interface{})             {}
func (nopLogger) Errorf(err error, format string, args ...interface{}) {}

func TestAuthMiddleware(t *testing.T) {
	authUC := &fakeAuthUC{tokens: map[string]*token.Claims{
		"good-token": {UserID: 7, Username: "alice", Role: string(domain.RoleRegular)},
	}}

	var gotClaims *token.Claims
	var gotRawToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = claimsFromCtx(r.Context())
		gotRawToken = rawTokenFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := authMiddleware(authUC, nopLogger{})(next)

	testCases := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "valid token", header: "Bearer good-token", wantCode: http.StatusOK},
		{name: "no header", header: "", wantCode: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic good-token", wantCode: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantCode: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", wantCode: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotClaims, gotRawToken = nil, ""

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, "alice", gotClaims.Username)
				assert.Equal(t, "good-token", gotRawToken)
			} else {
				assert.Nil(t, gotClaims)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := adminOnly(nopLogger{})(next)

	withClaims := func(claims *token.Claims) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		if claims != nil {
			req = req.WithContext(context.WithValue(req.Context(), claimsCtxKey, claims))
		}
		return req
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(&token.Claims{Username: "root", Role: string(domain.RoleAdmin)}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(&token.Claims{Username: "alice", Role: string(domain.RoleRegular)}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Без claims в контексте (middleware аутентификации не отработал).
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
