package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/DRSN-tech/online-store/pkg/token"
)

type ctxKey int

const (
	claimsCtxKey ctxKey = iota
	rawTokenCtxKey
)

// authMiddleware проверяет bearer-токен и кладёт проверенные claims в контекст.
// Личность и роль берутся только из подписанных claims, никогда из тела запроса.
func authMiddleware(authUC usecase.AuthUC, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := extractBearerToken(r)
			if err != nil {
				logger.Warnf("%d %s", http.StatusUnauthorized, err.Error())
				WriteError(w, err)
				return
			}

			claims, err := authUC.Verify(rawToken)
			if err != nil {
				logger.Warnf("%d %s", http.StatusUnauthorized, err.Error())
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
			ctx = context.WithValue(ctx, rawTokenCtxKey, rawToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminOnly пропускает только запросы с ролью admin в проверенных claims.
func adminOnly(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromCtx(r.Context())
			if claims == nil || claims.Role != string(domain.RoleAdmin) {
				logger.Warnf("%d %s", http.StatusForbidden, e.ErrAdminOnly.Error())
				WriteError(w, e.ErrAdminOnly)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", e.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", e.ErrMissingToken
	}

	return parts[1], nil
}

func claimsFromCtx(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsCtxKey).(*token.Claims)
	return claims
}

func rawTokenFromCtx(ctx context.Context) string {
	rawToken, _ := ctx.Value(rawTokenCtxKey).(string)
	return rawToken
}
