// Package token выпускает и проверяет подписанные HS256 JWT-токены.
package token

import (
	"errors"
	"time"

	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/golang-jwt/jwt"
)

// Claims — проверенные утверждения токена. Только они используются
// для решений об авторизации; поля тела запроса не учитываются.
type Claims struct {
	UserID   int64
	Username string
	Role     string
}

// Manager подписывает и проверяет токены одним процессным секретом.
// Ротация секрета инвалидирует все выпущенные токены.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает токен с фиксированным сроком действия.
func (m *Manager) Issue(userID int64, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":       userID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(m.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Parse проверяет подпись и срок действия токена и возвращает его claims.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, e.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, e.ErrTokenExpired
		}
		return nil, e.Wrap(err.Error(), e.ErrInvalidToken)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, e.ErrInvalidToken
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return nil, e.ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, e.ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, e.ErrInvalidToken
	}

	return &Claims{
		UserID:   int64(id),
		Username: username,
		Role:     role,
	}, nil
}
