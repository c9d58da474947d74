package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(ttl time.Duration) (*AuthUseCase, *fakeStore) {
	store := newFakeStore()
	uc := NewAuthUC(&fakeUserRepo{store: store}, token.NewManager("test-secret", ttl), nopLogger{})
	return uc, store
}

func TestRegister(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	res, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, domain.RoleRegular, res.Role)

	// Выпущенный токен сразу проходит проверку и несёт роль из хранилища.
	claims, err := uc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, string(domain.RoleRegular), claims.Role)
}

func TestRegister_Validation(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	_, err := uc.Register(context.Background(), &RegisterReq{Username: "   ", Password: "secret"})
	require.ErrorIs(t, err, e.ErrMissingFields)

	_, err = uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: ""})
	require.ErrorIs(t, err, e.ErrMissingFields)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	_, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, e.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	_, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	res, err := uc.Login(context.Background(), &LoginReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	_, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	// Неизвестное имя и неверный пароль дают одну и ту же ошибку.
	_, err = uc.Login(context.Background(), &LoginReq{Username: "bob", Password: "secret"})
	require.ErrorIs(t, err, e.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), &LoginReq{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, e.ErrInvalidCredentials)
}

func TestVerify_ExpiredToken(t *testing.T) {
	uc, _ := newAuthFixture(-time.Minute)

	res, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = uc.Verify(res.Token)
	require.ErrorIs(t, err, e.ErrTokenExpired)
}

func TestVerify_ForeignSignature(t *testing.T) {
	uc, _ := newAuthFixture(time.Hour)

	foreign := token.NewManager("other-secret", time.Hour)
	tokenStr, err := foreign.Issue(1, "alice", "admin")
	require.NoError(t, err)

	_, err = uc.Verify(tokenStr)
	require.ErrorIs(t, err, e.ErrInvalidToken)
}

func TestCurrentUser(t *testing.T) {
	uc, store := newAuthFixture(time.Hour)

	res, err := uc.Register(context.Background(), &RegisterReq{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	user, err := uc.CurrentUser(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleRegular, user.Role)

	// Токен валиден, но пользователь уже удалён из хранилища.
	for id := range store.users {
		delete(store.users, id)
	}
	_, err = uc.CurrentUser(context.Background(), res.Token)
	require.ErrorIs(t, err, e.ErrUserNotFound)
}
