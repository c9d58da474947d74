package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/DRSN-tech/online-store/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase реализует регистрацию, вход и проверку токенов.
type AuthUseCase struct {
	userRepo UserRepository
	tokens   TokenManager
	logger   logger.Logger
}

func NewAuthUC(userRepo UserRepository, tokens TokenManager, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register создаёт пользователя с ролью regular и сразу выпускает токен.
// Повторная регистрация занятого имени возвращает e.ErrUsernameTaken.
func (a *AuthUseCase) Register(ctx context.Context, req *RegisterReq) (*AuthRes, error) {
	const op = "AuthUseCase.Register"

	if err := validateCredentials(req.Username, req.Password); err != nil {
		return nil, e.Wrap(op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := a.userRepo.Create(ctx, domain.NewUser(req.Username, string(hash), domain.RoleRegular))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	tokenStr, err := a.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewAuthRes(tokenStr, user.Username, user.Role), nil
}

// Login проверяет пароль по bcrypt-хэшу и выпускает токен.
// Неизвестное имя и неверный пароль неотличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*AuthRes, error) {
	const op = "AuthUseCase.Login"

	user, err := a.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	tokenStr, err := a.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewAuthRes(tokenStr, user.Username, user.Role), nil
}

// Verify возвращает claims токена либо ошибку 401-класса.
func (a *AuthUseCase) Verify(tokenStr string) (*token.Claims, error) {
	return a.tokens.Parse(tokenStr)
}

// CurrentUser разрешает токен в хранимого пользователя.
// Если пользователь уже удалён, возвращает e.ErrUserNotFound.
func (a *AuthUseCase) CurrentUser(ctx context.Context, tokenStr string) (*domain.User, error) {
	const op = "AuthUseCase.CurrentUser"

	claims, err := a.tokens.Parse(tokenStr)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user, err := a.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return e.ErrMissingFields
	}
	return nil
}
