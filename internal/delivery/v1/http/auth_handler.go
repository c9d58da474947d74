package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (a *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := a.authUsecase.Register(r.Context(), &usecase.RegisterReq{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, authResponse{
		Success:  true,
		Token:    res.Token,
		Username: res.Username,
		Role:     string(res.Role),
	})
}

func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	res, err := a.authUsecase.Login(r.Context(), &usecase.LoginReq{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, authResponse{
		Success:  true,
		Token:    res.Token,
		Username: res.Username,
		Role:     string(res.Role),
	})
}

// currentUser возвращает учётную запись владельца токена из хранилища,
// а не только содержимое claims: удалённый пользователь получает 404.
func (a *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.authUsecase.CurrentUser(r.Context(), rawTokenFromCtx(r.Context()))
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"username": user.Username,
		"isAdmin":  user.Role == domain.RoleAdmin,
	})
}
