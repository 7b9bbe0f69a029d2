// handlers/auth.go
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/evn/toopath_backendl/internal/repositories"
	authService "github.com/evn/toopath_backendl/internal/services/auth"
)

type AuthHandler struct {
	users      repositories.UserStore
	jwtService *authService.JWTService
}

func NewAuthHandler(users repositories.UserStore, jwtService *authService.JWTService) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
	}
}

// Login — вход пользователя. Неверная пара логин/пароль — 400 с
// одинаковым сообщением, чтобы не раскрывать существование логина.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	validationErr := &apierrors.ValidationError{}
	if req.Username == "" {
		validationErr.Add("username", messages.Get("required"))
	}
	if req.Password == "" {
		validationErr.Add("password", messages.Get("required"))
	}
	if !validationErr.Empty() {
		response.RespondWithAPIError(w, validationErr)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil || !authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		response.RespondWithAPIError(w, apierrors.NewNonFieldError(messages.Get("invalid_credentials")))
		return
	}

	token, err := h.jwtService.IssueToken(user)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{Token: token})
}

// VerifyToken — проверка токена. Токен валиден, если подпись сходится
// с персональным секретом пользователя из claims и срок не истек.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.Token == "" {
		response.RespondWithAPIError(w, apierrors.NewFieldError("token", messages.Get("required")))
		return
	}

	if _, err := h.jwtService.VerifyToken(r.Context(), req.Token); err != nil {
		response.RespondWithAPIError(w, err)
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{Token: req.Token})
}
