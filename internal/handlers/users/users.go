// handlers/users.go
package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/evn/toopath_backendl/internal/middleware"
	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/evn/toopath_backendl/internal/repositories"
	authService "github.com/evn/toopath_backendl/internal/services/auth"
	"github.com/go-chi/chi/v5"
)

// Поля, которые можно менять через PATCH. Username и email определяют
// представление пользователя и после создания неизменяемы.
var patchableFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"password":   true,
}

var immutableFields = map[string]bool{
	"username": true,
	"email":    true,
}

type UserHandler struct {
	users      repositories.UserStore
	jwtService *authService.JWTService
}

func NewUserHandler(users repositories.UserStore, jwtService *authService.JWTService) *UserHandler {
	return &UserHandler{
		users:      users,
		jwtService: jwtService,
	}
}

// Register — регистрация нового пользователя. Успех — 201 c публичным
// представлением и свежим токеном сессии.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	validationErr := &apierrors.ValidationError{}
	required := []struct {
		name  string
		value string
	}{
		{"username", req.Username},
		{"email", req.Email},
		{"password", req.Password},
	}
	for _, field := range required {
		if field.value == "" {
			validationErr.Add(field.name, messages.Get("required"))
		}
	}
	if !validationErr.Empty() {
		response.RespondWithAPIError(w, validationErr)
		return
	}

	passwordHash, err := authService.HashPassword(req.Password)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	jwtSecret, err := authService.NewUserSecret()
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to generate signing secret")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		JWTSecret:    jwtSecret,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		var dupErr *repositories.DuplicateError
		if errors.As(err, &dupErr) {
			response.RespondWithAPIError(w, apierrors.NewFieldError(
				dupErr.Field,
				"A user with that "+dupErr.Field+" already exists.",
			))
			return
		}
		log.Printf("Не удалось создать пользователя: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.jwtService.IssueToken(user)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, models.RegisterResponse{
		PublicUser: user.Public(),
		Token:      token,
	})
}

// Get — просмотр пользователя, только самого себя.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookupSelf(w, r)
	if !ok {
		return
	}
	response.RespondWithJSON(w, http.StatusOK, user.Public())
}

// Patch — частичное обновление. Неизвестное поле — 400 по полю,
// попытка изменить представление (email, username) — 400 c
// единственной non_field ошибкой invalid_patch.
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookupSelf(w, r)
	if !ok {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	for name := range fields {
		if immutableFields[name] {
			response.RespondWithAPIError(w, apierrors.NewNonFieldError(messages.Get("invalid_patch")))
			return
		}
	}

	validationErr := &apierrors.ValidationError{}
	values := make(map[string]string, len(fields))
	for name, raw := range fields {
		if !patchableFields[name] {
			validationErr.Add(name, messages.Get("unknown_field"))
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			validationErr.Add(name, "Invalid value.")
			continue
		}
		values[name] = value
	}
	if !validationErr.Empty() {
		response.RespondWithAPIError(w, validationErr)
		return
	}

	if v, ok := values["first_name"]; ok {
		user.FirstName = v
	}
	if v, ok := values["last_name"]; ok {
		user.LastName = v
	}
	if v, ok := values["password"]; ok {
		hash, err := authService.HashPassword(v)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		log.Printf("Не удалось обновить пользователя %d: %v", user.ID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, user.Public())
}

// lookupSelf реализует порядок проверок: несуществующий id — 404,
// существующий чужой — 403. Порядок контрактный, не менять.
func (h *UserHandler) lookupSelf(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "user"})
		return nil, false
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "user"})
		} else {
			log.Printf("Ошибка БД при чтении пользователя %d: %v", id, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
		return nil, false
	}
	if user.ID != callerID {
		response.RespondWithAPIError(w, &apierrors.AuthorizationError{Message: messages.Get("permission_denied")})
		return nil, false
	}
	return user, true
}
