// handlers/utils.go
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
)

func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Не удалось сериализовать ответ: %v", err)
	}
}

func RespondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, map[string]string{"detail": message})
}

// RespondWithAPIError транслирует доменную ошибку в HTTP статус и тело.
// Ошибки валидации отдаются как {field: [messages]} плюс non_field_errors.
func RespondWithAPIError(w http.ResponseWriter, err error) {
	var validationErr *apierrors.ValidationError
	var authnErr *apierrors.AuthenticationError
	var authzErr *apierrors.AuthorizationError
	var notFoundErr *apierrors.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		body := make(map[string]interface{}, len(validationErr.Fields)+1)
		for field, msgs := range validationErr.Fields {
			body[field] = msgs
		}
		if len(validationErr.NonField) > 0 {
			body["non_field_errors"] = validationErr.NonField
		}
		RespondWithJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &authnErr):
		RespondWithError(w, http.StatusUnauthorized, authnErr.Message)
	case errors.As(err, &authzErr):
		RespondWithError(w, http.StatusForbidden, authzErr.Message)
	case errors.As(err, &notFoundErr):
		RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		log.Printf("Необработанная ошибка: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
