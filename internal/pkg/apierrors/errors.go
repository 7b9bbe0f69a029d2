// Package apierrors — доменные ошибки, транслируемые на границе HTTP
// в статус и структурированное тело.
package apierrors

import (
	"fmt"
	"strings"
)

// ValidationError — неверные входные данные (400). Fields — ошибки по
// конкретным полям, NonField — ошибки уровня записи.
type ValidationError struct {
	Fields   map[string][]string
	NonField []string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	if len(e.NonField) > 0 {
		parts = append(parts, strings.Join(e.NonField, "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add добавляет ошибку по полю.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0 && len(e.NonField) == 0
}

func NewFieldError(field, message string) *ValidationError {
	err := &ValidationError{}
	err.Add(field, message)
	return err
}

func NewNonFieldError(message string) *ValidationError {
	return &ValidationError{NonField: []string{message}}
}

// AuthenticationError — отсутствующий или невалидный токен (401).
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError — аутентифицирован, но доступ запрещен (403).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError — ресурс не существует (404).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
