// Package messages содержит общую таблицу стандартных текстов ошибок.
// Таблица заполняется один раз при старте процесса и не изменяется.
package messages

var defaults = map[string]string{
	"required":            "This field is required.",
	"unknown_field":       "Unknown field.",
	"invalid_latitude":    "Enter a valid latitude. Value must be in range [-90, 90].",
	"invalid_longitude":   "Enter a valid longitude. Value must be in range [-180, 180].",
	"invalid_patch":       "You cannot modify this field.",
	"invalid_credentials": "Unable to log in with provided credentials.",
	"invalid_token":       "Invalid or expired token.",
	"not_authenticated":   "Authentication credentials were not provided.",
	"permission_denied":   "You do not have permission to perform this action.",
}

// Get возвращает текст по символическому ключу. Неизвестный ключ — ошибка
// программиста, возвращаем сам ключ чтобы она была видна в ответе.
func Get(key string) string {
	if msg, ok := defaults[key]; ok {
		return msg
	}
	return key
}
