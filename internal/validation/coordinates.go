// Package validation содержит проверки входных данных.
package validation

import (
	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
)

// ValidateLatitudeLongitude проверяет границы координат точки.
// point.X здесь широта, point.Y долгота (см. models.Point).
// Порядок проверок фиксирован: сначала широта, затем долгота.
func ValidateLatitudeLongitude(p models.Point) error {
	if p.X < -90.0 || p.X > 90.0 {
		return apierrors.NewNonFieldError(messages.Get("invalid_latitude"))
	}
	if p.Y < -180.0 || p.Y > 180.0 {
		return apierrors.NewNonFieldError(messages.Get("invalid_longitude"))
	}
	return nil
}
