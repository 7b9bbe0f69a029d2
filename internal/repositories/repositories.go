// Package repositories — доступ к хранилищу. Интерфейсы отделены от
// Postgres-реализаций, чтобы хендлеры можно было тестировать без БД.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("record not found")

// DuplicateError — нарушение уникальности, с указанием конфликтного поля.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// duplicateField сопоставляет нарушение уникального индекса Postgres
// с именем поля. Пустая строка — не нарушение уникальности.
func duplicateField(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return ""
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return "username"
	case strings.Contains(pqErr.Constraint, "email"):
		return "email"
	}
	return pqErr.Constraint
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type DeviceStore interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id int) (*models.Device, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Device, error)
}

type TrackStore interface {
	Create(ctx context.Context, track *models.Track) error
	GetByID(ctx context.Context, id int) (*models.Track, error)
	ListByDevice(ctx context.Context, deviceID int) ([]models.Track, error)
}

type LocationStore interface {
	UpsertActual(ctx context.Context, loc *models.ActualLocation) error
	GetActual(ctx context.Context, deviceID int) (*models.ActualLocation, error)
	InsertTrackLocation(ctx context.Context, loc *models.TrackLocation) error
	InsertTrackLocations(ctx context.Context, trackID int, points []models.Point) (int, error)
	ListTrackLocations(ctx context.Context, trackID int) ([]models.TrackLocation, error)
}
