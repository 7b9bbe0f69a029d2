// services/geotrack.go

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/repositories"
	"github.com/evn/toopath_backendl/internal/validation"
)

type GeoTrackService struct {
	locations repositories.LocationStore
	cache     LocationCache
	hub       *Hub
}

func NewGeoTrackService(locations repositories.LocationStore, cache LocationCache, hub *Hub) *GeoTrackService {
	return &GeoTrackService{
		locations: locations,
		cache:     cache,
		hub:       hub,
	}
}

// SaveActual сохраняет позицию в Postgres, обновляет кеш и
// рассылает обновление подписчикам. Ошибка кеша не фатальна.
func (s *GeoTrackService) SaveActual(ctx context.Context, loc *models.ActualLocation) error {
	if err := s.locations.UpsertActual(ctx, loc); err != nil {
		log.Printf("Не удалось сохранить позицию устройства %d: %v", loc.DeviceID, err)
		return err
	}

	if err := s.cache.SaveActual(ctx, loc); err != nil {
		log.Printf("Redis warning: %v", err)
	}

	data, _ := json.Marshal(map[string]interface{}{
		"type":       "actual_location",
		"device":     loc.DeviceID,
		"point":      loc.Point,
		"updated_at": loc.UpdatedAt,
	})
	s.hub.Broadcast(data)
	return nil
}

// GetActual сначала смотрит кеш, затем Postgres.
func (s *GeoTrackService) GetActual(ctx context.Context, deviceID int) (*models.ActualLocation, error) {
	if loc, err := s.cache.GetActual(ctx, deviceID); err == nil {
		return loc, nil
	}
	return s.locations.GetActual(ctx, deviceID)
}

func (s *GeoTrackService) AddTrackLocation(ctx context.Context, loc *models.TrackLocation) error {
	return s.locations.InsertTrackLocation(ctx, loc)
}

func (s *GeoTrackService) TrackLocations(ctx context.Context, trackID int) ([]models.TrackLocation, error) {
	return s.locations.ListTrackLocations(ctx, trackID)
}

// ImportTrackLocations принимает табличные строки (первая — заголовок),
// колонки: широта, долгота. Битая строка прерывает импорт целиком.
func (s *GeoTrackService) ImportTrackLocations(ctx context.Context, trackID int, rows [][]string) (int, error) {
	if len(rows) < 2 {
		return 0, apierrors.NewNonFieldError("No valid rows to import.")
	}

	var points []models.Point
	for i, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		latStr := strings.TrimSpace(row[0])
		lonStr := strings.TrimSpace(row[1])
		if latStr == "" || lonStr == "" {
			continue
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return 0, apierrors.NewNonFieldError(fmt.Sprintf("Row %d: invalid latitude value %q.", i+2, latStr))
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return 0, apierrors.NewNonFieldError(fmt.Sprintf("Row %d: invalid longitude value %q.", i+2, lonStr))
		}

		point := models.Point{X: lat, Y: lon}
		if err := validation.ValidateLatitudeLongitude(point); err != nil {
			return 0, err
		}
		points = append(points, point)
	}

	if len(points) == 0 {
		return 0, apierrors.NewNonFieldError("No valid rows to import.")
	}
	return s.locations.InsertTrackLocations(ctx, trackID, points)
}
