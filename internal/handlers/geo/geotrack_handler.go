// handlers/geotrack_handler.go

package geo

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/evn/toopath_backendl/internal/middleware"
	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/pkg/apierrors"
	"github.com/evn/toopath_backendl/internal/pkg/geojson"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/evn/toopath_backendl/internal/repositories"
	geoService "github.com/evn/toopath_backendl/internal/services/geo"
	"github.com/evn/toopath_backendl/internal/validation"
	"github.com/go-chi/chi/v5"
)

type GeoTrackHandler struct {
	devices repositories.DeviceStore
	tracks  repositories.TrackStore
	service *geoService.GeoTrackService
	hub     *geoService.Hub
}

func NewGeoTrackHandler(devices repositories.DeviceStore, tracks repositories.TrackStore, service *geoService.GeoTrackService, hub *geoService.Hub) *GeoTrackHandler {
	return &GeoTrackHandler{
		devices: devices,
		tracks:  tracks,
		service: service,
		hub:     hub,
	}
}

// UpdateActualLocation принимает GeoJSON Feature и перезаписывает
// текущую позицию. Устройство берется только из URL: поле device в
// properties игнорируется, оно выходное.
func (h *GeoTrackHandler) UpdateActualLocation(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	point, _, err := geojson.DecodePoint(r.Body)
	if err != nil {
		response.RespondWithAPIError(w, err)
		return
	}
	if err := validation.ValidateLatitudeLongitude(point); err != nil {
		response.RespondWithAPIError(w, err)
		return
	}

	loc := &models.ActualLocation{
		DeviceID: device.ID,
		Point:    point,
	}
	if err := h.service.SaveActual(r.Context(), loc); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to save location")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, actualLocationFeature(loc))
}

func (h *GeoTrackHandler) GetActualLocation(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	loc, err := h.service.GetActual(r.Context(), device.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "actual location"})
		} else {
			log.Printf("Не удалось получить позицию устройства %d: %v", device.ID, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	response.RespondWithJSON(w, http.StatusOK, actualLocationFeature(loc))
}

func (h *GeoTrackHandler) AddTrackLocation(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}

	point, _, err := geojson.DecodePoint(r.Body)
	if err != nil {
		response.RespondWithAPIError(w, err)
		return
	}
	if err := validation.ValidateLatitudeLongitude(point); err != nil {
		response.RespondWithAPIError(w, err)
		return
	}

	loc := &models.TrackLocation{
		TrackID: track.ID,
		Point:   point,
	}
	if err := h.service.AddTrackLocation(r.Context(), loc); err != nil {
		log.Printf("Не удалось сохранить точку маршрута %d: %v", track.ID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to save location")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, trackLocationFeature(loc))
}

func (h *GeoTrackHandler) ListTrackLocations(w http.ResponseWriter, r *http.Request) {
	track, ok := h.ownedTrack(w, r)
	if !ok {
		return
	}

	locations, err := h.service.TrackLocations(r.Context(), track.ID)
	if err != nil {
		log.Printf("Не удалось получить точки маршрута %d: %v", track.ID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	features := make([]geojson.Feature, 0, len(locations))
	for i := range locations {
		features = append(features, trackLocationFeature(&locations[i]))
	}
	response.RespondWithJSON(w, http.StatusOK, geojson.Collection(features))
}

func actualLocationFeature(loc *models.ActualLocation) geojson.Feature {
	return geojson.PointFeature(loc.Point, map[string]interface{}{
		"device":     loc.DeviceID,
		"updated_at": loc.UpdatedAt,
	})
}

func trackLocationFeature(loc *models.TrackLocation) geojson.Feature {
	return geojson.PointFeature(loc.Point, map[string]interface{}{
		"id":         loc.ID,
		"track":      loc.TrackID,
		"created_at": loc.CreatedAt,
	})
}

// ownedDevice: несуществующее устройство — 404, чужое — 403.
func (h *GeoTrackHandler) ownedDevice(w http.ResponseWriter, r *http.Request) (*models.Device, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "deviceID"))
	if err != nil {
		response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "device"})
		return nil, false
	}

	device, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "device"})
		} else {
			log.Printf("Ошибка БД при чтении устройства %d: %v", id, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}

	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
		return nil, false
	}
	if device.OwnerID != callerID {
		response.RespondWithAPIError(w, &apierrors.AuthorizationError{Message: messages.Get("permission_denied")})
		return nil, false
	}
	return device, true
}

// ownedTrack: маршрут должен существовать и принадлежать устройству из URL.
func (h *GeoTrackHandler) ownedTrack(w http.ResponseWriter, r *http.Request) (*models.Track, bool) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return nil, false
	}

	id, err := strconv.Atoi(chi.URLParam(r, "trackID"))
	if err != nil {
		response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "track"})
		return nil, false
	}

	track, err := h.tracks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "track"})
		} else {
			log.Printf("Ошибка БД при чтении маршрута %d: %v", id, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	if track.DeviceID != device.ID {
		response.RespondWithAPIError(w, &apierrors.NotFoundError{Resource: "track"})
		return nil, false
	}
	return track, true
}
