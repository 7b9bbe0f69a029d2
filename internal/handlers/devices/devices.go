// handlers/devices.go
package devices

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
	"github.com/go-chi/chi/v5"
)

type DeviceHandler struct {
	devices repositories.DeviceStore
	tracks  repositories.TrackStore
}

func NewDeviceHandler(devices repositories.DeviceStore, tracks repositories.TrackStore) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		tracks:  tracks,
	}
}

func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.Name == "" {
		response.RespondWithAPIError(w, apierrors.NewFieldError("name", messages.Get("required")))
		return
	}

	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
		return
	}

	device := &models.Device{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := h.devices.Create(r.Context(), device); err != nil {
		log.Printf("Не удалось создать устройство: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to create device")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, device)
}

func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}
	response.RespondWithJSON(w, http.StatusOK, device)
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
		return
	}

	devices, err := h.devices.ListByOwner(r.Context(), ownerID)
	if err != nil {
		log.Printf("Не удалось получить устройства пользователя %d: %v", ownerID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	response.RespondWithJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	var req models.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.Name == "" {
		response.RespondWithAPIError(w, apierrors.NewFieldError("name", messages.Get("required")))
		return
	}

	track := &models.Track{
		DeviceID:    device.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.tracks.Create(r.Context(), track); err != nil {
		log.Printf("Не удалось создать маршрут: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to create track")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, track)
}

func (h *DeviceHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	device, ok := h.ownedDevice(w, r)
	if !ok {
		return
	}

	tracks, err := h.tracks.ListByDevice(r.Context(), device.ID)
	if err != nil {
		log.Printf("Не удалось получить маршруты устройства %d: %v", device.ID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	response.RespondWithJSON(w, http.StatusOK, tracks)
}

// ownedDevice: несуществующее устройство — 404, чужое — 403.
func (h *DeviceHandler) ownedDevice(w http.ResponseWriter, r *http.Request) (*models.Device, bool) {
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
