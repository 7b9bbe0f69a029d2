package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evn/toopath_backendl/internal/middleware"
	"github.com/evn/toopath_backendl/internal/models"
	"github.com/evn/toopath_backendl/internal/repositories"
	authService "github.com/evn/toopath_backendl/internal/services/auth"
	geoService "github.com/evn/toopath_backendl/internal/services/geo"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[int]*models.User
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = len(s.users) + 1
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user *models.User) error {
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

type fakeDeviceStore struct {
	devices map[int]*models.Device
}

func (s *fakeDeviceStore) Create(_ context.Context, device *models.Device) error {
	device.ID = len(s.devices) + 1
	copied := *device
	s.devices[device.ID] = &copied
	return nil
}

func (s *fakeDeviceStore) GetByID(_ context.Context, id int) (*models.Device, error) {
	if device, ok := s.devices[id]; ok {
		copied := *device
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeDeviceStore) ListByOwner(_ context.Context, ownerID int) ([]models.Device, error) {
	var out []models.Device
	for _, device := range s.devices {
		if device.OwnerID == ownerID {
			out = append(out, *device)
		}
	}
	return out, nil
}

type fakeTrackStore struct {
	tracks map[int]*models.Track
}

func (s *fakeTrackStore) Create(_ context.Context, track *models.Track) error {
	track.ID = len(s.tracks) + 1
	copied := *track
	s.tracks[track.ID] = &copied
	return nil
}

func (s *fakeTrackStore) GetByID(_ context.Context, id int) (*models.Track, error) {
	if track, ok := s.tracks[id]; ok {
		copied := *track
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeTrackStore) ListByDevice(_ context.Context, deviceID int) ([]models.Track, error) {
	var out []models.Track
	for _, track := range s.tracks {
		if track.DeviceID == deviceID {
			out = append(out, *track)
		}
	}
	return out, nil
}

type fakeLocationStore struct {
	actual map[int]*models.ActualLocation
	tracks map[int][]models.TrackLocation
	nextID int
}

func (s *fakeLocationStore) UpsertActual(_ context.Context, loc *models.ActualLocation) error {
	loc.UpdatedAt = time.Now()
	copied := *loc
	s.actual[loc.DeviceID] = &copied
	return nil
}

func (s *fakeLocationStore) GetActual(_ context.Context, deviceID int) (*models.ActualLocation, error) {
	if loc, ok := s.actual[deviceID]; ok {
		copied := *loc
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeLocationStore) InsertTrackLocation(_ context.Context, loc *models.TrackLocation) error {
	s.nextID++
	loc.ID = int64(s.nextID)
	loc.CreatedAt = time.Now()
	s.tracks[loc.TrackID] = append(s.tracks[loc.TrackID], *loc)
	return nil
}

func (s *fakeLocationStore) InsertTrackLocations(_ context.Context, trackID int, points []models.Point) (int, error) {
	for _, p := range points {
		s.nextID++
		s.tracks[trackID] = append(s.tracks[trackID], models.TrackLocation{
			ID:      int64(s.nextID),
			TrackID: trackID,
			Point:   p,
		})
	}
	return len(points), nil
}

func (s *fakeLocationStore) ListTrackLocations(_ context.Context, trackID int) ([]models.TrackLocation, error) {
	return s.tracks[trackID], nil
}

type noopCache struct{}

func (noopCache) SaveActual(context.Context, *models.ActualLocation) error { return nil }
func (noopCache) GetActual(context.Context, int) (*models.ActualLocation, error) {
	return nil, geoService.ErrCacheMiss
}

type testEnv struct {
	router    *chi.Mux
	users     *fakeUserStore
	devices   *fakeDeviceStore
	tracks    *fakeTrackStore
	locations *fakeLocationStore
	hub       *geoService.Hub
	jwt       *authService.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := &fakeUserStore{users: make(map[int]*models.User)}
	devices := &fakeDeviceStore{devices: make(map[int]*models.Device)}
	tracks := &fakeTrackStore{tracks: make(map[int]*models.Track)}
	locations := &fakeLocationStore{
		actual: make(map[int]*models.ActualLocation),
		tracks: make(map[int][]models.TrackLocation),
	}

	jwtService := authService.NewJWTService(users, "HS256", time.Hour)
	hub := geoService.NewHub()
	service := geoService.NewGeoTrackService(locations, noopCache{}, hub)
	handler := NewGeoTrackHandler(devices, tracks, service, hub)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtService))
		r.Put("/devices/{deviceID}/actual-location/", handler.UpdateActualLocation)
		r.Get("/devices/{deviceID}/actual-location/", handler.GetActualLocation)
		r.Post("/devices/{deviceID}/tracks/{trackID}/locations/", handler.AddTrackLocation)
		r.Get("/devices/{deviceID}/tracks/{trackID}/locations/", handler.ListTrackLocations)
		r.Get("/devices/{deviceID}/tracks/{trackID}/locations/export/", handler.ExportTrackLocations)
		r.Post("/devices/{deviceID}/tracks/{trackID}/locations/import/", handler.ImportTrackLocations)
		r.Get("/ws/positions", handler.Positions)
	})

	return &testEnv{
		router:    router,
		users:     users,
		devices:   devices,
		tracks:    tracks,
		locations: locations,
		hub:       hub,
		jwt:       jwtService,
	}
}

func (e *testEnv) newUserWithToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	secret, err := authService.NewUserSecret()
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@test.com", JWTSecret: secret}
	require.NoError(t, e.users.Create(context.Background(), user))
	token, err := e.jwt.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) newDevice(t *testing.T, ownerID int) *models.Device {
	t.Helper()
	device := &models.Device{Name: "device", OwnerID: ownerID}
	require.NoError(t, e.devices.Create(context.Background(), device))
	return device
}

func (e *testEnv) newTrack(t *testing.T, deviceID int) *models.Track {
	t.Helper()
	track := &models.Track{Name: "track", DeviceID: deviceID}
	require.NoError(t, e.tracks.Create(context.Background(), track))
	return track
}

func (e *testEnv) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func pointFeatureJSON(lat, lon float64) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [%g, %g]},
		"properties": {}
	}`, lat, lon))
}

func TestUpdateActualLocation(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)

	recorder := env.do(t, http.MethodPut, fmt.Sprintf("/devices/%d/actual-location/", device.ID), token, pointFeatureJSON(41.40, 2.17))
	require.Equal(t, http.StatusOK, recorder.Code)

	var feature struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &feature))
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, "Point", feature.Geometry.Type)
	assert.Equal(t, []float64{41.40, 2.17}, feature.Geometry.Coordinates)
	assert.Equal(t, float64(device.ID), feature.Properties["device"])

	stored, err := env.locations.GetActual(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Point{X: 41.40, Y: 2.17}, stored.Point)
}

func TestUpdateActualLocationInvalidCoordinates(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)
	path := fmt.Sprintf("/devices/%d/actual-location/", device.ID)

	t.Run("latitude out of range", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, path, token, pointFeatureJSON(91.0, 2.17))
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.JSONEq(t, `{"non_field_errors": ["Enter a valid latitude. Value must be in range [-90, 90]."]}`, recorder.Body.String())
	})

	t.Run("longitude out of range", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, path, token, pointFeatureJSON(41.40, 181.0))
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.JSONEq(t, `{"non_field_errors": ["Enter a valid longitude. Value must be in range [-180, 180]."]}`, recorder.Body.String())
	})
}

func TestUpdateActualLocationDeviceFromURLOnly(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)

	// device в properties — выходное поле, на входе игнорируется
	body := []byte(`{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [1.0, 2.0]},
		"properties": {"device": 999}
	}`)
	recorder := env.do(t, http.MethodPut, fmt.Sprintf("/devices/%d/actual-location/", device.ID), token, body)
	require.Equal(t, http.StatusOK, recorder.Code)

	_, err := env.locations.GetActual(context.Background(), 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	stored, err := env.locations.GetActual(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Point{X: 1.0, Y: 2.0}, stored.Point)
}

func TestActualLocationAccess(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.newUserWithToken(t, "owner")
	_, strangerToken := env.newUserWithToken(t, "stranger")
	device := env.newDevice(t, owner.ID)
	path := fmt.Sprintf("/devices/%d/actual-location/", device.ID)

	t.Run("401 without token", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, path, "", pointFeatureJSON(1, 2))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("403 for foreign device", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, path, strangerToken, pointFeatureJSON(1, 2))
		require.Equal(t, http.StatusForbidden, recorder.Code)
		assert.JSONEq(t, `{"detail": "You do not have permission to perform this action."}`, recorder.Body.String())
	})

	t.Run("404 for unknown device", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, "/devices/100/actual-location/", ownerToken, pointFeatureJSON(1, 2))
		require.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"detail": "device not found"}`, recorder.Body.String())
	})

	t.Run("404 before 403 for unknown device and foreign token", func(t *testing.T) {
		recorder := env.do(t, http.MethodPut, "/devices/100/actual-location/", strangerToken, pointFeatureJSON(1, 2))
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("404 when location never reported", func(t *testing.T) {
		recorder := env.do(t, http.MethodGet, path, ownerToken, nil)
		require.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"detail": "actual location not found"}`, recorder.Body.String())
	})
}

func TestGetActualLocation(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)
	path := fmt.Sprintf("/devices/%d/actual-location/", device.ID)

	put := env.do(t, http.MethodPut, path, token, pointFeatureJSON(41.40, 2.17))
	require.Equal(t, http.StatusOK, put.Code)

	recorder := env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var feature map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &feature))
	assert.Equal(t, "Feature", feature["type"])
}

func TestTrackLocations(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)
	track := env.newTrack(t, device.ID)
	path := fmt.Sprintf("/devices/%d/tracks/%d/locations/", device.ID, track.ID)

	t.Run("201 on create", func(t *testing.T) {
		recorder := env.do(t, http.MethodPost, path, token, pointFeatureJSON(41.40, 2.17))
		require.Equal(t, http.StatusCreated, recorder.Code)

		var feature map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &feature))
		props, ok := feature["properties"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(track.ID), props["track"])
	})

	t.Run("list as FeatureCollection", func(t *testing.T) {
		second := env.do(t, http.MethodPost, path, token, pointFeatureJSON(41.41, 2.18))
		require.Equal(t, http.StatusCreated, second.Code)

		recorder := env.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var collection struct {
			Type     string                   `json:"type"`
			Features []map[string]interface{} `json:"features"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &collection))
		assert.Equal(t, "FeatureCollection", collection.Type)
		assert.Len(t, collection.Features, 2)
	})

	t.Run("404 for track of another device", func(t *testing.T) {
		other := env.newDevice(t, user.ID)
		recorder := env.do(t, http.MethodGet, fmt.Sprintf("/devices/%d/tracks/%d/locations/", other.ID, track.ID), token, nil)
		require.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"detail": "track not found"}`, recorder.Body.String())
	})
}

func TestListTrackLocationsEmpty(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUserWithToken(t, "owner")
	device := env.newDevice(t, user.ID)
	track := env.newTrack(t, device.ID)

	recorder := env.do(t, http.MethodGet, fmt.Sprintf("/devices/%d/tracks/%d/locations/", device.ID, track.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"type": "FeatureCollection", "features": []}`, recorder.Body.String())
}
