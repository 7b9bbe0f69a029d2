package routes

import (
	"database/sql"
	"net/http"

	"github.com/evn/toopath_backendl/config"
	authHandlers "github.com/evn/toopath_backendl/internal/handlers/auth"
	deviceHandlers "github.com/evn/toopath_backendl/internal/handlers/devices"
	geoHandlers "github.com/evn/toopath_backendl/internal/handlers/geo"
	userHandlers "github.com/evn/toopath_backendl/internal/handlers/users"
	"github.com/evn/toopath_backendl/internal/middleware"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	"github.com/evn/toopath_backendl/internal/repositories"
	authService "github.com/evn/toopath_backendl/internal/services/auth"
	geoService "github.com/evn/toopath_backendl/internal/services/geo"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// Setup инициализирует и возвращает настроенный маршрутизатор.
func Setup(cfg *config.Config, database *sql.DB, redisClient *redis.Client) *chi.Mux {
	userRepo := repositories.NewUserRepository(database)
	deviceRepo := repositories.NewDeviceRepository(database)
	trackRepo := repositories.NewTrackRepository(database)
	locationRepo := repositories.NewLocationRepository(database)

	jwtService := authService.NewJWTService(userRepo, cfg.JWTAlgorithm, cfg.TokenTTL)
	hub := geoService.NewHub()
	cache := geoService.NewRedisCache(redisClient)
	geoSvc := geoService.NewGeoTrackService(locationRepo, cache, hub)

	userHandler := userHandlers.NewUserHandler(userRepo, jwtService)
	authHandler := authHandlers.NewAuthHandler(userRepo, jwtService)
	deviceHandler := deviceHandlers.NewDeviceHandler(deviceRepo, trackRepo)
	geoHandler := geoHandlers.NewGeoTrackHandler(deviceRepo, trackRepo, geoSvc, hub)

	router := chi.NewRouter()
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	// Публичные маршруты
	router.Post("/users/", userHandler.Register)
	router.Post("/login/", authHandler.Login)
	router.Post("/api-token-verify/", authHandler.VerifyToken)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtService))

		r.Get("/users/{userID}/", userHandler.Get)
		r.Patch("/users/{userID}/", userHandler.Patch)

		r.Post("/devices/", deviceHandler.Create)
		r.Get("/devices/", deviceHandler.List)
		r.Get("/devices/{deviceID}/", deviceHandler.Get)
		r.Post("/devices/{deviceID}/tracks/", deviceHandler.CreateTrack)
		r.Get("/devices/{deviceID}/tracks/", deviceHandler.ListTracks)

		r.Put("/devices/{deviceID}/actual-location/", geoHandler.UpdateActualLocation)
		r.Get("/devices/{deviceID}/actual-location/", geoHandler.GetActualLocation)
		r.Post("/devices/{deviceID}/tracks/{trackID}/locations/", geoHandler.AddTrackLocation)
		r.Get("/devices/{deviceID}/tracks/{trackID}/locations/", geoHandler.ListTrackLocations)
		r.Get("/devices/{deviceID}/tracks/{trackID}/locations/export/", geoHandler.ExportTrackLocations)
		r.Post("/devices/{deviceID}/tracks/{trackID}/locations/import/", geoHandler.ImportTrackLocations)

		r.Get("/ws/positions", geoHandler.Positions)
	})

	return router
}
