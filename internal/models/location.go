// models/location.go

package models

import "time"

// Point — координатная пара записи местоположения.
// X трактуется как широта, Y как долгота — наследие исходной системы,
// менять порядок осей нельзя без миграции всех накопленных данных.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ActualLocation — текущая позиция устройства, одна запись на устройство.
// DeviceID назначается сервером из URL и не принимается от клиента.
type ActualLocation struct {
	DeviceID  int       `json:"device"`
	Point     Point     `json:"point"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// TrackLocation — точка маршрута.
type TrackLocation struct {
	ID        int64     `json:"id,omitempty"`
	TrackID   int       `json:"track"`
	Point     Point     `json:"point"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
