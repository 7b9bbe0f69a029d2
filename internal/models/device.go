package models

import "time"

type Device struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     int       `json:"owner"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type Track struct {
	ID          int       `json:"id"`
	DeviceID    int       `json:"device"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type DeviceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TrackRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
