// repositories/device_repository.go

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evn/toopath_backendl/internal/models"
)

type DeviceRepository struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		device.Name,
		device.Description,
		device.OwnerID,
	).Scan(&device.ID, &device.CreatedAt)
}

func (r *DeviceRepository) GetByID(ctx context.Context, id int) (*models.Device, error) {
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM devices
		WHERE id = $1
	`
	var device models.Device
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Description,
		&device.OwnerID,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Device, error) {
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM devices
		WHERE owner_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(&device.ID, &device.Name, &device.Description, &device.OwnerID, &device.CreatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

type TrackRepository struct {
	db *sql.DB
}

func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	query := `
		INSERT INTO tracks (device_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		track.DeviceID,
		track.Name,
		track.Description,
	).Scan(&track.ID, &track.CreatedAt)
}

func (r *TrackRepository) GetByID(ctx context.Context, id int) (*models.Track, error) {
	query := `
		SELECT id, device_id, name, description, created_at
		FROM tracks
		WHERE id = $1
	`
	var track models.Track
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&track.ID,
		&track.DeviceID,
		&track.Name,
		&track.Description,
		&track.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

func (r *TrackRepository) ListByDevice(ctx context.Context, deviceID int) ([]models.Track, error) {
	query := `
		SELECT id, device_id, name, description, created_at
		FROM tracks
		WHERE device_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var track models.Track
		if err := rows.Scan(&track.ID, &track.DeviceID, &track.Name, &track.Description, &track.CreatedAt); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
