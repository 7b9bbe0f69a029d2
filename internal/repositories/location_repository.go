// repositories/location_repository.go

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/evn/toopath_backendl/internal/models"
)

type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// UpsertActual перезаписывает текущую позицию устройства.
func (r *LocationRepository) UpsertActual(ctx context.Context, loc *models.ActualLocation) error {
	query := `
		INSERT INTO actual_locations (device_id, lat, lon, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (device_id) DO UPDATE
		SET lat = EXCLUDED.lat, lon = EXCLUDED.lon, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		loc.DeviceID,
		loc.Point.X,
		loc.Point.Y,
		time.Now(),
	).Scan(&loc.UpdatedAt)
}

func (r *LocationRepository) GetActual(ctx context.Context, deviceID int) (*models.ActualLocation, error) {
	query := `
		SELECT device_id, lat, lon, updated_at
		FROM actual_locations
		WHERE device_id = $1
	`
	var loc models.ActualLocation
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&loc.DeviceID,
		&loc.Point.X,
		&loc.Point.Y,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepository) InsertTrackLocation(ctx context.Context, loc *models.TrackLocation) error {
	query := `
		INSERT INTO track_locations (track_id, lat, lon, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		loc.TrackID,
		loc.Point.X,
		loc.Point.Y,
		time.Now(),
	).Scan(&loc.ID, &loc.CreatedAt)
}

// InsertTrackLocations вставляет пакет точек в одной транзакции.
func (r *LocationRepository) InsertTrackLocations(ctx context.Context, trackID int, points []models.Point) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO track_locations (track_id, lat, lon, created_at)
		VALUES ($1, $2, $3, $4)
	`
	now := time.Now()
	for _, point := range points {
		if _, err := tx.ExecContext(ctx, query, trackID, point.X, point.Y, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(points), nil
}

func (r *LocationRepository) ListTrackLocations(ctx context.Context, trackID int) ([]models.TrackLocation, error) {
	query := `
		SELECT id, track_id, lat, lon, created_at
		FROM track_locations
		WHERE track_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.TrackLocation
	for rows.Next() {
		var loc models.TrackLocation
		if err := rows.Scan(&loc.ID, &loc.TrackID, &loc.Point.X, &loc.Point.Y, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
