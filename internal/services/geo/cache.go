// services/cache.go
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/evn/toopath_backendl/internal/models"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// LocationCache — последняя позиция устройства в быстром доступе.
type LocationCache interface {
	SaveActual(ctx context.Context, loc *models.ActualLocation) error
	GetActual(ctx context.Context, deviceID int) (*models.ActualLocation, error)
}

// RedisCache держит свежие позиции с TTL и множество онлайн-устройств.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) SaveActual(ctx context.Context, loc *models.ActualLocation) error {
	key := "last:" + strconv.Itoa(loc.DeviceID)
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, 5*time.Minute).Err(); err != nil {
		return err
	}

	// Множество онлайн-устройств живет столько же, сколько и позиции
	if err := c.client.SAdd(ctx, "online_devices", loc.DeviceID).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, "online_devices", 5*time.Minute).Err()
}

func (c *RedisCache) GetActual(ctx context.Context, deviceID int) (*models.ActualLocation, error) {
	key := "last:" + strconv.Itoa(deviceID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var loc models.ActualLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
