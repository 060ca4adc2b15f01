package cache

import (
	"context"
	"time"

	"github.com/segyhp/xp-lending/internal/repository"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	settingsKey = "settings:snapshot"

	// loadedField marks a populated hash so an empty override table still counts as a hit.
	loadedField = "__loaded"

	DefaultSettingsTTL = 5 * time.Minute
)

type settingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSettingsCache(client *redis.Client, ttl time.Duration) repository.SettingsCache {
	if ttl <= 0 {
		ttl = DefaultSettingsTTL
	}
	return &settingsCache{client: client, ttl: ttl}
}

func (c *settingsCache) Load(ctx context.Context) (map[string]string, bool, error) {
	values, err := c.client.HGetAll(ctx, settingsKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		logger.Error("Failed to load settings snapshot from cache", logger.String("key", settingsKey), logger.ErrorField(err))
		return nil, false, customError.WrapCacheError(err)
	}

	if _, ok := values[loadedField]; !ok {
		return nil, false, nil
	}
	delete(values, loadedField)

	return values, true, nil
}

func (c *settingsCache) Store(ctx context.Context, values map[string]string) error {
	fields := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		fields[k] = v
	}
	fields[loadedField] = "1"

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, settingsKey)
	pipe.HSet(ctx, settingsKey, fields)
	pipe.Expire(ctx, settingsKey, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to store settings snapshot in cache", logger.String("key", settingsKey), logger.ErrorField(err))
		return customError.WrapCacheError(err)
	}

	return nil
}

func (c *settingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		logger.Error("Failed to invalidate settings snapshot", logger.String("key", settingsKey), logger.ErrorField(err))
		return customError.WrapCacheError(err)
	}
	return nil
}
