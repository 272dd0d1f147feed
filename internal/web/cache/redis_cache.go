package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-wallpost/internal/common/metrics"
	"github.com/central-university-dev/go-wallpost/internal/domain/models"
)

type WallCache interface {
	GetFeed(ctx context.Context, key string) ([]*models.WallPost, error)
	SetFeed(ctx context.Context, key string, posts []*models.WallPost) error
	Invalidate(ctx context.Context) error
}

const feedKeyPrefix = "feed:"

type RedisWallCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisWallCache(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisWallCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisWallCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func FeedKey(search, tag string) string {
	return fmt.Sprintf("%s%s:%s", feedKeyPrefix, search, tag)
}

func (c *RedisWallCache) GetFeed(ctx context.Context, key string) ([]*models.WallPost, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheRequest("miss")

			return nil, nil
		}

		metrics.RecordCacheRequest("error")

		return nil, fmt.Errorf("ошибка при получении данных из Redis: %w", err)
	}

	var posts []*models.WallPost
	if err := json.Unmarshal(data, &posts); err != nil {
		metrics.RecordCacheRequest("error")

		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	metrics.RecordCacheRequest("hit")

	return posts, nil
}

func (c *RedisWallCache) SetFeed(ctx context.Context, key string, posts []*models.WallPost) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении данных в Redis: %w", err)
	}

	c.logger.Debug("Лента сохранена в кэш",
		"key", key,
		"count", len(posts),
		"ttl", c.ttl,
	)

	return nil
}

// Invalidate сбрасывает все варианты ленты. Вызывается при событиях
// публикации и удаления постов.
func (c *RedisWallCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, feedKeyPrefix+"*", 0).Iterator()

	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("ошибка при поиске ключей в Redis: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении ключей из Redis: %w", err)
	}

	c.logger.Info("Кэш ленты сброшен", "keys", len(keys))

	return nil
}

func (c *RedisWallCache) Close() error {
	return c.client.Close()
}
