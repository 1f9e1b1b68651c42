package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"draftboard/pkg/diagram"
)

const redisKeyPrefix = "draftboard:diagram:"

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// RedisStore persists diagrams as JSON values in Redis, one key per name.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(name string) string { return redisKeyPrefix + name }

func (s *RedisStore) Load(ctx context.Context, name string) (*diagram.Diagram, error) {
	data, err := s.client.Get(ctx, redisKey(name)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load diagram %s: %w", name, err)
	}
	return diagram.Unmarshal(data)
}

func (s *RedisStore) Save(ctx context.Context, name string, d *diagram.Diagram) error {
	data, err := diagram.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("save diagram %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, redisKey(name)).Result()
	if err != nil {
		return fmt.Errorf("delete diagram %s: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	var out []Info
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		name := strings.TrimPrefix(iter.Val(), redisKeyPrefix)
		d, err := s.Load(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:       name,
			Nodes:      len(d.Nodes),
			Edges:      len(d.Edges),
			ModifiedAt: d.Metadata.UpdatedAt,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}
