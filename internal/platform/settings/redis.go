package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	keyHospitalName = "hms:hospitalName"
	keyHospitalLogo = "hms:hospitalLogo"
)

// RedisStore keeps the settings as two plain string keys with no expiry.
type RedisStore struct {
	c           *redis.Client
	defaultName string
}

func NewRedisStore(c *redis.Client, defaultName string) *RedisStore {
	if defaultName == "" {
		defaultName = DefaultHospitalName
	}
	return &RedisStore{c: c, defaultName: defaultName}
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Get(ctx context.Context) (Settings, error) {
	vals, err := s.c.MGet(ctx, keyHospitalName, keyHospitalLogo).Result()
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	out := Settings{HospitalName: s.defaultName}
	if name, ok := vals[0].(string); ok && name != "" {
		out.HospitalName = name
	}
	if logo, ok := vals[1].(string); ok {
		out.HospitalLogo = &logo
	}
	return out, nil
}

func (s *RedisStore) SetHospitalName(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	if err := s.c.Set(ctx, keyHospitalName, name, 0).Err(); err != nil {
		return fmt.Errorf("save hospital name: %w", err)
	}
	return nil
}

func (s *RedisStore) SetHospitalLogo(ctx context.Context, logo *string) error {
	if logo == nil {
		if err := s.c.Del(ctx, keyHospitalLogo).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("remove hospital logo: %w", err)
		}
		return nil
	}
	if err := s.c.Set(ctx, keyHospitalLogo, *logo, 0).Err(); err != nil {
		return fmt.Errorf("save hospital logo: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx).Err()
}
