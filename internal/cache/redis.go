package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(url string, ttl time.Duration, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// Get: при недоступном Redis считаем, что кэша нет, и читаем из БД.
func (r *Redis) Get(ctx context.Context, view string) ([]byte, bool) {
	data, err := r.rdb.Get(ctx, key(view)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("view cache read failed", zap.String("view", view), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) Version(ctx context.Context, view string) (uint64, error) {
	gen, err := r.rdb.Get(ctx, versionKey(view)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set: WATCH на ключ поколения, запись уходит только если его никто не менял.
func (r *Redis) Set(ctx context.Context, view string, version uint64, data []byte) error {
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		gen, err := tx.Get(ctx, versionKey(view)).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if gen != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(view), data, r.ttl)
			return nil
		})
		return err
	}, versionKey(view))
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (r *Redis) Invalidate(ctx context.Context, views ...string) error {
	if len(views) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range views {
			pipe.Del(ctx, key(v))
			pipe.Incr(ctx, versionKey(v))
		}
		return nil
	})
	return err
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
