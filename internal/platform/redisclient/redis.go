// Package redisclient builds the Redis client shared by readiness checks and
// the asynq event queue.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Options describes how to reach Redis. URL takes precedence over Addr.
type Options struct {
	URL         string
	Addr        string
	DialTimeout time.Duration
}

func (o Options) redisOptions() (*redis.Options, error) {
	if o.URL != "" {
		opts, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("platform/redisclient: parse url: %w", err)
		}
		if o.DialTimeout > 0 {
			opts.DialTimeout = o.DialTimeout
		}
		return opts, nil
	}
	return &redis.Options{Addr: o.Addr, DialTimeout: o.DialTimeout}, nil
}

// New creates a new Redis client and pings it.
func New(ctx context.Context, o Options) (*redis.Client, error) {
	opts, err := o.redisOptions()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/redisclient: ping: %w", err)
	}

	return client, nil
}

// AsynqOpt converts the options into the connection option asynq expects.
func (o Options) AsynqOpt() (asynq.RedisConnOpt, error) {
	opts, err := o.redisOptions()
	if err != nil {
		return nil, err
	}
	return asynq.RedisClientOpt{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		TLSConfig:   opts.TLSConfig,
	}, nil
}
