package database

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client used for the registration event feed and
// verifies the server is reachable before handing it out.
func NewRedis(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
