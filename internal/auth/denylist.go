package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:"

// Denylist stores revoked JWTs in redis until they expire on their own.
type Denylist struct {
	rdb *redis.Client
}

func NewDenylist(rdb *redis.Client) *Denylist {
	return &Denylist{rdb: rdb}
}

func (d *Denylist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denylistPrefix+token, 1, ttl).Err()
}

func (d *Denylist) Contains(ctx context.Context, token string) (bool, error) {
	err := d.rdb.Get(ctx, denylistPrefix+token).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
