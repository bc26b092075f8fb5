// Package seqsvc implements ident.Counter on Redis and MongoDB. Neither takes part in the
// records' SQL transaction, so a failed creation still consumes its sequence number.
package seqsvc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
)

// seedScript raises KEYS[1] to ARGV[1], never lowering it.
var seedScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local value = tonumber(ARGV[1])
if value > current then
	redis.call("SET", KEYS[1], value)
end
return 0
`)

func OpenRedis(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Addr)
	}
	return client, nil
}

type redisCounter struct {
	client *redis.Client
	prefix string
}

var _ ident.Counter = (*redisCounter)(nil) // interface compliance check

func NewRedisCounter(client *redis.Client, prefix string) ident.Counter {
	return &redisCounter{client: client, prefix: prefix}
}

func (c *redisCounter) key(kind ident.Kind, year int) string {
	return fmt.Sprintf("%s:seq:%s:%d", c.prefix, kind, year)
}

func (c *redisCounter) Next(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	value, err := c.client.Incr(ctx, c.key(kind, year)).Result()
	return value, errors.Wrap(err, "redis INCR")
}

func (c *redisCounter) Seed(ctx context.Context, kind ident.Kind, year int, value int64) error {
	err := seedScript.Run(ctx, c.client, []string{c.key(kind, year)}, value).Err()
	return errors.Wrap(err, "redis seed")
}

func (c *redisCounter) Current(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	value, err := c.client.Get(ctx, c.key(kind, year)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return value, errors.Wrap(err, "redis GET")
}
