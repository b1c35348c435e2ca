package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "jfcache:"
	opTimeout        = 2 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache keeps every entry in two keys:
//
//   - {prefix}data, a hash of key to value with a per-field TTL (HPEXPIRE,
//     Redis 7.4+ or Valkey 8+).
//   - {prefix}lru, a sorted set of key to last access time in microseconds.
//
// The scripts below keep both keys consistent. Members of the sorted set
// whose hash field already expired are removed when eviction reaches them.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
	onEvict EvictCallback
	logger  Logger
	dataKey string
	lruKey  string
}

// KEYS: data, lru. ARGV: now, key.
var touchScript = redis.NewScript(`
local val = redis.call('HGET', KEYS[1], ARGV[2])
if val then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return val
`)

// KEYS: data, lru. ARGV: value, now, key, max size, ttl ms.
// Returns the evicted keys.
var storeScript = redis.NewScript(`
local key     = ARGV[3]
local maxSize = tonumber(ARGV[4])

redis.call('HSET', KEYS[1], key, ARGV[1])
redis.call('HPEXPIRE', KEYS[1], tonumber(ARGV[5]), 'FIELDS', 1, key)
redis.call('ZADD', KEYS[2], ARGV[2], key)

local size = redis.call('ZCARD', KEYS[2])
local evicted = {}
while size > maxSize do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    redis.call('HDEL', KEYS[1], oldest[1])
    table.insert(evicted, oldest[1])
    size = size - 1
end
return evicted
`)

// KEYS: data, lru. ARGV: key.
var deleteScript = redis.NewScript(`
redis.call('HDEL', KEYS[1], ARGV[1])
return redis.call('ZREM', KEYS[2], ARGV[1])
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
		dataKey: prefix + "data",
		lruKey:  prefix + "lru",
	}, nil
}

func (r *redisCache) keys() []string { return []string{r.dataKey, r.lruKey} }

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func now() string { return strconv.FormatInt(time.Now().UnixMicro(), 10) }

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := touchScript.Run(ctx, r.client, r.keys(), now(), key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache get failed", err)
		}
		return nil, false
	}
	return []byte(val), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	evicted, err := storeScript.Run(ctx, r.client, r.keys(),
		value, now(), key, strconv.Itoa(r.maxSize), strconv.FormatInt(r.ttl.Milliseconds(), 10),
	).StringSlice()
	if err != nil {
		r.logError("redis cache set failed", err)
		return
	}
	if r.onEvict == nil {
		return
	}
	for _, k := range evicted {
		r.onEvict(k, nil)
	}
}

func (r *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := deleteScript.Run(ctx, r.client, r.keys(), key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		r.logError("redis cache delete failed", err)
	}
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.HLen(ctx, r.dataKey).Result()
	if err != nil {
		r.logError("redis cache len failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
