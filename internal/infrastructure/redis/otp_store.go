// Package redisstore backs the OTP ledger with Redis so multiple API
// instances share one ledger state. Entries are JSON values expiring via
// Redis TTL; the mutating operations run as Lua scripts so concurrent
// verifiers on different instances cannot race past the attempt limit.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skillshare/api/internal/application/otp"
)

const (
	entryPrefix = "otp:code:"
	ratePrefix  = "otp:rate:"
)

func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}

// Store implements otp.Store on Redis.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func entryKey(identity string, purpose otp.Purpose) string {
	return fmt.Sprintf("%s%s:%s", entryPrefix, purpose, identity)
}

// Save overwrites any prior entry for the pair; SET is atomic, which keeps
// the at-most-one-live-code invariant across instances.
func (s *Store) Save(ctx context.Context, e otp.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ttl := time.Until(e.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, entryKey(e.Identity, e.Purpose), raw, ttl).Err()
}

func (s *Store) Get(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Entry, error) {
	val, err := s.client.Get(ctx, entryKey(identity, purpose)).Result()
	if err == redis.Nil {
		return nil, otp.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e otp.Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) Delete(ctx context.Context, identity string, purpose otp.Purpose) error {
	return s.client.Del(ctx, entryKey(identity, purpose)).Err()
}

var incrementAttemptsScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then return -1 end
local obj = cjson.decode(val)
obj.attempts = (obj.attempts or 0) + 1
local ttl = redis.call("PTTL", KEYS[1])
if ttl and ttl > 0 then
  redis.call("SET", KEYS[1], cjson.encode(obj), "PX", ttl)
else
  redis.call("SET", KEYS[1], cjson.encode(obj))
end
return obj.attempts
`)

func (s *Store) IncrementAttempts(ctx context.Context, identity string, purpose otp.Purpose) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, s.client, []string{entryKey(identity, purpose)}).Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, otp.ErrNotFound
	}
	return n, nil
}

var markUsedScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then return 0 end
local obj = cjson.decode(val)
obj.used = true
local ttl = redis.call("PTTL", KEYS[1])
if ttl and ttl > 0 then
  redis.call("SET", KEYS[1], cjson.encode(obj), "PX", ttl)
else
  redis.call("SET", KEYS[1], cjson.encode(obj))
end
return 1
`)

func (s *Store) MarkUsed(ctx context.Context, identity string, purpose otp.Purpose) error {
	n, err := markUsedScript.Run(ctx, s.client, []string{entryKey(identity, purpose)}).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return otp.ErrNotFound
	}
	return nil
}

// Sweep is a no-op: Redis TTLs expire entries on their own.
func (s *Store) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

// RateLimiter implements otp.RateLimiter on Redis. The window key expires
// with the window itself, so no sweep is needed here either.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

var rateScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == false then
  redis.call("SET", KEYS[1], 1, "EX", ARGV[2])
  return 1
end
if tonumber(current) >= tonumber(ARGV[1]) then
  return 0
end
redis.call("INCR", KEYS[1])
return 1
`)

func (r *RateLimiter) CheckAndIncrement(ctx context.Context, identity string, limit int, window time.Duration) error {
	res, err := rateScript.Run(ctx, r.client, []string{ratePrefix + identity}, limit, int(window.Seconds())).Int()
	if err != nil {
		return err
	}
	if res == 0 {
		return otp.ErrRateLimited
	}
	return nil
}
