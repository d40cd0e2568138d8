package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bucket describes one family of token buckets, one bucket per subject.
type Bucket struct {
	// Name is the key segment, e.g. "user" or "ip".
	Name string
	// PerSecond is the refill rate. Zero or less disables the bucket.
	PerSecond float64
	// Burst is the bucket capacity.
	Burst int
	// Anonymize hashes the subject before it becomes part of the key.
	Anonymize bool
}

// UserBucket refills perMinute tokens a minute for each signed-in user.
func UserBucket(perMinute, burst int) Bucket {
	return Bucket{Name: "user", PerSecond: float64(perMinute) / 60, Burst: burst}
}

// IPBucket refills perSecond tokens a second for each client address.
// Addresses are stored hashed.
func IPBucket(perSecond, burst int) Bucket {
	return Bucket{Name: "ip", PerSecond: float64(perSecond), Burst: burst, Anonymize: true}
}

// Enabled reports whether the bucket limits anything.
func (b Bucket) Enabled() bool {
	return b.PerSecond > 0 && b.Burst > 0
}

// TTL is twice the time an empty bucket takes to refill, at least a second.
// An idle subject's key expires once it would be full again anyway.
func (b Bucket) TTL() time.Duration {
	if !b.Enabled() {
		return time.Second
	}
	refill := time.Duration(float64(b.Burst) / b.PerSecond * float64(time.Second))
	if ttl := 2 * refill; ttl > time.Second {
		return ttl.Round(time.Second)
	}
	return time.Second
}

func (b Bucket) subject(s string) string {
	if b.Anonymize {
		return hashSubject(s)
	}
	return s
}

// Allowance is the outcome of taking one token.
type Allowance struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// takeScript refills by elapsed milliseconds and takes one token.
// Returns {allowed, retry_after_ms, remaining}.
var takeScript = redis.NewScript(`
local rate = tonumber(ARGV[1]) / 1000
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

local allowed, wait = 0, 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, wait, math.floor(tokens)}
`)

// Take removes one token from subject's bucket. A disabled bucket always
// allows. Errors are returned so the caller decides whether to fail open.
func (c *Cache) Take(ctx context.Context, b Bucket, subject string) (*Allowance, error) {
	now := time.Now()
	if !b.Enabled() {
		return &Allowance{Allowed: true, Remaining: int64(b.Burst), ResetAt: now}, nil
	}

	res, err := takeScript.Run(ctx, c.client,
		[]string{c.key("rl", b.Name, b.subject(subject))},
		b.PerSecond, b.Burst, now.UnixMilli(), b.TTL().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to take %s token: %w", b.Name, err)
	}

	remaining := res[2]
	missing := float64(int64(b.Burst) - remaining)
	return &Allowance{
		Allowed:    res[0] == 1,
		Remaining:  remaining,
		ResetAt:    now.Add(time.Duration(math.Ceil(missing / b.PerSecond * float64(time.Second)))),
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
	}, nil
}

// hashSubject keeps the first 8 bytes of the SHA-256, hex encoded.
func hashSubject(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
