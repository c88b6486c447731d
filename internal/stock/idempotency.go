package stock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "purchase:idem:"
	idempotencyKeyTTL    = 24 * time.Hour
)

var ErrDuplicateRequest = errors.New("duplicate request")

// ClaimIdempotencyKey reserves a client-supplied idempotency key for the
// dedup window. A nil client or empty key disables the check, since the key
// is optional on the purchase API.
func ClaimIdempotencyKey(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil || key == "" {
		return nil
	}

	ok, err := rdb.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateRequest
	}
	return nil
}

// ReleaseIdempotencyKey frees a claimed key after a purchase that did not
// commit, so the client may retry with the same key. Best-effort, and on its
// own context: when the purchase failed because the request context expired,
// a release on that same context would fail too and strand the key for the
// full TTL window.
func ReleaseIdempotencyKey(rdb *redis.Client, key string) {
	if rdb == nil || key == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb.Del(ctx, idempotencyKeyPrefix+key)
}
