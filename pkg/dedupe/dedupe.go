package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type setNXClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Deduper remembers processed keys in redis for ttl.
type Deduper struct {
	rdb    setNXClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func New(rdb setNXClient, prefix string, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce reports whether id is seen for the first time. When redis is
// unavailable processing is allowed.
func (d *Deduper) AcquireOnce(ctx context.Context, id int64) bool {
	key := fmt.Sprintf("dedup:%s:%d", d.prefix, id)
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("dedup check failed, allowing processing", zap.String("key", key), zap.Error(err))
		return true
	}
	if !ok {
		d.logger.Info("skipped duplicated update", zap.String("key", key))
	}
	return ok
}
