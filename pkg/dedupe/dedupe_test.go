package dedupe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/limbo/nexotime/pkg/dedupe"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeRedis struct {
	seen map[string]bool
	err  error
	ttls []time.Duration
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.ttls = append(f.ttls, expiration)
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.seen[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.seen[key] = true
	return redis.NewBoolResult(true, nil)
}

func TestAcquireOnce(t *testing.T) {
	rdb := &fakeRedis{seen: map[string]bool{}}
	d := dedupe.New(rdb, "telegram", time.Hour, nil)
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, 100))
	assert.False(t, d.AcquireOnce(ctx, 100))
	assert.True(t, d.AcquireOnce(ctx, 101))
	assert.Equal(t, []time.Duration{time.Hour, time.Hour, time.Hour}, rdb.ttls)
}

func TestAcquireOnceRedisDown(t *testing.T) {
	d := dedupe.New(&fakeRedis{err: errors.New("connection refused")}, "telegram", time.Hour, nil)
	assert.True(t, d.AcquireOnce(context.Background(), 1))
	assert.True(t, d.AcquireOnce(context.Background(), 1))
}
