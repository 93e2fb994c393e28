package popularity

import (
	"context"
	"sync"
	"testing"
	"time"

	"airport-api/internal/airport"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ttl = 10 * time.Second

type backend struct {
	idx     airport.PopularityIndex
	advance func(time.Duration)
}

func backends(t *testing.T) map[string]backend {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	var mu sync.Mutex
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
	return map[string]backend{
		"memory": {
			idx: NewMemRankingWithClock(ttl, clock),
			advance: func(d time.Duration) {
				mu.Lock()
				now = now.Add(d)
				mu.Unlock()
			},
		},
		"redis": {idx: NewRedisRanking(rc, ttl), advance: s.FastForward},
	}
}

func bump(t *testing.T, idx airport.PopularityIndex, id string, n int) {
	for i := 0; i < n; i++ {
		_, err := idx.Increment(context.Background(), id, 1)
		require.NoError(t, err)
	}
}

func TestIncrementAndTopK(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			score, err := b.idx.Increment(ctx, "EZE", 1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), score)
			score, err = b.idx.Increment(ctx, "EZE", 4)
			require.NoError(t, err)
			assert.Equal(t, int64(5), score)
			bump(t, b.idx, "AEP", 2)

			top, err := b.idx.TopK(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{Identifier: "EZE", Score: 5}, {Identifier: "AEP", Score: 2}}, top)

			top, err = b.idx.TopK(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{Identifier: "EZE", Score: 5}}, top)

			top, err = b.idx.TopK(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, top)

			_, err = b.idx.Increment(ctx, "EZE", 0)
			assert.ErrorIs(t, err, airport.ErrInvalidInput)
		})
	}
}

func TestTopKTieBreakIsLexicographic(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bump(t, b.idx, "A", 3)
			bump(t, b.idx, "D", 2)
			bump(t, b.idx, "C", 2)
			bump(t, b.idx, "B", 2)
			bump(t, b.idx, "E", 1)

			top, err := b.idx.TopK(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{"A", 3}, {"B", 2}, {"C", 2}}, top)

			top, err = b.idx.TopK(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{"A", 3}, {"B", 2}}, top)
		})
	}
}

func TestSharedExpiryWindow(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bump(t, b.idx, "EZE", 3)
			b.advance(ttl - time.Second)
			// any increment pushes the deadline for every member
			bump(t, b.idx, "AEP", 1)
			b.advance(ttl - time.Second)

			top, err := b.idx.TopK(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{"EZE", 3}, {"AEP", 1}}, top)

			b.advance(2 * time.Second)
			top, err = b.idx.TopK(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, top, "whole ranking resets, not per member")

			score, err := b.idx.Increment(ctx, "EZE", 1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), score)
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bump(t, b.idx, "EZE", 2)
			bump(t, b.idx, "AEP", 1)
			require.NoError(t, b.idx.Remove(ctx, "EZE"))
			top, err := b.idx.TopK(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{"AEP", 1}}, top)

			require.NoError(t, b.idx.Clear(ctx))
			top, err = b.idx.TopK(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, top)
		})
	}
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			const n = 50
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := b.idx.Increment(context.Background(), "EZE", 1)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()
			top, err := b.idx.TopK(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, []airport.RankEntry{{"EZE", n}}, top)
		})
	}
}
