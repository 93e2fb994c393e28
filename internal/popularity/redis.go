// 包 popularity：热度排行，整张排行共享一个过期窗口
package popularity

import (
	"context"
	"sort"
	"strconv"
	"time"

	"airport-api/internal/airport"

	"github.com/redis/go-redis/v9"
)

// Key：热度排行在 Redis 中的唯一键
const Key = "airport_popularity"

// DefaultTTL：默认共享过期窗口 D
const DefaultTTL = 86400 * time.Second

// 文档注释：Redis 有序集合热度排行
// 背景：ZINCRBY 与 EXPIRE 在同一 MULTI 中提交，计数为服务端原子自增，并发增量不会丢失。
// 约束：EXPIRE 作用于整个键，任一成员自增都会把全体的过期时间重置为 ttl；到期后整键消失（全局清零）。
type RedisRanking struct {
	rc  *redis.Client
	key string
	ttl time.Duration
}

func NewRedisRanking(rc *redis.Client, ttl time.Duration) *RedisRanking {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRanking{rc: rc, key: Key, ttl: ttl}
}

func (r *RedisRanking) Increment(ctx context.Context, identifier string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, airport.ErrInvalidInput
	}
	var incr *redis.FloatCmd
	_, err := r.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.ZIncrBy(ctx, r.key, float64(amount), identifier)
		pipe.Expire(ctx, r.key, r.ttl)
		return nil
	})
	if err != nil {
		return 0, airport.TransientError("zincrby", err)
	}
	return int64(incr.Val()), nil
}

// TopK：先取前 k 名，再补齐与第 k 名同分的全部成员，按“分数降序、标识升序”在截断处精确定序
func (r *RedisRanking) TopK(ctx context.Context, k int) ([]airport.RankEntry, error) {
	if k <= 0 {
		return []airport.RankEntry{}, nil
	}
	zs, err := r.rc.ZRevRangeWithScores(ctx, r.key, 0, int64(k-1)).Result()
	if err != nil {
		return nil, airport.TransientError("zrevrange", err)
	}
	out := make([]airport.RankEntry, 0, len(zs))
	if len(zs) < k {
		for _, z := range zs {
			out = append(out, toEntry(z))
		}
		sortRanking(out)
		return out, nil
	}
	cut := zs[k-1].Score
	for _, z := range zs {
		if z.Score > cut {
			out = append(out, toEntry(z))
		}
	}
	s := strconv.FormatFloat(cut, 'f', -1, 64)
	tied, err := r.rc.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: s, Max: s}).Result()
	if err != nil {
		return nil, airport.TransientError("zrangebyscore", err)
	}
	for _, m := range tied {
		out = append(out, airport.RankEntry{Identifier: m, Score: int64(cut)})
	}
	sortRanking(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (r *RedisRanking) Remove(ctx context.Context, identifier string) error {
	return airport.TransientError("pop_zrem", r.rc.ZRem(ctx, r.key, identifier).Err())
}

func (r *RedisRanking) Clear(ctx context.Context) error {
	return airport.TransientError("pop_del", r.rc.Del(ctx, r.key).Err())
}

func toEntry(z redis.Z) airport.RankEntry {
	id, _ := z.Member.(string)
	return airport.RankEntry{Identifier: id, Score: int64(z.Score)}
}

func sortRanking(es []airport.RankEntry) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Score != es[j].Score {
			return es[i].Score > es[j].Score
		}
		return es[i].Identifier < es[j].Identifier
	})
}
