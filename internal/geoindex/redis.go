package geoindex

import (
	"context"
	"math"
	"sort"

	"airport-api/internal/airport"

	"github.com/redis/go-redis/v9"
)

// Key：空间索引在 Redis 中的唯一键
const Key = "airports_geo"

// 文档注释：Redis GEO 空间索引
// 背景：成员即记录标识，GEOADD 对已存在成员视为覆盖坐标；ZREM 移除成员。
// 约束：Redis 只接受纬度 ±85.05112878 以内的点，超出时 GEOADD 报错并按瞬时错误上抛。
type RedisIndex struct {
	rc  *redis.Client
	key string
}

func NewRedisIndex(rc *redis.Client) *RedisIndex { return &RedisIndex{rc: rc, key: Key} }

func (r *RedisIndex) Upsert(ctx context.Context, identifier string, lon, lat float64) error {
	if !airport.ValidCoordinates(lon, lat) {
		return airport.ErrInvalidInput
	}
	err := r.rc.GeoAdd(ctx, r.key, &redis.GeoLocation{Name: identifier, Longitude: lon, Latitude: lat}).Err()
	return airport.TransientError("geoadd", err)
}

func (r *RedisIndex) Remove(ctx context.Context, identifier string) error {
	return airport.TransientError("geo_zrem", r.rc.ZRem(ctx, r.key, identifier).Err())
}

// 纬度上限，超出的中心点 GEORADIUS 会拒绝
const maxGeoLat = 85.05112878

// QueryRadius：GEORADIUS ... km WITHDIST WITHCOORD ASC；键不存在时返回空结果
// 约束：中心纬度超出 Redis 范围时，改以截断后的中心按 radius+偏移 查询，再按真实中心重算距离并过滤
func (r *RedisIndex) QueryRadius(ctx context.Context, lon, lat, radiusKm float64) ([]airport.GeoHit, error) {
	if err := airport.ValidateRadiusQuery(lon, lat, radiusKm); err != nil {
		return nil, err
	}
	qlat := math.Max(-maxGeoLat, math.Min(maxGeoLat, lat))
	shift := Haversine(lat, lon, qlat, lon)
	locs, err := r.rc.GeoRadius(ctx, r.key, lon, qlat, &redis.GeoRadiusQuery{
		Radius:    radiusKm + shift,
		Unit:      "km",
		WithDist:  true,
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, airport.TransientError("georadius", err)
	}
	out := make([]airport.GeoHit, 0, len(locs))
	for _, l := range locs {
		h := airport.GeoHit{Identifier: l.Name, DistanceKm: l.Dist, Longitude: l.Longitude, Latitude: l.Latitude}
		if qlat != lat {
			h.DistanceKm = Haversine(lat, lon, l.Latitude, l.Longitude)
			if h.DistanceKm > radiusKm {
				continue
			}
		}
		out = append(out, h)
	}
	if qlat != lat {
		sort.Slice(out, func(i, j int) bool {
			if out[i].DistanceKm != out[j].DistanceKm {
				return out[i].DistanceKm < out[j].DistanceKm
			}
			return out[i].Identifier < out[j].Identifier
		})
	}
	return out, nil
}

func (r *RedisIndex) Clear(ctx context.Context) error {
	return airport.TransientError("geo_del", r.rc.Del(ctx, r.key).Err())
}
