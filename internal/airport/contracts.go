package airport

import "context"

// 文档注释：权威记录库契约
// 背景：记录库是唯一真相来源，两个派生索引仅按标识跟随其写入。
// 约束：Put 必须由存储自身原子地保证唯一性；Get/Update/Delete 的 code 可以是标识、主代码或次代码。
type RecordStore interface {
	Put(ctx context.Context, a Airport) error
	Get(ctx context.Context, code string) (Airport, error)
	// Update 返回更新前与更新后的记录，便于调用方判断坐标是否变化
	Update(ctx context.Context, code string, p Patch) (prev Airport, next Airport, err error)
	// Delete 返回被删除的记录，索引移除使用其标识
	Delete(ctx context.Context, code string) (Airport, error)
	List(ctx context.Context) ([]Airport, error)
	Clear(ctx context.Context) error
}

// GeoHit：半径查询的一条命中
type GeoHit struct {
	Identifier string
	DistanceKm float64
	Longitude  float64
	Latitude   float64
}

// 文档注释：空间索引契约（按标识键控）
// 约束：QueryRadius 按距离升序返回；空索引返回空切片而非错误；入参越界返回 ErrInvalidInput。
type SpatialIndex interface {
	Upsert(ctx context.Context, identifier string, lon, lat float64) error
	Remove(ctx context.Context, identifier string) error
	QueryRadius(ctx context.Context, lon, lat, radiusKm float64) ([]GeoHit, error)
	Clear(ctx context.Context) error
}

// RankEntry：热度排行的一条记录
type RankEntry struct {
	Identifier string
	Score      int64
}

// 文档注释：热度排行契约
// 背景：整张排行共享一个过期窗口，任意一次 Increment 都把窗口重置为 D；到期后整体清空，而非逐条衰减。
// 约束：TopK 按分数降序、同分按标识字典序升序，长度不超过 k。
type PopularityIndex interface {
	Increment(ctx context.Context, identifier string, amount int64) (int64, error)
	TopK(ctx context.Context, k int) ([]RankEntry, error)
	Remove(ctx context.Context, identifier string) error
	Clear(ctx context.Context) error
}
