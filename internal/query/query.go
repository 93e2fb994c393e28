// 包 query：两类组合读（半径检索与热度排行）；先查索引，再回表补全并丢弃过期命中
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"airport-api/internal/airport"
	"airport-api/internal/logger"
	"airport-api/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultTopK：热度排行默认返回数量
const DefaultTopK = 10

const defaultConcurrency = 16

// Options：可选参数，零值即默认
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Service：查询服务，只读记录库与两个索引；RecordAccess 额外递增热度
type Service struct {
	records     airport.RecordStore
	geo         airport.SpatialIndex
	pop         airport.PopularityIndex
	timeout     time.Duration
	concurrency int
	log         *slog.Logger
}

func New(records airport.RecordStore, geo airport.SpatialIndex, pop airport.PopularityIndex, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Service{records: records, geo: geo, pop: pop, timeout: opts.Timeout, concurrency: opts.Concurrency, log: logger.Or(opts.Logger)}
}

// Nearby：半径检索结果，距离与坐标取自空间索引
type Nearby struct {
	Airport    airport.Airport
	DistanceKm float64
	Longitude  float64
	Latitude   float64
}

// Popular：热度排行结果
type Popular struct {
	Airport airport.Airport
	Visits  int64
}

// ProximitySearch：结果保持索引给出的距离升序；记录库已无对应记录的命中静默丢弃
func (s *Service) ProximitySearch(ctx context.Context, lon, lat, radiusKm float64) ([]Nearby, error) {
	if err := airport.ValidateRadiusQuery(lon, lat, radiusKm); err != nil {
		return nil, err
	}
	t0 := time.Now()
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	hits, err := s.geo.QueryRadius(tctx, lon, lat, radiusKm)
	cancel()
	if err != nil {
		return nil, err
	}
	out, err := enrich(ctx, s, "nearby", hits,
		func(h airport.GeoHit) string { return h.Identifier },
		func(h airport.GeoHit, a airport.Airport) Nearby {
			return Nearby{Airport: a, DistanceKm: h.DistanceKm, Longitude: h.Longitude, Latitude: h.Latitude}
		})
	metrics.QueryDurationMs.WithLabelValues("nearby").Observe(float64(time.Since(t0).Milliseconds()))
	return out, err
}

// PopularAirports：k<=0 时取 DefaultTopK
func (s *Service) PopularAirports(ctx context.Context, k int) ([]Popular, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	t0 := time.Now()
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	top, err := s.pop.TopK(tctx, k)
	cancel()
	if err != nil {
		return nil, err
	}
	out, err := enrich(ctx, s, "popular", top,
		func(e airport.RankEntry) string { return e.Identifier },
		func(e airport.RankEntry, a airport.Airport) Popular { return Popular{Airport: a, Visits: e.Score} })
	metrics.QueryDurationMs.WithLabelValues("popular").Observe(float64(time.Since(t0).Milliseconds()))
	return out, err
}

// RecordAccess：记录不存在返回 ErrNotFound；热度递增为尽力而为，失败不影响返回记录
func (s *Service) RecordAccess(ctx context.Context, code string) (airport.Airport, error) {
	a, err := s.get(ctx, code)
	if err != nil {
		return airport.Airport{}, err
	}
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.pop.Increment(tctx, a.Identifier, 1); err != nil {
		metrics.PropagationFailuresTotal.WithLabelValues("popularity", "increment").Inc()
		s.log.Warn("popularity_increment_error", "identifier", a.Identifier, "err", err)
	}
	return a, nil
}

// List：未过滤的全量列表
func (s *Service) List(ctx context.Context) ([]airport.Airport, error) {
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.records.List(tctx)
}

func (s *Service) get(ctx context.Context, code string) (airport.Airport, error) {
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.records.Get(tctx, code)
}

// enrich：有界并发回表，按命中原顺序输出；ErrNotFound 视为过期命中丢弃，其余错误使整次查询失败
func enrich[H any, R any](ctx context.Context, s *Service, query string, hits []H, idOf func(H) string, build func(H, airport.Airport) R) ([]R, error) {
	slots := make([]*R, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, h := range hits {
		g.Go(func() error {
			id := idOf(h)
			a, err := s.get(gctx, id)
			// 代码解析到了别的记录同样视为过期命中
			if errors.Is(err, airport.ErrNotFound) || (err == nil && a.Identifier != id) {
				metrics.StaleHitsTotal.WithLabelValues(query).Inc()
				s.log.Debug("stale_index_hit", "query", query, "identifier", id)
				return nil
			}
			if err != nil {
				return err
			}
			r := build(h, a)
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]R, 0, len(hits))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
