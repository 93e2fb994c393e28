// 包 coordinator：所有写路径的统一入口，先写权威记录库，再尽力同步两个派生索引
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"airport-api/internal/airport"
	"airport-api/internal/logger"
	"airport-api/internal/metrics"
)

// DefaultTimeout：单次存储/索引调用的默认上限
const DefaultTimeout = 2 * time.Second

const (
	indexSpatial    = "spatial"
	indexPopularity = "popularity"
)

// Options：可选参数，零值即默认
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// 文档注释：索引协调器
// 背景：记录库与索引之间没有事务；记录库写成功即视为操作成功，索引写失败只记录日志与指标。
// 约束：索引可能落后于记录库且不会自动修复；读路径的回表过滤负责屏蔽过期命中，全量导入负责整体对账。
type Coordinator struct {
	records airport.RecordStore
	geo     airport.SpatialIndex
	pop     airport.PopularityIndex
	timeout time.Duration
	log     *slog.Logger
}

func New(records airport.RecordStore, geo airport.SpatialIndex, pop airport.PopularityIndex, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Coordinator{records: records, geo: geo, pop: pop, timeout: opts.Timeout, log: logger.Or(opts.Logger)}
}

// Create：校验标识 → 写记录库 → 坐标有效时尽力写空间索引
func (c *Coordinator) Create(ctx context.Context, a airport.Airport) (airport.Airport, error) {
	id, err := airport.IdentifierOf(a)
	if err != nil {
		return airport.Airport{}, err
	}
	a.Identifier = id
	if err := c.put(ctx, a); err != nil {
		return airport.Airport{}, err
	}
	c.indexPoint(ctx, a)
	return a, nil
}

// Update：写记录库；坐标发生变化时先移除旧条目，新坐标有效再写入
func (c *Coordinator) Update(ctx context.Context, code string, p airport.Patch) (airport.Airport, error) {
	if err := p.Validate(); err != nil {
		return airport.Airport{}, err
	}
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	prev, next, err := c.records.Update(tctx, code, p)
	cancel()
	if err != nil {
		return airport.Airport{}, err
	}
	if airport.CoordinatesChanged(prev, next) {
		c.propagate(ctx, indexSpatial, "remove", next.Identifier, func(ctx context.Context) error {
			return c.geo.Remove(ctx, next.Identifier)
		})
		c.indexPoint(ctx, next)
	}
	return next, nil
}

// Delete：删记录库后尽力移除两个索引中的条目；残留条目由读路径过滤
func (c *Coordinator) Delete(ctx context.Context, code string) (airport.Airport, error) {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	a, err := c.records.Delete(tctx, code)
	cancel()
	if err != nil {
		return airport.Airport{}, err
	}
	c.propagate(ctx, indexSpatial, "remove", a.Identifier, func(ctx context.Context) error {
		return c.geo.Remove(ctx, a.Identifier)
	})
	c.propagate(ctx, indexPopularity, "remove", a.Identifier, func(ctx context.Context) error {
		return c.pop.Remove(ctx, a.Identifier)
	})
	return a, nil
}

// BulkResult：全量导入计数
type BulkResult struct {
	Stored  int `json:"stored"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}

// BulkLoad：清空记录库与两个索引后逐条导入
// 约束：单条失败（重复、无标识）计数后跳过，不中断批次；记录库清空失败或上下文取消时提前返回
func (c *Coordinator) BulkLoad(ctx context.Context, records []airport.Airport) (BulkResult, error) {
	var res BulkResult
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.records.Clear(tctx)
	cancel()
	if err != nil {
		return res, err
	}
	c.propagate(ctx, indexSpatial, "clear", "", c.geo.Clear)
	c.propagate(ctx, indexPopularity, "clear", "", c.pop.Clear)
	c.log.Info("bulk_load_begin", "records", len(records))

	for _, a := range records {
		if err := ctx.Err(); err != nil {
			c.log.Warn("bulk_load_aborted", "stored", res.Stored, "err", err)
			return res, err
		}
		id, err := airport.IdentifierOf(a)
		if err != nil {
			res.Failed++
			metrics.BulkLoadRecordsTotal.WithLabelValues("invalid").Inc()
			c.log.Warn("bulk_load_skip_invalid", "name", a.Name)
			continue
		}
		a.Identifier = id
		if err := c.put(ctx, a); err != nil {
			res.Failed++
			if errors.Is(err, airport.ErrDuplicateIdentifier) {
				metrics.BulkLoadRecordsTotal.WithLabelValues("duplicate").Inc()
				c.log.Warn("bulk_load_skip_duplicate", "identifier", id)
			} else {
				metrics.BulkLoadRecordsTotal.WithLabelValues("error").Inc()
				c.log.Error("bulk_load_insert_error", "identifier", id, "err", err)
			}
			continue
		}
		res.Stored++
		metrics.BulkLoadRecordsTotal.WithLabelValues("stored").Inc()
		if c.indexPoint(ctx, a) {
			res.Indexed++
		}
	}
	c.log.Info("bulk_load_done", "stored", res.Stored, "indexed", res.Indexed, "failed", res.Failed)
	return res, nil
}

func (c *Coordinator) put(ctx context.Context, a airport.Airport) error {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.records.Put(tctx, a)
}

// indexPoint：坐标完整且有效才写空间索引，返回是否写入成功
func (c *Coordinator) indexPoint(ctx context.Context, a airport.Airport) bool {
	lon, lat, ok := a.Coordinates()
	if !ok {
		c.log.Debug("spatial_skip_no_coordinates", "identifier", a.Identifier)
		return false
	}
	return c.propagate(ctx, indexSpatial, "upsert", a.Identifier, func(ctx context.Context) error {
		return c.geo.Upsert(ctx, a.Identifier, lon, lat)
	})
}

// propagate：带超时执行一次索引写入，失败仅记日志和指标
func (c *Coordinator) propagate(ctx context.Context, index, op, id string, fn func(context.Context) error) bool {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := fn(tctx); err != nil {
		metrics.PropagationFailuresTotal.WithLabelValues(index, op).Inc()
		c.log.Warn("index_propagation_error", "index", index, "op", op, "identifier", id, "err", err)
		return false
	}
	return true
}
