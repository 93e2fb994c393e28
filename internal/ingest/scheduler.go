// 包 ingest：周期性全量重载，作为记录库与索引之间唯一的整体对账手段
package ingest

import (
	"context"
	"time"

	"airport-api/internal/airport"
	"airport-api/internal/coordinator"
	"airport-api/internal/logger"
)

// Loader：协调器的全量导入能力
type Loader interface {
	BulkLoad(ctx context.Context, records []airport.Airport) (coordinator.BulkResult, error)
}

// LoadPath：解析文件并整体导入；skipped 为解析阶段丢弃的无代码行数
func LoadPath(ctx context.Context, ld Loader, path string) (res coordinator.BulkResult, skipped int, err error) {
	recs, skipped, err := LoadFile(path)
	if err != nil {
		return coordinator.BulkResult{}, 0, err
	}
	res, err = ld.BulkLoad(ctx, recs)
	return res, skipped, err
}

// StartPeriodic：每隔 interval 重新导入 path；错误记录日志，任务继续调度
// 约束：interval<=0 时不启动；ctx 取消时停止
func StartPeriodic(ctx context.Context, ld Loader, path string, interval time.Duration) {
	if interval <= 0 || path == "" {
		return
	}
	l := logger.L()
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Info("reload_start", "path", path)
				if res, skipped, err := LoadPath(ctx, ld, path); err != nil {
					l.Error("reload_error", "err", err)
				} else {
					l.Info("reload_done", "stored", res.Stored, "indexed", res.Indexed, "failed", res.Failed, "skipped", skipped)
				}
			}
		}
	}()
}
