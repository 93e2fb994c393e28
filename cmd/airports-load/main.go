// 数据导入工具：读取机场数据文件（JSON/YAML），清空后整体写入记录库与两个索引
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airport-api/internal/coordinator"
	"airport-api/internal/ingest"
	"airport-api/internal/logger"
	"airport-api/internal/utils"

	"github.com/joho/godotenv"
)

// 用法：airports-load [path]；未给出路径时读取 BULK_LOAD_PATH
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	path := utils.Env("BULK_LOAD_PATH", "")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: airports-load <path>")
		os.Exit(2)
	}

	ctx := context.Background()
	records, closeStore, err := utils.OpenRecordStoreFromEnv(l)
	if err != nil {
		l.Error("store_open_error", "err", err)
		os.Exit(1)
	}
	defer closeStore()
	geo, pop := utils.OpenIndexesFromEnv(ctx, l)
	timeout := utils.EnvDuration("INDEX_TIMEOUT_MS", coordinator.DefaultTimeout, time.Millisecond)
	coord := coordinator.New(records, geo, pop, coordinator.Options{Timeout: timeout, Logger: l})

	res, skipped, err := ingest.LoadPath(ctx, coord, path)
	if err != nil {
		l.Error("bulk_load_error", "path", path, "err", err)
		closeStore()
		os.Exit(1)
	}
	fmt.Println("stored", res.Stored, "indexed", res.Indexed, "failed", res.Failed, "skipped", skipped)
}
