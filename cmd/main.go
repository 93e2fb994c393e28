// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"airport-api/internal/api"
	"airport-api/internal/coordinator"
	"airport-api/internal/ingest"
	"airport-api/internal/logger"
	"airport-api/internal/metrics"
	"airport-api/internal/middleware"
	"airport-api/internal/query"
	"airport-api/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, closeStore, err := utils.OpenRecordStoreFromEnv(l)
	if err != nil {
		l.Error("store_open_error", "err", err)
		os.Exit(1)
	}
	defer closeStore()
	geo, pop := utils.OpenIndexesFromEnv(ctx, l)

	timeout := utils.EnvDuration("INDEX_TIMEOUT_MS", coordinator.DefaultTimeout, time.Millisecond)
	coord := coordinator.New(records, geo, pop, coordinator.Options{Timeout: timeout, Logger: l})
	qs := query.New(records, geo, pop, query.Options{Timeout: timeout, Logger: l})

	// 背景：启动时按 BULK_LOAD_PATH 全量导入；导入失败不阻断服务
	if path := utils.Env("BULK_LOAD_PATH", ""); path != "" {
		if res, skipped, err := ingest.LoadPath(ctx, coord, path); err != nil {
			l.Error("bulk_load_error", "path", path, "err", err)
		} else {
			l.Info("bulk_load_done", "path", path, "stored", res.Stored, "indexed", res.Indexed, "failed", res.Failed, "skipped", skipped)
		}
		ingest.StartPeriodic(ctx, coord, path, utils.EnvDuration("BULK_RELOAD_INTERVAL", 0, time.Second))
	}

	apiBase := utils.Env("API_BASE", "/airports")
	l.Debug("config_api_base", "base", apiBase)
	apiMux := api.BuildRoutes(coord, qs)
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.HandleFunc(apiBase, func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/"
		apiMux.ServeHTTP(w, r2)
	})
	mux.Handle("/metrics", metrics.Handler())

	addr := utils.Env("ADDR", ":3000")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
}
