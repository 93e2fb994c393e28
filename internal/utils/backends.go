package utils

import (
	"context"
	"log/slog"
	"time"

	"airport-api/internal/airport"
	"airport-api/internal/geoindex"
	"airport-api/internal/migrate"
	"airport-api/internal/popularity"
	"airport-api/internal/store"

	"github.com/redis/go-redis/v9"
)

// OpenRecordStoreFromEnv：STORE_BACKEND 取 postgres（默认）或 memory
func OpenRecordStoreFromEnv(l *slog.Logger) (airport.RecordStore, func(), error) {
	if Env("STORE_BACKEND", "postgres") == "memory" {
		l.Info("store_backend", "kind", "memory")
		return store.NewMemStore(), func() {}, nil
	}
	db, err := OpenPostgresFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
	}
	if err := migrate.EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	l.Info("store_backend", "kind", "postgres")
	st := store.AttachDB(db)
	return st, func() { _ = st.Close() }, nil
}

// OpenIndexesFromEnv：INDEX_BACKEND 取 redis（默认）或 memory；Redis 不可达时仍启动，读写按瞬时故障处理
func OpenIndexesFromEnv(ctx context.Context, l *slog.Logger) (airport.SpatialIndex, airport.PopularityIndex) {
	ttl := EnvDuration("POPULARITY_TTL_S", popularity.DefaultTTL, time.Second)
	if Env("INDEX_BACKEND", "redis") == "memory" {
		l.Info("index_backend", "kind", "memory")
		return geoindex.NewMemIndex(), popularity.NewMemRanking(ttl)
	}
	geoRC := OpenRedisFromEnv("REDIS_GEO_HOST")
	popRC := OpenRedisFromEnv("REDIS_POP_HOST")
	for name, rc := range map[string]*redis.Client{"geo": geoRC, "pop": popRC} {
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "index", name, "err", err)
		} else {
			l.Info("redis_ping_ok", "index", name)
		}
	}
	l.Info("index_backend", "kind", "redis")
	return geoindex.NewRedisIndex(geoRC), popularity.NewRedisRanking(popRC, ttl)
}
