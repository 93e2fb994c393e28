package utils

import (
	"airport-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：hostVar 指定主机变量名（REDIS_GEO_HOST / REDIS_POP_HOST），端口、密码与 DB 共用
// 约束：REDIS_DB 解析失败时回退到 0；开启 ContextTimeoutEnabled，调用方的 ctx 截止时间即套接字读写上限
func OpenRedisFromEnv(hostVar string) *redis.Client {
	addr := Env(hostVar, "127.0.0.1") + ":" + Env("REDIS_PORT", "6379")
	db := EnvInt("REDIS_DB", 0)
	logger.L().Debug("redis_env", "var", hostVar, "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: Env("REDIS_PASS", ""), DB: db, ContextTimeoutEnabled: true})
}
