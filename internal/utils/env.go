// 包 utils：环境变量读取与外部连接（PostgreSQL、Redis）打开工具
package utils

import (
	"os"
	"strconv"
	"time"
)

// Env：读取字符串，未设置或为空时回退默认值
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt：解析失败或为负时回退默认值
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n >= 0 {
			return n
		}
	}
	return def
}

// EnvBool：仅 "true" 视为开启；未设置时回退默认值
func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true"
}

// EnvDuration：数值按 unit 计；同时接受 time.ParseDuration 格式（如 "30m"）
func EnvDuration(key string, def, unit time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, e := strconv.Atoi(v); e == nil && n >= 0 {
		return time.Duration(n) * unit
	}
	if d, e := time.ParseDuration(v); e == nil && d >= 0 {
		return d
	}
	return def
}
