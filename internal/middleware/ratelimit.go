package middleware

import (
	"net/http"

	"airport-api/internal/metrics"
	"airport-api/internal/utils"

	"golang.org/x/time/rate"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：在流量峰值时对入口进行限速，避免记录库与索引被过载；按环境变量开关与速率配置。
// 约束：不做排队，超限直接返回 429；突发容量等于每秒速率。
func RateLimit(qps int) func(http.Handler) http.Handler {
	lim := rate.NewLimiter(rate.Limit(qps), qps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				metrics.RateLimitedTotal.Inc()
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Wrap：CORS 始终在最外层；RATE_LIMIT_ENABLED=true 时再套上限流，RATE_LIMIT_QPS 默认 200
func Wrap(next http.Handler) http.Handler {
	h := next
	if utils.EnvBool("RATE_LIMIT_ENABLED", false) {
		qps := utils.EnvInt("RATE_LIMIT_QPS", 200)
		if qps <= 0 {
			qps = 200
		}
		h = RateLimit(qps)(h)
	}
	return CORS(utils.Env("CORS_ALLOW_ORIGIN", "*"))(h)
}
