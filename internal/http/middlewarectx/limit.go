package middlewarectx

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(2, 5)

// RateLimitMiddleware ограничивает частоту запросов к формам
// аутентификации. Превышение лимита возвращает 429 без обработки формы.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests", slog.String("path", r.URL.Path))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
