package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/celestia-labs/reportgen/internal/auth"
	"github.com/celestia-labs/reportgen/internal/httputil"
	"github.com/celestia-labs/reportgen/internal/telemetry"
)

const (
	defaultRPM          = 30
	defaultDailyReports = 50

	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Middleware returns chi middleware that enforces per-key request rate
// limits and the per-user daily report quota.
func Middleware(limiter *Limiter, quota *QuotaTracker, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			authInfo, ok := auth.AuthFromContext(r.Context())
			if !ok {
				// No auth info — let request pass (auth middleware will catch it)
				next.ServeHTTP(w, r)
				return
			}

			// Determine RPM limit
			rpm := defaultRPM
			if authInfo.RPMLimit != nil {
				rpm = *authInfo.RPMLimit
			}

			// Check RPM
			rpmKey := fmt.Sprintf("rpm:%s", authInfo.KeyID)
			result, _ := limiter.Check(r.Context(), rpmKey, int64(rpm), time.Minute)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"key_id", authInfo.KeyID,
					"user_id", authInfo.UserID,
					"dimension", "rpm",
					"limit", rpm,
				)
				if metrics != nil {
					metrics.RequestRejected("rate_limited")
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Retry after %s", rpm, result.ResetAt.Format(time.RFC3339)))
				return
			}

			// Check daily report quota
			daily := defaultDailyReports
			if authInfo.DailyReportLimit != nil {
				daily = *authInfo.DailyReportLimit
			}
			quotaResult, _ := quota.CheckDailyReports(r.Context(), authInfo.UserID, int64(daily))
			if !quotaResult.Allowed {
				slog.Warn("daily report quota exceeded",
					"request_id", reqID,
					"key_id", authInfo.KeyID,
					"user_id", authInfo.UserID,
					"generated", quotaResult.Generated,
					"limit", quotaResult.Limit,
				)
				if metrics != nil {
					metrics.RequestRejected("daily_quota")
				}
				httputil.WriteQuotaExceededError(w, reqID,
					fmt.Sprintf("Daily report limit exceeded: %d of %d generated", quotaResult.Generated, quotaResult.Limit))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
