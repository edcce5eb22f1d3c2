package completion

import (
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/celestia-labs/reportgen/internal/config"
)

// waitHintPattern pulls a duration out of structured rate-limit error
// messages, e.g. "Please retry in 21.5s" or "try again in 30 seconds".
var waitHintPattern = regexp.MustCompile(`(?i)(?:retry|try again).{0,20}?in\s+(\d+(?:\.\d+)?)\s*(ms|milliseconds?|s|sec|seconds?|m|min|minutes?)\b`)

func parseWaitHint(msg string) (time.Duration, bool) {
	m := waitHintPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := time.Second
	switch u := strings.ToLower(m[2]); {
	case u == "ms" || strings.HasPrefix(u, "millisecond"):
		unit = time.Millisecond
	case u == "m" || strings.HasPrefix(u, "min"):
		unit = time.Minute
	}
	return time.Duration(n * float64(unit)), true
}

// backoffWait computes how long to sleep before the next attempt.
// Priority order: provider retry-after hint (capped), duration parsed
// from the error message, then a linear schedule growing with the
// attempt number. Bounded jitter is added and the total is capped.
func backoffWait(cfg config.BackoffConfig, err error, attempt int) time.Duration {
	var wait time.Duration

	var rle *RateLimitError
	if errors.As(err, &rle) {
		switch {
		case rle.RetryAfter > 0:
			wait = rle.RetryAfter
			if wait > cfg.MaxRetryAfter {
				wait = cfg.MaxRetryAfter
			}
		default:
			if hinted, ok := parseWaitHint(rle.Message); ok {
				wait = hinted
				if wait > cfg.MaxRetryAfter {
					wait = cfg.MaxRetryAfter
				}
			}
		}
	}

	if wait == 0 {
		wait = cfg.Base * time.Duration(attempt+1)
	}

	if cfg.Jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(cfg.Jitter)))
	}
	if wait > cfg.Max {
		wait = cfg.Max
	}
	return wait
}
