package auth

import "context"

type contextKey string

const authContextKey contextKey = "astro_auth"

// AuthInfo holds authenticated identity information extracted from an API key.
type AuthInfo struct {
	KeyID              string
	UserID             string
	Plan               string
	AllowedReportTypes []string
	RPMLimit           *int
	DailyReportLimit   *int
}

// AllowsReportType reports whether this identity may request the given
// report type. An empty list means all types are allowed.
func (a *AuthInfo) AllowsReportType(rt string) bool {
	if len(a.AllowedReportTypes) == 0 {
		return true
	}
	for _, allowed := range a.AllowedReportTypes {
		if allowed == rt {
			return true
		}
	}
	return false
}

func ContextWithAuth(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey, info)
}

func AuthFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authContextKey).(*AuthInfo)
	return info, ok
}
