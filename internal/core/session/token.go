package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL returns how long token should be kept: the time left until its
// exp claim, capped at limit. Tokens that are opaque or carry no exp get limit.
//
// The signature is not verified; the backend remains the only authority on
// whether a token is valid.
func TokenTTL(token string, limit time.Duration, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return limit
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return limit
	}
	left := exp.Sub(now)
	if left <= 0 {
		// Already expired; keep it briefly so the next request gets the 401.
		return time.Second
	}
	if limit > 0 && left > limit {
		return limit
	}
	return left
}

// TTLFunc adapts TokenTTL for WithTokenTTL.
func TTLFunc(limit time.Duration) func(string) time.Duration {
	return func(token string) time.Duration {
		return TokenTTL(token, limit, time.Now())
	}
}

// ClaimedDepartment returns the department_id the backend embedded in the
// token's "user" claim for userID, or "". /auth/me omits the department, so
// a rehydrated employee session recovers it from here.
func ClaimedDepartment(token, userID string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	user, ok := claims["user"].(map[string]any)
	if !ok {
		return ""
	}
	if id, _ := user["id"].(string); id != userID {
		return ""
	}
	dep, _ := user["department_id"].(string)
	return dep
}
