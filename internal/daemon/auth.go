package daemon

import (
	"crypto/subtle"
	"net/http"
)

// apiKeyMiddleware rejects requests whose api_key query parameter does not
// match key. When the check is disabled every request passes through.
// onReject runs before the 401 is written so callers can count rejections.
func apiKeyMiddleware(enabled bool, key string, onReject func(*http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.URL.Query().Get("api_key")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
				if onReject != nil {
					onReject(r)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
