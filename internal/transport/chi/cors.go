package chi

import (
	"net/http"
	"strings"
)

// CORS response header values.
const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// CORS sets cross-origin headers on every response and answers preflight requests.
// The request Origin is echoed when it is in allowed; otherwise the first entry is sent.
// OPTIONS on any path answers 200 "ok" without reaching later handlers.
func CORS(allowed []string) func(next http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	fallback := ""
	if len(allowed) > 0 {
		fallback = allowed[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := fallback
			if o := r.Header.Get("Origin"); o != "" {
				if _, ok := set[o]; ok {
					origin = o
				}
			}

			h := w.Header()
			if origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Add("Vary", "Origin")

			if strings.EqualFold(r.Method, http.MethodOptions) {
				h.Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
