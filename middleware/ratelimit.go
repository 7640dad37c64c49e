package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/ratelimit"
)

// rateLimitResponse is the 429 body contract.
type rateLimitResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// RateLimit runs every request through the engine's rate limiter before the
// wrapped handler. Rejected requests get a 429 JSON body; a bucket-store
// outage fails open with a log line rather than taking the endpoint down.
func RateLimit(engine *goGuard.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			signed, _ := bearerToken(r.Header.Get("Authorization"))
			decision, err := engine.Admit(r.Context(), ratelimit.Request{
				Path:         r.URL.Path,
				ForwardedFor: r.Header.Get("X-Forwarded-For"),
				RealIP:       r.Header.Get("X-Real-IP"),
				RemoteAddr:   r.RemoteAddr,
				BearerToken:  signed,
			})
			if err != nil {
				log.Print("goGuard: rate limit store unavailable, admitting request")
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				writeRateLimitError(w, r.URL.Path)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimitError(w http.ResponseWriter, path string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(rateLimitResponse{
		Status:  http.StatusTooManyRequests,
		Error:   "Too Many Requests",
		Message: "Rate limit exceeded. Please try again later.",
		Path:    path,
	})
}
