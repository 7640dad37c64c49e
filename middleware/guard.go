package middleware

import (
	"context"
	"net/http"
	"strings"

	goGuard "github.com/MrEthical07/goGuard"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validated identity injected by [Guard],
// if any. Requests that passed an optional guard anonymously carry none.
func AuthResultFromContext(ctx context.Context) (*goGuard.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goGuard.AuthResult)
	return res, ok
}

// Guard validates the bearer credential against the expected purpose before
// the wrapped handler runs. Any processing failure — missing header,
// malformed token, failed validation — uniformly downgrades the request to
// unauthenticated: with required set the request is rejected 401, otherwise
// it proceeds anonymously and the handler decides.
func Guard(engine *goGuard.Engine, purpose goGuard.TokenPurpose, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			signed, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				anonymous(w, r, next, required)
				return
			}

			res, err := engine.Validate(r.Context(), signed, purpose)
			if err != nil {
				anonymous(w, r, next, required)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func anonymous(w http.ResponseWriter, r *http.Request, next http.Handler, required bool) {
	if required {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	next.ServeHTTP(w, r)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	signed := value[len(bearer):]
	if signed == "" {
		return "", false
	}

	return signed, true
}
