package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"crowdfund-escrow/internal/core/domain"
)

// PrincipalHeader names the header trusted as the caller's address when
// the middleware runs in insecure mode.
const PrincipalHeader = "X-Principal"

// Middleware authenticates requests carrying a bearer token and binds the
// token subject as principal. Requests without credentials pass through
// unauthenticated so public reads keep working; mutating operations then
// fail in the Authorizer. With insecure set, the PrincipalHeader is
// trusted when no bearer token is present. v may be nil when only the
// header mode is enabled.
func Middleware(v *Verifier, insecure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if v == nil {
					writeUnauthorized(w, "bearer tokens are not accepted")
					return
				}
				addr, err := v.Verify(token)
				if err != nil {
					writeUnauthorized(w, err.Error())
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), addr)))
				return
			}
			if insecure {
				if addr := strings.TrimSpace(r.Header.Get(PrincipalHeader)); addr != "" {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), domain.Address(addr))))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  string(domain.CodeUnauthorized),
		"error": msg,
	})
}
