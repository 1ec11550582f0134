package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyunsoolee0506/authkit"
)

const (
	msgMissingCredential = "Need authorization token"
	msgInvalidCredential = "Not valid token"
)

// Gate wraps a handler with request authentication. CORS preflight
// (OPTIONS) and excluded requests pass through untouched. Everything
// else must carry a credential the strategy accepts, in which case the
// verified identity is attached to the request context; otherwise the
// request ends here with 401 and a JSON error body.
func Gate(strategy authkit.Strategy, exclusions *Exclusions, metrics *authkit.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The preflight bypass lives here, not in the rule set: the
			// browser sends OPTIONS without credentials regardless of
			// whether any exclusions were configured.
			if r.Method == http.MethodOptions {
				metrics.GateOutcome("excluded")
				next.ServeHTTP(w, r)
				return
			}

			if exclusions != nil && exclusions.Match(r.Method, r.URL.Path) {
				metrics.GateOutcome("excluded")
				next.ServeHTTP(w, r)
				return
			}

			identity, err := strategy.Authenticate(r)
			if err != nil {
				metrics.GateOutcome("rejected")
				writeUnauthorized(w, err)
				return
			}

			metrics.GateOutcome("allowed")
			next.ServeHTTP(w, r.WithContext(authkit.WithIdentity(r.Context(), identity)))
		})
	}
}

// writeUnauthorized renders the 401 response. The body distinguishes
// only absent versus invalid credentials; verification detail stays
// server-side.
func writeUnauthorized(w http.ResponseWriter, err error) {
	msg := msgInvalidCredential
	if errors.Is(err, authkit.ErrMissingCredential) {
		msg = msgMissingCredential
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
