// Package recovery converts handler panics into 500 responses so one bad
// request cannot take the service down mid-pass.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/api/respond"
)

// New returns a mux-compatible middleware logging panics through the injected
// logger rather than a process-wide one.
func New(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "recovery").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("remote", r.RemoteAddr).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					respond.WriteInternalError(w, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
