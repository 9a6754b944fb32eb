package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRF protects form submissions with gorilla/csrf. authKey must be 32
// bytes. When secure is false the token cookie is sent over plain HTTP and
// requests without TLS are marked as plaintext so the origin check does not
// assume https.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
