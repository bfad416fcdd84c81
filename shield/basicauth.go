package shield

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuth returns middleware enforcing HTTP basic auth against a single
// account. The password is checked against a bcrypt hash so the config file
// never holds a plaintext secret. Paths matching an exempt prefix pass
// through unauthenticated (health probes, typically).
func BasicAuth(username, passwordHash string, exemptPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range exemptPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			user, pass, ok := r.BasicAuth()
			if ok {
				userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
				passOK := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) == nil
				if userOK && passOK {
					next.ServeHTTP(w, r)
					return
				}
			}

			GetLogger(r.Context()).Warn("auth: rejected", "user", user)

			w.Header().Set("WWW-Authenticate", `Basic realm="tamis", charset="UTF-8"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}
