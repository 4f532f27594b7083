package server

import (
	"crypto/subtle"
	"net/http"
	"time"
)

const tokenCookieName = "apilon_dashboard_token"

// authMiddleware checks for the dashboard token in the query string or cookie.
// A valid query token is moved into a cookie and stripped from the URL.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if queryToken := r.URL.Query().Get("token"); queryToken != "" {
			if !s.validToken(queryToken) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     tokenCookieName,
				Value:    s.token,
				Path:     "/dashboard",
				HttpOnly: true,
				MaxAge:   int(24 * time.Hour / time.Second),
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})

			newURL := *r.URL
			q := newURL.Query()
			q.Del("token")
			newURL.RawQuery = q.Encode()
			http.Redirect(w, r, newURL.String(), http.StatusFound)
			return
		}

		cookie, err := r.Cookie(tokenCookieName)
		if err != nil || !s.validToken(cookie.Value) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(t string) bool {
	return subtle.ConstantTimeCompare([]byte(t), []byte(s.token)) == 1
}
