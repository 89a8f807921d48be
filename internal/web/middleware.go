package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/ameliecafe/storefront/internal/auth"
	"github.com/ameliecafe/storefront/internal/cart"
	"github.com/ameliecafe/storefront/internal/store"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"

// sessionCookie names the anonymous storefront session (cart) cookie.
const sessionCookie = "session"

// authCookie names the admin session cookie.
const authCookie = "token"

// CookieAuthMiddleware validates the admin JWT cookie, checks revocation,
// and threads the claims through the request context.
func CookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(authCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}

			claims, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}

			if claims.ID != "" {
				revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
				if err != nil {
					slog.Error("failed to check token revocation", "error", err)
					clearAuthCookie(w)
					http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
					return
				}
				if revoked {
					clearAuthCookie(w)
					http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
					return
				}
			}

			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clearAuthCookie clears the admin cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from the request context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// sessionID returns the current cart session ID, or "" if none exists yet.
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ensureSession returns the cart session ID, issuing a cookie on first use.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		return id
	}

	id := s.Carts.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// cartCount returns the badge count for the current session, for page headers.
func (s *Server) cartCount(r *http.Request) int {
	id := sessionID(r)
	if id == "" {
		return 0
	}
	count := 0
	s.Carts.With(id, func(c *cart.Cart) {
		count = c.TotalItemCount()
	})
	return count
}
