// Package api provides the JSON HTTP API.
package api

import (
	"database/sql"
	"net/http"

	"github.com/ameliecafe/storefront/internal/blob"
	"github.com/ameliecafe/storefront/internal/catalog"
)

// NewRouter builds the API router. Product mutations broadcast a fresh
// catalog snapshot through feed.
func NewRouter(db *sql.DB, jwtSecret string, feed *catalog.Feed) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	productsHandler := &ProductsHandler{DB: db, Feed: feed, Blobs: blob.NewStore(db)}

	requireAuth := AuthMiddleware(jwtSecret, db)

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", requireAuth(http.HandlerFunc(authHandler.ChangePassword)))

	mux.HandleFunc("GET /api/products", productsHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productsHandler.Get)
	mux.Handle("POST /api/products", requireAuth(http.HandlerFunc(productsHandler.Create)))
	mux.Handle("PUT /api/products/{id}", requireAuth(http.HandlerFunc(productsHandler.Update)))
	mux.Handle("DELETE /api/products/{id}", requireAuth(http.HandlerFunc(productsHandler.Delete)))
	mux.Handle("PUT /api/products/{id}/image", requireAuth(http.HandlerFunc(productsHandler.UploadImage)))

	return mux
}
