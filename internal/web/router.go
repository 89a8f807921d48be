package web

import (
	"database/sql"
	"net/http"

	"github.com/ameliecafe/storefront/internal/blob"
	"github.com/ameliecafe/storefront/internal/cart"
	"github.com/ameliecafe/storefront/internal/catalog"
	"github.com/ameliecafe/storefront/internal/config"
	"github.com/ameliecafe/storefront/internal/mail"
	webembed "github.com/ameliecafe/storefront/web"
)

// NewRouter creates the web router with all storefront and admin routes.
func NewRouter(db *sql.DB, jwtSecret string, cfg *config.Config, feed *catalog.Feed, mirror *catalog.Mirror, mailer mail.Mailer) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Cfg:       cfg,
		Feed:      feed,
		Mirror:    mirror,
		Carts:     cart.NewSessions(),
		Blobs:     blob.NewStore(db),
		Mailer:    mailer,
	}

	mux := http.NewServeMux()
	adminAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets and stored media.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.HandleFunc("GET /media/{key}", s.MediaGet)

	// Storefront pages.
	mux.HandleFunc("GET /{$}", s.HomePage)
	mux.HandleFunc("GET /sobre", s.AboutPage)
	mux.HandleFunc("GET /produtos", s.ProductsPage)
	mux.HandleFunc("GET /produtos/{id}", s.ProductDetailPage)
	mux.HandleFunc("GET /unidades", s.LocationsPage)

	// Cart and checkout.
	mux.HandleFunc("GET /sacola", s.CartPage)
	mux.HandleFunc("POST /sacola/itens", s.CartAddSubmit)
	mux.HandleFunc("POST /sacola/itens/{id}", s.CartUpdateSubmit)
	mux.HandleFunc("POST /checkout", s.CheckoutSubmit)

	// Live catalog stream.
	mux.HandleFunc("GET /events/products", s.ProductEvents)

	// Admin: sign-in and password recovery are public.
	mux.HandleFunc("GET /admin/login", s.AdminLoginPage)
	mux.HandleFunc("POST /admin/login", s.AdminLoginSubmit)
	mux.HandleFunc("POST /admin/logout", s.AdminLogout)
	mux.HandleFunc("GET /admin/recuperar", s.ResetRequestPage)
	mux.HandleFunc("POST /admin/recuperar", s.ResetRequestSubmit)
	mux.HandleFunc("GET /admin/recuperar/{token}", s.ResetPage)
	mux.HandleFunc("POST /admin/recuperar/{token}", s.ResetSubmit)

	// Admin console (authenticated).
	mux.Handle("GET /admin", adminAuth(http.HandlerFunc(s.AdminProductsPage)))
	mux.Handle("GET /admin/products/new", adminAuth(http.HandlerFunc(s.ProductNewPage)))
	mux.Handle("POST /admin/products", adminAuth(http.HandlerFunc(s.ProductCreateSubmit)))
	mux.Handle("GET /admin/products/{id}", adminAuth(http.HandlerFunc(s.ProductEditPage)))
	mux.Handle("POST /admin/products/{id}", adminAuth(http.HandlerFunc(s.ProductUpdateSubmit)))
	mux.Handle("POST /admin/products/{id}/delete", adminAuth(http.HandlerFunc(s.ProductDeleteSubmit)))
	mux.Handle("POST /admin/products/{id}/image", adminAuth(http.HandlerFunc(s.ProductImageSubmit)))
	mux.Handle("GET /admin/conta", adminAuth(http.HandlerFunc(s.AccountPage)))
	mux.Handle("POST /admin/conta/senha", adminAuth(http.HandlerFunc(s.AccountPasswordSubmit)))
	mux.Handle("POST /admin/conta/email", adminAuth(http.HandlerFunc(s.AccountEmailSubmit)))

	return mux, nil
}
