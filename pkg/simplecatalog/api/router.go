package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/simple-catalog/pkg/simplecatalog"
)

// NewRouter assembles the full HTTP surface: public catalog queries under
// /api/catalog and token-protected product writes under /admin/products.
// An empty adminSecret leaves the admin routes unauthenticated, which is
// only appropriate for development.
func NewRouter(service simplecatalog.Service, queries simplecatalog.QueryService, adminSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Mount("/api/catalog", NewCatalogHandler(queries).Routes())

	admin := NewAdminHandler(service)
	if adminSecret == "" {
		r.Mount("/admin/products", admin.Routes())
		return r
	}

	tokenAuth := jwtauth.New("HS256", []byte(adminSecret), nil)
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Mount("/admin/products", admin.Routes())
	})

	return r
}
