// Package router sets up all HTTP routes and middleware chains for the
// salonpress server. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonpress/internal/handlers"
	"salonpress/internal/middleware"
	"salonpress/internal/session"
	"salonpress/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Login attempts are rate limited per IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	// AI generation is limited separately to protect provider quota.
	aiLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Admin routes — require authentication and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages — accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Home)
			r.Get("/{collection:staffs|products|news}", admin.ItemsPage)

			// Item management JSON API consumed by the admin front-end.
			r.Route("/api", func(r chi.Router) {
				r.Get("/upload/progress", admin.UploadProgress)

				r.Route("/{collection:staffs|products|news}", func(r chi.Router) {
					r.Get("/items", admin.ListItems)
					r.Get("/events", admin.Events)
					r.Post("/items", admin.CreateItem)
					r.Put("/items/{id}", admin.UpdateItem)
					r.Delete("/items/{id}", admin.DeleteItem)
					r.Post("/reorder", admin.ReorderItems)
				})
			})
		})
	})

	// Intro text generation — admin-only despite the public-looking path,
	// which the front-end depends on.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.With(aiLimiter.Middleware).Post("/api/generate-intro-text", admin.GenerateIntroText)
	})

	// Public site pages.
	r.Get("/", public.Home)
	r.Get("/staffs", public.Staffs)
	r.Get("/products", public.Products)
	r.Get("/news", public.News)
	r.Get("/stores", public.Stores)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
