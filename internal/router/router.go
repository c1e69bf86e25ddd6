package router

import (
	"net/http"

	"cambiacartas-api/internal/handler"
	"cambiacartas-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	HealthHandler    *handler.HealthHandler
	AuthHandler      *handler.AuthHandler
	CatalogHandler   *handler.CatalogHandler
	InventoryHandler *handler.InventoryHandler
	WishlistHandler  *handler.WishlistHandler
	MatchHandler     *handler.MatchHandler
	ProfileHandler   *handler.ProfileHandler
	ImportHandler    *handler.ImportHandler
	AdminHandler     *handler.AdminHandler
	SessionRequired  func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Token", "X-Admin-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// PUBLIC routes (no session required)
		if cfg.HealthHandler != nil {
			r.Get("/health", cfg.HealthHandler.Health)
			r.Get("/ready", cfg.HealthHandler.Ready)
			r.Get("/status", cfg.HealthHandler.Status)
		}

		if cfg.AuthHandler != nil {
			r.Post("/auth/session", cfg.AuthHandler.CreateSession)
		}

		if cfg.CatalogHandler != nil {
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/search", cfg.CatalogHandler.Search)
				r.Get("/autocomplete", cfg.CatalogHandler.Autocomplete)
				r.Get("/printings", cfg.CatalogHandler.Printings)
				r.Get("/cards/{catalog_id}", cfg.CatalogHandler.GetCard)
				r.Post("/resolve", cfg.CatalogHandler.Resolve)
			})
		}

		// Admin endpoints guard themselves with the admin key.
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.AdminHandler.RequireKey)
				r.Get("/sync", cfg.AdminHandler.SyncStatus)
				r.Post("/sync", cfg.AdminHandler.TriggerSync)
				r.Get("/stats", cfg.AdminHandler.Stats)
			})
		}

		// AUTHENTICATED routes
		r.Group(func(r chi.Router) {
			if cfg.SessionRequired != nil {
				r.Use(cfg.SessionRequired)
			}

			if cfg.AuthHandler != nil {
				r.Post("/auth/session/refresh", cfg.AuthHandler.RefreshSession)
				r.Delete("/auth/session", cfg.AuthHandler.RevokeSession)
			}

			if cfg.InventoryHandler != nil {
				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", cfg.InventoryHandler.List)
					r.Post("/", cfg.InventoryHandler.Add)
					r.Put("/{record_id}", cfg.InventoryHandler.Update)
					r.Patch("/{record_id}/for-trade", cfg.InventoryHandler.SetForTrade)
					r.Delete("/{record_id}", cfg.InventoryHandler.Remove)
				})
				r.Get("/users/{profile_id}/trades", cfg.InventoryHandler.ListTrades)
			}

			if cfg.WishlistHandler != nil {
				r.Route("/wishlist", func(r chi.Router) {
					r.Get("/", cfg.WishlistHandler.List)
					r.Post("/", cfg.WishlistHandler.Add)
					r.Post("/bulk", cfg.WishlistHandler.AddBulk)
					r.Delete("/{record_id}", cfg.WishlistHandler.Remove)
					r.Delete("/cards/{catalog_id}", cfg.WishlistHandler.RemoveByCatalogID)
				})
			}

			if cfg.MatchHandler != nil {
				r.Get("/matches", cfg.MatchHandler.List)
			}

			if cfg.ProfileHandler != nil {
				r.Get("/profile", cfg.ProfileHandler.Me)
				r.Get("/users/{profile_id}", cfg.ProfileHandler.Get)
			}

			if cfg.ImportHandler != nil {
				r.Post("/import", cfg.ImportHandler.Import)
			}
		})
	})

	return r
}
