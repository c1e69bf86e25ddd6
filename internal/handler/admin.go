package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"
)

// StatsProvider reports row counts from the backing store.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// AdminHandler serves operational endpoints guarded by a static key.
type AdminHandler struct {
	adminKey string
	sync     *service.CatalogSyncService
	stats    StatsProvider
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminKey string, sync *service.CatalogSyncService, stats StatsProvider) *AdminHandler {
	return &AdminHandler{
		adminKey: adminKey,
		sync:     sync,
		stats:    stats,
	}
}

// RequireKey guards admin routes with the X-Admin-Key header.
func (h *AdminHandler) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminKey == "" {
			response.Error(w, apierror.Forbidden("admin endpoints are disabled"))
			return
		}

		key := r.Header.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
			response.Error(w, apierror.Unauthorized("invalid admin key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SyncStatus handles GET /api/v1/admin/sync
func (h *AdminHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		response.Error(w, apierror.NotFound("catalog sync is not enabled"))
		return
	}

	progress, err := h.sync.Status(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.OK(w, map[string]interface{}{"status": "never_run"})
			return
		}
		response.Error(w, err)
		return
	}
	response.OK(w, progress)
}

// TriggerSync handles POST /api/v1/admin/sync
func (h *AdminHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		response.Error(w, apierror.NotFound("catalog sync is not enabled"))
		return
	}

	if err := h.sync.RunNow(r.Context()); err != nil {
		response.Error(w, apierror.Conflict(err.Error()))
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"uptime": time.Since(StartTime).Round(time.Second).String(),
	}

	if h.stats != nil {
		dbStats, err := h.stats.Stats(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}
		stats["store"] = dbStats
	}

	response.OK(w, stats)
}
