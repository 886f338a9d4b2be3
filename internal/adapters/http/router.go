package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/core/ports"
	"github.com/kirillkom/context-store/internal/observability/metrics"
)

const maxJSONBodyBytes = 8 << 20

// Services are the use cases served over HTTP.
type Services struct {
	Items    ports.ItemService
	Projects ports.ProjectService
	Search   ports.SearchService
	Stats    ports.StatsService
	Transfer ports.TransferService
	Upload   ports.UploadService
	Reindex  ports.ReindexService
}

type Router struct {
	cfg       config.Config
	services  Services
	metrics   *metrics.HTTPServerMetrics
	validator *requestValidator
	logger    *slog.Logger
	now       func() time.Time
}

// NewRouter builds the API router. httpMetrics may be nil.
func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Router{
		cfg:      cfg,
		services: services,
		metrics:  httpMetrics,
		logger:   logger,
		now:      time.Now,
	}
	if cfg.APIValidateRequests {
		validator, err := newRequestValidator()
		if err != nil {
			return nil, err
		}
		rt.validator = validator
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("GET /v1/database/info", rt.databaseInfo)
	mux.HandleFunc("GET /v1/stats", rt.stats)

	mux.HandleFunc("POST /v1/items", rt.createItem)
	mux.HandleFunc("GET /v1/items", rt.listItems)
	mux.HandleFunc("GET /v1/items/{id}", rt.getItem)
	mux.HandleFunc("PUT /v1/items/{id}", rt.updateItem)
	mux.HandleFunc("DELETE /v1/items/{id}", rt.deleteItem)
	mux.HandleFunc("POST /v1/items/search", rt.searchItems)
	mux.HandleFunc("GET /v1/items/search/{search_type}", rt.searchItemsByType)
	mux.HandleFunc("POST /v1/items/upload", rt.uploadItems)

	mux.HandleFunc("POST /v1/projects", rt.createProject)
	mux.HandleFunc("GET /v1/projects", rt.listProjects)
	mux.HandleFunc("GET /v1/projects/{id}", rt.getProject)
	mux.HandleFunc("PUT /v1/projects/{id}", rt.updateProject)
	mux.HandleFunc("DELETE /v1/projects/{id}", rt.deleteProject)

	mux.HandleFunc("GET /v1/export", rt.exportData)
	mux.HandleFunc("GET /v1/export/info", rt.exportInfo)
	mux.HandleFunc("POST /v1/import", rt.importData)
	mux.HandleFunc("DELETE /v1/wipe", rt.wipeData)

	mux.HandleFunc("POST /v1/admin/reindex", rt.scheduleReindex)

	var handler http.Handler = mux
	if rt.validator != nil {
		handler = rt.validator.middleware(handler)
	}
	handler = authMiddleware(handler, rt.cfg.APIKey)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
