package inventory

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"machboard/pkg/bus"
	"machboard/pkg/render"
	gos3 "machboard/pkg/s3"
)

const (
	machineCreatedTopic  = "machboard.machines.created"
	machineUpdatedTopic  = "machboard.machines.updated"
	machineDeletedTopic  = "machboard.machines.deleted"
	machineRestoredTopic = "machboard.machines.restored"

	snapshotURLExpiry = 15 * time.Minute
)

// Deps holds external dependencies required by the API layer. Bus and S3
// are optional; the corresponding features degrade cleanly when nil.
type Deps struct {
	Store *Store
	Bus   *bus.Bus
	S3    *gos3.Client
}

// APIConfig controls runtime behaviour for the HTTP handlers.
type APIConfig struct {
	Title          string
	SnapshotBucket string
	AllowedOrigins []string
}

// API wires dependencies, the template renderer, and configuration for the
// HTTP handlers.
type API struct {
	deps     Deps
	renderer *render.Engine
	config   APIConfig
}

// NewAPI initialises the API layer with sane defaults applied to the
// provided configuration.
func NewAPI(deps Deps, renderer *render.Engine, cfg APIConfig) (*API, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if cfg.Title == "" {
		cfg.Title = "Machine Inventory"
	}

	return &API{
		deps:     deps,
		renderer: renderer,
		config:   cfg,
	}, nil
}

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/", a.handleDashboard)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/machines", a.handleListMachines)
		r.Post("/machines", a.handleCreateMachine)
		r.Post("/machines/undo", a.handleUndo)
		r.Get("/machines/{id}", a.handleGetMachine)
		r.Put("/machines/{id}", a.handleUpdateMachine)
		r.Delete("/machines/{id}", a.handleDeleteMachine)
		r.Post("/snapshots", a.handleExportSnapshot)
	})

	return r, nil
}

func (a *API) handleReady(w http.ResponseWriter, _ *http.Request) {
	if a.deps.Store.Degraded() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("persistence degraded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (a *API) publishJSON(subject string, payload map[string]any) {
	if a.deps.Bus == nil || subject == "" {
		return
	}
	_ = a.deps.Bus.Publish(subject, payload)
}
