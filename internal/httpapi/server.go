package httpapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arawak/showroom/internal/auth"
	"github.com/arawak/showroom/internal/catalog"
	"github.com/arawak/showroom/internal/config"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/publish"
	"github.com/arawak/showroom/internal/store"
	"github.com/arawak/showroom/internal/swaggerui"
)

//go:embed openapi.yaml
var openapiSpec []byte

type Server struct {
	cfg       *config.Config
	store     *store.Store
	assets    *media.Store
	auth      *auth.Authenticator
	designs   *catalog.Designs
	videos    *catalog.Videos
	publisher publish.Publisher
	logger    *slog.Logger
}

func NewRouter(cfg *config.Config, st *store.Store, assets *media.Store, publisher publish.Publisher, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	if publisher == nil {
		publisher = publish.Disabled{Credentials: cfg.YouTube}
	}
	s := &Server{
		cfg:       cfg,
		store:     st,
		assets:    assets,
		auth:      auth.New(st, cfg.JWTSecret, cfg.TokenTTL),
		designs:   catalog.NewDesigns(st, assets, logger),
		videos:    catalog.NewVideos(st, assets, publisher, cfg.PublishTimeout, logger),
		publisher: publisher,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverer(logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "X-HTTP-Method-Override"},
			AllowCredentials: true,
			MaxAge:           300,
		})
		r.Use(c.Handler)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	wrapper := ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
		writeError(w, http.StatusBadRequest, err.Error())
	}}

	api := func(p string) string { return config.APIPrefix + p }

	r.Get(api("/health"), s.GetHealth)
	r.Get(api("/designs"), s.ListDesigns)
	r.Get(api("/designs/{id}"), wrapper.GetDesign)
	r.Get(api("/videos"), s.ListVideos)
	r.Get(api("/videos/{id}"), wrapper.GetVideo)
	r.Post(api("/admin/login"), s.Login)
	r.Get(api("/youtube/status"), s.GetYouTubeStatus)
	r.Handle(api("/uploads/*"), http.StripPrefix(api("/uploads/"), uploadsHandler(assets.Root())))
	r.Get(cfg.OpenAPIPath, s.serveOpenAPI)
	r.Mount(cfg.SwaggerUIPath, swaggerui.Handler(cfg.OpenAPIPath, cfg.SwaggerUIPath))

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get(api("/admin/verify"), s.VerifyAdmin)
		r.Post(api("/designs"), s.CreateDesign)
		r.Put(api("/designs/{id}"), wrapper.UpdateDesign)
		r.Post(api("/designs/{id}"), wrapper.UpdateDesign)
		r.Delete(api("/designs/{id}"), wrapper.DeleteDesign)
		r.Post(api("/videos"), s.CreateVideo)
		r.Delete(api("/videos/{id}"), wrapper.DeleteVideo)
	})

	return r
}

func (s *Server) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpec)
}

type healthResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
	Storage     string    `json:"storage"`
}

// GetHealth always answers 200 while the process is up; the database and
// storage fields say whether the dependencies are usable.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Success:     true,
		Message:     "Server is running",
		Timestamp:   time.Now().UTC(),
		Environment: s.cfg.Env,
		Database:    "connected",
		Storage:     "writable",
	}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health: database unreachable", "error", err)
		resp.Database = "disconnected"
	}
	if err := s.assets.IsWritable(); err != nil {
		s.logger.Warn("health: storage not writable", "error", err)
		resp.Storage = "not writable"
	}
	writeJSON(w, http.StatusOK, resp)
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Success: false, Message: message})
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// recoverer turns a panic into the uniform 500 envelope.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic", "path", r.URL.Path, "panic", rec, "request_id", middleware.GetReqID(r.Context()))
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
