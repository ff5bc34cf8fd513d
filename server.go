package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/hako/durafmt"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"

	"github.com/jd-116/bulletin-board-api/api"
	"github.com/jd-116/bulletin-board-api/api/board"
	apiUpload "github.com/jd-116/bulletin-board-api/api/upload"
	"github.com/jd-116/bulletin-board-api/auth"
	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/db/memory"
	"github.com/jd-116/bulletin-board-api/db/mongo"
	redisdb "github.com/jd-116/bulletin-board-api/db/redis"
	"github.com/jd-116/bulletin-board-api/db/sqlkv"
	"github.com/jd-116/bulletin-board-api/env"
	"github.com/jd-116/bulletin-board-api/ids"
	"github.com/jd-116/bulletin-board-api/upload"
	"github.com/jd-116/bulletin-board-api/upload/s3"
)

// APIServer is a struct that bundles together the various server-wide
// resources used at runtime that each have
// a lifecycle of initialization, connection, and disconnection
type APIServer struct {
	backend        string
	dbProvider     db.Provider
	uploadProvider upload.Provider
	jwtManager     *auth.JWTManager
	ids            *ids.Generator
	apiPrefix      string
	logger         zerolog.Logger
	startedAt      time.Time
}

// NewAPIServer initializes the struct and all constituent components
func NewAPIServer(logger zerolog.Logger) (*APIServer, error) {
	backend := strings.ToLower(env.GetEnvOrDefault("STORE_BACKEND", "memory"))
	dbProvider, err := newStoreProvider(backend)
	if err != nil {
		return nil, err
	}

	// Uploads are only served when a bucket is configured
	var uploadProvider upload.Provider
	if s3.Enabled() {
		uploadProvider, err = s3.NewProvider()
		if err != nil {
			return nil, err
		}
	}

	jwtManager, err := auth.NewJWTManager()
	if err != nil {
		return nil, err
	}
	if jwtManager.BypassAuth {
		logger.Warn().Msg("AUTH_BYPASS is set; mutating routes are not authenticated")
	}

	return &APIServer{
		backend:        backend,
		dbProvider:     dbProvider,
		uploadProvider: uploadProvider,
		jwtManager:     jwtManager,
		ids:            ids.NewGenerator(),
		apiPrefix:      "/" + strings.Trim(env.GetEnvOrDefault("API_PREFIX", "/v1"), "/"),
		logger:         logger,
	}, nil
}

// newStoreProvider creates the key-value store named by STORE_BACKEND
func newStoreProvider(backend string) (db.Provider, error) {
	switch backend {
	case "memory":
		return memory.NewProvider(), nil
	case "redis":
		return redisdb.NewProvider()
	case "mongo":
		return mongo.NewProvider()
	case sqlkv.DriverSQLite, sqlkv.DriverPostgres:
		return sqlkv.NewProvider(backend)
	default:
		return nil, fmt.Errorf("unknown store backend '%s' (STORE_BACKEND)", backend)
	}
}

// Connect initializes the struct and all constituent components
func (a *APIServer) Connect(ctx context.Context) error {
	a.logger.Info().Str("backend", a.backend).Msg("initializing key-value store provider")
	err := a.dbProvider.Connect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Str("backend", a.backend).Msg("could not connect to the key-value store")
		return err
	}
	a.logger.Info().Str("backend", a.backend).Msg("successfully connected to the key-value store")

	return nil
}

// Disconnect releases all constituent components
func (a *APIServer) Disconnect(ctx context.Context) error {
	err := a.dbProvider.Disconnect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not disconnect from the key-value store")
		return err
	}
	a.logger.Info().Msg("disconnected from the key-value store")

	return nil
}

// Serve runs the main API server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (a *APIServer) Serve(ctx context.Context, port int) {
	router := a.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("error listening")
		}
	}()
	a.startedAt = time.Now()
	a.logger.Info().Int("port", port).Str("prefix", a.apiPrefix).Msg("API server started")

	<-ctx.Done()
	uptime := durafmt.Parse(time.Since(a.startedAt)).LimitFirstN(2).String()
	a.logger.Info().Str("uptime", uptime).Msg("API server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Fatal().Err(err).Msg("API server shutdown failed")
	}
	a.logger.Info().Msg("API server exited properly")
}

func (a *APIServer) resources() api.Resources {
	return api.Resources{
		Store:         a.dbProvider,
		IDs:           a.ids,
		Clock:         time.Now,
		Logger:        a.logger,
		Authenticated: a.jwtManager.Authenticated(),
	}
}

func (a *APIServer) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                          // Recover from panics without crashing the server
		chizerolog.LoggerMiddleware(&a.logger),        // Log API request calls
		middleware.RedirectSlashes,                    // Redirect slashes to no slash URL versions
		render.SetContentType(render.ContentTypeJSON), // Set content-type headers to application/json
		middleware.Compress(5),                        // Compress results, mostly gzipping assets and json
		middleware.NoCache,                            // Prevent clients from caching the results
		a.corsMiddleware(),                            // Create cors middleware from go-chi/cors
	)

	resources := a.resources()
	router.Route(a.apiPrefix, func(r chi.Router) {
		// Can be used for health checks
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		// Reads are public; each resource guards its own mutating routes
		r.Mount("/", board.Routes(resources))

		if a.uploadProvider != nil {
			r.Mount("/uploads", apiUpload.Routes(a.uploadProvider, resources.Authenticated, a.logger))
		}
	})

	return router
}

func (a *APIServer) corsMiddleware() func(http.Handler) http.Handler {
	allowedOrigins := env.GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
