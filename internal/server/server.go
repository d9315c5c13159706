package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agrunetcore/farmhub/config"
	"github.com/agrunetcore/farmhub/internal/handlers"
	"github.com/agrunetcore/farmhub/internal/jobs"
	"github.com/agrunetcore/farmhub/internal/mq"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/internal/session"
	"github.com/agrunetcore/farmhub/internal/storage"
	"github.com/agrunetcore/farmhub/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	bus        *mq.MQ
	cancelJobs context.CancelFunc
}

// New constructs a Server: stores, session backend, optional avatar
// storage and event bus, and the route tree.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	farmerRepo := store.NewFarmerRepository(cfg.FarmerDataFile())
	userRepo := store.NewUserRepository(cfg.UserDataFile())

	sessionBackend, err := newSessionBackend(cfg.Session)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(sessionBackend, cfg.Session.InactivityLimit)

	userService := services.NewUserService(userRepo)
	if avatars, err := newAvatarStore(ctx, cfg.Storage); err != nil {
		return nil, err
	} else if avatars != nil {
		userService = userService.WithAvatarStore(avatars)
	}

	farmerService := services.NewFarmerService(farmerRepo)

	bus, err := newEventBus(ctx, cfg.MQ)
	if err != nil {
		return nil, err
	}

	var snapshot *jobs.Snapshot
	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	if bus != nil {
		farmerService = farmerService.WithEventBus(bus, cfg.MQ.RegistrationTopic)
		snapshot = jobs.NewSnapshot(farmerService)
		jobs.StartSnapshot(jobsCtx, snapshot, bus, cfg.MQ.RegistrationTopic)
	}

	authHandler := handlers.NewAuthHandler(userService, sessions, jwtSecret)
	farmerHandler := handlers.NewFarmerHandler(farmerService, snapshot)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/api/farmers", func(r chi.Router) {
		handlers.FarmerRouter(r, farmerHandler, authHandler.RequireSession, authHandler.RequireSuperAdmin)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		bus:        bus,
		cancelJobs: cancelJobs,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops background jobs and closes the HTTP server.
func (s *Server) Shutdown() error {
	if s.cancelJobs != nil {
		s.cancelJobs()
	}
	if s.bus != nil {
		_ = s.bus.Close()
	}
	return s.httpServer.Close()
}

func newSessionBackend(cfg config.SessionConfig) (session.Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		return session.NewRedisBackend(cfg.Redis), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func newAvatarStore(ctx context.Context, cfg config.StorageConfig) (*storage.AvatarStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		backend, err := storage.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		avatars := storage.NewAvatarStore(backend)
		if err := avatars.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return avatars, nil
	case "gcs":
		backend, err := storage.NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		avatars := storage.NewAvatarStore(backend)
		if err := avatars.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return avatars, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newEventBus(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
