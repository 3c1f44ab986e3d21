package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/config"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/db"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/handlers"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/mq"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/services"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/storage"
	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	stopSweep  context.CancelFunc
}

const sessionSweepInterval = time.Hour

// sweepSessions periodically clears expired session rows. Expired
// tokens are already rejected on lookup; the sweep only keeps the
// table from growing unbounded.
func sweepSessions(ctx context.Context, sessions *store.SessionRepository) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				log.Printf("session sweep: %v", err)
			}
		}
	}
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Recovery.Secret) == "" {
		_ = dbConn.Close()
		return nil, errors.New("RECOVERY_SECRET is required")
	}

	uploads, localDir, err := newStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var notifier *services.Notifier
	if broker != nil {
		notifier = services.NewNotifier(broker, cfg.Events.Channel)
	}

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	followRepo := store.NewFollowRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)
	voteRepo := store.NewVoteRepository(dbConn)

	userService := services.NewUserService(userRepo)
	sessionService := services.NewSessionService(userRepo, sessionRepo, cfg.Session.TTL, cfg.Session.Sliding)
	recoveryService := services.NewRecoveryService(userRepo, cfg.Recovery.Secret, cfg.Recovery.TokenTTL)
	postService := services.NewPostService(postRepo, uploads)
	socialService := services.NewSocialService(followRepo, userRepo, postRepo, notifier)
	engagementService := services.NewEngagementService(commentRepo, voteRepo, postRepo, notifier)

	authHandler := handlers.NewAuthHandler(userService, sessionService, recoveryService, cfg.Session.CookieName, cfg.Session.CookieSecure)
	userHandler := handlers.NewUserHandler(userService, postService, socialService)
	postHandler := handlers.NewPostHandler(postService, socialService)
	socialHandler := handlers.NewSocialHandler(socialService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/"+cfg.Namespace, func(r chi.Router) {
		r.Use(authHandler.LoadSession)
		handlers.AuthRouter(r, authHandler)
		handlers.UserRouter(r, userHandler)
		handlers.PostRouter(r, postHandler)
		handlers.SocialRouter(r, socialHandler)
		handlers.EngagementRouter(r, engagementHandler)
	})
	if localDir != "" {
		fileServer := http.FileServer(http.Dir(localDir))
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

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

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepSessions(sweepCtx, sessionRepo)

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		stopSweep:  stopSweep,
	}, nil
}

// newStorage selects the uploads backend. The returned directory is
// non-empty only for the local backend, which doubles as the static
// file source.
func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, string, error) {
	switch cfg.Uploads.Backend {
	case "", "local":
		client, err := storage.NewLocalClient(cfg.Uploads.LocalDir)
		if err != nil {
			return nil, "", err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return storage.NewStorage(client), client.Dir(), nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, "", err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return storage.NewStorage(client), "", nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, "", err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return storage.NewStorage(client), "", nil
	default:
		return nil, "", fmt.Errorf("unknown uploads backend %q", cfg.Uploads.Backend)
	}
}

// newBroker builds the engagement event broker, nil when disabled.
func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	switch cfg.Events.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
