package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"pokedoro/internal/config"
	"pokedoro/internal/database"
	"pokedoro/internal/handlers"
	"pokedoro/internal/middlewares"
	"pokedoro/internal/repositories"
	"pokedoro/internal/services"
)

const sessionMaxAge = 86400 * 30

type Server struct {
	cfg          *config.Config
	httpServer   *http.Server
	db           database.Service
	sessionStore *sessions.CookieStore
	loginService services.LoginService
	rateLimiter  *middlewares.RateLimiter
	storageFor   repositories.StorageFactory

	stopCleanup context.CancelFunc
}

// NewServer wires the login front from cfg. With the mongo storage backend it
// connects to MongoDB before returning.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	var db database.Service
	if cfg.StorageBackend == config.StorageMongo {
		var err error
		if db, err = database.New(ctx, cfg.MongoURI, cfg.MongoDatabase); err != nil {
			return nil, err
		}
		if err := repositories.EnsureStorageIndexes(ctx, db); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
	}

	httpClient := &http.Client{Timeout: cfg.AuthTimeout}
	authClient := services.NewAuthClient(httpClient, cfg.AuthEndpoint)

	return newServer(cfg, authClient, db), nil
}

func newServer(cfg *config.Config, authClient services.AuthClient, db database.Service) *Server {
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.SessionSecure
	store.Options.SameSite = http.SameSiteLaxMode

	s := &Server{
		cfg:          cfg,
		db:           db,
		sessionStore: store,
		loginService: services.NewLoginService(authClient, cfg.PostLoginRoute),
		rateLimiter:  middlewares.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst),
	}
	s.storageFor = s.storageFactory()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) storageFactory() repositories.StorageFactory {
	if s.db != nil {
		return func(w http.ResponseWriter, r *http.Request) (repositories.Storage, error) {
			sess, id := handlers.LoadSession(s.sessionStore, r)
			if sess.IsNew {
				if err := sess.Save(r, w); err != nil {
					return nil, fmt.Errorf("saving session id: %w", err)
				}
			}
			return repositories.NewMongoStorage(s.db, id), nil
		}
	}
	return func(w http.ResponseWriter, r *http.Request) (repositories.Storage, error) {
		return repositories.NewSessionStorage(s.sessionStore, handlers.SessionName, w, r), nil
	}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	go s.rateLimiter.CleanupVisitors(ctx)

	log.Info().Int("port", s.cfg.Port).Str("auth_endpoint", s.cfg.AuthEndpoint).Str("storage", s.cfg.StorageBackend).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	if s.stopCleanup != nil {
		s.stopCleanup()
	}
	if s.db != nil {
		if err := s.db.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}

	log.Info().Msg("Server exiting")
	done <- true
}
